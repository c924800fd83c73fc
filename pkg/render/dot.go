package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/splice/pkg/errors"
	"github.com/matzehuels/splice/pkg/graphdoc"
	"github.com/matzehuels/splice/pkg/typeref"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds node ids to node labels and port names to edge labels.
	Detailed bool
	// Direction is the graphviz rankdir. Empty means LR, the direction data
	// flows in an arranged document.
	Direction string
}

// Edge styles per connection kind.
const (
	dataStyle      = `color="#334155"`
	controlStyle   = `color="#d97706", penwidth=2`
	referenceStyle = `color="#7c3aed", style=dashed`
)

// ToDOT converts a document to Graphviz DOT source. Output is deterministic:
// nodes and edges appear in document order. Edges whose endpoints are not
// nodes of the document are dropped.
func ToDOT(doc *graphdoc.Document, opts Options) string {
	dir := opts.Direction
	if dir == "" {
		dir = "LR"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", dir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=10];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	known := make(map[string]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		known[n.ID] = true
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n, opts.Detailed), ", "))
	}
	for i, c := range doc.Comments {
		fmt.Fprintf(&buf, "  %q [shape=note, style=filled, fillcolor=\"#fef9c3\", label=%q];\n",
			fmt.Sprintf("comment%d", i+1), c.Message)
	}

	edges := func(conns []graphdoc.Connection, style string, reverse bool) {
		for _, c := range conns {
			if !known[c.FromID] || !known[c.ToID] {
				continue
			}
			attrs := []string{style}
			if opts.Detailed {
				attrs = append(attrs, fmt.Sprintf("label=%q", edgeLabel(c, reverse)))
			}
			fmt.Fprintf(&buf, "  %q -> %q [%s];\n", c.FromID, c.ToID, strings.Join(attrs, ", "))
		}
	}

	buf.WriteString("\n")
	edges(doc.Connections.Data, dataStyle, false)
	edges(doc.Connections.Control, controlStyle, false)
	edges(doc.Connections.Reference, referenceStyle, true)

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n graphdoc.Node, detailed bool) []string {
	label := ShortTypeName(n.Type)
	if detailed {
		label += "\n" + n.ID
	}
	attrs := []string{fmt.Sprintf("label=%q", label), fmt.Sprintf("tooltip=%q", n.Type.String())}
	for _, x := range n.Extras {
		if x.Name == graphdoc.ExtraDrive {
			attrs = append(attrs, "fillcolor=\"#ede9fe\"")
			break
		}
	}
	return attrs
}

// ShortTypeName drops the namespace of the outer type name and keeps the
// generic arguments: Flux.Math.Add<int> becomes Add<int>.
func ShortTypeName(d typeref.Descriptor) string {
	if d.IsVoid() {
		return "void"
	}
	name := d.FullTypeName
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	if !d.IsGeneric() {
		return name
	}
	parts := make([]string, len(d.GenericParameters))
	for i, p := range d.GenericParameters {
		parts[i] = p.String()
	}
	return name + "<" + strings.Join(parts, ",") + ">"
}

// edgeLabel names both endpoints. Reference edges only name the holder slot.
func edgeLabel(c graphdoc.Connection, reference bool) string {
	if reference {
		return c.ToName
	}
	return portName(c.FromName, c.FromIndex) + " → " + portName(c.ToName, c.ToIndex)
}

func portName(name string, index int) string {
	if name == graphdoc.SelfPort {
		name = "self"
	}
	if index == graphdoc.NoIndex {
		return name
	}
	return fmt.Sprintf("%s[%d]", name, index)
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root tag so the drawing scales from the
// origin at its natural size.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// RenderPDF renders DOT source as PDF via SVG conversion.
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return ToPDF(svg)
}

// RenderPNG renders DOT source as PNG via SVG conversion.
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return ToPNG(svg, scale)
}
