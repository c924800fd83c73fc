package cli

import (
	"cmp"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/splice/pkg/graphdoc"
	"github.com/matzehuels/splice/pkg/layout"
	"github.com/matzehuels/splice/pkg/render"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "inspect <document>",
		Short: "Summarize a document",
		Long: `Print the counts, node types, import lists and layer depth of a document
without compiling it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.loadDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printInspect(cmd.OutOrStdout(), documentName(args[0]), doc, top)
			return nil
		},
	}

	cmd.Flags().IntVar(&top, "top", 10, "number of node types to list")
	return cmd
}

func printInspect(w io.Writer, name string, doc *graphdoc.Document, top int) {
	fmt.Fprintln(w, StyleTitle.Render(name))
	printKeyValue(w, "version", strconv.Itoa(doc.Version))
	printKeyValue(w, "nodes", strconv.Itoa(len(doc.Nodes)))
	printKeyValue(w, "data", strconv.Itoa(len(doc.Connections.Data)))
	printKeyValue(w, "control", strconv.Itoa(len(doc.Connections.Control)))
	printKeyValue(w, "reference", strconv.Itoa(len(doc.Connections.Reference)))
	printKeyValue(w, "comments", strconv.Itoa(len(doc.Comments)))

	if layers := layout.Layers(doc); len(layers) > 0 {
		depth := 0
		for _, l := range layers {
			depth = max(depth, l+1)
		}
		printKeyValue(w, "layers", strconv.Itoa(depth))
	}
	if doc.RearrangeExport {
		printKeyValue(w, "arrange", "requested")
	}

	if len(doc.ImportNames) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, StyleTitle.Render("Imports"))
		for _, in := range doc.ImportNames {
			printKeyValue(w, render.ShortTypeName(in.Type), fmt.Sprintf("%d values", len(in.Names)))
		}
	}

	counts := make(map[string]int)
	for _, n := range doc.Nodes {
		counts[render.ShortTypeName(n.Type)]++
	}
	if len(counts) == 0 {
		return
	}
	types := slices.SortedFunc(maps.Keys(counts), func(a, b string) int {
		if c := cmp.Compare(counts[b], counts[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	if top > 0 && len(types) > top {
		types = types[:top]
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, StyleTitle.Render("Node types"))
	most := counts[types[0]]
	for _, t := range types {
		fmt.Fprintf(w, "  %4d %s %s\n", counts[t], bar(counts[t], most, 20), StyleValue.Render(t))
	}
}
