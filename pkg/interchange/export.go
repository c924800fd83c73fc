package interchange

import (
	"fmt"
	"math"
	"reflect"

	"github.com/google/uuid"

	"github.com/matzehuels/splice/pkg/errors"
	"github.com/matzehuels/splice/pkg/flux"
	"github.com/matzehuels/splice/pkg/graphdoc"
	"github.com/matzehuels/splice/pkg/literal"
	"github.com/matzehuels/splice/pkg/typeref"
)

// zEpsilon is the tolerance under which a container counts as lying in the
// graph plane.
const zEpsilon = 1e-5

// ExportOption configures [Export].
type ExportOption func(*exporter)

// WithIDs replaces the random node id generator. Tests use it to get
// deterministic documents.
func WithIDs(next func() string) ExportOption {
	return func(e *exporter) { e.newID = next }
}

// WithTint records a presentation color in the document metadata.
func WithTint(r, g, b float64) ExportOption {
	return func(e *exporter) {
		e.tint = &graphdoc.Metadata{ColorR: r, ColorG: g, ColorB: b}
	}
}

// SequentialIDs returns a generator yielding prefix1, prefix2, ...
func SequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

type exporter struct {
	newID func() string
	tint  *graphdoc.Metadata

	doc     *graphdoc.Document
	ids     map[*flux.Node]string
	imports []*importEntry
	byType  map[*typeref.Type]*importEntry
}

// importEntry collects the distinct values exported for one type.
type importEntry struct {
	typ    *typeref.Type
	values []any
}

// index returns the position of v, appending it on first sight. Values are
// compared by identity: elements by pointer, plain values by ==.
func (e *importEntry) index(v any) int {
	for i, have := range e.values {
		if same(have, v) {
			return i
		}
	}
	e.values = append(e.values, v)
	return len(e.values) - 1
}

func same(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// Export builds a document from the nodes attached to the direct children of
// root. The graph is not modified.
func Export(root *flux.Slot, opts ...ExportOption) (*graphdoc.Document, error) {
	if root == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "export root is required")
	}
	e := &exporter{
		newID:  func() string { return uuid.NewString() },
		doc:    graphdoc.New(),
		ids:    make(map[*flux.Node]string),
		byType: make(map[*typeref.Type]*importEntry),
	}
	for _, opt := range opts {
		opt(e)
	}

	var nodes []*flux.Node
	for _, c := range root.Children() {
		nodes = append(nodes, c.Nodes()...)
	}

	aligned := true
	for _, n := range nodes {
		if math.Abs(n.Parent().Position.Z) > zEpsilon {
			aligned = false
			break
		}
	}
	e.doc.RearrangeExport = !aligned

	for _, n := range nodes {
		id := e.newID()
		e.ids[n] = id
		dn := graphdoc.Node{
			ID:              id,
			Type:            typeref.Build(n.Type),
			SerializedPorts: portCounts(n),
			GlobalRefs:      []graphdoc.GlobalRef{},
			Extras:          []graphdoc.Extra{},
		}
		if aligned {
			dn.X, dn.Y = n.Parent().Position.X, n.Parent().Position.Y
		}
		e.doc.Nodes = append(e.doc.Nodes, dn)
	}

	for i, n := range nodes {
		dn := &e.doc.Nodes[i]
		e.exportExtra(dn, n)
		e.exportGlobalRefs(dn, n)
		e.exportReferences(dn.ID, n)
		e.exportFlow(dn.ID, n)
		e.exportData(dn.ID, n)
	}

	for _, c := range root.Children() {
		for _, cm := range c.Comments() {
			e.doc.Comments = append(e.doc.Comments, graphdoc.Comment{
				Message: cm.Message,
				X:       c.Position.X,
				Y:       c.Position.Y,
			})
		}
	}

	for _, entry := range e.imports {
		names := make([]string, len(entry.values))
		for i, v := range entry.values {
			names[i] = Label(v)
		}
		e.doc.ImportNames = append(e.doc.ImportNames, graphdoc.ImportName{
			Type:  typeref.Build(entry.typ),
			Names: names,
		})
	}
	e.doc.Metadata = e.tint
	return e.doc, nil
}

// portCounts records impulse, output, input and operation lists, in that order.
func portCounts(n *flux.Node) []graphdoc.PortCount {
	out := []graphdoc.PortCount{}
	for _, group := range [][]*flux.PortList{
		n.ListsOf(flux.Out, flux.Flow),
		n.ListsOf(flux.Out, flux.Data),
		n.ListsOf(flux.In, flux.Data),
		n.ListsOf(flux.In, flux.Flow),
	} {
		for _, l := range group {
			out = append(out, graphdoc.PortCount{Name: l.Name, Count: l.Len()})
		}
	}
	return out
}

func (e *exporter) importIndex(t *typeref.Type, v any) int {
	entry, ok := e.byType[t]
	if !ok {
		entry = &importEntry{typ: t}
		e.byType[t] = entry
		e.imports = append(e.imports, entry)
	}
	return entry.index(v)
}

// encode returns literal text for literal-friendly types and an import index
// otherwise.
func (e *exporter) encode(t *typeref.Type, v any) (string, bool) {
	if literal.Supported(t) {
		s, err := literal.Encode(t, v)
		return s, err == nil
	}
	return fmt.Sprint(e.importIndex(t, v)), true
}

func (e *exporter) exportExtra(dn *graphdoc.Node, n *flux.Node) {
	switch x := n.Extra().(type) {
	case *flux.Literal:
		if x.Field == nil {
			return
		}
		if s, ok := e.encode(x.Field.Type, x.Field.Value); ok {
			dn.Extras = append(dn.Extras, graphdoc.Extra{Name: graphdoc.ExtraValue, Value: s})
		}
	case *flux.Asset:
		idx := e.importIndex(x.ProviderType, x.Provider)
		dn.Extras = append(dn.Extras, graphdoc.Extra{Name: graphdoc.ExtraValue, Value: fmt.Sprint(idx)})
	case *flux.Drive:
		var target any
		if x.Target != nil {
			target = x.Target
		}
		idx := e.importIndex(x.TargetType, target)
		dn.Extras = append(dn.Extras, graphdoc.Extra{Name: graphdoc.ExtraDrive, Value: fmt.Sprint(idx)})
	}
}

func (e *exporter) exportGlobalRefs(dn *graphdoc.Node, n *flux.Node) {
	for _, g := range n.GlobalRefs() {
		h := g.Holder()
		if h == nil {
			continue
		}
		ref := graphdoc.GlobalRef{Name: g.Name, Index: graphdoc.NoIndex}
		if link := h.DrivenBy(); link != nil && link.Source != nil {
			ref.Drive = true
			ref.Value = fmt.Sprint(e.importIndex(g.ValueType, link.Source))
		} else {
			s, ok := e.encode(g.ValueType, h.Value)
			if !ok {
				continue
			}
			ref.Value = s
		}
		dn.GlobalRefs = append(dn.GlobalRefs, ref)
	}
}

func (e *exporter) exportReferences(id string, n *flux.Node) {
	for _, r := range n.References() {
		target, ok := e.ids[r.Target()]
		if !ok {
			continue
		}
		e.doc.Connections.Reference = append(e.doc.Connections.Reference, graphdoc.Connection{
			FromID:    target,
			FromIndex: graphdoc.NoIndex,
			ToID:      id,
			ToName:    r.Name,
			ToIndex:   graphdoc.NoIndex,
		})
	}
}

func (e *exporter) exportFlow(id string, n *flux.Node) {
	add := func(p *flux.Port, name string, index int) {
		c, ok := e.endpoint(p.Target())
		if !ok {
			return
		}
		e.doc.Connections.Control = append(e.doc.Connections.Control, graphdoc.Connection{
			FromID:    id,
			FromName:  name,
			FromIndex: index,
			ToID:      c.id,
			ToName:    c.name,
			ToIndex:   c.index,
		})
	}
	for _, p := range n.Impulses() {
		add(p, p.Name, graphdoc.NoIndex)
	}
	for _, l := range n.ListsOf(flux.Out, flux.Flow) {
		for i, p := range l.Ports() {
			add(p, l.Name, i)
		}
	}
}

func (e *exporter) exportData(id string, n *flux.Node) {
	add := func(p *flux.Port, name string, index int) {
		c, ok := e.endpoint(p.Target())
		if !ok {
			return
		}
		e.doc.Connections.Data = append(e.doc.Connections.Data, graphdoc.Connection{
			FromID:    c.id,
			FromName:  c.name,
			FromIndex: c.index,
			ToID:      id,
			ToName:    name,
			ToIndex:   index,
		})
	}
	for _, p := range n.Inputs() {
		add(p, p.Name, graphdoc.NoIndex)
	}
	for _, l := range n.ListsOf(flux.In, flux.Data) {
		for i, p := range l.Ports() {
			add(p, l.Name, i)
		}
	}
}

type endpoint struct {
	id    string
	name  string
	index int
}

// endpoint locates the far side of an edge through the port's owner. Ports
// of nodes outside the export are skipped.
func (e *exporter) endpoint(p *flux.Port) (endpoint, bool) {
	if p == nil {
		return endpoint{}, false
	}
	id, ok := e.ids[p.Owner()]
	if !ok {
		return endpoint{}, false
	}
	switch {
	case p.List() != nil:
		return endpoint{id, p.List().Name, p.Index()}, true
	case p.IsSelf():
		return endpoint{id, graphdoc.SelfPort, graphdoc.NoIndex}, true
	}
	return endpoint{id, p.Name, graphdoc.NoIndex}, true
}

// Label is the import table label of v: the name of the nearest named slot
// for elements, the formatted value for plain values, "null" otherwise.
func Label(v any) string {
	var s *flux.Slot
	switch x := v.(type) {
	case nil:
		return "null"
	case *flux.Slot:
		if x == nil {
			return "null"
		}
		s = x.NearestNamed()
	case flux.Element:
		if rv := reflect.ValueOf(x); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return "null"
		}
		if p := x.Parent(); p != nil {
			s = p.NearestNamed()
		}
	default:
		return fmt.Sprint(v)
	}
	if s == nil {
		return "null"
	}
	return s.Name
}
