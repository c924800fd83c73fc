package interchange

import (
	"io"
	"slices"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/splice/pkg/cast"
	"github.com/matzehuels/splice/pkg/errors"
	"github.com/matzehuels/splice/pkg/flux"
	"github.com/matzehuels/splice/pkg/graphdoc"
	"github.com/matzehuels/splice/pkg/interchange/mode"
	"github.com/matzehuels/splice/pkg/layout"
	"github.com/matzehuels/splice/pkg/literal"
	"github.com/matzehuels/splice/pkg/typeref"
)

// Container names.
const (
	MonopackName = "Monopack"
	CommentName  = "Comment"
)

// Catalog builds live nodes. [nodes.Library] implements it.
type Catalog interface {
	Instantiate(t *typeref.Type, parent *flux.Slot) (*flux.Node, error)
}

// Settings configure one import.
type Settings struct {
	// Mode resolves import indices. Defaults to a Direct mode over
	// ImportRoot.
	Mode mode.CompileMode
	// Registry resolves type descriptors. Required.
	Registry *typeref.Registry
	// Catalog builds the nodes. Required.
	Catalog Catalog
	// ImportRoot is the slot the default mode reads from. Defaults to the
	// destination.
	ImportRoot *flux.Slot
	// Casts, when set, inserts adapter nodes for data edges whose port
	// types differ.
	Casts *cast.Resolver

	// Monopack puts every node into one container when the mode allows it.
	Monopack bool
	// Persistent is copied to every created container.
	Persistent bool
	// Arrange lays out documents flagged rearrangeExport before placing them.
	Arrange bool

	Logger *log.Logger
}

type importer struct {
	s      Settings
	dest   *flux.Slot
	log    *log.Logger
	report *Report
}

// ImportReader decodes a document from r and imports it. A document that
// cannot be decoded is a fatal error and dest is left untouched.
func ImportReader(r io.Reader, dest *flux.Slot, s Settings) (*Report, error) {
	doc, err := graphdoc.Read(r)
	if err != nil {
		return nil, err
	}
	return Import(doc, dest, s)
}

// Import reconstructs doc under dest. The error is non-nil only when the
// arguments are unusable; per-item failures are reported as diagnostics.
func Import(doc *graphdoc.Document, dest *flux.Slot, s Settings) (*Report, error) {
	switch {
	case doc == nil:
		return nil, errors.New(errors.ErrCodeInvalidInput, "document is required")
	case dest == nil:
		return nil, errors.New(errors.ErrCodeInvalidInput, "destination is required")
	case s.Registry == nil:
		return nil, errors.New(errors.ErrCodeInvalidInput, "type registry is required")
	case s.Catalog == nil:
		return nil, errors.New(errors.ErrCodeInvalidInput, "node catalog is required")
	}
	if s.Mode == nil {
		root := s.ImportRoot
		if root == nil {
			root = dest
		}
		s.Mode = mode.NewDirect(root)
	}
	if s.Logger == nil {
		s.Logger = log.Default()
	}
	if s.Arrange && doc.RearrangeExport {
		arranged := *doc
		arranged.Nodes = slices.Clone(doc.Nodes)
		layout.Arrange(&arranged)
		doc = &arranged
	}

	im := &importer{
		s:    s,
		dest: dest,
		log:  s.Logger,
		report: &Report{
			Nodes:      make(map[string]*flux.Node, len(doc.Nodes)),
			NodesTotal: len(doc.Nodes),
			EdgesTotal: doc.ConnectionCount(),
		},
	}
	im.log.Debug("importing document", "nodes", len(doc.Nodes), "edges", doc.ConnectionCount(), "mode", s.Mode.Name())

	s.Mode.Cleanup(dest)

	monopack := s.Monopack && s.Mode.SupportsMonopack()
	var pack *flux.Slot
	var offset flux.Vec3
	if monopack {
		pack = im.container(MonopackName, flux.Vec3{})
	} else {
		offset = centerOffset(doc)
	}

	for i := range doc.Nodes {
		im.node(&doc.Nodes[i], pack, offset)
	}
	for _, c := range doc.Comments {
		cs := im.container(CommentName, flux.Vec3{X: c.X, Y: c.Y}.Add(offset))
		cs.AttachComment(&flux.Comment{Message: c.Message})
	}

	for i := range doc.Connections.Control {
		im.control(&doc.Connections.Control[i])
	}
	for i := range doc.Connections.Data {
		im.data(&doc.Connections.Data[i])
	}
	for i := range doc.Connections.Reference {
		im.reference(&doc.Connections.Reference[i])
	}

	im.log.Info("import finished", "summary", im.report.Summary())
	return im.report, nil
}

// centerOffset moves the bounding box of the document's nodes onto the origin.
func centerOffset(doc *graphdoc.Document) flux.Vec3 {
	if len(doc.Nodes) == 0 {
		return flux.Vec3{}
	}
	minX, maxX := doc.Nodes[0].X, doc.Nodes[0].X
	minY, maxY := doc.Nodes[0].Y, doc.Nodes[0].Y
	for _, n := range doc.Nodes[1:] {
		minX, maxX = min(minX, n.X), max(maxX, n.X)
		minY, maxY = min(minY, n.Y), max(maxY, n.Y)
	}
	return flux.Vec3{X: -(minX + maxX) / 2, Y: -(minY + maxY) / 2}
}

func (im *importer) container(name string, pos flux.Vec3) *flux.Slot {
	c := im.dest.AddChild(name)
	c.Tag = mode.CompiledTag
	c.Position = pos
	c.Persistent = im.s.Persistent
	im.report.Containers = append(im.report.Containers, c)
	return c
}

func (im *importer) fail(stage Stage, nodeID string, edge *graphdoc.Connection, err error) {
	d := Diagnostic{Stage: stage, NodeID: nodeID, Edge: edge, Err: err}
	im.report.Diagnostics = append(im.report.Diagnostics, d)
	kv := []any{"stage", stage, "code", d.Code()}
	if nodeID != "" {
		kv = append(kv, "node", nodeID)
	}
	if edge != nil {
		kv = append(kv, "edge", edgeString(*edge))
	}
	im.log.Warn(errors.UserMessage(err), kv...)
}

// =============================================================================
// Nodes
// =============================================================================

func (im *importer) node(dn *graphdoc.Node, pack *flux.Slot, offset flux.Vec3) {
	if _, dup := im.report.Nodes[dn.ID]; dup {
		im.fail(StageNode, dn.ID, nil, errors.New(errors.ErrCodeInvalidInput, "duplicate node id"))
		return
	}
	t, ok := typeref.Resolve(dn.Type, im.s.Registry)
	if !ok {
		im.fail(StageNode, dn.ID, nil, errors.New(errors.ErrCodeTypeResolution, "cannot resolve type %s", dn.Type))
		return
	}
	if t.Kind() != typeref.KindNode {
		im.fail(StageNode, dn.ID, nil, errors.New(errors.ErrCodeTypeResolution, "%s is not a node type", t))
		return
	}

	parent := pack
	if parent == nil {
		parent = im.container(t.ShortName(), flux.Vec3{X: dn.X, Y: dn.Y}.Add(offset))
	}
	n, err := im.s.Catalog.Instantiate(t, parent)
	if err != nil {
		im.fail(StageNode, dn.ID, nil, errors.Wrap(errors.ErrCodeTypeResolution, err, "instantiate %s", t))
		if pack == nil {
			parent.Destroy()
			im.report.Containers = im.report.Containers[:len(im.report.Containers)-1]
		}
		return
	}
	im.report.Nodes[dn.ID] = n

	for _, pc := range dn.SerializedPorts {
		l, ok := n.ListByName(pc.Name)
		if !ok {
			im.fail(StagePorts, dn.ID, nil, errors.New(errors.ErrCodePortResolution, "no port list %q on %s", pc.Name, t))
			continue
		}
		l.Grow(pc.Count)
	}
	for _, g := range dn.GlobalRefs {
		im.globalRef(dn.ID, n, parent, g)
	}
	im.extra(dn, n)
}

func (im *importer) globalRef(id string, n *flux.Node, parent *flux.Slot, ref graphdoc.GlobalRef) {
	g, ok := n.GlobalRef(ref.Name)
	if !ok {
		im.fail(StageGlobalRef, id, nil, errors.New(errors.ErrCodePortResolution, "no global ref %q on %s", ref.Name, n.Type))
		return
	}
	holder := parent.AttachField(flux.NewField(ref.Name, g.ValueType, nil))
	g.Bind(holder)

	if ref.Drive {
		idx, err := parseIndex(ref.Value)
		if err != nil {
			im.fail(StageGlobalRef, id, nil, err)
			return
		}
		src, ok := im.s.Mode.ImportField(g.ValueType, idx)
		if !ok {
			im.fail(StageGlobalRef, id, nil, importMissing(g.ValueType, idx))
			return
		}
		flux.Drive(parent, src, holder)
		return
	}
	v, err := im.value(g.ValueType, ref.Value)
	if err != nil {
		im.fail(StageGlobalRef, id, nil, err)
		return
	}
	holder.Value = v
}

func (im *importer) extra(dn *graphdoc.Node, n *flux.Node) {
	find := func(name string) (graphdoc.Extra, bool) {
		for _, x := range dn.Extras {
			if x.Name == name {
				return x, true
			}
		}
		return graphdoc.Extra{}, false
	}
	switch x := n.Extra().(type) {
	case *flux.Literal:
		ex, ok := find(graphdoc.ExtraValue)
		if !ok || x.Field == nil {
			return
		}
		v, err := im.value(x.Field.Type, ex.Value)
		if err != nil {
			im.fail(StageExtra, dn.ID, nil, err)
			return
		}
		x.Field.Value = v
	case *flux.Asset:
		ex, ok := find(graphdoc.ExtraValue)
		if !ok {
			return
		}
		v, err := im.imported(x.ProviderType, ex.Value)
		if err != nil {
			im.fail(StageExtra, dn.ID, nil, err)
			return
		}
		x.Provider = v
	case *flux.Drive:
		ex, ok := find(graphdoc.ExtraDrive)
		if !ok {
			return
		}
		v, err := im.imported(x.TargetType, ex.Value)
		if err != nil {
			im.fail(StageExtra, dn.ID, nil, err)
			return
		}
		f, ok := v.(*flux.Field)
		if !ok {
			im.fail(StageExtra, dn.ID, nil, errors.New(errors.ErrCodeConversion, "import %s is not a field", x.TargetType))
			return
		}
		x.Target = f
	}
}

// value decodes literal text for literal-friendly types and resolves an
// import index otherwise.
func (im *importer) value(t *typeref.Type, s string) (any, error) {
	if literal.Supported(t) {
		v, err := literal.Decode(t, s)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeConversion, err, "decode %s", t)
		}
		return v, nil
	}
	return im.imported(t, s)
}

func (im *importer) imported(t *typeref.Type, s string) (any, error) {
	idx, err := parseIndex(s)
	if err != nil {
		return nil, err
	}
	v, ok := im.s.Mode.Import(t, idx)
	if !ok {
		return nil, importMissing(t, idx)
	}
	return v, nil
}

func parseIndex(s string) (int, error) {
	idx, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeImportResolution, err, "invalid import index %q", s)
	}
	return idx, nil
}

func importMissing(t *typeref.Type, idx int) error {
	return errors.New(errors.ErrCodeImportResolution, "no import %d for %s", idx, t)
}

// =============================================================================
// Wiring
// =============================================================================

func (im *importer) ends(stage Stage, c *graphdoc.Connection) (from, to *flux.Node, ok bool) {
	from, okFrom := im.report.Nodes[c.FromID]
	to, okTo := im.report.Nodes[c.ToID]
	if !okFrom || !okTo {
		im.fail(stage, "", c, errors.New(errors.ErrCodeNotFound, "endpoint node not imported"))
		return nil, nil, false
	}
	return from, to, true
}

// port finds a fixed port, or element index of a list when index is set.
func port(n *flux.Node, name string, index int, dir flux.Direction, kind flux.PortKind) *flux.Port {
	if index != graphdoc.NoIndex {
		if l, ok := n.List(name, dir, kind); ok {
			return l.At(index)
		}
		return nil
	}
	if p, ok := n.Fixed(name, dir, kind); ok {
		return p
	}
	return nil
}

func (im *importer) control(c *graphdoc.Connection) {
	from, to, ok := im.ends(StageControl, c)
	if !ok {
		return
	}
	impulse := port(from, c.FromName, c.FromIndex, flux.Out, flux.Flow)
	op := port(to, c.ToName, c.ToIndex, flux.In, flux.Flow)
	if op == nil && c.ToIndex == graphdoc.NoIndex {
		op = to.SelfOperation()
	}
	if impulse == nil || op == nil {
		im.fail(StageControl, "", c, errors.New(errors.ErrCodePortResolution, "impulse or operation not found"))
		return
	}
	if err := flux.ConnectFlow(impulse, op); err != nil {
		im.fail(StageControl, "", c, err)
		return
	}
	im.report.EdgesWired++
}

func (im *importer) data(c *graphdoc.Connection) {
	from, to, ok := im.ends(StageData, c)
	if !ok {
		return
	}
	output := port(from, c.FromName, c.FromIndex, flux.Out, flux.Data)
	if output == nil && c.FromIndex == graphdoc.NoIndex {
		output = from.SelfOutput()
	}
	input := port(to, c.ToName, c.ToIndex, flux.In, flux.Data)
	if output == nil || input == nil {
		im.fail(StageData, "", c, errors.New(errors.ErrCodePortResolution, "output or input not found"))
		return
	}
	if im.s.Casts != nil {
		adapter, err := im.s.Casts.Connect(im.s.Catalog, to.Parent(), output, input)
		if err != nil {
			im.fail(StageData, "", c, err)
			return
		}
		if adapter != nil {
			im.report.Adapters = append(im.report.Adapters, adapter)
		}
	} else if err := flux.ConnectData(output, input); err != nil {
		im.fail(StageData, "", c, err)
		return
	}
	im.report.EdgesWired++
}

func (im *importer) reference(c *graphdoc.Connection) {
	from, to, ok := im.ends(StageReference, c)
	if !ok {
		return
	}
	ref, ok := to.Reference(c.ToName)
	if !ok {
		im.fail(StageReference, "", c, errors.New(errors.ErrCodePortResolution, "no reference %q", c.ToName))
		return
	}
	if err := ref.Set(from); err != nil {
		im.fail(StageReference, "", c, err)
		return
	}
	im.report.EdgesWired++
}

// ResolveImportTable resolves the document's import lists against reg. Lists
// whose type does not resolve are skipped and reported.
func ResolveImportTable(doc *graphdoc.Document, reg *typeref.Registry) (mode.ImportTable, []Diagnostic) {
	table := make(mode.ImportTable, len(doc.ImportNames))
	var diags []Diagnostic
	for _, in := range doc.ImportNames {
		t, ok := typeref.Resolve(in.Type, reg)
		if !ok {
			diags = append(diags, Diagnostic{
				Stage: StageImports,
				Err:   errors.New(errors.ErrCodeTypeResolution, "cannot resolve import type %s", in.Type),
			})
			continue
		}
		table[t] = append(table[t], in.Names...)
	}
	return table, diags
}
