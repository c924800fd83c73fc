package pipeline

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/splice/pkg/cache"
	"github.com/matzehuels/splice/pkg/errors"
	"github.com/matzehuels/splice/pkg/flux"
	"github.com/matzehuels/splice/pkg/graphdoc"
	"github.com/matzehuels/splice/pkg/interchange"
	"github.com/matzehuels/splice/pkg/nodes"
	"github.com/matzehuels/splice/pkg/observability"
)

func quiet() *log.Logger { return log.New(io.Discard) }

func place(t *testing.T, lib *nodes.Library, root *flux.Slot, typ string, x float64) *flux.Node {
	t.Helper()
	s := root.AddChild(typ)
	s.Position = flux.Vec3{X: x}
	n, err := lib.Instantiate(lib.MustType(typ), s)
	if err != nil {
		t.Fatalf("Instantiate(%s): %v", typ, err)
	}
	return n
}

func connect(t *testing.T, out *flux.Port, in *flux.Node, name string) {
	t.Helper()
	p, ok := in.Fixed(name, flux.In, flux.Data)
	if !ok {
		t.Fatalf("no input %s on %s", name, in.Type)
	}
	if err := flux.ConnectData(out, p); err != nil {
		t.Fatal(err)
	}
}

// addDoc exports ValueInput<float> feeding both inputs of Add<float>, whose
// sum goes to Output<float>.
func addDoc(t *testing.T, lib *nodes.Library) *graphdoc.Document {
	t.Helper()
	root := flux.NewRoot("Source")
	v := place(t, lib, root, "Flux.Core.ValueInput<float>", 0)
	add := place(t, lib, root, "Flux.Math.Add<float>", 1)
	out := place(t, lib, root, "Flux.Core.Output<float>", 2)
	connect(t, v.SelfOutput(), add, "A")
	connect(t, v.SelfOutput(), add, "B")
	connect(t, add.SelfOutput(), out, nodes.PortInput)

	doc, err := interchange.Export(root, interchange.WithIDs(interchange.SequentialIDs("n")))
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	return doc
}

// globalDoc exports a GlobalInput<Slot> whose value is a slot outside the
// graph, so importing it needs the import table.
func globalDoc(t *testing.T, lib *nodes.Library) *graphdoc.Document {
	t.Helper()
	root := flux.NewRoot("Source")
	head := flux.NewRoot("Imports").AddChild("Head")
	glob := place(t, lib, root, "Flux.Variables.GlobalInput<Flux.World.Slot>", 0)
	g, _ := glob.GlobalRef(nodes.GlobalValue)
	g.Bind(glob.Parent().AttachField(flux.NewField(g.Name, g.ValueType, head)))

	doc, err := interchange.Export(root, interchange.WithIDs(interchange.SequentialIDs("g")))
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	return doc
}

func TestCompile(t *testing.T) {
	lib := nodes.New()
	r := NewRunner(lib, nil, quiet())

	res, err := r.Compile(context.Background(), addDoc(t, lib), Options{})
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	if !res.Report.OK() {
		t.Errorf("Report diagnostics = %v, want none", res.Report.Diagnostics)
	}
	if got := len(res.Report.Nodes); got != 3 {
		t.Errorf("len(Nodes) = %d, want 3", got)
	}
	if res.Report.EdgesWired != 3 {
		t.Errorf("EdgesWired = %d, want 3", res.Report.EdgesWired)
	}
	if got := len(res.Graph.Children()); got != 3 {
		t.Errorf("Graph children = %d, want 3", got)
	}
	if res.Mode.Name() != DefaultMode {
		t.Errorf("Mode = %s, want %s", res.Mode.Name(), DefaultMode)
	}
	if res.Graph.Parent() != res.World || res.Imports.Parent() != res.World {
		t.Error("Graph and Imports should be children of World")
	}
}

func TestCompileMonopack(t *testing.T) {
	lib := nodes.New()
	r := NewRunner(lib, nil, quiet())

	res, err := r.Compile(context.Background(), addDoc(t, lib), Options{Monopack: true, Persistent: true})
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	children := res.Graph.Children()
	if len(children) != 1 || children[0].Name != interchange.MonopackName {
		t.Fatalf("Graph children = %v, want one %s", children, interchange.MonopackName)
	}
	if !children[0].Persistent {
		t.Error("Monopack container not persistent")
	}
	if got := len(children[0].Nodes()); got != 3 {
		t.Errorf("Monopack nodes = %d, want 3", got)
	}
}

func TestCompileImports(t *testing.T) {
	lib := nodes.New()
	r := NewRunner(lib, nil, quiet())
	doc := globalDoc(t, lib)

	tests := []struct {
		name    string
		opts    Options
		prepare bool
	}{
		{"direct", Options{}, false},
		{"direct prepared", Options{Prepare: true}, true},
		{"space prepared", Options{Mode: "space", Prepare: true}, true},
		{"tagged prepared", Options{Mode: "tagged", Prepare: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.Compile(context.Background(), doc, tt.opts)
			if err != nil {
				t.Fatalf("Compile() error: %v", err)
			}
			if len(res.Table) != 1 {
				t.Errorf("len(Table) = %d, want 1", len(res.Table))
			}
			diags := res.Report.ByStage(interchange.StageGlobalRef)
			if len(diags) != 1 {
				t.Fatalf("globalRef diagnostics = %v, want 1", diags)
			}
			if code := diags[0].Code(); code != errors.ErrCodeImportResolution {
				t.Errorf("Code() = %s, want %s", code, errors.ErrCodeImportResolution)
			}
			prepared := len(res.Imports.Collections()) > 0 || res.Imports.Space() != nil || len(res.Imports.Children()) > 0
			if prepared != tt.prepare {
				t.Errorf("import root prepared = %v, want %v", prepared, tt.prepare)
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	lib := nodes.New()
	r := NewRunner(lib, nil, quiet())

	if _, err := r.Compile(context.Background(), nil, Options{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Compile(nil) error = %v, want INVALID_INPUT", err)
	}
	if _, err := r.Compile(context.Background(), addDoc(t, lib), Options{Mode: "fast"}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Compile(mode=fast) error = %v, want INVALID_INPUT", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Compile(ctx, addDoc(t, lib), Options{}); err != context.Canceled {
		t.Errorf("Compile(canceled) error = %v, want %v", err, context.Canceled)
	}
}

func TestRoundTrip(t *testing.T) {
	lib := nodes.New()
	r := NewRunner(lib, nil, quiet())
	doc := addDoc(t, lib)
	doc.Metadata = &graphdoc.Metadata{ColorR: 0.5, ColorG: 0.25, ColorB: 1}

	out, res, err := r.RoundTrip(context.Background(), doc, Options{}, interchange.WithIDs(interchange.SequentialIDs("r")))
	if err != nil {
		t.Fatalf("RoundTrip() error: %v", err)
	}
	if !res.Report.OK() {
		t.Errorf("Report diagnostics = %v", res.Report.Diagnostics)
	}
	if len(out.Nodes) != len(doc.Nodes) {
		t.Fatalf("len(Nodes) = %d, want %d", len(out.Nodes), len(doc.Nodes))
	}
	for i := range doc.Nodes {
		if !out.Nodes[i].Type.Equal(doc.Nodes[i].Type) {
			t.Errorf("Nodes[%d].Type = %s, want %s", i, out.Nodes[i].Type, doc.Nodes[i].Type)
		}
	}
	if out.Nodes[0].ID != "r1" {
		t.Errorf("Nodes[0].ID = %s, want r1", out.Nodes[0].ID)
	}
	if got, want := len(out.Connections.Data), len(doc.Connections.Data); got != want {
		t.Errorf("len(Data) = %d, want %d", got, want)
	}
	if out.Metadata == nil || *out.Metadata != *doc.Metadata {
		t.Errorf("Metadata = %+v, want %+v", out.Metadata, doc.Metadata)
	}
}

func TestRenderCaches(t *testing.T) {
	lib := nodes.New()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(lib, c, quiet())
	doc := addDoc(t, lib)

	first, hit, err := r.Render(context.Background(), doc, RenderOptions{Format: FormatDOT})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if hit {
		t.Error("first Render() hit the cache")
	}
	if !strings.HasPrefix(string(first), "digraph G {") {
		t.Errorf("Render(dot) = %q, want digraph", first)
	}

	second, hit, err := r.Render(context.Background(), doc, RenderOptions{Format: FormatDOT})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !hit {
		t.Error("second Render() missed the cache")
	}
	if string(second) != string(first) {
		t.Error("cached artifact differs")
	}

	if _, hit, _ := r.Render(context.Background(), doc, RenderOptions{Format: FormatDOT, Detailed: true}); hit {
		t.Error("Render(Detailed) hit the plain entry")
	}
}

func TestRenderOptions(t *testing.T) {
	tests := []struct {
		name    string
		in      RenderOptions
		want    RenderOptions
		wantErr bool
	}{
		{"defaults", RenderOptions{}, RenderOptions{Format: FormatSVG, Direction: "LR"}, false},
		{"png scale", RenderOptions{Format: FormatPNG}, RenderOptions{Format: FormatPNG, Direction: "LR", Scale: DefaultScale}, false},
		{"scale dropped", RenderOptions{Format: FormatDOT, Scale: 3}, RenderOptions{Format: FormatDOT, Direction: "LR"}, false},
		{"lower direction", RenderOptions{Direction: "tb"}, RenderOptions{Format: FormatSVG, Direction: "TB"}, false},
		{"bad format", RenderOptions{Format: "gif"}, RenderOptions{}, true},
		{"bad direction", RenderOptions{Direction: "up"}, RenderOptions{}, true},
		{"negative scale", RenderOptions{Format: FormatPNG, Scale: -1}, RenderOptions{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in
			err := got.ValidateAndSetDefaults()
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidInput) {
					t.Errorf("error = %v, want INVALID_INPUT", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestOptionsDefaults(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "direct"},
		{" Space ", "space"},
		{"redprint", "redprint"},
	}
	for _, tt := range tests {
		o := Options{Mode: tt.in}
		if err := o.ValidateAndSetDefaults(); err != nil {
			t.Fatalf("ValidateAndSetDefaults(%q) error: %v", tt.in, err)
		}
		if o.Mode != tt.want {
			t.Errorf("Mode = %q, want %q", o.Mode, tt.want)
		}
	}
}

type countingHooks struct {
	observability.NoopPipelineHooks
	compiles int
	stats    observability.CompileStats
}

func (h *countingHooks) OnCompileComplete(_ context.Context, _ string, s observability.CompileStats, _ time.Duration, _ error) {
	h.compiles++
	h.stats = s
}

func TestCompileHooks(t *testing.T) {
	h := &countingHooks{}
	observability.SetPipelineHooks(h)
	t.Cleanup(observability.Reset)

	lib := nodes.New()
	if _, err := NewRunner(lib, nil, quiet()).Compile(context.Background(), addDoc(t, lib), Options{}); err != nil {
		t.Fatal(err)
	}
	if h.compiles != 1 {
		t.Errorf("compiles = %d, want 1", h.compiles)
	}
	if h.stats.Nodes != 3 || h.stats.Edges != 3 {
		t.Errorf("stats = %+v, want 3 nodes and 3 edges", h.stats)
	}
}
