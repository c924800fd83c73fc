package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/splice/pkg/buildinfo"
	"github.com/matzehuels/splice/pkg/cache"
	"github.com/matzehuels/splice/pkg/cast"
	"github.com/matzehuels/splice/pkg/errors"
	"github.com/matzehuels/splice/pkg/flux"
	"github.com/matzehuels/splice/pkg/graphdoc"
	"github.com/matzehuels/splice/pkg/interchange"
	"github.com/matzehuels/splice/pkg/interchange/mode"
	"github.com/matzehuels/splice/pkg/nodes"
	"github.com/matzehuels/splice/pkg/observability"
	"github.com/matzehuels/splice/pkg/render"
)

// Runner compiles and renders documents against one node library.
//
// The Runner keeps no per-run state: every Compile builds a fresh world.
// Multiple goroutines can use the same Runner as long as the cache backend
// is safe for concurrent use.
type Runner struct {
	Library *nodes.Library
	Cache   cache.Cache
	Keyer   cache.Keyer
	Logger  *log.Logger
}

// NewRunner creates a runner. A nil library means [nodes.Standard], a nil
// cache disables artifact caching and a nil logger means log.Default().
// Artifact keys are scoped to the build version.
func NewRunner(lib *nodes.Library, c cache.Cache, logger *log.Logger) *Runner {
	if lib == nil {
		lib = nodes.Standard()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Library: lib,
		Cache:   c,
		Keyer:   cache.NewScopedKeyer(nil, buildinfo.Version+":"),
		Logger:  logger,
	}
}

// NewWorld builds the empty world a compile run imports into:
//
//	World
//	  Imports
//	  Graph
func NewWorld() (world, imports, graph *flux.Slot) {
	world = flux.NewRoot(WorldName)
	imports = world.AddChild(ImportsName)
	graph = world.AddChild(GraphName)
	return world, imports, graph
}

// Compile imports doc into a fresh world.
func (r *Runner) Compile(ctx context.Context, doc *graphdoc.Document, opts Options) (*Result, error) {
	if doc == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "document is required")
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	world, imports, graph := NewWorld()
	reg := r.Library.Registry()
	table, tableDiags := interchange.ResolveImportTable(doc, reg)

	m, err := mode.Parse(opts.Mode, imports, table)
	if err != nil {
		return nil, err
	}
	if opts.Prepare {
		if p, ok := m.(mode.Preparer); ok {
			p.Prepare(table)
			r.Logger.Debug("prepared imports", "mode", m.Name(), "types", len(table))
		}
	}

	settings := interchange.Settings{
		Mode:       m,
		Registry:   reg,
		Catalog:    r.Library,
		ImportRoot: imports,
		Monopack:   opts.Monopack,
		Persistent: opts.Persistent,
		Arrange:    opts.Arrange,
		Logger:     r.Logger,
	}
	if opts.Casts {
		settings.Casts = cast.NewResolver(reg)
	}

	observability.Pipeline().OnCompileStart(ctx, m.Name(), len(doc.Nodes))
	start := time.Now()
	report, err := interchange.Import(doc, graph, settings)
	elapsed := time.Since(start)
	if err != nil {
		observability.Pipeline().OnCompileComplete(ctx, m.Name(), observability.CompileStats{}, elapsed, err)
		return nil, err
	}
	report.Diagnostics = append(tableDiags, report.Diagnostics...)
	observability.Pipeline().OnCompileComplete(ctx, m.Name(), compileStats(report), elapsed, nil)

	return &Result{
		World:   world,
		Imports: imports,
		Graph:   graph,
		Mode:    m,
		Table:   table,
		Report:  report,
		Stats:   Stats{CompileTime: elapsed},
	}, nil
}

func compileStats(rep *interchange.Report) observability.CompileStats {
	return observability.CompileStats{
		Nodes:       len(rep.Nodes),
		NodesTotal:  rep.NodesTotal,
		Edges:       rep.EdgesWired,
		EdgesTotal:  rep.EdgesTotal,
		Adapters:    len(rep.Adapters),
		Diagnostics: len(rep.Diagnostics),
	}
}

// RoundTrip compiles doc and exports the compiled graph again.
func (r *Runner) RoundTrip(ctx context.Context, doc *graphdoc.Document, opts Options, exportOpts ...interchange.ExportOption) (*graphdoc.Document, *Result, error) {
	res, err := r.Compile(ctx, doc, opts)
	if err != nil {
		return nil, nil, err
	}
	if doc.Metadata != nil {
		exportOpts = append([]interchange.ExportOption{
			interchange.WithTint(doc.Metadata.ColorR, doc.Metadata.ColorG, doc.Metadata.ColorB),
		}, exportOpts...)
	}
	out, err := interchange.Export(res.Graph, exportOpts...)
	if err != nil {
		return nil, res, err
	}
	return out, res, nil
}

// Render draws doc in the requested format. The bool reports a cache hit.
func (r *Runner) Render(ctx context.Context, doc *graphdoc.Document, opts RenderOptions) ([]byte, bool, error) {
	if doc == nil {
		return nil, false, errors.New(errors.ErrCodeInvalidInput, "document is required")
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	data, err := graphdoc.Marshal(doc)
	if err != nil {
		return nil, false, err
	}
	key := r.Keyer.ArtifactKey(cache.Hash(data), opts.ArtifactKeyOpts())

	observability.Pipeline().OnRenderStart(ctx, opts.Format)
	start := time.Now()

	if out, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		observability.Pipeline().OnRenderComplete(ctx, opts.Format, true, len(out), time.Since(start), nil)
		return out, true, nil
	} else if err != nil {
		r.Logger.Warn("cache read failed", "error", err)
	}

	out, err := r.draw(doc, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Format, false, len(out), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	if err := r.Cache.Set(ctx, key, out, cache.TTLArtifact); err != nil {
		r.Logger.Warn("cache write failed", "error", err)
	}
	r.Logger.Debug("rendered document", "format", opts.Format, "bytes", len(out), "duration", time.Since(start))
	return out, false, nil
}

func (r *Runner) draw(doc *graphdoc.Document, opts RenderOptions) ([]byte, error) {
	dot := render.ToDOT(doc, render.Options{Detailed: opts.Detailed, Direction: opts.Direction})
	switch opts.Format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return render.RenderSVG(dot)
	case FormatPNG:
		return render.RenderPNG(dot, opts.Scale)
	case FormatPDF:
		return render.RenderPDF(dot)
	}
	return nil, ValidateFormat(opts.Format)
}
