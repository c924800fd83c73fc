// Package pkg provides the core libraries for Splice graph interchange.
//
// # Overview
//
// Splice moves visual node graphs between a portable JSON document and a live
// slot hierarchy. A document lists typed nodes and the wires between them; the
// engine resolves every type, builds the nodes, wires ports, and can write the
// result back out as a new document. The pkg directory is organized into
// three areas:
//
//  1. Model - [typeref], [literal], [graphdoc], [flux] and [nodes]
//  2. Engine - [interchange], [interchange/mode], [cast] and [layout]
//  3. Infrastructure - [pipeline], [render], [cache], [store],
//     [observability] and [httputil]
//
// # Architecture
//
// The typical data flow:
//
//	JSON document (file, store, URL)
//	         ↓
//	    [graphdoc] package (decode + structural validation)
//	         ↓
//	    [interchange] package (import: resolve types, build nodes, wire ports)
//	         ↓
//	    [flux] slot hierarchy
//	         ↓
//	    [interchange] package (export) / [render] package (DOT, SVG, PNG, PDF)
//
// # Quick Start
//
// Compile a document into a fresh world:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/splice/pkg/cache"
//	    "github.com/matzehuels/splice/pkg/graphdoc"
//	    "github.com/matzehuels/splice/pkg/nodes"
//	    "github.com/matzehuels/splice/pkg/pipeline"
//	)
//
//	doc, _ := graphdoc.ReadFile("adder.json")
//	runner := pipeline.NewRunner(nodes.Standard(), cache.NewNullCache(), nil)
//	result, _ := runner.Compile(context.Background(), doc, pipeline.Options{Mode: "space"})
//	fmt.Println(result.Report.Summary())
//
// # Main Packages
//
// ## Model
//
// [typeref] - Generic type descriptors and the registry that resolves them to
// concrete types, including nested generic parameters.
//
// [literal] - Parsing and formatting of literal values stored on input nodes
// (numbers, booleans, strings, colors, vectors).
//
// [graphdoc] - The JSON document format: nodes, the three connection lists,
// import tables, and [graphdoc.Document.Validate] for structural checks.
//
// [flux] - The slot hierarchy that holds live nodes, their ports and fields.
//
// [nodes] - The node catalog. [nodes.Standard] returns the built-in library.
//
// ## Engine
//
// [interchange] - Import and export between documents and slots. Import
// produces a [interchange.Report] with per-stage diagnostics.
//
// [interchange/mode] - Compile modes that decide where imported nodes are
// placed: direct, space and tagged.
//
// [cast] - Finds the adapter node that converts one port type into another.
//
// [layout] - Depth layering and automatic arrangement of node positions.
//
// ## Infrastructure
//
// [pipeline] - Compile, round-trip and render used by both the CLI and the
// HTTP server, with artifact caching.
//
// [render] - Graphviz rendering of documents.
//
// [cache] - Artifact caches on disk, in redis, or disabled.
//
// [store] - Named document storage backed by files, redis or MongoDB.
//
// [observability] - Hooks for compile, render, store and HTTP events.
//
// [httputil] - Fetching documents over HTTP with retries.
//
// # Testing
//
//	go test ./pkg/...              # All tests
//	go test ./pkg/interchange/...  # Specific package
//
// [typeref]: https://pkg.go.dev/github.com/matzehuels/splice/pkg/typeref
// [literal]: https://pkg.go.dev/github.com/matzehuels/splice/pkg/literal
// [graphdoc]: https://pkg.go.dev/github.com/matzehuels/splice/pkg/graphdoc
// [flux]: https://pkg.go.dev/github.com/matzehuels/splice/pkg/flux
// [nodes]: https://pkg.go.dev/github.com/matzehuels/splice/pkg/nodes
// [interchange]: https://pkg.go.dev/github.com/matzehuels/splice/pkg/interchange
// [interchange/mode]: https://pkg.go.dev/github.com/matzehuels/splice/pkg/interchange/mode
// [cast]: https://pkg.go.dev/github.com/matzehuels/splice/pkg/cast
// [layout]: https://pkg.go.dev/github.com/matzehuels/splice/pkg/layout
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/splice/pkg/pipeline
// [render]: https://pkg.go.dev/github.com/matzehuels/splice/pkg/render
// [cache]: https://pkg.go.dev/github.com/matzehuels/splice/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/splice/pkg/store
// [observability]: https://pkg.go.dev/github.com/matzehuels/splice/pkg/observability
// [httputil]: https://pkg.go.dev/github.com/matzehuels/splice/pkg/httputil
package pkg
