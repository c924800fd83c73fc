// Package pipeline runs documents through the engine: compile into a fresh
// in-memory world, round-trip, and render.
//
// The CLI and the API server both go through a [Runner], so a document
// compiles the same way whichever entry point receives it.
//
// # Usage
//
//	runner := pipeline.NewRunner(nodes.Standard(), nil, logger)
//	res, err := runner.Compile(ctx, doc, pipeline.Options{Mode: "space", Prepare: true})
//	fmt.Println(res.Report.Summary())
//
//	// Compile and export again
//	out, res, err := runner.RoundTrip(ctx, doc, pipeline.Options{})
//
//	// Render with artifact caching
//	svg, hit, err := runner.Render(ctx, doc, pipeline.RenderOptions{Format: "svg"})
package pipeline

import (
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/splice/pkg/cache"
	"github.com/matzehuels/splice/pkg/errors"
	"github.com/matzehuels/splice/pkg/flux"
	"github.com/matzehuels/splice/pkg/interchange"
	"github.com/matzehuels/splice/pkg/interchange/mode"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultMode is the compile mode used when none is given.
	DefaultMode = "direct"

	// DefaultScale is the PNG scale factor.
	DefaultScale = 2.0

	// DefaultDirection is the graphviz rankdir.
	DefaultDirection = "LR"
)

// World layout of a compile run.
const (
	WorldName   = "World"
	ImportsName = "Imports"
	GraphName   = "Graph"
)

// Format constants for render output.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// ValidFormats is the set of supported render formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
	FormatPNG: true,
	FormatPDF: true,
}

// ValidDirections is the set of accepted graphviz rank directions.
var ValidDirections = map[string]bool{"LR": true, "RL": true, "TB": true, "BT": true}

// =============================================================================
// Options
// =============================================================================

// Options configures one compile run. It supports JSON for API requests.
type Options struct {
	// Mode is a compile mode name: direct, space or tagged.
	Mode string `json:"mode,omitempty"`
	// Monopack puts every node into one container when the mode allows it.
	Monopack bool `json:"monopack,omitempty"`
	// Persistent marks created containers persistent.
	Persistent bool `json:"persistent,omitempty"`
	// Arrange lays out documents flagged rearrangeExport.
	Arrange bool `json:"arrange,omitempty"`
	// Prepare creates the import structures the document needs before the
	// import, so every import index resolves (to an empty value).
	Prepare bool `json:"prepare,omitempty"`
	// Casts inserts adapter nodes between mismatched data ports.
	Casts bool `json:"casts,omitempty"`
}

// ValidateAndSetDefaults checks the mode name and applies defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	o.Mode = strings.ToLower(strings.TrimSpace(o.Mode))
	if o.Mode == "" {
		o.Mode = DefaultMode
	}
	// Parse also accepts the legacy aliases.
	if _, err := mode.Parse(o.Mode, flux.NewRoot(""), nil); err != nil {
		return err
	}
	return nil
}

// RenderOptions configures one render.
type RenderOptions struct {
	Format    string  `json:"format,omitempty"`
	Detailed  bool    `json:"detailed,omitempty"`
	Direction string  `json:"direction,omitempty"`
	Scale     float64 `json:"scale,omitempty"`
}

// ValidateAndSetDefaults checks the format and direction and applies defaults.
func (o *RenderOptions) ValidateAndSetDefaults() error {
	if o.Format == "" {
		o.Format = FormatSVG
	}
	if err := ValidateFormat(o.Format); err != nil {
		return err
	}
	if o.Direction == "" {
		o.Direction = DefaultDirection
	}
	o.Direction = strings.ToUpper(o.Direction)
	if !ValidDirections[o.Direction] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid direction %q (must be one of: LR, RL, TB, BT)", o.Direction)
	}
	if o.Format == FormatPNG && o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Format != FormatPNG {
		o.Scale = 0
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %v", o.Scale)
	}
	return nil
}

// ArtifactKeyOpts returns cache key options for the render.
func (o *RenderOptions) ArtifactKeyOpts() cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:    o.Format,
		Detailed:  o.Detailed,
		Direction: o.Direction,
		Scale:     o.Scale,
	}
}

// ValidateFormat checks that a render format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		names := make([]string, 0, len(ValidFormats))
		for f := range ValidFormats {
			names = append(names, f)
		}
		slices.Sort(names)
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: %s)", format, strings.Join(names, ", "))
	}
	return nil
}

// =============================================================================
// Results
// =============================================================================

// Result is the outcome of a compile run.
type Result struct {
	// World is the root of the in-memory world.
	World *flux.Slot
	// Imports is the import root the mode read from.
	Imports *flux.Slot
	// Graph is the destination slot the document was compiled into.
	Graph *flux.Slot

	// Mode is the mode that ran.
	Mode mode.CompileMode
	// Table is the document's import table resolved against the registry.
	Table mode.ImportTable
	// Report is the import report. Diagnostics raised while resolving the
	// import table come first.
	Report *interchange.Report

	Stats Stats
}

// Stats contains compile statistics.
type Stats struct {
	CompileTime time.Duration
}
