// Package mode provides the strategies that resolve import indices to live
// values at import time.
//
// A document refers to out-of-graph values by type and index. How an index
// becomes a value depends on how the destination world exposes its imports:
//
//   - [Direct]: one ordered [flux.Collection] per type on the import root;
//     the index is a plain position.
//   - [SpaceScoped]: a [flux.Space] on the import root; the index selects a
//     label from the document's import table, the label is reduced with
//     [Sanitize] and matched as a suffix of the space's variable names.
//   - [TaggedSlot]: the same key, matched against child slots of the import
//     root that hold a variable of the wanted type.
//
// Every mode uses the same [Sanitize], so labels written at export time map
// to the same key whichever mode imports them.
package mode

import (
	"sort"
	"strings"
	"unicode"

	"github.com/matzehuels/splice/pkg/errors"
	"github.com/matzehuels/splice/pkg/flux"
	"github.com/matzehuels/splice/pkg/typeref"
)

// CompiledTag marks slots created by an import. Cleanup removes them.
const CompiledTag = "Compiled"

// DefaultSpace is the variable space name SpaceScoped prepares.
const DefaultSpace = "Imports"

// CompileMode resolves import indices for one import.
type CompileMode interface {
	// Name is the configuration name of the mode.
	Name() string
	// SupportsMonopack reports whether all nodes may share one container.
	SupportsMonopack() bool
	// Cleanup removes the output of a previous import from dest.
	Cleanup(dest *flux.Slot)
	// Import returns the value stored for (t, index): a plain value or a
	// live element.
	Import(t *typeref.Type, index int) (any, bool)
	// ImportField returns the live field stored for (t, index), for callers
	// that drive from it rather than copy it once.
	ImportField(t *typeref.Type, index int) (*flux.Field, bool)
}

// Preparer is implemented by modes that can create the import structures a
// document needs, so the user only has to fill in values.
type Preparer interface {
	Prepare(table ImportTable)
}

// ImportTable maps each imported type to the labels recorded for it. The
// position of a label is its import index.
type ImportTable map[*typeref.Type][]string

// Label returns the label at index for t.
func (t ImportTable) Label(typ *typeref.Type, index int) (string, bool) {
	labels := t[typ]
	if index < 0 || index >= len(labels) {
		return "", false
	}
	return labels[index], true
}

// Types returns the imported types sorted by name.
func (t ImportTable) Types() []*typeref.Type {
	out := make([]*typeref.Type, 0, len(t))
	for typ := range t {
		out = append(out, typ)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Sanitize reduces an import label to its lookup key: '/' is dropped, space,
// '.' and '_' are kept, and all other symbols, punctuation and whitespace are
// dropped.
func Sanitize(label string) string {
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		if keepRune(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func keepRune(r rune) bool {
	if r == '/' {
		return false
	}
	if r == ' ' || r == '.' || r == '_' {
		return true
	}
	return !(unicode.IsSymbol(r) || unicode.IsPunct(r) || unicode.IsSpace(r))
}

// cleanupCompiled destroys the direct children of dest tagged CompiledTag.
func cleanupCompiled(dest *flux.Slot) {
	for _, c := range dest.Children() {
		if c.Tag == CompiledTag {
			c.Destroy()
		}
	}
}

// Names lists the accepted configuration names.
var Names = []string{"direct", "space", "tagged"}

// Parse returns the mode registered under name. The legacy names
// "barebones", "solder" and "redprint" are accepted as aliases.
func Parse(name string, root *flux.Slot, table ImportTable) (CompileMode, error) {
	if root == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "import root is required")
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "direct", "barebones":
		return NewDirect(root), nil
	case "space", "solder":
		return NewSpaceScoped(root, table), nil
	case "tagged", "redprint":
		return NewTaggedSlot(root, table), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown compile mode %q (want one of %s)", name, strings.Join(Names, ", "))
}
