package mode

import (
	"github.com/matzehuels/splice/pkg/flux"
	"github.com/matzehuels/splice/pkg/typeref"
)

// Direct resolves an index as a position in the import root's collection for
// the wanted type. Collections must be long enough before importing; see
// [Direct.Prepare].
type Direct struct {
	root *flux.Slot
}

// NewDirect returns a Direct mode reading collections from root.
func NewDirect(root *flux.Slot) *Direct {
	return &Direct{root: root}
}

func (*Direct) Name() string           { return "direct" }
func (*Direct) SupportsMonopack() bool { return true }

func (*Direct) Cleanup(dest *flux.Slot) { cleanupCompiled(dest) }

func (m *Direct) entry(t *typeref.Type, index int) *flux.Field {
	if t == nil {
		return nil
	}
	c, ok := m.root.Collection(t.String())
	if !ok {
		return nil
	}
	return c.At(index)
}

// Import returns the value of entry index. Empty entries report false.
func (m *Direct) Import(t *typeref.Type, index int) (any, bool) {
	f := m.entry(t, index)
	if f == nil || f.Value == nil {
		return nil, false
	}
	return f.Value, true
}

// ImportField returns entry index itself.
func (m *Direct) ImportField(t *typeref.Type, index int) (*flux.Field, bool) {
	f := m.entry(t, index)
	return f, f != nil
}

// Prepare attaches a collection for every imported type and grows it to the
// number of labels. Existing entries are kept.
func (m *Direct) Prepare(table ImportTable) {
	for _, t := range table.Types() {
		c := m.root.EnsureCollection(flux.NewCollection(t))
		c.Grow(len(table[t]))
	}
}
