package mode

import (
	"strings"

	"github.com/matzehuels/splice/pkg/flux"
	"github.com/matzehuels/splice/pkg/typeref"
)

// keyed holds what SpaceScoped and TaggedSlot share: the import root and the
// label lookup through the document's import table.
type keyed struct {
	root  *flux.Slot
	table ImportTable
}

// key returns the sanitized lookup key for (t, index).
func (k keyed) key(t *typeref.Type, index int) (string, bool) {
	label, ok := k.table.Label(t, index)
	if !ok {
		return "", false
	}
	key := Sanitize(label)
	return key, key != ""
}

func (keyed) Cleanup(dest *flux.Slot) { cleanupCompiled(dest) }
func (keyed) SupportsMonopack() bool  { return false }

func valueOf(f *flux.Field, ok bool) (any, bool) {
	if !ok || f.Value == nil {
		return nil, false
	}
	return f.Value, true
}

// SpaceScoped resolves imports through the variable space on the import
// root. The key is matched as a suffix of variable names, so a variable
// named "Imports/My Value" serves the label "My Value!".
type SpaceScoped struct {
	keyed
}

// NewSpaceScoped returns a SpaceScoped mode over root using the labels in table.
func NewSpaceScoped(root *flux.Slot, table ImportTable) *SpaceScoped {
	return &SpaceScoped{keyed{root: root, table: table}}
}

func (*SpaceScoped) Name() string { return "space" }

func (m *SpaceScoped) Import(t *typeref.Type, index int) (any, bool) {
	return valueOf(m.ImportField(t, index))
}

func (m *SpaceScoped) ImportField(t *typeref.Type, index int) (*flux.Field, bool) {
	key, ok := m.key(t, index)
	if !ok {
		return nil, false
	}
	sp := m.root.Space()
	if sp == nil {
		return nil, false
	}
	v, ok := sp.FindSuffix(t, key)
	if !ok {
		return nil, false
	}
	return v.Field, true
}

// Prepare attaches a space named [DefaultSpace] to the import root, unless
// one exists, and a variable "<space>/<key>" for every label that has no
// matching variable yet.
func (m *SpaceScoped) Prepare(table ImportTable) {
	sp := m.root.EnsureSpace(DefaultSpace)
	for _, t := range table.Types() {
		for _, label := range table[t] {
			key := Sanitize(label)
			if key == "" {
				continue
			}
			if _, ok := sp.FindSuffix(t, key); ok {
				continue
			}
			m.root.AttachVariable(flux.NewVariable(sp.Name+"/"+key, t))
		}
	}
}

// TaggedSlot resolves imports among the child slots of the import root: the
// first child whose name ends in the key and that holds a variable of the
// wanted type serves the import.
type TaggedSlot struct {
	keyed
}

// NewTaggedSlot returns a TaggedSlot mode over root using the labels in table.
func NewTaggedSlot(root *flux.Slot, table ImportTable) *TaggedSlot {
	return &TaggedSlot{keyed{root: root, table: table}}
}

func (*TaggedSlot) Name() string { return "tagged" }

func (m *TaggedSlot) Import(t *typeref.Type, index int) (any, bool) {
	return valueOf(m.ImportField(t, index))
}

func (m *TaggedSlot) ImportField(t *typeref.Type, index int) (*flux.Field, bool) {
	key, ok := m.key(t, index)
	if !ok {
		return nil, false
	}
	if v, ok := m.find(t, key); ok {
		return v.Field, true
	}
	return nil, false
}

func (m *TaggedSlot) find(t *typeref.Type, key string) (*flux.Variable, bool) {
	for _, c := range m.root.Children() {
		if c.Tag == CompiledTag || !strings.HasSuffix(c.Name, key) {
			continue
		}
		if v, ok := c.FindVariable(t, ""); ok {
			return v, true
		}
	}
	return nil, false
}

// Prepare creates a child slot named after each key that has no match yet,
// holding one variable of the import type.
func (m *TaggedSlot) Prepare(table ImportTable) {
	for _, t := range table.Types() {
		for _, label := range table[t] {
			key := Sanitize(label)
			if key == "" {
				continue
			}
			if _, ok := m.find(t, key); ok {
				continue
			}
			m.root.AddChild(key).AttachVariable(flux.NewVariable(key, t))
		}
	}
}
