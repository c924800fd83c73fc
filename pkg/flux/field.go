package flux

import (
	"strings"

	"github.com/matzehuels/splice/pkg/typeref"
)

// Field is a typed value cell. Node literals, global value holders, import
// collection entries and variables all store their value in a Field.
type Field struct {
	Name  string
	Type  *typeref.Type
	Value any

	slot     *Slot
	drivenBy *Link
}

// NewField returns a detached field.
func NewField(name string, t *typeref.Type, v any) *Field {
	return &Field{Name: name, Type: t, Value: v}
}

// Parent returns the slot the field is attached to.
func (f *Field) Parent() *Slot { return f.slot }

// DrivenBy returns the link currently driving f, or nil.
func (f *Field) DrivenBy() *Link { return f.drivenBy }

// Link is a one-way drive: while active, Target mirrors Source.
type Link struct {
	Source *Field
	Target *Field

	slot *Slot
}

// Drive attaches a link to s that keeps target synced from source and runs
// one sync immediately. A target already driven by another link is taken over.
func Drive(s *Slot, source, target *Field) *Link {
	if prev := target.drivenBy; prev != nil {
		prev.detach()
	}
	l := &Link{Source: source, Target: target, slot: s}
	target.drivenBy = l
	s.links = append(s.links, l)
	l.Sync()
	return l
}

// Parent returns the slot owning the link.
func (l *Link) Parent() *Slot { return l.slot }

// Active reports whether the link still drives its target.
func (l *Link) Active() bool { return l.Target != nil && l.Target.drivenBy == l }

// Sync copies the source value into the target.
func (l *Link) Sync() {
	if l.Active() && l.Source != nil {
		l.Target.Value = l.Source.Value
	}
}

func (l *Link) detach() {
	if l.Active() {
		l.Target.drivenBy = nil
	}
}

// Collection is an ordered list of import values of one type attached to an
// import root. Entries are fields so they can be driven from.
type Collection struct {
	TypeName string
	Type     *typeref.Type
	Items    []*Field

	slot *Slot
}

// NewCollection returns an empty collection for t.
func NewCollection(t *typeref.Type) *Collection {
	return &Collection{TypeName: t.String(), Type: t}
}

// Parent returns the slot the collection is attached to.
func (c *Collection) Parent() *Slot { return c.slot }

// Len returns the number of entries.
func (c *Collection) Len() int { return len(c.Items) }

// At returns entry i, or nil when i is out of range.
func (c *Collection) At(i int) *Field {
	if i < 0 || i >= len(c.Items) {
		return nil
	}
	return c.Items[i]
}

// Grow appends empty entries until the collection holds at least n.
func (c *Collection) Grow(n int) {
	for len(c.Items) < n {
		f := NewField("", c.Type, nil)
		f.slot = c.slot
		c.Items = append(c.Items, f)
	}
}

// Variable is a named field registered with a variable space.
type Variable struct {
	Name  string
	Field *Field

	slot *Slot
}

// NewVariable returns a detached variable of type t.
func NewVariable(name string, t *typeref.Type) *Variable {
	return &Variable{Name: name, Field: NewField(name, t, nil)}
}

// Parent returns the slot the variable is attached to.
func (v *Variable) Parent() *Slot { return v.slot }

// Type returns the variable's value type.
func (v *Variable) Type() *typeref.Type { return v.Field.Type }

// Space is a namespaced set of variables rooted at one slot. Variables
// attached anywhere below the slot join it.
type Space struct {
	Name string

	slot      *Slot
	variables []*Variable
}

// Parent returns the slot the space is attached to.
func (sp *Space) Parent() *Slot { return sp.slot }

// Variables returns the variables registered with the space.
func (sp *Space) Variables() []*Variable { return append([]*Variable(nil), sp.variables...) }

// FindSuffix returns the first variable of type t whose name ends in suffix.
func (sp *Space) FindSuffix(t *typeref.Type, suffix string) (*Variable, bool) {
	return findSuffix(sp.variables, t, suffix)
}

func findSuffix(vars []*Variable, t *typeref.Type, suffix string) (*Variable, bool) {
	for _, v := range vars {
		if v.Type() == t && strings.HasSuffix(v.Name, suffix) {
			return v, true
		}
	}
	return nil, false
}

// FindVariable returns the first variable attached directly to s of type t
// whose name ends in suffix.
func (s *Slot) FindVariable(t *typeref.Type, suffix string) (*Variable, bool) {
	return findSuffix(s.variables, t, suffix)
}

// Comment is a free-floating note.
type Comment struct {
	Message string

	slot *Slot
}

// Parent returns the slot the comment is attached to.
func (c *Comment) Parent() *Slot { return c.slot }
