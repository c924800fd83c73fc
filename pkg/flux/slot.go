package flux

import (
	"fmt"
	"io"
	"strings"
)

// Vec3 is a local position.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v+o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Element is anything that lives in the slot hierarchy.
type Element interface {
	// Parent returns the slot the element is attached to, or the parent slot
	// for slots. It is nil for roots and detached elements.
	Parent() *Slot
}

// Slot is a named container in the world hierarchy. Slots own child slots
// and the components attached to them: nodes, fields, drive links, import
// collections, variables, a variable space and comments.
type Slot struct {
	Name       string
	Tag        string
	Position   Vec3
	Persistent bool

	parent      *Slot
	children    []*Slot
	nodes       []*Node
	fields      []*Field
	links       []*Link
	collections []*Collection
	variables   []*Variable
	comments    []*Comment
	space       *Space
	destroyed   bool
}

// NewRoot creates a detached slot.
func NewRoot(name string) *Slot {
	return &Slot{Name: name, Persistent: true}
}

// Parent returns the parent slot.
func (s *Slot) Parent() *Slot { return s.parent }

// AddChild creates a slot under s.
func (s *Slot) AddChild(name string) *Slot {
	c := &Slot{Name: name, Persistent: true, parent: s}
	s.children = append(s.children, c)
	return c
}

// Children returns the direct child slots in insertion order.
func (s *Slot) Children() []*Slot { return append([]*Slot(nil), s.children...) }

// Child returns the first direct child with the given name.
func (s *Slot) Child(name string) (*Slot, bool) {
	for _, c := range s.children {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Destroy detaches s and its subtree from the hierarchy. Drive links owned
// by the subtree stop syncing.
func (s *Slot) Destroy() {
	if s.parent != nil {
		siblings := s.parent.children
		for i, c := range siblings {
			if c == s {
				s.parent.children = append(siblings[:i:i], siblings[i+1:]...)
				break
			}
		}
		s.parent = nil
	}
	s.Walk(func(d *Slot) bool {
		d.destroyed = true
		for _, l := range d.links {
			l.detach()
		}
		return true
	})
}

// Destroyed reports whether s was destroyed.
func (s *Slot) Destroyed() bool { return s.destroyed }

// Walk visits s and its descendants depth-first. Returning false from fn
// skips the children of the visited slot.
func (s *Slot) Walk(fn func(*Slot) bool) {
	if !fn(s) {
		return
	}
	for _, c := range s.children {
		c.Walk(fn)
	}
}

// NearestNamed returns s or the closest ancestor with a non-empty name.
func (s *Slot) NearestNamed() *Slot {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.Name != "" {
			return cur
		}
	}
	return nil
}

// Path returns the slash-separated names from the root to s.
func (s *Slot) Path() string {
	var parts []string
	for cur := s; cur != nil; cur = cur.parent {
		parts = append(parts, cur.Name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

// AttachNode attaches n to s. A node is attached to at most one slot.
func (s *Slot) AttachNode(n *Node) {
	if n.slot != nil {
		n.slot.detachNode(n)
	}
	n.slot = s
	s.nodes = append(s.nodes, n)
}

func (s *Slot) detachNode(n *Node) {
	for i, m := range s.nodes {
		if m == n {
			s.nodes = append(s.nodes[:i:i], s.nodes[i+1:]...)
			return
		}
	}
}

// Nodes returns the nodes attached directly to s.
func (s *Slot) Nodes() []*Node { return append([]*Node(nil), s.nodes...) }

// AttachField attaches a new field to s. Global value holders and import
// values are fields.
func (s *Slot) AttachField(f *Field) *Field {
	f.slot = s
	s.fields = append(s.fields, f)
	return f
}

// Fields returns the fields attached directly to s.
func (s *Slot) Fields() []*Field { return append([]*Field(nil), s.fields...) }

// Links returns the drive links attached directly to s.
func (s *Slot) Links() []*Link { return append([]*Link(nil), s.links...) }

// Collection returns the import collection for the named type attached to s.
func (s *Slot) Collection(name string) (*Collection, bool) {
	for _, c := range s.collections {
		if c.TypeName == name {
			return c, true
		}
	}
	return nil, false
}

// EnsureCollection returns the collection already attached for c's type, or
// attaches c.
func (s *Slot) EnsureCollection(c *Collection) *Collection {
	if have, ok := s.Collection(c.TypeName); ok {
		return have
	}
	c.slot = s
	s.collections = append(s.collections, c)
	return c
}

// Collections returns the import collections attached to s.
func (s *Slot) Collections() []*Collection { return append([]*Collection(nil), s.collections...) }

// AttachVariable attaches a named variable to s. If s or one of its
// ancestors carries a [Space], the variable also joins the nearest one.
func (s *Slot) AttachVariable(v *Variable) *Variable {
	v.slot = s
	v.Field.slot = s
	s.variables = append(s.variables, v)
	for cur := s; cur != nil; cur = cur.parent {
		if cur.space != nil {
			cur.space.variables = append(cur.space.variables, v)
			break
		}
	}
	return v
}

// Variables returns the variables attached directly to s.
func (s *Slot) Variables() []*Variable { return append([]*Variable(nil), s.variables...) }

// Space returns the variable space attached to s.
func (s *Slot) Space() *Space { return s.space }

// EnsureSpace attaches a variable space with the given name if s has none.
// Variables already attached below s join the new space.
func (s *Slot) EnsureSpace(name string) *Space {
	if s.space != nil {
		return s.space
	}
	sp := &Space{Name: name, slot: s}
	s.Walk(func(d *Slot) bool {
		if d != s && d.space != nil {
			return false
		}
		sp.variables = append(sp.variables, d.variables...)
		return true
	})
	s.space = sp
	return sp
}

// AttachComment attaches a comment to s.
func (s *Slot) AttachComment(c *Comment) *Comment {
	c.slot = s
	s.comments = append(s.comments, c)
	return c
}

// Comments returns the comments attached directly to s.
func (s *Slot) Comments() []*Comment { return append([]*Comment(nil), s.comments...) }

// WriteTree prints the hierarchy below s, one slot per line with its nodes.
func (s *Slot) WriteTree(w io.Writer) error {
	return s.writeTree(w, 0)
}

func (s *Slot) writeTree(w io.Writer, depth int) error {
	line := strings.Repeat("  ", depth) + s.Name
	if s.Tag != "" {
		line += " [" + s.Tag + "]"
	}
	for _, n := range s.nodes {
		line += " " + n.Type.String()
	}
	if _, err := fmt.Fprintln(w, line); err != nil {
		return err
	}
	for _, c := range s.children {
		if err := c.writeTree(w, depth+1); err != nil {
			return err
		}
	}
	return nil
}
