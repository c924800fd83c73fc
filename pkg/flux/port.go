package flux

import (
	"github.com/matzehuels/splice/pkg/errors"
	"github.com/matzehuels/splice/pkg/typeref"
)

// Direction is the side of a node a port sits on.
type Direction int

const (
	In Direction = iota
	Out
)

func (d Direction) String() string {
	if d == Out {
		return "out"
	}
	return "in"
}

// PortKind separates value ports from control-flow ports.
type PortKind int

const (
	// Data ports carry values: inputs read outputs.
	Data PortKind = iota
	// Flow ports carry control: impulses (out) trigger operations (in).
	Flow
)

func (k PortKind) String() string {
	if k == Flow {
		return "flow"
	}
	return "data"
}

// Port is a connection point owned by exactly one node. Data inputs and
// impulses hold a target: the output they read or the operation they trigger.
type Port struct {
	Name string
	Dir  Direction
	Kind PortKind
	// Type is the value type of a data port; nil for flow ports.
	Type *typeref.Type

	owner  *Node
	list   *PortList
	index  int
	self   bool
	target *Port
}

// Owner returns the node owning p.
func (p *Port) Owner() *Node { return p.owner }

// List returns the port list p belongs to, or nil for fixed ports.
func (p *Port) List() *PortList { return p.list }

// Index returns p's position in its list, or -1 for fixed ports.
func (p *Port) Index() int {
	if p.list == nil {
		return -1
	}
	return p.index
}

// IsSelf reports whether p stands for its owning node itself.
func (p *Port) IsSelf() bool { return p.self }

// Target returns the port p is connected to, or nil. Only inputs and
// impulses have targets.
func (p *Port) Target() *Port { return p.target }

// Disconnect clears p's target.
func (p *Port) Disconnect() { p.target = nil }

// ConnectData makes input read output. The output type must be assignable to
// the input type.
func ConnectData(output, input *Port) error {
	if output == nil || input == nil {
		return errors.New(errors.ErrCodePortResolution, "missing data endpoint")
	}
	if output.Kind != Data || output.Dir != Out {
		return errors.New(errors.ErrCodePortResolution, "%s is not a data output", output.Name)
	}
	if input.Kind != Data || input.Dir != In {
		return errors.New(errors.ErrCodePortResolution, "%s is not a data input", input.Name)
	}
	if output.Type != nil && input.Type != nil && output.Type != input.Type && !output.Type.AssignableTo(input.Type) {
		return errors.New(errors.ErrCodeConversion, "cannot connect %s output to %s input", output.Type, input.Type)
	}
	input.target = output
	return nil
}

// ConnectFlow makes impulse trigger operation.
func ConnectFlow(impulse, operation *Port) error {
	if impulse == nil || operation == nil {
		return errors.New(errors.ErrCodePortResolution, "missing flow endpoint")
	}
	if impulse.Kind != Flow || impulse.Dir != Out {
		return errors.New(errors.ErrCodePortResolution, "%s is not an impulse", impulse.Name)
	}
	if operation.Kind != Flow || operation.Dir != In {
		return errors.New(errors.ErrCodePortResolution, "%s is not an operation", operation.Name)
	}
	impulse.target = operation
	return nil
}

// PortList is a variadic port whose element count can grow.
type PortList struct {
	Name string
	Dir  Direction
	Kind PortKind
	Type *typeref.Type

	owner *Node
	ports []*Port
}

// Owner returns the node owning l.
func (l *PortList) Owner() *Node { return l.owner }

// Len returns the number of elements.
func (l *PortList) Len() int { return len(l.ports) }

// At returns element i, or nil when i is out of range.
func (l *PortList) At(i int) *Port {
	if i < 0 || i >= len(l.ports) {
		return nil
	}
	return l.ports[i]
}

// Ports returns the elements in order.
func (l *PortList) Ports() []*Port { return append([]*Port(nil), l.ports...) }

// Grow adds elements until l has at least n. It never removes elements, so
// existing connections survive any Grow call.
func (l *PortList) Grow(n int) {
	for len(l.ports) < n {
		l.ports = append(l.ports, &Port{
			Name:  l.Name,
			Dir:   l.Dir,
			Kind:  l.Kind,
			Type:  l.Type,
			owner: l.owner,
			list:  l,
			index: len(l.ports),
		})
	}
}

// Reference is a named slot on a node pointing directly at another node.
type Reference struct {
	Name string
	// Type constrains the target node type; nil accepts any node.
	Type *typeref.Type

	owner  *Node
	target *Node
}

// Owner returns the node holding r.
func (r *Reference) Owner() *Node { return r.owner }

// Target returns the referenced node, or nil.
func (r *Reference) Target() *Node { return r.target }

// Set points r at n. A nil n clears the reference.
func (r *Reference) Set(n *Node) error {
	if n != nil && r.Type != nil && !n.Type.AssignableTo(r.Type) {
		return errors.New(errors.ErrCodeConversion, "reference %s wants %s, got %s", r.Name, r.Type, n.Type)
	}
	r.target = n
	return nil
}

// GlobalRef is a named external attachment on a node. At import time a fresh
// holder field is attached next to the node and bound here.
type GlobalRef struct {
	Name string
	// ValueType is the type of the value the holder stores.
	ValueType *typeref.Type

	owner  *Node
	holder *Field
}

// Owner returns the node holding g.
func (g *GlobalRef) Owner() *Node { return g.owner }

// Holder returns the bound holder, or nil.
func (g *GlobalRef) Holder() *Field { return g.holder }

// Bind sets the holder.
func (g *GlobalRef) Bind(f *Field) { g.holder = f }
