package flux

import "github.com/matzehuels/splice/pkg/typeref"

// Node is a typed instance in the graph. It owns its ports, port lists,
// references and global refs; every one of them points back at the node.
//
// Nodes are built with [NewNode] and the Add* methods, normally by a catalog
// that knows the port layout of each node type.
type Node struct {
	Type *typeref.Type

	slot       *Slot
	inputs     []*Port
	outputs    []*Port
	impulses   []*Port
	operations []*Port
	lists      []*PortList
	references []*Reference
	globalRefs []*GlobalRef
	selfOut    *Port
	selfOp     *Port
	extra      Extra
}

// NewNode returns a detached node of type t with no ports.
func NewNode(t *typeref.Type) *Node {
	return &Node{Type: t}
}

// Parent returns the slot the node is attached to.
func (n *Node) Parent() *Slot { return n.slot }

// Slot is an alias of Parent.
func (n *Node) Slot() *Slot { return n.slot }

func (n *Node) port(name string, dir Direction, kind PortKind, t *typeref.Type) *Port {
	return &Port{Name: name, Dir: dir, Kind: kind, Type: t, owner: n, index: -1}
}

// AddInput adds a fixed data input.
func (n *Node) AddInput(name string, t *typeref.Type) *Port {
	p := n.port(name, In, Data, t)
	n.inputs = append(n.inputs, p)
	return p
}

// AddOutput adds a fixed data output.
func (n *Node) AddOutput(name string, t *typeref.Type) *Port {
	p := n.port(name, Out, Data, t)
	n.outputs = append(n.outputs, p)
	return p
}

// AddImpulse adds a fixed impulse.
func (n *Node) AddImpulse(name string) *Port {
	p := n.port(name, Out, Flow, nil)
	n.impulses = append(n.impulses, p)
	return p
}

// AddOperation adds a fixed operation.
func (n *Node) AddOperation(name string) *Port {
	p := n.port(name, In, Flow, nil)
	n.operations = append(n.operations, p)
	return p
}

// AddList adds an empty port list.
func (n *Node) AddList(name string, dir Direction, kind PortKind, t *typeref.Type) *PortList {
	l := &PortList{Name: name, Dir: dir, Kind: kind, Type: t, owner: n}
	n.lists = append(n.lists, l)
	return l
}

// AddReference adds a named reference slot.
func (n *Node) AddReference(name string, t *typeref.Type) *Reference {
	r := &Reference{Name: name, Type: t, owner: n}
	n.references = append(n.references, r)
	return r
}

// AddGlobalRef adds a named global ref.
func (n *Node) AddGlobalRef(name string, valueType *typeref.Type) *GlobalRef {
	g := &GlobalRef{Name: name, ValueType: valueType, owner: n}
	n.globalRefs = append(n.globalRefs, g)
	return g
}

// SetSelfOutput marks the node itself as a data output of type t: data
// inputs can read the node directly.
func (n *Node) SetSelfOutput(t *typeref.Type) *Port {
	n.selfOut = n.port("*", Out, Data, t)
	n.selfOut.self = true
	return n.selfOut
}

// SetSelfOperation marks the node itself as an operation.
func (n *Node) SetSelfOperation() *Port {
	n.selfOp = n.port("*", In, Flow, nil)
	n.selfOp.self = true
	return n.selfOp
}

// SelfOutput returns the port standing for the node as an output, or nil.
func (n *Node) SelfOutput() *Port { return n.selfOut }

// SelfOperation returns the port standing for the node as an operation, or nil.
func (n *Node) SelfOperation() *Port { return n.selfOp }

// SetExtra sets the node-kind-specific value slot.
func (n *Node) SetExtra(e Extra) { n.extra = e }

// Extra returns the node-kind-specific value slot, or nil.
func (n *Node) Extra() Extra { return n.extra }

func (n *Node) Inputs() []*Port          { return append([]*Port(nil), n.inputs...) }
func (n *Node) Outputs() []*Port         { return append([]*Port(nil), n.outputs...) }
func (n *Node) Impulses() []*Port        { return append([]*Port(nil), n.impulses...) }
func (n *Node) Operations() []*Port      { return append([]*Port(nil), n.operations...) }
func (n *Node) Lists() []*PortList       { return append([]*PortList(nil), n.lists...) }
func (n *Node) References() []*Reference { return append([]*Reference(nil), n.references...) }
func (n *Node) GlobalRefs() []*GlobalRef { return append([]*GlobalRef(nil), n.globalRefs...) }

// ListsOf returns the port lists with the given direction and kind.
func (n *Node) ListsOf(dir Direction, kind PortKind) []*PortList {
	var out []*PortList
	for _, l := range n.lists {
		if l.Dir == dir && l.Kind == kind {
			out = append(out, l)
		}
	}
	return out
}

// Fixed returns the fixed port with the given name, direction and kind.
func (n *Node) Fixed(name string, dir Direction, kind PortKind) (*Port, bool) {
	var ports []*Port
	switch {
	case dir == In && kind == Data:
		ports = n.inputs
	case dir == Out && kind == Data:
		ports = n.outputs
	case dir == Out && kind == Flow:
		ports = n.impulses
	default:
		ports = n.operations
	}
	for _, p := range ports {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// List returns the port list with the given name, direction and kind.
func (n *Node) List(name string, dir Direction, kind PortKind) (*PortList, bool) {
	for _, l := range n.lists {
		if l.Name == name && l.Dir == dir && l.Kind == kind {
			return l, true
		}
	}
	return nil, false
}

// ListByName returns the port list with the given name regardless of kind.
func (n *Node) ListByName(name string) (*PortList, bool) {
	for _, l := range n.lists {
		if l.Name == name {
			return l, true
		}
	}
	return nil, false
}

// Reference returns the reference slot with the given name.
func (n *Node) Reference(name string) (*Reference, bool) {
	for _, r := range n.references {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}

// GlobalRef returns the global ref with the given name.
func (n *Node) GlobalRef(name string) (*GlobalRef, bool) {
	for _, g := range n.globalRefs {
		if g.Name == name {
			return g, true
		}
	}
	return nil, false
}
