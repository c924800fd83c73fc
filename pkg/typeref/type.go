package typeref

import (
	"slices"
	"strings"
)

// Kind classifies a type for the purposes of literal encoding, import lookup
// and cast selection.
type Kind int

const (
	// KindInvalid is the zero Kind.
	KindInvalid Kind = iota
	// KindValue is a plain value type (numbers, vectors, colors, strings).
	KindValue
	// KindEnum is a value type restricted to a closed set of member names.
	KindEnum
	// KindOptional is a value type that may be absent (Optional<T>).
	KindOptional
	// KindObject is the "any-object" root every reference converts to.
	KindObject
	// KindReference is a class or interface type whose values are live elements.
	KindReference
	// KindNode is a node type that can be attached to a container.
	KindNode
)

func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindEnum:
		return "enum"
	case KindOptional:
		return "optional"
	case KindObject:
		return "object"
	case KindReference:
		return "reference"
	case KindNode:
		return "node"
	default:
		return "invalid"
	}
}

// Constraint validates the arguments a generic definition is closed over.
// A non-nil error aborts the construction of the closed type.
type Constraint func(args []*Type) error

// Type is a member of a [Registry]. It is either a non-generic type, an open
// generic definition (Arity > 0, no arguments), or a closed generic type
// (Definition != nil).
//
// Types are created by a Registry and compared by pointer: closing the same
// definition over the same arguments always yields the same *Type.
type Type struct {
	name       string
	kind       Kind
	arity      int
	def        *Type
	args       []*Type
	literal    bool
	iface      bool
	enum       []string
	supers     []*Type
	constraint Constraint
}

// Name returns the canonical name. For closed generic types this is the name of
// the open definition; use [Type.String] for the full closed name.
func (t *Type) Name() string {
	if t.def != nil {
		return t.def.name
	}
	return t.name
}

// ShortName returns the last dotted segment of the name, e.g. "Add" for
// "Flux.Math.Add".
func (t *Type) ShortName() string {
	name := t.Name()
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// String returns the full name including type arguments, e.g.
// "Flux.Math.Add<float>".
func (t *Type) String() string {
	if t == nil {
		return "void"
	}
	if len(t.args) == 0 {
		if t.arity > 0 {
			return t.name + "<" + strings.Repeat(",", t.arity-1) + ">"
		}
		return t.name
	}
	parts := make([]string, len(t.args))
	for i, a := range t.args {
		parts[i] = a.String()
	}
	return t.Name() + "<" + strings.Join(parts, ",") + ">"
}

// Kind returns the type's kind. Closed generic types inherit the kind of
// their definition.
func (t *Type) Kind() Kind { return t.kind }

// Arity returns the number of type parameters of an open definition, or the
// number of type arguments of a closed type.
func (t *Type) Arity() int {
	if t.def != nil {
		return len(t.args)
	}
	return t.arity
}

// IsGeneric reports whether t is a closed generic type.
func (t *Type) IsGeneric() bool { return t.def != nil }

// IsGenericDefinition reports whether t is an open generic definition.
func (t *Type) IsGenericDefinition() bool { return t.def == nil && t.arity > 0 }

// Definition returns the open definition of a closed generic type, or nil.
func (t *Type) Definition() *Type { return t.def }

// Args returns the type arguments of a closed generic type.
func (t *Type) Args() []*Type { return slices.Clone(t.args) }

// Arg returns the i-th type argument, or nil if out of range.
func (t *Type) Arg(i int) *Type {
	if i < 0 || i >= len(t.args) {
		return nil
	}
	return t.args[i]
}

// IsLiteral reports whether values of t can be written as document text.
// Enums are always literal.
func (t *Type) IsLiteral() bool { return t.literal || t.kind == KindEnum }

// IsEnum reports whether t is an enum type.
func (t *Type) IsEnum() bool { return t.kind == KindEnum }

// EnumValues returns the member names of an enum type.
func (t *Type) EnumValues() []string { return slices.Clone(t.enum) }

// IsInterface reports whether t is an interface reference type.
func (t *Type) IsInterface() bool { return t.iface }

// IsValue reports whether t holds plain values rather than live elements.
func (t *Type) IsValue() bool {
	return t.kind == KindValue || t.kind == KindEnum || t.kind == KindOptional
}

// IsReference reports whether values of t are live elements (references,
// objects or nodes).
func (t *Type) IsReference() bool {
	return t.kind == KindReference || t.kind == KindObject || t.kind == KindNode
}

// Supertypes returns the direct supertypes of t.
func (t *Type) Supertypes() []*Type { return slices.Clone(t.supers) }

// AssignableTo reports whether a value of t can be used where u is expected:
// identical types, any reference to the object root, or u reachable through
// t's supertypes.
func (t *Type) AssignableTo(u *Type) bool {
	if t == nil || u == nil {
		return false
	}
	if t == u {
		return true
	}
	if u.kind == KindObject && t.IsReference() {
		return true
	}
	seen := map[*Type]bool{}
	stack := slices.Clone(t.supers)
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s == u {
			return true
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		stack = append(stack, s.supers...)
	}
	return false
}
