// Package cast picks the adapter node to insert when an output is connected
// to an input of a different type.
//
// Selection runs in order and the first match wins:
//
//  1. plain value -> object: ValueToObjectCast<A>
//  2. optional value -> object: NullableToObjectCast<inner>
//  3. plain value -> plain value: the registered explicit cast for (A, B)
//  4. reference -> reference, where either type is assignable to the other:
//     ObjectCast<A, B>
//
// Anything else is rejected with a CONVERSION error.
package cast

import (
	"github.com/matzehuels/splice/pkg/errors"
	"github.com/matzehuels/splice/pkg/flux"
	"github.com/matzehuels/splice/pkg/typeref"
)

// Names are the type names the resolver looks adapters up by.
type Names struct {
	Object         string
	ValueToObject  string
	NullableObject string
	ObjectCast     string
	// ExplicitPrefix and ExplicitInfix build explicit cast names:
	// Prefix + A + Infix + B, e.g. "Flux.Casts.Cast_int_To_float".
	ExplicitPrefix string
	ExplicitInfix  string
}

// DefaultNames match the standard node library.
var DefaultNames = Names{
	Object:         "object",
	ValueToObject:  "Flux.Casts.ValueToObjectCast",
	NullableObject: "Flux.Casts.NullableToObjectCast",
	ObjectCast:     "Flux.Casts.ObjectCast",
	ExplicitPrefix: "Flux.Casts.Cast_",
	ExplicitInfix:  "_To_",
}

// ExplicitName returns the name of the explicit cast node from a to b.
func (n Names) ExplicitName(a, b *typeref.Type) string {
	return n.ExplicitPrefix + a.String() + n.ExplicitInfix + b.String()
}

// Resolver selects adapters from a registry.
type Resolver struct {
	reg   *typeref.Registry
	names Names
}

// NewResolver returns a resolver using [DefaultNames].
func NewResolver(reg *typeref.Registry) *Resolver {
	return &Resolver{reg: reg, names: DefaultNames}
}

// WithNames returns a copy of r that looks adapters up under names.
func (r *Resolver) WithNames(names Names) *Resolver {
	return &Resolver{reg: r.reg, names: names}
}

// Convertible reports whether an output of type from can feed an input of
// type to without an adapter.
func Convertible(from, to *typeref.Type) bool {
	if from == nil || to == nil {
		return false
	}
	return from == to || (from.IsReference() && from.AssignableTo(to))
}

// Resolve returns the adapter node type for connecting from to to. It
// returns (nil, nil) when the types are convertible and no adapter is needed.
func (r *Resolver) Resolve(from, to *typeref.Type) (*typeref.Type, error) {
	if from == nil || to == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "cast endpoints must not be void")
	}
	if Convertible(from, to) {
		return nil, nil
	}

	plain := func(t *typeref.Type) bool { return t.Kind() == typeref.KindValue || t.Kind() == typeref.KindEnum }
	reference := func(t *typeref.Type) bool {
		return t.Kind() == typeref.KindReference || t.Kind() == typeref.KindObject
	}

	switch {
	case plain(from) && to.Kind() == typeref.KindObject:
		if t, ok := r.generic(r.names.ValueToObject, from); ok {
			return t, nil
		}
	case from.Kind() == typeref.KindOptional && to.Kind() == typeref.KindObject:
		if inner := from.Arg(0); inner != nil {
			if t, ok := r.generic(r.names.NullableObject, inner); ok {
				return t, nil
			}
		}
	case plain(from) && plain(to):
		if t, ok := r.reg.Lookup(r.names.ExplicitName(from, to)); ok && t.Kind() == typeref.KindNode {
			return t, nil
		}
	case reference(from) && reference(to):
		if from.AssignableTo(to) || to.AssignableTo(from) {
			if t, ok := r.generic(r.names.ObjectCast, from, to); ok {
				return t, nil
			}
		}
	}
	return nil, errors.New(errors.ErrCodeConversion, "no conversion from %s to %s", from, to)
}

func (r *Resolver) generic(name string, args ...*typeref.Type) (*typeref.Type, bool) {
	def, ok := r.reg.LookupGeneric(name, len(args))
	if !ok {
		return nil, false
	}
	t, err := r.reg.Close(def, args...)
	if err != nil {
		return nil, false
	}
	return t, true
}

// Instantiator creates live nodes. The standard node library implements it.
type Instantiator interface {
	Instantiate(t *typeref.Type, parent *flux.Slot) (*flux.Node, error)
}

// AdapterInput is the name of the input every adapter node reads from.
const AdapterInput = "Input"

// Connect wires output into input, inserting an adapter node under parent
// when the port types differ. It returns the adapter, or nil when the ports
// were connected directly.
func (r *Resolver) Connect(cat Instantiator, parent *flux.Slot, output, input *flux.Port) (*flux.Node, error) {
	if output == nil || input == nil {
		return nil, errors.New(errors.ErrCodePortResolution, "missing endpoint")
	}
	adapter, err := r.Resolve(output.Type, input.Type)
	if err != nil {
		return nil, err
	}
	if adapter == nil {
		return nil, flux.ConnectData(output, input)
	}
	n, err := cat.Instantiate(adapter, parent)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeTypeResolution, err, "instantiate %s", adapter)
	}
	in, ok := n.Fixed(AdapterInput, flux.In, flux.Data)
	out := n.SelfOutput()
	if !ok || out == nil {
		return nil, errors.New(errors.ErrCodePortResolution, "%s is not an adapter node", adapter)
	}
	if err := flux.ConnectData(output, in); err != nil {
		return nil, err
	}
	if err := flux.ConnectData(out, input); err != nil {
		return nil, err
	}
	return n, nil
}
