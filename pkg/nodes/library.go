// Package nodes is the standard node library: the type universe and the port
// layout of every node type the engine can instantiate.
//
// The library plays the host's component-attachment role. Given a resolved
// node type and a parent slot it builds a [flux.Node] with the right ports,
// lists, references, global refs and extra, and attaches it.
//
//	lib := nodes.Standard()
//	add, _ := lib.Registry().Parse("Flux.Math.Add<float>")
//	n, err := lib.Instantiate(add, slot)
package nodes

import (
	"sync"

	"github.com/matzehuels/splice/pkg/errors"
	"github.com/matzehuels/splice/pkg/flux"
	"github.com/matzehuels/splice/pkg/typeref"
)

// Builder lays out the ports of a node. args are the type arguments of a
// closed generic node type, empty for plain node types.
type Builder func(l *Library, n *flux.Node, args []*typeref.Type)

// Library is a type registry plus one builder per node definition.
type Library struct {
	reg      *typeref.Registry
	builders map[*typeref.Type]Builder
	wk       wellKnown
}

// wellKnown are the types builders reference directly.
type wellKnown struct {
	object, element, slot, user, asset *typeref.Type
	boolean, integer, float, str       *typeref.Type
	field, refField, assetProvider     *typeref.Type
	optional                           *typeref.Type
}

var standard = sync.OnceValue(New)

// Standard returns the shared standard library. It is built on first use.
func Standard() *Library { return standard() }

// New builds a fresh standard library with its own registry.
func New() *Library {
	l := &Library{
		reg:      typeref.NewRegistry(),
		builders: make(map[*typeref.Type]Builder),
	}
	l.defineTypes()
	l.defineNodes()
	return l
}

// Registry returns the library's type universe.
func (l *Library) Registry() *typeref.Registry { return l.reg }

// Register adds a node builder for def, a node type or open node definition
// of l's registry. Registering the same definition twice replaces the builder.
func (l *Library) Register(def *typeref.Type, b Builder) {
	l.builders[def] = b
}

// NodeTypes returns the registered node definitions in definition order.
func (l *Library) NodeTypes() []*typeref.Type {
	var out []*typeref.Type
	for _, t := range l.reg.Types() {
		if _, ok := l.builders[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// Instantiate builds a node of type t and attaches it to parent.
func (l *Library) Instantiate(t *typeref.Type, parent *flux.Slot) (*flux.Node, error) {
	if t == nil || t.Kind() != typeref.KindNode {
		return nil, errors.New(errors.ErrCodeTypeResolution, "%s is not a node type", t)
	}
	if t.IsGenericDefinition() {
		return nil, errors.New(errors.ErrCodeTypeResolution, "%s is an open definition", t)
	}
	def := t
	if t.IsGeneric() {
		def = t.Definition()
	}
	b, ok := l.builders[def]
	if !ok {
		return nil, errors.New(errors.ErrCodeTypeResolution, "no builder for %s", t)
	}
	n := flux.NewNode(t)
	b(l, n, t.Args())
	if parent != nil {
		parent.AttachNode(n)
	}
	return n, nil
}

// close closes def over args and panics if that fails. Builders only close
// wrapper definitions whose constraints the node constraints already imply.
func (l *Library) close(def *typeref.Type, args ...*typeref.Type) *typeref.Type {
	return l.reg.MustClose(def, args...)
}

// FieldOf returns Field<t>, the import type of value and object field drives.
func (l *Library) FieldOf(t *typeref.Type) *typeref.Type { return l.close(l.wk.field, t) }

// RefFieldOf returns RefField<t>, the import type of reference drives.
func (l *Library) RefFieldOf(t *typeref.Type) *typeref.Type { return l.close(l.wk.refField, t) }

// AssetProviderOf returns AssetProvider<t>, the import type of asset inputs.
func (l *Library) AssetProviderOf(t *typeref.Type) *typeref.Type {
	return l.close(l.wk.assetProvider, t)
}

// OptionalOf returns Optional<t>.
func (l *Library) OptionalOf(t *typeref.Type) *typeref.Type { return l.close(l.wk.optional, t) }

// Type resolves a textual type name against the library's registry.
func (l *Library) Type(name string) (*typeref.Type, bool) { return l.reg.Parse(name) }

// MustType is like Type but panics when name does not resolve.
func (l *Library) MustType(name string) *typeref.Type {
	t, ok := l.reg.Parse(name)
	if !ok {
		panic("nodes: unknown type " + name)
	}
	return t
}
