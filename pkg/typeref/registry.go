package typeref

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrDuplicateType is returned by [Registry.Define] and
	// [Registry.DefineGeneric] when a type with the same name (and arity) is
	// already registered.
	ErrDuplicateType = errors.New("duplicate type")

	// ErrInvalidName is returned when a type is defined with an empty name.
	ErrInvalidName = errors.New("type name must not be empty")

	// ErrNotGeneric is returned by [Registry.Close] when the definition is not
	// an open generic type.
	ErrNotGeneric = errors.New("type is not a generic definition")

	// ErrArity is returned by [Registry.Close] when the number of arguments
	// does not match the definition's arity.
	ErrArity = errors.New("wrong number of type arguments")

	// ErrConstraint wraps errors returned by a definition's [Constraint].
	ErrConstraint = errors.New("type argument constraint violated")
)

// Option configures a type at definition time.
type Option func(*Type)

// Literal marks a type as literal-friendly: its values are written to
// documents as text instead of through the import table.
func Literal() Option { return func(t *Type) { t.literal = true } }

// Interface marks a reference type as an interface.
func Interface() Option { return func(t *Type) { t.iface = true } }

// Enum sets the member names of an enum type.
func Enum(values ...string) Option {
	return func(t *Type) { t.enum = append(t.enum[:0], values...) }
}

// Supertypes sets the direct supertypes of a type.
func Supertypes(supers ...*Type) Option {
	return func(t *Type) { t.supers = append(t.supers, supers...) }
}

// WithConstraint sets the constraint checked when a generic definition is closed.
func WithConstraint(c Constraint) Option { return func(t *Type) { t.constraint = c } }

// Registry is the type universe types are resolved against. It is built once
// at startup and passed to the resolver. Define and DefineGeneric must not
// run concurrently with anything else; Close may be called from several
// goroutines.
type Registry struct {
	plain   map[string]*Type
	generic map[genericKey]*Type
	order   []*Type

	mu     sync.Mutex
	closed map[string]*Type
}

type genericKey struct {
	name  string
	arity int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		plain:   make(map[string]*Type),
		generic: make(map[genericKey]*Type),
		closed:  make(map[string]*Type),
	}
}

// Define registers a non-generic type.
func (r *Registry) Define(name string, kind Kind, opts ...Option) (*Type, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	if _, ok := r.plain[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateType, name)
	}
	t := &Type{name: name, kind: kind}
	for _, opt := range opts {
		opt(t)
	}
	r.plain[name] = t
	r.order = append(r.order, t)
	return t, nil
}

// DefineGeneric registers an open generic definition with the given arity.
// Definitions with the same name but different arity are distinct.
func (r *Registry) DefineGeneric(name string, arity int, kind Kind, opts ...Option) (*Type, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	if arity < 1 {
		return nil, fmt.Errorf("%w: %s has arity %d", ErrArity, name, arity)
	}
	key := genericKey{name, arity}
	if _, ok := r.generic[key]; ok {
		return nil, fmt.Errorf("%w: %s`%d", ErrDuplicateType, name, arity)
	}
	t := &Type{name: name, kind: kind, arity: arity}
	for _, opt := range opts {
		opt(t)
	}
	r.generic[key] = t
	r.order = append(r.order, t)
	return t, nil
}

// MustDefine is like Define but panics on error. It is meant for building
// static type universes at startup.
func (r *Registry) MustDefine(name string, kind Kind, opts ...Option) *Type {
	t, err := r.Define(name, kind, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// MustDefineGeneric is like DefineGeneric but panics on error.
func (r *Registry) MustDefineGeneric(name string, arity int, kind Kind, opts ...Option) *Type {
	t, err := r.DefineGeneric(name, arity, kind, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup finds a non-generic type by canonical name.
func (r *Registry) Lookup(name string) (*Type, bool) {
	t, ok := r.plain[name]
	return t, ok
}

// LookupGeneric finds an open generic definition by name and arity.
func (r *Registry) LookupGeneric(name string, arity int) (*Type, bool) {
	t, ok := r.generic[genericKey{name, arity}]
	return t, ok
}

// Close closes an open definition over args. The result is memoized, so
// closing the same definition over the same arguments returns the same *Type.
// Constraint violations are returned as errors wrapping [ErrConstraint].
func (r *Registry) Close(def *Type, args ...*Type) (*Type, error) {
	if def == nil || !def.IsGenericDefinition() {
		return nil, ErrNotGeneric
	}
	if len(args) != def.arity {
		return nil, fmt.Errorf("%w: %s wants %d, got %d", ErrArity, def.name, def.arity, len(args))
	}
	for i, a := range args {
		if a == nil {
			return nil, fmt.Errorf("%w: %s argument %d is void", ErrConstraint, def.name, i)
		}
		if a.IsGenericDefinition() {
			return nil, fmt.Errorf("%w: %s argument %d is an open definition", ErrConstraint, def.name, i)
		}
	}
	key := closedKey(def, args)
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.closed[key]; ok {
		return t, nil
	}
	if def.constraint != nil {
		if err := def.constraint(args); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrConstraint, key, err)
		}
	}
	t := &Type{
		name:   def.name,
		kind:   def.kind,
		def:    def,
		args:   append([]*Type(nil), args...),
		iface:  def.iface,
		supers: def.supers,
	}
	r.closed[key] = t
	return t, nil
}

// MustClose is like Close but panics on error.
func (r *Registry) MustClose(def *Type, args ...*Type) *Type {
	t, err := r.Close(def, args...)
	if err != nil {
		panic(err)
	}
	return t
}

// Types returns all non-generic types and open definitions in definition order.
func (r *Registry) Types() []*Type {
	return append([]*Type(nil), r.order...)
}

// Closed returns the closed generic types created so far, sorted by name.
func (r *Registry) Closed() []*Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.closed))
	for k := range r.closed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*Type, len(keys))
	for i, k := range keys {
		out[i] = r.closed[k]
	}
	return out
}

// Parse resolves a textual type name such as "Flux.Math.Add<float>" or
// "Flux.Casts.ObjectCast<Flux.World.Slot,object>". It is the inverse of
// [Type.String] and is meant for command-line input.
func (r *Registry) Parse(s string) (*Type, bool) {
	d, ok := parseDescriptor(strings.TrimSpace(s))
	if !ok {
		return nil, false
	}
	return Resolve(d, r)
}

func closedKey(def *Type, args []*Type) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return def.name + "<" + strings.Join(parts, ",") + ">"
}
