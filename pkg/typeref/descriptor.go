package typeref

import "strings"

// Descriptor is the serialized form of a type: a full type name plus the
// ordered descriptors of its generic arguments. An empty parameter list means
// the type is not generic; an empty name means void.
type Descriptor struct {
	FullTypeName      string       `json:"fullTypeName"`
	GenericParameters []Descriptor `json:"genericParameters"`
}

// IsVoid reports whether d describes no type at all.
func (d Descriptor) IsVoid() bool { return d.FullTypeName == "" }

// IsGeneric reports whether d carries generic arguments.
func (d Descriptor) IsGeneric() bool { return len(d.GenericParameters) > 0 }

// String renders d the same way [Type.String] renders the resolved type.
func (d Descriptor) String() string {
	if d.IsVoid() {
		return "void"
	}
	if !d.IsGeneric() {
		return d.FullTypeName
	}
	parts := make([]string, len(d.GenericParameters))
	for i, p := range d.GenericParameters {
		parts[i] = p.String()
	}
	return d.FullTypeName + "<" + strings.Join(parts, ",") + ">"
}

// Equal reports whether two descriptors name the same type.
func (d Descriptor) Equal(o Descriptor) bool {
	if d.FullTypeName != o.FullTypeName || len(d.GenericParameters) != len(o.GenericParameters) {
		return false
	}
	for i := range d.GenericParameters {
		if !d.GenericParameters[i].Equal(o.GenericParameters[i]) {
			return false
		}
	}
	return true
}

// Resolve maps a descriptor to a type in reg.
//
// Non-generic descriptors are looked up by canonical name. For generic
// descriptors every argument is resolved first, then the open definition with
// the same name and arity is closed over them. Any failure, including a
// constraint violation while closing, yields (nil, false).
func Resolve(d Descriptor, reg *Registry) (*Type, bool) {
	if reg == nil || d.IsVoid() {
		return nil, false
	}
	if !d.IsGeneric() {
		return reg.Lookup(d.FullTypeName)
	}
	args := make([]*Type, len(d.GenericParameters))
	for i, p := range d.GenericParameters {
		a, ok := Resolve(p, reg)
		if !ok {
			return nil, false
		}
		args[i] = a
	}
	def, ok := reg.LookupGeneric(d.FullTypeName, len(args))
	if !ok {
		return nil, false
	}
	t, err := reg.Close(def, args...)
	if err != nil {
		return nil, false
	}
	return t, true
}

// Build is the inverse of [Resolve]. Build(nil) returns the void descriptor.
func Build(t *Type) Descriptor {
	if t == nil {
		return Descriptor{GenericParameters: []Descriptor{}}
	}
	d := Descriptor{FullTypeName: t.Name(), GenericParameters: make([]Descriptor, len(t.args))}
	for i, a := range t.args {
		d.GenericParameters[i] = Build(a)
	}
	return d
}

// parseDescriptor reads the textual form produced by [Descriptor.String].
func parseDescriptor(s string) (Descriptor, bool) {
	d, rest, ok := parseOne(s)
	if !ok || strings.TrimSpace(rest) != "" {
		return Descriptor{}, false
	}
	return d, true
}

func parseOne(s string) (Descriptor, string, bool) {
	s = strings.TrimLeft(s, " ")
	end := strings.IndexAny(s, "<>,")
	if end < 0 {
		end = len(s)
	}
	name := strings.TrimSpace(s[:end])
	if name == "" {
		return Descriptor{}, s, false
	}
	d := Descriptor{FullTypeName: name, GenericParameters: []Descriptor{}}
	rest := s[end:]
	if !strings.HasPrefix(rest, "<") {
		return d, rest, true
	}
	rest = rest[1:]
	for {
		p, r, ok := parseOne(rest)
		if !ok {
			return Descriptor{}, s, false
		}
		d.GenericParameters = append(d.GenericParameters, p)
		r = strings.TrimLeft(r, " ")
		switch {
		case strings.HasPrefix(r, ","):
			rest = r[1:]
		case strings.HasPrefix(r, ">"):
			return d, r[1:], true
		default:
			return Descriptor{}, s, false
		}
	}
}
