package flux

import "github.com/matzehuels/splice/pkg/typeref"

// Extra is the node-kind-specific value slot of a node. It is a closed set:
// [*Literal], [*Asset] and [*Drive]. The catalog picks the variant when it
// builds the node, so exporters and importers switch over the variant
// instead of inspecting node types.
type Extra interface {
	extra()
}

// Literal is the inline value of an input node (ValueInput, ObjectInput).
type Literal struct {
	Field *Field
}

// Asset is the asset provider an asset input node reads from.
// ProviderType is the type imports of the provider are registered under.
type Asset struct {
	ProviderType *typeref.Type
	Provider     any
}

// Drive is the field a drive node writes to. TargetType is the type imports
// of the field are registered under (Field<T> or RefField<T>).
type Drive struct {
	TargetType *typeref.Type
	Target     *Field
}

func (*Literal) extra() {}
func (*Asset) extra()   {}
func (*Drive) extra()   {}
