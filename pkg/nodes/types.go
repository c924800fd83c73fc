package nodes

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/matzehuels/splice/pkg/cast"
	"github.com/matzehuels/splice/pkg/typeref"
)

var (
	scalarNames = []string{
		"bool", "byte", "ushort", "uint", "ulong", "sbyte", "short", "int", "long",
		"float", "double", "char", "string", "Uri",
	}
	vectorElems = []string{"bool", "int", "long", "uint", "float", "double"}
	otherValues = []string{"floatQ", "doubleQ", "color", "colorX"}
	numericElem = map[string]bool{
		"byte": true, "ushort": true, "uint": true, "ulong": true, "sbyte": true,
		"short": true, "int": true, "long": true, "float": true, "double": true,
	}
)

// Enums of the standard library.
var enums = map[string][]string{
	"Flux.Render.BlendMode": {"Opaque", "Cutout", "Alpha", "Additive", "Multiply"},
	"Flux.Core.Axis":        {"X", "Y", "Z"},
}

func (l *Library) defineTypes() {
	r := l.reg

	for _, name := range scalarNames {
		r.MustDefine(name, typeref.KindValue, typeref.Literal())
	}
	for _, elem := range vectorElems {
		for n := 2; n <= 4; n++ {
			r.MustDefine(elem+strconv.Itoa(n), typeref.KindValue, typeref.Literal())
		}
	}
	for _, name := range otherValues {
		r.MustDefine(name, typeref.KindValue, typeref.Literal())
	}
	// Matrices have no text form and go through the import table.
	r.MustDefine("float4x4", typeref.KindValue)
	r.MustDefine("double4x4", typeref.KindValue)
	for _, name := range sortedKeys(enums) {
		r.MustDefine(name, typeref.KindEnum, typeref.Enum(enums[name]...))
	}

	wk := &l.wk
	wk.object = r.MustDefine(cast.DefaultNames.Object, typeref.KindObject)
	wk.element = r.MustDefine("Flux.World.IWorldElement", typeref.KindReference, typeref.Interface())
	wk.slot = r.MustDefine("Flux.World.Slot", typeref.KindReference, typeref.Supertypes(wk.element))
	wk.user = r.MustDefine("Flux.World.User", typeref.KindReference, typeref.Supertypes(wk.element))
	wk.asset = r.MustDefine("Flux.Assets.IAsset", typeref.KindReference, typeref.Interface())
	r.MustDefine("Flux.Assets.AudioClip", typeref.KindReference, typeref.Supertypes(wk.asset))
	r.MustDefine("Flux.Assets.Texture2D", typeref.KindReference, typeref.Supertypes(wk.asset))
	r.MustDefine("Flux.Assets.Mesh", typeref.KindReference, typeref.Supertypes(wk.asset))

	wk.boolean, _ = r.Lookup("bool")
	wk.integer, _ = r.Lookup("int")
	wk.float, _ = r.Lookup("float")
	wk.str, _ = r.Lookup("string")

	wk.field = r.MustDefineGeneric("Flux.World.Field", 1, typeref.KindReference,
		typeref.Supertypes(wk.element), typeref.WithConstraint(valueArg))
	wk.refField = r.MustDefineGeneric("Flux.World.RefField", 1, typeref.KindReference,
		typeref.Supertypes(wk.element), typeref.WithConstraint(referenceArg))
	wk.assetProvider = r.MustDefineGeneric("Flux.Assets.AssetProvider", 1, typeref.KindReference,
		typeref.Supertypes(wk.element), typeref.WithConstraint(assetArg(wk.asset)))
	wk.optional = r.MustDefineGeneric("Flux.Core.Optional", 1, typeref.KindOptional,
		typeref.WithConstraint(plainValueArg))
}

func valueArg(args []*typeref.Type) error {
	if !args[0].IsValue() && !args[0].IsReference() {
		return fmt.Errorf("%s cannot be stored in a field", args[0])
	}
	return nil
}

func plainValueArg(args []*typeref.Type) error {
	if k := args[0].Kind(); k != typeref.KindValue && k != typeref.KindEnum {
		return fmt.Errorf("%s is not a plain value type", args[0])
	}
	return nil
}

func referenceArg(args []*typeref.Type) error {
	if !args[0].IsReference() {
		return fmt.Errorf("%s is not a reference type", args[0])
	}
	return nil
}

func assetArg(asset *typeref.Type) typeref.Constraint {
	return func(args []*typeref.Type) error {
		if !args[0].AssignableTo(asset) {
			return fmt.Errorf("%s is not an asset type", args[0])
		}
		return nil
	}
}

// numericArg accepts numbers and vectors of numbers.
func numericArg(args []*typeref.Type) error {
	name := args[0].Name()
	if args[0].IsGeneric() || args[0].Kind() != typeref.KindValue {
		return fmt.Errorf("%s is not numeric", args[0])
	}
	if numericElem[name] {
		return nil
	}
	if n := len(name); n > 1 && name[n-1] >= '2' && name[n-1] <= '4' && numericElem[name[:n-1]] {
		return nil
	}
	return fmt.Errorf("%s is not numeric", args[0])
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
