package nodes

import (
	"fmt"

	"github.com/matzehuels/splice/pkg/cast"
	"github.com/matzehuels/splice/pkg/flux"
	"github.com/matzehuels/splice/pkg/typeref"
)

// Port and list names shared by documents and tests.
const (
	PortInput    = "Input"
	PortInputs   = "Inputs"
	PortValue    = "Value"
	PortNext     = "Next"
	PortOutputs  = "Outputs"
	PortIndex    = "Index"
	RefVariable  = "Variable"
	GlobalValue  = "Value"
	ListOperates = "Operations"
)

func (l *Library) defineNodes() {
	r := l.reg
	wk := l.wk
	node := func(name string, b Builder) {
		l.Register(r.MustDefine(name, typeref.KindNode), b)
	}
	generic := func(name string, arity int, c typeref.Constraint, b Builder) {
		var opts []typeref.Option
		if c != nil {
			opts = append(opts, typeref.WithConstraint(c))
		}
		l.Register(r.MustDefineGeneric(name, arity, typeref.KindNode, opts...), b)
	}

	// Math
	binary := func(l *Library, n *flux.Node, args []*typeref.Type) {
		n.AddInput("A", args[0])
		n.AddInput("B", args[0])
		n.SetSelfOutput(args[0])
	}
	generic("Flux.Math.Add", 1, numericArg, binary)
	generic("Flux.Math.Sub", 1, numericArg, binary)
	generic("Flux.Math.Mul", 1, numericArg, binary)
	generic("Flux.Math.ValueAddMulti", 1, numericArg, func(l *Library, n *flux.Node, args []*typeref.Type) {
		n.AddList(PortInputs, flux.In, flux.Data, args[0])
		n.SetSelfOutput(args[0])
	})

	// Core
	generic("Flux.Core.Output", 1, nil, func(l *Library, n *flux.Node, args []*typeref.Type) {
		n.AddInput(PortInput, args[0])
	})
	generic("Flux.Core.ValueInput", 1, plainValueArg, func(l *Library, n *flux.Node, args []*typeref.Type) {
		n.SetSelfOutput(args[0])
		n.SetExtra(&flux.Literal{Field: flux.NewField(PortValue, args[0], zero(args[0]))})
	})
	generic("Flux.Core.ObjectInput", 1, nil, func(l *Library, n *flux.Node, args []*typeref.Type) {
		n.SetSelfOutput(args[0])
		n.SetExtra(&flux.Literal{Field: flux.NewField(PortValue, args[0], nil)})
	})
	generic("Flux.Assets.AssetInput", 1, assetArg(wk.asset), func(l *Library, n *flux.Node, args []*typeref.Type) {
		n.SetSelfOutput(args[0])
		n.SetExtra(&flux.Asset{ProviderType: l.AssetProviderOf(args[0])})
	})
	generic("Flux.Core.ValueFieldDrive", 1, plainValueArg, func(l *Library, n *flux.Node, args []*typeref.Type) {
		n.AddInput(PortValue, args[0])
		n.SetExtra(&flux.Drive{TargetType: l.FieldOf(args[0])})
	})
	generic("Flux.Core.ObjectFieldDrive", 1, valueArg, func(l *Library, n *flux.Node, args []*typeref.Type) {
		n.AddInput(PortValue, args[0])
		n.SetExtra(&flux.Drive{TargetType: l.FieldOf(args[0])})
	})
	generic("Flux.Core.ReferenceDrive", 1, referenceArg, func(l *Library, n *flux.Node, args []*typeref.Type) {
		n.AddInput("Reference", args[0])
		n.SetExtra(&flux.Drive{TargetType: l.RefFieldOf(args[0])})
	})
	generic("Flux.Core.ValueDemultiplex", 1, nil, func(l *Library, n *flux.Node, args []*typeref.Type) {
		n.AddInput(PortValue, args[0])
		n.AddInput(PortIndex, wk.integer)
		n.AddList(PortOutputs, flux.Out, flux.Data, args[0])
	})

	// World
	node("Flux.World.RootSlot", func(l *Library, n *flux.Node, _ []*typeref.Type) {
		n.SetSelfOutput(wk.slot)
	})
	node("Flux.World.GetChild", func(l *Library, n *flux.Node, _ []*typeref.Type) {
		n.AddInput("Instance", wk.slot)
		n.AddInput("Name", wk.str)
		n.SetSelfOutput(wk.slot)
	})
	node("Flux.World.LocalUser", func(l *Library, n *flux.Node, _ []*typeref.Type) {
		n.SetSelfOutput(wk.user)
	})

	// Flow
	node("Flux.Flow.OnStart", func(l *Library, n *flux.Node, _ []*typeref.Type) {
		n.AddImpulse("OnStart")
	})
	node("Flux.Flow.Sequence", func(l *Library, n *flux.Node, _ []*typeref.Type) {
		n.SetSelfOperation()
		n.AddList(PortNext, flux.Out, flux.Flow, nil)
	})
	node("Flux.Flow.If", func(l *Library, n *flux.Node, _ []*typeref.Type) {
		n.SetSelfOperation()
		n.AddInput("Condition", wk.boolean)
		n.AddImpulse("OnTrue")
		n.AddImpulse("OnFalse")
	})
	node("Flux.Flow.ImpulseMultiplexer", func(l *Library, n *flux.Node, _ []*typeref.Type) {
		n.AddList(ListOperates, flux.In, flux.Flow, nil)
		n.AddInput(PortIndex, wk.integer)
		n.AddImpulse(PortNext)
	})
	node("Flux.Flow.Relay", func(l *Library, n *flux.Node, _ []*typeref.Type) {
		n.AddOperation("Trigger")
		n.AddImpulse("OnTriggered")
	})

	// Variables
	stores := []string{"Flux.Variables.StoreValue", "Flux.Variables.StoreObject"}
	for _, name := range stores {
		generic(name, 1, nil, func(l *Library, n *flux.Node, args []*typeref.Type) {
			n.SetSelfOutput(args[0])
		})
	}
	storeValue, _ := r.LookupGeneric(stores[0], 1)
	generic("Flux.Variables.Write", 1, nil, func(l *Library, n *flux.Node, args []*typeref.Type) {
		n.SetSelfOperation()
		n.AddInput(PortValue, args[0])
		n.AddReference(RefVariable, l.close(storeValue, args[0]))
		n.AddImpulse("OnWritten")
		n.AddImpulse("OnFail")
	})
	generic("Flux.Variables.GlobalInput", 1, nil, func(l *Library, n *flux.Node, args []*typeref.Type) {
		n.AddGlobalRef(GlobalValue, args[0])
		n.SetSelfOutput(args[0])
	})

	// Casts
	names := cast.DefaultNames
	generic(names.ValueToObject, 1, plainValueArg, func(l *Library, n *flux.Node, args []*typeref.Type) {
		n.AddInput(cast.AdapterInput, args[0])
		n.SetSelfOutput(wk.object)
	})
	generic(names.NullableObject, 1, plainValueArg, func(l *Library, n *flux.Node, args []*typeref.Type) {
		n.AddInput(cast.AdapterInput, l.OptionalOf(args[0]))
		n.SetSelfOutput(wk.object)
	})
	generic(names.ObjectCast, 2, referencePair, func(l *Library, n *flux.Node, args []*typeref.Type) {
		n.AddInput(cast.AdapterInput, args[0])
		n.SetSelfOutput(args[1])
	})
	for _, pair := range explicitCasts {
		from, _ := r.Lookup(pair[0])
		to, _ := r.Lookup(pair[1])
		node(names.ExplicitName(from, to), func(l *Library, n *flux.Node, _ []*typeref.Type) {
			n.AddInput(cast.AdapterInput, from)
			n.SetSelfOutput(to)
		})
	}
}

// explicitCasts are the registered plain value conversions.
var explicitCasts = [][2]string{
	{"int", "float"},
	{"int", "double"},
	{"int", "long"},
	{"float", "double"},
	{"float", "int"},
	{"long", "double"},
	{"bool", "int"},
	{"byte", "int"},
	{"float3", "double3"},
}

func referencePair(args []*typeref.Type) error {
	for _, a := range args {
		if !a.IsReference() {
			return fmt.Errorf("%s is not a reference type", a)
		}
	}
	return nil
}

// zero returns the initial value of a ValueInput of type t.
func zero(t *typeref.Type) any {
	switch t.Name() {
	case "bool":
		return false
	case "sbyte":
		return int8(0)
	case "short":
		return int16(0)
	case "int":
		return int32(0)
	case "long":
		return int64(0)
	case "byte":
		return uint8(0)
	case "ushort":
		return uint16(0)
	case "uint":
		return uint32(0)
	case "ulong":
		return uint64(0)
	case "float":
		return float32(0)
	case "double":
		return float64(0)
	case "char":
		return rune(0)
	case "string":
		return ""
	}
	if t.IsEnum() {
		if v := t.EnumValues(); len(v) > 0 {
			return v[0]
		}
	}
	return nil
}
