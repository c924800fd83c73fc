// Package typeref maps between serialized type descriptors and the types of a
// host type universe.
//
// A [Registry] holds the universe: non-generic types, open generic
// definitions keyed by name and arity, and the closed types built from them.
// It is constructed once at startup (see pkg/nodes.Standard) and passed to
// every resolution call; there is no global registry.
//
//	reg := typeref.NewRegistry()
//	float := reg.MustDefine("float", typeref.KindValue, typeref.Literal())
//	add := reg.MustDefineGeneric("Flux.Math.Add", 1, typeref.KindNode)
//
//	t, ok := typeref.Resolve(typeref.Descriptor{
//	    FullTypeName:      "Flux.Math.Add",
//	    GenericParameters: []typeref.Descriptor{{FullTypeName: "float"}},
//	}, reg)
//	// t == reg.MustClose(add, float), ok == true
//
// [Resolve] never panics: unknown names, arity mismatches and constraint
// violations all report false. [Build] is its inverse.
package typeref
