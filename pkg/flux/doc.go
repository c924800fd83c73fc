// Package flux is the in-memory live graph model the interchange engine
// exports from and imports into.
//
// The world is a tree of [Slot]s. Nodes are attached to slots; each node owns
// its ports, variadic [PortList]s, [Reference] slots and [GlobalRef]s, and
// every one of those keeps a back-reference to the owning node, so "which
// node owns this port" is a field read rather than a search.
//
// Values that live outside a graph are modelled with [Field]s: global value
// holders, import [Collection] entries and [Variable]s in a [Space]. A [Link]
// drives one field from another.
//
// Node-kind-specific value slots are the closed [Extra] union: [*Literal],
// [*Asset] and [*Drive].
//
// The model is not safe for concurrent mutation. Callers serialize access to
// a destination for the duration of one import.
package flux
