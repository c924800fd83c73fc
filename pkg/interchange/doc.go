// Package interchange converts live node graphs to portable documents and
// back.
//
// [Export] walks the nodes attached to the direct children of a root slot and
// builds a fresh [graphdoc.Document]: one entry per node with a generated id,
// its position, its resolved type descriptor and the element count of each
// variadic port list, plus the three edge kinds. Values that cannot be
// written as literal text are recorded in the document's import table and
// referred to by index.
//
// [Import] reconstructs a document under a destination slot. It runs in
// strictly ordered phases:
//
//  1. Cleanup: the compile mode removes the output of the previous import.
//  2. Containers: one Monopack slot, or one slot per node centered on the
//     destination.
//  3. Nodes: types are resolved against the registry, nodes are built by the
//     catalog, lists grown, global refs and extras restored.
//  4. Wiring: control, data and reference edges, in that order.
//
// Only a nil document or destination is fatal. Every other failure skips
// the item it concerns and is recorded as a [Diagnostic] in the returned
// [Report]; nodes and edges already built stay in place.
//
//	doc, err := graphdoc.ReadFile("graph.flux.json")
//	if err != nil {
//	    return err
//	}
//	lib := nodes.Standard()
//	report, err := interchange.Import(doc, dest, interchange.Settings{
//	    Registry: lib.Registry(),
//	    Catalog:  lib,
//	    Mode:     mode.NewDirect(imports),
//	})
package interchange
