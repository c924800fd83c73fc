// Package layout places the nodes of documents exported without usable
// positions.
//
// An exporter that finds nodes off the graph plane zeroes every position and
// sets the document's rearrangeExport flag. [Arrange] recomputes positions
// from the edges alone: data and control edges form a directed graph, back
// edges found by depth-first search are ignored, and each node is assigned a
// layer by longest path from the sources. Layers become columns left to
// right; nodes within a layer are stacked top to bottom in document order.
package layout

import "github.com/matzehuels/splice/pkg/graphdoc"

// Spacing between adjacent columns and rows.
const (
	ColumnSpacing = 0.35
	RowSpacing    = 0.15
)

// Arrange assigns positions to every node of doc and clears its
// rearrangeExport flag.
func Arrange(doc *graphdoc.Document) {
	layers := Layers(doc)
	rank := make(map[int]int)
	for i := range doc.Nodes {
		n := &doc.Nodes[i]
		l := layers[n.ID]
		n.X = float64(l) * ColumnSpacing
		n.Y = -float64(rank[l]) * RowSpacing
		rank[l]++
	}
	doc.RearrangeExport = false
}

// Layers returns the layer of every node id: 0 for sources, otherwise one
// more than the deepest node feeding it. Cycles are broken first.
func Layers(doc *graphdoc.Document) map[string]int {
	g := build(doc)
	breakCycles(g)
	return assignLayers(g)
}

func build(doc *graphdoc.Document) *digraph {
	g := newDigraph()
	for _, n := range doc.Nodes {
		g.addNode(n.ID)
	}
	for _, c := range doc.Connections.Data {
		g.addEdge(c.FromID, c.ToID)
	}
	for _, c := range doc.Connections.Control {
		g.addEdge(c.FromID, c.ToID)
	}
	return g
}
