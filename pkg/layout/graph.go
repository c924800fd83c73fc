package layout

// digraph is a directed graph over node ids that keeps insertion order, so
// layering is deterministic.
type digraph struct {
	order    []string
	children map[string][]string
	inDegree map[string]int
	edges    map[[2]string]bool
}

func newDigraph() *digraph {
	return &digraph{
		children: make(map[string][]string),
		inDegree: make(map[string]int),
		edges:    make(map[[2]string]bool),
	}
}

func (g *digraph) addNode(id string) {
	if _, ok := g.inDegree[id]; ok {
		return
	}
	g.order = append(g.order, id)
	g.inDegree[id] = 0
}

// addEdge ignores self loops, duplicates and edges to unknown nodes.
func (g *digraph) addEdge(from, to string) {
	_, okFrom := g.inDegree[from]
	_, okTo := g.inDegree[to]
	if from == to || !okFrom || !okTo || g.edges[[2]string{from, to}] {
		return
	}
	g.edges[[2]string{from, to}] = true
	g.children[from] = append(g.children[from], to)
	g.inDegree[to]++
}

func (g *digraph) removeEdge(from, to string) {
	if !g.edges[[2]string{from, to}] {
		return
	}
	delete(g.edges, [2]string{from, to})
	kids := g.children[from]
	for i, c := range kids {
		if c == to {
			g.children[from] = append(kids[:i:i], kids[i+1:]...)
			break
		}
	}
	g.inDegree[to]--
}

func (g *digraph) sources() []string {
	var out []string
	for _, id := range g.order {
		if g.inDegree[id] == 0 {
			out = append(out, id)
		}
	}
	return out
}

// breakCycles removes the back edges of a depth-first search started from
// the sources and then from any node still unvisited. It returns the number
// of edges removed.
func breakCycles(g *digraph) int {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int)
	var backEdges [][2]string

	var dfs func(node string)
	dfs = func(node string) {
		color[node] = gray
		for _, child := range g.children[node] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				backEdges = append(backEdges, [2]string{node, child})
			}
		}
		color[node] = black
	}

	for _, id := range g.sources() {
		if color[id] == white {
			dfs(id)
		}
	}
	for _, id := range g.order {
		if color[id] == white {
			dfs(id)
		}
	}

	for _, e := range backEdges {
		g.removeEdge(e[0], e[1])
	}
	return len(backEdges)
}

// assignLayers computes longest-path layers with Kahn's algorithm. g must be
// acyclic; nodes on a cycle stay at layer 0.
func assignLayers(g *digraph) map[string]int {
	inDegree := make(map[string]int, len(g.order))
	layers := make(map[string]int, len(g.order))
	queue := make([]string, 0, len(g.order))

	for _, id := range g.order {
		inDegree[id] = g.inDegree[id]
		layers[id] = 0
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, child := range g.children[curr] {
			if l := layers[curr] + 1; l > layers[child] {
				layers[child] = l
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}
	return layers
}
