package layout

import (
	"testing"

	"github.com/matzehuels/splice/pkg/graphdoc"
)

func docWith(ids []string, data, control [][2]string) *graphdoc.Document {
	d := graphdoc.New()
	for _, id := range ids {
		d.Nodes = append(d.Nodes, graphdoc.Node{ID: id})
	}
	for _, e := range data {
		d.Connections.Data = append(d.Connections.Data, graphdoc.Connection{FromID: e[0], ToID: e[1]})
	}
	for _, e := range control {
		d.Connections.Control = append(d.Connections.Control, graphdoc.Connection{FromID: e[0], ToID: e[1]})
	}
	return d
}

func TestLayers(t *testing.T) {
	tests := []struct {
		name    string
		ids     []string
		data    [][2]string
		control [][2]string
		want    map[string]int
	}{
		{
			name: "chain",
			ids:  []string{"a", "b", "c"},
			data: [][2]string{{"a", "b"}, {"b", "c"}},
			want: map[string]int{"a": 0, "b": 1, "c": 2},
		},
		{
			name: "longest path wins",
			ids:  []string{"a", "b", "c"},
			data: [][2]string{{"a", "b"}, {"b", "c"}, {"a", "c"}},
			want: map[string]int{"a": 0, "b": 1, "c": 2},
		},
		{
			name:    "control edges count",
			ids:     []string{"start", "write"},
			control: [][2]string{{"start", "write"}},
			want:    map[string]int{"start": 0, "write": 1},
		},
		{
			name: "cycle broken",
			ids:  []string{"a", "b"},
			data: [][2]string{{"a", "b"}, {"b", "a"}},
			want: map[string]int{"a": 0, "b": 1},
		},
		{
			name: "self loop and unknown node ignored",
			ids:  []string{"a"},
			data: [][2]string{{"a", "a"}, {"a", "ghost"}},
			want: map[string]int{"a": 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Layers(docWith(tt.ids, tt.data, tt.control))
			if len(got) != len(tt.want) {
				t.Fatalf("Layers() = %v, want %v", got, tt.want)
			}
			for id, l := range tt.want {
				if got[id] != l {
					t.Errorf("layer[%s] = %d, want %d", id, got[id], l)
				}
			}
		})
	}
}

func TestArrange(t *testing.T) {
	d := docWith([]string{"a", "b", "c"}, [][2]string{{"a", "c"}, {"b", "c"}}, nil)
	d.RearrangeExport = true
	Arrange(d)

	if d.RearrangeExport {
		t.Error("RearrangeExport still set")
	}
	want := map[string][2]float64{
		"a": {0, 0},
		"b": {0, -RowSpacing},
		"c": {ColumnSpacing, 0},
	}
	for _, n := range d.Nodes {
		w := want[n.ID]
		if n.X != w[0] || n.Y != w[1] {
			t.Errorf("%s at (%v, %v), want (%v, %v)", n.ID, n.X, n.Y, w[0], w[1])
		}
	}
}

func TestBreakCyclesCount(t *testing.T) {
	g := newDigraph()
	for _, id := range []string{"a", "b", "c"} {
		g.addNode(id)
	}
	g.addEdge("a", "b")
	g.addEdge("b", "c")
	g.addEdge("c", "a")
	g.addEdge("a", "b")

	if removed := breakCycles(g); removed != 1 {
		t.Errorf("breakCycles() removed %d edges, want 1", removed)
	}
	if len(g.edges) != 2 {
		t.Errorf("edge count = %d, want 2", len(g.edges))
	}
}
