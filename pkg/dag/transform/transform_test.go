package transform

import (
	"fmt"
	"math/rand/v2"
	"runtime"
	"slices"
	"testing"

	"github.com/matzehuels/gradebuilder/pkg/dag"
)

func build(t *testing.T, nodes []string, edges [][2]string) *dag.DAG {
	t.Helper()
	g := dag.New(nil)
	for _, id := range nodes {
		if err := g.AddNode(dag.Node{ID: id}); err != nil {
			t.Fatalf("AddNode(%s): %v", id, err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(dag.Edge{From: e[0], To: e[1]}); err != nil {
			t.Fatalf("AddEdge(%v): %v", e, err)
		}
	}
	return g
}

func TestRedundantEdges(t *testing.T) {
	tests := []struct {
		name  string
		nodes []string
		edges [][2]string
		want  [][2]string
	}{
		{
			name:  "chain has none",
			nodes: []string{"a", "b", "c"},
			edges: [][2]string{{"a", "b"}, {"b", "c"}},
		},
		{
			name:  "shortcut over chain",
			nodes: []string{"a", "b", "c"},
			edges: [][2]string{{"a", "b"}, {"b", "c"}, {"a", "c"}},
			want:  [][2]string{{"a", "c"}},
		},
		{
			name:  "long shortcut",
			nodes: []string{"a", "b", "c", "d"},
			edges: [][2]string{{"a", "d"}, {"a", "b"}, {"b", "c"}, {"c", "d"}},
			want:  [][2]string{{"a", "d"}},
		},
		{
			name:  "diamond keeps all",
			nodes: []string{"a", "b", "c", "d"},
			edges: [][2]string{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}},
		},
		{
			name:  "duplicate edge alone is kept",
			nodes: []string{"a", "b"},
			edges: [][2]string{{"a", "b"}, {"a", "b"}},
		},
		{
			name:  "parallel shortcut reported twice",
			nodes: []string{"a", "b", "c"},
			edges: [][2]string{{"a", "c"}, {"a", "b"}, {"b", "c"}, {"a", "c"}},
			want:  [][2]string{{"a", "c"}, {"a", "c"}},
		},
		{
			name:  "cycle disables pruning",
			nodes: []string{"a", "b", "c"},
			edges: [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}, {"a", "c"}},
			want:  [][2]string{{"a", "b"}, {"a", "c"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := build(t, tt.nodes, tt.edges)
			var got [][2]string
			for _, e := range RedundantEdges(g) {
				got = append(got, [2]string{e.From, e.To})
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("RedundantEdges() = %v, want %v", got, tt.want)
			}
			if g.EdgeCount() != len(tt.edges) {
				t.Errorf("graph modified: EdgeCount() = %d, want %d", g.EdgeCount(), len(tt.edges))
			}
		})
	}
}

// naiveRedundant flags (u, v) when another successor w of u reaches v,
// using a full reachability matrix.
func naiveRedundant(g *dag.DAG) [][2]string {
	reach := make(map[string]map[string]bool)
	var visit func(src, cur string)
	visit = func(src, cur string) {
		if reach[src][cur] {
			return
		}
		reach[src][cur] = true
		for _, next := range g.Successors(cur) {
			visit(src, next)
		}
	}
	for _, id := range g.NodeIDs() {
		reach[id] = make(map[string]bool)
		visit(id, id)
	}
	var out [][2]string
	for _, e := range g.Edges() {
		for _, w := range g.Successors(e.From) {
			if w != e.To && w != e.From && reach[w][e.To] {
				out = append(out, [2]string{e.From, e.To})
				break
			}
		}
	}
	return out
}

func TestRedundantEdgesMatchesReachability(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for trial := range 200 {
		n := 2 + rng.IntN(12)
		nodes := make([]string, n)
		for i := range nodes {
			nodes[i] = fmt.Sprintf("n%02d", i)
		}
		var edges [][2]string
		for i := range n {
			for j := i + 1; j < n; j++ {
				if rng.IntN(3) == 0 {
					edges = append(edges, [2]string{nodes[i], nodes[j]})
				}
			}
		}
		g := build(t, nodes, edges)

		var got [][2]string
		for _, e := range RedundantEdges(g) {
			got = append(got, [2]string{e.From, e.To})
		}
		if want := naiveRedundant(g); !slices.Equal(got, want) {
			t.Fatalf("trial %d: RedundantEdges() = %v, want %v", trial, got, want)
		}
	}
}

func TestRedundantEdgesLargeSparseGraph(t *testing.T) {
	const n = 20000
	g := dag.New(nil)
	for i := range n {
		_ = g.AddNode(dag.Node{ID: fmt.Sprintf("c%05d", i)})
	}
	for i := 1; i < n; i++ {
		_ = g.AddEdge(dag.Edge{From: fmt.Sprintf("c%05d", i-1), To: fmt.Sprintf("c%05d", i)})
	}

	// a quadratic reachability table would need 400 MB here
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	if got := RedundantEdges(g); len(got) != 0 {
		t.Errorf("chain has no redundant edges, got %d", len(got))
	}
	runtime.ReadMemStats(&after)
	if used := after.TotalAlloc - before.TotalAlloc; used > 32<<20 {
		t.Errorf("RedundantEdges allocated %d MB for %d nodes", used>>20, n)
	}
}

func TestTransitiveReduction(t *testing.T) {
	g := build(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}, {"a", "c"}})

	if removed := TransitiveReduction(g); removed != 1 {
		t.Errorf("TransitiveReduction() removed %d, want 1", removed)
	}
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", g.EdgeCount())
	}
	if slices.Contains(g.Successors("a"), "c") {
		t.Error("a→c should have been removed")
	}
}

func TestFindCycle(t *testing.T) {
	tests := []struct {
		name  string
		nodes []string
		edges [][2]string
		want  []string
	}{
		{
			name:  "acyclic",
			nodes: []string{"a", "b", "c"},
			edges: [][2]string{{"a", "b"}, {"b", "c"}},
		},
		{
			name:  "two cycle",
			nodes: []string{"a", "b"},
			edges: [][2]string{{"a", "b"}, {"b", "a"}},
			want:  []string{"a", "b", "a"},
		},
		{
			name:  "cycle behind a tail",
			nodes: []string{"a", "b", "c", "d"},
			edges: [][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}, {"d", "b"}},
			want:  []string{"b", "c", "d", "b"},
		},
		{
			name:  "self loop",
			nodes: []string{"x"},
			edges: [][2]string{{"x", "x"}},
			want:  []string{"x", "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := build(t, tt.nodes, tt.edges)
			if got := FindCycle(g); !slices.Equal(got, tt.want) {
				t.Errorf("FindCycle() = %v, want %v", got, tt.want)
			}
		})
	}
}
