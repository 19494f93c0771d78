package planar

import (
	"slices"

	"github.com/matzehuels/gradebuilder/pkg/dag"
)

// Graph is a simple undirected graph. Self-loops are dropped and parallel
// edges collapse into one, since neither affects planarity or placement.
type Graph struct {
	nodes []string
	index map[string]int
	adj   [][]int
	edges [][2]int
}

// NewGraph builds a graph from node IDs and edges. Edges naming an unknown
// node are ignored; callers validate references before building.
func NewGraph(nodes []string, edges [][2]string) *Graph {
	g := &Graph{
		nodes: slices.Clone(nodes),
		index: make(map[string]int, len(nodes)),
		adj:   make([][]int, len(nodes)),
	}
	for i, id := range g.nodes {
		g.index[id] = i
	}
	for _, e := range edges {
		u, okU := g.index[e[0]]
		v, okV := g.index[e[1]]
		if !okU || !okV || u == v || slices.Contains(g.adj[u], v) {
			continue
		}
		g.adj[u] = append(g.adj[u], v)
		g.adj[v] = append(g.adj[v], u)
		g.edges = append(g.edges, [2]int{min(u, v), max(u, v)})
	}
	for i := range g.adj {
		slices.Sort(g.adj[i])
	}
	return g
}

// FromDAG drops edge directions and column assignments of g. Nodes are
// ordered by ID.
func FromDAG(d *dag.DAG) *Graph {
	edges := make([][2]string, 0, d.EdgeCount())
	for _, e := range d.Edges() {
		edges = append(edges, [2]string{e.From, e.To})
	}
	return NewGraph(d.NodeIDs(), edges)
}

// Order returns the number of nodes.
func (g *Graph) Order() int { return len(g.nodes) }

// Size returns the number of distinct undirected edges.
func (g *Graph) Size() int { return len(g.edges) }

// Nodes returns the node IDs in construction order.
func (g *Graph) Nodes() []string { return g.nodes }

// Edges returns each undirected edge once as a pair of node IDs.
func (g *Graph) Edges() [][2]string {
	out := make([][2]string, len(g.edges))
	for i, e := range g.edges {
		out[i] = [2]string{g.nodes[e[0]], g.nodes[e[1]]}
	}
	return out
}
