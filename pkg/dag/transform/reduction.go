package transform

import (
	"github.com/matzehuels/gradebuilder/pkg/dag"
)

// RedundantEdges returns the prerequisite edges that are implied by a longer
// path. An edge (u, v) is redundant when u reaches v through at least one
// intermediate node: with calc1→calc2, calc2→calc3 and calc1→calc3, the last
// edge is redundant. The graph is not modified.
//
// Edges are returned in insertion order. Parallel copies of an edge are all
// reported when the edge is redundant; a lone duplicated edge is not.
//
// # Algorithm
//
// For every distinct edge (u, v), a depth-first search starts from the other
// successors of u and stops as soon as it reaches v. On acyclic graphs the
// search skips nodes that come after v in topological order, since they
// cannot reach it.
//
// # Performance
//
// Extra memory is O(V + E): one visit stamp per node, the search stack and one
// verdict per distinct edge. Time is O(E·(V+E)) in the worst case; callers
// bound V and E at the request boundary.
func RedundantEdges(g *dag.DAG) []dag.Edge {
	ids := g.NodeIDs()
	if len(ids) == 0 {
		return nil
	}

	index := dag.PosMap(ids)
	succ := make([][]int, len(ids))
	distinct := make(map[[2]int]bool)
	for _, e := range g.Edges() {
		src, okS := index[e.From]
		dst, okD := index[e.To]
		pair := [2]int{src, dst}
		if okS && okD && !distinct[pair] {
			distinct[pair] = true
			succ[src] = append(succ[src], dst)
		}
	}

	s := searcher{succ: succ, rank: topoRank(succ), seen: make([]int, len(ids))}
	implied := make(map[[2]int]bool, len(distinct))

	var redundant []dag.Edge
	for _, e := range g.Edges() {
		src, okS := index[e.From]
		dst, okD := index[e.To]
		if !okS || !okD {
			continue
		}
		pair := [2]int{src, dst}
		r, ok := implied[pair]
		if !ok {
			r = s.reachesAround(src, dst)
			implied[pair] = r
		}
		if r {
			redundant = append(redundant, e)
		}
	}
	return redundant
}

// TransitiveReduction removes every edge reported by [RedundantEdges] and
// returns the number of edges removed. The graph must be acyclic.
func TransitiveReduction(g *dag.DAG) int {
	redundant := RedundantEdges(g)
	for _, e := range redundant {
		g.RemoveEdge(e.From, e.To)
	}
	return len(redundant)
}

// searcher answers "does u reach v without the direct edge" queries. Visit
// marks are stamped per query so the slice is never cleared.
type searcher struct {
	succ  [][]int
	rank  []int // topological rank, nil when the graph has a cycle
	seen  []int
	stamp int
	stack []int
}

func (s *searcher) reachesAround(u, v int) bool {
	s.stamp++
	s.stack = s.stack[:0]
	for _, w := range s.succ[u] {
		if w != v && w != u {
			s.stack = append(s.stack, w)
		}
	}
	for len(s.stack) > 0 {
		n := s.stack[len(s.stack)-1]
		s.stack = s.stack[:len(s.stack)-1]
		if n == v {
			return true
		}
		if s.seen[n] == s.stamp {
			continue
		}
		s.seen[n] = s.stamp
		if s.rank != nil && s.rank[n] > s.rank[v] {
			continue
		}
		s.stack = append(s.stack, s.succ[n]...)
	}
	return false
}

// topoRank returns each node's position in a topological order (Kahn), or
// nil if the graph has a cycle.
func topoRank(succ [][]int) []int {
	indeg := make([]int, len(succ))
	for _, next := range succ {
		for _, w := range next {
			indeg[w]++
		}
	}
	queue := make([]int, 0, len(succ))
	for n, d := range indeg {
		if d == 0 {
			queue = append(queue, n)
		}
	}
	rank := make([]int, len(succ))
	for i := 0; i < len(queue); i++ {
		n := queue[i]
		rank[n] = i
		for _, w := range succ[n] {
			if indeg[w]--; indeg[w] == 0 {
				queue = append(queue, w)
			}
		}
	}
	if len(queue) != len(succ) {
		return nil
	}
	return rank
}
