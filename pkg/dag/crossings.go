package dag

import (
	"maps"
	"slices"
)

// CountCrossings returns the total number of edge crossings for the given
// column orderings. It sums the crossings between each pair of adjacent
// columns, where adjacency follows the sorted column keys (so columns 1 and 3
// are adjacent when column 2 is empty). Edges spanning more than one column
// gap are not counted.
//
// Example:
//
//	orders := map[int][]string{
//	    1: {"calc1", "prog1"},
//	    2: {"calc2", "prog2", "data"},
//	}
//	crossings := dag.CountCrossings(g, orders)
func CountCrossings(g *DAG, orders map[int][]string) int {
	cols := slices.Sorted(maps.Keys(orders))
	crossings := 0
	for i := 0; i < len(cols)-1; i++ {
		crossings += CountLayerCrossings(g, orders[cols[i]], orders[cols[i+1]])
	}
	return crossings
}

// CountLayerCrossings counts edge crossings between two adjacent columns using
// a Fenwick tree (binary indexed tree) for O(E log V) performance where E is
// the number of edges between the columns and V is the number of nodes in the
// right column. Edges are treated as undirected segments, so an edge pointing
// from right to left is counted like any other.
//
// Two segments (u1,v1) and (u2,v2) cross if and only if:
//
//	pos(u1) < pos(u2) AND pos(v1) > pos(v2)
//
// Returns 0 if either column is empty.
func CountLayerCrossings(g *DAG, left, right []string) int {
	if len(left) == 0 || len(right) == 0 {
		return 0
	}

	rightPos := PosMap(right)

	type segment struct{ left, right int }
	segments := make([]segment, 0, len(left)*2)
	for i, nodeID := range left {
		for _, next := range g.Successors(nodeID) {
			if pos, ok := rightPos[next]; ok {
				segments = append(segments, segment{i, pos})
			}
		}
		for _, prev := range g.Predecessors(nodeID) {
			if pos, ok := rightPos[prev]; ok {
				segments = append(segments, segment{i, pos})
			}
		}
	}
	if len(segments) < 2 {
		return 0
	}

	// Sort segments by left position, then by right position
	slices.SortFunc(segments, func(a, b segment) int {
		if a.left != b.left {
			return a.left - b.left
		}
		return a.right - b.right
	})

	// Count inversions using Fenwick tree
	fenwick := make([]int, len(right)+1)
	crossings, total := 0, 0
	for _, s := range segments {
		// Query: count segments seen so far with right end <= s.right
		lessOrEqual := 0
		for q := s.right + 1; q > 0; q -= q & (-q) {
			lessOrEqual += fenwick[q]
		}
		// Crossings = segments seen so far with right end > s.right
		crossings += total - lessOrEqual

		total++
		for idx := s.right + 1; idx < len(fenwick); idx += idx & (-idx) {
			fenwick[idx]++
		}
	}
	return crossings
}
