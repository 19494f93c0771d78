package transform

import (
	"slices"

	"github.com/matzehuels/gradebuilder/pkg/dag"
)

// FindCycle returns the node IDs of one directed cycle in g, starting and
// ending with the same node, or nil if g is acyclic. Nodes are visited in
// ascending ID order so the reported cycle is stable across calls.
//
// It is used to name the offending courses when a curriculum is rejected.
func FindCycle(g *dag.DAG) []string {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, g.NodeCount())
	var stack, cycle []string

	var dfs func(node string) bool
	dfs = func(node string) bool {
		color[node] = gray
		stack = append(stack, node)
		for _, next := range g.Successors(node) {
			switch color[next] {
			case white:
				if dfs(next) {
					return true
				}
			case gray:
				start := slices.Index(stack, next)
				cycle = append(slices.Clone(stack[start:]), next)
				return true
			}
		}
		stack = stack[:len(stack)-1]
		color[node] = black
		return false
	}

	for _, id := range g.NodeIDs() {
		if color[id] == white && dfs(id) {
			return cycle
		}
	}
	return nil
}
