package layered

import (
	"cmp"
	"context"
	"slices"

	"github.com/matzehuels/gradebuilder/pkg/dag"
)

// DefaultIterations is the number of refinement rounds. One round is a
// left-to-right sweep followed by a right-to-left sweep. There is no
// convergence check: the count bounds runtime, not quality.
const DefaultIterations = 4

// Fallback selects the barycenter key of a node with no neighbor in the
// adjacent column.
type Fallback int

const (
	// FallbackZero keys unanchored nodes at 0, pulling them to the top of
	// their column.
	FallbackZero Fallback = iota
	// FallbackPreviousIndex keys unanchored nodes at their current index in
	// their own column, so they roughly keep their place.
	FallbackPreviousIndex
)

// String returns the name used in configuration and query parameters.
func (f Fallback) String() string {
	if f == FallbackPreviousIndex {
		return "previous"
	}
	return "zero"
}

// ParseFallback parses "zero" or "previous". The empty string is FallbackZero.
func ParseFallback(s string) (Fallback, bool) {
	switch s {
	case "", "zero":
		return FallbackZero, true
	case "previous":
		return FallbackPreviousIndex, true
	}
	return FallbackZero, false
}

// Adjacency selects which neighbors anchor a node during a sweep.
type Adjacency int

const (
	// AdjacencyDirected uses predecessors on left-to-right sweeps and
	// successors on right-to-left sweeps.
	AdjacencyDirected Adjacency = iota
	// AdjacencyUndirected uses neighbors in either direction on both sweeps.
	AdjacencyUndirected
)

// String returns the name used in configuration and query parameters.
func (a Adjacency) String() string {
	if a == AdjacencyUndirected {
		return "undirected"
	}
	return "directed"
}

// ParseAdjacency parses "directed" or "undirected". The empty string is
// AdjacencyDirected.
func ParseAdjacency(s string) (Adjacency, bool) {
	switch s {
	case "", "directed":
		return AdjacencyDirected, true
	case "undirected":
		return AdjacencyUndirected, true
	}
	return AdjacencyDirected, false
}

// Orderer reorders nodes within columns to reduce edge crossings. The input
// is not modified; every returned column is a permutation of the input one.
type Orderer interface {
	OrderColumns(g *dag.DAG, cols Columns) Columns
}

// Barycenter is the bidirectional barycenter heuristic.
//
// A left-to-right sweep visits columns P2..Pk. Each node is keyed on the mean
// index of its anchors in the previous column, in that column's current
// order, and the column is stably sorted by key. A right-to-left sweep
// mirrors this over Pk-1..P1 against the next column. Only the immediately
// adjacent column is consulted, so edges that skip a column never anchor.
//
// The zero value runs [DefaultIterations] rounds with [FallbackZero] and
// [AdjacencyDirected].
type Barycenter struct {
	Iterations int       // Refinement rounds (<= 0 means DefaultIterations)
	Fallback   Fallback  // Key for nodes with no anchor
	Adjacency  Adjacency // Which neighbors anchor a node
}

// OrderColumns implements [Orderer].
func (b Barycenter) OrderColumns(g *dag.DAG, cols Columns) Columns {
	order, _ := b.OrderColumnsContext(context.Background(), g, cols)
	return order
}

// OrderColumnsContext is OrderColumns with cancellation. ctx is checked
// before every round; when it is done the error is ctx.Err() and the
// returned columns are those of the last completed round.
func (b Barycenter) OrderColumnsContext(ctx context.Context, g *dag.DAG, cols Columns) (Columns, error) {
	iterations := b.Iterations
	if iterations <= 0 {
		iterations = DefaultIterations
	}

	keys := cols.Keys()
	order := cols.Clone()
	if len(keys) < 2 {
		return order, nil
	}

	for range iterations {
		if err := ctx.Err(); err != nil {
			return order, err
		}
		order = b.sweepForward(g, keys, order)
		order = b.sweepBackward(g, keys, order)
	}
	return order, nil
}

func (b Barycenter) sweepForward(g *dag.DAG, keys []int, cols Columns) Columns {
	out := cols.Clone()
	for i := 1; i < len(keys); i++ {
		prev, curr := keys[i-1], keys[i]
		out[curr] = b.reorder(out[curr], out.Index(prev), func(id string) []string {
			if b.Adjacency == AdjacencyUndirected {
				return g.NeighborsInColumn(id, prev)
			}
			return g.PredecessorsInColumn(id, prev)
		})
	}
	return out
}

func (b Barycenter) sweepBackward(g *dag.DAG, keys []int, cols Columns) Columns {
	out := cols.Clone()
	for i := len(keys) - 2; i >= 0; i-- {
		next, curr := keys[i+1], keys[i]
		out[curr] = b.reorder(out[curr], out.Index(next), func(id string) []string {
			if b.Adjacency == AdjacencyUndirected {
				return g.NeighborsInColumn(id, next)
			}
			return g.SuccessorsInColumn(id, next)
		})
	}
	return out
}

// reorder returns column stably sorted by barycenter key. anchors lists the
// neighbors of a node in the adjacent column; adjIndex holds their positions.
func (b Barycenter) reorder(column []string, adjIndex map[string]int, anchors func(string) []string) []string {
	type keyed struct {
		id  string
		key float64
	}
	items := make([]keyed, len(column))
	for i, id := range column {
		items[i] = keyed{id: id, key: b.key(i, anchors(id), adjIndex)}
	}
	slices.SortStableFunc(items, func(a, b keyed) int { return cmp.Compare(a.key, b.key) })

	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.id
	}
	return out
}

func (b Barycenter) key(self int, anchors []string, adjIndex map[string]int) float64 {
	if len(anchors) == 0 {
		if b.Fallback == FallbackPreviousIndex {
			return float64(self)
		}
		return 0
	}
	sum := 0
	for _, id := range anchors {
		sum += adjIndex[id]
	}
	return float64(sum) / float64(len(anchors))
}
