package layered

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/matzehuels/gradebuilder/pkg/dag"
	"github.com/matzehuels/gradebuilder/pkg/dag/transform"
	"github.com/matzehuels/gradebuilder/pkg/errors"
)

// Options configures one layered layout.
type Options struct {
	Mode       Mode
	Spacing    Spacing
	Iterations int
	Fallback   Fallback
	Adjacency  Adjacency
}

// DefaultOptions returns the options used when a caller gives none.
func DefaultOptions() Options {
	return Options{
		Mode:       ModeColumnIndex,
		Spacing:    DefaultSpacing,
		Iterations: DefaultIterations,
		Fallback:   FallbackZero,
		Adjacency:  AdjacencyDirected,
	}
}

// Normalize resolves defaults: a non-positive Iterations becomes
// DefaultIterations. Equal normalized options produce equal layouts.
func (o Options) Normalize() Options {
	if o.Iterations <= 0 {
		o.Iterations = DefaultIterations
	}
	return o
}

// Orderer returns the barycenter orderer described by the options.
func (o Options) Orderer() Barycenter {
	return Barycenter{Iterations: o.Iterations, Fallback: o.Fallback, Adjacency: o.Adjacency}
}

// Result is the outcome of [Compute].
type Result struct {
	Columns          Columns          // Final ordering per column
	Positions        map[string]Point // Coordinates of every assigned node
	Crossings        int              // Adjacent-column crossings after ordering
	InitialCrossings int              // Adjacent-column crossings of the lexicographic order
}

// Compute lays out g in columns.
//
// The graph is validated first: a directed cycle anywhere in g, including
// among nodes without a period, fails with a CYCLE error and no ordering work
// is done. Columns are then assigned from the period attribute, refined with
// the barycenter heuristic and mapped to coordinates.
//
// Compute sets every node's Column as a side effect and is otherwise pure:
// the same graph and options always produce identical output.
func Compute(g *dag.DAG, opts Options) (*Result, error) {
	return ComputeContext(context.Background(), g, opts)
}

// ComputeContext is Compute with cancellation between refinement rounds.
// A done context fails with a TIMEOUT error wrapping ctx.Err().
func ComputeContext(ctx context.Context, g *dag.DAG, opts Options) (*Result, error) {
	if err := Validate(g); err != nil {
		return nil, err
	}

	initial, err := AssignColumns(g)
	if err != nil {
		return nil, err
	}

	final, err := opts.Orderer().OrderColumnsContext(ctx, g, initial)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeTimeout, err, "layout stopped before ordering finished")
	}

	return &Result{
		Columns:          final,
		Positions:        opts.Spacing.Map(final, opts.Mode),
		Crossings:        dag.CountCrossings(g, final),
		InitialCrossings: dag.CountCrossings(g, initial),
	}, nil
}

// Validate runs the acyclicity check and maps graph errors to coded errors.
// A cycle error names the courses on one offending cycle.
func Validate(g *dag.DAG) error {
	err := g.Validate()
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, dag.ErrGraphHasCycle):
		return errors.Wrap(errors.ErrCodeCycle, err, "prerequisites form a cycle: %s", strings.Join(transform.FindCycle(g), " → "))
	case stderrors.Is(err, dag.ErrInvalidEdgeEndpoint):
		return errors.Wrap(errors.ErrCodeUnknownReference, err, "edge references an unknown node")
	default:
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid graph")
	}
}
