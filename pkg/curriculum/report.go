package curriculum

import (
	"context"

	"github.com/samber/lo"

	"github.com/matzehuels/gradebuilder/pkg/dag"
	"github.com/matzehuels/gradebuilder/pkg/dag/transform"
	"github.com/matzehuels/gradebuilder/pkg/layered"
	"github.com/matzehuels/gradebuilder/pkg/planar"
)

// Options configures [Analyze].
type Options struct {
	MaxCredits float64         // Overload threshold (<= 0 disables)
	Layout     layered.Options // Ordering used to count crossings
}

// DefaultOptions returns the thresholds used when a caller gives none.
func DefaultOptions() Options {
	return Options{MaxCredits: DefaultMaxCredits, Layout: layered.DefaultOptions()}
}

// Edge is a prerequisite named in a report.
type Edge struct {
	ID     string `json:"id,omitempty"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// Report summarizes a curriculum plan.
type Report struct {
	Periods          []PeriodLoad `json:"periods"`
	Overloaded       []int        `json:"overloaded"`
	TotalCredits     float64      `json:"total_credits"`
	Unassigned       []string     `json:"unassigned"`
	Redundant        []Edge       `json:"redundant"`
	Crossings        int          `json:"crossings"`
	InitialCrossings int          `json:"initial_crossings"`
	IsPlanar         bool         `json:"is_planar"`
}

// Analyze validates g like a layered layout and reports credit loads,
// redundant prerequisites and crossings. It fails with the same errors as
// [layered.Compute].
func Analyze(g *dag.DAG, opts Options) (*Report, error) {
	return AnalyzeContext(context.Background(), g, opts)
}

// AnalyzeContext is Analyze with the cancellation of [layered.ComputeContext].
func AnalyzeContext(ctx context.Context, g *dag.DAG, opts Options) (*Report, error) {
	res, err := layered.ComputeContext(ctx, g, opts.Layout)
	if err != nil {
		return nil, err
	}

	loads := Loads(g, opts.MaxCredits)
	return &Report{
		Periods: loads,
		Overloaded: lo.FilterMap(loads, func(l PeriodLoad, _ int) (int, bool) {
			return l.Period, l.Overloaded
		}),
		TotalCredits: lo.SumBy(loads, func(l PeriodLoad) float64 { return l.Credits }),
		Unassigned: lo.FilterMap(g.Nodes(), func(n *dag.Node, _ int) (string, bool) {
			return n.ID, !n.Assigned()
		}),
		Redundant: lo.Map(transform.RedundantEdges(g), func(e dag.Edge, _ int) Edge {
			return Edge{ID: e.ID, Source: e.From, Target: e.To}
		}),
		Crossings:        res.Crossings,
		InitialCrossings: res.InitialCrossings,
		IsPlanar:         planar.IsPlanar(planar.FromDAG(g)),
	}, nil
}
