package curriculum

import (
	"github.com/matzehuels/gradebuilder/pkg/dag"
	"github.com/matzehuels/gradebuilder/pkg/errors"
	"github.com/matzehuels/gradebuilder/pkg/graph"
	"github.com/matzehuels/gradebuilder/pkg/layered"
)

// ValidateMove checks whether course id may move to period.
//
// A move is valid when every prerequisite is already placed in an earlier
// period, every placed dependent sits in a later period, and the target
// period stays within maxCredits once the course joins it. Dependents
// without a period are ignored. maxCredits <= 0 disables the credit check.
func ValidateMove(g *dag.DAG, id string, period int, maxCredits float64) error {
	node, ok := g.Node(id)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "course %q not found", id)
	}
	if period < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "period must be at least 1, got %d", period)
	}

	for _, pid := range g.Predecessors(id) {
		pre, _ := g.Node(pid)
		p, ok := layered.PeriodOf(pre.Meta)
		if !ok {
			return errors.New(errors.ErrCodeInvalidMove,
				"prerequisite %q has not been placed in the plan", label(pre))
		}
		if p >= period {
			return errors.New(errors.ErrCodeInvalidMove,
				"prerequisite %q is in period %d", label(pre), p)
		}
	}

	for _, cid := range g.Successors(id) {
		dep, _ := g.Node(cid)
		p, ok := layered.PeriodOf(dep.Meta)
		if ok && p <= period {
			return errors.New(errors.ErrCodeInvalidMove,
				"dependent course %q is in period %d", label(dep), p)
		}
	}

	if maxCredits > 0 {
		total := CreditsOf(node.Meta)
		for _, n := range g.Nodes() {
			if p, ok := layered.PeriodOf(n.Meta); ok && p == period && n.ID != id {
				total += CreditsOf(n.Meta)
			}
		}
		if total > maxCredits {
			return errors.New(errors.ErrCodeInvalidMove,
				"period %d would have %g credits (max %g)", period, total, maxCredits)
		}
	}
	return nil
}

func label(n *dag.Node) string {
	if s, ok := n.Meta[graph.DataLabel].(string); ok && s != "" {
		return s
	}
	return n.ID
}
