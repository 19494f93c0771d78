package graph

import "github.com/matzehuels/gradebuilder/pkg/errors"

// Default payload limits. Real curricula have tens of courses.
const (
	DefaultMaxNodes = 2000
	DefaultMaxEdges = 10000
)

// Limits bounds the size of a payload accepted for layout or analysis.
// A zero field means no limit.
type Limits struct {
	MaxNodes int
	MaxEdges int
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{MaxNodes: DefaultMaxNodes, MaxEdges: DefaultMaxEdges}
}

// Check fails with INVALID_INPUT when g exceeds a limit.
func (l Limits) Check(g Graph) error {
	if l.MaxNodes > 0 && len(g.Nodes) > l.MaxNodes {
		return errors.New(errors.ErrCodeInvalidInput, "graph has %d nodes, the limit is %d", len(g.Nodes), l.MaxNodes)
	}
	if l.MaxEdges > 0 && len(g.Edges) > l.MaxEdges {
		return errors.New(errors.ErrCodeInvalidInput, "graph has %d edges, the limit is %d", len(g.Edges), l.MaxEdges)
	}
	return nil
}
