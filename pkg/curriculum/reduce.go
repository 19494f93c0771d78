package curriculum

import (
	"github.com/matzehuels/gradebuilder/pkg/dag"
	"github.com/matzehuels/gradebuilder/pkg/dag/transform"
	"github.com/matzehuels/gradebuilder/pkg/layered"
)

// RemoveRedundant returns a copy of g without the prerequisites listed in
// [Report.Redundant], and the number of edges dropped. g is not modified.
//
// Reachability is unchanged by the reduction, so every course keeps the
// same set of (indirect) prerequisites. A cyclic plan fails with CYCLE.
func RemoveRedundant(g *dag.DAG) (*dag.DAG, int, error) {
	if err := layered.Validate(g); err != nil {
		return nil, 0, err
	}
	reduced := g.Clone()
	return reduced, transform.TransitiveReduction(reduced), nil
}
