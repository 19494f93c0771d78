// Package transform provides read-mostly analyses over a curriculum [dag.DAG].
//
// # Transitive Reduction
//
// [RedundantEdges] reports prerequisites that are already implied by a longer
// chain. If calc1→calc2 and calc2→calc3 exist, then calc1→calc3 adds nothing
// to the plan and is flagged. [TransitiveReduction] removes those edges in
// place.
//
// # Cycles
//
// [FindCycle] returns one directed cycle as a path of node IDs. The layout
// engine rejects cyclic curricula with [dag.ErrGraphHasCycle]; FindCycle lets
// callers tell the user which courses are involved.
//
// # Usage
//
//	if cycle := transform.FindCycle(g); cycle != nil {
//	    fmt.Println(strings.Join(cycle, " → "))
//	}
//	for _, e := range transform.RedundantEdges(g) {
//	    fmt.Printf("%s → %s is implied\n", e.From, e.To)
//	}
package transform
