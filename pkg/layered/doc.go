// Package layered computes column layouts for curriculum graphs.
//
// # Overview
//
// Every course carries a period attribute. Courses sharing a period form a
// column, and columns are drawn left to right in ascending period order.
// The only freedom left is the order of courses inside each column, which
// this package chooses to reduce prerequisite edges crossing each other.
//
// [Compute] runs the whole pipeline:
//
//  1. [Validate] rejects graphs with a directed cycle (CYCLE)
//  2. [AssignColumns] reads periods and seeds each column in ID order
//     (INVALID_COLUMN when no course has a period)
//  3. [Barycenter] refines the order with bidirectional sweeps
//  4. [Spacing.Map] turns the final order into coordinates
//
// # Barycenter Heuristic
//
// Each sweep sorts a column by the mean position of each course's neighbors
// in the adjacent column. Sorting is stable, so ties keep their current
// order, and the number of rounds is fixed ([DefaultIterations]). Together
// these make the output a deterministic function of the input graph.
//
// Courses with no neighbor in the adjacent column fall back to a fixed key.
// [FallbackZero] pulls them to the top; [FallbackPreviousIndex] keeps them
// near their current row.
//
// # Usage
//
//	res, err := layered.Compute(g, layered.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	for id, p := range res.Positions {
//	    fmt.Printf("%s at (%.0f, %.0f)\n", id, p.X, p.Y)
//	}
package layered
