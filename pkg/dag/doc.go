// Package dag provides the in-memory curriculum graph used by the layout
// engine: courses are nodes, prerequisites are directed edges, and every node
// may be assigned to a column (its academic period).
//
// # Overview
//
// A [DAG] is built fresh for every layout request. Nodes carry the caller's
// attribute map in [Node.Meta]; the column assigner in package layered reads
// the period attribute from it and stores the result in [Node.Column] with
// [DAG.SetColumns]. Nodes that stay [Unassigned] are kept in the graph so
// that the acyclicity check still covers them, but they are never laid out.
//
// # Basic Usage
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "calc1", Column: 1})
//	g.AddNode(dag.Node{ID: "calc2", Column: 2})
//	g.AddEdge(dag.Edge{ID: "e1", From: "calc1", To: "calc2"})
//	if err := g.Validate(); err != nil {
//	    // ErrGraphHasCycle
//	}
//
// Adjacency restricted to one column is available through
// [DAG.PredecessorsInColumn] and [DAG.SuccessorsInColumn]; these are the
// lookups the barycenter sweeps use.
//
// # Edge Crossings
//
// [CountCrossings] and [CountLayerCrossings] count crossings between adjacent
// columns with a Fenwick tree in O(E log V). They are used for reporting and
// tests; the ordering heuristic itself never compares crossing counts.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. Each request owns its graph,
// so concurrent layouts never share one.
//
// The [transform] subpackage provides the transitive reduction used to report
// redundant prerequisites.
//
// [transform]: github.com/matzehuels/gradebuilder/pkg/dag/transform
package dag
