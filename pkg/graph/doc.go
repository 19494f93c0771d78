// Package graph defines the JSON documents exchanged with callers.
//
// # Graph
//
// [Graph] is the request payload of the layout and curriculum endpoints and
// the document stored for a user:
//
//	{
//	  "nodes": [{"id": "calc1", "data": {"label": "Calculus I", "period": 1, "credits": 4}}],
//	  "edges": [{"id": "e1", "source": "calc1", "target": "calc2"}]
//	}
//
// [ToDAG] turns a payload into a [dag.DAG], rejecting duplicate IDs and edges
// that name unknown nodes. [FromDAG] goes the other way with nodes sorted by
// ID.
//
// # Layout
//
// [Layout] is the response of both layout modes:
//
//	{"is_planar": true, "positions": {"calc1": {"x": 0, "y": 0}}}
//
// Layered responses add the final column order and the crossing count.
//
// [dag.DAG]: github.com/matzehuels/gradebuilder/pkg/dag.DAG
package graph
