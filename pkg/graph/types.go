package graph

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/matzehuels/gradebuilder/pkg/dag"
	"github.com/matzehuels/gradebuilder/pkg/errors"
)

// =============================================================================
// Constants
// =============================================================================

// DefaultGraphName is the name given to a saved graph when the caller sends none.
const DefaultGraphName = "My Grade"

// Attribute keys understood in node data.
const (
	DataLabel   = "label"
	DataPeriod  = "period"
	DataCredits = "credits"
)

// =============================================================================
// Graph - Curriculum Request Payload
// =============================================================================

// Graph is the request body shared by every layout and curriculum endpoint,
// and the document saved for a user.
//
// The format follows the browser editor: nodes carry a free-form data map
// and edges name their endpoints as source and target.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// =============================================================================
// Node
// =============================================================================

// Node is a course. Data holds the course attributes (period, credits,
// label, ...) and is passed to the layout engine unchanged.
type Node struct {
	ID   string         `json:"id" bson:"id"`
	Type string         `json:"type,omitempty" bson:"type,omitempty"`
	Data map[string]any `json:"data,omitempty" bson:"data,omitempty"`
}

// Label returns the display label if set, otherwise the ID.
func (n *Node) Label() string {
	if s, ok := n.Data[DataLabel].(string); ok && s != "" {
		return s
	}
	return n.ID
}

// =============================================================================
// Edge - Directed Prerequisite
// =============================================================================

// Edge is a prerequisite: Source must be taken before Target.
type Edge struct {
	ID     string `json:"id,omitempty" bson:"id,omitempty"`
	Source string `json:"source" bson:"source"`
	Target string `json:"target" bson:"target"`
}

// =============================================================================
// DAG ↔ Graph Conversion
// =============================================================================

// ToDAG converts a payload to a DAG.
//
// Node IDs are validated and must be unique (INVALID_INPUT). Every edge
// endpoint must name a node in the payload; the first edge that does not
// fails with UNKNOWN_REFERENCE. Cycles are not checked here.
func ToDAG(gj Graph) (*dag.DAG, error) {
	d := dag.New(nil)

	for _, nj := range gj.Nodes {
		if err := errors.ValidateNodeID(nj.ID); err != nil {
			return nil, err
		}
		n := dag.Node{ID: nj.ID, Meta: copyMeta(nj.Data)}
		if nj.Type != "" {
			n.Meta["_type"] = nj.Type
		}
		if err := d.AddNode(n); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "node %q", nj.ID)
		}
	}

	for i, ej := range gj.Edges {
		if err := d.AddEdge(dag.Edge{ID: ej.ID, From: ej.Source, To: ej.Target}); err != nil {
			missing := ej.Target
			if _, ok := d.Node(ej.Source); !ok {
				missing = ej.Source
			}
			return nil, errors.Wrap(errors.ErrCodeUnknownReference, err,
				"edge %s references unknown node %q", edgeName(ej, i), missing)
		}
	}

	return d, nil
}

// FromDAG converts a DAG back to its payload form. Nodes are sorted by ID
// for deterministic output; edges keep insertion order.
func FromDAG(g *dag.DAG) Graph {
	out := Graph{
		Nodes: make([]Node, 0, g.NodeCount()),
		Edges: make([]Edge, 0, g.EdgeCount()),
	}
	for _, n := range g.Nodes() {
		node := Node{ID: n.ID, Data: copyMeta(n.Meta)}
		if t, ok := node.Data["_type"].(string); ok {
			node.Type = t
			delete(node.Data, "_type")
		}
		if len(node.Data) == 0 {
			node.Data = nil
		}
		out.Nodes = append(out.Nodes, node)
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, Edge{ID: e.ID, Source: e.From, Target: e.To})
	}
	return out
}

// UnmarshalGraph deserializes JSON bytes to a Graph.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed graph JSON")
	}
	return g, nil
}

// =============================================================================
// Internal Helpers
// =============================================================================

func copyMeta(m map[string]any) dag.Metadata {
	if m == nil {
		return dag.Metadata{}
	}
	return maps.Clone(m)
}

func edgeName(e Edge, i int) string {
	if e.ID != "" {
		return fmt.Sprintf("%q", e.ID)
	}
	return fmt.Sprintf("#%d", i)
}
