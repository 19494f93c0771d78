package dag

import (
	"errors"
	"maps"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [DAG.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [DAG.AddNode] when a node with the
	// same ID already exists in the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [DAG.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [DAG.AddEdge] when the To node
	// does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrInvalidEdgeEndpoint is returned by [DAG.Validate] when an edge
	// references a node that doesn't exist. This indicates graph corruption.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")

	// ErrGraphHasCycle is returned by [DAG.Validate] when a directed cycle is
	// detected. Cycles are detected using depth-first search with
	// white/gray/black coloring.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Unassigned is the column of a node that takes no part in the layered layout.
const Unassigned = 0

// Metadata stores arbitrary key-value pairs attached to nodes or the graph.
// For curriculum graphs it holds the course attributes sent by the caller
// (period, credits, label, ...). Metadata maps are never nil after AddNode.
type Metadata map[string]any

// Node is a course in the curriculum graph.
//
// Column is the layer the node is drawn in. It is [Unassigned] until a column
// assigner derives it from the node's period attribute; nodes that stay
// unassigned are validated but never laid out.
type Node struct {
	ID     string   // Unique identifier
	Column int      // Layer assignment (Unassigned = excluded from layout)
	Meta   Metadata // Caller attributes (never nil after AddNode)
}

// Assigned reports whether the node belongs to a layout column.
func (n Node) Assigned() bool { return n.Column > Unassigned }

// Edge is a directed prerequisite: From must be taken before To.
// ID is caller-assigned and not required to be unique.
type Edge struct {
	ID   string // Caller-assigned identifier (may be empty or repeated)
	From string // Source node ID (the prerequisite)
	To   string // Target node ID (the dependent course)
}

// DAG is a directed graph whose nodes are grouped into columns.
// Unlike a strict layered graph, edges may connect any two columns; only
// edges between adjacent columns influence ordering.
//
// The zero value is not usable - use New to create a valid DAG instance.
// DAG is not safe for concurrent use without external synchronization.
type DAG struct {
	nodes    map[string]*Node
	edges    []Edge
	outgoing map[string][]string // nodeID -> successor IDs
	incoming map[string][]string // nodeID -> predecessor IDs
	columns  map[int][]*Node     // column -> nodes in that column
	meta     Metadata
}

// New creates an empty DAG with optional graph-level metadata.
func New(meta Metadata) *DAG {
	if meta == nil {
		meta = Metadata{}
	}
	return &DAG{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		columns:  make(map[int][]*Node),
		meta:     meta,
	}
}

// AddNode adds a node to the graph and indexes it by its Column.
// Returns ErrInvalidNodeID if the node ID is empty, or ErrDuplicateNodeID
// if a node with the same ID already exists.
func (d *DAG) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := d.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	node := &n
	d.nodes[node.ID] = node
	d.columns[node.Column] = append(d.columns[node.Column], node)
	return nil
}

// SetColumns updates the column assignments for nodes and rebuilds the
// column index. Nodes not present in the map become [Unassigned].
func (d *DAG) SetColumns(columns map[string]int) {
	d.columns = make(map[int][]*Node)
	for _, id := range slices.Sorted(maps.Keys(d.nodes)) {
		n := d.nodes[id]
		n.Column = columns[id]
		d.columns[n.Column] = append(d.columns[n.Column], n)
	}
}

// AddEdge adds a directed edge between two existing nodes.
// Returns ErrUnknownSourceNode if the From node doesn't exist, or
// ErrUnknownTargetNode if the To node doesn't exist. Parallel edges are kept
// as given.
func (d *DAG) AddEdge(e Edge) error {
	if _, ok := d.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := d.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	d.edges = append(d.edges, e)
	d.outgoing[e.From] = append(d.outgoing[e.From], e.To)
	d.incoming[e.To] = append(d.incoming[e.To], e.From)
	return nil
}

// RemoveEdge removes every edge from→to. No error is returned if the edge
// does not exist.
func (d *DAG) RemoveEdge(from, to string) {
	d.edges = slices.DeleteFunc(d.edges, func(e Edge) bool { return e.From == from && e.To == to })
	d.outgoing[from] = slices.DeleteFunc(d.outgoing[from], func(s string) bool { return s == to })
	d.incoming[to] = slices.DeleteFunc(d.incoming[to], func(s string) bool { return s == from })
}

// Clone returns a deep copy of the graph. Metadata maps are copied shallowly.
func (d *DAG) Clone() *DAG {
	c := New(maps.Clone(d.meta))
	for _, id := range d.NodeIDs() {
		n := d.nodes[id]
		_ = c.AddNode(Node{ID: n.ID, Column: n.Column, Meta: maps.Clone(n.Meta)})
	}
	for _, e := range d.edges {
		_ = c.AddEdge(e)
	}
	return c
}

// Nodes returns all nodes in the graph sorted by ID.
// The returned slice contains pointers to the actual node structs.
func (d *DAG) Nodes() []*Node {
	nodes := make([]*Node, 0, len(d.nodes))
	for _, id := range d.NodeIDs() {
		nodes = append(nodes, d.nodes[id])
	}
	return nodes
}

// NodeIDs returns all node IDs in ascending lexicographic order.
func (d *DAG) NodeIDs() []string { return slices.Sorted(maps.Keys(d.nodes)) }

// Edges returns a copy of all edges in insertion order.
func (d *DAG) Edges() []Edge { return slices.Clone(d.edges) }

// NodeCount returns the number of nodes in the graph.
func (d *DAG) NodeCount() int { return len(d.nodes) }

// EdgeCount returns the number of edges in the graph.
func (d *DAG) EdgeCount() int { return len(d.edges) }

// Successors returns the IDs of nodes this node has edges to.
// The returned slice should not be modified.
func (d *DAG) Successors(id string) []string { return d.outgoing[id] }

// Predecessors returns the IDs of nodes that have edges to this node.
// The returned slice should not be modified.
func (d *DAG) Predecessors(id string) []string { return d.incoming[id] }

// Node returns the node with the given ID and true, or nil and false if not found.
func (d *DAG) Node(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// SuccessorsInColumn returns the distinct successors of the node that are in
// the given column, in edge insertion order.
func (d *DAG) SuccessorsInColumn(id string, column int) []string {
	return d.inColumn(d.outgoing[id], column)
}

// PredecessorsInColumn returns the distinct predecessors of the node that are
// in the given column, in edge insertion order.
func (d *DAG) PredecessorsInColumn(id string, column int) []string {
	return d.inColumn(d.incoming[id], column)
}

// NeighborsInColumn returns the distinct nodes in the given column that are
// connected to the node by an edge in either direction.
func (d *DAG) NeighborsInColumn(id string, column int) []string {
	return d.inColumn(slices.Concat(d.incoming[id], d.outgoing[id]), column)
}

func (d *DAG) inColumn(ids []string, column int) []string {
	var result []string
	for _, id := range ids {
		if n, ok := d.nodes[id]; ok && n.Column == column && !slices.Contains(result, id) {
			result = append(result, id)
		}
	}
	return result
}

// NodesInColumn returns all nodes assigned to the given column. The order is
// insertion order, or ascending ID after SetColumns.
func (d *DAG) NodesInColumn(column int) []*Node { return d.columns[column] }

// ColumnIDs returns the assigned column keys in ascending order.
// The [Unassigned] column is never included.
func (d *DAG) ColumnIDs() []int {
	keys := slices.Sorted(maps.Keys(d.columns))
	return slices.DeleteFunc(keys, func(c int) bool { return c <= Unassigned || len(d.columns[c]) == 0 })
}

// Validate checks graph integrity and returns nil if valid.
// It verifies that every edge connects existing nodes and that the directed
// graph is acyclic. Unassigned nodes take part in the cycle check.
//
// Returns ErrInvalidEdgeEndpoint or ErrGraphHasCycle. Cycle detection runs
// in O(N+E) time using depth-first search.
func (d *DAG) Validate() error {
	for _, e := range d.edges {
		_, okS := d.nodes[e.From]
		_, okD := d.nodes[e.To]
		if !okS || !okD {
			return ErrInvalidEdgeEndpoint
		}
	}
	return d.detectCycles()
}

func (d *DAG) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(d.nodes))
	var hasCycle bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, next := range d.outgoing[id] {
			switch color[next] {
			case white:
				dfs(next)
			case gray:
				hasCycle = true
			}
			if hasCycle {
				return
			}
		}
		color[id] = black
	}

	for _, id := range d.NodeIDs() {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return ErrGraphHasCycle
			}
		}
	}
	return nil
}

// PosMap creates a position lookup map from a slice of node IDs.
// The returned map maps each ID to its index in the slice.
func PosMap(ids []string) map[string]int {
	m := make(map[string]int, len(ids))
	for i, id := range ids {
		m[id] = i
	}
	return m
}

// NodeIDs extracts the ID from each node in a slice.
func NodeIDs(nodes []*Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
