package dag_test

import (
	"fmt"

	"github.com/matzehuels/gradebuilder/pkg/dag"
)

func ExampleDAG_basic() {
	// A three-period chain: calc1 → calc2 → calc3
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "calc1", Column: 1})
	_ = g.AddNode(dag.Node{ID: "calc2", Column: 2})
	_ = g.AddNode(dag.Node{ID: "calc3", Column: 3})
	_ = g.AddEdge(dag.Edge{ID: "e1", From: "calc1", To: "calc2"})
	_ = g.AddEdge(dag.Edge{ID: "e2", From: "calc2", To: "calc3"})

	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Columns:", g.ColumnIDs())
	// Output:
	// Nodes: 3
	// Edges: 2
	// Columns: [1 2 3]
}

func ExampleDAG_PredecessorsInColumn() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "algebra", Column: 1})
	_ = g.AddNode(dag.Node{ID: "calc1", Column: 1})
	_ = g.AddNode(dag.Node{ID: "physics", Column: 2})
	_ = g.AddNode(dag.Node{ID: "mechanics", Column: 3})
	_ = g.AddEdge(dag.Edge{From: "algebra", To: "mechanics"})
	_ = g.AddEdge(dag.Edge{From: "calc1", To: "physics"})
	_ = g.AddEdge(dag.Edge{From: "physics", To: "mechanics"})

	fmt.Println("In column 2:", g.PredecessorsInColumn("mechanics", 2))
	fmt.Println("In column 1:", g.PredecessorsInColumn("mechanics", 1))
	// Output:
	// In column 2: [physics]
	// In column 1: [algebra]
}

func ExampleDAG_Validate() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "a", Column: 1})
	_ = g.AddNode(dag.Node{ID: "b", Column: 2})
	_ = g.AddNode(dag.Node{ID: "c", Column: 3})
	_ = g.AddEdge(dag.Edge{From: "a", To: "b"})
	_ = g.AddEdge(dag.Edge{From: "b", To: "c"})
	_ = g.AddEdge(dag.Edge{From: "c", To: "a"})

	fmt.Println(g.Validate())
	// Output:
	// graph contains a cycle
}

func ExampleCountLayerCrossings() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "a", Column: 1})
	_ = g.AddNode(dag.Node{ID: "b", Column: 1})
	_ = g.AddNode(dag.Node{ID: "x", Column: 2})
	_ = g.AddNode(dag.Node{ID: "y", Column: 2})

	// a→y and b→x cross when a is above b
	_ = g.AddEdge(dag.Edge{From: "a", To: "y"})
	_ = g.AddEdge(dag.Edge{From: "b", To: "x"})

	fmt.Println("Crossings:", dag.CountLayerCrossings(g, []string{"a", "b"}, []string{"x", "y"}))
	fmt.Println("After reorder:", dag.CountLayerCrossings(g, []string{"b", "a"}, []string{"x", "y"}))
	// Output:
	// Crossings: 1
	// After reorder: 0
}
