package planar

import (
	"context"
	"fmt"
	"math"
)

// DefaultScale multiplies normalized coordinates, which lie in [-1, 1].
const DefaultScale = 500

// Point is a node position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Tester decides whether a graph can be drawn without crossings. It returns
// the verdict only; no combinatorial embedding is produced for the embedders
// to follow.
type Tester interface {
	TestPlanarity(g *Graph) bool
}

// Embedder places the nodes of a graph. Coordinates may use any scale;
// [Unconstrained] normalizes them. An Embedder makes no promise about edge
// crossings, even for planar input.
type Embedder interface {
	Embed(ctx context.Context, g *Graph) (map[string]Point, error)
}

// Result is the outcome of an unconstrained layout.
type Result struct {
	IsPlanar  bool
	Positions map[string]Point
}

// Unconstrained lays out graphs without column assignments. Planar graphs
// go to the Planar embedder, all others to Force. Coordinates are centered,
// scaled so the largest extent is 1, then multiplied by Scale.
//
// Result.IsPlanar is the Tester's verdict on the graph, not a property of
// the returned drawing. With the default [GraphvizEmbedder] a planar graph
// is usually drawn without crossings, but neato is a force model and may
// still cross edges.
type Unconstrained struct {
	Tester Tester
	Planar Embedder
	Force  Embedder
	Scale  float64 // <= 0 means DefaultScale
}

// New returns the default fallback: the LR planarity test, Graphviz neato
// for planar graphs and an Eades spring embedder otherwise.
func New() *Unconstrained {
	return &Unconstrained{
		Tester: LRTester{},
		Planar: &GraphvizEmbedder{},
		Force:  &ForceEmbedder{},
		Scale:  DefaultScale,
	}
}

// Layout tests g for planarity and embeds it with the matching embedder.
func (u *Unconstrained) Layout(ctx context.Context, g *Graph) (*Result, error) {
	isPlanar := u.Tester.TestPlanarity(g)
	if g.Order() == 0 {
		return &Result{IsPlanar: isPlanar, Positions: map[string]Point{}}, nil
	}

	embedder, name := u.Force, "force"
	if isPlanar {
		embedder, name = u.Planar, "planar"
	}
	raw, err := embedder.Embed(ctx, g)
	if err != nil {
		return nil, fmt.Errorf("%s embedding: %w", name, err)
	}

	scale := u.Scale
	if scale <= 0 {
		scale = DefaultScale
	}
	return &Result{IsPlanar: isPlanar, Positions: Rescale(raw, scale)}, nil
}

// IsPlanar reports planarity with the default tester.
func IsPlanar(g *Graph) bool { return LRTester{}.TestPlanarity(g) }

// Rescale centers positions on their mean and scales them so the largest
// absolute coordinate equals scale. A single node ends up at the origin.
func Rescale(pos map[string]Point, scale float64) map[string]Point {
	out := make(map[string]Point, len(pos))
	if len(pos) == 0 {
		return out
	}

	var cx, cy float64
	for _, p := range pos {
		cx += p.X
		cy += p.Y
	}
	cx /= float64(len(pos))
	cy /= float64(len(pos))

	extent := 0.0
	for _, p := range pos {
		extent = math.Max(extent, math.Max(math.Abs(p.X-cx), math.Abs(p.Y-cy)))
	}

	for id, p := range pos {
		q := Point{X: p.X - cx, Y: p.Y - cy}
		if extent > 0 {
			q.X *= scale / extent
			q.Y *= scale / extent
		}
		out[id] = q
	}
	return out
}
