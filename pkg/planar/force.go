package planar

import (
	"context"

	"gonum.org/v1/gonum/graph/layout"
	"gonum.org/v1/gonum/graph/simple"
)

// ForceEmbedder places nodes with the Eades spring model from gonum. The
// initial placement is random, so repeated calls differ.
type ForceEmbedder struct {
	Updates   int     // Iterations (0 means 50)
	Repulsion float64 // Node repulsion strength (0 means 1)
	Rate      float64 // Step size (0 means 0.1)
	Theta     float64 // Barnes-Hut approximation threshold (0 means 0.1)
}

// Embed implements [Embedder].
func (f *ForceEmbedder) Embed(ctx context.Context, g *Graph) (map[string]Point, error) {
	ug := simple.NewUndirectedGraph()
	for i := range g.Order() {
		ug.AddNode(simple.Node(i))
	}
	for _, e := range g.edges {
		ug.SetEdge(ug.NewEdge(simple.Node(e[0]), simple.Node(e[1])))
	}

	eades := layout.EadesR2{
		Updates:   withDefault(f.Updates, 50),
		Repulsion: withDefault(f.Repulsion, 1),
		Rate:      withDefault(f.Rate, 0.1),
		Theta:     withDefault(f.Theta, 0.1),
	}
	o := layout.NewOptimizerR2(ug, eades.Update)
	for o.Update() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	pos := make(map[string]Point, g.Order())
	for i, id := range g.nodes {
		c := o.Coord2(int64(i))
		pos[id] = Point{X: c.X, Y: c.Y}
	}
	return pos, nil
}

func withDefault[T int | float64](v, def T) T {
	if v <= 0 {
		return def
	}
	return v
}
