// Package render draws a laid-out curriculum.
//
// [ToDOT] turns a graph and its computed [graph.Layout] into Graphviz DOT
// source with every course pinned at its layout position, so Graphviz only
// routes edges and draws the cards. [RenderSVG] runs the DOT through the
// embedded Graphviz (neato with pinned nodes), and [ToPDF] and [ToPNG]
// convert the SVG with the external rsvg-convert tool.
//
//	dot := render.ToDOT(g, layout, render.Options{Details: true})
//	svg, err := render.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//
// Courses without a position (no valid period in a layered layout) are
// left out of the drawing, as are edges touching them.
//
// [graph.Layout]: github.com/matzehuels/gradebuilder/pkg/graph.Layout
package render
