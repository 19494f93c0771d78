package render

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/gradebuilder/pkg/graph"
	"github.com/matzehuels/gradebuilder/pkg/layered"
)

// Card size in points, matching the editor's course cards.
const (
	cardWidth  = 200.0
	cardHeight = 80.0
)

// Options configures DOT generation.
type Options struct {
	// Details adds period and credits under each course label.
	Details bool

	// Overloaded lists periods whose cards are highlighted.
	Overloaded []int

	// Scale is the PNG zoom factor (see [ToPNG]). Other formats ignore it.
	Scale float64
}

// ToDOT converts a graph and its layout to Graphviz DOT with pinned node
// positions. Layout y grows downwards and DOT y grows upwards, so y is
// negated.
func ToDOT(g graph.Graph, l graph.Layout, opts Options) string {
	var buf strings.Builder
	buf.WriteString("digraph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  splines=true;\n")
	fmt.Fprintf(&buf, "  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, fixedsize=true, width=%s, height=%s];\n",
		inches(cardWidth), inches(cardHeight))
	buf.WriteString("  edge [arrowsize=0.7];\n")
	buf.WriteString("\n")

	nodes := slices.SortedFunc(slices.Values(g.Nodes), func(a, b graph.Node) int { return strings.Compare(a.ID, b.ID) })
	for _, n := range nodes {
		p, ok := l.Positions[n.ID]
		if !ok {
			continue
		}
		attrs := []string{
			fmt.Sprintf("label=%q", fmtLabel(n, opts.Details)),
			fmt.Sprintf("pos=\"%s,%s!\"", num(p.X), num(0-p.Y)), // 0-y keeps the origin at "0", not "-0"
		}
		if period, ok := layered.PeriodOf(n.Data); ok && slices.Contains(opts.Overloaded, period) {
			attrs = append(attrs, "fillcolor=\"#fde2e2\"", "color=\"#c0392b\"")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		_, okS := l.Positions[e.Source]
		_, okT := l.Positions[e.Target]
		if okS && okT {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n graph.Node, details bool) string {
	label := n.Label()
	if !details {
		return label
	}
	var parts []string
	for _, k := range []string{graph.DataPeriod, graph.DataCredits} {
		if v, ok := n.Data[k]; ok {
			parts = append(parts, fmt.Sprintf("%s: %v", k, v))
		}
	}
	if len(parts) == 0 {
		return label
	}
	return label + "\n" + strings.Join(parts, "  ")
}

func inches(points float64) string { return num(points / 72) }

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
