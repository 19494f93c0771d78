package render

import (
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/gradebuilder/pkg/graph"
)

func fixture() (graph.Graph, graph.Layout) {
	g := graph.Graph{
		Nodes: []graph.Node{
			{ID: "calc1", Data: map[string]any{"label": "Calculus I", "period": 1.0, "credits": 6.0}},
			{ID: "calc2", Data: map[string]any{"period": 2.0}},
			{ID: "free", Data: map[string]any{"label": "Free elective"}},
		},
		Edges: []graph.Edge{
			{ID: "e1", Source: "calc1", Target: "calc2"},
			{ID: "e2", Source: "free", Target: "calc2"},
		},
	}
	l := graph.Layout{Positions: map[string]graph.Position{
		"calc1": {X: 0, Y: 0},
		"calc2": {X: 250, Y: 100},
	}}
	return g, l
}

func TestToDOT(t *testing.T) {
	g, l := fixture()
	dot := ToDOT(g, l, Options{})

	for _, want := range []string{
		"digraph G {",
		"inputscale=72;",
		`"calc1" [label="Calculus I", pos="0,0!"];`,
		`"calc2" [label="calc2", pos="250,-100!"];`,
		`"calc1" -> "calc2";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "free") {
		t.Errorf("unplaced course should be omitted:\n%s", dot)
	}
}

func TestToDOTDetailsAndOverload(t *testing.T) {
	g, l := fixture()
	dot := ToDOT(g, l, Options{Details: true, Overloaded: []int{1}})

	if !strings.Contains(dot, `label="Calculus I\nperiod: 1  credits: 6"`) {
		t.Errorf("detailed label missing:\n%s", dot)
	}
	calc1 := lineWith(dot, `"calc1" [`)
	if !strings.Contains(calc1, "#fde2e2") {
		t.Errorf("overloaded period should be highlighted: %s", calc1)
	}
	if strings.Contains(lineWith(dot, `"calc2" [`), "#fde2e2") {
		t.Error("period 2 is not overloaded")
	}
}

func TestToDOTIsDeterministic(t *testing.T) {
	g, l := fixture()
	first := ToDOT(g, l, Options{})
	g.Nodes[0], g.Nodes[1] = g.Nodes[1], g.Nodes[0]
	if ToDOT(g, l, Options{}) != first {
		t.Error("node order in the payload should not change the DOT output")
	}
}

func TestRenderDOTFormat(t *testing.T) {
	g, l := fixture()
	out, err := Render(context.Background(), g, l, Options{}, FormatDOT)
	if err != nil {
		t.Fatalf("Render(dot) error: %v", err)
	}
	if !strings.HasPrefix(string(out), "digraph G {") {
		t.Errorf("Render(dot) = %q", out)
	}
}

func TestRsvgArgs(t *testing.T) {
	tests := []struct {
		format string
		scale  float64
		want   []string
	}{
		{FormatPDF, 3, []string{"-f", "pdf"}},
		{FormatPNG, 0, []string{"-f", "png", "-z", "2.00"}},
		{FormatPNG, 1.5, []string{"-f", "png", "-z", "1.50"}},
	}
	for _, tt := range tests {
		if got := rsvgArgs(tt.format, tt.scale); !slices.Equal(got, tt.want) {
			t.Errorf("rsvgArgs(%q, %v) = %v, want %v", tt.format, tt.scale, got, tt.want)
		}
	}
}

func TestConvertNeedsRsvg(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	_, err := ToPNG(context.Background(), []byte("<svg/>"), 2)
	if err == nil || !strings.Contains(err.Error(), "librsvg") {
		t.Errorf("ToPNG() without rsvg-convert = %v, want install hint", err)
	}
	_, err = ToPDF(context.Background(), []byte("<svg/>"))
	if err == nil || !strings.Contains(err.Error(), "pdf export") {
		t.Errorf("ToPDF() without rsvg-convert = %v, want install hint", err)
	}
}

func TestValidateFormat(t *testing.T) {
	for _, f := range Formats {
		if err := ValidateFormat(f); err != nil {
			t.Errorf("ValidateFormat(%q) = %v", f, err)
		}
	}
	for _, f := range []string{"", "SVG", "gif"} {
		if err := ValidateFormat(f); err == nil {
			t.Errorf("ValidateFormat(%q) should fail", f)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00" width="100" height="50"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
	if !strings.HasSuffix(out, "<g/></svg>") {
		t.Errorf("body should be preserved: %s", out)
	}

	plain := []byte("<svg><g/></svg>")
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("SVG without viewBox should be unchanged")
	}
}

func lineWith(s, prefix string) string {
	for _, line := range strings.Split(s, "\n") {
		if strings.Contains(line, prefix) {
			return line
		}
	}
	return ""
}
