package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/gradebuilder/pkg/config"
	"github.com/matzehuels/gradebuilder/pkg/curriculum"
	"github.com/matzehuels/gradebuilder/pkg/graph"
	"github.com/matzehuels/gradebuilder/pkg/layered"
	"github.com/matzehuels/gradebuilder/pkg/pipeline"
)

const sampleGraph = `{
  "nodes": [
    {"id": "calc1", "data": {"label": "Calculus I", "period": 1, "credits": 6}},
    {"id": "prog1", "data": {"label": "Programming I", "period": 1, "credits": 6}},
    {"id": "calc2", "data": {"label": "Calculus II", "period": 2, "credits": 6}},
    {"id": "algo", "data": {"label": "Algorithms", "period": 3, "credits": 5}}
  ],
  "edges": [
    {"id": "e1", "source": "calc1", "target": "calc2"},
    {"id": "e2", "source": "prog1", "target": "algo"},
    {"id": "e3", "source": "calc2", "target": "algo"},
    {"id": "e4", "source": "calc1", "target": "algo"}
  ]
}`

// isolate points the config and caches at temporary locations.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	for _, kv := range os.Environ() {
		if name, _, _ := strings.Cut(kv, "="); strings.HasPrefix(name, "GRADEBUILDER_") {
			t.Setenv(name, "")
			os.Unsetenv(name)
		}
	}
	path := filepath.Join(dir, "plan.json")
	if err := os.WriteFile(path, []byte(sampleGraph), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	dir, err := cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/xdg", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}

	t.Setenv("XDG_CACHE_HOME", "")
	home, _ := os.UserHomeDir()
	dir, _ = cacheDir()
	if want := filepath.Join(home, ".cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, log.InfoLevel).RootCommand()
	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"serve", "layout", "render", "check", "view", "cache", "completion"} {
		if !slices.Contains(names, want) {
			t.Errorf("missing subcommand %q in %v", want, names)
		}
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"svg"}},
		{"svg", []string{"svg"}},
		{"svg, dot,,png", []string{"svg", "dot", "png"}},
	}
	for _, tt := range tests {
		if got := parseFormats(tt.in); !slices.Equal(got, tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		output   string
		multiple bool
		want     string
	}{
		{"", false, "plans/cs.svg"},
		{"out.svg", false, "out.svg"},
		{"out/plan", true, "out/plan.svg"},
	}
	for _, tt := range tests {
		if got := outputPath("plans/cs.json", tt.output, "svg", tt.multiple); got != tt.want {
			t.Errorf("outputPath(%q, %v) = %q, want %q", tt.output, tt.multiple, got, tt.want)
		}
	}
}

func TestParseMove(t *testing.T) {
	id, period, err := parseMove("calc2=3")
	if err != nil || id != "calc2" || period != 3 {
		t.Errorf("parseMove() = %q, %d, %v", id, period, err)
	}
	if id, _, _ := parseMove("a=b=2"); id != "a=b" {
		t.Errorf("course IDs may contain '=': got %q", id)
	}
	for _, bad := range []string{"calc2", "=2", "calc2=x"} {
		if _, _, err := parseMove(bad); err == nil {
			t.Errorf("parseMove(%q) should fail", bad)
		}
	}
}

func TestLayoutFlagsOverrideConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Layout.Mode = "period"

	f := layoutFlags{iterations: -1}
	opts, err := f.options(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Mode != layered.ModePeriod {
		t.Errorf("config mode not applied: %v", opts.Mode)
	}

	f = layoutFlags{mode: "columns", fallback: "previous", iterations: 7}
	opts, err = f.options(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Mode != layered.ModeColumnIndex || opts.Fallback != layered.FallbackPreviousIndex || opts.Iterations != 7 {
		t.Errorf("flags not applied: %+v", opts)
	}

	f = layoutFlags{adjacency: "sideways", iterations: -1}
	if _, err := f.options(cfg); err == nil {
		t.Error("invalid adjacency should fail")
	}
}

func TestLayoutCommandWritesLayout(t *testing.T) {
	input := isolate(t)
	output := filepath.Join(filepath.Dir(input), "out.json")

	if _, err := execute(t, "layout", input, "-o", output); err != nil {
		t.Fatalf("layout: %v", err)
	}
	l, err := graph.ReadLayoutFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Positions) != 4 {
		t.Errorf("positions = %v", l.Positions)
	}
	if l.Positions["calc2"].X != 250 || l.Positions["algo"].X != 500 {
		t.Errorf("courses not placed by period: %+v", l.Positions)
	}

	// the first run populated the file cache
	out, err := execute(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	entries, _ := os.ReadDir(strings.TrimSpace(out))
	if len(entries) == 0 {
		t.Errorf("cache dir %s is empty", out)
	}
	if _, err := execute(t, "cache", "clear"); err != nil {
		t.Fatal(err)
	}
}

func TestLayoutCommandRejectsCycles(t *testing.T) {
	dir := t.TempDir()
	isolate(t)
	input := filepath.Join(dir, "cycle.json")
	body := `{"nodes":[{"id":"a","data":{"period":1}},{"id":"b","data":{"period":2}}],
		"edges":[{"source":"a","target":"b"},{"source":"b","target":"a"}]}`
	if err := os.WriteFile(input, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "layout", input, "--no-cache"); err == nil {
		t.Error("layout of a cyclic graph should fail")
	}
}

func TestRenderCommandWritesDOT(t *testing.T) {
	input := isolate(t)
	output := filepath.Join(filepath.Dir(input), "plan.dot")

	if _, err := execute(t, "render", input, "-f", "dot", "-o", output, "--no-cache"); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"calc1" -> "calc2";`) {
		t.Errorf("DOT output missing edge:\n%s", data)
	}
}

func TestCheckStrict(t *testing.T) {
	input := isolate(t)

	if _, err := execute(t, "check", input, "--no-cache", "--strict"); err != nil {
		t.Errorf("default limit should pass: %v", err)
	}
	if _, err := execute(t, "check", input, "--no-cache", "--strict", "--max-credits", "10"); err == nil {
		t.Error("period 1 has 12 credits and should fail a limit of 10")
	}
	if _, err := execute(t, "check", input, "--no-cache", "--strict", "--move", "calc2=1"); err == nil {
		t.Error("moving calc2 next to its prerequisite should fail")
	}
	if _, err := execute(t, "check", input, "--no-cache", "--move", "nonsense"); err == nil {
		t.Error("malformed --move should fail")
	}
}

func TestCheckReduce(t *testing.T) {
	input := isolate(t)
	out := filepath.Join(filepath.Dir(input), "reduced.json")
	if _, err := execute(t, "check", input, "--no-cache", "--reduce", out); err != nil {
		t.Fatalf("check --reduce: %v", err)
	}

	g, err := graph.ReadGraphFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, e := range g.Edges {
		ids = append(ids, e.ID)
	}
	if !slices.Equal(ids, []string{"e1", "e2", "e3"}) {
		t.Errorf("reduced edges = %v, want [e1 e2 e3]", ids)
	}
	if len(g.Nodes) != 4 || g.Nodes[0].Label() != "Algorithms" {
		t.Errorf("reduced nodes = %+v", g.Nodes)
	}
}

func TestReportTable(t *testing.T) {
	rep := &curriculum.Report{Periods: []curriculum.PeriodLoad{
		{Period: 1, Credits: 12, Courses: []string{"calc1", "prog1"}},
		{Period: 2, Credits: 40, Courses: []string{"calc2"}, Overloaded: true},
	}}
	out := reportTable(rep)
	for _, want := range []string{"Period", "calc1, prog1", "40", "overloaded"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestPlanModelNavigation(t *testing.T) {
	g, err := graph.UnmarshalGraph([]byte(sampleGraph))
	if err != nil {
		t.Fatal(err)
	}
	runner := pipeline.NewRunner(nil, nil, log.New(io.Discard))
	l, _, err := runner.Layered(context.Background(), g, layered.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	opts := curriculum.DefaultOptions()
	opts.MaxCredits = 10
	rep, _, err := runner.Report(context.Background(), g, opts)
	if err != nil {
		t.Fatal(err)
	}

	m := NewPlanModel(g, l, rep)
	if len(m.Periods) != 3 || !m.Periods[0].Overloaded {
		t.Fatalf("periods = %+v", m.Periods)
	}

	press := func(m PlanModel, key tea.KeyMsg) PlanModel {
		next, _ := m.Update(key)
		return next.(PlanModel)
	}
	m = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	if m.Row != 1 {
		t.Errorf("Row = %d after down, want 1", m.Row)
	}
	m = press(m, tea.KeyMsg{Type: tea.KeyRight})
	if m.Col != 1 || m.Row != 0 {
		t.Errorf("Col, Row = %d, %d after right, want 1, 0", m.Col, m.Row)
	}
	c, ok := m.Selected()
	if !ok || c.ID != "calc2" {
		t.Fatalf("Selected() = %+v, %v", c, ok)
	}
	if !slices.Equal(c.Prereqs, []string{"calc1"}) || !slices.Equal(c.Dependents, []string{"algo"}) {
		t.Errorf("course links = %v / %v", c.Prereqs, c.Dependents)
	}

	view := m.View()
	for _, want := range []string{"Period 2", "Calculus II", "calc1"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}); cmd == nil {
		t.Error("q should quit")
	}
}
