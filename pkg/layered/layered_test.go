package layered

import (
	"context"
	stderrors "errors"
	"maps"
	"math/rand/v2"
	"reflect"
	"slices"
	"testing"

	"github.com/matzehuels/gradebuilder/pkg/dag"
	"github.com/matzehuels/gradebuilder/pkg/errors"
)

type course struct {
	id     string
	period any
}

func buildGraph(t *testing.T, courses []course, edges [][2]string) *dag.DAG {
	t.Helper()
	g := dag.New(nil)
	for _, c := range courses {
		meta := dag.Metadata{}
		if c.period != nil {
			meta[PeriodKey] = c.period
		}
		if err := g.AddNode(dag.Node{ID: c.id, Meta: meta}); err != nil {
			t.Fatalf("AddNode(%s): %v", c.id, err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(dag.Edge{From: e[0], To: e[1]}); err != nil {
			t.Fatalf("AddEdge(%v): %v", e, err)
		}
	}
	return g
}

// curriculum is a small four-period plan with a few crossing prerequisites.
var (
	curriculumCourses = []course{
		{"algebra", 1}, {"calc1", 1}, {"intro", 1}, {"logic", 1},
		{"calc2", 2}, {"data", 2}, {"discrete", 2}, {"linalg", 2}, {"prog", 2},
		{"algo", 3}, {"calc3", 3}, {"db", 3}, {"stats", 3},
		{"ml", 4}, {"thesis", 4},
	}
	curriculumEdges = [][2]string{
		{"calc1", "calc2"}, {"algebra", "linalg"}, {"intro", "prog"}, {"logic", "discrete"},
		{"intro", "data"}, {"calc1", "stats"}, {"prog", "algo"}, {"data", "algo"},
		{"discrete", "algo"}, {"calc2", "calc3"}, {"data", "db"}, {"linalg", "ml"},
		{"stats", "ml"}, {"algo", "thesis"}, {"db", "thesis"}, {"logic", "db"},
	}
)

func TestComputeWorkedExample(t *testing.T) {
	g := buildGraph(t,
		[]course{{"A", 1}, {"B", 1}, {"C", 2}},
		[][2]string{{"A", "C"}, {"B", "C"}})

	res, err := Compute(g, DefaultOptions())
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}

	want := map[string]Point{
		"A": {X: 0, Y: 0},
		"B": {X: 0, Y: 100},
		"C": {X: 250, Y: 0},
	}
	if !maps.Equal(res.Positions, want) {
		t.Errorf("Positions = %v, want %v", res.Positions, want)
	}
}

func TestComputeDeterministic(t *testing.T) {
	first, err := Compute(buildGraph(t, curriculumCourses, curriculumEdges), DefaultOptions())
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}

	// Insertion order of nodes and edges must not matter.
	rng := rand.New(rand.NewPCG(1, 2))
	for i := range 10 {
		courses := slices.Clone(curriculumCourses)
		edges := slices.Clone(curriculumEdges)
		rng.Shuffle(len(courses), func(a, b int) { courses[a], courses[b] = courses[b], courses[a] })
		rng.Shuffle(len(edges), func(a, b int) { edges[a], edges[b] = edges[b], edges[a] })

		got, err := Compute(buildGraph(t, courses, edges), DefaultOptions())
		if err != nil {
			t.Fatalf("run %d: Compute() error: %v", i, err)
		}
		if !reflect.DeepEqual(got, first) {
			t.Errorf("run %d: result differs\n got %v\nwant %v", i, got.Columns, first.Columns)
		}
	}
}

func TestOrderColumnsIsPermutation(t *testing.T) {
	for _, opts := range []Options{
		DefaultOptions(),
		{Fallback: FallbackPreviousIndex},
		{Adjacency: AdjacencyUndirected},
		{Iterations: 12, Fallback: FallbackPreviousIndex, Adjacency: AdjacencyUndirected},
	} {
		g := buildGraph(t, curriculumCourses, curriculumEdges)
		initial, err := AssignColumns(g)
		if err != nil {
			t.Fatalf("AssignColumns() error: %v", err)
		}
		before := initial.Clone()

		final := opts.Orderer().OrderColumns(g, initial)

		if !reflect.DeepEqual(initial, before) {
			t.Errorf("%+v: input columns were modified", opts)
		}
		if !slices.Equal(final.Keys(), initial.Keys()) {
			t.Fatalf("%+v: keys = %v, want %v", opts, final.Keys(), initial.Keys())
		}
		for _, k := range initial.Keys() {
			if got, want := slices.Sorted(slices.Values(final[k])), initial[k]; !slices.Equal(got, want) {
				t.Errorf("%+v: column %d = %v, want permutation of %v", opts, k, final[k], want)
			}
		}
	}
}

func TestComputeRejectsCycle(t *testing.T) {
	tests := []struct {
		name    string
		courses []course
		edges   [][2]string
	}{
		{
			name:    "cycle across periods",
			courses: []course{{"A", 1}, {"B", 2}, {"C", 3}},
			edges:   [][2]string{{"A", "B"}, {"B", "C"}, {"C", "A"}},
		},
		{
			name:    "cycle among unassigned courses",
			courses: []course{{"A", 1}, {"U", nil}, {"V", 0}},
			edges:   [][2]string{{"A", "U"}, {"U", "V"}, {"V", "U"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Compute(buildGraph(t, tt.courses, tt.edges), DefaultOptions())
			if !errors.Is(err, errors.ErrCodeCycle) {
				t.Fatalf("Compute() error = %v, want CYCLE", err)
			}
			if res != nil {
				t.Errorf("Compute() result = %v, want nil", res)
			}
		})
	}
}

func TestComputeColumnExclusion(t *testing.T) {
	g := buildGraph(t, []course{
		{"ok", 1},
		{"float", 2.0},
		{"zero", 0},
		{"negative", -1},
		{"missing", nil},
		{"string", "2"},
		{"fraction", 1.5},
		{"bool", true},
	}, [][2]string{{"ok", "zero"}, {"missing", "float"}})

	res, err := Compute(g, DefaultOptions())
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	got := slices.Sorted(maps.Keys(res.Positions))
	if want := []string{"float", "ok"}; !slices.Equal(got, want) {
		t.Errorf("positioned nodes = %v, want %v", got, want)
	}
}

func TestComputeInvalidColumn(t *testing.T) {
	g := buildGraph(t, []course{{"a", nil}, {"b", 0}}, [][2]string{{"a", "b"}})
	_, err := Compute(g, DefaultOptions())
	if !errors.Is(err, errors.ErrCodeInvalidColumn) {
		t.Errorf("Compute() error = %v, want INVALID_COLUMN", err)
	}
}

func TestComputeEmptyGraph(t *testing.T) {
	res, err := Compute(dag.New(nil), DefaultOptions())
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if len(res.Positions) != 0 {
		t.Errorf("Positions = %v, want empty", res.Positions)
	}
}

func TestCoordinateMonotonicity(t *testing.T) {
	for _, mode := range []Mode{ModeColumnIndex, ModePeriod} {
		g := buildGraph(t, curriculumCourses, curriculumEdges)
		opts := DefaultOptions()
		opts.Mode = mode
		res, err := Compute(g, opts)
		if err != nil {
			t.Fatalf("Compute() error: %v", err)
		}

		keys := res.Columns.Keys()
		for i := 1; i < len(keys); i++ {
			left := res.Positions[res.Columns[keys[i-1]][0]]
			right := res.Positions[res.Columns[keys[i]][0]]
			if left.X >= right.X {
				t.Errorf("%v: column %d x=%v not left of column %d x=%v", mode, keys[i-1], left.X, keys[i], right.X)
			}
		}
		for _, k := range keys {
			col := res.Columns[k]
			for row := 1; row < len(col); row++ {
				above, below := res.Positions[col[row-1]], res.Positions[col[row]]
				if above.Y >= below.Y {
					t.Errorf("%v: %s y=%v not above %s y=%v", mode, col[row-1], above.Y, col[row], below.Y)
				}
				if above.X != below.X {
					t.Errorf("%v: column %d has mixed x", mode, k)
				}
			}
		}
	}
}

func TestPeriodMode(t *testing.T) {
	g := buildGraph(t, []course{{"a", 1}, {"c", 3}, {"f", 6}}, nil)

	tests := []struct {
		mode Mode
		want map[string]float64
	}{
		{ModeColumnIndex, map[string]float64{"a": 0, "c": 250, "f": 500}},
		{ModePeriod, map[string]float64{"a": 0, "c": 500, "f": 1250}},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			opts := DefaultOptions()
			opts.Mode = tt.mode
			res, err := Compute(g, opts)
			if err != nil {
				t.Fatalf("Compute() error: %v", err)
			}
			for id, x := range tt.want {
				if res.Positions[id].X != x {
					t.Errorf("x(%s) = %v, want %v", id, res.Positions[id].X, x)
				}
			}
		})
	}
}

func TestFallbackStrategies(t *testing.T) {
	// d has no predecessor in column 1; e and c do.
	g := buildGraph(t,
		[]course{{"a", 1}, {"b", 1}, {"c", 2}, {"d", 2}, {"e", 2}},
		[][2]string{{"b", "c"}, {"a", "e"}})

	tests := []struct {
		fallback Fallback
		want     []string
	}{
		{FallbackZero, []string{"d", "e", "c"}},
		{FallbackPreviousIndex, []string{"e", "c", "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.fallback.String(), func(t *testing.T) {
			opts := DefaultOptions()
			opts.Fallback = tt.fallback
			res, err := Compute(g, opts)
			if err != nil {
				t.Fatalf("Compute() error: %v", err)
			}
			if got := res.Columns[2]; !slices.Equal(got, tt.want) {
				t.Errorf("column 2 = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAdjacencyStrategies(t *testing.T) {
	// Edges point from column 2 back to column 1, so directed sweeps find no
	// anchors while undirected sweeps do.
	g := buildGraph(t,
		[]course{{"a", 1}, {"b", 1}, {"x", 2}, {"y", 2}},
		[][2]string{{"x", "b"}, {"y", "a"}})

	tests := []struct {
		adjacency Adjacency
		want      []string
		crossings int
	}{
		{AdjacencyDirected, []string{"x", "y"}, 1},
		{AdjacencyUndirected, []string{"y", "x"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.adjacency.String(), func(t *testing.T) {
			opts := DefaultOptions()
			opts.Adjacency = tt.adjacency
			res, err := Compute(g, opts)
			if err != nil {
				t.Fatalf("Compute() error: %v", err)
			}
			if got := res.Columns[2]; !slices.Equal(got, tt.want) {
				t.Errorf("column 2 = %v, want %v", got, tt.want)
			}
			if res.Crossings != tt.crossings {
				t.Errorf("Crossings = %d, want %d", res.Crossings, tt.crossings)
			}
		})
	}
}

func TestPeriodOf(t *testing.T) {
	tests := []struct {
		name   string
		meta   dag.Metadata
		want   int
		wantOK bool
	}{
		{"int", dag.Metadata{"period": 3}, 3, true},
		{"int64", dag.Metadata{"period": int64(2)}, 2, true},
		{"json number", dag.Metadata{"period": float64(4)}, 4, true},
		{"legacy key", dag.Metadata{"periodo": 5}, 5, true},
		{"period wins over legacy", dag.Metadata{"period": 1, "periodo": 7}, 1, true},
		{"invalid period hides legacy", dag.Metadata{"period": 0, "periodo": 7}, 0, false},
		{"zero", dag.Metadata{"period": 0}, 0, false},
		{"negative", dag.Metadata{"period": -2}, 0, false},
		{"fraction", dag.Metadata{"period": 2.5}, 0, false},
		{"string", dag.Metadata{"period": "2"}, 0, false},
		{"nil", dag.Metadata{"period": nil}, 0, false},
		{"missing", dag.Metadata{}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PeriodOf(tt.meta)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("PeriodOf(%v) = (%d, %v), want (%d, %v)", tt.meta, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestAssignColumnsSortsIDs(t *testing.T) {
	g := buildGraph(t, []course{{"z", 1}, {"m", 1}, {"a", 1}, {"q", 2}}, nil)
	cols, err := AssignColumns(g)
	if err != nil {
		t.Fatalf("AssignColumns() error: %v", err)
	}
	if got := cols[1]; !slices.Equal(got, []string{"a", "m", "z"}) {
		t.Errorf("column 1 = %v, want [a m z]", got)
	}
	if got := cols.ColumnOf()["q"]; got != 2 {
		t.Errorf("ColumnOf(q) = %d, want 2", got)
	}
	n, _ := g.Node("z")
	if n.Column != 1 {
		t.Errorf("node z Column = %d, want 1", n.Column)
	}
}

func TestParseOptions(t *testing.T) {
	if m, ok := ParseMode("period"); !ok || m != ModePeriod {
		t.Errorf("ParseMode(period) = %v, %v", m, ok)
	}
	if _, ok := ParseMode("spiral"); ok {
		t.Error("ParseMode(spiral) should fail")
	}
	if f, ok := ParseFallback("previous"); !ok || f != FallbackPreviousIndex {
		t.Errorf("ParseFallback(previous) = %v, %v", f, ok)
	}
	if a, ok := ParseAdjacency(""); !ok || a != AdjacencyDirected {
		t.Errorf("ParseAdjacency(\"\") = %v, %v", a, ok)
	}
}

func TestComputeContextStopsWhenDone(t *testing.T) {
	g := buildGraph(t, curriculumCourses, curriculumEdges)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := DefaultOptions()
	opts.Iterations = 1 << 30
	res, err := ComputeContext(ctx, g, opts)
	if res != nil {
		t.Errorf("ComputeContext() returned a result after cancellation")
	}
	if !errors.Is(err, errors.ErrCodeTimeout) || !stderrors.Is(err, context.Canceled) {
		t.Errorf("ComputeContext() error = %v, want TIMEOUT wrapping context.Canceled", err)
	}

	// validation still runs first
	cyclic := buildGraph(t, []course{{"a", 1}, {"b", 2}}, [][2]string{{"a", "b"}, {"b", "a"}})
	if _, err := ComputeContext(ctx, cyclic, DefaultOptions()); !errors.Is(err, errors.ErrCodeCycle) {
		t.Errorf("ComputeContext() error = %v, want CYCLE", err)
	}
}

func TestNormalizeIterations(t *testing.T) {
	for _, n := range []int{-1, 0} {
		opts := DefaultOptions()
		opts.Iterations = n
		if got := opts.Normalize(); got != DefaultOptions() {
			t.Errorf("Normalize() with Iterations=%d = %+v", n, got)
		}
	}

	zero := DefaultOptions()
	zero.Iterations = 0
	a, err := Compute(buildGraph(t, curriculumCourses, curriculumEdges), zero)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Compute(buildGraph(t, curriculumCourses, curriculumEdges), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a.Columns, b.Columns) {
		t.Errorf("Iterations=0 ordered %v, default ordered %v", a.Columns, b.Columns)
	}
}
