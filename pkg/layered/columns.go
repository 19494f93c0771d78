package layered

import (
	"maps"
	"math"
	"slices"

	"github.com/samber/lo"

	"github.com/matzehuels/gradebuilder/pkg/dag"
	"github.com/matzehuels/gradebuilder/pkg/errors"
)

// Attribute keys read from node metadata.
const (
	PeriodKey       = "period"
	LegacyPeriodKey = "periodo"
)

// Columns maps a column key (a period) to the ordered node IDs drawn in it.
// A Columns value is owned by one computation: sweeps take one and return a
// new one rather than mutating shared state.
type Columns map[int][]string

// Keys returns the column keys in ascending order.
func (c Columns) Keys() []int { return slices.Sorted(maps.Keys(c)) }

// Clone returns a deep copy.
func (c Columns) Clone() Columns {
	out := make(Columns, len(c))
	for k, ids := range c {
		out[k] = slices.Clone(ids)
	}
	return out
}

// Index returns the position of every node in the given column.
func (c Columns) Index(key int) map[string]int { return dag.PosMap(c[key]) }

// ColumnOf returns the reverse mapping node ID → column key.
func (c Columns) ColumnOf() map[string]int {
	out := make(map[string]int)
	for k, ids := range c {
		for _, id := range ids {
			out[id] = k
		}
	}
	return out
}

// Len returns the number of nodes across all columns.
func (c Columns) Len() int {
	return lo.SumBy(lo.Values(c), func(ids []string) int { return len(ids) })
}

// PeriodOf extracts a node's period from its attributes.
//
// The period attribute is read from [PeriodKey], or from [LegacyPeriodKey]
// when the former is absent. It is valid only when it is a positive integer;
// JSON numbers decode as float64 and count when they have no fractional
// part. Strings, booleans and any other type are not periods.
func PeriodOf(meta dag.Metadata) (int, bool) {
	v, ok := meta[PeriodKey]
	if !ok {
		v, ok = meta[LegacyPeriodKey]
	}
	if !ok {
		return 0, false
	}
	p, ok := asInt(v)
	if !ok || p <= 0 {
		return 0, false
	}
	return p, true
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return uintToInt(uint64(n))
	case uint32:
		return uintToInt(uint64(n))
	case uint64:
		return uintToInt(n)
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	}
	return 0, false
}

func uintToInt(n uint64) (int, bool) {
	if n > math.MaxInt32 {
		return 0, false
	}
	return int(n), true
}

func floatToInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// AssignColumns reads every node's period, stores it as the node's column
// and returns the initial column mapping with IDs in ascending order.
//
// Nodes without a valid period become [dag.Unassigned] and are left out of
// the mapping. If the graph has nodes but none of them has a valid period,
// AssignColumns returns an INVALID_COLUMN error. An empty graph yields an
// empty mapping.
func AssignColumns(g *dag.DAG) (Columns, error) {
	periods := make(map[string]int, g.NodeCount())
	for _, n := range g.Nodes() {
		if p, ok := PeriodOf(n.Meta); ok {
			periods[n.ID] = p
		}
	}
	if g.NodeCount() > 0 && len(periods) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidColumn,
			"no node has a valid %q attribute (positive integer)", PeriodKey)
	}

	g.SetColumns(periods)

	cols := make(Columns)
	for _, key := range g.ColumnIDs() {
		cols[key] = dag.NodeIDs(g.NodesInColumn(key))
	}
	return cols, nil
}
