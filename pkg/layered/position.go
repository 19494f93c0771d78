package layered

// Mode selects how a column maps to an x coordinate.
type Mode int

const (
	// ModeColumnIndex places columns side by side: x is the column's
	// position among the sorted non-empty columns.
	ModeColumnIndex Mode = iota
	// ModePeriod derives x from the period value itself, so empty periods
	// still reserve horizontal space.
	ModePeriod
)

// String returns the name used in configuration and query parameters.
func (m Mode) String() string {
	if m == ModePeriod {
		return "period"
	}
	return "columns"
}

// ParseMode parses "columns" or "period". The empty string is ModeColumnIndex.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "", "columns":
		return ModeColumnIndex, true
	case "period":
		return ModePeriod, true
	}
	return ModeColumnIndex, false
}

// Point is a node position in pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Spacing holds the fixed distances used by [Spacing.Map].
type Spacing struct {
	ColumnWidth float64 // Horizontal distance between columns
	NodeHeight  float64 // Visual height of a course card
	RowGap      float64 // Vertical gap between cards
}

// DefaultSpacing matches the card size used by the curriculum frontend.
var DefaultSpacing = Spacing{ColumnWidth: 250, NodeHeight: 80, RowGap: 20}

// RowPitch is the vertical distance between consecutive rows.
func (s Spacing) RowPitch() float64 { return s.NodeHeight + s.RowGap }

func (s Spacing) withDefaults() Spacing {
	if s.ColumnWidth <= 0 {
		s.ColumnWidth = DefaultSpacing.ColumnWidth
	}
	if s.NodeHeight <= 0 {
		s.NodeHeight = DefaultSpacing.NodeHeight
	}
	if s.RowGap < 0 {
		s.RowGap = DefaultSpacing.RowGap
	}
	return s
}

// Map converts final column orderings into coordinates.
//
//	x = columnPosition × ColumnWidth      (ModeColumnIndex)
//	x = (period − 1) × ColumnWidth        (ModePeriod)
//	y = row × (NodeHeight + RowGap)
//
// Zero or negative ColumnWidth and NodeHeight take their defaults; a zero
// RowGap is honored.
func (s Spacing) Map(cols Columns, mode Mode) map[string]Point {
	s = s.withDefaults()
	positions := make(map[string]Point, cols.Len())
	for i, key := range cols.Keys() {
		x := float64(i) * s.ColumnWidth
		if mode == ModePeriod {
			x = float64(key-1) * s.ColumnWidth
		}
		for row, id := range cols[key] {
			positions[id] = Point{X: x, Y: float64(row) * s.RowPitch()}
		}
	}
	return positions
}
