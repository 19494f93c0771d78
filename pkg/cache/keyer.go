package cache

// Keyer derives cache keys. Implementations must return the same key for the
// same inputs and different keys whenever any option differs.
type Keyer interface {
	// LayoutKey is the key of a layered layout.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// PlanarKey is the key of an unconstrained layout.
	PlanarKey(graphHash string, opts PlanarKeyOpts) string

	// ReportKey is the key of a curriculum report.
	ReportKey(graphHash string, opts ReportKeyOpts) string

	// ArtifactKey is the key of a rendered SVG or DOT file.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the layered options that influence the result.
type LayoutKeyOpts struct {
	Mode        string  `json:"mode"`
	Iterations  int     `json:"iterations"`
	Fallback    string  `json:"fallback"`
	Adjacency   string  `json:"adjacency"`
	ColumnWidth float64 `json:"column_width"`
	RowPitch    float64 `json:"row_pitch"`
}

// PlanarKeyOpts are the unconstrained layout options that influence the result.
type PlanarKeyOpts struct {
	Scale float64 `json:"scale"`
}

// ReportKeyOpts are the report options that influence the result.
type ReportKeyOpts struct {
	MaxCredits float64       `json:"max_credits"`
	Layout     LayoutKeyOpts `json:"layout"`
}

// ArtifactKeyOpts are the render options that influence an artifact.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Labels bool    `json:"labels"`
	Scale  float64 `json:"scale,omitempty"`
}

// DefaultKeyer builds keys as "<kind>:<sha256>" over the graph hash and the
// JSON encoding of the options.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

func (DefaultKeyer) PlanarKey(graphHash string, opts PlanarKeyOpts) string {
	return hashKey("planar", graphHash, opts)
}

func (DefaultKeyer) ReportKey(graphHash string, opts ReportKeyOpts) string {
	return hashKey("report", graphHash, opts)
}

func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}
