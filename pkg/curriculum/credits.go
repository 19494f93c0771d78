package curriculum

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/matzehuels/gradebuilder/pkg/dag"
	"github.com/matzehuels/gradebuilder/pkg/layered"
)

// DefaultMaxCredits is the credit load above which a period is overloaded.
const DefaultMaxCredits = 32

// Attribute keys read from node metadata.
const (
	CreditsKey       = "credits"
	LegacyCreditsKey = "creditos"
)

// CreditsOf returns a course's credits. Numbers and numeric strings count;
// anything else, including negative or non-finite values, is 0.
func CreditsOf(meta dag.Metadata) float64 {
	v, ok := meta[CreditsKey]
	if !ok {
		v = meta[LegacyCreditsKey]
	}
	var f float64
	switch n := v.(type) {
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case float64:
		f = n
	case string:
		f, _ = strconv.ParseFloat(strings.TrimSpace(n), 64)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

// PeriodLoad is the credit total of one period.
type PeriodLoad struct {
	Period     int      `json:"period"`
	Credits    float64  `json:"credits"`
	Courses    []string `json:"courses"`
	Overloaded bool     `json:"overloaded"`
}

// Loads sums credits per period over courses with a valid period. Periods
// are returned in ascending order and courses by ID. A period is overloaded
// when its total exceeds maxCredits; maxCredits <= 0 disables the check.
func Loads(g *dag.DAG, maxCredits float64) []PeriodLoad {
	type course struct {
		period int
		node   *dag.Node
	}
	assigned := lo.FilterMap(g.Nodes(), func(n *dag.Node, _ int) (course, bool) {
		p, ok := layered.PeriodOf(n.Meta)
		return course{p, n}, ok
	})
	byPeriod := lo.GroupBy(assigned, func(c course) int { return c.period })

	periods := lo.Keys(byPeriod)
	slices.Sort(periods)

	loads := make([]PeriodLoad, 0, len(periods))
	for _, p := range periods {
		courses := byPeriod[p]
		total := lo.SumBy(courses, func(c course) float64 { return CreditsOf(c.node.Meta) })
		loads = append(loads, PeriodLoad{
			Period:     p,
			Credits:    total,
			Courses:    lo.Map(courses, func(c course, _ int) string { return c.node.ID }),
			Overloaded: maxCredits > 0 && total > maxCredits,
		})
	}
	return loads
}
