package cli

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/gradebuilder/pkg/curriculum"
	"github.com/matzehuels/gradebuilder/pkg/dag"
	"github.com/matzehuels/gradebuilder/pkg/graph"
)

// Browser styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)

	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1).
			Width(26)
	columnActiveStyle    = columnStyle.BorderForeground(colorCyan)
	columnOverloadStyle  = columnStyle.BorderForeground(colorYellow)
	detailKeyStyle       = lipgloss.NewStyle().Foreground(colorGray).Width(14)
	periodHeaderStyle    = lipgloss.NewStyle().Bold(true)
	periodOverloadHeader = periodHeaderStyle.Foreground(colorYellow)
)

// =============================================================================
// PlanModel - Interactive period browser
// =============================================================================

// Course is one card in the browser.
type Course struct {
	ID         string
	Label      string
	Credits    float64
	Prereqs    []string
	Dependents []string
}

// Period is one column of the browser, in layout order.
type Period struct {
	Number     int
	Credits    float64
	Overloaded bool
	Courses    []Course
}

// PlanModel is the bubbletea model for browsing a laid-out curriculum.
type PlanModel struct {
	Periods []Period
	Col     int // selected period
	Row     int // selected course within the period
	Offset  int // first visible period
	Visible int // number of periods that fit the terminal
}

// NewPlanModel builds the browser from a layered layout and its report.
// Courses keep the order the layout chose for their column.
func NewPlanModel(g graph.Graph, l graph.Layout, rep *curriculum.Report) PlanModel {
	nodes := make(map[string]graph.Node, len(g.Nodes))
	for _, n := range g.Nodes {
		nodes[n.ID] = n
	}
	prereqs := make(map[string][]string)
	dependents := make(map[string][]string)
	for _, e := range g.Edges {
		if !slices.Contains(prereqs[e.Target], e.Source) {
			prereqs[e.Target] = append(prereqs[e.Target], e.Source)
		}
		if !slices.Contains(dependents[e.Source], e.Target) {
			dependents[e.Source] = append(dependents[e.Source], e.Target)
		}
	}
	loads := make(map[int]curriculum.PeriodLoad)
	if rep != nil {
		for _, p := range rep.Periods {
			loads[p.Period] = p
		}
	}

	keys := make([]int, 0, len(l.Columns))
	for k := range l.Columns {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	periods := make([]Period, 0, len(keys))
	for _, k := range keys {
		p := Period{Number: k, Credits: loads[k].Credits, Overloaded: loads[k].Overloaded}
		for _, id := range l.Columns[k] {
			n := nodes[id]
			p.Courses = append(p.Courses, Course{
				ID:         id,
				Label:      n.Label(),
				Credits:    curriculum.CreditsOf(dag.Metadata(n.Data)),
				Prereqs:    prereqs[id],
				Dependents: dependents[id],
			})
		}
		periods = append(periods, p)
	}
	return PlanModel{Periods: periods, Visible: 4}
}

// Selected returns the highlighted course, if any.
func (m PlanModel) Selected() (Course, bool) {
	if m.Col >= len(m.Periods) || m.Row >= len(m.Periods[m.Col].Courses) {
		return Course{}, false
	}
	return m.Periods[m.Col].Courses[m.Row], true
}

func (m PlanModel) Init() tea.Cmd {
	return nil
}

func (m PlanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			if m.Col > 0 {
				m.Col--
				m.clampRow()
			}
		case "right", "l":
			if m.Col < len(m.Periods)-1 {
				m.Col++
				m.clampRow()
			}
		case "up", "k":
			if m.Row > 0 {
				m.Row--
			}
		case "down", "j":
			if m.Col < len(m.Periods) && m.Row < len(m.Periods[m.Col].Courses)-1 {
				m.Row++
			}
		}
	case tea.WindowSizeMsg:
		m.Visible = max(1, msg.Width/(columnStyle.GetWidth()+2))
	}
	m.scroll()
	return m, nil
}

func (m *PlanModel) clampRow() {
	m.Row = min(m.Row, max(0, len(m.Periods[m.Col].Courses)-1))
}

func (m *PlanModel) scroll() {
	if m.Visible <= 0 {
		m.Visible = 1
	}
	if m.Col < m.Offset {
		m.Offset = m.Col
	}
	if m.Col >= m.Offset+m.Visible {
		m.Offset = m.Col - m.Visible + 1
	}
}

func (m PlanModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Curriculum"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("←/→ period  ↑/↓ course  q quit"))
	b.WriteString("\n\n")

	if len(m.Periods) == 0 {
		b.WriteString(listDimStyle.Render("No course has a period."))
		return b.String()
	}

	end := min(m.Offset+m.Visible, len(m.Periods))
	cols := make([]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		cols = append(cols, m.renderPeriod(i))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cols...))
	b.WriteString("\n")

	if c, ok := m.Selected(); ok {
		b.WriteString(renderCourse(c))
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [period %d/%d]", m.Col+1, len(m.Periods))))
	return b.String()
}

func (m PlanModel) renderPeriod(i int) string {
	p := m.Periods[i]

	header := periodHeaderStyle.Render(fmt.Sprintf("Period %d", p.Number))
	if p.Overloaded {
		header = periodOverloadHeader.Render(fmt.Sprintf("Period %d !", p.Number))
	}
	lines := []string{header, listDimStyle.Render(formatCredits(p.Credits) + " credits"), ""}
	for j, c := range p.Courses {
		switch {
		case i == m.Col && j == m.Row:
			lines = append(lines, listSelectedStyle.Render("▸ "+c.Label))
		default:
			lines = append(lines, listNormalStyle.Render("  "+c.Label))
		}
	}

	style := columnStyle
	switch {
	case i == m.Col:
		style = columnActiveStyle
	case p.Overloaded:
		style = columnOverloadStyle
	}
	return style.Render(strings.Join(lines, "\n"))
}

func renderCourse(c Course) string {
	row := func(k, v string) string {
		return detailKeyStyle.Render(k) + " " + StyleValue.Render(v)
	}
	none := func(ids []string) string {
		if len(ids) == 0 {
			return "—"
		}
		return strings.Join(ids, ", ")
	}
	return strings.Join([]string{
		StyleHighlight.Render(c.Label),
		row("id", c.ID),
		row("credits", formatCredits(c.Credits)),
		row("prerequisites", none(c.Prereqs)),
		row("unlocks", none(c.Dependents)),
	}, "\n")
}

func formatCredits(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
