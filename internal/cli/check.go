package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gradebuilder/pkg/curriculum"
	"github.com/matzehuels/gradebuilder/pkg/graph"
)

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	var (
		maxCredits float64
		moves      []string
		asJSON     bool
		strict     bool
		noCache    bool
		reduce     string
		flags      layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "check [graph.json]",
		Short: "Check credit loads and prerequisites of a curriculum",
		Long: `Check credit loads and prerequisites of a curriculum.

Prints the credits of every period, flags periods above the credit limit,
lists prerequisites already implied by a longer chain, and reports edge
crossings before and after ordering.

--move COURSE=PERIOD checks whether a course may move to another period
without breaking its prerequisites or the credit limit. With --strict the
command fails when a period is overloaded or a move is rejected.

--reduce FILE writes a copy of the graph without the redundant
prerequisites. Courses keep their data; editor-only fields such as node
positions are not carried over.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts, err := cfg.CurriculumOptions()
			if err != nil {
				return err
			}
			if opts.Layout, err = flags.options(cfg); err != nil {
				return err
			}
			if cmd.Flags().Changed("max-credits") {
				opts.MaxCredits = maxCredits
			}

			g, err := graph.ReadGraphFile(args[0])
			if err != nil {
				return fmt.Errorf("load graph %s: %w", args[0], err)
			}
			runner, err := c.newRunner(cfg, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			rep, _, err := runner.Report(ctx, g, opts)
			if err != nil {
				return err
			}

			var rejected int
			for _, m := range moves {
				id, period, err := parseMove(m)
				if err != nil {
					return err
				}
				if err := runner.Move(ctx, g, id, period, opts.MaxCredits); err != nil {
					rejected++
					if !asJSON {
						printError("move %s → %d: %s", id, period, err)
					}
				} else if !asJSON {
					printSuccess("move %s → %d is valid", id, period)
				}
			}

			if reduce != "" {
				removed, err := writeReduced(g, reduce)
				if err != nil {
					return err
				}
				if !asJSON {
					printSuccess("wrote %s without %d redundant prerequisite(s)", reduce, removed)
				}
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(rep); err != nil {
					return err
				}
			} else {
				printReport(rep, opts.MaxCredits)
			}

			if strict && (len(rep.Overloaded) > 0 || rejected > 0) {
				return fmt.Errorf("check failed: %d overloaded period(s), %d rejected move(s)", len(rep.Overloaded), rejected)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&maxCredits, "max-credits", curriculum.DefaultMaxCredits, "credit limit per period (0 disables)")
	cmd.Flags().StringArrayVar(&moves, "move", nil, "check moving COURSE=PERIOD (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on overloaded periods or rejected moves")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&reduce, "reduce", "", "write the graph without redundant prerequisites to `FILE`")
	flags.register(cmd)

	return cmd
}

// writeReduced writes g without its redundant prerequisites to path and
// returns the number of edges dropped.
func writeReduced(g graph.Graph, path string) (int, error) {
	d, err := graph.ToDAG(g)
	if err != nil {
		return 0, err
	}
	reduced, removed, err := curriculum.RemoveRedundant(d)
	if err != nil {
		return 0, err
	}
	data, err := graph.MarshalGraph(reduced)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, fmt.Errorf("write %s: %w", path, err)
	}
	return removed, nil
}

// parseMove parses "COURSE=PERIOD". The course ID may itself contain '='.
func parseMove(s string) (string, int, error) {
	i := strings.LastIndex(s, "=")
	if i <= 0 {
		return "", 0, fmt.Errorf("invalid move %q (want COURSE=PERIOD)", s)
	}
	period, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return "", 0, fmt.Errorf("invalid period in move %q", s)
	}
	return s[:i], period, nil
}

func printReport(rep *curriculum.Report, maxCredits float64) {
	fmt.Println(StyleTitle.Render("Credits per period"))
	fmt.Println(reportTable(rep))
	printNewline()

	printKeyValue("total", strconv.FormatFloat(rep.TotalCredits, 'f', -1, 64))
	if maxCredits > 0 {
		printKeyValue("limit", strconv.FormatFloat(maxCredits, 'f', -1, 64))
	}
	printKeyValue("crossings", fmt.Sprintf("%d (from %d)", rep.Crossings, rep.InitialCrossings))
	printKeyValue("planar", fmt.Sprint(rep.IsPlanar))
	printNewline()

	if len(rep.Overloaded) > 0 {
		printWarning("Overloaded periods: %s", joinInts(rep.Overloaded))
	} else {
		printSuccess("No period exceeds the credit limit")
	}
	if len(rep.Unassigned) > 0 {
		printInfo("%d course(s) without a period", len(rep.Unassigned))
		printDetail("%s", strings.Join(rep.Unassigned, ", "))
	}
	if len(rep.Redundant) > 0 {
		printInfo("%d redundant prerequisite(s)", len(rep.Redundant))
		for _, e := range rep.Redundant {
			printDetail("%s → %s", e.Source, e.Target)
		}
	}
}

// reportTable renders the period loads as a table.
func reportTable(rep *curriculum.Report) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	cell := lipgloss.NewStyle().Padding(0, 1)

	rows := make([][]string, len(rep.Periods))
	for i, p := range rep.Periods {
		status := iconSuccess
		if p.Overloaded {
			status = iconWarning + " overloaded"
		}
		rows[i] = []string{
			strconv.Itoa(p.Period),
			strconv.FormatFloat(p.Credits, 'f', -1, 64),
			strings.Join(p.Courses, ", "),
			status,
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Period", "Credits", "Courses", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 { // header
				return headerStyle.Padding(0, 1)
			}
			if row < len(rep.Periods) && rep.Periods[row].Overloaded {
				return cell.Foreground(colorYellow)
			}
			if col == 3 {
				return cell.Foreground(colorGreen)
			}
			return cell
		}).
		Render()
}
