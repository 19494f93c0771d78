package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gradebuilder/pkg/graph"
)

// viewCommand creates the interactive browser command.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		noCache bool
		flags   layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "view [graph.json]",
		Short: "Browse a curriculum period by period",
		Long: `Browse a curriculum period by period in the terminal.

Periods are shown as columns with their courses in layout order. Select a
course to see its credits, prerequisites and the courses it unlocks.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			copts, err := cfg.CurriculumOptions()
			if err != nil {
				return err
			}
			if copts.Layout, err = flags.options(cfg); err != nil {
				return err
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

			l, _, err := runner.Layered(ctx, g, copts.Layout)
			if err != nil {
				return err
			}
			rep, _, err := runner.Report(ctx, g, copts)
			if err != nil {
				return err
			}

			p := tea.NewProgram(NewPlanModel(g, l, rep), tea.WithAltScreen(), tea.WithContext(ctx))
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	flags.register(cmd)

	return cmd
}
