package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gradebuilder/pkg/config"
	"github.com/matzehuels/gradebuilder/pkg/graph"
	"github.com/matzehuels/gradebuilder/pkg/layered"
	"github.com/matzehuels/gradebuilder/pkg/pipeline"
)

// layoutFlags are the ordering flags shared by layout, render, check and view.
// Empty values keep the configured defaults.
type layoutFlags struct {
	mode       string
	fallback   string
	adjacency  string
	iterations int
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.mode, "mode", "", "x coordinates: columns (default) or period")
	cmd.Flags().StringVar(&f.fallback, "fallback", "", "key for courses without neighbors: zero (default) or previous")
	cmd.Flags().StringVar(&f.adjacency, "adjacency", "", "sweep neighbors: directed (default) or undirected")
	cmd.Flags().IntVar(&f.iterations, "iterations", -1, "barycenter sweep rounds (default 4)")
}

// options overlays the flags on the configured layout section.
func (f *layoutFlags) options(cfg config.Config) (layered.Options, error) {
	l := cfg.Layout
	if f.mode != "" {
		l.Mode = f.mode
	}
	if f.fallback != "" {
		l.Fallback = f.fallback
	}
	if f.adjacency != "" {
		l.Adjacency = f.adjacency
	}
	if f.iterations >= 0 {
		l.Iterations = f.iterations
	}
	cfg.Layout = l
	return cfg.LayeredOptions()
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		planar  bool
		noCache bool
		flags   layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Compute node positions for a curriculum graph",
		Long: `Compute node positions for a curriculum graph.

The input is the editor's JSON document ({"nodes": [...], "edges": [...]}).
By default courses are placed in columns by their "period" attribute and
ordered within each column to reduce crossing prerequisites. With --planar
the period attributes are ignored and the graph is drawn freely.

The result is written as layout JSON, which 'render' accepts with --layout.
Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts, err := flags.options(cfg)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cfg, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			return runLayout(cmd.Context(), runner, args[0], output, planar, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&planar, "planar", false, "ignore periods and compute an unconstrained layout")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	flags.register(cmd)

	return cmd
}

func runLayout(ctx context.Context, runner *pipeline.Runner, input, output string, planar bool, opts layered.Options) error {
	logger := loggerFromContext(ctx)
	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	prog := newProgress(logger)
	l, cached, err := computeLayout(ctx, runner, g, planar, opts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Laid out %d courses", len(l.Positions)))

	if output == "" {
		output = defaultOutput(input, "layout.json")
	}
	if err := graph.WriteLayoutFile(l, output); err != nil {
		return fmt.Errorf("write layout: %w", err)
	}

	printSuccess("Layout computed")
	printStats(len(g.Nodes), len(g.Edges), cached)
	if l.Crossings != nil {
		printKeyValue("crossings", fmt.Sprint(*l.Crossings))
	}
	printKeyValue("planar", fmt.Sprint(l.IsPlanar))
	printFile(output)
	printNewline()
	printNextStep("Render it", fmt.Sprintf("%s render %s --layout %s", appName, input, output))
	return nil
}

func computeLayout(ctx context.Context, runner *pipeline.Runner, g graph.Graph, planar bool, opts layered.Options) (graph.Layout, bool, error) {
	if planar {
		return runner.Planar(ctx, g)
	}
	return runner.Layered(ctx, g, opts)
}

// defaultOutput derives "<input base>.<suffix>" next to the input file.
func defaultOutput(input, suffix string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + "." + suffix
}
