package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gradebuilder/pkg/config"
	"github.com/matzehuels/gradebuilder/pkg/graph"
	"github.com/matzehuels/gradebuilder/pkg/pipeline"
	"github.com/matzehuels/gradebuilder/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string   // output file (single format) or base path (several)
	formats    []string // svg, dot, pdf, png
	layoutFile string   // precomputed layout; computed when empty
	planar     bool     // unconstrained layout instead of period columns
	details    bool     // period and credits under each label
	scale      float64  // PNG zoom factor
	noCache    bool
	flags      layoutFlags
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [graph.json]",
		Short: "Draw a curriculum graph as SVG, DOT, PDF or PNG",
		Long: `Draw a curriculum graph as SVG, DOT, PDF or PNG.

Courses are drawn as cards at the positions of a layout, either computed on
the fly or read from a file written by 'layout'. Periods over the credit
limit are highlighted. PDF and PNG output requires rsvg-convert.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			for _, f := range opts.formats {
				if err := render.ValidateFormat(f); err != nil {
					return err
				}
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cfg, opts.noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			return runRender(cmd.Context(), runner, cfg, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, pdf, png (comma-separated)")
	cmd.Flags().StringVar(&opts.layoutFile, "layout", "", "use a layout written by 'layout' instead of computing one")
	cmd.Flags().BoolVar(&opts.planar, "planar", false, "ignore periods and draw an unconstrained layout")
	cmd.Flags().BoolVar(&opts.details, "details", false, "show period and credits on each card")
	cmd.Flags().Float64Var(&opts.scale, "scale", render.DefaultScale, "PNG resolution multiplier")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	opts.flags.register(cmd)

	return cmd
}

// parseFormats parses the --format flag. If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{render.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func runRender(ctx context.Context, runner *pipeline.Runner, cfg config.Config, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	layoutOpts, err := opts.flags.options(cfg)
	if err != nil {
		return err
	}

	var l graph.Layout
	if opts.layoutFile != "" {
		if l, err = graph.ReadLayoutFile(opts.layoutFile); err != nil {
			return fmt.Errorf("load layout %s: %w", opts.layoutFile, err)
		}
	} else if l, _, err = computeLayout(ctx, runner, g, opts.planar, layoutOpts); err != nil {
		return err
	}

	ropts := render.Options{Details: opts.details, Scale: opts.scale}
	if !opts.planar {
		copts, err := cfg.CurriculumOptions()
		if err != nil {
			return err
		}
		copts.Layout = layoutOpts
		if rep, _, err := runner.Report(ctx, g, copts); err == nil {
			ropts.Overloaded = rep.Overloaded
		} else {
			logger.Warn("credit check skipped", "error", err)
		}
	}

	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()
	written := make([]string, 0, len(opts.formats))
	for _, format := range opts.formats {
		data, cached, err := runner.Render(ctx, g, l, ropts, format)
		if err != nil {
			spinner.StopWithError("Render failed")
			return fmt.Errorf("render %s: %w", format, err)
		}
		path := outputPath(input, opts.output, format, len(opts.formats) > 1)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			spinner.StopWithError("Write failed")
			return fmt.Errorf("write %s: %w", path, err)
		}
		logger.Debug("rendered", "format", format, "bytes", len(data), "cached", cached)
		written = append(written, path)
	}
	spinner.StopWithSuccess(fmt.Sprintf("Rendered %d courses", len(l.Positions)))

	if len(ropts.Overloaded) > 0 {
		printWarning("Overloaded periods: %s", joinInts(ropts.Overloaded))
	}
	for _, p := range written {
		printFile(p)
	}
	return nil
}

// outputPath resolves the file for one format. A single format writes to
// output as given; several formats use output as the base path.
func outputPath(input, output, format string, multiple bool) string {
	switch {
	case output == "":
		return defaultOutput(input, format)
	case multiple:
		return defaultOutput(output, format)
	default:
		return output
	}
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, ", ")
}
