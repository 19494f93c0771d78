package render

import (
	"context"
	"fmt"
	"slices"

	"github.com/matzehuels/gradebuilder/pkg/graph"
)

// Output formats.
const (
	FormatSVG = "svg"
	FormatDOT = "dot"
	FormatPDF = "pdf"
	FormatPNG = "png"
)

// Formats lists every supported output format.
var Formats = []string{FormatSVG, FormatDOT, FormatPDF, FormatPNG}

// ValidateFormat returns an error for unsupported formats.
func ValidateFormat(format string) error {
	if !slices.Contains(Formats, format) {
		return fmt.Errorf("unsupported format %q (want one of %v)", format, Formats)
	}
	return nil
}

// Render draws g at the positions in l in the given format.
func Render(ctx context.Context, g graph.Graph, l graph.Layout, opts Options, format string) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}

	dot := ToDOT(g, l, opts)
	if format == FormatDOT {
		return []byte(dot), nil
	}

	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatPDF:
		return ToPDF(ctx, svg)
	case FormatPNG:
		return ToPNG(ctx, svg, opts.Scale)
	}
	return svg, nil
}
