package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
)

// DefaultScale is the PNG zoom factor used when [Options.Scale] is unset.
const DefaultScale = 2.0

const rsvgHint = "Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin"

// ToPDF converts SVG bytes to PDF using rsvg-convert. The PDF keeps the
// vector drawing, so no scale applies.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin
// (Linux). The conversion is killed when ctx is done.
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return rsvgConvert(ctx, svg, FormatPDF, 0)
}

// ToPNG rasterizes SVG bytes using rsvg-convert. scale multiplies the SVG's
// own size: 1 draws one pixel per SVG unit, 2 produces a 2x resolution image
// for high-density screens. A scale <= 0 means [DefaultScale].
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin
// (Linux). The conversion is killed when ctx is done.
func ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	return rsvgConvert(ctx, svg, FormatPNG, scale)
}

// rsvgArgs builds the rsvg-convert command line. Only PNG output is zoomed.
func rsvgArgs(format string, scale float64) []string {
	args := []string{"-f", format}
	if format != FormatPNG {
		return args
	}
	if scale <= 0 {
		scale = DefaultScale
	}
	return append(args, "-z", strconv.FormatFloat(scale, 'f', 2, 64))
}

func rsvgConvert(ctx context.Context, svg []byte, format string, scale float64) ([]byte, error) {
	if _, err := exec.LookPath("rsvg-convert"); err != nil {
		return nil, fmt.Errorf("%s export requires librsvg. %s", format, rsvgHint)
	}

	cmd := exec.CommandContext(ctx, "rsvg-convert", rsvgArgs(format, scale)...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("rsvg-convert: %w", ctx.Err())
		}
		return nil, fmt.Errorf("rsvg-convert: %v: %s", err, errBuf.String())
	}
	return out.Bytes(), nil
}
