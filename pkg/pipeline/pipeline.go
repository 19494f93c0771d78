// Package pipeline runs layouts, reports and renders with caching.
//
// The CLI and the HTTP server share one [Runner] so that both apply the same
// validation, the same cache keys and the same observability hooks. A run
// has three steps:
//
//  1. Convert the request payload into a DAG (unknown references fail here)
//  2. Look the result up in the cache by payload hash and options
//  3. On a miss, compute, store and return
//
// # Usage
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	layout, hit, err := runner.Layered(ctx, payload, layered.DefaultOptions())
//
// Cache failures are never fatal: a failed read is a miss and a failed write
// is logged and ignored.
package pipeline

import (
	"github.com/matzehuels/gradebuilder/pkg/cache"
	"github.com/matzehuels/gradebuilder/pkg/curriculum"
	"github.com/matzehuels/gradebuilder/pkg/graph"
	"github.com/matzehuels/gradebuilder/pkg/layered"
	"github.com/matzehuels/gradebuilder/pkg/render"
)

// Kinds reported to hooks and used as cache key types.
const (
	KindLayered = "layered"
	KindPlanar  = "planar"
	KindReport  = "report"
	KindRender  = "render"
)

// LayoutKeyOpts returns the cache key options of a layered layout. Options
// are normalized first so that equal layouts share one key.
func LayoutKeyOpts(opts layered.Options) cache.LayoutKeyOpts {
	opts = opts.Normalize()
	return cache.LayoutKeyOpts{
		Mode:        opts.Mode.String(),
		Iterations:  opts.Iterations,
		Fallback:    opts.Fallback.String(),
		Adjacency:   opts.Adjacency.String(),
		ColumnWidth: opts.Spacing.ColumnWidth,
		RowPitch:    opts.Spacing.RowPitch(),
	}
}

// ReportKeyOpts returns the cache key options of a report.
func ReportKeyOpts(opts curriculum.Options) cache.ReportKeyOpts {
	return cache.ReportKeyOpts{MaxCredits: opts.MaxCredits, Layout: LayoutKeyOpts(opts.Layout)}
}

// ArtifactKeyOpts returns the cache key options of a rendered artifact. The
// scale only enters PNG keys.
func ArtifactKeyOpts(format string, opts render.Options) cache.ArtifactKeyOpts {
	key := cache.ArtifactKeyOpts{Format: format, Labels: opts.Details}
	if format == render.FormatPNG {
		key.Scale = opts.Scale
		if key.Scale <= 0 {
			key.Scale = render.DefaultScale
		}
	}
	return key
}

// graphHash identifies a payload for cache keys.
func graphHash(g graph.Graph) string {
	return cache.Hash(graph.Canonical(g))
}
