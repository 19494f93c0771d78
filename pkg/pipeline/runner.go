package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gradebuilder/pkg/cache"
	"github.com/matzehuels/gradebuilder/pkg/curriculum"
	"github.com/matzehuels/gradebuilder/pkg/graph"
	"github.com/matzehuels/gradebuilder/pkg/layered"
	"github.com/matzehuels/gradebuilder/pkg/observability"
	"github.com/matzehuels/gradebuilder/pkg/planar"
	"github.com/matzehuels/gradebuilder/pkg/render"
)

// Runner encapsulates layout execution with caching.
//
// The Runner holds no per-request state; multiple goroutines can use the
// same Runner concurrently.
type Runner struct {
	Cache         cache.Cache
	Keyer         cache.Keyer
	Logger        *log.Logger
	Unconstrained *planar.Unconstrained
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:         c,
		Keyer:         keyer,
		Logger:        logger,
		Unconstrained: planar.New(),
	}
}

// Layered computes the layered layout of a payload. The returned bool
// reports a cache hit.
func (r *Runner) Layered(ctx context.Context, g graph.Graph, opts layered.Options) (graph.Layout, bool, error) {
	key := r.Keyer.LayoutKey(graphHash(g), LayoutKeyOpts(opts))
	if l, ok := r.cachedLayout(ctx, key, KindLayered); ok {
		return l, true, nil
	}

	d, err := graph.ToDAG(g)
	if err != nil {
		return graph.Layout{}, false, err
	}

	var out graph.Layout
	err = r.observe(ctx, KindLayered, d.NodeCount(), func() error {
		res, err := layered.ComputeContext(ctx, d, opts)
		if err != nil {
			return err
		}
		out = graph.FromLayered(res, opts.Mode, planar.IsPlanar(planar.FromDAG(d)))
		r.Logger.Debug("layered layout",
			"nodes", d.NodeCount(),
			"placed", len(res.Positions),
			"columns", len(res.Columns),
			"crossings_before", res.InitialCrossings,
			"crossings", res.Crossings)
		return nil
	})
	if err != nil {
		return graph.Layout{}, false, err
	}

	r.storeLayout(ctx, key, KindLayered, out, cache.TTLLayout)
	return out, false, nil
}

// Planar computes the unconstrained layout of a payload. Column attributes
// are ignored and cycles are allowed.
func (r *Runner) Planar(ctx context.Context, g graph.Graph) (graph.Layout, bool, error) {
	key := r.Keyer.PlanarKey(graphHash(g), cache.PlanarKeyOpts{Scale: r.Unconstrained.Scale})
	if l, ok := r.cachedLayout(ctx, key, KindPlanar); ok {
		return l, true, nil
	}

	d, err := graph.ToDAG(g)
	if err != nil {
		return graph.Layout{}, false, err
	}

	var out graph.Layout
	err = r.observe(ctx, KindPlanar, d.NodeCount(), func() error {
		res, err := r.Unconstrained.Layout(ctx, planar.FromDAG(d))
		if err != nil {
			return err
		}
		out = graph.FromPlanar(res)
		r.Logger.Debug("planar layout", "nodes", d.NodeCount(), "is_planar", res.IsPlanar)
		return nil
	})
	if err != nil {
		return graph.Layout{}, false, err
	}

	r.storeLayout(ctx, key, KindPlanar, out, cache.TTLPlanar)
	return out, false, nil
}

// Report analyzes a curriculum: credit loads, redundant prerequisites and
// crossings.
func (r *Runner) Report(ctx context.Context, g graph.Graph, opts curriculum.Options) (*curriculum.Report, bool, error) {
	key := r.Keyer.ReportKey(graphHash(g), ReportKeyOpts(opts))
	if data, ok := r.lookup(ctx, key, KindReport); ok {
		var rep curriculum.Report
		if err := json.Unmarshal(data, &rep); err == nil {
			return &rep, true, nil
		}
	}

	d, err := graph.ToDAG(g)
	if err != nil {
		return nil, false, err
	}

	var rep *curriculum.Report
	err = r.observe(ctx, KindReport, d.NodeCount(), func() error {
		rep, err = curriculum.AnalyzeContext(ctx, d, opts)
		return err
	})
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(rep); err == nil {
		r.store(ctx, key, KindReport, data, cache.TTLReport)
	}
	return rep, false, nil
}

// Move checks whether a course may move to a period. It is not cached: the
// check is linear in the graph size.
func (r *Runner) Move(ctx context.Context, g graph.Graph, id string, period int, maxCredits float64) error {
	d, err := graph.ToDAG(g)
	if err != nil {
		return err
	}
	if err := curriculum.ValidateMove(d, id, period, maxCredits); err != nil {
		r.Logger.Debug("move rejected", "course", id, "period", period, "reason", err)
		return err
	}
	return nil
}

// Render draws a payload at the positions of a layout.
func (r *Runner) Render(ctx context.Context, g graph.Graph, l graph.Layout, opts render.Options, format string) ([]byte, bool, error) {
	if err := render.ValidateFormat(format); err != nil {
		return nil, false, err
	}
	layoutData, err := graph.MarshalLayout(l)
	if err != nil {
		return nil, false, err
	}
	key := r.Keyer.ArtifactKey(cache.Hash(append(graph.Canonical(g), layoutData...)), ArtifactKeyOpts(format, opts))
	if data, ok := r.lookup(ctx, key, KindRender); ok {
		return data, true, nil
	}

	var out []byte
	err = r.observe(ctx, KindRender, len(l.Positions), func() error {
		out, err = render.Render(ctx, g, l, opts, format)
		return err
	})
	if err != nil {
		return nil, false, err
	}

	r.store(ctx, key, KindRender, out, cache.TTLArtifact)
	return out, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// =============================================================================
// Internal Helpers
// =============================================================================

func (r *Runner) observe(ctx context.Context, kind string, nodes int, fn func() error) error {
	hooks := observability.Layout()
	hooks.OnLayoutStart(ctx, kind, nodes)
	start := time.Now()
	err := fn()
	hooks.OnLayoutComplete(ctx, kind, time.Since(start), err)
	return err
}

func (r *Runner) lookup(ctx context.Context, key, kind string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "kind", kind, "error", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, kind)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, kind)
	return data, true
}

func (r *Runner) store(ctx context.Context, key, kind string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "kind", kind, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, kind, len(data))
}

func (r *Runner) cachedLayout(ctx context.Context, key, kind string) (graph.Layout, bool) {
	data, ok := r.lookup(ctx, key, kind)
	if !ok {
		return graph.Layout{}, false
	}
	l, err := graph.UnmarshalLayout(data)
	if err != nil {
		return graph.Layout{}, false
	}
	return l, true
}

func (r *Runner) storeLayout(ctx context.Context, key, kind string, l graph.Layout, ttl time.Duration) {
	if data, err := graph.MarshalLayout(l); err == nil {
		r.store(ctx, key, kind, data, ttl)
	}
}
