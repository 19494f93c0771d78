package server

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/matzehuels/gradebuilder/pkg/buildinfo"
	"github.com/matzehuels/gradebuilder/pkg/errors"
	"github.com/matzehuels/gradebuilder/pkg/graph"
	"github.com/matzehuels/gradebuilder/pkg/layered"
)

// graphRequest is the payload shared by the layout and curriculum routes.
type graphRequest struct {
	Nodes []graph.Node `json:"nodes"`
	Edges []graph.Edge `json:"edges"`
}

func (g graphRequest) graph() graph.Graph {
	return graph.Graph{Nodes: g.Nodes, Edges: g.Edges}
}

type moveRequest struct {
	graphRequest
	NodeID     string   `json:"node_id" validate:"required"`
	Period     int      `json:"period" validate:"required"`
	MaxCredits *float64 `json:"max_credits" validate:"omitempty,gte=0"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	info := buildinfo.Get()
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: info.Version, Commit: info.Commit})
}

func (s *Server) handleLayered(w http.ResponseWriter, r *http.Request) {
	var req graphRequest
	if err := s.decodeGraph(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := layeredOptions(s.opts.Layout, s.opts.MaxIterations, r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	l, hit, err := s.runner.Layered(r.Context(), req.graph(), opts)
	if err == nil {
		err = checkDeadline(r.Context())
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setCacheHeader(w, hit)
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handlePlanar(w http.ResponseWriter, r *http.Request) {
	var req graphRequest
	if err := s.decodeGraph(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	l, hit, err := s.runner.Planar(r.Context(), req.graph())
	if err == nil {
		err = checkDeadline(r.Context())
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setCacheHeader(w, hit)
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var req graphRequest
	if err := s.decodeGraph(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	opts := s.opts.Curriculum
	layout, err := layeredOptions(opts.Layout, s.opts.MaxIterations, r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Layout = layout
	if v := r.URL.Query().Get("max_credits"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "max_credits must be a non-negative number"))
			return
		}
		opts.MaxCredits = f
	}

	rep, hit, err := s.runner.Report(r.Context(), req.graph(), opts)
	if err == nil {
		err = checkDeadline(r.Context())
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setCacheHeader(w, hit)
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := s.decodeGraph(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	maxCredits := s.opts.Curriculum.MaxCredits
	if req.MaxCredits != nil {
		maxCredits = *req.MaxCredits
	}

	if err := s.runner.Move(r.Context(), req.graph(), req.NodeID, req.Period, maxCredits); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// decodeGraph decodes a graph payload and rejects it when it exceeds the
// configured node or edge limits.
func (s *Server) decodeGraph(w http.ResponseWriter, r *http.Request, dst interface{ graph() graph.Graph }) error {
	if err := s.decode(w, r, dst); err != nil {
		return err
	}
	return s.opts.Limits.Check(dst.graph())
}

// layeredOptions applies the mode, iterations, fallback and adjacency query
// parameters to base. Iterations must lie in [1, maxIter]; maxIter <= 0
// leaves the upper bound open.
func layeredOptions(base layered.Options, maxIter int, q url.Values) (layered.Options, error) {
	opts := base
	if v := q.Get("mode"); v != "" {
		mode, ok := layered.ParseMode(v)
		if !ok {
			return opts, errors.New(errors.ErrCodeInvalidInput, "mode %q must be columns or period", v)
		}
		opts.Mode = mode
	}
	if v := q.Get("iterations"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return opts, errors.New(errors.ErrCodeInvalidInput, "iterations must be a positive integer")
		}
		if maxIter > 0 && n > maxIter {
			return opts, errors.New(errors.ErrCodeInvalidInput, "iterations must not exceed %d", maxIter)
		}
		opts.Iterations = n
	}
	if v := q.Get("fallback"); v != "" {
		f, ok := layered.ParseFallback(v)
		if !ok {
			return opts, errors.New(errors.ErrCodeInvalidInput, "fallback %q must be zero or previous", v)
		}
		opts.Fallback = f
	}
	if v := q.Get("adjacency"); v != "" {
		a, ok := layered.ParseAdjacency(v)
		if !ok {
			return opts, errors.New(errors.ErrCodeInvalidInput, "adjacency %q must be directed or undirected", v)
		}
		opts.Adjacency = a
	}
	return opts, nil
}

func setCacheHeader(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
}
