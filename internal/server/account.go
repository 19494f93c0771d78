package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/gradebuilder/pkg/errors"
	"github.com/matzehuels/gradebuilder/pkg/graph"
	"github.com/matzehuels/gradebuilder/pkg/storage"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=128"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type saveRequest struct {
	Nodes     json.RawMessage `json:"nodes" validate:"required"`
	Edges     json.RawMessage `json:"edges"`
	GraphName string          `json:"graph_name"`
}

type saveResponse struct {
	ID        string    `json:"id"`
	UpdatedAt time.Time `json:"updated_at"`
}

type loadResponse struct {
	Nodes     json.RawMessage `json:"nodes"`
	Edges     json.RawMessage `json:"edges"`
	GraphName string          `json:"graph_name"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	u, err := s.auth.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("registered user", "user", u.ID)
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	login, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, login)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context(), tokenFrom(r.Context())); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(req.Edges) == 0 || string(req.Edges) == "null" {
		req.Edges = json.RawMessage("[]")
	}
	if !isArray(req.Nodes) || !isArray(req.Edges) {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "nodes and edges must be arrays"))
		return
	}
	name := strings.TrimSpace(req.GraphName)
	if err := errors.ValidateGraphName(name); err != nil {
		s.writeError(w, r, err)
		return
	}
	if name == "" {
		name = graph.DefaultGraphName
	}

	saved, err := s.graphs.SaveGraph(r.Context(), &storage.StoredGraph{
		UserID: userIDFrom(r.Context()),
		Name:   name,
		Nodes:  req.Nodes,
		Edges:  req.Edges,
	})
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "save graph"))
		return
	}
	writeJSON(w, http.StatusOK, saveResponse{ID: saved.ID, UpdatedAt: saved.UpdatedAt})
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	g, err := s.graphs.LoadGraph(r.Context(), userIDFrom(r.Context()))
	if stderrors.Is(err, storage.ErrNotFound) {
		s.writeError(w, r, errNotFound("no saved graph"))
		return
	}
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "load graph"))
		return
	}
	writeJSON(w, http.StatusOK, loadResponse{
		Nodes:     g.Nodes,
		Edges:     g.Edges,
		GraphName: g.Name,
		UpdatedAt: g.UpdatedAt,
	})
}

func isArray(raw json.RawMessage) bool {
	var v []json.RawMessage
	return json.Unmarshal(raw, &v) == nil && v != nil
}
