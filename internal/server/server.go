// Package server exposes the layout engine and the curriculum store over HTTP.
//
// All layout and curriculum endpoints take the editor payload
// ({"nodes": [...], "edges": [...]}) and answer with JSON. Failures use a
// single envelope:
//
//	{"error": {"code": "CYCLE", "message": "graph contains a cycle"}}
//
// The graph endpoints require a bearer token issued by /auth/login.
package server

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/gradebuilder/pkg/auth"
	"github.com/matzehuels/gradebuilder/pkg/curriculum"
	"github.com/matzehuels/gradebuilder/pkg/graph"
	"github.com/matzehuels/gradebuilder/pkg/layered"
	"github.com/matzehuels/gradebuilder/pkg/pipeline"
	"github.com/matzehuels/gradebuilder/pkg/storage"
)

// Default timeouts used when Options leaves them zero.
const (
	DefaultRequestTimeout  = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second

	// maxBodyBytes bounds request bodies; curricula are small.
	maxBodyBytes = 8 << 20
)

// Options configures a Server.
type Options struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	// Defaults for requests that do not override them.
	Layout     layered.Options
	Curriculum curriculum.Options

	// Bounds on what a single request may ask for.
	Limits        graph.Limits
	MaxIterations int
}

// Server handles HTTP requests. Create with New.
type Server struct {
	opts     Options
	runner   *pipeline.Runner
	auth     *auth.Service
	graphs   storage.GraphStore
	logger   *log.Logger
	validate *validator.Validate
	router   chi.Router
}

// New builds a server and its routes.
func New(opts Options, runner *pipeline.Runner, authSvc *auth.Service, graphs storage.GraphStore, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = DefaultShutdownTimeout
	}
	s := &Server{
		opts:     opts,
		runner:   runner,
		auth:     authSvc,
		graphs:   graphs,
		logger:   logger,
		validate: newValidator(),
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(withTimeout(s.opts.RequestTimeout))

	r.Get("/healthz", s.handleHealth)

	r.Route("/layout", func(r chi.Router) {
		r.Post("/layered", s.handleLayered)
		r.Post("/planar", s.handlePlanar)
	})
	r.Route("/curriculum", func(r chi.Router) {
		r.Post("/report", s.handleReport)
		r.Post("/move", s.handleMove)
	})
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.With(s.requireAuth).Post("/logout", s.handleLogout)
	})
	r.Route("/graph", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/save", s.handleSave)
		r.Get("/load", s.handleLoad)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, errNotFound("no route for %s %s", r.Method, r.URL.Path))
	})
	return r
}

// Run serves on opts.Addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
