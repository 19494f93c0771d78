package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/gradebuilder/internal/server"
	"github.com/matzehuels/gradebuilder/pkg/auth"
	"github.com/matzehuels/gradebuilder/pkg/cache"
	"github.com/matzehuels/gradebuilder/pkg/config"
	"github.com/matzehuels/gradebuilder/pkg/observability"
	"github.com/matzehuels/gradebuilder/pkg/pipeline"
	"github.com/matzehuels/gradebuilder/pkg/session"
	"github.com/matzehuels/gradebuilder/pkg/storage"
)

// sessionCleanupInterval is how often expired sessions are purged from
// stores that do not expire them on their own.
const sessionCleanupInterval = 10 * time.Minute

// serveCommand creates the HTTP server command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API used by the curriculum editor.

Users and saved graphs live in MongoDB when mongo.uri is set and in memory
otherwise. Sessions and the layout cache use the backends named in the
config file; see 'gradebuilder serve --help' for the flags that override it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8000)")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.Config) error {
	logger := loggerFromContext(ctx)
	logger.Debug("configuration\n" + cfg.String())
	registerLogHooks(logger)

	b, err := openBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.close(logger)

	layoutOpts, err := cfg.LayeredOptions()
	if err != nil {
		return err
	}
	curriculumOpts, err := cfg.CurriculumOptions()
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(b.cache, b.keyer, logger)
	if cfg.Layout.PlanarScale > 0 {
		runner.Unconstrained.Scale = cfg.Layout.PlanarScale
	}

	authSvc := auth.NewService(b.store, b.sessions)
	authSvc.TTL = cfg.Auth.SessionTTL.Duration
	authSvc.Cost = cfg.Auth.BcryptCost

	srv := server.New(server.Options{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout.Duration,
		WriteTimeout:    cfg.Server.WriteTimeout.Duration,
		RequestTimeout:  cfg.Server.RequestTimeout.Duration,
		ShutdownTimeout: cfg.Server.ShutdownTimeout.Duration,
		CORSOrigins:     cfg.Server.CORSOrigins,
		Layout:          layoutOpts,
		Curriculum:      curriculumOpts,
		Limits:          cfg.Limits(),
		MaxIterations:   cfg.Layout.MaxIterations,
	}, runner, authSvc, b.store, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	g.Go(func() error {
		cleanupSessions(gctx, b.sessions, logger)
		return nil
	})
	return g.Wait()
}

// backends are the stores opened for the server.
type backends struct {
	store    storage.Store
	sessions session.Store
	cache    cache.Cache
	keyer    cache.Keyer
	redis    *redis.Client
}

func openBackends(ctx context.Context, cfg config.Config, logger *log.Logger) (_ *backends, err error) {
	b := &backends{}
	defer func() {
		if err != nil {
			b.close(logger)
		}
	}()

	if cfg.Mongo.URI != "" {
		b.store, err = storage.NewMongoStore(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		logger.Info("using mongo storage", "database", cfg.Mongo.Database)
	} else {
		b.store = storage.NewMemoryStore()
		logger.Warn("mongo.uri not set; users and graphs are kept in memory")
	}

	if cfg.Auth.SessionBackend == config.BackendRedis || cfg.Cache.Backend == config.BackendRedis {
		b.redis, err = cache.ConnectRedis(ctx, cache.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
	}

	switch cfg.Auth.SessionBackend {
	case config.BackendRedis:
		b.sessions = session.NewRedisStore(b.redis, cfg.Redis.Prefix+"session:")
	case config.BackendFile:
		fs, err := session.NewFileStore(cfg.Auth.SessionDir)
		if err != nil {
			return nil, err
		}
		b.sessions = fs
	default:
		b.sessions = session.NewMemoryStore()
	}

	b.keyer = cache.NewDefaultKeyer()
	switch cfg.Cache.Backend {
	case config.BackendRedis:
		b.cache = cache.NewRedisCacheFromClient(b.redis)
		b.keyer = cache.NewScopedKeyer(b.keyer, cfg.Redis.Prefix)
	case config.BackendFile:
		fc, err := newCache(cfg, false)
		if err != nil {
			return nil, err
		}
		b.cache = fc
	default:
		b.cache = cache.NewNullCache()
	}

	logger.Info("backends ready", "sessions", cfg.Auth.SessionBackend, "cache", cfg.Cache.Backend)
	return b, nil
}

func (b *backends) close(logger *log.Logger) {
	if b.cache != nil {
		_ = b.cache.Close()
	}
	if b.sessions != nil {
		_ = b.sessions.Close()
	}
	if b.redis != nil {
		_ = b.redis.Close()
	}
	if b.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := b.store.Close(ctx); err != nil {
			logger.Warn("close storage", "error", err)
		}
	}
}

func cleanupSessions(ctx context.Context, s session.Store, logger *log.Logger) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Cleanup(ctx); err != nil {
				logger.Warn("session cleanup failed", "error", err)
			}
		}
	}
}

// =============================================================================
// Log-backed Hooks
// =============================================================================

// logHooks reports pipeline and cache events at debug level.
type logHooks struct {
	logger *log.Logger
}

func registerLogHooks(logger *log.Logger) {
	h := logHooks{logger: logger}
	observability.SetLayoutHooks(h)
	observability.SetCacheHooks(h)
}

func (h logHooks) OnLayoutStart(_ context.Context, kind string, nodes int) {
	h.logger.Debug("layout start", "kind", kind, "nodes", nodes)
}

func (h logHooks) OnLayoutComplete(_ context.Context, kind string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("layout failed", "kind", kind, "duration", d, "error", err)
		return
	}
	h.logger.Debug("layout done", "kind", kind, "duration", d)
}

func (h logHooks) OnCacheHit(_ context.Context, kind string) {
	h.logger.Debug("cache hit", "kind", kind)
}

func (h logHooks) OnCacheMiss(_ context.Context, kind string) {
	h.logger.Debug("cache miss", "kind", kind)
}

func (h logHooks) OnCacheSet(_ context.Context, kind string, size int) {
	h.logger.Debug("cache set", "kind", kind, "bytes", size)
}
