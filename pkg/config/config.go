// Package config loads the gradebuilder configuration.
//
// Configuration comes from three layers, later ones winning:
//
//  1. [Default] values
//  2. a TOML file (gradebuilder.toml)
//  3. GRADEBUILDER_* environment variables
//
// CLI flags are applied on top by the commands themselves.
//
// A minimal file:
//
//	[server]
//	addr = ":8000"
//	cors_origins = ["http://localhost:3000"]
//
//	[mongo]
//	uri = "mongodb://localhost:27017"
//
//	[cache]
//	backend = "redis"
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/gradebuilder/pkg/curriculum"
	"github.com/matzehuels/gradebuilder/pkg/errors"
	"github.com/matzehuels/gradebuilder/pkg/graph"
	"github.com/matzehuels/gradebuilder/pkg/layered"
	"github.com/matzehuels/gradebuilder/pkg/planar"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "gradebuilder.toml"

// Backends for sessions and caches.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config is the complete configuration.
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Layout     LayoutConfig     `toml:"layout"`
	Curriculum CurriculumConfig `toml:"curriculum"`
	Auth       AuthConfig       `toml:"auth"`
	Redis      RedisConfig      `toml:"redis"`
	Mongo      MongoConfig      `toml:"mongo"`
	Cache      CacheConfig      `toml:"cache"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr            string   `toml:"addr"`
	ReadTimeout     Duration `toml:"read_timeout"`
	WriteTimeout    Duration `toml:"write_timeout"`
	RequestTimeout  Duration `toml:"request_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
	CORSOrigins     []string `toml:"cors_origins"`
}

// LayoutConfig holds the layout defaults used when a request gives none,
// and the bounds every request must stay within.
type LayoutConfig struct {
	Mode          string  `toml:"mode"`
	Iterations    int     `toml:"iterations"`
	MaxIterations int     `toml:"max_iterations"`
	MaxNodes      int     `toml:"max_nodes"` // 0 disables the check
	MaxEdges      int     `toml:"max_edges"` // 0 disables the check
	Fallback      string  `toml:"fallback"`
	Adjacency     string  `toml:"adjacency"`
	ColumnWidth   float64 `toml:"column_width"`
	NodeHeight    float64 `toml:"node_height"`
	RowGap        float64 `toml:"row_gap"`
	PlanarScale   float64 `toml:"planar_scale"`
}

// DefaultMaxIterations bounds the barycenter rounds a request may ask for.
const DefaultMaxIterations = 100

// CurriculumConfig configures credit checks.
type CurriculumConfig struct {
	MaxCredits float64 `toml:"max_credits"`
}

// AuthConfig configures sessions and password hashing.
type AuthConfig struct {
	SessionTTL     Duration `toml:"session_ttl"`
	SessionBackend string   `toml:"session_backend"` // memory, file or redis
	SessionDir     string   `toml:"session_dir"`
	BcryptCost     int      `toml:"bcrypt_cost"`
}

// RedisConfig is shared by the redis session store and cache.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// MongoConfig configures persistence. An empty URI keeps users and graphs
// in memory.
type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// CacheConfig configures the layout cache.
type CacheConfig struct {
	Backend string `toml:"backend"` // none, file or redis
	Dir     string `toml:"dir"`
}

// Duration is a time.Duration written as a string ("30s", "24h") in TOML.
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	opts := layered.DefaultOptions()
	return Config{
		Server: ServerConfig{
			Addr:            ":8000",
			ReadTimeout:     Duration{15 * time.Second},
			WriteTimeout:    Duration{60 * time.Second},
			RequestTimeout:  Duration{30 * time.Second},
			ShutdownTimeout: Duration{10 * time.Second},
			CORSOrigins:     []string{"http://localhost:3000"},
		},
		Layout: LayoutConfig{
			Mode:          opts.Mode.String(),
			Iterations:    opts.Iterations,
			MaxIterations: DefaultMaxIterations,
			MaxNodes:      graph.DefaultMaxNodes,
			MaxEdges:      graph.DefaultMaxEdges,
			Fallback:      opts.Fallback.String(),
			Adjacency:     opts.Adjacency.String(),
			ColumnWidth:   opts.Spacing.ColumnWidth,
			NodeHeight:    opts.Spacing.NodeHeight,
			RowGap:        opts.Spacing.RowGap,
			PlanarScale:   planar.DefaultScale,
		},
		Curriculum: CurriculumConfig{MaxCredits: curriculum.DefaultMaxCredits},
		Auth: AuthConfig{
			SessionTTL:     Duration{24 * time.Hour},
			SessionBackend: BackendMemory,
		},
		Redis: RedisConfig{Addr: "localhost:6379", Prefix: "gradebuilder:"},
		Mongo: MongoConfig{Database: "gradebuilder"},
		Cache: CacheConfig{Backend: BackendNone},
	}
}

// Load reads path on top of the defaults and applies environment overrides.
// An empty path loads DefaultFile if it exists and defaults otherwise.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, errors.New(errors.ErrCodeInvalidInput, "unknown config key %q in %s", undecoded[0].String(), path)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// applyEnv overrides values from GRADEBUILDER_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"GRADEBUILDER_ADDR":            &c.Server.Addr,
		"GRADEBUILDER_MONGO_URI":       &c.Mongo.URI,
		"GRADEBUILDER_MONGO_DATABASE":  &c.Mongo.Database,
		"GRADEBUILDER_REDIS_ADDR":      &c.Redis.Addr,
		"GRADEBUILDER_REDIS_PASSWORD":  &c.Redis.Password,
		"GRADEBUILDER_CACHE":           &c.Cache.Backend,
		"GRADEBUILDER_CACHE_DIR":       &c.Cache.Dir,
		"GRADEBUILDER_SESSIONS":        &c.Auth.SessionBackend,
		"GRADEBUILDER_SESSION_DIR":     &c.Auth.SessionDir,
		"GRADEBUILDER_LAYOUT_MODE":     &c.Layout.Mode,
		"GRADEBUILDER_LAYOUT_FALLBACK": &c.Layout.Fallback,
	}
	for name, dst := range str {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}

	if v, ok := lookup("GRADEBUILDER_CORS_ORIGINS"); ok {
		c.Server.CORSOrigins = splitList(v)
	}
	if v, ok := lookup("GRADEBUILDER_MAX_CREDITS"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "GRADEBUILDER_MAX_CREDITS")
		}
		c.Curriculum.MaxCredits = f
	}
	if v, ok := lookup("GRADEBUILDER_SESSION_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "GRADEBUILDER_SESSION_TTL")
		}
		c.Auth.SessionTTL = Duration{d}
	}
	return nil
}

// Validate rejects values that cannot work.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidInput, "server.addr must not be empty")
	}
	if c.Curriculum.MaxCredits <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "curriculum.max_credits must be positive")
	}
	if c.Auth.SessionTTL.Duration <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "auth.session_ttl must be positive")
	}
	if !slices.Contains([]string{BackendMemory, BackendFile, BackendRedis}, c.Auth.SessionBackend) {
		return errors.New(errors.ErrCodeInvalidInput, "auth.session_backend %q must be memory, file or redis", c.Auth.SessionBackend)
	}
	if !slices.Contains([]string{BackendNone, BackendFile, BackendRedis}, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidInput, "cache.backend %q must be none, file or redis", c.Cache.Backend)
	}
	if c.Layout.MaxIterations <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "layout.max_iterations must be positive")
	}
	if c.Layout.MaxNodes < 0 || c.Layout.MaxEdges < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "layout.max_nodes and layout.max_edges must not be negative")
	}
	if c.Layout.PlanarScale <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "layout.planar_scale must be positive")
	}
	if _, err := c.LayeredOptions(); err != nil {
		return err
	}
	return nil
}

// LayeredOptions converts the layout section.
func (c Config) LayeredOptions() (layered.Options, error) {
	l := c.Layout
	mode, ok := layered.ParseMode(l.Mode)
	if !ok {
		return layered.Options{}, errors.New(errors.ErrCodeInvalidInput, "layout.mode %q must be columns or period", l.Mode)
	}
	fallback, ok := layered.ParseFallback(l.Fallback)
	if !ok {
		return layered.Options{}, errors.New(errors.ErrCodeInvalidInput, "layout.fallback %q must be zero or previous", l.Fallback)
	}
	adjacency, ok := layered.ParseAdjacency(l.Adjacency)
	if !ok {
		return layered.Options{}, errors.New(errors.ErrCodeInvalidInput, "layout.adjacency %q must be directed or undirected", l.Adjacency)
	}
	if l.Iterations < 0 {
		return layered.Options{}, errors.New(errors.ErrCodeInvalidInput, "layout.iterations must not be negative")
	}
	if l.MaxIterations > 0 && l.Iterations > l.MaxIterations {
		return layered.Options{}, errors.New(errors.ErrCodeInvalidInput, "layout.iterations %d exceeds layout.max_iterations %d", l.Iterations, l.MaxIterations)
	}
	if l.ColumnWidth < 0 || l.NodeHeight < 0 || l.RowGap < 0 {
		return layered.Options{}, errors.New(errors.ErrCodeInvalidInput, "layout spacing must not be negative")
	}
	return layered.Options{
		Mode:       mode,
		Spacing:    layered.Spacing{ColumnWidth: l.ColumnWidth, NodeHeight: l.NodeHeight, RowGap: l.RowGap},
		Iterations: l.Iterations,
		Fallback:   fallback,
		Adjacency:  adjacency,
	}, nil
}

// Limits returns the payload size bounds of the layout section.
func (c Config) Limits() graph.Limits {
	return graph.Limits{MaxNodes: c.Layout.MaxNodes, MaxEdges: c.Layout.MaxEdges}
}

// CurriculumOptions converts the curriculum and layout sections.
func (c Config) CurriculumOptions() (curriculum.Options, error) {
	opts, err := c.LayeredOptions()
	if err != nil {
		return curriculum.Options{}, err
	}
	return curriculum.Options{MaxCredits: c.Curriculum.MaxCredits, Layout: opts}, nil
}

// String renders the configuration as TOML with secrets masked.
func (c Config) String() string {
	masked := c
	if masked.Redis.Password != "" {
		masked.Redis.Password = "***"
	}
	if masked.Mongo.URI != "" {
		masked.Mongo.URI = maskURI(masked.Mongo.URI)
	}
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(masked); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return b.String()
}

func maskURI(uri string) string {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return uri
	}
	creds, host, ok := strings.Cut(rest, "@")
	if !ok {
		return uri
	}
	user, _, _ := strings.Cut(creds, ":")
	return scheme + "://" + user + ":***@" + host
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
