// Package config loads the cellgraph configuration file.
//
// The file is TOML. Every key is optional; missing keys keep the values of
// [Default]:
//
//	stylesheet = "styles.toml"
//
//	[model]
//	ids = "uuid"
//	maintain_edge_parent = true
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "24h"
//
//	[store]
//	backend = "sqlite"
//	path = "documents.db"
//
//	[[multiplicity]]
//	source = true
//	type = "task"
//	max = 1
//	count_error = "a task has one successor"
//
// [Config.NewGraph], [Config.StoreConfig] and [Config.CacheConfig] turn the
// sections into the options of the packages they configure.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/cellgraph/pkg/cache"
	"github.com/matzehuels/cellgraph/pkg/errors"
	"github.com/matzehuels/cellgraph/pkg/graph"
	"github.com/matzehuels/cellgraph/pkg/model"
	"github.com/matzehuels/cellgraph/pkg/store"
	"github.com/matzehuels/cellgraph/pkg/style"
)

// ID generators selectable in [ModelConfig].
const (
	IDsSequential = "sequential"
	IDsUUID       = "uuid"
)

// Config is the complete configuration.
type Config struct {
	// Stylesheet is a TOML stylesheet file. Relative paths are resolved
	// against the directory of the config file.
	Stylesheet string `toml:"stylesheet"`

	Model          ModelConfig          `toml:"model"`
	View           ViewConfig           `toml:"view"`
	Undo           UndoConfig           `toml:"undo"`
	Cache          CacheConfig          `toml:"cache"`
	Store          StoreConfig          `toml:"store"`
	Server         ServerConfig         `toml:"server"`
	Multiplicities []MultiplicityConfig `toml:"multiplicity"`
}

// ModelConfig configures new models.
type ModelConfig struct {
	IDs                string `toml:"ids"` // sequential or uuid
	Prefix             string `toml:"prefix"`
	Postfix            string `toml:"postfix"`
	MaintainEdgeParent bool   `toml:"maintain_edge_parent"`
}

// ViewConfig sets the initial view transform.
type ViewConfig struct {
	Scale             float64 `toml:"scale"`
	TranslateX        float64 `toml:"translate_x"`
	TranslateY        float64 `toml:"translate_y"`
	ResetOnRootChange bool    `toml:"reset_on_root_change"`
}

// UndoConfig bounds the undo history. Zero selects the default size, a
// negative size keeps every edit.
type UndoConfig struct {
	Size int `toml:"size"`
}

// CacheConfig selects the artifact cache.
type CacheConfig struct {
	Backend   string   `toml:"backend"` // none, file or redis
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	RedisDB   int      `toml:"redis_db"`
	TTL       Duration `toml:"ttl"`
}

// StoreConfig selects the document store.
type StoreConfig struct {
	Backend  string `toml:"backend"` // memory, file, sqlite or mongo
	Path     string `toml:"path"`
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr        string   `toml:"addr"`
	SessionIdle Duration `toml:"session_idle"` // 0 keeps sessions open
}

// MultiplicityConfig is a connection rule, see [graph.Multiplicity].
type MultiplicityConfig struct {
	Source          bool     `toml:"source"`
	Type            string   `toml:"type"`
	Attr            string   `toml:"attr"`
	Value           string   `toml:"value"`
	Min             int      `toml:"min"`
	Max             *int     `toml:"max"` // unbounded if absent
	Neighbors       []string `toml:"neighbors"`
	ForbidNeighbors bool     `toml:"forbid_neighbors"`
	CountError      string   `toml:"count_error"`
	TypeError       string   `toml:"type_error"`
}

// Duration is a time.Duration written as a string such as "90m".
type Duration struct {
	time.Duration
}

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

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			IDs:                IDsSequential,
			MaintainEdgeParent: true,
		},
		View: ViewConfig{
			Scale:             1,
			ResetOnRootChange: true,
		},
		Cache: CacheConfig{
			Backend:   cache.BackendFile,
			RedisAddr: "localhost:6379",
			TTL:       Duration{24 * time.Hour},
		},
		Store: StoreConfig{
			Backend:  store.BackendFile,
			Database: "cellgraph",
		},
		Server: ServerConfig{
			Addr:        ":8080",
			SessionIdle: Duration{30 * time.Minute},
		},
	}
}

// DefaultPath returns the config file location following the XDG standard
// ($XDG_CONFIG_HOME/cellgraph/config.toml or ~/.config/cellgraph/config.toml).
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "cellgraph", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "cellgraph", "config.toml"), nil
}

// Load reads and validates the file at path on top of [Default]. An empty
// path loads [DefaultPath] if that file exists and returns the defaults
// otherwise.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		if _, err := os.Stat(p); err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s not found", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	if cfg.Stylesheet != "" && !filepath.IsAbs(cfg.Stylesheet) {
		cfg.Stylesheet = filepath.Join(filepath.Dir(path), cfg.Stylesheet)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every value is usable.
func (c *Config) Validate() error {
	switch c.Model.IDs {
	case IDsSequential, IDsUUID:
	default:
		return invalid("model.ids must be %q or %q, got %q", IDsSequential, IDsUUID, c.Model.IDs)
	}
	if c.View.Scale <= 0 {
		return invalid("view.scale must be positive, got %v", c.View.Scale)
	}

	switch c.Cache.Backend {
	case cache.BackendNone, cache.BackendFile:
	case cache.BackendRedis:
		if c.Cache.RedisAddr == "" {
			return invalid("cache.redis_addr is required for the redis backend")
		}
	default:
		return invalid("unknown cache.backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return invalid("cache.ttl must not be negative")
	}

	switch c.Store.Backend {
	case store.BackendMemory, store.BackendFile, store.BackendSQLite:
	case store.BackendMongo:
		if err := errors.ValidateURI(c.Store.URI, "mongodb", "mongodb+srv"); err != nil {
			return err
		}
		if c.Store.Database == "" {
			return invalid("store.database is required for the mongo backend")
		}
	default:
		return invalid("unknown store.backend %q", c.Store.Backend)
	}

	if c.Server.Addr == "" {
		return invalid("server.addr must not be empty")
	}
	if c.Server.SessionIdle.Duration < 0 {
		return invalid("server.session_idle must not be negative")
	}
	for i, m := range c.Multiplicities {
		if m.Type == "" {
			return invalid("multiplicity %d: type is required", i)
		}
		if m.Max != nil && *m.Max >= 0 && m.Min > *m.Max {
			return invalid("multiplicity %d: min %d exceeds max %d", i, m.Min, *m.Max)
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidConfig, format, args...)
}

// ModelOptions returns the options for models built under this config.
func (c *Config) ModelOptions() []model.Option {
	opts := []model.Option{
		model.WithIDAffixes(c.Model.Prefix, c.Model.Postfix),
		model.WithMaintainEdgeParent(c.Model.MaintainEdgeParent),
	}
	if c.Model.IDs == IDsUUID {
		opts = append(opts, model.WithIDGenerator(model.UUIDGenerator{}))
	}
	return opts
}

// MultiplicityRules converts the configured rules.
func (c *Config) MultiplicityRules() []graph.Multiplicity {
	rules := make([]graph.Multiplicity, len(c.Multiplicities))
	for i, m := range c.Multiplicities {
		limit := -1
		if m.Max != nil {
			limit = *m.Max
		}
		rules[i] = graph.Multiplicity{
			Source:          m.Source,
			Type:            m.Type,
			Attr:            m.Attr,
			Value:           m.Value,
			Min:             m.Min,
			Max:             limit,
			Neighbors:       m.Neighbors,
			ForbidNeighbors: m.ForbidNeighbors,
			CountError:      m.CountError,
			TypeError:       m.TypeError,
		}
	}
	return rules
}

// NewGraph builds a graph over m with the configured stylesheet, undo size,
// multiplicities and view transform.
func (c *Config) NewGraph(m *model.Model, logger *log.Logger) (*graph.Graph, error) {
	opts := []graph.Option{
		graph.WithModel(m),
		graph.WithUndoSize(c.Undo.Size),
		graph.WithResetViewOnRootChange(c.View.ResetOnRootChange),
		graph.WithMultiplicities(c.MultiplicityRules()...),
	}
	if logger != nil {
		opts = append(opts, graph.WithLogger(logger))
	}
	if c.Stylesheet != "" {
		ss, err := style.LoadStylesheet(c.Stylesheet)
		if err != nil {
			return nil, err
		}
		opts = append(opts, graph.WithStylesheet(ss))
	}
	g := graph.New(opts...)
	if c.View.Scale != 1 || c.View.TranslateX != 0 || c.View.TranslateY != 0 {
		g.View().ScaleAndTranslate(c.View.Scale, c.View.TranslateX, c.View.TranslateY)
	}
	return g, nil
}

// StoreConfig returns the document store settings.
func (c *Config) StoreConfig() store.Config {
	return store.Config{
		Backend:  c.Store.Backend,
		Path:     c.Store.Path,
		URI:      c.Store.URI,
		Database: c.Store.Database,
	}
}

// CacheConfig returns the artifact cache settings.
func (c *Config) CacheConfig() cache.Config {
	return cache.Config{
		Backend: c.Cache.Backend,
		Dir:     c.Cache.Dir,
		Redis: cache.RedisConfig{
			Addr:   c.Cache.RedisAddr,
			DB:     c.Cache.RedisDB,
			Prefix: "cellgraph:",
		},
	}
}
