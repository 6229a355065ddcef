// Package cli implements the cellgraph command-line interface.
//
// The commands load diagram documents (JSON or YAML), build a graph over
// them, and validate, render, replay or browse their change history:
//
//   - validate: print the view states and multiplicity errors
//   - render: write SVG, DOT or state SVG artifacts (cached)
//   - replay: apply an XML change log and save the result
//   - history: step through replayed edits with undo and redo
//   - serve: run the HTTP API over stored documents
//   - cache: manage the artifact cache
//
// All commands read the TOML configuration given by --config, or the
// default config file if it exists, and support --verbose (-v) for
// debug-level logging through charmbracelet/log.
package cli

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cellgraph/pkg/cache"
	"github.com/matzehuels/cellgraph/pkg/config"
	"github.com/matzehuels/cellgraph/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "cellgraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	noCache    bool
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// config loads the configuration once.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	ch, err := c.newCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cfg, ch, nil, c.Logger), nil
}

// newCache opens the configured cache. A cache that cannot be opened
// disables caching instead of failing the command.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	ch, err := cache.Open(ctx, cfg.CacheConfig())
	if err != nil {
		c.Logger.Warn("cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return ch, nil
}

// cacheDir returns the configured file cache directory.
func (c *CLI) cacheDir() (string, error) {
	cfg, err := c.config()
	if err != nil {
		return "", err
	}
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return cache.DefaultDir()
}

// =============================================================================
// Paths
// =============================================================================

// basePath derives the base output path from the output and input file
// paths. If output is empty, it strips the extension from input; a known
// artifact extension on output is stripped as well.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	for _, ext := range []string{".states.svg", ".svg", ".dot"} {
		if strings.HasSuffix(output, ext) {
			return strings.TrimSuffix(output, ext)
		}
	}
	return output
}

// artifactExt returns the file extension for a render format.
func artifactExt(format string) string {
	if format == "states" {
		return "states.svg"
	}
	return format
}
