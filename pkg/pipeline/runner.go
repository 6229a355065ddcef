package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cellgraph/pkg/cache"
	"github.com/matzehuels/cellgraph/pkg/codec"
	"github.com/matzehuels/cellgraph/pkg/config"
	"github.com/matzehuels/cellgraph/pkg/graph"
	"github.com/matzehuels/cellgraph/pkg/observability"
	"github.com/matzehuels/cellgraph/pkg/store"
)

// TTLs for cached entries.
const (
	TTLReport   = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so they share the caching logic.
//
// The Runner is stateless except for the configuration, cache and logger.
// Multiple goroutines can use the same Runner with different documents;
// a Graph it returns is not safe for concurrent use.
type Runner struct {
	Config *config.Config
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	stylesheetHash string
	configHash     string
}

// NewRunner creates a runner.
// If cfg is nil, [config.Default] is used.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(cfg *config.Config, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if cfg == nil {
		cfg = config.Default()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	r := &Runner{
		Config: cfg,
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
	if cfg.Stylesheet != "" {
		if data, err := os.ReadFile(cfg.Stylesheet); err == nil {
			r.stylesheetHash = cache.Hash(data)
		}
	}
	rules, _ := json.Marshal(cfg.Multiplicities)
	r.configHash = cache.Hash(rules, []byte(r.stylesheetHash))
	return r
}

// Execute loads the document at path and runs all stages.
func (r *Runner) Execute(ctx context.Context, path string, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	result := &Result{}

	opts.stage(StageLoad)
	start := time.Now()
	doc, err := r.LoadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = time.Since(start)

	opts.stage(StageBuild)
	start = time.Now()
	g, err := r.Build(doc)
	if err != nil {
		return nil, err
	}
	result.Graph = g
	result.DocumentHash = r.DocumentHash(g)
	result.Stats.BuildTime = time.Since(start)

	r.Logger.Info("loaded document",
		"path", path,
		"cells", len(doc.Cells),
		"duration", result.Stats.LoadTime+result.Stats.BuildTime)

	opts.stage(StageValidate)
	start = time.Now()
	result.Report, result.CacheInfo.ReportHit = r.ValidateWithCacheInfo(ctx, g)
	result.Stats.ValidateTime = time.Since(start)

	r.Logger.Info("validated graph",
		"states", result.Report.States,
		"invalid", len(result.Report.Errors),
		"duration", result.Stats.ValidateTime)

	opts.stage(StageRender)
	start = time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.CacheInfo.RenderHit = hit
	result.Stats.RenderTime = time.Since(start)

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// =============================================================================
// Load and build
// =============================================================================

// LoadFile reads a JSON or YAML document.
func (r *Runner) LoadFile(ctx context.Context, path string) (codec.Document, error) {
	return r.load(ctx, path, func() (codec.Document, error) {
		return codec.ReadFile(path)
	})
}

// LoadStored reads a document from st.
func (r *Runner) LoadStored(ctx context.Context, st store.Store, id string) (*store.Record, error) {
	var rec *store.Record
	_, err := r.load(ctx, "store:"+id, func() (codec.Document, error) {
		var err error
		if rec, err = st.Get(ctx, id); err != nil {
			return codec.Document{}, err
		}
		return rec.Document, nil
	})
	return rec, err
}

func (r *Runner) load(ctx context.Context, source string, fn func() (codec.Document, error)) (codec.Document, error) {
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, source)
	start := time.Now()
	doc, err := fn()
	hooks.OnLoadComplete(ctx, source, len(doc.Cells), time.Since(start), err)
	return doc, err
}

// Build restores the model of doc and creates a validated graph over it.
func (r *Runner) Build(doc codec.Document) (*graph.Graph, error) {
	m, err := codec.ToModel(doc, r.Config.ModelOptions()...)
	if err != nil {
		return nil, err
	}
	return r.Config.NewGraph(m, r.Logger)
}

// DocumentHash hashes the current model content of g together with the
// configuration that shapes reports and artifacts.
func (r *Runner) DocumentHash(g *graph.Graph) string {
	data, _ := json.Marshal(codec.FromModel(g.Model()))
	return cache.Hash(data, []byte(r.configHash))
}

// =============================================================================
// Validate
// =============================================================================

// Validate summarizes g and checks its multiplicities.
func (r *Runner) Validate(ctx context.Context, g *graph.Graph) Report {
	report, _ := r.ValidateWithCacheInfo(ctx, g)
	return report
}

// ValidateWithCacheInfo is like Validate and reports whether the summary
// came from the cache.
func (r *Runner) ValidateWithCacheInfo(ctx context.Context, g *graph.Graph) (Report, bool) {
	key := r.Keyer.DocumentKey(r.DocumentHash(g))
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		var report Report
		if err := json.Unmarshal(data, &report); err == nil {
			return report, true
		}
	}

	report := Summarize(g)
	if data, err := json.Marshal(report); err == nil {
		_ = r.Cache.Set(ctx, key, data, TTLReport)
	}
	return report, false
}

// Summarize counts the cells of g and runs the multiplicity checks.
func Summarize(g *graph.Graph) Report {
	m, v := g.Model(), g.View()
	v.Validate("")
	report := Report{
		States: v.Len(),
		Bounds: v.GraphBounds(),
	}
	for _, id := range m.Descendants(m.Root()) {
		report.Cells++
		switch {
		case m.IsVertex(id):
			report.Vertices++
		case m.IsEdge(id):
			report.Edges++
		}
	}
	if errs := g.Validator().ValidateGraph(); len(errs) > 0 {
		report.Errors = errs
	}
	return report
}

// =============================================================================
// Render
// =============================================================================

// Render is like RenderWithCacheInfo without the cache hit info.
func (r *Runner) Render(ctx context.Context, g *graph.Graph, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, g, opts)
	return artifacts, err
}

// RenderWithCacheInfo renders g in opts.Formats, reusing cached artifacts,
// and reports whether all of them came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *graph.Graph, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts, hit, err := r.render(ctx, g, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, hit, err
}

func (r *Runner) render(ctx context.Context, g *graph.Graph, opts Options) (map[string][]byte, bool, error) {
	docHash := r.DocumentHash(g)
	artifacts := make(map[string][]byte, len(opts.Formats))
	hits := 0
	for _, format := range opts.Formats {
		key := r.Keyer.RenderKey(docHash, r.renderKeyOpts(g, format, opts))
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				artifacts[format] = data
				hits++
				continue
			}
		}
		data, err := Render(ctx, g, format, opts)
		if err != nil {
			return nil, false, err
		}
		artifacts[format] = data
		if err := r.Cache.Set(ctx, key, data, TTLArtifact); err != nil {
			opts.Logger.Warn("cache write failed", "format", format, "error", err)
		}
	}
	return artifacts, hits == len(opts.Formats), nil
}

func (r *Runner) renderKeyOpts(g *graph.Graph, format string, opts Options) cache.RenderKeyOpts {
	return cache.RenderKeyOpts{
		Format:     format,
		Detailed:   opts.Detailed,
		Positioned: opts.Positioned,
		Scale:      g.View().Scale(),
		Root:       g.View().CurrentRoot(),
		Stylesheet: r.stylesheetHash,
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
