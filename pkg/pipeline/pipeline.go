// Package pipeline provides the document pipeline shared by the CLI and
// the HTTP API.
//
// # Architecture
//
// A document goes through four stages:
//
//  1. Load: read a document file (JSON or YAML) or a stored document
//  2. Build: restore the model and create a graph over it, configured by
//     [config.Config]
//  3. Validate: collect cell counts, view bounds and multiplicity errors
//  4. Render: produce artifacts in the requested formats
//
// Validation reports and artifacts are cached by a hash of the document
// and the configuration that shapes them.
//
// # Usage
//
//	runner := pipeline.NewRunner(cfg, c, nil, logger)
//	result, err := runner.Execute(ctx, "diagram.json", pipeline.Options{
//	    Formats: []string{"svg", "dot"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	doc, err := runner.LoadFile(ctx, "diagram.json")
//	g, err := runner.Build(doc)
//	report := runner.Validate(ctx, g)
//	artifacts, err := runner.Render(ctx, g, opts)
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cellgraph/pkg/errors"
	"github.com/matzehuels/cellgraph/pkg/geometry"
	"github.com/matzehuels/cellgraph/pkg/graph"
	"github.com/matzehuels/cellgraph/pkg/render"
)

// DefaultFormat is rendered when no format is requested.
const DefaultFormat = string(render.FormatSVG)

// =============================================================================
// Options
// =============================================================================

// Stage names a step of [Runner.Execute].
type Stage string

// Pipeline stages in execution order.
const (
	StageLoad     Stage = "load"
	StageBuild    Stage = "build"
	StageValidate Stage = "validate"
	StageRender   Stage = "render"
)

// Options configures the render stage.
type Options struct {
	Formats    []string `json:"formats,omitempty"`
	Detailed   bool     `json:"detailed,omitempty"`   // IDs and bounds in DOT labels
	Positioned bool     `json:"positioned,omitempty"` // pin DOT nodes to view coordinates
	Padding    float64  `json:"padding,omitempty"`    // states SVG padding
	Refresh    bool     `json:"refresh,omitempty"`    // bypass cached artifacts

	// OnStage, if set, is called by Execute as each stage begins.
	OnStage func(Stage) `json:"-"`

	Logger *log.Logger `json:"-"`
}

func (o *Options) stage(s Stage) {
	if o.OnStage != nil {
		o.OnStage(s)
	}
}

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !slices.Contains(render.Formats, render.Format(format)) {
		names := make([]string, len(render.Formats))
		for i, f := range render.Formats {
			names[i] = string(f)
		}
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(names, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are supported.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks the formats and applies defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return ValidateFormats(o.Formats)
}

// ParseFormats parses a comma-separated format list.
func ParseFormats(s string) []string {
	if s == "" {
		return []string{DefaultFormat}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// =============================================================================
// Results
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the graph built from the document.
	Graph *graph.Graph

	// DocumentHash identifies the document content.
	DocumentHash string

	// Report is the validation summary.
	Report Report

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline timings.
type Stats struct {
	LoadTime     time.Duration
	BuildTime    time.Duration
	ValidateTime time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for the cached stages.
type CacheInfo struct {
	ReportHit bool
	RenderHit bool // whether all artifacts came from cache
}

// Report summarizes a validated graph.
type Report struct {
	Cells    int                 `json:"cells"`
	Vertices int                 `json:"vertices"`
	Edges    int                 `json:"edges"`
	States   int                 `json:"states"`
	Bounds   geometry.Rectangle  `json:"bounds"`
	Errors   map[string][]string `json:"errors,omitempty"` // multiplicity errors by cell ID
}

// Valid reports whether no cell has validation errors.
func (r Report) Valid() bool { return len(r.Errors) == 0 }

// ErrorIDs returns the IDs of cells with errors, sorted.
func (r Report) ErrorIDs() []string {
	ids := make([]string, 0, len(r.Errors))
	for id := range r.Errors {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// String returns a one-line summary.
func (r Report) String() string {
	return fmt.Sprintf("%d cells (%d vertices, %d edges), %d states, %d invalid",
		r.Cells, r.Vertices, r.Edges, r.States, len(r.Errors))
}
