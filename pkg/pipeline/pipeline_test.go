package pipeline

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/cellgraph/pkg/cache"
	"github.com/matzehuels/cellgraph/pkg/codec"
	"github.com/matzehuels/cellgraph/pkg/config"
	"github.com/matzehuels/cellgraph/pkg/errors"
	"github.com/matzehuels/cellgraph/pkg/graph"
	"github.com/matzehuels/cellgraph/pkg/observability"
	"github.com/matzehuels/cellgraph/pkg/store"
	"github.com/matzehuels/cellgraph/pkg/style"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"dot", false},
		{"states", false},
		{"png", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %q", tt.format, errors.GetCode(err))
		}
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"svg"}},
		{"dot", []string{"dot"}},
		{"svg, states,,dot", []string{"svg", "states", "dot"}},
	}
	for _, tt := range tests {
		if got := ParseFormats(tt.in); !slices.Equal(got, tt.want) {
			t.Errorf("ParseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if !slices.Equal(opts.Formats, []string{DefaultFormat}) {
		t.Errorf("Formats = %v", opts.Formats)
	}
	if opts.Logger == nil {
		t.Error("Logger not set")
	}

	opts = Options{Formats: []string{"svg", "pdf"}}
	if err := opts.ValidateAndSetDefaults(); err == nil {
		t.Error("unsupported format should fail")
	}
}

// writeDocument writes a document with vertices A and B connected by an
// edge and returns its path and the cell IDs.
func writeDocument(t *testing.T) (string, []string) {
	t.Helper()
	g := graph.New()
	var ids []string
	g.Batch(func() {
		a := g.InsertVertex("", "A", 20, 20, 80, 30, style.Style{})
		b := g.InsertVertex("", "B", 200, 150, 80, 30, style.MustParse("shape=ellipse"))
		e := g.InsertEdge("", "e", a, b, style.Style{})
		ids = []string{a, b, e}
	})
	path := filepath.Join(t.TempDir(), "doc.json")
	if err := codec.WriteFile(codec.FromModel(g.Model()), path); err != nil {
		t.Fatal(err)
	}
	return path, ids
}

func newRunner(t *testing.T, cfg *config.Config) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewRunner(cfg, c, nil, nil)
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	path, _ := writeDocument(t)
	r := newRunner(t, nil)
	defer r.Close()
	opts := Options{Formats: []string{"states", "dot"}}

	first, err := r.Execute(ctx, path, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if first.CacheInfo.RenderHit || first.CacheInfo.ReportHit {
		t.Errorf("first run hit the cache: %+v", first.CacheInfo)
	}
	if !strings.Contains(string(first.Artifacts["states"]), "<svg") {
		t.Errorf("states artifact = %s", first.Artifacts["states"])
	}
	if !strings.HasPrefix(string(first.Artifacts["dot"]), "digraph G {") {
		t.Errorf("dot artifact = %s", first.Artifacts["dot"])
	}
	if first.Report.Vertices != 2 || first.Report.Edges != 1 || first.Report.Cells != 5 {
		t.Errorf("Report = %+v", first.Report)
	}
	if !first.Report.Valid() {
		t.Errorf("unexpected errors %v", first.Report.Errors)
	}

	second, err := r.Execute(ctx, path, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !second.CacheInfo.RenderHit || !second.CacheInfo.ReportHit {
		t.Errorf("second run missed the cache: %+v", second.CacheInfo)
	}
	if second.DocumentHash != first.DocumentHash {
		t.Error("document hash changed between runs")
	}
	if string(second.Artifacts["dot"]) != string(first.Artifacts["dot"]) {
		t.Error("cached artifact differs")
	}
	if second.Report.Vertices != first.Report.Vertices {
		t.Errorf("cached report = %+v", second.Report)
	}

	opts.Refresh = true
	third, err := r.Execute(ctx, path, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if third.CacheInfo.RenderHit {
		t.Error("refresh used cached artifacts")
	}
}

func TestExecuteStages(t *testing.T) {
	path, _ := writeDocument(t)
	r := newRunner(t, nil)
	defer r.Close()

	var stages []Stage
	opts := Options{Formats: []string{"dot"}, OnStage: func(s Stage) { stages = append(stages, s) }}
	if _, err := r.Execute(context.Background(), path, opts); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := []Stage{StageLoad, StageBuild, StageValidate, StageRender}
	if !slices.Equal(stages, want) {
		t.Errorf("stages = %v, want %v", stages, want)
	}

	stages = nil
	if _, err := r.Execute(context.Background(), filepath.Join(t.TempDir(), "missing.json"), opts); err == nil {
		t.Fatal("Execute succeeded for a missing file")
	}
	if !slices.Equal(stages, []Stage{StageLoad}) {
		t.Errorf("stages after load error = %v", stages)
	}
}

func TestRenderKeyFollowsView(t *testing.T) {
	ctx := context.Background()
	path, _ := writeDocument(t)
	r := newRunner(t, nil)
	doc, err := r.LoadFile(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	g, err := r.Build(doc)
	if err != nil {
		t.Fatal(err)
	}
	opts := Options{Formats: []string{"states"}}
	if _, hit, _ := r.RenderWithCacheInfo(ctx, g, opts); hit {
		t.Fatal("empty cache hit")
	}
	g.View().SetScale(2)
	if _, hit, _ := r.RenderWithCacheInfo(ctx, g, opts); hit {
		t.Error("scaled view reused the unscaled artifact")
	}
}

func TestValidateMultiplicities(t *testing.T) {
	ctx := context.Background()
	path, ids := writeDocument(t)
	none := 0
	cfg := config.Default()
	cfg.Multiplicities = []config.MultiplicityConfig{
		{Source: true, Type: "A", Max: &none, CountError: "A has no successors"},
	}
	r := newRunner(t, cfg)

	doc, err := r.LoadFile(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	g, err := r.Build(doc)
	if err != nil {
		t.Fatal(err)
	}
	report := r.Validate(ctx, g)
	if report.Valid() {
		t.Fatal("report is valid")
	}
	if got := report.Errors[ids[0]]; !slices.Equal(got, []string{"A has no successors"}) {
		t.Errorf("errors of A = %v", got)
	}
	if !slices.Contains(report.ErrorIDs(), ids[2]) {
		t.Errorf("ErrorIDs() = %v, want edge %s", report.ErrorIDs(), ids[2])
	}

	plain := newRunner(t, nil)
	if plain.DocumentHash(g) == r.DocumentHash(g) {
		t.Error("rules do not change the document hash")
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	loads   []string
	errs    []error
	renders [][]string
}

func (h *recordingHooks) OnLoadComplete(_ context.Context, source string, _ int, _ time.Duration, err error) {
	h.loads = append(h.loads, source)
	h.errs = append(h.errs, err)
}

func (h *recordingHooks) OnRenderStart(_ context.Context, formats []string) {
	h.renders = append(h.renders, formats)
}

func TestLoadHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	t.Cleanup(observability.Reset)

	ctx := context.Background()
	r := NewRunner(nil, nil, nil, nil)
	missing := filepath.Join(t.TempDir(), "missing.json")
	if _, err := r.LoadFile(ctx, missing); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("LoadFile error = %v", err)
	}

	st := store.NewMemoryStore()
	path, _ := writeDocument(t)
	doc, err := r.LoadFile(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := st.Put(ctx, "diagram", doc); err != nil {
		t.Fatal(err)
	}
	rec, err := r.LoadStored(ctx, st, "diagram")
	if err != nil || rec.Revision != 1 {
		t.Fatalf("LoadStored = %+v, %v", rec, err)
	}

	if want := []string{missing, path, "store:diagram"}; !slices.Equal(hooks.loads, want) {
		t.Errorf("loads = %v, want %v", hooks.loads, want)
	}
	if hooks.errs[0] == nil || hooks.errs[1] != nil {
		t.Errorf("load errors = %v", hooks.errs)
	}

	g, err := r.Build(doc)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Render(ctx, g, Options{Formats: []string{"dot"}}); err != nil {
		t.Fatal(err)
	}
	if len(hooks.renders) != 1 || !slices.Equal(hooks.renders[0], []string{"dot"}) {
		t.Errorf("renders = %v", hooks.renders)
	}
}

func TestStates(t *testing.T) {
	ctx := context.Background()
	path, ids := writeDocument(t)
	r := NewRunner(nil, nil, nil, nil)
	doc, err := r.LoadFile(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	g, err := r.Build(doc)
	if err != nil {
		t.Fatal(err)
	}

	states := States(g)
	if len(states) != 3 {
		t.Fatalf("States = %+v", states)
	}
	a, e := states[0], states[2]
	if a.ID != ids[0] || a.Kind != "vertex" || a.Label != "A" || a.Width != 80 {
		t.Errorf("state of A = %+v", a)
	}
	if e.Kind != "edge" || e.Source != ids[0] || e.Target != ids[1] || len(e.Points) < 2 {
		t.Errorf("state of edge = %+v", e)
	}
}

func TestRenderUnsupported(t *testing.T) {
	_, err := Render(context.Background(), graph.New(), "png", Options{})
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("Render error = %v", err)
	}
}
