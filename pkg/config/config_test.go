package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/cellgraph/pkg/errors"
	"github.com/matzehuels/cellgraph/pkg/model"
	"github.com/matzehuels/cellgraph/pkg/style"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "styles.toml", "[styles.task]\nfillColor = \"#00ff00\"\n")
	path := writeFile(t, dir, "config.toml", `
stylesheet = "styles.toml"

[model]
ids = "uuid"
prefix = "c"

[view]
scale = 2

[undo]
size = 5

[cache]
backend = "none"
ttl = "90m"

[store]
backend = "sqlite"
path = "docs.db"

[[multiplicity]]
source = true
type = "task"
max = 1
count_error = "one successor"

[[multiplicity]]
type = "sink"
min = 1
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model.IDs != IDsUUID || cfg.Model.Prefix != "c" {
		t.Errorf("Model = %+v", cfg.Model)
	}
	if !cfg.Model.MaintainEdgeParent {
		t.Error("unset key should keep its default")
	}
	if cfg.Cache.TTL.Duration != 90*time.Minute {
		t.Errorf("TTL = %v, want 90m", cfg.Cache.TTL)
	}
	if got, want := cfg.Stylesheet, filepath.Join(dir, "styles.toml"); got != want {
		t.Errorf("Stylesheet = %q, want %q", got, want)
	}
	if sc := cfg.StoreConfig(); sc.Backend != "sqlite" || sc.Path != "docs.db" {
		t.Errorf("StoreConfig() = %+v", sc)
	}

	rules := cfg.MultiplicityRules()
	if len(rules) != 2 {
		t.Fatalf("rules = %d, want 2", len(rules))
	}
	if rules[0].Max != 1 || !rules[0].Source || rules[0].CountError != "one successor" {
		t.Errorf("rule 0 = %+v", rules[0])
	}
	if rules[1].Max != -1 || rules[1].Min != 1 {
		t.Errorf("rule 1 = %+v, want unbounded max", rules[1])
	}

	g, err := cfg.NewGraph(model.New(cfg.ModelOptions()...), nil)
	if err != nil {
		t.Fatalf("NewGraph: %v", err)
	}
	if g.View().Scale() != 2 {
		t.Errorf("scale = %v, want 2", g.View().Scale())
	}
	if len(g.Validator().Multiplicities()) != 2 {
		t.Errorf("validator rules = %d", len(g.Validator().Multiplicities()))
	}
	st := g.Stylesheet().Resolve(style.MustParse("task"), false)
	if v, _ := st.Get(style.KeyFillColor); v != "#00ff00" {
		t.Errorf("fillColor = %q, want stylesheet value", v)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		code    errors.Code
	}{
		{"syntax", "[model\n", errors.ErrCodeInvalidConfig},
		{"unknown key", "[model]\ncolour = 1\n", errors.ErrCodeInvalidConfig},
		{"bad ids", "[model]\nids = \"random\"\n", errors.ErrCodeInvalidConfig},
		{"bad scale", "[view]\nscale = 0\n", errors.ErrCodeInvalidConfig},
		{"bad ttl", "[cache]\nttl = \"soon\"\n", errors.ErrCodeInvalidConfig},
		{"bad cache", "[cache]\nbackend = \"memcached\"\n", errors.ErrCodeInvalidConfig},
		{"bad store", "[store]\nbackend = \"postgres\"\n", errors.ErrCodeInvalidConfig},
		{"mongo uri", "[store]\nbackend = \"mongo\"\nuri = \"http://x\"\n", errors.ErrCodeInvalidConfig},
		{"rule type", "[[multiplicity]]\nmax = 1\n", errors.ErrCodeInvalidConfig},
		{"rule bounds", "[[multiplicity]]\ntype = \"a\"\nmin = 3\nmax = 1\n", errors.ErrCodeInvalidConfig},
		{"session idle", "[server]\nsession_idle = \"-1m\"\n", errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, "config.toml", tt.content)
			_, err := Load(path)
			if code := errors.GetCode(err); code != tt.code {
				t.Errorf("Load error = %v (code %q), want code %q", err, code, tt.code)
			}
		})
	}

	_, err := Load(filepath.Join(dir, "missing.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v", err)
	}
}

func TestLoadDefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load without file: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}

	if err := os.MkdirAll(filepath.Join(home, "cellgraph"), 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(home, "cellgraph"), "config.toml", "[server]\naddr = \":9090\"\n")
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load default path: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q, want :9090", cfg.Server.Addr)
	}
}

func TestModelOptions(t *testing.T) {
	cfg := Default()
	cfg.Model.Prefix = "n"
	m := model.New(cfg.ModelOptions()...)
	id := m.CreateVertex("a", nil, style.Style{})
	if id != "n2" {
		t.Errorf("id = %q, want n2", id)
	}
}
