package cli

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/cellgraph/pkg/graph"
	"github.com/matzehuels/cellgraph/pkg/style"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	c := New(os.Stderr, LogInfo)
	dir, err := c.cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join("/tmp/xdg-cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirFromConfig(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.toml")
	if err := os.WriteFile(path, []byte("[cache]\ndir = \"/srv/cache\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	c := New(os.Stderr, LogInfo)
	c.configPath = path
	dir, err := c.cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if dir != "/srv/cache" {
		t.Errorf("cacheDir() = %q, want /srv/cache", dir)
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "docs/flow.json", "docs/flow"},
		{"", "flow.yaml", "flow"},
		{"out/flow.svg", "flow.json", "out/flow"},
		{"out/flow.states.svg", "flow.json", "out/flow"},
		{"out/flow.dot", "flow.json", "out/flow"},
		{"out/flow", "flow.json", "out/flow"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		format  string
		formats int
		want    string
	}{
		{"default", "", "svg", 1, "flow.svg"},
		{"states", "", "states", 2, "flow.states.svg"},
		{"explicit single", "diagram.svg", "svg", 1, "diagram.svg"},
		{"explicit multiple", "out/diagram.svg", "dot", 2, "out/diagram.dot"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputPath("flow.json", tt.output, tt.format, tt.formats); got != tt.want {
				t.Errorf("outputPath = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSummarizeEdit(t *testing.T) {
	g := graph.New()
	g.Batch(func() {
		a := g.InsertVertex("", "a", 0, 0, 10, 10, style.Style{})
		g.Model().SetValue(a, "b")
		g.Model().SetValue(a, "c")
	})

	history := g.UndoManager().History()
	if len(history) != 1 {
		t.Fatalf("history = %d edits, want 1", len(history))
	}
	got := summarizeEdit(history[0])
	if want := "3 changes: Child, Value ×2"; got != want {
		t.Errorf("summarizeEdit = %q, want %q", got, want)
	}
}

func TestHistoryModel(t *testing.T) {
	g := graph.New()
	g.InsertVertex("", "a", 0, 0, 10, 10, style.Style{})
	g.InsertVertex("", "b", 20, 0, 10, 10, style.Style{})

	key := func(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }
	var m tea.Model = NewHistoryModel(g)

	steps := []struct {
		key   string
		index int
	}{
		{"u", 1},
		{"u", 0},
		{"u", 0},
		{"r", 1},
		{"G", 2},
		{"g", 0},
	}
	for _, s := range steps {
		m, _ = m.Update(key(s.key))
		if got := g.UndoManager().Index(); got != s.index {
			t.Errorf("after %q: Index() = %d, want %d", s.key, got, s.index)
		}
	}

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Error("q should quit")
	}

	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	if h := m.(HistoryModel).Height; h != 22 {
		t.Errorf("Height = %d, want 22", h)
	}
}
