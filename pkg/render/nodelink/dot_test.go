package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/cellgraph/pkg/graph"
	"github.com/matzehuels/cellgraph/pkg/style"
)

func TestToDOT(t *testing.T) {
	g := graph.New()
	var a, b, box, inner string
	g.Batch(func() {
		a = g.InsertVertex("", "A", 20, 20, 80, 30, style.MustParse("fillColor=#ff0000"))
		b = g.InsertVertex("", "B", 200, 150, 80, 30, style.MustParse("shape=rhombus"))
		g.InsertEdge("", "uses", a, b, style.Style{})
		box = g.InsertVertex("", "Box", 300, 0, 200, 200, style.Style{})
		inner = g.InsertVertex(box, "Inner", 10, 10, 40, 20, style.Style{})
	})

	dot := ToDOT(g, Options{})
	for _, want := range []string{
		"digraph G {",
		"rankdir=TB;",
		`"` + a + `" [label="A", id="cell-` + a + `", fillcolor="#ff0000"];`,
		`"` + b + `" [label="B", id="cell-` + b + `", shape=diamond];`,
		`"` + a + `" -> "` + b + `" [id=`,
		`label="uses"`,
		`subgraph "cluster_` + box + `" {`,
		`label="Box";`,
		`"` + inner + `" [label="Inner"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT lacks %s\n%s", want, dot)
		}
	}

	g.FoldCells(true, false, []string{box})
	dot = ToDOT(g, Options{})
	if strings.Contains(dot, "cluster_") || strings.Contains(dot, `"`+inner+`"`) {
		t.Errorf("collapsed container exported as cluster:\n%s", dot)
	}
	if !strings.Contains(dot, `"`+box+`" [label="Box"`) {
		t.Errorf("collapsed container missing:\n%s", dot)
	}
}

func TestToDOTOptions(t *testing.T) {
	g := graph.New()
	a := g.InsertVertex("", "A", 20, 20, 80, 30, style.Style{})

	dot := ToDOT(g, Options{Positioned: true, Detailed: true})
	for _, want := range []string{
		"layout=neato;",
		`pos="60,-35!"`,
		"fixedsize=true",
		`label="A\nid: ` + a + `\nbounds: 20,20 80x30"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT lacks %s\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "rankdir") {
		t.Error("positioned output sets rankdir")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"rewrites header",
			`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`,
			`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`,
		},
		{"no viewBox", `<svg><g/></svg>`, `<svg><g/></svg>`},
		{"empty viewBox", `<svg viewBox="0 0 0 0"></svg>`, `<svg viewBox="0 0 0 0"></svg>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(normalizeViewBox([]byte(tt.in))); got != tt.want {
				t.Errorf("normalizeViewBox = %s, want %s", got, tt.want)
			}
		})
	}
}
