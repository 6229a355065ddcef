package style

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"empty", "", "", false},
		{"base names", "lane;bold", "lane;bold", false},
		{"known keys canonical order", "rotation=45;shape=ellipse", "shape=ellipse;rotation=45", false},
		{"custom keys sorted", "zeta=1;alpha=2", "alpha=2;zeta=1", false},
		{"flags normalized", "swimlane=true;dashed=0", "swimlane=1;dashed=0", false},
		{"whitespace", " shape = ellipse ; ", "shape=ellipse", false},
		{"bad number", "rotation=abc", "", true},
		{"opacity out of range", "opacity=150", "", true},
		{"bad enum", "align=up", "", true},
		{"bad color", "fillColor=#12", "", true},
		{"bad flag", "rounded=maybe", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := Parse(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidValue) {
					t.Fatalf("Parse(%q) error = %v, want ErrInvalidValue", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.in, err)
			}
			if got := st.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			again, err := Parse(st.String())
			if err != nil || !again.Equal(st) {
				t.Errorf("round trip changed style: %q", again.String())
			}
		})
	}
}

func TestStyleSetAndGet(t *testing.T) {
	var st Style
	if err := st.Set(KeyStartSize, "30"); err != nil {
		t.Fatal(err)
	}
	if got := st.Number(KeyStartSize, 0); got != 30 {
		t.Errorf("Number(startSize) = %v, want 30", got)
	}
	if err := st.Set("marker", "x"); err != nil {
		t.Fatal(err)
	}
	if v, ok := st.Get("marker"); !ok || v != "x" {
		t.Errorf("Get(marker) = %q, %v", v, ok)
	}
	if err := st.Set(KeyStartSize, ""); err != nil {
		t.Fatal(err)
	}
	if _, ok := st.Get(KeyStartSize); ok {
		t.Error("empty value should clear the key")
	}
	if !st.Flag(KeyMovable, true) {
		t.Error("unset flag should return the default")
	}
	if err := st.Set("", "x"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Set with empty key error = %v", err)
	}
}

func TestMergeAndClone(t *testing.T) {
	base := MustParse("shape=ellipse;fillColor=red;foo=1")
	over := MustParse("fillColor=blue;rounded=1;bar=2")

	got := base.Merge(over)
	want := "shape=ellipse;fillColor=blue;rounded=1;bar=2;foo=1"
	if got.String() != want {
		t.Errorf("Merge = %q, want %q", got.String(), want)
	}
	if base.String() != "shape=ellipse;fillColor=red;foo=1" {
		t.Errorf("Merge mutated receiver: %q", base.String())
	}

	c := got.Clone()
	*c.Rounded = false
	c.Custom["bar"] = "9"
	if !*got.Rounded || got.Custom["bar"] != "2" {
		t.Error("Clone shares state with original")
	}
}

func TestStylesheetResolve(t *testing.T) {
	ss := NewStylesheet()
	ss.Put("lane", MustParse("swimlane=1;startSize=20;fillColor=#eeeeee"))

	st := ss.Resolve(MustParse("lane;fillColor=#ff0000;foo=bar"), false)
	if st.Shape != "rectangle" {
		t.Errorf("Shape = %q, want default rectangle", st.Shape)
	}
	if st.FillColor != "#ff0000" {
		t.Errorf("FillColor = %q, own key should win", st.FillColor)
	}
	if !st.Flag(KeySwimlane, false) || st.Number(KeyStartSize, 0) != 20 {
		t.Error("base style keys missing")
	}
	if len(st.BaseNames) != 0 {
		t.Errorf("resolved style keeps base names %v", st.BaseNames)
	}

	edge := ss.Resolve(Style{}, true)
	if edge.Shape != "connector" {
		t.Errorf("edge Shape = %q, want connector", edge.Shape)
	}

	unknown := ss.Resolve(MustParse("missing"), false)
	if unknown.Shape != "rectangle" {
		t.Error("unknown base name should be ignored")
	}
}

func TestLoadStylesheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "styles.toml")
	data := `
[styles.defaultVertex]
fillColor = "#ffffff"

[styles.lane]
swimlane = true
startSize = 24
opacity = 50.5
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	ss, err := LoadStylesheet(path)
	if err != nil {
		t.Fatal(err)
	}
	def, _ := ss.Get(DefaultVertex)
	if def.FillColor != "#ffffff" || def.Shape != "rectangle" {
		t.Errorf("defaultVertex = %q", def.String())
	}
	lane, ok := ss.Get("lane")
	if !ok {
		t.Fatal("lane missing")
	}
	if lane.String() != "opacity=50.5;swimlane=1;startSize=24" {
		t.Errorf("lane = %q", lane.String())
	}

	if _, err := ParseStylesheet([]byte("[styles.bad]\nrotation = \"x\"")); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("invalid stylesheet error = %v", err)
	}
}
