package style

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Names of the default entries in a [Stylesheet].
const (
	DefaultVertex = "defaultVertex"
	DefaultEdge   = "defaultEdge"
)

// Stylesheet maps style names to styles. A cell style is resolved against
// the default vertex or edge entry, then each of its base names, then its
// own keys.
type Stylesheet struct {
	styles map[string]Style
}

// NewStylesheet returns a stylesheet holding the built-in defaults.
func NewStylesheet() *Stylesheet {
	return &Stylesheet{styles: map[string]Style{
		DefaultVertex: MustParse("shape=rectangle;perimeter=rectangle;fillColor=#c3d9ff;strokeColor=#6482b9;fontColor=#774400;align=center;verticalAlign=middle"),
		DefaultEdge:   MustParse("shape=connector;strokeColor=#6482b9;fontColor=#446299;align=center;verticalAlign=middle"),
	}}
}

// Put stores st under name, replacing any previous entry.
func (ss *Stylesheet) Put(name string, st Style) {
	ss.styles[name] = st.Clone()
}

// Get returns the style stored under name.
func (ss *Stylesheet) Get(name string) (Style, bool) {
	st, ok := ss.styles[name]
	return st, ok
}

// Names returns all entry names, sorted.
func (ss *Stylesheet) Names() []string {
	return slices.Sorted(maps.Keys(ss.styles))
}

// Resolve returns the fully merged style for a cell style. Unknown base
// names are ignored. The result has no base names.
func (ss *Stylesheet) Resolve(st Style, isEdge bool) Style {
	def := DefaultVertex
	if isEdge {
		def = DefaultEdge
	}
	out := ss.styles[def].Clone()
	for _, name := range st.BaseNames {
		if base, ok := ss.styles[name]; ok {
			out = out.Merge(base)
		}
	}
	own := st.Clone()
	own.BaseNames = nil
	out = out.Merge(own)
	out.BaseNames = nil
	return out
}

// stylesheetFile is the TOML layout read by [LoadStylesheet]:
//
//	[styles.defaultVertex]
//	fillColor = "#ffffff"
//	strokeWidth = 2
//
//	[styles.lane]
//	swimlane = true
//	startSize = 24
type stylesheetFile struct {
	Styles map[string]map[string]any `toml:"styles"`
}

// LoadStylesheet reads a TOML stylesheet from path and layers it over the
// built-in defaults.
func LoadStylesheet(path string) (*Stylesheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stylesheet: %w", err)
	}
	return ParseStylesheet(data)
}

// ParseStylesheet is like [LoadStylesheet] but reads TOML from data.
// Entries named like an existing style are merged into it.
func ParseStylesheet(data []byte) (*Stylesheet, error) {
	var file stylesheetFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse stylesheet: %w", err)
	}

	ss := NewStylesheet()
	for _, name := range slices.Sorted(maps.Keys(file.Styles)) {
		var st Style
		for k, raw := range file.Styles[name] {
			v, err := tomlValue(raw)
			if err != nil {
				return nil, fmt.Errorf("stylesheet %s.%s: %w", name, k, err)
			}
			if err := st.Set(Key(k), v); err != nil {
				return nil, fmt.Errorf("stylesheet %s: %w", name, err)
			}
		}
		if prev, ok := ss.styles[name]; ok {
			st = prev.Merge(st)
		}
		ss.styles[name] = st
	}
	return ss, nil
}

func tomlValue(raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		if v {
			return "1", nil
		}
		return "0", nil
	}
	return "", fmt.Errorf("unsupported value %v: %w", raw, ErrInvalidValue)
}
