package style

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

var (
	// ErrInvalidValue is returned by [Parse] and [Style.Set] when a known key
	// carries a value of the wrong kind, e.g. "rotation=abc" or "align=up".
	ErrInvalidValue = errors.New("invalid style value")

	// ErrInvalidKey is returned by [Style.Set] for an empty key.
	ErrInvalidKey = errors.New("invalid style key")
)

// Key names a style attribute.
type Key string

// Known keys. Keys outside this set are kept in [Style.Custom].
const (
	KeyShape                 Key = "shape"
	KeyPerimeter             Key = "perimeter"
	KeyFillColor             Key = "fillColor"
	KeyStrokeColor           Key = "strokeColor"
	KeyFontColor             Key = "fontColor"
	KeyStrokeWidth           Key = "strokeWidth"
	KeyRotation              Key = "rotation"
	KeyOpacity               Key = "opacity"
	KeySwimlane              Key = "swimlane"
	KeyStartSize             Key = "startSize"
	KeyHorizontal            Key = "horizontal"
	KeyFoldable              Key = "foldable"
	KeyEditable              Key = "editable"
	KeyMovable               Key = "movable"
	KeyDeletable             Key = "deletable"
	KeyEdgeStyle             Key = "edgeStyle"
	KeyLabelPosition         Key = "labelPosition"
	KeyVerticalLabelPosition Key = "verticalLabelPosition"
	KeyAlign                 Key = "align"
	KeyVerticalAlign         Key = "verticalAlign"
	KeyRounded               Key = "rounded"
	KeyDashed                Key = "dashed"
)

// Horizontal and vertical alignment values.
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
	AlignTop    = "top"
	AlignMiddle = "middle"
	AlignBottom = "bottom"
)

// Style is a parsed cell style.
//
// Known keys are stored in typed fields: strings are unset when empty,
// numbers and flags are unset when nil. BaseNames lists named stylesheet
// entries the style extends, in order. Custom keeps every key this package
// does not know about, so a style survives a Parse/String round trip.
//
// The zero value is an empty style.
type Style struct {
	BaseNames []string

	Shape                 string
	Perimeter             string
	FillColor             string
	StrokeColor           string
	FontColor             string
	EdgeStyle             string
	LabelPosition         string
	VerticalLabelPosition string
	Align                 string
	VerticalAlign         string

	StrokeWidth *float64
	Rotation    *float64
	Opacity     *float64
	StartSize   *float64

	Swimlane   *bool
	Horizontal *bool
	Foldable   *bool
	Editable   *bool
	Movable    *bool
	Deletable  *bool
	Rounded    *bool
	Dashed     *bool

	Custom map[string]string
}

// Parse reads a style string of the form "base1;base2;key=value;key=value".
// Entries without '=' are base names. Values of known keys are validated;
// an invalid value returns an error wrapping [ErrInvalidValue]. The empty
// string yields the zero Style.
func Parse(s string) (Style, error) {
	var st Style
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			st.BaseNames = append(st.BaseNames, part)
			continue
		}
		if err := st.Set(Key(strings.TrimSpace(k)), strings.TrimSpace(v)); err != nil {
			return Style{}, err
		}
	}
	return st, nil
}

// MustParse is like [Parse] but panics on error. It is intended for
// literals in tests and package-level defaults.
func MustParse(s string) Style {
	st, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return st
}

// Set assigns value to key. Known keys are validated; other keys go to
// Custom. An empty value clears the key.
func (s *Style) Set(key Key, value string) error {
	if key == "" {
		return ErrInvalidKey
	}
	f, ok := fieldsByKey[key]
	if !ok {
		if value == "" {
			delete(s.Custom, string(key))
			return nil
		}
		if s.Custom == nil {
			s.Custom = make(map[string]string)
		}
		s.Custom[string(key)] = value
		return nil
	}
	if value == "" {
		f.clear(s)
		return nil
	}
	if err := f.set(s, value); err != nil {
		return fmt.Errorf("style %s=%q: %w", key, value, err)
	}
	return nil
}

// Get returns the string form of key and whether it is set.
func (s Style) Get(key Key) (string, bool) {
	if f, ok := fieldsByKey[key]; ok {
		return f.get(&s)
	}
	v, ok := s.Custom[string(key)]
	return v, ok
}

// Number returns the numeric value of key, or def when unset or not a
// number.
func (s Style) Number(key Key, def float64) float64 {
	v, ok := s.Get(key)
	if !ok {
		return def
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return n
}

// Flag returns the boolean value of key, or def when unset.
func (s Style) Flag(key Key, def bool) bool {
	v, ok := s.Get(key)
	if !ok {
		return def
	}
	b, err := parseBool(v)
	if err != nil {
		return def
	}
	return b
}

// String formats s in the canonical form accepted by [Parse]: base names
// first, then known keys in declaration order, then custom keys sorted.
func (s Style) String() string {
	parts := slices.Clone(s.BaseNames)
	for _, f := range fields {
		if v, ok := f.get(&s); ok {
			parts = append(parts, string(f.key)+"="+v)
		}
	}
	for _, k := range slices.Sorted(maps.Keys(s.Custom)) {
		parts = append(parts, k+"="+s.Custom[k])
	}
	return strings.Join(parts, ";")
}

// IsZero reports whether s has no base names and no keys.
func (s Style) IsZero() bool {
	return s.String() == ""
}

// Clone returns a deep copy of s.
func (s Style) Clone() Style {
	c := s
	c.BaseNames = slices.Clone(s.BaseNames)
	c.Custom = maps.Clone(s.Custom)
	c.StrokeWidth = cloneNum(s.StrokeWidth)
	c.Rotation = cloneNum(s.Rotation)
	c.Opacity = cloneNum(s.Opacity)
	c.StartSize = cloneNum(s.StartSize)
	c.Swimlane = cloneFlag(s.Swimlane)
	c.Horizontal = cloneFlag(s.Horizontal)
	c.Foldable = cloneFlag(s.Foldable)
	c.Editable = cloneFlag(s.Editable)
	c.Movable = cloneFlag(s.Movable)
	c.Deletable = cloneFlag(s.Deletable)
	c.Rounded = cloneFlag(s.Rounded)
	c.Dashed = cloneFlag(s.Dashed)
	return c
}

// Merge returns a copy of s with every key set in over applied on top.
// Base names of over are appended.
func (s Style) Merge(over Style) Style {
	out := s.Clone()
	out.BaseNames = append(out.BaseNames, over.BaseNames...)
	for _, f := range fields {
		if v, ok := f.get(&over); ok {
			// Values in over were validated when it was built.
			_ = f.set(&out, v)
		}
	}
	for k, v := range over.Custom {
		if out.Custom == nil {
			out.Custom = make(map[string]string)
		}
		out.Custom[k] = v
	}
	return out
}

// Equal reports whether s and o format to the same canonical string.
func (s Style) Equal(o Style) bool {
	return s.String() == o.String()
}

func cloneNum(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFlag(p *bool) *bool {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
