package style

import (
	"strconv"
	"strings"
)

// field binds a known key to its typed slot in Style.
type field struct {
	key   Key
	get   func(*Style) (string, bool)
	set   func(*Style, string) error
	clear func(*Style)
}

var fields = []field{
	stringField(KeyShape, func(s *Style) *string { return &s.Shape }, validName),
	stringField(KeyPerimeter, func(s *Style) *string { return &s.Perimeter }, validName),
	stringField(KeyFillColor, func(s *Style) *string { return &s.FillColor }, validColor),
	stringField(KeyStrokeColor, func(s *Style) *string { return &s.StrokeColor }, validColor),
	stringField(KeyFontColor, func(s *Style) *string { return &s.FontColor }, validColor),
	numberField(KeyStrokeWidth, func(s *Style) **float64 { return &s.StrokeWidth }, 0, -1),
	numberField(KeyRotation, func(s *Style) **float64 { return &s.Rotation }, -360, 360),
	numberField(KeyOpacity, func(s *Style) **float64 { return &s.Opacity }, 0, 100),
	flagField(KeySwimlane, func(s *Style) **bool { return &s.Swimlane }),
	numberField(KeyStartSize, func(s *Style) **float64 { return &s.StartSize }, 0, -1),
	flagField(KeyHorizontal, func(s *Style) **bool { return &s.Horizontal }),
	flagField(KeyFoldable, func(s *Style) **bool { return &s.Foldable }),
	flagField(KeyEditable, func(s *Style) **bool { return &s.Editable }),
	flagField(KeyMovable, func(s *Style) **bool { return &s.Movable }),
	flagField(KeyDeletable, func(s *Style) **bool { return &s.Deletable }),
	stringField(KeyEdgeStyle, func(s *Style) *string { return &s.EdgeStyle }, validName),
	stringField(KeyLabelPosition, func(s *Style) *string { return &s.LabelPosition }, oneOf(AlignLeft, AlignCenter, AlignRight)),
	stringField(KeyVerticalLabelPosition, func(s *Style) *string { return &s.VerticalLabelPosition }, oneOf(AlignTop, AlignMiddle, AlignBottom)),
	stringField(KeyAlign, func(s *Style) *string { return &s.Align }, oneOf(AlignLeft, AlignCenter, AlignRight)),
	stringField(KeyVerticalAlign, func(s *Style) *string { return &s.VerticalAlign }, oneOf(AlignTop, AlignMiddle, AlignBottom)),
	flagField(KeyRounded, func(s *Style) **bool { return &s.Rounded }),
	flagField(KeyDashed, func(s *Style) **bool { return &s.Dashed }),
}

var fieldsByKey = func() map[Key]field {
	m := make(map[Key]field, len(fields))
	for _, f := range fields {
		m[f.key] = f
	}
	return m
}()

// Keys returns the known keys in canonical order.
func Keys() []Key {
	keys := make([]Key, len(fields))
	for i, f := range fields {
		keys[i] = f.key
	}
	return keys
}

func stringField(key Key, slot func(*Style) *string, valid func(string) bool) field {
	return field{
		key: key,
		get: func(s *Style) (string, bool) {
			v := *slot(s)
			return v, v != ""
		},
		set: func(s *Style, v string) error {
			if !valid(v) {
				return ErrInvalidValue
			}
			*slot(s) = v
			return nil
		},
		clear: func(s *Style) { *slot(s) = "" },
	}
}

// numberField accepts values in [lo, hi]; hi < lo means no upper bound.
func numberField(key Key, slot func(*Style) **float64, lo, hi float64) field {
	return field{
		key: key,
		get: func(s *Style) (string, bool) {
			p := *slot(s)
			if p == nil {
				return "", false
			}
			return strconv.FormatFloat(*p, 'f', -1, 64), true
		},
		set: func(s *Style, v string) error {
			n, err := strconv.ParseFloat(v, 64)
			if err != nil || n < lo || (hi >= lo && n > hi) {
				return ErrInvalidValue
			}
			*slot(s) = &n
			return nil
		},
		clear: func(s *Style) { *slot(s) = nil },
	}
}

func flagField(key Key, slot func(*Style) **bool) field {
	return field{
		key: key,
		get: func(s *Style) (string, bool) {
			p := *slot(s)
			if p == nil {
				return "", false
			}
			if *p {
				return "1", true
			}
			return "0", true
		},
		set: func(s *Style, v string) error {
			b, err := parseBool(v)
			if err != nil {
				return err
			}
			*slot(s) = &b
			return nil
		},
		clear: func(s *Style) { *slot(s) = nil },
	}
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "1", "true":
		return true, nil
	case "0", "false":
		return false, nil
	}
	return false, ErrInvalidValue
}

func oneOf(values ...string) func(string) bool {
	return func(v string) bool {
		for _, ok := range values {
			if v == ok {
				return true
			}
		}
		return false
	}
}

// validName accepts identifiers such as "ellipse" or "orthogonalEdgeStyle".
func validName(v string) bool {
	for _, r := range v {
		if !(r == '_' || r == '-' || r == '.' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return v != ""
}

// validColor accepts "none", "#rgb", "#rrggbb" and plain color names.
func validColor(v string) bool {
	if v == "none" {
		return true
	}
	if hex, ok := strings.CutPrefix(v, "#"); ok {
		if len(hex) != 3 && len(hex) != 6 {
			return false
		}
		_, err := strconv.ParseUint(hex, 16, 32)
		return err == nil
	}
	for _, r := range v {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return v != ""
}
