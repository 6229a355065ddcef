// Package style implements structured cell styles and stylesheets.
//
// # Style Strings
//
// Styles are written as semicolon separated lists. Entries without '=' name
// stylesheet entries to inherit from, the rest are key/value pairs:
//
//	st, err := style.Parse("lane;fillColor=#ffeecc;rotation=90")
//
// Known keys (see [Keys]) are parsed into typed fields and validated when
// the style is built, so a bad value fails at [Parse] rather than at render
// time. Keys the package does not know are kept verbatim in [Style.Custom].
// [Style.String] returns the canonical form, which [Parse] reads back.
//
// # Stylesheets
//
// A [Stylesheet] holds named styles plus the default vertex and edge
// entries. [Stylesheet.Resolve] merges defaults, base names and a cell's own
// keys into the effective style the view caches on each cell state.
// Stylesheets can be loaded from TOML with [LoadStylesheet].
package style
