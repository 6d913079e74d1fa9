/*
Package format renders token trees with themed colors.

A Theme maps standard-action names to styles; lookup walks up the action
hierarchy, so a style for "Literal" also covers "Literal.Number" unless a
more specific style is defined. Themes can be loaded from a small JSON
format. The terminal formatter writes the input text with ANSI escape
sequences around the styled tokens.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package format

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/npillmayer/schuko/tracing"
	"github.com/tidwall/gjson"

	"github.com/npillmayer/relex"
)

// tracer traces with key 'relex.format'.
func tracer() tracing.Trace {
	return tracing.Select("relex.format")
}

// A Style describes how a token category is rendered.
type Style struct {
	Foreground colorful.Color
	HasColor   bool
	Bold       bool
	Italic     bool
	Underline  bool
}

// A Theme maps action names to styles.
type Theme struct {
	styles map[string]Style
}

// NewTheme creates an empty theme.
func NewTheme() *Theme {
	return &Theme{styles: make(map[string]Style)}
}

// Set assigns a style to an action name like "Comment" or
// "Literal.Number".
func (th *Theme) Set(name string, s Style) {
	th.styles[name] = s
}

// Style returns the style for an action. For standard actions the lookup
// walks up the hierarchy until a styled ancestor is found.
func (th *Theme) Style(a relex.Action) (Style, bool) {
	sa, ok := a.(*relex.StandardAction)
	if !ok {
		s, found := th.styles[fmt.Sprint(a)]
		return s, found
	}
	for ; sa != nil; sa = sa.Parent() {
		if s, found := th.styles[sa.String()]; found {
			return s, true
		}
	}
	return Style{}, false
}

// LoadTheme parses a theme from JSON of the form
//
//    {"styles": {
//        "Comment":        {"color": "#616e87", "italic": true},
//        "Literal.Number": {"color": "#b48ead"}
//    }}
//
func LoadTheme(jsonText string) (*Theme, error) {
	if !gjson.Valid(jsonText) {
		return nil, fmt.Errorf("format: invalid theme JSON")
	}
	th := NewTheme()
	var err error
	gjson.Parse(jsonText).Get("styles").ForEach(func(key, value gjson.Result) bool {
		var s Style
		if c := value.Get("color"); c.Exists() {
			col, cerr := colorful.Hex(c.String())
			if cerr != nil {
				err = fmt.Errorf("format: style %s: %v", key.String(), cerr)
				return false
			}
			s.Foreground = col
			s.HasColor = true
		}
		s.Bold = value.Get("bold").Bool()
		s.Italic = value.Get("italic").Bool()
		s.Underline = value.Get("underline").Bool()
		th.Set(key.String(), s)
		return true
	})
	if err != nil {
		return nil, err
	}
	tracer().Debugf("loaded theme with %d styles", len(th.styles))
	return th, nil
}

// DefaultTheme returns a built-in dark theme for the standard actions.
func DefaultTheme() *Theme {
	th := NewTheme()
	add := func(name, hex string, bold, italic bool) {
		col, _ := colorful.Hex(hex)
		th.Set(name, Style{Foreground: col, HasColor: true, Bold: bold, Italic: italic})
	}
	add("Keyword", "#81a1c1", true, false)
	add("Name", "#88c0d0", false, false)
	add("Literal", "#a3be8c", false, false)
	add("Literal.Number", "#b48ead", false, false)
	add("Comment", "#616e87", false, true)
	add("Delimiter", "#eceff4", false, false)
	add("Error", "#bf616a", true, false)
	return th
}
