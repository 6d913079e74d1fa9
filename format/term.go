package format

import (
	"fmt"
	"io"

	"github.com/npillmayer/relex/tree"
)

const ansiReset = "\x1b[0m"

// A TermFormatter writes text with ANSI escape sequences around the
// tokens a theme defines styles for. Text outside any token (skipped or
// un-lexed spans) is written unstyled.
type TermFormatter struct {
	theme *Theme
}

// NewTermFormatter creates a formatter using the given theme (the
// default theme if nil).
func NewTermFormatter(theme *Theme) *TermFormatter {
	if theme == nil {
		theme = DefaultTheme()
	}
	return &TermFormatter{theme: theme}
}

// Format writes the text to w, styling every token of the tree. The text
// must be the one the tree was built from.
func (f *TermFormatter) Format(w io.Writer, text string, root *tree.Context) error {
	pos := 0
	for _, t := range root.Tokens() {
		if t.Pos() > pos {
			if _, err := io.WriteString(w, text[pos:t.Pos()]); err != nil {
				return err
			}
		}
		if err := f.writeToken(w, t); err != nil {
			return err
		}
		pos = t.End()
	}
	if pos < len(text) {
		if _, err := io.WriteString(w, text[pos:]); err != nil {
			return err
		}
	}
	return nil
}

func (f *TermFormatter) writeToken(w io.Writer, t *tree.Token) error {
	s, ok := f.theme.Style(t.Action())
	if !ok {
		_, err := io.WriteString(w, t.Text())
		return err
	}
	if _, err := io.WriteString(w, ansiCodes(s)); err != nil {
		return err
	}
	if _, err := io.WriteString(w, t.Text()); err != nil {
		return err
	}
	_, err := io.WriteString(w, ansiReset)
	return err
}

// ansiCodes builds the escape sequence for a style, using 24-bit color.
func ansiCodes(s Style) string {
	out := ""
	if s.Bold {
		out += "\x1b[1m"
	}
	if s.Italic {
		out += "\x1b[3m"
	}
	if s.Underline {
		out += "\x1b[4m"
	}
	if s.HasColor {
		r, g, b := s.Foreground.RGB255()
		out += fmt.Sprintf("\x1b[38;2;%d;%d;%dm", r, g, b)
	}
	return out
}
