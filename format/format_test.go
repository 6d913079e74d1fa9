package format_test

import (
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/npillmayer/relex"
	"github.com/npillmayer/relex/format"
	"github.com/npillmayer/relex/lang"
	"github.com/npillmayer/relex/treebuild"
)

func TestLoadTheme(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.format")
	defer teardown()
	//
	th, err := format.LoadTheme(`{"styles": {
		"Comment":        {"color": "#616e87", "italic": true},
		"Literal.Number": {"color": "#b48ead", "bold": true}
	}}`)
	if err != nil {
		t.Fatal(err)
	}
	s, ok := th.Style(relex.Number)
	if !ok || !s.Bold || !s.HasColor {
		t.Errorf("expected a bold colored style for Number, got %+v", s)
	}
	// hierarchy walk: Keyword has no style of its own, and no styled ancestor here
	if _, ok := th.Style(relex.Keyword); ok {
		t.Errorf("expected no style for Keyword")
	}
	if _, err := format.LoadTheme("{nope"); err == nil {
		t.Errorf("invalid JSON should be rejected")
	}
	if _, err := format.LoadTheme(`{"styles": {"X": {"color": "notacolor"}}}`); err == nil {
		t.Errorf("invalid colors should be rejected")
	}
}

func TestStyleHierarchy(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.format")
	defer teardown()
	//
	th := format.DefaultTheme()
	base, ok1 := th.Style(relex.Literal)
	derived, ok2 := th.Style(relex.String) // falls back to Literal
	if !ok1 || !ok2 {
		t.Fatal("expected styles for Literal and String")
	}
	if base.Foreground != derived.Foreground {
		t.Errorf("String should inherit Literal's color")
	}
	num, _ := th.Style(relex.Number)
	if num.Foreground == base.Foreground {
		t.Errorf("Number has its own style and should not inherit")
	}
}

func TestTermFormatter(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.format")
	defer teardown()
	//
	text := "count 42"
	b := treebuild.New(lang.NonsenseRoot())
	root, err := b.Tree(text)
	if err != nil {
		t.Fatal(err)
	}
	var sb strings.Builder
	if err := format.NewTermFormatter(nil).Format(&sb, text, root); err != nil {
		t.Fatal(err)
	}
	out := sb.String()
	if !strings.Contains(out, "42") || !strings.Contains(out, "count") {
		t.Errorf("output must contain the input text, got %q", out)
	}
	if !strings.Contains(out, "\x1b[38;2;") {
		t.Errorf("expected ANSI color sequences in %q", out)
	}
	if !strings.Contains(out, " ") {
		t.Errorf("un-lexed gaps must be preserved")
	}
}
