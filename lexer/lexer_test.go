package lexer_test

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/npillmayer/relex"
	"github.com/npillmayer/relex/grammar"
	"github.com/npillmayer/relex/lang"
	"github.com/npillmayer/relex/lexer"
)

// collect drains the lexer into a slice of events.
func collect(t *testing.T, lx *lexer.Lexer) []lexer.Event {
	var events []lexer.Event
	for {
		ev, ok := lx.Next()
		if !ok {
			break
		}
		events = append(events, ev)
	}
	if err := lx.Err(); err != nil {
		t.Fatal(err)
	}
	return events
}

// lexemes flattens the events' lexemes.
func lexemes(events []lexer.Event) []lexer.Lexeme {
	var out []lexer.Lexeme
	for _, ev := range events {
		out = append(out, ev.Lexemes...)
	}
	return out
}

func checkLexemes(t *testing.T, got []lexer.Lexeme, want []lexer.Lexeme) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d lexemes, got %d: %v", len(want), len(got), got)
	}
	for i, w := range want {
		g := got[i]
		if g.Pos != w.Pos || g.Text != w.Text || g.Action != w.Action {
			t.Errorf("lexeme #%d: expected %v, got %v", i, w, g)
		}
	}
}

func TestNonsenseText(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.lexer")
	defer teardown()
	//
	lx := lexer.New(lang.NonsenseRoot(), "Some text with 3 numbers")
	got := lexemes(collect(t, lx))
	checkLexemes(t, got, []lexer.Lexeme{
		{0, "Some", relex.Text},
		{5, "text", relex.Text},
		{10, "with", relex.Text},
		{15, "3", relex.Number},
		{17, "numbers", relex.Text},
	})
	if lx.Depth() != 1 {
		t.Errorf("expected to end in the root lexicon, depth is %d", lx.Depth())
	}
}

func TestNonsenseString(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.lexer")
	defer teardown()
	//
	lx := lexer.New(lang.NonsenseRoot(), `"a string"`)
	events := collect(t, lx)
	got := lexemes(events)
	checkLexemes(t, got, []lexer.Lexeme{
		{0, `"`, relex.String},
		{1, "a string", relex.String},
		{9, `"`, relex.String},
	})
	// the first event must push the string lexicon
	if events[0].Target == nil || len(events[0].Target.Push) != 1 ||
		events[0].Target.Push[0] != lang.NonsenseLang().Lexicon("string") {
		t.Errorf("expected the opening quote to push Nonsense.string, got %v", events[0].Target)
	}
	// the last event pops it again
	last := events[len(events)-1]
	if last.Target == nil || last.Target.Pop != -1 {
		t.Errorf("expected the closing quote to pop, got %v", last.Target)
	}
}

func TestUnfinishedString(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.lexer")
	defer teardown()
	//
	lx := lexer.New(lang.NonsenseRoot(), `an "unfinished string`)
	got := lexemes(collect(t, lx))
	checkLexemes(t, got, []lexer.Lexeme{
		{0, "an", relex.Text},
		{3, `"`, relex.String},
		{4, "unfinished string", relex.String},
	})
	if lx.Depth() != 2 {
		t.Errorf("expected the string lexicon to remain open, depth is %d", lx.Depth())
	}
}

func TestSkipAction(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.lexer")
	defer teardown()
	//
	g := grammar.NewLanguage("Skippy")
	g.Define("root", func(l *grammar.Language) []grammar.Rule {
		return []grammar.Rule{
			grammar.NewRule(`\s+`, relex.Skip),
			grammar.NewRule(`\w+`, relex.Text),
		}
	})
	lx := lexer.New(g.Lexicon("root"), "a b")
	got := lexemes(collect(t, lx))
	checkLexemes(t, got, []lexer.Lexeme{
		{0, "a", relex.Text},
		{2, "b", relex.Text},
	})
}

func TestDefaultTargetPopsOnUnknownText(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.lexer")
	defer teardown()
	//
	g := grammar.NewLanguage("Numbers")
	g.Define("root", func(l *grammar.Language) []grammar.Rule {
		return []grammar.Rule{
			grammar.NewRule(`numbers:`, relex.Keyword, l.Lexicon("numbers")),
			grammar.NewRule(`\d+`, relex.Number),
			grammar.NewRule(`\w+`, relex.Text),
		}
	})
	g.Define("numbers", func(l *grammar.Language) []grammar.Rule {
		return []grammar.Rule{
			grammar.NewRule(`\d+`, relex.Number),
			grammar.NewRule(`\s+`, relex.Skip),
			grammar.DefaultTarget(-1),
		}
	})
	lx := lexer.New(g.Lexicon("root"), "numbers: 1 2 3 x 4")
	got := lexemes(collect(t, lx))
	checkLexemes(t, got, []lexer.Lexeme{
		{0, "numbers:", relex.Keyword},
		{9, "1", relex.Number},
		{11, "2", relex.Number},
		{13, "3", relex.Number},
		{15, "x", relex.Text},
		{17, "4", relex.Number},
	})
	if lx.Depth() != 1 {
		t.Errorf("expected to end in the root lexicon, depth is %d", lx.Depth())
	}
}

func TestCircularDefaultTargetTerminates(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.lexer")
	defer teardown()
	//
	// 'a' falls through to 'b', 'b' pops back: a cycle that never advances
	g := grammar.NewLanguage("Loop")
	g.Define("a", func(l *grammar.Language) []grammar.Rule {
		return []grammar.Rule{
			grammar.NewRule(`\d`, relex.Number),
			grammar.DefaultTarget(l.Lexicon("b")),
		}
	})
	g.Define("b", func(l *grammar.Language) []grammar.Rule {
		return []grammar.Rule{
			grammar.DefaultTarget(-1),
		}
	})
	lx := lexer.New(g.Lexicon("a"), "xx1")
	got := lexemes(collect(t, lx))
	checkLexemes(t, got, []lexer.Lexeme{
		{2, "1", relex.Number},
	})
}

func TestByGroup(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.lexer")
	defer teardown()
	//
	g := grammar.NewLanguage("Hex")
	g.Define("root", func(l *grammar.Language) []grammar.Rule {
		return []grammar.Rule{
			grammar.NewRule(`(0x)([0-9a-f]+)`,
				grammar.ByGroup(relex.Number.Derive("Prefix"), relex.Number)),
		}
	})
	lx := lexer.New(g.Lexicon("root"), "0xdead")
	events := collect(t, lx)
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	got := events[0].Lexemes
	if len(got) != 2 {
		t.Fatalf("expected two lexemes from one match, got %d", len(got))
	}
	if got[0].Text != "0x" || got[0].Pos != 0 {
		t.Errorf("expected prefix lexeme '0x'@0, got %v", got[0])
	}
	if got[1].Text != "dead" || got[1].Pos != 2 || got[1].Action != relex.Number {
		t.Errorf("expected number lexeme 'dead'@2, got %v", got[1])
	}
}

func TestConsumeFlagOnPushedLexicon(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.lexer")
	defer teardown()
	//
	g := grammar.NewLanguage("C")
	g.Define("root", func(l *grammar.Language) []grammar.Rule {
		return []grammar.Rule{
			grammar.NewRule(`<`, relex.Bracket, l.Lexicon("tag")),
		}
	})
	g.Define("tag", func(l *grammar.Language) []grammar.Rule {
		return []grammar.Rule{
			grammar.NewRule(`>`, relex.Bracket, -1),
			grammar.NewRule(`\w+`, relex.NameTag),
		}
	}, grammar.Consume())
	lx := lexer.New(g.Lexicon("root"), "<em>")
	events := collect(t, lx)
	if len(events) == 0 || events[0].Target == nil || len(events[0].Target.Push) != 1 {
		t.Fatal("expected a push event")
	}
	if !events[0].Target.Push[0].Consume() {
		t.Errorf("pushed lexicon should carry the consume flag")
	}
}
