package lang_test

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/npillmayer/relex"
	"github.com/npillmayer/relex/grammar"
	"github.com/npillmayer/relex/lang"
	"github.com/npillmayer/relex/tree"
	"github.com/npillmayer/relex/treebuild"
)

func TestGrammarsValidate(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.grammar")
	defer teardown()
	//
	if err := grammar.Validate(lang.NonsenseRoot()); err != nil {
		t.Errorf("Nonsense grammar should validate: %v", err)
	}
	if err := grammar.Validate(lang.JsonRoot()); err != nil {
		t.Errorf("Json grammar should validate: %v", err)
	}
}

func TestNonsenseComment(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.build")
	defer teardown()
	//
	text := "text % a comment\nmore"
	b := treebuild.New(lang.NonsenseRoot())
	root, err := b.Tree(text)
	if err != nil {
		t.Fatal(err)
	}
	var sub *tree.Context
	for _, n := range root.Children() {
		if c, ok := n.(*tree.Context); ok {
			sub = c
			break
		}
	}
	if sub == nil || sub.Lexicon() != lang.NonsenseLang().Lexicon("comment") {
		t.Fatal("expected a comment context")
	}
	if sub.End() != 16 {
		t.Errorf("the comment should end at the newline, ends at %d", sub.End())
	}
	if last := root.LastToken(); last.Text() != "more" || last.Parent() != root {
		t.Errorf("lexing should continue in root after the comment, got %v", last)
	}
}

func TestJsonTree(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.build")
	defer teardown()
	//
	b := treebuild.New(lang.JsonRoot())
	root, err := b.Tree(`{"k": [true]}`)
	if err != nil {
		t.Fatal(err)
	}
	if len(b.OpenLexicons()) != 0 {
		t.Errorf("expected balanced JSON to close all lexicons, got %v", b.OpenLexicons())
	}
	obj, ok := root.Child(1).(*tree.Context)
	if !ok || obj.Lexicon().Name() != "object" {
		t.Fatalf("expected an object context, got %v", root.Child(1))
	}
	// alternating key and value contexts inside the object
	var names []string
	for _, n := range obj.Children() {
		if c, isCtx := n.(*tree.Context); isCtx {
			names = append(names, c.Lexicon().Name())
		}
	}
	if len(names) != 2 || names[0] != "key" || names[1] != "value" {
		t.Errorf("expected [key value] contexts, got %v", names)
	}
}

func TestJsonStringEscapes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.build")
	defer teardown()
	//
	b := treebuild.New(lang.JsonRoot())
	root, err := b.Tree(`"a\nb\u0041"`)
	if err != nil {
		t.Fatal(err)
	}
	var escapes int
	for _, tok := range root.Tokens() {
		if tok.Action() == relex.Escape {
			escapes++
		}
	}
	if escapes != 2 {
		t.Errorf("expected 2 escape tokens, got %d", escapes)
	}
	v, err := lang.DecodeJson(`"a\nb\u0041"`)
	if err != nil {
		t.Fatal(err)
	}
	if v != "a\nbA" {
		t.Errorf("expected decoded string 'a\\nbA', got %q", v)
	}
}
