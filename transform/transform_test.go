package transform_test

import (
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/npillmayer/relex/grammar"
	"github.com/npillmayer/relex/lang"
	"github.com/npillmayer/relex/transform"
	"github.com/npillmayer/relex/tree"
	"github.com/npillmayer/relex/treebuild"
	"github.com/npillmayer/relex/work"
)

func TestJsonDecode(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.transform")
	defer teardown()
	//
	v, err := lang.DecodeJson(`{"a": [1, 2.5, "x\n"], "b": {"c": true}, "d": null}`)
	if err != nil {
		t.Fatal(err)
	}
	obj, ok := v.(map[string]interface{})
	if !ok {
		t.Fatalf("expected an object, got %T", v)
	}
	arr, ok := obj["a"].([]interface{})
	if !ok || len(arr) != 3 {
		t.Fatalf("expected a 3-element array for 'a', got %v", obj["a"])
	}
	if arr[0] != 1 || arr[1] != 2.5 || arr[2] != "x\n" {
		t.Errorf("unexpected array values: %v", arr)
	}
	sub, ok := obj["b"].(map[string]interface{})
	if !ok || sub["c"] != true {
		t.Errorf("expected nested object with c=true, got %v", obj["b"])
	}
	if d, present := obj["d"]; !present || d != nil {
		t.Errorf("expected d=null, got %v", d)
	}
}

func TestCacheReuseAcrossRebuild(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.transform")
	defer teardown()
	//
	// enough words after the string that the rebuild restart point stays
	// right of the string context
	text := `"keepme" ` + strings.Repeat("word ", 25) + "tail"
	builder := treebuild.New(lang.NonsenseRoot())
	tr := transform.New()
	stringCount := 0
	tr.Add("Nonsense.string", func(lex *grammar.Lexicon, items []transform.Item) interface{} {
		stringCount++
		var b strings.Builder
		for _, it := range items {
			if tok, ok := it.(*tree.Token); ok {
				b.WriteString(tok.Text())
			}
		}
		return b.String()
	})
	w := work.New(builder)
	defer w.Close()
	w.SetTransformer(tr)
	w.Update(text)
	w.Wait()
	if stringCount != 1 {
		t.Fatalf("expected one string transformation, got %d", stringCount)
	}
	// edit at the very end; the string context keeps its identity
	text = text[:len(text)-4] + "tails"
	w.Update(text, work.Edit{Pos: len(text) - 5, Removed: 4, Added: 5})
	w.Wait()
	if stringCount != 1 {
		t.Errorf("the cached string transform should be reused, computed %d times", stringCount)
	}
	root := w.GetRoot(true, nil)
	var sub *tree.Context
	for _, n := range root.Children() {
		if c, ok := n.(*tree.Context); ok {
			sub = c
			break
		}
	}
	if sub == nil {
		t.Fatal("expected the string context")
	}
	if v := tr.Result(sub); v != `keepme"` {
		t.Errorf("unexpected cached string value %q", v)
	}
}

func TestInvalidateEvictsAncestors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.transform")
	defer teardown()
	//
	builder := treebuild.New(lang.NonsenseRoot())
	root, err := builder.Tree(`"s" x`)
	if err != nil {
		t.Fatal(err)
	}
	tr := transform.New()
	rootCount := 0
	tr.Add("Nonsense.root", func(lex *grammar.Lexicon, items []transform.Item) interface{} {
		rootCount++
		return len(items)
	})
	if err := tr.Process(root, nil); err != nil {
		t.Fatal(err)
	}
	if rootCount != 1 {
		t.Fatalf("expected one root transformation, got %d", rootCount)
	}
	// without invalidation, a second pass is fully cached
	if err := tr.Process(root, nil); err != nil {
		t.Fatal(err)
	}
	if rootCount != 1 {
		t.Errorf("expected the cached root value to be reused")
	}
	var sub *tree.Context
	for _, n := range root.Children() {
		if c, ok := n.(*tree.Context); ok {
			sub = c
			break
		}
	}
	tr.InvalidateNode(sub)
	if err := tr.Process(root, nil); err != nil {
		t.Fatal(err)
	}
	if rootCount != 2 {
		t.Errorf("invalidation must evict the ancestors, root computed %d times", rootCount)
	}
}
