package work_test

import (
	"sync"
	"testing"
	"time"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/npillmayer/relex/lang"
	"github.com/npillmayer/relex/tree"
	"github.com/npillmayer/relex/treebuild"
	"github.com/npillmayer/relex/work"
)

func TestUpdateAndGetRoot(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.work")
	defer teardown()
	//
	w := work.New(treebuild.New(lang.NonsenseRoot()))
	defer w.Close()
	w.Update("Some text with 3 numbers")
	root := w.GetRoot(true, nil)
	if root == nil {
		t.Fatal("expected a root context")
	}
	if n := len(root.Tokens()); n != 5 {
		t.Errorf("expected 5 tokens, got %d", n)
	}
}

func TestGetRootCallback(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.work")
	defer teardown()
	//
	w := work.New(treebuild.New(lang.NonsenseRoot()))
	defer w.Close()
	w.Update("hello")
	done := make(chan *tree.Context, 1)
	w.GetRoot(false, func(root *tree.Context) { done <- root })
	select {
	case root := <-done:
		if root.FirstToken() == nil {
			t.Errorf("callback should see the completed tree")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("callback was never called")
	}
}

func TestIncrementalUpdates(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.work")
	defer teardown()
	//
	w := work.New(treebuild.New(lang.NonsenseRoot()))
	defer w.Close()
	text := `an "unfinished string`
	w.Update(text)
	w.Wait()
	if n := len(w.Builder().OpenLexicons()); n != 1 {
		t.Fatalf("expected one open lexicon, got %d", n)
	}
	text += `"`
	w.Update(text, work.Edit{Pos: 21, Removed: 0, Added: 1})
	root := w.GetRoot(true, nil)
	if n := len(w.Builder().OpenLexicons()); n != 0 {
		t.Errorf("expected the string to be closed, %d lexicons open", n)
	}
	if last := root.LastToken(); last.Text() != `"` || last.Pos() != 21 {
		t.Errorf("expected the closing quote at 21, got %v", last)
	}
}

func TestEditCoalescing(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.work")
	defer teardown()
	//
	w := work.New(treebuild.New(lang.NonsenseRoot()))
	defer w.Close()
	// submit a burst of edits without waiting in between
	text := "word"
	w.Update(text)
	for i := 0; i < 20; i++ {
		text += " word"
		w.Update(text, work.Edit{Pos: len(text) - 5, Removed: 0, Added: 5})
	}
	root := w.GetRoot(true, nil)
	if n := len(root.Tokens()); n != 21 {
		t.Errorf("expected 21 tokens after coalesced edits, got %d", n)
	}
	// the final tree equals a fresh full build
	fresh := treebuild.New(lang.NonsenseRoot())
	if err := fresh.Build(text); err != nil {
		t.Fatal(err)
	}
	if !root.Equal(fresh.Root()) {
		t.Errorf("coalesced rebuilds must converge to the full build")
	}
}

func TestEventOrder(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.work")
	defer teardown()
	//
	w := work.New(treebuild.New(lang.NonsenseRoot()))
	defer w.Close()
	var mu sync.Mutex
	var names []string
	for _, name := range []string{
		treebuild.EventReplace, treebuild.EventInvalidate,
		treebuild.EventUpdated, treebuild.EventFinished,
	} {
		w.Connect(name, func(ev treebuild.BuildEvent) {
			mu.Lock()
			names = append(names, ev.Name)
			mu.Unlock()
		})
	}
	finished := make(chan struct{}, 1)
	w.Connect(treebuild.EventFinished, func(ev treebuild.BuildEvent) {
		finished <- struct{}{}
	})
	w.Update("some text")
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("never finished")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(names) < 4 {
		t.Fatalf("expected at least 4 events, got %v", names)
	}
	if names[len(names)-1] != "finished" {
		t.Errorf("expected 'finished' last, got %v", names)
	}
	idx := map[string]int{}
	for i, n := range names {
		if _, seen := idx[n]; !seen {
			idx[n] = i
		}
	}
	if !(idx["replace"] < idx["invalidate"] && idx["invalidate"] < idx["updated"] &&
		idx["updated"] < idx["finished"]) {
		t.Errorf("events out of order: %v", names)
	}
}

func TestUpdateRootLexicon(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.work")
	defer teardown()
	//
	w := work.New(treebuild.New(lang.NonsenseRoot()))
	defer w.Close()
	w.Update("true")
	w.Wait()
	w.UpdateRootLexicon("true", lang.JsonRoot())
	root := w.GetRoot(true, nil)
	if root.Lexicon() != lang.JsonRoot() {
		t.Errorf("expected the root lexicon to change")
	}
	if tok := root.FirstToken(); tok == nil || tok.Text() != "true" {
		t.Fatalf("expected 'true' token, got %v", tok)
	}
}

func TestCloseInterrupts(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.work")
	defer teardown()
	//
	w := work.New(treebuild.New(lang.NonsenseRoot()))
	// a largish text so the build takes a moment
	text := ""
	for i := 0; i < 5000; i++ {
		text += "word "
	}
	w.Update(text)
	w.Close()
	// after Close the worker must be idle and ignore submissions
	w.Update("more")
	if w.GetRoot(true, nil) == nil {
		t.Errorf("root must stay accessible after Close")
	}
}
