/*
Package transform computes cached transformations of a token tree.

For every context, a transform function, looked up by the context's
lexicon name, is called with the context's children, where sub-contexts
have already been replaced by their transformed results. Results are
cached by context identity, so a rebuild that leaves a context untouched
reuses its transformation. Position changes do not invalidate cached
results.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package transform

import (
	"errors"
	"sync"

	"github.com/npillmayer/schuko/tracing"

	"github.com/npillmayer/relex/grammar"
	"github.com/npillmayer/relex/tree"
)

// tracer traces with key 'relex.transform'.
func tracer() tracing.Trace {
	return tracing.Select("relex.transform")
}

// ErrInterrupted is returned by Process when the interrupt hook fired.
var ErrInterrupted = errors.New("transform: interrupted")

// An Item is one element handed to a transform function: either a
// *tree.Token, or a Result wrapping the transformed value of a
// sub-context.
type Item interface{}

// A Result wraps the transformed value of a sub-context.
type Result struct {
	Lexicon *grammar.Lexicon
	Value   interface{}
}

// A Func transforms one context. It receives the context's lexicon and
// its children, sub-contexts already transformed.
type Func func(lexicon *grammar.Lexicon, items []Item) interface{}

// A Transformer evaluates transform functions over a tree and caches the
// results per context. It is driven by the work package: invalidation
// happens on the builder's "invalidate" events, recomputation at the end
// of each batch of edits, before "finished" is emitted.
type Transformer struct {
	mu      sync.Mutex
	funcs   map[string]Func
	cache   map[*tree.Context]interface{}
	evicted map[*tree.Context]bool
}

// New creates an empty Transformer.
func New() *Transformer {
	return &Transformer{
		funcs:   make(map[string]Func),
		cache:   make(map[*tree.Context]interface{}),
		evicted: make(map[*tree.Context]bool),
	}
}

// Add registers fn for contexts of the named lexicon. The name is
// "Language.lexicon", without a derived-lexicon suffix.
func (t *Transformer) Add(lexiconName string, fn Func) {
	t.mu.Lock()
	t.funcs[lexiconName] = fn
	t.mu.Unlock()
}

func lexiconKey(lex *grammar.Lexicon) string {
	return lex.Language().Name() + "." + lex.Name()
}

// InvalidateNode evicts the node and all its ancestors from the cache.
// Connected to the builder's "invalidate" event by the work package.
func (t *Transformer) InvalidateNode(c *tree.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for ; c != nil; c = c.Parent() {
		delete(t.cache, c)
		t.evicted[c] = true
	}
}

// Result returns the cached transformation of the given context, or nil
// if it has not been computed (yet).
func (t *Transformer) Result(c *tree.Context) interface{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cache[c]
}

// Process recomputes missing cache entries bottom-up for the given tree.
// The interrupt hook is polled at context boundaries; when it fires,
// Process stops and returns ErrInterrupted, keeping the entries computed
// so far. Entries for contexts no longer part of the tree are dropped.
func (t *Transformer) Process(root *tree.Context, interrupt func() bool) error {
	fresh := make(map[*tree.Context]interface{})
	if err := t.process(root, fresh, interrupt); err != nil {
		// keep partial results for the next round
		t.mu.Lock()
		for c, v := range fresh {
			t.cache[c] = v
		}
		t.mu.Unlock()
		return err
	}
	t.mu.Lock()
	t.cache = fresh
	t.evicted = make(map[*tree.Context]bool)
	t.mu.Unlock()
	tracer().Debugf("transformed %d contexts", len(fresh))
	return nil
}

func (t *Transformer) process(c *tree.Context, fresh map[*tree.Context]interface{},
	interrupt func() bool) error {
	//
	if interrupt != nil && interrupt() {
		return ErrInterrupted
	}
	t.mu.Lock()
	cached, ok := t.cache[c]
	evicted := t.evicted[c]
	t.mu.Unlock()
	if ok && !evicted {
		fresh[c] = cached
		// an untouched context keeps its sub-results, too
		for _, n := range c.Children() {
			if sub, issub := n.(*tree.Context); issub {
				if err := t.process(sub, fresh, interrupt); err != nil {
					return err
				}
			}
		}
		return nil
	}
	items := make([]Item, 0, c.Len())
	for _, n := range c.Children() {
		switch x := n.(type) {
		case *tree.Token:
			items = append(items, x)
		case *tree.Context:
			if err := t.process(x, fresh, interrupt); err != nil {
				return err
			}
			items = append(items, Result{Lexicon: x.Lexicon(), Value: fresh[x]})
		}
	}
	t.mu.Lock()
	fn := t.funcs[lexiconKey(c.Lexicon())]
	t.mu.Unlock()
	if fn != nil {
		fresh[c] = fn(c.Lexicon(), items)
	} else {
		fresh[c] = nil
	}
	return nil
}
