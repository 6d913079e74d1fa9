/*
Package work runs a tree builder in the background.

A Worker owns a Builder and serializes edit submissions to it. Update is
non-blocking: it merges the edit into the pending change set and makes
sure a background goroutine is processing. A submission arriving while a
rebuild is in flight interrupts the replay at the next event boundary;
the interrupted edit is coalesced with the new one and the rebuild
restarts against the current full text. An interrupted rebuild leaves
the tree untouched. A completed rebuild splices its new nodes into the
root context in place, between its "replace" and "updated" events; the
root is not copied or swapped, so a reader holding the root context
while a splice runs can observe the tree in mid-change.

An optional Transformer is invalidated on the builder's events and
recomputed after every completed batch, before "finished" is emitted.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package work

import (
	"errors"
	"sync"

	"github.com/npillmayer/schuko/tracing"

	"github.com/npillmayer/relex/grammar"
	"github.com/npillmayer/relex/transform"
	"github.com/npillmayer/relex/tree"
	"github.com/npillmayer/relex/treebuild"
)

// tracer traces with key 'relex.work'.
func tracer() tracing.Trace {
	return tracing.Select("relex.work")
}

// An Edit describes one text change: at Pos, Removed characters were
// replaced by Added characters.
type Edit struct {
	Pos     int
	Removed int
	Added   int
}

// A Worker runs a Builder (and an optional Transformer) off the
// foreground goroutine. Exactly one rebuild runs at a time; each rebuild
// modifies the builder's root context in place.
type Worker struct {
	treebuild.Emitter
	builder     *treebuild.Builder
	transformer *transform.Transformer

	mu        sync.Mutex
	cond      *sync.Cond
	changes   *treebuild.Changes
	textLen   int // length of the most recently submitted text
	busy      bool
	closed    bool
	callbacks []func(*tree.Context)
}

// New creates a Worker for the given builder. The worker installs the
// builder's interrupt hook and forwards its events to the worker's own
// listeners.
func New(builder *treebuild.Builder) *Worker {
	w := &Worker{builder: builder}
	w.cond = sync.NewCond(&w.mu)
	builder.SetInterrupt(w.shouldInterrupt)
	for _, name := range []string{
		treebuild.EventReplace, treebuild.EventInvalidate, treebuild.EventUpdated,
	} {
		builder.Connect(name, w.Emit)
	}
	builder.Connect(treebuild.EventInvalidate, func(ev treebuild.BuildEvent) {
		if t := w.Transformer(); t != nil {
			t.InvalidateNode(ev.Node)
		}
	})
	return w
}

// Builder returns the builder the worker was initialized with.
func (w *Worker) Builder() *treebuild.Builder { return w.builder }

// SetTransformer installs (or, with nil, removes) a transformer. Its
// cache is updated after every completed batch of edits.
func (w *Worker) SetTransformer(t *transform.Transformer) {
	w.mu.Lock()
	w.transformer = t
	w.mu.Unlock()
}

// Transformer returns the current transformer, if set.
func (w *Worker) Transformer() *transform.Transformer {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.transformer
}

// Update submits new text with the edits that produced it. Without
// edits, the whole text is re-tokenized. Update never blocks; edits from
// a single submitter are applied in submission order.
func (w *Worker) Update(text string, edits ...Edit) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.changes == nil {
		w.changes = treebuild.NewChanges()
	}
	if len(edits) == 0 {
		w.changes.ChangeContents(text, 0, w.textLen, len(text))
	}
	for _, e := range edits {
		w.changes.ChangeContents(text, e.Pos, e.Removed, e.Added)
	}
	w.textLen = len(text)
	w.kick()
}

// UpdateRootLexicon submits a root lexicon change, causing a full
// rebuild of the text.
func (w *Worker) UpdateRootLexicon(text string, root *grammar.Lexicon) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.changes == nil {
		w.changes = treebuild.NewChanges()
	}
	w.changes.ChangeRootLexicon(text, root)
	w.textLen = len(text)
	w.kick()
}

// kick starts the background goroutine if none is running. Caller holds
// the lock.
func (w *Worker) kick() {
	if !w.busy {
		w.busy = true
		go w.run()
	}
}

// shouldInterrupt is polled by the builder between events.
func (w *Worker) shouldInterrupt() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed || (w.changes != nil && w.changes.HasChanges())
}

func (w *Worker) run() {
	defer w.recoverBuild()
	w.process()
}

// recoverBuild keeps an unexpected builder failure from deadlocking
// waiters: the previous root stays published, the worker goes idle and
// "finished" is still emitted.
func (w *Worker) recoverBuild() {
	if r := recover(); r != nil {
		tracer().Errorf("build failed: %v", r)
		w.mu.Lock()
		w.busy = false
		w.changes = nil
		cbs := w.callbacks
		w.callbacks = nil
		w.cond.Broadcast()
		w.mu.Unlock()
		for _, cb := range cbs {
			cb(w.builder.Root())
		}
		w.Emit(treebuild.BuildEvent{Name: treebuild.EventFinished})
	}
}

func (w *Worker) process() {
	for {
		w.mu.Lock()
		c := w.changes
		w.changes = nil
		closed := w.closed
		if closed || c == nil || !c.HasChanges() {
			w.finishLocked()
			return
		}
		t := w.transformer
		w.mu.Unlock()

		var err error
		if c.RootLexicon != nil {
			w.builder.Root().SetLexicon(c.RootLexicon)
			err = w.builder.Build(c.Text)
		} else {
			err = w.builder.Rebuild(c.Text, c.Position, c.Removed, c.Added)
		}
		if errors.Is(err, treebuild.ErrInterrupted) {
			w.remerge(c)
			continue
		}
		if err != nil {
			// a grammar error; the previous tree remains published
			tracer().Errorf("rebuild: %v", err)
			w.mu.Lock()
			w.finishLocked()
			return
		}
		if t != nil {
			terr := t.Process(w.builder.Root(), w.shouldInterrupt)
			if errors.Is(terr, transform.ErrInterrupted) {
				continue // pending changes restart the loop
			}
		}
	}
}

// finishLocked transitions to idle, wakes waiters, runs the one-shot
// callbacks and emits "finished". The caller holds the lock; it is
// released here.
func (w *Worker) finishLocked() {
	w.busy = false
	cbs := w.callbacks
	w.callbacks = nil
	w.cond.Broadcast()
	w.mu.Unlock()
	for _, cb := range cbs {
		cb(w.builder.Root())
	}
	w.Emit(treebuild.BuildEvent{Name: treebuild.EventFinished})
}

// remerge puts an interrupted change back in front of the newly arrived
// ones, so the next rebuild covers both.
func (w *Worker) remerge(c *treebuild.Changes) {
	w.mu.Lock()
	defer w.mu.Unlock()
	pending := w.changes
	w.changes = c
	if pending == nil {
		return
	}
	if pending.RootLexicon != nil {
		c.ChangeRootLexicon(pending.Text, pending.RootLexicon)
	}
	if pending.Position != -1 {
		c.ChangeContents(pending.Text, pending.Position, pending.Removed, pending.Added)
	}
}

// GetRoot returns the root context. If block is set, the call waits for
// all pending work to finish; otherwise the currently published root is
// returned immediately (it may be stale while a rebuild is in flight).
// A non-nil callback is invoked once after the next "finished" event (or
// immediately, when the worker is idle).
func (w *Worker) GetRoot(block bool, callback func(*tree.Context)) *tree.Context {
	w.mu.Lock()
	if !w.busy {
		w.mu.Unlock()
		if callback != nil {
			callback(w.builder.Root())
		}
		return w.builder.Root()
	}
	if callback != nil {
		w.callbacks = append(w.callbacks, callback)
	}
	if !block {
		w.mu.Unlock()
		return w.builder.Root()
	}
	for w.busy {
		w.cond.Wait()
	}
	w.mu.Unlock()
	return w.builder.Root()
}

// Wait blocks until the worker is idle.
func (w *Worker) Wait() {
	w.mu.Lock()
	for w.busy {
		w.cond.Wait()
	}
	w.mu.Unlock()
}

// Close interrupts any in-flight rebuild at the next event boundary and
// waits for the worker to go idle. Further submissions are ignored.
func (w *Worker) Close() {
	w.mu.Lock()
	w.closed = true
	for w.busy {
		w.cond.Wait()
	}
	w.mu.Unlock()
}
