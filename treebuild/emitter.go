package treebuild

import (
	"sync"

	"github.com/npillmayer/relex/tree"
)

// Event names emitted by builders and workers.
const (
	EventReplace    = "replace"    // the tree is about to change
	EventInvalidate = "invalidate" // carries the deepest changed context
	EventUpdated    = "updated"    // carries the re-tokenized range
	EventFinished   = "finished"   // no more work pending
)

// A BuildEvent is the payload delivered to connected listeners.
type BuildEvent struct {
	Name       string
	Node       *tree.Context // set for "invalidate"
	Start, End int           // set for "updated"
}

// An Emitter dispatches build events to connected listeners. The zero
// value is ready for use. Emission order follows connection order;
// listeners run synchronously on the emitting goroutine.
type Emitter struct {
	mu    sync.Mutex
	slots map[string][]func(BuildEvent)
}

// Connect registers fn for events with the given name.
func (e *Emitter) Connect(name string, fn func(BuildEvent)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.slots == nil {
		e.slots = make(map[string][]func(BuildEvent))
	}
	e.slots[name] = append(e.slots[name], fn)
}

// Emit delivers ev to all listeners connected for ev.Name.
func (e *Emitter) Emit(ev BuildEvent) {
	e.mu.Lock()
	fns := e.slots[ev.Name]
	e.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}
