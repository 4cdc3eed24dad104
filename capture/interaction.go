package capture

import (
	"fmt"
	"sort"
	"sync"
)

// EventKind enumerates the interaction signals of the windowing collaborator.
type EventKind int

const (
	MoveStarted EventKind = iota
	MoveEnded
	DragStarted
	DragEnded
	LiveResizeStarted
	LiveResizeEnded
	// Moved is sent once the window settled in a new position.
	Moved
	// OcclusionChanged carries Event.Occluded.
	OcclusionChanged
	FocusChanged
	SpaceChanged
	DisplayChanged
)

var eventNames = [...]string{
	"move_started", "move_ended", "drag_started", "drag_ended",
	"live_resize_started", "live_resize_ended", "moved", "occlusion_changed",
	"focus_changed", "space_changed", "display_changed",
}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventNames) {
		return fmt.Sprintf("event(%d)", int(k))
	}
	return eventNames[k]
}

// Event is one interaction signal.
type Event struct {
	Kind     EventKind
	Occluded bool
}

// Registry is a subscription list of event handlers. Handlers are called
// synchronously, in subscription order, on the goroutine calling Publish.
type Registry struct {
	mu       sync.Mutex
	next     int
	handlers map[int]func(Event)
}

// Subscribe adds fn. The returned function removes it, and may be called more
// than once.
func (r *Registry) Subscribe(fn func(Event)) (unsubscribe func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.handlers == nil {
		r.handlers = make(map[int]func(Event))
	}
	id := r.next
	r.next++
	r.handlers[id] = fn
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.handlers, id)
	}
}

// Publish calls every handler with e. Handlers may subscribe or unsubscribe.
func (r *Registry) Publish(e Event) {
	r.mu.Lock()
	ids := make([]int, 0, len(r.handlers))
	for id := range r.handlers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, r.handlers[id])
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}

// Len returns the number of subscribed handlers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handlers)
}
