// Package chain holds the ordered filter chain that turns captured frames into
// the simulated image.
//
// Reconfiguration is asynchronous: SetConfiguration only queues the new
// configuration, and a private goroutine rebuilds the stages. Requests that
// arrive while a rebuild is pending are coalesced, only the latest one is
// realized. Apply and rebuilds are serialized, so a frame is always filtered
// by a consistent set of stages.
package chain

import (
	"image"
	"sync"

	"github.com/golang/glog"

	"github.com/janpfeifer/daltonview/config"
	"github.com/janpfeifer/daltonview/filters"
)

// Chain is safe for concurrent use.
type Chain struct {
	// mu guards the stages and the configuration they realize.
	mu      sync.Mutex
	stages  stageSet
	applied config.Filter

	// pendingMu guards the queue below; cond signals both new requests and
	// finished rebuilds.
	pendingMu sync.Mutex
	cond      *sync.Cond
	pending   *config.Filter
	requested uint64 // Number of SetConfiguration calls.
	done      uint64 // Value of requested covered by the last finished rebuild.
	closed    bool

	finished chan struct{}
}

// New creates a chain realizing initial, and starts its rebuild goroutine.
// Invalid configurations are replaced by config.Default().
func New(initial config.Filter) *Chain {
	if err := initial.Validate(); err != nil {
		glog.Errorf("Invalid initial filter configuration, using defaults: %+v", err)
		initial = config.Default()
	}
	c := &Chain{
		applied:  initial,
		finished: make(chan struct{}),
	}
	c.cond = sync.NewCond(&c.pendingMu)
	c.stages.update(config.Default(), initial, true)
	go c.rebuildLoop()
	return c
}

// SetConfiguration queues f to be realized. It never blocks on a rebuild.
// Invalid configurations are logged and ignored.
func (c *Chain) SetConfiguration(f config.Filter) {
	if err := f.Validate(); err != nil {
		glog.Errorf("Ignoring invalid filter configuration: %+v", err)
		return
	}
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	if c.closed {
		return
	}
	c.pending = &f
	c.requested++
	c.cond.Broadcast()
}

// Flush blocks until every configuration queued before the call has been
// realized (or superseded by a later one).
func (c *Chain) Flush() {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	target := c.requested
	for c.done < target && !c.closed {
		c.cond.Wait()
	}
}

// Close stops the rebuild goroutine. Pending configurations are dropped, and
// Apply keeps using the last realized stages.
func (c *Chain) Close() {
	c.pendingMu.Lock()
	if c.closed {
		c.pendingMu.Unlock()
		return
	}
	c.closed = true
	c.cond.Broadcast()
	c.pendingMu.Unlock()
	<-c.finished
}

func (c *Chain) rebuildLoop() {
	defer close(c.finished)
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	for {
		for c.pending == nil && !c.closed {
			c.cond.Wait()
		}
		if c.closed {
			return
		}
		next, covered := *c.pending, c.requested
		c.pending = nil

		c.pendingMu.Unlock()
		c.rebuild(next)
		c.pendingMu.Lock()

		c.done = covered
		c.cond.Broadcast()
	}
}

func (c *Chain) rebuild(next config.Filter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if next == c.applied {
		return
	}
	glog.V(1).Infof("Filter chain: %q -> %q", c.applied.Description(), next.Description())
	c.stages.update(c.applied, next, false)
	c.applied = next
}

// Apply filters img with the current stages. If the configuration is the
// unaltered identity, img itself is returned.
func (c *Chain) Apply(img image.Image) image.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.applied.IsUnalteredIdentity() {
		return img
	}
	out := img
	for _, st := range c.stages.byKind {
		if st != nil {
			out = st.Filter.Apply(out)
		}
	}
	if out == img {
		return img
	}
	// Evaluate lazy stages while the stage lock is still held.
	return filters.Materialize(out)
}

// Stages returns the active stages in apply order.
func (c *Chain) Stages() []Stage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stages.active()
}

// Configuration returns the configuration currently realized by the stages.
func (c *Chain) Configuration() config.Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applied
}
