package capture

import (
	"sync"
	"time"
)

// RefreshDriver calls onTick once per display refresh while started.
type RefreshDriver interface {
	Start(onTick func())
	// Stop must not wait for a tick in progress.
	Stop()
}

// DefaultRefreshRate is used when the display refresh rate is unknown.
const DefaultRefreshRate = 60

// Ticker is a RefreshDriver backed by a time.Ticker, for platforms without a
// display link.
type Ticker struct {
	period time.Duration

	mu   sync.Mutex
	stop chan struct{}
}

// NewTicker creates a driver ticking hz times per second.
func NewTicker(hz int) *Ticker {
	if hz <= 0 {
		hz = DefaultRefreshRate
	}
	return &Ticker{period: time.Second / time.Duration(hz)}
}

// Start implements RefreshDriver. Starting a started Ticker is a no-op.
func (t *Ticker) Start(onTick func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		return
	}
	stop := make(chan struct{})
	t.stop = stop
	go func() {
		ticker := time.NewTicker(t.period)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				onTick()
			}
		}
	}()
}

// Stop implements RefreshDriver.
func (t *Ticker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}
