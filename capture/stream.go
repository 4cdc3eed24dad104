package capture

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
)

// WindowInfo describes one on-screen window.
type WindowInfo struct {
	ID    int64
	Owner string
}

// WindowLister enumerates on-screen windows, front to back.
type WindowLister interface {
	Windows() ([]WindowInfo, error)
}

// minStreamInterval bounds the capture loop when no frame interval is set.
const minStreamInterval = 4 * time.Millisecond

// StreamSource captures continuously on its own goroutine, throttled by the
// request's MinFrameInterval, into a single slot mailbox: a new frame
// overwrites an unconsumed one. Acquire takes the latest frame.
//
// Frames grabbed for a request that was replaced meanwhile are dropped, so
// Acquire never returns an area the scheduler no longer asks for. While
// suspended, the loop does not grab at all.
//
// The view's window and every window in front of it are excluded from the
// capture, if the Grabber supports it: ScreenGrabber does not, see its Grab. The exclusion list is built lazily from the WindowLister and
// rebuilt after InvalidateExclusions.
type StreamSource struct {
	grabber Grabber
	lister  WindowLister

	mu      sync.Mutex
	cond    *sync.Cond
	req     Request
	running bool
	paused  bool
	stop    chan struct{}
	done    chan struct{}

	exclusions      []int64
	exclusionsValid bool

	// Mailbox.
	latest *Frame

	drops, grabs, stale uint64 // Atomic.
}

// NewStreamSource creates a StreamSource. If grabber is nil, ScreenGrabber is
// used. lister may be nil, in which case only the view's own window is
// excluded.
func NewStreamSource(grabber Grabber, lister WindowLister) *StreamSource {
	if grabber == nil {
		grabber = ScreenGrabber{}
	}
	s := &StreamSource{grabber: grabber, lister: lister}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Start implements FrameSource. On a running stream it only replaces the
// request, which takes effect on the next frame.
func (s *StreamSource) Start(req Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if req.WindowID != s.req.WindowID {
		s.exclusionsValid = false
	}
	s.setRequestLocked(req)
	if s.running {
		return nil
	}
	s.running = true
	s.paused = false
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(s.stop, s.done)
	glog.V(1).Infof("Stream capture started: %v, min interval %s", req.Rect, req.MinFrameInterval)
	return nil
}

// Stop implements FrameSource. It waits for the capture goroutine to exit.
func (s *StreamSource) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	done := s.done
	s.latest = nil
	s.cond.Broadcast()
	s.mu.Unlock()
	<-done
}

// CheckPermission implements FrameSource.
func (s *StreamSource) CheckPermission() bool {
	return checkPermission(s.grabber)
}

// InvalidateExclusions implements ExclusionInvalidator.
func (s *StreamSource) InvalidateExclusions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exclusionsValid = false
}

// HandlePointerEvent implements FrameSource: follows the pointer.
func (s *StreamSource) HandlePointerEvent(ev PointerEvent) {
	if ev.Request.Rect.Empty() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setRequestLocked(ev.Request)
}

// setRequestLocked replaces the request. A frame of the previous one still in
// the mailbox is stale: it is dropped.
func (s *StreamSource) setRequestLocked(req Request) {
	if req != s.req {
		s.latest = nil
	}
	s.req = req
}

// Suspend implements Suspender.
func (s *StreamSource) Suspend() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
	s.latest = nil
}

// Resume implements Suspender.
func (s *StreamSource) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
	s.latest = nil
	s.cond.Broadcast()
}

// Acquire implements FrameSource: it waits for the mailbox to be filled.
func (s *StreamSource) Acquire(ctx context.Context, _ Request) (*Frame, error) {
	stopWaking := context.AfterFunc(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.cond.Broadcast()
	})
	defer stopWaking()

	s.mu.Lock()
	defer s.mu.Unlock()
	for s.latest == nil && s.running && ctx.Err() == nil {
		s.cond.Wait()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !s.running {
		return nil, ErrNotStarted
	}
	frame := s.latest
	s.latest = nil
	return frame, nil
}

// Drops returns the number of frames overwritten before being acquired.
func (s *StreamSource) Drops() uint64 { return atomic.LoadUint64(&s.drops) }

// Stale returns the number of frames dropped because the request changed,
// or the stream was suspended or stopped, while they were being grabbed.
func (s *StreamSource) Stale() uint64 { return atomic.LoadUint64(&s.stale) }

// Grabs returns the number of frames captured.
func (s *StreamSource) Grabs() uint64 { return atomic.LoadUint64(&s.grabs) }

// exclusionsLocked returns the windows to leave out: the view's own window and
// everything in front of it.
func (s *StreamSource) exclusionsLocked() []int64 {
	if s.exclusionsValid {
		return s.exclusions
	}
	own := s.req.WindowID
	s.exclusions = []int64{own}
	if s.lister != nil {
		windows, err := s.lister.Windows()
		if err != nil {
			glog.Warningf("Failed to list windows, excluding only our own: %s", err)
		} else {
			var front []int64
			for _, w := range windows {
				front = append(front, w.ID)
				if w.ID == own {
					s.exclusions = front
					break
				}
			}
		}
	}
	s.exclusionsValid = true
	glog.V(2).Infof("Stream capture exclusions: %v", s.exclusions)
	return s.exclusions
}

func (s *StreamSource) run(stop, done chan struct{}) {
	defer close(done)
	for {
		s.mu.Lock()
		for s.paused && !isClosed(stop) {
			s.cond.Wait()
		}
		if isClosed(stop) {
			s.mu.Unlock()
			return
		}
		req := s.req
		exclude := s.exclusionsLocked()
		s.mu.Unlock()

		start := time.Now()
		img, err := s.grabber.Grab(req.Global(), exclude)
		if err != nil {
			glog.V(1).Infof("Stream capture failed: %s", err)
		} else {
			atomic.AddUint64(&s.grabs, 1)
			s.publish(newFrame(img, req.Rect), req, stop)
		}

		wait := req.MinFrameInterval - time.Since(start)
		if wait < minStreamInterval {
			wait = minStreamInterval
		}
		select {
		case <-stop:
			return
		case <-time.After(wait):
		}
	}
}

func isClosed(stop chan struct{}) bool {
	select {
	case <-stop:
		return true
	default:
		return false
	}
}

// publish overwrites the mailbox with frame, grabbed for req. It drops it if
// the stream was stopped, suspended or reconfigured meanwhile.
func (s *StreamSource) publish(frame *Frame, req Request, stop chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if isClosed(stop) || s.paused || req != s.req {
		atomic.AddUint64(&s.stale, 1)
		return
	}
	if s.latest != nil {
		atomic.AddUint64(&s.drops, 1)
	}
	s.latest = frame
	s.cond.Broadcast()
}

var (
	_ FrameSource          = (*StreamSource)(nil)
	_ ExclusionInvalidator = (*StreamSource)(nil)
	_ Suspender            = (*StreamSource)(nil)
)
