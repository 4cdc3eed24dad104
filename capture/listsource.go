package capture

import (
	"context"
	"sync"
)

// ListSource grabs one screenshot per Acquire call, of the content below the
// view's window. The view's window id is passed to the Grabber as the window
// to exclude. ScreenGrabber ignores it, so with it the view must be kept out
// of the captured area.
type ListSource struct {
	grabber Grabber

	mu      sync.Mutex
	started bool
}

// NewListSource creates a ListSource. If grabber is nil, ScreenGrabber is used.
func NewListSource(grabber Grabber) *ListSource {
	if grabber == nil {
		grabber = ScreenGrabber{}
	}
	return &ListSource{grabber: grabber}
}

// Start implements FrameSource.
func (s *ListSource) Start(req Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = true
	return nil
}

// Stop implements FrameSource.
func (s *ListSource) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = false
}

// CheckPermission implements FrameSource.
func (s *ListSource) CheckPermission() bool {
	return checkPermission(s.grabber)
}

// Acquire implements FrameSource.
func (s *ListSource) Acquire(ctx context.Context, req Request) (*Frame, error) {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return nil, ErrNotStarted
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := s.grabber.Grab(req.Global(), []int64{req.WindowID})
	if err != nil {
		return nil, err
	}
	return newFrame(img, req.Rect), nil
}

// HandlePointerEvent implements FrameSource. Every Acquire gets a fresh
// request, so there is nothing to do.
func (s *ListSource) HandlePointerEvent(PointerEvent) {}

var _ FrameSource = (*ListSource)(nil)
