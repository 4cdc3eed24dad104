package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/janpfeifer/daltonview/config"
)

// State of a Scheduler.
type State int

const (
	Idle State = iota
	Active
	Suspended
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Suspended:
		return "suspended"
	}
	return "idle"
}

// Stats counts what the Scheduler did since it was created.
type Stats struct {
	Session string

	Ticks      uint64 // Refresh ticks received while active.
	Attempts   uint64 // Capture attempts, scheduled or immediate.
	Busy       uint64 // Attempts skipped: acquisition in flight or capturing disabled.
	Skipped    uint64 // Attempts skipped: invalid window id or empty capture area.
	Dispatched uint64 // Acquisitions started.
	Delivered  uint64 // Frames handed to the sink.
	Discarded  uint64 // Frames dropped on arrival: session stopped or capturing disabled.
	Failures   uint64 // Failed acquisitions.
}

// captureState is shared between the capture, interaction and refresh
// domains, always under Scheduler.mu.
type captureState struct {
	capturingDisabled bool
	isCapturing       bool
	unhideOnNextFrame bool
}

// Option configures a Scheduler.
type Option func(s *Scheduler)

// WithRefreshSpeed sets the initial refresh speed. Default is NormalSpeed.
func WithRefreshSpeed(speed config.RefreshSpeed) Option {
	return func(s *Scheduler) { s.speed = speed }
}

// WithViewArea sets the initial capture area. Default is UnderWindow.
func WithViewArea(area config.ViewArea) Option {
	return func(s *Scheduler) { s.area = area }
}

// Scheduler runs one capture session at a time. All methods are safe for
// concurrent use.
type Scheduler struct {
	src    FrameSource
	sink   FrameSink
	win    Window
	driver RefreshDriver

	// lifecycle serializes Start and Stop, so a new session never starts
	// before the previous one released the source. It is held while calling
	// the source, mu is not.
	lifecycle sync.Mutex

	mu    sync.Mutex
	state State
	cs    captureState
	speed config.RefreshSpeed
	area  config.ViewArea

	// counter of ticks since the last scheduled attempt.
	counter int

	// Suspension reasons.
	moving, occluded bool

	// permissionDenied is set until RetryPermission succeeds.
	permissionDenied, overlayShown bool

	// generation identifies the session: acquisitions started by an older
	// generation are discarded on arrival.
	generation uint64

	// epoch changes whenever the request may have changed, or capturing was
	// suspended: frames acquired in an older epoch are stale.
	epoch uint64

	session     uuid.UUID
	cancel      context.CancelFunc
	ctx         context.Context
	unsubscribe func()

	seq   uint64
	stats Stats
}

// NewScheduler creates an idle Scheduler. It does not own src, sink, win or
// driver, but it starts and stops src and driver with the session.
func NewScheduler(src FrameSource, sink FrameSink, win Window, driver RefreshDriver, opts ...Option) *Scheduler {
	s := &Scheduler{
		src:    src,
		sink:   sink,
		win:    win,
		driver: driver,
		speed:  config.NormalSpeed,
		area:   config.UnderWindow,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins a capture session: Idle -> Active. It returns
// ErrPermissionDenied, after showing the permission overlay, if capturing is
// not allowed.
func (s *Scheduler) Start() error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Idle {
		return ErrAlreadyStarted
	}
	if !s.src.CheckPermission() {
		s.denyPermissionLocked()
		return ErrPermissionDenied
	}
	s.permissionDenied = false
	s.hideOverlayLocked()

	req, ok := s.requestLocked()
	if !ok {
		return fmt.Errorf("nothing to capture in %v: %w", s.win.Geometry().View, ErrNotStarted)
	}
	if err := s.src.Start(req); err != nil {
		if errors.Is(err, ErrPermissionDenied) {
			s.denyPermissionLocked()
		}
		return fmt.Errorf("failed to start frame source: %w", err)
	}

	s.generation++
	s.epoch++
	s.session = uuid.New()
	s.stats.Session = s.session.String()
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.state = Active
	s.cs = captureState{}
	s.counter = 0
	s.moving, s.occluded = false, false
	s.unsubscribe = s.win.Subscribe(s.handleEvent)
	s.driver.Start(s.Tick)
	glog.Infof("Capture session %s started: %v, area=%s, speed=%s", s.session, req.Rect, s.area, s.speed)
	return nil
}

// Stop ends the session: any state -> Idle. Frames still being acquired are
// discarded when they arrive. It is safe to call from any goroutine, any
// number of times.
//
// The state changes at once. Stopping the source, which may wait for a grab
// in progress, happens after releasing the lock.
func (s *Scheduler) Stop() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	s.mu.Lock()
	if s.state == Idle {
		s.mu.Unlock()
		return
	}
	s.generation++
	s.epoch++
	s.cancel()
	s.state = Idle
	s.cs = captureState{}
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	session := s.session
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	s.driver.Stop()
	s.src.Stop()
	glog.Infof("Capture session %s stopped", session)
}

// State returns the current state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Stats returns a snapshot of the counters.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Tick is the refresh driver callback: every FrameSkips ticks (every tick
// at Fast speed) it attempts a capture.
func (s *Scheduler) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Active {
		return
	}
	s.stats.Ticks++
	s.counter++
	if s.counter < s.speed.FrameSkips() {
		return
	}
	s.counter = 0
	s.attemptLocked()
}

// CaptureNow attempts one capture out of the refresh cycle.
func (s *Scheduler) CaptureNow() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Active {
		return
	}
	s.attemptLocked()
}

// attemptLocked dispatches an acquisition, unless one is already in flight or
// capturing is disabled.
func (s *Scheduler) attemptLocked() {
	s.stats.Attempts++
	if s.cs.isCapturing || s.cs.capturingDisabled {
		s.stats.Busy++
		return
	}
	req, ok := s.requestLocked()
	if !ok {
		s.stats.Skipped++
		glog.V(2).Infof("Nothing to capture, skipping")
		return
	}
	if req.WindowID <= 0 {
		s.stats.Skipped++
		glog.V(1).Infof("Window id %d not valid yet, skipping capture", req.WindowID)
		return
	}
	s.cs.isCapturing = true
	s.stats.Dispatched++
	go s.acquire(s.ctx, s.generation, s.epoch, req)
}

func (s *Scheduler) acquire(ctx context.Context, generation, epoch uint64, req Request) {
	start := time.Now()
	frame, err := s.src.Acquire(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	current := generation == s.generation
	if current {
		s.cs.isCapturing = false
	}
	if err != nil {
		if !current || errors.Is(err, context.Canceled) {
			return
		}
		s.stats.Failures++
		if errors.Is(err, ErrPermissionDenied) {
			glog.Errorf("Capture session %s: %s", s.session, err)
			s.denyPermissionLocked()
			return
		}
		glog.V(1).Infof("Capture failed, waiting for the next tick: %s", err)
		return
	}
	if frame == nil {
		return
	}
	if !current || s.cs.capturingDisabled {
		s.stats.Discarded++
		return
	}
	if epoch != s.epoch {
		// Acquired before a suspension or a new request: try again at once,
		// so resuming still shows a fresh frame without waiting a tick.
		s.stats.Discarded++
		glog.V(2).Infof("Stale frame of %v discarded", frame.Rect)
		if s.state == Active {
			s.attemptLocked()
		}
		return
	}
	s.seq++
	frame.Seq = s.seq
	if frame.Time.IsZero() {
		frame.Time = time.Now()
	}
	s.stats.Delivered++
	glog.V(2).Infof("Frame %d captured in %s", frame.Seq, time.Since(start))
	s.sink.SubmitFrame(frame)
	if s.cs.unhideOnNextFrame {
		s.cs.unhideOnNextFrame = false
		s.win.SetSurfaceHidden(false)
	}
}

// requestLocked computes the next capture request from the window geometry.
func (s *Scheduler) requestLocked() (Request, bool) {
	g := s.win.Geometry()
	rect, ok := CaptureArea(s.area, g)
	if !ok {
		return Request{}, false
	}
	return NewRequest(rect, g, s.speed), true
}

// handleEvent is subscribed to the window's interaction events.
func (s *Scheduler) handleEvent(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Idle {
		return
	}
	glog.V(2).Infof("Interaction event %s", e.Kind)
	switch e.Kind {
	case MoveStarted, DragStarted, LiveResizeStarted:
		s.moving = true
	case MoveEnded, DragEnded, LiveResizeEnded:
		s.moving = false
	case OcclusionChanged:
		s.occluded = e.Occluded
	case Moved:
		s.reconfigureLocked()
		if s.state == Active {
			s.attemptLocked()
		}
		return
	case FocusChanged, SpaceChanged, DisplayChanged:
		if inv, ok := s.src.(ExclusionInvalidator); ok {
			inv.InvalidateExclusions()
		}
		if e.Kind == DisplayChanged {
			s.reconfigureLocked()
		}
		return
	}
	if s.moving || s.occluded {
		s.suspendLocked()
	} else {
		s.resumeLocked()
	}
}

// suspendLocked: Active -> Suspended.
func (s *Scheduler) suspendLocked() {
	if s.state != Active {
		return
	}
	s.state = Suspended
	s.epoch++
	s.cs.capturingDisabled = true
	s.driver.Stop()
	if sp, ok := s.src.(Suspender); ok {
		sp.Suspend()
	}
	s.win.SetSurfaceHidden(true)
}

// resumeLocked: Suspended -> Active, with one immediate capture.
func (s *Scheduler) resumeLocked() {
	if s.state != Suspended {
		return
	}
	s.state = Active
	s.counter = 0
	s.driver.Start(s.Tick)
	if sp, ok := s.src.(Suspender); ok {
		sp.Resume()
	}
	if s.permissionDenied {
		return
	}
	s.cs.capturingDisabled = false
	s.cs.unhideOnNextFrame = true
	s.reconfigureLocked()
	s.attemptLocked()
}

// reconfigureLocked restarts the source with a fresh request, for sources
// that capture continuously.
func (s *Scheduler) reconfigureLocked() {
	if s.state == Idle {
		return
	}
	s.epoch++
	req, ok := s.requestLocked()
	if !ok {
		return
	}
	if err := s.src.Start(req); err != nil {
		glog.Errorf("Failed to reconfigure frame source: %s", err)
	}
}

// denyPermissionLocked disables capturing and shows the overlay, once.
func (s *Scheduler) denyPermissionLocked() {
	s.permissionDenied = true
	s.cs.capturingDisabled = true
	if !s.overlayShown {
		s.overlayShown = true
		s.win.SetSurfaceHidden(true)
		s.win.SetPermissionOverlay(true)
	}
}

func (s *Scheduler) hideOverlayLocked() {
	if s.overlayShown {
		s.overlayShown = false
		s.win.SetPermissionOverlay(false)
		s.win.SetSurfaceHidden(false)
	}
}

// RetryPermission is called on explicit user action, e.g. when returning
// from the system settings. It (re)starts capturing if permission is now
// granted.
func (s *Scheduler) RetryPermission() error {
	s.mu.Lock()
	if s.state == Idle {
		s.mu.Unlock()
		return s.Start()
	}
	defer s.mu.Unlock()
	if !s.permissionDenied {
		return nil
	}
	if !s.src.CheckPermission() {
		return ErrPermissionDenied
	}
	s.permissionDenied = false
	s.hideOverlayLocked()
	if s.state == Active {
		s.cs.capturingDisabled = false
		s.cs.unhideOnNextFrame = true
		s.attemptLocked()
	}
	return nil
}

// HandlePointerEvent forwards a pointer move (ev.Position, in window system
// coordinates) to the source, with ev.Request recomputed for the new
// position. Ignored unless following the pointer.
func (s *Scheduler) HandlePointerEvent(ev PointerEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Idle || s.area != config.MousePointer {
		return
	}
	g := s.win.Geometry()
	g.Pointer, g.PointerKnown = ev.Position, true
	rect, ok := CaptureArea(s.area, g)
	if !ok {
		return
	}
	ev.Request = NewRequest(rect, g, s.speed)
	s.src.HandlePointerEvent(ev)
}

// SetRefreshSpeed changes the speed of the running session.
func (s *Scheduler) SetRefreshSpeed(speed config.RefreshSpeed) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if speed == s.speed {
		return
	}
	s.speed = speed
	s.counter = 0
	s.reconfigureLocked()
}

// SetViewArea changes what is captured in the running session.
func (s *Scheduler) SetViewArea(area config.ViewArea) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if area == s.area {
		return
	}
	s.area = area
	s.counter = 0
	s.reconfigureLocked()
}
