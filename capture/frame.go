// Package capture schedules the acquisition of frames from a FrameSource and
// hands them over to a FrameSink.
//
// The Scheduler is driven by a RefreshDriver (one tick per display refresh),
// keeps at most one acquisition in flight, and suspends capturing while the
// window is being moved, resized or is occluded.
package capture

import (
	"context"
	"errors"
	"image"
	"time"
)

var (
	// ErrPermissionDenied is returned when the platform refuses screen (or
	// camera) capture. It is never retried automatically.
	ErrPermissionDenied = errors.New("capture permission denied")

	// ErrAcquisition wraps transient failures to acquire one frame.
	ErrAcquisition = errors.New("frame acquisition failed")

	// ErrNotStarted is returned by sources used before Start.
	ErrNotStarted = errors.New("capture not started")

	// ErrAlreadyStarted is returned by Scheduler.Start on a running session.
	ErrAlreadyStarted = errors.New("capture already started")
)

// Frame is one captured image.
type Frame struct {
	Image image.Image

	// Rect is the captured area, in source coordinates.
	Rect image.Rectangle

	// Seq is assigned by the Scheduler on delivery, starting at 1.
	Seq  uint64
	Time time.Time
}

func newFrame(img image.Image, rect image.Rectangle) *Frame {
	return &Frame{Image: img, Rect: rect, Time: time.Now()}
}

// Request describes what a source should capture.
type Request struct {
	// Rect is relative to Display, with the origin at its top-left corner.
	Rect image.Rectangle

	// Display bounds, in global top-left origin coordinates.
	Display image.Rectangle

	// WindowID of the view, excluded from the capture where supported.
	WindowID int64

	// Scale is the backing scale factor (device pixels per point).
	Scale float64

	// MinFrameInterval throttles stream based sources.
	MinFrameInterval time.Duration
}

// Global returns Rect in global coordinates.
func (r Request) Global() image.Rectangle {
	return r.Rect.Add(r.Display.Min)
}

// PointerEvent is forwarded to sources when following the pointer. Request is
// the capture request recomputed for the new pointer position.
type PointerEvent struct {
	Position image.Point
	Request  Request
}

// Suspender is implemented by sources that capture on their own, so they can
// pause while the scheduler is suspended. Neither method may block.
type Suspender interface {
	// Suspend stops capturing and drops any frame not yet acquired.
	Suspend()

	// Resume captures again. Only frames grabbed after Resume are acquired.
	Resume()
}

// FrameSource acquires frames.
type FrameSource interface {
	// Start prepares the source, or reconfigures it if already started.
	Start(req Request) error

	// Stop releases the source. It is safe to call if not started.
	Stop()

	// CheckPermission reports whether capturing is currently allowed.
	CheckPermission() bool

	// Acquire blocks until one frame is available, the source fails or ctx
	// is cancelled.
	Acquire(ctx context.Context, req Request) (*Frame, error)

	// HandlePointerEvent is only called in pointer-follow mode.
	HandlePointerEvent(ev PointerEvent)
}

// FrameSink consumes delivered frames. SubmitFrame must not block.
type FrameSink interface {
	SubmitFrame(frame *Frame)
}

// ExclusionInvalidator is implemented by sources that keep a list of windows
// to exclude, which must be rebuilt when focus, space or display change.
type ExclusionInvalidator interface {
	InvalidateExclusions()
}
