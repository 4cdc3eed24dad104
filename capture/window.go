package capture

import "image"

// Geometry is a snapshot of the view's placement. Rectangles and points are
// in window system coordinates: global, in points, origin at the bottom-left
// corner of the primary display with Y growing upwards.
type Geometry struct {
	// View is the area covered by the view.
	View image.Rectangle

	// Display holding the view.
	Display image.Rectangle

	// PrimaryHeight is the height of the primary display, used to flip
	// coordinates.
	PrimaryHeight int

	WindowID int64
	Scale    float64

	// Pointer position, if PointerKnown.
	Pointer      image.Point
	PointerKnown bool
}

// Window is the windowing collaborator. Its methods may be called with the
// Scheduler's lock held: they must not call back into the Scheduler.
type Window interface {
	// Subscribe registers for interaction events.
	Subscribe(fn func(Event)) (unsubscribe func())

	Geometry() Geometry

	// SetSurfaceHidden hides the rendered surface, so stale frames are not
	// shown while capturing is suspended.
	SetSurfaceHidden(hidden bool)

	// SetPermissionOverlay shows or hides the "permission required" message.
	SetPermissionOverlay(visible bool)
}
