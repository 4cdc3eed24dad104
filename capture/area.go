package capture

import (
	"image"

	"github.com/janpfeifer/daltonview/config"
)

// CaptureArea returns the area to capture, in window system coordinates.
//
// UnderWindow captures the view's area. MousePointer captures an area of the
// same size centered on the pointer, but only while the pointer is outside
// the view: inside it, it falls back to the area under the window, so the
// view never captures itself around the pointer. The result is shifted to
// stay within the display, and clipped if larger. It returns false if
// nothing can be captured.
func CaptureArea(area config.ViewArea, g Geometry) (image.Rectangle, bool) {
	rect := g.View
	if area == config.MousePointer && g.PointerKnown && !g.Pointer.In(g.View) {
		size := g.View.Size()
		corner := g.Pointer.Sub(image.Pt(size.X/2, size.Y/2))
		rect = image.Rectangle{Min: corner, Max: corner.Add(size)}
		rect = shiftInto(rect, g.Display)
	}
	rect = rect.Intersect(g.Display)
	return rect, !rect.Empty()
}

// shiftInto moves r so it lies within bounds, where it fits.
func shiftInto(r, bounds image.Rectangle) image.Rectangle {
	var d image.Point
	switch {
	case r.Dx() > bounds.Dx():
		d.X = bounds.Min.X - r.Min.X
	case r.Min.X < bounds.Min.X:
		d.X = bounds.Min.X - r.Min.X
	case r.Max.X > bounds.Max.X:
		d.X = bounds.Max.X - r.Max.X
	}
	switch {
	case r.Dy() > bounds.Dy():
		d.Y = bounds.Min.Y - r.Min.Y
	case r.Min.Y < bounds.Min.Y:
		d.Y = bounds.Min.Y - r.Min.Y
	case r.Max.Y > bounds.Max.Y:
		d.Y = bounds.Max.Y - r.Max.Y
	}
	return r.Add(d)
}

// flipY converts between bottom-left and top-left origin coordinates.
func flipY(r image.Rectangle, height int) image.Rectangle {
	return image.Rect(r.Min.X, height-r.Max.Y, r.Max.X, height-r.Min.Y)
}

// NewRequest converts the capture area (window system coordinates) to a
// source Request: Y inverted and Rect relative to the display.
func NewRequest(rect image.Rectangle, g Geometry, speed config.RefreshSpeed) Request {
	display := flipY(g.Display, g.PrimaryHeight)
	scale := g.Scale
	if scale <= 0 {
		scale = 1
	}
	return Request{
		Rect:             flipY(rect, g.PrimaryHeight).Sub(display.Min),
		Display:          display,
		WindowID:         g.WindowID,
		Scale:            scale,
		MinFrameInterval: speed.MinimumFrameInterval(),
	}
}
