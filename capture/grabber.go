package capture

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// Grabber reads pixels from the screen.
type Grabber interface {
	// Grab captures rect, in global top-left origin coordinates. Windows in
	// exclude are left out of the capture where the platform supports it.
	Grab(rect image.Rectangle, exclude []int64) (*image.RGBA, error)
}

// PermissionChecker is implemented by grabbers that can tell whether screen
// capture is allowed.
type PermissionChecker interface {
	CheckPermission() bool
}

// ScreenGrabber grabs from the displays with github.com/kbinani/screenshot.
// It captures everything visible: exclusions are not supported, and the
// view's own window must not overlap the captured area.
type ScreenGrabber struct{}

// Grab implements Grabber. exclude is ignored: whatever is on screen in rect,
// the view included, ends up in the image.
func (ScreenGrabber) Grab(rect image.Rectangle, _ []int64) (*image.RGBA, error) {
	img, err := screenshot.CaptureRect(rect)
	if err != nil {
		return nil, fmt.Errorf("%w: capturing %v: %v", ErrAcquisition, rect, err)
	}
	return img, nil
}

// CheckPermission implements PermissionChecker: without permission no display
// is reported.
func (ScreenGrabber) CheckPermission() bool {
	return screenshot.NumActiveDisplays() > 0
}

// DisplayBounds returns the bounds of display index n, in global top-left
// origin coordinates.
func DisplayBounds(n int) image.Rectangle {
	return screenshot.GetDisplayBounds(n)
}

// NumDisplays returns the number of active displays.
func NumDisplays() int {
	return screenshot.NumActiveDisplays()
}

func checkPermission(g Grabber) bool {
	if pc, ok := g.(PermissionChecker); ok {
		return pc.CheckPermission()
	}
	return true
}
