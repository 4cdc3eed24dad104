package live

import (
	"image"
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/golang/glog"

	"github.com/janpfeifer/daltonview/capture"
	"github.com/janpfeifer/daltonview/filters"
	"github.com/janpfeifer/daltonview/render"
)

// ResizeDebounce is how long after the last resize a live resize is
// considered finished.
const ResizeDebounce = 300 * time.Millisecond

// viewWindowID identifies the view to the frame sources. Nothing excludes
// windows by id here (ScreenGrabber ignores exclusions, and fyne does not
// expose the native window), so the view is not hidden from the capture: the
// region must be configured away from the window. The id only has to be
// valid for captures to be attempted.
const viewWindowID = 1

// PermissionMessage is shown over the surface when capturing is not allowed.
const PermissionMessage = "Screen capture permission required: grant it, then press ctrl+r"

// View is the capture.Window of the application. The captured region is
// configured, since fyne reports neither the window position nor the pointer
// outside of it.
type View struct {
	capture.Registry

	surface *Surface
	overlay *canvas.Raster

	// displays returns the display bounds, index 0 being the primary, in
	// top-left origin screen coordinates.
	displays func() []image.Rectangle
	debounce time.Duration

	mu       sync.Mutex
	region   image.Rectangle // Top-left origin screen coordinates.
	scale    float64
	resizing bool
	timer    *time.Timer
}

var _ capture.Window = (*View)(nil)

// NewView creates the view for region, drawing on surface.
func NewView(surface *Surface, region image.Rectangle) *View {
	v := &View{
		surface:  surface,
		displays: activeDisplays,
		debounce: ResizeDebounce,
		region:   region,
		scale:    1,
	}
	v.overlay = canvas.NewRaster(permissionOverlay)
	v.overlay.Hide()
	surface.mu.Lock()
	surface.onResize = func(int, int) { v.noteResize() }
	surface.mu.Unlock()
	return v
}

func activeDisplays() []image.Rectangle {
	n := capture.NumDisplays()
	displays := make([]image.Rectangle, 0, n)
	for ii := range n {
		displays = append(displays, capture.DisplayBounds(ii))
	}
	return displays
}

var permissionLabel = sync.OnceValue(func() *filters.Label {
	return filters.NewLabel(PermissionMessage, image.Point{}, color.White, 16)
})

func permissionOverlay(w, h int) image.Image {
	return permissionLabel().Apply(render.Placeholder(w, h))
}

// Overlay returns the fyne object that shows the permission message.
func (v *View) Overlay() fyne.CanvasObject { return v.overlay }

// Region returns the captured region.
func (v *View) Region() image.Rectangle {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.region
}

// SetRegion changes the captured region, as if the view had moved.
func (v *View) SetRegion(region image.Rectangle) {
	v.mu.Lock()
	changed := region != v.region
	v.region = region
	v.mu.Unlock()
	if changed {
		glog.V(1).Infof("Capture region set to %v", region)
		v.Publish(capture.Event{Kind: capture.Moved})
	}
}

// SetScale sets the device pixels per point.
func (v *View) SetScale(scale float64) {
	if scale <= 0 {
		scale = 1
	}
	v.mu.Lock()
	v.scale = scale
	v.mu.Unlock()
}

// Geometry implements capture.Window.
func (v *View) Geometry() capture.Geometry {
	v.mu.Lock()
	region, scale := v.region, v.scale
	v.mu.Unlock()

	displays := v.displays()
	if len(displays) == 0 {
		return capture.Geometry{WindowID: viewWindowID, Scale: scale}
	}
	primary := displays[0]
	display := primary
	for _, d := range displays {
		if region.Min.In(d) {
			display = d
			break
		}
	}
	region = effectiveRegion(region, primary)
	height := primary.Dy()
	return capture.Geometry{
		View:          toWindowSystem(region, height),
		Display:       toWindowSystem(display, height),
		PrimaryHeight: height,
		WindowID:      viewWindowID,
		Scale:         scale,
	}
}

// CaptureRegion returns the region captured, in top-left origin screen
// coordinates, the default one included.
func (v *View) CaptureRegion() image.Rectangle {
	region := v.Region()
	displays := v.displays()
	if len(displays) == 0 {
		return region
	}
	return effectiveRegion(region, displays[0])
}

func effectiveRegion(region, primary image.Rectangle) image.Rectangle {
	if region.Empty() {
		return image.Rectangle{Max: DefaultRegionSize}.Add(primary.Min).Intersect(primary)
	}
	return region
}

// toWindowSystem converts top-left origin screen coordinates to bottom-left
// origin ones.
func toWindowSystem(r image.Rectangle, height int) image.Rectangle {
	return image.Rect(r.Min.X, height-r.Max.Y, r.Max.X, height-r.Min.Y)
}

// SetSurfaceHidden implements capture.Window.
func (v *View) SetSurfaceHidden(hidden bool) {
	v.surface.SetHidden(hidden)
}

// SetPermissionOverlay implements capture.Window.
func (v *View) SetPermissionOverlay(visible bool) {
	fyne.Do(func() {
		if visible {
			v.overlay.Show()
			v.overlay.Refresh()
		} else {
			v.overlay.Hide()
		}
	})
}

// noteResize turns a burst of surface resizes into one LiveResizeStarted and
// one LiveResizeEnded.
func (v *View) noteResize() {
	v.mu.Lock()
	started := !v.resizing
	v.resizing = true
	if v.timer == nil {
		v.timer = time.AfterFunc(v.debounce, v.endResize)
	} else {
		v.timer.Reset(v.debounce)
	}
	v.mu.Unlock()
	if started {
		v.Publish(capture.Event{Kind: capture.LiveResizeStarted})
	}
}

func (v *View) endResize() {
	v.mu.Lock()
	ended := v.resizing
	v.resizing = false
	v.mu.Unlock()
	if ended {
		v.Publish(capture.Event{Kind: capture.LiveResizeEnded})
	}
}
