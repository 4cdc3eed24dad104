package live

import (
	"errors"
	"image"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/golang/glog"

	"github.com/janpfeifer/daltonview/render"
)

// Surface shows the rendered images in a canvas.Raster. It implements
// render.Surface: Submit and Present may be called from any goroutine, the
// raster reads the submitted image on the fyne goroutine.
type Surface struct {
	raster *canvas.Raster

	mu        sync.Mutex
	submitted image.Image
	shown     image.Image
	w, h      int

	// onResize is called when the raster is drawn with a new size, except
	// the first time.
	onResize func(w, h int)
}

var _ render.Surface = (*Surface)(nil)

// NewSurface creates a surface whose pixel size is (w, h) until the raster
// is first drawn.
func NewSurface(w, h int) *Surface {
	s := &Surface{w: w, h: h}
	s.raster = canvas.NewRaster(s.draw)
	s.raster.ScaleMode = canvas.ImageScaleFastest
	return s
}

// Object returns the fyne object to place in the window.
func (s *Surface) Object() fyne.CanvasObject { return s.raster }

// Ready implements render.Surface.
func (s *Surface) Ready() error {
	if s == nil || s.raster == nil {
		return errors.New("surface has no raster")
	}
	return nil
}

// Size implements render.Surface.
func (s *Surface) Size() (w, h int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w, s.h
}

// Submit implements render.Surface.
func (s *Surface) Submit(img image.Image) {
	s.mu.Lock()
	s.submitted = img
	s.mu.Unlock()
}

// Present implements render.Surface: it shows the last submitted image.
func (s *Surface) Present() {
	s.mu.Lock()
	s.shown = s.submitted
	s.mu.Unlock()
	fyne.Do(s.raster.Refresh)
}

// SetHidden hides or shows the raster.
func (s *Surface) SetHidden(hidden bool) {
	fyne.Do(func() {
		if hidden {
			s.raster.Hide()
		} else {
			s.raster.Show()
		}
	})
}

// draw is the raster generator.
func (s *Surface) draw(w, h int) image.Image {
	s.mu.Lock()
	resized := w != s.w || h != s.h
	s.w, s.h = w, h
	img, onResize := s.shown, s.onResize
	s.mu.Unlock()
	if resized {
		glog.V(2).Infof("Surface resized to %dx%d", w, h)
		if onResize != nil {
			onResize(w, h)
		}
	}
	if img == nil {
		return render.Placeholder(w, h)
	}
	return img
}
