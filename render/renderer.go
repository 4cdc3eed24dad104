// Package render implements the frame sink: it keeps the latest captured
// frame, and on every display tick rescales it to the surface, runs it
// through the filter chain and presents it.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/golang/glog"

	"github.com/janpfeifer/daltonview/capture"
)

// ErrDeviceUnavailable is returned when the surface can not render.
var ErrDeviceUnavailable = errors.New("render device unavailable")

// NeutralGray is shown until the first frame arrives.
var NeutralGray = color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}

// Surface is where rendered images are shown.
type Surface interface {
	// Ready returns an error if the surface can not be used.
	Ready() error

	// Size in device pixels.
	Size() (w, h int)

	// Submit hands the next image to show. Present shows it.
	Submit(img image.Image)
	Present()
}

// Applier is the filter chain, as seen by the renderer.
type Applier interface {
	Apply(img image.Image) image.Image
}

// Stats counts frames since the Renderer was created.
type Stats struct {
	Submitted uint64 // Frames received.
	Dropped   uint64 // Frames overwritten before being rendered.
	Rendered  uint64 // Images presented, placeholders included.
}

// Renderer is a capture.FrameSink. SubmitFrame may be called from any
// goroutine; RenderTick from the display goroutine.
type Renderer struct {
	surface Surface
	chain   Applier
	policy  ScalePolicy

	// mu guards the latest frame slot and stats. Never held while rendering.
	mu      sync.Mutex
	latest  *capture.Frame
	fresh   bool
	invalid bool
	stats   Stats

	// Only used from RenderTick.
	lastW, lastH int

	presentedMu sync.Mutex
	presented   image.Image
}

var _ capture.FrameSink = (*Renderer)(nil)

// New creates a Renderer. It returns ErrDeviceUnavailable if the surface is
// not ready. A nil chain renders frames unfiltered.
func New(surface Surface, chain Applier, policy ScalePolicy) (*Renderer, error) {
	if err := surface.Ready(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	return &Renderer{surface: surface, chain: chain, policy: policy}, nil
}

// SubmitFrame implements capture.FrameSink: it overwrites the latest frame.
// It never blocks on rendering.
func (r *Renderer) SubmitFrame(frame *capture.Frame) {
	if frame == nil || frame.Image == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.Submitted++
	if r.fresh {
		r.stats.Dropped++
	}
	r.latest = frame
	r.fresh = true
}

// Invalidate forces the next RenderTick to render again, e.g. after the
// filter configuration changed.
func (r *Renderer) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invalid = true
}

// RenderTick renders the latest frame (or the placeholder) to the surface and
// returns what was presented. Ticks without a new frame, size change or
// invalidation present the previous image again without recomputing it.
func (r *Renderer) RenderTick() image.Image {
	r.mu.Lock()
	frame, fresh, invalid := r.latest, r.fresh, r.invalid
	r.fresh, r.invalid = false, false
	r.mu.Unlock()

	w, h := r.surface.Size()
	resized := w != r.lastW || h != r.lastH
	r.lastW, r.lastH = w, h

	prev := r.CurrentRenderedImage()
	var img image.Image
	switch {
	case prev != nil && !fresh && !invalid && !resized:
		img = prev
	case frame == nil:
		img = Placeholder(w, h)
	default:
		img = Rescale(frame.Image, w, h, r.policy)
		if r.chain != nil {
			img = r.chain.Apply(img)
		}
		glog.V(2).Infof("Rendered frame %d at %dx%d", frame.Seq, w, h)
	}

	r.surface.Submit(img)
	r.surface.Present()
	r.presentedMu.Lock()
	r.presented = img
	r.presentedMu.Unlock()

	r.mu.Lock()
	r.stats.Rendered++
	r.mu.Unlock()
	return img
}

// CurrentRenderedImage returns the image last presented, after filtering, or
// nil before the first RenderTick. It must not be modified.
func (r *Renderer) CurrentRenderedImage() image.Image {
	r.presentedMu.Lock()
	defer r.presentedMu.Unlock()
	return r.presented
}

// Stats returns a snapshot of the counters.
func (r *Renderer) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// Placeholder returns a w x h neutral gray image.
func Placeholder(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	for ii := 0; ii < len(img.Pix); ii += 4 {
		img.Pix[ii], img.Pix[ii+1], img.Pix[ii+2], img.Pix[ii+3] =
			NeutralGray.R, NeutralGray.G, NeutralGray.B, NeutralGray.A
	}
	return img
}
