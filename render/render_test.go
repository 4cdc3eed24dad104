package render

import (
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janpfeifer/daltonview/capture"
	"github.com/janpfeifer/daltonview/chain"
	"github.com/janpfeifer/daltonview/config"
)

type fakeSurface struct {
	err       error
	w, h      int
	submitted []image.Image
	presents  int
}

func (s *fakeSurface) Ready() error           { return s.err }
func (s *fakeSurface) Size() (int, int)       { return s.w, s.h }
func (s *fakeSurface) Submit(img image.Image) { s.submitted = append(s.submitted, img) }
func (s *fakeSurface) Present()               { s.presents++ }

type countingChain struct {
	mu    sync.Mutex
	calls int
}

func (c *countingChain) Apply(img image.Image) image.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return img
}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for ii := 0; ii < len(img.Pix); ii += 4 {
		img.Pix[ii], img.Pix[ii+1], img.Pix[ii+2], img.Pix[ii+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func at(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func TestDeviceUnavailable(t *testing.T) {
	_, err := New(&fakeSurface{err: errors.New("no GPU")}, nil, Fill)
	assert.ErrorIs(t, err, ErrDeviceUnavailable)
}

func TestPlaceholder(t *testing.T) {
	surface := &fakeSurface{w: 40, h: 30}
	r, err := New(surface, nil, Fill)
	require.NoError(t, err)
	assert.Nil(t, r.CurrentRenderedImage())

	img := r.RenderTick()
	require.NotNil(t, img)
	assert.Equal(t, image.Rect(0, 0, 40, 30), img.Bounds())
	assert.Equal(t, NeutralGray, at(img, 20, 15))
	assert.Same(t, img, r.CurrentRenderedImage())
	assert.Equal(t, 1, surface.presents)
}

func TestLatestFrameWins(t *testing.T) {
	surface := &fakeSurface{w: 10, h: 10}
	counter := &countingChain{}
	r, err := New(surface, counter, Fill)
	require.NoError(t, err)

	red := color.NRGBA{R: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}
	r.SubmitFrame(&capture.Frame{Image: solid(10, 10, red), Seq: 1})
	r.SubmitFrame(&capture.Frame{Image: solid(10, 10, red), Seq: 2})
	r.SubmitFrame(&capture.Frame{Image: solid(10, 10, blue), Seq: 3})
	r.SubmitFrame(nil)

	img := r.RenderTick()
	assert.Equal(t, blue, at(img, 5, 5))
	stats := r.Stats()
	assert.Equal(t, uint64(3), stats.Submitted)
	assert.Equal(t, uint64(2), stats.Dropped)
	assert.Equal(t, 1, counter.calls)

	// Nothing new: the same image is presented again without filtering.
	again := r.RenderTick()
	assert.Same(t, img, again)
	assert.Equal(t, 1, counter.calls)

	r.Invalidate()
	r.RenderTick()
	assert.Equal(t, 2, counter.calls, "invalidation filters the last frame again")

	surface.w = 20
	resized := r.RenderTick()
	assert.Equal(t, 3, counter.calls)
	assert.Equal(t, image.Rect(0, 0, 20, 10), resized.Bounds())
	assert.Equal(t, uint64(4), r.Stats().Rendered)
}

func TestSnapshotIsPresentedImage(t *testing.T) {
	surface := &fakeSurface{w: 16, h: 16}
	f := config.Default()
	f.Vision = config.Deutan
	c := chain.New(f)
	defer c.Close()
	r, err := New(surface, c, Fit)
	require.NoError(t, err)

	r.SubmitFrame(&capture.Frame{Image: solid(16, 16, color.NRGBA{R: 255, A: 255})})
	img := r.RenderTick()
	require.Len(t, surface.submitted, 1)
	assert.Same(t, surface.submitted[0], r.CurrentRenderedImage())
	assert.Same(t, img, r.CurrentRenderedImage())
	assert.NotEqual(t, color.NRGBA{R: 255, A: 255}, at(img, 8, 8), "snapshot is filtered")
}

func TestScaleFactor(t *testing.T) {
	assert.Equal(t, 1.0, ScaleFactor(200, 100, 100, 100, Fill))
	assert.Equal(t, 0.5, ScaleFactor(200, 100, 100, 100, Fit))
	assert.Equal(t, 2.0, ScaleFactor(50, 50, 100, 60, Fill))
	assert.Equal(t, 1.2, ScaleFactor(50, 50, 100, 60, Fit))
}

func TestRescale(t *testing.T) {
	// Left half red, right half green.
	src := solid(200, 100, color.NRGBA{R: 255, A: 255})
	for y := 0; y < 100; y++ {
		for x := 100; x < 200; x++ {
			src.SetNRGBA(x, y, color.NRGBA{G: 255, A: 255})
		}
	}

	filled := Rescale(src, 100, 100, Fill)
	assert.Equal(t, image.Rect(0, 0, 100, 100), filled.Bounds())
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, at(filled, 10, 50), "centered crop")
	assert.Equal(t, color.NRGBA{G: 255, A: 255}, at(filled, 90, 50))

	fitted := Rescale(src, 100, 100, Fit)
	assert.Equal(t, color.NRGBA{A: 255}, at(fitted, 50, 10), "letterbox")
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, at(fitted, 10, 50))
	assert.Equal(t, color.NRGBA{G: 255, A: 255}, at(fitted, 90, 50))

	same := solid(30, 20, color.NRGBA{B: 9, A: 255})
	assert.Same(t, same, Rescale(same, 30, 20, Fill))
	assert.True(t, Rescale(same, 0, 10, Fit).Bounds().Empty())

	p, err := ParseScalePolicy("FIT")
	require.NoError(t, err)
	assert.Equal(t, Fit, p)
	_, err = ParseScalePolicy("stretch")
	assert.Error(t, err)
}
