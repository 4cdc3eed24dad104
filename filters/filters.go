// Package filters implements the image transforms of the vision simulation
// pipeline: color deficiency simulations (Machado matrices, HCIRN confusion
// lines, luma based monochromacies) and the assists (stripes, hue adjust,
// luminance inversion and vibrancy).
//
// Every transform is a Filter. Filters are cheap to construct and safe to
// re-use across frames, but not safe for concurrent Apply calls unless stated.
package filters

import (
	"errors"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/gift"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrUnsupported is returned when no filter exists for a requested
// configuration.
var ErrUnsupported = errors.New("unsupported filter")

// Filter transforms one image into another. The returned image may share the
// source's pixels lazily (see filterImage), so sources must not be modified
// while the result is in use.
type Filter interface {
	Apply(image image.Image) image.Image
}

// Identity is a Filter that returns its input.
var Identity Filter = identity{}

type identity struct{}

func (identity) Apply(image image.Image) image.Image { return image }

type filterImage struct {
	source image.Image
	atFn   func(x, y int, under color.Color) color.Color
}

// ColorModel returns the Image's color model.
func (f *filterImage) ColorModel() color.Model { return f.source.ColorModel() }

// Bounds returns the domain for which At can return non-zero color.
// The bounds do not necessarily contain the point (0, 0).
func (f *filterImage) Bounds() image.Rectangle { return f.source.Bounds() }

// At returns the color of the pixel at (x, y).
// At(Bounds().Min.X, Bounds().Min.Y) returns the upper-left pixel of the grid.
// At(Bounds().Max.X-1, Bounds().Max.Y-1) returns the lower-right one.
func (f *filterImage) At(x, y int) color.Color {
	return f.atFn(x, y, f.source.At(x, y))
}

// Materialize returns img as an *image.NRGBA with origin at (0, 0), copying
// (and evaluating lazy filters) only if needed.
func Materialize(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Rect.Min == (image.Point{}) {
		return nrgba
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return dst
}

// Space is the color encoding a pixel transform operates in.
type Space int

const (
	// SRGB passes the gamma encoded values as they are stored.
	SRGB Space = iota
	// Linear decodes to linear light before the transform and re-encodes
	// afterwards. Matrix based simulations are only correct in linear light.
	Linear
)

// giftFilter runs a gift pipeline, always producing an *image.NRGBA.
type giftFilter struct {
	name string
	g    *gift.GIFT
}

func (f *giftFilter) String() string { return f.name }

// Apply implements Filter.
func (f *giftFilter) Apply(img image.Image) image.Image {
	dst := image.NewNRGBA(f.g.Bounds(img.Bounds()))
	f.g.Draw(dst, img)
	return dst
}

// newGiftFilter wraps the given gift filters.
func newGiftFilter(name string, filters ...gift.Filter) *giftFilter {
	return &giftFilter{name: name, g: gift.New(filters...)}
}

// PixelFunc transforms one color with channels in [0, 1]. Values out of range
// are clamped after the call.
type PixelFunc func(c mgl64.Vec3) mgl64.Vec3

// NewPixelFilter creates a Filter applying fn independently to every pixel,
// in the given color space. Alpha is preserved.
func NewPixelFilter(name string, space Space, fn PixelFunc) Filter {
	return newPixelFilter(name, space, fn)
}

func newPixelFilter(name string, space Space, fn PixelFunc) *giftFilter {
	return newGiftFilter(name, gift.ColorFunc(func(r, g, b, a float32) (float32, float32, float32, float32) {
		c := mgl64.Vec3{float64(r), float64(g), float64(b)}
		if space == Linear {
			c = Vec3ToLinear(c)
		}
		c = clampVec3(fn(c))
		if space == Linear {
			c = Vec3ToSRGB(c)
		}
		return float32(c[0]), float32(c[1]), float32(c[2]), a
	}))
}

func clamp01(v float64) float64 {
	if v < 0 || v != v { // NaN maps to 0.
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampVec3(c mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{clamp01(c[0]), clamp01(c[1]), clamp01(c[2])}
}

// mix linearly interpolates from a (t=0) to b (t=1).
func mix(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
