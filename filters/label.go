package filters

import (
	"image"
	"image/color"
	"sync"

	"github.com/golang/freetype/truetype"
	"github.com/golang/glog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/math/fixed"
)

// DPI constant. Ideally it would be read from the various system.
const DPI = 96

// Label draws a line of text centered on a point. It is used for messages
// over the rendered image, like the missing screen capture permission.
type Label struct {
	// Text to render.
	Text string

	// Center (horizontal and vertical) where to draw the text. If Center is
	// the zero point, the label is centered on the image.
	Center image.Point

	// Color of the Text to be drawn.
	Color color.Color

	// Font size.
	Size float64

	// Text rendered, origin at (0, 0).
	renderedText *image.RGBA
}

// NewLabel creates a new Label filter.
func NewLabel(text string, center image.Point, color color.Color, size float64) *Label {
	l := &Label{
		Center: center,
		Color:  color,
		Size:   size}
	l.SetText(text)
	return l
}

var labelFont = sync.OnceValue(func() *truetype.Font {
	f, err := truetype.Parse(gobold.TTF)
	if err != nil {
		glog.Fatalf("Failed to generate font for golang.org/x/image/font/gofont/gobold TTF.")
	}
	return f
})

// SetText renders text, replacing the previous one.
func (l *Label) SetText(text string) {
	l.Text = text
	d := &font.Drawer{
		Src: image.NewUniform(l.Color),
		Face: truetype.NewFace(labelFont(), &truetype.Options{
			Size:       l.Size,
			DPI:        DPI,
			Hinting:    font.HintingFull,
			SubPixelsX: 8,
			SubPixelsY: 8,
		}),
		Dot: fixed.Point26_6{X: 0, Y: fixed.Int26_6(l.Size * 64)},
	}
	boundingRect, _ := d.BoundString(text)
	l.renderedText = image.NewRGBA(image.Rect(0, 0, boundingRect.Max.X.Ceil(), boundingRect.Max.Y.Ceil()))
	d.Dst = l.renderedText
	d.DrawString(text)
	normalizeAlpha(l.renderedText)
}

func normalizeAlpha(img *image.RGBA) {
	var maxAlpha uint8
	for ii := 0; ii < len(img.Pix); ii += 4 {
		if alpha := img.Pix[ii+3]; alpha > maxAlpha {
			maxAlpha = alpha
		}
	}
	if maxAlpha == 0 {
		return
	}
	const M = 1<<8 - 1
	maxAlpha16 := uint16(maxAlpha)
	for ii := 0; ii < len(img.Pix); ii += 4 {
		img.Pix[ii+3] = uint8(uint16(img.Pix[ii+3]) * M / maxAlpha16)
	}
}

// rect returns where the text is drawn over an image with the given bounds.
func (l *Label) rect(bounds image.Rectangle) image.Rectangle {
	center := l.Center
	if center == (image.Point{}) {
		center = image.Pt((bounds.Min.X+bounds.Max.X)/2, (bounds.Min.Y+bounds.Max.Y)/2)
	}
	dx, dy := l.renderedText.Rect.Dx(), l.renderedText.Rect.Dy()
	return image.Rect(center.X-dx/2, center.Y-dy/2, center.X-dx/2+dx, center.Y-dy/2+dy)
}

// at is the function given to the filterImage object.
func (l *Label) at(rect image.Rectangle, x, y int, under color.Color) color.Color {
	if !image.Pt(x, y).In(rect) {
		return under
	}
	c := l.renderedText.At(x-rect.Min.X, y-rect.Min.Y)
	fontR, fontG, fontB, a := c.RGBA()
	if a == 0 {
		return under
	}
	const M = 1<<16 - 1

	underR, underG, underB, underA := under.RGBA()
	blend := func(underChan uint32, fontChan uint32) uint8 {
		return uint8((fontChan*a + underChan*(M-a)) / M >> 8)
	}
	return color.RGBA{
		R: blend(underR, fontR),
		G: blend(underG, fontG),
		B: blend(underB, fontB),
		A: uint8(underA >> 8),
	}
}

// Apply implements the Filter interface.
func (l *Label) Apply(image image.Image) image.Image {
	rect := l.rect(image.Bounds())
	return &filterImage{image, func(x, y int, under color.Color) color.Color {
		return l.at(rect, x, y, under)
	}}
}
