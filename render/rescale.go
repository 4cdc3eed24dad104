package render

import (
	"fmt"
	"image"
	"math"
	"strings"

	"golang.org/x/image/draw"
)

// ScalePolicy selects how frames are fitted to the surface. Both keep the
// aspect ratio and center the image.
type ScalePolicy int

const (
	// Fill covers the whole surface, cropping what does not fit.
	Fill ScalePolicy = iota
	// Fit shows the whole frame, letterboxed.
	Fit
)

func (p ScalePolicy) String() string {
	if p == Fit {
		return "fit"
	}
	return "fill"
}

// ParseScalePolicy accepts "fill" and "fit".
func ParseScalePolicy(s string) (ScalePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fill", "":
		return Fill, nil
	case "fit":
		return Fit, nil
	}
	return Fill, fmt.Errorf("unknown scale policy %q", s)
}

// ScaleFactor returns the factor from a (srcW, srcH) image to a (w, h)
// target: max of the ratios when filling, min when fitting.
func ScaleFactor(srcW, srcH, w, h int, policy ScalePolicy) float64 {
	rx, ry := float64(w)/float64(srcW), float64(h)/float64(srcH)
	if policy == Fit {
		return math.Min(rx, ry)
	}
	return math.Max(rx, ry)
}

// Rescale returns img scaled to a w x h image with origin (0, 0), following
// policy. Images already of the target size are returned as is.
func Rescale(img image.Image, w, h int, policy ScalePolicy) image.Image {
	if w <= 0 || h <= 0 {
		return image.NewNRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	}
	sb := img.Bounds()
	if sb.Dx() == w && sb.Dy() == h && sb.Min == (image.Point{}) {
		return img
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	if sb.Empty() {
		return dst
	}
	scale := ScaleFactor(sb.Dx(), sb.Dy(), w, h, policy)
	dw := int(math.Round(float64(sb.Dx()) * scale))
	dh := int(math.Round(float64(sb.Dy()) * scale))
	x0, y0 := (w-dw)/2, (h-dh)/2
	if policy == Fit {
		draw.Draw(dst, dst.Rect, image.Black, image.Point{}, draw.Src)
	}
	// Destination may exceed dst when filling: Scale clips it.
	draw.ApproxBiLinear.Scale(dst, image.Rect(x0, y0, x0+dw, y0+dh), img, sb, draw.Src, nil)
	return dst
}
