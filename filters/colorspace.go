package filters

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// SRGBToLinear decodes one sRGB encoded channel in [0, 1] to linear light.
func SRGBToLinear(v float64) float64 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// LinearToSRGB encodes one linear light channel in [0, 1] to sRGB.
func LinearToSRGB(v float64) float64 {
	if v <= 0.0031308 {
		return v * 12.92
	}
	return 1.055*math.Pow(v, 1/2.4) - 0.055
}

// Vec3ToLinear applies SRGBToLinear to each channel.
func Vec3ToLinear(c mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{SRGBToLinear(c[0]), SRGBToLinear(c[1]), SRGBToLinear(c[2])}
}

// Vec3ToSRGB applies LinearToSRGB to each channel.
func Vec3ToSRGB(c mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{LinearToSRGB(c[0]), LinearToSRGB(c[1]), LinearToSRGB(c[2])}
}

// Luminance weights.
var (
	// BT709 is used for linear light luminance.
	BT709 = mgl64.Vec3{0.2126, 0.7152, 0.0722}

	// BT601 reproduces analog television luma.
	BT601 = mgl64.Vec3{0.299, 0.587, 0.114}
)
