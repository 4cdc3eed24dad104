package filters

import (
	"math"

	"github.com/disintegration/gift"
	"github.com/go-gl/mathgl/mgl64"
)

// HueAdjust rotates hues by half a turn, moving reds and greens apart from
// the confusion axis. It works on gamma encoded values.
func HueAdjust() Filter {
	return newGiftFilter("hue adjust", gift.Hue(180))
}

// InvertLuminance inverts the gamma encoded colors. Combined with HueAdjust it
// flips lightness while keeping hues.
func InvertLuminance() Filter {
	return newGiftFilter("invert", gift.Invert())
}

// VibrancyAmount is the saturation gain applied to fully unsaturated colors.
const VibrancyAmount = 0.5

// Vibrancy increases saturation, more for muted colors than for colors that
// are already saturated. Works in linear light.
func Vibrancy() Filter {
	return newPixelFilter("vibrancy", Linear, func(c mgl64.Vec3) mgl64.Vec3 {
		saturation := math.Max(c[0], math.Max(c[1], c[2])) - math.Min(c[0], math.Min(c[1], c[2]))
		gain := 1 + VibrancyAmount*(1-clamp01(saturation))
		y := c.Dot(BT709)
		gray := mgl64.Vec3{y, y, y}
		return gray.Add(c.Sub(gray).Mul(gain))
	})
}
