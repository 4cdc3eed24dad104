package filters

import "github.com/go-gl/mathgl/mgl64"

// Luma returns a Filter that desaturates towards dot(c, weights), by
// intensity in [0, 1], in linear light.
func Luma(weights mgl64.Vec3, intensity float64) Filter {
	return lumaFilter("luma", weights, intensity)
}

func lumaFilter(name string, weights mgl64.Vec3, intensity float64) *giftFilter {
	return newPixelFilter(name, Linear, func(c mgl64.Vec3) mgl64.Vec3 {
		return lumaTransform(weights, intensity, c)
	})
}

func lumaTransform(weights mgl64.Vec3, intensity float64, c mgl64.Vec3) mgl64.Vec3 {
	y := c.Dot(weights)
	return mix(c, mgl64.Vec3{y, y, y}, intensity)
}

// Approximate spectral sensitivities of rods and S-cones, projected on the
// linear sRGB primaries and normalized to sum 1.
var (
	rodWeights   = mgl64.Vec3{0.05, 0.60, 0.35}
	sConeWeights = mgl64.Vec3{0.02, 0.12, 0.86}
)

// DefaultBlueSensitivity is the share of S-cone signal in blue cone
// monochromat vision.
const DefaultBlueSensitivity = 0.5

// BlueConeMonochromat simulates vision with only rods and S-cones: a gray
// image whose brightness mixes rod and S-cone responses.
func BlueConeMonochromat(blueSensitivity, intensity float64) Filter {
	weights := rodWeights.Mul(1 - blueSensitivity).Add(sConeWeights.Mul(blueSensitivity))
	return lumaFilter("blue cone monochromat", weights, intensity)
}

// AnalogTV reproduces a black and white television: BT.601 luma applied to
// the gamma encoded signal.
func AnalogTV() Filter {
	return NewPixelFilter("analog tv", SRGB, func(c mgl64.Vec3) mgl64.Vec3 {
		return lumaTransform(BT601, 1, c)
	})
}
