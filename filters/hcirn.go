package filters

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/janpfeifer/daltonview/config"
)

// HCIRNParams parametrizes the confusion line simulation (HCIRN, after
// Wickline's Color.Vision.Simulate): colors along a line through the
// confusion point CP are collapsed onto the axis from AB to AE, in xy
// chromaticity space.
//
// Anomalize blends between the input (0) and the full simulation (1).
// Negative values select the luma only path with intensity -Anomalize.
type HCIRNParams struct {
	CP, AB, AE mgl64.Vec2
	Anomalize  float64
}

const anomalous = 0.66

var (
	deutanParams = HCIRNParams{CP: mgl64.Vec2{1.14, -0.14}, AB: mgl64.Vec2{0.102776, 0.102864}, AE: mgl64.Vec2{0.505845, 0.493211}, Anomalize: 1}
	protanParams = HCIRNParams{CP: mgl64.Vec2{0.735, 0.265}, AB: mgl64.Vec2{0.115807, 0.073581}, AE: mgl64.Vec2{0.471899, 0.527051}, Anomalize: 1}
	tritanParams = HCIRNParams{CP: mgl64.Vec2{0.171, -0.003}, AB: mgl64.Vec2{0.045391, 0.294976}, AE: mgl64.Vec2{0.665764, 0.334011}, Anomalize: 1}
)

func withAnomalize(p HCIRNParams, a float64) HCIRNParams {
	p.Anomalize = a
	return p
}

// HCIRNParamsFor returns the parameter set of the vision type. Achromatopsia
// maps to the monochromacy variant.
func HCIRNParamsFor(v config.VisionType) (HCIRNParams, error) {
	switch v {
	case config.Deutan:
		return deutanParams, nil
	case config.Deuteranomaly:
		return withAnomalize(deutanParams, anomalous), nil
	case config.Protan:
		return protanParams, nil
	case config.Protanomaly:
		return withAnomalize(protanParams, anomalous), nil
	case config.Tritan:
		return tritanParams, nil
	case config.Tritanomaly:
		return withAnomalize(tritanParams, anomalous), nil
	case config.Achromatopsia:
		return HCIRNParams{Anomalize: -1}, nil
	}
	return HCIRNParams{}, fmt.Errorf("no HCIRN parameters for %s: %w", v, ErrUnsupported)
}

// Linear sRGB (D65) to CIE XYZ and back.
var (
	rgbToXYZ = mgl64.Mat3FromRows(
		mgl64.Vec3{0.430574, 0.341550, 0.178325},
		mgl64.Vec3{0.222015, 0.706655, 0.071330},
		mgl64.Vec3{0.020183, 0.129553, 0.939180})
	xyzToRGB = mgl64.Mat3FromRows(
		mgl64.Vec3{3.063218, -1.393325, -0.475802},
		mgl64.Vec3{-0.969243, 1.875966, 0.041555},
		mgl64.Vec3{0.067871, -0.228834, 1.069251})
)

// White point chromaticity.
const (
	whiteX = 0.312713
	whiteY = 0.329016
	whiteZ = 0.358271
)

// HCIRN returns a Filter realizing the confusion line simulation in linear
// light.
func HCIRN(p HCIRNParams) Filter {
	if p.Anomalize < 0 {
		return Luma(BT709, -p.Anomalize)
	}
	return NewPixelFilter("hcirn", Linear, func(c mgl64.Vec3) mgl64.Vec3 {
		return HCIRNTransform(p, c)
	})
}

// HCIRNTransform simulates one linear RGB color. Colors where the geometry
// degenerates (black, or a color on the confusion point itself) are returned
// unchanged.
func HCIRNTransform(p HCIRNParams, c mgl64.Vec3) mgl64.Vec3 {
	if p.Anomalize < 0 {
		return lumaTransform(BT709, -p.Anomalize, c)
	}
	sim, ok := hcirnSimulate(p, c)
	if !ok {
		return c
	}
	return mix(c, sim, p.Anomalize)
}

func hcirnSimulate(p HCIRNParams, c mgl64.Vec3) (mgl64.Vec3, bool) {
	xyz := rgbToXYZ.Mul3x1(c)
	sum := xyz[0] + xyz[1] + xyz[2]
	if sum <= 0 {
		return c, false
	}
	u, v := xyz[0]/sum, xyz[1]/sum
	lum := xyz[1]

	// Confusion line through the color and the confusion point.
	cp := p.CP
	var slope float64
	if u < cp.X() {
		slope = (cp.Y() - v) / (cp.X() - u)
	} else {
		slope = (v - cp.Y()) / (u - cp.X())
	}
	intercept := v - u*slope

	// Intersect with the axis from AB to AE.
	axisSlope := (p.AE.Y() - p.AB.Y()) / (p.AE.X() - p.AB.X())
	axisIntercept := p.AB.Y() - p.AB.X()*axisSlope
	du := (axisIntercept - intercept) / (slope - axisSlope)
	dv := slope*du + intercept
	if dv == 0 {
		return c, false
	}

	simXYZ := mgl64.Vec3{du * lum / dv, lum, (1 - (du + dv)) * lum / dv}
	simRGB := xyzToRGB.Mul3x1(simXYZ)

	// Shift towards neutral gray of the same luminance until in gamut.
	neutral := mgl64.Vec3{whiteX * lum / whiteY, lum, whiteZ * lum / whiteY}
	diff := xyzToRGB.Mul3x1(mgl64.Vec3{neutral[0] - simXYZ[0], 0, neutral[2] - simXYZ[2]})
	var adjust float64
	for i := 0; i < 3; i++ {
		if diff[i] == 0 {
			continue
		}
		target := 1.0
		if simRGB[i] < 0 {
			target = 0
		}
		a := (target - simRGB[i]) / diff[i]
		if a >= 0 && a <= 1 && a > adjust {
			adjust = a
		}
	}
	simRGB = simRGB.Add(diff.Mul(adjust))
	for _, x := range simRGB {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return c, false
		}
	}
	return clampVec3(simRGB), true
}
