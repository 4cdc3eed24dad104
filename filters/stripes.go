package filters

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/janpfeifer/daltonview/config"
)

// StripePeriod is the width in pixels of one stripe at PatternScale 1.
const StripePeriod = 8.0

// Stripes overlays dark stripes on pixels dominated by a channel: diagonal
// for red, anti-diagonal for green and horizontal for blue. The darkening is
// proportional to the channel's intensity and to how much the channel
// dominates the other two, so neutral colors are never striped.
type Stripes struct {
	cfg config.StripeConfig
}

// NewStripes creates the stripe overlay.
func NewStripes(cfg config.StripeConfig) (*Stripes, error) {
	s := &Stripes{}
	if err := s.SetConfig(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

// SetConfig updates the stripes in place. It must not be called concurrently
// with Apply.
func (s *Stripes) SetConfig(cfg config.StripeConfig) error {
	if cfg.Red < 0 || cfg.Green < 0 || cfg.Blue < 0 || cfg.PatternScale <= 0 {
		return fmt.Errorf("stripes %+v: %w", cfg, config.ErrInvalid)
	}
	s.cfg = cfg
	return nil
}

// Config returns the current configuration.
func (s *Stripes) Config() config.StripeConfig { return s.cfg }

func (s *Stripes) String() string { return "stripes" }

// Apply implements Filter. The configuration is captured at call time.
func (s *Stripes) Apply(img image.Image) image.Image {
	cfg := s.cfg
	if cfg.IsPassthrough() {
		return img
	}
	period := StripePeriod * cfg.PatternScale
	return &filterImage{img, func(x, y int, under color.Color) color.Color {
		return stripeAt(cfg, period, x, y, under)
	}}
}

func onStripe(pos, period float64) bool {
	return math.Mod(math.Abs(pos), 2*period) < period
}

// dominance of channel ch over the other two, in [0, 1].
func dominance(c mgl64.Vec3, ch int) float64 {
	return clamp01(c[ch] - math.Max(c[(ch+1)%3], c[(ch+2)%3]))
}

func stripeAt(cfg config.StripeConfig, period float64, x, y int, under color.Color) color.Color {
	fx, fy := float64(x), float64(y)
	red := cfg.Red > 0 && onStripe(fx+fy, period)
	green := cfg.Green > 0 && onStripe(fx-fy, period)
	blue := cfg.Blue > 0 && onStripe(fy, period)
	if !red && !green && !blue {
		return under
	}

	nc := color.NRGBAModel.Convert(under).(color.NRGBA)
	c := Vec3ToLinear(mgl64.Vec3{float64(nc.R) / 255, float64(nc.G) / 255, float64(nc.B) / 255})
	var darken float64
	if red {
		darken = math.Max(darken, cfg.Red*dominance(c, 0))
	}
	if green {
		darken = math.Max(darken, cfg.Green*dominance(c, 1))
	}
	if blue {
		darken = math.Max(darken, cfg.Blue*dominance(c, 2))
	}
	if darken <= 0 {
		return under
	}
	c = Vec3ToSRGB(c.Mul(1 - clamp01(darken)))
	return color.NRGBA{
		R: uint8(math.Round(c[0] * 255)),
		G: uint8(math.Round(c[1] * 255)),
		B: uint8(math.Round(c[2] * 255)),
		A: nc.A,
	}
}
