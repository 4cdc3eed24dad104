package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid is returned for configuration values out of their valid range.
var ErrInvalid = errors.New("invalid configuration")

// StripeConfig controls the stripe overlay aid. Each intensity is >= 0, and 0
// means that channel's stripes are off.
type StripeConfig struct {
	Red, Green, Blue float64

	// PatternScale multiplies the stripe period. Must be > 0.
	PatternScale float64
}

// DefaultPatternScale is used when a configuration leaves PatternScale unset.
const DefaultPatternScale = 1.0

// IsPassthrough is true when no stripes are drawn at all.
func (s StripeConfig) IsPassthrough() bool {
	return s.Red == 0 && s.Green == 0 && s.Blue == 0
}

// Filter describes the desired state of the filter chain. It is a plain value:
// it is copied on every update and never modified in place by the chain.
type Filter struct {
	Vision     VisionType
	Simulation Simulation
	Stripes    StripeConfig

	HueShift        bool
	InvertLuminance bool
	ColorBoost      bool
}

// Default returns normal vision with no assists.
func Default() Filter {
	return Filter{
		Vision:     Normal,
		Simulation: Machado,
		Stripes:    StripeConfig{PatternScale: DefaultPatternScale},
	}
}

// IsUnalteredIdentity reports whether the configuration leaves images
// untouched, in which case the whole pipeline can be skipped.
func (f Filter) IsUnalteredIdentity() bool {
	return f.Vision == Normal && f.Stripes.IsPassthrough() &&
		!f.HueShift && !f.InvertLuminance && !f.ColorBoost
}

// Equal is structural equality.
func (f Filter) Equal(other Filter) bool {
	return f == other
}

// Validate checks ranges. It does not modify f.
func (f Filter) Validate() error {
	if !f.Vision.Valid() {
		return fmt.Errorf("vision %d: %w", int(f.Vision), ErrInvalid)
	}
	if !f.Simulation.Valid() {
		return fmt.Errorf("simulation %d: %w", int(f.Simulation), ErrInvalid)
	}
	s := f.Stripes
	if s.Red < 0 || s.Green < 0 || s.Blue < 0 {
		return fmt.Errorf("stripe intensities must be >= 0, got (%g, %g, %g): %w",
			s.Red, s.Green, s.Blue, ErrInvalid)
	}
	if s.PatternScale <= 0 {
		return fmt.Errorf("stripe pattern scale must be > 0, got %g: %w", s.PatternScale, ErrInvalid)
	}
	return nil
}

// Description builds a short subtitle, e.g. "Deuteranopia, Red Stripes".
// Normal vision is omitted if any assist is on.
func (f Filter) Description() string {
	var parts []string
	if f.Stripes.Red != 0 {
		parts = append(parts, "Red Stripes")
	}
	if f.Stripes.Green != 0 {
		parts = append(parts, "Green Stripes")
	}
	if f.Stripes.Blue != 0 {
		parts = append(parts, "Blue Stripes")
	}
	if f.HueShift {
		parts = append(parts, "Hue Shift")
	}
	if f.InvertLuminance {
		parts = append(parts, "Luminance Flip")
	}
	if f.ColorBoost {
		parts = append(parts, "Vibrancy Boost")
	}
	if f.Vision != Normal || len(parts) == 0 {
		parts = append([]string{f.Vision.Name()}, parts...)
	}
	return strings.Join(parts, ", ")
}
