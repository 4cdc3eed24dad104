// Package config holds the value types that describe what the filter chain
// and the capture scheduler should do, plus their persistence.
package config

import (
	"fmt"
	"strings"
)

// VisionType is the color vision being simulated.
type VisionType int

const (
	Normal VisionType = iota
	Deutan
	Deuteranomaly
	Protan
	Protanomaly
	Tritan
	Tritanomaly
	Achromatopsia
	BlueConeMonochromat
	MonochromeAnalogTV
)

// AllVisions lists every VisionType in menu order.
var AllVisions = []VisionType{
	Normal, Deutan, Deuteranomaly, Protan, Protanomaly, Tritan, Tritanomaly,
	Achromatopsia, BlueConeMonochromat, MonochromeAnalogTV,
}

var visionNames = map[VisionType][3]string{
	// key, display name, description
	Normal:              {"normal", "Normal Vision", "Trichromatic: red, green, and blue cones"},
	Deutan:              {"deutan", "Deuteranopia", "No green cones"},
	Deuteranomaly:       {"deuteranomaly", "Deuteranomaly", "Anomalous green cones"},
	Protan:              {"protan", "Protanopia", "No red cones"},
	Protanomaly:         {"protanomaly", "Protanomaly", "Anomalous red cones"},
	Tritan:              {"tritan", "Tritanopia", "No blue cones"},
	Tritanomaly:         {"tritanomaly", "Tritanomaly", "Anomalous blue cones"},
	Achromatopsia:       {"achromatopsia", "Achromatopsia", "Absent or non-functioning cones"},
	BlueConeMonochromat: {"bluecone", "Blue Cone Monochromacy", "Only blue cones and rods"},
	MonochromeAnalogTV:  {"analogtv", "Monochrome Analog TV", "Black and white television"},
}

// Valid reports whether v is one of the known vision types.
func (v VisionType) Valid() bool {
	_, ok := visionNames[v]
	return ok
}

// Key is the stable lower-case name used by flags and profiles.
func (v VisionType) Key() string {
	if n, ok := visionNames[v]; ok {
		return n[0]
	}
	return fmt.Sprintf("vision(%d)", int(v))
}

// Name returns the human readable name, e.g. "Deuteranopia".
func (v VisionType) Name() string {
	if n, ok := visionNames[v]; ok {
		return n[1]
	}
	return v.Key()
}

// Description returns a one line explanation of the vision type.
func (v VisionType) Description() string {
	if n, ok := visionNames[v]; ok {
		return n[2]
	}
	return ""
}

func (v VisionType) String() string { return v.Key() }

// IsMonochrome reports whether the vision type collapses all hues.
func (v VisionType) IsMonochrome() bool {
	return v == Achromatopsia || v == BlueConeMonochromat || v == MonochromeAnalogTV
}

// HasSimulations reports whether the Simulation setting changes how v is
// realized. Normal vision, blue cone monochromacy and analog TV have a single
// model.
func (v VisionType) HasSimulations() bool {
	switch v {
	case Normal, BlueConeMonochromat, MonochromeAnalogTV:
		return false
	}
	return v.Valid()
}

// ParseVision converts a Key back to a VisionType.
func ParseVision(s string) (VisionType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for v, n := range visionNames {
		if n[0] == s {
			return v, nil
		}
	}
	return Normal, fmt.Errorf("unknown vision type %q: %w", s, ErrInvalid)
}

// Simulation selects the numeric model used to realize a VisionType.
type Simulation int

const (
	Machado Simulation = iota
	HCIRN
)

func (s Simulation) String() string {
	switch s {
	case Machado:
		return "machado"
	case HCIRN:
		return "hcirn"
	}
	return fmt.Sprintf("simulation(%d)", int(s))
}

// Valid reports whether s is a known simulation.
func (s Simulation) Valid() bool { return s == Machado || s == HCIRN }

// ParseSimulation converts "machado" or "hcirn" to a Simulation.
func ParseSimulation(s string) (Simulation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "machado":
		return Machado, nil
	case "hcirn", "wickline":
		return HCIRN, nil
	}
	return Machado, fmt.Errorf("unknown simulation %q: %w", s, ErrInvalid)
}
