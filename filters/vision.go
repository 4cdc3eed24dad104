package filters

import (
	"fmt"

	"github.com/janpfeifer/daltonview/config"
)

// NewVision creates the simulation filter for a vision type. Normal vision
// returns a nil Filter: there is nothing to apply. Algorithms only apply to
// dichromacies, anomalous trichromacies and achromatopsia; the other
// monochromacies have a single model.
func NewVision(v config.VisionType, sim config.Simulation) (Filter, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("vision %d: %w", int(v), ErrUnsupported)
	}
	switch v {
	case config.Normal:
		return nil, nil
	case config.BlueConeMonochromat:
		return BlueConeMonochromat(DefaultBlueSensitivity, 1), nil
	case config.MonochromeAnalogTV:
		return AnalogTV(), nil
	}

	switch sim {
	case config.Machado:
		if v == config.Achromatopsia {
			return Luma(BT709, 1), nil
		}
		m, found := MachadoMatrices[v]
		if !found {
			return nil, fmt.Errorf("no Machado matrix for %s: %w", v, ErrUnsupported)
		}
		return Machado(m), nil
	case config.HCIRN:
		p, err := HCIRNParamsFor(v)
		if err != nil {
			return nil, err
		}
		return HCIRN(p), nil
	}
	return nil, fmt.Errorf("simulation %d: %w", int(sim), ErrUnsupported)
}
