package chain

import (
	"github.com/golang/glog"

	"github.com/janpfeifer/daltonview/config"
	"github.com/janpfeifer/daltonview/filters"
)

// StageKind identifies a stage. Stages are always applied in the order of
// their kinds.
type StageKind int

const (
	StripesStage StageKind = iota
	HueAdjustStage
	InvertStage
	VibrancyStage
	VisionStage
)

var stageNames = [...]string{"stripes", "hue_adjust", "invert", "vibrancy", "vision"}

func (k StageKind) String() string {
	if k < 0 || int(k) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[k]
}

// Stage is one active filter of the chain.
type Stage struct {
	Kind   StageKind
	Filter filters.Filter

	// Failed is set when the filter could not be constructed. The stage then
	// acts as the identity.
	Failed bool
}

// stageSet holds the active stages. A nil entry is an absent stage.
type stageSet struct {
	byKind [VisionStage + 1]*Stage

	// reported failures, by stage and cause.
	reported map[string]bool
}

func (s *stageSet) reportFailure(kind StageKind, err error) {
	key := kind.String() + ": " + err.Error()
	if s.reported[key] {
		return
	}
	if s.reported == nil {
		s.reported = make(map[string]bool)
	}
	s.reported[key] = true
	glog.Errorf("Failed to create %s filter, it will be skipped: %+v", kind, err)
}

// newStage builds a stage. Construction errors produce an identity stage.
func (s *stageSet) newStage(kind StageKind, build func() (filters.Filter, error)) *Stage {
	f, err := build()
	if err != nil {
		s.reportFailure(kind, err)
		return &Stage{Kind: kind, Filter: filters.Identity, Failed: true}
	}
	if f == nil {
		return nil
	}
	return &Stage{Kind: kind, Filter: f}
}

func infallible(ctor func() filters.Filter) func() (filters.Filter, error) {
	return func() (filters.Filter, error) { return ctor(), nil }
}

// toggle creates or removes a stage whose filter has no parameters.
func (s *stageSet) toggle(kind StageKind, want bool, ctor func() filters.Filter) {
	switch {
	case want && s.byKind[kind] == nil:
		s.byKind[kind] = s.newStage(kind, infallible(ctor))
	case !want:
		s.byKind[kind] = nil
	}
}

// update moves the stages from realizing prev to realizing next, touching
// only what changed. It must be called with the chain's stage lock held.
func (s *stageSet) update(prev, next config.Filter, initial bool) {
	simulationChanged := next.Simulation != prev.Simulation && next.Vision.HasSimulations()
	if initial || next.Vision != prev.Vision || simulationChanged {
		s.byKind[VisionStage] = s.newStage(VisionStage, func() (filters.Filter, error) {
			return filters.NewVision(next.Vision, next.Simulation)
		})
	}

	switch stripes := s.byKind[StripesStage]; {
	case next.Stripes.IsPassthrough():
		s.byKind[StripesStage] = nil
	case stripes != nil && !stripes.Failed:
		if err := stripes.Filter.(*filters.Stripes).SetConfig(next.Stripes); err != nil {
			s.reportFailure(StripesStage, err)
			s.byKind[StripesStage] = &Stage{Kind: StripesStage, Filter: filters.Identity, Failed: true}
		}
	case stripes == nil || next.Stripes != prev.Stripes:
		s.byKind[StripesStage] = s.newStage(StripesStage, func() (filters.Filter, error) {
			return filters.NewStripes(next.Stripes)
		})
	}

	// Inverting also flips hues, which hue adjust then restores.
	s.toggle(InvertStage, next.InvertLuminance, filters.InvertLuminance)
	s.toggle(HueAdjustStage, next.HueShift != next.InvertLuminance, filters.HueAdjust)
	s.toggle(VibrancyStage, next.ColorBoost, filters.Vibrancy)
}

// active returns the present stages in apply order.
func (s *stageSet) active() []Stage {
	stages := make([]Stage, 0, len(s.byKind))
	for _, st := range s.byKind {
		if st != nil {
			stages = append(stages, *st)
		}
	}
	return stages
}
