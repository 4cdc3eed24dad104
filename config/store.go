package config

import (
	"fyne.io/fyne/v2"
	"github.com/golang/glog"
)

// Preference keys, shared with earlier releases so settings survive upgrades.
const (
	VisionPreference          = "VisionType"
	SimulationPreference      = "SimulationKey"
	RedStripesPreference      = "RedStripes"
	GreenStripesPreference    = "GreenStripes"
	BlueStripesPreference     = "BlueStripes"
	PatternScalePreference    = "PatternScale"
	InvertLuminancePreference = "InvertLuminance"
	HueShiftPreference        = "HueShift"
	ColorBoostPreference      = "ColorBoost"
	RefreshSpeedPreference    = "RefreshSpeed"
	ViewAreaPreference        = "ViewArea"
)

// Store persists configuration in the application preferences.
type Store struct {
	prefs fyne.Preferences
}

// NewStore wraps prefs, typically fyne.App.Preferences().
func NewStore(prefs fyne.Preferences) *Store {
	return &Store{prefs: prefs}
}

// Read returns the stored filter configuration. Missing or invalid entries
// fall back to Default().
func (s *Store) Read() Filter {
	f := Default()
	p := s.prefs
	if v := VisionType(p.IntWithFallback(VisionPreference, int(f.Vision))); v.Valid() {
		f.Vision = v
	}
	if sim := Simulation(p.IntWithFallback(SimulationPreference, int(f.Simulation))); sim.Valid() {
		f.Simulation = sim
	}
	f.Stripes.Red = p.Float(RedStripesPreference)
	f.Stripes.Green = p.Float(GreenStripesPreference)
	f.Stripes.Blue = p.Float(BlueStripesPreference)
	f.Stripes.PatternScale = p.FloatWithFallback(PatternScalePreference, DefaultPatternScale)
	f.InvertLuminance = p.Bool(InvertLuminancePreference)
	f.HueShift = p.Bool(HueShiftPreference)
	f.ColorBoost = p.Bool(ColorBoostPreference)
	if err := f.Validate(); err != nil {
		glog.Warningf("Stored filter configuration is invalid, using defaults: %s", err)
		return Default()
	}
	return f
}

// Write stores f.
func (s *Store) Write(f Filter) {
	p := s.prefs
	p.SetInt(VisionPreference, int(f.Vision))
	p.SetInt(SimulationPreference, int(f.Simulation))
	p.SetFloat(RedStripesPreference, f.Stripes.Red)
	p.SetFloat(GreenStripesPreference, f.Stripes.Green)
	p.SetFloat(BlueStripesPreference, f.Stripes.Blue)
	p.SetFloat(PatternScalePreference, f.Stripes.PatternScale)
	p.SetBool(InvertLuminancePreference, f.InvertLuminance)
	p.SetBool(HueShiftPreference, f.HueShift)
	p.SetBool(ColorBoostPreference, f.ColorBoost)
}

// RefreshSpeed returns the stored refresh speed, NormalSpeed if unset.
func (s *Store) RefreshSpeed() RefreshSpeed {
	r := RefreshSpeed(s.prefs.IntWithFallback(RefreshSpeedPreference, int(NormalSpeed)))
	if r < Slow || r > Fast {
		return NormalSpeed
	}
	return r
}

// SetRefreshSpeed stores r.
func (s *Store) SetRefreshSpeed(r RefreshSpeed) {
	s.prefs.SetInt(RefreshSpeedPreference, int(r))
}

// ViewArea returns the stored capture area, UnderWindow if unset.
func (s *Store) ViewArea() ViewArea {
	if ViewArea(s.prefs.Int(ViewAreaPreference)) == MousePointer {
		return MousePointer
	}
	return UnderWindow
}

// SetViewArea stores a.
func (s *Store) SetViewArea(a ViewArea) {
	s.prefs.SetInt(ViewAreaPreference, int(a))
}
