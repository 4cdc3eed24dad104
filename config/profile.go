package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is the on-disk YAML form of a Filter. Enumerations are stored by
// their Key so files stay readable.
type Profile struct {
	Name       string `yaml:"name,omitempty"`
	Vision     string `yaml:"vision,omitempty"`
	Simulation string `yaml:"simulation,omitempty"`
	Stripes    struct {
		Red          float64 `yaml:"red,omitempty"`
		Green        float64 `yaml:"green,omitempty"`
		Blue         float64 `yaml:"blue,omitempty"`
		PatternScale float64 `yaml:"pattern_scale,omitempty"`
	} `yaml:"stripes,omitempty"`
	HueShift        bool `yaml:"hue_shift,omitempty"`
	InvertLuminance bool `yaml:"invert_luminance,omitempty"`
	ColorBoost      bool `yaml:"color_boost,omitempty"`
}

// Filter converts the profile, filling in defaults for omitted fields.
func (p *Profile) Filter() (Filter, error) {
	f := Default()
	var err error
	if p.Vision != "" {
		if f.Vision, err = ParseVision(p.Vision); err != nil {
			return Default(), err
		}
	}
	if p.Simulation != "" {
		if f.Simulation, err = ParseSimulation(p.Simulation); err != nil {
			return Default(), err
		}
	}
	f.Stripes.Red = p.Stripes.Red
	f.Stripes.Green = p.Stripes.Green
	f.Stripes.Blue = p.Stripes.Blue
	if p.Stripes.PatternScale != 0 {
		f.Stripes.PatternScale = p.Stripes.PatternScale
	}
	f.HueShift = p.HueShift
	f.InvertLuminance = p.InvertLuminance
	f.ColorBoost = p.ColorBoost
	if err = f.Validate(); err != nil {
		return Default(), err
	}
	return f, nil
}

// ProfileOf converts f to its YAML form.
func ProfileOf(name string, f Filter) *Profile {
	p := &Profile{
		Name:            name,
		Vision:          f.Vision.Key(),
		Simulation:      f.Simulation.String(),
		HueShift:        f.HueShift,
		InvertLuminance: f.InvertLuminance,
		ColorBoost:      f.ColorBoost,
	}
	p.Stripes.Red = f.Stripes.Red
	p.Stripes.Green = f.Stripes.Green
	p.Stripes.Blue = f.Stripes.Blue
	p.Stripes.PatternScale = f.Stripes.PatternScale
	return p
}

// ReadProfile decodes a YAML profile from r.
func ReadProfile(r io.Reader) (Filter, error) {
	var p Profile
	if err := yaml.NewDecoder(r).Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Default(), fmt.Errorf("failed to parse profile: %w", err)
	}
	return p.Filter()
}

// WriteProfile encodes f as a YAML profile to w.
func WriteProfile(w io.Writer, name string, f Filter) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(ProfileOf(name, f)); err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	return enc.Close()
}

// LoadProfile reads a filter profile. A missing file is not an error: it
// returns Default().
func LoadProfile(path string) (Filter, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("failed to read profile %q: %w", path, err)
	}
	defer func() { _ = file.Close() }()
	f, err := ReadProfile(file)
	if err != nil {
		return Default(), fmt.Errorf("profile %q: %w", path, err)
	}
	return f, nil
}

// SaveProfile writes f to path.
func SaveProfile(path, name string, f Filter) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to write profile %q: %w", path, err)
	}
	if err := WriteProfile(file, name, f); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write profile %q: %w", path, err)
	}
	return nil
}
