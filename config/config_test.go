package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsUnalteredIdentity(t *testing.T) {
	assert.True(t, Default().IsUnalteredIdentity())

	for name, mutate := range map[string]func(*Filter){
		"vision":      func(f *Filter) { f.Vision = Deutan },
		"red stripes": func(f *Filter) { f.Stripes.Red = 1 },
		"blue stripe": func(f *Filter) { f.Stripes.Blue = 0.2 },
		"hue":         func(f *Filter) { f.HueShift = true },
		"invert":      func(f *Filter) { f.InvertLuminance = true },
		"boost":       func(f *Filter) { f.ColorBoost = true },
	} {
		f := Default()
		mutate(&f)
		assert.False(t, f.IsUnalteredIdentity(), name)
	}

	// Only the pattern scale or the algorithm changed: still identity.
	f := Default()
	f.Stripes.PatternScale = 3
	f.Simulation = HCIRN
	assert.True(t, f.IsUnalteredIdentity())
}

func TestEqualAndCopy(t *testing.T) {
	a := Default()
	b := a
	b.Stripes.PatternScale = 2
	assert.False(t, a.Equal(b))
	assert.Equal(t, DefaultPatternScale, a.Stripes.PatternScale, "copy must not alias")
	b.Stripes.PatternScale = a.Stripes.PatternScale
	assert.True(t, a.Equal(b))
}

func TestValidate(t *testing.T) {
	require.NoError(t, Default().Validate())

	f := Default()
	f.Stripes.Green = -1
	assert.ErrorIs(t, f.Validate(), ErrInvalid)

	f = Default()
	f.Stripes.PatternScale = 0
	assert.ErrorIs(t, f.Validate(), ErrInvalid)

	f = Default()
	f.Vision = VisionType(42)
	assert.ErrorIs(t, f.Validate(), ErrInvalid)
}

func TestDescription(t *testing.T) {
	assert.Equal(t, "Normal Vision", Default().Description())

	f := Default()
	f.HueShift = true
	f.Stripes.Red = 1
	assert.Equal(t, "Red Stripes, Hue Shift", f.Description())

	f.Vision = Deutan
	assert.Equal(t, "Deuteranopia, Red Stripes, Hue Shift", f.Description())
}

func TestParse(t *testing.T) {
	for _, v := range AllVisions {
		got, err := ParseVision(v.Key())
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
	_, err := ParseVision("martian")
	assert.ErrorIs(t, err, ErrInvalid)

	sim, err := ParseSimulation("HCIRN")
	require.NoError(t, err)
	assert.Equal(t, HCIRN, sim)

	speed, err := ParseRefreshSpeed("slow")
	require.NoError(t, err)
	assert.Equal(t, Slow, speed)

	area, err := ParseViewArea("pointer")
	require.NoError(t, err)
	assert.Equal(t, MousePointer, area)
}

func TestRefreshSpeed(t *testing.T) {
	assert.Equal(t, 10, Slow.FrameSkips())
	assert.Equal(t, 3, NormalSpeed.FrameSkips())
	assert.Equal(t, 0, Fast.FrameSkips())
	assert.Equal(t, time.Duration(0), Fast.MinimumFrameInterval())
	assert.Greater(t, Slow.MinimumFrameInterval(), NormalSpeed.MinimumFrameInterval())
}

func TestStoreRoundTrip(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()
	store := NewStore(app.Preferences())

	assert.Equal(t, Default(), store.Read(), "empty preferences read as defaults")

	f := Filter{
		Vision:          Tritanomaly,
		Simulation:      HCIRN,
		Stripes:         StripeConfig{Red: 1, Blue: 0.5, PatternScale: 2},
		InvertLuminance: true,
		ColorBoost:      true,
	}
	store.Write(f)
	assert.Equal(t, f, store.Read())

	assert.Equal(t, NormalSpeed, store.RefreshSpeed())
	store.SetRefreshSpeed(Slow)
	assert.Equal(t, Slow, store.RefreshSpeed())

	assert.Equal(t, UnderWindow, store.ViewArea())
	store.SetViewArea(MousePointer)
	assert.Equal(t, MousePointer, store.ViewArea())
}

func TestStoreRejectsInvalid(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()
	prefs := app.Preferences()
	prefs.SetFloat(RedStripesPreference, -3)
	prefs.SetInt(VisionPreference, int(Protan))
	assert.Equal(t, Default(), NewStore(prefs).Read())
}

func TestProfiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deutan.yaml")

	f, err := LoadProfile(path)
	require.NoError(t, err, "missing profile is not an error")
	assert.Equal(t, Default(), f)

	want := Default()
	want.Vision = Deuteranomaly
	want.Stripes.Green = 0.75
	want.HueShift = true
	require.NoError(t, SaveProfile(path, "deutan", want))
	got, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("vision: protan\nstripes:\n  red: -1\n"), 0o644))
	_, err = LoadProfile(bad)
	assert.ErrorIs(t, err, ErrInvalid)

	garbage := filepath.Join(dir, "garbage.yaml")
	require.NoError(t, os.WriteFile(garbage, []byte("vision: [unterminated"), 0o644))
	_, err = LoadProfile(garbage)
	assert.Error(t, err)
}
