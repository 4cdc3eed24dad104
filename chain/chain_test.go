package chain

import (
	"errors"
	"image"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janpfeifer/daltonview/config"
	"github.com/janpfeifer/daltonview/filters"
)

func redImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for ii := 0; ii < len(img.Pix); ii += 4 {
		img.Pix[ii], img.Pix[ii+3] = 255, 255
	}
	return img
}

func kinds(c *Chain) []StageKind {
	var ks []StageKind
	for _, st := range c.Stages() {
		ks = append(ks, st.Kind)
	}
	return ks
}

func configure(t *testing.T, c *Chain, f config.Filter) {
	t.Helper()
	c.SetConfiguration(f)
	c.Flush()
	require.Equal(t, f, c.Configuration())
}

func TestIdentity(t *testing.T) {
	c := New(config.Default())
	defer c.Close()
	img := redImage()
	assert.Same(t, img, c.Apply(img))
	assert.Empty(t, c.Stages())

	// Pattern scale and algorithm alone do not create stages.
	f := config.Default()
	f.Stripes.PatternScale = 4
	f.Simulation = config.HCIRN
	configure(t, c, f)
	assert.Same(t, img, c.Apply(img))
	assert.Empty(t, c.Stages())
}

func TestStageCoupling(t *testing.T) {
	c := New(config.Default())
	defer c.Close()

	f := config.Default()
	f.InvertLuminance = true
	configure(t, c, f)
	assert.Equal(t, []StageKind{HueAdjustStage, InvertStage}, kinds(c))

	f.HueShift = true
	configure(t, c, f)
	assert.Equal(t, []StageKind{InvertStage}, kinds(c))

	f.InvertLuminance = false
	configure(t, c, f)
	assert.Equal(t, []StageKind{HueAdjustStage}, kinds(c))

	f = config.Default()
	f.Vision = config.Protan
	f.ColorBoost = true
	f.Stripes.Green = 1
	configure(t, c, f)
	assert.Equal(t, []StageKind{StripesStage, VibrancyStage, VisionStage}, kinds(c))
}

func TestApplyMatchesFilter(t *testing.T) {
	f := config.Default()
	f.Vision = config.Deutan
	c := New(f)
	defer c.Close()

	vision, err := filters.NewVision(config.Deutan, config.Machado)
	require.NoError(t, err)
	want := filters.Materialize(vision.Apply(redImage()))
	assert.Equal(t, want.Pix, filters.Materialize(c.Apply(redImage())).Pix)
}

func TestPatternScaleKeepsOtherStages(t *testing.T) {
	f := config.Default()
	f.Vision = config.Deutan
	f.ColorBoost = true
	f.Stripes.Red = 1
	c := New(f)
	defer c.Close()
	before := c.Stages()
	require.Len(t, before, 3)

	f.Stripes.PatternScale = 2
	configure(t, c, f)
	after := c.Stages()
	require.Len(t, after, 3)
	for ii := range before {
		assert.Same(t, before[ii].Filter, after[ii].Filter, "stage %s", before[ii].Kind)
	}
	assert.Equal(t, 2.0, after[0].Filter.(*filters.Stripes).Config().PatternScale)

	// Changing the algorithm rebuilds only the vision stage.
	f.Simulation = config.HCIRN
	configure(t, c, f)
	rebuilt := c.Stages()
	assert.Same(t, after[0].Filter, rebuilt[0].Filter)
	assert.Same(t, after[1].Filter, rebuilt[1].Filter)
	assert.NotSame(t, after[2].Filter, rebuilt[2].Filter)

	// Stripes off and on again: a new stripes stage.
	f.Stripes.Red = 0
	configure(t, c, f)
	assert.Equal(t, []StageKind{VibrancyStage, VisionStage}, kinds(c))
	f.Stripes.Blue = 0.5
	configure(t, c, f)
	assert.Equal(t, []StageKind{StripesStage, VibrancyStage, VisionStage}, kinds(c))
}

func TestSimulationOnlyRebuildsWhereItMatters(t *testing.T) {
	for _, v := range []config.VisionType{config.BlueConeMonochromat, config.MonochromeAnalogTV} {
		f := config.Default()
		f.Vision = v
		c := New(f)
		before := c.Stages()
		require.Len(t, before, 1, v.Key())
		f.Simulation = config.HCIRN
		configure(t, c, f)
		after := c.Stages()
		require.Len(t, after, 1, v.Key())
		assert.Same(t, before[0].Filter, after[0].Filter, v.Key())
		c.Close()
	}

	f := config.Default()
	f.Vision = config.Protan
	c := New(f)
	defer c.Close()
	before := c.Stages()
	f.Simulation = config.HCIRN
	configure(t, c, f)
	assert.NotSame(t, before[0].Filter, c.Stages()[0].Filter)

	assert.False(t, config.Normal.HasSimulations())
	assert.True(t, config.Achromatopsia.HasSimulations())
	assert.False(t, config.VisionType(42).HasSimulations())
}

func TestFailedStageIsIdentity(t *testing.T) {
	var set stageSet
	build := func() (filters.Filter, error) { return nil, errors.New("no device") }
	st := set.newStage(VisionStage, build)
	require.NotNil(t, st)
	assert.True(t, st.Failed)
	set.newStage(VisionStage, build)
	assert.Len(t, set.reported, 1, "the same failure is reported once")

	f := config.Default()
	f.Vision = config.Tritan
	c := New(f)
	defer c.Close()
	c.mu.Lock()
	c.stages.byKind[VisionStage] = st
	c.mu.Unlock()

	img := redImage()
	assert.Same(t, img, c.Apply(img))
	assert.Equal(t, []StageKind{VisionStage}, kinds(c))
}

func TestCoalescing(t *testing.T) {
	c := New(config.Default())
	defer c.Close()

	var last config.Filter
	for ii := 0; ii < 100; ii++ {
		last = config.Default()
		last.Vision = config.AllVisions[ii%len(config.AllVisions)]
		last.Stripes.PatternScale = float64(ii + 1)
		last.Stripes.Red = 1
		c.SetConfiguration(last)
	}
	c.Flush()
	assert.Equal(t, last, c.Configuration())
}

func TestInvalidConfigurationIgnored(t *testing.T) {
	c := New(config.Filter{Vision: config.VisionType(77)})
	defer c.Close()
	assert.Equal(t, config.Default(), c.Configuration())

	bad := config.Default()
	bad.Stripes.PatternScale = -1
	c.SetConfiguration(bad)
	c.Flush()
	assert.Equal(t, config.Default(), c.Configuration())
}

func TestConcurrentApplyAndConfigure(t *testing.T) {
	c := New(config.Default())
	defer c.Close()

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ii := 0; ii < 50; ii++ {
				out := c.Apply(redImage())
				assert.Equal(t, image.Rect(0, 0, 16, 16), out.Bounds())
			}
		}()
	}
	for ii := 0; ii < 50; ii++ {
		f := config.Default()
		f.Vision = config.AllVisions[ii%len(config.AllVisions)]
		f.InvertLuminance = ii%2 == 0
		f.HueShift = ii%3 == 0
		f.Stripes.Blue = float64(ii % 2)
		c.SetConfiguration(f)
	}
	wg.Wait()
	c.Flush()

	final := c.Configuration()
	_, hasInvert := stageKinds(c)[InvertStage]
	assert.Equal(t, final.InvertLuminance, hasInvert)
}

func stageKinds(c *Chain) map[StageKind]bool {
	m := make(map[StageKind]bool)
	for _, k := range kinds(c) {
		m[k] = true
	}
	return m
}

func TestClose(t *testing.T) {
	c := New(config.Default())
	c.Close()
	c.Close()

	f := config.Default()
	f.ColorBoost = true
	c.SetConfiguration(f)
	c.Flush()
	assert.Equal(t, config.Default(), c.Configuration())

	// Apply keeps working with the last stages.
	img := redImage()
	assert.Same(t, img, c.Apply(img))
}
