package live

import (
	"image"
	"sync"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janpfeifer/daltonview/capture"
	"github.com/janpfeifer/daltonview/config"
)

func TestParseRegion(t *testing.T) {
	r, err := ParseRegion(" 10, 20,300,200 ")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(10, 20, 310, 220), r)
	assert.Equal(t, "10,20,300,200", FormatRegion(r))

	r, err = ParseRegion("")
	require.NoError(t, err)
	assert.True(t, r.Empty())

	for _, bad := range []string{"1,2,3", "a,b,c,d", "0,0,0,10", "0,0,10,-1"} {
		_, err := ParseRegion(bad)
		assert.Error(t, err, bad)
	}
}

func TestSurface(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	s := NewSurface(4, 3)
	require.NoError(t, s.Ready())
	w, h := s.Size()
	assert.Equal(t, []int{4, 3}, []int{w, h})

	var resizes [][2]int
	s.onResize = func(w, h int) { resizes = append(resizes, [2]int{w, h}) }

	// Nothing presented yet: placeholder.
	img := s.draw(4, 3)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())
	assert.Empty(t, resizes)

	frame := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	s.Submit(frame)
	assert.NotSame(t, frame, s.draw(4, 3), "submitted but not presented")
	s.Present()
	assert.Same(t, frame, s.draw(4, 3))

	s.draw(8, 6)
	assert.Equal(t, [][2]int{{8, 6}}, resizes)
	w, h = s.Size()
	assert.Equal(t, []int{8, 6}, []int{w, h})
}

func testView(t *testing.T, region image.Rectangle) *View {
	app := test.NewApp()
	t.Cleanup(app.Quit)
	v := NewView(NewSurface(10, 10), region)
	v.displays = func() []image.Rectangle {
		return []image.Rectangle{image.Rect(0, 0, 1920, 1080), image.Rect(1920, 0, 3840, 1080)}
	}
	return v
}

func TestViewGeometry(t *testing.T) {
	region := image.Rect(100, 50, 300, 150)
	v := testView(t, region)
	g := v.Geometry()
	assert.Equal(t, image.Rect(100, 930, 300, 1030), g.View)
	assert.Equal(t, image.Rect(0, 0, 1920, 1080), g.Display)
	assert.Equal(t, 1080, g.PrimaryHeight)
	assert.Greater(t, g.WindowID, int64(0))
	assert.False(t, g.PointerKnown)

	// Round trip to a source request: back to the configured region.
	rect, ok := capture.CaptureArea(config.UnderWindow, g)
	require.True(t, ok)
	req := capture.NewRequest(rect, g, config.NormalSpeed)
	assert.Equal(t, region, req.Rect)

	// Second display.
	v.SetRegion(image.Rect(2000, 10, 2100, 110))
	g = v.Geometry()
	assert.Equal(t, image.Rect(1920, 0, 3840, 1080), g.Display)
	rect, ok = capture.CaptureArea(config.UnderWindow, g)
	require.True(t, ok)
	req = capture.NewRequest(rect, g, config.NormalSpeed)
	assert.Equal(t, image.Rect(80, 10, 180, 110), req.Rect)
	assert.Equal(t, image.Rect(1920, 0, 3840, 1080), req.Display)
}

func TestViewDefaultRegion(t *testing.T) {
	v := testView(t, image.Rectangle{})
	assert.Equal(t, image.Rectangle{Max: DefaultRegionSize}, v.CaptureRegion())
	assert.Equal(t, DefaultRegionSize, v.Geometry().View.Size())
}

type eventLog struct {
	mu     sync.Mutex
	events []capture.EventKind
}

func (l *eventLog) add(e capture.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e.Kind)
}

func (l *eventLog) get() []capture.EventKind {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]capture.EventKind(nil), l.events...)
}

func TestViewEvents(t *testing.T) {
	v := testView(t, image.Rect(0, 0, 100, 100))
	v.debounce = 20 * time.Millisecond
	log := &eventLog{}
	unsubscribe := v.Subscribe(log.add)
	defer unsubscribe()

	v.SetRegion(image.Rect(0, 0, 100, 100))
	assert.Empty(t, log.get(), "same region")
	v.SetRegion(image.Rect(10, 0, 110, 100))
	assert.Equal(t, []capture.EventKind{capture.Moved}, log.get())

	v.surface.draw(20, 20)
	v.surface.draw(30, 30)
	v.surface.draw(40, 40)
	assert.Eventually(t, func() bool { return len(log.get()) == 3 }, time.Second, 5*time.Millisecond)
	time.Sleep(3 * v.debounce)
	assert.Equal(t, []capture.EventKind{capture.Moved, capture.LiveResizeStarted, capture.LiveResizeEnded}, log.get())
}

func TestNewSource(t *testing.T) {
	for _, kind := range []string{"", "list", "stream", "camera"} {
		src, err := NewSource(kind, 0)
		require.NoError(t, err, kind)
		assert.NotNil(t, src)
	}
	_, err := NewSource("carrier-pigeon", 0)
	assert.Error(t, err)
}

func TestAppFilterMenus(t *testing.T) {
	fyneApp := test.NewApp()
	defer fyneApp.Quit()
	speed := config.Fast
	a, err := New(fyneApp, Options{Source: "list", Region: image.Rect(0, 0, 64, 48), Speed: &speed})
	require.NoError(t, err)
	defer a.Stop()

	assert.Equal(t, config.Default(), a.Filter())
	assert.True(t, a.menus.visions[config.Normal].Checked)
	assert.True(t, a.menus.speeds[config.Fast].Checked)
	assert.Equal(t, "DaltonView: Normal Vision", a.Win.Title())

	a.editFilter(func(f *config.Filter) { toggleStripe(&f.Stripes.Red) })()
	a.editFilter(func(f *config.Filter) { f.Vision = config.Deutan })()
	want := config.Default()
	want.Vision = config.Deutan
	want.Stripes.Red = StripeIntensity
	assert.Equal(t, want, a.Filter())
	assert.True(t, a.menus.red.Checked)
	assert.True(t, a.menus.visions[config.Deutan].Checked)
	assert.False(t, a.menus.visions[config.Normal].Checked)
	assert.Equal(t, "DaltonView: Deuteranopia, Red Stripes", a.Win.Title())

	a.chain.Flush()
	assert.Equal(t, want, a.chain.Configuration())
	assert.Equal(t, want, config.NewStore(fyneApp.Preferences()).Read())

	// Invalid configurations are ignored.
	bad := want
	bad.Stripes.PatternScale = -1
	a.SetFilter(bad)
	assert.Equal(t, want, a.Filter())

	a.SetViewArea(config.MousePointer)
	assert.True(t, a.menus.areas[config.MousePointer].Checked)
	assert.Equal(t, config.MousePointer, config.NewStore(fyneApp.Preferences()).ViewArea())
}
