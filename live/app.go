// Package live implements the application window: it ties the capture
// scheduler, the filter chain and the renderer to a fyne window with menus
// to configure them.
package live

import (
	"fmt"
	"image"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/golang/glog"

	"github.com/janpfeifer/daltonview/capture"
	"github.com/janpfeifer/daltonview/capture/camera"
	"github.com/janpfeifer/daltonview/chain"
	"github.com/janpfeifer/daltonview/config"
	"github.com/janpfeifer/daltonview/export"
	"github.com/janpfeifer/daltonview/render"
)

// AppID is the fyne application id, which also names the preferences.
const AppID = "DaltonView"

// StatsPeriod is how often statistics are logged, with -v=1.
const StatsPeriod = 10 * time.Second

// Options configure the application. Nil pointers use the stored
// preferences.
type Options struct {
	// Source is one of "list", "stream" or "camera".
	Source   string
	CameraID int

	Speed *config.RefreshSpeed
	Area  *config.ViewArea

	// Region captured, in top-left origin screen pixels. Empty selects a
	// DefaultRegionSize area at the corner of the primary display.
	Region image.Rectangle

	// Profile, if set, is a YAML filter profile that overrides the stored
	// filter configuration.
	Profile string

	RefreshHz int
	Policy    render.ScalePolicy
}

// App is the running application.
type App struct {
	App fyne.App
	Win fyne.Window

	opts  Options
	store *config.Store

	// filter, speed and area are only used from the fyne goroutine.
	filter config.Filter
	speed  config.RefreshSpeed
	area   config.ViewArea

	chain     *chain.Chain
	surface   *Surface
	view      *View
	renderer  *render.Renderer
	source    capture.FrameSource
	scheduler *capture.Scheduler
	captureDriver, renderDriver *capture.Ticker

	status *widget.Label
	menus  *menus

	stopOnce sync.Once
	done     chan struct{}
}

// Run creates the application and blocks until it quits.
func Run(opts Options) error {
	a, err := New(app.NewWithID(AppID), opts)
	if err != nil {
		return err
	}
	a.Win.Show()
	a.Start()
	a.App.Run()
	a.Stop()
	return nil
}

// NewSource creates the frame source named by kind.
func NewSource(kind string, cameraID int) (capture.FrameSource, error) {
	switch kind {
	case "list", "":
		return capture.NewListSource(nil), nil
	case "stream":
		return capture.NewStreamSource(nil, nil), nil
	case "camera":
		return camera.New(cameraID, camera.OpenVideoCapture), nil
	}
	return nil, fmt.Errorf("unknown frame source %q, valid values are list, stream or camera", kind)
}

// New builds the window and the pipeline, without starting to capture.
func New(fyneApp fyne.App, opts Options) (*App, error) {
	source, err := NewSource(opts.Source, opts.CameraID)
	if err != nil {
		return nil, err
	}
	a := &App{
		App:    fyneApp,
		opts:   opts,
		store:  config.NewStore(fyneApp.Preferences()),
		source: source,
		done:   make(chan struct{}),
	}
	a.filter = a.store.Read()
	if opts.Profile != "" {
		a.filter, err = config.LoadProfile(opts.Profile)
		if err != nil {
			return nil, err
		}
		glog.Infof("Loaded profile %q: %s", opts.Profile, a.filter.Description())
	}
	a.speed = a.store.RefreshSpeed()
	if opts.Speed != nil {
		a.speed = *opts.Speed
	}
	a.area = a.store.ViewArea()
	if opts.Area != nil {
		a.area = *opts.Area
	}

	a.Win = fyneApp.NewWindow(AppID)
	a.Win.SetIcon(theme.VisibilityIcon())
	size := DefaultRegionSize
	if !opts.Region.Empty() {
		size = opts.Region.Size()
	}
	scale := a.Win.Canvas().Scale()
	a.surface = NewSurface(int(float32(size.X)*scale), int(float32(size.Y)*scale))
	a.view = NewView(a.surface, opts.Region)
	a.view.SetScale(float64(scale))

	a.chain = chain.New(a.filter)
	a.renderer, err = render.New(a.surface, a.chain, opts.Policy)
	if err != nil {
		a.chain.Close()
		return nil, err
	}
	a.captureDriver = capture.NewTicker(opts.RefreshHz)
	a.renderDriver = capture.NewTicker(opts.RefreshHz)
	a.scheduler = capture.NewScheduler(a.source, a.renderer, a.view, a.captureDriver,
		capture.WithRefreshSpeed(a.speed), capture.WithViewArea(a.area))

	a.status = widget.NewLabel("")
	a.menus = a.buildMenus()
	a.Win.SetMainMenu(a.menus.main)
	a.Win.SetContent(container.NewBorder(nil, a.status, nil, nil,
		container.NewStack(a.surface.Object(), a.view.Overlay())))
	a.Win.Resize(fyne.NewSize(float32(size.X), float32(size.Y)))
	a.registerShortcuts()
	fyneApp.Lifecycle().SetOnEnteredForeground(func() {
		a.view.Publish(capture.Event{Kind: capture.FocusChanged})
	})
	a.updateFilterUI()
	return a, nil
}

// Start begins rendering and capturing. A missing permission is not an
// error: the overlay is shown and the user can retry.
func (a *App) Start() {
	a.renderDriver.Start(func() { a.renderer.RenderTick() })
	if err := a.scheduler.Start(); err != nil {
		glog.Errorf("Failed to start capturing: %s", err)
		a.setStatus(fmt.Sprintf("Not capturing: %s", err))
	}
	go a.logStats()
}

// Stop ends capturing and rendering. It is idempotent.
func (a *App) Stop() {
	a.stopOnce.Do(func() {
		close(a.done)
		a.scheduler.Stop()
		a.renderDriver.Stop()
		a.chain.Close()
		if err := export.ClearExported(); err != nil {
			glog.Warningf("%s", err)
		}
	})
}

func (a *App) logStats() {
	ticker := time.NewTicker(StatsPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-a.done:
			return
		case <-ticker.C:
			c, r := a.scheduler.Stats(), a.renderer.Stats()
			glog.V(1).Infof("Capture %s (%s): ticks=%d attempts=%d delivered=%d discarded=%d failures=%d; "+
				"render: submitted=%d dropped=%d rendered=%d",
				c.Session, a.scheduler.State(), c.Ticks, c.Attempts, c.Delivered, c.Discarded, c.Failures,
				r.Submitted, r.Dropped, r.Rendered)
		}
	}
}

// Filter returns the current filter configuration.
func (a *App) Filter() config.Filter { return a.filter }

// SetFilter reconfigures the chain, stores f and re-renders the last frame.
// Invalid configurations are logged and ignored.
func (a *App) SetFilter(f config.Filter) {
	if err := f.Validate(); err != nil {
		glog.Errorf("Ignoring filter configuration: %s", err)
		return
	}
	if f.Equal(a.filter) {
		return
	}
	a.filter = f
	a.store.Write(f)
	a.chain.SetConfiguration(f)
	a.renderer.Invalidate()
	a.updateFilterUI()
}

// SetRefreshSpeed changes and stores the capture speed.
func (a *App) SetRefreshSpeed(speed config.RefreshSpeed) {
	a.speed = speed
	a.store.SetRefreshSpeed(speed)
	a.scheduler.SetRefreshSpeed(speed)
	a.updateCaptureUI()
}

// SetViewArea changes and stores what is captured.
func (a *App) SetViewArea(area config.ViewArea) {
	a.area = area
	a.store.SetViewArea(area)
	a.scheduler.SetViewArea(area)
	a.updateCaptureUI()
}

func (a *App) updateFilterUI() {
	a.Win.SetTitle(fmt.Sprintf("%s: %s", AppID, a.filter.Description()))
	a.status.SetText(a.filter.Vision.Description())
	a.menus.update(a)
}

func (a *App) updateCaptureUI() {
	a.menus.update(a)
}

// setStatus may be called from any goroutine.
func (a *App) setStatus(text string) {
	fyne.Do(func() { a.status.SetText(text) })
}
