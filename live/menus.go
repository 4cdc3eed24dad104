package live

import (
	"fmt"
	"path"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/golang/glog"

	"github.com/janpfeifer/daltonview/clipboard"
	"github.com/janpfeifer/daltonview/config"
	"github.com/janpfeifer/daltonview/export"
)

// StripeIntensity is used when stripes are toggled on from the menu.
const StripeIntensity = 1.0

// LargeStripesScale is the pattern scale of the "Larger stripes" option.
const LargeStripesScale = 2.0

// DefaultPathPreference is the last directory used for profiles.
const DefaultPathPreference = "DefaultPath"

type menus struct {
	main *fyne.MainMenu

	visions                 map[config.VisionType]*fyne.MenuItem
	hcirn                   *fyne.MenuItem
	red, green, blue, large *fyne.MenuItem
	hue, invert, boost      *fyne.MenuItem
	speeds                  map[config.RefreshSpeed]*fyne.MenuItem
	areas                   map[config.ViewArea]*fyne.MenuItem
}

// editFilter returns a menu action applying edit to a copy of the current
// filter configuration.
func (a *App) editFilter(edit func(f *config.Filter)) func() {
	return func() {
		f := a.filter
		edit(&f)
		a.SetFilter(f)
	}
}

func toggleStripe(v *float64) {
	if *v == 0 {
		*v = StripeIntensity
	} else {
		*v = 0
	}
}

func (a *App) buildMenus() *menus {
	m := &menus{
		visions: make(map[config.VisionType]*fyne.MenuItem),
		speeds:  make(map[config.RefreshSpeed]*fyne.MenuItem),
		areas:   make(map[config.ViewArea]*fyne.MenuItem),
	}

	menuFile := fyne.NewMenu("File",
		fyne.NewMenuItem("Load profile...", func() { a.LoadProfileDialog() }),
		fyne.NewMenuItem("Save profile...", func() { a.SaveProfileDialog() }),
	) // Quit is added automatically.

	var visionItems []*fyne.MenuItem
	for _, v := range config.AllVisions {
		m.visions[v] = fyne.NewMenuItem(v.Name(), a.editFilter(func(f *config.Filter) { f.Vision = v }))
		visionItems = append(visionItems, m.visions[v])
	}
	m.hcirn = fyne.NewMenuItem("HCIRN simulation", a.editFilter(func(f *config.Filter) {
		if f.Simulation == config.HCIRN {
			f.Simulation = config.Machado
		} else {
			f.Simulation = config.HCIRN
		}
	}))
	visionItems = append(visionItems, fyne.NewMenuItemSeparator(), m.hcirn)
	menuVision := fyne.NewMenu("Vision", visionItems...)

	m.red = fyne.NewMenuItem("Red stripes", a.editFilter(func(f *config.Filter) { toggleStripe(&f.Stripes.Red) }))
	m.green = fyne.NewMenuItem("Green stripes", a.editFilter(func(f *config.Filter) { toggleStripe(&f.Stripes.Green) }))
	m.blue = fyne.NewMenuItem("Blue stripes", a.editFilter(func(f *config.Filter) { toggleStripe(&f.Stripes.Blue) }))
	m.large = fyne.NewMenuItem("Larger stripes", a.editFilter(func(f *config.Filter) {
		if f.Stripes.PatternScale == LargeStripesScale {
			f.Stripes.PatternScale = config.DefaultPatternScale
		} else {
			f.Stripes.PatternScale = LargeStripesScale
		}
	}))
	m.hue = fyne.NewMenuItem("Hue shift", a.editFilter(func(f *config.Filter) { f.HueShift = !f.HueShift }))
	m.invert = fyne.NewMenuItem("Luminance flip", a.editFilter(func(f *config.Filter) { f.InvertLuminance = !f.InvertLuminance }))
	m.boost = fyne.NewMenuItem("Vibrancy boost", a.editFilter(func(f *config.Filter) { f.ColorBoost = !f.ColorBoost }))
	menuAssist := fyne.NewMenu("Assist",
		m.red, m.green, m.blue, m.large, fyne.NewMenuItemSeparator(),
		m.hue, m.invert, m.boost)

	var captureItems []*fyne.MenuItem
	for _, speed := range []config.RefreshSpeed{config.Slow, config.NormalSpeed, config.Fast} {
		m.speeds[speed] = fyne.NewMenuItem(fmt.Sprintf("Speed: %s", speed), func() { a.SetRefreshSpeed(speed) })
		captureItems = append(captureItems, m.speeds[speed])
	}
	m.areas[config.UnderWindow] = fyne.NewMenuItem("Capture region", func() { a.SetViewArea(config.UnderWindow) })
	m.areas[config.MousePointer] = fyne.NewMenuItem("Follow pointer", func() { a.SetViewArea(config.MousePointer) })
	captureItems = append(captureItems, fyne.NewMenuItemSeparator(),
		m.areas[config.UnderWindow], m.areas[config.MousePointer], fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Region...", func() { a.RegionDialog() }),
		fyne.NewMenuItem(fmt.Sprintf("Retry permission (%s)", RetryShortcutDesc), func() { a.RetryPermission() }),
	)
	menuCapture := fyne.NewMenu("Capture", captureItems...)

	menuShare := fyne.NewMenu("Share",
		fyne.NewMenuItem(fmt.Sprintf("Copy (%s)", CopyShortcutDesc), func() { a.CopyImageToClipboard() }),
		fyne.NewMenuItem(fmt.Sprintf("Export PNG (%s)", ExportShortcutDesc), func() { a.ExportImage() }),
		fyne.NewMenuItem("Clear exported images", func() {
			if err := export.ClearExported(); err != nil {
				glog.Errorf("%s", err)
				a.setStatus(err.Error())
				return
			}
			a.setStatus("Exported images removed")
		}),
	)
	m.main = fyne.NewMainMenu(menuFile, menuVision, menuAssist, menuCapture, menuShare)
	return m
}

// update sets the check marks from the application state.
func (m *menus) update(a *App) {
	f := a.filter
	for v, item := range m.visions {
		item.Checked = v == f.Vision
	}
	m.hcirn.Checked = f.Simulation == config.HCIRN
	m.red.Checked = f.Stripes.Red != 0
	m.green.Checked = f.Stripes.Green != 0
	m.blue.Checked = f.Stripes.Blue != 0
	m.large.Checked = f.Stripes.PatternScale == LargeStripesScale
	m.hue.Checked = f.HueShift
	m.invert.Checked = f.InvertLuminance
	m.boost.Checked = f.ColorBoost
	for speed, item := range m.speeds {
		item.Checked = speed == a.speed
	}
	for area, item := range m.areas {
		item.Checked = area == a.area
	}
	m.main.Refresh()
}

func (a *App) registerShortcuts() {
	add := func(key fyne.KeyName, modifier fyne.KeyModifier, fn func()) {
		a.Win.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: key, Modifier: modifier},
			func(shortcut fyne.Shortcut) {
				glog.V(2).Infof("Shortcut %s", shortcut.ShortcutName())
				fn()
			})
	}
	add(fyne.KeyQ, desktop.ControlModifier, func() {
		glog.Infof("Quit requested by shortcut")
		a.App.Quit()
	})
	add(fyne.KeyC, shortcutModifier, a.CopyImageToClipboard)
	add(fyne.KeyE, shortcutModifier, a.ExportImage)
	add(fyne.KeyR, shortcutModifier, a.RetryPermission)

	// alt+0 ... alt+9 select the vision types, in menu order.
	digits := []fyne.KeyName{fyne.Key0, fyne.Key1, fyne.Key2, fyne.Key3, fyne.Key4,
		fyne.Key5, fyne.Key6, fyne.Key7, fyne.Key8, fyne.Key9}
	for ii, v := range config.AllVisions {
		if ii >= len(digits) {
			break
		}
		add(digits[ii], fyne.KeyModifierAlt, a.editFilter(func(f *config.Filter) { f.Vision = v }))
	}
}

// RetryPermission restarts capturing after the user granted the permission.
func (a *App) RetryPermission() {
	if err := a.scheduler.RetryPermission(); err != nil {
		glog.Warningf("Capture permission: %s", err)
		a.setStatus(fmt.Sprintf("Not capturing: %s", err))
		return
	}
	a.setStatus(fmt.Sprintf("Capturing (%s)", a.scheduler.State()))
}

// CopyImageToClipboard copies the image currently shown.
func (a *App) CopyImageToClipboard() {
	glog.V(2).Info("App.CopyImageToClipboard")
	img := a.renderer.CurrentRenderedImage()
	if img == nil {
		a.setStatus("Nothing rendered yet")
		return
	}
	if err := clipboard.CopyImage(img); err != nil {
		glog.Errorf("Failed to copy to clipboard: %s", err)
		a.setStatus(fmt.Sprintf("Failed to copy to clipboard: %s", err))
		return
	}
	a.setStatus("Image copied to clipboard")
}

// ExportImage saves the image currently shown to a PNG file, and copies its
// path to the clipboard.
func (a *App) ExportImage() {
	glog.V(2).Info("App.ExportImage")
	img := a.renderer.CurrentRenderedImage()
	if img == nil {
		a.setStatus("Nothing rendered yet")
		return
	}
	p, err := export.PNG(img, a.filter.Description(), 1)
	if err != nil {
		glog.Errorf("Failed to export image: %s", err)
		a.setStatus(fmt.Sprintf("Failed to export image: %s", err))
		return
	}
	glog.Infof("Exported image to %q", p)
	if err := clipboard.CopyText(p); err != nil {
		glog.Errorf("Failed to copy path to clipboard: %v", err)
		a.setStatus(fmt.Sprintf("Exported to %q", p))
		return
	}
	a.setStatus(fmt.Sprintf("Exported to %q, path copied to clipboard", p))
}

func (a *App) dialogLocation(d *dialog.FileDialog) {
	if defaultPath := a.App.Preferences().String(DefaultPathPreference); defaultPath != "" {
		lister, err := storage.ListerForURI(storage.NewFileURI(defaultPath))
		if err == nil {
			d.SetLocation(lister)
		} else {
			glog.Warningf("Cannot create a ListableURI for %q", defaultPath)
		}
	}
	size := a.Win.Canvas().Size()
	size.Width *= 0.90
	size.Height *= 0.90
	d.Resize(size)
}

// LoadProfileDialog asks for a YAML profile to apply.
func (a *App) LoadProfileDialog() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			glog.Errorf("Failed to open profile: %s", err)
			a.setStatus(fmt.Sprintf("Failed to open profile: %s", err))
			return
		}
		if reader == nil {
			return
		}
		defer func() { _ = reader.Close() }()
		a.App.Preferences().SetString(DefaultPathPreference, path.Dir(reader.URI().Path()))
		f, err := config.ReadProfile(reader)
		if err != nil {
			glog.Errorf("Failed to load profile %q: %s", reader.URI(), err)
			a.setStatus(fmt.Sprintf("Failed to load profile: %s", err))
			return
		}
		a.SetFilter(f)
		a.setStatus(fmt.Sprintf("Loaded profile %q", reader.URI().Name()))
	}, a.Win)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".yaml", ".yml"}))
	a.dialogLocation(d)
	d.Show()
}

// SaveProfileDialog saves the current filter configuration.
func (a *App) SaveProfileDialog() {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			glog.Errorf("Failed to save profile: %s", err)
			a.setStatus(fmt.Sprintf("Failed to save profile: %s", err))
			return
		}
		if writer == nil {
			a.setStatus("Save profile cancelled.")
			return
		}
		defer func() { _ = writer.Close() }()
		a.App.Preferences().SetString(DefaultPathPreference, path.Dir(writer.URI().Path()))
		if err := config.WriteProfile(writer, a.filter.Description(), a.filter); err != nil {
			glog.Errorf("Failed to save profile to %q: %s", writer.URI(), err)
			a.setStatus(fmt.Sprintf("Failed to save profile: %s", err))
			return
		}
		a.setStatus(fmt.Sprintf("Saved profile to %q", writer.URI()))
	}, a.Win)
	d.SetFileName(a.filter.Vision.Key() + ".yaml")
	a.dialogLocation(d)
	d.Show()
}

// RegionDialog asks for a new capture region.
func (a *App) RegionDialog() {
	entry := widget.NewEntry()
	entry.SetText(FormatRegion(a.view.CaptureRegion()))
	entry.Validator = func(s string) error {
		_, err := ParseRegion(s)
		return err
	}
	items := []*widget.FormItem{
		widget.NewFormItem("Region", entry),
		widget.NewFormItem("", widget.NewLabel("x,y,width,height in screen pixels, from the top-left corner")),
	}
	form := dialog.NewForm("Capture Region", "Ok", "Cancel", items,
		func(confirm bool) {
			if !confirm {
				return
			}
			r, err := ParseRegion(entry.Text)
			if err != nil {
				a.setStatus(err.Error())
				return
			}
			a.view.SetRegion(r)
		}, a.Win)
	form.Resize(fyne.NewSize(500, 200))
	form.Show()
}
