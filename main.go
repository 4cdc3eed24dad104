// DaltonView shows, live, how a region of the screen or a camera feed looks
// to people with color vision deficiencies, and offers color aids to tell
// colors apart.
package main

import (
	"flag"

	"github.com/golang/glog"

	"github.com/janpfeifer/daltonview/config"
	"github.com/janpfeifer/daltonview/live"
	"github.com/janpfeifer/daltonview/render"
)

var (
	flagSource    = flag.String("source", "list", "Frame source: list, stream or camera.")
	flagCamera    = flag.Int("camera", 0, "Camera device id, used with -source=camera.")
	flagSpeed     = flag.String("speed", "", "Capture speed: slow, normal or fast. Defaults to the last used.")
	flagArea      = flag.String("area", "", "Captured area: window or pointer. Defaults to the last used.")
	flagRegion    = flag.String("region", "", "Captured region as x,y,w,h screen pixels from the top-left corner.")
	flagProfile   = flag.String("profile", "", "YAML filter profile to start with, instead of the last used filters.")
	flagRefreshHz = flag.Int("refresh_hz", 60, "Display refresh rate driving capture and rendering.")
	flagFit       = flag.String("fit", "fill", "How frames are scaled to the window: fill (crop) or fit (letterbox).")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	opts := live.Options{
		Source:    *flagSource,
		CameraID:  *flagCamera,
		Profile:   *flagProfile,
		RefreshHz: *flagRefreshHz,
	}
	var err error
	if *flagSpeed != "" {
		speed, err := config.ParseRefreshSpeed(*flagSpeed)
		if err != nil {
			glog.Fatalf("Invalid -speed: %s", err)
		}
		opts.Speed = &speed
	}
	if *flagArea != "" {
		area, err := config.ParseViewArea(*flagArea)
		if err != nil {
			glog.Fatalf("Invalid -area: %s", err)
		}
		opts.Area = &area
	}
	if opts.Region, err = live.ParseRegion(*flagRegion); err != nil {
		glog.Fatalf("Invalid -region: %s", err)
	}
	if opts.Policy, err = render.ParseScalePolicy(*flagFit); err != nil {
		glog.Fatalf("Invalid -fit: %s", err)
	}
	if err = live.Run(opts); err != nil {
		glog.Fatalf("Failed to start: %s", err)
	}
}
