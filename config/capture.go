package config

import (
	"fmt"
	"strings"
	"time"
)

// RefreshSpeed is the user selected capture rate.
type RefreshSpeed int

const (
	Slow RefreshSpeed = iota - 1
	NormalSpeed
	Fast
)

// FrameSkips is the number of display ticks skipped between two captures.
func (r RefreshSpeed) FrameSkips() int {
	switch r {
	case Slow:
		return 10
	case Fast:
		return 0
	}
	return 3
}

// MinimumFrameInterval is used by stream based sources instead of FrameSkips.
func (r RefreshSpeed) MinimumFrameInterval() time.Duration {
	switch r {
	case Slow:
		return time.Second / 12
	case Fast:
		return 0
	}
	return time.Second / 24
}

func (r RefreshSpeed) String() string {
	switch r {
	case Slow:
		return "slow"
	case Fast:
		return "fast"
	}
	return "normal"
}

// ParseRefreshSpeed accepts "slow", "normal" and "fast".
func ParseRefreshSpeed(s string) (RefreshSpeed, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "slow":
		return Slow, nil
	case "normal", "":
		return NormalSpeed, nil
	case "fast":
		return Fast, nil
	}
	return NormalSpeed, fmt.Errorf("unknown refresh speed %q: %w", s, ErrInvalid)
}

// ViewArea selects what region of the screen is captured.
type ViewArea int

const (
	// UnderWindow captures the area covered by the view itself.
	UnderWindow ViewArea = iota
	// MousePointer captures an area of the view's size centered on the pointer.
	MousePointer
)

func (a ViewArea) String() string {
	if a == MousePointer {
		return "pointer"
	}
	return "window"
}

// ParseViewArea accepts "window" and "pointer".
func ParseViewArea(s string) (ViewArea, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "window", "":
		return UnderWindow, nil
	case "pointer", "mouse":
		return MousePointer, nil
	}
	return UnderWindow, fmt.Errorf("unknown view area %q: %w", s, ErrInvalid)
}
