package live

import (
	"fmt"
	"image"
	"strconv"
	"strings"
)

// DefaultRegionSize is the capture region used when none is configured: it
// is placed at the top-left corner of the primary display.
var DefaultRegionSize = image.Pt(640, 480)

// ParseRegion parses "x,y,w,h", in screen pixels with the origin at the
// top-left corner of the primary display. An empty string returns the empty
// rectangle.
func ParseRegion(s string) (image.Rectangle, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return image.Rectangle{}, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("region %q must be x,y,w,h", s)
	}
	var v [4]int
	for ii, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("region %q: invalid number %q", s, p)
		}
		v[ii] = n
	}
	if v[2] <= 0 || v[3] <= 0 {
		return image.Rectangle{}, fmt.Errorf("region %q: width and height must be > 0", s)
	}
	return image.Rect(v[0], v[1], v[0]+v[2], v[1]+v[3]), nil
}

// FormatRegion is the inverse of ParseRegion.
func FormatRegion(r image.Rectangle) string {
	return fmt.Sprintf("%d,%d,%d,%d", r.Min.X, r.Min.Y, r.Dx(), r.Dy())
}
