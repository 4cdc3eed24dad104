// Package export writes snapshots of the rendered image to PNG files, for
// sharing with other applications.
package export

import (
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

// DirName is the directory, under the temporary directory, holding exports.
const DirName = "image-export"

// Exporter writes exports under Root.
type Exporter struct {
	Root string
}

// Default exports to <tmp>/image-export.
var Default = &Exporter{Root: filepath.Join(os.TempDir(), DirName)}

// PNG exports with Default.
func PNG(img image.Image, name string, scale float64) (string, error) {
	return Default.PNG(img, name, scale)
}

// ClearExported removes the exports of Default.
func ClearExported() error {
	return Default.ClearExported()
}

// PNG writes img to <Root>/<uuid>/<name>.png and returns the path. Each export
// has its own directory, so names never collide. If scale is > 0 and not 1,
// the image is resized by that factor first.
func (e *Exporter) PNG(img image.Image, name string, scale float64) (string, error) {
	if img == nil {
		return "", fmt.Errorf("nothing to export")
	}
	dir := filepath.Join(e.Root, uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, sanitize(name)+".png")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	if err := png.Encode(f, scaled(img, scale)); err != nil {
		return "", fmt.Errorf("failed to encode %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write %q: %w", path, err)
	}
	glog.V(1).Infof("Exported snapshot to %q", path)
	return path, nil
}

// ClearExported removes every export.
func (e *Exporter) ClearExported() error {
	if err := os.RemoveAll(e.Root); err != nil {
		return fmt.Errorf("failed to clear exports in %q: %w", e.Root, err)
	}
	return nil
}

func scaled(img image.Image, scale float64) image.Image {
	if scale <= 0 || scale == 1 {
		return img
	}
	b := img.Bounds()
	w := max(1, int(math.Round(float64(b.Dx())*scale)))
	h := max(1, int(math.Round(float64(b.Dy())*scale)))
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Rect, img, b, draw.Src, nil)
	return dst
}

// sanitize makes name usable as a file name.
func sanitize(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', 0:
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" || name == "." || name == ".." {
		return "snapshot"
	}
	return name
}
