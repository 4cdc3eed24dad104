// Package clipboard copies snapshots to the system clipboard.
package clipboard

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"sync"

	"golang.design/x/clipboard"
)

var (
	initOnce sync.Once
	initErr  error
)

func ensureInit() error {
	initOnce.Do(func() {
		if err := clipboard.Init(); err != nil {
			initErr = fmt.Errorf("clipboard not available: %w", err)
		}
	})
	return initErr
}

// CopyImage copies img to the clipboard, PNG encoded.
func CopyImage(img image.Image) error {
	if err := ensureInit(); err != nil {
		return err
	}
	buff := new(bytes.Buffer)
	if err := png.Encode(buff, img); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	clipboard.Write(clipboard.FmtImage, buff.Bytes())
	return nil
}

// CopyText copies text to the clipboard.
func CopyText(text string) error {
	if err := ensureInit(); err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}
