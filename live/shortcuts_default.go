//go:build !darwin

package live

import "fyne.io/fyne/v2/driver/desktop"

// Menu descriptions of the shortcuts, specialized per platform.
const (
	CopyShortcutDesc   = "ctrl+c"
	ExportShortcutDesc = "ctrl+e"
	RetryShortcutDesc  = "ctrl+r"
)

const shortcutModifier = desktop.ControlModifier
