//go:build darwin

package live

import "fyne.io/fyne/v2/driver/desktop"

// Darwin version of the descriptions in shortcuts_default.go.
const (
	CopyShortcutDesc   = "⌘+C"
	ExportShortcutDesc = "⌘+E"
	RetryShortcutDesc  = "⌘+R"
)

const shortcutModifier = desktop.SuperModifier
