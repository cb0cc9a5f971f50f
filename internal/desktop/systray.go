package desktop

import (
	"errors"
	"sync"

	"fyne.io/systray"
)

// errNoIconData is returned when the tray is asked to show an empty image
var errNoIconData = errors.New("no icon data")

// trayIcon is the handle for the status item icon. Icons set before the
// status item is ready are kept and shown once it is.
type trayIcon struct {
	template bool

	mu    sync.Mutex
	ready bool
	last  []byte

	// show is swapped in tests
	show func(icon []byte, template bool)
}

func newTrayIcon(template bool) *trayIcon {
	return &trayIcon{template: template, show: showIcon}
}

// SetIcon replaces the status item image. Template icons are tinted by
// macOS to match the menu bar; other platforms show them as is.
func (t *trayIcon) SetIcon(icon []byte) error {
	if len(icon) == 0 {
		return errNoIconData
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.last = icon
	if t.ready {
		t.show(icon, t.template)
	}
	return nil
}

// markReady shows the latest icon. Later SetIcon calls apply immediately.
func (t *trayIcon) markReady() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ready = true
	if t.last != nil {
		t.show(t.last, t.template)
	}
}

func (t *trayIcon) isReady() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ready
}

func showIcon(icon []byte, template bool) {
	if template {
		systray.SetTemplateIcon(icon, icon)
		return
	}
	systray.SetIcon(icon)
}
