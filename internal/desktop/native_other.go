//go:build !darwin && !windows

package desktop

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver"

	"github.com/user/venue/internal/window"
)

func setAccessoryActivationPolicy() {}

// cursorPosition is unavailable here; the configured anchor is used instead
func cursorPosition() (window.Position, bool) {
	return window.Position{}, false
}

func moveWindow(_ fyne.Window, _, _ int) error {
	return ErrPositionUnsupported
}

// nativeHandle reports the X11 window or Wayland surface behind w. Other
// contexts cannot be inspected and report false.
func nativeHandle(w fyne.Window) (uintptr, bool) {
	nw, ok := w.(driver.NativeWindow)
	if !ok {
		return 0, false
	}

	var (
		handle uintptr
		known  bool
	)
	nw.RunNative(func(ctx any) {
		switch c := ctx.(type) {
		case driver.X11WindowContext:
			handle, known = c.WindowHandle, true
		case *driver.X11WindowContext:
			handle, known = c.WindowHandle, true
		case driver.WaylandWindowContext:
			handle, known = c.WaylandSurface, true
		case *driver.WaylandWindowContext:
			handle, known = c.WaylandSurface, true
		}
	})
	return handle, known
}
