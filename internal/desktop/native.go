package desktop

import (
	"errors"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver"
)

var (
	// ErrPositionUnsupported is returned when the platform cannot place a
	// window at absolute screen coordinates
	ErrPositionUnsupported = errors.New("window positioning is not supported on this platform")

	// errNoNativeHandle is returned before the native window exists
	errNoNativeHandle = errors.New("native window handle not available")
)

// nativeReady reports whether the platform window behind w exists. When the
// handle cannot be inspected the window is assumed to be ready.
func nativeReady(w fyne.Window) bool {
	handle, known := nativeHandle(w)
	return !known || handle != 0
}

// runOnMain runs fn on the event loop thread through RunNative. Calling it
// from a callback that is already on that thread deadlocks.
func runOnMain(w fyne.Window, fn func()) {
	if nw, ok := w.(driver.NativeWindow); ok {
		nw.RunNative(func(any) { fn() })
		return
	}
	fn()
}
