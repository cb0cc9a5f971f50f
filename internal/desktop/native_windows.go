//go:build windows

package desktop

import (
	"unsafe"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver"
	"golang.org/x/sys/windows"

	"github.com/user/venue/internal/window"
)

const (
	swpNoSize     = 0x0001
	swpNoZOrder   = 0x0004
	swpNoActivate = 0x0010
)

var (
	user32           = windows.NewLazySystemDLL("user32.dll")
	procGetCursorPos = user32.NewProc("GetCursorPos")
	procSetWindowPos = user32.NewProc("SetWindowPos")
)

type point struct {
	X, Y int32
}

// setAccessoryActivationPolicy is a no-op: tray-only apps need no policy on Windows
func setAccessoryActivationPolicy() {}

func cursorPosition() (window.Position, bool) {
	var pt point
	r, _, _ := procGetCursorPos.Call(uintptr(unsafe.Pointer(&pt)))
	if r == 0 {
		return window.Position{}, false
	}
	return window.Position{X: float64(pt.X), Y: float64(pt.Y)}, true
}

// nativeHandle returns the HWND behind w, or 0 before the window is realised
func nativeHandle(w fyne.Window) (uintptr, bool) {
	nw, ok := w.(driver.NativeWindow)
	if !ok {
		return 0, false
	}

	var hwnd uintptr
	nw.RunNative(func(ctx any) {
		switch c := ctx.(type) {
		case driver.WindowsWindowContext:
			hwnd = c.HWND
		case *driver.WindowsWindowContext:
			hwnd = c.HWND
		}
	})
	return hwnd, true
}

func moveWindow(w fyne.Window, x, y int) error {
	hwnd, ok := nativeHandle(w)
	if !ok {
		return ErrPositionUnsupported
	}
	if hwnd == 0 {
		return errNoNativeHandle
	}

	r, _, err := procSetWindowPos.Call(hwnd, 0,
		uintptr(int32(x)), uintptr(int32(y)), 0, 0,
		swpNoSize|swpNoZOrder|swpNoActivate)
	if r == 0 {
		return err
	}
	return nil
}
