//go:build darwin

package desktop

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Cocoa

#import <Cocoa/Cocoa.h>

static void setAccessoryPolicy(void) {
	dispatch_async(dispatch_get_main_queue(), ^{
		[NSApp setActivationPolicy:NSApplicationActivationPolicyAccessory];
	});
}

// primaryScreenHeight is used to flip between Cocoa's bottom-left origin and
// the top-left origin the rest of the app works in
static double primaryScreenHeight(void) {
	NSArray<NSScreen *> *screens = [NSScreen screens];
	if ([screens count] == 0) {
		return 0;
	}
	return [screens objectAtIndex:0].frame.size.height;
}

static int mouseLocation(double *x, double *y) {
	double h = primaryScreenHeight();
	if (h == 0) {
		return 0;
	}
	NSPoint p = [NSEvent mouseLocation];
	*x = p.x;
	*y = h - p.y;
	return 1;
}

static void setWindowTopLeft(uintptr_t handle, double x, double y) {
	NSWindow *win = (__bridge NSWindow *)(void *)handle;
	double h = primaryScreenHeight();
	[win setFrameTopLeftPoint:NSMakePoint(x, h - y)];
}
*/
import "C"

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver"

	"github.com/user/venue/internal/window"
)

// setAccessoryActivationPolicy keeps the app out of the Dock and the app
// switcher; the tray icon is its only surface
func setAccessoryActivationPolicy() {
	C.setAccessoryPolicy()
}

func cursorPosition() (window.Position, bool) {
	var x, y C.double
	if C.mouseLocation(&x, &y) == 0 {
		return window.Position{}, false
	}
	return window.Position{X: float64(x), Y: float64(y)}, true
}

// nativeHandle returns the NSWindow behind w, or 0 before the window is realised
func nativeHandle(w fyne.Window) (uintptr, bool) {
	nw, ok := w.(driver.NativeWindow)
	if !ok {
		return 0, false
	}

	var handle uintptr
	nw.RunNative(func(ctx any) {
		switch c := ctx.(type) {
		case driver.MacWindowContext:
			handle = c.NSWindow
		case *driver.MacWindowContext:
			handle = c.NSWindow
		}
	})
	return handle, true
}

// moveWindow runs on the main thread through RunNative, so it must never be
// called from a callback that already holds the main thread
func moveWindow(w fyne.Window, x, y int) error {
	nw, ok := w.(driver.NativeWindow)
	if !ok {
		return ErrPositionUnsupported
	}

	moved := false
	nw.RunNative(func(ctx any) {
		var handle uintptr
		switch c := ctx.(type) {
		case driver.MacWindowContext:
			handle = c.NSWindow
		case *driver.MacWindowContext:
			handle = c.NSWindow
		}
		if handle == 0 {
			return
		}
		C.setWindowTopLeft(C.uintptr_t(handle), C.double(x), C.double(y))
		moved = true
	})
	if !moved {
		return errNoNativeHandle
	}
	return nil
}
