// Package window shows, hides and positions the single popup window that is
// toggled from the tray icon.
package window

import (
	"errors"
	"sync"
)

const (
	// MainLabel is the logical name of the popup window
	MainLabel = "main"

	// Width is the popup width used to center it under the click point
	Width = 340.0

	// VerticalOffset is the gap between the click point and the popup's top edge
	VerticalOffset = 5.0
)

// ErrNoWindow is returned by Attach when the popup window does not exist
var ErrNoWindow = errors.New("popup window not found")

// Position is a point in physical screen coordinates
type Position struct {
	X float64
	Y float64
}

// Window is the subset of a native window the coordinator drives
type Window interface {
	IsVisible() (bool, error)
	Show() error
	Hide() error
	SetPosition(x, y int) error
	SetFocus() error
	// OnFocusChanged registers a listener for focus transitions
	OnFocusChanged(func(focused bool))
}

// Host looks windows up by their logical label
type Host interface {
	Window(label string) (Window, bool)
}

// Coordinator toggles the popup window in response to tray clicks and hides
// it when it loses focus. Visibility is always queried from the window itself.
type Coordinator struct {
	host  Host
	label string

	attachOnce sync.Once
}

// NewCoordinator creates a coordinator for the "main" window of host
func NewCoordinator(host Host) *Coordinator {
	return &Coordinator{
		host:  host,
		label: MainLabel,
	}
}

// ToggleAt hides the popup if it is visible, otherwise moves it under the
// given point, shows it and focuses it. Every step is best effort.
func (c *Coordinator) ToggleAt(pos Position) {
	w, ok := c.host.Window(c.label)
	if !ok {
		return
	}

	if visible, err := w.IsVisible(); err == nil && visible {
		_ = w.Hide()
		return
	}

	x, y := TargetPosition(pos)
	_ = w.SetPosition(x, y)
	_ = w.Show()
	_ = w.SetFocus()
}

// OnFocusLost hides the popup. Hiding an already hidden window is harmless.
func (c *Coordinator) OnFocusLost() {
	w, ok := c.host.Window(c.label)
	if !ok {
		return
	}
	hide(w)
}

// Attach registers the focus-loss listener on the popup window. Only the
// first call registers; later calls return nil without side effects.
func (c *Coordinator) Attach() error {
	w, ok := c.host.Window(c.label)
	if !ok {
		return ErrNoWindow
	}

	c.attachOnce.Do(func() {
		// the listener keeps its own reference so it never needs a lookup
		captured := w
		captured.OnFocusChanged(func(focused bool) {
			if !focused {
				hide(captured)
			}
		})
	})
	return nil
}

// TargetPosition returns the top-left corner that centers the popup
// horizontally under pos, slightly below it
func TargetPosition(pos Position) (int, int) {
	x := pos.X - Width/2
	y := pos.Y + VerticalOffset
	return int(x), int(y)
}

func hide(w Window) {
	_ = w.Hide()
}
