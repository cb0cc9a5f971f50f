// Package tray owns the status icon in the system tray and routes clicks on it
// to the popup window.
package tray

import (
	"errors"
	"fmt"
	"sync"

	"github.com/user/venue/internal/window"
)

// ErrAlreadyInitialized is returned when Initialize is called a second time
var ErrAlreadyInitialized = errors.New("tray already initialized")

// Button identifies the mouse button of a click
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
)

// ButtonState is the transition of the button that produced the click
type ButtonState int

const (
	ButtonUp ButtonState = iota
	ButtonDown
)

// ClickEvent is a click on the tray icon as delivered by the platform
type ClickEvent struct {
	Button   Button
	State    ButtonState
	Position window.Position
}

// Handle is the platform tray icon
type Handle interface {
	SetIcon(icon []byte) error
}

// Options describe the tray icon to create
type Options struct {
	Icon     []byte
	Template bool
	OnClick  func(ClickEvent)
}

// Backend creates the platform tray icon
type Backend interface {
	CreateTray(opts Options) (Handle, error)
}

// Toggler shows or hides the popup at a screen position
type Toggler interface {
	ToggleAt(pos window.Position)
}

// Controller owns the single tray icon of the process
type Controller struct {
	mu     sync.Mutex
	handle Handle

	toggler Toggler
	decode  func([]byte) ([]byte, error)
}

// NewController creates a tray controller that forwards qualifying clicks to t
func NewController(t Toggler) *Controller {
	return &Controller{
		toggler: t,
		decode:  DecodeIcon,
	}
}

// Initialize creates the tray icon with the gray default image as a template
// icon and stores its handle. It must be called once during startup.
func (c *Controller) Initialize(b Backend) error {
	icon, err := c.decode(DefaultIcon())
	if err != nil {
		return fmt.Errorf("failed to load default tray icon: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle != nil {
		return ErrAlreadyInitialized
	}

	handle, err := b.CreateTray(Options{
		Icon:     icon,
		Template: true,
		OnClick:  c.OnClick,
	})
	if err != nil {
		return fmt.Errorf("failed to create tray icon: %w", err)
	}

	c.handle = handle
	return nil
}

// SetStatus swaps the tray icon for the one matching status. Failures are
// dropped: the icon is cosmetic and callers never see an error.
func (c *Controller) SetStatus(status string) {
	c.ApplyStatus(status)
}

// ApplyStatus is SetStatus reporting whether the icon actually changed. It
// is false before Initialize and when the icon could not be decoded or set.
func (c *Controller) ApplyStatus(status string) bool {
	kind := ParseStatus(status)

	icon, err := c.decode(kind.Icon())
	if err != nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle == nil {
		return false
	}
	return c.handle.SetIcon(icon) == nil
}

// OnClick toggles the popup for a left button release and ignores everything else
func (c *Controller) OnClick(ev ClickEvent) {
	if ev.Button != ButtonLeft || ev.State != ButtonUp {
		return
	}
	if c.toggler == nil {
		return
	}
	c.toggler.ToggleAt(ev.Position)
}

// Initialized reports whether the tray icon exists
func (c *Controller) Initialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle != nil
}
