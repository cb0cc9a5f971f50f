// Package desktop binds the tray controller and window coordinator to the
// real platform: a fyne application hosting the popup window and a
// fyne.io/systray status item.
package desktop

import (
	"errors"
	"runtime"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/systray"
	"go.uber.org/zap"

	"github.com/user/venue/internal/tray"
	"github.com/user/venue/internal/window"
)

const (
	appID        = "dev.venue.tray"
	windowTitle  = "Venue"
	windowHeight = 460
)

// ErrTrayExists is returned when a second tray icon is requested
var ErrTrayExists = errors.New("tray icon already created")

// Options configure the desktop shell
type Options struct {
	Tooltip string

	// Anchor is the click position used when the platform cannot report
	// where the cursor is
	Anchor window.Position

	// SettingsPath is opened by the "Open Settings" tray menu entry
	SettingsPath string

	Logger *zap.Logger
}

// toggle is a checkbox entry of the tray menu
type toggle struct {
	title    string
	checked  bool
	onChange func(bool)
}

// Shell owns the fyne application, the popup window and the status item.
// The status item is driven through systray directly rather than fyne's
// tray support so its icon stays a template image.
type Shell struct {
	app    fyne.App
	opts   Options
	logger *zap.Logger

	mu       sync.Mutex
	windows  map[string]*popup
	icon     *trayIcon
	onClick  func(tray.ClickEvent)
	toggles  []toggle
	tooltip  string
	trayUp   func()
	trayDown func()
	trayLive bool

	status binding.String
}

// NewShell creates the application and its hidden popup window
func NewShell(opts Options) *Shell {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Shell{
		app:     app.NewWithID(appID),
		opts:    opts,
		logger:  logger,
		windows: make(map[string]*popup),
		status:  binding.NewString(),
	}
	_ = s.status.Set(tray.StatusUnknown.String())
	s.tooltip = s.tooltipFor(tray.StatusUnknown)

	mainWin := newPopup(s.app.NewWindow(windowTitle))
	mainWin.win.Resize(fyne.NewSize(window.Width, windowHeight))
	mainWin.win.SetFixedSize(true)
	mainWin.win.SetContent(newContent(s.status))
	// closing the popup only hides it; the process lives in the tray
	mainWin.win.SetCloseIntercept(func() { _ = mainWin.Hide() })
	s.windows[window.MainLabel] = mainWin

	lc := s.app.Lifecycle()
	lc.SetOnStarted(s.startTray)
	lc.SetOnEnteredForeground(func() { s.focusChanged(true) })
	lc.SetOnExitedForeground(func() { s.focusChanged(false) })

	return s
}

// Window returns the window registered under label
func (s *Shell) Window(label string) (window.Window, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[label]
	if !ok {
		return nil, false
	}
	return w, true
}

// AddToggle adds a checkbox entry to the tray menu. It must be called
// before Run.
func (s *Shell) AddToggle(title string, checked bool, onChange func(bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toggles = append(s.toggles, toggle{title: title, checked: checked, onChange: onChange})
}

// CreateTray registers the status item. It must be called before Run: the
// item is started on the event loop thread once the loop is up, and the
// icon given here is shown as soon as it is ready.
func (s *Shell) CreateTray(opts tray.Options) (tray.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.icon != nil {
		return nil, ErrTrayExists
	}

	icon := newTrayIcon(opts.Template)
	if err := icon.SetIcon(opts.Icon); err != nil {
		return nil, err
	}

	s.icon = icon
	s.onClick = opts.OnClick
	s.trayUp, s.trayDown = systray.RunWithExternalLoop(s.trayReady, func() {})
	return icon, nil
}

// startTray runs once the event loop is up. systray has to be started on
// the thread that owns the loop.
func (s *Shell) startTray() {
	s.mu.Lock()
	start := s.trayUp
	mainWin := s.windows[window.MainLabel]
	s.mu.Unlock()

	if start == nil {
		return
	}
	runOnMain(mainWin.win, start)

	s.mu.Lock()
	s.trayLive = true
	s.mu.Unlock()
}

// trayReady is called by systray once the status item exists
func (s *Shell) trayReady() {
	s.mu.Lock()
	icon, onClick := s.icon, s.onClick
	toggles := make([]toggle, len(s.toggles))
	copy(toggles, s.toggles)
	s.mu.Unlock()

	// some XDG trays crash without a title
	if runtime.GOOS != "darwin" && runtime.GOOS != "windows" {
		systray.SetTitle(windowTitle)
	}
	icon.markReady()

	s.mu.Lock()
	systray.SetTooltip(s.tooltip)
	s.mu.Unlock()

	if onClick != nil {
		systray.SetOnTapped(func() {
			// macOS delivers the tap on the event loop thread; moving or
			// hiding the popup from there waits on that same thread
			go onClick(s.tapEvent())
		})
	}

	s.buildMenu(onClick, toggles)
}

// tapEvent stands in for the platform's tap. systray only reports that the
// item was activated, which is treated as a left button release.
func (s *Shell) tapEvent() tray.ClickEvent {
	return tray.ClickEvent{
		Button:   tray.ButtonLeft,
		State:    tray.ButtonUp,
		Position: s.clickPosition(),
	}
}

// SetStatusText updates the tray tooltip and the status line of the popup
func (s *Shell) SetStatusText(kind tray.StatusKind) {
	_ = s.status.Set(kind.String())

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tooltip = s.tooltipFor(kind)
	if s.icon != nil && s.icon.isReady() {
		systray.SetTooltip(s.tooltip)
	}
}

func (s *Shell) tooltipFor(kind tray.StatusKind) string {
	tooltip := s.opts.Tooltip
	if tooltip == "" {
		tooltip = windowTitle
	}
	return tooltip + ": " + kind.String()
}

// ActivateAccessory hides the dock icon on macOS; it is a no-op elsewhere
func (s *Shell) ActivateAccessory() {
	setAccessoryActivationPolicy()
}

// Run blocks on the event loop until Quit is called
func (s *Shell) Run() {
	s.app.Run()
}

// Quit removes the status item and stops the event loop
func (s *Shell) Quit() {
	s.mu.Lock()
	var stop func()
	if s.trayLive {
		stop = s.trayDown
	}
	s.trayDown = nil
	s.mu.Unlock()

	if stop != nil {
		stop()
	}
	s.app.Quit()
}

func (s *Shell) focusChanged(focused bool) {
	s.mu.Lock()
	windows := make([]*popup, 0, len(s.windows))
	for _, w := range s.windows {
		windows = append(windows, w)
	}
	s.mu.Unlock()

	for _, w := range windows {
		w.focusChanged(focused)
	}
}

func (s *Shell) clickPosition() window.Position {
	if pos, ok := cursorPosition(); ok {
		return pos
	}
	return s.opts.Anchor
}
