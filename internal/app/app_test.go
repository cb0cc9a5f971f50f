package app

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/user/venue/internal/bridge"
	"github.com/user/venue/internal/command"
	"github.com/user/venue/internal/config"
	"github.com/user/venue/internal/tray"
	"github.com/user/venue/internal/window"
)

const testToken = "5d1f7d7e-8c7a-4c8e-9a55-3f1f0f2e6b10"

type fakeHandle struct {
	mu    sync.Mutex
	icons int
	err   error
}

func (h *fakeHandle) SetIcon([]byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return h.err
	}
	h.icons++
	return nil
}

type fakeWindow struct {
	mu       sync.Mutex
	visible  bool
	x, y     int
	listener func(bool)
}

func (w *fakeWindow) IsVisible() (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible, nil
}

func (w *fakeWindow) Show() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.visible = true
	return nil
}

func (w *fakeWindow) Hide() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.visible = false
	return nil
}

func (w *fakeWindow) SetPosition(x, y int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.x, w.y = x, y
	return nil
}

func (w *fakeWindow) SetFocus() error { return nil }

func (w *fakeWindow) OnFocusChanged(fn func(bool)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listener = fn
}

type fakeToggle struct {
	title    string
	checked  bool
	onChange func(bool)
}

type fakePrefs struct {
	onReady []bool
	onError []bool
	err     error
}

func (p *fakePrefs) SetNotifyOnReady(enabled bool) error {
	p.onReady = append(p.onReady, enabled)
	return p.err
}

func (p *fakePrefs) SetNotifyOnError(enabled bool) error {
	p.onError = append(p.onError, enabled)
	return p.err
}

type fakeShell struct {
	mu sync.Mutex

	win       *fakeWindow
	handle    *fakeHandle
	trayErr   error
	trayOpts  tray.Options
	toggles   []fakeToggle
	statuses  []tray.StatusKind
	accessory bool
	quit      bool

	// trayCreated is set by CreateTray, trayBeforeRun records whether that
	// happened before the event loop started
	trayCreated   bool
	trayBeforeRun bool
	ran           bool

	// during runs inside Run, standing in for the event loop
	during func()
}

func newFakeShell() *fakeShell {
	return &fakeShell{win: &fakeWindow{}, handle: &fakeHandle{}}
}

func (s *fakeShell) Window(label string) (window.Window, bool) {
	if label != window.MainLabel || s.win == nil {
		return nil, false
	}
	return s.win, true
}

func (s *fakeShell) CreateTray(opts tray.Options) (tray.Handle, error) {
	if s.trayErr != nil {
		return nil, s.trayErr
	}
	s.trayOpts = opts
	s.trayCreated = true
	return s.handle, nil
}

func (s *fakeShell) AddToggle(title string, checked bool, onChange func(bool)) {
	s.toggles = append(s.toggles, fakeToggle{title: title, checked: checked, onChange: onChange})
}

func (s *fakeShell) SetStatusText(kind tray.StatusKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, kind)
}

func (s *fakeShell) ActivateAccessory() { s.accessory = true }

func (s *fakeShell) Run() {
	s.ran = true
	s.trayBeforeRun = s.trayCreated
	if s.during != nil && !s.quit {
		s.during()
	}
}

func (s *fakeShell) Quit() { s.quit = true }

func (s *fakeShell) texts() []tray.StatusKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]tray.StatusKind(nil), s.statuses...)
}

func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.BridgePort = 0
	cfg.NotifyOnReady = false
	cfg.NotifyOnError = false
	return cfg
}

func TestRun_InitializesTray(t *testing.T) {
	shell := newFakeShell()
	a := newApp(testConfig(), nil, nil, testToken, shell)

	if err := a.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !shell.accessory {
		t.Error("Expected accessory activation policy to be set")
	}
	if !a.controller.Initialized() {
		t.Error("Expected tray to be initialized")
	}
	if !shell.trayOpts.Template {
		t.Error("Expected a template icon")
	}
	if shell.win.listener == nil {
		t.Error("Expected focus listener to be attached")
	}
}

func TestRun_CreatesTrayBeforeEventLoop(t *testing.T) {
	shell := newFakeShell()
	a := newApp(testConfig(), nil, nil, testToken, shell)

	if err := a.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !shell.ran {
		t.Fatal("Expected the event loop to run")
	}
	if !shell.trayBeforeRun {
		t.Error("Expected the tray to be created before the event loop started")
	}
}

func TestRun_TrayFailureIsFatal(t *testing.T) {
	shell := newFakeShell()
	shell.trayErr = errors.New("no status area")
	a := newApp(testConfig(), nil, nil, testToken, shell)

	err := a.Run()
	if err == nil {
		t.Fatal("Expected Run to fail when the tray cannot be created")
	}
	if !errors.Is(err, shell.trayErr) {
		t.Errorf("Expected the tray error to be wrapped, got %v", err)
	}
	if shell.ran {
		t.Error("Expected the event loop never to start")
	}
}

func TestRun_MissingWindowIsTolerated(t *testing.T) {
	shell := newFakeShell()
	shell.win = nil
	a := newApp(testConfig(), nil, nil, testToken, shell)

	if err := a.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !a.controller.Initialized() {
		t.Error("Expected tray to be initialized")
	}
}

func TestRun_AppliesInitialStatus(t *testing.T) {
	shell := newFakeShell()
	cfg := testConfig()
	cfg.InitialStatus = "building"
	a := newApp(cfg, nil, nil, testToken, shell)

	if err := a.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if a.state.Status() != tray.StatusBuilding {
		t.Errorf("Expected building status, got %v", a.state.Status())
	}
	texts := shell.texts()
	if len(texts) != 1 || texts[0] != tray.StatusBuilding {
		t.Errorf("Expected status text [building], got %v", texts)
	}
}

func TestTrayClick_TogglesPopup(t *testing.T) {
	shell := newFakeShell()
	a := newApp(testConfig(), nil, nil, testToken, shell)
	if err := a.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	shell.trayOpts.OnClick(tray.ClickEvent{
		Button:   tray.ButtonLeft,
		State:    tray.ButtonUp,
		Position: window.Position{X: 100, Y: 50},
	})
	if visible, _ := shell.win.IsVisible(); !visible {
		t.Fatal("Expected popup to be visible")
	}
	if shell.win.x != -70 || shell.win.y != 55 {
		t.Errorf("Expected popup at (-70, 55), got (%d, %d)", shell.win.x, shell.win.y)
	}

	shell.win.listener(false)
	if visible, _ := shell.win.IsVisible(); visible {
		t.Error("Expected popup to hide on focus loss")
	}
}

func TestSetTrayStatus_UpdatesTrayAndState(t *testing.T) {
	shell := newFakeShell()
	a := newApp(testConfig(), nil, nil, testToken, shell)
	if err := a.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for _, args := range []string{`{"status":"ready"}`, `{"status":"ready"}`, `{"deployment_state":"ERROR"}`} {
		if err := a.dispatcher.Invoke(command.SetTrayStatus, []byte(args)); err != nil {
			t.Fatalf("Invoke(%s) failed: %v", args, err)
		}
	}

	if a.state.Status() != tray.StatusError {
		t.Errorf("Expected error status, got %v", a.state.Status())
	}
	if shell.handle.icons != 3 {
		t.Errorf("Expected an icon update per command, got %d", shell.handle.icons)
	}
	texts := shell.texts()
	if len(texts) != 2 {
		t.Errorf("Expected status text to change twice, got %v", texts)
	}
}

func TestBridge_DrivesTrayStatus(t *testing.T) {
	shell := newFakeShell()
	a := newApp(testConfig(), nil, nil, testToken, shell)

	var invokeErr error
	shell.during = func() {
		c := bridge.NewClient(a.bridge.Addr(), testToken)
		invokeErr = c.Invoke(context.Background(), command.SetTrayStatus,
			command.TrayStatusArgs{Status: "ready"})
	}

	if err := a.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if invokeErr != nil {
		t.Fatalf("Bridge invoke failed: %v", invokeErr)
	}
	if a.state.Status() != tray.StatusReady {
		t.Errorf("Expected ready status, got %v", a.state.Status())
	}
}

func TestApplyStatus_BeforeTrayIsNotRecorded(t *testing.T) {
	shell := newFakeShell()
	a := newApp(testConfig(), nil, nil, testToken, shell)

	a.applyStatus("ready")

	if texts := shell.texts(); len(texts) != 0 {
		t.Errorf("Expected tooltip unchanged before the tray exists, got %v", texts)
	}
	if a.state.Status() != tray.StatusUnknown {
		t.Errorf("Expected unknown status, got %v", a.state.Status())
	}

	// the same status applies normally once the tray is up
	if err := a.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	a.applyStatus("ready")
	if texts := shell.texts(); len(texts) != 1 || texts[0] != tray.StatusReady {
		t.Errorf("Expected status text [ready], got %v", texts)
	}
}

func TestApplyStatus_IconFailureIsNotRecorded(t *testing.T) {
	shell := newFakeShell()
	a := newApp(testConfig(), nil, nil, testToken, shell)
	if err := a.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	shell.handle.err = errors.New("tray gone")
	a.applyStatus("error")

	if a.state.Status() != tray.StatusUnknown {
		t.Errorf("Expected unknown status, got %v", a.state.Status())
	}
	if texts := shell.texts(); len(texts) != 0 {
		t.Errorf("Expected tooltip unchanged, got %v", texts)
	}
}

func TestNotifyToggles_SavedFromTrayMenu(t *testing.T) {
	shell := newFakeShell()
	prefs := &fakePrefs{}
	cfg := testConfig()
	cfg.NotifyOnReady = true
	newApp(cfg, prefs, nil, testToken, shell)

	if len(shell.toggles) != 2 {
		t.Fatalf("Expected 2 menu toggles, got %d", len(shell.toggles))
	}
	if !shell.toggles[0].checked || shell.toggles[1].checked {
		t.Errorf("Expected toggles to start from config, got %+v", shell.toggles)
	}

	shell.toggles[0].onChange(false)
	shell.toggles[1].onChange(true)

	if len(prefs.onReady) != 1 || prefs.onReady[0] {
		t.Errorf("Expected notify_on_ready saved off, got %v", prefs.onReady)
	}
	if len(prefs.onError) != 1 || !prefs.onError[0] {
		t.Errorf("Expected notify_on_error saved on, got %v", prefs.onError)
	}
}

func TestNotifyToggles_SaveFailureIsTolerated(t *testing.T) {
	shell := newFakeShell()
	prefs := &fakePrefs{err: errors.New("read-only config")}
	newApp(testConfig(), prefs, nil, testToken, shell)

	// must not panic; the toggle still applies for this session
	shell.toggles[0].onChange(true)
	if len(prefs.onReady) != 1 {
		t.Errorf("Expected a save attempt, got %v", prefs.onReady)
	}
}
