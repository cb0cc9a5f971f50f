package app

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"go.uber.org/zap"

	"github.com/user/venue/internal/auth"
	"github.com/user/venue/internal/bridge"
	"github.com/user/venue/internal/command"
	"github.com/user/venue/internal/config"
	"github.com/user/venue/internal/desktop"
	"github.com/user/venue/internal/logging"
	"github.com/user/venue/internal/notify"
	"github.com/user/venue/internal/state"
	"github.com/user/venue/internal/tray"
	"github.com/user/venue/internal/window"
)

// Shell is the platform side of the app: the event loop, the popup window
// and the tray icon
type Shell interface {
	window.Host
	tray.Backend

	AddToggle(title string, checked bool, onChange func(bool))
	SetStatusText(kind tray.StatusKind)
	ActivateAccessory()
	Run()
	Quit()
}

// Preferences persists the settings that can be changed from the tray menu
type Preferences interface {
	SetNotifyOnReady(enabled bool) error
	SetNotifyOnError(enabled bool) error
}

// Options configure New
type Options struct {
	// ConfigPath overrides the XDG config file location
	ConfigPath string
}

// App orchestrates all application components
type App struct {
	cfg    config.Config
	prefs  Preferences
	logger *zap.Logger

	shell       Shell
	state       *state.State
	notifier    *notify.Notifier
	coordinator *window.Coordinator
	controller  *tray.Controller
	dispatcher  *command.Dispatcher
	bridge      *bridge.Server

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new application instance
func New(opts Options) (*App, error) {
	// Initialize config
	mgr, err := config.NewManager(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}
	cfg := mgr.Get()

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Initialize token store
	store, err := auth.NewStore()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token store: %w", err)
	}
	token, err := store.LoadOrCreateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to load bridge token: %w", err)
	}

	shell := desktop.NewShell(desktop.Options{
		Tooltip:      cfg.Tooltip,
		Anchor:       window.Position{X: cfg.TrayAnchorX, Y: cfg.TrayAnchorY},
		SettingsPath: mgr.FilePath(),
		Logger:       logger.Named("desktop"),
	})

	return newApp(cfg, mgr, logger, token, shell), nil
}

func newApp(cfg config.Config, prefs Preferences, logger *zap.Logger, token string, shell Shell) *App {
	if logger == nil {
		logger = zap.NewNop()
	}

	coordinator := window.NewCoordinator(shell)

	a := &App{
		cfg:         cfg,
		prefs:       prefs,
		logger:      logger,
		shell:       shell,
		state:       state.New(),
		notifier:    notify.New(cfg.NotifyOnReady, cfg.NotifyOnError),
		coordinator: coordinator,
		controller:  tray.NewController(coordinator),
		dispatcher:  command.NewDispatcher(),
	}

	a.dispatcher.Register(command.SetTrayStatus, command.TrayStatusHandler(a.applyStatus))
	a.bridge = bridge.NewServer(token, a.dispatcher, logger.Named("bridge"))

	shell.AddToggle("Notify When Ready", cfg.NotifyOnReady, a.setNotifyOnReady)
	shell.AddToggle("Notify On Failure", cfg.NotifyOnError, a.setNotifyOnError)

	a.state.OnChange(a.handleStatusChange)

	return a
}

// Run sets up the tray, starts the bridge and blocks on the event loop
// until the app quits. Tray setup failures return before the loop starts.
func (a *App) Run() error {
	a.ctx, a.cancel = context.WithCancel(context.Background())
	defer a.shutdown()

	// The tray has to be registered before the event loop starts
	if err := a.setup(); err != nil {
		return err
	}

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(a.cfg.BridgePort))
	if err := a.bridge.Start(a.ctx, addr); err != nil {
		return fmt.Errorf("failed to start bridge: %w", err)
	}
	a.logger.Debug("Bridge listening",
		zap.String("addr", a.bridge.Addr()),
		zap.Strings("commands", a.dispatcher.Names()))

	// Run the shell (blocks until quit)
	a.shell.Run()
	return nil
}

// Quit stops the event loop; Run returns once cleanup is done
func (a *App) Quit() {
	a.shell.Quit()
}

func (a *App) setup() error {
	a.shell.ActivateAccessory()

	if err := a.controller.Initialize(a.shell); err != nil {
		a.logger.Error("Tray initialization failed", zap.Error(err))
		return fmt.Errorf("failed to initialize tray: %w", err)
	}

	// A missing popup only disables focus-loss hiding
	_ = a.coordinator.Attach()

	if a.cfg.InitialStatus != "" {
		a.applyStatus(a.cfg.InitialStatus)
	}
	return nil
}

// applyStatus is the set_tray_status command. The status is only recorded
// once the icon shows it, so the tooltip never runs ahead of the icon.
func (a *App) applyStatus(status string) {
	if !a.controller.ApplyStatus(status) {
		a.logger.Debug("Tray status not applied", zap.String("status", status))
		return
	}
	a.state.SetStatus(tray.ParseStatus(status))
}

func (a *App) handleStatusChange(prev, cur tray.StatusKind) {
	a.shell.SetStatusText(cur)

	if err := a.notifier.StatusChanged(prev, cur); err != nil {
		a.logger.Debug("Notification failed", zap.Error(err))
	}
}

func (a *App) setNotifyOnReady(enabled bool) {
	a.notifier.SetNotifyOnReady(enabled)
	if a.prefs == nil {
		return
	}
	if err := a.prefs.SetNotifyOnReady(enabled); err != nil {
		a.logger.Warn("Failed to save notification setting", zap.Error(err))
	}
}

func (a *App) setNotifyOnError(enabled bool) {
	a.notifier.SetNotifyOnError(enabled)
	if a.prefs == nil {
		return
	}
	if err := a.prefs.SetNotifyOnError(enabled); err != nil {
		a.logger.Warn("Failed to save notification setting", zap.Error(err))
	}
}

func (a *App) shutdown() {
	// Cancel all goroutines
	if a.cancel != nil {
		a.cancel()
	}

	// Close waits for the bridge connections to finish
	if err := a.bridge.Close(); err != nil {
		a.logger.Debug("Bridge close failed", zap.Error(err))
	}

	_ = a.logger.Sync()
}
