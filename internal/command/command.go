// Package command routes named commands from the bridge to their handlers.
package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/user/venue/internal/state"
)

// SetTrayStatus is the command that swaps the tray icon
const SetTrayStatus = "set_tray_status"

// ErrUnknownCommand is returned by Invoke for names with no handler
var ErrUnknownCommand = errors.New("unknown command")

// Handler runs a command with its raw JSON arguments
type Handler func(args json.RawMessage) error

// Dispatcher maps command names to handlers
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewDispatcher creates an empty dispatcher
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string]Handler),
	}
}

// Register installs h under name, replacing any previous handler
func (d *Dispatcher) Register(name string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[name] = h
}

// Invoke runs the handler registered under name
func (d *Dispatcher) Invoke(name string, args json.RawMessage) error {
	d.mu.RLock()
	h, ok := d.handlers[name]
	d.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return h(args)
}

// Names returns the registered command names
func (d *Dispatcher) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	return names
}

// TrayStatusArgs are the arguments of set_tray_status. DeploymentState is
// only consulted when Status is empty.
type TrayStatusArgs struct {
	Status          string `json:"status"`
	DeploymentState string `json:"deployment_state,omitempty"`
}

// StatusName resolves the arguments to a status name for the tray
func (a TrayStatusArgs) StatusName() string {
	if a.Status == "" && a.DeploymentState != "" {
		return state.FromDeploymentState(a.DeploymentState).String()
	}
	return a.Status
}

// TrayStatusHandler returns the set_tray_status handler. It never fails:
// arguments that do not decode leave the tray untouched.
func TrayStatusHandler(apply func(status string)) Handler {
	return func(args json.RawMessage) error {
		var a TrayStatusArgs
		if len(args) > 0 {
			if err := json.Unmarshal(args, &a); err != nil {
				return nil
			}
		}
		apply(a.StatusName())
		return nil
	}
}
