// Package bridge lets other local processes invoke commands on the running
// tray app over a loopback websocket.
package bridge

import (
	"encoding/json"
	"errors"
	"time"
)

const (
	// Path is the websocket endpoint served by the bridge
	Path = "/invoke"

	writeTimeout = 5 * time.Second
	readLimit    = 64 << 10
)

var (
	// ErrUnauthorized is returned when the bridge rejects the token
	ErrUnauthorized = errors.New("bridge rejected the token")

	// ErrCommandFailed wraps the error text reported by the running app
	ErrCommandFailed = errors.New("command failed")

	// ErrNotLoopback is returned when asked to listen on a non-loopback address
	ErrNotLoopback = errors.New("bridge must listen on a loopback address")
)

// Request is one command invocation
type Request struct {
	ID   string          `json:"id"`
	Cmd  string          `json:"cmd"`
	Args json.RawMessage `json:"args,omitempty"`
}

// Response is the reply to a Request with the same ID
type Response struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Invoker runs a named command
type Invoker interface {
	Invoke(name string, args json.RawMessage) error
}
