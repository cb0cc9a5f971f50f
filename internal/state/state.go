// Package state remembers the last deployment status shown in the tray.
package state

import (
	"sync"
	"time"

	"github.com/user/venue/internal/tray"
)

// ChangeCallback is called when the status changes
type ChangeCallback func(prev, cur tray.StatusKind)

// State holds the application state
type State struct {
	mu sync.RWMutex

	status    tray.StatusKind
	changedAt time.Time

	// now is swapped in tests
	now func() time.Time

	callbacks []ChangeCallback
}

// New creates a new state manager starting at StatusUnknown
func New() *State {
	return &State{
		status: tray.StatusUnknown,
		now:    time.Now,
	}
}

// OnChange registers a callback for status changes
func (s *State) OnChange(cb ChangeCallback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, cb)
}

func (s *State) notifyChange(prev, cur tray.StatusKind) {
	s.mu.RLock()
	callbacks := make([]ChangeCallback, len(s.callbacks))
	copy(callbacks, s.callbacks)
	s.mu.RUnlock()

	for _, cb := range callbacks {
		cb(prev, cur)
	}
}

// SetStatus records kind and reports whether it differs from the previous
// status. Callbacks only fire on a change.
func (s *State) SetStatus(kind tray.StatusKind) bool {
	s.mu.Lock()
	prev := s.status
	changed := prev != kind
	if changed {
		s.status = kind
		s.changedAt = s.now()
	}
	s.mu.Unlock()

	if changed {
		s.notifyChange(prev, kind)
	}
	return changed
}

// Status returns the current status
func (s *State) Status() tray.StatusKind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// ChangedAt returns when the status last changed; zero if it never has
func (s *State) ChangedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.changedAt
}

// FromDeploymentState maps a deployment state as reported by the hosting
// platform to the status shown in the tray
func FromDeploymentState(state string) tray.StatusKind {
	switch state {
	case "READY":
		return tray.StatusReady
	case "ERROR", "CANCELED":
		return tray.StatusError
	case "BUILDING", "QUEUED", "INITIALIZING":
		return tray.StatusBuilding
	default:
		return tray.StatusUnknown
	}
}
