package notify

import (
	"sync"

	"github.com/gen2brain/beeep"

	"github.com/user/venue/internal/tray"
)

// Notifier handles desktop notifications
type Notifier struct {
	mu            sync.Mutex
	notifyOnReady bool
	notifyOnError bool

	// send is swapped in tests
	send func(title, message, icon string) error
}

// New creates a new notifier
func New(notifyOnReady, notifyOnError bool) *Notifier {
	return &Notifier{
		notifyOnReady: notifyOnReady,
		notifyOnError: notifyOnError,
		send:          sendBeeep,
	}
}

func sendBeeep(title, message, icon string) error {
	return beeep.Notify(title, message, icon)
}

// SetNotifyOnReady enables or disables notifications for finished builds
func (n *Notifier) SetNotifyOnReady(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifyOnReady = enabled
}

// SetNotifyOnError enables or disables notifications for failed builds
func (n *Notifier) SetNotifyOnError(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifyOnError = enabled
}

// StatusChanged sends a notification for the transitions worth interrupting
// the user for: a build finishing and anything failing
func (n *Notifier) StatusChanged(prev, cur tray.StatusKind) error {
	n.mu.Lock()
	onReady, onError := n.notifyOnReady, n.notifyOnError
	n.mu.Unlock()

	switch {
	case prev == tray.StatusBuilding && cur == tray.StatusReady:
		if !onReady {
			return nil
		}
		return n.send("Build ready", "Your deployment is live", "")
	case cur == tray.StatusError && prev != tray.StatusError:
		if !onError {
			return nil
		}
		return n.send("Build failed", "The latest deployment failed", "")
	}
	return nil
}
