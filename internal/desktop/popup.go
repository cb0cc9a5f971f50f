package desktop

import (
	"sync"
	"time"

	"fyne.io/fyne/v2"
)

const (
	settleAttempts = 50
	settleInterval = 10 * time.Millisecond
)

// popup adapts a fyne window to window.Window. fyne cannot report whether a
// window is on screen, so visibility is tracked here.
type popup struct {
	win fyne.Window

	mu        sync.Mutex
	visible   bool
	listeners []func(bool)

	// pending is the last requested origin, reapplied once the native
	// window exists
	pending *[2]int

	// native window hooks, swapped out in tests
	ready func() bool
	move  func(x, y int) error
	focus func()

	settling sync.WaitGroup
}

func newPopup(win fyne.Window) *popup {
	return &popup{
		win:   win,
		ready: func() bool { return nativeReady(win) },
		move:  func(x, y int) error { return moveWindow(win, x, y) },
		focus: win.RequestFocus,
	}
}

func (p *popup) IsVisible() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible, nil
}

// Show is asynchronous in fyne: the native window may not exist when it
// returns, so placement and focus are repeated once it does.
func (p *popup) Show() error {
	p.win.Show()

	p.mu.Lock()
	p.visible = true
	p.mu.Unlock()

	p.settling.Add(1)
	go p.settle()
	return nil
}

func (p *popup) settle() {
	defer p.settling.Done()

	for i := 0; i < settleAttempts && !p.ready(); i++ {
		time.Sleep(settleInterval)
	}

	p.mu.Lock()
	visible, pending := p.visible, p.pending
	p.mu.Unlock()
	if !visible {
		return
	}

	if pending != nil {
		_ = p.move(pending[0], pending[1])
	}
	p.focus()
}

func (p *popup) Hide() error {
	p.win.Hide()

	p.mu.Lock()
	p.visible = false
	p.mu.Unlock()
	return nil
}

func (p *popup) SetPosition(x, y int) error {
	p.mu.Lock()
	p.pending = &[2]int{x, y}
	p.mu.Unlock()

	err := p.move(x, y)
	if err == errNoNativeHandle {
		// placed by settle once the window is realised
		return nil
	}
	return err
}

func (p *popup) SetFocus() error {
	p.focus()
	return nil
}

func (p *popup) OnFocusChanged(fn func(bool)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// focusChanged fans a focus event out to listeners. Events for a hidden
// window are dropped.
func (p *popup) focusChanged(focused bool) {
	p.mu.Lock()
	if !p.visible {
		p.mu.Unlock()
		return
	}
	listeners := make([]func(bool), len(p.listeners))
	copy(listeners, p.listeners)
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(focused)
	}
}
