package scrolllock

import (
	"context"
	"sync"
	"time"

	"github.com/BernardRegaspi/portfolio/internal/navigation"
)

// CloseReason records how the navigation dialog was dismissed.
type CloseReason int

const (
	CloseButton CloseReason = iota
	Escape
	Backdrop
	Navigate
	Unmount
)

func (r CloseReason) String() string {
	switch r {
	case CloseButton:
		return "close-button"
	case Escape:
		return "escape"
	case Backdrop:
		return "backdrop"
	case Navigate:
		return "navigate"
	case Unmount:
		return "unmount"
	default:
		return "unknown"
	}
}

// DefaultCloseDelay lets the menu's closing animation finish before a transition starts.
const DefaultCloseDelay = 350 * time.Millisecond

// Clicker is the link interceptor the menu hands navigation to.
type Clicker interface {
	Click(ctx context.Context, intent navigation.Intent) error
}

// Dialog is the full-screen navigation menu. The page stays locked for as
// long as it is open, and every exit path releases the lock.
type Dialog struct {
	lock       *Lock
	closeDelay time.Duration
	onClose    func(CloseReason)

	mu   sync.Mutex
	open bool
}

type DialogOption func(*Dialog)

func WithCloseDelay(d time.Duration) DialogOption {
	return func(dl *Dialog) { dl.closeDelay = d }
}

// OnClose is called after the dialog closes and the lock is released.
func OnClose(fn func(CloseReason)) DialogOption {
	return func(dl *Dialog) { dl.onClose = fn }
}

func NewDialog(doc *Document, opts ...DialogOption) *Dialog {
	d := &Dialog{lock: NewLock(doc), closeDelay: DefaultCloseDelay}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dialog) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

func (d *Dialog) Open() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.open {
		return
	}
	d.open = true
	d.lock.Acquire()
}

// Toggle is the hamburger button.
func (d *Dialog) Toggle() {
	if d.IsOpen() {
		d.Close(CloseButton)
		return
	}
	d.Open()
}

// Close dismisses the dialog. Closing a closed dialog does nothing.
func (d *Dialog) Close(reason CloseReason) {
	d.mu.Lock()
	if !d.open {
		d.mu.Unlock()
		return
	}
	d.open = false
	d.lock.Release()
	d.mu.Unlock()

	if d.onClose != nil {
		d.onClose(reason)
	}
}

// HandleKey closes on Escape and reports whether the key was consumed.
func (d *Dialog) HandleKey(key string) bool {
	if key != "Escape" || !d.IsOpen() {
		return false
	}
	d.Close(Escape)
	return true
}

// ClickBackdrop closes the dialog from outside its content.
func (d *Dialog) ClickBackdrop() { d.Close(Backdrop) }

// Unmount tears the dialog down, releasing the lock even when it was never closed.
func (d *Dialog) Unmount() {
	d.Close(Unmount)
	d.lock.Release()
}

// Navigate closes the menu, waits for its closing animation and hands the
// click to the interceptor.
func (d *Dialog) Navigate(ctx context.Context, c Clicker, intent navigation.Intent) error {
	d.Close(Navigate)

	if d.closeDelay > 0 {
		t := time.NewTimer(d.closeDelay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return c.Click(ctx, intent)
}
