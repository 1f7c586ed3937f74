package transition

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/BernardRegaspi/portfolio/internal/logging"
)

const (
	DefaultHomePath    = "/"
	DefaultRevealDelay = 200 * time.Millisecond
)

// Revealer runs the reveal animation.
type Revealer interface {
	Reveal(ctx context.Context) error
}

// Scheduler runs f after d. The returned stop function cancels it if it has not fired.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// InitialState is the state a page's overlay must be in the instant it mounts:
// hidden on the home page, covering everywhere else.
func InitialState(path, home string) State {
	if normalize(path) == normalize(home) {
		return Hidden
	}
	return Covered
}

func normalize(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

// Watcher reacts to route changes: it resets the overlay on the home page and
// covers then wipes it open on every other page.
type Watcher struct {
	overlay  *Overlay
	revealer Revealer
	home     string
	delay    time.Duration
	sched    Scheduler
	logger   *slog.Logger
	onReveal func(path string, err error)

	mu       sync.Mutex
	current  string
	observed bool
	pending  *pendingReveal
}

type pendingReveal struct {
	stop   func() bool
	cancel context.CancelFunc
	done   chan struct{}
}

type WatcherOption func(*Watcher)

func WithHomePath(p string) WatcherOption {
	return func(w *Watcher) { w.home = normalize(p) }
}

func WithRevealDelay(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.delay = d }
}

func WithScheduler(s Scheduler) WatcherOption {
	return func(w *Watcher) { w.sched = s }
}

func WithWatcherLogger(l *slog.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = l }
}

// OnReveal registers a callback invoked after each scheduled reveal finishes.
func OnReveal(fn func(path string, err error)) WatcherOption {
	return func(w *Watcher) { w.onReveal = fn }
}

func NewWatcher(overlay *Overlay, revealer Revealer, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		overlay:  overlay,
		revealer: revealer,
		home:     DefaultHomePath,
		delay:    DefaultRevealDelay,
		sched:    timerScheduler{},
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// HomePath is the path treated as the home route.
func (w *Watcher) HomePath() string { return w.home }

// RevealDelay is the pause between covering and revealing a new page.
func (w *Watcher) RevealDelay() time.Duration { return w.delay }

// InitialState is InitialState bound to the watcher's home path.
func (w *Watcher) InitialState(path string) State {
	return InitialState(path, w.home)
}

// Current returns the last observed path.
func (w *Watcher) Current() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Observe handles a (possibly first) path. Repeating the current path does nothing.
func (w *Watcher) Observe(path string) {
	path = normalize(path)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.observed && path == w.current {
		return
	}
	w.current = path
	w.observed = true
	w.cancelPendingLocked()

	if path == w.home {
		w.overlay.ForceHidden()
		return
	}

	// Cover synchronously so the new page never shows before the wipe.
	w.overlay.ForceCovered()

	ctx, cancel := context.WithCancel(context.Background())
	p := &pendingReveal{cancel: cancel, done: make(chan struct{})}
	p.stop = w.sched.AfterFunc(w.delay, func() {
		err := w.revealer.Reveal(ctx)
		close(p.done)
		if err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Warn("reveal failed", "path", path, "error", err)
		}
		if w.onReveal != nil {
			w.onReveal(path, err)
		}
	})
	w.pending = p
}

// Stop cancels any scheduled or running reveal.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cancelPendingLocked()
}

// cancelPendingLocked stops a reveal that has not fired yet, or cancels one in
// flight and waits for it so no frame lands after the next forced state.
func (w *Watcher) cancelPendingLocked() {
	p := w.pending
	if p == nil {
		return
	}
	w.pending = nil
	p.cancel()
	if !p.stop() {
		<-p.done
	}
}
