package preloader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/BernardRegaspi/portfolio/internal/logging"
)

// Phase is the state of the preloader for one page mount.
type Phase int

const (
	Uninitialized Phase = iota
	FullPreloader
	ShortPreloader
	Done
)

func (p Phase) String() string {
	switch p {
	case Uninitialized:
		return "uninitialized"
	case FullPreloader:
		return "full"
	case ShortPreloader:
		return "short"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Variant is the preloader sequence a page plays.
type Variant string

const (
	VariantFull  Variant = "full"
	VariantShort Variant = "short"
)

// Timings of the short sequence: shown, then faded out.
const (
	ShortVisible = 900 * time.Millisecond
	ShortFade    = 900 * time.Millisecond
)

var ErrNotStarted = errors.New("preloader not started")

// Releaser releases a held resource; the scroll lock during the preloader.
type Releaser interface {
	Release()
}

// Machine is the preloader state machine for one home page mount.
type Machine struct {
	storage Storage
	home    string
	lock    Releaser
	onHide  func()
	logger  *slog.Logger

	mu      sync.Mutex
	phase   Phase
	seen    bool
	variant Variant
}

type Option func(*Machine)

func WithHomePath(p string) Option {
	return func(m *Machine) { m.home = p }
}

// WithScrollLock releases l when the preloader completes.
func WithScrollLock(l Releaser) Option {
	return func(m *Machine) { m.lock = l }
}

// WithOnHide is called when the preloader completes, before flags are written.
func WithOnHide(fn func()) Option {
	return func(m *Machine) { m.onHide = fn }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) { m.logger = l }
}

func New(storage Storage, opts ...Option) *Machine {
	m := &Machine{
		storage: storage,
		home:    "/",
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Phase reports the current phase.
func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Start picks the variant for this mount. A pending reload flag clears both
// flags and forces the full sequence. On a storage error the full sequence is
// chosen and the error is returned alongside it.
func (m *Machine) Start(ctx context.Context) (Variant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != Uninitialized {
		return m.variant, nil
	}

	v, seen, err := m.decide(ctx)
	m.variant, m.seen = v, seen
	if v == VariantShort {
		m.phase = ShortPreloader
	} else {
		m.phase = FullPreloader
	}
	m.logger.Debug("preloader started", "variant", v)
	return v, err
}

func (m *Machine) decide(ctx context.Context) (Variant, bool, error) {
	state, err := LoadState(ctx, m.storage)
	if err != nil {
		return VariantFull, false, err
	}

	if state.IsPageReload {
		if err := m.storage.Delete(ctx, KeyIsPageReload); err != nil {
			return VariantFull, false, fmt.Errorf("clearing %s: %w", KeyIsPageReload, err)
		}
		if err := m.storage.Delete(ctx, KeyHasSeenFullPreloader); err != nil {
			return VariantFull, false, fmt.Errorf("clearing %s: %w", KeyHasSeenFullPreloader, err)
		}
		return VariantFull, false, nil
	}

	if state.HasSeenFullPreloader {
		return VariantShort, true, nil
	}
	return VariantFull, false, nil
}

// Resume restores a machine for a mount whose variant was chosen by an earlier
// Start, typically in another request. Only the short variant implies the
// full sequence was already seen.
func (m *Machine) Resume(v Variant) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != Uninitialized {
		return
	}
	m.variant = v
	m.seen = v == VariantShort
	if m.seen {
		m.phase = ShortPreloader
	} else {
		m.variant = VariantFull
		m.phase = FullPreloader
	}
}

// Unload records that the page is being unloaded from path. Only unloading the
// home page marks the next home load as a reload.
func (m *Machine) Unload(ctx context.Context, path string) error {
	if path != m.home {
		return nil
	}
	if err := m.storage.Set(ctx, KeyIsPageReload, flagTrue); err != nil {
		return fmt.Errorf("setting %s: %w", KeyIsPageReload, err)
	}
	return nil
}

// Complete finishes whichever variant is running: it hides the preloader,
// records that the full sequence has been seen and releases the scroll lock.
// Completing twice is a no-op.
func (m *Machine) Complete(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.phase {
	case Uninitialized:
		return ErrNotStarted
	case Done:
		return nil
	}

	m.phase = Done
	if m.onHide != nil {
		m.onHide()
	}
	// Release before touching storage so a storage failure never leaves the page locked.
	if m.lock != nil {
		m.lock.Release()
	}

	if !m.seen {
		if err := m.storage.Set(ctx, KeyHasSeenFullPreloader, flagTrue); err != nil {
			return fmt.Errorf("setting %s: %w", KeyHasSeenFullPreloader, err)
		}
		m.seen = true
	}
	return nil
}
