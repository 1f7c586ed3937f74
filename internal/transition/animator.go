package transition

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/BernardRegaspi/portfolio/internal/logging"
)

// DefaultFrame is the step between animation frames (60 fps).
const DefaultFrame = time.Second / 60

// Clock is the time source the animator steps frames with.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// Renderer receives every frame of an animation.
type Renderer interface {
	Render(blocks []Block)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(blocks []Block)

func (f RendererFunc) Render(blocks []Block) { f(blocks) }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Animator runs the cover and reveal animations over an Overlay.
// Runs are serialized: a second call waits for the first to finish.
type Animator struct {
	overlay  *Overlay
	clock    Clock
	renderer Renderer
	frame    time.Duration
	cover    Tween
	reveal   Tween
	logger   *slog.Logger

	mu sync.Mutex
}

type AnimatorOption func(*Animator)

func WithClock(c Clock) AnimatorOption {
	return func(a *Animator) { a.clock = c }
}

func WithRenderer(r Renderer) AnimatorOption {
	return func(a *Animator) { a.renderer = r }
}

// WithFrame sets the frame step. Non-positive values are ignored.
func WithFrame(d time.Duration) AnimatorOption {
	return func(a *Animator) {
		if d > 0 {
			a.frame = d
		}
	}
}

func WithTweens(cover, reveal Tween) AnimatorOption {
	return func(a *Animator) {
		a.cover = cover
		a.reveal = reveal
	}
}

func WithLogger(l *slog.Logger) AnimatorOption {
	return func(a *Animator) { a.logger = l }
}

func NewAnimator(overlay *Overlay, opts ...AnimatorOption) *Animator {
	a := &Animator{
		overlay: overlay,
		clock:   realClock{},
		frame:   DefaultFrame,
		cover:   CoverTween,
		reveal:  RevealTween,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Overlay returns the grid the animator drives.
func (a *Animator) Overlay() *Overlay { return a.overlay }

// Cover shows every block at scale 0 and grows them to 1, column by column.
// It returns once the last column is fully grown.
func (a *Animator) Cover(ctx context.Context) error {
	if a.overlay.Len() == 0 {
		a.logger.Debug("no transition blocks found", "op", "cover")
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	a.overlay.Set(State{Visible: true, Scale: 0})
	return a.run(ctx, a.cover, 0, 1)
}

// Reveal shrinks covering blocks to 0 and then hides them.
func (a *Animator) Reveal(ctx context.Context) error {
	if a.overlay.Len() == 0 {
		a.logger.Debug("no transition blocks found", "op", "reveal")
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.run(ctx, a.reveal, 1, 0); err != nil {
		return err
	}
	a.overlay.ForceHidden()
	a.render()
	return nil
}

func (a *Animator) run(ctx context.Context, tw Tween, from, to float64) error {
	_, cols := a.overlay.Dims()
	total := tw.Total(cols)
	start := a.clock.Now()

	for {
		elapsed := a.clock.Now().Sub(start)
		if elapsed > total {
			elapsed = total
		}
		a.overlay.update(func(b *Block) {
			b.Scale = from + (to-from)*tw.Progress(b.Col, elapsed)
		})
		a.render()

		if elapsed >= total {
			return nil
		}
		if err := a.clock.Sleep(ctx, a.frame); err != nil {
			return err
		}
	}
}

func (a *Animator) render() {
	if a.renderer != nil {
		a.renderer.Render(a.overlay.Snapshot())
	}
}
