package navigation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync/atomic"

	"github.com/BernardRegaspi/portfolio/internal/logging"
)

var (
	// ErrExternal is returned for links that leave the site; they are not intercepted.
	ErrExternal = errors.New("navigation: external link")
	// ErrInFlight is returned for clicks made while a transition is running.
	ErrInFlight = errors.New("navigation: transition in flight")
)

// Intent is a requested in-site navigation.
type Intent struct {
	Target string
}

// NewIntent turns a link href into an Intent. Absolute hrefs must point at
// origin; the origin and any fragment are dropped.
func NewIntent(href, origin string) (Intent, error) {
	u, err := url.Parse(href)
	if err != nil {
		return Intent{}, fmt.Errorf("parsing href %q: %w", href, err)
	}
	if u.Scheme != "" || u.Host != "" {
		o, err := url.Parse(origin)
		if err != nil {
			return Intent{}, fmt.Errorf("parsing origin %q: %w", origin, err)
		}
		if u.Scheme != o.Scheme || u.Host != o.Host {
			return Intent{}, ErrExternal
		}
	}

	target := u.Path
	if target == "" {
		target = HomePath
	}
	if u.RawQuery != "" {
		target += "?" + u.RawQuery
	}
	return Intent{Target: target}, nil
}

// Coverer plays the closing transition.
type Coverer interface {
	Cover(ctx context.Context) error
}

// Navigator performs the actual page change.
type Navigator interface {
	Navigate(ctx context.Context, path string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, path string) error

func (f NavigatorFunc) Navigate(ctx context.Context, path string) error { return f(ctx, path) }

// Interceptor wraps in-site link clicks: it covers the viewport, and only
// then navigates. Clicks made while one is running are dropped.
type Interceptor struct {
	cover   Coverer
	nav     Navigator
	current func() string
	logger  *slog.Logger

	inFlight atomic.Bool
}

type InterceptorOption func(*Interceptor)

func WithLogger(l *slog.Logger) InterceptorOption {
	return func(i *Interceptor) { i.logger = l }
}

// NewInterceptor builds an interceptor; current reports the page the user is on.
func NewInterceptor(cover Coverer, nav Navigator, current func() string, opts ...InterceptorOption) *Interceptor {
	i := &Interceptor{
		cover:   cover,
		nav:     nav,
		current: current,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// InFlight reports whether a transition is running.
func (i *Interceptor) InFlight() bool { return i.inFlight.Load() }

// Click handles an in-site link activation.
func (i *Interceptor) Click(ctx context.Context, intent Intent) error {
	if !i.inFlight.CompareAndSwap(false, true) {
		i.logger.Debug("click ignored during transition", "target", intent.Target)
		return ErrInFlight
	}
	defer i.inFlight.Store(false)

	if Canonical(intent.Target) == Canonical(i.current()) {
		return i.nav.Navigate(ctx, intent.Target)
	}

	if err := i.cover.Cover(ctx); err != nil {
		return fmt.Errorf("covering before navigation: %w", err)
	}
	return i.nav.Navigate(ctx, intent.Target)
}
