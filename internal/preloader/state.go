// Package preloader decides, once per browser session, whether the home page
// plays the full loading sequence or the abbreviated one.
package preloader

import (
	"context"
	"fmt"
)

// Session storage keys. Values are "true" or absent.
const (
	KeyIsPageReload         = "isPageReload"
	KeyHasSeenFullPreloader = "hasSeenFullPreloader"

	flagTrue = "true"
)

// Storage is session-scoped key/value storage.
type Storage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// SessionVisitState is the pair of flags persisted for one browser session.
type SessionVisitState struct {
	HasSeenFullPreloader bool `json:"hasSeenFullPreloader"`
	IsPageReload         bool `json:"isPageReload"`
}

// LoadState reads both flags. Missing keys read as false.
func LoadState(ctx context.Context, s Storage) (SessionVisitState, error) {
	reload, err := flag(ctx, s, KeyIsPageReload)
	if err != nil {
		return SessionVisitState{}, err
	}
	seen, err := flag(ctx, s, KeyHasSeenFullPreloader)
	if err != nil {
		return SessionVisitState{}, err
	}
	return SessionVisitState{HasSeenFullPreloader: seen, IsPageReload: reload}, nil
}

func flag(ctx context.Context, s Storage, key string) (bool, error) {
	v, ok, err := s.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", key, err)
	}
	return ok && v == flagTrue, nil
}
