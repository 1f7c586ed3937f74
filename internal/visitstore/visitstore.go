// Package visitstore keeps preloader visit flags on the server, one scope per
// browser session cookie.
package visitstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/BernardRegaspi/portfolio/internal/preloader"
)

// Backend hands out session-scoped storage.
type Backend interface {
	Scope(sessionID string) preloader.Storage
	Close() error
}

// Memory keeps flags in process memory. Flags are lost on restart. With a
// TTL, sessions untouched for longer read as empty and are swept on writes.
type Memory struct {
	ttl time.Duration
	now func() time.Time

	mu        sync.RWMutex
	sessions  map[string]*memorySession
	lastSweep time.Time
}

type memorySession struct {
	flags   map[string]string
	updated time.Time
}

type MemoryOption func(*Memory)

// WithMemoryTTL expires sessions not written for ttl. Zero means never.
func WithMemoryTTL(ttl time.Duration) MemoryOption {
	return func(m *Memory) { m.ttl = ttl }
}

// WithMemoryClock replaces time.Now.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		now:      time.Now,
		sessions: make(map[string]*memorySession),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.lastSweep = m.now()
	return m
}

func (m *Memory) Scope(sessionID string) preloader.Storage {
	if sessionID == "" {
		return emptySession()
	}
	return memoryScope{m: m, id: sessionID}
}

func (m *Memory) Close() error { return nil }

// Len is the number of sessions holding at least one flag, expired ones
// not yet swept included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Memory) expired(s *memorySession, now time.Time) bool {
	return m.ttl > 0 && now.Sub(s.updated) > m.ttl
}

// sweepLocked drops expired sessions, at most once per TTL.
func (m *Memory) sweepLocked(now time.Time) {
	if m.ttl <= 0 || now.Sub(m.lastSweep) < m.ttl {
		return
	}
	for id, s := range m.sessions {
		if m.expired(s, now) {
			delete(m.sessions, id)
		}
	}
	m.lastSweep = now
}

// liveLocked returns the session if it exists and has not expired.
func (m *Memory) liveLocked(id string, now time.Time) (*memorySession, bool) {
	s, ok := m.sessions[id]
	if !ok || m.expired(s, now) {
		return nil, false
	}
	return s, true
}

type memoryScope struct {
	m  *Memory
	id string
}

func (s memoryScope) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	sess, ok := s.m.liveLocked(s.id, s.m.now())
	if !ok {
		return "", false, nil
	}
	v, ok := sess.flags[key]
	return v, ok, nil
}

func (s memoryScope) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	now := s.m.now()
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.sweepLocked(now)
	sess, ok := s.m.liveLocked(s.id, now)
	if !ok {
		sess = &memorySession{flags: make(map[string]string)}
		s.m.sessions[s.id] = sess
	}
	sess.flags[key] = value
	sess.updated = now
	return nil
}

func (s memoryScope) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	now := s.m.now()
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	sess, ok := s.m.liveLocked(s.id, now)
	if !ok {
		delete(s.m.sessions, s.id)
		return nil
	}
	delete(sess.flags, key)
	sess.updated = now
	if len(sess.flags) == 0 {
		delete(s.m.sessions, s.id)
	}
	return nil
}

// errScope is returned when a backend cannot serve a session at all.
type errScope struct{ err error }

func (e errScope) Get(context.Context, string) (string, bool, error) { return "", false, e.err }
func (e errScope) Set(context.Context, string, string) error         { return e.err }
func (e errScope) Delete(context.Context, string) error              { return e.err }

func emptySession() preloader.Storage {
	return errScope{err: fmt.Errorf("visitstore: empty session id")}
}
