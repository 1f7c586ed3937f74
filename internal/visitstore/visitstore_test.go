package visitstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BernardRegaspi/portfolio/internal/db"
	"github.com/BernardRegaspi/portfolio/internal/preloader"
	"github.com/BernardRegaspi/portfolio/internal/visitstore"
)

// runBackendContract checks the behaviour every backend must share.
func runBackendContract(t *testing.T, b visitstore.Backend) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing keys", func(t *testing.T) {
		_, ok, err := b.Scope("fresh").Get(ctx, preloader.KeyIsPageReload)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("set get delete", func(t *testing.T) {
		s := b.Scope("alpha")
		require.NoError(t, s.Set(ctx, preloader.KeyHasSeenFullPreloader, "true"))
		v, ok, err := s.Get(ctx, preloader.KeyHasSeenFullPreloader)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "true", v)

		require.NoError(t, s.Delete(ctx, preloader.KeyHasSeenFullPreloader))
		_, ok, err = s.Get(ctx, preloader.KeyHasSeenFullPreloader)
		require.NoError(t, err)
		assert.False(t, ok)

		// deleting a missing key is fine
		require.NoError(t, s.Delete(ctx, preloader.KeyHasSeenFullPreloader))
	})

	t.Run("sessions are isolated", func(t *testing.T) {
		require.NoError(t, b.Scope("one").Set(ctx, preloader.KeyIsPageReload, "true"))
		_, ok, err := b.Scope("two").Get(ctx, preloader.KeyIsPageReload)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("empty session id is rejected", func(t *testing.T) {
		_, _, err := b.Scope("").Get(ctx, preloader.KeyIsPageReload)
		assert.Error(t, err)
		assert.Error(t, b.Scope("").Set(ctx, preloader.KeyIsPageReload, "true"))
	})

	t.Run("drives the preloader machine", func(t *testing.T) {
		store := b.Scope("machine")
		m := preloader.New(store)
		v, err := m.Start(ctx)
		require.NoError(t, err)
		assert.Equal(t, preloader.VariantFull, v)
		require.NoError(t, m.Complete(ctx))

		v, err = preloader.New(store).Start(ctx)
		require.NoError(t, err)
		assert.Equal(t, preloader.VariantShort, v)
	})
}

func TestMemoryBackend(t *testing.T) {
	m := visitstore.NewMemory()
	runBackendContract(t, m)
	require.NoError(t, m.Close())
}

func TestMemoryDropsEmptySessions(t *testing.T) {
	ctx := context.Background()
	m := visitstore.NewMemory()
	s := m.Scope("x")
	require.NoError(t, s.Set(ctx, "k", "v"))
	assert.Equal(t, 1, m.Len())
	require.NoError(t, s.Delete(ctx, "k"))
	assert.Equal(t, 0, m.Len())
}

func TestMemoryExpiresIdleSessions(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m := visitstore.NewMemory(
		visitstore.WithMemoryTTL(time.Hour),
		visitstore.WithMemoryClock(func() time.Time { return now }),
	)

	require.NoError(t, m.Scope("idle").Set(ctx, preloader.KeyHasSeenFullPreloader, "true"))
	require.NoError(t, m.Scope("busy").Set(ctx, preloader.KeyHasSeenFullPreloader, "true"))

	now = now.Add(45 * time.Minute)
	require.NoError(t, m.Scope("busy").Set(ctx, preloader.KeyIsPageReload, "true"))

	now = now.Add(30 * time.Minute)
	_, ok, err := m.Scope("idle").Get(ctx, preloader.KeyHasSeenFullPreloader)
	require.NoError(t, err)
	assert.False(t, ok, "idle session outlived its ttl")
	_, ok, err = m.Scope("busy").Get(ctx, preloader.KeyHasSeenFullPreloader)
	require.NoError(t, err)
	assert.True(t, ok)

	// A write from a new cookie sweeps the idle session away.
	require.NoError(t, m.Scope("fresh").Set(ctx, preloader.KeyIsPageReload, "true"))
	assert.Equal(t, 2, m.Len())

	// An expired session starts over instead of resurrecting old flags.
	require.NoError(t, m.Scope("idle").Set(ctx, preloader.KeyIsPageReload, "true"))
	_, ok, err = m.Scope("idle").Get(ctx, preloader.KeyHasSeenFullPreloader)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := visitstore.NewMemory().Scope("x").Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSQLiteBackend(t *testing.T) {
	d, err := db.OpenMemory()
	require.NoError(t, err)
	defer d.Close()

	runBackendContract(t, visitstore.NewSQLite(d))
}

func TestRedisBackend(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	r := visitstore.NewRedisFromClient(client, visitstore.WithTTL(time.Hour))
	defer r.Close()

	require.NoError(t, r.Ping(context.Background()))
	runBackendContract(t, r)
}

func TestRedisTTLAndPrefix(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	r := visitstore.NewRedis(mr.Addr(), "", 0,
		visitstore.WithPrefix("test:"),
		visitstore.WithTTL(30*time.Minute))
	defer r.Close()

	require.NoError(t, r.Scope("abc").Set(ctx, preloader.KeyHasSeenFullPreloader, "true"))
	assert.True(t, mr.Exists("test:abc"))
	assert.Equal(t, 30*time.Minute, mr.TTL("test:abc"))
	assert.Equal(t, "true", mr.HGet("test:abc", preloader.KeyHasSeenFullPreloader))

	mr.FastForward(31 * time.Minute)
	_, ok, err := r.Scope("abc").Get(ctx, preloader.KeyHasSeenFullPreloader)
	require.NoError(t, err)
	assert.False(t, ok, "flags expire with the session")
}
