package session

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type console struct {
	n int
}

func newTestStore(t *testing.T, clock clockwork.Clock) *Store[*console] {
	t.Helper()
	n := 0
	s, err := NewStore(StoreConfig[*console]{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Clock:  clock,
		TTL:    30 * time.Minute,
		New: func() *console {
			n++
			return &console{n: n}
		},
	})
	require.NoError(t, err)
	return s
}

func TestStoreConfig_Validate(t *testing.T) {
	cfg := StoreConfig[int]{New: func() int { return 0 }}
	assert.Error(t, cfg.Validate(), "logger is required")

	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultTTL, cfg.TTL)
	assert.Equal(t, DefaultSweepInterval, cfg.SweepInterval)
	assert.NotNil(t, cfg.Clock)
	assert.Equal(t, DefaultMaxSessions, cfg.MaxSessions)

	cfg.New = nil
	assert.Error(t, cfg.Validate())
}

func TestGetOrCreate(t *testing.T) {
	s := newTestStore(t, clockwork.NewFakeClock())

	id, first, created := s.GetOrCreate("")
	require.True(t, created)
	require.NotEmpty(t, id)

	sameID, again, created := s.GetOrCreate(id)
	assert.False(t, created)
	assert.Equal(t, id, sameID)
	assert.Same(t, first, again, "one value per browser")

	otherID, other, created := s.GetOrCreate("unknown-id")
	assert.True(t, created)
	assert.NotEqual(t, id, otherID)
	assert.NotSame(t, first, other)
	assert.Equal(t, 2, s.Len())
}

func TestSessionsExpireAfterIdleTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := newTestStore(t, clock)

	id, _, _ := s.GetOrCreate("")

	clock.Advance(29 * time.Minute)
	_, ok := s.Get(id)
	require.True(t, ok, "still within the TTL")

	// The lookup above refreshed the expiry.
	clock.Advance(29 * time.Minute)
	_, ok = s.Get(id)
	require.True(t, ok)

	clock.Advance(30 * time.Minute)
	_, ok = s.Get(id)
	assert.False(t, ok, "idle for a full TTL")
	assert.Equal(t, 0, s.Len())

	newID, _, created := s.GetOrCreate(id)
	assert.True(t, created)
	assert.NotEqual(t, id, newID)
}

func TestSweep(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := newTestStore(t, clock)

	old, _, _ := s.GetOrCreate("")
	clock.Advance(20 * time.Minute)
	fresh, _, _ := s.GetOrCreate("")
	clock.Advance(15 * time.Minute)

	assert.Equal(t, 1, s.Sweep())
	_, ok := s.Get(old)
	assert.False(t, ok)
	_, ok = s.Get(fresh)
	assert.True(t, ok)
}

func TestStart_SweepsOnTicker(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := newTestStore(t, clock)
	s.GetOrCreate("")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(31 * time.Minute)

	assert.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestDelete(t *testing.T) {
	s := newTestStore(t, clockwork.NewFakeClock())
	id, _, _ := s.GetOrCreate("")
	s.Delete(id)
	_, ok := s.Get(id)
	assert.False(t, ok)
}

func TestGetOrCreate_EvictsLeastRecentlyUsedAtCap(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s, err := NewStore(StoreConfig[*console]{
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Clock:       clock,
		TTL:         30 * time.Minute,
		MaxSessions: 2,
		New:         func() *console { return &console{} },
	})
	require.NoError(t, err)

	first, _, _ := s.GetOrCreate("")
	clock.Advance(time.Minute)
	second, _, _ := s.GetOrCreate("")
	clock.Advance(time.Minute)
	_, _, created := s.GetOrCreate(first)
	require.False(t, created, "touching first makes second the oldest")

	third, _, created := s.GetOrCreate("")
	require.True(t, created)
	assert.Equal(t, 2, s.Len())

	_, ok := s.Get(second)
	assert.False(t, ok, "least recently used session is evicted")
	_, ok = s.Get(first)
	assert.True(t, ok)
	_, ok = s.Get(third)
	assert.True(t, ok)
}

func TestGetOrCreate_AtCapPrefersExpiredSessions(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s, err := NewStore(StoreConfig[*console]{
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Clock:       clock,
		TTL:         10 * time.Minute,
		MaxSessions: 2,
		New:         func() *console { return &console{} },
	})
	require.NoError(t, err)

	stale, _, _ := s.GetOrCreate("")
	clock.Advance(11 * time.Minute)
	live, _, _ := s.GetOrCreate("")

	_, _, created := s.GetOrCreate("")
	require.True(t, created)

	assert.Equal(t, 2, s.Len())
	_, ok := s.Get(live)
	assert.True(t, ok)
	_, ok = s.Get(stale)
	assert.False(t, ok)
}
