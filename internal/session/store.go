package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/DukeRupert/storyshelf/internal/metrics"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// StoreConfig configures a Store. Zero durations, a zero MaxSessions and a
// nil Clock take their defaults in Validate.
type StoreConfig[T any] struct {
	Logger        *slog.Logger
	Clock         clockwork.Clock
	TTL           time.Duration
	SweepInterval time.Duration

	// MaxSessions caps how many sessions are held. Starting one more evicts
	// the least recently used.
	MaxSessions int

	// New builds the value for a fresh session.
	New func() T
}

// Validate checks required fields and fills in defaults.
func (cfg *StoreConfig[T]) Validate() error {
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.New == nil {
		return errors.New("session value constructor is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return nil
}

type entry[T any] struct {
	value    T
	lastSeen time.Time
}

// Store is an in-memory map of session ID to value. Sessions expire after
// TTL without a lookup.
type Store[T any] struct {
	log *slog.Logger
	cfg StoreConfig[T]

	mu       sync.Mutex
	sessions map[string]*entry[T]
}

// NewStore creates an empty store. Call Start to sweep expired sessions.
func NewStore[T any](cfg StoreConfig[T]) (*Store[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Store[T]{
		log:      cfg.Logger,
		cfg:      cfg,
		sessions: make(map[string]*entry[T]),
	}, nil
}

// Get returns the value for id and refreshes its expiry. Expired or unknown
// IDs report false.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	e, ok := s.sessions[id]
	if !ok {
		return zero, false
	}
	now := s.cfg.Clock.Now()
	if s.expired(e, now) {
		s.remove(id)
		return zero, false
	}
	e.lastSeen = now
	return e.value, true
}

// GetOrCreate returns the session for id, or starts a new one when id is
// unknown or expired. The returned ID is the one to set in the cookie. At
// MaxSessions the least recently used session is evicted first.
func (s *Store[T]) GetOrCreate(id string) (string, T, bool) {
	if id != "" {
		if v, ok := s.Get(id); ok {
			return id, v, false
		}
	}

	newID := uuid.NewString()
	v := s.cfg.New()

	s.mu.Lock()
	now := s.cfg.Clock.Now()
	evicted := ""
	if len(s.sessions) >= s.cfg.MaxSessions {
		evicted = s.evictOldest(now)
	}
	s.sessions[newID] = &entry[T]{value: v, lastSeen: now}
	metrics.ConsoleSessions.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	if evicted != "" {
		s.log.Warn("console session limit reached, evicted least recently used", "max", s.cfg.MaxSessions)
	}

	s.log.Debug("console session started", "session_id", newID)
	return newID, v, true
}

// Delete drops a session.
func (s *Store[T]) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(id)
}

// Len returns the number of sessions held, expired ones included until the
// next sweep.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes expired sessions and returns how many were removed.
func (s *Store[T]) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.cfg.Clock.Now()
	removed := 0
	for id, e := range s.sessions {
		if s.expired(e, now) {
			s.remove(id)
			removed++
		}
	}
	return removed
}

// Start sweeps expired sessions every SweepInterval until ctx is done.
func (s *Store[T]) Start(ctx context.Context) {
	go func() {
		ticker := s.cfg.Clock.NewTicker(s.cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				if n := s.Sweep(); n > 0 {
					s.log.Info("expired console sessions removed", "count", n)
				}
			}
		}
	}()
}

func (s *Store[T]) expired(e *entry[T], now time.Time) bool {
	return now.Sub(e.lastSeen) >= s.cfg.TTL
}

// evictOldest drops expired sessions and, when none were expired, the least
// recently used one. It returns the evicted live session ID, if any.
// Caller holds mu.
func (s *Store[T]) evictOldest(now time.Time) string {
	oldestID := ""
	var oldest time.Time
	expired := false
	for id, e := range s.sessions {
		if s.expired(e, now) {
			s.remove(id)
			expired = true
			continue
		}
		if oldestID == "" || e.lastSeen.Before(oldest) {
			oldestID, oldest = id, e.lastSeen
		}
	}
	if expired || oldestID == "" {
		return ""
	}
	s.remove(oldestID)
	return oldestID
}

// remove deletes id. Caller holds mu.
func (s *Store[T]) remove(id string) {
	delete(s.sessions, id)
	metrics.ConsoleSessions.Set(float64(len(s.sessions)))
}
