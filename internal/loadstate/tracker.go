// Package loadstate tracks a remote load through idle, loading, loaded and
// failed states.
//
// Every Begin issues a new request ID and cancels the previous in-flight
// request. Outcomes are applied only when their ticket carries the latest
// ID, so a slow response for an old request can never overwrite newer data.
package loadstate

import (
	"context"
	"sync"
)

// State is the phase of the tracked load.
type State int

const (
	Idle State = iota
	Loading
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Ticket identifies one request issued by Begin.
type Ticket struct {
	ID uint64
}

// Tracker holds the load state for a value of type T. The zero value is
// ready to use. Safe for concurrent use.
type Tracker[T any] struct {
	mu      sync.Mutex
	state   State
	latest  uint64
	cancel  context.CancelFunc
	data    T
	hasData bool
	err     error
}

// Begin starts a new request. The returned context is cancelled when a later
// Begin supersedes this request or when the parent is done.
func (t *Tracker[T]) Begin(parent context.Context) (context.Context, Ticket) {
	ctx, cancel := context.WithCancel(parent)

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}
	t.latest++
	t.cancel = cancel
	t.state = Loading
	return ctx, Ticket{ID: t.latest}
}

// Succeed records data for the request. It returns false, and changes
// nothing, when the ticket is stale.
func (t *Tracker[T]) Succeed(ticket Ticket, data T) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.isCurrent(ticket) {
		return false
	}
	t.finish()
	t.state = Loaded
	t.data = data
	t.hasData = true
	t.err = nil
	return true
}

// Fail records a failure for the request. Previously loaded data is kept.
// It returns false when the ticket is stale.
func (t *Tracker[T]) Fail(ticket Ticket, err error) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.isCurrent(ticket) {
		return false
	}
	t.finish()
	t.state = Failed
	t.err = err
	return true
}

// IsCurrent reports whether ticket belongs to the latest request.
func (t *Tracker[T]) IsCurrent(ticket Ticket) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.isCurrent(ticket)
}

// State returns the current phase and, while loading, the in-flight request ID.
func (t *Tracker[T]) State() (State, uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == Loading {
		return t.state, t.latest
	}
	return t.state, 0
}

// Data returns the last successfully loaded value.
func (t *Tracker[T]) Data() (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.data, t.hasData
}

// Err returns the error of the last failed request, or nil.
func (t *Tracker[T]) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *Tracker[T]) isCurrent(ticket Ticket) bool {
	return ticket.ID != 0 && ticket.ID == t.latest && t.state == Loading
}

// finish releases the context of the completed request. Caller holds mu.
func (t *Tracker[T]) finish() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}
