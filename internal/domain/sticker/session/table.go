package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Table owns all live sessions keyed by user id
type Table struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	now      func() time.Time
}

// NewTable creates an empty session table
func NewTable() *Table {
	return &Table{
		sessions: make(map[int64]*Session),
		now:      time.Now,
	}
}

// Get returns the user's session and refreshes its idle clock
func (t *Table) Get(userID int64) (*Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[userID]
	if ok {
		s.LastSeen = t.now()
	}
	return s, ok
}

// Start replaces any existing session with a fresh one in intake
func (t *Table) Start(userID, chatID int64, mode Mode) *Session {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := New(userID, chatID, mode)
	s.LastSeen = t.now()
	t.sessions[userID] = s
	return s
}

// Reset tears down the user's session. Resetting a missing session is a no-op.
func (t *Table) Reset(userID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.sessions, userID)
}

// Len returns the number of live sessions
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.sessions)
}

// Sweep removes sessions idle for longer than idle and returns how many were removed
func (t *Table) Sweep(idle time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-idle)
	removed := 0
	for id, s := range t.sessions {
		if s.LastSeen.Before(cutoff) {
			delete(t.sessions, id)
			removed++
		}
	}
	return removed
}

// RunJanitor sweeps idle sessions every interval until ctx is done
func (t *Table) RunJanitor(ctx context.Context, interval, idle time.Duration, logger zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := t.Sweep(idle); n > 0 {
				logger.Info().Int("removed", n).Dur("idle", idle).Msg("Discarded idle sessions")
			}
		}
	}
}
