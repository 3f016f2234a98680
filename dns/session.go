package dns

import (
	"sync"

	"github.com/google/uuid"
)

// NewSessionID returns a fresh check session identifier.
func NewSessionID() string {
	return uuid.New().String()
}

// Latest tracks the most recently started check. Summaries from any earlier
// session are rejected, so a slow abandoned check cannot overwrite newer
// results.
type Latest struct {
	mu      sync.Mutex
	id      string
	summary *CheckSummary
}

// Begin starts a new session and discards the previous summary.
func (l *Latest) Begin() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.id = NewSessionID()
	l.summary = nil
	return l.id
}

// Current returns the active session ID, or "" before the first Begin.
func (l *Latest) Current() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.id
}

// IsCurrent reports whether id belongs to the active session.
func (l *Latest) IsCurrent(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return id != "" && id == l.id
}

// Commit stores s if it belongs to the active session and reports whether it
// was accepted.
func (l *Latest) Commit(s *CheckSummary) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if s == nil || s.SessionID == "" || s.SessionID != l.id {
		return false
	}
	l.summary = s
	return true
}

// Summary returns the committed summary of the active session, if any.
func (l *Latest) Summary() *CheckSummary {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.summary
}
