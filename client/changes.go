package client

import (
	"sync"
	"time"
)

// Accepted changes kept per client
const maxRecentChanges = 10

// Change is an accepted, timestamped snapshot of submitted content. It is
// created by the submission pipeline and never mutated afterwards.
type Change struct {
	ID         string    `json:"id"`
	Author     string    `json:"author"`
	Color      string    `json:"color"`
	Content    string    `json:"content"`
	AcceptedAt time.Time `json:"acceptedAt"`
}

// ChangeLog is the bounded, newest-first list of changes this client has
// submitted. It is local state only and resets with the session.
type ChangeLog struct {
	mu      sync.Mutex
	entries []Change
}

func NewChangeLog() *ChangeLog {
	return &ChangeLog{}
}

// Record prepends the change, evicting the oldest entry past the cap.
func (l *ChangeLog) Record(change Change) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append([]Change{change}, l.entries...)
	if len(l.entries) > maxRecentChanges {
		l.entries = l.entries[:maxRecentChanges]
	}
}

// All returns the changes newest-first.
func (l *ChangeLog) All() []Change {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make([]Change, len(l.entries))
	copy(entries, l.entries)
	return entries
}
