package client

import (
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// How long the confirmation indicator stays raised after a submission
const defaultConfirmFor = 1500 * time.Millisecond

// Submitter gates when locally composed content becomes an accepted change:
// it validates that the editing surface is non-blank, records the change,
// clears the surface through the framework's normal transaction path, and
// announces the change over awareness. It never panics at the user; every
// failure is logged and surfaced as a generic notice.
type Submitter struct {
	editor  Editor
	changes *ChangeLog
	aware   *Awareness
	author  Participant

	confirmFor time.Duration

	// Raised/lowered around the transient confirmation indicator
	onConfirm func(visible bool)

	// Generic failure notice for the user
	onNotice func(message string)

	mu           sync.Mutex
	hasContent   bool
	confirmTimer *time.Timer
	closed       bool
}

// SubmitterConfig wires the pipeline to its collaborators. Editor may be
// nil until the view exists; Submit stays a no-op until it is bound.
type SubmitterConfig struct {
	Editor     Editor
	Changes    *ChangeLog
	Awareness  *Awareness
	Author     Participant
	ConfirmFor time.Duration
	OnConfirm  func(visible bool)
	OnNotice   func(message string)
}

func NewSubmitter(cfg SubmitterConfig) *Submitter {
	if cfg.ConfirmFor <= 0 {
		cfg.ConfirmFor = defaultConfirmFor
	}
	if cfg.Changes == nil {
		cfg.Changes = NewChangeLog()
	}
	return &Submitter{
		editor:     cfg.Editor,
		changes:    cfg.Changes,
		aware:      cfg.Awareness,
		author:     cfg.Author,
		confirmFor: cfg.ConfirmFor,
		onConfirm:  cfg.OnConfirm,
		onNotice:   cfg.OnNotice,
	}
}

// Changes returns the store backing the recent-changes panel.
func (s *Submitter) Changes() *ChangeLog {
	return s.changes
}

// Refresh re-derives the surface state from the editor's content. Call it
// after every local transaction.
func (s *Submitter) Refresh() {
	if s.editor == nil {
		return
	}
	blank := strings.TrimSpace(s.editor.PlainText()) == ""

	s.mu.Lock()
	s.hasContent = !blank
	s.mu.Unlock()
}

// HasContent reports whether the surface currently holds submittable text.
func (s *Submitter) HasContent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasContent
}

// Submit accepts the composed content as a change. With a blank surface or
// no bound editor it does nothing and reports false. On success the change
// is recorded newest-first, the surface is cleared through the framework
// (so peers see the clear like any edit), the change is announced over
// awareness, and the confirmation indicator is raised for a fixed duration.
//
// If clearing fails after the change was recorded, the record stays; the
// failure is logged and surfaced as a notice.
func (s *Submitter) Submit() bool {
	if s.editor == nil {
		return false
	}

	content := strings.TrimSpace(s.editor.PlainText())
	if content == "" {
		return false
	}

	change := Change{
		ID:         uuid.NewString(),
		Author:     s.author.Name,
		Color:      s.author.Color,
		Content:    content,
		AcceptedAt: time.Now(),
	}
	s.changes.Record(change)

	if err := s.editor.Clear(); err != nil {
		log.Printf("Submit: clearing surface failed: %v", err)
		s.notice("Something went wrong submitting your change")
		return false
	}

	s.mu.Lock()
	s.hasContent = false
	s.mu.Unlock()

	if s.aware != nil {
		if err := s.aware.SetLocal("lastChange", change); err != nil {
			log.Printf("Submit: change announcement failed: %v", err)
		}
	}

	s.raiseConfirmation()
	return true
}

func (s *Submitter) notice(message string) {
	if s.onNotice != nil {
		s.onNotice(message)
	}
}

func (s *Submitter) raiseConfirmation() {
	if s.onConfirm == nil {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.confirmTimer != nil {
		s.confirmTimer.Stop()
	}
	s.confirmTimer = time.AfterFunc(s.confirmFor, func() {
		s.onConfirm(false)
	})
	s.mu.Unlock()

	s.onConfirm(true)
}

// Close cancels any pending confirmation timer. Idempotent.
func (s *Submitter) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.confirmTimer != nil {
		s.confirmTimer.Stop()
		s.confirmTimer = nil
	}
}
