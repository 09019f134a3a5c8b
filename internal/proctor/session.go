package proctor

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// FinishReason identifies which terminal transition ended a session.
type FinishReason string

const (
	FinishManual     FinishReason = "MANUAL"
	FinishTimeout    FinishReason = "TIMEOUT"
	FinishTerminated FinishReason = "TERMINATED"
)

// Snapshot is the immutable state handed to the finish callback: everything
// the submission coordinator needs to persist the attempt.
type Snapshot struct {
	SessionID     uuid.UUID
	ExamID        uuid.UUID
	StudentName   string
	StudentEmail  *string
	Answers       []int
	WarningCount  int
	WasTerminated bool
	StartedAt     time.Time
}

// SessionConfig describes a proctored session before it starts.
type SessionConfig struct {
	ExamID        uuid.UUID
	StudentName   string
	StudentEmail  *string
	QuestionCount int
	Duration      time.Duration
	Monitor       Config

	// OnFinish is invoked exactly once, on whichever terminal transition
	// fires first: manual submit, countdown expiry, or the third warning.
	// It runs outside the session lock.
	OnFinish func(FinishReason, Snapshot)
}

// Session is the explicit per-student exam session: it owns the violation
// monitor, the countdown timer, and the answer buffer, and funnels every
// state change through its lock. Terminal transitions race freely (the
// countdown fires on a timer goroutine while samples arrive from the
// connection's read loop); the done latch guarantees that at most one of
// them reaches the finish callback, and that the timer is stopped on every
// exit path.
type Session struct {
	cfg SessionConfig
	id  uuid.UUID

	mu        sync.Mutex
	answers   []int
	monitor   *Monitor
	startedAt time.Time
	deadline  *time.Timer
	done      bool
}

// NewSession creates a session in its pre-start state.
func NewSession(cfg SessionConfig) *Session {
	answers := make([]int, cfg.QuestionCount)
	for i := range answers {
		answers[i] = -1 // unanswered
	}
	return &Session{
		cfg:     cfg,
		id:      uuid.New(),
		answers: answers,
		monitor: NewMonitor(cfg.Monitor),
	}
}

// ID returns the opaque session id.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// StudentName returns the student identity supplied at start.
func (s *Session) StudentName() string {
	return s.cfg.StudentName
}

// Start records the true start instant and arms the countdown. Calling it on
// a finished session is a no-op.
func (s *Session) Start(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done || s.deadline != nil {
		return
	}
	s.startedAt = now
	s.deadline = time.AfterFunc(s.cfg.Duration, func() {
		s.finish(FinishTimeout)
	})
}

// Answer records the selected option for a question. Out-of-range question
// indices and input after a terminal transition are ignored.
func (s *Session) Answer(question, option int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done || question < 0 || question >= len(s.answers) {
		return
	}
	s.answers[question] = option
}

// Sample feeds one face-count observation through the monitor. The returned
// violation, if any, carries the running warning count for the client
// notification. A terminal violation triggers forced submission before
// Sample returns; all later samples are dropped.
func (s *Session) Sample(faceCount int, now time.Time) *Violation {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return nil
	}
	v := s.monitor.Observe(faceCount, now)
	s.mu.Unlock()

	if v != nil && v.Terminal {
		s.finish(FinishTerminated)
	}
	return v
}

// Submit performs the manual-submit terminal transition.
func (s *Session) Submit() {
	s.finish(FinishManual)
}

// Close tears the session down without submitting — the dropped-connection
// exit path. The countdown is stopped so a late expiry cannot submit on
// behalf of a student who walked away.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done = true
	if s.deadline != nil {
		s.deadline.Stop()
	}
}

// Warnings returns the session's running warning count.
func (s *Session) Warnings() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.monitor.Warnings()
}

// finish performs a terminal transition at most once: it stops the
// countdown, latches done, snapshots the state, and invokes OnFinish outside
// the lock. Losers of the race return without side effects.
func (s *Session) finish(reason FinishReason) {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	s.done = true
	if s.deadline != nil {
		s.deadline.Stop()
	}

	answers := make([]int, len(s.answers))
	copy(answers, s.answers)
	snap := Snapshot{
		SessionID:     s.id,
		ExamID:        s.cfg.ExamID,
		StudentName:   s.cfg.StudentName,
		StudentEmail:  s.cfg.StudentEmail,
		Answers:       answers,
		WarningCount:  s.monitor.Warnings(),
		WasTerminated: reason == FinishTerminated,
		StartedAt:     s.startedAt,
	}
	s.mu.Unlock()

	if s.cfg.OnFinish != nil {
		s.cfg.OnFinish(reason, snap)
	}
}
