// Package proctor implements webcam-based proctoring for exam sessions: a
// violation monitor that turns noisy periodic face-count observations into
// discrete warnings, and a session engine that owns the countdown, the
// answer buffer, and the single forced-submission decision.
package proctor

import (
	"time"

	"github.com/proctorly/proctorly-backend/internal/model"
)

// Config holds the monitor thresholds.
type Config struct {
	// ViolationWindow is how long a no-face or multi-face condition must
	// persist before one warning is raised.
	ViolationWindow time.Duration
	// MaxWarnings is the termination ceiling.
	MaxWarnings int
}

// Violation is one raised warning. Warning carries the running count after
// the increment; Terminal marks the warning that reached the ceiling.
type Violation struct {
	Kind      model.ViolationKind
	FaceCount int
	Warning   int
	Terminal  bool
	At        time.Time
}

// Monitor accumulates face-count observations for a single session. A brief
// occlusion shorter than the violation window never raises a warning: any
// face reappearance cancels the no-face timer, and dropping back to a single
// face cancels the multi-face timer. The two timers are independent but can
// never both be armed by one observation, since a face count cannot be zero
// and greater than one at once.
//
// Monitor is not safe for concurrent use; the owning Session serializes
// access to it.
type Monitor struct {
	cfg            Config
	warnings       int
	noFaceSince    time.Time
	multiFaceSince time.Time
	terminated     bool
}

// NewMonitor creates a monitor with the given thresholds.
func NewMonitor(cfg Config) *Monitor {
	return &Monitor{cfg: cfg}
}

// Observe feeds one face-count sample taken at the given instant. It returns
// the violation raised by this sample, or nil. After the terminal violation
// the monitor ignores all further samples.
func (m *Monitor) Observe(faceCount int, now time.Time) *Violation {
	if m.terminated {
		return nil
	}

	var v *Violation

	if faceCount == 0 {
		if m.noFaceSince.IsZero() {
			m.noFaceSince = now
		}
		if now.Sub(m.noFaceSince) >= m.cfg.ViolationWindow {
			m.noFaceSince = time.Time{}
			v = m.raise(model.ViolationNoFace, faceCount, now)
		}
	} else {
		m.noFaceSince = time.Time{}
	}

	if faceCount > 1 {
		if m.multiFaceSince.IsZero() {
			m.multiFaceSince = now
		}
		if now.Sub(m.multiFaceSince) >= m.cfg.ViolationWindow {
			m.multiFaceSince = time.Time{}
			v = m.raise(model.ViolationMultiFace, faceCount, now)
		}
	} else {
		m.multiFaceSince = time.Time{}
	}

	return v
}

func (m *Monitor) raise(kind model.ViolationKind, faceCount int, now time.Time) *Violation {
	m.warnings++
	terminal := m.warnings >= m.cfg.MaxWarnings
	if terminal {
		m.terminated = true
	}
	return &Violation{
		Kind:      kind,
		FaceCount: faceCount,
		Warning:   m.warnings,
		Terminal:  terminal,
		At:        now,
	}
}

// Warnings returns the running warning count. It never decreases and never
// exceeds MaxWarnings.
func (m *Monitor) Warnings() int {
	return m.warnings
}

// Terminated reports whether the warning ceiling has been reached.
func (m *Monitor) Terminated() bool {
	return m.terminated
}
