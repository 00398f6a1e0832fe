package domain

import (
	"time"

	"github.com/google/uuid"
)

// RunOutcome records how a countdown ended.
type RunOutcome string

const (
	RunOutcomeCompleted RunOutcome = "completed"
	RunOutcomeAbandoned RunOutcome = "abandoned"
)

// Run is a single started countdown, from its first Start to expiry or abandonment.
type Run struct {
	ID        string
	Duration  time.Duration
	Elapsed   time.Duration
	Outcome   RunOutcome
	StartedAt time.Time
	EndedAt   time.Time
}

// NewRun begins a run for a committed duration in seconds.
func NewRun(seconds int, startedAt time.Time) *Run {
	return &Run{
		ID:        generateID(),
		Duration:  time.Duration(seconds) * time.Second,
		StartedAt: startedAt,
	}
}

// Finish closes the run with the remaining seconds at the moment it ended.
func (r *Run) Finish(outcome RunOutcome, timeLeft int, endedAt time.Time) {
	elapsed := r.Duration - time.Duration(timeLeft)*time.Second
	if elapsed < 0 {
		elapsed = 0
	}
	r.Elapsed = elapsed
	r.Outcome = outcome
	r.EndedAt = endedAt
}

// IsCompleted returns true if the countdown reached zero.
func (r *Run) IsCompleted() bool {
	return r.Outcome == RunOutcomeCompleted
}

// GetOutcomeLabel returns a human-readable label for a run outcome.
func GetOutcomeLabel(o RunOutcome) string {
	switch o {
	case RunOutcomeCompleted:
		return "Completed"
	case RunOutcomeAbandoned:
		return "Abandoned"
	default:
		return "Unknown"
	}
}

// GetStateLabel returns a human-readable label for a timer state.
func GetStateLabel(s State) string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateReady:
		return "Ready"
	case StateRunning:
		return "Running"
	case StatePaused:
		return "Paused"
	case StateExpired:
		return "Time's up"
	default:
		return "Unknown"
	}
}

func generateID() string {
	return uuid.New().String()
}
