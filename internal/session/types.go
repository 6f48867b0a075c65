package session

import (
	"time"
)

// Status is the lifecycle state of a session. Transitions are one-way:
// Active is the only non-terminal status and nothing ever leaves a
// terminal status.
type Status string

const (
	Active    Status = "active"
	Completed Status = "completed"
	Aborted   Status = "aborted"
	TimedOut  Status = "timed_out"
)

func (s Status) Terminal() bool {
	return s != Active
}

// Limits bounds a single session. All three must be positive.
type Limits struct {
	MaxItems    int
	MaxActions  int
	MaxDuration time.Duration
}

// Counters tracks per-session progress. Values only ever increase.
type Counters struct {
	ItemsProcessed int `json:"items_processed"`
	ActionsTaken   int `json:"actions_taken"`
	Rejected       int `json:"rejected"`
	ReviewBand     int `json:"review_band"`
	Skipped        int `json:"skipped"`
	Retries        int `json:"retries"`
}

// Summary is the record a session leaves behind when it closes. It is the
// only thing that outlives the session state.
type Summary struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
	Status    Status    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	Counters  Counters  `json:"counters"`
}

func (s Summary) Duration() time.Duration {
	return s.EndedAt.Sub(s.StartedAt)
}
