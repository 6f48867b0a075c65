package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// State is the mutable record of one running session. It is created by
// the controller at session start, owned exclusively by it for the
// session's lifetime, and reduced to a Summary at close. No locking: the
// concurrency model is a single sequential actor.
type State struct {
	id        string
	createdAt time.Time
	status    Status
	reason    string
	counters  Counters
	limits    Limits
}

// NewState opens a session in the Active status with zeroed counters.
// The identifier is time-derived with a random suffix so concurrent-era
// restarts cannot collide.
func NewState(now time.Time, limits Limits) (*State, error) {
	if limits.MaxItems < 1 || limits.MaxActions < 1 || limits.MaxDuration <= 0 {
		return nil, fmt.Errorf("invalid session limits: %+v", limits)
	}
	return &State{
		id:        fmt.Sprintf("%s-%s", now.UTC().Format("20060102-150405"), uuid.NewString()[:8]),
		createdAt: now,
		status:    Active,
		limits:    limits,
	}, nil
}

func (s *State) ID() string           { return s.id }
func (s *State) CreatedAt() time.Time { return s.createdAt }
func (s *State) Status() Status       { return s.status }
func (s *State) Counters() Counters   { return s.counters }
func (s *State) Limits() Limits       { return s.limits }

// TimedOut reports whether the session has exceeded its wall-clock
// budget. Evaluated against the supplied instant on every step so a slow
// external call cannot stretch the effective duration.
func (s *State) TimedOut(now time.Time) bool {
	return now.Sub(s.createdAt) > s.limits.MaxDuration
}

// CanPullItem reports whether another candidate may be drawn.
func (s *State) CanPullItem() bool {
	return s.status == Active && s.counters.ItemsProcessed < s.limits.MaxItems
}

// CanAct reports whether another action may be executed.
func (s *State) CanAct() bool {
	return s.status == Active && s.counters.ActionsTaken < s.limits.MaxActions
}

// RecordItem counts one candidate drawn from the source, regardless of
// its filter outcome.
func (s *State) RecordItem() error {
	if err := s.requireActive("record item"); err != nil {
		return err
	}
	if s.counters.ItemsProcessed >= s.limits.MaxItems {
		return fmt.Errorf("item limit %d already reached", s.limits.MaxItems)
	}
	s.counters.ItemsProcessed++
	return nil
}

// RecordAction counts one executed action.
func (s *State) RecordAction() error {
	if err := s.requireActive("record action"); err != nil {
		return err
	}
	if s.counters.ActionsTaken >= s.limits.MaxActions {
		return fmt.Errorf("action limit %d already reached", s.limits.MaxActions)
	}
	s.counters.ActionsTaken++
	return nil
}

func (s *State) RecordRejected()   { s.counters.Rejected++ }
func (s *State) RecordReviewBand() { s.counters.ReviewBand++ }
func (s *State) RecordSkipped()    { s.counters.Skipped++ }
func (s *State) RecordRetry()      { s.counters.Retries++ }

// Complete, Abort and Timeout drive the session to its terminal status.
// Re-entering a terminal status is an invariant violation and surfaces
// as an error rather than being silently swallowed.

func (s *State) Complete(reason string) error {
	return s.transition(Completed, reason)
}

func (s *State) Abort(reason string) error {
	return s.transition(Aborted, reason)
}

func (s *State) Timeout(reason string) error {
	return s.transition(TimedOut, reason)
}

func (s *State) transition(to Status, reason string) error {
	if s.status.Terminal() {
		return fmt.Errorf("invalid transition %s -> %s: session %s already terminal", s.status, to, s.id)
	}
	s.status = to
	s.reason = reason
	return nil
}

func (s *State) requireActive(op string) error {
	if s.status.Terminal() {
		return fmt.Errorf("cannot %s: session %s is %s", op, s.id, s.status)
	}
	return nil
}

// Summarize reduces the state to its closing record.
func (s *State) Summarize(now time.Time) Summary {
	return Summary{
		ID:        s.id,
		StartedAt: s.createdAt,
		EndedAt:   now,
		Status:    s.status,
		Reason:    s.reason,
		Counters:  s.counters,
	}
}
