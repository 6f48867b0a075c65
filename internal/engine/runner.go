package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fennwick/murmur/internal/cooldown"
	"github.com/fennwick/murmur/internal/history"
	"github.com/fennwick/murmur/internal/session"
	"github.com/fennwick/murmur/internal/window"
)

// Phase is what the runner is currently doing, for status reporting.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseWaiting Phase = "waiting_for_window"
	PhaseRunning Phase = "running_session"
	PhaseCooling Phase = "cooling_down"
	PhasePaused  Phase = "paused"
)

// Alerter delivers operator-facing alerts. Delivery is best effort.
type Alerter interface {
	Send(summary, body string) error
}

// StatusReport is a point-in-time snapshot of the runner, served over IPC.
type StatusReport struct {
	Phase       Phase            `json:"phase"`
	Paused      bool             `json:"paused"`
	Until       time.Time        `json:"until,omitempty"`
	LastSession *session.Summary `json:"last_session,omitempty"`
}

// Runner is the daemon loop: wait for the operating window, run a
// session, rest, repeat. Pause and Resume may be called from other
// goroutines; everything else runs on the loop goroutine.
type Runner struct {
	ctrl    *Controller
	win     *window.Window
	cool    *cooldown.Calculator
	hist    *history.Log
	alerter Alerter

	nowFn   func() time.Time
	sleepFn func(context.Context, time.Duration) error

	mu     sync.Mutex
	phase  Phase
	paused bool
	until  time.Time
	last   *session.Summary
}

func NewRunner(ctrl *Controller, win *window.Window, cool *cooldown.Calculator, hist *history.Log, alerter Alerter) *Runner {
	return &Runner{
		ctrl:    ctrl,
		win:     win,
		cool:    cool,
		hist:    hist,
		alerter: alerter,
		nowFn:   time.Now,
		sleepFn: sleepContext,
		phase:   PhaseIdle,
	}
}

// Run drives the loop until ctx is canceled.
func (r *Runner) Run(ctx context.Context) error {
	slog.Info("runner started")
	for {
		if ctx.Err() != nil {
			slog.Info("runner shutting down")
			return nil
		}

		if r.Paused() {
			r.setPhase(PhasePaused, time.Time{})
			if err := r.sleepFn(ctx, time.Second); err != nil {
				return nil
			}
			continue
		}

		now := r.nowFn()
		if !r.win.IsWithin(now) {
			next := r.win.NextStart(now)
			r.setPhase(PhaseWaiting, next)
			slog.Info("outside operating window, idling", "until", next)
			if err := r.sleepUntil(ctx, next); err != nil {
				return nil
			}
			continue
		}

		r.setPhase(PhaseRunning, time.Time{})
		summary, err := r.ctrl.RunSession(ctx)
		if err != nil {
			slog.Error("session could not start", "error", err)
			return err
		}
		r.record(summary)

		if ctx.Err() != nil {
			return nil
		}

		now = r.nowFn()
		var next time.Time
		if summary.Status == session.Aborted {
			r.alert("Session aborted", summary.Reason)
			next = r.cool.Next(cooldown.ErrorRecovery, now)
		} else {
			next = r.cool.NextAuto(now)
		}
		r.setPhase(PhaseCooling, next)
		slog.Info("cooling down", "status", summary.Status, "until", next)
		if err := r.sleepUntil(ctx, next); err != nil {
			return nil
		}
	}
}

// Pause stops new sessions from starting. A running session finishes on
// its own limits; pausing does not interrupt it.
func (r *Runner) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = true
}

// Resume lifts a pause.
func (r *Runner) Resume() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = false
}

func (r *Runner) Paused() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paused
}

// Status reports the current phase for IPC consumers.
func (r *Runner) Status() StatusReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return StatusReport{
		Phase:       r.phase,
		Paused:      r.paused,
		Until:       r.until,
		LastSession: r.last,
	}
}

func (r *Runner) setPhase(p Phase, until time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phase = p
	r.until = until
}

func (r *Runner) record(summary session.Summary) {
	r.mu.Lock()
	r.last = &summary
	r.mu.Unlock()

	if r.hist != nil {
		if err := r.hist.Append(summary); err != nil {
			slog.Warn("failed to persist session summary", "error", err)
		}
	}
}

func (r *Runner) alert(title, body string) {
	if r.alerter == nil {
		return
	}
	if err := r.alerter.Send(title, body); err != nil {
		slog.Warn("failed to send alert", "error", err)
	}
}

func (r *Runner) sleepUntil(ctx context.Context, t time.Time) error {
	return r.sleepFn(ctx, t.Sub(r.nowFn()))
}
