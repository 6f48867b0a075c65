// Package engine drives sessions. The Controller runs a single session
// from open to terminal status; the Runner wraps it in the daemon loop
// that gates on the operating window, rests between sessions and reacts
// to pause requests.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/fennwick/murmur/internal/classify"
	"github.com/fennwick/murmur/internal/config"
	"github.com/fennwick/murmur/internal/feed"
	"github.com/fennwick/murmur/internal/filter"
	"github.com/fennwick/murmur/internal/humanize"
	"github.com/fennwick/murmur/internal/logging"
	"github.com/fennwick/murmur/internal/session"
)

// errSessionOver signals inside the run loop that the state has already
// been driven to a terminal status and the loop must stop.
var errSessionOver = errors.New("session over")

// Deps are the external collaborators a session needs. Capturer is
// optional; the others are required.
type Deps struct {
	Source    feed.Source
	Responder feed.Responder
	Actor     feed.Actor
	Capturer  feed.Capturer
}

// Controller executes one session at a time against the configured
// policy. It owns all pacing: humanized delays, the action rate cap,
// breaks and retry backoff.
type Controller struct {
	cfg     *config.Config
	deps    Deps
	human   *humanize.Engine
	limiter *rate.Limiter

	nowFn   func() time.Time
	sleepFn func(context.Context, time.Duration) error
}

// NewController wires a controller. ActionsPerMinute caps sustained
// action throughput regardless of what the per-action delays draw.
func NewController(cfg *config.Config, deps Deps, human *humanize.Engine) *Controller {
	return &Controller{
		cfg:     cfg,
		deps:    deps,
		human:   human,
		limiter: rate.NewLimiter(rate.Limit(cfg.Behavior.ActionsPerMinute/60.0), 1),
		nowFn:   time.Now,
		sleepFn: sleepContext,
	}
}

// sleepContext blocks for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RunSession executes one full session and returns its closing summary.
// The summary is returned even when the session aborted; the error is
// reserved for setup problems that prevented a session from opening.
func (c *Controller) RunSession(ctx context.Context) (session.Summary, error) {
	st, err := session.NewState(c.nowFn(), session.Limits{
		MaxItems:    c.cfg.Limits.MaxItems,
		MaxActions:  c.cfg.Limits.MaxActions,
		MaxDuration: c.cfg.Limits.MaxDuration.Std(),
	})
	if err != nil {
		return session.Summary{}, err
	}

	r := &run{c: c, st: st, log: logging.WithSession(st.ID())}
	r.log.Info("session opened",
		"max_items", c.cfg.Limits.MaxItems,
		"max_actions", c.cfg.Limits.MaxActions,
		"max_duration", c.cfg.Limits.MaxDuration.Std(),
		"dry_run", c.cfg.Behavior.DryRun)

	r.loop(ctx)

	summary := st.Summarize(c.nowFn())
	r.log.Info("session closed",
		"status", summary.Status,
		"reason", summary.Reason,
		"duration", summary.Duration().Round(time.Second),
		"items", summary.Counters.ItemsProcessed,
		"actions", summary.Counters.ActionsTaken,
		"rejected", summary.Counters.Rejected,
		"review_band", summary.Counters.ReviewBand,
		"skipped", summary.Counters.Skipped,
		"retries", summary.Counters.Retries)
	return summary, nil
}

// run holds the per-session working state of the controller.
type run struct {
	c   *Controller
	st  *session.State
	log *slog.Logger

	unknownFailures   int
	actionsSinceBreak int
}

// terminate logs a rejected terminal transition. The loop only closes a
// session once, so a non-nil error here is an invariant violation that
// must not vanish silently.
func (r *run) terminate(err error) {
	if err != nil {
		r.log.Error("session transition rejected", "error", err)
	}
}

func (r *run) loop(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			r.terminate(r.st.Abort("shutdown requested"))
			return
		}
		now := r.c.nowFn()
		if r.st.TimedOut(now) {
			r.terminate(r.st.Timeout("session duration limit reached"))
			return
		}
		if !r.st.CanPullItem() {
			r.terminate(r.st.Complete("item limit reached"))
			return
		}

		post, err := r.pull(ctx)
		if err != nil {
			if !errors.Is(err, errSessionOver) {
				r.terminate(r.st.Abort(fmt.Sprintf("feed failure: %v", err)))
			}
			return
		}
		if post == nil {
			// pull recorded a skip; keep going.
			continue
		}

		if err := r.st.RecordItem(); err != nil {
			r.terminate(r.st.Abort(err.Error()))
			return
		}

		verdict := filter.Evaluate(post, r.c.cfg.Filter, now)
		if !verdict.Eligible() {
			if verdict.Outcome == filter.Review {
				r.st.RecordReviewBand()
			} else {
				r.st.RecordRejected()
			}
			r.log.Debug("candidate filtered",
				"post_id", post.ID, "outcome", verdict.Outcome,
				"score", verdict.Score, "reason", verdict.Reason, "flags", verdict.Flags)
			continue
		}

		// With the action budget spent the session keeps consuming and
		// classifying candidates until the item limit or the source ends.
		if !r.st.CanAct() {
			r.st.RecordSkipped()
			r.log.Debug("action budget spent, observing only", "post_id", post.ID)
			continue
		}

		proceed, err := r.c.human.ShouldProceed(r.c.cfg.Behavior.ReplyProbability)
		if err != nil {
			r.terminate(r.st.Abort(fmt.Sprintf("bad reply probability: %v", err)))
			return
		}
		if !proceed {
			r.st.RecordSkipped()
			r.log.Debug("probability gate passed over candidate", "post_id", post.ID)
			continue
		}

		if errors.Is(r.engage(ctx, post), errSessionOver) {
			return
		}
	}
}

// pull draws the next candidate, retrying transient network failures
// with increasing backoff. A nil post with nil error means the failure
// was absorbed as a skip. errSessionOver means the state is terminal.
func (r *run) pull(ctx context.Context) (*feed.Post, error) {
	b := r.c.cfg.Behavior
	for attempt := 0; ; attempt++ {
		post, err := r.c.deps.Source.Next(ctx)
		if err == nil {
			return post, nil
		}
		if errors.Is(err, feed.ErrExhausted) {
			r.terminate(r.st.Complete("source exhausted"))
			return nil, errSessionOver
		}
		if ctx.Err() != nil {
			r.terminate(r.st.Abort("shutdown requested"))
			return nil, errSessionOver
		}

		cls := classify.Classify(err)
		if cls.Reaction.Abort {
			if cls.Reaction.Capture {
				r.capture(ctx, string(cls.Category))
			}
			r.terminate(r.st.Abort(fmt.Sprintf("%s: %v", cls.Category, err)))
			return nil, errSessionOver
		}
		if cls.Reaction.Retry && attempt < b.MaxRetries {
			r.st.RecordRetry()
			r.log.Warn("feed pull failed, retrying",
				"attempt", attempt+1, "category", cls.Category, "error", err)
			if err := r.backoff(ctx, attempt+1); err != nil {
				r.terminate(r.st.Abort("shutdown requested"))
				return nil, errSessionOver
			}
			continue
		}

		// Anything the source keeps failing with gets the unknown
		// escalation treatment, so a broken feed cannot spin forever.
		r.st.RecordSkipped()
		r.unknownFailures++
		r.log.Warn("feed pull failed, skipping",
			"category", cls.Category, "unknown_failures", r.unknownFailures, "error", err)
		if r.unknownFailures >= b.MaxUnknownErrors {
			r.terminate(r.st.Abort(fmt.Sprintf("repeated failures: %v", err)))
			return nil, errSessionOver
		}
		return nil, nil
	}
}

// engage paces and executes one action against an eligible candidate.
// Returns errSessionOver when a failure drove the session terminal.
func (r *run) engage(ctx context.Context, post *feed.Post) error {
	b := r.c.cfg.Behavior

	dist, err := humanize.ParseDistribution(b.DelayDistribution)
	if err != nil {
		r.terminate(r.st.Abort(err.Error()))
		return errSessionOver
	}
	delay := r.c.human.Delay(b.ActionDelayMin.Std(), b.ActionDelayMax.Std(), dist)
	if err := r.c.sleepFn(ctx, delay); err != nil {
		r.terminate(r.st.Abort("shutdown requested"))
		return errSessionOver
	}
	if err := r.c.limiter.Wait(ctx); err != nil {
		r.terminate(r.st.Abort("shutdown requested"))
		return errSessionOver
	}

	for attempt := 0; ; attempt++ {
		err := r.attempt(ctx, post)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			r.terminate(r.st.Abort("shutdown requested"))
			return errSessionOver
		}

		cls := classify.Classify(err)
		if cls.Reaction.Abort {
			if cls.Reaction.Capture {
				r.capture(ctx, string(cls.Category))
			}
			r.terminate(r.st.Abort(fmt.Sprintf("%s: %v", cls.Category, err)))
			return errSessionOver
		}
		if cls.Reaction.Retry && attempt < b.MaxRetries {
			r.st.RecordRetry()
			r.log.Warn("action failed, retrying",
				"post_id", post.ID, "attempt", attempt+1, "category", cls.Category, "error", err)
			if err := r.backoff(ctx, attempt+1); err != nil {
				r.terminate(r.st.Abort("shutdown requested"))
				return errSessionOver
			}
			continue
		}

		// Skip path. Exhausted retries land here too.
		if cls.Reaction.Capture || cls.Reaction.Retry {
			r.capture(ctx, string(cls.Category))
		}
		r.st.RecordSkipped()
		if cls.Category == classify.Unknown {
			r.unknownFailures++
			if r.unknownFailures >= b.MaxUnknownErrors {
				r.log.Error("too many unrecognized failures", "count", r.unknownFailures, "error", err)
				r.terminate(r.st.Abort(fmt.Sprintf("repeated unknown failures: %v", err)))
				return errSessionOver
			}
		}
		r.log.Warn("action failed, skipping candidate",
			"post_id", post.ID, "category", cls.Category, "error", err)
		return nil
	}

	if err := r.st.RecordAction(); err != nil {
		r.terminate(r.st.Abort(err.Error()))
		return errSessionOver
	}

	r.actionsSinceBreak++
	if b.BreakAfterActions > 0 && r.actionsSinceBreak >= b.BreakAfterActions {
		pause := r.c.human.Delay(b.BreakMin.Std(), b.BreakMax.Std(), humanize.Uniform)
		r.log.Info("taking a break", "duration", pause.Round(time.Second))
		if err := r.c.sleepFn(ctx, pause); err != nil {
			r.terminate(r.st.Abort("shutdown requested"))
			return errSessionOver
		}
		r.actionsSinceBreak = 0
	}
	return nil
}

// attempt composes and executes a single action. Dry runs are not a
// special case here: the daemon wires a recording actor instead.
func (r *run) attempt(ctx context.Context, post *feed.Post) error {
	response, err := r.c.deps.Responder.Compose(ctx, post)
	if err != nil {
		return fmt.Errorf("composing response: %w", err)
	}
	if err := r.c.deps.Actor.Execute(ctx, post, response); err != nil {
		return err
	}
	r.log.Info("action executed", "post_id", post.ID, "author", post.Author.Username)
	return nil
}

// backoff sleeps attempt * RetryBackoff with a 25% jitter.
func (r *run) backoff(ctx context.Context, attempt int) error {
	base := time.Duration(attempt) * r.c.cfg.Behavior.RetryBackoff.Std()
	return r.c.sleepFn(ctx, r.c.human.Jitter(base, 0.25))
}

// capture requests a diagnostic artifact; failures only get logged.
func (r *run) capture(ctx context.Context, reason string) {
	if r.c.deps.Capturer == nil {
		return
	}
	path, err := r.c.deps.Capturer.Capture(ctx, reason)
	if err != nil {
		r.log.Warn("diagnostic capture failed", "reason", reason, "error", err)
		return
	}
	r.log.Info("diagnostic captured", "reason", reason, "path", path)
}
