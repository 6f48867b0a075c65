// Package cooldown computes the rest interval between sessions and snaps
// the resulting instant forward into the operating window, so a cooldown
// can never resolve to a moment at which running is disallowed.
package cooldown

import (
	"time"

	"github.com/fennwick/murmur/internal/config"
	"github.com/fennwick/murmur/internal/humanize"
	"github.com/fennwick/murmur/internal/window"
)

// Kind selects which rest policy applies at session close.
type Kind string

const (
	// Normal is the everyday rest between successful sessions.
	Normal Kind = "normal"
	// ErrorRecovery is the long fixed-floor rest after rate-limit or
	// challenge events.
	ErrorRecovery Kind = "error_recovery"
	// Extended is the occasional much longer rest, gated by a low
	// probability at each session close.
	Extended Kind = "extended"
)

// Calculator derives the next allowed session start.
type Calculator struct {
	policy config.CooldownConfig
	win    *window.Window
	rng    *humanize.Engine
}

func New(policy config.CooldownConfig, win *window.Window, rng *humanize.Engine) *Calculator {
	return &Calculator{policy: policy, win: win, rng: rng}
}

// Next returns the instant at which the next session may begin. The drawn
// rest duration is added to now and the candidate instant is advanced to
// the next window start if it falls outside the operating window.
func (c *Calculator) Next(kind Kind, now time.Time) time.Time {
	candidate := now.Add(c.duration(kind))
	return c.win.NextStart(candidate)
}

// NextAuto applies the extended-rest Bernoulli gate before falling back
// to a Normal rest. Called once per ordinary session close.
func (c *Calculator) NextAuto(now time.Time) time.Time {
	extended, err := c.rng.ShouldProceed(c.policy.ExtendedChance)
	if err == nil && extended {
		return c.Next(Extended, now)
	}
	return c.Next(Normal, now)
}

func (c *Calculator) duration(kind Kind) time.Duration {
	p := c.policy
	switch kind {
	case ErrorRecovery:
		return p.ErrorRecovery.Std()
	case Extended:
		return c.rng.Delay(p.ExtendedMin.Std(), p.ExtendedMax.Std(), humanize.Uniform)
	default:
		return c.rng.Delay(p.MinRest.Std(), p.MaxRest.Std(), humanize.Uniform)
	}
}
