package config

import (
	"fmt"
	"time"
)

// Validate checks the resolved configuration for policy violations. It is
// run once at startup; a failure here is fatal, the daemon never starts
// with a malformed policy.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("schedule: unknown timezone %q: %w", c.Schedule.Timezone, err)
	}
	if _, err := c.Schedule.Days(); err != nil {
		return fmt.Errorf("schedule: %w", err)
	}

	if c.Limits.MaxItems < 1 {
		return fmt.Errorf("limits: max_items must be at least 1, got %d", c.Limits.MaxItems)
	}
	if c.Limits.MaxActions < 1 {
		return fmt.Errorf("limits: max_actions must be at least 1, got %d", c.Limits.MaxActions)
	}
	if c.Limits.MaxDuration.Std() <= 0 {
		return fmt.Errorf("limits: max_duration must be positive")
	}

	cd := c.Cooldown
	if cd.MinRest.Std() <= 0 || cd.MinRest > cd.MaxRest {
		return fmt.Errorf("cooldown: min_rest must be positive and no greater than max_rest")
	}
	if cd.ErrorRecovery < cd.MaxRest {
		return fmt.Errorf("cooldown: error_recovery (%s) must not be shorter than max_rest (%s)",
			cd.ErrorRecovery.Std(), cd.MaxRest.Std())
	}
	if cd.ExtendedChance < 0 || cd.ExtendedChance > 1 {
		return fmt.Errorf("cooldown: extended_chance must be in [0,1], got %v", cd.ExtendedChance)
	}
	if cd.ExtendedMin > cd.ExtendedMax {
		return fmt.Errorf("cooldown: extended_min must not exceed extended_max")
	}

	b := c.Behavior
	if b.ActionDelayMin > b.ActionDelayMax {
		return fmt.Errorf("behavior: action_delay_min must not exceed action_delay_max")
	}
	switch b.DelayDistribution {
	case "uniform", "gaussian":
	default:
		return fmt.Errorf("behavior: unknown delay_distribution %q", b.DelayDistribution)
	}
	if b.ReplyProbability < 0 || b.ReplyProbability > 1 {
		return fmt.Errorf("behavior: reply_probability must be in [0,1], got %v", b.ReplyProbability)
	}
	if b.ActionsPerMinute <= 0 {
		return fmt.Errorf("behavior: actions_per_minute must be positive")
	}
	if b.BreakMin > b.BreakMax {
		return fmt.Errorf("behavior: break_min must not exceed break_max")
	}
	if b.MaxRetries < 1 {
		return fmt.Errorf("behavior: max_retries must be at least 1")
	}

	f := c.Filter
	if f.MaxAge.Std() <= 0 {
		return fmt.Errorf("filter: max_age must be positive")
	}
	q := f.Quality
	if q.AcceptScore < 0 || q.AcceptScore > 100 {
		return fmt.Errorf("filter: quality accept_score must be in [0,100], got %v", q.AcceptScore)
	}
	if q.ReviewFloor < 0 || q.ReviewFloor > q.AcceptScore {
		return fmt.Errorf("filter: quality review_floor must be in [0, accept_score]")
	}

	return nil
}
