// Package humanize produces the bounded randomness that keeps the daemon's
// pacing from looking mechanical: jittered delays, probability gates and
// unbiased selection. Every source of randomness goes through an injected
// seedable generator so tests can replay behavior deterministically.
package humanize

import (
	"fmt"
	"math/rand"
	"time"
)

// Distribution selects how Delay spreads its draws across [min, max].
type Distribution string

const (
	Uniform  Distribution = "uniform"
	Gaussian Distribution = "gaussian"
)

func ParseDistribution(s string) (Distribution, error) {
	switch Distribution(s) {
	case Uniform, Gaussian:
		return Distribution(s), nil
	}
	return "", fmt.Errorf("unknown distribution %q", s)
}

// Engine wraps a random source. Not safe for concurrent use; the session
// controller is the single consumer.
type Engine struct {
	rng *rand.Rand
}

// New returns an Engine seeded for deterministic replay.
func New(seed int64) *Engine {
	return &Engine{rng: rand.New(rand.NewSource(seed))}
}

// NewFromClock returns an Engine seeded from the wall clock, for production.
func NewFromClock() *Engine {
	return New(time.Now().UnixNano())
}

// Delay draws a duration from [min, max]. Gaussian draws center on the
// midpoint with a sigma of (max-min)/6, so better than 99% of draws land
// inside the interval; the rare outlier is clamped, never returned raw.
func (e *Engine) Delay(min, max time.Duration, dist Distribution) time.Duration {
	if max <= min {
		return min
	}
	switch dist {
	case Gaussian:
		mean := float64(min+max) / 2
		sigma := float64(max-min) / 6
		d := time.Duration(e.rng.NormFloat64()*sigma + mean)
		if d < min {
			d = min
		}
		if d > max {
			d = max
		}
		return d
	default:
		return min + time.Duration(e.rng.Int63n(int64(max-min)+1))
	}
}

// ShouldProceed is a Bernoulli gate. The probability must be in [0,1].
func (e *Engine) ShouldProceed(probability float64) (bool, error) {
	if probability < 0 || probability > 1 {
		return false, fmt.Errorf("probability %v out of range [0,1]", probability)
	}
	return e.rng.Float64() < probability, nil
}

// Shuffle permutes items in place; every permutation is equally likely.
func Shuffle[T any](e *Engine, items []T) {
	e.rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}

// Subset picks between minCount and maxCount items without replacement,
// with both bounds clamped to the input length. Order of the result is
// not guaranteed. The input slice is not modified.
func Subset[T any](e *Engine, items []T, minCount, maxCount int) []T {
	if minCount < 0 {
		minCount = 0
	}
	if maxCount > len(items) {
		maxCount = len(items)
	}
	if minCount > maxCount {
		minCount = maxCount
	}

	count := minCount
	if maxCount > minCount {
		count = minCount + e.rng.Intn(maxCount-minCount+1)
	}

	picked := make([]T, len(items))
	copy(picked, items)
	Shuffle(e, picked)
	return picked[:count]
}

// Jitter scales value by a factor drawn uniformly from
// [1-variance, 1+variance].
func (e *Engine) Jitter(value time.Duration, variance float64) time.Duration {
	u := (e.rng.Float64()*2 - 1) * variance
	return time.Duration(float64(value) * (1 + u))
}
