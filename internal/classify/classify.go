// Package classify maps raw external-interaction failures onto the fixed
// set of categories the session controller reacts to. Classification is
// by message inspection: the action collaborator surfaces driver errors
// as text and this is the single place that interprets them.
package classify

import (
	"strings"
)

// Category is the failure taxonomy. Every raw failure maps to exactly one.
type Category string

const (
	// RateLimit: the platform is throttling us. Fatal for the session.
	RateLimit Category = "rate_limit"
	// Challenge: a verification/challenge screen appeared. Fatal for the
	// session and worth a diagnostic artifact.
	Challenge Category = "challenge"
	// TransientNetwork: connection-level trouble, worth bounded retries.
	TransientNetwork Category = "transient_network"
	// TransientUI: element/timing trouble on the page. Skip the
	// candidate, keep the session, capture a diagnostic.
	TransientUI Category = "transient_ui"
	// Unknown: anything unrecognized. Skip and audit; repeated unknowns
	// in one session escalate to an abort.
	Unknown Category = "unknown"
)

// Reaction is the session-level response bound to a category.
type Reaction struct {
	// Abort ends the session immediately with an error-recovery cooldown.
	Abort bool
	// Retry allows bounded retries with increasing backoff before the
	// failure is downgraded to a skip.
	Retry bool
	// Capture requests a diagnostic artifact for audit.
	Capture bool
}

type Classification struct {
	Category Category
	Reaction Reaction
}

var reactions = map[Category]Reaction{
	RateLimit:        {Abort: true},
	Challenge:        {Abort: true, Capture: true},
	TransientNetwork: {Retry: true},
	TransientUI:      {Capture: true},
	Unknown:          {},
}

var signatures = []struct {
	category Category
	needles  []string
}{
	{RateLimit, []string{"rate limit", "too many requests", "429"}},
	{Challenge, []string{"challenge", "captcha", "verify your", "unusual activity", "suspicious"}},
	{TransientNetwork, []string{
		"connection reset", "connection refused", "timeout", "timed out",
		"dns", "network", "temporarily unavailable", "502", "503",
	}},
	{TransientUI, []string{
		"element not found", "no such element", "stale element",
		"not clickable", "not visible", "selector", "detached",
	}},
}

// Classify maps a raw failure into its category and reaction. A nil error
// must never reach here; it classifies as Unknown.
func Classify(err error) Classification {
	if err == nil {
		return Classification{Category: Unknown, Reaction: reactions[Unknown]}
	}
	msg := strings.ToLower(err.Error())
	for _, sig := range signatures {
		for _, needle := range sig.needles {
			if strings.Contains(msg, needle) {
				return Classification{Category: sig.category, Reaction: reactions[sig.category]}
			}
		}
	}
	return Classification{Category: Unknown, Reaction: reactions[Unknown]}
}
