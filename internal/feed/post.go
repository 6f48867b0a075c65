// Package feed defines the ingested content model and the interfaces the
// session engine uses to talk to its collaborators.
package feed

import (
	"context"
	"errors"
	"time"
)

// ErrExhausted signals the normal end of a source's sequence.
var ErrExhausted = errors.New("source exhausted")

// Author carries the credibility signals the quality scorer looks at.
type Author struct {
	Username  string `json:"username"`
	Followers int    `json:"followers"`
	HasAvatar bool   `json:"has_avatar"`
}

// Metrics are the engagement counters attached to a post at ingestion time.
type Metrics struct {
	Likes   int `json:"likes"`
	Replies int `json:"replies"`
	Reposts int `json:"reposts"`
}

// Post is one ingested content unit. It is immutable once ingested: the
// filter derives a verdict from it but never mutates it.
type Post struct {
	ID        string            `json:"id"`
	Text      string            `json:"text"`
	CreatedAt time.Time         `json:"created_at"`
	Author    Author            `json:"author"`
	Metrics   Metrics           `json:"metrics"`
	Language  string            `json:"language"`
	Source    map[string]string `json:"source,omitempty"`
}

// Source produces a finite, restartable sequence of posts. Next returns
// ErrExhausted once the sequence ends; the engine treats that as a normal
// end of input.
type Source interface {
	Next(ctx context.Context) (*Post, error)
}

// Responder composes the response text for an eligible post. The
// generation strategy (template, model call) is outside the core.
type Responder interface {
	Compose(ctx context.Context, post *Post) (string, error)
}

// Actor executes one action against the feed for an eligible post. A
// failure's error text is fed to the failure classifier.
type Actor interface {
	Execute(ctx context.Context, post *Post, response string) error
}

// Capturer produces a retrievable diagnostic artifact reference for
// abort/skip events requiring audit.
type Capturer interface {
	Capture(ctx context.Context, reason string) (string, error)
}
