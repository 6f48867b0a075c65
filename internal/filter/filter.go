// Package filter classifies candidate posts. The pipeline is a fixed
// ordered set of eligibility checks plus a quality score; the output is
// deterministic for a given post and policy, with no randomness anywhere.
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/fennwick/murmur/internal/config"
	"github.com/fennwick/murmur/internal/feed"
)

// Outcome is the overall classification of one candidate.
type Outcome string

const (
	// Pass means the candidate is eligible for action.
	Pass Outcome = "pass"
	// Review means the score landed in the middle band: not actionable,
	// but distinct from a hard reject for audit purposes.
	Review Outcome = "review"
	// Reject means at least one check failed or the score fell below the
	// review floor.
	Reject Outcome = "reject"
)

// Flag identifiers recorded by the checks. Flags accumulate across all
// checks even after the first failure, so a rejected post still carries
// the full picture for audit.
const (
	FlagStale          = "stale"
	FlagLowEngagement  = "low_engagement"
	FlagBannedKeyword  = "banned_keyword"
	FlagWrongLanguage  = "wrong_language"
	FlagShortBody      = "short_body"
	FlagHashtagHeavy   = "hashtag_heavy"
	FlagEmojiHeavy     = "emoji_heavy"
	FlagShouting       = "shouting"
	FlagPunctuation    = "excess_punctuation"
	FlagSpam           = "is_spam"
	FlagLowCredibility = "low_credibility"
)

// Verdict is the derived, ephemeral result of one filtering pass. The
// candidate itself is never mutated.
type Verdict struct {
	Outcome Outcome
	Score   float64
	Flags   []string
	Reason  string
}

func (v Verdict) Eligible() bool {
	return v.Outcome == Pass
}

func (v Verdict) HasFlag(name string) bool {
	for _, f := range v.Flags {
		if f == name {
			return true
		}
	}
	return false
}

// Evaluate runs the full pipeline against one post. The first failing
// check supplies the rejection reason, but every later check still runs
// so its flags are recorded, and the quality score is always computed.
func Evaluate(post *feed.Post, policy config.FilterConfig, now time.Time) Verdict {
	var v Verdict

	fail := func(reason string) {
		if v.Reason == "" {
			v.Reason = reason
		}
	}

	// 1. Recency.
	age := now.Sub(post.CreatedAt)
	if age > policy.MaxAge.Std() {
		v.Flags = append(v.Flags, FlagStale)
		fail(fmt.Sprintf("recency: post is %s old, window is %s", age.Round(time.Minute), policy.MaxAge.Std()))
	}

	// 2. Engagement thresholds.
	m := post.Metrics
	switch {
	case m.Likes < policy.MinLikes:
		v.Flags = append(v.Flags, FlagLowEngagement)
		fail(fmt.Sprintf("engagement: %d likes below minimum %d", m.Likes, policy.MinLikes))
	case m.Replies < policy.MinReplies:
		v.Flags = append(v.Flags, FlagLowEngagement)
		fail(fmt.Sprintf("engagement: %d replies below minimum %d", m.Replies, policy.MinReplies))
	case m.Reposts < policy.MinReposts:
		v.Flags = append(v.Flags, FlagLowEngagement)
		fail(fmt.Sprintf("engagement: %d reposts below minimum %d", m.Reposts, policy.MinReposts))
	}

	// 3. Banned keywords, case-insensitive substring match.
	lower := strings.ToLower(post.Text)
	for _, kw := range policy.BannedKeywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			v.Flags = append(v.Flags, FlagBannedKeyword)
			fail(fmt.Sprintf("content: banned keyword %q", kw))
			break
		}
	}

	// 4. Language.
	if post.Language != policy.Language {
		v.Flags = append(v.Flags, FlagWrongLanguage)
		fail(fmt.Sprintf("language: %q, want %q", post.Language, policy.Language))
	}

	// 5. Quality score, always computed regardless of the checks above.
	score, qualityFlags := scoreQuality(post, policy)
	v.Score = score
	v.Flags = append(v.Flags, qualityFlags...)

	// 6. Overall decision.
	q := policy.Quality
	switch {
	case v.Reason != "":
		v.Outcome = Reject
	case v.HasFlag(FlagSpam):
		v.Outcome = Reject
		v.Reason = "quality: spam phrase detected"
	case score >= q.AcceptScore:
		v.Outcome = Pass
	case score >= q.ReviewFloor:
		v.Outcome = Review
		v.Reason = fmt.Sprintf("quality: score %.1f in review band [%.1f, %.1f)", score, q.ReviewFloor, q.AcceptScore)
	default:
		v.Outcome = Reject
		v.Reason = fmt.Sprintf("quality: score %.1f below review floor %.1f", score, q.ReviewFloor)
	}

	return v
}
