package filter

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/forPelevin/gomoji"

	"github.com/fennwick/murmur/internal/config"
	"github.com/fennwick/murmur/internal/feed"
)

// defaultNamePattern matches usernames that look auto-generated: a word
// followed by a long digit tail, e.g. "user84729301".
var defaultNamePattern = regexp.MustCompile(`^[A-Za-z_]+\d{5,}$`)

var runPunctuation = regexp.MustCompile(`[!?]{3,}`)

// scoreQuality starts at 100 and applies the configured deductions. Each
// deduction only ever lowers the score, so adding a triggering condition
// can never raise it. The result is clamped to [0, 100].
func scoreQuality(post *feed.Post, policy config.FilterConfig) (float64, []string) {
	q := policy.Quality
	score := 100.0
	var flags []string

	text := post.Text

	if len(text) < q.MinLength {
		score -= q.ShortBodyPenalty
		flags = append(flags, FlagShortBody)
	}

	if n := strings.Count(text, "#"); n > q.MaxHashtags {
		score -= float64(n-q.MaxHashtags) * q.HashtagPenalty
		flags = append(flags, FlagHashtagHeavy)
	}

	if len(gomoji.FindAll(text)) > q.MaxEmoji {
		score -= q.EmojiPenalty
		flags = append(flags, FlagEmojiHeavy)
	}

	if isMostlyUppercase(text) {
		score -= q.UppercasePenalty
		flags = append(flags, FlagShouting)
	}

	if runPunctuation.MatchString(text) {
		score -= q.PunctuationPenalty
		flags = append(flags, FlagPunctuation)
	}

	lower := strings.ToLower(text)
	for _, phrase := range policy.SpamPhrases {
		if phrase != "" && strings.Contains(lower, strings.ToLower(phrase)) {
			score -= q.SpamPenalty
			flags = append(flags, FlagSpam)
			break
		}
	}

	credibility := 0
	if post.Author.Followers < q.LowFollowerFloor {
		score -= q.LowFollowerPenalty
		credibility++
	}
	if !post.Author.HasAvatar {
		score -= q.NoAvatarPenalty
		credibility++
	}
	if defaultNamePattern.MatchString(post.Author.Username) {
		score -= q.DefaultNamePenalty
		credibility++
	}
	if credibility > 0 {
		flags = append(flags, FlagLowCredibility)
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, flags
}

// isMostlyUppercase reports whether more than half of the letters in the
// body are uppercase. Bodies with fewer than a handful of letters are
// never counted as shouting.
func isMostlyUppercase(text string) bool {
	letters, upper := 0, 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	return letters >= 5 && upper*2 > letters
}
