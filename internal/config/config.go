package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Duration wraps time.Duration so TOML values like "45m" or "2h" parse directly.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// TimeRange is a time-of-day range in the form "HH:MM-HH:MM". Both ends are
// stored as offsets from midnight. An end of "24:00" means the range runs
// through the last instant of the day.
type TimeRange struct {
	Start time.Duration
	End   time.Duration
}

func (tr *TimeRange) UnmarshalText(text []byte) error {
	str := string(text)
	parts := strings.Split(str, "-")
	if len(parts) != 2 {
		return fmt.Errorf("invalid time range format: expected 'HH:MM-HH:MM'")
	}

	start, err1 := parseClock(parts[0], false)
	end, err2 := parseClock(parts[1], true)
	if err1 != nil || err2 != nil {
		return fmt.Errorf("invalid time values: %v, %v", err1, err2)
	}

	if start >= end {
		return fmt.Errorf("start time %s must be before end time %s", parts[0], parts[1])
	}

	tr.Start = start
	tr.End = end
	return nil
}

// parseClock parses "HH:MM" into an offset from midnight. allowEndOfDay
// permits the special value "24:00".
func parseClock(s string, allowEndOfDay bool) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	hour, err1 := strconv.Atoi(parts[0])
	minute, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	if minute < 0 || minute > 59 {
		return 0, fmt.Errorf("minute out of range in %q", s)
	}
	if hour == 24 && minute == 0 && allowEndOfDay {
		return 24 * time.Hour, nil
	}
	if hour < 0 || hour > 23 {
		return 0, fmt.Errorf("hour out of range in %q", s)
	}
	return time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute, nil
}

// ScheduleConfig defines when the daemon is allowed to operate.
type ScheduleConfig struct {
	Timezone    string    `toml:"timezone"`
	ActiveHours TimeRange `toml:"active_hours"`
	ActiveDays  []string  `toml:"active_days"`
}

var dayAliases = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday,
	"wed": time.Wednesday, "thu": time.Thursday, "fri": time.Friday,
	"sat": time.Saturday,
}

// Days resolves the configured active weekday names.
func (s ScheduleConfig) Days() ([]time.Weekday, error) {
	days := make([]time.Weekday, 0, len(s.ActiveDays))
	for _, name := range s.ActiveDays {
		day, ok := dayAliases[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", name)
		}
		days = append(days, day)
	}
	return days, nil
}

// LimitsConfig bounds a single session.
type LimitsConfig struct {
	MaxItems    int      `toml:"max_items"`
	MaxActions  int      `toml:"max_actions"`
	MaxDuration Duration `toml:"max_duration"`
}

// CooldownConfig controls the rest interval between sessions.
type CooldownConfig struct {
	MinRest        Duration `toml:"min_rest"`
	MaxRest        Duration `toml:"max_rest"`
	ErrorRecovery  Duration `toml:"error_recovery"`
	ExtendedChance float64  `toml:"extended_chance"`
	ExtendedMin    Duration `toml:"extended_min"`
	ExtendedMax    Duration `toml:"extended_max"`
}

// BehaviorConfig shapes the humanized pacing within a session.
type BehaviorConfig struct {
	ActionDelayMin    Duration `toml:"action_delay_min"`
	ActionDelayMax    Duration `toml:"action_delay_max"`
	DelayDistribution string   `toml:"delay_distribution"`
	ReplyProbability  float64  `toml:"reply_probability"`
	ActionsPerMinute  float64  `toml:"actions_per_minute"`
	BreakAfterActions int      `toml:"break_after_actions"`
	BreakMin          Duration `toml:"break_min"`
	BreakMax          Duration `toml:"break_max"`
	MaxRetries        int      `toml:"max_retries"`
	RetryBackoff      Duration `toml:"retry_backoff"`
	MaxUnknownErrors  int      `toml:"max_unknown_errors"`
	DryRun            bool     `toml:"dry_run"`
}

// QualityConfig holds the deduction magnitudes for the quality scorer.
// All penalties are points off a starting score of 100.
type QualityConfig struct {
	AcceptScore float64 `toml:"accept_score"`
	ReviewFloor float64 `toml:"review_floor"`

	MinLength   int `toml:"min_length"`
	MaxHashtags int `toml:"max_hashtags"`
	MaxEmoji    int `toml:"max_emoji"`

	ShortBodyPenalty   float64 `toml:"short_body_penalty"`
	HashtagPenalty     float64 `toml:"hashtag_penalty"`
	EmojiPenalty       float64 `toml:"emoji_penalty"`
	UppercasePenalty   float64 `toml:"uppercase_penalty"`
	PunctuationPenalty float64 `toml:"punctuation_penalty"`
	SpamPenalty        float64 `toml:"spam_penalty"`

	LowFollowerFloor   int     `toml:"low_follower_floor"`
	LowFollowerPenalty float64 `toml:"low_follower_penalty"`
	NoAvatarPenalty    float64 `toml:"no_avatar_penalty"`
	DefaultNamePenalty float64 `toml:"default_name_penalty"`
}

// FilterConfig gates which candidates are eligible for action.
type FilterConfig struct {
	MaxAge         Duration      `toml:"max_age"`
	MinLikes       int           `toml:"min_likes"`
	MinReplies     int           `toml:"min_replies"`
	MinReposts     int           `toml:"min_reposts"`
	Language       string        `toml:"language"`
	BannedKeywords []string      `toml:"banned_keywords"`
	SpamPhrases    []string      `toml:"spam_phrases"`
	Quality        QualityConfig `toml:"quality"`
}

// FeedConfig locates the file-based ingestion and action endpoints. An
// external driver drops candidates into Path and drains OutboxPath.
type FeedConfig struct {
	Path              string   `toml:"path"`
	OutboxPath        string   `toml:"outbox_path"`
	CaptureDir        string   `toml:"capture_dir"`
	ResponseTemplates []string `toml:"response_templates"`
}

type Config struct {
	Schedule    ScheduleConfig `toml:"schedule"`
	Limits      LimitsConfig   `toml:"limits"`
	Cooldown    CooldownConfig `toml:"cooldown"`
	Behavior    BehaviorConfig `toml:"behavior"`
	Filter      FilterConfig   `toml:"filter"`
	Feed        FeedConfig     `toml:"feed"`
	HistoryPath string         `toml:"history_path"`
}

// SetDefault fills in defaults for any field left unset.
func (c *Config) SetDefault() {
	if c.Schedule.Timezone == "" {
		c.Schedule.Timezone = "Europe/London"
	}
	if c.Schedule.ActiveHours == (TimeRange{}) {
		c.Schedule.ActiveHours = TimeRange{Start: 7 * time.Hour, End: 24 * time.Hour}
	}
	if len(c.Schedule.ActiveDays) == 0 {
		c.Schedule.ActiveDays = []string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}
	}

	if c.Limits.MaxItems == 0 {
		c.Limits.MaxItems = 40
	}
	if c.Limits.MaxActions == 0 {
		c.Limits.MaxActions = 5
	}
	if c.Limits.MaxDuration == 0 {
		c.Limits.MaxDuration = Duration(45 * time.Minute)
	}

	if c.Cooldown.MinRest == 0 {
		c.Cooldown.MinRest = Duration(30 * time.Minute)
	}
	if c.Cooldown.MaxRest == 0 {
		c.Cooldown.MaxRest = Duration(90 * time.Minute)
	}
	if c.Cooldown.ErrorRecovery == 0 {
		c.Cooldown.ErrorRecovery = Duration(120 * time.Minute)
	}
	if c.Cooldown.ExtendedMin == 0 {
		c.Cooldown.ExtendedMin = Duration(4 * time.Hour)
	}
	if c.Cooldown.ExtendedMax == 0 {
		c.Cooldown.ExtendedMax = Duration(8 * time.Hour)
	}

	if c.Behavior.ActionDelayMin == 0 {
		c.Behavior.ActionDelayMin = Duration(3 * time.Second)
	}
	if c.Behavior.ActionDelayMax == 0 {
		c.Behavior.ActionDelayMax = Duration(12 * time.Second)
	}
	if c.Behavior.DelayDistribution == "" {
		c.Behavior.DelayDistribution = "gaussian"
	}
	if c.Behavior.ReplyProbability == 0 {
		c.Behavior.ReplyProbability = 0.8
	}
	if c.Behavior.ActionsPerMinute == 0 {
		c.Behavior.ActionsPerMinute = 2
	}
	if c.Behavior.BreakAfterActions == 0 {
		c.Behavior.BreakAfterActions = 3
	}
	if c.Behavior.BreakMin == 0 {
		c.Behavior.BreakMin = Duration(5 * time.Minute)
	}
	if c.Behavior.BreakMax == 0 {
		c.Behavior.BreakMax = Duration(10 * time.Minute)
	}
	if c.Behavior.MaxRetries == 0 {
		c.Behavior.MaxRetries = 3
	}
	if c.Behavior.RetryBackoff == 0 {
		c.Behavior.RetryBackoff = Duration(5 * time.Second)
	}
	if c.Behavior.MaxUnknownErrors == 0 {
		c.Behavior.MaxUnknownErrors = 3
	}

	if c.Filter.MaxAge == 0 {
		c.Filter.MaxAge = Duration(12 * time.Hour)
	}
	if c.Filter.Language == "" {
		c.Filter.Language = "en"
	}

	q := &c.Filter.Quality
	if q.AcceptScore == 0 {
		q.AcceptScore = 60
	}
	if q.ReviewFloor == 0 {
		q.ReviewFloor = 40
	}
	if q.MinLength == 0 {
		q.MinLength = 40
	}
	if q.MaxHashtags == 0 {
		q.MaxHashtags = 3
	}
	if q.MaxEmoji == 0 {
		q.MaxEmoji = 4
	}
	if q.ShortBodyPenalty == 0 {
		q.ShortBodyPenalty = 40
	}
	if q.HashtagPenalty == 0 {
		q.HashtagPenalty = 5
	}
	if q.EmojiPenalty == 0 {
		q.EmojiPenalty = 10
	}
	if q.UppercasePenalty == 0 {
		q.UppercasePenalty = 15
	}
	if q.PunctuationPenalty == 0 {
		q.PunctuationPenalty = 10
	}
	if q.SpamPenalty == 0 {
		q.SpamPenalty = 50
	}
	if q.LowFollowerFloor == 0 {
		q.LowFollowerFloor = 25
	}
	if q.LowFollowerPenalty == 0 {
		q.LowFollowerPenalty = 5
	}
	if q.NoAvatarPenalty == 0 {
		q.NoAvatarPenalty = 5
	}
	if q.DefaultNamePenalty == 0 {
		q.DefaultNamePenalty = 5
	}

	if c.Feed.Path == "" {
		c.Feed.Path = "feed.jsonl"
	}
	if c.Feed.OutboxPath == "" {
		c.Feed.OutboxPath = "outbox.jsonl"
	}
	if c.Feed.CaptureDir == "" {
		c.Feed.CaptureDir = "captures"
	}
	if len(c.Feed.ResponseTemplates) == 0 {
		c.Feed.ResponseTemplates = []string{
			"Interesting point, {author}.",
			"Thanks for sharing this, {author}.",
			"Good thread.",
		}
	}

	if c.HistoryPath == "" {
		c.HistoryPath = "history.json"
	}
}

func LoadConfigFromFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	decoder := toml.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		return nil, err
	}
	config.SetDefault()
	return &config, nil
}

func LoadConfigFromBytes(data []byte) (*Config, error) {
	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	config.SetDefault()
	return &config, nil
}
