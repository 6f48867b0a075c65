package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeRangeUnmarshalTOML(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
	}{
		{"Valid time range", "09:00-17:00", false},
		{"End of day", "07:00-24:00", false},
		{"Invalid format", "09:00/17:00", true},
		{"Start time after end time", "17:00-09:00", true},
		{"Invalid time values", "invalid-17:00", true},
		{"Start of 24:00 not allowed", "24:00-09:00", true},
		{"Empty string", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tr TimeRange
			err := tr.UnmarshalText([]byte(tt.input))
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Less(t, tr.Start, tr.End)
			}
		})
	}
}

func TestTimeRangeEndOfDay(t *testing.T) {
	var tr TimeRange
	require.NoError(t, tr.UnmarshalText([]byte("07:00-24:00")))
	assert.Equal(t, 7*time.Hour, tr.Start)
	assert.Equal(t, 24*time.Hour, tr.End)
}

func TestLoadConfigFromBytes(t *testing.T) {
	tomlData := `
history_path = "out/sessions.json"

[schedule]
timezone = "Europe/London"
active_hours = "07:00-24:00"
active_days = ["mon", "tue", "wed", "thu", "fri"]

[limits]
max_items = 25
max_actions = 4
max_duration = "30m"

[cooldown]
min_rest = "45m"
max_rest = "75m"
error_recovery = "3h"
extended_chance = 0.05

[behavior]
reply_probability = 0.7
delay_distribution = "uniform"

[filter]
max_age = "8h"
min_likes = 5
banned_keywords = ["giveaway", "airdrop"]

[filter.quality]
accept_score = 65
`
	cfg, err := LoadConfigFromBytes([]byte(tomlData))
	require.NoError(t, err)

	assert.Equal(t, "Europe/London", cfg.Schedule.Timezone)
	assert.Equal(t, 7*time.Hour, cfg.Schedule.ActiveHours.Start)
	assert.Equal(t, 24*time.Hour, cfg.Schedule.ActiveHours.End)
	assert.Equal(t, 25, cfg.Limits.MaxItems)
	assert.Equal(t, 4, cfg.Limits.MaxActions)
	assert.Equal(t, 30*time.Minute, cfg.Limits.MaxDuration.Std())
	assert.Equal(t, 3*time.Hour, cfg.Cooldown.ErrorRecovery.Std())
	assert.Equal(t, 0.7, cfg.Behavior.ReplyProbability)
	assert.Equal(t, []string{"giveaway", "airdrop"}, cfg.Filter.BannedKeywords)
	assert.Equal(t, 65.0, cfg.Filter.Quality.AcceptScore)
	assert.Equal(t, "out/sessions.json", cfg.HistoryPath)

	// Unset fields got defaults.
	assert.Equal(t, 12*time.Second, cfg.Behavior.ActionDelayMax.Std())
	assert.Equal(t, 40.0, cfg.Filter.Quality.ReviewFloor)
	assert.Equal(t, "en", cfg.Filter.Language)
}

func TestSetDefault(t *testing.T) {
	var cfg Config
	cfg.SetDefault()

	assert.Equal(t, "Europe/London", cfg.Schedule.Timezone)
	assert.Len(t, cfg.Schedule.ActiveDays, 7)
	assert.Equal(t, 40, cfg.Limits.MaxItems)
	assert.Equal(t, 120*time.Minute, cfg.Cooldown.ErrorRecovery.Std())
	assert.Equal(t, "gaussian", cfg.Behavior.DelayDistribution)
	assert.Equal(t, 60.0, cfg.Filter.Quality.AcceptScore)
	assert.NoError(t, cfg.Validate())
}

func TestScheduleDays(t *testing.T) {
	s := ScheduleConfig{ActiveDays: []string{"Mon", "wed", " fri "}}
	days, err := s.Days()
	require.NoError(t, err)
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday}, days)

	s.ActiveDays = []string{"mon", "funday"}
	_, err = s.Days()
	assert.Error(t, err)
}

func TestValidateRejectsBadPolicy(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown timezone", func(c *Config) { c.Schedule.Timezone = "Mars/Olympus" }},
		{"bad weekday", func(c *Config) { c.Schedule.ActiveDays = []string{"noday"} }},
		{"zero actions", func(c *Config) { c.Limits.MaxActions = -1 }},
		{"inverted rest range", func(c *Config) { c.Cooldown.MinRest = c.Cooldown.MaxRest * 2 }},
		{"short error recovery", func(c *Config) { c.Cooldown.ErrorRecovery = c.Cooldown.MaxRest / 2 }},
		{"probability out of range", func(c *Config) { c.Behavior.ReplyProbability = 1.5 }},
		{"unknown distribution", func(c *Config) { c.Behavior.DelayDistribution = "poisson" }},
		{"extended chance out of range", func(c *Config) { c.Cooldown.ExtendedChance = -0.1 }},
		{"review floor above accept", func(c *Config) { c.Filter.Quality.ReviewFloor = 99 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			cfg.SetDefault()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
