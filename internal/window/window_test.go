package window

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allDays() []time.Weekday {
	return []time.Weekday{
		time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
		time.Thursday, time.Friday, time.Saturday,
	}
}

func mustWindow(t *testing.T, tz string, start, end time.Duration, days []time.Weekday) *Window {
	t.Helper()
	w, err := New(tz, start, end, days)
	require.NoError(t, err)
	return w
}

func TestNewRejectsBadBounds(t *testing.T) {
	_, err := New("Europe/London", 9*time.Hour, 8*time.Hour, allDays())
	assert.Error(t, err)

	_, err = New("Europe/London", 9*time.Hour, 17*time.Hour, nil)
	assert.Error(t, err)

	_, err = New("Not/AZone", 9*time.Hour, 17*time.Hour, allDays())
	assert.Error(t, err)
}

func TestIsWithinBasicHours(t *testing.T) {
	w := mustWindow(t, "Europe/London", 7*time.Hour, 24*time.Hour, allDays())
	london, _ := time.LoadLocation("Europe/London")

	// Scenario A: 06:59 local is outside, 07:00 is inside.
	before := time.Date(2024, 6, 12, 6, 59, 0, 0, london)
	assert.False(t, w.IsWithin(before))

	at := time.Date(2024, 6, 12, 7, 0, 0, 0, london)
	assert.True(t, w.IsWithin(at))

	// A 24:00 end runs through the last instant of the day.
	lateNight := time.Date(2024, 6, 12, 23, 59, 59, 0, london)
	assert.True(t, w.IsWithin(lateNight))
}

func TestIsWithinInactiveWeekday(t *testing.T) {
	weekdays := []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
	w := mustWindow(t, "Europe/London", 9*time.Hour, 17*time.Hour, weekdays)
	london, _ := time.LoadLocation("Europe/London")

	saturdayNoon := time.Date(2024, 6, 15, 12, 0, 0, 0, london)
	assert.False(t, w.IsWithin(saturdayNoon))

	mondayNoon := time.Date(2024, 6, 17, 12, 0, 0, 0, london)
	assert.True(t, w.IsWithin(mondayNoon))
}

func TestIsWithinUsesCallerTimezoneConversion(t *testing.T) {
	w := mustWindow(t, "Europe/London", 7*time.Hour, 24*time.Hour, allDays())

	// 06:30 UTC in July is 07:30 BST: inside the window even though the
	// UTC wall clock is before the start.
	utcMorning := time.Date(2024, 7, 1, 6, 30, 0, 0, time.UTC)
	assert.True(t, w.IsWithin(utcMorning))

	// The same wall clock in January (GMT, offset 0) is outside.
	winterMorning := time.Date(2024, 1, 8, 6, 30, 0, 0, time.UTC)
	assert.False(t, w.IsWithin(winterMorning))
}

func TestNextStartSameDay(t *testing.T) {
	w := mustWindow(t, "Europe/London", 7*time.Hour, 24*time.Hour, allDays())
	london, _ := time.LoadLocation("Europe/London")

	// Scenario A: 06:59 advances to 07:00 the same day.
	now := time.Date(2024, 6, 12, 6, 59, 0, 0, london)
	next := w.NextStart(now)
	assert.Equal(t, time.Date(2024, 6, 12, 7, 0, 0, 0, london), next)
}

func TestNextStartInsideWindowReturnsNow(t *testing.T) {
	w := mustWindow(t, "Europe/London", 7*time.Hour, 24*time.Hour, allDays())
	london, _ := time.LoadLocation("Europe/London")

	now := time.Date(2024, 6, 12, 15, 12, 42, 0, london)
	assert.Equal(t, now, w.NextStart(now))
}

func TestNextStartSkipsInactiveDays(t *testing.T) {
	weekdays := []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
	w := mustWindow(t, "Europe/London", 9*time.Hour, 17*time.Hour, weekdays)
	london, _ := time.LoadLocation("Europe/London")

	// Friday evening rolls over the whole weekend to Monday 09:00.
	fridayEvening := time.Date(2024, 6, 14, 18, 0, 0, 0, london)
	next := w.NextStart(fridayEvening)
	assert.Equal(t, time.Date(2024, 6, 17, 9, 0, 0, 0, london), next)
}

func TestNextStartAcrossSpringForwardGap(t *testing.T) {
	// America/New_York, 2024-03-10: 02:00-03:00 local does not exist.
	// A window starting at 02:30 must still resolve to a valid instant.
	w := mustWindow(t, "America/New_York", 2*time.Hour+30*time.Minute, 20*time.Hour, allDays())
	ny, _ := time.LoadLocation("America/New_York")

	now := time.Date(2024, 3, 10, 1, 0, 0, 0, ny)
	next := w.NextStart(now)

	assert.False(t, next.Before(now), "next start must not be before now")
	assert.True(t, w.IsWithin(next), "next start must land inside the window")
	// The resolved instant must not be inside the nonexistent hour.
	_, offset := next.Zone()
	assert.Equal(t, -4*3600, offset, "expected the post-transition (EDT) offset")
	// 02:30 does not exist that day; the window opens at the transition
	// itself, 03:00 EDT.
	assert.Equal(t, time.Date(2024, 3, 10, 3, 0, 0, 0, ny).Unix(), next.Unix())
}

func TestNextStartAmbiguousFallBackPicksLater(t *testing.T) {
	// Europe/London, 2024-10-27: 01:00-02:00 BST repeats as 01:00-02:00 GMT.
	// A window start of 01:30 occurs twice; the later (GMT) instant wins.
	w := mustWindow(t, "Europe/London", 1*time.Hour+30*time.Minute, 20*time.Hour, allDays())
	london, _ := time.LoadLocation("Europe/London")

	now := time.Date(2024, 10, 27, 0, 0, 0, 0, london) // 00:00 BST
	next := w.NextStart(now)

	assert.True(t, w.IsWithin(next))
	// The later occurrence of 01:30 local is 01:30 UTC (GMT offset 0).
	assert.Equal(t, time.Date(2024, 10, 27, 1, 30, 0, 0, time.UTC).Unix(), next.Unix())
}

func TestNextStartPropertyHolds(t *testing.T) {
	// next >= now and IsWithin(next) for a spread of instants, including
	// both 2024 London transition days.
	w := mustWindow(t, "Europe/London", 7*time.Hour, 22*time.Hour,
		[]time.Weekday{time.Monday, time.Wednesday, time.Friday, time.Sunday})

	instants := []time.Time{
		time.Date(2024, 3, 30, 23, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 0, 30, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 10, 26, 23, 30, 0, 0, time.UTC),
		time.Date(2024, 10, 27, 1, 0, 0, 0, time.UTC),
		time.Date(2024, 10, 27, 18, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC),
	}

	for _, now := range instants {
		next := w.NextStart(now)
		assert.False(t, next.Before(now), "NextStart(%v) = %v is before now", now, next)
		assert.True(t, w.IsWithin(next), "NextStart(%v) = %v is not within window", now, next)
	}
}
