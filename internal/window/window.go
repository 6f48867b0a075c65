// Package window decides whether an instant falls inside the configured
// operating window and computes the next instant at which operation is
// allowed. All checks are done in the window's own timezone, so standard
// time / daylight saving transitions are applied per call.
package window

import (
	"fmt"
	"time"

	"github.com/fennwick/murmur/internal/config"
)

// Window is an immutable operating-window policy: a timezone, a local
// time-of-day range, and the set of active weekdays. An end offset of 24h
// means the window runs through the last instant of the day.
type Window struct {
	loc   *time.Location
	start time.Duration
	end   time.Duration
	days  map[time.Weekday]bool
}

func New(timezone string, start, end time.Duration, days []time.Weekday) (*Window, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", timezone, err)
	}
	if start < 0 || end > 24*time.Hour || start >= end {
		return nil, fmt.Errorf("invalid window bounds: start %s, end %s", start, end)
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("window has no active days")
	}
	daySet := make(map[time.Weekday]bool, len(days))
	for _, d := range days {
		daySet[d] = true
	}
	return &Window{loc: loc, start: start, end: end, days: daySet}, nil
}

func FromConfig(s config.ScheduleConfig) (*Window, error) {
	days, err := s.Days()
	if err != nil {
		return nil, err
	}
	return New(s.Timezone, s.ActiveHours.Start, s.ActiveHours.End, days)
}

func (w *Window) Location() *time.Location {
	return w.loc
}

// IsWithin reports whether the instant falls inside the window: the local
// weekday is active and the local time of day is in [start, end).
func (w *Window) IsWithin(now time.Time) bool {
	local := now.In(w.loc)
	if !w.days[local.Weekday()] {
		return false
	}
	tod := timeOfDay(local)
	return tod >= w.start && tod < w.end
}

// NextStart returns the earliest instant >= now at which the window is
// open. If now is already inside the window it is returned unchanged.
// Otherwise days are advanced one at a time, skipping inactive weekdays,
// until an active day's start is found.
func (w *Window) NextStart(now time.Time) time.Time {
	if w.IsWithin(now) {
		return now
	}

	local := now.In(w.loc)
	year, month, day := local.Date()

	// Eight iterations cover every weekday even when today's start has
	// already passed.
	for i := 0; i <= 7; i++ {
		start := w.dayStart(year, month, day+i)
		if !w.days[start.Weekday()] {
			continue
		}
		if !start.Before(now) {
			return start
		}
	}

	// Unreachable: the day set is non-empty.
	return w.dayStart(year, month, day+8)
}

// dayStart resolves the window's start-of-day wall clock on the given
// local date to a concrete instant. When a DST fall-back makes the wall
// clock ambiguous the later of the two instants is chosen; when a
// spring-forward gap makes it nonexistent, the first valid instant after
// the transition is used.
func (w *Window) dayStart(year int, month time.Month, day int) time.Time {
	hh := int(w.start / time.Hour)
	mm := int((w.start % time.Hour) / time.Minute)

	t := time.Date(year, month, day, hh, mm, 0, 0, w.loc)
	if t.Hour() != hh || t.Minute() != mm {
		// The wall clock does not exist on this date; time.Date
		// normalized it backward across the gap.
		return w.afterTransition(t)
	}
	if alt := t.Add(time.Hour); alt.Hour() == hh && alt.Minute() == mm {
		// The wall clock repeats; t is the earlier occurrence.
		return alt
	}
	return t
}

// afterTransition finds the first instant past the zone-offset change
// that follows t. Gaps are at most two hours in practice, so a three
// hour search span always brackets the transition.
func (w *Window) afterTransition(t time.Time) time.Time {
	_, before := t.Zone()
	lo, hi := t.Unix(), t.Add(3*time.Hour).Unix()
	for lo+1 < hi {
		mid := (lo + hi) / 2
		if _, off := time.Unix(mid, 0).In(w.loc).Zone(); off == before {
			lo = mid
		} else {
			hi = mid
		}
	}
	return time.Unix(hi, 0).In(w.loc)
}

func timeOfDay(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}
