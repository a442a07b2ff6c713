package scheduler

import (
	"time"

	"github.com/carel2246/prod3-scheduler/internal/schedulererr"
)

// calendarSafetyDays bounds the day-by-day walk used to map elapsed working
// minutes to a calendar datetime, and to locate the next working day. It
// mirrors the 365-day guard in the system this engine's calendar logic is
// descended from.
const calendarSafetyDays = 365

// openClose returns the working window, in minutes since midnight, for the
// given ISO weekday (1 = Monday ... 7 = Sunday). A day absent from the
// calendar is treated as non-working (open == close == 0).
func openClose(calendar [8]CalendarEntry, weekday int) (open, close int) {
	entry := calendar[weekday]
	return entry.Open, entry.Close
}

// toDatetime maps elapsed working minutes, counted from anchor, to the wall
// clock datetime they land on, walking the calendar day by day and skipping
// non-working days. anchor need not itself fall within a working window.
func toDatetime(calendar [8]CalendarEntry, elapsed int, anchor time.Time) (time.Time, error) {
	current := anchor
	remaining := elapsed

	for day := 0; day < calendarSafetyDays; day++ {
		weekday := int(current.Weekday())
		if weekday == 0 {
			weekday = 7 // time.Sunday == 0; calendar uses ISO 1..7
		}
		open, close := openClose(calendar, weekday)
		if open == close {
			current = startOfDay(current).AddDate(0, 0, 1)
			continue
		}

		available := close - open
		if remaining <= available {
			return startOfDay(current).Add(time.Duration(open+remaining) * time.Minute), nil
		}

		remaining -= available
		current = startOfDay(current).AddDate(0, 0, 1)
	}

	// Exhausted the safety bound still owing minutes: fall back to locating
	// the next working day's open time, matching the source's behavior of
	// never blocking on a malformed calendar.
	current = anchor
	for day := 0; day < calendarSafetyDays; day++ {
		weekday := int(current.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		open, close := openClose(calendar, weekday)
		if open != close {
			return startOfDay(current).Add(time.Duration(open) * time.Minute), nil
		}
		current = startOfDay(current).AddDate(0, 0, 1)
	}

	return time.Time{}, schedulererr.NewNoWorkingDayError(anchor.Format(time.RFC3339))
}

// toElapsed is toDatetime's inverse: given a wall-clock instant on or after
// anchor, it returns the number of working minutes elapsed since anchor.
// It is used only by tests to verify the round-trip property; the solver
// itself works entirely in elapsed-minute space.
func toElapsed(calendar [8]CalendarEntry, t time.Time, anchor time.Time) (int, error) {
	if t.Before(anchor) {
		return 0, schedulererr.NewNoWorkingDayError(anchor.Format(time.RFC3339))
	}

	current := anchor
	elapsed := 0
	for day := 0; day < calendarSafetyDays; day++ {
		weekday := int(current.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		open, close := openClose(calendar, weekday)
		dayStart := startOfDay(current)
		dayEnd := dayStart.AddDate(0, 0, 1)

		if open != close {
			windowStart := dayStart.Add(time.Duration(open) * time.Minute)
			windowEnd := dayStart.Add(time.Duration(close) * time.Minute)
			if !t.Before(windowStart) && t.Before(windowEnd) {
				return elapsed + int(t.Sub(windowStart).Minutes()), nil
			}
			if !t.Before(windowEnd) {
				elapsed += close - open
			}
		}

		current = dayEnd
		if !t.After(current) {
			break
		}
	}

	return elapsed, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
