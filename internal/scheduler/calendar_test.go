package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func mondayFridayCalendar() [8]CalendarEntry {
	var cal [8]CalendarEntry
	for weekday := 1; weekday <= 5; weekday++ {
		cal[weekday] = CalendarEntry{Weekday: weekday, Open: 8 * 60, Close: 17 * 60}
	}
	// Saturday (6) and Sunday (7) left zero-valued: open == close, non-working.
	return cal
}

func TestToDatetime_SameDay(t *testing.T) {
	cal := mondayFridayCalendar()
	anchor := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC) // a Monday

	got, err := toDatetime(cal, 30, anchor)
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 8, 3, 8, 30, 0, 0, time.UTC), got)
}

func TestToDatetime_WrapsPastWorkingDayAndWeekend(t *testing.T) {
	cal := mondayFridayCalendar()
	anchor := time.Date(2026, 8, 7, 0, 0, 0, 0, time.UTC) // a Friday

	// The working day is 9 hours (540 minutes); ask for 600 minutes, which
	// spills past Friday's close, skips the weekend, and lands Monday.
	got, err := toDatetime(cal, 600, anchor)
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC), got) // Monday 08:00 + 60m
}

func TestToDatetime_RoundTrip(t *testing.T) {
	cal := mondayFridayCalendar()
	anchor := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)

	for _, elapsed := range []int{0, 15, 540, 541, 1200} {
		dt, err := toDatetime(cal, elapsed, anchor)
		require.NoError(t, err)

		back, err := toElapsed(cal, dt, anchor)
		require.NoError(t, err)
		require.Equal(t, elapsed, back, "elapsed=%d", elapsed)
	}
}

func TestToDatetime_NoWorkingDayWithinBound(t *testing.T) {
	var cal [8]CalendarEntry // every day non-working
	anchor := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)

	_, err := toDatetime(cal, 10, anchor)
	require.Error(t, err)
}
