package utils

import (
	"math"
	"time"
)

// nanosPerTick is the length of one tick. Trigger times are persisted in ticks.
const nanosPerTick = 100

// MaxTicks is the largest tick count TicksToDuration converts without overflow.
const MaxTicks = math.MaxInt64 / nanosPerTick

func TimeNowUTC() time.Time {
	return time.Now().UTC()
}

// TicksToDuration converts 100ns ticks to a time.Duration.
func TicksToDuration(ticks int64) time.Duration {
	return time.Duration(ticks * nanosPerTick)
}

// DurationToTicks converts a time.Duration to 100ns ticks.
func DurationToTicks(d time.Duration) int64 {
	return int64(d) / nanosPerTick
}

// StartOfDay truncates t to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// WeekWindows splits [from, to) into consecutive 7-day windows. The last window may extend past to.
func WeekWindows(from, to time.Time) [][2]time.Time {
	var windows [][2]time.Time
	for start := from; start.Before(to); start = start.AddDate(0, 0, 7) {
		windows = append(windows, [2]time.Time{start, start.AddDate(0, 0, 7)})
	}
	return windows
}
