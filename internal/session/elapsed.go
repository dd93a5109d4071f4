package session

import "time"

// DefaultElapsedSeconds is submitted when no start time is known.
const DefaultElapsedSeconds = 60

// elapsedSince returns whole seconds from start to now, never negative.
func elapsedSince(start, now time.Time) int {
	if start.IsZero() {
		return 0
	}
	d := now.Sub(start)
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}

// submitSeconds returns the duration to report for an attempt that began
// at start: 60 seconds when start is unknown, and never less than 1.
func submitSeconds(start, now time.Time) int {
	if start.IsZero() {
		return DefaultElapsedSeconds
	}
	secs := int(now.Sub(start) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}
