package clock

import "time"

// SystemClock returns the current wall-clock time in UTC.
type SystemClock struct{}

func NewSystemClock() SystemClock { return SystemClock{} }

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// DateOf formats t as the API's calendar date (YYYY-MM-DD, UTC).
func DateOf(t time.Time) string { return t.UTC().Format(time.DateOnly) }
