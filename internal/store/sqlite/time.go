package sqlite

import "time"

// Timestamps are stored as unix nanoseconds.
func toUnix(t time.Time) int64 {
	return t.UTC().UnixNano()
}

func fromUnix(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

var nowFunc = time.Now
