package tz

import "time"

// Canonical is the single zone stored event timestamps are interpreted in.
var Canonical = time.UTC

// Storage layouts for the events table.
const (
	DateLayout      = "02-01-2006"
	TimeLayout      = "15:04 UTC"
	ClockLayout     = "15:04"
	CreatedAtLayout = "2006-01-02 15:04:05"
)

// StartInstant combines a stored date (DD-MM-YYYY) and time (HH:MM UTC) into one instant.
func StartInstant(date, clock string) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+clock, Canonical)
}
