package utils

import (
	"time"
)

// StartOfDayUTC returns 00:00:00 UTC of the current day. Daily risk
// figures reset at this boundary; accounts carry no locale, so UTC is the
// shared clock.
func StartOfDayUTC() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
