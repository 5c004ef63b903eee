package service

import "time"

// DefaultSleepBoundaryHour is where the logical day flips for sleep
// attribution. A session ending before 02:00 local time belongs to the
// previous calendar day.
const DefaultSleepBoundaryHour = 2

// LogicalDay maps a timestamp to the calendar day it is attributed to.
// Times strictly before boundaryHour shift back to the previous day; exactly
// boundaryHour:00 already counts as the new day. The timestamp is evaluated
// in local time. Boundary hours outside [0, 23] are clamped so the function
// never fails.
func LogicalDay(t time.Time, boundaryHour int) string {
	if boundaryHour < 0 {
		boundaryHour = 0
	}
	if boundaryHour > 23 {
		boundaryHour = 23
	}
	local := t.In(time.Local)
	if local.Hour() < boundaryHour {
		local = local.AddDate(0, 0, -1)
	}
	return local.Format(dayKeyLayout)
}

// IsNewLogicalDay reports whether a timestamp already falls on its own
// calendar day rather than being attributed to the previous one.
func IsNewLogicalDay(t time.Time, boundaryHour int) bool {
	return LogicalDay(t, boundaryHour) == t.In(time.Local).Format(dayKeyLayout)
}
