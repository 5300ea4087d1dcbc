package scheduling

import "time"

// Weekday maps a timestamp's day of week onto the 1=Monday..7=Sunday
// encoding used by availability rows. Go's time.Weekday counts Sunday
// as 0, which becomes 7 here. Every availability lookup goes through
// this helper.
func Weekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// TimeOfDay returns t's offset from its own midnight.
func TimeOfDay(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}
