package schedule

import "time"

var oppositeShift = map[string]string{
	"AM": "PM",
	"PM": "AM",
}

// OppositeShiftName maps a shift name onto its counterpart. The mapping
// is a fixed two-value relation; anything else has no opposite.
func OppositeShiftName(name string) (string, bool) {
	opposite, ok := oppositeShift[name]
	return opposite, ok
}

func IsSunday(date time.Time) bool {
	return date.Weekday() == time.Sunday
}

func IsWeekend(date time.Time) bool {
	return date.Weekday() == time.Saturday || date.Weekday() == time.Sunday
}

// DateOnly truncates to midnight UTC so calendar comparisons ignore the
// time component.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfYear returns December 31 of the given date's year.
func EndOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
}
