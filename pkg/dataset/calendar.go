package dataset

import "time"

// Epoch is the calendar date of day 0.
var Epoch = time.Date(2016, time.May, 1, 0, 0, 0, 0, time.UTC)

// Date returns the calendar date of a day offset.
func Date(day int) time.Time {
	return Epoch.AddDate(0, 0, day)
}

// Weekday returns the weekday of a day offset.
func Weekday(day int) time.Weekday {
	return Date(day).Weekday()
}

// IsWeekend reports whether the day falls on a Saturday or a Sunday.
func IsWeekend(day int) bool {
	w := Weekday(day)
	return w == time.Saturday || w == time.Sunday
}
