package dateutil

import (
	"fmt"
	"time"
)

// CivilDate is the calendar-field projection of an instant in a timezone
type CivilDate struct {
	Year   int        `json:"year"`
	Month  time.Month `json:"month"`
	Day    int        `json:"day"`
	Hour   int        `json:"hour"`
	Minute int        `json:"minute"`
	Second int        `json:"second"`
}

// IsLeapYear returns true for Gregorian leap years
func IsLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

// DaysInYear returns 366 for leap years and 365 otherwise
func DaysInYear(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

// Civil projects the instant into loc and returns its calendar fields
func Civil(t time.Time, loc *time.Location) CivilDate {
	local := t.In(loc)
	return CivilDate{
		Year:   local.Year(),
		Month:  local.Month(),
		Day:    local.Day(),
		Hour:   local.Hour(),
		Minute: local.Minute(),
		Second: local.Second(),
	}
}

// DayNumber returns the number of days from 1970-01-01 to the given civil date.
// The result is negative for dates before the epoch.
func DayNumber(year int, month time.Month, day int) int {
	// Midnight UTC is always an exact multiple of 86400 seconds.
	return int(time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// DayNumber returns the epoch day number of the civil date
func (c CivilDate) DayNumber() int {
	return DayNumber(c.Year, c.Month, c.Day)
}

// DaysBetween returns the signed number of calendar days from a to b
func DaysBetween(a, b CivilDate) int {
	return b.DayNumber() - a.DayNumber()
}

// String formats the date part as YYYY-MM-DD
func (c CivilDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", c.Year, int(c.Month), c.Day)
}

// DayOfYear returns the 1-based ordinal of t's civil date within its civil year.
// Calendar days are subtracted, not wall-clock durations, so DST shifts in loc
// cannot move the result.
func DayOfYear(t time.Time, loc *time.Location) int {
	c := Civil(t, loc)
	return DayNumber(c.Year, c.Month, c.Day) - DayNumber(c.Year, time.January, 1) + 1
}

// DaysRemainingInYear returns how many days of t's civil year follow its civil date
func DaysRemainingInYear(t time.Time, loc *time.Location) int {
	c := Civil(t, loc)
	return DaysInYear(c.Year) - DayOfYear(t, loc)
}

// StartOfDay returns the start of the day (00:00:00) for the given date
func StartOfDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
}

// StartOfYear returns midnight of January 1st of year in loc
func StartOfYear(year int, loc *time.Location) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
}

// IsSameDay returns true if two instants fall on the same civil day in loc
func IsSameDay(date1, date2 time.Time, loc *time.Location) bool {
	return Civil(date1, loc).DayNumber() == Civil(date2, loc).DayNumber()
}

// ParseDate parses date string in various formats.
// Strings without an offset are interpreted in loc.
func ParseDate(dateStr string, loc *time.Location) (time.Time, error) {
	formats := []string{
		"2006-01-02",
		"02.01.2006",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04",
	}

	for _, format := range formats {
		if t, err := time.ParseInLocation(format, dateStr, loc); err == nil {
			return t, nil
		}
	}

	zoned := []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05-0700",
	}
	for _, format := range zoned {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date format: %q", dateStr)
}
