// Package calendar validates user-selected dates and derives the decade
// bucket used for static lookups and theming.
package calendar

import (
	"fmt"
	"strconv"
	"time"
)

// MinYear is the earliest supported year. The upper bound is the current year.
const MinYear = 1950

// now is overridden in tests to pin the upper bound.
var now = time.Now

// Date is a validated calendar date. The zero value is not valid; construct
// with New. Date is immutable and safe to copy.
type Date struct {
	year  int
	month time.Month
	day   int
}

// InvalidDateError reports a (year, month, day) triple that is not a real
// calendar date or falls outside the supported year range.
type InvalidDateError struct {
	Year   int
	Month  int
	Day    int
	Input  string // raw text when it could not be split into a triple
	Reason string
}

func (e *InvalidDateError) Error() string {
	if e.Input != "" {
		return fmt.Sprintf("invalid date %q: %s", e.Input, e.Reason)
	}
	return fmt.Sprintf("invalid date %04d-%02d-%02d: %s", e.Year, e.Month, e.Day, e.Reason)
}

// New validates the triple and returns the Date.
func New(year, month, day int) (Date, error) {
	invalid := func(reason string) (Date, error) {
		return Date{}, &InvalidDateError{Year: year, Month: month, Day: day, Reason: reason}
	}

	if month < 1 || month > 12 {
		return invalid("month must be between 1 and 12")
	}
	if day < 1 || day > 31 {
		return invalid("day must be between 1 and 31")
	}
	maxYear := now().Year()
	if year < MinYear || year > maxYear {
		return invalid(fmt.Sprintf("year must be between %d and %d", MinYear, maxYear))
	}

	// time.Date normalizes overflow (Feb 30 -> Mar 2); a round trip that
	// changes the day means the triple does not exist.
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return invalid(fmt.Sprintf("%s has no day %d", time.Month(month), day))
	}

	return Date{year: year, month: time.Month(month), day: day}, nil
}

// Parse accepts exactly YYYY-MM-DD. The triple is then checked by New, so
// "2023-02-30" fails with the same reason as New(2023, 2, 30).
func Parse(s string) (Date, error) {
	malformed := &InvalidDateError{Input: s, Reason: "want YYYY-MM-DD"}
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return Date{}, malformed
	}
	var parts [3]int
	for i, field := range []string{s[0:4], s[5:7], s[8:10]} {
		for _, r := range field {
			if r < '0' || r > '9' {
				return Date{}, malformed
			}
		}
		parts[i], _ = strconv.Atoi(field)
	}
	return New(parts[0], parts[1], parts[2])
}

func (d Date) Year() int         { return d.year }
func (d Date) Month() time.Month { return d.month }
func (d Date) Day() int          { return d.day }

// Decade returns the 10-year bucket, e.g. 1969 -> 1960.
func (d Date) Decade() int {
	return (d.year / 10) * 10
}

// DecadeLabel returns the decade as "1960s".
func (d Date) DecadeLabel() string {
	return fmt.Sprintf("%ds", d.Decade())
}

// MonthName returns the English month name.
func (d Date) MonthName() string {
	return d.month.String()
}

// PageKey returns the encyclopedia page key, e.g. "July_20".
func (d Date) PageKey() string {
	return fmt.Sprintf("%s_%d", d.month, d.day)
}

// Time returns the date at midnight UTC.
func (d Date) Time() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

// String formats the date for display, e.g. "July 20, 1969".
func (d Date) String() string {
	return d.Time().Format("January 02, 2006")
}

// ISO formats the date as YYYY-MM-DD.
func (d Date) ISO() string {
	return d.Time().Format("2006-01-02")
}
