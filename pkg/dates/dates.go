// Package dates validates the month/day/year triples collected by date input
// fields.
package dates

import (
	"fmt"
	"time"
)

// Keys used for the nested parts of a date field value.
const (
	MonthKey = "month"
	DayKey   = "day"
	YearKey  = "year"
)

// Parts is a date split into the three inputs a date field renders.
type Parts struct {
	Month int `json:"month"`
	Day   int `json:"day"`
	Year  int `json:"year"`
}

// IsZero reports whether no part has been provided.
func (p Parts) IsZero() bool {
	return p.Month == 0 && p.Day == 0 && p.Year == 0
}

// Year bounds accepted by IsValid.
const (
	MinYear = 1000
	MaxYear = 9999
)

// IsValid reports whether the parts name a real calendar day with a four
// digit year. February 29 is only valid in leap years.
func IsValid(p Parts) bool {
	if p.Year < MinYear || p.Year > MaxYear {
		return false
	}
	if p.Month < 1 || p.Month > 12 || p.Day < 1 {
		return false
	}
	return p.Day <= daysIn(time.Month(p.Month), p.Year)
}

func daysIn(month time.Month, year int) int {
	// Day zero of the next month normalises to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Time converts valid parts into a UTC midnight time.
func (p Parts) Time() (time.Time, error) {
	if !IsValid(p) {
		return time.Time{}, fmt.Errorf("dates: invalid date %s", p)
	}
	return time.Date(p.Year, time.Month(p.Month), p.Day, 0, 0, 0, 0, time.UTC), nil
}

// String formats the parts as MM/DD/YYYY.
func (p Parts) String() string {
	return fmt.Sprintf("%02d/%02d/%04d", p.Month, p.Day, p.Year)
}

// FromMap reads parts from a date field value. Missing or non-numeric parts
// are reported as zero.
func FromMap(value any) Parts {
	m, ok := value.(map[string]any)
	if !ok {
		return Parts{}
	}
	return Parts{
		Month: toInt(m[MonthKey]),
		Day:   toInt(m[DayKey]),
		Year:  toInt(m[YearKey]),
	}
}

// Map renders parts back into the nested value form. Zero parts are omitted.
func (p Parts) Map() map[string]any {
	out := make(map[string]any, 3)
	if p.Month != 0 {
		out[MonthKey] = p.Month
	}
	if p.Day != 0 {
		out[DayKey] = p.Day
	}
	if p.Year != 0 {
		out[YearKey] = p.Year
	}
	return out
}

func toInt(value any) int {
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
