// Package calendar allocates tagged lesson units onto a dense multi-month
// calendar grid driven by a weekly slot template.
//
// The package is pure: it performs no I/O, keeps no global state and never
// logs. Callers hand it a snapshot of the lesson pool and receive a fully
// populated grid plus the usage counts accumulated during the run.
package calendar

import (
	"fmt"
	"strings"
)

// WeeksPerMonth is the number of abstract weeks each month is split into.
const WeeksPerMonth = 4

// Day is a template day label.
type Day string

const (
	Monday    Day = "monday"
	Tuesday   Day = "tuesday"
	Wednesday Day = "wednesday"
	Thursday  Day = "thursday"
	Friday    Day = "friday"
	Saturday  Day = "saturday"
)

// Days lists template days in grid order.
var Days = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// ParseDay matches a day label case-insensitively.
func ParseDay(raw string) (Day, bool) {
	candidate := Day(strings.ToLower(strings.TrimSpace(raw)))
	for _, day := range Days {
		if day == candidate {
			return day, true
		}
	}
	return "", false
}

// TimeSlot is a template time-slot label.
type TimeSlot string

const (
	Morning   TimeSlot = "morning"
	Noon      TimeSlot = "noon"
	Afternoon TimeSlot = "afternoon"
)

// TimeSlots lists template time slots in grid order.
var TimeSlots = []TimeSlot{Morning, Noon, Afternoon}

// ParseTimeSlot matches a time-slot label case-insensitively.
func ParseTimeSlot(raw string) (TimeSlot, bool) {
	candidate := TimeSlot(strings.ToLower(strings.TrimSpace(raw)))
	for _, slot := range TimeSlots {
		if slot == candidate {
			return slot, true
		}
	}
	return "", false
}

// CategoryID is an opaque lesson category identifier.
type CategoryID string

// LessonUnit is a lesson eligible for placement. Position is coarse: a year,
// month and abstract week, never a concrete day or slot.
type LessonUnit struct {
	ID         string     `json:"id"`
	CategoryID CategoryID `json:"categoryId"`
	Title      string     `json:"title,omitempty"`
	Year       int        `json:"year"`
	Month      int        `json:"month"`
	Week       int        `json:"week"`
}

// YearMonth addresses one month of the calendar.
type YearMonth struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// String renders the month as YYYY-MM.
func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month)
}

// Before reports whether ym is chronologically earlier than other.
func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

// Next returns the following month, rolling over the year boundary.
func (ym YearMonth) Next() YearMonth {
	if ym.Month == 12 {
		return YearMonth{Year: ym.Year + 1, Month: 1}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month + 1}
}

// DateRange is an inclusive month-granularity range.
type DateRange struct {
	Start YearMonth `json:"start"`
	End   YearMonth `json:"end"`
}

// NewDateRange builds a range from its four components.
func NewDateRange(startYear, startMonth, endYear, endMonth int) DateRange {
	return DateRange{
		Start: YearMonth{Year: startYear, Month: startMonth},
		End:   YearMonth{Year: endYear, Month: endMonth},
	}
}
