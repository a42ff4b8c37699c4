package model

import (
	"strings"
	"time"
)

// DateLayout is the layout of the "data" column in the upstream feed.
const DateLayout = "02/01/2006"

// LabelLayout is the short day label used on charts.
const LabelLayout = "02/01"

// UndefinedTripType replaces a missing trip type.
const UndefinedTripType = "NÃO DEFINIDO"

// Record is one passenger trip of the daily occupancy feed.
type Record struct {
	// Date is the calendar day of the trip. It is the zero time when the
	// upstream value does not parse.
	Date          time.Time `json:"date"`
	DateLabel     string    `json:"date_label"`
	Line          string    `json:"line"`
	LineType      string    `json:"line_type"`
	TripType      string    `json:"trip_type"`
	PassengerType string    `json:"passenger_type"`
	Hour          string    `json:"hour"`
	Name          string    `json:"name"`
	Company       string    `json:"company"`
	PassengerLine string    `json:"passenger_line"`
}

// HasDate reports whether the record carries a valid calendar date.
func (r Record) HasDate() bool { return !r.Date.IsZero() }

// OnDay reports whether the record belongs to the calendar day of d.
func (r Record) OnDay(d time.Time) bool {
	return r.HasDate() && SameDay(r.Date, d)
}

// ParseDate parses a dd/mm/yyyy value. Unparseable values yield the zero time.
func ParseDate(s string) time.Time {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}

// Day truncates t to its calendar day, keeping the year, month and day of
// t's own location and expressing the result in UTC.
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay compares the calendar days of a and b.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}
