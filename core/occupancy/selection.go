package occupancy

import (
	"net/url"
	"slices"
	"time"

	"github.com/kilianp07/occupancy/core/model"
)

// Query parameter names understood by SelectionFromQuery.
const (
	ParamDate     = "date"
	ParamLineType = "line_type"
	ParamTripType = "trip_type"
)

// QueryDateLayout is the date format used in query strings.
const QueryDateLayout = "2006-01-02"

// Selection holds the three cascading filters.
type Selection struct {
	Date      time.Time `json:"date"`
	LineTypes []string  `json:"line_types,omitempty"`
	TripTypes []string  `json:"trip_types,omitempty"`
}

// Pin fixes the dashboard on a single line.
type Pin struct {
	Enabled bool   `json:"enabled"`
	Line    string `json:"line,omitempty"`
}

// Active reports whether the pin restricts the rows.
func (p Pin) Active() bool { return p.Enabled && p.Line != "" }

// Toggle flips the pin and records line as the pinned line.
func (p Pin) Toggle(line string) Pin {
	return Pin{Enabled: !p.Enabled, Line: line}
}

// SelectionFromQuery reads a selection from URL query values. Invalid dates
// are ignored and later replaced by the default date.
func SelectionFromQuery(q url.Values) Selection {
	sel := Selection{
		LineTypes: nonEmpty(q[ParamLineType]),
		TripTypes: nonEmpty(q[ParamTripType]),
	}
	if v := q.Get(ParamDate); v != "" {
		if d, err := time.Parse(QueryDateLayout, v); err == nil {
			sel.Date = d
		}
	}
	return sel
}

// Query encodes the selection back into query values.
func (s Selection) Query() url.Values {
	q := url.Values{}
	if !s.Date.IsZero() {
		q.Set(ParamDate, s.Date.Format(QueryDateLayout))
	}
	for _, lt := range s.LineTypes {
		q.Add(ParamLineType, lt)
	}
	for _, tt := range s.TripTypes {
		q.Add(ParamTripType, tt)
	}
	return q
}

// Resolve replaces a missing or unavailable date with the default date.
func (d Dataset) Resolve(sel Selection, today time.Time) Selection {
	if sel.Date.IsZero() || !d.HasDate(sel.Date) {
		sel.Date = d.DefaultDate(today)
	} else {
		sel.Date = model.Day(sel.Date)
	}
	return sel
}

// Cleared returns the selection a "clear filters" action lands on.
func (d Dataset) Cleared(today time.Time) Selection {
	return Selection{Date: d.DefaultDate(today)}
}

// Apply filters rows by date, line types, trip types and the pinned line.
// Empty filters are not applied.
func Apply(rows []model.Record, sel Selection, pin Pin) []model.Record {
	out := make([]model.Record, 0, len(rows))
	for _, r := range rows {
		if !sel.Date.IsZero() && !r.OnDay(sel.Date) {
			continue
		}
		if len(sel.LineTypes) > 0 && !slices.Contains(sel.LineTypes, r.LineType) {
			continue
		}
		if len(sel.TripTypes) > 0 && !slices.Contains(sel.TripTypes, r.TripType) {
			continue
		}
		if pin.Active() && r.Line != pin.Line {
			continue
		}
		out = append(out, r)
	}
	return out
}

func nonEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
