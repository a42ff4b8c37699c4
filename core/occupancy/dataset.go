package occupancy

import (
	"slices"
	"time"

	"github.com/kilianp07/occupancy/core/model"
)

// DefaultLineTypes are the line types kept by the dashboard.
var DefaultLineTypes = []string{"ADM", "TURNO 01 12X12", "TURNO 02 12X12"}

// Dataset is the pre-filtered table together with the selector options.
type Dataset struct {
	Records   []model.Record `json:"-"`
	Dates     []time.Time    `json:"dates"`
	LineTypes []string       `json:"line_types"`
	TripTypes []string       `json:"trip_types"`
	Lines     []string       `json:"lines"`
}

// Prepare keeps the rows whose line type is allowed and collects the sorted
// unique dates, line types, trip types and lines of what remains.
func Prepare(records []model.Record, allowed []string) Dataset {
	if len(allowed) == 0 {
		allowed = DefaultLineTypes
	}
	keep := make(map[string]bool, len(allowed))
	for _, lt := range allowed {
		keep[lt] = true
	}

	ds := Dataset{Records: make([]model.Record, 0, len(records))}
	dates := map[time.Time]bool{}
	lineTypes := map[string]bool{}
	tripTypes := map[string]bool{}
	lines := map[string]bool{}
	for _, r := range records {
		if !keep[r.LineType] {
			continue
		}
		ds.Records = append(ds.Records, r)
		if r.HasDate() {
			dates[model.Day(r.Date)] = true
		}
		lineTypes[r.LineType] = true
		tripTypes[r.TripType] = true
		lines[r.Line] = true
	}

	for d := range dates {
		ds.Dates = append(ds.Dates, d)
	}
	slices.SortFunc(ds.Dates, func(a, b time.Time) int { return a.Compare(b) })
	ds.LineTypes = sortedKeys(lineTypes)
	ds.TripTypes = sortedKeys(tripTypes)
	ds.Lines = sortedKeys(lines)
	return ds
}

// Empty reports whether no row survived the line type pre-filter.
func (d Dataset) Empty() bool { return len(d.Records) == 0 }

// HasDate reports whether day is one of the available dates.
func (d Dataset) HasDate(day time.Time) bool {
	day = model.Day(day)
	for _, x := range d.Dates {
		if x.Equal(day) {
			return true
		}
	}
	return false
}

// DefaultDate returns today when data exists for it, the latest available
// date otherwise, and the zero time when there are no dates at all.
func (d Dataset) DefaultDate(today time.Time) time.Time {
	if len(d.Dates) == 0 {
		return time.Time{}
	}
	if d.HasDate(today) {
		return model.Day(today)
	}
	return d.Dates[len(d.Dates)-1]
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
