package occupancy

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/occupancy/core/model"
)

// DefaultCapacity is the number of seats used to compute line occupancy.
const DefaultCapacity = 45

// TickerSeparator joins the ticker entries.
const TickerSeparator = " ➜ "

// Count is a labelled row count.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// LineOccupancy is the passenger count of a line against its capacity.
type LineOccupancy struct {
	Line       string `json:"line"`
	Passengers int    `json:"passengers"`
	Percent    int    `json:"percent"`
}

// Summary aggregates the filtered rows.
type Summary struct {
	Passengers  int             `json:"passengers"`
	Routes      int             `json:"routes"`
	MeanPercent float64         `json:"mean_percent"`
	Status      []Count         `json:"status"`
	Lines       []LineOccupancy `json:"lines"`
	LineTypes   []Count         `json:"line_types"`
}

// Summarize counts passengers, distinct routes, passengers per status, per
// line and per line type. capacity <= 0 falls back to DefaultCapacity.
func Summarize(rows []model.Record, capacity int) Summary {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	perLine := countBy(rows, func(r model.Record) string { return r.Line })
	s := Summary{
		Passengers: len(rows),
		Routes:     len(perLine),
		Status:     countBy(rows, func(r model.Record) string { return r.PassengerType }),
		LineTypes:  countBy(rows, func(r model.Record) string { return r.LineType }),
	}
	// Status reads as a ranking; the other groupings stay in label order.
	slices.SortStableFunc(s.Status, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})

	s.Lines = make([]LineOccupancy, 0, len(perLine))
	pcts := make([]float64, 0, len(perLine))
	for _, c := range perLine {
		p := Percent(c.Count, capacity)
		s.Lines = append(s.Lines, LineOccupancy{Line: c.Label, Passengers: c.Count, Percent: p})
		pcts = append(pcts, float64(p))
	}
	if len(pcts) > 0 {
		s.MeanPercent = math.Round(stat.Mean(pcts, nil)*10) / 10
	}
	return s
}

// Percent returns round(count / capacity * 100).
func Percent(count, capacity int) int {
	if capacity <= 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(capacity) * 100))
}

// Ticker holds the two scrolling banner messages.
type Ticker struct {
	Counts   string `json:"counts"`
	Percents string `json:"percents"`
}

// Empty reports whether there is nothing to scroll.
func (t Ticker) Empty() bool { return t.Counts == "" && t.Percents == "" }

// NewTicker formats "<line> - <count>" and "<line> - <percent>%" entries.
func NewTicker(lines []LineOccupancy) Ticker {
	counts := make([]string, 0, len(lines))
	pcts := make([]string, 0, len(lines))
	for _, l := range lines {
		counts = append(counts, fmt.Sprintf("%s - %d", l.Line, l.Passengers))
		pcts = append(pcts, fmt.Sprintf("%s - %d%%", l.Line, l.Percent))
	}
	return Ticker{
		Counts:   strings.Join(counts, TickerSeparator),
		Percents: strings.Join(pcts, TickerSeparator),
	}
}

// DayCount is the number of rows recorded on a day.
type DayCount struct {
	Date  time.Time `json:"date"`
	Label string    `json:"label"`
	Count int       `json:"count"`
}

// History counts the rows of the dataset for the days-long window ending on
// base, inclusive. Days without rows are omitted. It ignores the line type,
// trip type and pin selections.
func History(ds Dataset, base time.Time, days int) []DayCount {
	if base.IsZero() {
		return nil
	}
	if days <= 0 {
		days = 1
	}
	end := model.Day(base)
	start := end.AddDate(0, 0, -(days - 1))
	counts := map[time.Time]int{}
	for _, r := range ds.Records {
		if !r.HasDate() {
			continue
		}
		d := model.Day(r.Date)
		if d.Before(start) || d.After(end) {
			continue
		}
		counts[d]++
	}
	out := make([]DayCount, 0, len(counts))
	for d, n := range counts {
		out = append(out, DayCount{Date: d, Label: d.Format(model.LabelLayout), Count: n})
	}
	slices.SortFunc(out, func(a, b DayCount) int { return a.Date.Compare(b.Date) })
	return out
}

// Detail is one row of the detail table.
type Detail struct {
	PassengerType string `json:"passenger_type"`
	Hour          string `json:"hour"`
	Name          string `json:"name"`
	Company       string `json:"company"`
	PassengerLine string `json:"passenger_line"`
}

// Details projects the rows onto the detail table columns.
func Details(rows []model.Record) []Detail {
	out := make([]Detail, 0, len(rows))
	for _, r := range rows {
		out = append(out, Detail{
			PassengerType: r.PassengerType,
			Hour:          r.Hour,
			Name:          r.Name,
			Company:       r.Company,
			PassengerLine: r.PassengerLine,
		})
	}
	return out
}

func countBy(rows []model.Record, key func(model.Record) string) []Count {
	idx := map[string]int{}
	for _, r := range rows {
		idx[key(r)]++
	}
	out := make([]Count, 0, len(idx))
	for k, n := range idx {
		out = append(out, Count{Label: k, Count: n})
	}
	slices.SortFunc(out, func(a, b Count) int { return cmp.Compare(a.Label, b.Label) })
	return out
}
