package occupancy

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/occupancy/core/model"
)

func day(d int) time.Time { return time.Date(2026, time.October, d, 0, 0, 0, 0, time.UTC) }

func rec(d int, line, lineType, tripType, status string) model.Record {
	r := model.Record{Line: line, LineType: lineType, TripType: tripType, PassengerType: status, Name: line + "-" + status}
	if d > 0 {
		r.Date = day(d)
		r.DateLabel = r.Date.Format(model.LabelLayout)
	}
	return r
}

func sample() []model.Record {
	return []model.Record{
		rec(14, "L01", "ADM", "ENTRADA", "EMBARCADO"),
		rec(14, "L01", "ADM", "SAIDA", "EMBARCADO"),
		rec(14, "L02", "TURNO 01 12X12", "ENTRADA", "AUSENTE"),
		rec(13, "L02", "TURNO 01 12X12", "ENTRADA", "EMBARCADO"),
		rec(12, "L03", "TURNO 02 12X12", model.UndefinedTripType, "EMBARCADO"),
		rec(14, "L09", "EXTRA", "ENTRADA", "EMBARCADO"),
		rec(0, "L04", "ADM", "ENTRADA", "EMBARCADO"),
	}
}

func TestPrepare(t *testing.T) {
	ds := Prepare(sample(), nil)
	assert.Len(t, ds.Records, 6)
	assert.Equal(t, []time.Time{day(12), day(13), day(14)}, ds.Dates)
	assert.Equal(t, []string{"ADM", "TURNO 01 12X12", "TURNO 02 12X12"}, ds.LineTypes)
	assert.Equal(t, []string{"ENTRADA", model.UndefinedTripType, "SAIDA"}, ds.TripTypes)
	assert.Equal(t, []string{"L01", "L02", "L03", "L04"}, ds.Lines)
	for _, r := range ds.Records {
		assert.Contains(t, DefaultLineTypes, r.LineType)
	}
}

func TestDefaultDate(t *testing.T) {
	ds := Prepare(sample(), nil)
	assert.Equal(t, day(13), ds.DefaultDate(time.Date(2026, 10, 13, 22, 30, 0, 0, time.UTC)))
	assert.Equal(t, day(14), ds.DefaultDate(day(20)))
	assert.True(t, Prepare(nil, nil).DefaultDate(day(14)).IsZero())
}

func TestResolve(t *testing.T) {
	ds := Prepare(sample(), nil)
	today := day(14)

	sel := ds.Resolve(Selection{}, today)
	assert.Equal(t, day(14), sel.Date)

	sel = ds.Resolve(Selection{Date: day(1)}, today)
	assert.Equal(t, day(14), sel.Date, "unavailable date falls back to default")

	sel = ds.Resolve(Selection{Date: day(12), LineTypes: []string{"ADM"}}, today)
	assert.Equal(t, day(12), sel.Date)
	assert.Equal(t, []string{"ADM"}, sel.LineTypes)
}

func TestApplyNeverLeavesSelection(t *testing.T) {
	ds := Prepare(sample(), nil)
	dates := append([]time.Time{{}}, ds.Dates...)
	lineSets := [][]string{nil, {"ADM"}, {"TURNO 01 12X12", "TURNO 02 12X12"}}
	tripSets := [][]string{nil, {"ENTRADA"}, {"SAIDA", model.UndefinedTripType}}
	for _, d := range dates {
		for _, lts := range lineSets {
			for _, tts := range tripSets {
				sel := Selection{Date: d, LineTypes: lts, TripTypes: tts}
				for _, r := range Apply(ds.Records, sel, Pin{}) {
					if !d.IsZero() {
						require.True(t, r.OnDay(d), "date %v leaked %v", d, r)
					}
					if len(lts) > 0 {
						require.Contains(t, lts, r.LineType)
					}
					if len(tts) > 0 {
						require.Contains(t, tts, r.TripType)
					}
				}
			}
		}
	}
}

func TestApplyPin(t *testing.T) {
	ds := Prepare(sample(), nil)
	sel := Selection{Date: day(14)}

	rows := Apply(ds.Records, sel, Pin{Enabled: true, Line: "L01"})
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, "L01", r.Line)
	}

	// A pin without a line, or a disabled pin, does not filter.
	assert.Len(t, Apply(ds.Records, sel, Pin{Enabled: true}), 3)
	assert.Len(t, Apply(ds.Records, sel, Pin{Line: "L01"}), 3)
}

func TestPinToggle(t *testing.T) {
	p := Pin{}.Toggle("L02")
	assert.True(t, p.Active())
	assert.Equal(t, "L02", p.Line)
	p = p.Toggle("L03")
	assert.False(t, p.Enabled)
	assert.False(t, p.Active())
}

func TestSummarize(t *testing.T) {
	ds := Prepare(sample(), nil)
	rows := Apply(ds.Records, Selection{Date: day(14)}, Pin{})
	s := Summarize(rows, 0)

	assert.Equal(t, 3, s.Passengers)
	assert.Equal(t, 2, s.Routes)
	assert.Equal(t, []Count{{"EMBARCADO", 2}, {"AUSENTE", 1}}, s.Status)
	assert.Equal(t, []LineOccupancy{{"L01", 2, 4}, {"L02", 1, 2}}, s.Lines)
	assert.Equal(t, []Count{{"ADM", 2}, {"TURNO 01 12X12", 1}}, s.LineTypes)
	assert.InDelta(t, 3.0, s.MeanPercent, 1e-9)
}

func TestPercentMatchesRoundedShare(t *testing.T) {
	for n := 0; n <= 100; n++ {
		want := int(float64(n)/45*100 + 0.5)
		assert.Equal(t, want, Percent(n, 45), "count %d", n)
	}
	assert.Equal(t, 0, Percent(10, 0))
}

func TestTicker(t *testing.T) {
	lines := []LineOccupancy{{"L01", 45, 100}, {"L02", 9, 20}}
	tk := NewTicker(lines)
	assert.Equal(t, "L01 - 45 ➜ L02 - 9", tk.Counts)
	assert.Equal(t, "L01 - 100% ➜ L02 - 20%", tk.Percents)
	assert.True(t, NewTicker(nil).Empty())
}

func TestTickerPercentPerLine(t *testing.T) {
	var rows []model.Record
	for i := 0; i < 23; i++ {
		rows = append(rows, rec(14, "L01", "ADM", "ENTRADA", "EMBARCADO"))
	}
	for i := 0; i < 50; i++ {
		rows = append(rows, rec(14, "L02", "ADM", "ENTRADA", "EMBARCADO"))
	}
	s := Summarize(rows, DefaultCapacity)
	assert.Equal(t, "L01 - 51% ➜ L02 - 111%", NewTicker(s.Lines).Percents)
}

func TestHistory(t *testing.T) {
	var recs []model.Record
	for d := 5; d <= 14; d++ {
		for i := 0; i < d; i++ {
			recs = append(recs, rec(d, "L01", "ADM", "ENTRADA", "EMBARCADO"))
		}
	}
	recs = append(recs, rec(0, "L01", "ADM", "ENTRADA", "EMBARCADO"))
	ds := Prepare(recs, nil)

	h := History(ds, day(12), 5)
	require.Len(t, h, 5)
	assert.Equal(t, "08/10", h[0].Label)
	assert.Equal(t, 8, h[0].Count)
	assert.Equal(t, "12/10", h[4].Label)
	assert.Equal(t, 12, h[4].Count)
	assert.True(t, slices.IsSortedFunc(h, func(a, b DayCount) int { return a.Date.Compare(b.Date) }))

	assert.Nil(t, History(ds, time.Time{}, 5))
}

func TestHistoryAcrossMonths(t *testing.T) {
	recs := []model.Record{
		{Date: time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC), LineType: "ADM"},
		{Date: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), LineType: "ADM"},
	}
	h := History(Prepare(recs, nil), time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC), 5)
	require.Len(t, h, 2)
	assert.Equal(t, "30/09", h[0].Label)
	assert.Equal(t, "01/10", h[1].Label)
}

func TestSelectionQueryRoundTrip(t *testing.T) {
	q := url.Values{}
	q.Set(ParamDate, "2026-10-13")
	q.Add(ParamLineType, "ADM")
	q.Add(ParamLineType, "")
	q.Add(ParamLineType, "ADM")
	q.Add(ParamTripType, "ENTRADA")
	sel := SelectionFromQuery(q)
	assert.Equal(t, day(13), sel.Date)
	assert.Equal(t, []string{"ADM"}, sel.LineTypes)
	assert.Equal(t, []string{"ENTRADA"}, sel.TripTypes)
	assert.Equal(t, "date=2026-10-13&line_type=ADM&trip_type=ENTRADA", sel.Query().Encode())

	bad := SelectionFromQuery(url.Values{ParamDate: {"13/10/2026"}})
	assert.True(t, bad.Date.IsZero())
}

func TestClearedResetsToDefaults(t *testing.T) {
	ds := Prepare(sample(), nil)
	today := day(13)
	busy := ds.Resolve(Selection{Date: day(12), LineTypes: []string{"ADM"}, TripTypes: []string{"SAIDA"}}, today)
	require.NotEmpty(t, busy.LineTypes)

	cleared := ds.Cleared(today)
	assert.Empty(t, cleared.LineTypes)
	assert.Empty(t, cleared.TripTypes)
	assert.Equal(t, ds.DefaultDate(today), cleared.Date)
	assert.Equal(t, ds.Resolve(Selection{}, today), cleared)
}

type staticSource struct{ snap model.Snapshot }

func (s staticSource) Snapshot(context.Context) model.Snapshot { return s.snap }

func TestServiceView(t *testing.T) {
	src := staticSource{snap: model.Snapshot{ID: "snap-1", Records: sample()}}
	svc := NewService(src, Options{
		Location: time.UTC,
		Now:      func() time.Time { return time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC) },
	})

	v := svc.View(context.Background(), Selection{}, Pin{})
	assert.Equal(t, "snap-1", v.SnapshotID)
	assert.False(t, v.Empty)
	assert.Empty(t, v.Warning)
	assert.Equal(t, day(14), v.Selection.Date)
	assert.Equal(t, 3, v.Summary.Passengers)
	assert.Len(t, v.Details, 3)
	assert.Len(t, v.History, 3)
	assert.Equal(t, DefaultHistoryDays, v.HistoryDays)
	assert.Equal(t, "L01 - 2 ➜ L02 - 1", v.Ticker.Counts)

	pinned := svc.View(context.Background(), Selection{}, Pin{Enabled: true, Line: "L02"})
	assert.Equal(t, 1, pinned.Summary.Passengers)
	assert.Equal(t, 3, len(pinned.History), "history ignores the pin")
}

func TestServiceViewFailedSnapshot(t *testing.T) {
	src := staticSource{snap: model.Snapshot{Err: fmt.Errorf("post: %w", model.ErrStatus)}}
	v := NewService(src, Options{}).View(context.Background(), Selection{}, Pin{})
	assert.True(t, v.Empty)
	assert.Equal(t, model.WarnStatus, v.Warning)
	assert.Zero(t, v.Summary.Passengers)

	src = staticSource{snap: model.Snapshot{Err: errors.New("boom")}}
	v = NewService(src, Options{}).View(context.Background(), Selection{}, Pin{})
	assert.Equal(t, model.WarnLoad, v.Warning)
}
