package occupancy

import (
	"context"
	"time"

	"github.com/kilianp07/occupancy/core/model"
)

// DefaultHistoryDays is the length of the history window.
const DefaultHistoryDays = 5

// SnapshotSource supplies the current snapshot of the feed.
type SnapshotSource interface {
	Snapshot(ctx context.Context) model.Snapshot
}

// Options tune the aggregation.
type Options struct {
	LineTypes   []string
	Capacity    int
	HistoryDays int
	Location    *time.Location
	// Now overrides the clock, mostly for tests.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if len(o.LineTypes) == 0 {
		o.LineTypes = DefaultLineTypes
	}
	if o.Capacity <= 0 {
		o.Capacity = DefaultCapacity
	}
	if o.HistoryDays <= 0 {
		o.HistoryDays = DefaultHistoryDays
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// View is everything the dashboard renders for one request. HistoryDays is
// the length of the window History covers.
type View struct {
	SnapshotID  string     `json:"snapshot_id"`
	FetchedAt   time.Time  `json:"fetched_at"`
	Warning     string     `json:"warning,omitempty"`
	Empty       bool       `json:"empty"`
	Options     Dataset    `json:"options"`
	Selection   Selection  `json:"selection"`
	Pin         Pin        `json:"pin"`
	Summary     Summary    `json:"summary"`
	Ticker      Ticker     `json:"ticker"`
	History     []DayCount `json:"history"`
	HistoryDays int        `json:"history_days"`
	Details     []Detail   `json:"details"`
}

// Build resolves the selection against the dataset and aggregates the
// filtered rows.
func Build(ds Dataset, sel Selection, pin Pin, today time.Time, opts Options) View {
	opts = opts.withDefaults()
	v := View{Options: ds, Pin: pin, Empty: ds.Empty(), HistoryDays: opts.HistoryDays}
	if v.Empty {
		v.Selection = sel
		return v
	}
	v.Selection = ds.Resolve(sel, today)
	rows := Apply(ds.Records, v.Selection, pin)
	v.Summary = Summarize(rows, opts.Capacity)
	v.Ticker = NewTicker(v.Summary.Lines)
	v.History = History(ds, v.Selection.Date, opts.HistoryDays)
	v.Details = Details(rows)
	return v
}

// Service builds views from a snapshot source.
type Service struct {
	src  SnapshotSource
	opts Options
}

// NewService creates a Service reading snapshots from src.
func NewService(src SnapshotSource, opts Options) *Service {
	return &Service{src: src, opts: opts.withDefaults()}
}

// Today returns the current calendar day in the configured location.
func (s *Service) Today() time.Time {
	return model.Day(s.opts.Now().In(s.opts.Location))
}

// Dataset loads the current snapshot and pre-filters it.
func (s *Service) Dataset(ctx context.Context) (model.Snapshot, Dataset) {
	snap := s.src.Snapshot(ctx)
	return snap, Prepare(snap.Records, s.opts.LineTypes)
}

// View builds the dashboard view for the selection and pin.
func (s *Service) View(ctx context.Context, sel Selection, pin Pin) View {
	snap, ds := s.Dataset(ctx)
	return s.viewOf(snap, ds, sel, pin)
}

// DefaultView builds the view a fresh visitor sees.
func (s *Service) DefaultView(snap model.Snapshot) View {
	return s.viewOf(snap, Prepare(snap.Records, s.opts.LineTypes), Selection{}, Pin{})
}

func (s *Service) viewOf(snap model.Snapshot, ds Dataset, sel Selection, pin Pin) View {
	v := Build(ds, sel, pin, s.Today(), s.opts)
	v.SnapshotID = snap.ID
	v.FetchedAt = snap.FetchedAt
	v.Warning = snap.Warning()
	return v
}
