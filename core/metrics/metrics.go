package metrics

import (
	"time"

	"github.com/kilianp07/occupancy/core/occupancy"
)

// Fetch outcomes used as labels and tags.
const (
	ResultOK     = "ok"
	ResultStatus = "status"
	ResultError  = "error"
)

// FetchEvent describes one call to the upstream feed.
type FetchEvent struct {
	SnapshotID string
	Result     string
	Rows       int
	Duration   time.Duration
	Time       time.Time
}

// MetricsSink records feed fetches for observability purposes.
type MetricsSink interface {
	RecordFetch(ev FetchEvent) error
}

// OccupancyEvent is the per-line occupancy of the default view of a snapshot.
type OccupancyEvent struct {
	SnapshotID string
	Date       time.Time
	Passengers int
	Routes     int
	Lines      []occupancy.LineOccupancy
	Time       time.Time
}

// OccupancyRecorder records line occupancy.
type OccupancyRecorder interface {
	RecordOccupancy(ev OccupancyEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordFetch(FetchEvent) error         { return nil }
func (NopSink) RecordOccupancy(OccupancyEvent) error { return nil }
