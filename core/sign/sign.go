// Package sign describes what the dashboard pushes to external LED signs:
// the two ticker banners of the default view.
package sign

import (
	"time"

	"github.com/kilianp07/occupancy/core/occupancy"
)

// Message is the payload published for a snapshot.
type Message struct {
	SnapshotID string                    `json:"snapshot_id"`
	Date       string                    `json:"date"`
	Counts     string                    `json:"counts"`
	Percents   string                    `json:"percents"`
	Lines      []occupancy.LineOccupancy `json:"lines"`
	Timestamp  int64                     `json:"timestamp"`
}

// Publisher delivers messages to the signs.
type Publisher interface {
	Publish(msg Message) error
	Close()
}

// FromView builds the message for a dashboard view.
func FromView(v occupancy.View, now time.Time) Message {
	m := Message{
		SnapshotID: v.SnapshotID,
		Counts:     v.Ticker.Counts,
		Percents:   v.Ticker.Percents,
		Lines:      v.Summary.Lines,
		Timestamp:  now.UnixMilli(),
	}
	if !v.Selection.Date.IsZero() {
		m.Date = v.Selection.Date.Format(occupancy.QueryDateLayout)
	}
	return m
}
