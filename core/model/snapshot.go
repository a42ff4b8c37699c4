package model

import (
	"errors"
	"time"
)

// Banner texts shown when the feed cannot be loaded.
const (
	WarnStatus = "Erro ao acessar API."
	WarnLoad   = "Erro ao carregar dados."
)

// ErrStatus marks a fetch that failed because the upstream answered with a
// non-200 status. Fetchers wrap it so snapshots can pick the right banner.
var ErrStatus = errors.New("upstream returned non-200 status")

// Snapshot is the outcome of one fetch of the daily dataset.
type Snapshot struct {
	ID        string    `json:"id"`
	FetchedAt time.Time `json:"fetched_at"`
	Records   []Record  `json:"-"`
	Err       error     `json:"-"`
}

// Failed reports whether the fetch failed.
func (s Snapshot) Failed() bool { return s.Err != nil }

// Warning returns the banner to display for a failed snapshot, or "".
func (s Snapshot) Warning() string {
	switch {
	case s.Err == nil:
		return ""
	case errors.Is(s.Err, ErrStatus):
		return WarnStatus
	default:
		return WarnLoad
	}
}
