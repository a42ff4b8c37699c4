// Package occupancy turns a snapshot of the daily trip feed into the
// dashboard view: it pre-filters the allowed line types, resolves the user
// selection against the available dates, applies the cascading filters and
// the pinned line, and aggregates counts, ticker messages and the recent
// history.
package occupancy
