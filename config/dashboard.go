package config

import (
	"fmt"
	"time"
	// Embedded zone database for minimal container images.
	_ "time/tzdata"

	"github.com/kilianp07/occupancy/core/occupancy"
)

// DashboardConfig tunes the aggregation shown on the dashboard.
type DashboardConfig struct {
	// LineTypes is the allow-list applied before any user filter.
	LineTypes []string `json:"line_types"`
	// MaxPassengers is the vehicle capacity used for occupancy percentages.
	MaxPassengers int `json:"max_passengers"`
	HistoryDays   int `json:"history_days"`
	// Timezone decides what "today" is. Empty means the host zone.
	Timezone string `json:"timezone"`
}

// SetDefaults applies sane defaults.
func (c *DashboardConfig) SetDefaults() {
	if len(c.LineTypes) == 0 {
		c.LineTypes = append([]string(nil), occupancy.DefaultLineTypes...)
	}
	if c.MaxPassengers <= 0 {
		c.MaxPassengers = occupancy.DefaultCapacity
	}
	if c.HistoryDays <= 0 {
		c.HistoryDays = occupancy.DefaultHistoryDays
	}
}

// Validate checks the timezone name.
func (c DashboardConfig) Validate() error {
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Location resolves Timezone.
func (c DashboardConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Options converts the section to aggregation options.
func (c DashboardConfig) Options() occupancy.Options {
	loc, err := c.Location()
	if err != nil {
		loc = time.Local
	}
	return occupancy.Options{
		LineTypes:   c.LineTypes,
		Capacity:    c.MaxPassengers,
		HistoryDays: c.HistoryDays,
		Location:    loc,
	}
}
