// Package cache keeps the latest snapshot of the feed for a fixed time to
// live so every page view does not hit the upstream.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bluele/gcache"
	"github.com/google/uuid"

	"github.com/kilianp07/occupancy/core/model"
	"github.com/kilianp07/occupancy/infra/logger"
)

const snapshotKey = "snapshot"

// Fetcher loads the records of the feed.
type Fetcher interface {
	Fetch(ctx context.Context) ([]model.Record, error)
}

// Hook observes every freshly loaded snapshot.
type Hook func(snap model.Snapshot, took time.Duration)

// Config defines how long snapshots are kept.
type Config struct {
	TTLSeconds      int `json:"ttl_seconds"`
	ErrorTTLSeconds int `json:"error_ttl_seconds"`
}

// SetDefaults applies a five minute TTL and a thirty second error TTL.
func (c *Config) SetDefaults() {
	if c.TTLSeconds <= 0 {
		c.TTLSeconds = 300
	}
	if c.ErrorTTLSeconds <= 0 {
		c.ErrorTTLSeconds = 30
	}
}

// TTL returns the lifetime of a successful snapshot.
func (c Config) TTL() time.Duration { return time.Duration(c.TTLSeconds) * time.Second }

// ErrorTTL returns the lifetime of a failed snapshot.
func (c Config) ErrorTTL() time.Duration { return time.Duration(c.ErrorTTLSeconds) * time.Second }

// Source serves snapshots from a single-entry gcache. Concurrent misses
// share one upstream call.
type Source struct {
	fetcher  Fetcher
	ttl      time.Duration
	errorTTL time.Duration
	cache    gcache.Cache
	clock    gcache.Clock
	log      logger.Logger

	mu    sync.RWMutex
	hooks []Hook
}

// Option customises a Source.
type Option func(*Source)

// WithClock replaces the cache clock, used by tests to control expiry.
func WithClock(c gcache.Clock) Option {
	return func(s *Source) { s.clock = c }
}

// WithLogger replaces the default logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Source) { s.log = l }
}

// NewSource wraps f behind the cache configured by cfg.
func NewSource(f Fetcher, cfg Config, opts ...Option) *Source {
	cfg.SetDefaults()
	s := &Source{
		fetcher:  f,
		ttl:      cfg.TTL(),
		errorTTL: cfg.ErrorTTL(),
		clock:    gcache.NewRealClock(),
		log:      logger.New("snapshot-cache"),
	}
	for _, o := range opts {
		o(s)
	}
	s.cache = gcache.New(1).
		Simple().
		Clock(s.clock).
		LoaderExpireFunc(s.load).
		Build()
	return s
}

// OnLoad registers a hook called after each upstream fetch.
func (s *Source) OnLoad(h Hook) {
	s.mu.Lock()
	s.hooks = append(s.hooks, h)
	s.mu.Unlock()
}

// Snapshot returns the cached snapshot, fetching a new one once the previous
// one has expired. It never fails: fetch errors are carried by the snapshot.
func (s *Source) Snapshot(ctx context.Context) model.Snapshot {
	v, err := s.cache.Get(snapshotKey)
	if err != nil {
		// load never returns an error; this only happens if gcache itself
		// misbehaves.
		return model.Snapshot{ID: uuid.NewString(), FetchedAt: s.clock.Now(), Err: fmt.Errorf("snapshot cache: %w", err)}
	}
	snap, ok := v.(model.Snapshot)
	if !ok {
		return model.Snapshot{ID: uuid.NewString(), FetchedAt: s.clock.Now(), Err: errors.New("snapshot cache: unexpected value")}
	}
	return snap
}

// load fetches a snapshot. The context of the first caller is not reachable
// from gcache's loader, so the fetch is bounded by the HTTP client timeout.
func (s *Source) load(any) (any, *time.Duration, error) {
	start := s.clock.Now()
	recs, err := s.fetcher.Fetch(context.Background())
	took := s.clock.Now().Sub(start)
	snap := model.Snapshot{ID: uuid.NewString(), FetchedAt: start, Records: recs}
	ttl := s.ttl
	if err != nil {
		snap.Records = nil
		snap.Err = err
		ttl = s.errorTTL
		s.log.Errorf("snapshot %s fetch failed: %v", snap.ID, err)
	} else {
		s.log.Infof("snapshot %s loaded with %d rows in %s", snap.ID, len(recs), took)
	}

	s.mu.RLock()
	hooks := append([]Hook(nil), s.hooks...)
	s.mu.RUnlock()
	for _, h := range hooks {
		h(snap, took)
	}
	return snap, &ttl, nil
}
