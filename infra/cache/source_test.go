package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bluele/gcache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/occupancy/core/model"
	"github.com/kilianp07/occupancy/infra/logger"
)

type countingFetcher struct {
	calls atomic.Int32
	delay time.Duration
	err   error
	recs  []model.Record
}

func (f *countingFetcher) Fetch(context.Context) ([]model.Record, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.recs, nil
}

func newTestSource(f Fetcher) (*Source, gcache.FakeClock) {
	clock := gcache.NewFakeClock()
	src := NewSource(f, Config{TTLSeconds: 300, ErrorTTLSeconds: 30}, WithClock(clock), WithLogger(logger.NopLogger{}))
	return src, clock
}

func TestSourceReusesSnapshotUntilTTL(t *testing.T) {
	f := &countingFetcher{recs: []model.Record{{Line: "L01"}}}
	src, clock := newTestSource(f)

	first := src.Snapshot(context.Background())
	require.False(t, first.Failed())
	require.Len(t, first.Records, 1)
	assert.NotEmpty(t, first.ID)

	clock.Advance(299 * time.Second)
	second := src.Snapshot(context.Background())
	assert.Equal(t, first.ID, second.ID)
	assert.EqualValues(t, 1, f.calls.Load())

	clock.Advance(2 * time.Second)
	third := src.Snapshot(context.Background())
	assert.NotEqual(t, first.ID, third.ID)
	assert.EqualValues(t, 2, f.calls.Load())
}

func TestSourceFailedSnapshotUsesErrorTTL(t *testing.T) {
	f := &countingFetcher{err: fmt.Errorf("post: %w", model.ErrStatus)}
	src, clock := newTestSource(f)

	snap := src.Snapshot(context.Background())
	require.True(t, snap.Failed())
	assert.Empty(t, snap.Records)
	assert.Equal(t, model.WarnStatus, snap.Warning())

	clock.Advance(10 * time.Second)
	_ = src.Snapshot(context.Background())
	assert.EqualValues(t, 1, f.calls.Load(), "failure is cached for the error TTL")

	f.err = nil
	f.recs = []model.Record{{Line: "L02"}}
	clock.Advance(21 * time.Second)
	snap = src.Snapshot(context.Background())
	assert.False(t, snap.Failed())
	assert.EqualValues(t, 2, f.calls.Load())
}

func TestSourceHooks(t *testing.T) {
	f := &countingFetcher{err: errors.New("dial tcp: refused")}
	src, _ := newTestSource(f)

	var mu sync.Mutex
	var seen []model.Snapshot
	src.OnLoad(func(s model.Snapshot, _ time.Duration) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})
	snap := src.Snapshot(context.Background())
	_ = src.Snapshot(context.Background())

	require.Len(t, seen, 1)
	assert.Equal(t, snap.ID, seen[0].ID)
	assert.Equal(t, model.WarnLoad, seen[0].Warning())
}

func TestSourceCollapsesConcurrentMisses(t *testing.T) {
	f := &countingFetcher{delay: 200 * time.Millisecond, recs: []model.Record{{Line: "L01"}}}
	src, _ := newTestSource(f)

	const readers = 20
	ids := make([]string, readers)
	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = src.Snapshot(context.Background()).ID
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, f.calls.Load())
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestConfigDefaults(t *testing.T) {
	var c Config
	c.SetDefaults()
	assert.Equal(t, 5*time.Minute, c.TTL())
	assert.Equal(t, 30*time.Second, c.ErrorTTL())
}
