package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/occupancy/api/dashboard"
	"github.com/kilianp07/occupancy/api/views"
	"github.com/kilianp07/occupancy/config"
	coremetrics "github.com/kilianp07/occupancy/core/metrics"
	"github.com/kilianp07/occupancy/core/model"
	"github.com/kilianp07/occupancy/core/occupancy"
	"github.com/kilianp07/occupancy/core/sign"
	"github.com/kilianp07/occupancy/infra/cache"
	"github.com/kilianp07/occupancy/infra/feed"
	"github.com/kilianp07/occupancy/infra/logger"
	"github.com/kilianp07/occupancy/infra/metrics"
	"github.com/kilianp07/occupancy/infra/mqtt"
)

// Service wires the feed, the snapshot cache, the dashboard and the
// optional metrics server and sign publisher.
type Service struct {
	cfg      *config.Config
	log      logger.Logger
	source   *cache.Source
	views    *occupancy.Service
	sink     coremetrics.MetricsSink
	sign     sign.Publisher
	signJobs chan model.Snapshot
	handler  http.Handler
	fetcher  cache.Fetcher
}

// Option customises New.
type Option func(*Service)

// WithMetricsSink replaces the sinks built from the configuration.
func WithMetricsSink(s coremetrics.MetricsSink) Option {
	return func(svc *Service) { svc.sink = s }
}

// WithSignPublisher replaces the MQTT sign publisher.
func WithSignPublisher(p sign.Publisher) Option {
	return func(svc *Service) { svc.sign = p }
}

// WithFetcher replaces the upstream HTTP client.
func WithFetcher(f cache.Fetcher) Option {
	return func(svc *Service) { svc.fetcher = f }
}

// New creates a Service from the configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	svc := &Service{cfg: cfg, log: logger.New("service")}
	for _, o := range opts {
		o(svc)
	}
	if svc.fetcher == nil {
		svc.fetcher = feed.NewClient(cfg.Feed)
	}
	if svc.sink == nil {
		sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
		if err != nil {
			return nil, fmt.Errorf("metrics sink: %w", err)
		}
		svc.sink = sink
	}
	if svc.sign == nil && cfg.Sign.Enabled {
		pub, err := mqtt.NewSignPublisher(cfg.Sign)
		if err != nil {
			return nil, fmt.Errorf("sign publisher: %w", err)
		}
		svc.sign = pub
	}

	svc.source = cache.NewSource(svc.fetcher, cfg.Cache, cache.WithLogger(logger.New("cache")))
	svc.views = occupancy.NewService(svc.source, cfg.Dashboard.Options())
	svc.source.OnLoad(svc.recordFetch)
	svc.source.OnLoad(svc.recordOccupancy)
	if svc.sign != nil {
		svc.signJobs = make(chan model.Snapshot, 1)
		svc.source.OnLoad(svc.queueSign)
	}

	h, err := dashboard.NewHandler(svc.views, dashboard.NewSessionStore(cfg.Server.SessionSecret), logger.New("dashboard"))
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	svc.handler = dashboard.NewRouter(h, logger.New("http"), func(r chi.Router) {
		r.Method(http.MethodGet, "/api/occupancy", views.NewHandler(svc.views))
	})
	return svc, nil
}

// Handler returns the HTTP handler of the dashboard.
func (s *Service) Handler() http.Handler { return s.handler }


// Run serves the dashboard and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.cfg.Server.Address,
		Handler: s.handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}
	eg.Go(func() error {
		s.log.Infof("dashboard listening on %s", s.cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" && s.cfg.Metrics.HasSink("prometheus") {
		eg.Go(func() error { return metrics.StartPromServer(egctx, addr) })
	}
	if s.sign != nil {
		eg.Go(func() error { s.publishLoop(egctx); return nil })
		eg.Go(func() error { s.refreshLoop(egctx, s.cfg.Cache.TTL()); return nil })
	}
	return eg.Wait()
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.sign != nil {
		s.sign.Close()
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	return nil
}

func fetchResult(err error) string {
	switch {
	case err == nil:
		return coremetrics.ResultOK
	case errors.Is(err, model.ErrStatus):
		return coremetrics.ResultStatus
	default:
		return coremetrics.ResultError
	}
}

func (s *Service) recordFetch(snap model.Snapshot, took time.Duration) {
	ev := coremetrics.FetchEvent{
		SnapshotID: snap.ID,
		Result:     fetchResult(snap.Err),
		Rows:       len(snap.Records),
		Duration:   took,
		Time:       snap.FetchedAt,
	}
	if err := s.sink.RecordFetch(ev); err != nil {
		s.log.Warnf("record fetch: %v", err)
	}
}

func (s *Service) recordOccupancy(snap model.Snapshot, _ time.Duration) {
	rec, ok := s.sink.(coremetrics.OccupancyRecorder)
	if !ok || snap.Failed() {
		return
	}
	v := s.views.DefaultView(snap)
	ev := coremetrics.OccupancyEvent{
		SnapshotID: snap.ID,
		Date:       v.Selection.Date,
		Passengers: v.Summary.Passengers,
		Routes:     v.Summary.Routes,
		Lines:      v.Summary.Lines,
		Time:       snap.FetchedAt,
	}
	if err := rec.RecordOccupancy(ev); err != nil {
		s.log.Warnf("record occupancy: %v", err)
	}
}

// queueSign hands the snapshot to publishLoop, replacing any snapshot that
// has not been published yet.
func (s *Service) queueSign(snap model.Snapshot, _ time.Duration) {
	if snap.Failed() {
		return
	}
	for {
		select {
		case s.signJobs <- snap:
			return
		default:
		}
		select {
		case <-s.signJobs:
		default:
		}
	}
}

func (s *Service) publishLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-s.signJobs:
			s.publishSign(snap)
		}
	}
}

func (s *Service) publishSign(snap model.Snapshot) {
	msg := sign.FromView(s.views.DefaultView(snap), time.Now())
	if err := s.sign.Publish(msg); err != nil {
		s.log.Errorf("publish sign: %v", err)
	}
}

// refreshLoop keeps the snapshot warm so the signs update without a
// browser open. Expired entries are reloaded by the cache itself.
func (s *Service) refreshLoop(ctx context.Context, every time.Duration) {
	s.source.Snapshot(ctx)
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.source.Snapshot(ctx)
		}
	}
}
