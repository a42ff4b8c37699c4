package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/occupancy/core/metrics"
)

// PromSink exposes feed and occupancy metrics to Prometheus.
type PromSink struct {
	fetches    *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	rows       prometheus.Gauge
	passengers *prometheus.GaugeVec
	percent    *prometheus.GaugeVec
}

// NewPromSink registers the metrics on the default Prometheus registerer.
// The /metrics server is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers the metrics on reg. A nil registerer
// defaults to the global one. Collectors already registered are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	var err error
	s := &PromSink{}
	if s.fetches, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "occupancy_fetch_total",
		Help: "Upstream feed fetches by result",
	}, []string{"result"})); err != nil {
		return nil, err
	}
	if s.latency, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "occupancy_fetch_duration_seconds",
		Help:    "Duration of upstream feed fetches",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})); err != nil {
		return nil, err
	}
	if s.rows, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "occupancy_snapshot_rows",
		Help: "Rows in the latest snapshot",
	})); err != nil {
		return nil, err
	}
	if s.passengers, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "occupancy_line_passengers",
		Help: "Passengers per line for the default day of the latest snapshot",
	}, []string{"line"})); err != nil {
		return nil, err
	}
	if s.percent, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "occupancy_line_percent",
		Help: "Occupancy percentage per line for the default day of the latest snapshot",
	}, []string{"line"})); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return c, err
		}
		existing, ok := are.ExistingCollector.(C)
		if !ok {
			return c, err
		}
		return existing, nil
	}
	return c, nil
}

// RecordFetch counts the fetch and observes its duration.
func (s *PromSink) RecordFetch(ev coremetrics.FetchEvent) error {
	s.fetches.WithLabelValues(ev.Result).Inc()
	s.latency.WithLabelValues(ev.Result).Observe(ev.Duration.Seconds())
	if ev.Result == coremetrics.ResultOK {
		s.rows.Set(float64(ev.Rows))
	}
	return nil
}

// RecordOccupancy replaces the per-line gauges with the snapshot's values.
func (s *PromSink) RecordOccupancy(ev coremetrics.OccupancyEvent) error {
	s.passengers.Reset()
	s.percent.Reset()
	for _, l := range ev.Lines {
		s.passengers.WithLabelValues(l.Line).Set(float64(l.Passengers))
		s.percent.WithLabelValues(l.Line).Set(float64(l.Percent))
	}
	return nil
}
