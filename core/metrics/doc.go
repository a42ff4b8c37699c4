// Package metrics defines the sinks that observe the occupancy feed. Sinks
// such as the Prometheus and InfluxDB ones in infra/metrics record fetch
// outcomes and optionally the per-line occupancy of each new snapshot. They
// are created by name through NewMetricsSink and combined with MultiSink.
package metrics
