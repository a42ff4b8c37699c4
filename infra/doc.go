// Package infra holds the adapters behind the core packages: the upstream
// feed client, the snapshot cache, the MQTT sign publisher and the metrics
// exporters.
package infra
