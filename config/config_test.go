package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

const feedSection = "feed:\n  url: \"https://example.test/api\"\n  access: \"painel\"\n  token: \"file\"\n"

func TestLoad(t *testing.T) {
	path := writeFile(t, "config.yaml", `feed:
  url: "https://example.test/api"
  access: "painel"
  token: "secret"
  timeout_seconds: 5
cache:
  ttl_seconds: 120
server:
  address: ":9000"
dashboard:
  line_types: ["ADM"]
  max_passengers: 40
  timezone: "America/Sao_Paulo"
metrics:
  sinks:
    - type: "nop"
  prometheus_addr: ":2112"
sign:
  enabled: true
  broker: "tcp://localhost:1883"
  qos: 1
  retain: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"feed.url", cfg.Feed.URL, "https://example.test/api"},
		{"feed.access", cfg.Feed.Access, "painel"},
		{"feed.token", cfg.Feed.Token, "secret"},
		{"feed.timeout_seconds", cfg.Feed.TimeoutSeconds, 5},
		{"cache.ttl_seconds", cfg.Cache.TTLSeconds, 120},
		{"cache.error_ttl_seconds", cfg.Cache.ErrorTTLSeconds, 30},
		{"server.address", cfg.Server.Address, ":9000"},
		{"dashboard.max_passengers", cfg.Dashboard.MaxPassengers, 40},
		{"dashboard.history_days", cfg.Dashboard.HistoryDays, 5},
		{"metrics.prometheus_addr", cfg.Metrics.PrometheusAddr, ":2112"},
		{"metrics.sink", cfg.Metrics.Sinks[0].Type, "nop"},
		{"sign.broker", cfg.Sign.Broker, "tcp://localhost:1883"},
		{"sign.qos", cfg.Sign.QoS, byte(1)},
		{"sign.topic", cfg.Sign.Topic, "occupancy/sign/ticker"},
	}
	for _, c := range checks {
		assert.Equal(t, c.want, c.got, c.name)
	}
	assert.Equal(t, []string{"ADM"}, cfg.Dashboard.LineTypes)
	assert.True(t, cfg.Sign.Retain)

	opts := cfg.Dashboard.Options()
	assert.Equal(t, "America/Sao_Paulo", opts.Location.String())
	assert.Equal(t, 40, opts.Capacity)
}

func TestLoadJSONDefaults(t *testing.T) {
	path := writeFile(t, "config.json", `{"feed": {"access": "painel", "token": "t"}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://indicadores.tfleet.com.br/api/service-import/OcupacaoHoje", cfg.Feed.URL)
	assert.Equal(t, 10, cfg.Feed.TimeoutSeconds)
	assert.Equal(t, 300, cfg.Cache.TTLSeconds)
	assert.Equal(t, ":8501", cfg.Server.Address)
	assert.Equal(t, 45, cfg.Dashboard.MaxPassengers)
	assert.Equal(t, []string{"ADM", "TURNO 01 12X12", "TURNO 02 12X12"}, cfg.Dashboard.LineTypes)
	assert.False(t, cfg.Sign.Enabled)
	assert.Empty(t, cfg.Sign.Topic)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeFile(t, "config.yaml", feedSection)
	t.Setenv("K_FEED__TOKEN", "env")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env", cfg.Feed.Token)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(writeFile(t, "config.toml", ""))
	assert.ErrorContains(t, err, "unsupported config format")

	_, err = Load(writeFile(t, "nocreds.yaml", "feed:\n  url: \"https://example.test/api\"\n"))
	assert.ErrorContains(t, err, "feed")

	_, err = Load(writeFile(t, "bad-tz.yaml", feedSection+"dashboard:\n  timezone: \"Nowhere/Land\"\n"))
	assert.ErrorContains(t, err, "dashboard")

	_, err = Load(writeFile(t, "short.yaml", feedSection+"server:\n  session_secret: \"short\"\n"))
	assert.ErrorContains(t, err, "session_secret")

	_, err = Load(writeFile(t, "sign.yaml", feedSection+"sign:\n  enabled: true\n"))
	assert.ErrorContains(t, err, "sign")
}
