package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/occupancy/core/metrics"
	"github.com/kilianp07/occupancy/infra/cache"
	"github.com/kilianp07/occupancy/infra/feed"
	"github.com/kilianp07/occupancy/infra/mqtt"
)

type Config struct {
	Feed      feed.Config     `json:"feed"`
	Cache     cache.Config    `json:"cache"`
	Server    ServerConfig    `json:"server"`
	Dashboard DashboardConfig `json:"dashboard"`
	Metrics   metrics.Config  `json:"metrics"`
	Sign      mqtt.Config     `json:"sign"`
}

// Load reads a YAML or JSON file, applies K_ environment overrides
// (K_FEED__TOKEN sets feed.token) and validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every section.
func (c *Config) SetDefaults() {
	c.Feed.SetDefaults()
	c.Cache.SetDefaults()
	c.Server.SetDefaults()
	c.Dashboard.SetDefaults()
	if c.Sign.Enabled {
		c.Sign.SetDefaults()
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Feed.Validate(); err != nil {
		return fmt.Errorf("feed: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Dashboard.Validate(); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	if c.Sign.Enabled {
		if err := c.Sign.Validate(); err != nil {
			return fmt.Errorf("sign: %w", err)
		}
	}
	return nil
}
