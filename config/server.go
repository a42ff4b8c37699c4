package config

import "fmt"

// ServerConfig configures the dashboard HTTP listener.
type ServerConfig struct {
	Address string `json:"address"`
	// SessionSecret signs the cookie holding the pinned line. A random key
	// is generated at startup when empty, which drops pins on restart.
	SessionSecret string `json:"session_secret"`
}

// SetDefaults applies sane defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8501"
	}
}

// Validate checks mandatory fields.
func (c ServerConfig) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("address is required")
	}
	if c.SessionSecret != "" && len(c.SessionSecret) < 32 {
		return fmt.Errorf("session_secret must be at least 32 bytes")
	}
	return nil
}
