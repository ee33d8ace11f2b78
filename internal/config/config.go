// Package config defines service configuration and how it is loaded.
package config

import (
	"time"
)

// Transport names accepted by the transport key.
const (
	TransportMemory = "memory"
	TransportMQTT   = "mqtt"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Transport selects the live log: memory or mqtt.
	Transport string `koanf:"transport"`

	MQTTBroker      string `koanf:"mqtt_broker"`
	MQTTClientID    string `koanf:"mqtt_client_id"`
	MQTTUsername    string `koanf:"mqtt_username"`
	MQTTPassword    string `koanf:"mqtt_password"`
	MQTTTopicPrefix string `koanf:"mqtt_topic_prefix"`

	// TickIntervalMS is the live drain interval; one record is folded per tick.
	TickIntervalMS int `koanf:"tick_interval_ms"`

	// DedupeSize bounds the per-session redelivery window.
	DedupeSize int `koanf:"dedupe_size"`

	// StorePath points at the SQLite historical store. Empty keeps it in memory.
	StorePath string `koanf:"store_path"`

	// StadiumsPath points at a YAML stadium geometry file. Empty means none.
	StadiumsPath string `koanf:"stadiums_path"`

	// LegacyZeroSwallow treats a zero score or time as absent.
	LegacyZeroSwallow bool `koanf:"legacy_zero_swallow"`

	// TiesCountAsWins classifies tied matches as wins in player records.
	TiesCountAsWins bool `koanf:"ties_count_as_wins"`

	TopTeammates int `koanf:"top_teammates"`
	MaxNameChars int `koanf:"max_name_chars"`

	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// MCPEnabled mounts the MCP endpoint at /mcp.
	MCPEnabled bool `koanf:"mcp_enabled"`
}

// New returns a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":9080",
		Transport:          TransportMemory,
		MQTTBroker:         "tcp://localhost:1883",
		MQTTClientID:       "kickhub",
		MQTTTopicPrefix:    "live",
		TickIntervalMS:     5,
		DedupeSize:         100_000,
		LegacyZeroSwallow:  true,
		TopTeammates:       3,
		MaxNameChars:       20,
		CORSAllowedOrigins: []string{"*"},
		MCPEnabled:         true,
	}
}

// TickInterval returns TickIntervalMS as a duration.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}
