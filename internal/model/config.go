package model

import "time"

// Config holds the complete TrustLens configuration
type Config struct {
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Client  ClientConfig  `yaml:"client" mapstructure:"client"`
	History HistoryConfig `yaml:"history" mapstructure:"history"`
	Overlay OverlayConfig `yaml:"overlay" mapstructure:"overlay"`
	Workers int           `yaml:"workers" mapstructure:"workers"` // Concurrent outbound verifications
	Verbose bool          `yaml:"verbose" mapstructure:"verbose"`
}

// ServerConfig configures the verification service
type ServerConfig struct {
	Addr         string          `yaml:"addr" mapstructure:"addr"`
	MaxBodyBytes int64           `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RateLimit    RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// RateLimitConfig configures per-client request limiting
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled" mapstructure:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// ClientConfig configures the dispatcher's transport to the service
type ClientConfig struct {
	Endpoint     string        `yaml:"endpoint" mapstructure:"endpoint"`
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// HistoryConfig configures the persisted history log
type HistoryConfig struct {
	Backend string `yaml:"backend" mapstructure:"backend"` // memory, file, sqlite
	Path    string `yaml:"path" mapstructure:"path"`
	Limit   int    `yaml:"limit" mapstructure:"limit"` // At most 20
}

// OverlayConfig configures the floating result card
type OverlayConfig struct {
	DismissAfter time.Duration `yaml:"dismiss_after" mapstructure:"dismiss_after"`
	CardWidth    float64       `yaml:"card_width" mapstructure:"card_width"`
	Offset       float64       `yaml:"offset" mapstructure:"offset"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":3000",
			MaxBodyBytes: 1 << 20,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerSecond: 5,
				BurstSize:         10,
			},
		},
		Client: ClientConfig{
			Endpoint:     "http://localhost:3000/verify",
			Timeout:      15 * time.Second,
			UserAgent:    "TrustLens/0.1 (+https://github.com/ppiankov/trustlens)",
			MaxBodyBytes: 1 << 20,
		},
		History: HistoryConfig{
			Backend: "file",
			Path:    "~/.trustlens/storage.json",
			Limit:   20,
		},
		Overlay: OverlayConfig{
			DismissAfter: 6 * time.Second,
			CardWidth:    300,
			Offset:       8,
		},
		Workers: 4,
	}
}
