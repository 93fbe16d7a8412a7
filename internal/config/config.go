package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config stores environment-driven settings for runtimectl.
type Config struct {
	// ProfilePath is the path to the YAML runtime profile.
	ProfilePath string `env:"RUNTIMECTL_PROFILE" envDefault:"runtime.yaml"`
	// LogLevel sets the logger level.
	LogLevel string `env:"RUNTIMECTL_LOG_LEVEL" envDefault:"info"`
	// LogFormat selects the logger output format ("json" or "text").
	LogFormat string `env:"RUNTIMECTL_LOG_FORMAT" envDefault:"json"`
	// HealthTimeout bounds the readiness polling loop.
	HealthTimeout time.Duration `env:"RUNTIMECTL_HEALTH_TIMEOUT" envDefault:"30s"`
	// HealthInterval is the readiness probe interval.
	HealthInterval time.Duration `env:"RUNTIMECTL_HEALTH_INTERVAL" envDefault:"500ms"`
}

// Load parses environment variables into Config.
func Load() (Config, error) {
	return env.ParseAs[Config]()
}
