package profile

import (
	"fmt"
	"strings"
	"time"
)

// Backend identifiers.
const (
	BackendDocker = "docker"
	BackendLocal  = "local"
)

// Validate applies defaults and verifies required fields.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("profile is nil")
	}

	switch strings.TrimSpace(cfg.Runtime.Backend) {
	case "":
		cfg.Runtime.Backend = BackendDocker
	case BackendDocker, BackendLocal:
	default:
		return fmt.Errorf("runtime.backend must be %q or %q", BackendDocker, BackendLocal)
	}

	if cfg.Runtime.HostPort < 0 || cfg.Runtime.HostPort > 65535 {
		return fmt.Errorf("runtime.host_port must be between 0 and 65535")
	}
	if cfg.Runtime.Port < 0 || cfg.Runtime.Port > 65535 {
		return fmt.Errorf("runtime.port must be between 0 and 65535")
	}
	if cfg.Runtime.Backend == BackendLocal && strings.TrimSpace(cfg.Runtime.ServerCommand) == "" {
		return fmt.Errorf("runtime.server_command is required for the local backend")
	}

	switch strings.TrimSpace(cfg.Workspace.Strategy) {
	case "":
		cfg.Workspace.Strategy = "copy"
	case "copy", "clone":
	default:
		return fmt.Errorf("workspace.strategy must be copy or clone")
	}

	for idx, injection := range cfg.Workspace.Injections {
		if strings.TrimSpace(injection.Source) == "" {
			return fmt.Errorf("workspace.injections[%d].source is required", idx)
		}
		if strings.TrimSpace(injection.Dest) == "" {
			return fmt.Errorf("workspace.injections[%d].dest is required", idx)
		}
	}
	for idx, hook := range cfg.Workspace.Hooks {
		if strings.TrimSpace(hook.Command) == "" {
			return fmt.Errorf("workspace.hooks[%d].command is required", idx)
		}
		if strings.TrimSpace(hook.Timeout) != "" {
			if _, err := time.ParseDuration(hook.Timeout); err != nil {
				return fmt.Errorf("workspace.hooks[%d].timeout is invalid: %w", idx, err)
			}
		}
	}

	for _, field := range []struct {
		name  string
		value string
	}{
		{"health.timeout", cfg.Health.Timeout},
		{"health.interval", cfg.Health.Interval},
		{"endpoint.connect_timeout", cfg.Endpoint.ConnectTimeout},
		{"endpoint.session_timeout", cfg.Endpoint.SessionTimeout},
	} {
		if strings.TrimSpace(field.value) == "" {
			continue
		}
		if _, err := time.ParseDuration(field.value); err != nil {
			return fmt.Errorf("%s is invalid: %w", field.name, err)
		}
	}

	return nil
}
