// Package profile declares the YAML runtime profile: which backend to
// provision, how the hosted server is published, and how the workspace is
// materialized.
package profile

// Config is the top-level YAML profile.
type Config struct {
	// Runtime describes the execution environment backend.
	Runtime RuntimeConfig `yaml:"runtime"`
	// Health configures readiness polling.
	Health HealthConfig `yaml:"health"`
	// Workspace describes the disposable working directory.
	Workspace WorkspaceConfig `yaml:"workspace"`
	// Endpoint overrides tool-endpoint timeouts.
	Endpoint EndpointConfig `yaml:"endpoint"`
}

// RuntimeConfig selects and configures the backend.
type RuntimeConfig struct {
	// Backend selects the environment variant ("docker" or "local").
	Backend string `yaml:"backend"`
	// Image is the container image for the docker backend.
	Image string `yaml:"image"`
	// ContainerName overrides the generated container name.
	ContainerName string `yaml:"container_name"`
	// HostPort pins the published host port; zero requests an ephemeral one.
	HostPort int `yaml:"host_port"`
	// Port pins the local backend's server port; zero selects a free one.
	Port int `yaml:"port"`
	// Env adds environment variables for the hosted server.
	Env map[string]string `yaml:"env"`
	// Mounts lists extra bind mounts for the docker backend.
	Mounts []MountConfig `yaml:"mounts"`
	// ExtraPorts lists additional port mappings verbatim.
	ExtraPorts []string `yaml:"extra_ports"`
	// ServerCommand is the server binary for the local backend.
	ServerCommand string `yaml:"server_command"`
	// ServerArgs are extra arguments for the server binary.
	ServerArgs []string `yaml:"server_args"`
}

// MountConfig maps a host path into the container.
type MountConfig struct {
	// Host is the host path.
	Host string `yaml:"host"`
	// Container is the mount point inside the container.
	Container string `yaml:"container"`
}

// HealthConfig configures readiness polling.
type HealthConfig struct {
	// Timeout bounds the polling loop.
	Timeout string `yaml:"timeout"`
	// Interval is the probe interval.
	Interval string `yaml:"interval"`
}

// WorkspaceConfig describes workspace materialization.
type WorkspaceConfig struct {
	// Template is an optional source directory for the workspace contents.
	Template string `yaml:"template"`
	// Strategy selects "copy" or "clone" for the template.
	Strategy string `yaml:"strategy"`
	// Prefix names the temporary directory.
	Prefix string `yaml:"prefix"`
	// Injections are applied in order after the template.
	Injections []InjectionConfig `yaml:"injections"`
	// Hooks are setup commands run inside the materialized workspace.
	Hooks []HookConfig `yaml:"hooks"`
}

// InjectionConfig copies a source path into the workspace.
type InjectionConfig struct {
	// Source is the host path to copy.
	Source string `yaml:"source"`
	// Dest is the destination relative to the workspace root.
	Dest string `yaml:"dest"`
}

// HookConfig defines one setup command.
type HookConfig struct {
	// Command is the executable to run.
	Command string `yaml:"command"`
	// Args are optional arguments.
	Args []string `yaml:"args"`
	// Env adds environment variables for the hook, overlaid on runtime.env.
	Env map[string]string `yaml:"env"`
	// Timeout bounds hook execution.
	Timeout string `yaml:"timeout"`
}

// EndpointConfig overrides tool-endpoint timeouts.
type EndpointConfig struct {
	// ConnectTimeout bounds session establishment.
	ConnectTimeout string `yaml:"connect_timeout"`
	// SessionTimeout bounds individual tool calls.
	SessionTimeout string `yaml:"session_timeout"`
}
