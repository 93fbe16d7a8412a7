package profile

import (
	"log/slog"

	"github.com/coder-mcp/runtimectl/internal/docker"
	"github.com/coder-mcp/runtimectl/internal/health"
	"github.com/coder-mcp/runtimectl/internal/maputil"
	"github.com/coder-mcp/runtimectl/internal/runtime"
	"github.com/coder-mcp/runtimectl/internal/timeutil"
	"github.com/coder-mcp/runtimectl/internal/workspace"
)

// DockerOptions builds container backend options with workspaceDir as the
// mounted working root.
func (c *Config) DockerOptions(workspaceDir string) runtime.DockerOptions {
	mounts := make([]docker.Mount, 0, len(c.Runtime.Mounts))
	for _, mount := range c.Runtime.Mounts {
		mounts = append(mounts, docker.Mount{Host: mount.Host, Container: mount.Container})
	}
	return runtime.DockerOptions{
		WorkspaceDir:   workspaceDir,
		Image:          c.Runtime.Image,
		ContainerName:  c.Runtime.ContainerName,
		HostPort:       c.Runtime.HostPort,
		Env:            maputil.CloneStrings(c.Runtime.Env),
		Mounts:         mounts,
		ExtraPorts:     c.Runtime.ExtraPorts,
		HealthTimeout:  timeutil.ParseDurationOrDefault(c.Health.Timeout, health.DefaultTimeout),
		HealthInterval: timeutil.ParseDurationOrDefault(c.Health.Interval, health.DefaultInterval),
		ConnectTimeout: timeutil.ParseDurationOrDefault(c.Endpoint.ConnectTimeout, 0),
		SessionTimeout: timeutil.ParseDurationOrDefault(c.Endpoint.SessionTimeout, 0),
	}
}

// LocalOptions builds process backend options with workdir as the server's
// working root.
func (c *Config) LocalOptions(workdir string) runtime.LocalOptions {
	return runtime.LocalOptions{
		Workdir:        workdir,
		Port:           c.Runtime.Port,
		HealthTimeout:  timeutil.ParseDurationOrDefault(c.Health.Timeout, health.DefaultTimeout),
		HealthInterval: timeutil.ParseDurationOrDefault(c.Health.Interval, health.DefaultInterval),
		ConnectTimeout: timeutil.ParseDurationOrDefault(c.Endpoint.ConnectTimeout, 0),
		SessionTimeout: timeutil.ParseDurationOrDefault(c.Endpoint.SessionTimeout, 0),
	}
}

// Server builds the exec-based hosted server adapter for the local backend.
func (c *Config) Server(logger *slog.Logger) runtime.Server {
	return &runtime.ExecServer{
		Command: c.Runtime.ServerCommand,
		Args:    c.Runtime.ServerArgs,
		Env:     maputil.CloneStrings(c.Runtime.Env),
		Logger:  logger,
	}
}

// WorkspaceSpec builds the workspace materialization spec.
func (c *Config) WorkspaceSpec() workspace.Spec {
	injections := make([]workspace.Injection, 0, len(c.Workspace.Injections))
	for _, injection := range c.Workspace.Injections {
		injections = append(injections, workspace.Injection{
			Source: injection.Source,
			Dest:   injection.Dest,
		})
	}
	return workspace.Spec{
		Template:   c.Workspace.Template,
		Strategy:   workspace.Strategy(c.Workspace.Strategy),
		Prefix:     c.Workspace.Prefix,
		Injections: injections,
	}
}

// WorkspaceHooks builds the setup hooks run after materialization.
func (c *Config) WorkspaceHooks() []workspace.Hook {
	hooks := make([]workspace.Hook, 0, len(c.Workspace.Hooks))
	for _, hook := range c.Workspace.Hooks {
		hooks = append(hooks, workspace.Hook{
			Command: hook.Command,
			Args:    hook.Args,
			// Hooks see the hosted server's environment; per-hook entries win.
			Env:     maputil.MergeStrings(c.Runtime.Env, hook.Env),
			Timeout: timeutil.ParseDurationOrDefault(hook.Timeout, 0),
		})
	}
	return hooks
}
