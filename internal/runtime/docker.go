package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/coder-mcp/runtimectl/internal/audit"
	"github.com/coder-mcp/runtimectl/internal/docker"
	"github.com/coder-mcp/runtimectl/internal/health"
	"github.com/coder-mcp/runtimectl/internal/workspace"
)

// DefaultImage is the image run when none is configured.
const DefaultImage = "coder-mcp"

// settleDelay gives the engine a moment to publish port mappings before
// they are queried.
const settleDelay = 500 * time.Millisecond

// containerEngine is the container engine boundary consumed by the docker
// backend. docker.Engine satisfies it; tests substitute fakes.
type containerEngine interface {
	ImageExists(ctx context.Context, image string) bool
	Run(ctx context.Context, spec docker.RunSpec) (string, error)
	Port(ctx context.Context, container string, internalPort int) (int, error)
	Logs(ctx context.Context, container string) (string, error)
	Stop(ctx context.Context, container string) error
}

// DockerOptions configures a container-backed runtime.
type DockerOptions struct {
	// WorkspaceDir is the host directory mounted at /workspace (required).
	// File operations persist there after the container stops.
	WorkspaceDir string
	// Image is the image to run; DefaultImage when empty.
	Image string
	// ContainerName overrides the generated container name.
	ContainerName string
	// HostPort pins the published host port; zero requests an ephemeral one.
	HostPort int
	// Env adds environment variables inside the container.
	Env map[string]string
	// Mounts lists extra bind mounts beside the workspace mount.
	Mounts []docker.Mount
	// ExtraPorts lists additional port mappings verbatim.
	ExtraPorts []string
	// HealthTimeout bounds readiness polling; health.DefaultTimeout when zero.
	HealthTimeout time.Duration
	// HealthInterval is the readiness probe interval.
	HealthInterval time.Duration
	// ConnectTimeout bounds endpoint session establishment; DefaultConnectTimeout when zero.
	ConnectTimeout time.Duration
	// SessionTimeout bounds tool calls within a session; DefaultSessionTimeout when zero.
	SessionTimeout time.Duration
}

var _ Runtime = (*DockerRuntime)(nil)

// DockerRuntime hosts the tool server inside a sandboxed container.
type DockerRuntime struct {
	opts    DockerOptions
	engine  containerEngine
	monitor health.Monitor
	logger  *slog.Logger
	events  audit.Logger

	name        string
	containerID string
	hostPort    int
	state       State
}

// NewDockerRuntime returns a container-backed runtime for opts.
func NewDockerRuntime(opts DockerOptions, logger *slog.Logger) *DockerRuntime {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Image == "" {
		opts.Image = DefaultImage
	}
	name := opts.ContainerName
	if name == "" {
		name = "mcp-server-" + uuid.NewString()[:8]
	}
	return &DockerRuntime{
		opts:    opts,
		engine:  docker.New(nil, logger),
		monitor: health.Monitor{Interval: opts.HealthInterval, Logger: logger},
		logger:  logger,
		events:  audit.New(logger),
		name:    name,
	}
}

// Name returns the container name.
func (r *DockerRuntime) Name() string { return r.name }

// State returns the current lifecycle state.
func (r *DockerRuntime) State() State { return r.state }

// Start provisions the container and blocks until the hosted server answers
// its health endpoint. Failures are fatal and performed without retry; an
// already-launched container is not rolled back here, release stays with
// the caller's deferred Stop.
func (r *DockerRuntime) Start(ctx context.Context) error {
	if r.state != StateUninitialized {
		return ErrAlreadyStarted
	}
	r.state = StateProvisioning

	// The containerized server runs under a different identity than the
	// host user and must be able to write the mounted workspace.
	if err := workspace.NormalizePermissions(r.opts.WorkspaceDir); err != nil {
		return fmt.Errorf("normalize workspace permissions: %w", err)
	}

	if !r.engine.ImageExists(ctx, r.opts.Image) {
		return &Error{
			Kind: KindImageNotFound,
			Msg:  fmt.Sprintf("image %q not found locally, build it first", r.opts.Image),
		}
	}

	spec := docker.RunSpec{
		Name:         r.name,
		Image:        r.opts.Image,
		InternalPort: InternalPort,
		HostPort:     r.opts.HostPort,
		Env:          r.opts.Env,
		Mounts:       append([]docker.Mount{{Host: r.opts.WorkspaceDir, Container: "/workspace"}}, r.opts.Mounts...),
		ExtraPorts:   r.opts.ExtraPorts,
	}

	containerID, err := r.engine.Run(ctx, spec)
	if err != nil {
		return &Error{
			Kind: KindLaunchFailed,
			Msg:  fmt.Sprintf("start container %q", r.name),
			Err:  err,
		}
	}
	r.containerID = containerID
	r.logger.Info("container started", "name", r.name, "id", shortID(containerID))
	r.events.Record(ctx, audit.Event{Type: "provisioned", Backend: "docker", Name: r.name})

	if r.opts.HostPort > 0 {
		r.hostPort = r.opts.HostPort
	} else {
		port, err := r.discoverPort(ctx)
		if err != nil {
			return err
		}
		r.hostPort = port
	}
	r.logger.Info("container port resolved", "name", r.name, "port", r.hostPort)

	if err := r.waitHealthy(ctx); err != nil {
		return err
	}

	r.state = StateHealthy
	r.events.Record(ctx, audit.Event{Type: "healthy", Backend: "docker", Name: r.name})
	return nil
}

func (r *DockerRuntime) discoverPort(ctx context.Context) (int, error) {
	select {
	case <-time.After(settleDelay):
	case <-ctx.Done():
		return 0, ctx.Err()
	}

	port, err := r.engine.Port(ctx, r.name, InternalPort)
	if err != nil {
		return 0, &Error{
			Kind: KindPortDiscoveryFailed,
			Msg:  fmt.Sprintf("resolve published port for container %q", r.name),
			Err:  err,
		}
	}
	return port, nil
}

func (r *DockerRuntime) waitHealthy(ctx context.Context) error {
	url := baseURL(r.hostPort) + PathHealth
	err := r.monitor.Poll(ctx, url, r.opts.HealthTimeout)
	if err == nil {
		return nil
	}
	if !errors.Is(err, health.ErrTimeout) {
		// Caller cancellation, not a readiness verdict.
		return err
	}

	werr := &Error{
		Kind: KindHealthCheckTimeout,
		Msg:  fmt.Sprintf("container %q never became ready", r.name),
		Err:  err,
	}
	// Best-effort log capture; a capture failure must not mask the
	// timeout itself.
	if logs, logErr := r.engine.Logs(ctx, r.name); logErr == nil {
		werr.Diagnostics = logs
	}
	return werr
}

// Stop issues a stop request for the container. It is idempotent, a no-op
// before a successful launch, and tolerates engine errors: the container is
// configured to remove itself.
func (r *DockerRuntime) Stop(ctx context.Context) error {
	if r.containerID == "" {
		r.state = StateTerminated
		return nil
	}
	r.state = StateStopping

	if err := r.engine.Stop(ctx, r.name); err != nil {
		r.logger.Warn("container stop failed", "name", r.name, "error", err)
	}
	r.containerID = ""
	r.state = StateTerminated
	r.events.Record(ctx, audit.Event{Type: "stopped", Backend: "docker", Name: r.name})
	return nil
}

// Endpoint returns the tool-invocation descriptor restricted by filter.
func (r *DockerRuntime) Endpoint(filter ToolFilter) (Endpoint, error) {
	if r.state != StateHealthy {
		return Endpoint{}, ErrNotHealthy
	}
	return newEndpoint("Docker MCP Server", baseURL(r.hostPort), PathMCP, filter, r.opts.ConnectTimeout, r.opts.SessionTimeout), nil
}

// ReadOnlyEndpoint returns the descriptor fixed to the read-only tool set.
func (r *DockerRuntime) ReadOnlyEndpoint() (Endpoint, error) {
	if r.state != StateHealthy {
		return Endpoint{}, ErrNotHealthy
	}
	return newEndpoint("Docker MCP Server (Read Only)", baseURL(r.hostPort), PathMCPReadOnly, ReadOnlyFilter(), r.opts.ConnectTimeout, r.opts.SessionTimeout), nil
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
