package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/coder-mcp/runtimectl/internal/audit"
	"github.com/coder-mcp/runtimectl/internal/health"
)

// Server is the local process boundary: the hosted tool server started in a
// working directory on a chosen port. Implementations are external
// collaborators; ExecServer adapts a server binary.
type Server interface {
	// Start launches the server bound to workdir and port.
	Start(ctx context.Context, workdir string, port int) error
	// Stop requests graceful shutdown; safe to call if never started.
	Stop(ctx context.Context) error
}

// LocalOptions configures a process-backed runtime.
type LocalOptions struct {
	// Workdir is the working directory handed to the hosted server.
	Workdir string
	// Port pins the server port; zero selects a free one.
	Port int
	// HealthTimeout bounds readiness polling; health.DefaultTimeout when zero.
	HealthTimeout time.Duration
	// HealthInterval is the readiness probe interval.
	HealthInterval time.Duration
	// ConnectTimeout bounds endpoint session establishment; DefaultConnectTimeout when zero.
	ConnectTimeout time.Duration
	// SessionTimeout bounds tool calls within a session; DefaultSessionTimeout when zero.
	SessionTimeout time.Duration
}

var _ Runtime = (*LocalRuntime)(nil)

// LocalRuntime hosts the tool server as a local process.
type LocalRuntime struct {
	opts    LocalOptions
	server  Server
	monitor health.Monitor
	logger  *slog.Logger
	events  audit.Logger

	port  int
	state State
}

// NewLocalRuntime returns a process-backed runtime launching server.
func NewLocalRuntime(opts LocalOptions, server Server, logger *slog.Logger) *LocalRuntime {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LocalRuntime{
		opts:    opts,
		server:  server,
		monitor: health.Monitor{Interval: opts.HealthInterval, Logger: logger},
		logger:  logger,
		events:  audit.New(logger),
	}
}

// Port returns the resolved server port, or zero before Start.
func (r *LocalRuntime) Port() int { return r.port }

// State returns the current lifecycle state.
func (r *LocalRuntime) State() State { return r.state }

// Start launches the hosted server and blocks until it answers its health
// endpoint.
func (r *LocalRuntime) Start(ctx context.Context) error {
	if r.state != StateUninitialized {
		return ErrAlreadyStarted
	}
	r.state = StateProvisioning

	port := r.opts.Port
	if port == 0 {
		free, err := FreePort()
		if err != nil {
			return &Error{Kind: KindPortDiscoveryFailed, Msg: "select free port", Err: err}
		}
		port = free
	}
	r.port = port

	if err := r.server.Start(ctx, r.opts.Workdir, port); err != nil {
		return &Error{
			Kind: KindLaunchFailed,
			Msg:  fmt.Sprintf("start local server on port %d", port),
			Err:  err,
		}
	}
	r.logger.Info("local server started", "port", port, "workdir", r.opts.Workdir)
	r.events.Record(ctx, audit.Event{Type: "provisioned", Backend: "local", Name: r.endpointBase()})

	url := r.endpointBase() + PathHealth
	if err := r.monitor.Poll(ctx, url, r.opts.HealthTimeout); err != nil {
		if !errors.Is(err, health.ErrTimeout) {
			// Caller cancellation, not a readiness verdict.
			return err
		}
		return &Error{
			Kind: KindHealthCheckTimeout,
			Msg:  fmt.Sprintf("local server on port %d never became ready", port),
			Err:  err,
		}
	}

	r.state = StateHealthy
	r.events.Record(ctx, audit.Event{Type: "healthy", Backend: "local", Name: r.endpointBase()})
	return nil
}

// Stop requests graceful shutdown of the hosted server. It is idempotent
// and safe before a successful Start; release errors are logged only.
func (r *LocalRuntime) Stop(ctx context.Context) error {
	if r.state == StateUninitialized || r.state == StateTerminated {
		r.state = StateTerminated
		return nil
	}
	r.state = StateStopping

	if err := r.server.Stop(ctx); err != nil {
		r.logger.Warn("local server stop failed", "error", err)
	}
	r.state = StateTerminated
	r.events.Record(ctx, audit.Event{Type: "stopped", Backend: "local", Name: r.endpointBase()})
	return nil
}

// Endpoint returns the tool-invocation descriptor restricted by filter.
func (r *LocalRuntime) Endpoint(filter ToolFilter) (Endpoint, error) {
	if r.state != StateHealthy {
		return Endpoint{}, ErrNotHealthy
	}
	return newEndpoint("Local MCP Server", r.endpointBase(), PathMCP, filter, r.opts.ConnectTimeout, r.opts.SessionTimeout), nil
}

// ReadOnlyEndpoint returns the descriptor fixed to the read-only tool set.
func (r *LocalRuntime) ReadOnlyEndpoint() (Endpoint, error) {
	if r.state != StateHealthy {
		return Endpoint{}, ErrNotHealthy
	}
	return newEndpoint("Local MCP Server (Read Only)", r.endpointBase(), PathMCPReadOnly, ReadOnlyFilter(), r.opts.ConnectTimeout, r.opts.SessionTimeout), nil
}

func (r *LocalRuntime) endpointBase() string {
	return fmt.Sprintf("http://127.0.0.1:%d", r.port)
}

// FreePort obtains a locally unused port by binding an ephemeral socket and
// reading back its number. The socket is released before the server binds,
// so another process could claim the number in between; the hosted server's
// start contract takes a concrete port, which keeps this window open. Known
// limitation, accepted.
func FreePort() (int, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("bind ephemeral port: %w", err)
	}
	defer listener.Close()
	return listener.Addr().(*net.TCPAddr).Port, nil
}
