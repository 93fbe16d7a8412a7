// Package runtime provisions isolated execution environments hosting a coder
// MCP tool server: a sandboxed container or a local process. Both variants
// share one lifecycle contract and the same readiness verification.
package runtime

import (
	"context"
	"fmt"
	"slices"
	"time"
)

// Tool identifiers exposed by the hosted server.
const (
	ToolBash            = "bash"
	ToolViewFile        = "view_file"
	ToolListDirectory   = "list_directory"
	ToolCreateFile      = "create_file"
	ToolStrReplace      = "str_replace"
	ToolInsertLines     = "insert_lines"
	ToolDeleteFile      = "delete_file"
	ToolUndoEdit        = "undo_edit"
	ToolSearchFilenames = "search_filenames"
	ToolSearchContent   = "search_content"
)

// Hosted server endpoint paths.
const (
	PathMCP         = "/mcp"
	PathMCPReadOnly = "/mcp-readonly"
	PathHealth      = "/health"
	PathTree        = "/tree"
)

// InternalPort is the port the hosted server listens on inside a container.
const InternalPort = 3000

// Default endpoint timeouts.
const (
	DefaultConnectTimeout = 15 * time.Second
	// DefaultSessionTimeout allows long-running tool calls (builds,
	// toolchain installs) to finish.
	DefaultSessionTimeout = 5 * time.Minute
)

// State is the lifecycle phase of a runtime handle.
type State int

const (
	StateUninitialized State = iota
	StateProvisioning
	StateHealthy
	StateStopping
	StateTerminated
)

// String names the state for logs.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateProvisioning:
		return "provisioning"
	case StateHealthy:
		return "healthy"
	case StateStopping:
		return "stopping"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Runtime is the lifecycle contract shared by the container and local
// process backends. Start and Stop are not safe for concurrent invocation
// on one handle; callers serialize them through scoped use.
type Runtime interface {
	// Start provisions the backend resource and blocks until the hosted
	// server is verified reachable. Provisioning and health-check errors
	// are fatal; no retry is performed.
	Start(ctx context.Context) error
	// Stop releases the backend resource. It is idempotent and safe before
	// a successful Start; release errors are logged, never returned.
	Stop(ctx context.Context) error
	// Endpoint returns a connection descriptor restricted by filter. It
	// does not open a connection and fails unless the runtime is healthy.
	Endpoint(filter ToolFilter) (Endpoint, error)
	// ReadOnlyEndpoint returns a descriptor fixed to the read-only tool set.
	ReadOnlyEndpoint() (Endpoint, error)
}

// ReadOnlyTools is the fixed allow-list served at the read-only endpoint.
var ReadOnlyTools = []string{
	ToolViewFile,
	ToolListDirectory,
	ToolSearchFilenames,
	ToolSearchContent,
}

// ToolFilter restricts which named tools a connected client may invoke.
// Both sets are optional; an empty filter is unrestricted.
type ToolFilter struct {
	// Allowed lists the only tools permitted when non-empty.
	Allowed []string
	// Blocked lists tools always denied.
	Blocked []string
}

// ReadOnlyFilter returns the fixed read-only allow-list filter.
func ReadOnlyFilter() ToolFilter {
	return ToolFilter{Allowed: slices.Clone(ReadOnlyTools)}
}

// IsZero reports whether the filter is unrestricted.
func (f ToolFilter) IsZero() bool {
	return len(f.Allowed) == 0 && len(f.Blocked) == 0
}

// Allows reports whether the named tool passes the filter.
func (f ToolFilter) Allows(name string) bool {
	if slices.Contains(f.Blocked, name) {
		return false
	}
	if len(f.Allowed) > 0 {
		return slices.Contains(f.Allowed, name)
	}
	return true
}

// Apply returns the subset of names passing the filter, in input order.
func (f ToolFilter) Apply(names []string) []string {
	filtered := make([]string, 0, len(names))
	for _, name := range names {
		if f.Allows(name) {
			filtered = append(filtered, name)
		}
	}
	return filtered
}

// Endpoint describes how to reach the hosted server. It carries the address
// and filter only; opening a session is the caller's move.
type Endpoint struct {
	// Name is a human-friendly endpoint label.
	Name string
	// BaseURL is the reachable server base address.
	BaseURL string
	// Path is the endpoint path under BaseURL.
	Path string
	// Filter restricts the tools the connected client may invoke.
	Filter ToolFilter
	// ConnectTimeout bounds session establishment.
	ConnectTimeout time.Duration
	// SessionTimeout bounds individual tool calls within a session.
	SessionTimeout time.Duration
}

// URL returns the full endpoint address.
func (e Endpoint) URL() string {
	return e.BaseURL + e.Path
}

func newEndpoint(name, baseURL, path string, filter ToolFilter, connectTimeout, sessionTimeout time.Duration) Endpoint {
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}
	if sessionTimeout <= 0 {
		sessionTimeout = DefaultSessionTimeout
	}
	return Endpoint{
		Name:           name,
		BaseURL:        baseURL,
		Path:           path,
		Filter:         filter,
		ConnectTimeout: connectTimeout,
		SessionTimeout: sessionTimeout,
	}
}

func baseURL(port int) string {
	return fmt.Sprintf("http://localhost:%d", port)
}
