package runtime

import (
	"errors"
	"fmt"
)

// Kind classifies a fatal provisioning failure.
type Kind string

const (
	// KindImageNotFound means the container image is absent locally.
	KindImageNotFound Kind = "image_not_found"
	// KindLaunchFailed means the backend resource could not be launched.
	KindLaunchFailed Kind = "launch_failed"
	// KindPortDiscoveryFailed means the published host port could not be resolved.
	KindPortDiscoveryFailed Kind = "port_discovery_failed"
	// KindHealthCheckTimeout means the hosted server never became ready.
	KindHealthCheckTimeout Kind = "health_check_timeout"
)

// ErrAlreadyStarted is returned by Start on a handle that already started.
var ErrAlreadyStarted = errors.New("runtime already started")

// ErrNotHealthy is returned when an endpoint is requested before the
// runtime reached the healthy state.
var ErrNotHealthy = errors.New("runtime is not healthy")

// Error is a fatal provisioning failure with optional captured diagnostics.
type Error struct {
	// Kind classifies the failure.
	Kind Kind
	// Msg describes the failing step.
	Msg string
	// Diagnostics holds captured output (engine stderr, container logs).
	Diagnostics string
	// Err is the underlying cause.
	Err error
}

// Error formats the failure with its diagnostics when present.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Diagnostics != "" {
		msg = fmt.Sprintf("%s\n%s", msg, e.Diagnostics)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err carries the given failure kind.
func IsKind(err error, kind Kind) bool {
	var rerr *Error
	return errors.As(err, &rerr) && rerr.Kind == kind
}
