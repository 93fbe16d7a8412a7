package audit

import (
	"context"
	"log/slog"
)

// Event represents one lifecycle entry for a runtime or workspace.
type Event struct {
	// Type describes the event kind (provisioned, healthy, stopped, ...).
	Type string
	// Backend names the runtime backend ("docker", "local") or "workspace".
	Backend string
	// Name identifies the resource (container name, workspace path).
	Name string
	// Detail provides additional context.
	Detail string
}

// Logger records lifecycle events.
type Logger interface {
	// Record stores a lifecycle event.
	Record(ctx context.Context, event Event)
}

// StdLogger writes lifecycle events to slog.
type StdLogger struct {
	logger *slog.Logger
}

// New returns a StdLogger.
func New(logger *slog.Logger) *StdLogger {
	return &StdLogger{logger: logger}
}

// Record logs a lifecycle event.
func (l *StdLogger) Record(_ context.Context, event Event) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Info("lifecycle",
		"type", event.Type,
		"backend", event.Backend,
		"name", event.Name,
		"detail", event.Detail,
	)
}
