// Package workspace materializes disposable working directories for runtime
// backends: template copy or clone, content injection, version-control
// bootstrap, and permission normalization.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/coder-mcp/runtimectl/internal/execx"
	"github.com/coder-mcp/runtimectl/internal/gitx"
)

// ErrSetupFailed marks an unrecoverable template copy or clone failure.
var ErrSetupFailed = errors.New("workspace setup failed")

// Strategy selects how a template is materialized.
type Strategy string

const (
	// StrategyCopy recursively copies the template contents.
	StrategyCopy Strategy = "copy"
	// StrategyClone clones the template preserving version-control history,
	// falling back to a copy when the template is not a repository.
	StrategyClone Strategy = "clone"
)

const (
	defaultPrefix = "workspace_"

	botName    = "Bot"
	botEmail   = "bot@example.com"
	initialMsg = "Initial commit"
)

// Injection copies a source path into the workspace at a relative destination.
type Injection struct {
	// Source is the host path to copy, file or directory.
	Source string
	// Dest is the destination path relative to the workspace root.
	Dest string
}

// Spec describes how to materialize one workspace.
type Spec struct {
	// Template is an optional source directory; empty means start empty.
	Template string
	// Strategy selects copy or clone for the template.
	Strategy Strategy
	// Injections are applied in order after the template; later entries may
	// overwrite earlier content at the same path.
	Injections []Injection
	// Prefix names the temporary directory.
	Prefix string
}

// Workspace owns one uniquely named temporary directory. Materialize and
// Teardown must not run concurrently on the same instance; distinct
// instances are independent.
type Workspace struct {
	spec   Spec
	runner execx.CommandRunner
	logger *slog.Logger
	dir    string
}

// New returns a Workspace for spec; a nil runner falls back to local execution.
func New(spec Spec, runner execx.CommandRunner, logger *slog.Logger) *Workspace {
	if runner == nil {
		runner = execx.ExecRunner{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Workspace{spec: spec, runner: runner, logger: logger}
}

// Dir returns the materialized directory, or empty before Materialize.
func (w *Workspace) Dir() string { return w.dir }

// Materialize builds the workspace directory and returns its path.
func (w *Workspace) Materialize(ctx context.Context) (string, error) {
	dir, err := os.MkdirTemp("", w.prefix())
	if err != nil {
		return "", fmt.Errorf("%w: create temp dir: %w", ErrSetupFailed, err)
	}
	w.dir = dir

	if err := w.applyTemplate(ctx); err != nil {
		return "", err
	}
	if err := w.applyInjections(); err != nil {
		return "", err
	}
	if err := w.bootstrapGit(ctx); err != nil {
		return "", err
	}

	// The containerized server runs under a different identity and must be
	// able to read and write every entry.
	if err := chmodRecursive(dir, 0o777); err != nil {
		return "", fmt.Errorf("%w: normalize permissions: %w", ErrSetupFailed, err)
	}

	w.logger.Debug("workspace materialized", "dir", dir)
	return dir, nil
}

func (w *Workspace) applyTemplate(ctx context.Context) error {
	template := w.spec.Template
	if template == "" {
		return nil
	}
	if _, err := os.Stat(template); err != nil {
		return nil
	}

	if w.spec.Strategy == StrategyClone {
		err := gitx.CloneTo(ctx, w.runner, template, w.dir)
		if err == nil {
			return nil
		}
		w.logger.Warn("clone failed, falling back to copy", "template", template, "error", err)

		// Reset the destination to empty before the fallback copy so no
		// partial clone artifacts survive.
		if err := resetDir(w.dir); err != nil {
			return fmt.Errorf("%w: reset after failed clone: %w", ErrSetupFailed, err)
		}
	}

	if err := copyTree(template, w.dir); err != nil {
		return fmt.Errorf("%w: copy template %s: %w", ErrSetupFailed, template, err)
	}
	return nil
}

func (w *Workspace) applyInjections() error {
	for _, injection := range w.spec.Injections {
		dest := filepath.Join(w.dir, injection.Dest)

		if err := os.RemoveAll(dest); err != nil {
			return fmt.Errorf("%w: clear injection target %s: %w", ErrSetupFailed, injection.Dest, err)
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("%w: prepare injection target %s: %w", ErrSetupFailed, injection.Dest, err)
		}

		info, err := os.Stat(injection.Source)
		if err != nil {
			return fmt.Errorf("%w: injection source %s: %w", ErrSetupFailed, injection.Source, err)
		}
		if info.IsDir() {
			// copyTree copies contents only; the root itself must exist.
			if err := os.MkdirAll(dest, info.Mode().Perm()); err != nil {
				return fmt.Errorf("%w: prepare injection target %s: %w", ErrSetupFailed, injection.Dest, err)
			}
			err = copyTree(injection.Source, dest)
		} else {
			err = copyFile(injection.Source, dest, info)
		}
		if err != nil {
			return fmt.Errorf("%w: inject %s: %w", ErrSetupFailed, injection.Dest, err)
		}
	}
	return nil
}

// bootstrapGit initializes version control when the workspace has none.
// Initialization must succeed; identity configuration and the initial commit
// are best-effort.
func (w *Workspace) bootstrapGit(ctx context.Context) error {
	if gitx.IsRepo(w.dir) {
		return nil
	}

	if err := gitx.Init(ctx, w.runner, w.dir); err != nil {
		return fmt.Errorf("%w: git init: %w", ErrSetupFailed, err)
	}
	if err := gitx.SetIdentity(ctx, w.runner, w.dir, botName, botEmail); err != nil {
		w.logger.Debug("git identity configuration failed", "error", err)
	}
	if err := gitx.AddAll(ctx, w.runner, w.dir); err != nil {
		w.logger.Debug("git add failed", "error", err)
		return nil
	}
	if err := gitx.Commit(ctx, w.runner, w.dir, initialMsg); err != nil {
		w.logger.Debug("initial commit failed", "error", err)
	}
	return nil
}

// Teardown deletes the workspace directory. Deletion failures degrade to a
// best-effort forced removal; errors are logged, never raised.
func (w *Workspace) Teardown() {
	if w.dir == "" {
		return
	}

	if err := os.RemoveAll(w.dir); err != nil {
		w.logger.Warn("workspace removal failed, forcing", "dir", w.dir, "error", err)
		forceRemove(w.dir)
	}
	w.dir = ""
}

func (w *Workspace) prefix() string {
	if w.spec.Prefix != "" {
		return w.spec.Prefix
	}
	return defaultPrefix
}
