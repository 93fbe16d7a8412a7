// Package gitx is a thin exec-based layer over the git CLI. Commands run
// through a CommandRunner so callers can substitute fakes in tests.
package gitx

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/coder-mcp/runtimectl/internal/execx"
)

// CloneTo clones the repository at src into dest, preserving history.
func CloneTo(ctx context.Context, runner execx.CommandRunner, src, dest string) error {
	return run(ctx, runner, "", "clone", src, dest)
}

// Init initializes a new repository in dir.
func Init(ctx context.Context, runner execx.CommandRunner, dir string) error {
	return run(ctx, runner, dir, "init")
}

// SetIdentity configures user.name and user.email for the repository in dir.
func SetIdentity(ctx context.Context, runner execx.CommandRunner, dir, name, email string) error {
	if err := run(ctx, runner, dir, "config", "user.name", name); err != nil {
		return err
	}
	return run(ctx, runner, dir, "config", "user.email", email)
}

// AddAll stages every file in the repository at dir.
func AddAll(ctx context.Context, runner execx.CommandRunner, dir string) error {
	return run(ctx, runner, dir, "add", ".")
}

// Commit records a commit with the given message in dir.
func Commit(ctx context.Context, runner execx.CommandRunner, dir, message string) error {
	return run(ctx, runner, dir, "commit", "-m", message)
}

// IsRepo reports whether dir carries version-control metadata.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

func run(ctx context.Context, runner execx.CommandRunner, dir string, args ...string) error {
	result, err := runner.Run(ctx, execx.Command{Name: "git", Args: args, Dir: dir})
	if err != nil {
		return fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, result.Output())
	}
	return nil
}
