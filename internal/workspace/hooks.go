package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/coder-mcp/runtimectl/internal/execx"
)

// Hook is one setup command run inside a materialized workspace.
type Hook struct {
	// Command is the executable to run.
	Command string
	// Args are optional arguments.
	Args []string
	// Env adds environment variables for the hook.
	Env map[string]string
	// Timeout bounds hook execution; zero means no limit.
	Timeout time.Duration
}

// RunHooks executes hooks sequentially in dir. The first failure aborts with
// the hook's captured output attached.
func RunHooks(ctx context.Context, runner execx.CommandRunner, logger *slog.Logger, dir string, hooks []Hook) error {
	if runner == nil {
		runner = execx.ExecRunner{}
	}
	for idx, hook := range hooks {
		if strings.TrimSpace(hook.Command) == "" {
			continue
		}
		hookCtx := ctx
		var cancel context.CancelFunc
		if hook.Timeout > 0 {
			hookCtx, cancel = context.WithTimeout(ctx, hook.Timeout)
		}

		if logger != nil {
			logger.Info("running setup hook", "index", idx, "command", hook.Command)
		}

		result, err := runner.Run(hookCtx, execx.Command{
			Name: hook.Command,
			Args: hook.Args,
			Dir:  dir,
			Env:  hook.Env,
		})
		if cancel != nil {
			cancel()
		}
		if err != nil {
			return fmt.Errorf("setup hook %d (%s) failed: %w: %s", idx, hook.Command, err, result.Output())
		}
		if logger != nil && result.Output() != "" {
			logger.Debug("setup hook output", "index", idx, "output", result.Output())
		}
	}
	return nil
}
