package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/coder-mcp/runtimectl/internal/profile"
	"github.com/coder-mcp/runtimectl/internal/runtime"
	"github.com/coder-mcp/runtimectl/internal/workspace"
)

func newUpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Materialize a workspace, start the runtime, and hold until interrupted",
		RunE:  runUp,
	}
	cmd.Flags().Bool("tree", false, "Print the server's directory tree once healthy")
	return cmd
}

func runUp(cmd *cobra.Command, _ []string) error {
	_, logger, cfg, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ws := workspace.New(cfg.WorkspaceSpec(), nil, logger)
	dir, err := ws.Materialize(ctx)
	if err != nil {
		return err
	}
	defer ws.Teardown()

	if err := workspace.RunHooks(ctx, nil, logger, dir, cfg.WorkspaceHooks()); err != nil {
		return err
	}

	rt := newRuntime(cfg, dir, logger)
	defer func() {
		// Release runs unconditionally; Stop never raises.
		_ = rt.Stop(context.WithoutCancel(ctx))
	}()

	if err := rt.Start(ctx); err != nil {
		return err
	}

	endpoint, err := rt.Endpoint(runtime.ToolFilter{})
	if err != nil {
		return err
	}
	readonly, err := rt.ReadOnlyEndpoint()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "workspace: %s\n", dir)
	_, _ = fmt.Fprintf(out, "endpoint: %s\n", endpoint.URL())
	_, _ = fmt.Fprintf(out, "readonly: %s\n", readonly.URL())

	if printTree, _ := cmd.Flags().GetBool("tree"); printTree {
		_, _ = fmt.Fprintln(out, runtime.FetchTree(ctx, endpoint.BaseURL, runtime.TreeQuery{}))
	}

	<-ctx.Done()
	logger.Info("shutdown requested")
	return nil
}

func newRuntime(cfg *profile.Config, dir string, logger *slog.Logger) runtime.Runtime {
	if cfg.Runtime.Backend == profile.BackendLocal {
		return runtime.NewLocalRuntime(cfg.LocalOptions(dir), cfg.Server(logger), logger)
	}
	return runtime.NewDockerRuntime(cfg.DockerOptions(dir), logger)
}
