package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coder-mcp/runtimectl/internal/workspace"
)

func newWorkspaceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "workspace",
		Short: "Materialize a workspace from the profile and print its path",
		Long: "Materialize a workspace from the profile and print its path. The\n" +
			"directory is left in place for an externally managed server; remove it\n" +
			"when done.",
		RunE: runWorkspace,
	}
}

func runWorkspace(cmd *cobra.Command, _ []string) error {
	_, logger, cfg, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}

	ws := workspace.New(cfg.WorkspaceSpec(), nil, logger)
	dir, err := ws.Materialize(cmd.Context())
	if err != nil {
		return err
	}

	if err := workspace.RunHooks(cmd.Context(), nil, logger, dir, cfg.WorkspaceHooks()); err != nil {
		ws.Teardown()
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), dir)
	return nil
}
