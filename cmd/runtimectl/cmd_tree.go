package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coder-mcp/runtimectl/internal/runtime"
)

func newTreeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree <base-url>",
		Short: "Print the directory tree of a running server",
		Args:  cobra.ExactArgs(1),
		RunE:  runTree,
	}
	cmd.Flags().String("path", "", "Subdirectory to list")
	cmd.Flags().Int("truncate", 0, "Cap entries per directory")
	cmd.Flags().String("exclude", "", "Pattern of entries to skip")
	return cmd
}

func runTree(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("path")
	truncate, _ := cmd.Flags().GetInt("truncate")
	exclude, _ := cmd.Flags().GetString("exclude")

	tree := runtime.FetchTree(cmd.Context(), args[0], runtime.TreeQuery{
		Path:     path,
		Truncate: truncate,
		Exclude:  exclude,
	})
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), tree)
	return nil
}
