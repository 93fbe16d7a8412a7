package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/coder-mcp/runtimectl/configs"
	"github.com/coder-mcp/runtimectl/internal/config"
	"github.com/coder-mcp/runtimectl/internal/log"
	"github.com/coder-mcp/runtimectl/internal/profile"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "runtimectl",
		Short:   "Provision execution environments hosting coder MCP servers",
		Version: version,
	}

	cmd.PersistentFlags().String("profile", "", "Path to the runtime profile YAML (default $RUNTIMECTL_PROFILE)")
	cmd.PersistentFlags().String("embedded-profile", "", "Use an embedded profile from configs/ (filename)")

	cmd.AddCommand(
		newUpCmd(),
		newWorkspaceCmd(),
		newTreeCmd(),
		newProfilesCmd(),
	)

	return cmd
}

// loadEnvironment resolves the env-driven settings, logger, and profile for
// a command invocation.
func loadEnvironment(cmd *cobra.Command) (config.Config, *slog.Logger, *profile.Config, error) {
	envCfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("config error: %w", err)
	}
	logger := log.New(envCfg.LogLevel, envCfg.LogFormat)

	embedded, _ := cmd.Flags().GetString("embedded-profile")
	path, _ := cmd.Flags().GetString("profile")
	if path == "" {
		path = envCfg.ProfilePath
	}

	var cfg *profile.Config
	if embedded != "" {
		raw, err := configs.Load(embedded)
		if err != nil {
			return envCfg, logger, nil, err
		}
		cfg, err = profile.Load(raw)
		if err != nil {
			return envCfg, logger, nil, fmt.Errorf("embedded profile %s: %w", embedded, err)
		}
	} else {
		cfg, err = profile.LoadFile(path)
		if err != nil {
			return envCfg, logger, nil, err
		}
	}

	// Environment overrides fill health settings the profile leaves out.
	if cfg.Health.Timeout == "" {
		cfg.Health.Timeout = envCfg.HealthTimeout.String()
	}
	if cfg.Health.Interval == "" {
		cfg.Health.Interval = envCfg.HealthInterval.String()
	}

	return envCfg, logger, cfg, nil
}

func newProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List embedded runtime profiles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range configs.Names() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
