package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/m3rciful/assetbot/core/buildinfo"
	corecmd "github.com/m3rciful/assetbot/core/cmd"
	"github.com/m3rciful/assetbot/core/logger"
	"github.com/m3rciful/assetbot/internal/app"
)

const defaultConfigPath = "config.yaml"

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "assetbot",
		Short: "Telegram bot that collects asset questionnaires into a table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return corecmd.Run(runOptions(configPath))
		},
	}
	root.SilenceUsage = true
	root.SilenceErrors = true
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml (default $CONFIG_PATH or "+defaultConfigPath+")")

	root.AddCommand(
		newVersionCmd(),
		newCheckCmd(&configPath),
	)
	return root
}

func runOptions(configPath string) corecmd.Options {
	return corecmd.Options{
		ConfigPath:        configPath,
		DefaultConfigPath: defaultConfigPath,
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			cfg, err := app.LoadConfig(path)
			if err != nil {
				return nil, err
			}
			return cfg, nil
		},
		Bootstrap: func(ctx context.Context, c corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			cfg, ok := c.(*app.Config)
			if !ok {
				return nil, fmt.Errorf("unexpected config type %T", c)
			}
			a, err := app.Bootstrap(ctx, cfg)
			if err != nil {
				return nil, err
			}
			return a, nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "assetbot %s (commit %s", buildinfo.Version, buildinfo.Commit)
			if buildinfo.Date != "" {
				fmt.Fprintf(cmd.OutOrStdout(), ", built %s", buildinfo.Date)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ")")
		},
	}
}

func newCheckCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load the config, open the store and verify it answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := corecmd.ResolveConfigPath(runOptions(*configPath))
			if err != nil {
				return err
			}
			cfg, err := app.LoadConfig(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			defer func() { _ = logger.Shutdown() }()

			a, err := app.Bootstrap(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			fmt.Fprintf(cmd.OutOrStdout(), "config %s: ok\nstore %s: ok\n", path, cfg.Storage.Backend)
			return nil
		},
	}
}
