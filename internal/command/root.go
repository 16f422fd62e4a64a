// Package command contains the CLI command constructors.
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/catalogapi/internal/config"
	"github.com/ericfisherdev/catalogapi/internal/observability"
)

type configKey struct{}

// RootCommand instantiates the root command, with all sub-commands bound.
// Running it without a sub-command serves the API.
func RootCommand() *cobra.Command {
	var debugLog bool
	serve := serveCommand()

	cmd := &cobra.Command{
		Use:          "catalogapi [command] [flags]",
		Short:        "Authenticated REST API over the product catalog",
		Version:      version(),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger := observability.NewLogger(cfg.LogLevel, debugLog)
			slog.SetDefault(logger)
			logger.DebugContext(cmd.Context(), "configuration loaded", slog.Any("config", cfg))
			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
		RunE: serve.RunE,
	}

	cmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "include source locations in log output")

	cmd.AddCommand(
		serve,
		migrateCommand(),
	)

	return cmd
}

func configFrom(ctx context.Context) (*config.Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*config.Config)
	if !ok || cfg == nil {
		return nil, errors.New("configuration not loaded")
	}
	return cfg, nil
}

func version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" {
		return "(devel)"
	}
	return info.Main.Version
}
