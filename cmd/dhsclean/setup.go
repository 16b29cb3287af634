package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"dhsclean/internal/config"
	apperrors "dhsclean/internal/errors"
	"dhsclean/internal/infrastructure"
	"dhsclean/pkg/contracts"
)

// environment is what a command needs to drive the pipeline
type environment struct {
	cfg       *config.Config
	paths     *config.Paths
	logger    *infrastructure.Logger
	telemetry *infrastructure.Telemetry
}

// loadConfig loads the configuration, applies the persistent flags and then
// the command specific overrides, and validates the result.
func loadConfig(cmd *cobra.Command, opts *rootOptions, override func(cfg *config.Config)) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}
	if flags.Changed("color") {
		cfg.Report.Color = opts.color
	}
	if override != nil {
		override(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newEnvironment resolves paths and starts logging. Telemetry is only set
// up when withTelemetry is true.
func newEnvironment(cfg *config.Config, opts *rootOptions, withTelemetry bool) (*environment, error) {
	paths, err := config.GetPaths(cfg, "")
	if err != nil {
		return nil, apperrors.NewConfigError("failed to resolve paths", err)
	}
	cfg.Logging.FilePath = paths.LogFile
	cfg.Telemetry.TraceFile = paths.TraceFile

	logger, err := infrastructure.NewLogger(cfg.Logging, opts.stderr)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to initialise logging", err)
	}
	env := &environment{cfg: cfg, paths: paths, logger: logger}

	if withTelemetry {
		env.telemetry, err = infrastructure.NewTelemetry(cfg.Telemetry, contracts.Version, logger.Logger)
		if err != nil {
			logger.Close()
			return nil, apperrors.NewConfigError("failed to initialise telemetry", err)
		}
	}
	return env, nil
}

// Close flushes telemetry and closes the log file
func (e *environment) Close(ctx context.Context) {
	if e.telemetry != nil {
		if err := e.telemetry.Shutdown(ctx); err != nil {
			e.logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}
	e.logger.Close()
}
