package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/teozeng1205/brands-compare/internal/app"
	"github.com/teozeng1205/brands-compare/internal/config"
	"github.com/teozeng1205/brands-compare/internal/infrastructure"
)

// globalOptions are the persistent flags shared by every subcommand
type globalOptions struct {
	configFile string
	dataDir    string
	logLevel   string
	envFiles   []string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "brands-compare",
		Short: "Compare lowest fare brands across airline datasets",
		Long: `brands-compare loads the airline-level and source-level fare family exports
and the brand detection export, and serves a dashboard that explores them,
summarizes them and reconciles the lowest brand of every airline.`,
		Version:       app.VERSION,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "YAML config file (default: config.yaml or configs/config.yaml when present)")
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "directory holding the three dataset files (overrides config)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error (overrides config)")
	root.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", nil, "dotenv files to load before reading the environment (default: ./.env when present)")

	root.AddCommand(
		newServeCmd(opts),
		newOverviewCmd(opts),
		newLowestBrandsCmd(opts),
		newExportCmd(opts),
	)
	return root
}

// loadConfig loads configuration and applies the flag overrides
func (o *globalOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(config.Options{ConfigFile: o.configFile, EnvFiles: o.envFiles})
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.Data.Dir = o.dataDir
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = o.logLevel
	}
	return cfg, nil
}

// reportApp builds an application for a one-shot report. Logs go to stderr so
// stdout carries only the report; telemetry is disabled.
func (o *globalOptions) reportApp(cmd *cobra.Command) (*app.Application, func(), error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	logger, err := infrastructure.NewLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}

	a, err := app.NewApplication(cfg, logger.Logger, infrastructure.NoopTelemetry(logger.Logger))
	if err != nil {
		logger.Close()
		return nil, nil, err
	}
	return a, func() { logger.Close() }, nil
}
