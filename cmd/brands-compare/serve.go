package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teozeng1205/brands-compare/internal/app"
	"github.com/teozeng1205/brands-compare/internal/infrastructure"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard and JSON API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			logger, err := infrastructure.NewLogger(cfg.Logging, cmd.OutOrStdout())
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer logger.Close()

			tel, err := infrastructure.InitializeTelemetry(cfg.Telemetry, app.VERSION, logger.Logger)
			if err != nil {
				return err
			}

			application, err := app.NewApplication(cfg, logger.Logger, tel)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return application.Run()
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides config)")
	return cmd
}
