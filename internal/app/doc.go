// Package app wires configuration, telemetry, the dataset loader, the
// dashboard services and the HTTP transport into one runnable application.
//
// # Initialization Flow
//
//	1. Load configuration from .env files, environment and YAML
//	2. Initialize logging and OpenTelemetry
//	3. Create the dataset loader and exporter
//	4. Initialize the dashboard and health services
//	5. Set up the chi router, middleware and handlers
//	6. Start the HTTP server and preload the datasets
//	7. Shut down gracefully on SIGINT or SIGTERM
//
// # Usage
//
//	application, err := app.NewApplication(cfg, logger.Logger, tel)
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// The CLI report commands build the same Application and call its
// DashboardService directly without starting the server.
package app
