// Package config provides centralized configuration management for brands-compare.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A YAML configuration file (config.yaml, configs/config.yaml or --config)
//	3. Default values (lowest priority)
//
// A .env file in the working directory is read first; it never overrides
// variables already present in the environment.
//
// # Environment Variables
//
// All environment variables follow the pattern BRANDS_* for namespacing:
//
//	BRANDS_SERVER_PORT=8080
//	BRANDS_DATA_DIR=/srv/brands/data
//	BRANDS_LOGGING_LEVEL=debug
//	BRANDS_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Usage
//
//	cfg, err := config.Load(config.Options{ConfigFile: path})
//	if err != nil {
//	    return err
//	}
//	loader := dataprocessing.NewLoader(dataprocessing.Files{
//	    AirlineLevel: cfg.AirlineLevelPath(),
//	    ...
//	}, logger)
package config
