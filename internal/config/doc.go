// Package config provides centralized configuration management for dhsclean.
// It handles loading configuration from multiple sources, validation, and
// resolution of the file locations a pipeline run reads and writes.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Command line flags (highest priority, applied by cmd/dhsclean)
//	2. Environment variables, including those exported from a .env file
//	3. The YAML configuration file (dhsclean.yaml or --config)
//	4. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern DHS_<SECTION>_<FIELD>:
//
//	DHS_INPUT_PATH=data/obesity_data_raw.csv
//	DHS_OUTPUT_CSV_PATH=data/obesity_data_cleaned.csv
//	DHS_LOGGING_LEVEL=debug
//	DHS_TELEMETRY_METRICS_FILE=data/dhsclean.prom
//
// # Validation
//
// Struct tags are checked with go-playground/validator at load time, and a
// failure is returned as a CONFIG AppError.
package config
