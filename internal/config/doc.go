// Package config provides centralized configuration management for the
// soiagi pipelines. It loads configuration from multiple sources, validates
// it, and resolves the file system layout.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern SOI_<SECTION>_<FIELD>:
//
//	SOI_PIPELINE_YEARS=2009,2010,2021
//	SOI_PIPELINE_JURISDICTION=TX
//	SOI_PATHS_OUTPUT_DIR=working_data
//	SOI_LOGGING_LEVEL=debug
//	SOI_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Paths
//
// GetPaths resolves every configured path against the base directory:
//
//	paths, err := config.GetPaths(cfg.Paths)
//	out := paths.GetOutputPath("allagi_TX.csv")
package config
