package config

import (
	"fmt"
	"os"
	"reflect"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable, e.g. SOI_PIPELINE_YEARS
const EnvPrefix = "SOI"

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format      string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/soiagi.log"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"false"`
}

// PathsConfig contains file system paths configuration. Relative paths are
// resolved against BaseDir, which defaults to the working directory.
type PathsConfig struct {
	BaseDir         string `yaml:"base_dir" envconfig:"BASE_DIR"`
	InputDir        string `yaml:"input_dir" envconfig:"INPUT_DIR" default:"data/09-21csv" validate:"required"`
	OutputDir       string `yaml:"output_dir" envconfig:"OUTPUT_DIR" default:"working_data" validate:"required"`
	LogsDir         string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
	Codebook        string `yaml:"codebook" envconfig:"CODEBOOK" default:"artifacts/Codebook.xlsx" validate:"required"`
	CodebookSheet   string `yaml:"codebook_sheet" envconfig:"CODEBOOK_SHEET" default:"SelectedVars" validate:"required"`
	TractTable      string `yaml:"tract_table" envconfig:"TRACT_TABLE" default:"working_data/prework/ZIP_TRACT_122018.csv"`
	EnergyTable     string `yaml:"energy_table" envconfig:"ENERGY_TABLE" default:"working_data/ss/Energy_Usage_2010_20240424.csv"`
	CoordinateTable string `yaml:"coordinate_table" envconfig:"COORDINATE_TABLE" default:"working_data/ss/unique_zip_codes.csv"`
}

// PipelineConfig contains the externally varying run parameters
type PipelineConfig struct {
	// Years restricts which periods are processed; empty means every known year
	Years              []string `yaml:"years" envconfig:"YEARS" default:"2009,2010,2021" validate:"dive,year"`
	FilterJurisdiction bool     `yaml:"filter_jurisdiction" envconfig:"FILTER_JURISDICTION" default:"true"`
	Jurisdiction       string   `yaml:"jurisdiction" envconfig:"JURISDICTION" default:"TX" validate:"required_if=FilterJurisdiction true,omitempty,jurisdiction"`
	// EmitUnfiltered also writes allagi.csv when filtering is enabled
	EmitUnfiltered bool    `yaml:"emit_unfiltered" envconfig:"EMIT_UNFILTERED" default:"false"`
	Sentinel       float64 `yaml:"sentinel" envconfig:"SENTINEL" default:"0.0001" validate:"gt=0"`
}

// TelemetryConfig contains tracing and metrics configuration
type TelemetryConfig struct {
	ServiceName     string `yaml:"service_name" envconfig:"SERVICE_NAME" default:"soiagi" validate:"required"`
	Environment     string `yaml:"environment" envconfig:"ENVIRONMENT" default:"production"`
	TraceExporter   string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" default:"none" validate:"oneof=none stdout file"`
	TraceFile       string `yaml:"trace_file" envconfig:"TRACE_FILE" default:"logs/traces.json"`
	MetricsTextfile string `yaml:"metrics_textfile" envconfig:"METRICS_TEXTFILE"`
}

// Load loads configuration from environment variables and an optional YAML
// file. An empty path searches the usual locations. Environment variables
// take precedence over the file; the file takes precedence over defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	// Load from environment variables first
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		fileConfig, err := loadFromFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile decodes a YAML file over base, so keys absent from the
// file keep their base value
func loadFromFile(filePath string, base Config) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	cfg := base
	cfg.Pipeline.Years = append([]string(nil), base.Pipeline.Years...)
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence).
// Only variables explicitly present in the environment win over the file.
func mergeConfigs(fileConfig, envConfig Config) Config {
	mergeStruct(reflect.ValueOf(&fileConfig).Elem(), reflect.ValueOf(envConfig), EnvPrefix)
	return fileConfig
}

func mergeStruct(dst, env reflect.Value, prefix string) {
	t := dst.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := prefix + "_" + field.Tag.Get("envconfig")

		if field.Type.Kind() == reflect.Struct {
			mergeStruct(dst.Field(i), env.Field(i), name)
			continue
		}
		if _, set := os.LookupEnv(name); set {
			dst.Field(i).Set(env.Field(i))
		}
	}
}

// Validate checks every section against its validation tags
func (c *Config) Validate() error {
	return validateStruct(c)
}

// MasterJurisdictions returns the jurisdiction codes a master run writes,
// where "" denotes the unfiltered master.
func (c *Config) MasterJurisdictions() []string {
	if !c.Pipeline.FilterJurisdiction {
		return []string{""}
	}
	codes := []string{c.Pipeline.Jurisdiction}
	if c.Pipeline.EmitUnfiltered {
		codes = append(codes, "")
	}
	return codes
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	// Check for config file in common locations
	locations := []string{
		"soiagi.yaml",
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/soiagi.log",
		},
		Paths: PathsConfig{
			InputDir:        "data/09-21csv",
			OutputDir:       "working_data",
			LogsDir:         "logs",
			Codebook:        "artifacts/Codebook.xlsx",
			CodebookSheet:   "SelectedVars",
			TractTable:      "working_data/prework/ZIP_TRACT_122018.csv",
			EnergyTable:     "working_data/ss/Energy_Usage_2010_20240424.csv",
			CoordinateTable: "working_data/ss/unique_zip_codes.csv",
		},
		Pipeline: PipelineConfig{
			Years:              []string{"2009", "2010", "2021"},
			FilterJurisdiction: true,
			Jurisdiction:       "TX",
			Sentinel:           0.0001,
		},
		Telemetry: TelemetryConfig{
			ServiceName:   "soiagi",
			Environment:   "production",
			TraceExporter: "none",
			TraceFile:     "logs/traces.json",
		},
	}
}
