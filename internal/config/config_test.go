package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEnvVars = []string{
	"SOI_LOGGING_LEVEL", "SOI_LOGGING_OUTPUT",
	"SOI_PATHS_OUTPUT_DIR", "SOI_PATHS_INPUT_DIR",
	"SOI_PIPELINE_YEARS", "SOI_PIPELINE_JURISDICTION", "SOI_PIPELINE_FILTER_JURISDICTION",
	"SOI_PIPELINE_SENTINEL", "SOI_TELEMETRY_TRACE_EXPORTER",
}

// clearEnv unsets the variables the tests touch and restores them afterwards
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range testEnvVars {
		if val, ok := os.LookupEnv(name); ok {
			t.Cleanup(func() { os.Setenv(name, val) })
		} else {
			t.Cleanup(func() { os.Unsetenv(name) })
		}
		os.Unsetenv(name)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "soiagi.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     string
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults only",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, Default(), cfg)
			},
		},
		{
			name: "environment overrides defaults",
			env: map[string]string{
				"SOI_PIPELINE_YEARS":        "2011,2012",
				"SOI_PIPELINE_JURISDICTION": "CA",
				"SOI_LOGGING_LEVEL":         "debug",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"2011", "2012"}, cfg.Pipeline.Years)
				assert.Equal(t, "CA", cfg.Pipeline.Jurisdiction)
				assert.Equal(t, "debug", cfg.Logging.Level)
			},
		},
		{
			name: "file overrides defaults including false booleans",
			file: `
pipeline:
  years: ["2021"]
  filter_jurisdiction: false
paths:
  output_dir: out
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"2021"}, cfg.Pipeline.Years)
				assert.False(t, cfg.Pipeline.FilterJurisdiction)
				assert.Equal(t, "out", cfg.Paths.OutputDir)
				assert.Equal(t, "TX", cfg.Pipeline.Jurisdiction, "untouched keys keep defaults")
			},
		},
		{
			name: "environment wins over file",
			env:  map[string]string{"SOI_PATHS_OUTPUT_DIR": "from-env"},
			file: "paths:\n  output_dir: from-file\n  input_dir: in\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "from-env", cfg.Paths.OutputDir)
				assert.Equal(t, "in", cfg.Paths.InputDir)
			},
		},
		{
			name:    "unknown file keys rejected",
			file:    "pipeline:\n  yeers: [\"2021\"]\n",
			wantErr: "failed to load config from file",
		},
		{
			name:    "invalid year",
			env:     map[string]string{"SOI_PIPELINE_YEARS": "21"},
			wantErr: "pipeline.years[0] must be a four digit year",
		},
		{
			name:    "invalid jurisdiction",
			env:     map[string]string{"SOI_PIPELINE_JURISDICTION": "texas"},
			wantErr: "pipeline.jurisdiction must be a two letter uppercase code",
		},
		{
			name:    "jurisdiction required when filtering",
			file:    "pipeline:\n  jurisdiction: \"\"\n",
			wantErr: "pipeline.jurisdiction is required",
		},
		{
			name:    "invalid trace exporter",
			env:     map[string]string{"SOI_TELEMETRY_TRACE_EXPORTER": "jaeger"},
			wantErr: "telemetry.trace_exporter must be one of",
		},
		{
			name:    "sentinel must be positive",
			env:     map[string]string{"SOI_PIPELINE_SENTINEL": "-1"},
			wantErr: "pipeline.sentinel must be greater than 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				os.Setenv(k, v)
			}

			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			} else {
				// Point at an empty file so no repository config is picked up
				path = writeConfigFile(t, "{}\n")
			}

			cfg, err := Load(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestMasterJurisdictions(t *testing.T) {
	tests := []struct {
		name     string
		pipeline PipelineConfig
		want     []string
	}{
		{name: "filtered", pipeline: PipelineConfig{FilterJurisdiction: true, Jurisdiction: "TX"}, want: []string{"TX"}},
		{name: "filtered and unfiltered", pipeline: PipelineConfig{FilterJurisdiction: true, Jurisdiction: "TX", EmitUnfiltered: true}, want: []string{"TX", ""}},
		{name: "unfiltered", pipeline: PipelineConfig{Jurisdiction: "TX"}, want: []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Pipeline = tt.pipeline
			assert.Equal(t, tt.want, cfg.MasterJurisdictions())
		})
	}
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}
