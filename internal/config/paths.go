package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Well-known output files of the geocoding pipelines
const (
	PrevalentZipFile = "updated_energy_usage_with_prevalent_zip.csv"
	MissingZipFile   = "missing_zip_codes_with_prevalent.csv"
	PrevalentByTract = "prevalent_zip_by_tract.csv"
	CoordinatesFile  = "final_updated_energy_usage_with_coordinates.csv"
)

// Paths contains all the resolved application paths
// This is the single source of truth for ALL file paths in the application
type Paths struct {
	BaseDir   string
	InputDir  string
	OutputDir string
	LogsDir   string

	CodebookFile        string
	TractTableFile      string
	EnergyTableFile     string
	CoordinateTableFile string
}

// GetPaths resolves the configured paths. Relative entries are joined to
// BaseDir; an empty BaseDir means the current working directory.
func GetPaths(cfg PathsConfig) (*Paths, error) {
	base := cfg.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}

	return &Paths{
		BaseDir:             base,
		InputDir:            resolve(cfg.InputDir),
		OutputDir:           resolve(cfg.OutputDir),
		LogsDir:             resolve(cfg.LogsDir),
		CodebookFile:        resolve(cfg.Codebook),
		TractTableFile:      resolve(cfg.TractTable),
		EnergyTableFile:     resolve(cfg.EnergyTable),
		CoordinateTableFile: resolve(cfg.CoordinateTable),
	}, nil
}

// EnsureDirectories creates the output and log directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{p.OutputDir, p.LogsDir}

	logger := slog.Default()
	for _, dir := range directories {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
		logger.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// GetInputPath returns the path of an input extract
func (p *Paths) GetInputPath(filename string) string {
	return filepath.Join(p.InputDir, filename)
}

// GetOutputPath returns the path for an output file
func (p *Paths) GetOutputPath(filename string) string {
	return filepath.Join(p.OutputDir, filename)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs detailed path resolution information for debugging
func (p *Paths) LogPathResolution() {
	slog.Default().Debug("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("input", p.InputDir),
			slog.String("output", p.OutputDir),
			slog.String("logs", p.LogsDir),
		),
		slog.Group("reference_files",
			slog.String("codebook", p.CodebookFile),
			slog.String("tract_table", p.TractTableFile),
			slog.String("energy_table", p.EnergyTableFile),
			slog.String("coordinate_table", p.CoordinateTableFile),
		))
}

// ValidateRequiredFiles checks that the named reference files exist
func (p *Paths) ValidateRequiredFiles(required map[string]string) error {
	var missingFiles []string
	for name, path := range required {
		if path == "" || !FileExists(path) {
			missingFiles = append(missingFiles, fmt.Sprintf("%s (%s)", name, path))
		}
	}

	if len(missingFiles) > 0 {
		return fmt.Errorf("required files missing: %s", strings.Join(missingFiles, ", "))
	}

	return nil
}
