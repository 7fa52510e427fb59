package contracts

import (
	"fmt"
	"runtime"
)

// Version is the current release of soiagi
const Version = "0.3.0"

// DataFormatVersion identifies the layout of the standardized and master
// CSV files. It changes when columns are added, renamed or reordered.
const DataFormatVersion = "v1"

// Set by build.go through -ldflags -X
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// VersionInfo is what `soiagi version --json` prints
type VersionInfo struct {
	Version    string `json:"version"`
	DataFormat string `json:"data_format"`
	BuildTime  string `json:"build_time"`
	GitCommit  string `json:"git_commit"`
	GoVersion  string `json:"go_version"`
}

// GetVersionInfo collects the build metadata of the running binary
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:    Version,
		DataFormat: DataFormatVersion,
		BuildTime:  BuildTime,
		GitCommit:  GitCommit,
		GoVersion:  runtime.Version(),
	}
}

// GetVersionString returns "soiagi v<version>"
func GetVersionString() string {
	return fmt.Sprintf("soiagi v%s", Version)
}

// GetFullVersionString adds the data format and build metadata
func GetFullVersionString() string {
	info := GetVersionInfo()
	return fmt.Sprintf("%s (data format %s, built: %s, commit: %s, %s)",
		GetVersionString(), info.DataFormat, info.BuildTime, info.GitCommit, info.GoVersion)
}
