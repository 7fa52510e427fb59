// Package exporter writes pipeline tables to CSV files.
//
// CSVWriter resolves relative file names against the configured output
// directory and writes each file through a temporary sibling that is renamed
// into place, so a failed run never leaves a truncated output behind.
// Missing values are written as empty cells.
//
// Example usage:
//
//	writer := exporter.NewCSVWriter(paths)
//	fullPath, err := writer.WriteTable("allagi_TX.csv", master)
package exporter
