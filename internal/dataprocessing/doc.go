// Package dataprocessing turns yearly Statistics of Income ZIP code extracts
// into standardized and master tables.
//
// # Components
//
//  1. Codebook: reads the canonical variable dictionary from Codebook.xlsx
//  2. Parser: loads CSV extracts into domain tables
//  3. Standardizer: uppercases headers and projects onto the dictionary
//  4. Processor: sentinel normalization and jurisdiction filtering
//  5. Summarizer: concatenates periods into the sorted master table
//
// # Usage
//
//	dict, err := dataprocessing.ReadCodebook("artifacts/Codebook.xlsx", dataprocessing.DefaultCodebookSheet)
//	if err != nil {
//	    return err
//	}
//	std := dataprocessing.NewStandardizer(dict)
//	table, err := dataprocessing.ReadCSVTable("data/09-21csv/21zpallagi.csv")
//	if err != nil {
//	    return err
//	}
//	out, err := std.Standardize(table)
//
// # Data Flow
//
//	Codebook ┐
//	CSV File → Parser → Standardizer → Processor → Summarizer → Master CSV
//
// # Error Handling
//
// Unreadable inputs return INPUT errors, malformed CSV returns PARSING errors
// and missing or conflicting columns return SCHEMA errors. All are fatal for
// the file being processed.
package dataprocessing
