package files

import (
	"fmt"
	"slices"
)

// UnknownYear is assigned to files whose prefix is not a known year code
const UnknownYear = "Unknown"

var yearCodes = map[string]string{
	"09": "2009",
	"10": "2010",
	"11": "2011",
	"12": "2012",
	"13": "2013",
	"14": "2014",
	"15": "2015",
	"16": "2016",
	"17": "2017",
	"18": "2018",
	"19": "2019",
	"20": "2020",
	"21": "2021",
}

// PeriodFile is an input extract with its resolved year
type PeriodFile struct {
	FileInfo
	Year string
}

// AssignYear resolves the year from the first two characters of a file name
func AssignYear(filename string) string {
	if len(filename) < 2 {
		return UnknownYear
	}
	if year, ok := yearCodes[filename[:2]]; ok {
		return year
	}
	return UnknownYear
}

// KnownYears returns every year with a file name code, ascending
func KnownYears() []string {
	years := make([]string, 0, len(yearCodes))
	for _, y := range yearCodes {
		years = append(years, y)
	}
	slices.Sort(years)
	return years
}

// FindPeriodCSVFiles discovers CSV extracts in dir and keeps those whose
// year is in years. An empty years list keeps every known year. Files with
// an unknown year are always dropped.
func FindPeriodCSVFiles(dir string, years []string) ([]PeriodFile, error) {
	found, err := NewDiscovery("").FindCSVFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(years) == 0 {
		years = KnownYears()
	}

	var periods []PeriodFile
	for _, f := range found {
		year := AssignYear(f.Name)
		if year == UnknownYear || !slices.Contains(years, year) {
			continue
		}
		periods = append(periods, PeriodFile{FileInfo: f, Year: year})
	}
	return periods, nil
}

// SkippedFiles returns the CSV files in dir that FindPeriodCSVFiles would
// drop, with the reason for each
func SkippedFiles(dir string, years []string) (map[string]string, error) {
	found, err := NewDiscovery("").FindCSVFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(years) == 0 {
		years = KnownYears()
	}

	skipped := make(map[string]string)
	for _, f := range found {
		switch year := AssignYear(f.Name); {
		case year == UnknownYear:
			skipped[f.Name] = "unknown year code"
		case !slices.Contains(years, year):
			skipped[f.Name] = fmt.Sprintf("year %s not selected", year)
		}
	}
	return skipped, nil
}
