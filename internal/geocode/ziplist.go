package geocode

import "strings"

var zipListCutset = strings.NewReplacer("[", " ", "]", " ", "'", " ", `"`, " ", ",", " ")

// ParseZipList parses the list-of-ZIP micro-format used by the tract
// crosswalk: an optionally bracketed, optionally quoted list separated by
// commas and/or whitespace, e.g. "['75001', '75002']". Empty elements are
// dropped, so "[]" yields no ZIPs.
func ParseZipList(s string) []string {
	return strings.Fields(zipListCutset.Replace(s))
}
