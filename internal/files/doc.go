// Package files discovers the yearly input extracts.
//
// Discovery lists CSV files in a directory in name order so that repeated
// runs produce identical output. Period resolution maps the two character
// filename prefix of each extract (for example "21zpallagi.csv") to its
// four digit year:
//
//	periods, err := files.FindPeriodCSVFiles("data/09-21csv", []string{"2021"})
//	for _, p := range periods {
//	    fmt.Println(p.Year, p.Path)
//	}
package files
