package domain

import "strings"

// ColumnRole names a recognized column with its alias spellings in priority
// order. Every component that needs a coordinate or domain column resolves
// it through a role rather than scattering name literals.
type ColumnRole struct {
	Name    string
	Aliases []string
}

// Coordinate roles. Alias order matters: publishers that ship both
// "latitudine" and a projected "y_coord" mean the former.
var (
	LatitudeRole = ColumnRole{
		Name:    "latitude",
		Aliases: []string{"latitudine", "latitude", "lat", "y_coord", "y"},
	}
	LongitudeRole = ColumnRole{
		Name:    "longitude",
		Aliases: []string{"longitudine", "longitude", "lon", "x_coord", "x"},
	}
)

// Resolve returns the first column whose lowercased name matches one of the
// role's aliases, walking aliases in priority order. The returned name is
// the table's original spelling.
func (r ColumnRole) Resolve(columns []string) (string, bool) {
	lower := make(map[string]string, len(columns))
	for _, c := range columns {
		key := strings.ToLower(c)
		if _, seen := lower[key]; !seen {
			lower[key] = c
		}
	}
	for _, alias := range r.Aliases {
		if original, ok := lower[alias]; ok {
			return original, true
		}
	}
	return "", false
}
