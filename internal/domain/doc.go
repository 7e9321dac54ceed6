// Package domain models open-data catalog entries and the tabular incident
// data extracted from them.
//
// # Data Source
//
// Dataset metadata comes from a CKAN-style catalog API (dati.gov.it). The
// catalog exposes two read-only endpoints: package_list returns every
// dataset identifier, and package_show returns one dataset's metadata,
// including its downloadable resources (format + URL pairs). A dataset's
// CSV resource is fetched directly from the resource URL.
//
// # Incident CSV Conventions
//
// Road-accident datasets published by Italian municipalities share a loose
// column vocabulary. The columns this package recognizes:
//
//	"Condizioni traffico"    traffic condition at the time of the accident;
//	                         values include "Intenso", "Normale", "Scarso".
//	"N. veicoli coinvolti"   number of vehicles involved, integer-like.
//	Coordinates              latitude and longitude column names vary by
//	                         publisher; see the column-role alias registry
//	                         in columns.go for the recognized spellings.
//
// The literal filter columns are matched case-sensitively because they are
// exact published headers; coordinate aliases are matched case-insensitively
// because publishers disagree on capitalization.
//
// Missing values are empty CSV cells. A cell that is blank after trimming
// whitespace is treated as missing everywhere: it fails filter predicates,
// excludes a row from geolocation, and counts toward a column's missing
// total in summaries.
package domain
