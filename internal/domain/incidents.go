package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Required filter columns and default predicate values. The column names
// are exact published headers and matched case-sensitively.
const (
	TrafficColumn  = "Condizioni traffico"
	VehiclesColumn = "N. veicoli coinvolti"

	DefaultTrafficCondition = "Intenso"
	DefaultMinVehicles      = 2
)

// FilterConditions keeps the rows where the traffic condition equals
// condition and the vehicle count parses as a number strictly greater than
// minVehicles. When either required column is absent the dataset simply
// doesn't support this analysis: the result is an empty table, not an
// error. Columns that end up entirely missing across the kept rows are
// dropped. Idempotent on its own output.
func FilterConditions(t Table, condition string, minVehicles int) Table {
	trafficIdx := t.ColumnIndex(TrafficColumn)
	vehiclesIdx := t.ColumnIndex(VehiclesColumn)
	if trafficIdx < 0 || vehiclesIdx < 0 {
		return Table{}
	}

	kept := make([][]string, 0, len(t.rows))
	for row := range t.rows {
		traffic, ok := t.Cell(row, trafficIdx)
		if !ok || traffic != condition {
			continue
		}
		vehicles, ok := t.Float(row, vehiclesIdx)
		if !ok || vehicles <= float64(minVehicles) {
			continue
		}
		kept = append(kept, t.Row(row))
	}

	return dropEmptyColumns(NewTable(t.cols, kept))
}

// dropEmptyColumns removes columns whose cells are missing in every row.
// A table with no rows keeps its columns.
func dropEmptyColumns(t Table) Table {
	if len(t.rows) == 0 {
		return t
	}

	keep := make([]int, 0, len(t.cols))
	for c := range t.cols {
		if t.missingCount(c) < len(t.rows) {
			keep = append(keep, c)
		}
	}
	if len(keep) == len(t.cols) {
		return t
	}

	cols := make([]string, len(keep))
	for i, c := range keep {
		cols[i] = t.cols[c]
	}
	rows := make([][]string, len(t.rows))
	for r, row := range t.rows {
		cells := make([]string, len(keep))
		for i, c := range keep {
			cells[i] = row[c]
		}
		rows[r] = cells
	}
	return Table{cols: cols, rows: rows}
}

// GeoPoint is a validated latitude/longitude pair: both values were present
// and numeric in the source row.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// LocatePoints extracts one GeoPoint per row with usable coordinates, in
// row order. Empty latCol/lonCol are resolved through the coordinate column
// roles; rows with a missing or non-numeric value in either column are
// skipped. No resolvable coordinate columns means no points, not an error.
func LocatePoints(t Table, latCol, lonCol string) []GeoPoint {
	if latCol == "" {
		latCol, _ = LatitudeRole.Resolve(t.cols)
	}
	if lonCol == "" {
		lonCol, _ = LongitudeRole.Resolve(t.cols)
	}
	latIdx := t.ColumnIndex(latCol)
	lonIdx := t.ColumnIndex(lonCol)
	if latCol == "" || lonCol == "" || latIdx < 0 || lonIdx < 0 {
		return nil
	}

	points := make([]GeoPoint, 0, len(t.rows))
	for row := range t.rows {
		lat, ok := t.Float(row, latIdx)
		if !ok {
			continue
		}
		lon, ok := t.Float(row, lonIdx)
		if !ok {
			continue
		}
		points = append(points, GeoPoint{Lat: lat, Lon: lon})
	}
	return points
}

// IncidentEvent is one filtered incident row in the serialized form
// published to the report sink.
type IncidentEvent struct {
	ID          string            `json:"id"`
	Dataset     string            `json:"dataset"`
	Condition   string            `json:"condition"`
	Vehicles    int               `json:"vehicles"`
	Geo         *GeoPoint         `json:"geo,omitempty"`
	Fields      map[string]string `json:"fields"`
	ProcessedAt time.Time         `json:"processed_at"`
}

// IncidentEvents converts a filtered table into publishable events. IDs are
// deterministic hashes of the dataset name and the row's cells, so replaying
// the same analysis produces the same IDs and downstream consumers can
// deduplicate.
func IncidentEvents(dataset string, t Table) []IncidentEvent {
	trafficIdx := t.ColumnIndex(TrafficColumn)
	vehiclesIdx := t.ColumnIndex(VehiclesColumn)
	latCol, _ := LatitudeRole.Resolve(t.cols)
	lonCol, _ := LongitudeRole.Resolve(t.cols)
	latIdx := t.ColumnIndex(latCol)
	lonIdx := t.ColumnIndex(lonCol)

	now := clock.Now().UTC()
	events := make([]IncidentEvent, 0, len(t.rows))
	for row := range t.rows {
		ev := IncidentEvent{
			ID:          incidentID(dataset, t.rows[row]),
			Dataset:     dataset,
			Fields:      presentFields(t, row),
			ProcessedAt: now,
		}
		if v, ok := t.Cell(row, trafficIdx); ok {
			ev.Condition = v
		}
		if v, ok := t.Float(row, vehiclesIdx); ok {
			ev.Vehicles = int(v)
		}
		if lat, ok := t.Float(row, latIdx); ok {
			if lon, ok := t.Float(row, lonIdx); ok {
				ev.Geo = &GeoPoint{Lat: lat, Lon: lon}
			}
		}
		events = append(events, ev)
	}
	return events
}

func presentFields(t Table, row int) map[string]string {
	fields := make(map[string]string, len(t.cols))
	for c, name := range t.cols {
		if v, ok := t.Cell(row, c); ok {
			fields[name] = v
		}
	}
	return fields
}

// incidentID hashes the dataset name and raw row cells into a short stable
// identifier.
func incidentID(dataset string, cells []string) string {
	input := dataset + "|" + strings.Join(cells, "|")
	hash := sha256.Sum256([]byte(input))
	short := hex.EncodeToString(hash[:8])
	if dataset == "" {
		return short
	}
	return dataset + "-" + short
}
