package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func incidentTable() Table {
	return NewTable(
		[]string{TrafficColumn, VehiclesColumn, "Note"},
		[][]string{
			{"Intenso", "3", "tamponamento"},
			{"Intenso", "1", ""},
			{"Normale", "5", ""},
		},
	)
}

func TestFilterConditions_Defaults(t *testing.T) {
	got := FilterConditions(incidentTable(), DefaultTrafficCondition, DefaultMinVehicles)

	require.Equal(t, 1, got.NumRows())
	v, ok := got.Cell(0, got.ColumnIndex(VehiclesColumn))
	require.True(t, ok)
	assert.Equal(t, "3", v)
}

func TestFilterConditions_StrictGreaterThan(t *testing.T) {
	table := NewTable(
		[]string{TrafficColumn, VehiclesColumn},
		[][]string{{"Intenso", "2"}},
	)

	got := FilterConditions(table, "Intenso", 2)
	assert.Equal(t, 0, got.NumRows(), "exactly min-vehicles must not pass")
}

func TestFilterConditions_MissingColumnsYieldEmptyTable(t *testing.T) {
	table := NewTable([]string{"a", "b"}, [][]string{{"1", "2"}})

	got := FilterConditions(table, "Intenso", 2)
	assert.Equal(t, 0, got.NumRows())
	assert.Empty(t, got.Columns())
}

func TestFilterConditions_NonNumericVehiclesExcluded(t *testing.T) {
	table := NewTable(
		[]string{TrafficColumn, VehiclesColumn},
		[][]string{
			{"Intenso", "molti"},
			{"Intenso", ""},
			{"Intenso", "4"},
		},
	)

	got := FilterConditions(table, "Intenso", 2)
	assert.Equal(t, 1, got.NumRows())
}

func TestFilterConditions_DropsAllEmptyColumns(t *testing.T) {
	table := NewTable(
		[]string{TrafficColumn, VehiclesColumn, "Note", "Feriti"},
		[][]string{
			{"Intenso", "3", "", "2"},
			{"Intenso", "4", "", ""},
			{"Normale", "9", "pieno", "1"},
		},
	)

	got := FilterConditions(table, "Intenso", 2)
	require.Equal(t, 2, got.NumRows())
	assert.Equal(t, []string{TrafficColumn, VehiclesColumn, "Feriti"}, got.Columns(),
		"Note is empty across all kept rows and must be dropped")
}

func TestFilterConditions_Idempotent(t *testing.T) {
	once := FilterConditions(incidentTable(), DefaultTrafficCondition, DefaultMinVehicles)
	twice := FilterConditions(once, DefaultTrafficCondition, DefaultMinVehicles)

	require.Equal(t, once.NumRows(), twice.NumRows())
	for i := 0; i < once.NumRows(); i++ {
		assert.Equal(t, once.Row(i), twice.Row(i))
	}
}

func TestLocatePoints_AliasResolution(t *testing.T) {
	table := NewTable(
		[]string{"Latitudine", "Longitudine"},
		[][]string{
			{"41.9", "12.5"},
			{"", "12.4"},
			{"41.8", "12.6"},
		},
	)

	points := LocatePoints(table, "", "")
	assert.Equal(t, []GeoPoint{
		{Lat: 41.9, Lon: 12.5},
		{Lat: 41.8, Lon: 12.6},
	}, points, "row with missing latitude is excluded")
}

func TestLocatePoints_AliasPriority(t *testing.T) {
	// Both "latitudine" and "y" are recognized; the earlier alias wins.
	table := NewTable(
		[]string{"y", "latitudine", "x", "longitudine"},
		[][]string{{"1", "41.9", "2", "12.5"}},
	)

	points := LocatePoints(table, "", "")
	require.Len(t, points, 1)
	assert.Equal(t, GeoPoint{Lat: 41.9, Lon: 12.5}, points[0])
}

func TestLocatePoints_ExplicitColumns(t *testing.T) {
	table := NewTable(
		[]string{"py", "px"},
		[][]string{{"41.9", "12.5"}},
	)

	points := LocatePoints(table, "py", "px")
	assert.Equal(t, []GeoPoint{{Lat: 41.9, Lon: 12.5}}, points)
}

func TestLocatePoints_NoCoordinateColumns(t *testing.T) {
	table := NewTable([]string{"a", "b"}, [][]string{{"1", "2"}})
	assert.Empty(t, LocatePoints(table, "", ""))
}

func TestLocatePoints_NonNumericSkipped(t *testing.T) {
	table := NewTable(
		[]string{"lat", "lon"},
		[][]string{
			{"nord", "12.5"},
			{"41.9", "12.5"},
		},
	)

	points := LocatePoints(table, "", "")
	assert.Equal(t, []GeoPoint{{Lat: 41.9, Lon: 12.5}}, points)
}

func TestColumnRole_Resolve(t *testing.T) {
	col, ok := LatitudeRole.Resolve([]string{"Y_COORD", "altro"})
	require.True(t, ok)
	assert.Equal(t, "Y_COORD", col, "original spelling is returned")

	_, ok = LongitudeRole.Resolve([]string{"Y_COORD", "altro"})
	assert.False(t, ok)
}

func TestIncidentEvents(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	defer SetClock(nil)

	table := NewTable(
		[]string{TrafficColumn, VehiclesColumn, "Latitudine", "Longitudine", "Note"},
		[][]string{
			{"Intenso", "3", "41.9", "12.5", ""},
			{"Intenso", "4", "", "12.5", "senza lat"},
		},
	)

	events := IncidentEvents("incidenti-roma-2020", table)
	require.Len(t, events, 2)

	first := events[0]
	assert.Equal(t, "incidenti-roma-2020", first.Dataset)
	assert.Equal(t, "Intenso", first.Condition)
	assert.Equal(t, 3, first.Vehicles)
	require.NotNil(t, first.Geo)
	assert.Equal(t, GeoPoint{Lat: 41.9, Lon: 12.5}, *first.Geo)
	assert.Equal(t, fixed, first.ProcessedAt)
	assert.NotContains(t, first.Fields, "Note", "missing cells are not emitted")

	second := events[1]
	assert.Nil(t, second.Geo, "partial coordinates produce no geo point")
	assert.Equal(t, "senza lat", second.Fields["Note"])
}

func TestIncidentEvents_DeterministicIDs(t *testing.T) {
	table := incidentTable()

	a := IncidentEvents("ds", table)
	b := IncidentEvents("ds", table)
	require.Len(t, a, len(b))
	for i := range a {
		assert.Equal(t, a[i].ID, b[i].ID)
	}
	assert.NotEqual(t, a[0].ID, a[1].ID, "different rows get different IDs")
}
