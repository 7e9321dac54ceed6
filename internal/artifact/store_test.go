package artifact

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/civicdata/incident-pipeline/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	base := t.TempDir()
	s := NewStore(filepath.Join(base, "data"), filepath.Join(base, "output"),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, s.EnsureDirs())
	return s
}

func TestEnsureDirs_Idempotent(t *testing.T) {
	s := testStore(t)
	assert.NoError(t, s.EnsureDirs())
}

func TestSaveJSON(t *testing.T) {
	s := testStore(t)

	path, err := s.SaveJSON("listing.json", []string{"incidenti-roma-2020"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "incidenti-roma-2020")
	assert.Equal(t, "listing.json", filepath.Base(path))
}

func TestSaveTableCSV(t *testing.T) {
	s := testStore(t)
	table := domain.NewTable([]string{"a", "b"}, [][]string{{"1", "2"}})

	path, err := s.SaveTableCSV("out.csv", table)
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	again, err := domain.ParseCSV(f)
	require.NoError(t, err)
	assert.Equal(t, table.Columns(), again.Columns())
	assert.Equal(t, 1, again.NumRows())
}

func TestSaveMap(t *testing.T) {
	s := testStore(t)
	points := []domain.GeoPoint{
		{Lat: 41.9, Lon: 12.5},
		{Lat: 41.7, Lon: 12.3},
	}

	path, err := s.SaveMap("mappa.html", points, 13)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(data)

	assert.Equal(t, 2, strings.Count(html, "L.marker("))
	assert.Contains(t, html, "setView([41.800000, 12.400000], 13)", "map centers on the mean coordinate")
	assert.Contains(t, html, "Incidente 0")
}

func TestSaveMap_NoPoints(t *testing.T) {
	s := testStore(t)
	_, err := s.SaveMap("mappa.html", nil, 13)
	assert.Error(t, err)
}
