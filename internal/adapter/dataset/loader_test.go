package dataset

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/civicdata/incident-pipeline/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLoader() *Loader {
	return NewLoader(5*time.Second, observability.NewMetricsForTesting(),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestFetchTable_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		_, err := w.Write([]byte("Città,Numero\nRoma,3\nMilano,\n"))
		require.NoError(t, err)
	}))
	defer srv.Close()

	table, err := testLoader().FetchTable(context.Background(), srv.URL+"/data.csv")
	require.NoError(t, err)

	assert.Equal(t, []string{"Città", "Numero"}, table.Columns())
	assert.Equal(t, 2, table.NumRows())

	v, ok := table.Cell(0, 0)
	require.True(t, ok)
	assert.Equal(t, "Roma", v, "UTF-8 payload decodes intact")
}

func TestFetchTable_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testLoader().FetchTable(context.Background(), srv.URL+"/missing.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
}

func TestFetchTable_MalformedCSV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, err := w.Write([]byte("a,b\n1,2,3\n"))
		require.NoError(t, err)
	}))
	defer srv.Close()

	_, err := testLoader().FetchTable(context.Background(), srv.URL+"/bad.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse csv")
}

func TestFetchTable_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	srv.Close()

	_, err := testLoader().FetchTable(context.Background(), srv.URL)
	assert.Error(t, err)
}
