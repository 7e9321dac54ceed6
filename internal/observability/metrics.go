package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// analysis pipeline.
type Metrics struct {
	// Catalog API metrics.
	CatalogRequests        *prometheus.CounterVec   // labels: endpoint={package_list,package_show}, outcome={success,error}
	CatalogRequestDuration *prometheus.HistogramVec // labels: endpoint

	// Tabular loading metrics.
	TableLoads *prometheus.CounterVec // labels: outcome={success,error}
	TableRows  prometheus.Histogram

	// Analysis metrics.
	IncidentsMatched   prometheus.Counter
	PointsLocated      prometheus.Counter
	IncidentsPublished prometheus.Counter

	// Run metrics.
	AnalysisRuns     *prometheus.CounterVec // labels: outcome={success,error}
	AnalysisDuration prometheus.Histogram
	AnalysisRunning  prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.CatalogRequests,
		m.CatalogRequestDuration,
		m.TableLoads,
		m.TableRows,
		m.IncidentsMatched,
		m.PointsLocated,
		m.IncidentsPublished,
		m.AnalysisRuns,
		m.AnalysisDuration,
		m.AnalysisRunning,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		CatalogRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "incident_etl",
			Name:      "catalog_requests_total",
			Help:      "Catalog API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		CatalogRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "incident_etl",
			Name:      "catalog_request_duration_seconds",
			Help:      "Catalog API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		TableLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "incident_etl",
			Name:      "table_loads_total",
			Help:      "CSV resource fetches by outcome.",
		}, []string{"outcome"}),
		TableRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "incident_etl",
			Name:      "table_rows",
			Help:      "Rows per loaded table.",
			Buckets:   []float64{10, 50, 100, 500, 1000, 5000, 10000, 50000},
		}),
		IncidentsMatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "incident_etl",
			Name:      "incidents_matched_total",
			Help:      "Rows surviving the traffic-condition filter.",
		}),
		PointsLocated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "incident_etl",
			Name:      "points_located_total",
			Help:      "Geolocated rows emitted for map rendering.",
		}),
		IncidentsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "incident_etl",
			Name:      "incidents_published_total",
			Help:      "Incident events published to the report sink.",
		}),
		AnalysisRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "incident_etl",
			Name:      "analysis_runs_total",
			Help:      "Completed analysis runs by outcome.",
		}, []string{"outcome"}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "incident_etl",
			Name:      "analysis_duration_seconds",
			Help:      "Duration of a complete discovery-to-report run.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		AnalysisRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "incident_etl",
			Name:      "analysis_running",
			Help:      "1 while an analysis run is in progress.",
		}),
	}
}
