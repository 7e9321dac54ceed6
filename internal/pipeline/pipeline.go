// Package pipeline orchestrates one analysis run: dataset discovery,
// resource resolution, tabular loading, incident filtering, and reporting.
// The run is strictly sequential; every stage completes before the next
// begins, so failures surface in source order.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/civicdata/incident-pipeline/internal/domain"
	"github.com/civicdata/incident-pipeline/internal/observability"
)

// CatalogClient issues the two read-only catalog queries.
type CatalogClient interface {
	ListPackages(ctx context.Context) ([]domain.DatasetID, error)
	ShowPackage(ctx context.Context, id domain.DatasetID) (domain.PackageMetadata, error)
}

// TableFetcher downloads a CSV resource and parses it into a table.
type TableFetcher interface {
	FetchTable(ctx context.Context, url string) (domain.Table, error)
}

// IncidentPublisher delivers filtered incident events to the report sink.
type IncidentPublisher interface {
	PublishIncidents(ctx context.Context, events []domain.IncidentEvent) error
}

// ArtifactStore persists intermediate and final outputs.
type ArtifactStore interface {
	EnsureDirs() error
	SaveJSON(name string, v any) (string, error)
	SaveTableCSV(name string, t domain.Table) (string, error)
	SaveMap(name string, points []domain.GeoPoint, zoom int) (string, error)
}

// Artifact file names, one per persisted pipeline output.
const (
	artifactPackageList     = "DatiGovIt.json"
	artifactFilteredList    = "DatiGovItFiltrati.json"
	artifactSelectedPackage = "DatiSelezionati.json"
	artifactTableCSV        = "output.csv"
	artifactIncidentsCSV    = "condizioni.csv"
	artifactMap             = "mappa_incidenti.html"
)

// Options are the run-scoped knobs for one analysis.
type Options struct {
	// Keyword filters the catalog listing. Empty matches everything.
	Keyword string

	// Dataset, when set, selects this identifier instead of the first
	// keyword match.
	Dataset domain.DatasetID

	// ResourceURL substitutes an externally supplied CSV URL when the
	// dataset declares no usable CSV resource.
	ResourceURL string

	Condition   string
	MinVehicles int

	// LatColumn/LonColumn override coordinate column resolution.
	LatColumn string
	LonColumn string

	MapZoom int
}

// Report is the outcome of one analysis run.
type Report struct {
	Dataset      domain.DatasetID `json:"dataset"`
	Matches      int              `json:"matches"`
	ResourceURL  string           `json:"resource_url"`
	Summary      domain.Summary   `json:"summary"`
	IncidentRows int              `json:"incident_rows"`
	Points       int              `json:"points"`
	Artifacts    []string         `json:"artifacts"`
	Published    int              `json:"published"`
}

// Pipeline wires the stages together.
type Pipeline struct {
	catalog   CatalogClient
	fetcher   TableFetcher
	publisher IncidentPublisher // nil when the report sink is disabled
	store     ArtifactStore
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
}

// New creates a Pipeline. publisher may be nil to disable publishing.
func New(catalog CatalogClient, fetcher TableFetcher, publisher IncidentPublisher, store ArtifactStore, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		catalog:   catalog,
		fetcher:   fetcher,
		publisher: publisher,
		store:     store,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once at least one analysis run has completed.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no analysis run has completed yet")
	}
	return nil
}

// Run executes one discovery-to-report analysis. Each stage either
// succeeds or returns a typed failure; no partial results cross a failed
// stage boundary.
func (p *Pipeline) Run(ctx context.Context, opts Options) (Report, error) {
	start := time.Now()
	p.metrics.AnalysisRunning.Set(1)
	defer p.metrics.AnalysisRunning.Set(0)

	report, err := p.run(ctx, opts)
	p.metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		p.metrics.AnalysisRuns.WithLabelValues("error").Inc()
		return Report{}, err
	}

	p.metrics.AnalysisRuns.WithLabelValues("success").Inc()
	p.ready.Store(true)
	p.logger.Info("analysis complete",
		"dataset", report.Dataset,
		"rows", report.Summary.Records,
		"incident_rows", report.IncidentRows,
		"points", report.Points,
		"published", report.Published,
		"duration", time.Since(start),
	)
	return report, nil
}

func (p *Pipeline) run(ctx context.Context, opts Options) (Report, error) {
	var report Report

	if err := p.store.EnsureDirs(); err != nil {
		return report, err
	}

	// Discovery: full listing, then keyword filter.
	ids, err := p.catalog.ListPackages(ctx)
	if err != nil {
		return report, fmt.Errorf("list packages: %w", err)
	}
	p.saveArtifact(&report, func() (string, error) {
		return p.store.SaveJSON(artifactPackageList, ids)
	})

	matches := domain.FilterByKeyword(ids, opts.Keyword)
	if len(matches) == 0 {
		return report, fmt.Errorf("keyword %q: %w", opts.Keyword, domain.ErrNoMatches)
	}
	report.Matches = len(matches)
	p.saveArtifact(&report, func() (string, error) {
		return p.store.SaveJSON(artifactFilteredList, matches)
	})

	report.Dataset = selectDataset(matches, opts.Dataset)
	p.logger.Info("dataset selected", "dataset", report.Dataset, "matches", len(matches))

	// Detail fetch and resource resolution.
	meta, err := p.catalog.ShowPackage(ctx, report.Dataset)
	if err != nil {
		return report, fmt.Errorf("show package %q: %w", report.Dataset, err)
	}
	p.saveArtifact(&report, func() (string, error) {
		return p.store.SaveJSON(artifactSelectedPackage, meta)
	})

	resourceURL, err := meta.FindCSVResource()
	if errors.Is(err, domain.ErrNoCSVResource) && opts.ResourceURL != "" {
		p.logger.Warn("no csv resource declared, using supplied url",
			"dataset", report.Dataset, "url", opts.ResourceURL)
		resourceURL = opts.ResourceURL
	} else if err != nil {
		return report, fmt.Errorf("dataset %q: %w", report.Dataset, err)
	}
	report.ResourceURL = resourceURL

	// Tabular load.
	table, err := p.fetcher.FetchTable(ctx, resourceURL)
	if err != nil {
		return report, fmt.Errorf("load table: %w", err)
	}
	p.saveArtifact(&report, func() (string, error) {
		return p.store.SaveTableCSV(artifactTableCSV, table)
	})

	report.Summary = domain.Summarize(table)

	// Incident filtering and reporting.
	filtered := domain.FilterConditions(table, opts.Condition, opts.MinVehicles)
	report.IncidentRows = filtered.NumRows()
	p.metrics.IncidentsMatched.Add(float64(filtered.NumRows()))
	p.saveArtifact(&report, func() (string, error) {
		return p.store.SaveTableCSV(artifactIncidentsCSV, filtered)
	})

	points := domain.LocatePoints(table, opts.LatColumn, opts.LonColumn)
	report.Points = len(points)
	p.metrics.PointsLocated.Add(float64(len(points)))
	if len(points) > 0 {
		p.saveArtifact(&report, func() (string, error) {
			return p.store.SaveMap(artifactMap, points, opts.MapZoom)
		})
	} else {
		p.logger.Info("no coordinate columns resolved, skipping map", "dataset", report.Dataset)
	}

	if p.publisher != nil && filtered.NumRows() > 0 {
		events := domain.IncidentEvents(string(report.Dataset), filtered)
		if err := p.publisher.PublishIncidents(ctx, events); err != nil {
			return report, fmt.Errorf("publish incidents: %w", err)
		}
		report.Published = len(events)
		p.metrics.IncidentsPublished.Add(float64(len(events)))
	}

	return report, nil
}

// saveArtifact records the path of a persisted artifact. Artifact failures
// are logged, not fatal: the analysis result matters more than its copies
// on disk.
func (p *Pipeline) saveArtifact(report *Report, save func() (string, error)) {
	path, err := save()
	if err != nil {
		p.logger.Warn("artifact save failed", "error", err)
		return
	}
	report.Artifacts = append(report.Artifacts, path)
}

// selectDataset picks the explicitly requested identifier when set,
// otherwise the first keyword match.
func selectDataset(matches []domain.DatasetID, requested domain.DatasetID) domain.DatasetID {
	if requested != "" {
		return requested
	}
	return matches[0]
}
