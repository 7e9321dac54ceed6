// Command analyze runs one open-data incident analysis: it discovers
// datasets on the configured CKAN catalog by keyword, resolves and downloads
// the selected dataset's CSV resource, filters high-severity traffic
// incidents, and writes the table, report, and map artifacts. Filtered
// incidents are optionally published to a Kafka report sink.
//
// Usage:
//
//	analyze -keyword incidenti [-dataset id] [-url csv-url] \
//	  [-condition Intenso] [-min-vehicles 2] [-lat-col Latitudine] [-lon-col Longitudine] [-hold]
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/civicdata/incident-pipeline/internal/adapter/ckan"
	"github.com/civicdata/incident-pipeline/internal/adapter/dataset"
	"github.com/civicdata/incident-pipeline/internal/adapter/httpserver"
	kafkaadapter "github.com/civicdata/incident-pipeline/internal/adapter/kafka"
	"github.com/civicdata/incident-pipeline/internal/artifact"
	"github.com/civicdata/incident-pipeline/internal/config"
	"github.com/civicdata/incident-pipeline/internal/domain"
	"github.com/civicdata/incident-pipeline/internal/observability"
	"github.com/civicdata/incident-pipeline/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		slog.Error("analysis failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	keyword := flag.String("keyword", "incidenti", "keyword to filter dataset identifiers")
	datasetID := flag.String("dataset", "", "dataset identifier to analyze (default: first keyword match)")
	resourceURL := flag.String("url", "", "CSV url to use when the dataset declares no usable CSV resource")
	condition := flag.String("condition", domain.DefaultTrafficCondition, "traffic condition to keep")
	minVehicles := flag.Int("min-vehicles", domain.DefaultMinVehicles, "keep rows with strictly more vehicles than this")
	latCol := flag.String("lat-col", "", "latitude column (default: alias search)")
	lonCol := flag.String("lon-col", "", "longitude column (default: alias search)")
	hold := flag.Bool("hold", false, "keep serving /metrics after the run until interrupted")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	catalog := ckan.NewClient(cfg.CKANBaseURL, cfg.HTTPTimeout, metrics, logger)
	loader := dataset.NewLoader(cfg.HTTPTimeout, metrics, logger)
	store := artifact.NewStore(cfg.DataDir, cfg.OutputDir, logger)

	// The report sink is feature-flagged via KAFKA_BROKERS / KAFKA_ENABLED.
	var publisher pipeline.IncidentPublisher
	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		publisher = writer
		logger.Info("report sink enabled", "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("report sink disabled")
	}

	p := pipeline.New(catalog, loader, publisher, store, logger, metrics)
	srv := httpserver.NewServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Ambient observability listener; never touches pipeline data.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}()

	opts := pipeline.Options{
		Keyword:     *keyword,
		Dataset:     domain.DatasetID(*datasetID),
		ResourceURL: *resourceURL,
		Condition:   *condition,
		MinVehicles: *minVehicles,
		LatColumn:   *latCol,
		LonColumn:   *lonCol,
		MapZoom:     cfg.MapZoom,
	}

	if _, err := p.Run(ctx, opts); err != nil {
		return err
	}

	if *hold {
		logger.Info("holding for metrics scrapes, interrupt to exit")
		<-ctx.Done()
	}
	return nil
}
