// Package artifact persists the pipeline's intermediate and final outputs:
// catalog listings as JSON, loaded and filtered tables as CSV, and the
// incident map as a self-contained HTML page.
package artifact

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/civicdata/incident-pipeline/internal/domain"
)

// Store writes artifacts under a data directory (catalog JSON) and an
// output directory (tables, map).
type Store struct {
	dataDir   string
	outputDir string
	logger    *slog.Logger
}

// NewStore creates an artifact store rooted at the two directories.
func NewStore(dataDir, outputDir string, logger *slog.Logger) *Store {
	return &Store{dataDir: dataDir, outputDir: outputDir, logger: logger}
}

// EnsureDirs creates the data and output directories if absent.
func (s *Store) EnsureDirs() error {
	for _, dir := range []string{s.dataDir, s.outputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// SaveJSON writes v as indented JSON into the data directory and returns
// the file path.
func (s *Store) SaveJSON(name string, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", name, err)
	}

	path := filepath.Join(s.dataDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	s.logger.Info("artifact saved", "path", path)
	return path, nil
}

// SaveTableCSV writes a table into the output directory and returns the
// file path.
func (s *Store) SaveTableCSV(name string, t domain.Table) (string, error) {
	path := filepath.Join(s.outputDir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	defer f.Close()

	if err := t.WriteCSV(f); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	s.logger.Info("artifact saved", "path", path, "rows", t.NumRows())
	return path, nil
}
