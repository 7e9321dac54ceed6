// Package ckan implements the catalog client against a CKAN-style
// open-data API.
package ckan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/civicdata/incident-pipeline/internal/domain"
	"github.com/civicdata/incident-pipeline/internal/observability"
)

// Endpoint names, used as URL path segments and metric labels.
const (
	endpointList = "package_list"
	endpointShow = "package_show"
)

// StatusError reports a non-2xx response from the catalog.
type StatusError struct {
	Endpoint string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog %s: unexpected status %d", e.Endpoint, e.Code)
}

// Client issues read-only queries against the catalog API. One request per
// operation; a failed call ends that operation with no retry.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a catalog client. baseURL is the CKAN action API root,
// e.g. "https://dati.gov.it/opendata/api/3/action".
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// ListPackages retrieves every dataset identifier known to the catalog.
func (c *Client) ListPackages(ctx context.Context) ([]domain.DatasetID, error) {
	var resp listResponse
	if err := c.doGet(ctx, endpointList, c.baseURL+"/"+endpointList, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("catalog %s: api reported failure", endpointList)
	}

	ids := make([]domain.DatasetID, len(resp.Result))
	for i, name := range resp.Result {
		ids[i] = domain.DatasetID(name)
	}
	return ids, nil
}

// ShowPackage retrieves one dataset's full metadata.
func (c *Client) ShowPackage(ctx context.Context, id domain.DatasetID) (domain.PackageMetadata, error) {
	fullURL := fmt.Sprintf("%s/%s?id=%s", c.baseURL, endpointShow, url.QueryEscape(string(id)))

	var resp showResponse
	if err := c.doGet(ctx, endpointShow, fullURL, &resp); err != nil {
		return domain.PackageMetadata{}, err
	}
	if !resp.Success {
		return domain.PackageMetadata{}, fmt.Errorf("catalog %s: api reported failure for %q", endpointShow, id)
	}

	meta := domain.PackageMetadata{
		ID:        resp.Result.ID,
		Name:      resp.Result.Name,
		Title:     resp.Result.Title,
		Notes:     resp.Result.Notes,
		Resources: make([]domain.Resource, len(resp.Result.Resources)),
	}
	for i, r := range resp.Result.Resources {
		meta.Resources[i] = domain.Resource{
			Name:        r.Name,
			Description: r.Description,
			Format:      r.Format,
			URL:         r.URL,
		}
	}
	return meta, nil
}

func (c *Client) doGet(ctx context.Context, endpoint, fullURL string, out any) error {
	start := time.Now()
	err := c.fetchJSON(ctx, endpoint, fullURL, out)
	c.metrics.CatalogRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.CatalogRequests.WithLabelValues(endpoint, "error").Inc()
		return err
	}
	c.metrics.CatalogRequests.WithLabelValues(endpoint, "success").Inc()
	return nil
}

func (c *Client) fetchJSON(ctx context.Context, endpoint, fullURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("catalog %s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain for connection reuse
		return &StatusError{Endpoint: endpoint, Code: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("catalog %s: decode response: %w", endpoint, err)
	}
	return nil
}

// CKAN API response types.

type listResponse struct {
	Success bool     `json:"success"`
	Result  []string `json:"result"`
}

type showResponse struct {
	Success bool          `json:"success"`
	Result  packageResult `json:"result"`
}

type packageResult struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Title     string            `json:"title"`
	Notes     string            `json:"notes"`
	Resources []resourcePayload `json:"resources"`
}

type resourcePayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Format      string `json:"format"`
	URL         string `json:"url"`
}
