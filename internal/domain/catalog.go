package domain

import (
	"errors"
	"strings"
)

// DatasetID names one catalog entry. Opaque; produced by the catalog's
// package_list endpoint.
type DatasetID string

// Resource is one downloadable file attached to a dataset.
type Resource struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Format      string `json:"format"`
	URL         string `json:"url"`
}

// PackageMetadata is a dataset's catalog record, typed at the client
// boundary so nothing downstream handles raw JSON maps.
type PackageMetadata struct {
	ID        string     `json:"id,omitempty"`
	Name      string     `json:"name"`
	Title     string     `json:"title,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	Resources []Resource `json:"resources"`
}

// ErrNoMatches reports that a keyword matched no dataset identifiers.
var ErrNoMatches = errors.New("no datasets match keyword")

// ErrNoCSVResource reports that a dataset declares no usable CSV resource.
var ErrNoCSVResource = errors.New("no csv resource found")

// FilterByKeyword returns the identifiers containing keyword as a
// case-insensitive substring, preserving input order. An empty keyword
// matches everything. Zero matches is the caller's error condition, not
// this function's.
func FilterByKeyword(ids []DatasetID, keyword string) []DatasetID {
	keyword = strings.ToLower(keyword)
	matches := make([]DatasetID, 0, len(ids))
	for _, id := range ids {
		if strings.Contains(strings.ToLower(string(id)), keyword) {
			matches = append(matches, id)
		}
	}
	return matches
}

// FindCSVResource returns the URL of the first resource declared as CSV
// whose URL also looks like a CSV payload: it ends with ".csv" or carries
// the accessType=DOWNLOAD marker used by some portals. Declaration order is
// significant; the first qualifying resource wins. Returns ErrNoCSVResource
// when nothing qualifies, in which case the caller may substitute an
// externally supplied URL.
func (m PackageMetadata) FindCSVResource() (string, error) {
	for _, r := range m.Resources {
		if isCSVResource(r) {
			return r.URL, nil
		}
	}
	return "", ErrNoCSVResource
}

// isCSVResource applies the conjunctive format-and-URL-shape check. A
// declared CSV format alone is not enough: portals routinely mislabel HTML
// landing pages as CSV.
func isCSVResource(r Resource) bool {
	if r.Format != "CSV" {
		return false
	}
	return strings.HasSuffix(r.URL, ".csv") || strings.Contains(r.URL, "accessType=DOWNLOAD")
}
