// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pdiddy/arxiv-digest/pkg/types"
)

// catalogHeader is the fixed column order of catalog.csv. Authors are a
// single semicolon-separated string within the cell.
var catalogHeader = []string{"id", "title", "authors", "abstract", "url", "published_at", "category"}

const authorSeparator = "; "

// WriteCatalog persists the catalog as CSV at path, preserving catalog order.
func WriteCatalog(path string, catalog types.Catalog) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating catalog: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(catalogHeader); err != nil {
		return fmt.Errorf("writing catalog header: %w", err)
	}
	for _, e := range catalog {
		record := []string{
			e.ID,
			e.Title,
			strings.Join(e.Authors, authorSeparator),
			e.Abstract,
			e.URL,
			e.PublishedAt.UTC().Format(time.RFC3339),
			e.Category,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing catalog row %s: %w", e.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing catalog: %w", err)
	}
	return f.Close()
}

// ReadCatalog loads a catalog.csv written by WriteCatalog, preserving row order.
func ReadCatalog(path string) (types.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(catalogHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("catalog %s has no header row", path)
	}
	if !equalHeader(records[0]) {
		return nil, fmt.Errorf("catalog %s has unexpected header %v", path, records[0])
	}

	catalog := make(types.Catalog, 0, len(records)-1)
	for _, rec := range records[1:] {
		entry := types.CatalogEntry{
			ID:       rec[0],
			Title:    rec[1],
			Abstract: rec[3],
			URL:      rec[4],
			Category: rec[6],
		}
		for _, a := range strings.Split(rec[2], ";") {
			if name := strings.TrimSpace(a); name != "" {
				entry.Authors = append(entry.Authors, name)
			}
		}
		if rec[5] != "" {
			t, err := time.Parse(time.RFC3339, rec[5])
			if err != nil {
				return nil, fmt.Errorf("catalog %s: bad published_at for %s: %w", path, rec[0], err)
			}
			entry.PublishedAt = t
		}
		catalog = append(catalog, entry)
	}
	return catalog, nil
}

func equalHeader(row []string) bool {
	if len(row) != len(catalogHeader) {
		return false
	}
	for i, col := range catalogHeader {
		if row[i] != col {
			return false
		}
	}
	return true
}
