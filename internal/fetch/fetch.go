// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch executes the resolved query against the arXiv API and
// normalizes the results into the run's paper catalog: pages are merged in
// pagination order, filtered to the publication window, deduplicated
// first-occurrence-wins, sorted, and capped at max_results.
package fetch

import (
	"context"
	"math"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/arxiv-digest/pkg/types"
)

// fetchCap bounds how many records a single run will pull from the API
// regardless of max_results.
const fetchCap = 2000

// Client fetches paginated arXiv results into a catalog.
type Client struct {
	http *http.Client
	cfg  types.FetchConfig
	log  zerolog.Logger
}

// NewClient returns a fetch client. Zero-value config fields fall back to
// the pipeline defaults.
func NewClient(httpClient *http.Client, cfg types.FetchConfig, log zerolog.Logger) *Client {
	def := types.DefaultPipelineConfig().Fetch
	if cfg.PageSize <= 0 {
		cfg.PageSize = def.PageSize
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = def.MaxConcurrency
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{http: httpClient, cfg: cfg, log: log}
}

// Meta reports fetch statistics persisted alongside the catalog.
type Meta struct {
	// SourceCount is the number of records returned by the API before
	// window filtering and dedup.
	SourceCount int `json:"source_count"`

	// WindowFilteredCount is the number of records inside the window
	// before dedup and capping.
	WindowFilteredCount int `json:"window_filtered_count"`

	// DuplicatesRemoved is the number of repeated ids dropped.
	DuplicatesRemoved int `json:"duplicates_removed"`
}

// Fetch runs the query and returns the normalized catalog. Pages are fetched
// with a bounded worker pool and reassembled in page order before any
// filtering, so concurrency is never observable in the output. A catalog
// with zero entries is an EmptyResultError; transient API failures surface
// as FetchError after bounded retries.
func (c *Client) Fetch(ctx context.Context, spec types.QuerySpec, now time.Time) (types.Catalog, Meta, error) {
	// Pull extra records to allow post-filtering by time window.
	fetchTarget := spec.MaxResults * 3
	if fetchTarget < spec.MaxResults {
		fetchTarget = spec.MaxResults
	}
	if fetchTarget > fetchCap {
		fetchTarget = fetchCap
	}

	pages := int(math.Ceil(float64(fetchTarget) / float64(c.cfg.PageSize)))
	all, err := c.fetchPages(ctx, spec.ResolvedQuery, pages, fetchTarget)
	if err != nil {
		return nil, Meta{}, &types.FetchError{Attempts: c.cfg.MaxAttempts, Err: err}
	}

	meta := Meta{SourceCount: len(all)}

	cutoff := now.Add(-time.Duration(spec.WindowDays) * 24 * time.Hour)
	var windowed []types.CatalogEntry
	for _, e := range all {
		if e.PublishedAt.IsZero() {
			continue
		}
		if !e.PublishedAt.Before(cutoff) {
			windowed = append(windowed, e)
		}
	}
	meta.WindowFilteredCount = len(windowed)

	deduped, removed := dedupeFirstWins(windowed)
	meta.DuplicatesRemoved = removed

	// Deterministic order: newest first, ties broken by id ascending.
	sort.Slice(deduped, func(i, j int) bool {
		if !deduped[i].PublishedAt.Equal(deduped[j].PublishedAt) {
			return deduped[i].PublishedAt.After(deduped[j].PublishedAt)
		}
		return deduped[i].ID < deduped[j].ID
	})

	if len(deduped) > spec.MaxResults {
		deduped = deduped[:spec.MaxResults]
	}

	if len(deduped) == 0 {
		return nil, meta, &types.EmptyResultError{Query: spec.ResolvedQuery, WindowDays: spec.WindowDays}
	}

	c.log.Info().
		Int("source_count", meta.SourceCount).
		Int("window_filtered", meta.WindowFilteredCount).
		Int("duplicates_removed", meta.DuplicatesRemoved).
		Int("catalog_size", len(deduped)).
		Msg("catalog fetched")

	return types.Catalog(deduped), meta, nil
}

// fetchPages retrieves up to pages pages concurrently (bounded by
// MaxConcurrency) and concatenates them in page order. Pages after the
// first short or empty page are discarded, matching the behavior of a
// serial paginated fetch.
func (c *Client) fetchPages(ctx context.Context, query string, pages, fetchTarget int) ([]types.CatalogEntry, error) {
	type pageResult struct {
		entries []types.CatalogEntry
		batch   int
		err     error
	}

	results := make([]pageResult, pages)
	indexes := make(chan int)

	var wg sync.WaitGroup
	workers := c.cfg.MaxConcurrency
	if workers > pages {
		workers = pages
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for page := range indexes {
				start := page * c.cfg.PageSize
				batch := c.cfg.PageSize
				if start+batch > fetchTarget {
					batch = fetchTarget - start
				}
				entries, err := c.fetchPage(ctx, query, start, batch)
				results[page] = pageResult{entries: entries, batch: batch, err: err}
			}
		}()
	}

	for page := 0; page < pages; page++ {
		indexes <- page
	}
	close(indexes)
	wg.Wait()

	var all []types.CatalogEntry
	for page := 0; page < pages; page++ {
		r := results[page]
		if r.err != nil {
			return nil, r.err
		}
		all = append(all, r.entries...)
		if len(r.entries) < r.batch {
			break
		}
	}
	return all, nil
}

// dedupeFirstWins drops repeated ids, keeping the first occurrence:
// pagination order is authoritative.
func dedupeFirstWins(entries []types.CatalogEntry) ([]types.CatalogEntry, int) {
	seen := make(map[string]bool, len(entries))
	var deduped []types.CatalogEntry
	removed := 0
	for _, e := range entries {
		if seen[e.ID] {
			removed++
			continue
		}
		seen[e.ID] = true
		deduped = append(deduped, e)
	}
	return deduped, removed
}
