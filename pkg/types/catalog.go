// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// CatalogEntry is one normalized paper record in the catalog.
type CatalogEntry struct {
	// ID is the stable arXiv identifier (e.g. "2301.07041"), unique within a catalog.
	ID string `json:"id"`

	// Title is the paper title with whitespace collapsed.
	Title string `json:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors"`

	// Abstract is the paper abstract with whitespace collapsed.
	Abstract string `json:"abstract"`

	// URL is the arXiv abstract page for the paper.
	URL string `json:"url"`

	// PublishedAt is the submission timestamp reported by arXiv.
	PublishedAt time.Time `json:"published_at"`

	// Category is the primary arXiv category (e.g. "cs.CL").
	Category string `json:"category"`
}

// Catalog is the deduplicated, sorted, size-capped sequence of paper records
// for one run. Order is published_at descending, ties broken by id ascending.
type Catalog []CatalogEntry

// IDs returns the entry identifiers in catalog order.
func (c Catalog) IDs() []string {
	ids := make([]string, len(c))
	for i, e := range c {
		ids[i] = e.ID
	}
	return ids
}

// DateRange returns the earliest and latest publication timestamps in the
// catalog. Both are zero when the catalog is empty.
func (c Catalog) DateRange() (first, last time.Time) {
	for _, e := range c {
		if e.PublishedAt.IsZero() {
			continue
		}
		if first.IsZero() || e.PublishedAt.Before(first) {
			first = e.PublishedAt
		}
		if last.IsZero() || e.PublishedAt.After(last) {
			last = e.PublishedAt
		}
	}
	return first, last
}
