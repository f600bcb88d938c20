// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the arxiv-digest pipeline:
// the query descriptor, the paper catalog, the chunk manifest, and the error
// taxonomy handed between stages.
package types

import "time"

// Strictness controls how tightly the generated query constrains keywords.
type Strictness string

const (
	// StrictnessBroad ORs up to twelve keywords for maximum recall.
	StrictnessBroad Strictness = "broad"

	// StrictnessNormal ORs up to eight keywords.
	StrictnessNormal Strictness = "normal"

	// StrictnessFocused requires the two leading keywords and ORs the rest.
	StrictnessFocused Strictness = "focused"
)

// Valid reports whether s is a recognized strictness level.
func (s Strictness) Valid() bool {
	switch s {
	case StrictnessBroad, StrictnessNormal, StrictnessFocused:
		return true
	}
	return false
}

// QuerySpec is the persisted descriptor of one run's search query. It is
// written once to query.json and never mutated afterwards.
type QuerySpec struct {
	// RawInterest is the plain-language interest text the user provided.
	RawInterest string `json:"raw_interest" yaml:"raw_interest"`

	// ResolvedQuery is the arXiv search expression derived from the interest
	// (or the manual override passed through unchanged).
	ResolvedQuery string `json:"resolved_query" yaml:"resolved_query"`

	// Strictness records the keyword-clause strictness used to build the query.
	Strictness Strictness `json:"strictness" yaml:"strictness"`

	// WindowDays is the publication-date lookback window.
	WindowDays int `json:"window_days" yaml:"window_days"`

	// MaxResults caps the catalog size.
	MaxResults int `json:"max_results" yaml:"max_results"`

	// Categories lists the arXiv categories constraining the query, if any.
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`

	// Keywords lists the extracted and expanded keywords, in extraction order.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`

	// Notes records human-readable decisions made while building the query.
	Notes []string `json:"notes,omitempty" yaml:"notes,omitempty"`

	// CreatedAt is the build timestamp.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
