// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "arxiv-digest/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig holds settings for the catalog fetch stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// PageSize is the number of entries requested per arXiv API page (default 200).
	PageSize int `json:"page_size" yaml:"page_size"`

	// MaxConcurrency bounds the worker pool issuing page requests (default 4).
	// Page order is restored before dedup and sort, so concurrency is never
	// observable in the persisted catalog.
	MaxConcurrency int `json:"max_concurrency" yaml:"max_concurrency"`

	// MaxAttempts is the total number of tries per page request, including
	// the first (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`
}

// ChunkConfig holds settings for the partitioning stage.
type ChunkConfig struct {
	// ChunkSize is the number of catalog entries per chunk (default 30).
	ChunkSize int `json:"chunk_size" yaml:"chunk_size"`
}

// ReportConfig holds settings for report composition and export.
type ReportConfig struct {
	// Style is the prose style preset named in the report metadata
	// (default "academic formal").
	Style string `json:"style" yaml:"style"`

	// IncludeAppendix appends the quick-index table and per-paper appendix.
	IncludeAppendix bool `json:"include_appendix" yaml:"include_appendix"`
}

// HistoryConfig holds settings for the run history index.
type HistoryConfig struct {
	// Enabled controls whether runs are recorded in the SQLite index.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// DBPath is the SQLite database location (default "outputs/history.db").
	DBPath string `json:"db_path" yaml:"db_path"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Fetch   FetchConfig   `json:"fetch" yaml:"fetch"`
	Chunk   ChunkConfig   `json:"chunk" yaml:"chunk"`
	Report  ReportConfig  `json:"report" yaml:"report"`
	History HistoryConfig `json:"history" yaml:"history"`
}

// DefaultPipelineConfig returns the pipeline defaults used when no config
// file overrides them.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Fetch: FetchConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   30 * time.Second,
				UserAgent: "arxiv-digest/0.1",
			},
			PageSize:       200,
			MaxConcurrency: 4,
			MaxAttempts:    3,
		},
		Chunk: ChunkConfig{
			ChunkSize: 30,
		},
		Report: ReportConfig{
			Style: "academic formal",
		},
		History: HistoryConfig{
			Enabled: true,
			DBPath:  "outputs/history.db",
		},
	}
}
