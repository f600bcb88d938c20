// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ChunkRef describes one contiguous partition of the catalog.
type ChunkRef struct {
	// ChunkID is the zero-based chunk index; chunk 0 holds catalog
	// entries [0, chunk_size).
	ChunkID int `json:"chunk_id"`

	// EntryIDs lists the catalog ids assigned to this chunk, preserving
	// catalog order. Chunks partition the catalog without overlap.
	EntryIDs []string `json:"entry_ids"`

	// InputPath is the run-dir-relative path of the synthesis-ready
	// chunk input document.
	InputPath string `json:"input_path"`

	// SummaryPath is the run-dir-relative path of the externally produced
	// chunk summary. Empty until the summary has been recorded; recording
	// it is the only permitted manifest mutation.
	SummaryPath string `json:"summary_path"`
}

// ChunkManifest describes how a catalog was partitioned for staged synthesis.
type ChunkManifest struct {
	ChunkSize  int        `json:"chunk_size"`
	ChunkCount int        `json:"chunk_count"`
	Chunks     []ChunkRef `json:"chunks"`
}

// MissingSummaries returns the chunk ids that have no recorded summary,
// in chunk order.
func (m ChunkManifest) MissingSummaries() []int {
	var missing []int
	for _, c := range m.Chunks {
		if c.SummaryPath == "" {
			missing = append(missing, c.ChunkID)
		}
	}
	return missing
}
