// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package merge coordinates the hand-off around the external synthesis step.
// The text combination itself is delegated to an external capability; this
// package owns the engineering contract: detect that every chunk has been
// summarized, expose the canonical id-to-citation mapping used for dedup,
// and validate that the merged analysis cites only real catalog entries.
package merge

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/arxiv-digest/internal/chunk"
	"github.com/pdiddy/arxiv-digest/internal/run"
	"github.com/pdiddy/arxiv-digest/pkg/types"
)

// arxivCitationRE matches markdown links to arXiv abstract pages and
// captures the paper id.
var arxivCitationRE = regexp.MustCompile(`\]\(https?://(?:www\.)?arxiv\.org/abs/([^)\s]+)\)`)

// Scan checks the chunk summaries directory for externally produced
// summaries and records their paths in the manifest. Recording summary_path
// is the manifest's only permitted mutation; the updated manifest is
// persisted when anything changed. It returns the number of newly recorded
// summaries.
func Scan(dir run.Dir, m *types.ChunkManifest) (int, error) {
	recorded := 0
	for i := range m.Chunks {
		if m.Chunks[i].SummaryPath != "" {
			continue
		}
		rel := filepath.Join(run.RecursiveDirName, run.ChunkSummariesDirName, chunk.SummaryName(m.Chunks[i].ChunkID))
		info, err := os.Stat(dir.Resolve(rel))
		if err != nil || info.Size() == 0 {
			continue
		}
		m.Chunks[i].SummaryPath = rel
		recorded++
	}
	if recorded > 0 {
		if err := chunk.WriteManifest(dir.ChunkManifestPath(), *m); err != nil {
			return recorded, fmt.Errorf("recording summaries: %w", err)
		}
	}
	return recorded, nil
}

// CheckComplete verifies every chunk has a recorded summary. The merge must
// not be attempted while chunks are missing.
func CheckComplete(m types.ChunkManifest) error {
	if missing := m.MissingSummaries(); len(missing) > 0 {
		return &types.IncompleteChunksError{Missing: missing}
	}
	return nil
}

// CitationIndex returns the canonical id-to-citation mapping for the
// catalog. Duplicate detection across chunk summaries keys on the catalog
// id, never on the surface text of a citation.
func CitationIndex(catalog types.Catalog) map[string]string {
	index := make(map[string]string, len(catalog))
	for _, e := range catalog {
		index[e.ID] = fmt.Sprintf("[%s](%s)", CompactLabel(e.Title), e.URL)
	}
	return index
}

// ValidateCitations extracts every arXiv id cited in the analysis document
// and checks it against the catalog. Unknown ids produce a
// DanglingCitationError listing them; the error is warning-level, the
// analysis is not modified and the citations are not dropped.
func ValidateCitations(analysis string, catalog types.Catalog) error {
	known := make(map[string]bool, len(catalog))
	for _, e := range catalog {
		known[e.ID] = true
	}

	seen := make(map[string]bool)
	var dangling []string
	for _, id := range CitedIDs(analysis) {
		if !known[id] && !seen[id] {
			seen[id] = true
			dangling = append(dangling, id)
		}
	}
	if len(dangling) > 0 {
		sort.Strings(dangling)
		return &types.DanglingCitationError{IDs: dangling}
	}
	return nil
}

// CitedIDs returns the arXiv ids cited via markdown links in text, in
// order of appearance, with version suffixes stripped.
func CitedIDs(text string) []string {
	var ids []string
	for _, m := range arxivCitationRE.FindAllStringSubmatch(text, -1) {
		ids = append(ids, stripVersion(m[1]))
	}
	return ids
}

func stripVersion(id string) string {
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			return id[:vIdx]
		}
	}
	return id
}

var labelStopwords = map[string]bool{
	"a": true, "an": true, "and": true, "as": true, "at": true, "by": true,
	"for": true, "from": true, "in": true, "into": true, "is": true,
	"of": true, "on": true, "or": true, "the": true, "to": true,
	"towards": true, "via": true, "with": true, "when": true, "what": true,
	"how": true, "why": true,
}

var (
	labelWordRE    = regexp.MustCompile(`[A-Za-z0-9\-]+`)
	acronymRE      = regexp.MustCompile(`^[A-Z][A-Z0-9\-]{1,14}$`)
	parenAcronymRE = regexp.MustCompile(`\(([A-Z][A-Z0-9\-]{1,12})\)`)
)

// CompactLabel shortens a paper title into a citation label: a leading or
// parenthetical acronym when present, otherwise the first significant words.
func CompactLabel(title string) string {
	clean := strings.TrimSpace(title)
	if len(clean) <= 20 {
		return clean
	}

	words := labelWordRE.FindAllString(clean, -1)
	if len(words) > 0 && acronymRE.MatchString(words[0]) {
		return words[0]
	}
	if m := parenAcronymRE.FindStringSubmatch(clean); m != nil {
		return m[1]
	}

	if idx := strings.Index(clean, ":"); idx > 0 {
		if label := compactPhrase(clean[:idx]); len(label) >= 3 && len(label) <= 34 {
			return label
		}
	}
	if label := compactPhrase(clean); len(label) >= 3 && len(label) <= 34 {
		return label
	}
	return strings.TrimSpace(clean[:34])
}

// compactPhrase keeps the first two significant words of text.
func compactPhrase(text string) string {
	words := labelWordRE.FindAllString(text, -1)
	var significant []string
	for _, w := range words {
		if !labelStopwords[strings.ToLower(w)] {
			significant = append(significant, w)
		}
	}
	if len(significant) == 0 {
		significant = words
	}
	if len(significant) > 2 {
		significant = significant[:2]
	}
	return strings.TrimSpace(strings.Join(significant, " "))
}
