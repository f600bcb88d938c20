// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chunk partitions the catalog into fixed-size batches for staged
// synthesis. Partitioning is purely structural: it never drops, reorders,
// or duplicates entries, and re-running on an unchanged catalog produces
// byte-identical artifacts.
package chunk

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/arxiv-digest/internal/run"
	"github.com/pdiddy/arxiv-digest/pkg/types"
)

// DefaultChunkSize is the number of catalog entries per chunk.
const DefaultChunkSize = 30

// Count returns ceil(entries / chunkSize).
func Count(entries, chunkSize int) int {
	if entries <= 0 {
		return 0
	}
	return (entries + chunkSize - 1) / chunkSize
}

// InputName returns the chunk input file name for a chunk id.
func InputName(chunkID int) string {
	return fmt.Sprintf("chunk_%03d.md", chunkID)
}

// SummaryName returns the expected summary file name for a chunk id. Inputs
// and summaries pair one-to-one by chunk id.
func SummaryName(chunkID int) string {
	return InputName(chunkID)
}

// Partition splits the catalog into contiguous chunks of chunkSize entries
// (chunk 0 holds entries [0, chunkSize)), writes one synthesis-ready input
// document per chunk plus the static merge instructions, and persists the
// chunk manifest. Nothing is written for an empty catalog.
func Partition(dir run.Dir, catalog types.Catalog, topic string, chunkSize int) (types.ChunkManifest, error) {
	if chunkSize <= 0 {
		return types.ChunkManifest{}, fmt.Errorf("%w: chunk size must be > 0, got %d", types.ErrInvalidInput, chunkSize)
	}
	if len(catalog) == 0 {
		return types.ChunkManifest{}, &types.EmptyCatalogError{Path: dir.CatalogPath()}
	}

	for _, d := range []string{dir.ChunkInputsDir(), dir.ChunkSummariesDir()} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return types.ChunkManifest{}, fmt.Errorf("creating %s: %w", d, err)
		}
	}

	count := Count(len(catalog), chunkSize)
	manifest := types.ChunkManifest{
		ChunkSize:  chunkSize,
		ChunkCount: count,
		Chunks:     make([]types.ChunkRef, 0, count),
	}

	for chunkID := 0; chunkID < count; chunkID++ {
		lo := chunkID * chunkSize
		hi := lo + chunkSize
		if hi > len(catalog) {
			hi = len(catalog)
		}
		entries := catalog[lo:hi]

		inputRel := filepath.Join(run.RecursiveDirName, run.ChunkInputsDirName, InputName(chunkID))
		input := renderChunkInput(topic, chunkID, count, lo, entries)
		if err := os.WriteFile(dir.Resolve(inputRel), []byte(input), 0o644); err != nil {
			return types.ChunkManifest{}, fmt.Errorf("writing chunk input %d: %w", chunkID, err)
		}

		manifest.Chunks = append(manifest.Chunks, types.ChunkRef{
			ChunkID:   chunkID,
			EntryIDs:  types.Catalog(entries).IDs(),
			InputPath: inputRel,
			// SummaryPath stays empty until the summary is recorded.
		})
	}

	if err := os.WriteFile(dir.MergeInstructionsPath(), []byte(mergeInstructions), 0o644); err != nil {
		return types.ChunkManifest{}, fmt.Errorf("writing merge instructions: %w", err)
	}

	if err := WriteManifest(dir.ChunkManifestPath(), manifest); err != nil {
		return types.ChunkManifest{}, err
	}
	return manifest, nil
}

// WriteManifest persists the chunk manifest. The encoding carries no
// timestamps, so identical partitions produce byte-identical files.
func WriteManifest(path string, m types.ChunkManifest) error {
	return run.WriteJSON(path, m)
}

// ReadManifest loads a chunk manifest written by WriteManifest.
func ReadManifest(path string) (types.ChunkManifest, error) {
	var m types.ChunkManifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("reading chunk manifest: %w", err)
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parsing chunk manifest %s: %w", path, err)
	}
	return m, nil
}

// renderChunkInput produces the synthesis-ready document for one chunk.
// Paper numbering is global across chunks (1-based) so citations stay
// unambiguous when summaries are merged.
func renderChunkInput(topic string, chunkID, chunkCount, offset int, entries []types.CatalogEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Recursive Chunk %d/%d\n\n", chunkID+1, chunkCount)
	fmt.Fprintf(&b, "- Topic: %s\n", topic)
	fmt.Fprintf(&b, "- Global paper range: %d-%d\n", offset+1, offset+len(entries))
	fmt.Fprintf(&b, "- Papers in this chunk: %d\n", len(entries))
	fmt.Fprintf(&b, "- Date range in this chunk: %s\n\n", dateRangeLabel(entries))

	b.WriteString(chunkTaskText)
	b.WriteString("\n## Paper Data\n\n")

	for i, e := range entries {
		writePaperBlock(&b, offset+1+i, e)
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func writePaperBlock(b *strings.Builder, globalIdx int, e types.CatalogEntry) {
	fmt.Fprintf(b, "### Paper %d\n", globalIdx)
	fmt.Fprintf(b, "- Title: %s\n", orNA(e.Title))
	fmt.Fprintf(b, "- URL: %s\n", orNA(e.URL))
	fmt.Fprintf(b, "- Published: %s\n", dayLabel(e.PublishedAt))
	fmt.Fprintf(b, "- Primary Category: %s\n", orNA(e.Category))
	fmt.Fprintf(b, "- Authors: %s\n", orNA(strings.Join(e.Authors, ", ")))
	fmt.Fprintf(b, "- Abstract: %s\n\n", orNA(e.Abstract))
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func dayLabel(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.UTC().Format("2006-01-02")
}

// dateRangeLabel formats the publication span of a chunk's entries.
func dateRangeLabel(entries []types.CatalogEntry) string {
	first, last := types.Catalog(entries).DateRange()
	if first.IsZero() {
		return "N/A"
	}
	lo, hi := dayLabel(first), dayLabel(last)
	if lo == hi {
		return lo
	}
	return lo + " to " + hi
}

// chunkTaskText describes the expected summary structure for one chunk.
const chunkTaskText = `## Task

Summarize this chunk only. Keep it information-dense and explanatory.
Do not try to summarize all papers one by one.
Avoid one-line bullets; each key point should include mechanism, evidence, and implication.

## Required Output Format

## Key Research Themes
- 3-5 themes in a numbered list (1., 2., 3., ...).
- For each theme, start with ` + "`**<theme keyword>:**`" + ` and write a short paragraph (4-7 sentences).
- Include representative evidence citations (title + URL).

## Methodological Approaches
- 3-5 approaches in a numbered list (1., 2., 3., ...).
- For each approach, describe mechanism, strengths, and tradeoffs in a paragraph (4-7 sentences).
- Include at least one caveat or failure mode per approach.

## Notable Papers to Read First
- 4-6 bullets using compact link labels.
- Each bullet should be 2-4 sentences total (summary + why read first + practical caveat/use-case).

## What Is New in This Window
- 3-5 substantial bullets describing shifts or emerging patterns.
- Each bullet should include a 'then vs now' contrast and evidence citation(s).

## Challenges and Future Directions
- 4-6 numbered items.
- Each item should include bottleneck, evidence, and plausible near-term direction (2-4 sentences).

## Chunk Concluding Overview
- 2 short paragraphs (8-12 sentences total).
- Include practical takeaway: what to read first and why.
`

// mergeInstructions is the fixed combination policy for downstream
// summaries. It is deliberately static: the same text for every run,
// independent of catalog contents.
const mergeInstructions = `# Recursive Merge Instructions

## Step 1: Summarize each chunk

For each chunk input in ` + "`chunk_inputs/`" + `, create a summary file with the
same name in ` + "`chunk_summaries/`" + `. The shared name preserves the pairing
between input and summary.

## Step 2: Merge chunk summaries into final analysis

Read all files in ` + "`chunk_summaries/`" + ` and write a consolidated ` + "`analysis.md`" + `
in the run directory. The merge must deduplicate repeated points and
repeated papers: when several chunks cite the same paper, keep the first
section that presents it as notable and drop the citation from later
duplicate mentions unless it is essential to that section's argument.
Merge for depth: preserve explanatory detail from chunk summaries; do not
collapse to one-liners.

Use this exact final structure:

## Key Research Themes
## Methodological Approaches
## Notable Papers to Read First
## What Is New in This Window
## Challenges and Future Directions
## Concluding Overview

Merge quality rules:
- Prefer consensus patterns that appear across multiple chunks.
- Keep citations concise using compact markdown labels linked to arXiv URLs.
- Avoid numeric ranking formulas and paper scores.
- Keep the writeup educational and readable for non-experts.
- Ensure each major section has substantive prose (not just short bullets).
- In Key Research Themes and Methodological Approaches, use numbered lists with bold keyword leads.
- Include mechanism + evidence + implication in major claims.
- For large runs (100+ papers), target a final analysis in the 1,500-3,000 word range.
`
