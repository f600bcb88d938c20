// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package merge

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/arxiv-digest/internal/chunk"
	"github.com/pdiddy/arxiv-digest/internal/run"
	"github.com/pdiddy/arxiv-digest/pkg/types"
)

func preparedRun(t *testing.T, papers int, chunkSize int) (run.Dir, types.ChunkManifest) {
	t.Helper()

	dir, err := run.New(t.TempDir(), "merge test", time.Now())
	require.NoError(t, err)

	catalog := make(types.Catalog, papers)
	base := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	for i := range catalog {
		catalog[i] = types.CatalogEntry{
			ID:          fmt.Sprintf("2602.%05d", i),
			Title:       fmt.Sprintf("Paper %d", i),
			URL:         fmt.Sprintf("https://arxiv.org/abs/2602.%05d", i),
			PublishedAt: base.Add(-time.Duration(i) * time.Hour),
		}
	}

	manifest, err := chunk.Partition(dir, catalog, "merge test", chunkSize)
	require.NoError(t, err)
	return dir, manifest
}

func writeSummary(t *testing.T, dir run.Dir, chunkID int, content string) {
	t.Helper()
	path := filepath.Join(dir.ChunkSummariesDir(), chunk.SummaryName(chunkID))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScan_RecordsCompletedSummaries(t *testing.T) {
	dir, manifest := preparedRun(t, 5, 2)
	require.Equal(t, 3, manifest.ChunkCount)

	writeSummary(t, dir, 0, "## Key Research Themes\n\nchunk zero summary\n")
	writeSummary(t, dir, 2, "## Key Research Themes\n\nchunk two summary\n")

	recorded, err := Scan(dir, &manifest)
	require.NoError(t, err)
	assert.Equal(t, 2, recorded)

	assert.NotEmpty(t, manifest.Chunks[0].SummaryPath)
	assert.Empty(t, manifest.Chunks[1].SummaryPath)
	assert.NotEmpty(t, manifest.Chunks[2].SummaryPath)

	// The recording is persisted.
	reloaded, err := chunk.ReadManifest(dir.ChunkManifestPath())
	require.NoError(t, err)
	assert.Equal(t, manifest, reloaded)

	// A second scan records nothing new.
	recorded, err = Scan(dir, &manifest)
	require.NoError(t, err)
	assert.Zero(t, recorded)
}

func TestScan_IgnoresEmptySummaryFiles(t *testing.T) {
	dir, manifest := preparedRun(t, 4, 2)

	writeSummary(t, dir, 0, "")

	recorded, err := Scan(dir, &manifest)
	require.NoError(t, err)
	assert.Zero(t, recorded)
	assert.Empty(t, manifest.Chunks[0].SummaryPath)
}

func TestCheckComplete(t *testing.T) {
	dir, manifest := preparedRun(t, 5, 2)

	err := CheckComplete(manifest)
	require.Error(t, err)

	var incomplete *types.IncompleteChunksError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, []int{0, 1, 2}, incomplete.Missing)
	assert.ErrorIs(t, err, types.ErrInconsistent)

	for i := 0; i < 3; i++ {
		writeSummary(t, dir, i, "summary\n")
	}
	_, err = Scan(dir, &manifest)
	require.NoError(t, err)
	assert.NoError(t, CheckComplete(manifest))
}

func TestValidateCitations_AllKnown(t *testing.T) {
	catalog := types.Catalog{
		{ID: "2602.00001", Title: "First", URL: "https://arxiv.org/abs/2602.00001"},
		{ID: "2602.00002", Title: "Second", URL: "https://arxiv.org/abs/2602.00002"},
	}
	analysis := "See [First](https://arxiv.org/abs/2602.00001) and [Second](https://arxiv.org/abs/2602.00002v3)."

	assert.NoError(t, ValidateCitations(analysis, catalog))
}

func TestValidateCitations_DanglingSortedAndDeduplicated(t *testing.T) {
	catalog := types.Catalog{
		{ID: "2602.00001", Title: "First", URL: "https://arxiv.org/abs/2602.00001"},
	}
	analysis := `Cites [B](https://arxiv.org/abs/2602.00009),
[A](https://arxiv.org/abs/2602.00005v1),
[B again](https://arxiv.org/abs/2602.00009) and
[known](https://arxiv.org/abs/2602.00001).`

	err := ValidateCitations(analysis, catalog)
	require.Error(t, err)

	var dangling *types.DanglingCitationError
	require.ErrorAs(t, err, &dangling)
	assert.Equal(t, []string{"2602.00005", "2602.00009"}, dangling.IDs)
}

func TestCitedIDs_StripsVersions(t *testing.T) {
	text := "[x](https://arxiv.org/abs/2301.07041v2) [y](http://arxiv.org/abs/quant-ph/0201082) plain text"
	assert.Equal(t, []string{"2301.07041", "quant-ph/0201082"}, CitedIDs(text))
}

func TestCitationIndex(t *testing.T) {
	catalog := types.Catalog{
		{ID: "2602.00001", Title: "Short Title", URL: "https://arxiv.org/abs/2602.00001"},
	}
	index := CitationIndex(catalog)
	assert.Equal(t, "[Short Title](https://arxiv.org/abs/2602.00001)", index["2602.00001"])
}

func TestCompactLabel(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"short kept verbatim", "Attention Basics", "Attention Basics"},
		{"leading acronym", "BERT: Pre-training of Deep Bidirectional Transformers for Language Understanding", "BERT"},
		{"parenthetical acronym", "A Large-scale Evaluation Harness for Agents (LEHA) in the Wild", "LEHA"},
		{"pre-colon phrase", "Scaling transformers further: a study of very long contexts", "Scaling transformers"},
		{"significant words", "On the convergence of stochastic gradient methods in deep networks", "convergence stochastic"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompactLabel(tt.title))
		})
	}
}
