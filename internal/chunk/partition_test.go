// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chunk

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/arxiv-digest/internal/run"
	"github.com/pdiddy/arxiv-digest/pkg/types"
)

func makeCatalog(n int) types.Catalog {
	base := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	catalog := make(types.Catalog, n)
	for i := range catalog {
		catalog[i] = types.CatalogEntry{
			ID:          fmt.Sprintf("2602.%05d", i),
			Title:       fmt.Sprintf("Paper %d", i),
			Authors:     []string{"Ada Lovelace"},
			Abstract:    fmt.Sprintf("Abstract %d.", i),
			URL:         fmt.Sprintf("https://arxiv.org/abs/2602.%05d", i),
			PublishedAt: base.Add(-time.Duration(i) * time.Hour),
			Category:    "cs.CL",
		}
	}
	return catalog
}

func newRunDir(t *testing.T) run.Dir {
	t.Helper()
	dir, err := run.New(t.TempDir(), "partition test", time.Now())
	require.NoError(t, err)
	return dir
}

func TestCount(t *testing.T) {
	tests := []struct {
		entries, chunkSize, want int
	}{
		{0, 30, 0},
		{1, 30, 1},
		{30, 30, 1},
		{31, 30, 2},
		{65, 30, 3},
		{60, 30, 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Count(tt.entries, tt.chunkSize), "%d/%d", tt.entries, tt.chunkSize)
	}
}

func TestPartition_SplitsWithoutLossOrOverlap(t *testing.T) {
	dir := newRunDir(t)
	catalog := makeCatalog(65)

	manifest, err := Partition(dir, catalog, "partition test", 30)
	require.NoError(t, err)

	assert.Equal(t, 30, manifest.ChunkSize)
	assert.Equal(t, 3, manifest.ChunkCount)
	require.Len(t, manifest.Chunks, 3)

	assert.Len(t, manifest.Chunks[0].EntryIDs, 30)
	assert.Len(t, manifest.Chunks[1].EntryIDs, 30)
	assert.Len(t, manifest.Chunks[2].EntryIDs, 5)

	// Concatenating chunk ids in chunk order reconstructs the catalog order.
	var concat []string
	for i, c := range manifest.Chunks {
		assert.Equal(t, i, c.ChunkID)
		assert.Empty(t, c.SummaryPath)
		concat = append(concat, c.EntryIDs...)
	}
	assert.Equal(t, catalog.IDs(), concat)
}

func TestPartition_WritesInputsManifestAndInstructions(t *testing.T) {
	dir := newRunDir(t)
	catalog := makeCatalog(65)

	manifest, err := Partition(dir, catalog, "partition test", 30)
	require.NoError(t, err)

	for _, c := range manifest.Chunks {
		data, err := os.ReadFile(dir.Resolve(c.InputPath))
		require.NoError(t, err)
		assert.Contains(t, string(data), "partition test")
		assert.Contains(t, string(data), "## Paper Data")
	}

	// Global paper numbering continues across chunks.
	second, err := os.ReadFile(dir.Resolve(manifest.Chunks[1].InputPath))
	require.NoError(t, err)
	assert.Contains(t, string(second), "### Paper 31")
	assert.NotContains(t, string(second), "### Paper 30\n")

	instructions, err := os.ReadFile(dir.MergeInstructionsPath())
	require.NoError(t, err)
	assert.Contains(t, string(instructions), "chunk_summaries/")

	loaded, err := ReadManifest(dir.ChunkManifestPath())
	require.NoError(t, err)
	assert.Equal(t, manifest, loaded)

	// Summary directory exists and starts empty.
	summaries, err := os.ReadDir(dir.ChunkSummariesDir())
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestPartition_Idempotent(t *testing.T) {
	dir := newRunDir(t)
	catalog := makeCatalog(65)

	_, err := Partition(dir, catalog, "partition test", 30)
	require.NoError(t, err)

	readAll := func() map[string][]byte {
		files := map[string][]byte{}
		err := filepath.Walk(dir.RecursiveDir(), func(path string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() {
				return err
			}
			data, err := os.ReadFile(path)
			files[path] = data
			return err
		})
		require.NoError(t, err)
		return files
	}

	first := readAll()
	_, err = Partition(dir, catalog, "partition test", 30)
	require.NoError(t, err)
	second := readAll()

	assert.Equal(t, first, second)
}

func TestPartition_EmptyCatalogWritesNothing(t *testing.T) {
	dir := newRunDir(t)

	_, err := Partition(dir, types.Catalog{}, "partition test", 30)
	require.Error(t, err)

	var empty *types.EmptyCatalogError
	assert.ErrorAs(t, err, &empty)
	assert.ErrorIs(t, err, types.ErrInconsistent)

	_, statErr := os.Stat(dir.RecursiveDir())
	assert.True(t, os.IsNotExist(statErr))
}

func TestPartition_RejectsNonPositiveChunkSize(t *testing.T) {
	dir := newRunDir(t)

	_, err := Partition(dir, makeCatalog(3), "partition test", 0)
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestPartition_SingleShortChunk(t *testing.T) {
	dir := newRunDir(t)

	manifest, err := Partition(dir, makeCatalog(4), "partition test", 30)
	require.NoError(t, err)
	assert.Equal(t, 1, manifest.ChunkCount)
	assert.Len(t, manifest.Chunks[0].EntryIDs, 4)
}

func TestInputName(t *testing.T) {
	assert.Equal(t, "chunk_000.md", InputName(0))
	assert.Equal(t, "chunk_012.md", InputName(12))
	assert.Equal(t, InputName(7), SummaryName(7))
}
