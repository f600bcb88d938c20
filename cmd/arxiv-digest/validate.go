package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/arxiv-digest/internal/chunk"
	"github.com/pdiddy/arxiv-digest/internal/fetch"
	"github.com/pdiddy/arxiv-digest/internal/merge"
	"github.com/pdiddy/arxiv-digest/internal/run"
	"github.com/pdiddy/arxiv-digest/pkg/types"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that a run is ready to finalize",
	Long: `Validate performs the same checks finalize does without writing any
report: required artifacts exist, every chunk has a summary, and the
merged analysis cites only catalog papers. Missing summaries fail the
command; dangling citations are reported as warnings.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().String("run-dir", "", "run directory produced by prepare (required)")
	validateCmd.MarkFlagRequired("run-dir")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	runDir, _ := cmd.Flags().GetString("run-dir")

	dir := run.Open(runDir)
	if err := dir.RequireFinalizable(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	manifest, err := chunk.ReadManifest(dir.ChunkManifestPath())
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if _, err := merge.Scan(dir, &manifest); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if err := merge.CheckComplete(manifest); err != nil {
		return fmt.Errorf("validate: merge: %w", err)
	}

	catalog, err := fetch.ReadCatalog(dir.CatalogPath())
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	analysis, err := os.ReadFile(dir.AnalysisPath())
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	if err := merge.ValidateCitations(string(analysis), catalog); err != nil {
		var dangling *types.DanglingCitationError
		if errors.As(err, &dangling) {
			logger.Warn().Strs("ids", dangling.IDs).Msg("analysis cites papers outside the catalog")
		} else {
			return fmt.Errorf("validate: %w", err)
		}
	}

	fmt.Printf("Run %s is ready to finalize (%d chunks, %d papers).\n",
		dir.Root, manifest.ChunkCount, len(catalog))
	return nil
}
