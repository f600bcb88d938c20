package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/arxiv-digest/internal/chunk"
	"github.com/pdiddy/arxiv-digest/internal/merge"
	"github.com/pdiddy/arxiv-digest/internal/run"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show chunk summarization progress for a run",
	Long: `Status scans the run's chunk_summaries/ directory, records any newly
completed summaries in the chunk manifest, and reports per-chunk progress.
It is informational: it always exits zero on a readable run directory,
whether or not the run is ready to finalize.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().String("run-dir", "", "run directory produced by prepare (required)")
	statusCmd.Flags().Bool("json", false, "output status as JSON")
	statusCmd.MarkFlagRequired("run-dir")

	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	runDir, _ := cmd.Flags().GetString("run-dir")
	asJSON, _ := cmd.Flags().GetBool("json")

	dir := run.Open(runDir)
	manifest, err := chunk.ReadManifest(dir.ChunkManifestPath())
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}
	if _, err := merge.Scan(dir, &manifest); err != nil {
		return fmt.Errorf("status: %w", err)
	}

	missing := manifest.MissingSummaries()
	done := manifest.ChunkCount - len(missing)

	if asJSON {
		return printJSON(struct {
			RunDir     string `json:"run_dir"`
			ChunkCount int    `json:"chunk_count"`
			Summarized int    `json:"summarized"`
			Missing    []int  `json:"missing"`
			Ready      bool   `json:"ready"`
		}{dir.Root, manifest.ChunkCount, done, missing, len(missing) == 0})
	}

	fmt.Printf("Run: %s\n", dir.Root)
	fmt.Printf("Chunks summarized: %d/%d\n", done, manifest.ChunkCount)
	for _, c := range manifest.Chunks {
		state := "pending"
		if c.SummaryPath != "" {
			state = "done"
		}
		fmt.Printf("  chunk %3d  %3d papers  %s\n", c.ChunkID, len(c.EntryIDs), state)
	}
	if len(missing) == 0 {
		fmt.Println("Ready to finalize.")
	} else {
		fmt.Printf("Waiting on %d chunk summaries.\n", len(missing))
	}
	return nil
}
