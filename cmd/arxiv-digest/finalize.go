package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/arxiv-digest/internal/chunk"
	"github.com/pdiddy/arxiv-digest/internal/fetch"
	"github.com/pdiddy/arxiv-digest/internal/merge"
	"github.com/pdiddy/arxiv-digest/internal/report"
	"github.com/pdiddy/arxiv-digest/internal/run"
	"github.com/pdiddy/arxiv-digest/pkg/types"
)

var finalizeCmd = &cobra.Command{
	Use:   "finalize",
	Short: "Compose and export the final report from a prepared run",
	Long: `Finalize runs the second half of the pipeline on a run directory whose
chunk summaries and merged analysis.md were produced externally. It refuses
to proceed while any chunk summary is missing, validates that the analysis
cites only catalog papers (dangling citations warn, they do not block),
composes the canonical report, and exports the requested encodings.

Encodings succeed or fail independently; finalize exits non-zero when any
requested encoding failed, after attempting all of them.`,
	RunE: runFinalize,
}

func init() {
	finalizeCmd.Flags().String("run-dir", "", "run directory produced by prepare (required)")
	finalizeCmd.Flags().String("title", "", "report title (default derived from the topic)")
	finalizeCmd.Flags().String("formats", "", "comma-separated encodings: md,html,pdf (default all)")
	finalizeCmd.Flags().Bool("include-appendix", false, "append the quick-index table and per-paper appendix")
	finalizeCmd.MarkFlagRequired("run-dir")

	rootCmd.AddCommand(finalizeCmd)
}

func runFinalize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := loadConfig()
	flags := cmd.Flags()

	runDir, _ := flags.GetString("run-dir")
	title, _ := flags.GetString("title")
	formats, _ := flags.GetString("formats")
	includeAppendix, _ := flags.GetBool("include-appendix")

	encodings, err := report.ParseEncodings(formats)
	if err != nil {
		return fmt.Errorf("finalize: %w", err)
	}

	dir := run.Open(runDir)
	if err := dir.RequireFinalizable(); err != nil {
		return fmt.Errorf("finalize: %w", err)
	}
	manifest, err := dir.ReadManifest()
	if err != nil {
		return fmt.Errorf("finalize: %w", err)
	}

	// Stage 1: merge coordination.
	chunkManifest, err := chunk.ReadManifest(dir.ChunkManifestPath())
	if err != nil {
		return fmt.Errorf("finalize: merge: %w", err)
	}
	recorded, err := merge.Scan(dir, &chunkManifest)
	if err != nil {
		return fmt.Errorf("finalize: merge: %w", err)
	}
	if recorded > 0 {
		logger.Info().Int("recorded", recorded).Msg("new chunk summaries recorded")
	}
	if err := merge.CheckComplete(chunkManifest); err != nil {
		return fmt.Errorf("finalize: merge: %w", err)
	}

	catalog, err := fetch.ReadCatalog(dir.CatalogPath())
	if err != nil {
		return fmt.Errorf("finalize: %w", err)
	}
	analysisBytes, err := os.ReadFile(dir.AnalysisPath())
	if err != nil {
		return fmt.Errorf("finalize: %w", err)
	}
	analysis := string(analysisBytes)

	if err := merge.ValidateCitations(analysis, catalog); err != nil {
		var dangling *types.DanglingCitationError
		if errors.As(err, &dangling) {
			logger.Warn().Strs("ids", dangling.IDs).Msg("analysis cites papers outside the catalog")
		} else {
			return fmt.Errorf("finalize: merge: %w", err)
		}
	}

	// Stage 2: compose and export.
	if !includeAppendix {
		includeAppendix = cfg.Report.IncludeAppendix
	}
	canonical := report.Compose(analysis, catalog, report.Meta{
		Topic:           manifest.Topic,
		Style:           manifest.ReportStyle,
		Query:           manifest.Query,
		WindowDays:      manifest.WindowDays,
		GeneratedAt:     time.Now(),
		IncludeAppendix: includeAppendix,
	})
	if title == "" {
		title = fmt.Sprintf("%s: Recent arXiv Papers", manifest.Topic)
	}

	exporter := report.NewExporter(report.DetectPDFBackend(), logger)
	results := exporter.Export(ctx, canonical, title, dir, encodings)

	type exportStatus struct {
		Encoding string `json:"encoding"`
		Path     string `json:"path,omitempty"`
		Error    string `json:"error,omitempty"`
	}
	out := struct {
		RunDir  string         `json:"run_dir"`
		Reports []exportStatus `json:"reports"`
	}{RunDir: dir.Root}

	var failed []string
	for _, r := range results {
		status := exportStatus{Encoding: string(r.Encoding)}
		if r.Err != nil {
			status.Error = r.Err.Error()
			failed = append(failed, string(r.Encoding))
		} else {
			status.Path = r.Path
		}
		out.Reports = append(out.Reports, status)
	}
	if err := printJSON(out); err != nil {
		return fmt.Errorf("finalize: %w", err)
	}

	if len(failed) > 0 {
		return fmt.Errorf("finalize: render: %d of %d encodings failed (%s)",
			len(failed), len(results), strings.Join(failed, ", "))
	}
	return nil
}
