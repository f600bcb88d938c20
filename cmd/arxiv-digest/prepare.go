package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/arxiv-digest/internal/chunk"
	"github.com/pdiddy/arxiv-digest/internal/fetch"
	"github.com/pdiddy/arxiv-digest/internal/history"
	"github.com/pdiddy/arxiv-digest/internal/merge"
	"github.com/pdiddy/arxiv-digest/internal/query"
	"github.com/pdiddy/arxiv-digest/internal/run"
	"github.com/pdiddy/arxiv-digest/pkg/types"
)

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Build the query, fetch the catalog, and partition it into chunks",
	Long: `Prepare runs the first half of the pipeline: it resolves the research
interest into an arXiv query, fetches recent papers into catalog.csv,
partitions the catalog into chunk inputs under recursive/chunk_inputs/,
and scaffolds analysis.md. The run directory path is printed on success;
point the external summarization step at its recursive/ subdirectory.`,
	RunE: runPrepare,
}

func init() {
	prepareCmd.Flags().String("interest", "", "plain-language research interest (required unless --query-file is given)")
	prepareCmd.Flags().String("topic", "", "display topic for the report (default: the interest text)")
	prepareCmd.Flags().String("query", "", "manual arXiv query; bypasses keyword extraction")
	prepareCmd.Flags().String("strictness", "", "keyword strictness: broad, normal, focused (default normal)")
	prepareCmd.Flags().Int("window-days", 0, "publication lookback window in days (default 7)")
	prepareCmd.Flags().Int("max-results", 0, "maximum catalog size (default 66)")
	prepareCmd.Flags().Int("chunk-size", 0, "catalog entries per chunk (default 30)")
	prepareCmd.Flags().String("report-style", "", "prose style stamped into the report metadata")
	prepareCmd.Flags().StringSlice("include-categories", nil, "arXiv categories to force into the query")
	prepareCmd.Flags().StringSlice("exclude-categories", nil, "arXiv categories to drop from inference")
	prepareCmd.Flags().Int("timeout-sec", 0, "HTTP request timeout in seconds (default 30)")
	prepareCmd.Flags().String("output-root", "outputs", "root directory for run directories")
	prepareCmd.Flags().String("query-file", "", "load a previously saved query spec instead of building one")
	prepareCmd.Flags().String("save-query-file", "", "also save the built query spec as YAML at this path")

	rootCmd.AddCommand(prepareCmd)
}

func runPrepare(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := loadConfig()
	flags := cmd.Flags()

	interest, _ := flags.GetString("interest")
	topic, _ := flags.GetString("topic")
	manualQuery, _ := flags.GetString("query")
	strictness, _ := flags.GetString("strictness")
	windowDays, _ := flags.GetInt("window-days")
	maxResults, _ := flags.GetInt("max-results")
	chunkSize, _ := flags.GetInt("chunk-size")
	reportStyle, _ := flags.GetString("report-style")
	includeCats, _ := flags.GetStringSlice("include-categories")
	excludeCats, _ := flags.GetStringSlice("exclude-categories")
	timeoutSec, _ := flags.GetInt("timeout-sec")
	outputRoot, _ := flags.GetString("output-root")
	queryFile, _ := flags.GetString("query-file")
	saveQueryFile, _ := flags.GetString("save-query-file")

	if timeoutSec > 0 {
		cfg.Fetch.Timeout = time.Duration(timeoutSec) * time.Second
	}
	if chunkSize <= 0 {
		chunkSize = cfg.Chunk.ChunkSize
	}
	if reportStyle == "" {
		reportStyle = cfg.Report.Style
	}

	// Stage 1: query.
	var spec types.QuerySpec
	var err error
	if queryFile != "" {
		spec, err = query.ReadSpecFile(queryFile)
	} else {
		builder := query.NewBuilder(nil)
		spec, err = builder.Build(query.Options{
			Interest:          interest,
			ManualQuery:       manualQuery,
			Strictness:        types.Strictness(strictness),
			WindowDays:        windowDays,
			MaxResults:        maxResults,
			IncludeCategories: includeCats,
			ExcludeCategories: excludeCats,
		})
	}
	if err != nil {
		return fmt.Errorf("prepare: query: %w", err)
	}
	if topic == "" {
		topic = spec.RawInterest
	}
	logger.Info().Str("query", spec.ResolvedQuery).Msg("query resolved")

	if saveQueryFile != "" {
		if err := query.WriteSpecFile(saveQueryFile, spec); err != nil {
			return fmt.Errorf("prepare: query: %w", err)
		}
	}

	now := time.Now()
	dir, err := run.New(outputRoot, topic, now)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	if err := dir.WriteQuerySpec(spec); err != nil {
		return fmt.Errorf("prepare: query: %w", err)
	}

	// Stage 2: fetch.
	client := fetch.NewClient(nil, cfg.Fetch, logger)
	catalog, meta, err := client.Fetch(ctx, spec, now)
	if err != nil {
		return fmt.Errorf("prepare: fetch: %w", err)
	}
	if err := fetch.WriteCatalog(dir.CatalogPath(), catalog); err != nil {
		return fmt.Errorf("prepare: fetch: %w", err)
	}
	if err := run.WriteJSON(dir.FetchMetaPath(), meta); err != nil {
		return fmt.Errorf("prepare: fetch: %w", err)
	}

	// Stage 3: partition.
	chunkManifest, err := chunk.Partition(dir, catalog, topic, chunkSize)
	if err != nil {
		return fmt.Errorf("prepare: partition: %w", err)
	}

	// Scaffold the analysis document the external merge step fills in.
	analysis := merge.AnalysisTemplate(topic, reportStyle)
	if err := os.WriteFile(dir.AnalysisPath(), []byte(analysis), 0o644); err != nil {
		return fmt.Errorf("prepare: %w", err)
	}

	manifest := run.Manifest{
		Topic:       topic,
		Interest:    spec.RawInterest,
		Query:       spec.ResolvedQuery,
		Strictness:  string(spec.Strictness),
		WindowDays:  spec.WindowDays,
		MaxResults:  spec.MaxResults,
		ChunkSize:   chunkManifest.ChunkSize,
		ChunkCount:  chunkManifest.ChunkCount,
		ReportStyle: reportStyle,
		GeneratedAt: now.UTC(),
	}
	if err := dir.WriteManifest(manifest); err != nil {
		return fmt.Errorf("prepare: %w", err)
	}

	recordHistory(ctx, cfg, dir, manifest, catalog, now)

	logger.Info().
		Str("run_dir", dir.Root).
		Int("papers", len(catalog)).
		Int("chunks", chunkManifest.ChunkCount).
		Msg("prepare complete")

	return printJSON(struct {
		RunDir   string       `json:"run_dir"`
		Manifest run.Manifest `json:"manifest"`
	}{RunDir: dir.Root, Manifest: manifest})
}

// recordHistory indexes the run in the SQLite history. Failures warn and
// never fail prepare.
func recordHistory(ctx context.Context, cfg types.PipelineConfig, dir run.Dir, m run.Manifest, catalog types.Catalog, now time.Time) {
	if !cfg.History.Enabled {
		return
	}
	store, err := history.Open(cfg.History.DBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("history disabled for this run")
		return
	}
	defer store.Close()

	rec := history.RunRecord{
		RunDir:     dir.Root,
		Topic:      m.Topic,
		Interest:   m.Interest,
		Query:      m.Query,
		WindowDays: m.WindowDays,
		CreatedAt:  now,
	}
	if err := store.RecordRun(ctx, rec, catalog); err != nil {
		logger.Warn().Err(err).Msg("recording run history failed")
	}
}
