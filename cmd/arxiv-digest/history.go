package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/arxiv-digest/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse the index of past runs",
	Long: `History queries the SQLite index of completed prepare runs. The index
records run parameters and every catalog entry, so past papers stay
searchable after their run directories are archived or deleted.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed runs, most recent first",
	RunE:  runHistoryList,
}

var historySearchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search past catalogs by paper title",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistorySearch,
}

func init() {
	historySearchCmd.Flags().Int("limit", 20, "maximum number of results")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historySearchCmd)
	rootCmd.AddCommand(historyCmd)
}

func openHistory() (*history.Store, error) {
	cfg := loadConfig()
	store, err := history.Open(cfg.History.DBPath)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return store, nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.ListRuns(cmd.Context())
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}
	for _, r := range records {
		fmt.Printf("%s  %3d papers  window %dd  %s\n",
			r.CreatedAt.UTC().Format("2006-01-02"), r.PaperCount, r.WindowDays, r.RunDir)
		fmt.Printf("    topic: %s\n", r.Topic)
	}
	return nil
}

func runHistorySearch(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	hits, err := store.SearchPapers(cmd.Context(), args[0], limit)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	if len(hits) == 0 {
		fmt.Printf("No papers matching %q.\n", args[0])
		return nil
	}
	for _, h := range hits {
		fmt.Printf("%s  %-10s %s\n", h.PublishedAt.UTC().Format("2006-01-02"), h.Category, h.Title)
		if h.URL != "" {
			fmt.Printf("    %s\n", h.URL)
		}
		fmt.Printf("    run: %s\n", strings.TrimSpace(h.RunDir))
	}
	return nil
}
