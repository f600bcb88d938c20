package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/arxiv-digest/internal/query"
	"github.com/pdiddy/arxiv-digest/pkg/types"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Build and print the arXiv query without fetching anything",
	Long: `Query resolves a research interest into an arXiv search expression and
prints it. Building a query is deterministic and makes no network calls,
so this is the cheap way to inspect or tune keyword extraction and
category inference before running prepare.`,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().String("interest", "", "plain-language research interest (required)")
	queryCmd.Flags().String("query", "", "manual arXiv query; bypasses keyword extraction")
	queryCmd.Flags().String("strictness", "", "keyword strictness: broad, normal, focused (default normal)")
	queryCmd.Flags().Int("window-days", 0, "publication lookback window in days (default 7)")
	queryCmd.Flags().Int("max-results", 0, "maximum catalog size (default 66)")
	queryCmd.Flags().StringSlice("include-categories", nil, "arXiv categories to force into the query")
	queryCmd.Flags().StringSlice("exclude-categories", nil, "arXiv categories to drop from inference")
	queryCmd.Flags().Bool("plain", false, "print only the resolved query string")
	queryCmd.Flags().String("output", "", "save the query spec as YAML at this path")
	queryCmd.MarkFlagRequired("interest")

	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	interest, _ := flags.GetString("interest")
	manualQuery, _ := flags.GetString("query")
	strictness, _ := flags.GetString("strictness")
	windowDays, _ := flags.GetInt("window-days")
	maxResults, _ := flags.GetInt("max-results")
	includeCats, _ := flags.GetStringSlice("include-categories")
	excludeCats, _ := flags.GetStringSlice("exclude-categories")
	plain, _ := flags.GetBool("plain")
	output, _ := flags.GetString("output")

	builder := query.NewBuilder(nil)
	spec, err := builder.Build(query.Options{
		Interest:          interest,
		ManualQuery:       manualQuery,
		Strictness:        types.Strictness(strictness),
		WindowDays:        windowDays,
		MaxResults:        maxResults,
		IncludeCategories: includeCats,
		ExcludeCategories: excludeCats,
	})
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}

	if output != "" {
		if err := query.WriteSpecFile(output, spec); err != nil {
			return fmt.Errorf("query: %w", err)
		}
	}

	if plain {
		fmt.Println(spec.ResolvedQuery)
		return nil
	}
	return printJSON(spec)
}
