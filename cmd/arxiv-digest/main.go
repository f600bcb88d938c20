// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the arxiv-digest CLI.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/arxiv-digest/internal/logging"
	"github.com/pdiddy/arxiv-digest/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is the process-wide logger, configured in PersistentPreRun before
// any subcommand executes.
var logger zerolog.Logger

// rootCmd is the base command for the arxiv-digest CLI.
var rootCmd = &cobra.Command{
	Use:   "arxiv-digest",
	Short: "Prepare and finalize recent-paper research summaries from arXiv",
	Long: `arxiv-digest turns a plain-language research interest into a reviewed
summary of recent arXiv papers. The pipeline runs in two halves around an
external synthesis step:

  prepare   builds the query, fetches the paper catalog, and partitions it
            into chunk inputs ready for summarization
  finalize  verifies every chunk summary is present, composes the final
            report from the merged analysis, and exports md/html/pdf

Between the two, an external capability summarizes each chunk input into
chunk_summaries/ and merges them into analysis.md following the written
merge instructions.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, _ := cmd.Flags().GetString("log-level")
		logger = logging.New(level, os.Stderr)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./arxiv-digest.yaml or ~/.config/arxiv-digest/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: trace, debug, info, warn, error")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("arxiv-digest")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "arxiv-digest"))
		}
	}

	viper.SetEnvPrefix("ARXIV_DIGEST")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig merges config-file and environment overrides onto the pipeline
// defaults. Flags still win over everything; subcommands apply them on top.
func loadConfig() types.PipelineConfig {
	cfg := types.DefaultPipelineConfig()

	if v := viper.GetDuration("fetch.timeout"); v > 0 {
		cfg.Fetch.Timeout = v
	}
	if v := viper.GetString("fetch.user_agent"); v != "" {
		cfg.Fetch.UserAgent = v
	}
	if v := viper.GetInt("fetch.page_size"); v > 0 {
		cfg.Fetch.PageSize = v
	}
	if v := viper.GetInt("fetch.max_concurrency"); v > 0 {
		cfg.Fetch.MaxConcurrency = v
	}
	if v := viper.GetInt("fetch.max_attempts"); v > 0 {
		cfg.Fetch.MaxAttempts = v
	}
	if v := viper.GetInt("chunk.chunk_size"); v > 0 {
		cfg.Chunk.ChunkSize = v
	}
	if v := viper.GetString("report.style"); v != "" {
		cfg.Report.Style = v
	}
	if viper.IsSet("report.include_appendix") {
		cfg.Report.IncludeAppendix = viper.GetBool("report.include_appendix")
	}
	if viper.IsSet("history.enabled") {
		cfg.History.Enabled = viper.GetBool("history.enabled")
	}
	if v := viper.GetString("history.db_path"); v != "" {
		cfg.History.DBPath = v
	}
	return cfg
}

// printJSON writes v as indented JSON to stdout for machine consumers.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
