// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package run models the run directory: the filesystem namespace holding
// every artifact of one pipeline execution. The Dir value is threaded
// explicitly through stage calls; there is no ambient global run state.
package run

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/arxiv-digest/pkg/types"
)

// Artifact names inside a run directory.
const (
	QueryFile             = "query.json"
	CatalogFile           = "catalog.csv"
	FetchMetaFile         = "fetch_metadata.json"
	AnalysisFile          = "analysis.md"
	ManifestFile          = "run_manifest.json"
	RecursiveDirName      = "recursive"
	ChunkManifestFile     = "recursive_manifest.json"
	ChunkInputsDirName    = "chunk_inputs"
	ChunkSummariesDirName = "chunk_summaries"
	MergeInstructionsFile = "merge_instructions.md"
	ReportBaseName        = "report"
)

var slugRE = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// Dir is a handle on one run directory.
type Dir struct {
	Root string
}

// New creates a fresh run directory under outputRoot, named
// <YYYY-MM-DD>/<topic-slug>-<short-id>. The random suffix keeps concurrent
// runs of the same topic in distinct namespaces.
func New(outputRoot, topic string, now time.Time) (Dir, error) {
	name := fmt.Sprintf("%s-%s", slugify(topic), uuid.NewString()[:8])
	root := filepath.Join(outputRoot, now.Format("2006-01-02"), name)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return Dir{}, fmt.Errorf("creating run directory: %w", err)
	}
	return Dir{Root: root}, nil
}

// Open wraps an existing run directory without creating anything.
func Open(root string) Dir {
	return Dir{Root: root}
}

func (d Dir) QueryPath() string             { return filepath.Join(d.Root, QueryFile) }
func (d Dir) CatalogPath() string           { return filepath.Join(d.Root, CatalogFile) }
func (d Dir) FetchMetaPath() string         { return filepath.Join(d.Root, FetchMetaFile) }
func (d Dir) AnalysisPath() string          { return filepath.Join(d.Root, AnalysisFile) }
func (d Dir) ManifestPath() string          { return filepath.Join(d.Root, ManifestFile) }
func (d Dir) RecursiveDir() string          { return filepath.Join(d.Root, RecursiveDirName) }
func (d Dir) ChunkManifestPath() string     { return filepath.Join(d.RecursiveDir(), ChunkManifestFile) }
func (d Dir) ChunkInputsDir() string        { return filepath.Join(d.RecursiveDir(), ChunkInputsDirName) }
func (d Dir) ChunkSummariesDir() string     { return filepath.Join(d.RecursiveDir(), ChunkSummariesDirName) }
func (d Dir) MergeInstructionsPath() string { return filepath.Join(d.RecursiveDir(), MergeInstructionsFile) }

// ReportPath returns the export path for the given extension ("md", "html", "pdf").
func (d Dir) ReportPath(ext string) string {
	return filepath.Join(d.Root, ReportBaseName+"."+ext)
}

// Resolve joins a run-dir-relative artifact path onto the root.
func (d Dir) Resolve(rel string) string {
	return filepath.Join(d.Root, rel)
}

// Manifest is the run_manifest.json payload: parameters plus artifact paths.
// Its presence marks a completed prepare stage; finalize refuses to run
// without it.
type Manifest struct {
	Topic       string    `json:"topic"`
	Interest    string    `json:"interest"`
	Query       string    `json:"query"`
	Strictness  string    `json:"strictness"`
	WindowDays  int       `json:"window_days"`
	MaxResults  int       `json:"max_results"`
	ChunkSize   int       `json:"chunk_size"`
	ChunkCount  int       `json:"chunk_count"`
	ReportStyle string    `json:"report_style"`
	GeneratedAt time.Time `json:"generated_at"`
}

// WriteManifest persists the run manifest.
func (d Dir) WriteManifest(m Manifest) error {
	return WriteJSON(d.ManifestPath(), m)
}

// ReadManifest loads the run manifest.
func (d Dir) ReadManifest() (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(d.ManifestPath())
	if err != nil {
		return m, fmt.Errorf("reading run manifest: %w", err)
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parsing run manifest: %w", err)
	}
	return m, nil
}

// RequireFinalizable verifies the completeness markers finalize depends on:
// run manifest, catalog, chunk manifest, and analysis document. A partial
// run directory is never valid input to the renderer.
func (d Dir) RequireFinalizable() error {
	required := []string{
		d.ManifestPath(),
		d.CatalogPath(),
		d.ChunkManifestPath(),
		d.AnalysisPath(),
	}
	var missing []string
	for _, path := range required {
		if _, err := os.Stat(path); err != nil {
			missing = append(missing, filepath.Base(path))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("run directory %s is missing required artifacts: %s",
			d.Root, strings.Join(missing, ", "))
	}
	return nil
}

// WriteJSON writes v as indented JSON with a trailing newline, creating
// parent directories as needed.
func WriteJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// WriteQuerySpec persists query.json. The spec is written once per run and
// never mutated.
func (d Dir) WriteQuerySpec(spec types.QuerySpec) error {
	return WriteJSON(d.QueryPath(), spec)
}

// ReadQuerySpec loads query.json.
func (d Dir) ReadQuerySpec() (types.QuerySpec, error) {
	var spec types.QuerySpec
	data, err := os.ReadFile(d.QueryPath())
	if err != nil {
		return spec, fmt.Errorf("reading query spec: %w", err)
	}
	if err := json.Unmarshal(data, &spec); err != nil {
		return spec, fmt.Errorf("parsing query spec: %w", err)
	}
	return spec, nil
}

// slugify lowercases text and collapses non-alphanumeric runs into hyphens.
func slugify(text string) string {
	slug := strings.Trim(slugRE.ReplaceAllString(strings.ToLower(text), "-"), "-")
	if slug == "" {
		return "topic"
	}
	return slug
}
