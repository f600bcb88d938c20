// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report composes the final report from the merged analysis plus
// catalog metadata, and exports it to the requested encodings. Every
// encoding derives from one canonical representation, never regenerated
// per format, so all outputs carry the same content.
package report

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/pdiddy/arxiv-digest/internal/merge"
	"github.com/pdiddy/arxiv-digest/pkg/types"
)

// Meta carries the run parameters stamped into the report.
type Meta struct {
	Topic           string
	Style           string
	Query           string
	WindowDays      int
	GeneratedAt     time.Time
	IncludeAppendix bool
}

// canonical headings normalized to bold style in the final report.
var reportHeadings = []string{
	"Paper Catalog",
	"Key Research Themes",
	"Methodological Approaches",
	"Notable Papers to Read First",
	"What Is New in This Window",
	"Challenges and Future Directions",
	"Concluding Overview",
}

var (
	markdownLinkRE  = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^)\s]+)\)`)
	catalogHeaderRE = regexp.MustCompile(`(?m)^##\s+(?:\*\*)?Paper Catalog(?:\*\*)?\s*$`)
)

// Compose builds the canonical report markdown: normalized analysis text,
// a paper-catalog header with the computed metadata (paper count, date
// range), the optional quick index and appendix, and the run metadata
// footer.
func Compose(analysis string, catalog types.Catalog, meta Meta) string {
	cleaned := strings.TrimSpace(analysis)
	cleaned = normalizeHeadings(cleaned)
	cleaned = compactCitations(cleaned)

	var parts []string

	if !catalogHeaderRE.MatchString(cleaned) {
		parts = append(parts,
			"## **Paper Catalog**",
			"",
			fmt.Sprintf("**Date Range**: %s", dateRangeLabel(catalog)),
			"",
			fmt.Sprintf("**Total Papers Analyzed**: %d", len(catalog)),
			"",
			"---",
			"",
		)
	}

	parts = append(parts, cleaned, "")

	if meta.IncludeAppendix {
		parts = append(parts,
			"---",
			"",
			"## **Top Recent Papers (Quick Index)**",
			"",
			quickIndexTable(catalog, 20),
			"",
			appendix(catalog, 700),
			"",
		)
	}

	parts = append(parts,
		"---",
		"",
		"## **Run Metadata**",
		"",
		fmt.Sprintf("- **Topic**: %s", meta.Topic),
		fmt.Sprintf("- **Generated On**: %s", meta.GeneratedAt.UTC().Format("2006-01-02")),
		fmt.Sprintf("- **Time Window**: Last %d days", meta.WindowDays),
		fmt.Sprintf("- **Report Style**: %s", meta.Style),
		fmt.Sprintf("- **Publication Range**: %s", dateRangeLabel(catalog)),
		fmt.Sprintf("- **arXiv Query**: `%s`", meta.Query),
		"",
	)

	return strings.TrimRight(strings.Join(parts, "\n"), "\n") + "\n"
}

// normalizeHeadings rewrites the known section headings to the bold style
// so merged analyses render consistently regardless of how the external
// synthesis styled them.
func normalizeHeadings(text string) string {
	for _, h := range reportHeadings {
		re := regexp.MustCompile(`(?m)^##\s+(?:\*\*)?` + regexp.QuoteMeta(h) + `(?:\*\*)?\s*$`)
		text = re.ReplaceAllString(text, "## **"+h+"**")
	}
	return text
}

// compactCitations shortens markdown citation labels so merged text from
// multiple chunks uses uniform compact references.
func compactCitations(text string) string {
	return markdownLinkRE.ReplaceAllStringFunc(text, func(link string) string {
		m := markdownLinkRE.FindStringSubmatch(link)
		return fmt.Sprintf("[%s](%s)", merge.CompactLabel(m[1]), m[2])
	})
}

// quickIndexTable renders the top entries as a markdown table.
func quickIndexTable(catalog types.Catalog, limit int) string {
	var b strings.Builder
	b.WriteString("| # | Title | Date | Primary Category | Link |\n")
	b.WriteString("|---:|---|---|---|---|\n")
	for i, e := range catalog {
		if i >= limit {
			break
		}
		link := "N/A"
		if e.URL != "" {
			link = fmt.Sprintf("[arXiv](%s)", e.URL)
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n",
			i+1, tableEscape(e.Title), dayLabel(e.PublishedAt), tableEscape(orNA(e.Category)), link)
	}
	return strings.TrimRight(b.String(), "\n")
}

// appendix renders one section per paper with truncated abstracts.
func appendix(catalog types.Catalog, abstractLimit int) string {
	var b strings.Builder
	b.WriteString("## Paper Appendix\n")
	for i, e := range catalog {
		fmt.Fprintf(&b, "### %d. %s\n", i+1, e.Title)
		fmt.Fprintf(&b, "- Authors: %s\n", orNA(strings.Join(e.Authors, ", ")))
		fmt.Fprintf(&b, "- Published: %s\n", dayLabel(e.PublishedAt))
		fmt.Fprintf(&b, "- Primary Category: %s\n", orNA(e.Category))
		if e.URL != "" {
			fmt.Fprintf(&b, "- arXiv Page: %s\n", e.URL)
		}
		if abstract := truncate(e.Abstract, abstractLimit); abstract != "" {
			fmt.Fprintf(&b, "- Abstract: %s\n", abstract)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func tableEscape(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(text, "|", `\|`), "\n", " "))
}

func truncate(text string, limit int) string {
	text = strings.TrimSpace(text)
	if len(text) <= limit {
		return text
	}
	return strings.TrimRight(text[:limit-3], " ") + "..."
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func dayLabel(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.UTC().Format("2006-01-02")
}

// dateRangeLabel formats the catalog's publication span.
func dateRangeLabel(catalog types.Catalog) string {
	first, last := catalog.DateRange()
	if first.IsZero() {
		return "N/A"
	}
	lo, hi := dayLabel(first), dayLabel(last)
	if lo == hi {
		return lo
	}
	return lo + " to " + hi
}
