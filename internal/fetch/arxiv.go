// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/arxiv-digest/internal/httputil"
	"github.com/pdiddy/arxiv-digest/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// fetchPage requests one page of results sorted by submission date
// descending, retrying transient failures with bounded backoff.
func (c *Client) fetchPage(ctx context.Context, query string, start, count int) ([]types.CatalogEntry, error) {
	params := url.Values{}
	params.Set("search_query", query)
	params.Set("start", strconv.Itoa(start))
	params.Set("max_results", strconv.Itoa(count))
	params.Set("sortBy", "submittedDate")
	params.Set("sortOrder", "descending")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, arxivAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.cfg.MaxAttempts)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	entries := make([]types.CatalogEntry, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		if e, ok := entryToCatalogEntry(entry); ok {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID              string          `xml:"id"`
	Title           string          `xml:"title"`
	Summary         string          `xml:"summary"`
	Published       string          `xml:"published"`
	Authors         []arxivAuthor   `xml:"author"`
	PrimaryCategory arxivCategory   `xml:"primary_category"`
	Categories      []arxivCategory `xml:"category"`
	Links           []arxivLink     `xml:"link"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivCategory struct {
	Term string `xml:"term,attr"`
}

type arxivLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
}

// entryToCatalogEntry normalizes one Atom entry. Entries without a parseable
// arXiv id are dropped.
func entryToCatalogEntry(entry arxivEntry) (types.CatalogEntry, bool) {
	id := extractArxivID(entry.ID)
	if id == "" {
		return types.CatalogEntry{}, false
	}

	e := types.CatalogEntry{
		ID:       id,
		Title:    cleanWhitespace(entry.Title),
		Abstract: cleanWhitespace(entry.Summary),
		URL:      "https://arxiv.org/abs/" + id,
	}

	for _, link := range entry.Links {
		if link.Rel == "alternate" && link.Href != "" {
			e.URL = link.Href
		}
	}

	for _, a := range entry.Authors {
		if name := cleanWhitespace(a.Name); name != "" {
			e.Authors = append(e.Authors, name)
		}
	}

	e.Category = entry.PrimaryCategory.Term
	if e.Category == "" && len(entry.Categories) > 0 {
		e.Category = entry.Categories[0].Term
	}

	if t, err := time.Parse(time.RFC3339, entry.Published); err == nil {
		e.PublishedAt = t.UTC()
	}

	return e, true
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" becomes "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := idURL[idx+len(prefix):]

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}

// cleanWhitespace collapses internal whitespace runs and trims the ends.
func cleanWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
