// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors grouping the pipeline error taxonomy. Stage errors unwrap
// to one of these so callers can classify with errors.Is.
var (
	// ErrInvalidInput marks malformed caller input, detected before any
	// network or file I/O.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTransient marks transient I/O failures that were retried.
	ErrTransient = errors.New("transient failure")

	// ErrInconsistent marks consistency failures detected by inter-stage
	// validation. Prior artifacts are left intact for inspection.
	ErrInconsistent = errors.New("inconsistent run state")
)

// InvalidInterestError indicates the interest text cannot produce a query.
type InvalidInterestError struct {
	Reason string
}

func (e *InvalidInterestError) Error() string {
	return fmt.Sprintf("invalid interest: %s", e.Reason)
}

func (e *InvalidInterestError) Unwrap() error { return ErrInvalidInput }

// InvalidQuerySyntaxError indicates a manual query override failed syntax
// validation against the arXiv search grammar.
type InvalidQuerySyntaxError struct {
	Query  string
	Reason string
}

func (e *InvalidQuerySyntaxError) Error() string {
	return fmt.Sprintf("invalid query syntax: %s", e.Reason)
}

func (e *InvalidQuerySyntaxError) Unwrap() error { return ErrInvalidInput }

// FetchError indicates the arXiv request failed after bounded retries.
type FetchError struct {
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return ErrTransient }

// EmptyResultError indicates the query matched no papers inside the window.
// Broadening the query is the caller's decision, not the fetcher's.
type EmptyResultError struct {
	Query      string
	WindowDays int
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("no papers matched query %q within the last %d days", e.Query, e.WindowDays)
}

func (e *EmptyResultError) Unwrap() error { return ErrInconsistent }

// EmptyCatalogError indicates the partitioner was given a catalog with zero
// entries; synthesis must not proceed.
type EmptyCatalogError struct {
	Path string
}

func (e *EmptyCatalogError) Error() string {
	if e.Path == "" {
		return "catalog is empty"
	}
	return fmt.Sprintf("catalog %s is empty", e.Path)
}

func (e *EmptyCatalogError) Unwrap() error { return ErrInconsistent }

// IncompleteChunksError indicates one or more chunks have no summary yet,
// blocking the merge.
type IncompleteChunksError struct {
	Missing []int
}

func (e *IncompleteChunksError) Error() string {
	parts := make([]string, len(e.Missing))
	for i, id := range e.Missing {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("chunks without summaries: %s", strings.Join(parts, ", "))
}

func (e *IncompleteChunksError) Unwrap() error { return ErrInconsistent }

// DanglingCitationError reports analysis citations that resolve to no catalog
// entry. It is warning-level: the merge result stands, the citations are
// flagged rather than dropped.
type DanglingCitationError struct {
	IDs []string
}

func (e *DanglingCitationError) Error() string {
	return fmt.Sprintf("analysis cites %d id(s) absent from the catalog: %s",
		len(e.IDs), strings.Join(e.IDs, ", "))
}

func (e *DanglingCitationError) Unwrap() error { return ErrInconsistent }

// RenderError indicates one export encoding failed; other encodings may
// still have succeeded.
type RenderError struct {
	Encoding string
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("rendering %s: %v", e.Encoding, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
