// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/arxiv-digest/pkg/types"
)

func TestBuild_Defaults(t *testing.T) {
	b := NewBuilder(nil)

	spec, err := b.Build(Options{Interest: "LLM agents"})
	require.NoError(t, err)

	assert.Equal(t, "LLM agents", spec.RawInterest)
	assert.Equal(t, types.StrictnessNormal, spec.Strictness)
	assert.Equal(t, DefaultWindowDays, spec.WindowDays)
	assert.Equal(t, DefaultMaxResults, spec.MaxResults)
	assert.NotEmpty(t, spec.ResolvedQuery)
	assert.False(t, spec.CreatedAt.IsZero())
}

func TestBuild_Deterministic(t *testing.T) {
	b := NewBuilder(nil)
	opts := Options{Interest: `"retrieval augmented generation" and LLM safety, benchmarks`}

	first, err := b.Build(opts)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := b.Build(opts)
		require.NoError(t, err)
		assert.Equal(t, first.ResolvedQuery, again.ResolvedQuery)
		assert.Equal(t, first.Keywords, again.Keywords)
		assert.Equal(t, first.Categories, again.Categories)
	}
}

func TestBuild_EmptyInterest(t *testing.T) {
	b := NewBuilder(nil)

	_, err := b.Build(Options{Interest: "   "})
	require.Error(t, err)

	var invalid *types.InvalidInterestError
	assert.ErrorAs(t, err, &invalid)
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestBuild_ManualQueryPassthrough(t *testing.T) {
	b := NewBuilder(nil)

	spec, err := b.Build(Options{
		Interest:    "quantum error correction",
		ManualQuery: `cat:quant-ph AND (ti:"error correction")`,
	})
	require.NoError(t, err)

	assert.Equal(t, `cat:quant-ph AND (ti:"error correction")`, spec.ResolvedQuery)
	assert.Empty(t, spec.Keywords)
}

func TestBuild_ManualQueryBadSyntax(t *testing.T) {
	b := NewBuilder(nil)

	_, err := b.Build(Options{
		Interest:    "quantum",
		ManualQuery: "cat:quant-ph AND ((ti:qec)",
	})
	require.Error(t, err)

	var syntaxErr *types.InvalidQuerySyntaxError
	assert.ErrorAs(t, err, &syntaxErr)
}

func TestBuild_CategoryInference(t *testing.T) {
	b := NewBuilder(nil)

	spec, err := b.Build(Options{Interest: "large language model reasoning"})
	require.NoError(t, err)

	assert.Contains(t, spec.Categories, "cs.CL")
	assert.Contains(t, spec.ResolvedQuery, "cat:cs.CL")
	assert.Contains(t, spec.ResolvedQuery, " AND ")
}

func TestBuild_ShortTriggerNeedsWholeWord(t *testing.T) {
	b := NewBuilder(nil)

	// "maintain" contains "ai" but must not trigger the cs.AI rule.
	spec, err := b.Build(Options{Interest: "software maintainability metrics"})
	require.NoError(t, err)
	assert.NotContains(t, spec.Categories, "cs.AI")

	spec, err = b.Build(Options{Interest: "ai planning systems"})
	require.NoError(t, err)
	assert.Contains(t, spec.Categories, "cs.AI")
}

func TestBuild_IncludeExcludeCategories(t *testing.T) {
	b := NewBuilder(nil)

	spec, err := b.Build(Options{
		Interest:          "large language model reasoning",
		IncludeCategories: []string{"cs.SE"},
		ExcludeCategories: []string{"cs.CL"},
	})
	require.NoError(t, err)

	assert.Contains(t, spec.Categories, "cs.SE")
	assert.NotContains(t, spec.Categories, "cs.CL")
}

func TestBuildKeywordClause_Strictness(t *testing.T) {
	keywords := []string{
		"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "eta",
		"theta", "iota", "kappa", "lambda", "mu", "nu", "xi",
	}

	broad := buildKeywordClause(keywords, types.StrictnessBroad)
	normal := buildKeywordClause(keywords, types.StrictnessNormal)
	focused := buildKeywordClause(keywords, types.StrictnessFocused)

	// Broad keeps 12 keywords, normal 8, focused 2 required + 4 optional.
	assert.Equal(t, 12, strings.Count(broad, "ti:"))
	assert.Equal(t, 8, strings.Count(normal, "ti:"))
	assert.Equal(t, 6, strings.Count(focused, "ti:"))

	assert.NotContains(t, broad, " AND ")
	assert.NotContains(t, normal, " AND ")
	assert.Contains(t, focused, " AND ")
}

func TestBuildKeywordClause_FocusedSingleKeyword(t *testing.T) {
	clause := buildKeywordClause([]string{"alpha"}, types.StrictnessFocused)

	// Not enough keywords for required pairing; falls back to OR form.
	assert.Equal(t, `((ti:"alpha" OR abs:"alpha"))`, clause)
}

func TestValidateSyntax(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr bool
	}{
		{"balanced", `(cat:cs.AI) AND (ti:"agents")`, false},
		{"empty", "   ", true},
		{"unclosed", "((ti:a)", true},
		{"early close", ")ti:a(", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSyntax(tt.query)
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBuild_NoKeywordsFallsBackToAllFields(t *testing.T) {
	b := NewBuilder(fixedExtractor{})

	spec, err := b.Build(Options{Interest: "the and or"})
	require.NoError(t, err)
	assert.Equal(t, `(all:"the and or")`, spec.ResolvedQuery)
}

type fixedExtractor struct{ keywords []string }

func (f fixedExtractor) Extract(string) []string { return f.keywords }

func TestBuild_CustomExtractor(t *testing.T) {
	b := NewBuilder(fixedExtractor{keywords: []string{"spin glass"}})

	spec, err := b.Build(Options{Interest: "anything at all"})
	require.NoError(t, err)
	assert.Equal(t, []string{"spin glass"}, spec.Keywords)
	assert.Contains(t, spec.ResolvedQuery, `ti:"spin glass"`)
}

func TestSpecFile_RoundTrip(t *testing.T) {
	b := NewBuilder(nil)
	spec, err := b.Build(Options{Interest: "diffusion models for video"})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "query.yaml")
	require.NoError(t, WriteSpecFile(path, spec))

	loaded, err := ReadSpecFile(path)
	require.NoError(t, err)

	assert.Equal(t, spec.ResolvedQuery, loaded.ResolvedQuery)
	assert.Equal(t, spec.Keywords, loaded.Keywords)
	assert.Equal(t, spec.Strictness, loaded.Strictness)
	assert.Equal(t, spec.WindowDays, loaded.WindowDays)
}

func TestReadSpecFile_Missing(t *testing.T) {
	_, err := ReadSpecFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, types.ErrInvalidInput))
}
