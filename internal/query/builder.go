// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package query turns a plain-language research interest into a validated
// arXiv search expression. Building a query is a pure transform: no network
// calls, no randomness, identical input produces identical output.
package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pdiddy/arxiv-digest/pkg/types"
)

// Pipeline defaults for the query stage.
const (
	DefaultWindowDays = 7
	DefaultMaxResults = 66
)

// categoryRule maps trigger terms found in the interest text to arXiv
// category constraints. Short triggers (≤3 chars) must match as whole words.
type categoryRule struct {
	triggers   []string
	categories []string
}

var categoryRules = []categoryRule{
	{[]string{"ai", "artificial intelligence"}, []string{"cs.AI"}},
	{[]string{"llm", "large language model", "language model", "prompt", "rag", "retrieval"}, []string{"cs.CL", "cs.AI"}},
	{[]string{"nlp", "text generation", "summarization", "translation"}, []string{"cs.CL"}},
	{[]string{"machine learning", "deep learning", "representation learning", "foundation model"}, []string{"cs.LG", "stat.ML"}},
	{[]string{"reinforcement learning", "policy optimization"}, []string{"cs.LG", "cs.AI"}},
	{[]string{"vision", "image", "video", "multimodal", "vision-language", "vla"}, []string{"cs.CV", "cs.AI"}},
	{[]string{"robot", "robotics", "embodied", "agentic"}, []string{"cs.RO", "cs.AI"}},
	{[]string{"security", "privacy", "adversarial", "cyber"}, []string{"cs.CR"}},
	{[]string{"recommendation", "retrieval", "search", "ranking"}, []string{"cs.IR"}},
	{[]string{"database", "data management", "query optimization"}, []string{"cs.DB"}},
	{[]string{"distributed", "systems", "serving", "inference optimization", "latency"}, []string{"cs.DC", "cs.SE"}},
	{[]string{"quantum", "quantum computing", "quantum information"}, []string{"quant-ph"}},
	{[]string{"finance", "trading", "portfolio", "market"}, []string{"q-fin.TR", "q-fin.ST"}},
	{[]string{"biology", "genomics", "protein", "drug discovery", "bioinformatics"}, []string{"q-bio.QM", "q-bio.GN"}},
	{[]string{"math optimization", "convex optimization", "optimization theory"}, []string{"math.OC"}},
}

// Options are the caller-supplied query parameters.
type Options struct {
	// Interest is the plain-language research interest. Required.
	Interest string `validate:"required"`

	// ManualQuery, when set, bypasses keyword extraction and is passed
	// through unchanged after syntax validation.
	ManualQuery string

	// Strictness selects the keyword-clause strictness (default normal).
	Strictness types.Strictness `validate:"omitempty,oneof=broad normal focused"`

	// WindowDays is the lookback window (default 7).
	WindowDays int `validate:"min=0"`

	// MaxResults caps the catalog size (default 66).
	MaxResults int `validate:"gt=0"`

	// IncludeCategories forces additional category constraints.
	IncludeCategories []string

	// ExcludeCategories removes inferred categories.
	ExcludeCategories []string
}

// Builder derives QuerySpecs from interest text using a pluggable keyword
// extraction strategy.
type Builder struct {
	extractor Extractor
	validate  *validator.Validate
	now       func() time.Time
}

// NewBuilder returns a Builder using the given extractor, or the heuristic
// default when extractor is nil.
func NewBuilder(extractor Extractor) *Builder {
	if extractor == nil {
		extractor = HeuristicExtractor{}
	}
	return &Builder{
		extractor: extractor,
		validate:  validator.New(),
		now:       time.Now,
	}
}

// Build validates opts and produces the QuerySpec for one run.
func (b *Builder) Build(opts Options) (types.QuerySpec, error) {
	if strings.TrimSpace(opts.Interest) == "" {
		return types.QuerySpec{}, &types.InvalidInterestError{Reason: "interest text is empty"}
	}
	if opts.Strictness == "" {
		opts.Strictness = types.StrictnessNormal
	}
	if opts.WindowDays == 0 {
		opts.WindowDays = DefaultWindowDays
	}
	if opts.MaxResults == 0 {
		opts.MaxResults = DefaultMaxResults
	}
	if err := b.validate.Struct(opts); err != nil {
		return types.QuerySpec{}, fmt.Errorf("%w: %v", types.ErrInvalidInput, err)
	}

	spec := types.QuerySpec{
		RawInterest: opts.Interest,
		Strictness:  opts.Strictness,
		WindowDays:  opts.WindowDays,
		MaxResults:  opts.MaxResults,
		CreatedAt:   b.now().UTC(),
	}

	if opts.ManualQuery != "" {
		if err := ValidateSyntax(opts.ManualQuery); err != nil {
			return types.QuerySpec{}, err
		}
		spec.ResolvedQuery = opts.ManualQuery
		spec.Categories = dedupeKeepOrder(opts.IncludeCategories)
		spec.Notes = []string{"Used user-provided query without modification."}
		return spec, nil
	}

	keywords := b.extractor.Extract(opts.Interest)
	categories := inferCategories(opts.Interest, opts.IncludeCategories, opts.ExcludeCategories)

	keywordClause := buildKeywordClause(keywords, opts.Strictness)
	categoryClause := buildCategoryClause(categories)

	var resolved string
	switch {
	case categoryClause != "" && keywordClause != "":
		resolved = categoryClause + " AND " + keywordClause
	case keywordClause != "":
		resolved = keywordClause
	case categoryClause != "":
		resolved = categoryClause
	default:
		resolved = fmt.Sprintf("(all:%q)", norm(opts.Interest))
	}

	if err := ValidateSyntax(resolved); err != nil {
		return types.QuerySpec{}, fmt.Errorf("generated query: %w", err)
	}

	spec.ResolvedQuery = resolved
	spec.Keywords = keywords
	spec.Categories = categories
	if len(categories) > 0 {
		spec.Notes = []string{"Included inferred category constraints."}
	} else {
		spec.Notes = []string{"No category constraints inferred; using keyword-only query."}
	}
	return spec, nil
}

// ValidateSyntax checks a query against the arXiv search grammar basics:
// non-empty and balanced parentheses.
func ValidateSyntax(q string) error {
	if strings.TrimSpace(q) == "" {
		return &types.InvalidQuerySyntaxError{Query: q, Reason: "query is empty"}
	}
	depth := 0
	for _, r := range q {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return &types.InvalidQuerySyntaxError{Query: q, Reason: "unbalanced parentheses"}
			}
		}
	}
	if depth != 0 {
		return &types.InvalidQuerySyntaxError{Query: q, Reason: "unbalanced parentheses"}
	}
	return nil
}

// inferCategories applies categoryRules to the interest text, then merges
// forced includes and drops excludes.
func inferCategories(interest string, include, exclude []string) []string {
	interestNorm := norm(interest)
	padded := " " + interestNorm + " "

	var inferred []string
	for _, rule := range categoryRules {
		matched := false
		for _, trigger := range rule.triggers {
			t := norm(trigger)
			if len(t) <= 3 {
				if strings.Contains(padded, " "+t+" ") {
					matched = true
					break
				}
			} else if strings.Contains(interestNorm, t) {
				matched = true
				break
			}
		}
		if matched {
			inferred = append(inferred, rule.categories...)
		}
	}

	inferred = dedupeKeepOrder(append(inferred, include...))

	if len(exclude) > 0 {
		excluded := make(map[string]bool, len(exclude))
		for _, cat := range exclude {
			excluded[cat] = true
		}
		var kept []string
		for _, cat := range inferred {
			if !excluded[cat] {
				kept = append(kept, cat)
			}
		}
		inferred = kept
	}
	return inferred
}

// singleKeywordClause matches one keyword in either title or abstract.
func singleKeywordClause(keyword string) string {
	escaped := strings.ReplaceAll(keyword, `"`, "")
	return fmt.Sprintf(`(ti:%q OR abs:%q)`, escaped, escaped)
}

// buildKeywordClause ORs (or, for focused strictness, partially ANDs) the
// keyword clauses. Keyword counts per strictness follow the defaults the
// pipeline has always used: 12 broad, 8 normal, 2+4 focused.
func buildKeywordClause(keywords []string, strictness types.Strictness) string {
	if len(keywords) == 0 {
		return ""
	}

	orJoin := func(kws []string) string {
		parts := make([]string, len(kws))
		for i, kw := range kws {
			parts[i] = singleKeywordClause(kw)
		}
		return strings.Join(parts, " OR ")
	}

	switch {
	case strictness == types.StrictnessBroad:
		return "(" + orJoin(limit(keywords, 12)) + ")"
	case strictness == types.StrictnessFocused && len(keywords) >= 2:
		required := keywords[:2]
		optional := limit(keywords[2:], 4)
		requiredClause := singleKeywordClause(required[0]) + " AND " + singleKeywordClause(required[1])
		if len(optional) > 0 {
			return fmt.Sprintf("((%s) AND (%s))", requiredClause, orJoin(optional))
		}
		return "(" + requiredClause + ")"
	default:
		return "(" + orJoin(limit(keywords, 8)) + ")"
	}
}

func buildCategoryClause(categories []string) string {
	if len(categories) == 0 {
		return ""
	}
	parts := make([]string, len(categories))
	for i, cat := range categories {
		parts[i] = "cat:" + cat
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

func limit(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
