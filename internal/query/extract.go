// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"regexp"
	"strings"
)

// Extractor derives search keywords from plain-language interest text.
// Keyword extraction is deliberately pluggable: the heuristic below is one
// strategy, not the contract.
type Extractor interface {
	Extract(interest string) []string
}

// stopwords are filler tokens dropped from interest phrases.
var stopwords = map[string]bool{
	"paper": true, "papers": true, "research": true, "latest": true,
	"recent": true, "study": true, "studies": true, "topic": true,
	"about": true, "on": true, "for": true, "the": true, "a": true,
	"an": true, "and": true, "or": true,
}

// synonymHints expands high-signal terms with common phrasings so narrow
// interests still match abstracts that use different wording. Kept as an
// ordered slice: extraction output must be deterministic.
var synonymHints = []struct {
	trigger  string
	synonyms []string
}{
	{"llm", []string{"large language model", "language model", "instruction tuning", "reasoning model"}},
	{"rag", []string{"retrieval augmented generation", "retrieval-augmented generation"}},
	{"agent", []string{"ai agent", "agentic workflow", "tool use"}},
	{"multimodal", []string{"vision language", "text image", "audio language"}},
	{"safety", []string{"alignment", "robustness", "hallucination"}},
	{"benchmark", []string{"benchmark protocol", "leaderboard"}},
}

var (
	quotedPhraseRE = regexp.MustCompile(`"([^"]+)"`)
	phraseSplitRE  = regexp.MustCompile(`(?i),|;|/|\band\b|\bor\b|\+`)
	tokenSplitRE   = regexp.MustCompile(`[^a-z0-9\-]+`)
	wordSplitRE    = regexp.MustCompile(`[^a-z0-9]+`)
	whitespaceRE   = regexp.MustCompile(`\s+`)
)

// HeuristicExtractor is the default keyword strategy: quoted phrases are kept
// verbatim, the remaining text is split on delimiters and conjunctions,
// stopwords are dropped, long phrases gain shorter recall variants, and
// synonym hints are appended.
type HeuristicExtractor struct{}

// Extract returns the ordered, deduplicated keyword list for interest.
// The output is deterministic for identical input.
func (HeuristicExtractor) Extract(interest string) []string {
	keywords := dedupeKeepOrder(append(quotedPhrases(interest), splitPhrases(interest)...))
	if len(keywords) == 0 {
		keywords = []string{norm(interest)}
	}
	keywords = recallExpand(keywords)
	return expandSynonyms(keywords)
}

// norm lowercases text and collapses runs of whitespace.
func norm(text string) string {
	return whitespaceRE.ReplaceAllString(strings.ToLower(strings.TrimSpace(text)), " ")
}

func dedupeKeepOrder(items []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range items {
		if item != "" && !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}

// quotedPhrases returns normalized phrases the user wrapped in double quotes.
func quotedPhrases(text string) []string {
	var phrases []string
	for _, m := range quotedPhraseRE.FindAllStringSubmatch(text, -1) {
		phrases = append(phrases, norm(m[1]))
	}
	return dedupeKeepOrder(phrases)
}

// splitPhrases splits the unquoted interest text on delimiters and
// conjunctions, then drops stopword tokens inside each phrase.
func splitPhrases(text string) []string {
	withoutQuotes := quotedPhraseRE.ReplaceAllString(text, " ")
	var cleaned []string
	for _, part := range phraseSplitRE.Split(withoutQuotes, -1) {
		normalized := norm(part)
		if normalized == "" {
			continue
		}
		var kept []string
		for _, tok := range tokenSplitRE.Split(normalized, -1) {
			if tok != "" && !stopwords[tok] {
				kept = append(kept, tok)
			}
		}
		if phrase := strings.Join(kept, " "); phrase != "" {
			cleaned = append(cleaned, phrase)
		}
	}
	return dedupeKeepOrder(cleaned)
}

// recallExpand adds shorter variants of long phrases and high-signal single
// tokens so precise interests do not over-constrain the query.
func recallExpand(keywords []string) []string {
	var expanded []string
	for _, phrase := range keywords {
		var tokens []string
		for _, tok := range wordSplitRE.Split(norm(phrase), -1) {
			if tok != "" && !stopwords[tok] {
				tokens = append(tokens, tok)
			}
		}
		if len(tokens) == 0 {
			continue
		}

		expanded = append(expanded, norm(phrase))

		if len(tokens) >= 3 {
			expanded = append(expanded, strings.Join(tokens[:2], " "))
			expanded = append(expanded, strings.Join(tokens[len(tokens)-2:], " "))
		}
		if len(tokens) >= 4 {
			expanded = append(expanded, strings.Join(tokens[:3], " "))
		}

		for _, tok := range tokens {
			if len(tok) >= 4 || tok == "ai" || tok == "llm" || tok == "rag" {
				expanded = append(expanded, tok)
			}
		}
	}
	return dedupeKeepOrder(expanded)
}

// expandSynonyms appends synonym hints triggered by the keyword text.
func expandSynonyms(keywords []string) []string {
	expanded := append([]string(nil), keywords...)
	text := strings.Join(keywords, " ")
	for _, hint := range synonymHints {
		if strings.Contains(text, hint.trigger) {
			expanded = append(expanded, hint.synonyms...)
		}
	}
	return dedupeKeepOrder(expanded)
}
