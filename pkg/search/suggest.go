// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package search

import (
	"encoding/json"
	"strings"

	"github.com/elastic/storefront-search/pkg/esclient"
)

// Suggester names used in suggest request bodies and responses.
const (
	suggestTitle      = "titleCompletion"
	suggestDidYouMean = "didYouMean"

	maxSuggestions = 5
)

// CompileSuggest builds the suggest section for a free-text query: title
// completion candidates plus term-level spelling corrections.
func CompileSuggest(query string) json.RawMessage {
	body := map[string]any{
		suggestTitle: map[string]any{
			"prefix": query,
			"completion": map[string]any{
				"field": "title.suggest",
				"size":  maxSuggestions,
			},
		},
		suggestDidYouMean: map[string]any{
			"text": query,
			"term": map[string]any{
				"field":        "title",
				"suggest_mode": "popular",
			},
		},
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil
	}
	return data
}

// TitleSuggestions extracts the completion candidates from a suggest
// response, deduplicated and capped.
func TitleSuggestions(res *esclient.SearchResponse) []string {
	if res == nil {
		return nil
	}
	var suggestions []string
	seen := map[string]struct{}{}
	for _, entry := range res.Suggest[suggestTitle] {
		for _, option := range entry.Options {
			if _, dup := seen[option.Text]; dup {
				continue
			}
			seen[option.Text] = struct{}{}
			suggestions = append(suggestions, option.Text)
			if len(suggestions) >= maxSuggestions {
				return suggestions
			}
		}
	}
	return suggestions
}

// CorrectedQuery rebuilds the query with each misspelled term replaced by
// its top correction. Returns the empty string when no term had a
// correction, or when the corrected query equals the original.
func CorrectedQuery(res *esclient.SearchResponse, original string) string {
	if res == nil {
		return ""
	}
	entries := res.Suggest[suggestDidYouMean]
	if len(entries) == 0 {
		return ""
	}

	corrections := map[string]string{}
	for _, entry := range entries {
		if len(entry.Options) == 0 {
			continue
		}
		corrections[strings.ToLower(entry.Text)] = entry.Options[0].Text
	}
	if len(corrections) == 0 {
		return ""
	}

	terms := strings.Fields(original)
	changed := false
	for i, term := range terms {
		if corrected, ok := corrections[strings.ToLower(term)]; ok && !strings.EqualFold(term, corrected) {
			terms[i] = corrected
			changed = true
		}
	}
	if !changed {
		return ""
	}
	return strings.Join(terms, " ")
}
