// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elastic/storefront-search/pkg/esclient"
)

func suggestResponse(entries map[string][]esclient.Suggestion) *esclient.SearchResponse {
	return &esclient.SearchResponse{Suggest: entries}
}

func options(texts ...string) []esclient.SuggestionOption {
	opts := make([]esclient.SuggestionOption, 0, len(texts))
	for _, text := range texts {
		opts = append(opts, esclient.SuggestionOption{Text: text})
	}
	return opts
}

func TestCompileSuggestShape(t *testing.T) {
	raw := CompileSuggest("jaket")
	require.NotNil(t, raw)
	assert.JSONEq(t, `{
		"titleCompletion":{
			"prefix":"jaket",
			"completion":{"field":"title.suggest","size":5}
		},
		"didYouMean":{
			"text":"jaket",
			"term":{"field":"title","suggest_mode":"popular"}
		}
	}`, string(raw))
}

func TestTitleSuggestions(t *testing.T) {
	res := suggestResponse(map[string][]esclient.Suggestion{
		suggestTitle: {
			{Options: options("Jacket", "Jacket", "Jacket Blue")},
			{Options: options("Jacket Red", "Jackpot", "Jam", "Jeans", "Jumper")},
		},
	})

	got := TitleSuggestions(res)
	assert.Equal(t, []string{"Jacket", "Jacket Blue", "Jacket Red", "Jackpot", "Jam"}, got,
		"deduplicated and capped at five")

	assert.Nil(t, TitleSuggestions(nil))
	assert.Empty(t, TitleSuggestions(&esclient.SearchResponse{}))
}

func TestCorrectedQuery(t *testing.T) {
	t.Run("misspelled terms replaced", func(t *testing.T) {
		res := suggestResponse(map[string][]esclient.Suggestion{
			suggestDidYouMean: {
				{Text: "blu", Options: options("blue")},
				{Text: "jaket", Options: options("jacket")},
			},
		})
		assert.Equal(t, "blue jacket", CorrectedQuery(res, "blu jaket"))
	})

	t.Run("no corrections yields empty", func(t *testing.T) {
		res := suggestResponse(map[string][]esclient.Suggestion{
			suggestDidYouMean: {{Text: "jacket", Options: nil}},
		})
		assert.Equal(t, "", CorrectedQuery(res, "jacket"))
	})

	t.Run("case-only corrections do not count", func(t *testing.T) {
		res := suggestResponse(map[string][]esclient.Suggestion{
			suggestDidYouMean: {{Text: "jacket", Options: options("Jacket")}},
		})
		assert.Equal(t, "", CorrectedQuery(res, "jacket"))
	})

	t.Run("partial corrections keep the rest", func(t *testing.T) {
		res := suggestResponse(map[string][]esclient.Suggestion{
			suggestDidYouMean: {{Text: "jaket", Options: options("jacket")}},
		})
		assert.Equal(t, "blue jacket", CorrectedQuery(res, "blue jaket"))
	})
}
