// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package esdsl

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marshal(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func TestQueryWireShapes(t *testing.T) {
	min, max := 10.0, 99.5

	tests := []struct {
		name  string
		query Query
		want  string
	}{
		{
			name:  "match all",
			query: MatchAll{},
			want:  `{"match_all":{}}`,
		},
		{
			name:  "terms",
			query: Terms{Field: "vendor.keyword", Values: []string{"Acme"}},
			want:  `{"terms":{"vendor.keyword":["Acme"]}}`,
		},
		{
			name:  "range omits nil bounds",
			query: Range{Field: "minPrice", GTE: &min},
			want:  `{"range":{"minPrice":{"gte":10}}}`,
		},
		{
			name:  "range with both bounds",
			query: Range{Field: "minPrice", GTE: &min, LTE: &max},
			want:  `{"range":{"minPrice":{"gte":10,"lte":99.5}}}`,
		},
		{
			name: "nested wraps path and query",
			query: Nested{Path: "variants", Query: Term{Field: "variants.availableForSale", Value: true}},
			want: `{"nested":{"path":"variants","query":{"term":{"variants.availableForSale":true}}}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.JSONEq(t, tt.want, marshal(t, tt.query))
		})
	}
}

func TestBoolOmitsEmptyClauses(t *testing.T) {
	q := Bool{
		Must:               []Query{Terms{Field: "tags.keyword", Values: []string{"sale"}}},
		MinimumShouldMatch: 0,
	}
	assert.JSONEq(t, `{"bool":{"must":[{"terms":{"tags.keyword":["sale"]}}]}}`, marshal(t, q))

	should := Bool{
		Should:             []Query{MatchAll{}, MatchAll{}},
		MinimumShouldMatch: 1,
	}
	assert.JSONEq(t,
		`{"bool":{"should":[{"match_all":{}},{"match_all":{}}],"minimum_should_match":1}}`,
		marshal(t, should))
}

func TestSearchBodyShape(t *testing.T) {
	size := 0
	body := SearchBody{
		Query: MatchAll{},
		Size:  &size,
		Aggs: map[string]Aggregation{
			"vendors": TermsAgg{Field: "vendor.keyword", Size: 500, OrderCountDesc: true},
			"variantPriceRange": NestedAgg{
				Path: "variants",
				Aggs: map[string]Aggregation{"prices": StatsAgg{Field: "variants.price.numeric"}},
			},
		},
		Sort: []SortClause{{Field: "title", Order: "asc", Missing: "_last"}},
	}

	want := `{
		"query":{"match_all":{}},
		"size":0,
		"aggs":{
			"vendors":{"terms":{"field":"vendor.keyword","size":500,"order":{"_count":"desc"}}},
			"variantPriceRange":{
				"nested":{"path":"variants"},
				"aggs":{"prices":{"stats":{"field":"variants.price.numeric"}}}
			}
		},
		"sort":[{"title":{"order":"asc","missing":"_last"}}]
	}`
	assert.JSONEq(t, want, marshal(t, body))
}

func TestSearchBodyZeroSizeSerialized(t *testing.T) {
	zero := 0
	data := marshal(t, SearchBody{Size: &zero})
	assert.Contains(t, data, `"size":0`, "explicit zero size must survive omitempty")
}
