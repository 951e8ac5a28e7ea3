// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package queryparams

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStandardParameters(t *testing.T) {
	input := Parse(url.Values{
		"search":      []string{"  denim jacket "},
		"vendor":      []string{"Acme,Globex"},
		"productType": []string{"Jacket"},
		"tags":        []string{"sale,new"},
		"collection":  []string{"gid://shopify/Collection/100", "summer"},
		"priceMin":    []string{"10.5"},
		"priceMax":    []string{"99"},
		"page":        []string{"3"},
		"limit":       []string{"50"},
	})

	assert.Equal(t, "denim jacket", input.Search)
	assert.Equal(t, []string{"Acme", "Globex"}, input.Vendors)
	assert.Equal(t, []string{"Jacket"}, input.ProductTypes)
	assert.Equal(t, []string{"sale", "new"}, input.Tags)
	assert.ElementsMatch(t, []string{"100", "summer"}, input.Collections)
	require.NotNil(t, input.PriceMin)
	assert.Equal(t, 10.5, *input.PriceMin)
	require.NotNil(t, input.PriceMax)
	assert.Equal(t, 99.0, *input.PriceMax)
	assert.Equal(t, 3, input.Page)
	assert.Equal(t, 50, input.Limit)
}

func TestParseOptionDiscovery(t *testing.T) {
	tests := []struct {
		name    string
		query   url.Values
		wantKey string
		wantVal []string
	}{
		{
			name:    "bracket shape",
			query:   url.Values{"options[Color]": []string{"Red,Blue"}},
			wantKey: "Color",
			wantVal: []string{"Red", "Blue"},
		},
		{
			name:    "dot prefix",
			query:   url.Values{"option.Size": []string{"M"}},
			wantKey: "Size",
			wantVal: []string{"M"},
		},
		{
			name:    "underscore prefix",
			query:   url.Values{"option_Material": []string{"Wool"}},
			wantKey: "Material",
			wantVal: []string{"Wool"},
		},
		{
			name:    "handle shaped key",
			query:   url.Values{"pa_color": []string{"Red"}},
			wantKey: "pa_color",
			wantVal: []string{"Red"},
		},
		{
			name:    "bare short key passes heuristic",
			query:   url.Values{"fabric": []string{"Linen"}},
			wantKey: "fabric",
			wantVal: []string{"Linen"},
		},
		{
			name:    "color passes heuristic",
			query:   url.Values{"color": []string{"Red"}},
			wantKey: "color",
			wantVal: []string{"Red"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := Parse(tt.query)
			assert.Equal(t, tt.wantVal, input.Options[tt.wantKey])
		})
	}
}

func TestParseOptionDiscoveryRejections(t *testing.T) {
	input := Parse(url.Values{
		"brand":      []string{"Acme"},  // common word, not a handle
		"sort":       []string{"Red"},   // reserved
		"shopDomain": []string{"x.com"}, // reserved
		"fields":     []string{"title"}, // reserved
		"x":          []string{"v"},     // too short for a handle
		"Weird-Key!": []string{"v"},     // shape mismatch
	})
	assert.Empty(t, input.Options)
}

func TestParseSanitizedColorOption(t *testing.T) {
	raw := url.Values{"color": []string{"Red <script>"}}
	input := Parse(Sanitize(raw))
	assert.Equal(t, []string{"Red script"}, input.Options["color"])
}

func TestParseOptionsJSON(t *testing.T) {
	t.Run("string and array values merge", func(t *testing.T) {
		input := Parse(url.Values{
			"options": []string{`{"Color":["Red","Blue"],"Size":"M"}`},
		})
		assert.Equal(t, []string{"Red", "Blue"}, input.Options["Color"])
		assert.Equal(t, []string{"M"}, input.Options["Size"])
	})

	t.Run("malformed JSON ignored, rest still parses", func(t *testing.T) {
		input := Parse(url.Values{
			"options": []string{`{"Color":`},
			"vendor":  []string{"Acme"},
		})
		assert.Empty(t, input.Options)
		assert.Equal(t, []string{"Acme"}, input.Vendors)
	})
}

func TestParseCPIDAndsIntoCollections(t *testing.T) {
	input := Parse(url.Values{
		"cpid":       []string{"gid://shopify/Collection/42"},
		"collection": []string{"7"},
	})
	assert.Equal(t, "gid://shopify/Collection/42", input.CPID)
	assert.ElementsMatch(t, []string{"7", "42"}, input.Collections)
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"title:asc", "title:asc"},
		{"price:desc", "minPrice:desc"},
		{"createdAt:desc", "createdAt:desc"},
		{"title", ""},
		{"title:sideways", ""},
		{"; DROP TABLE:asc", ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			input := Parse(url.Values{"sort": []string{tt.raw}})
			assert.Equal(t, tt.want, input.Sort)
		})
	}
}

func TestParseClamping(t *testing.T) {
	input := Parse(url.Values{
		"page":     []string{"-3"},
		"limit":    []string{"5000"},
		"priceMin": []string{"NaN"},
		"priceMax": []string{"-1"},
	})
	assert.Equal(t, DefaultPage, input.Page)
	assert.Equal(t, MaxLimit, input.Limit)
	assert.Nil(t, input.PriceMin)
	assert.Nil(t, input.PriceMax)
}

func TestParseKeepOption(t *testing.T) {
	input := Parse(url.Values{"preserveOptionAggregations": []string{"Color"}})
	assert.Equal(t, "Color", input.KeepOption)
}

func TestFilterInputHashDeterministic(t *testing.T) {
	a := Parse(url.Values{
		"vendor":         []string{"Acme"},
		"options[Color]": []string{"Red"},
		"options[Size]":  []string{"M"},
	})
	b := Parse(url.Values{
		"options[Size]":  []string{"M"},
		"options[Color]": []string{"Red"},
		"vendor":         []string{"Acme"},
	})
	assert.Equal(t, a.Hash(), b.Hash(), "map iteration order must not leak into the hash")
	assert.Len(t, a.Hash(), 16)

	c := Parse(url.Values{"vendor": []string{"Other"}})
	assert.NotEqual(t, a.Hash(), c.Hash())
}

func TestTotalPages(t *testing.T) {
	input := NewFilterInput()
	input.Limit = 20
	assert.Equal(t, 0, input.TotalPages(0))
	assert.Equal(t, 1, input.TotalPages(20))
	assert.Equal(t, 2, input.TotalPages(21))

	input.Limit = 0
	assert.Equal(t, 7, input.TotalPages(7), "zero limit must not divide by zero")
}
