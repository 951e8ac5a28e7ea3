// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package search

import "github.com/elastic/storefront-search/pkg/queryparams"

// Facet value types surfaced to the storefront.
const (
	FacetTypeVendor      = "vendor"
	FacetTypeProductType = "productType"
	FacetTypeTag         = "tag"
	FacetTypeCollection  = "collection"
	FacetTypePrice       = "price"
	FacetTypeOption      = "option"
)

// Pagination describes the result window of a listing response.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// FacetValue is one selectable value of a facet with its document count.
type FacetValue struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
	Label string `json:"label,omitempty"`
}

// Facet is one refinement dimension offered to the storefront, ordered by
// its configured position.
type Facet struct {
	Handle   string       `json:"handle"`
	Label    string       `json:"label"`
	Type     string       `json:"type"`
	Values   []FacetValue `json:"values"`
	Position int          `json:"position"`
}

// PriceRange is the observed price span of the current result set.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Facets is the formatted aggregation output.
type Facets struct {
	Filters           []Facet     `json:"filters"`
	PriceRange        *PriceRange `json:"priceRange,omitempty"`
	VariantPriceRange *PriceRange `json:"variantPriceRange,omitempty"`
}

// Product is a storefront product document, optionally projected to the
// requested field paths.
type Product = map[string]any

// ProductsResult is the payload of the products endpoint.
type ProductsResult struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
	Filters    *Facets    `json:"filters,omitempty"`
}

// FiltersResult is the payload of the filters endpoint.
type FiltersResult struct {
	Filters           []Facet                  `json:"filters"`
	PriceRange        *PriceRange              `json:"priceRange,omitempty"`
	VariantPriceRange *PriceRange              `json:"variantPriceRange,omitempty"`
	AppliedFilters    *queryparams.FilterInput `json:"appliedFilters"`
}

// QueryCorrection reports a substituted search query.
type QueryCorrection struct {
	Original  string `json:"original"`
	Corrected string `json:"corrected"`
	Message   string `json:"message"`
}

// SearchMetadata carries search execution details.
type SearchMetadata struct {
	Query  string `json:"query"`
	TookMs int    `json:"tookMs"`
	Total  int    `json:"total"`
}

// SearchResult is the payload of the search endpoint.
type SearchResult struct {
	Products           []Product        `json:"products"`
	Pagination         Pagination       `json:"pagination"`
	Suggestions        []string         `json:"suggestions,omitempty"`
	ZeroResults        bool             `json:"zeroResults,omitempty"`
	AlternativeQueries []string         `json:"alternativeQueries,omitempty"`
	DidYouMean         string           `json:"didYouMean,omitempty"`
	Facets             *Facets          `json:"facets,omitempty"`
	QueryCorrection    *QueryCorrection `json:"queryCorrection,omitempty"`
	SearchMetadata     SearchMetadata   `json:"searchMetadata"`
}
