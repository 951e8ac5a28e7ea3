// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

// Package search compiles filter inputs into Elasticsearch queries, executes
// them through the cached request layer and formats the results into the
// public storefront shapes.
package search

import (
	"sort"
	"strings"

	"github.com/elastic/storefront-search/pkg/esdsl"
	"github.com/elastic/storefront-search/pkg/queryparams"
	"github.com/elastic/storefront-search/pkg/utils/stringsutil"
)

// Indexed product fields the compiler targets.
const (
	fieldVendor            = "vendor.keyword"
	fieldProductType       = "productType.keyword"
	fieldTags              = "tags.keyword"
	fieldCollections       = "collections.keyword"
	fieldOptionPairs       = "optionPairs.keyword"
	fieldVariantOptionKeys = "variantOptionKeys.keyword"
	fieldMinPrice          = "minPrice"
	fieldMaxPrice          = "maxPrice"

	nestedVariantsPath         = "variants"
	fieldVariantSku            = "variants.sku"
	fieldVariantPrice          = "variants.price.numeric"
	fieldVariantAvailable      = "variants.availableForSale"
	fieldVariantInventory      = "variants.inventoryQuantity"
	fieldVariantSellableOnline = "variants.sellableOnlineQuantity"
)

// OptionPairSeparator joins option name and value in indexed optionPairs
// tokens, e.g. "Color::Red".
const OptionPairSeparator = "::"

// QueryContext selects the price-bound semantics: facet queries use overlap
// semantics across the min/max price span, search queries accept a product
// when either price endpoint falls inside the requested window.
type QueryContext int

const (
	FacetsContext QueryContext = iota
	SearchContext
)

// CompileQuery translates a rewritten filter input into the document query.
// Clauses are additive and AND-ed; an input with no active filters compiles
// to match_all. keepOption, when non-empty, removes the clause of the named
// facet so that clearing it can be previewed.
func CompileQuery(input *queryparams.FilterInput, qctx QueryContext, keepOption string) esdsl.Query {
	must := compileMustClauses(input, qctx, keepOption)
	if len(must) == 0 {
		return esdsl.MatchAll{}
	}
	return esdsl.Bool{Must: must}
}

func compileMustClauses(input *queryparams.FilterInput, qctx QueryContext, keepOption string) []esdsl.Query {
	keep := stringsutil.LowerTrim(keepOption)
	kept := func(name string) bool {
		return keep != "" && stringsutil.LowerTrim(name) == keep
	}

	var must []esdsl.Query

	if input.Search != "" {
		must = append(must, esdsl.MultiMatch{
			Query:    input.Search,
			Fields:   []string{"title^3", "vendor^2", "productType", "tags"},
			Type:     "best_fields",
			Operator: "and",
		})
	}
	if len(input.Vendors) > 0 && !kept("vendor") {
		must = append(must, esdsl.Terms{Field: fieldVendor, Values: input.Vendors})
	}
	if len(input.ProductTypes) > 0 && !kept("producttype") {
		must = append(must, esdsl.Terms{Field: fieldProductType, Values: input.ProductTypes})
	}
	if len(input.Tags) > 0 && !kept("tag") {
		must = append(must, esdsl.Terms{Field: fieldTags, Values: input.Tags})
	}
	if len(input.Collections) > 0 && !kept("collection") {
		must = append(must, esdsl.Terms{Field: fieldCollections, Values: input.Collections})
	}
	if len(input.VariantOptionKeys) > 0 {
		must = append(must, esdsl.Terms{Field: fieldVariantOptionKeys, Values: input.VariantOptionKeys})
	}
	must = append(must, compileOptionClauses(input, kept)...)
	if clause := compilePriceClause(input, qctx); clause != nil {
		must = append(must, clause)
	}
	if clause := compileVariantPriceClause(input); clause != nil {
		must = append(must, clause)
	}
	if len(input.VariantSkus) > 0 {
		must = append(must, esdsl.Nested{
			Path:  nestedVariantsPath,
			Query: esdsl.Terms{Field: fieldVariantSku, Values: input.VariantSkus},
		})
	}
	if input.HideOutOfStockItems {
		must = append(must, compileInStockClause())
	}

	return must
}

// compileOptionClauses emits one optionPairs terms clause per option: values
// OR within an option, AND across options. Options iterate in sorted name
// order so compiled queries are deterministic.
func compileOptionClauses(input *queryparams.FilterInput, kept func(string) bool) []esdsl.Query {
	if len(input.Options) == 0 {
		return nil
	}
	names := make([]string, 0, len(input.Options))
	for name := range input.Options {
		names = append(names, name)
	}
	sort.Strings(names)

	var clauses []esdsl.Query
	for _, name := range names {
		if kept(name) {
			continue
		}
		values := input.Options[name]
		if len(values) == 0 {
			continue
		}
		pairs := make([]string, 0, len(values))
		for _, v := range values {
			pairs = append(pairs, name+OptionPairSeparator+v)
		}
		clauses = append(clauses, esdsl.Terms{Field: fieldOptionPairs, Values: pairs})
	}
	return clauses
}

// compilePriceClause builds the product-level price clause.
//
// Facets context uses overlap semantics: a product qualifies when its price
// span [minPrice, maxPrice] overlaps the requested window, i.e.
// maxPrice >= priceMin AND minPrice <= priceMax.
//
// Search context accepts a product when either endpoint falls inside the
// window (bool.should with minimum_should_match 1).
func compilePriceClause(input *queryparams.FilterInput, qctx QueryContext) esdsl.Query {
	if !input.HasPriceFilter() {
		return nil
	}
	if qctx == SearchContext {
		return esdsl.Bool{
			Should: []esdsl.Query{
				esdsl.Range{Field: fieldMinPrice, GTE: input.PriceMin, LTE: input.PriceMax},
				esdsl.Range{Field: fieldMaxPrice, GTE: input.PriceMin, LTE: input.PriceMax},
			},
			MinimumShouldMatch: 1,
		}
	}
	var must []esdsl.Query
	if input.PriceMin != nil {
		must = append(must, esdsl.Range{Field: fieldMaxPrice, GTE: input.PriceMin})
	}
	if input.PriceMax != nil {
		must = append(must, esdsl.Range{Field: fieldMinPrice, LTE: input.PriceMax})
	}
	return esdsl.Bool{Must: must}
}

func compileVariantPriceClause(input *queryparams.FilterInput) esdsl.Query {
	if input.VariantPriceMin == nil && input.VariantPriceMax == nil {
		return nil
	}
	return esdsl.Nested{
		Path:  nestedVariantsPath,
		Query: esdsl.Range{Field: fieldVariantPrice, GTE: input.VariantPriceMin, LTE: input.VariantPriceMax},
	}
}

// compileInStockClause matches products with at least one purchasable
// variant, by any of the three availability signals.
func compileInStockClause() esdsl.Query {
	zero := 0.0
	return esdsl.Nested{
		Path: nestedVariantsPath,
		Query: esdsl.Bool{
			Should: []esdsl.Query{
				esdsl.Term{Field: fieldVariantAvailable, Value: true},
				esdsl.Range{Field: fieldVariantInventory, GT: &zero},
				esdsl.Range{Field: fieldVariantSellableOnline, GT: &zero},
			},
			MinimumShouldMatch: 1,
		},
	}
}

// sortFields are the indexed fields an explicit sort may target. Anything
// else falls back to the default sort.
var sortFields = map[string]struct{}{
	"createdAt": {}, "updatedAt": {}, "publishedAt": {},
	"title.keyword": {}, "title": {},
	"minPrice": {}, "maxPrice": {},
	"vendor.keyword": {}, "productType.keyword": {},
}

const defaultSortField = "createdAt"

// CompileSort resolves the effective sort: an explicit valid sort wins, a
// free-text query sorts by relevance, everything else by recency. Documents
// missing the sort field go last.
func CompileSort(input *queryparams.FilterInput) []esdsl.SortClause {
	if input.Sort != "" {
		field, order, ok := strings.Cut(input.Sort, ":")
		if ok {
			if _, known := sortFields[field]; known {
				return []esdsl.SortClause{{Field: field, Order: order, Missing: "_last"}}
			}
		}
	}
	if input.Search != "" {
		return []esdsl.SortClause{{Field: "_score", Order: "desc"}}
	}
	return []esdsl.SortClause{{Field: defaultSortField, Order: "desc", Missing: "_last"}}
}

// CompilePagination returns the from/size window for the input.
func CompilePagination(input *queryparams.FilterInput) (from, size int) {
	limit := input.Limit
	if limit < 1 {
		limit = 1
	}
	page := input.Page
	if page < 1 {
		page = queryparams.DefaultPage
	}
	return (page - 1) * limit, limit
}
