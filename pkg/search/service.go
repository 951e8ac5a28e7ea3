// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/elastic/storefront-search/pkg/cache"
	"github.com/elastic/storefront-search/pkg/esclient"
	"github.com/elastic/storefront-search/pkg/esdsl"
	"github.com/elastic/storefront-search/pkg/filterconfig"
	"github.com/elastic/storefront-search/pkg/queryparams"
	"github.com/elastic/storefront-search/pkg/tenant"
	ulog "github.com/elastic/storefront-search/pkg/utils/log"
	"github.com/elastic/storefront-search/pkg/utils/stringsutil"
)

// Per-operation deadlines. Upstream client cancellation propagates through
// the request context; partial results are never returned.
const (
	DefaultProductsTimeout = 10 * time.Second
	DefaultFiltersTimeout  = 8 * time.Second
)

// SearchOptions are the search-endpoint switches outside the filter input.
type SearchOptions struct {
	// Suggestions requests suggestion lookups even with non-empty results.
	Suggestions bool
	// HandleZeroResults enables the zero-result fallback lookups.
	HandleZeroResults bool
	// IncludeFacets adds facet aggregations to the search response.
	IncludeFacets bool
}

func (o SearchOptions) cacheTag() string {
	return fmt.Sprintf("opts:%t:%t:%t", o.Suggestions, o.HandleZeroResults, o.IncludeFacets)
}

// Service is the query pipeline: configuration resolution and application,
// query compilation, cached execution and result formatting.
type Service struct {
	es       esclient.Client
	resolver *filterconfig.Resolver
	caches   *cache.Service

	productsTimeout time.Duration
	filtersTimeout  time.Duration

	log *zap.Logger
}

// NewService wires the pipeline together.
func NewService(es esclient.Client, resolver *filterconfig.Resolver, caches *cache.Service) *Service {
	return &Service{
		es:              es,
		resolver:        resolver,
		caches:          caches,
		productsTimeout: DefaultProductsTimeout,
		filtersTimeout:  DefaultFiltersTimeout,
		log:             ulog.Named("search-service"),
	}
}

// Products serves the product listing with optional facet aggregations.
func (s *Service) Products(ctx context.Context, shop string, input *queryparams.FilterInput) (*ProductsResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.productsTimeout)
	defer cancel()

	cfg := s.resolver.Resolve(ctx, shop, firstCollection(input), input.CPID)
	input = filterconfig.Apply(cfg, input)
	key := cache.SearchKey(shop, filterconfig.Hash(cfg), input)

	value, err := s.caches.Search.GetOrCompute(ctx, key, func(ctx context.Context) (any, error) {
		return s.executeProducts(ctx, shop, cfg, input)
	})
	if err != nil {
		return nil, err
	}
	return value.(*ProductsResult), nil
}

func (s *Service) executeProducts(ctx context.Context, shop string, cfg *filterconfig.FilterConfiguration, input *queryparams.FilterInput) (*ProductsResult, error) {
	from, size := CompilePagination(input)
	body := esdsl.SearchBody{
		Query: CompileQuery(input, FacetsContext, ""),
		Sort:  CompileSort(input),
		From:  &from,
		Size:  &size,
	}
	if input.IncludeFilters {
		body.Aggs = CompileAggregations(cfg)
	}

	res, err := s.es.Search(ctx, tenant.ProductsIndex(shop), body)
	if err != nil {
		if esclient.IsIndexNotFound(err) {
			// a tenant that was never indexed gets an empty storefront, not an error
			return &ProductsResult{
				Products:   []Product{},
				Pagination: Pagination{Page: input.Page, Limit: input.Limit},
			}, nil
		}
		return nil, err
	}

	result := &ProductsResult{
		Products:   decodeProducts(res.Hits.Hits, input.Fields),
		Pagination: paginationFor(input, res.Hits.Total.Value),
	}
	if input.IncludeFilters {
		facets, err := FormatFacets(res, cfg)
		if err != nil {
			return nil, err
		}
		result.Filters = facets
	}
	return result, nil
}

// Filters serves the facet aggregations plus the applied-filters echo. Bare
// inputs (no active filters) hit the filter-list cache keyed by collection
// page; filtered inputs key by the full input hash.
func (s *Service) Filters(ctx context.Context, shop string, input *queryparams.FilterInput) (*FiltersResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.filtersTimeout)
	defer cancel()

	cfg := s.resolver.Resolve(ctx, shop, firstCollection(input), input.CPID)
	input = filterconfig.Apply(cfg, input)

	var (
		store *cache.Cache
		key   string
	)
	if bareInput(input) {
		store = s.caches.FilterList
		key = cache.FilterListKey(shop, tenant.NormalizeCollectionID(input.CPID))
	} else {
		store = s.caches.Facets
		key = cache.FacetsKey(shop, filterconfig.Hash(cfg), input)
	}

	value, err := store.GetOrCompute(ctx, key, func(ctx context.Context) (any, error) {
		return s.executeFilters(ctx, shop, cfg, input)
	})
	if err != nil {
		return nil, err
	}
	return value.(*FiltersResult), nil
}

func (s *Service) executeFilters(ctx context.Context, shop string, cfg *filterconfig.FilterConfiguration, input *queryparams.FilterInput) (*FiltersResult, error) {
	zero := 0
	body := esdsl.SearchBody{
		Query: CompileQuery(input, FacetsContext, input.KeepOption),
		Size:  &zero,
		Aggs:  CompileAggregations(cfg),
	}

	res, err := s.es.Search(ctx, tenant.ProductsIndex(shop), body)
	if err != nil {
		if esclient.IsIndexNotFound(err) {
			return &FiltersResult{Filters: []Facet{}, AppliedFilters: input}, nil
		}
		return nil, err
	}

	facets, err := FormatFacets(res, cfg)
	if err != nil {
		return nil, err
	}
	return &FiltersResult{
		Filters:           facets.Filters,
		PriceRange:        facets.PriceRange,
		VariantPriceRange: facets.VariantPriceRange,
		AppliedFilters:    input,
	}, nil
}

// Search serves free-text search with suggestion and correction fallbacks.
func (s *Service) Search(ctx context.Context, shop string, input *queryparams.FilterInput, opts SearchOptions) (*SearchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.productsTimeout)
	defer cancel()

	cfg := s.resolver.Resolve(ctx, shop, firstCollection(input), input.CPID)
	input = filterconfig.Apply(cfg, input)
	key := cache.SearchKey(shop, filterconfig.Hash(cfg), input) + ":" + opts.cacheTag()

	value, err := s.caches.Search.GetOrCompute(ctx, key, func(ctx context.Context) (any, error) {
		return s.executeSearch(ctx, shop, cfg, input, opts)
	})
	if err != nil {
		return nil, err
	}
	return value.(*SearchResult), nil
}

func (s *Service) executeSearch(ctx context.Context, shop string, cfg *filterconfig.FilterConfiguration, input *queryparams.FilterInput, opts SearchOptions) (*SearchResult, error) {
	index := tenant.ProductsIndex(shop)
	from, size := CompilePagination(input)
	body := esdsl.SearchBody{
		Query: CompileQuery(input, SearchContext, ""),
		Sort:  CompileSort(input),
		From:  &from,
		Size:  &size,
	}
	if opts.IncludeFacets {
		body.Aggs = CompileAggregations(cfg)
	}

	res, err := s.es.Search(ctx, index, body)
	if err != nil {
		if esclient.IsIndexNotFound(err) {
			return &SearchResult{
				Products:       []Product{},
				Pagination:     Pagination{Page: input.Page, Limit: input.Limit},
				ZeroResults:    true,
				SearchMetadata: SearchMetadata{Query: input.Search},
			}, nil
		}
		return nil, err
	}

	total := res.Hits.Total.Value
	result := &SearchResult{
		Products:       decodeProducts(res.Hits.Hits, input.Fields),
		Pagination:     paginationFor(input, total),
		ZeroResults:    total == 0,
		SearchMetadata: SearchMetadata{Query: input.Search, TookMs: res.Took, Total: total},
	}
	if opts.IncludeFacets {
		facets, err := FormatFacets(res, cfg)
		if err != nil {
			return nil, err
		}
		result.Facets = facets
	}

	wantFallback := (total == 0 && opts.HandleZeroResults) || opts.Suggestions
	if wantFallback && input.Search != "" {
		s.addSuggestions(ctx, index, input.Search, result)
	}
	return result, nil
}

// addSuggestions runs the auxiliary suggest lookups. Failures here degrade
// the payload, never the request.
func (s *Service) addSuggestions(ctx context.Context, index, query string, result *SearchResult) {
	zero := 0
	res, err := s.es.Search(ctx, index, esdsl.SearchBody{
		Size:    &zero,
		Suggest: CompileSuggest(query),
	})
	if err != nil {
		s.log.Debug("suggestion lookup failed", zap.String("index", index), zap.Error(err))
		return
	}

	result.Suggestions = TitleSuggestions(res)

	corrected := CorrectedQuery(res, query)
	candidates := alternativeCandidates(query, corrected)
	if len(candidates) == 0 {
		return
	}

	// probe every candidate in one round-trip; only candidates that would
	// actually return results are offered
	items := make([]esclient.MsearchItem, len(candidates))
	for i, candidate := range candidates {
		probe := queryparams.NewFilterInput()
		probe.Search = candidate
		items[i] = esclient.MsearchItem{
			Index: index,
			Body: esdsl.SearchBody{
				Query: CompileQuery(probe, SearchContext, ""),
				Size:  &zero,
			},
		}
	}
	probes, err := s.es.Msearch(ctx, items)
	if err != nil {
		s.log.Debug("candidate probing failed", zap.String("index", index), zap.Error(err))
		return
	}

	for i, probe := range probes {
		if i >= len(candidates) || probe.Err != nil || probe.Response == nil {
			continue
		}
		if probe.Response.Hits.Total.Value == 0 {
			continue
		}
		result.AlternativeQueries = append(result.AlternativeQueries, candidates[i])
		if corrected != "" && candidates[i] == corrected {
			result.DidYouMean = corrected
			result.QueryCorrection = &QueryCorrection{
				Original:  query,
				Corrected: corrected,
				Message:   fmt.Sprintf("Did you mean %q?", corrected),
			}
		}
	}
}

// alternativeCandidates lists the queries worth probing: the spell-corrected
// query first, then the individual terms of a multi-term query.
func alternativeCandidates(original, corrected string) []string {
	var candidates []string
	if corrected != "" {
		candidates = append(candidates, corrected)
	}
	base := corrected
	if base == "" {
		base = original
	}
	if terms := strings.Fields(base); len(terms) > 1 {
		candidates = append(candidates, terms...)
	}
	return stringsutil.RemoveDuplicates(candidates)
}

// InvalidateShop drops every cached artifact of the tenant: query results,
// facet lists and the configuration resolution.
func (s *Service) InvalidateShop(shop string) int {
	s.resolver.Invalidate(shop)
	return s.caches.InvalidateShop(shop)
}

// Ready checks Elasticsearch reachability with a short deadline.
func (s *Service) Ready(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.es.Ping(ctx); err != nil {
		return errors.Wrap(err, "elasticsearch not reachable")
	}
	return nil
}

func decodeProducts(hits []esclient.Hit, fields []string) []Product {
	products := make([]Product, 0, len(hits))
	for _, hit := range hits {
		product := Product{}
		if err := json.Unmarshal(hit.Source, &product); err != nil {
			continue
		}
		if _, ok := product["id"]; !ok && hit.ID != "" {
			product["id"] = hit.ID
		}
		products = append(products, ProjectFields(product, fields))
	}
	return products
}

func paginationFor(input *queryparams.FilterInput, total int) Pagination {
	return Pagination{
		Total:      total,
		Page:       input.Page,
		Limit:      input.Limit,
		TotalPages: input.TotalPages(total),
	}
}

// bareInput reports whether the input carries no filtering beyond the
// collection page, making its facet list shareable across visitors. An
// explicit collection filter beyond the CPID-derived one is filtering.
func bareInput(input *queryparams.FilterInput) bool {
	return input.Search == "" &&
		len(input.Vendors) == 0 &&
		len(input.ProductTypes) == 0 &&
		len(input.Tags) == 0 &&
		len(input.VariantOptionKeys) == 0 &&
		len(input.VariantSkus) == 0 &&
		len(input.Options) == 0 &&
		input.PriceMin == nil && input.PriceMax == nil &&
		input.VariantPriceMin == nil && input.VariantPriceMax == nil &&
		input.KeepOption == "" &&
		bareCollections(input)
}

// firstCollection picks the collection ID that informs collection-scoped
// configuration precedence: the first explicit collection filter, if any.
func firstCollection(input *queryparams.FilterInput) string {
	if len(input.Collections) > 0 {
		return input.Collections[0]
	}
	return ""
}

func bareCollections(input *queryparams.FilterInput) bool {
	switch len(input.Collections) {
	case 0:
		return true
	case 1:
		return input.Collections[0] == tenant.NormalizeCollectionID(input.CPID)
	}
	return false
}
