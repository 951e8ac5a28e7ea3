// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package cache

import (
	"time"

	"github.com/elastic/storefront-search/pkg/queryparams"
)

// Default TTLs for the three logical caches.
const (
	DefaultFilterListTTL = 10 * time.Minute
	DefaultSearchTTL     = 5 * time.Minute
	DefaultFacetTTL      = 10 * time.Minute
)

// Key shapes. The shape prefix keeps the three key spaces disjoint and makes
// per-tenant invalidation a prefix operation.
const (
	shapeFilterList = "filters"
	shapeSearch     = "search"
	shapeFacets     = "facets"
)

// ServiceOptions overrides the defaults of the three caches. Zero values keep
// the default.
type ServiceOptions struct {
	FilterListTTL time.Duration
	SearchTTL     time.Duration
	FacetTTL      time.Duration
	MaxSize       int
	SweepInterval time.Duration
}

// Service bundles the three logical caches: filter lists, search results and
// facet aggregations. They share one implementation and differ only in TTL.
type Service struct {
	FilterList *Cache
	Search     *Cache
	Facets     *Cache
}

// NewService creates the three caches and their sweepers.
func NewService(opts ServiceOptions) *Service {
	if opts.FilterListTTL <= 0 {
		opts.FilterListTTL = DefaultFilterListTTL
	}
	if opts.SearchTTL <= 0 {
		opts.SearchTTL = DefaultSearchTTL
	}
	if opts.FacetTTL <= 0 {
		opts.FacetTTL = DefaultFacetTTL
	}
	return &Service{
		FilterList: New(Options{Name: shapeFilterList, TTL: opts.FilterListTTL, MaxSize: opts.MaxSize, SweepInterval: opts.SweepInterval}),
		Search:     New(Options{Name: shapeSearch, TTL: opts.SearchTTL, MaxSize: opts.MaxSize, SweepInterval: opts.SweepInterval}),
		Facets:     New(Options{Name: shapeFacets, TTL: opts.FacetTTL, MaxSize: opts.MaxSize, SweepInterval: opts.SweepInterval}),
	}
}

// Stop terminates all background sweepers.
func (s *Service) Stop() {
	s.FilterList.Stop()
	s.Search.Stop()
	s.Facets.Stop()
}

// FilterListKey keys the filter-list cache by tenant and the collection page
// being rendered, "all" when none.
func FilterListKey(shop, cpid string) string {
	if cpid == "" {
		cpid = "all"
	}
	return shapeFilterList + ":" + shop + ":" + cpid
}

// SearchKey keys a search result by tenant, configuration fingerprint and
// filter input. A configuration change rotates the fingerprint, so stale
// results are never returned after a config update.
func SearchKey(shop, configHash string, input *queryparams.FilterInput) string {
	return shapeSearch + ":" + shop + ":cfg:" + configHash + ":" + input.Hash()
}

// FacetsKey keys a facet aggregation result the same way as SearchKey.
func FacetsKey(shop, configHash string, input *queryparams.FilterInput) string {
	return shapeFacets + ":" + shop + ":cfg:" + configHash + ":" + input.Hash()
}

// InvalidateShop removes every cached entry belonging to the tenant across
// the three caches. Returns the number of entries removed.
func (s *Service) InvalidateShop(shop string) int {
	removed := 0
	removed += s.Search.InvalidateByPattern(shapeSearch + ":" + shop + ":cfg:*")
	removed += s.Facets.InvalidateByPattern(shapeFacets + ":" + shop + ":cfg:*")
	removed += s.FilterList.InvalidateByPattern(shapeFilterList + ":" + shop + ":*")
	return removed
}

// InvalidateSearch removes one exact search entry.
func (s *Service) InvalidateSearch(shop, configHash string, input *queryparams.FilterInput) bool {
	return s.Search.Delete(SearchKey(shop, configHash, input))
}

// InvalidateFilter removes one exact filter-list entry.
func (s *Service) InvalidateFilter(shop, cpid string) bool {
	return s.FilterList.Delete(FilterListKey(shop, cpid))
}
