// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package search

import (
	"github.com/elastic/storefront-search/pkg/esdsl"
	"github.com/elastic/storefront-search/pkg/filterconfig"
)

// Aggregation names used in request bodies and looked up in responses.
const (
	AggVendors           = "vendors"
	AggProductTypes      = "productTypes"
	AggTags              = "tags"
	AggCollections       = "collections"
	AggOptionPairs       = "optionPairs"
	AggPriceRange        = "priceRange"
	AggVariantPriceRange = "variantPriceRange"

	// nestedStatsSub is the sub-aggregation name inside variantPriceRange.
	nestedStatsSub = "prices"
)

// Bucket sizes per aggregation, tuned to catalog cardinalities.
const (
	vendorAggSize     = 500
	tagAggSize        = 1000
	optionPairAggSize = 2500
)

// CompileAggregations emits the aggregations block, restricted to the
// aggregations backed by a published option of the configuration. With no
// configuration every aggregation is enabled for backward compatibility.
// variantPriceRange is always included.
func CompileAggregations(c *filterconfig.FilterConfiguration) map[string]esdsl.Aggregation {
	enabled := enabledAggregations(c)
	aggs := map[string]esdsl.Aggregation{}

	if _, ok := enabled[AggVendors]; ok {
		aggs[AggVendors] = esdsl.TermsAgg{Field: fieldVendor, Size: vendorAggSize, OrderCountDesc: true}
	}
	if _, ok := enabled[AggProductTypes]; ok {
		aggs[AggProductTypes] = esdsl.TermsAgg{Field: fieldProductType, Size: vendorAggSize, OrderCountDesc: true}
	}
	if _, ok := enabled[AggTags]; ok {
		aggs[AggTags] = esdsl.TermsAgg{Field: fieldTags, Size: tagAggSize}
	}
	if _, ok := enabled[AggCollections]; ok {
		aggs[AggCollections] = esdsl.TermsAgg{Field: fieldCollections, Size: tagAggSize}
	}
	if _, ok := enabled[AggOptionPairs]; ok {
		aggs[AggOptionPairs] = esdsl.TermsAgg{Field: fieldOptionPairs, Size: optionPairAggSize}
	}
	if _, ok := enabled[AggPriceRange]; ok {
		aggs[AggPriceRange] = esdsl.StatsAgg{Field: fieldMinPrice}
	}
	aggs[AggVariantPriceRange] = esdsl.NestedAgg{
		Path: nestedVariantsPath,
		Aggs: map[string]esdsl.Aggregation{
			nestedStatsSub: esdsl.StatsAgg{Field: fieldVariantPrice},
		},
	}
	return aggs
}

// enabledAggregations maps each published option to the aggregation that
// backs it.
func enabledAggregations(c *filterconfig.FilterConfiguration) map[string]struct{} {
	if c == nil {
		return map[string]struct{}{
			AggVendors: {}, AggProductTypes: {}, AggTags: {},
			AggCollections: {}, AggOptionPairs: {}, AggPriceRange: {},
		}
	}
	enabled := map[string]struct{}{}
	for _, o := range c.PublishedOptions() {
		standard, ok := filterconfig.LookupStandardFilter(o.OptionType)
		if !ok {
			enabled[AggOptionPairs] = struct{}{}
			continue
		}
		switch standard {
		case filterconfig.StandardVendor:
			enabled[AggVendors] = struct{}{}
		case filterconfig.StandardProductType:
			enabled[AggProductTypes] = struct{}{}
		case filterconfig.StandardTag:
			enabled[AggTags] = struct{}{}
		case filterconfig.StandardCollection:
			enabled[AggCollections] = struct{}{}
		case filterconfig.StandardPrice:
			enabled[AggPriceRange] = struct{}{}
		}
	}
	return enabled
}
