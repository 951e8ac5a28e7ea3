// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/elastic/storefront-search/pkg/filterconfig"
)

func TestCompileAggregationsNullConfiguration(t *testing.T) {
	aggs := CompileAggregations(nil)
	assert.Len(t, aggs, 7, "every aggregation enabled without a configuration")
	for _, name := range []string{
		AggVendors, AggProductTypes, AggTags, AggCollections,
		AggOptionPairs, AggPriceRange, AggVariantPriceRange,
	} {
		assert.Contains(t, aggs, name)
	}
}

func TestCompileAggregationsRestrictedByOptions(t *testing.T) {
	cfg := &filterconfig.FilterConfiguration{
		Status:            "published",
		DeploymentChannel: "app",
		Options: []filterconfig.Option{
			{Handle: "pr_vend1", Status: "published", OptionType: "vendor"},
			{Handle: "pr_col1", Status: "published", OptionType: "option",
				OptionSettings: filterconfig.OptionSettings{VariantOptionKey: "Color"}},
			{Handle: "pr_tags1", Status: "draft", OptionType: "tag"},
		},
	}

	aggs := CompileAggregations(cfg)
	assert.Contains(t, aggs, AggVendors, "backed by a published vendor option")
	assert.Contains(t, aggs, AggOptionPairs, "backed by a non-standard option")
	assert.NotContains(t, aggs, AggTags, "draft options enable nothing")
	assert.NotContains(t, aggs, AggCollections)
	assert.NotContains(t, aggs, AggPriceRange)
	assert.Contains(t, aggs, AggVariantPriceRange, "variant price stats are always on")
}

func TestCompileAggregationsEmptyConfiguration(t *testing.T) {
	cfg := &filterconfig.FilterConfiguration{Status: "published", DeploymentChannel: "app"}
	aggs := CompileAggregations(cfg)
	assert.Len(t, aggs, 1)
	assert.Contains(t, aggs, AggVariantPriceRange)
}
