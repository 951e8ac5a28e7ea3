// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package filterconfig

import (
	"github.com/elastic/storefront-search/pkg/queryparams"
	"github.com/elastic/storefront-search/pkg/tenant"
	"github.com/elastic/storefront-search/pkg/utils/stringsutil"
)

// Apply rewrites the filter input under the given configuration. The null
// configuration passes the input through unchanged. The rewrite steps run in
// a fixed order: settings injection, scope enforcement, handle resolution,
// standard-filter extraction, per-option restriction, derived-option
// restriction. The input is mutated in place and returned.
func Apply(c *FilterConfiguration, input *queryparams.FilterInput) *queryparams.FilterInput {
	if c == nil {
		return input
	}

	injectSettings(c, input)
	enforceScope(c, input)
	resolveHandles(c, input)
	extractStandardFilters(c, input)
	restrictOptions(c, input)
	restrictDerivedOptions(c, input)

	return input
}

func injectSettings(c *FilterConfiguration, input *queryparams.FilterInput) {
	if c.Settings.HideOutOfStockItems {
		input.HideOutOfStockItems = true
	}
}

// enforceScope restricts the product universe of entitled configurations.
// Requests outside the allowed collection set get the unmatchable sentinel so
// downstream returns empty cleanly.
func enforceScope(c *FilterConfiguration, input *queryparams.FilterInput) {
	if !c.Entitled() {
		return
	}
	allowed := c.AllowedCollectionIDs()
	if len(input.Collections) == 0 {
		input.Collections = allowed
		return
	}
	intersection := stringsutil.Intersection(input.Collections, allowed)
	if len(intersection) == 0 {
		input.Collections = []string{queryparams.NoneCollection}
		return
	}
	input.Collections = intersection
}

// resolveHandles replaces option keys with the option names they map to.
// Multiple handles resolving to the same name merge their value sets with
// duplicates removed. Keys resolving to nothing are dropped.
func resolveHandles(c *FilterConfiguration, input *queryparams.FilterInput) {
	if len(input.Options) == 0 {
		return
	}
	index := c.HandleIndex()
	resolved := make(map[string][]string, len(input.Options))
	for key, values := range input.Options {
		name, ok := index[key]
		if !ok {
			name, ok = index[stringsutil.LowerTrim(key)]
		}
		if !ok {
			continue
		}
		resolved[name] = stringsutil.Union(resolved[name], values)
	}
	input.Options = resolved
}

// extractStandardFilters moves option entries matching the standard-filter
// table into the corresponding top-level list. Product-level filters must
// query vendor.keyword etc., not optionPairs.keyword.
func extractStandardFilters(_ *FilterConfiguration, input *queryparams.FilterInput) {
	for name, values := range input.Options {
		standard, ok := LookupStandardFilter(name)
		if !ok {
			continue
		}
		switch standard {
		case StandardVendor:
			input.Vendors = stringsutil.Union(input.Vendors, values)
		case StandardProductType:
			input.ProductTypes = stringsutil.Union(input.ProductTypes, values)
		case StandardTag:
			input.Tags = stringsutil.Union(input.Tags, values)
		case StandardCollection:
			ids := make([]string, 0, len(values))
			for _, v := range values {
				if id := tenant.NormalizeCollectionID(v); id != "" {
					v = id
				}
				ids = append(ids, v)
			}
			input.Collections = stringsutil.Union(input.Collections, ids)
		case StandardPrice:
			// price bounds cannot be expressed as option values; drop the entry
		}
		delete(input.Options, name)
	}
}

// restrictOptions intersects selected values with the per-option allowlist of
// entitled options. Restriction only limits what the user can select; options
// without input values are untouched.
func restrictOptions(c *FilterConfiguration, input *queryparams.FilterInput) {
	for _, o := range c.PublishedOptions() {
		if TargetScope(stringsutil.LowerTrim(string(o.TargetScope))) != ScopeEntitled || len(o.AllowedOptions) == 0 {
			continue
		}
		intersectOption(input, o.Name(), o.AllowedOptions)
	}
}

// restrictDerivedOptions intersects values selected for a base option with
// the derived option's curated subset.
func restrictDerivedOptions(c *FilterConfiguration, input *queryparams.FilterInput) {
	for _, o := range c.PublishedOptions() {
		base := o.OptionSettings.BaseOptionType
		if base == "" || len(o.OptionSettings.SelectedValues) == 0 {
			continue
		}
		intersectOption(input, base, o.OptionSettings.SelectedValues)
	}
}

// intersectOption narrows the values of the named option, matching the name
// case-insensitively. An empty intersection removes the option entirely: an
// empty value list would produce an unmatchable query.
func intersectOption(input *queryparams.FilterInput, name string, allowed []string) {
	key, values, ok := lookupOption(input, name)
	if !ok {
		return
	}
	intersection := stringsutil.Intersection(values, allowed)
	if len(intersection) == 0 {
		delete(input.Options, key)
		return
	}
	input.Options[key] = intersection
}

func lookupOption(input *queryparams.FilterInput, name string) (string, []string, bool) {
	if values, ok := input.Options[name]; ok {
		return name, values, true
	}
	lower := stringsutil.LowerTrim(name)
	for key, values := range input.Options {
		if stringsutil.LowerTrim(key) == lower {
			return key, values, true
		}
	}
	return "", nil, false
}
