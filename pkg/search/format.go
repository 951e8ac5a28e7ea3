// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package search

import (
	"sort"
	"strings"

	"github.com/elastic/storefront-search/pkg/esclient"
	"github.com/elastic/storefront-search/pkg/filterconfig"
	"github.com/elastic/storefront-search/pkg/utils/stringsutil"
)

// optionGroup is the decoded form of one option's buckets.
type optionGroup struct {
	name   string
	values []FacetValue
}

// FormatFacets turns a raw aggregation response into the public facet shape.
// Option-pair buckets are decoded and filtered by the configured variant
// keys; with a configuration present, facets come out in configured position
// order, otherwise in natural bucket order.
func FormatFacets(res *esclient.SearchResponse, cfg *filterconfig.FilterConfiguration) (*Facets, error) {
	groups, err := decodeOptionPairs(res)
	if err != nil {
		return nil, err
	}
	groups = filterByVariantKeys(groups, cfg)

	standard := map[string][]FacetValue{}
	for _, agg := range []string{AggVendors, AggProductTypes, AggTags, AggCollections} {
		buckets, err := res.DecodeTerms(agg)
		if err != nil {
			return nil, err
		}
		standard[agg] = bucketValues(buckets)
	}

	facets := &Facets{}
	if cfg == nil {
		facets.Filters = naturalFacets(standard, groups)
	} else {
		facets.Filters = configuredFacets(cfg, standard, groups)
	}

	if pr, err := res.DecodeStats(AggPriceRange); err != nil {
		return nil, err
	} else if pr.Min != nil && pr.Max != nil {
		facets.PriceRange = &PriceRange{Min: *pr.Min, Max: *pr.Max}
	}
	if vpr, err := res.DecodeNestedStats(AggVariantPriceRange, nestedStatsSub); err != nil {
		return nil, err
	} else if vpr.Min != nil && vpr.Max != nil {
		facets.VariantPriceRange = &PriceRange{Min: *vpr.Min, Max: *vpr.Max}
	}

	return facets, nil
}

// decodeOptionPairs splits "Name::Value" bucket keys and groups them by
// name. Buckets without the separator are discarded. Values within a group
// are ordered by count desc.
func decodeOptionPairs(res *esclient.SearchResponse) ([]optionGroup, error) {
	buckets, err := res.DecodeTerms(AggOptionPairs)
	if err != nil {
		return nil, err
	}

	var order []string
	grouped := map[string][]FacetValue{}
	for _, b := range buckets.Buckets {
		name, value, ok := strings.Cut(b.Key, OptionPairSeparator)
		if !ok || name == "" || value == "" {
			continue
		}
		if _, seen := grouped[name]; !seen {
			order = append(order, name)
		}
		grouped[name] = append(grouped[name], FacetValue{Value: value, Count: b.DocCount})
	}

	groups := make([]optionGroup, 0, len(order))
	for _, name := range order {
		values := grouped[name]
		sort.SliceStable(values, func(i, j int) bool { return values[i].Count > values[j].Count })
		groups = append(groups, optionGroup{name: name, values: values})
	}
	return groups, nil
}

// filterByVariantKeys drops option groups not exposed by the configuration.
// An empty key set passes everything: the configuration is absent or
// declares no variant facets.
func filterByVariantKeys(groups []optionGroup, cfg *filterconfig.FilterConfiguration) []optionGroup {
	keys := cfg.VariantOptionKeys()
	if len(keys) == 0 {
		return groups
	}
	kept := groups[:0]
	for _, g := range groups {
		if _, ok := keys[stringsutil.LowerTrim(g.name)]; ok {
			kept = append(kept, g)
		}
	}
	return kept
}

// naturalFacets preserves bucket order when no configuration applies.
func naturalFacets(standard map[string][]FacetValue, groups []optionGroup) []Facet {
	var facets []Facet
	if values := standard[AggVendors]; len(values) > 0 {
		facets = append(facets, Facet{Handle: "vendor", Label: "Vendor", Type: FacetTypeVendor, Values: values})
	}
	if values := standard[AggProductTypes]; len(values) > 0 {
		facets = append(facets, Facet{Handle: "productType", Label: "Product type", Type: FacetTypeProductType, Values: values})
	}
	if values := standard[AggTags]; len(values) > 0 {
		facets = append(facets, Facet{Handle: "tag", Label: "Tag", Type: FacetTypeTag, Values: values})
	}
	if values := standard[AggCollections]; len(values) > 0 {
		facets = append(facets, Facet{Handle: "collection", Label: "Collection", Type: FacetTypeCollection, Values: values})
	}
	for _, g := range groups {
		facets = append(facets, Facet{Handle: g.name, Label: g.name, Type: FacetTypeOption, Values: g.values})
	}
	return facets
}

// configuredFacets stamps each facet with its option's position and sorts
// the list ascending, producing the storefront's intended UI order.
func configuredFacets(cfg *filterconfig.FilterConfiguration, standard map[string][]FacetValue, groups []optionGroup) []Facet {
	byName := map[string][]FacetValue{}
	for _, g := range groups {
		byName[stringsutil.LowerTrim(g.name)] = g.values
	}

	keys := cfg.VariantOptionKeys()
	var facets []Facet
	for _, o := range cfg.PublishedOptions() {
		facet := Facet{
			Handle:   o.Handle,
			Label:    o.Label,
			Position: o.Position,
		}
		if facet.Label == "" {
			facet.Label = o.Name()
		}

		if sf, ok := filterconfig.LookupStandardFilter(o.OptionType); ok {
			switch sf {
			case filterconfig.StandardVendor:
				facet.Type, facet.Values = FacetTypeVendor, standard[AggVendors]
			case filterconfig.StandardProductType:
				facet.Type, facet.Values = FacetTypeProductType, standard[AggProductTypes]
			case filterconfig.StandardTag:
				facet.Type, facet.Values = FacetTypeTag, standard[AggTags]
			case filterconfig.StandardCollection:
				facet.Type, facet.Values = FacetTypeCollection, standard[AggCollections]
			case filterconfig.StandardPrice:
				facet.Type = FacetTypePrice
			}
		} else {
			name := stringsutil.LowerTrim(o.Name())
			if len(keys) > 0 {
				if _, exposed := keys[name]; !exposed {
					continue
				}
			}
			facet.Type = FacetTypeOption
			facet.Values = byName[name]
		}
		if facet.Values == nil {
			facet.Values = []FacetValue{}
		}
		facets = append(facets, facet)
	}

	sort.SliceStable(facets, func(i, j int) bool { return facets[i].Position < facets[j].Position })
	return facets
}

func bucketValues(buckets esclient.TermsBuckets) []FacetValue {
	if len(buckets.Buckets) == 0 {
		return nil
	}
	values := make([]FacetValue, 0, len(buckets.Buckets))
	for _, b := range buckets.Buckets {
		values = append(values, FacetValue{Value: b.Key, Count: b.DocCount})
	}
	return values
}
