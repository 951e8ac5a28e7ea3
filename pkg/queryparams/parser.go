// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

// Package queryparams turns untrusted storefront query strings into a
// validated FilterInput. Parameter recognition is name-driven; unknown keys
// are only promoted to option filters through explicit shapes or the handle
// heuristic, never silently.
package queryparams

import (
	"encoding/json"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/elastic/storefront-search/pkg/tenant"
	"github.com/elastic/storefront-search/pkg/utils/stringsutil"
)

var (
	sortPattern        = regexp.MustCompile(`^([a-zA-Z_][a-zA-Z0-9_.]*):(asc|desc)$`)
	optionBracketShape = regexp.MustCompile(`^options\[(.+)\]$`)
	handlePattern      = regexp.MustCompile(`^[a-z]{2,3}_[a-z0-9]{3,10}$`)
	bareHandlePattern  = regexp.MustCompile(`^[a-z0-9]{5,10}$`)
)

// reservedNames are parameter names that are never treated as option keys.
// Comparison is on the lowercased key.
var reservedNames = map[string]struct{}{
	"shop": {}, "shopdomain": {}, "search": {}, "q": {}, "query": {},
	"page": {}, "limit": {}, "sort": {}, "fields": {},
	"vendor": {}, "vendors": {},
	"producttype": {}, "producttypes": {}, "product_type": {},
	"tag": {}, "tags": {},
	"collection": {}, "collections": {},
	"price": {}, "pricemin": {}, "pricemax": {},
	"variantpricemin": {}, "variantpricemax": {},
	"variantkey": {}, "variantkeys": {},
	"variantsku": {}, "variantskus": {},
	"includefilters": {}, "options": {}, "cpid": {},
	"keep": {}, "preserveoptionaggregations": {},
	"suggestions": {}, "handlezeroresults": {}, "includefacets": {},
}

// commonWords disqualify a bare alphanumeric key from the handle heuristic.
// The heuristic is intentionally loose: a false positive is harmless because
// unresolved keys are dropped during configuration application.
var commonWords = map[string]struct{}{
	"about": {}, "brand": {}, "brands": {}, "category": {}, "email": {},
	"filter": {}, "filters": {}, "offset": {}, "order": {}, "prices": {},
	"sizes": {}, "style": {}, "styles": {}, "title": {}, "token": {},
	"total": {}, "value": {}, "values": {},
}

// Parse interprets a sanitized query map as a FilterInput. Call Sanitize
// first; Parse assumes clean keys and values. Malformed numerics and
// malformed options JSON are dropped silently, other parameters still parse.
func Parse(query url.Values) *FilterInput {
	input := NewFilterInput()

	for key, values := range query {
		if len(values) == 0 {
			continue
		}
		value := values[0]
		switch strings.ToLower(key) {
		case "search", "q", "query":
			if input.Search == "" {
				input.Search = strings.TrimSpace(value)
			}
		case "vendor", "vendors":
			input.Vendors = stringsutil.Union(input.Vendors, SanitizeTerms(values))
		case "producttype", "producttypes", "product_type":
			input.ProductTypes = stringsutil.Union(input.ProductTypes, SanitizeTerms(values))
		case "tag", "tags":
			input.Tags = stringsutil.Union(input.Tags, SanitizeTerms(values))
		case "collection", "collections":
			input.Collections = stringsutil.Union(input.Collections, collectionTerms(values))
		case "variantkey", "variantkeys":
			input.VariantOptionKeys = stringsutil.Union(input.VariantOptionKeys, SanitizeTerms(values))
		case "variantsku", "variantskus":
			input.VariantSkus = stringsutil.Union(input.VariantSkus, SanitizeTerms(values))
		case "pricemin":
			input.PriceMin = parsePrice(value)
		case "pricemax":
			input.PriceMax = parsePrice(value)
		case "variantpricemin":
			input.VariantPriceMin = parsePrice(value)
		case "variantpricemax":
			input.VariantPriceMax = parsePrice(value)
		case "page":
			input.Page = clampPage(value)
		case "limit":
			input.Limit = clampLimit(value)
		case "sort":
			input.Sort = parseSort(value)
		case "includefilters":
			input.IncludeFilters = parseBool(value)
		case "fields":
			input.Fields = SanitizeTerms(values)
		case "keep", "preserveoptionaggregations":
			input.KeepOption = SanitizeOptionName(strings.TrimSpace(value))
		case "cpid":
			input.CPID = strings.TrimSpace(value)
		case "options":
			mergeOptionsJSON(input, value)
		case "shop", "price", "suggestions", "handlezeroresults", "includefacets":
			// handled elsewhere or intentionally ignored
		default:
			if name, ok := discoverOptionKey(key); ok {
				addOptionValues(input, name, values)
			}
		}
	}

	// CPID combines with explicit collections via AND: the product must belong
	// to the current collection page and to any requested collection.
	if input.CPID != "" {
		if id := tenant.NormalizeCollectionID(input.CPID); id != "" {
			input.Collections = stringsutil.Union(input.Collections, []string{id})
		}
	}

	return input
}

// discoverOptionKey checks an unreserved key against the explicit option
// shapes and then the handle heuristic. Returns the option key and whether
// the key should be treated as one.
func discoverOptionKey(key string) (string, bool) {
	if _, reserved := reservedNames[strings.ToLower(key)]; reserved {
		return "", false
	}
	if m := optionBracketShape.FindStringSubmatch(key); m != nil {
		return SanitizeOptionName(m[1]), true
	}
	if name, ok := strings.CutPrefix(key, "option."); ok {
		return SanitizeOptionName(name), true
	}
	if name, ok := strings.CutPrefix(key, "option_"); ok {
		return SanitizeOptionName(name), true
	}
	if handlePattern.MatchString(key) {
		return key, true
	}
	if bareHandlePattern.MatchString(key) {
		if _, common := commonWords[key]; !common {
			return key, true
		}
	}
	return "", false
}

func addOptionValues(input *FilterInput, name string, values []string) {
	if name == "" {
		return
	}
	terms := SanitizeTerms(values)
	for i, t := range terms {
		terms[i] = SanitizeOptionName(t)
	}
	if len(terms) == 0 {
		return
	}
	input.Options[name] = stringsutil.Union(input.Options[name], terms)
}

// mergeOptionsJSON merges an explicit options={...} JSON parameter.
// Malformed JSON is ignored; other parameters still parse.
func mergeOptionsJSON(input *FilterInput, raw string) {
	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return
	}
	for name, v := range decoded {
		switch value := v.(type) {
		case string:
			addOptionValues(input, SanitizeOptionName(name), []string{value})
		case []any:
			var values []string
			for _, item := range value {
				if s, ok := item.(string); ok {
					values = append(values, s)
				}
			}
			addOptionValues(input, SanitizeOptionName(name), values)
		}
	}
}

func collectionTerms(values []string) []string {
	terms := SanitizeTerms(values)
	for i, t := range terms {
		if id := tenant.NormalizeCollectionID(t); id != "" {
			terms[i] = id
		}
	}
	return terms
}

// parsePrice parses a non-negative finite float. Bad numerics yield nil.
func parsePrice(raw string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

func clampPage(raw string) int {
	p, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || p < 1 {
		return DefaultPage
	}
	return p
}

func clampLimit(raw string) int {
	l, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return DefaultLimit
	}
	if l < 1 {
		return 1
	}
	if l > MaxLimit {
		return MaxLimit
	}
	return l
}

// parseSort validates "field:asc|desc" and rewrites the public "price" field
// to the indexed minPrice field. Anything else falls back to the default sort
// applied by the compiler.
func parseSort(raw string) string {
	m := sortPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return ""
	}
	field, order := m[1], m[2]
	if field == "price" {
		field = "minPrice"
	}
	return field + ":" + order
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes":
		return true
	}
	return false
}
