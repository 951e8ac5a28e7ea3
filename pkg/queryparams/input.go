// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package queryparams

import (
	"crypto/md5" //nolint:gosec
	"encoding/hex"
	"encoding/json"
)

// Pagination bounds enforced on every request.
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// NoneCollection is a sentinel collection ID guaranteed to match no product.
// It is injected when a request falls outside the entitled collection scope so
// that downstream queries return empty cleanly instead of erroring.
const NoneCollection = "__none__"

// FilterInput is the normalized, sanitized form of a storefront query. It is
// produced by Parse, rewritten by the filter configuration applier and
// consumed by the query compiler and the cache key builder.
type FilterInput struct {
	Search string `json:"search,omitempty"`

	Vendors           []string `json:"vendors,omitempty"`
	ProductTypes      []string `json:"productTypes,omitempty"`
	Tags              []string `json:"tags,omitempty"`
	Collections       []string `json:"collections,omitempty"`
	VariantOptionKeys []string `json:"variantOptionKeys,omitempty"`
	VariantSkus       []string `json:"variantSkus,omitempty"`

	// Options maps an option name (after handle resolution) to the selected
	// values. Values are OR-ed within an option and AND-ed across options.
	Options map[string][]string `json:"options,omitempty"`

	PriceMin        *float64 `json:"priceMin,omitempty"`
	PriceMax        *float64 `json:"priceMax,omitempty"`
	VariantPriceMin *float64 `json:"variantPriceMin,omitempty"`
	VariantPriceMax *float64 `json:"variantPriceMax,omitempty"`

	// HideOutOfStockItems is set by the filter configuration, never by the client.
	HideOutOfStockItems bool `json:"hideOutOfStockItems,omitempty"`

	// CPID is the collection page the storefront is currently rendering.
	// Its numeric form is AND-ed into Collections at parse time.
	CPID string `json:"cpid,omitempty"`

	Page           int    `json:"page"`
	Limit          int    `json:"limit"`
	Sort           string `json:"sort,omitempty"`
	IncludeFilters bool   `json:"includeFilters,omitempty"`

	// KeepOption names the facet whose own clause is removed from the
	// aggregation query so that clearing it can be previewed.
	KeepOption string `json:"keepOption,omitempty"`

	Fields []string `json:"fields,omitempty"`
}

// NewFilterInput returns an input with pagination defaults applied.
func NewFilterInput() *FilterInput {
	return &FilterInput{
		Page:    DefaultPage,
		Limit:   DefaultLimit,
		Options: map[string][]string{},
	}
}

// Hash returns the first 16 hex chars of the MD5 of the canonical JSON
// encoding. encoding/json sorts map keys, so the result is deterministic for
// equivalent inputs. Used as the cache key component for this input.
func (f *FilterInput) Hash() string {
	data, err := json.Marshal(f)
	if err != nil {
		// Marshalling a FilterInput cannot fail; keep a stable fallback anyway.
		data = []byte("unhashable")
	}
	sum := md5.Sum(data) //nolint:gosec
	return hex.EncodeToString(sum[:])[:16]
}

// HasPriceFilter returns true when any product-level price bound is set.
func (f *FilterInput) HasPriceFilter() bool {
	return f.PriceMin != nil || f.PriceMax != nil
}

// TotalPages computes the page count for a result total, guarding Limit == 0.
func (f *FilterInput) TotalPages(total int) int {
	limit := f.Limit
	if limit <= 0 {
		limit = 1
	}
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return pages
}
