// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

// Package tenant holds the helpers shared by every component that needs to
// identify a storefront: shop domain normalization and index naming.
package tenant

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/elastic/storefront-search/pkg/utils/stringsutil"
)

const (
	// ShopDomainSuffix is the suffix every non-whitelisted shop domain must carry.
	ShopDomainSuffix = ".myshopify.com"

	productsIndexSuffix = "-products"
	filtersIndexSuffix  = "_filters"
)

var (
	// ErrInvalidShopDomain is returned when a shop domain fails validation.
	ErrInvalidShopDomain = errors.New("invalid shop domain")

	domainPattern       = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]*[a-z0-9]$`)
	collectionIDPattern = regexp.MustCompile(`(\d+)\s*$`)
)

// Normalize cleans up a raw shop domain: lowercasing, stripping scheme, path
// and trailing dot. It does not validate; see Validate.
func Normalize(raw string) string {
	domain := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.Index(domain, "://"); i >= 0 {
		domain = domain[i+3:]
	}
	if i := strings.IndexAny(domain, "/?#"); i >= 0 {
		domain = domain[:i]
	}
	domain = strings.TrimSuffix(domain, ".")
	return domain
}

// Validate normalizes the raw domain and checks it against the myshopify
// suffix or the explicit allowlist. Returns the normalized domain.
func Validate(raw string, allowlist []string) (string, error) {
	domain := Normalize(raw)
	if domain == "" {
		return "", errors.Wrap(ErrInvalidShopDomain, "empty shop domain")
	}
	if stringsutil.StringInSlice(domain, allowlist) {
		return domain, nil
	}
	if !strings.HasSuffix(domain, ShopDomainSuffix) || !domainPattern.MatchString(domain) {
		return "", errors.Wrapf(ErrInvalidShopDomain, "%q", domain)
	}
	return domain, nil
}

// ProductsIndex returns the product index name for a normalized shop domain.
func ProductsIndex(shop string) string {
	return shop + productsIndexSuffix
}

// FiltersIndex returns the filter configuration index name for a normalized shop domain.
func FiltersIndex(shop string) string {
	return shop + filtersIndexSuffix
}

// NormalizeCollectionID extracts the numeric collection ID from either a bare
// number or a Shopify GID such as "gid://shopify/Collection/100".
// Returns the empty string when no numeric ID is present.
func NormalizeCollectionID(raw string) string {
	m := collectionIDPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return ""
	}
	return m[1]
}
