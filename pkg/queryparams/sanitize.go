// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package queryparams

import (
	"net/url"
	"strings"

	"github.com/elastic/storefront-search/pkg/utils/stringsutil"
)

// Length limits applied during sanitization. Oversize input is truncated,
// never rejected.
const (
	maxKeyLen        = 200
	maxValueLen      = 500
	maxOptionLen     = 200
	maxTermLen       = 100
	maxTermsPerField = 100
)

// stripped characters: NUL and ASCII control bytes, plus the narrow blocklist
// that enables HTML/script injection. Everything else (quotes, '&', '%', '/',
// '+', '#', spaces, parentheses) legitimately occurs in product catalogs and
// is preserved for exact-term matching.
func stripUnsafe(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			continue
		}
		switch r {
		case '<', '>', '`':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SanitizeKey cleans a query-string key.
func SanitizeKey(key string) string {
	return stringsutil.Truncate(stripUnsafe(key), maxKeyLen)
}

// SanitizeValue cleans a single query-string value.
func SanitizeValue(value string) string {
	return stringsutil.Truncate(stripUnsafe(value), maxValueLen)
}

// SanitizeOptionName cleans an option name or option value.
func SanitizeOptionName(name string) string {
	return stringsutil.Truncate(stripUnsafe(name), maxOptionLen)
}

// SanitizeTerms comma-splits the given values into a bounded terms list:
// at most maxTermsPerField items of maxTermLen bytes each, empty terms and
// duplicates removed.
func SanitizeTerms(values []string) []string {
	var terms []string
	for _, v := range values {
		for _, part := range strings.Split(SanitizeValue(v), ",") {
			term := strings.TrimSpace(stringsutil.Truncate(part, maxTermLen))
			if term == "" {
				continue
			}
			terms = append(terms, term)
			if len(terms) >= maxTermsPerField {
				return stringsutil.RemoveDuplicates(terms)
			}
		}
	}
	return stringsutil.RemoveDuplicates(terms)
}

// Sanitize cleans every key and value of a decoded query map before any
// interpretation. Sanitization is idempotent.
func Sanitize(query url.Values) url.Values {
	cleaned := make(url.Values, len(query))
	for key, values := range query {
		k := SanitizeKey(key)
		if k == "" {
			continue
		}
		for _, v := range values {
			cleaned[k] = append(cleaned[k], SanitizeValue(v))
		}
	}
	return cleaned
}
