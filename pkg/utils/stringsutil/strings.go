// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package stringsutil

import (
	"strings"
	"unicode/utf8"
)

// StringInSlice returns true if the given string is found in the provided slice.
func StringInSlice(str string, list []string) bool {
	for _, s := range list {
		if s == str {
			return true
		}
	}
	return false
}

// RemoveDuplicates returns the slice with duplicate entries removed,
// preserving the order of first occurrence.
func RemoveDuplicates(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	result := make([]string, 0, len(list))
	for _, s := range list {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		result = append(result, s)
	}
	return result
}

// Intersection returns the elements of a that are also present in b,
// preserving the order of a.
func Intersection(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, s := range b {
		inB[s] = struct{}{}
	}
	result := make([]string, 0, len(a))
	for _, s := range a {
		if _, ok := inB[s]; ok {
			result = append(result, s)
		}
	}
	return result
}

// Union merges b into a, dropping duplicates and preserving order.
func Union(a, b []string) []string {
	return RemoveDuplicates(append(append([]string{}, a...), b...))
}

// Truncate returns s cut to at most max bytes, never splitting a rune: the
// cut backs up to the nearest rune boundary so the result stays valid UTF-8.
func Truncate(s string, max int) string {
	if max < 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// LowerTrim normalizes a string for case-insensitive comparison.
func LowerTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
