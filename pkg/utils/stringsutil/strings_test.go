// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package stringsutil

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestRemoveDuplicates(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, RemoveDuplicates([]string{"a", "b", "a", "c", "b"}),
		"first occurrence order preserved")
	assert.Empty(t, RemoveDuplicates(nil))
}

func TestIntersection(t *testing.T) {
	assert.Equal(t, []string{"b", "a"}, Intersection([]string{"b", "x", "a"}, []string{"a", "b", "c"}),
		"order of the first argument preserved")
	assert.Empty(t, Intersection([]string{"x"}, []string{"y"}))
	assert.Empty(t, Intersection(nil, []string{"a"}))
}

func TestUnion(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, Union([]string{"a", "b"}, []string{"b", "c"}))
	assert.Equal(t, []string{"a"}, Union(nil, []string{"a"}))

	a := []string{"a"}
	Union(a, []string{"b"})
	assert.Equal(t, []string{"a"}, a, "inputs are not mutated")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abcdef", 3))
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "abc", Truncate("abc", -1), "negative max means unbounded")
}

func TestTruncateRuneBoundary(t *testing.T) {
	// "é" is two bytes; a byte-level cut at 3 would leave an orphan 0xc3
	assert.Equal(t, "ab", Truncate("abéc", 3), "cut backs up to the rune start")
	assert.Equal(t, "abé", Truncate("abéc", 4))
	assert.Equal(t, "", Truncate("é", 1))
	assert.True(t, utf8.ValidString(Truncate("日本語", 5)))
}

func TestLowerTrim(t *testing.T) {
	assert.Equal(t, "color", LowerTrim("  Color "))
}
