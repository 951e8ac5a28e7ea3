// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package queryparams

import (
	"net/url"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeValue(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain value untouched",
			input: "Blue Denim Jacket",
			want:  "Blue Denim Jacket",
		},
		{
			name:  "script tags stripped",
			input: `<script>alert("x")</script>`,
			want:  `scriptalert("x")/script`,
		},
		{
			name:  "control bytes stripped",
			input: "red\x00\x1fshoe\n",
			want:  "redshoe",
		},
		{
			name:  "catalog punctuation preserved",
			input: `Tom's 50% Wool & Silk (Limited) #2 +plus`,
			want:  `Tom's 50% Wool & Silk (Limited) #2 +plus`,
		},
		{
			name:  "backticks stripped",
			input: "a`b",
			want:  "ab",
		},
		{
			name:  "oversize value truncated",
			input: strings.Repeat("x", 600),
			want:  strings.Repeat("x", 500),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeValue(tt.input))
		})
	}
}

func TestSanitizeTerms(t *testing.T) {
	t.Run("comma split with trim and dedup", func(t *testing.T) {
		got := SanitizeTerms([]string{" red, blue ,red", "green"})
		assert.Equal(t, []string{"red", "blue", "green"}, got)
	})

	t.Run("empty terms dropped", func(t *testing.T) {
		got := SanitizeTerms([]string{",,  ,"})
		assert.Empty(t, got)
	})

	t.Run("terms capped per field", func(t *testing.T) {
		var parts []string
		for i := 0; i < 150; i++ {
			parts = append(parts, "t"+strings.Repeat("x", i%5)+string(rune('a'+i%26)))
		}
		got := SanitizeTerms([]string{strings.Join(parts, ",")})
		assert.LessOrEqual(t, len(got), maxTermsPerField)
	})
}

func TestSanitizeIdempotent(t *testing.T) {
	query := url.Values{
		"search":          []string{`<b>jacket</b>`},
		"vendor":          []string{"Acme, Bäcker"},
		"bad\x01key":      []string{"v"},
		strings.Repeat("k", 300): []string{strings.Repeat("v", 600)},
	}

	once := Sanitize(query)
	twice := Sanitize(once)
	require.Equal(t, once, twice)

	assert.Equal(t, []string{"bjacket/b"}, once["search"], "angle brackets removed from value")
	assert.Equal(t, []string{"v"}, once["badkey"], "control byte removed from key")
	for key, values := range once {
		assert.LessOrEqual(t, len(key), maxKeyLen)
		for _, v := range values {
			assert.LessOrEqual(t, len(v), maxValueLen)
		}
	}
}

func TestSanitizeIdempotentAtTruncationBoundary(t *testing.T) {
	// a multi-byte rune straddling the length limit must not leave an orphan
	// byte behind, or the second pass would rewrite it and change the parse
	query := url.Values{"search": []string{strings.Repeat("a", maxValueLen-1) + "é"}}

	once := Sanitize(query)
	twice := Sanitize(once)
	require.Equal(t, once, twice)

	require.Len(t, once["search"], 1)
	assert.True(t, utf8.ValidString(once["search"][0]))
	assert.Equal(t, Parse(once).Search, Parse(twice).Search)
}
