// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package filterconfig

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func hashFixture() *FilterConfiguration {
	return &FilterConfiguration{
		ID:        "cfg-1",
		Version:   3,
		UpdatedAt: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		Options: []Option{
			{
				Handle:         "pr_a3k9x",
				OptionType:     "option",
				Status:         "published",
				AllowedOptions: []string{"Red", "Blue"},
				OptionSettings: OptionSettings{VariantOptionKey: "Color"},
			},
			{
				Handle:         "pr_b7m2p",
				OptionType:     "vendor",
				Status:         "published",
			},
		},
	}
}

func TestHashNullConfiguration(t *testing.T) {
	assert.Equal(t, NullConfigHash, Hash(nil))
}

func TestHashShape(t *testing.T) {
	h := Hash(hashFixture())
	assert.Len(t, h, 12)
	assert.Regexp(t, "^[0-9a-f]{12}$", h)
}

func TestHashStableUnderReordering(t *testing.T) {
	a := hashFixture()

	b := hashFixture()
	b.Options[0], b.Options[1] = b.Options[1], b.Options[0]
	b.Options[1].AllowedOptions = []string{"Blue", "Red"}

	assert.Equal(t, Hash(a), Hash(b), "option and value order must not change the fingerprint")
}

func TestHashChangesWithSemantics(t *testing.T) {
	base := Hash(hashFixture())

	bumped := hashFixture()
	bumped.Version = 4
	assert.NotEqual(t, base, Hash(bumped), "version bump rotates the hash")

	touched := hashFixture()
	touched.UpdatedAt = touched.UpdatedAt.Add(time.Second)
	assert.NotEqual(t, base, Hash(touched), "updatedAt rotates the hash")

	narrowed := hashFixture()
	narrowed.Options[0].AllowedOptions = []string{"Red"}
	assert.NotEqual(t, base, Hash(narrowed), "allowlist change rotates the hash")
}

func TestHashTimestampFallback(t *testing.T) {
	created := hashFixture()
	created.UpdatedAt = time.Time{}
	created.CreatedAt = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, Hash(created), Hash(created), "createdAt fallback is deterministic")
	assert.NotEqual(t, Hash(hashFixture()), Hash(created))
}
