// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package filterconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEligible(t *testing.T) {
	tests := []struct {
		name string
		cfg  *FilterConfiguration
		want bool
	}{
		{
			name: "nil configuration",
			cfg:  nil,
			want: false,
		},
		{
			name: "published app channel",
			cfg:  &FilterConfiguration{Status: "published", DeploymentChannel: "app"},
			want: true,
		},
		{
			name: "uppercase status still counts",
			cfg:  &FilterConfiguration{Status: "PUBLISHED", DeploymentChannel: "Theme"},
			want: true,
		},
		{
			name: "draft is ignored",
			cfg:  &FilterConfiguration{Status: "draft", DeploymentChannel: "app"},
			want: false,
		},
		{
			name: "unknown channel is ignored",
			cfg:  &FilterConfiguration{Status: "published", DeploymentChannel: "email"},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Eligible())
		})
	}
}

func TestOptionName(t *testing.T) {
	assert.Equal(t, "Color", Option{
		Handle:         "pr_a3k9x",
		OptionType:     "option",
		OptionSettings: OptionSettings{VariantOptionKey: "Color"},
	}.Name(), "variantOptionKey wins")

	assert.Equal(t, "vendor", Option{Handle: "pr_b2c3d", OptionType: "vendor"}.Name())
	assert.Equal(t, "pr_e4f5g", Option{Handle: "pr_e4f5g"}.Name(), "handle is the last resort")
}

func TestHandleIndex(t *testing.T) {
	cfg := &FilterConfiguration{
		Status:            "published",
		DeploymentChannel: "app",
		Options: []Option{
			{Handle: "pr_a3k9x", Status: "published", OptionSettings: OptionSettings{VariantOptionKey: "Color"}},
			{Handle: "pr_draft", Status: "draft", OptionSettings: OptionSettings{VariantOptionKey: "Hidden"}},
		},
	}

	index := cfg.HandleIndex()
	assert.Equal(t, "Color", index["pr_a3k9x"], "handle resolves")
	assert.Equal(t, "Color", index["Color"], "resolved name maps to itself")
	assert.Equal(t, "Color", index["color"], "lowercased name maps to itself")
	assert.NotContains(t, index, "pr_draft", "draft options are invisible")

	assert.Nil(t, (*FilterConfiguration)(nil).HandleIndex())
}

func TestVariantOptionKeys(t *testing.T) {
	cfg := &FilterConfiguration{
		Options: []Option{
			{Status: "published", OptionSettings: OptionSettings{VariantOptionKey: "Color"}},
			{Status: "published", OptionType: "Material", OptionSettings: OptionSettings{BaseOptionType: "option"}},
			{Status: "published", OptionSettings: OptionSettings{BaseOptionType: "Size"}},
			{Status: "published", OptionType: "vendor"},
			{Status: "draft", OptionSettings: OptionSettings{VariantOptionKey: "Unpublished"}},
		},
	}

	keys := cfg.VariantOptionKeys()
	assert.Equal(t, map[string]struct{}{
		"color":    {},
		"material": {},
		"size":     {},
	}, keys, "standard filters and unpublished options are excluded")

	assert.Nil(t, (*FilterConfiguration)(nil).VariantOptionKeys())
}

func TestLookupStandardFilter(t *testing.T) {
	tests := []struct {
		name string
		want StandardFilter
		ok   bool
	}{
		{"vendor", StandardVendor, true},
		{"Vendors", StandardVendor, true},
		{"product_type", StandardProductType, true},
		{"PRODUCTTYPE", StandardProductType, true},
		{"tags", StandardTag, true},
		{"collection", StandardCollection, true},
		{"price", StandardPrice, true},
		{"Color", "", false},
	}
	for _, tt := range tests {
		got, ok := LookupStandardFilter(tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestEntitled(t *testing.T) {
	assert.False(t, (&FilterConfiguration{TargetScope: "entitled"}).Entitled(),
		"entitled without collections is not a restriction")
	assert.True(t, (&FilterConfiguration{
		TargetScope:        "Entitled",
		AllowedCollections: []CollectionRef{{ID: "100"}},
	}).Entitled())
	assert.False(t, (*FilterConfiguration)(nil).Entitled())
}
