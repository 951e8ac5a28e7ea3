// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleProduct() Product {
	return Product{
		"id":    "p1",
		"title": "Jacket",
		"vendor": "Acme",
		"seo": map[string]any{
			"title":       "Jacket | Acme",
			"description": "A jacket.",
		},
		"variants": []any{
			map[string]any{"sku": "SKU-1", "price": 10.0, "weight": 1.2},
			map[string]any{"sku": "SKU-2", "price": 12.0, "weight": 1.3},
		},
	}
}

func TestProjectFieldsEmptyListReturnsAll(t *testing.T) {
	p := sampleProduct()
	assert.Equal(t, p, ProjectFields(p, nil))
}

func TestProjectFieldsTopLevel(t *testing.T) {
	got := ProjectFields(sampleProduct(), []string{"title", "vendor", "missing"})
	assert.Equal(t, Product{"title": "Jacket", "vendor": "Acme"}, got)
}

func TestProjectFieldsNestedMap(t *testing.T) {
	got := ProjectFields(sampleProduct(), []string{"seo.title"})
	assert.Equal(t, Product{"seo": map[string]any{"title": "Jacket | Acme"}}, got)
}

func TestProjectFieldsThroughArrays(t *testing.T) {
	got := ProjectFields(sampleProduct(), []string{"variants.sku", "variants.price"})
	assert.Equal(t, Product{
		"variants": []any{
			map[string]any{"sku": "SKU-1", "price": 10.0},
			map[string]any{"sku": "SKU-2", "price": 12.0},
		},
	}, got, "sibling paths under the same array merge by element index")
}
