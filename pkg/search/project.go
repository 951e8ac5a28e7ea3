// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package search

import "strings"

// ProjectFields reduces a product document to the requested dotted paths,
// e.g. "title" or "variants.price". Paths traversing arrays project every
// element; sibling paths under the same array merge by element index.
// An empty field list returns the document unchanged.
func ProjectFields(product Product, fields []string) Product {
	if len(fields) == 0 {
		return product
	}
	out := Product{}
	for _, field := range fields {
		segments := strings.Split(field, ".")
		projectInto(product, out, segments)
	}
	return out
}

func projectInto(src, out map[string]any, segments []string) {
	key := segments[0]
	value, ok := src[key]
	if !ok {
		return
	}
	if len(segments) == 1 {
		out[key] = value
		return
	}
	switch v := value.(type) {
	case map[string]any:
		sub, _ := out[key].(map[string]any)
		if sub == nil {
			sub = map[string]any{}
			out[key] = sub
		}
		projectInto(v, sub, segments[1:])
	case []any:
		existing, _ := out[key].([]any)
		if existing == nil {
			existing = make([]any, len(v))
			for i := range existing {
				existing[i] = map[string]any{}
			}
			out[key] = existing
		}
		for i, item := range v {
			if i >= len(existing) {
				break
			}
			srcItem, okSrc := item.(map[string]any)
			outItem, okOut := existing[i].(map[string]any)
			if okSrc && okOut {
				projectInto(srcItem, outItem, segments[1:])
			}
		}
	}
}
