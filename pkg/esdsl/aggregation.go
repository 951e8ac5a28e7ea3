// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package esdsl

import "encoding/json"

// Aggregation is one node of the aggregations DSL.
type Aggregation interface {
	json.Marshaler
	isAggregation()
}

// TermsAgg is a bucket aggregation over a keyword field.
type TermsAgg struct {
	Field string
	Size  int
	// OrderCountDesc emits an explicit _count desc order.
	OrderCountDesc bool
}

func (TermsAgg) isAggregation() {}

func (t TermsAgg) MarshalJSON() ([]byte, error) {
	body := map[string]any{"field": t.Field}
	if t.Size > 0 {
		body["size"] = t.Size
	}
	if t.OrderCountDesc {
		body["order"] = map[string]string{"_count": "desc"}
	}
	return json.Marshal(map[string]any{"terms": body})
}

// StatsAgg computes min/max/avg/sum over a numeric field.
type StatsAgg struct {
	Field string
}

func (StatsAgg) isAggregation() {}

func (s StatsAgg) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"stats": map[string]any{"field": s.Field}})
}

// NestedAgg scopes sub-aggregations to a nested document path.
type NestedAgg struct {
	Path string
	Aggs map[string]Aggregation
}

func (NestedAgg) isAggregation() {}

func (n NestedAgg) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"nested": map[string]any{"path": n.Path},
		"aggs":   n.Aggs,
	})
}

// SortClause orders results by one field.
type SortClause struct {
	Field   string
	Order   string
	Missing string
}

func (s SortClause) MarshalJSON() ([]byte, error) {
	body := map[string]any{"order": s.Order}
	if s.Missing != "" {
		body["missing"] = s.Missing
	}
	return json.Marshal(map[string]any{s.Field: body})
}

// SearchBody is a complete request body for the search API.
type SearchBody struct {
	Query   Query                  `json:"query,omitempty"`
	Aggs    map[string]Aggregation `json:"aggs,omitempty"`
	Sort    []SortClause           `json:"sort,omitempty"`
	From    *int                   `json:"from,omitempty"`
	Size    *int                   `json:"size,omitempty"`
	Source  []string               `json:"_source,omitempty"`
	Suggest json.RawMessage        `json:"suggest,omitempty"`
}
