// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

// Package esdsl models the slice of the Elasticsearch query DSL this service
// emits as a closed set of node types. Nodes serialize to the wire shape at
// the JSON boundary; nothing else in the codebase builds raw query maps.
package esdsl

import "encoding/json"

// Query is one node of the query DSL tree.
type Query interface {
	json.Marshaler
	isQuery()
}

// MatchAll matches every document.
type MatchAll struct{}

func (MatchAll) isQuery() {}

func (MatchAll) MarshalJSON() ([]byte, error) {
	return []byte(`{"match_all":{}}`), nil
}

// Term is an exact single-value match on a keyword field.
type Term struct {
	Field string
	Value any
}

func (Term) isQuery() {}

func (t Term) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"term": map[string]any{t.Field: t.Value}})
}

// Terms matches documents holding any of the values on a keyword field.
type Terms struct {
	Field  string
	Values []string
}

func (Terms) isQuery() {}

func (t Terms) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"terms": map[string]any{t.Field: t.Values}})
}

// Range bounds a numeric field. Nil bounds are omitted.
type Range struct {
	Field string
	GT    *float64
	GTE   *float64
	LTE   *float64
}

func (Range) isQuery() {}

func (r Range) MarshalJSON() ([]byte, error) {
	bounds := map[string]any{}
	if r.GT != nil {
		bounds["gt"] = *r.GT
	}
	if r.GTE != nil {
		bounds["gte"] = *r.GTE
	}
	if r.LTE != nil {
		bounds["lte"] = *r.LTE
	}
	return json.Marshal(map[string]any{"range": map[string]any{r.Field: bounds}})
}

// MultiMatch is a full-text query over several boosted fields.
type MultiMatch struct {
	Query    string
	Fields   []string
	Type     string
	Operator string
}

func (MultiMatch) isQuery() {}

func (m MultiMatch) MarshalJSON() ([]byte, error) {
	body := map[string]any{
		"query":  m.Query,
		"fields": m.Fields,
	}
	if m.Type != "" {
		body["type"] = m.Type
	}
	if m.Operator != "" {
		body["operator"] = m.Operator
	}
	return json.Marshal(map[string]any{"multi_match": body})
}

// Bool combines sub-queries. Empty clause lists are omitted on the wire.
type Bool struct {
	Must               []Query
	Should             []Query
	Filter             []Query
	MustNot            []Query
	MinimumShouldMatch int
}

func (Bool) isQuery() {}

func (b Bool) MarshalJSON() ([]byte, error) {
	body := map[string]any{}
	if len(b.Must) > 0 {
		body["must"] = b.Must
	}
	if len(b.Should) > 0 {
		body["should"] = b.Should
	}
	if len(b.Filter) > 0 {
		body["filter"] = b.Filter
	}
	if len(b.MustNot) > 0 {
		body["must_not"] = b.MustNot
	}
	if b.MinimumShouldMatch > 0 {
		body["minimum_should_match"] = b.MinimumShouldMatch
	}
	return json.Marshal(map[string]any{"bool": body})
}

// Nested wraps a query running against a nested document path.
type Nested struct {
	Path  string
	Query Query
}

func (Nested) isQuery() {}

func (n Nested) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"nested": map[string]any{
		"path":  n.Path,
		"query": n.Query,
	}})
}
