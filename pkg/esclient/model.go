// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package esclient

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// SearchResponse is the decoded body of a search API response.
type SearchResponse struct {
	Took         int                        `json:"took"`
	TimedOut     bool                       `json:"timed_out"`
	Hits         HitsMetadata               `json:"hits"`
	Aggregations map[string]json.RawMessage `json:"aggregations,omitempty"`
	Suggest      map[string][]Suggestion    `json:"suggest,omitempty"`
	Status       int                        `json:"status,omitempty"`
}

// HitsMetadata carries the hit total and documents of a response.
type HitsMetadata struct {
	Total TotalHits `json:"total"`
	Hits  []Hit     `json:"hits"`
}

// TotalHits is the hit count with its accuracy relation.
type TotalHits struct {
	Value    int    `json:"value"`
	Relation string `json:"relation"`
}

// Hit is one matched document.
type Hit struct {
	ID     string          `json:"_id"`
	Score  *float64        `json:"_score"`
	Source json.RawMessage `json:"_source"`
}

// Suggestion is one entry of a suggest response section.
type Suggestion struct {
	Text    string             `json:"text"`
	Offset  int                `json:"offset"`
	Length  int                `json:"length"`
	Options []SuggestionOption `json:"options"`
}

// SuggestionOption is one candidate of a suggestion.
type SuggestionOption struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
	Freq  int     `json:"freq,omitempty"`
	ID    string  `json:"_id,omitempty"`
	Index string  `json:"_index,omitempty"`
}

// TermsBuckets is the decoded form of a terms aggregation.
type TermsBuckets struct {
	Buckets []Bucket `json:"buckets"`
}

// Bucket is one bucket of a terms aggregation.
type Bucket struct {
	Key      string `json:"key"`
	DocCount int64  `json:"doc_count"`
}

// StatsResult is the decoded form of a stats aggregation. Min and Max are nil
// when the aggregation saw no documents.
type StatsResult struct {
	Count int64    `json:"count"`
	Min   *float64 `json:"min"`
	Max   *float64 `json:"max"`
	Avg   *float64 `json:"avg"`
	Sum   *float64 `json:"sum"`
}

// DecodeTerms decodes the named terms aggregation, returning an empty bucket
// list when the aggregation is absent.
func (r *SearchResponse) DecodeTerms(name string) (TermsBuckets, error) {
	raw, ok := r.Aggregations[name]
	if !ok {
		return TermsBuckets{}, nil
	}
	var out TermsBuckets
	if err := json.Unmarshal(raw, &out); err != nil {
		return TermsBuckets{}, errors.Wrapf(err, "decoding terms aggregation %q", name)
	}
	return out, nil
}

// DecodeStats decodes the named stats aggregation.
func (r *SearchResponse) DecodeStats(name string) (StatsResult, error) {
	raw, ok := r.Aggregations[name]
	if !ok {
		return StatsResult{}, nil
	}
	var out StatsResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return StatsResult{}, errors.Wrapf(err, "decoding stats aggregation %q", name)
	}
	return out, nil
}

// DecodeNestedStats decodes a stats sub-aggregation inside the named nested
// aggregation.
func (r *SearchResponse) DecodeNestedStats(name, sub string) (StatsResult, error) {
	raw, ok := r.Aggregations[name]
	if !ok {
		return StatsResult{}, nil
	}
	var nested map[string]json.RawMessage
	if err := json.Unmarshal(raw, &nested); err != nil {
		return StatsResult{}, errors.Wrapf(err, "decoding nested aggregation %q", name)
	}
	inner, ok := nested[sub]
	if !ok {
		return StatsResult{}, nil
	}
	var out StatsResult
	if err := json.Unmarshal(inner, &out); err != nil {
		return StatsResult{}, errors.Wrapf(err, "decoding stats aggregation %q.%q", name, sub)
	}
	return out, nil
}
