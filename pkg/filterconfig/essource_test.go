// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package filterconfig

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elastic/storefront-search/pkg/esclient"
	"github.com/elastic/storefront-search/pkg/esdsl"
)

func configHit(id string, doc map[string]any) esclient.Hit {
	source, _ := json.Marshal(doc)
	return esclient.Hit{ID: id, Source: source}
}

func TestESSourceCandidates(t *testing.T) {
	fake := &esclient.FakeClient{
		SearchFunc: func(_ context.Context, index string, body esdsl.SearchBody) (*esclient.SearchResponse, error) {
			assert.Equal(t, "shop-a.myshopify.com_filters", index)
			require.NotNil(t, body.Size)
			assert.Equal(t, candidateFetchSize, *body.Size)
			return &esclient.SearchResponse{
				Hits: esclient.HitsMetadata{Hits: []esclient.Hit{
					configHit("cfg-1", map[string]any{
						"status":            "published",
						"deploymentChannel": "app",
						"options": []map[string]any{
							{"handle": "pr_col", "status": "published"},
						},
					}),
					{ID: "broken", Source: json.RawMessage(`{"options": "nope"`)},
					// missing option handle fails validation
					configHit("cfg-2", map[string]any{
						"status":  "draft",
						"options": []map[string]any{{"position": 1}},
					}),
				}},
			}, nil
		},
	}

	got, err := NewESSource(fake).Candidates(context.Background(), "shop-a.myshopify.com")
	require.NoError(t, err, "bad documents are skipped, not fatal")
	require.Len(t, got, 1)
	assert.Equal(t, "cfg-1", got[0].ID, "ID backfilled from the hit")
}

func TestESSourceMissingIndex(t *testing.T) {
	fake := &esclient.FakeClient{
		SearchFunc: func(context.Context, string, esdsl.SearchBody) (*esclient.SearchResponse, error) {
			return nil, &esclient.APIError{StatusCode: 404}
		},
	}

	got, err := NewESSource(fake).Candidates(context.Background(), "shop-a.myshopify.com")
	require.NoError(t, err)
	assert.Nil(t, got, "a tenant without a filters index has no configuration")
}
