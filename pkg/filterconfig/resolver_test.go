// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package filterconfig

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	candidates []FilterConfiguration
	err        error
	calls      atomic.Int64
}

func (f *fakeSource) Candidates(_ context.Context, _ string) ([]FilterConfiguration, error) {
	f.calls.Add(1)
	return f.candidates, f.err
}

func TestResolvePrecedence(t *testing.T) {
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(24 * time.Hour)

	source := &fakeSource{candidates: []FilterConfiguration{
		{ID: "draft", Status: "draft", DeploymentChannel: "app", UpdatedAt: newer},
		{ID: "unscoped-new", Status: "published", DeploymentChannel: "app", UpdatedAt: newer},
		{
			ID: "scoped-old", Status: "published", DeploymentChannel: "app", UpdatedAt: older,
			TargetScope:        "entitled",
			AllowedCollections: []CollectionRef{{ID: "42"}},
		},
	}}
	r := NewResolver(source, time.Minute)

	t.Run("collection scope beats recency", func(t *testing.T) {
		cfg := r.Resolve(context.Background(), "shopA.myshopify.com", "42", "")
		require.NotNil(t, cfg)
		assert.Equal(t, "scoped-old", cfg.ID)
	})

	t.Run("without a matching collection the newest wins", func(t *testing.T) {
		cfg := r.Resolve(context.Background(), "shopA.myshopify.com", "", "")
		require.NotNil(t, cfg)
		assert.Equal(t, "unscoped-new", cfg.ID)
	})

	t.Run("cpid stands in for the collection ID", func(t *testing.T) {
		cfg := r.Resolve(context.Background(), "shopA.myshopify.com", "", "gid://shopify/Collection/42")
		require.NotNil(t, cfg)
		assert.Equal(t, "scoped-old", cfg.ID)
	})
}

func TestResolveCachesPerKey(t *testing.T) {
	source := &fakeSource{candidates: []FilterConfiguration{
		{ID: "cfg", Status: "published", DeploymentChannel: "app"},
	}}
	r := NewResolver(source, time.Minute)

	r.Resolve(context.Background(), "shopA.myshopify.com", "", "")
	r.Resolve(context.Background(), "shopA.myshopify.com", "", "")
	assert.Equal(t, int64(1), source.calls.Load(), "second resolution served from cache")

	r.Resolve(context.Background(), "shopA.myshopify.com", "7", "")
	assert.Equal(t, int64(2), source.calls.Load(), "different collection is a different key")

	r.Invalidate("shopA.myshopify.com")
	r.Resolve(context.Background(), "shopA.myshopify.com", "", "")
	assert.Equal(t, int64(3), source.calls.Load(), "invalidation forces a refetch")
}

func TestResolveAbsorbsErrors(t *testing.T) {
	source := &fakeSource{err: errors.New("store down")}
	r := NewResolver(source, time.Minute)

	cfg := r.Resolve(context.Background(), "shopA.myshopify.com", "", "")
	assert.Nil(t, cfg, "fetch failure degrades to the null configuration")
}

func TestResolveNoEligibleCandidates(t *testing.T) {
	source := &fakeSource{candidates: []FilterConfiguration{
		{ID: "draft", Status: "draft", DeploymentChannel: "app"},
	}}
	r := NewResolver(source, time.Minute)
	assert.Nil(t, r.Resolve(context.Background(), "shopA.myshopify.com", "", ""))
}
