// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package filterconfig

import (
	"context"
	"sort"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/elastic/storefront-search/pkg/tenant"
	ulog "github.com/elastic/storefront-search/pkg/utils/log"
)

// DefaultResolutionTTL bounds how long a resolved configuration is reused
// before the external store is consulted again. Short on purpose: a burst of
// storefront requests must not stampede the admin store, but configuration
// changes should land within a minute.
const DefaultResolutionTTL = 60 * time.Second

// Source fetches a tenant's candidate configurations from the external store.
type Source interface {
	Candidates(ctx context.Context, shop string) ([]FilterConfiguration, error)
}

// Resolver locates the tenant's active filter configuration. Resolution is
// cached by (tenant, collection, cpid). A missing or unfetchable
// configuration resolves to the null configuration, never to an error.
type Resolver struct {
	source Source
	cache  *gocache.Cache
	log    *zap.Logger
}

// NewResolver returns a resolver caching resolutions for the given TTL.
func NewResolver(source Source, ttl time.Duration) *Resolver {
	if ttl <= 0 {
		ttl = DefaultResolutionTTL
	}
	return &Resolver{
		source: source,
		cache:  gocache.New(ttl, 2*ttl),
		log:    ulog.Named("filterconfig-resolver"),
	}
}

type resolution struct {
	config *FilterConfiguration
}

// Resolve returns the active configuration for the tenant, or nil when none
// is eligible.
func (r *Resolver) Resolve(ctx context.Context, shop, collectionID, cpid string) *FilterConfiguration {
	key := resolutionKey(shop, collectionID, cpid)
	if cached, ok := r.cache.Get(key); ok {
		return cached.(resolution).config
	}

	config := r.resolve(ctx, shop, collectionID, cpid)
	r.cache.SetDefault(key, resolution{config: config})
	return config
}

// Invalidate drops every cached resolution for the tenant.
func (r *Resolver) Invalidate(shop string) {
	prefix := shop + "|"
	for key := range r.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			r.cache.Delete(key)
		}
	}
}

func (r *Resolver) resolve(ctx context.Context, shop, collectionID, cpid string) *FilterConfiguration {
	candidates, err := r.source.Candidates(ctx, shop)
	if err != nil {
		// degraded, not fatal: the request proceeds without a configuration
		r.log.Warn("failed to fetch filter configurations, using null configuration",
			zap.String("shop", shop), zap.Error(err))
		return nil
	}

	current := collectionID
	if current == "" {
		current = tenant.NormalizeCollectionID(cpid)
	}

	var eligible []*FilterConfiguration
	for i := range candidates {
		if candidates[i].Eligible() {
			eligible = append(eligible, &candidates[i])
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	// Collection-scoped configurations win over unscoped ones; ties break by
	// most recent updatedAt.
	sort.SliceStable(eligible, func(i, j int) bool {
		si, sj := eligible[i].ScopedToCollection(current), eligible[j].ScopedToCollection(current)
		if si != sj {
			return si
		}
		return eligible[i].UpdatedAt.After(eligible[j].UpdatedAt)
	})
	return eligible[0]
}

func resolutionKey(shop, collectionID, cpid string) string {
	return shop + "|" + collectionID + "|" + cpid
}
