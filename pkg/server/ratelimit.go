// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/elastic/storefront-search/pkg/utils/metrics"
)

// DefaultRateLimit allows 500 requests per minute per tenant and route.
const DefaultRateLimit = 500

// tenantLimiter hands out one token bucket per tenant. Buckets idle for an
// hour are dropped by the janitor so the map stays bounded.
type tenantLimiter struct {
	perMinute int

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newTenantLimiter(perMinute int) *tenantLimiter {
	if perMinute <= 0 {
		perMinute = DefaultRateLimit
	}
	return &tenantLimiter{
		perMinute: perMinute,
		buckets:   map[string]*bucket{},
	}
}

func (t *tenantLimiter) allow(shop string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	b, ok := t.buckets[shop]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Limit(float64(t.perMinute)/60.0), t.perMinute)}
		t.buckets[shop] = b
	}
	b.lastSeen = time.Now()
	return b.limiter.Allow()
}

func (t *tenantLimiter) sweep(olderThan time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cutoff := time.Now().Add(-olderThan)
	for shop, b := range t.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(t.buckets, shop)
		}
	}
}

// rateLimit rejects over-limit tenants with 429. Runs after shopDomain so the
// bucket keys on the normalized domain.
func rateLimit(limiter *tenantLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.allow(shopFrom(c)) {
			metrics.RateLimited.WithLabelValues(c.FullPath()).Inc()
			respondError(c, http.StatusTooManyRequests, "rate limit exceeded, please retry later")
			return
		}
		c.Next()
	}
}
