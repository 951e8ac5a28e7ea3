// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

// Package metrics registers the prometheus collectors shared across the
// service: HTTP request accounting, cache effectiveness and Elasticsearch
// round-trip latency.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request latency per route and status class.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds. Broken down by route and status.",
			Buckets: []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1.0, 2.0, 4.0, 8.0, 15.0},
		},
		[]string{"route", "status"},
	)

	// RequestsTotal counts HTTP requests per route and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "Total HTTP requests. Broken down by route and status.",
		},
		[]string{"route", "status"},
	)

	// RateLimited counts requests rejected by the rate limiter.
	RateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_http_rate_limited_total",
			Help: "Total requests rejected with 429. Broken down by route.",
		},
		[]string{"route"},
	)

	// CacheHits counts cache hits per logical cache.
	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cache_hits_total",
			Help: "Total cache hits. Broken down by cache.",
		},
		[]string{"cache"},
	)

	// CacheMisses counts cache misses per logical cache.
	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cache_misses_total",
			Help: "Total cache misses. Broken down by cache.",
		},
		[]string{"cache"},
	)

	// CacheEvictions counts LRU evictions per logical cache.
	CacheEvictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cache_evictions_total",
			Help: "Total LRU evictions. Broken down by cache.",
		},
		[]string{"cache"},
	)

	// CacheExpirations counts TTL expirations per logical cache.
	CacheExpirations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cache_expirations_total",
			Help: "Total TTL expirations. Broken down by cache.",
		},
		[]string{"cache"},
	)

	// ESRequestDuration tracks Elasticsearch round-trip latency per operation.
	ESRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_elasticsearch_request_duration_seconds",
			Help:    "Elasticsearch request latency in seconds. Broken down by operation.",
			Buckets: []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1.0, 2.0, 4.0, 8.0},
		},
		[]string{"operation"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration,
		RequestsTotal,
		RateLimited,
		CacheHits,
		CacheMisses,
		CacheEvictions,
		CacheExpirations,
		ESRequestDuration,
	)
}
