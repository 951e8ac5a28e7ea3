// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

// Package esclient wraps the official Elasticsearch client behind the small
// interface the query engine needs: search, msearch batches and index
// existence checks.
package esclient

import (
	"context"

	"go.elastic.co/apm/v2"

	"github.com/elastic/storefront-search/pkg/esdsl"
)

// BasicAuth is authentication information for the Elasticsearch client.
type BasicAuth struct {
	Name     string
	Password string
}

// Config captures the connection settings read from the environment.
type Config struct {
	// Addresses of the Elasticsearch nodes.
	Addresses []string
	// User credentials; ignored when empty.
	User BasicAuth
	// APIKey authentication; takes precedence over User when set.
	APIKey string
	// Tracer, when set, instruments every request as an APM span.
	Tracer *apm.Tracer
}

// MsearchItem is one query of an msearch batch.
type MsearchItem struct {
	Index string
	Body  esdsl.SearchBody
}

// MsearchResult is the outcome of one msearch item: a response or an error,
// never both.
type MsearchResult struct {
	Response *SearchResponse
	Err      error
}

// Client captures the operations the engine performs against Elasticsearch.
type Client interface {
	// Search executes one query against the given index.
	Search(ctx context.Context, index string, body esdsl.SearchBody) (*SearchResponse, error)
	// Msearch executes a batch of queries in one round-trip. The results
	// slice is index-aligned with the items.
	Msearch(ctx context.Context, items []MsearchItem) ([]MsearchResult, error)
	// IndexExists reports whether the index exists.
	IndexExists(ctx context.Context, index string) (bool, error)
	// Ping checks cluster reachability.
	Ping(ctx context.Context) error
	// Close idle connections in the underlying http client.
	Close()
}
