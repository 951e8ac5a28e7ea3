// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package esclient

import (
	"context"
	"sync/atomic"

	"github.com/elastic/storefront-search/pkg/esdsl"
)

// FakeClient is a test double. Unset function fields yield zero-value
// responses. Call counters are safe for concurrent use.
type FakeClient struct {
	SearchFunc      func(ctx context.Context, index string, body esdsl.SearchBody) (*SearchResponse, error)
	MsearchFunc     func(ctx context.Context, items []MsearchItem) ([]MsearchResult, error)
	IndexExistsFunc func(ctx context.Context, index string) (bool, error)
	PingFunc        func(ctx context.Context) error

	SearchCalls      atomic.Int64
	MsearchCalls     atomic.Int64
	IndexExistsCalls atomic.Int64
}

var _ Client = &FakeClient{}

func (f *FakeClient) Search(ctx context.Context, index string, body esdsl.SearchBody) (*SearchResponse, error) {
	f.SearchCalls.Add(1)
	if f.SearchFunc != nil {
		return f.SearchFunc(ctx, index, body)
	}
	return &SearchResponse{}, nil
}

func (f *FakeClient) Msearch(ctx context.Context, items []MsearchItem) ([]MsearchResult, error) {
	f.MsearchCalls.Add(1)
	if f.MsearchFunc != nil {
		return f.MsearchFunc(ctx, items)
	}
	return make([]MsearchResult, len(items)), nil
}

func (f *FakeClient) IndexExists(ctx context.Context, index string) (bool, error) {
	f.IndexExistsCalls.Add(1)
	if f.IndexExistsFunc != nil {
		return f.IndexExistsFunc(ctx, index)
	}
	return true, nil
}

func (f *FakeClient) Ping(ctx context.Context) error {
	if f.PingFunc != nil {
		return f.PingFunc(ctx)
	}
	return nil
}

func (f *FakeClient) Close() {}
