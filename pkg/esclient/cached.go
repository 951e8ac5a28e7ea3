// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package esclient

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultExistsCacheSize = 4096
	defaultExistsCacheTTL  = 30 * time.Second
)

// cachedClient decorates a Client with a short-lived index-existence cache so
// that repeated queries against a missing index do not hammer the cluster.
type cachedClient struct {
	Client
	exists *expirable.LRU[string, bool]
}

var _ Client = &cachedClient{}

// NewCachedClient wraps the client with an index-existence cache. A ttl of
// zero keeps the default.
func NewCachedClient(client Client, ttl time.Duration) Client {
	if ttl <= 0 {
		ttl = defaultExistsCacheTTL
	}
	return &cachedClient{
		Client: client,
		exists: expirable.NewLRU[string, bool](defaultExistsCacheSize, nil, ttl),
	}
}

func (c *cachedClient) IndexExists(ctx context.Context, index string) (bool, error) {
	if exists, ok := c.exists.Get(index); ok {
		return exists, nil
	}
	exists, err := c.Client.IndexExists(ctx, index)
	if err != nil {
		return false, err
	}
	c.exists.Add(index, exists)
	return exists, nil
}
