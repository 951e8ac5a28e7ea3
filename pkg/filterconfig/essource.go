// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package filterconfig

import (
	"context"
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/elastic/storefront-search/pkg/esclient"
	"github.com/elastic/storefront-search/pkg/esdsl"
	"github.com/elastic/storefront-search/pkg/tenant"
	ulog "github.com/elastic/storefront-search/pkg/utils/log"
)

var validate = validator.New()

// candidateFetchSize bounds how many configuration documents one tenant can
// contribute to resolution. Tenants carry at most a handful in practice.
const candidateFetchSize = 50

// ESSource reads a tenant's candidate configurations from its filters index.
type ESSource struct {
	client esclient.Client
	log    *zap.Logger
}

var _ Source = &ESSource{}

// NewESSource returns a Source backed by the per-tenant filters index.
func NewESSource(client esclient.Client) *ESSource {
	return &ESSource{
		client: client,
		log:    ulog.Named("filterconfig-source"),
	}
}

// Candidates fetches all configuration documents for the shop. A missing
// filters index means the tenant never published a configuration.
func (s *ESSource) Candidates(ctx context.Context, shop string) ([]FilterConfiguration, error) {
	index := tenant.FiltersIndex(shop)

	size := candidateFetchSize
	res, err := s.client.Search(ctx, index, esdsl.SearchBody{
		Query: esdsl.MatchAll{},
		Size:  &size,
	})
	if err != nil {
		if esclient.IsIndexNotFound(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "fetching filter configurations for %q", shop)
	}

	var skipped *multierror.Error
	candidates := make([]FilterConfiguration, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var config FilterConfiguration
		if err := json.Unmarshal(hit.Source, &config); err != nil {
			// skip unparseable documents rather than failing the request
			skipped = multierror.Append(skipped, errors.Wrapf(err, "document %q", hit.ID))
			continue
		}
		if err := validate.Struct(config); err != nil {
			skipped = multierror.Append(skipped, errors.Wrapf(err, "document %q", hit.ID))
			continue
		}
		if config.ID == "" {
			config.ID = hit.ID
		}
		candidates = append(candidates, config)
	}
	if err := skipped.ErrorOrNil(); err != nil {
		s.log.Warn("skipping malformed filter configurations",
			zap.String("shop", shop), zap.Error(err))
	}
	return candidates, nil
}
