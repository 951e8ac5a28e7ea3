// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package esclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	elasticsearch8 "github.com/elastic/go-elasticsearch/v8"
	esapi8 "github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/pkg/errors"
	"go.elastic.co/apm/module/apmelasticsearch/v2"
	"go.uber.org/zap"

	"github.com/elastic/storefront-search/pkg/esdsl"
	ulog "github.com/elastic/storefront-search/pkg/utils/log"
	"github.com/elastic/storefront-search/pkg/utils/metrics"
)

type officialClient struct {
	es        *elasticsearch8.Client
	transport *http.Transport
	log       *zap.Logger
}

var _ Client = &officialClient{}

// NewClient builds a Client over a shared pool of persistent connections to
// the configured Elasticsearch nodes.
func NewClient(cfg Config) (Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	var rt http.RoundTripper = transport
	if cfg.Tracer != nil {
		rt = apmelasticsearch.WrapRoundTripper(transport)
	}
	es, err := elasticsearch8.NewClient(elasticsearch8.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.User.Name,
		Password:  cfg.User.Password,
		APIKey:    cfg.APIKey,
		Transport: rt,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating elasticsearch client")
	}
	return &officialClient{
		es:        es,
		transport: transport,
		log:       ulog.Named("elasticsearch-client"),
	}, nil
}

func (c *officialClient) Search(ctx context.Context, index string, body esdsl.SearchBody) (*SearchResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "marshalling search body")
	}

	start := time.Now()
	res, err := esapi8.SearchRequest{
		Index: []string{index},
		Body:  bytes.NewReader(data),
	}.Do(ctx, c.es)
	metrics.ESRequestDuration.WithLabelValues("search").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, errors.Wrapf(err, "search against %q", index)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, newAPIError(res.StatusCode, res.Body)
	}

	var response SearchResponse
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, errors.Wrap(err, "decoding search response")
	}
	c.log.Debug("search executed",
		zap.String("index", index),
		zap.Int("took_ms", response.Took),
		zap.Int("total", response.Hits.Total.Value),
	)
	return &response, nil
}

func (c *officialClient) Msearch(ctx context.Context, items []MsearchItem) ([]MsearchResult, error) {
	if len(items) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	for _, item := range items {
		header, err := json.Marshal(map[string]string{"index": item.Index})
		if err != nil {
			return nil, errors.Wrap(err, "marshalling msearch header")
		}
		body, err := json.Marshal(item.Body)
		if err != nil {
			return nil, errors.Wrap(err, "marshalling msearch body")
		}
		buf.Write(header)
		buf.WriteByte('\n')
		buf.Write(body)
		buf.WriteByte('\n')
	}

	start := time.Now()
	res, err := esapi8.MsearchRequest{Body: &buf}.Do(ctx, c.es)
	metrics.ESRequestDuration.WithLabelValues("msearch").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, errors.Wrap(err, "msearch")
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, newAPIError(res.StatusCode, res.Body)
	}

	var envelope struct {
		Responses []json.RawMessage `json:"responses"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return nil, errors.Wrap(err, "decoding msearch response")
	}

	results := make([]MsearchResult, len(envelope.Responses))
	for i, raw := range envelope.Responses {
		// each item is either a search response or an inline error document
		var probe struct {
			Status int             `json:"status"`
			Error  json.RawMessage `json:"error"`
		}
		if err := json.Unmarshal(raw, &probe); err == nil && len(probe.Error) > 0 {
			results[i] = MsearchResult{Err: newAPIError(probe.Status, bytes.NewReader(raw))}
			continue
		}
		var response SearchResponse
		if err := json.Unmarshal(raw, &response); err != nil {
			results[i] = MsearchResult{Err: errors.Wrap(err, "decoding msearch item")}
			continue
		}
		results[i] = MsearchResult{Response: &response}
	}
	return results, nil
}

func (c *officialClient) IndexExists(ctx context.Context, index string) (bool, error) {
	start := time.Now()
	res, err := esapi8.IndicesExistsRequest{Index: []string{index}}.Do(ctx, c.es)
	metrics.ESRequestDuration.WithLabelValues("indices_exists").Observe(time.Since(start).Seconds())
	if err != nil {
		return false, errors.Wrapf(err, "checking index %q", index)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, newAPIError(res.StatusCode, res.Body)
	}
}

func (c *officialClient) Ping(ctx context.Context) error {
	res, err := esapi8.PingRequest{}.Do(ctx, c.es)
	if err != nil {
		return errors.Wrap(err, "pinging elasticsearch")
	}
	defer res.Body.Close()
	if res.IsError() {
		return newAPIError(res.StatusCode, res.Body)
	}
	return nil
}

// Close idle connections in the underlying transport. The transport keeps
// goroutines alive for keep-alive connections; close them when the client is
// no longer used.
func (c *officialClient) Close() {
	if c.transport != nil {
		c.transport.CloseIdleConnections()
	}
}
