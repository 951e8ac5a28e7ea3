// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/elastic/storefront-search/pkg/tenant"
	ulog "github.com/elastic/storefront-search/pkg/utils/log"
	"github.com/elastic/storefront-search/pkg/utils/metrics"
)

const (
	requestIDHeader = "X-Request-ID"

	ctxKeyRequestID = "requestID"
	ctxKeyShop      = "shopDomain"
)

func requestIDFrom(c *gin.Context) string {
	return c.GetString(ctxKeyRequestID)
}

func shopFrom(c *gin.Context) string {
	return c.GetString(ctxKeyShop)
}

// requestID assigns each request an ID, honoring one supplied by the caller.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxKeyRequestID, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// accessLog writes one structured line per request after it completes.
func accessLog() gin.HandlerFunc {
	log := ulog.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("request",
			zap.String("requestID", requestIDFrom(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("shop", shopFrom(c)),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

// recovery converts panics into 500 responses with a logged stack.
func recovery() gin.HandlerFunc {
	log := ulog.Named("http")
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered",
					zap.String("requestID", requestIDFrom(c)),
					zap.Any("panic", r),
					zap.Stack("stack"),
				)
				respondError(c, http.StatusInternalServerError, "internal error")
			}
		}()
		c.Next()
	}
}

// httpMetrics records per-route latency and counts. The route label is the
// registered pattern, never the raw path, to bound cardinality.
func httpMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		metrics.RequestDuration.WithLabelValues(route, status).Observe(time.Since(start).Seconds())
		metrics.RequestsTotal.WithLabelValues(route, status).Inc()
	}
}

// shopDomain validates the mandatory shop query parameter (shopDomain is
// accepted as an alias) and stores the normalized form for the handlers.
func shopDomain(allowlist []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Query("shop")
		if raw == "" {
			raw = c.Query("shopDomain")
		}
		shop, err := tenant.Validate(raw, allowlist)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid shop domain")
			return
		}
		c.Set(ctxKeyShop, shop)
		c.Next()
	}
}
