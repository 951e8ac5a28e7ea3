// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/elastic/storefront-search/pkg/esclient"
	"github.com/elastic/storefront-search/pkg/tenant"
	ulog "github.com/elastic/storefront-search/pkg/utils/log"
)

// envelope is the uniform response shape of the public API.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, envelope{Success: false, Error: message})
}

// respondUpstreamError maps pipeline failures to client-safe responses.
// Upstream details never leak: the mapped message is generic and the cause is
// logged server-side with the request ID.
func respondUpstreamError(c *gin.Context, err error) {
	ulog.Named("http").Error("request failed",
		zap.String("requestID", requestIDFrom(c)),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)

	switch {
	case errors.Is(err, context.DeadlineExceeded) || esclient.IsTimeout(err):
		respondError(c, http.StatusGatewayTimeout, "search backend timed out")
	case errors.Is(err, tenant.ErrInvalidShopDomain):
		respondError(c, http.StatusBadRequest, "invalid shop domain")
	case esclient.Is4xx(err):
		respondError(c, http.StatusBadRequest, "invalid query")
	default:
		respondError(c, http.StatusBadGateway, "search backend unavailable")
	}
}
