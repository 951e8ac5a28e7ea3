// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/elastic/storefront-search/pkg/queryparams"
	"github.com/elastic/storefront-search/pkg/search"
)

func (s *Server) handleProducts(c *gin.Context) {
	input := queryparams.Parse(queryparams.Sanitize(c.Request.URL.Query()))
	result, err := s.service.Products(c.Request.Context(), shopFrom(c), input)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}
	respondOK(c, result)
}

func (s *Server) handleFilters(c *gin.Context) {
	input := queryparams.Parse(queryparams.Sanitize(c.Request.URL.Query()))
	result, err := s.service.Filters(c.Request.Context(), shopFrom(c), input)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}
	respondOK(c, result)
}

func (s *Server) handleSearch(c *gin.Context) {
	query := queryparams.Sanitize(c.Request.URL.Query())
	input := queryparams.Parse(query)
	opts := search.SearchOptions{
		Suggestions:       boolParam(query.Get("suggestions")),
		HandleZeroResults: boolParam(query.Get("handleZeroResults")),
		IncludeFacets:     boolParam(query.Get("includeFacets")),
	}
	result, err := s.service.Search(c.Request.Context(), shopFrom(c), input, opts)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}
	respondOK(c, result)
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleReadyz(c *gin.Context) {
	if err := s.service.Ready(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func boolParam(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes":
		return true
	}
	return false
}
