// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

// Package server is the public HTTP surface: the three storefront routes plus
// health and metrics endpoints, with tenant validation, rate limiting and
// request accounting applied in front.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.elastic.co/apm/module/apmhttp/v2"
	"go.elastic.co/apm/v2"
	"go.uber.org/zap"

	"github.com/elastic/storefront-search/pkg/search"
	ulog "github.com/elastic/storefront-search/pkg/utils/log"
)

const (
	DefaultAddr            = ":8080"
	DefaultShutdownTimeout = 15 * time.Second

	limiterSweepInterval = 10 * time.Minute
	limiterIdleAge       = time.Hour
)

// Config carries the HTTP-facing settings.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string
	// AllowedDomains are custom shop domains accepted besides *.myshopify.com.
	AllowedDomains []string
	// RateLimitPerMinute caps requests per tenant and minute. Zero keeps the default.
	RateLimitPerMinute int
	// Tracer, when set, opens an APM transaction per request.
	Tracer *apm.Tracer
}

// Server hosts the storefront API.
type Server struct {
	cfg     Config
	service *search.Service
	limiter *tenantLimiter
	http    *http.Server
	stop    chan struct{}
	log     *zap.Logger
}

// New builds the server and its router.
func New(cfg Config, service *search.Service) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	s := &Server{
		cfg:     cfg,
		service: service,
		limiter: newTenantLimiter(cfg.RateLimitPerMinute),
		stop:    make(chan struct{}),
		log:     ulog.Named("server"),
	}
	var handler http.Handler = s.Router()
	if cfg.Tracer != nil {
		handler = apmhttp.Wrap(handler, apmhttp.WithTracer(cfg.Tracer))
	}
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router assembles the gin engine. Exposed for handler tests.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(requestID(), recovery(), accessLog(), httpMetrics())

	r.GET("/healthz", s.handleHealthz)
	r.GET("/readyz", s.handleReadyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	storefront := r.Group("/storefront")
	storefront.Use(shopDomain(s.cfg.AllowedDomains), rateLimit(s.limiter))
	storefront.GET("/products", s.handleProducts)
	storefront.GET("/filters", s.handleFilters)
	storefront.GET("/search", s.handleSearch)

	return r
}

// Run serves until the context is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	go s.sweepLimiter()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", s.cfg.Addr))
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		close(s.stop)
		return err
	case <-ctx.Done():
	}

	close(s.stop)
	s.log.Info("shutting down", zap.Duration("timeout", DefaultShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

func (s *Server) sweepLimiter() {
	ticker := time.NewTicker(limiterSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.limiter.sweep(limiterIdleAge)
		}
	}
}
