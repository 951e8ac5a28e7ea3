// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

// Package serve implements the serve command: configuration loading, wiring
// of the query pipeline and lifecycle of the HTTP server.
package serve

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.elastic.co/apm/v2"
	"go.uber.org/zap"

	"github.com/elastic/storefront-search/pkg/cache"
	"github.com/elastic/storefront-search/pkg/esclient"
	"github.com/elastic/storefront-search/pkg/filterconfig"
	"github.com/elastic/storefront-search/pkg/search"
	"github.com/elastic/storefront-search/pkg/server"
	"github.com/elastic/storefront-search/pkg/tracing"
	ulog "github.com/elastic/storefront-search/pkg/utils/log"
)

// Flag names double as viper keys; the environment form is upper snake case
// with the STOREFRONT prefix, e.g. STOREFRONT_ES_ADDRESSES.
const (
	flagHTTPAddr         = "http-addr"
	flagESAddresses      = "es-addresses"
	flagESUsername       = "es-username"
	flagESPassword       = "es-password"
	flagESAPIKey         = "es-api-key"
	flagAllowedDomains   = "allowed-domains"
	flagRateLimit        = "rate-limit-per-minute"
	flagCacheDisabled    = "cache-disabled"
	flagCacheMaxSize     = "cache-max-size"
	flagSearchCacheTTL   = "search-cache-ttl"
	flagFilterCacheTTL   = "filter-cache-ttl"
	flagFacetCacheTTL    = "facet-cache-ttl"
	flagConfigResolveTTL = "config-resolution-ttl"
	flagEnableTracing    = "enable-tracing"
	flagLogVerbosity     = "log-verbosity"

	envPrefix = "STOREFRONT"
)

// Command builds the serve command.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the storefront query API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context())
		},
	}

	registerFlags(cmd.Flags())

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		panic(err)
	}

	return cmd
}

func registerFlags(flags *pflag.FlagSet) {
	flags.String(flagHTTPAddr, server.DefaultAddr, "HTTP listen address")
	flags.StringSlice(flagESAddresses, []string{"http://localhost:9200"}, "Elasticsearch node addresses")
	flags.String(flagESUsername, "", "Elasticsearch basic auth username")
	flags.String(flagESPassword, "", "Elasticsearch basic auth password")
	flags.String(flagESAPIKey, "", "Elasticsearch API key, takes precedence over basic auth")
	flags.StringSlice(flagAllowedDomains, nil, "Custom shop domains accepted besides *.myshopify.com")
	flags.Int(flagRateLimit, server.DefaultRateLimit, "Requests per tenant and minute before 429")
	flags.Bool(flagCacheDisabled, false, "Bypass the result caches entirely")
	flags.Int(flagCacheMaxSize, cache.DefaultMaxSize, "Max entries per result cache")
	flags.Duration(flagSearchCacheTTL, cache.DefaultSearchTTL, "TTL of cached search results")
	flags.Duration(flagFilterCacheTTL, cache.DefaultFilterListTTL, "TTL of cached filter lists")
	flags.Duration(flagFacetCacheTTL, cache.DefaultFacetTTL, "TTL of cached facet aggregations")
	flags.Duration(flagConfigResolveTTL, filterconfig.DefaultResolutionTTL, "TTL of resolved filter configurations")
	flags.Bool(flagEnableTracing, false, "Send APM traces; the agent reads ELASTIC_APM_* from the environment")
	flags.Int(flagLogVerbosity, 0, "Log verbosity, higher is chattier")
}

func run(ctx context.Context) error {
	ulog.InitLogger(viper.GetInt(flagLogVerbosity))
	defer ulog.Sync()

	var tracer *apm.Tracer
	if viper.GetBool(flagEnableTracing) {
		tracer = tracing.NewTracer("storefront-search", "")
		if tracer != nil {
			ulog.InitLogger(viper.GetInt(flagLogVerbosity), ulog.WithTracer(tracer))
			defer tracer.Close()
		}
	}
	log := ulog.Named("serve")

	cache.SetDisabled(viper.GetBool(flagCacheDisabled))

	es, err := esclient.NewClient(esclient.Config{
		Addresses: viper.GetStringSlice(flagESAddresses),
		User: esclient.BasicAuth{
			Name:     viper.GetString(flagESUsername),
			Password: viper.GetString(flagESPassword),
		},
		APIKey: viper.GetString(flagESAPIKey),
		Tracer: tracer,
	})
	if err != nil {
		return errors.Wrap(err, "creating Elasticsearch client")
	}
	es = esclient.NewCachedClient(es, 0)
	defer es.Close()

	caches := cache.NewService(cache.ServiceOptions{
		FilterListTTL: viper.GetDuration(flagFilterCacheTTL),
		SearchTTL:     viper.GetDuration(flagSearchCacheTTL),
		FacetTTL:      viper.GetDuration(flagFacetCacheTTL),
		MaxSize:       viper.GetInt(flagCacheMaxSize),
	})
	defer caches.Stop()

	resolver := filterconfig.NewResolver(
		filterconfig.NewESSource(es),
		viper.GetDuration(flagConfigResolveTTL),
	)

	service := search.NewService(es, resolver, caches)
	srv := server.New(server.Config{
		Addr:               viper.GetString(flagHTTPAddr),
		AllowedDomains:     viper.GetStringSlice(flagAllowedDomains),
		RateLimitPerMinute: viper.GetInt(flagRateLimit),
		Tracer:             tracer,
	}, service)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	err = srv.Run(ctx)
	log.Info("server stopped", zap.Duration("uptime", time.Since(start)))
	return err
}
