// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

// Package tracing sets up the Elastic APM agent. The agent reads its server
// address and credentials from the standard ELASTIC_APM_* environment.
package tracing

import (
	"go.elastic.co/apm/v2"
	"go.uber.org/zap"

	ulog "github.com/elastic/storefront-search/pkg/utils/log"
)

// NewTracer returns a new APM tracer for the given service name, or nil when
// the agent cannot be constructed. Tracing failures never fail the application.
func NewTracer(serviceName, version string) *apm.Tracer {
	log := ulog.Named("tracing")
	tracer, err := apm.NewTracer(serviceName, version)
	if err != nil {
		log.Error("failed to create tracer", zap.String("service", serviceName), zap.Error(err))
		return nil
	}
	tracer.SetLogger(newLogAdapter(log))
	return tracer
}

// newLogAdapter returns an implementation of the log interface expected by
// the APM agent.
func newLogAdapter(log *zap.Logger) *logAdapter {
	return &logAdapter{log: log.Sugar()}
}

type logAdapter struct {
	log *zap.SugaredLogger
}

func (l *logAdapter) Errorf(format string, args ...interface{}) {
	l.log.Errorf(format, args...)
}

func (l *logAdapter) Warningf(format string, args ...interface{}) {
	l.log.Warnf(format, args...)
}

func (l *logAdapter) Debugf(format string, args ...interface{}) {
	l.log.Debugf(format, args...)
}

var (
	_ apm.Logger        = &logAdapter{}
	_ apm.WarningLogger = &logAdapter{}
)
