// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package log

import (
	"sync"

	"go.elastic.co/apm/module/apmzap/v2"
	"go.elastic.co/apm/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	EcsVersion     = "1.4.0"
	EcsServiceType = "storefront-search"
)

var (
	mu   sync.RWMutex
	root = zap.NewNop()
)

// Option customizes logger construction.
type Option func(*logBuilder)

type logBuilder struct {
	verbosity int
	tracer    *apm.Tracer
}

// WithTracer sets the tracer used by the logger to send error logs to APM.
func WithTracer(tracer *apm.Tracer) Option {
	return func(lb *logBuilder) {
		lb.tracer = tracer
	}
}

// InitLogger initializes the global logger.
// Verbosity levels map to zap levels as follows:
// level | Zap level | name
// -------------------------
//
//	 1    | -1        | Debug
//	 0    |  0        | Info
//	-1    |  1        | Warn
//	-2    |  2        | Error
func InitLogger(verbosity int, opts ...Option) {
	lb := &logBuilder{verbosity: verbosity}
	for _, opt := range opts {
		opt(lb)
	}
	setLogger(lb)
}

func setLogger(lb *logBuilder) {
	encoderConf := zap.NewProductionEncoderConfig()
	encoderConf.MessageKey = "message"
	encoderConf.TimeKey = "@timestamp"
	encoderConf.LevelKey = "log.level"
	encoderConf.EncodeTime = zapcore.ISO8601TimeEncoder

	conf := zap.NewProductionConfig()
	conf.EncoderConfig = encoderConf
	conf.Level = zap.NewAtomicLevelAt(determineLogLevel(lb.verbosity))

	opts := []zap.Option{
		zap.Fields(
			zap.String("ecs.version", EcsVersion),
			zap.String("service.type", EcsServiceType),
		),
	}
	// use instrumented core if tracing is enabled
	if lb.tracer != nil {
		opts = append(opts, zap.WrapCore((&apmzap.Core{Tracer: lb.tracer}).WrapCore))
	}

	logger, err := conf.Build(opts...)
	if err != nil {
		// fall back to a no-op logger rather than failing startup
		logger = zap.NewNop()
	}

	mu.Lock()
	defer mu.Unlock()
	root = logger
	zap.ReplaceGlobals(logger)
}

// determineLogLevel converts the verbosity flag into a zap level.
func determineLogLevel(v int) zapcore.Level {
	switch {
	case v > 0:
		return zapcore.DebugLevel
	case v == -1:
		return zapcore.WarnLevel
	case v <= -2:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Log returns the root logger. Use Named for per-component loggers.
func Log() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root
}

// Named returns a child of the root logger with the given name.
func Named(name string) *zap.Logger {
	return Log().Named(name)
}

// Sync flushes any buffered log entries. Call before process exit.
func Sync() {
	_ = Log().Sync()
}
