// Package bootstrap opens the process-wide resources shared by the commands.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/kv"
	"inkwell/internal/middleware"
	"inkwell/internal/observability"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// WithRedis connects Redis. Commands that never check tokens skip it.
	WithRedis bool
	// WithTracing installs the OpenTelemetry tracer provider.
	WithTracing bool
}

// Runtime holds the resources a command runs on.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client

	shutdownTracing func(context.Context) error
}

// InitRuntime configures logging and tracing, then connects the database and,
// when asked, Redis. An unreachable Redis leaves Redis nil.
func InitRuntime(cfg *config.Config, opts Options) (*Runtime, error) {
	middleware.Logger = middleware.NewLogger(cfg.Env, os.Stdout)

	rt := &Runtime{shutdownTracing: func(context.Context) error { return nil }}

	if opts.WithTracing {
		shutdown, err := observability.InitTracing(observability.TracingConfig{
			ServiceName:    "inkwell-api",
			ServiceVersion: "1.0.0",
			Environment:    cfg.Env,
			Enabled:        cfg.TracingEnabled,
			Exporter:       cfg.TracingExporter,
			OTLPEndpoint:   cfg.OTLPEndpoint,
			SamplerRatio:   cfg.TracingSamplerRatio,
		})
		if err != nil {
			return nil, fmt.Errorf("tracing init failed: %w", err)
		}
		rt.shutdownTracing = shutdown
	}

	db, err := database.Connect(cfg)
	if err != nil {
		_ = rt.shutdownTracing(context.Background())
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	rt.DB = db

	if opts.WithRedis {
		rt.Redis = kv.InitRedis(cfg.RedisURL)
	}
	return rt, nil
}

// Close flushes traces and closes Redis and the database.
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	if err := rt.shutdownTracing(ctx); err != nil {
		errs = append(errs, fmt.Errorf("tracing shutdown: %w", err))
	}
	if rt.Redis != nil {
		if err := rt.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	if rt.DB != nil {
		if sqlDB, err := rt.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("database close: %w", err))
			}
		}
	}
	return errors.Join(errs...)
}
