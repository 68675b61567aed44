// Package bootstrap wires the process-wide runtime: database, Redis, tracing and the
// optional root account.
package bootstrap

import (
	"context"
	"fmt"

	"bloglist/internal/cache"
	"bloglist/internal/config"
	"bloglist/internal/database"
	"bloglist/internal/observability"
	"bloglist/internal/repository"
	"bloglist/internal/seed"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const serviceName = "bloglist-api"

// Options control runtime initialization behavior.
type Options struct {
	// SkipRootUser disables root seeding even when SEED_ROOT_USER is set.
	SkipRootUser bool
}

// Runtime holds the shared handles built at startup.
type Runtime struct {
	DB              *gorm.DB
	Redis           *redis.Client
	ShutdownTracing func(context.Context) error
}

// InitRuntime connects to the database and Redis, installs tracing and seeds the root
// user when configured.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	shutdown, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampleRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing init failed: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		_ = shutdown(ctx)
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// nil when Redis is unreachable; the app then runs uncached.
	rdb := cache.InitRedis(cfg.RedisURL)

	rt := &Runtime{DB: db, Redis: rdb, ShutdownTracing: shutdown}
	if !opts.SkipRootUser {
		if err := EnsureRootUser(ctx, cfg, db); err != nil {
			_ = rt.Close(ctx)
			return nil, fmt.Errorf("failed to bootstrap root user: %w", err)
		}
	}
	return rt, nil
}

// EnsureRootUser creates the configured root account when SEED_ROOT_USER is enabled.
func EnsureRootUser(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil || !cfg.SeedRootUser {
		return nil
	}
	_, err := seed.EnsureRootUser(ctx, repository.NewUserRepository(db), seed.RootUser{
		Username: cfg.RootUsername,
		Name:     cfg.RootName,
		Password: cfg.RootPassword,
	}, bcrypt.DefaultCost)
	return err
}

// Close releases Redis, the database pool and the tracer provider.
func (r *Runtime) Close(ctx context.Context) error {
	var firstErr error
	if r.Redis != nil {
		if err := r.Redis.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if r.DB != nil {
		if err := database.Close(r.DB); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if r.ShutdownTracing != nil {
		if err := r.ShutdownTracing(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
