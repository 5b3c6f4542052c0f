// Package db owns the PostgreSQL connection pool and schema migrations.
package db

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/fleetdesk/fleetdesk-backend/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool creates a pgx connection pool from the database configuration.
// Production connections require TLS 1.2 or newer.
func NewPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	if cfg.Database.MaxOpenConns > 0 {
		poolConfig.MaxConns = int32(cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MaxIdleConns > 0 {
		poolConfig.MinConns = int32(cfg.Database.MaxIdleConns)
	}
	if cfg.Database.ConnMaxLife != "" {
		lifetime, parseErr := time.ParseDuration(cfg.Database.ConnMaxLife)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid CONN_MAX_LIFE %q: %w", cfg.Database.ConnMaxLife, parseErr)
		}
		poolConfig.MaxConnLifetime = lifetime
	}

	if cfg.IsProduction() {
		poolConfig.ConnConfig.TLSConfig = &tls.Config{
			ServerName: cfg.Database.Host,
			MinVersion: tls.VersionTLS12,
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return pool, nil
}
