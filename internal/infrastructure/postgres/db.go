package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// PoolConfig configures the connection pool.
type PoolConfig struct {
	DatabaseURL string
	MaxConns    int
	MinConns    int
	// LockTimeout bounds how long a statement waits for a row lock. Zero keeps
	// the server default.
	LockTimeout time.Duration
	// ConnectTimeout bounds the whole connect-and-ping retry loop. Zero means a
	// single attempt.
	ConnectTimeout time.Duration
	Logger         zerolog.Logger
}

// NewPool creates a new PostgreSQL connection pool.
func NewPool(ctx context.Context, databaseURL string, maxConns, minConns int) (*pgxpool.Pool, error) {
	return NewPoolWithConfig(ctx, PoolConfig{
		DatabaseURL: databaseURL,
		MaxConns:    maxConns,
		MinConns:    minConns,
		Logger:      zerolog.Nop(),
	})
}

// NewPoolWithConfig creates a pool and pings it, retrying with exponential
// backoff until ConnectTimeout elapses.
func NewPoolWithConfig(ctx context.Context, cfg PoolConfig) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	if cfg.MaxConns > 0 {
		config.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		config.MinConns = int32(cfg.MinConns)
	}
	if cfg.LockTimeout > 0 {
		config.ConnConfig.RuntimeParams["lock_timeout"] = fmt.Sprintf("%d", cfg.LockTimeout.Milliseconds())
	}

	var pool *pgxpool.Pool
	connect := func() error {
		p, err := pgxpool.NewWithConfig(ctx, config)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create connection pool: %w", err))
		}

		if err := p.Ping(ctx); err != nil {
			p.Close()
			return fmt.Errorf("failed to ping database: %w", err)
		}

		pool = p
		return nil
	}

	var b backoff.BackOff = &backoff.StopBackOff{}
	if cfg.ConnectTimeout > 0 {
		exp := backoff.NewExponentialBackOff()
		exp.InitialInterval = 200 * time.Millisecond
		exp.MaxInterval = 5 * time.Second
		exp.MaxElapsedTime = cfg.ConnectTimeout
		b = exp
	}

	notify := func(err error, wait time.Duration) {
		cfg.Logger.Warn().Err(err).Dur("retry_in", wait).Msg("database not ready, retrying")
	}

	if err := backoff.RetryNotify(connect, backoff.WithContext(b, ctx), notify); err != nil {
		return nil, err
	}

	return pool, nil
}
