package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/raksha/internal/config"
)

// PostgresBackend keeps records in a single key/value table.
type PostgresBackend struct {
	Pool *pgxpool.Pool
}

// NewPostgres establishes a connection pool and optionally applies migrations.
func NewPostgres(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*PostgresBackend, error) {
	if cfg.DSN == "" {
		return nil, errors.New("POSTGRES_DSN not provided")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("connected to postgres")

	if cfg.RunMigrations {
		if err := RunMigrations(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return &PostgresBackend{Pool: pool}, nil
}

// Write upserts the record in one statement.
func (p *PostgresBackend) Write(ctx context.Context, key string, data []byte) error {
	const query = `
        INSERT INTO records (key, value, updated_at) VALUES ($1, $2, NOW())
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	_, err := p.Pool.Exec(ctx, query, key, string(data))
	return err
}

// Read returns the stored document or ErrNotFound.
func (p *PostgresBackend) Read(ctx context.Context, key string) ([]byte, error) {
	const query = `SELECT value::text FROM records WHERE key = $1`
	var value string
	if err := p.Pool.QueryRow(ctx, query, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return []byte(value), nil
}

// Remove deletes the record.
func (p *PostgresBackend) Remove(ctx context.Context, key string) error {
	_, err := p.Pool.Exec(ctx, `DELETE FROM records WHERE key = $1`, key)
	return err
}

// Ping verifies the pool.
func (p *PostgresBackend) Ping(ctx context.Context) error {
	if p == nil || p.Pool == nil {
		return errors.New("postgres pool not configured")
	}
	return p.Pool.Ping(ctx)
}

// Close releases pool resources.
func (p *PostgresBackend) Close() error {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
	return nil
}
