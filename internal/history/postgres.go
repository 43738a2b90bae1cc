// Package history persists run summaries to Postgres so success rates can be
// tracked across quarters. Entirely optional: the store is only built when a
// DSN is configured.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fsbdata/disclosure-crawler/internal/scrape"
)

// Schema expected by the store:
//
//	CREATE TABLE scrape_runs (
//	    id UUID PRIMARY KEY,
//	    run_date DATE NOT NULL,
//	    total_targets INT NOT NULL,
//	    success_count INT NOT NULL,
//	    failure_count INT NOT NULL,
//	    expected_period TEXT NOT NULL,
//	    elapsed_ms BIGINT NOT NULL
//	);
//
//	CREATE TABLE scrape_results (
//	    run_id UUID REFERENCES scrape_runs (id),
//	    bank_id TEXT NOT NULL,
//	    bank_name TEXT NOT NULL,
//	    status TEXT NOT NULL,
//	    attempts INT NOT NULL,
//	    duration_ms BIGINT NOT NULL,
//	    disclosure_date TEXT,
//	    error_detail TEXT,
//	    PRIMARY KEY (run_id, bank_id)
//	);

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

type execCloser interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Close()
}

// Store writes run history rows into Postgres.
type Store struct {
	pool execCloser
}

// NewStore creates a Postgres-backed Store using the provided config.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("history dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

// NewStoreWithPool constructs a store from an existing pool (primarily for
// testing).
func NewStoreWithPool(pool execCloser) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// RecordRun inserts one run row and one row per target result.
func (s *Store) RecordRun(ctx context.Context, summary scrape.RunSummary) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("history store is not configured")
	}
	if summary.RunID == "" {
		return fmt.Errorf("run id is required")
	}

	const runQuery = `
INSERT INTO scrape_runs (
	id, run_date, total_targets, success_count, failure_count, expected_period, elapsed_ms
) VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := s.pool.Exec(ctx, runQuery,
		summary.RunID,
		summary.RunDate,
		summary.TotalTargets,
		summary.SuccessCount,
		summary.FailureCount,
		summary.ExpectedPeriod,
		summary.Elapsed.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	const resultQuery = `
INSERT INTO scrape_results (
	run_id, bank_id, bank_name, status, attempts, duration_ms, disclosure_date, error_detail
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	for _, res := range summary.Results {
		_, err := s.pool.Exec(ctx, resultQuery,
			summary.RunID,
			res.Target.ID,
			res.Target.Name,
			string(res.Status),
			res.Attempts,
			res.Duration.Milliseconds(),
			res.DisclosureDate,
			res.ErrorDetail,
		)
		if err != nil {
			return fmt.Errorf("insert result for %s: %w", res.Target.ID, err)
		}
	}
	return nil
}
