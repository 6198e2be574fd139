package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS csvcut_runs (
    id          UUID PRIMARY KEY,
    input       TEXT        NOT NULL,
    output      TEXT        NOT NULL,
    columns     TEXT[]      NOT NULL DEFAULT '{}',
    rows        BIGINT      NOT NULL DEFAULT 0,
    status      TEXT        NOT NULL,
    error_code  TEXT        NOT NULL DEFAULT '',
    error       TEXT        NOT NULL DEFAULT '',
    started_at  TIMESTAMPTZ NOT NULL,
    duration_ms BIGINT      NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS csvcut_runs_started_at_idx ON csvcut_runs (started_at DESC);
`

// PgRecorder stores runs in PostgreSQL.
type PgRecorder struct {
	pool *pgxpool.Pool
}

// Open connects to the database at url, verifies the connection and
// creates the runs table if needed.
func Open(ctx context.Context, url string, maxConns int) (*PgRecorder, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	if maxConns > 0 {
		poolConfig.MaxConns = int32(maxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	rec := &PgRecorder{pool: pool}
	if err := rec.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return rec, nil
}

// EnsureSchema creates the runs table and index if they do not exist.
func (p *PgRecorder) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create history schema: %w", err)
	}
	return nil
}

// Record inserts run. Recording the same ID twice is a no-op.
func (p *PgRecorder) Record(ctx context.Context, run Run) error {
	columns := run.Columns
	if columns == nil {
		columns = []string{}
	}
	_, err := p.pool.Exec(ctx, `
		INSERT INTO csvcut_runs
			(id, input, output, columns, rows, status, error_code, error, started_at, duration_ms)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING`,
		run.ID.String(), run.Input, run.Output, columns, int64(run.Rows),
		string(run.Status), run.ErrorCode, run.Error, run.StartedAt, run.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", run.ID, err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (p *PgRecorder) Recent(ctx context.Context, limit int) ([]Run, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id::text, input, output, columns, rows, status, error_code, error, started_at, duration_ms
		FROM csvcut_runs
		ORDER BY started_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			id         string
			status     string
			count      int64
			durationMS int64
			run        Run
		)
		if err := rows.Scan(&id, &run.Input, &run.Output, &run.Columns, &count,
			&status, &run.ErrorCode, &run.Error, &run.StartedAt, &durationMS); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid run id %q: %w", id, err)
		}
		run.Rows = int(count)
		run.Status = Status(status)
		run.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}
	return runs, nil
}

// Close releases the connection pool.
func (p *PgRecorder) Close() {
	p.pool.Close()
}
