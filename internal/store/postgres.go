package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createEpisodes = `CREATE TABLE IF NOT EXISTS episodes (
	id          UUID PRIMARY KEY,
	env         TEXT NOT NULL,
	seed        NUMERIC(20) NOT NULL,
	steps       INTEGER NOT NULL,
	truncated   BOOLEAN NOT NULL DEFAULT FALSE,
	returns     JSONB NOT NULL,
	started_at  TIMESTAMPTZ NOT NULL,
	duration_ms BIGINT NOT NULL
)`

const insertEpisode = `INSERT INTO episodes (id, env, seed, steps, truncated, returns, started_at, duration_ms)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO NOTHING`

// execer is the part of a pgx pool the store needs.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Postgres writes episodes into the episodes table.
type Postgres struct {
	db   execer
	pool *pgxpool.Pool
}

// OpenPostgres connects to url and makes sure the schema exists.
func OpenPostgres(ctx context.Context, url string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	p, err := newPostgres(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	p.pool = pool
	return p, nil
}

func newPostgres(ctx context.Context, db execer) (*Postgres, error) {
	if _, err := db.Exec(ctx, createEpisodes); err != nil {
		return nil, fmt.Errorf("create episodes table: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Save(ctx context.Context, ep Episode) error {
	returns, err := marshalReturns(ep)
	if err != nil {
		return fmt.Errorf("marshal returns: %w", err)
	}
	// seed goes in as text so the full uint64 range survives NUMERIC
	_, err = p.db.Exec(ctx, insertEpisode,
		ep.ID, ep.Env, fmt.Sprint(ep.Seed), ep.Steps, ep.Truncated, returns, ep.StartedAt, ep.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("insert episode %s: %w", ep.ID, err)
	}
	return nil
}

func (p *Postgres) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}
