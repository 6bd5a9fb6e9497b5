// Package repository provides the Postgres access layer.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/secondbrain/secondbrain/internal/model"
)

// DBTX is the subset of pgxpool.Pool used by the repositories.
// pgx.Tx satisfies it too.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PoolOptions controls connection pool sizing.
type PoolOptions struct {
	MaxConns int32
	MinConns int32
}

// Repository owns the connection pool and the per-entity repositories.
type Repository struct {
	pool *pgxpool.Pool

	Users *UserRepository
	Notes *Scoped[model.Note]
	Links *Scoped[model.Link]
	Tasks *Scoped[model.Task]
}

// New creates a new Repository with a connection pool.
func New(ctx context.Context, databaseURL string, opts PoolOptions) (*Repository, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		config.MinConns = opts.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewWithDB(pool), nil
}

// NewWithDB wires the entity repositories onto an existing pool.
func NewWithDB(pool *pgxpool.Pool) *Repository {
	return &Repository{
		pool:  pool,
		Users: NewUserRepository(pool),
		Notes: NewScoped(pool, NoteSchema),
		Links: NewScoped(pool, LinkSchema),
		Tasks: NewScoped(pool, TaskSchema),
	}
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool.
func (r *Repository) Close() {
	r.pool.Close()
}

// Pool returns the underlying connection pool.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}
