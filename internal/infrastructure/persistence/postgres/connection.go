// Package postgres implements the journal backend storage on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrConnectionClosed  = errors.New("postgres: pool closed")
	ErrMigrationFailed   = errors.New("postgres: migration")
	ErrTransactionFailed = errors.New("postgres: begin transaction")
)

// ══════════════════════════════════════════════════════════════════════════════
// POOL
// ══════════════════════════════════════════════════════════════════════════════

// PoolOptions tunes the pgx pool. Zero fields leave the value from the URL
// (or the pgx default) alone.
type PoolOptions struct {
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

// DefaultPoolOptions sizes the pool for one backend instance.
func DefaultPoolOptions() PoolOptions {
	return PoolOptions{
		MaxConns:          10,
		MinConns:          1,
		MaxConnLifetime:   time.Hour,
		MaxConnIdleTime:   30 * time.Minute,
		HealthCheckPeriod: time.Minute,
	}
}

func setIfPositive[T int32 | time.Duration](dst *T, v T) {
	if v > 0 {
		*dst = v
	}
}

// Connection is the journal's handle on the pool.
type Connection struct {
	pool   *pgxpool.Pool
	closed atomic.Bool
}

// Connect parses databaseURL (URL or key=value form), opens the pool and
// checks it with a ping.
func Connect(ctx context.Context, databaseURL string, opts PoolOptions) (*Connection, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse url: %w", err)
	}
	setIfPositive(&cfg.MaxConns, opts.MaxConns)
	setIfPositive(&cfg.MinConns, opts.MinConns)
	setIfPositive(&cfg.MaxConnLifetime, opts.MaxConnLifetime)
	setIfPositive(&cfg.MaxConnIdleTime, opts.MaxConnIdleTime)
	setIfPositive(&cfg.HealthCheckPeriod, opts.HealthCheckPeriod)

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Connection{pool: pool}, nil
}

// Close releases the pool. Later calls do nothing.
func (c *Connection) Close() {
	if c.closed.CompareAndSwap(false, true) {
		c.pool.Close()
	}
}

func (c *Connection) Ping(ctx context.Context) error {
	if c.closed.Load() {
		return ErrConnectionClosed
	}
	return c.pool.Ping(ctx)
}

// ══════════════════════════════════════════════════════════════════════════════
// QUERIES
// ══════════════════════════════════════════════════════════════════════════════

// Querier is the subset of *pgxpool.Pool and pgx.Tx the repository uses.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (c *Connection) querier() (Querier, error) {
	if c.closed.Load() {
		return nil, ErrConnectionClosed
	}
	return c.pool, nil
}

// WithTx runs fn inside a read-committed transaction. fn's error (or a
// panic) rolls back; nil commits.
func (c *Connection) WithTx(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	if c.closed.Load() {
		return ErrConnectionClosed
	}
	tx, err := c.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(ctx); rbErr != nil && err != nil {
			err = errors.Join(err, fmt.Errorf("postgres: rollback: %w", rbErr))
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	committed = true
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR CLASSIFICATION
// ══════════════════════════════════════════════════════════════════════════════

// SQLSTATE codes the repository reacts to.
const (
	sqlstateUnique     = "23505"
	sqlstateForeignKey = "23503"
)

func asPgError(err error) *pgconn.PgError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr
	}
	return nil
}

func IsUniqueViolation(err error) bool {
	pe := asPgError(err)
	return pe != nil && pe.Code == sqlstateUnique
}

func IsForeignKeyViolation(err error) bool {
	pe := asPgError(err)
	return pe != nil && pe.Code == sqlstateForeignKey
}

// ConstraintName names the constraint err violated, if any.
func ConstraintName(err error) string {
	if pe := asPgError(err); pe != nil {
		return pe.ConstraintName
	}
	return ""
}

func IsNoRows(err error) bool { return errors.Is(err, pgx.ErrNoRows) }
