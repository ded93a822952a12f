package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	maxRetries    = 5
	retryInterval = 2 * time.Second
)

// NewPool connects to Postgres, retrying while the server comes up.
func NewPool(ctx context.Context, databaseURL string) (Conn, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute
	config.HealthCheckPeriod = time.Minute

	var pool *pgxpool.Pool
	for attempt := 1; attempt <= maxRetries; attempt++ {
		pool, err = pgxpool.NewWithConfig(ctx, config)
		if err == nil {
			if pingErr := pool.Ping(ctx); pingErr == nil {
				log.Println("database connected")
				return &pgConn{pool: pool, q: pool}, nil
			} else {
				pool.Close()
				err = pingErr
			}
		}

		log.Printf("database connection attempt %d/%d failed: %v", attempt, maxRetries, err)
		if attempt < maxRetries {
			time.Sleep(retryInterval)
		}
	}

	return nil, fmt.Errorf("database connection failed after %d attempts: %w", maxRetries, err)
}

// pgQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgQuerier interface {
	pgxscan.Querier
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type pgConn struct {
	pool *pgxpool.Pool
	q    pgQuerier
	tx   pgx.Tx
}

func (c *pgConn) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := c.q.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (c *pgConn) Select(ctx context.Context, dst any, query string, args ...any) error {
	return pgxscan.Select(ctx, c.q, dst, query, args...)
}

func (c *pgConn) Get(ctx context.Context, dst any, query string, args ...any) error {
	err := pgxscan.Get(ctx, c.q, dst, query, args...)
	if pgxscan.NotFound(err) {
		return ErrNotFound
	}
	return err
}

func (c *pgConn) InTx(ctx context.Context, fn func(tx Conn) error) error {
	if c.tx != nil {
		return fn(c)
	}

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgConn{pool: c.pool, q: tx, tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (c *pgConn) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

func (c *pgConn) Stats() PoolStats {
	s := c.pool.Stat()
	return PoolStats{InUse: int(s.AcquiredConns()), Idle: int(s.IdleConns())}
}

func (c *pgConn) Driver() string { return DriverPostgres }

func (c *pgConn) Close() {
	c.pool.Close()
}
