package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/georgysavva/scany/v2/sqlscan"
	_ "modernc.org/sqlite"
)

var placeholderRe = regexp.MustCompile(`\$(\d+)`)

// rebind turns Postgres-style $N placeholders into SQLite's ?N form.
func rebind(query string) string {
	return placeholderRe.ReplaceAllString(query, "?$1")
}

// OpenSQLite opens (creating if needed) the SQLite database at path.
func OpenSQLite(ctx context.Context, path string) (Conn, error) {
	if dir := filepath.Dir(path); dir != "." && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database at %s: %w", path, err)
	}
	// A single writer avoids SQLITE_BUSY under concurrent requests.
	sqlDB.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := sqlDB.ExecContext(ctx, pragma); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", pragma, err)
		}
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &sqliteConn{db: sqlDB, q: sqlDB}, nil
}

// sqliteQuerier is satisfied by both *sql.DB and *sql.Tx.
type sqliteQuerier interface {
	sqlscan.Querier
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type sqliteConn struct {
	db *sql.DB
	q  sqliteQuerier
	tx *sql.Tx
}

func (c *sqliteConn) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := c.q.ExecContext(ctx, rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (c *sqliteConn) Select(ctx context.Context, dst any, query string, args ...any) error {
	return sqlscan.Select(ctx, c.q, dst, rebind(query), args...)
}

func (c *sqliteConn) Get(ctx context.Context, dst any, query string, args ...any) error {
	err := sqlscan.Get(ctx, c.q, dst, rebind(query), args...)
	if sqlscan.NotFound(err) || errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (c *sqliteConn) InTx(ctx context.Context, fn func(tx Conn) error) error {
	if c.tx != nil {
		return fn(c)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(&sqliteConn{db: c.db, q: tx, tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

func (c *sqliteConn) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *sqliteConn) Stats() PoolStats {
	s := c.db.Stats()
	return PoolStats{InUse: s.InUse, Idle: s.Idle}
}

func (c *sqliteConn) Driver() string { return DriverSQLite }

func (c *sqliteConn) Close() {
	c.db.Close()
}
