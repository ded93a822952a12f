package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Get when the query matched no rows.
var ErrNotFound = errors.New("db: no rows")

// Conn is the query surface shared by the Postgres and SQLite backends.
// Queries use $N placeholders; backends rewrite them when needed.
type Conn interface {
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	Select(ctx context.Context, dst any, query string, args ...any) error
	Get(ctx context.Context, dst any, query string, args ...any) error
	// InTx runs fn inside a transaction, committing when fn returns nil.
	InTx(ctx context.Context, fn func(tx Conn) error) error
	Ping(ctx context.Context) error
	Stats() PoolStats
	Driver() string
	Close()
}

// PoolStats is a driver-neutral view of connection pool usage.
type PoolStats struct {
	InUse int
	Idle  int
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open connects to the database named by url. postgres:// and postgresql://
// URLs use the pgx pool; sqlite:// and file: URLs use the embedded SQLite driver.
func Open(ctx context.Context, url string) (Conn, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return NewPool(ctx, url)
	case strings.HasPrefix(url, "sqlite://"):
		return OpenSQLite(ctx, strings.TrimPrefix(url, "sqlite://"))
	case strings.HasPrefix(url, "file:"):
		return OpenSQLite(ctx, url)
	default:
		return nil, fmt.Errorf("unsupported database url %q", url)
	}
}
