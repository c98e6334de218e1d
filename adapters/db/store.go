package db

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // postgres:// DSNs
	_ "modernc.org/sqlite" // default embedded store

	apperrors "immunotrial/internal/errors"
)

func init() {
	// modernc registers itself as "sqlite", which sqlx has no bindvar
	// mapping for out of the box.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Store wraps the trial database connection and knows which SQL dialect it
// speaks. Every repository and the loader hang off one Store handle; nothing
// in this package keeps package-level connection state.
type Store struct {
	db     *sqlx.DB
	driver string
}

// Options controls how the store is opened.
type Options struct {
	// ReadOnly opens the store for queries only. The dashboard opens its
	// store this way; only the load pipeline opens for writing.
	ReadOnly bool
}

// Open connects to the trial store. A postgres:// or postgresql:// DSN picks
// the PostgreSQL driver; anything else is treated as a SQLite file path.
func Open(dsn string, opts Options) (*Store, error) {
	driver, connStr := resolveDSN(dsn, opts)

	conn, err := sqlx.Connect(driver, connStr)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to connect to "+driver+" store")
	}

	return &Store{db: conn, driver: driver}, nil
}

// resolveDSN picks the driver and builds its connection string. SQLite gets
// its pragmas through DSN parameters so they apply to every pooled
// connection, not just the first one.
func resolveDSN(dsn string, opts Options) (driver, connStr string) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		connStr = dsn
		if opts.ReadOnly {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			connStr += sep + "default_transaction_read_only=on"
		}
		return "postgres", connStr
	}

	params := []string{"_pragma=foreign_keys(1)", "_pragma=busy_timeout(5000)"}
	if opts.ReadOnly {
		params = append(params, "_pragma=query_only(1)")
	}
	return "sqlite", "file:" + dsn + "?" + strings.Join(params, "&")
}

// Driver returns the active driver name, "sqlite" or "postgres".
func (s *Store) Driver() string {
	return s.driver
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
