package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect selects the SQL flavour.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

const createPortfoliosTable = `CREATE TABLE IF NOT EXISTS portfolios (
	storage_key TEXT PRIMARY KEY,
	payload     TEXT NOT NULL,
	updated_at  TIMESTAMP NOT NULL
)`

// SQLStore keeps documents in a portfolios table on SQLite or PostgreSQL.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// OpenSQL connects and migrates. For SQLite dsn is a file path.
func OpenSQL(ctx context.Context, dialect Dialect, dsn string) (*SQLStore, error) {
	var driver string
	switch dialect {
	case DialectSQLite:
		driver = "sqlite"
	case DialectPostgres:
		driver = "postgres"
	default:
		return nil, fmt.Errorf("unsupported sql dialect %q", dialect)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		// single writer keeps modernc sqlite away from SQLITE_BUSY
		db.SetMaxOpenConns(1)
	}

	s := &SQLStore{db: db, dialect: dialect}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStore wraps an existing connection. The caller runs Migrate.
func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// Migrate creates the portfolios table when missing.
func (s *SQLStore) Migrate(ctx context.Context) error {
	return s.migrate(ctx)
}

func (s *SQLStore) migrate(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", s.dialect, err)
	}
	if _, err := s.db.ExecContext(ctx, createPortfoliosTable); err != nil {
		return fmt.Errorf("failed to create portfolios table: %w", err)
	}
	return nil
}

// rebind turns ? placeholders into $n for PostgreSQL.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Read implements Backend.
func (s *SQLStore) Read(ctx context.Context, key string) ([]byte, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT payload FROM portfolios WHERE storage_key = ?`), key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio %q: %w", key, err)
	}
	return []byte(payload), nil
}

// Write implements Backend.
func (s *SQLStore) Write(ctx context.Context, key string, data []byte) error {
	query := s.rebind(`INSERT INTO portfolios (storage_key, payload, updated_at) VALUES (?, ?, ?)
ON CONFLICT (storage_key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`)
	if _, err := s.db.ExecContext(ctx, query, key, string(data), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to upsert portfolio %q: %w", key, err)
	}
	return nil
}

// Close implements Backend.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
