// Package sqlstore implements storage.Storage on database/sql for MySQL
// (production) and SQLite (embedded, development and tests).
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/Fooracles/SystemApp-sub000/internal/storage"
)

// Verify Store implements storage.Storage at compile time
var _ storage.Storage = (*Store)(nil)

// Config describes how to reach the database.
type Config struct {
	Driver       string // "mysql" or "sqlite"
	DSN          string
	MaxOpenConns int
}

// Store is the SQL-backed storage.
type Store struct {
	db      *sql.DB
	dialect dialect
	now     func() time.Time
}

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open connects to the database described by cfg and verifies the
// connection with a ping. It does not create the schema; call Migrate.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	d, err := dialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	dsn := cfg.DSN
	if d.name == DriverSQLite {
		dsn = storage.SQLiteConnString(cfg.DSN, false)
	}
	db, err := sql.Open(d.name, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.name, err)
	}
	switch {
	case d.name == DriverSQLite:
		// One writer at a time; also keeps a shared in-memory database alive.
		db.SetMaxOpenConns(1)
	case cfg.MaxOpenConns > 0:
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.name, err)
	}
	return newStore(db, d), nil
}

// New wraps an already-open database handle.
func New(db *sql.DB, driver string) (*Store, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	return newStore(db, d), nil
}

func newStore(db *sql.DB, d dialect) *Store {
	return &Store{db: db, dialect: d, now: time.Now}
}

// Driver returns the dialect name in use.
func (s *Store) Driver() string { return s.dialect.name }

// DB exposes the underlying handle for maintenance commands.
func (s *Store) DB() *sql.DB { return s.db }

// Migrate creates any missing tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) queries(q dbtx) *queries {
	return &queries{q: q, now: s.now}
}

// withTx runs fn inside a transaction, committing on success.
func (s *Store) withTx(ctx context.Context, fn func(q *queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(s.queries(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// queries holds the statements shared by Store and its transactions.
type queries struct {
	q   dbtx
	now func() time.Time
}

func (q *queries) stamp() string {
	return q.now().UTC().Format(timestampLayout)
}
