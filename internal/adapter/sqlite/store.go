// Package sqlite is a Store backed by an embedded SQLite database, for local
// runs and tests.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/couchcryptid/city-explorer-service/internal/adapter/sqlquery"
	"github.com/couchcryptid/city-explorer-service/internal/domain"
)

const inMemory = ":memory:"

// Store implements the cache store contract on SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database file at path and applies Schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return initStore(ctx, db, path)
}

// OpenInMemory creates a private in-memory database.
func OpenInMemory(ctx context.Context) (*Store, error) {
	db, err := sql.Open("sqlite", inMemory+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite in memory: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	return initStore(ctx, db, inMemory)
}

func initStore(ctx context.Context, db *sql.DB, path string) (*Store, error) {
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	s := &Store{db: db, path: path}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate applies Schema. It is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply sqlite schema: %w", err)
	}
	return nil
}

// Path returns the database file path, or ":memory:".
func (s *Store) Path() string { return s.path }

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) SelectByLocationID(ctx context.Context, t domain.Table, locationID int64, scan func(domain.RowScanner) error) error {
	q, err := sqlquery.SQLite.SelectByLocationID(t)
	if err != nil {
		return storeErr("select", t.Name, err)
	}
	rows, err := s.db.QueryContext(ctx, q, locationID)
	if err != nil {
		return storeErr("select", t.Name, err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return storeErr("select", t.Name, err)
		}
	}
	if err := rows.Err(); err != nil {
		return storeErr("select", t.Name, err)
	}
	return nil
}

func (s *Store) SelectBySearchQuery(ctx context.Context, searchQuery string) ([]domain.Location, error) {
	table := domain.LocationsTable.Name
	rows, err := s.db.QueryContext(ctx, sqlquery.SQLite.SelectBySearchQuery(), searchQuery)
	if err != nil {
		return nil, storeErr("select", table, err)
	}
	defer rows.Close()

	var locs []domain.Location
	for rows.Next() {
		loc, err := domain.ScanLocation(rows)
		if err != nil {
			return nil, storeErr("select", table, err)
		}
		locs = append(locs, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("select", table, err)
	}
	return locs, nil
}

func (s *Store) Insert(ctx context.Context, t domain.Table, values []any) (int64, error) {
	q, err := sqlquery.SQLite.Insert(t)
	if err != nil {
		return 0, storeErr("insert", t.Name, err)
	}
	if err := sqlquery.CheckValues(t, values); err != nil {
		return 0, storeErr("insert", t.Name, err)
	}
	var id int64
	if err := s.db.QueryRowContext(ctx, q, values...).Scan(&id); err != nil {
		return 0, storeErr("insert", t.Name, err)
	}
	return id, nil
}

func (s *Store) DeleteByLocationID(ctx context.Context, t domain.Table, locationID int64) (int64, error) {
	q, err := sqlquery.SQLite.DeleteByLocationID(t)
	if err != nil {
		return 0, storeErr("delete", t.Name, err)
	}
	res, err := s.db.ExecContext(ctx, q, locationID)
	if err != nil {
		return 0, storeErr("delete", t.Name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storeErr("delete", t.Name, err)
	}
	return n, nil
}

func storeErr(op, table string, err error) error {
	return &domain.StoreError{Op: op, Table: table, Err: err}
}
