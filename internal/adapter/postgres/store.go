// Package postgres is the production Store, backed by a pgx connection pool.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/couchcryptid/city-explorer-service/internal/adapter/sqlquery"
	"github.com/couchcryptid/city-explorer-service/internal/domain"
)

// Store implements the cache store contract on PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// Open creates a connection pool for databaseURL and verifies it.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Migrate applies Schema. It is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply postgres schema: %w", err)
	}
	return nil
}

// Ping checks a pooled connection is usable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes every pooled connection.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) SelectByLocationID(ctx context.Context, t domain.Table, locationID int64, scan func(domain.RowScanner) error) error {
	q, err := sqlquery.Postgres.SelectByLocationID(t)
	if err != nil {
		return storeErr("select", t.Name, err)
	}
	rows, err := s.pool.Query(ctx, q, locationID)
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
	rows, err := s.pool.Query(ctx, sqlquery.Postgres.SelectBySearchQuery(), searchQuery)
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
	q, err := sqlquery.Postgres.Insert(t)
	if err != nil {
		return 0, storeErr("insert", t.Name, err)
	}
	if err := sqlquery.CheckValues(t, values); err != nil {
		return 0, storeErr("insert", t.Name, err)
	}
	var id int64
	if err := s.pool.QueryRow(ctx, q, values...).Scan(&id); err != nil {
		return 0, storeErr("insert", t.Name, err)
	}
	return id, nil
}

func (s *Store) DeleteByLocationID(ctx context.Context, t domain.Table, locationID int64) (int64, error) {
	q, err := sqlquery.Postgres.DeleteByLocationID(t)
	if err != nil {
		return 0, storeErr("delete", t.Name, err)
	}
	tag, err := s.pool.Exec(ctx, q, locationID)
	if err != nil {
		return 0, storeErr("delete", t.Name, err)
	}
	return tag.RowsAffected(), nil
}

func storeErr(op, table string, err error) error {
	return &domain.StoreError{Op: op, Table: table, Err: err}
}
