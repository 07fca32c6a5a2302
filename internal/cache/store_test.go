package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/couchcryptid/city-explorer-service/internal/domain"
)

// memStore is an in-memory Store that records every call.
type memStore struct {
	mu      sync.Mutex
	nextID  int64
	rows    map[string][]memRow
	inserts map[string]int
	deletes map[string]int
	selects map[string]int
	failOn  string // "select", "insert" or "delete"

	insertCalls   int
	failInsertNth int // when set, only that insert call (1-based) fails
}

type memRow struct {
	id     int64
	values []any
}

func newMemStore() *memStore {
	return &memStore{
		rows:    make(map[string][]memRow),
		inserts: make(map[string]int),
		deletes: make(map[string]int),
		selects: make(map[string]int),
	}
}

var errBoom = errors.New("boom")

func (s *memStore) fail(op, table string) error {
	if s.failOn == op {
		return &domain.StoreError{Op: op, Table: table, Err: errBoom}
	}
	return nil
}

func (s *memStore) SelectByLocationID(_ context.Context, t domain.Table, locationID int64, scan func(domain.RowScanner) error) error {
	s.mu.Lock()
	s.selects[t.Name]++
	if err := s.fail("select", t.Name); err != nil {
		s.mu.Unlock()
		return err
	}
	idx := ownerIndex(t)
	var matched []memRow
	for _, r := range s.rows[t.Name] {
		if r.values[idx] == locationID {
			matched = append(matched, r)
		}
	}
	s.mu.Unlock()

	for _, r := range matched {
		if err := scan(memScanner{row: r}); err != nil {
			return err
		}
	}
	return nil
}

func (s *memStore) SelectBySearchQuery(_ context.Context, searchQuery string) ([]domain.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selects[domain.LocationsTable.Name]++
	if err := s.fail("select", domain.LocationsTable.Name); err != nil {
		return nil, err
	}
	var out []domain.Location
	for _, r := range s.rows[domain.LocationsTable.Name] {
		if r.values[0] == searchQuery {
			loc, err := domain.ScanLocation(memScanner{row: r})
			if err != nil {
				return nil, err
			}
			out = append(out, loc)
		}
	}
	return out, nil
}

func (s *memStore) Insert(_ context.Context, t domain.Table, values []any) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertCalls++
	if err := s.fail("insert", t.Name); err != nil {
		return 0, err
	}
	if s.failInsertNth > 0 && s.insertCalls == s.failInsertNth {
		return 0, &domain.StoreError{Op: "insert", Table: t.Name, Err: errBoom}
	}
	if len(values) != len(t.Columns) {
		return 0, fmt.Errorf("insert %s: %d values for %d columns", t.Name, len(values), len(t.Columns))
	}
	if t.UniqueKey != "" {
		for _, r := range s.rows[t.Name] {
			if r.values[0] == values[0] {
				return r.id, nil
			}
		}
	}
	s.nextID++
	s.inserts[t.Name]++
	s.rows[t.Name] = append(s.rows[t.Name], memRow{id: s.nextID, values: values})
	return s.nextID, nil
}

func (s *memStore) DeleteByLocationID(_ context.Context, t domain.Table, locationID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes[t.Name]++
	if err := s.fail("delete", t.Name); err != nil {
		return 0, err
	}
	idx := ownerIndex(t)
	kept := s.rows[t.Name][:0]
	var n int64
	for _, r := range s.rows[t.Name] {
		if r.values[idx] == locationID {
			n++
			continue
		}
		kept = append(kept, r)
	}
	s.rows[t.Name] = kept
	return n, nil
}

func (s *memStore) count(table string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows[table])
}

func (s *memStore) counter(m map[string]int, table string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return m[table]
}

func ownerIndex(t domain.Table) int {
	for i, c := range t.Columns {
		if c == "location_id" {
			return i
		}
	}
	panic("table " + t.Name + " has no location_id")
}

// memScanner copies a stored row into Scan destinations, id first.
type memScanner struct {
	row memRow
}

func (m memScanner) Scan(dest ...any) error {
	src := append([]any{m.row.id}, m.row.values...)
	if len(dest) != len(src) {
		return fmt.Errorf("scan: %d destinations for %d columns", len(dest), len(src))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *int64:
			*p = src[i].(int64)
		case *float64:
			*p = src[i].(float64)
		case *string:
			*p = src[i].(string)
		default:
			return fmt.Errorf("scan: unsupported destination %T", d)
		}
	}
	return nil
}
