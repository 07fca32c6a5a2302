package cache

import (
	"context"
	"time"

	"github.com/couchcryptid/city-explorer-service/internal/domain"
	"github.com/couchcryptid/city-explorer-service/internal/observability"
)

// Store operation labels.
const (
	opSelect = "select"
	opInsert = "insert"
	opDelete = "delete"
)

// InstrumentedStore records query latency and failures for every store call.
type InstrumentedStore struct {
	inner   Store
	metrics *observability.Metrics
}

// NewInstrumentedStore wraps inner with store metrics.
func NewInstrumentedStore(inner Store, metrics *observability.Metrics) *InstrumentedStore {
	return &InstrumentedStore{inner: inner, metrics: metrics}
}

func (s *InstrumentedStore) SelectByLocationID(ctx context.Context, t domain.Table, locationID int64, scan func(domain.RowScanner) error) error {
	start := time.Now()
	err := s.inner.SelectByLocationID(ctx, t, locationID, scan)
	s.observe(opSelect, t.Name, start, err)
	return err
}

func (s *InstrumentedStore) SelectBySearchQuery(ctx context.Context, searchQuery string) ([]domain.Location, error) {
	start := time.Now()
	locs, err := s.inner.SelectBySearchQuery(ctx, searchQuery)
	s.observe(opSelect, domain.LocationsTable.Name, start, err)
	return locs, err
}

func (s *InstrumentedStore) Insert(ctx context.Context, t domain.Table, values []any) (int64, error) {
	start := time.Now()
	id, err := s.inner.Insert(ctx, t, values)
	s.observe(opInsert, t.Name, start, err)
	return id, err
}

func (s *InstrumentedStore) DeleteByLocationID(ctx context.Context, t domain.Table, locationID int64) (int64, error) {
	start := time.Now()
	n, err := s.inner.DeleteByLocationID(ctx, t, locationID)
	s.observe(opDelete, t.Name, start, err)
	return n, err
}

func (s *InstrumentedStore) observe(op, table string, start time.Time, err error) {
	s.metrics.StoreQueryDuration.WithLabelValues(op, table).Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.StoreErrors.WithLabelValues(op, table).Inc()
	}
}
