package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"

	"github.com/couchcryptid/city-explorer-service/internal/domain"
	"github.com/couchcryptid/city-explorer-service/internal/observability"
)

var tracer = otel.Tracer("github.com/couchcryptid/city-explorer-service/internal/cache")

// Outcome classifies what a store lookup found.
type Outcome int

const (
	// Hit means fresh rows were found.
	Hit Outcome = iota + 1
	// Miss means no rows were stored for the location.
	Miss
	// Stale means rows were stored but the first one is older than the category window.
	Stale
)

func (o Outcome) String() string {
	switch o {
	case Hit:
		return "hit"
	case Miss:
		return "miss"
	case Stale:
		return "stale"
	default:
		return "unknown"
	}
}

// Result is the tagged outcome of a lookup. Rows is set only for Hit.
type Result[T any] struct {
	Outcome Outcome
	Rows    []T
}

// Record is a cached category row.
type Record[T any] interface {
	FetchedAt() time.Time
	// Values returns insert values in the table's column order.
	Values() []any
	WithOwner(locationID int64, fetchedAt time.Time) T
	WithID(id int64) T
}

// Descriptor binds a category to its row scanner and provider call.
type Descriptor[T Record[T]] struct {
	Category domain.Category
	Scan     func(domain.RowScanner) (T, error)
	Fetch    func(ctx context.Context, loc domain.Location) ([]T, error)
}

// Engine runs the cache-aside protocol against one store.
type Engine struct {
	store     Store
	clock     clockwork.Clock
	publisher RefreshPublisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	flights   singleflight.Group
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the clock used for staleness checks and created_at stamps.
func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithPublisher announces every completed refetch through p.
func WithPublisher(p RefreshPublisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// NewEngine creates an Engine reading and writing through store.
func NewEngine(store Store, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		logger:  logger,
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) now() time.Time {
	if e.clock != nil {
		return e.clock.Now()
	}
	return domain.Now()
}

// Lookup reads the rows stored for locationID and classifies them. It never writes.
func Lookup[T Record[T]](ctx context.Context, e *Engine, d Descriptor[T], locationID int64) (Result[T], error) {
	var rows []T
	err := e.store.SelectByLocationID(ctx, d.Category.Table, locationID, func(s domain.RowScanner) error {
		r, err := d.Scan(s)
		if err != nil {
			return err
		}
		rows = append(rows, r)
		return nil
	})
	if err != nil {
		return Result[T]{}, err
	}

	if len(rows) == 0 {
		return Result[T]{Outcome: Miss}, nil
	}
	// Every row for a location is written in one batch, so the first row dates them all.
	if d.Category.IsStale(rows[0].FetchedAt(), e.now()) {
		return Result[T]{Outcome: Stale}, nil
	}
	return Result[T]{Outcome: Hit, Rows: rows}, nil
}

// Resolve returns fresh rows for loc, refetching from the provider on a miss
// and evicting then refetching when the stored rows are stale.
func Resolve[T Record[T]](ctx context.Context, e *Engine, d Descriptor[T], loc domain.Location) ([]T, error) {
	ctx, span := tracer.Start(ctx, "cache.resolve")
	defer span.End()
	span.SetAttributes(
		attribute.String("category", d.Category.Name),
		attribute.Int64("location_id", loc.ID),
	)

	res, err := Lookup(ctx, e, d, loc.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	e.metrics.CacheLookups.WithLabelValues(d.Category.Name, res.Outcome.String()).Inc()
	span.SetAttributes(attribute.String("outcome", res.Outcome.String()))

	if res.Outcome == Hit {
		return res.Rows, nil
	}

	rows, err := refresh(ctx, e, d, loc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return rows, nil
}

// refresh collapses concurrent refetches of one (table, location) into a
// single call. The store is re-read inside the call because another request
// may have completed the refetch between our lookup and acquiring the flight.
func refresh[T Record[T]](ctx context.Context, e *Engine, d Descriptor[T], loc domain.Location) ([]T, error) {
	key := d.Category.Table.Name + ":" + strconv.FormatInt(loc.ID, 10)

	// The flight outlives any single caller; one cancelled request must not
	// fail the others waiting on it.
	flightCtx := context.WithoutCancel(ctx)
	ch := e.flights.DoChan(key, func() (any, error) {
		res, err := Lookup(flightCtx, e, d, loc.ID)
		if err != nil {
			return nil, err
		}
		switch res.Outcome {
		case Hit:
			return res.Rows, nil
		case Stale:
			n, err := e.store.DeleteByLocationID(flightCtx, d.Category.Table, loc.ID)
			if err != nil {
				return nil, err
			}
			e.metrics.CacheEvictions.WithLabelValues(d.Category.Name).Add(float64(n))
			e.logger.Debug("evicted stale rows",
				"category", d.Category.Name, "location_id", loc.ID, "rows", n)
		}

		rows, fetchedAt, err := fetchAt(flightCtx, e, d, loc)
		if err != nil {
			return nil, err
		}
		e.publish(flightCtx, d.Category.Name, loc.ID, res.Outcome, len(rows), fetchedAt)
		return rows, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Shared {
			e.metrics.CacheRefreshShared.WithLabelValues(d.Category.Name).Inc()
		}
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.([]T), nil
	}
}

// Fetch calls the provider for loc, stamps every record with the current time
// and loc's id, and persists them in provider order. It returns exactly the
// records it stored. An empty provider result stores nothing.
func Fetch[T Record[T]](ctx context.Context, e *Engine, d Descriptor[T], loc domain.Location) ([]T, error) {
	rows, _, err := fetchAt(ctx, e, d, loc)
	return rows, err
}

func fetchAt[T Record[T]](ctx context.Context, e *Engine, d Descriptor[T], loc domain.Location) ([]T, time.Time, error) {
	items, err := d.Fetch(ctx, loc)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("fetch %s: %w", d.Category.Name, err)
	}

	fetchedAt := e.now()
	out := make([]T, 0, len(items))
	for _, item := range items {
		rec := item.WithOwner(loc.ID, fetchedAt)
		id, err := e.store.Insert(ctx, d.Category.Table, rec.Values())
		if err != nil {
			if len(out) > 0 {
				e.discardPartial(ctx, d.Category, loc.ID, len(out))
			}
			return nil, time.Time{}, err
		}
		out = append(out, rec.WithID(id))
	}
	return out, fetchedAt, nil
}

// discardPartial removes the rows of an interrupted batch. Lookup dates a
// location's rows by the first one, so a truncated batch would otherwise be
// served as fresh until it ages out.
func (e *Engine) discardPartial(ctx context.Context, c domain.Category, locationID int64, written int) {
	if _, err := e.store.DeleteByLocationID(ctx, c.Table, locationID); err != nil {
		e.logger.Error("discard partial batch failed",
			"category", c.Name, "location_id", locationID, "rows", written, "error", err)
		return
	}
	e.logger.Warn("discarded partial batch",
		"category", c.Name, "location_id", locationID, "rows", written)
}

func (e *Engine) publish(ctx context.Context, category string, locationID int64, outcome Outcome, records int, fetchedAt time.Time) {
	if e.publisher == nil {
		return
	}
	reason := domain.RefreshMiss
	if outcome == Stale {
		reason = domain.RefreshStale
	}
	ev := domain.RefreshEvent{
		Category:   category,
		LocationID: locationID,
		Reason:     reason,
		Records:    records,
		FetchedAt:  fetchedAt.UTC(),
	}
	if err := e.publisher.PublishRefresh(ctx, ev); err != nil {
		e.metrics.RefreshPublishErrors.Inc()
		e.logger.Warn("publish refresh event failed",
			"category", category, "location_id", locationID, "error", err)
		return
	}
	e.metrics.RefreshPublished.Inc()
}

// Evict deletes every row of category c stored for locationID so the next
// read refetches. It returns the number of rows removed.
func (e *Engine) Evict(ctx context.Context, c domain.Category, locationID int64) (int64, error) {
	n, err := e.store.DeleteByLocationID(ctx, c.Table, locationID)
	if err != nil {
		return 0, err
	}
	e.metrics.CacheEvictions.WithLabelValues(c.Name).Add(float64(n))
	e.logger.Info("evicted rows", "category", c.Name, "location_id", locationID, "rows", n)
	return n, nil
}
