package cache

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/couchcryptid/city-explorer-service/internal/domain"
	"github.com/couchcryptid/city-explorer-service/internal/observability"
)

// Resolution sources, also used as metric labels.
const (
	SourceMemory   = "memory"
	SourceStore    = "store"
	SourceGeocoder = "geocoder"
)

// Resolver turns search text into a persisted Location.
type Resolver struct {
	store    Store
	geocoder domain.Geocoder
	memo     *locationMemo // nil when disabled
	logger   *slog.Logger
	metrics  *observability.Metrics
	flights  singleflight.Group
}

// NewResolver creates a Resolver. A memoSize of zero disables the in-process memo.
func NewResolver(store Store, geocoder domain.Geocoder, memoSize int, logger *slog.Logger, metrics *observability.Metrics) *Resolver {
	r := &Resolver{
		store:    store,
		geocoder: geocoder,
		logger:   logger,
		metrics:  metrics,
	}
	if memoSize > 0 {
		r.memo = newLocationMemo(memoSize)
	}
	return r
}

// ResolveLocation returns the stored location for searchQuery, geocoding and
// persisting it on first sight. Locations never expire.
func (r *Resolver) ResolveLocation(ctx context.Context, searchQuery string) (domain.Location, error) {
	searchQuery = memoKey(searchQuery)
	if searchQuery == "" {
		return domain.Location{}, fmt.Errorf("%w: empty search query", domain.ErrInvalidQuery)
	}

	if r.memo != nil {
		if loc, ok := r.memo.lookup(searchQuery); ok {
			r.metrics.LocationResolutions.WithLabelValues(SourceMemory).Inc()
			return loc, nil
		}
	}

	ctx, span := tracer.Start(ctx, "cache.resolve_location")
	defer span.End()

	ch := r.flights.DoChan(searchQuery, func() (any, error) {
		return r.resolve(context.WithoutCancel(ctx), searchQuery)
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		span.RecordError(ctx.Err())
		return domain.Location{}, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		span.RecordError(res.Err)
		return domain.Location{}, res.Err
	}
	loc := res.Val.(domain.Location)
	if r.memo != nil {
		r.memo.remember(searchQuery, loc)
	}
	return loc, nil
}

func (r *Resolver) resolve(ctx context.Context, searchQuery string) (domain.Location, error) {
	locs, err := r.store.SelectBySearchQuery(ctx, searchQuery)
	if err != nil {
		return domain.Location{}, err
	}
	if len(locs) > 0 {
		r.metrics.LocationResolutions.WithLabelValues(SourceStore).Inc()
		return locs[0], nil
	}

	results, err := r.geocoder.ForwardGeocode(ctx, searchQuery)
	if err != nil {
		return domain.Location{}, fmt.Errorf("geocode %q: %w", searchQuery, err)
	}
	if len(results) == 0 {
		return domain.Location{}, fmt.Errorf("%w: %q", domain.ErrNoLocationFound, searchQuery)
	}

	loc := domain.NewLocation(searchQuery, results[0])
	id, err := r.store.Insert(ctx, domain.LocationsTable, loc.Values())
	if err != nil {
		return domain.Location{}, err
	}
	loc.ID = id
	r.metrics.LocationResolutions.WithLabelValues(SourceGeocoder).Inc()
	r.logger.Info("location resolved", "search_query", searchQuery, "location_id", id,
		"formatted_query", loc.FormattedQuery)
	return loc, nil
}
