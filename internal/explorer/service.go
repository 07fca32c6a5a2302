// Package explorer binds each category to its provider and serves the
// location-keyed reads the transport layers expose.
package explorer

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/city-explorer-service/internal/cache"
	"github.com/couchcryptid/city-explorer-service/internal/domain"
)

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Providers are the remote sources behind each category.
type Providers struct {
	Weather    domain.WeatherProvider
	Events     domain.EventProvider
	Movies     domain.MovieProvider
	Businesses domain.BusinessProvider
}

// Service is the request orchestrator.
type Service struct {
	resolver   *cache.Resolver
	engine     *cache.Engine
	pinger     Pinger
	categories []domain.Category
	logger     *slog.Logger

	weather cache.Descriptor[domain.Weather]
	events  cache.Descriptor[domain.Event]
	movies  cache.Descriptor[domain.Movie]
	yelp    cache.Descriptor[domain.BusinessReview]
}

// New creates a Service. categories supplies the staleness window per category.
func New(resolver *cache.Resolver, engine *cache.Engine, pinger Pinger, p Providers, categories []domain.Category, logger *slog.Logger) (*Service, error) {
	byName := func(name string) (domain.Category, error) {
		return domain.CategoryByName(categories, name)
	}
	weather, err := byName(domain.CategoryWeather)
	if err != nil {
		return nil, err
	}
	events, err := byName(domain.CategoryEvents)
	if err != nil {
		return nil, err
	}
	movies, err := byName(domain.CategoryMovies)
	if err != nil {
		return nil, err
	}
	yelp, err := byName(domain.CategoryYelp)
	if err != nil {
		return nil, err
	}

	return &Service{
		resolver:   resolver,
		engine:     engine,
		pinger:     pinger,
		categories: categories,
		logger:     logger,
		weather: cache.Descriptor[domain.Weather]{
			Category: weather,
			Scan:     domain.ScanWeather,
			Fetch: func(ctx context.Context, loc domain.Location) ([]domain.Weather, error) {
				return p.Weather.DailyForecast(ctx, loc.Latitude, loc.Longitude)
			},
		},
		events: cache.Descriptor[domain.Event]{
			Category: events,
			Scan:     domain.ScanEvent,
			Fetch: func(ctx context.Context, loc domain.Location) ([]domain.Event, error) {
				return p.Events.SearchEvents(ctx, loc.FormattedQuery)
			},
		},
		movies: cache.Descriptor[domain.Movie]{
			Category: movies,
			Scan:     domain.ScanMovie,
			// Now playing is not location scoped; rows are still kept per location.
			Fetch: func(ctx context.Context, _ domain.Location) ([]domain.Movie, error) {
				return p.Movies.NowPlaying(ctx)
			},
		},
		yelp: cache.Descriptor[domain.BusinessReview]{
			Category: yelp,
			Scan:     domain.ScanBusinessReview,
			Fetch: func(ctx context.Context, loc domain.Location) ([]domain.BusinessReview, error) {
				return p.Businesses.SearchBusinesses(ctx, loc.Latitude, loc.Longitude)
			},
		},
	}, nil
}

// CheckReadiness returns nil when the store answers a ping.
func (s *Service) CheckReadiness(ctx context.Context) error {
	if err := s.pinger.Ping(ctx); err != nil {
		return fmt.Errorf("store unreachable: %w", err)
	}
	return nil
}

// Location resolves search text to a stored location.
func (s *Service) Location(ctx context.Context, query string) (domain.Location, error) {
	return s.resolver.ResolveLocation(ctx, query)
}

// Weather returns the daily forecast for loc.
func (s *Service) Weather(ctx context.Context, loc domain.Location) ([]domain.Weather, error) {
	return resolveCategory(ctx, s.engine, s.weather, loc, requireCoordinates)
}

// Events returns events near loc.
func (s *Service) Events(ctx context.Context, loc domain.Location) ([]domain.Event, error) {
	return resolveCategory(ctx, s.engine, s.events, loc, requireFormattedQuery)
}

// Movies returns movies now playing, cached under loc.
func (s *Service) Movies(ctx context.Context, loc domain.Location) ([]domain.Movie, error) {
	return resolveCategory(ctx, s.engine, s.movies, loc, nil)
}

// Reviews returns rated businesses near loc.
func (s *Service) Reviews(ctx context.Context, loc domain.Location) ([]domain.BusinessReview, error) {
	return resolveCategory(ctx, s.engine, s.yelp, loc, requireCoordinates)
}

// resolveCategory validates loc for the provider behind d before touching the
// cache, so an incomplete location is never fetched and stored under its id.
func resolveCategory[T cache.Record[T]](ctx context.Context, e *cache.Engine, d cache.Descriptor[T], loc domain.Location, require func(domain.Location) error) ([]T, error) {
	if err := validateLocation(loc); err != nil {
		return nil, err
	}
	if require != nil {
		if err := require(loc); err != nil {
			return nil, err
		}
	}
	rows, err := cache.Resolve(ctx, e, d, loc)
	if err != nil {
		return nil, &domain.CategoryError{Category: d.Category.Name, Err: err}
	}
	return rows, nil
}

func validateLocation(loc domain.Location) error {
	if loc.ID <= 0 {
		return fmt.Errorf("%w: location id is required", domain.ErrInvalidQuery)
	}
	return nil
}

// requireCoordinates rejects the zero point and out-of-range coordinates. A
// geocoded location never sits at exactly 0,0; a caller that dropped the
// fields does.
func requireCoordinates(loc domain.Location) error {
	if loc.Latitude == 0 && loc.Longitude == 0 {
		return fmt.Errorf("%w: location coordinates are required", domain.ErrInvalidQuery)
	}
	if math.Abs(loc.Latitude) > 90 || math.Abs(loc.Longitude) > 180 {
		return fmt.Errorf("%w: location coordinates out of range", domain.ErrInvalidQuery)
	}
	return nil
}

func requireFormattedQuery(loc domain.Location) error {
	if strings.TrimSpace(loc.FormattedQuery) == "" {
		return fmt.Errorf("%w: location formatted_query is required", domain.ErrInvalidQuery)
	}
	return nil
}

// Explore resolves query and then every named category concurrently. An empty
// categories list means all of them. A failing category is reported in the
// result's Errors and does not affect the others; only a location failure
// fails the call.
func (s *Service) Explore(ctx context.Context, query string, categories []string) (domain.Exploration, error) {
	wanted, err := s.selectCategories(categories)
	if err != nil {
		return domain.Exploration{}, err
	}

	loc, err := s.Location(ctx, query)
	if err != nil {
		return domain.Exploration{}, err
	}

	out := domain.Exploration{Location: loc}
	var (
		mu   sync.Mutex
		errs = make(map[string]error)
	)
	record := func(name string, err error) {
		mu.Lock()
		defer mu.Unlock()
		errs[name] = err
		s.logger.Warn("category failed", "category", name, "location_id", loc.ID, "error", err)
	}

	var g errgroup.Group
	for _, c := range wanted {
		switch c.Name {
		case domain.CategoryWeather:
			g.Go(func() error {
				rows, err := s.Weather(ctx, loc)
				if err != nil {
					record(c.Name, err)
					return nil
				}
				out.Weather = rows
				return nil
			})
		case domain.CategoryEvents:
			g.Go(func() error {
				rows, err := s.Events(ctx, loc)
				if err != nil {
					record(c.Name, err)
					return nil
				}
				out.Events = rows
				return nil
			})
		case domain.CategoryMovies:
			g.Go(func() error {
				rows, err := s.Movies(ctx, loc)
				if err != nil {
					record(c.Name, err)
					return nil
				}
				out.Movies = rows
				return nil
			})
		case domain.CategoryYelp:
			g.Go(func() error {
				rows, err := s.Reviews(ctx, loc)
				if err != nil {
					record(c.Name, err)
					return nil
				}
				out.Yelp = rows
				return nil
			})
		}
	}
	_ = g.Wait() // category goroutines never return an error

	if len(errs) > 0 {
		out.Errors = errs
	}
	return out, nil
}

func (s *Service) selectCategories(names []string) ([]domain.Category, error) {
	if len(names) == 0 {
		return s.categories, nil
	}
	seen := make(map[string]bool, len(names))
	out := make([]domain.Category, 0, len(names))
	for _, n := range names {
		c, err := domain.CategoryByName(s.categories, n)
		if err != nil {
			return nil, err
		}
		if !seen[n] {
			seen[n] = true
			out = append(out, c)
		}
	}
	return out, nil
}

// Purge evicts one category for a location so its next read refetches.
func (s *Service) Purge(ctx context.Context, category string, locationID int64) (int64, error) {
	c, err := domain.CategoryByName(s.categories, category)
	if err != nil {
		return 0, err
	}
	if locationID <= 0 {
		return 0, fmt.Errorf("%w: location id is required", domain.ErrInvalidQuery)
	}
	return s.engine.Evict(ctx, c, locationID)
}
