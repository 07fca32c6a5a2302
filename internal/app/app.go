// Package app assembles the store, providers, cache and explorer service from
// configuration. Both binaries build through it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/city-explorer-service/internal/adapter/kafka"
	"github.com/couchcryptid/city-explorer-service/internal/adapter/postgres"
	"github.com/couchcryptid/city-explorer-service/internal/adapter/provider"
	"github.com/couchcryptid/city-explorer-service/internal/adapter/sqlite"
	"github.com/couchcryptid/city-explorer-service/internal/cache"
	"github.com/couchcryptid/city-explorer-service/internal/config"
	"github.com/couchcryptid/city-explorer-service/internal/domain"
	"github.com/couchcryptid/city-explorer-service/internal/explorer"
	"github.com/couchcryptid/city-explorer-service/internal/observability"
)

// Store is a cache store that can also be migrated, pinged and closed.
type Store interface {
	cache.Store
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// OpenStore opens the configured store driver and applies its schema.
func OpenStore(ctx context.Context, cfg *config.Config) (Store, error) {
	var (
		store Store
		err   error
	)
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		store, err = postgres.Open(ctx, cfg.DatabaseURL)
	case config.DriverSQLite:
		store, err = sqlite.Open(ctx, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// App is a fully wired explorer service and the resources it owns.
type App struct {
	Service *explorer.Service
	Store   Store

	writer *kafka.Writer
	logger *slog.Logger
}

// Build wires every component for cfg.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*App, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	logger.Info("store ready", "driver", cfg.StoreDriver)

	a := &App{Store: store, logger: logger}
	instrumented := cache.NewInstrumentedStore(store, metrics)

	var opts []cache.Option
	if cfg.KafkaEnabled {
		a.writer = kafka.NewWriter(cfg, logger)
		opts = append(opts, cache.WithPublisher(a.writer))
		logger.Info("refresh events enabled", "topic", cfg.KafkaRefreshTopic, "brokers", cfg.KafkaBrokers)
	}
	engine := cache.NewEngine(instrumented, logger, metrics, opts...)

	geocoder := provider.NewGeocoder(cfg.GeocodeAPIKey, cfg.GeocodeBaseURL, cfg.ProviderTimeout, logger, metrics)
	resolver := cache.NewResolver(instrumented, geocoder, cfg.LocationCacheSize, logger, metrics)

	providers := explorer.Providers{
		Weather:    provider.NewWeather(cfg.WeatherAPIKey, cfg.WeatherBaseURL, cfg.ProviderTimeout, logger, metrics),
		Events:     provider.NewEvents(cfg.EventbriteAPIKey, cfg.EventsBaseURL, cfg.ProviderTimeout, logger, metrics),
		Movies:     provider.NewMovies(cfg.MovieAPIKey, cfg.MoviesBaseURL, cfg.MovieRegion, cfg.ProviderTimeout, logger, metrics),
		Businesses: provider.NewYelp(cfg.YelpAPIKey, cfg.YelpBaseURL, cfg.ProviderTimeout, logger, metrics),
	}

	svc, err := explorer.New(resolver, engine, store, providers, domain.Categories(cfg.MaxAges), logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Service = svc
	return a, nil
}

// Close releases the Kafka writer and the store.
func (a *App) Close() error {
	var errs []error
	if a.writer != nil {
		if err := a.writer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close kafka writer: %w", err))
		}
	}
	if err := a.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	return errors.Join(errs...)
}
