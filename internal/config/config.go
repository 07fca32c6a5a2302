package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/city-explorer-service/internal/domain"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Default provider endpoints.
const (
	DefaultGeocodeBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"
	DefaultWeatherBaseURL = "https://api.darksky.net/forecast"
	DefaultEventsBaseURL  = "https://www.eventbriteapi.com/v3/events/search"
	DefaultMoviesBaseURL  = "https://api.themoviedb.org/3/movie/now_playing"
	DefaultYelpBaseURL    = "https://api.yelp.com/v3/businesses/search"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration

	// Store configuration.
	StoreDriver string
	DatabaseURL string
	SQLitePath  string

	// Provider configuration.
	ProviderTimeout  time.Duration
	GeocodeAPIKey    string
	WeatherAPIKey    string
	EventbriteAPIKey string
	MovieAPIKey      string
	YelpAPIKey       string
	GeocodeBaseURL   string
	WeatherBaseURL   string
	EventsBaseURL    string
	MoviesBaseURL    string
	YelpBaseURL      string
	MovieRegion      string

	// Cache policy.
	LocationCacheSize int
	MaxAges           domain.MaxAges

	// Refresh notifications.
	KafkaEnabled      bool
	KafkaBrokers      []string
	KafkaRefreshTopic string

	OTLPEndpoint string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	requestTimeout, err := parsePositiveDuration("REQUEST_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	providerTimeout, err := parsePositiveDuration("PROVIDER_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	maxAges := domain.MaxAges{}
	for name, key := range map[string]string{
		domain.CategoryWeather: "WEATHER_MAX_AGE",
		domain.CategoryEvents:  "EVENTS_MAX_AGE",
		domain.CategoryMovies:  "MOVIES_MAX_AGE",
		domain.CategoryYelp:    "YELP_MAX_AGE",
	} {
		if os.Getenv(key) == "" {
			continue
		}
		d, err := parsePositiveDuration(key, "")
		if err != nil {
			return nil, err
		}
		maxAges[name] = d
	}

	locationCacheSize, err := parseLocationCacheSize()
	if err != nil {
		return nil, err
	}

	brokers := os.Getenv("KAFKA_BROKERS")
	kafkaEnabled := brokers != ""
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        httpAddr(),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		RequestTimeout:  requestTimeout,

		StoreDriver: sharedcfg.EnvOrDefault("STORE_DRIVER", DriverPostgres),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  sharedcfg.EnvOrDefault("SQLITE_PATH", "city-explorer.db"),

		ProviderTimeout:  providerTimeout,
		GeocodeAPIKey:    os.Getenv("GEOCODE_API_KEY"),
		WeatherAPIKey:    os.Getenv("WEATHER_API_KEY"),
		EventbriteAPIKey: os.Getenv("EVENTBRITE_API_KEY"),
		MovieAPIKey:      os.Getenv("MOVIE_API_KEY"),
		YelpAPIKey:       os.Getenv("YELP_API_KEY"),
		GeocodeBaseURL:   sharedcfg.EnvOrDefault("GEOCODE_BASE_URL", DefaultGeocodeBaseURL),
		WeatherBaseURL:   sharedcfg.EnvOrDefault("WEATHER_BASE_URL", DefaultWeatherBaseURL),
		EventsBaseURL:    sharedcfg.EnvOrDefault("EVENTS_BASE_URL", DefaultEventsBaseURL),
		MoviesBaseURL:    sharedcfg.EnvOrDefault("MOVIES_BASE_URL", DefaultMoviesBaseURL),
		YelpBaseURL:      sharedcfg.EnvOrDefault("YELP_BASE_URL", DefaultYelpBaseURL),
		MovieRegion:      os.Getenv("MOVIE_REGION"),

		LocationCacheSize: locationCacheSize,
		MaxAges:           maxAges,

		KafkaEnabled:      kafkaEnabled,
		KafkaBrokers:      parseBrokers(brokers),
		KafkaRefreshTopic: sharedcfg.EnvOrDefault("KAFKA_REFRESH_TOPIC", "city-explorer-refresh"),

		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	switch cfg.StoreDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required when STORE_DRIVER is postgres")
		}
	case DriverSQLite:
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER %q", cfg.StoreDriver)
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaRefreshTopic == "" {
		return nil, errors.New("KAFKA_REFRESH_TOPIC is required")
	}

	return cfg, nil
}

// httpAddr honors PORT, which hosting platforms set, before HTTP_ADDR.
func httpAddr() string {
	if port := os.Getenv("PORT"); port != "" {
		return ":" + port
	}
	return sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080")
}

func parseBrokers(s string) []string {
	if s == "" {
		return nil
	}
	return sharedcfg.ParseBrokers(s)
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseLocationCacheSize() (int, error) {
	s := os.Getenv("LOCATION_CACHE_SIZE")
	if s == "" {
		return 1000, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.New("invalid LOCATION_CACHE_SIZE")
	}
	return n, nil
}
