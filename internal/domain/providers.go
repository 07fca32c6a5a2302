package domain

import "context"

// WeatherProvider returns the daily forecast at a coordinate.
type WeatherProvider interface {
	DailyForecast(ctx context.Context, lat, lng float64) ([]Weather, error)
}

// EventProvider searches events around a postal address.
type EventProvider interface {
	SearchEvents(ctx context.Context, address string) ([]Event, error)
}

// MovieProvider lists movies now in theaters. The listing is not location scoped.
type MovieProvider interface {
	NowPlaying(ctx context.Context) ([]Movie, error)
}

// BusinessProvider searches rated businesses around a coordinate.
type BusinessProvider interface {
	SearchBusinesses(ctx context.Context, lat, lng float64) ([]BusinessReview, error)
}
