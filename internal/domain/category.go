package domain

import (
	"fmt"
	"time"
)

// Default staleness windows.
const (
	WeatherMaxAge = 15 * time.Second
	EventsMaxAge  = 24 * time.Hour
	MoviesMaxAge  = 25920 * time.Second
	YelpMaxAge    = 2629743 * time.Second
)

// Category names, also used as route and metric labels.
const (
	CategoryWeather = "weather"
	CategoryEvents  = "events"
	CategoryMovies  = "movies"
	CategoryYelp    = "yelp"
)

// Category describes one cached data set: where it lives and how long it stays fresh.
type Category struct {
	Name   string
	Table  Table
	MaxAge time.Duration
}

// IsStale reports whether rows fetched at fetchedAt must be evicted at now.
// A row exactly MaxAge old is still fresh.
func (c Category) IsStale(fetchedAt, now time.Time) bool {
	return now.Sub(fetchedAt) > c.MaxAge
}

// MaxAges overrides the staleness window per category name.
type MaxAges map[string]time.Duration

// Categories returns the four cached categories, applying any overrides.
func Categories(overrides MaxAges) []Category {
	cats := []Category{
		{Name: CategoryWeather, Table: WeathersTable, MaxAge: WeatherMaxAge},
		{Name: CategoryEvents, Table: EventsTable, MaxAge: EventsMaxAge},
		{Name: CategoryMovies, Table: MoviesTable, MaxAge: MoviesMaxAge},
		{Name: CategoryYelp, Table: YelpsTable, MaxAge: YelpMaxAge},
	}
	for i := range cats {
		if d, ok := overrides[cats[i].Name]; ok && d > 0 {
			cats[i].MaxAge = d
		}
	}
	return cats
}

// CategoryByName finds a category in cats.
func CategoryByName(cats []Category, name string) (Category, error) {
	for _, c := range cats {
		if c.Name == name {
			return c, nil
		}
	}
	return Category{}, fmt.Errorf("%w: unknown category %q", ErrInvalidQuery, name)
}
