package domain

import "context"

// Location is a geocoded search query.
type Location struct {
	ID             int64   `json:"id"`
	SearchQuery    string  `json:"search_query"`
	FormattedQuery string  `json:"formatted_query"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
}

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	FormattedAddress string
	Lat              float64
	Lng              float64
}

// Geocoder resolves free text into candidate places.
type Geocoder interface {
	// ForwardGeocode returns the provider's candidates for query, best first.
	// An empty slice means the provider found nothing.
	ForwardGeocode(ctx context.Context, query string) ([]GeocodingResult, error)
}

// NewLocation builds an unsaved location from a search query and its top geocoding result.
func NewLocation(query string, r GeocodingResult) Location {
	return Location{
		SearchQuery:    query,
		FormattedQuery: r.FormattedAddress,
		Latitude:       r.Lat,
		Longitude:      r.Lng,
	}
}

// Values returns the insert values in LocationsTable column order.
func (l Location) Values() []any {
	return []any{l.SearchQuery, l.FormattedQuery, l.Latitude, l.Longitude}
}

// ScanLocation reads a row selected as id followed by LocationsTable columns.
func ScanLocation(s RowScanner) (Location, error) {
	var l Location
	err := s.Scan(&l.ID, &l.SearchQuery, &l.FormattedQuery, &l.Latitude, &l.Longitude)
	return l, err
}
