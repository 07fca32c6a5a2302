package provider

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/couchcryptid/city-explorer-service/internal/domain"
	"github.com/couchcryptid/city-explorer-service/internal/observability"
)

// Geocoder implements domain.Geocoder using the Google Geocoding API.
type Geocoder struct {
	http   httpClient
	apiKey string
}

// NewGeocoder creates a Google geocoding client.
func NewGeocoder(apiKey, baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Geocoder {
	return &Geocoder{
		http:   newHTTPClient(NameGoogle, baseURL, timeout, logger, metrics),
		apiKey: apiKey,
	}
}

// ForwardGeocode returns every candidate for query, best first.
func (g *Geocoder) ForwardGeocode(ctx context.Context, query string) ([]domain.GeocodingResult, error) {
	params := url.Values{
		"address": {query},
		"key":     {g.apiKey},
	}
	return fetch(ctx, &g.http, g.http.baseURL+"?"+params.Encode(), nil, mapGeocode)
}

func mapGeocode(p geocodeResponse) ([]domain.GeocodingResult, error) {
	switch p.Status {
	case "", "OK", "ZERO_RESULTS":
	default:
		return nil, fmt.Errorf("status %s: %s", p.Status, p.ErrorMessage)
	}
	if p.Results == nil {
		return nil, required("results")
	}
	out := make([]domain.GeocodingResult, 0, len(*p.Results))
	for _, r := range *p.Results {
		out = append(out, domain.GeocodingResult{
			FormattedAddress: r.FormattedAddress,
			Lat:              r.Geometry.Location.Lat,
			Lng:              r.Geometry.Location.Lng,
		})
	}
	return out, nil
}

// Google Geocoding API response types.

type geocodeResponse struct {
	Results      *[]geocodeResult `json:"results"`
	Status       string           `json:"status"`
	ErrorMessage string           `json:"error_message"`
}

type geocodeResult struct {
	FormattedAddress string `json:"formatted_address"`
	Geometry         struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}
