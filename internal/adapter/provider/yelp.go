package provider

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/city-explorer-service/internal/domain"
	"github.com/couchcryptid/city-explorer-service/internal/observability"
)

// Yelp implements domain.BusinessProvider using the Yelp Fusion search API.
type Yelp struct {
	http   httpClient
	apiKey string
}

// NewYelp creates a Yelp client.
func NewYelp(apiKey, baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Yelp {
	return &Yelp{
		http:   newHTTPClient(NameYelp, baseURL, timeout, logger, metrics),
		apiKey: apiKey,
	}
}

// SearchBusinesses returns rated businesses around a coordinate.
func (y *Yelp) SearchBusinesses(ctx context.Context, lat, lng float64) ([]domain.BusinessReview, error) {
	params := url.Values{
		"latitude":  {strconv.FormatFloat(lat, 'f', -1, 64)},
		"longitude": {strconv.FormatFloat(lng, 'f', -1, 64)},
	}
	header := http.Header{"Authorization": {"Bearer " + y.apiKey}}
	return fetch(ctx, &y.http, y.http.baseURL+"?"+params.Encode(), header, mapBusinesses)
}

func mapBusinesses(p businessesResponse) ([]domain.BusinessReview, error) {
	if p.Businesses == nil {
		return nil, required("businesses")
	}
	out := make([]domain.BusinessReview, 0, len(*p.Businesses))
	for _, b := range *p.Businesses {
		out = append(out, domain.BusinessReview{
			Name:     b.Name,
			Rating:   b.Rating,
			Price:    b.Price,
			URL:      b.URL,
			ImageURL: b.ImageURL,
		})
	}
	return out, nil
}

// Yelp Fusion API response types.

type businessesResponse struct {
	Businesses *[]business `json:"businesses"`
}

type business struct {
	Name     string  `json:"name"`
	Rating   float64 `json:"rating"`
	Price    string  `json:"price"`
	URL      string  `json:"url"`
	ImageURL string  `json:"image_url"`
}
