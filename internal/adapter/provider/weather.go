package provider

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/city-explorer-service/internal/domain"
	"github.com/couchcryptid/city-explorer-service/internal/observability"
)

// Weather implements domain.WeatherProvider using the Dark Sky forecast API.
type Weather struct {
	http   httpClient
	apiKey string
}

// NewWeather creates a Dark Sky client.
func NewWeather(apiKey, baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Weather {
	return &Weather{
		http:   newHTTPClient(NameDarkSky, baseURL, timeout, logger, metrics),
		apiKey: apiKey,
	}
}

// DailyForecast returns one record per forecast day.
func (w *Weather) DailyForecast(ctx context.Context, lat, lng float64) ([]domain.Weather, error) {
	u := fmt.Sprintf("%s/%s/%s,%s", w.http.baseURL, w.apiKey,
		strconv.FormatFloat(lat, 'f', -1, 64), strconv.FormatFloat(lng, 'f', -1, 64))
	return fetch(ctx, &w.http, u, nil, mapForecast)
}

func mapForecast(p forecastResponse) ([]domain.Weather, error) {
	if p.Daily == nil {
		return nil, required("daily")
	}
	out := make([]domain.Weather, 0, len(p.Daily.Data))
	for _, d := range p.Daily.Data {
		out = append(out, domain.Weather{
			Forecast: d.Summary,
			Time:     domain.FormatUnixDay(d.Time),
		})
	}
	return out, nil
}

// Dark Sky API response types.

type forecastResponse struct {
	Daily *struct {
		Data []forecastDay `json:"data"`
	} `json:"daily"`
}

type forecastDay struct {
	Summary string `json:"summary"`
	Time    int64  `json:"time"` // unix seconds
}
