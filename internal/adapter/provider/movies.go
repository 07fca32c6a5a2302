package provider

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/couchcryptid/city-explorer-service/internal/domain"
	"github.com/couchcryptid/city-explorer-service/internal/observability"
)

// Movies implements domain.MovieProvider using the TMDB now playing API.
type Movies struct {
	http   httpClient
	apiKey string
	region string
}

// NewMovies creates a TMDB client. A non-empty region narrows the listing to
// one ISO 3166-1 country for every lookup.
func NewMovies(apiKey, baseURL, region string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Movies {
	return &Movies{
		http:   newHTTPClient(NameTMDB, baseURL, timeout, logger, metrics),
		apiKey: apiKey,
		region: region,
	}
}

// NowPlaying returns the first page of movies in theaters.
func (m *Movies) NowPlaying(ctx context.Context) ([]domain.Movie, error) {
	params := url.Values{
		"api_key":  {m.apiKey},
		"language": {"en-US"},
		"page":     {"1"},
	}
	if m.region != "" {
		params.Set("region", m.region)
	}
	return fetch(ctx, &m.http, m.http.baseURL+"?"+params.Encode(), nil, mapMovies)
}

func mapMovies(p moviesResponse) ([]domain.Movie, error) {
	if p.Results == nil {
		return nil, required("results")
	}
	out := make([]domain.Movie, 0, len(*p.Results))
	for _, r := range *p.Results {
		out = append(out, domain.Movie{
			Title:        r.Title,
			Overview:     r.Overview,
			ImageURL:     domain.PosterURL(r.PosterPath),
			ReleasedOn:   r.ReleaseDate,
			TotalVotes:   r.VoteCount,
			AverageVotes: r.VoteAverage,
			Popularity:   r.Popularity,
		})
	}
	return out, nil
}

// TMDB API response types.

type moviesResponse struct {
	Results *[]movieResult `json:"results"`
}

type movieResult struct {
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	VoteCount   int64   `json:"vote_count"`
	VoteAverage float64 `json:"vote_average"`
	Popularity  float64 `json:"popularity"`
}
