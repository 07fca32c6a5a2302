// Package provider implements the remote data providers: Google geocoding,
// Dark Sky forecasts, Eventbrite events, TMDB now playing and Yelp businesses.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/couchcryptid/city-explorer-service/internal/domain"
	"github.com/couchcryptid/city-explorer-service/internal/observability"
)

// Provider names, also used as metric labels.
const (
	NameGoogle     = "google"
	NameDarkSky    = "darksky"
	NameEventbrite = "eventbrite"
	NameTMDB       = "tmdb"
	NameYelp       = "yelp"
)

// Request outcomes.
const (
	outcomeSuccess = "success"
	outcomeEmpty   = "empty"
	outcomeError   = "error"
)

// maxErrorBody caps how much of a failed response is kept in the error.
const maxErrorBody = 512

var (
	errMalformed = errors.New("malformed payload")
	tracer       = otel.Tracer("github.com/couchcryptid/city-explorer-service/internal/adapter/provider")
)

// httpClient is the transport shared by every provider: one bounded-timeout
// GET that decodes a JSON body.
type httpClient struct {
	name       string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

func newHTTPClient(name, baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) httpClient {
	return httpClient{
		name:       name,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		metrics:    metrics,
	}
}

func (c *httpClient) fail(err error, status int) error {
	return &domain.ProviderError{Provider: c.name, StatusCode: status, Err: err}
}

// getJSON issues a GET to fullURL and decodes the response into out. Every
// failure is returned as *domain.ProviderError.
func (c *httpClient) getJSON(ctx context.Context, fullURL string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return c.fail(fmt.Errorf("create request: %w", err), 0)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.fail(fmt.Errorf("request: %w", err), 0)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return c.fail(fmt.Errorf("%s API error: %s", c.name, body), resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return c.fail(fmt.Errorf("%w: decode response: %v", errMalformed, err), resp.StatusCode)
	}
	return nil
}

// fetch performs one provider call and maps the decoded payload, recording
// the outcome, latency and a span.
func fetch[P any, T any](ctx context.Context, c *httpClient, fullURL string, header http.Header, mapFn func(P) ([]T, error)) ([]T, error) {
	ctx, span := tracer.Start(ctx, "provider."+c.name, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("provider", c.name))

	start := time.Now()
	items, err := func() ([]T, error) {
		var payload P
		if err := c.getJSON(ctx, fullURL, header, &payload); err != nil {
			return nil, err
		}
		items, err := mapFn(payload)
		if err != nil {
			return nil, c.fail(fmt.Errorf("%w: %v", errMalformed, err), http.StatusOK)
		}
		return items, nil
	}()
	c.metrics.ProviderDuration.WithLabelValues(c.name).Observe(time.Since(start).Seconds())

	if err != nil {
		c.metrics.ProviderRequests.WithLabelValues(c.name, outcomeError).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn("provider request failed", "provider", c.name, "error", err)
		return nil, err
	}

	outcome := outcomeSuccess
	if len(items) == 0 {
		outcome = outcomeEmpty
	}
	c.metrics.ProviderRequests.WithLabelValues(c.name, outcome).Inc()
	span.SetAttributes(attribute.Int("items", len(items)))
	return items, nil
}

// required reports a missing top-level key.
func required(key string) error {
	return fmt.Errorf("missing %q", key)
}
