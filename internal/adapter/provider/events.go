package provider

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/couchcryptid/city-explorer-service/internal/domain"
	"github.com/couchcryptid/city-explorer-service/internal/observability"
)

// Events implements domain.EventProvider using the Eventbrite search API.
type Events struct {
	http  httpClient
	token string
}

// NewEvents creates an Eventbrite client.
func NewEvents(token, baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Events {
	return &Events{
		http:  newHTTPClient(NameEventbrite, baseURL, timeout, logger, metrics),
		token: token,
	}
}

// SearchEvents returns events near address.
func (e *Events) SearchEvents(ctx context.Context, address string) ([]domain.Event, error) {
	params := url.Values{
		"token":            {e.token},
		"location.address": {address},
	}
	return fetch(ctx, &e.http, e.http.baseURL+"?"+params.Encode(), nil, mapEvents)
}

func mapEvents(p eventsResponse) ([]domain.Event, error) {
	if p.Events == nil {
		return nil, required("events")
	}
	out := make([]domain.Event, 0, len(*p.Events))
	for _, ev := range *p.Events {
		day, err := domain.FormatLocalDay(ev.Start.Local)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Event{
			Link:      ev.URL,
			Name:      ev.Name.Text,
			EventDate: day,
			Summary:   ev.Summary,
		})
	}
	return out, nil
}

// Eventbrite API response types.

type eventsResponse struct {
	Events *[]eventItem `json:"events"`
}

type eventItem struct {
	URL  string `json:"url"`
	Name struct {
		Text string `json:"text"`
	} `json:"name"`
	Start struct {
		Local string `json:"local"`
	} `json:"start"`
	Summary string `json:"summary"`
}
