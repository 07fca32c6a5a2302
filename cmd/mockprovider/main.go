// Command mockprovider serves deterministic stand-ins for the five upstream
// APIs the explorer calls, so the service and cmd/validate can run without
// real keys. Point the service at it with:
//
//	GEOCODE_BASE_URL=http://localhost:9090/geocode
//	WEATHER_BASE_URL=http://localhost:9090/forecast
//	EVENTS_BASE_URL=http://localhost:9090/events
//	MOVIES_BASE_URL=http://localhost:9090/movies
//	YELP_BASE_URL=http://localhost:9090/yelp
//
// GET /stats reports how many requests each provider has answered.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"hash/fnv"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"
)

// ZeroResultsQuery geocodes to nothing.
const ZeroResultsQuery = "nowhere"

var baseDate = time.Date(2024, time.April, 26, 0, 0, 0, 0, time.UTC)

func main() {
	addr := flag.String("addr", ":9090", "listen address")
	days := flag.Int("days", 8, "forecast days per location")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := newMock(*days)
	srv := &http.Server{
		Addr:              *addr,
		Handler:           m.routes(logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("mock providers listening", "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}

type mock struct {
	days int

	mu    sync.Mutex
	stats map[string]int
}

func newMock(days int) *mock {
	return &mock{days: days, stats: make(map[string]int)}
}

func (m *mock) routes(logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /geocode", m.count("geocode", m.geocode))
	mux.HandleFunc("GET /forecast/", m.count("weather", m.forecast))
	mux.HandleFunc("GET /events", m.count("events", m.events))
	mux.HandleFunc("GET /movies", m.count("movies", m.movies))
	mux.HandleFunc("GET /yelp", m.count("yelp", m.yelp))
	mux.HandleFunc("GET /stats", m.statsHandler)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
		mux.ServeHTTP(w, r)
	})
}

func (m *mock) count(name string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.stats[name]++
		m.mu.Unlock()
		h(w, r)
	}
}

func (m *mock) statsHandler(w http.ResponseWriter, _ *http.Request) {
	m.mu.Lock()
	snapshot := make(map[string]int, len(m.stats))
	for k, v := range m.stats {
		snapshot[k] = v
	}
	m.mu.Unlock()
	writeJSON(w, snapshot)
}

func (m *mock) geocode(w http.ResponseWriter, r *http.Request) {
	address := strings.TrimSpace(r.URL.Query().Get("address"))
	if address == "" || strings.EqualFold(address, ZeroResultsQuery) {
		writeJSON(w, map[string]any{"status": "ZERO_RESULTS", "results": []any{}})
		return
	}
	lat, lng := coordsFor(address)
	writeJSON(w, map[string]any{
		"status": "OK",
		"results": []any{map[string]any{
			"formatted_address": formatAddress(address),
			"geometry":          map[string]any{"location": map[string]any{"lat": lat, "lng": lng}},
		}},
	})
}

func (m *mock) forecast(w http.ResponseWriter, _ *http.Request) {
	summaries := []string{"Rain throughout the day.", "Partly cloudy.", "Clear.", "Light drizzle."}
	data := make([]any, 0, m.days)
	for i := range m.days {
		data = append(data, map[string]any{
			"summary": summaries[i%len(summaries)],
			"time":    baseDate.AddDate(0, 0, i).Unix(),
		})
	}
	writeJSON(w, map[string]any{"daily": map[string]any{"data": data}})
}

func (m *mock) events(w http.ResponseWriter, r *http.Request) {
	place := r.URL.Query().Get("location.address")
	events := make([]any, 0, 3)
	for i := range 3 {
		start := baseDate.AddDate(0, 0, i).Add(19 * time.Hour)
		events = append(events, map[string]any{
			"url":     fmt.Sprintf("https://events.example.com/%d", i+1),
			"name":    map[string]any{"text": fmt.Sprintf("Event %d near %s", i+1, place)},
			"start":   map[string]any{"local": start.Format("2006-01-02T15:04:05")},
			"summary": "An evening out.",
		})
	}
	writeJSON(w, map[string]any{"events": events})
}

func (m *mock) movies(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{"results": []any{
		map[string]any{
			"title": "Dune: Part Two", "overview": "Paul unites with the Fremen.",
			"poster_path": "/dune2.jpg", "release_date": "2024-03-01",
			"vote_count": 5120, "vote_average": 8.2, "popularity": 412.7,
		},
		map[string]any{
			"title": "Civil War", "overview": "Journalists travel across a fractured America.",
			"poster_path": "", "release_date": "2024-04-12",
			"vote_count": 980, "vote_average": 7.1, "popularity": 201.3,
		},
	}})
}

func (m *mock) yelp(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{"businesses": []any{
		map[string]any{"name": "Paseo", "rating": 4.5, "price": "$$", "url": "https://yelp.example.com/paseo", "image_url": "https://img.example.com/paseo.jpg"},
		map[string]any{"name": "Un Bien", "rating": 4.5, "price": "$", "url": "https://yelp.example.com/un-bien", "image_url": ""},
	}})
}

// coordsFor maps a query onto stable coordinates inside the Puget Sound area.
func coordsFor(q string) (float64, float64) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(q)))
	v := h.Sum32()
	lat := 47.0 + float64(v%10000)/10000
	lng := -122.9 + float64((v/10000)%10000)/10000
	return lat, lng
}

func formatAddress(q string) string {
	words := strings.Fields(q)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ") + ", WA, USA"
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}
