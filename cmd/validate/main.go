// Command validate runs end-to-end checks against a running explorer service:
// location resolution, category payload shapes, cache reuse on repeated reads,
// and the combined explore view. When -mock-url points at cmd/mockprovider,
// cache reuse is also confirmed from the provider side.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -api-url http://localhost:8080 \
//	  -mock-url http://localhost:9090 \
//	  -query "lynnwood"
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/couchcryptid/city-explorer-service/internal/domain"
)

// zeroResultsQuery matches cmd/mockprovider's ZERO_RESULTS trigger.
const zeroResultsQuery = "nowhere"

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	apiURL := flag.String("api-url", "http://localhost:8080", "base URL of the explorer service")
	mockURL := flag.String("mock-url", "", "base URL of cmd/mockprovider (optional)")
	query := flag.String("query", "lynnwood", "search text to resolve")
	timeout := flag.Duration("timeout", 30*time.Second, "per-request timeout")
	flag.Parse()

	if *apiURL == "" || *query == "" {
		flag.Usage()
		os.Exit(1)
	}

	v := &validator{
		out:     os.Stdout,
		client:  &http.Client{Timeout: *timeout},
		apiURL:  *apiURL,
		mockURL: *mockURL,
	}
	if code := v.run(*query); code != 0 {
		os.Exit(code)
	}
}

type validator struct {
	out     io.Writer
	client  *http.Client
	apiURL  string
	mockURL string
}

func (v *validator) run(query string) int {
	fmt.Fprintln(v.out, "=== City Explorer End-to-End Validation ===")
	fmt.Fprintln(v.out)

	locPhase, loc := v.validateLocation(query)
	phases := []*phase{locPhase}
	if loc.ID > 0 {
		shapes, first := v.validateCategoryShapes(loc)
		phases = append(phases,
			shapes,
			v.validateCacheReuse(loc, first),
			v.validateExplore(query, loc),
		)
	}

	// ── Report results ──
	fmt.Fprintln(v.out)
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(v.out, "  %-42s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(v.out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(v.out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(v.out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(v.out, "\nValidation FAILED.")
	return 1
}

// ── HTTP helpers ──

type errorBody struct {
	Status       int    `json:"status"`
	ResponseText string `json:"responseText"`
}

// get fetches path with params and decodes a 200 body into out. For any
// other status the error payload is returned instead.
func (v *validator) get(path string, params url.Values, out any) (int, errorBody, error) {
	u := v.apiURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	resp, err := v.client.Get(u)
	if err != nil {
		return 0, errorBody{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var eb errorBody
		if err := json.NewDecoder(resp.Body).Decode(&eb); err != nil {
			return resp.StatusCode, errorBody{}, fmt.Errorf("decode error body: %w", err)
		}
		return resp.StatusCode, eb, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, errorBody{}, fmt.Errorf("decode body: %w", err)
	}
	return resp.StatusCode, errorBody{}, nil
}

func locationParams(loc domain.Location) url.Values {
	return url.Values{
		"data[id]":              {strconv.FormatInt(loc.ID, 10)},
		"data[search_query]":    {loc.SearchQuery},
		"data[formatted_query]": {loc.FormattedQuery},
		"data[latitude]":        {strconv.FormatFloat(loc.Latitude, 'f', -1, 64)},
		"data[longitude]":       {strconv.FormatFloat(loc.Longitude, 'f', -1, 64)},
	}
}

func (v *validator) providerStats() (map[string]int, error) {
	resp, err := v.client.Get(v.mockURL + "/stats")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	stats := map[string]int{}
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// ── Phase 1: Location Resolution ──
// Resolves the query twice and checks the row is reused, then checks the
// error payloads for an unknown place and a missing query.

func (v *validator) validateLocation(query string) (*phase, domain.Location) {
	p := &phase{name: "Phase 1: Location Resolution"}

	var first, second domain.Location
	status, eb, err := v.get("/location", url.Values{"data": {query}}, &first)
	if err != nil {
		p.errorf("GET /location: %v", err)
		return p, domain.Location{}
	}
	if status != http.StatusOK {
		p.errorf("GET /location: status %d (%s)", status, eb.ResponseText)
		return p, domain.Location{}
	}
	checkLocation(p, query, first)

	if _, _, err := v.get("/location", url.Values{"data": {query}}, &second); err != nil {
		p.errorf("second GET /location: %v", err)
	} else if second != first {
		p.errorf("second resolve returned %+v, want %+v", second, first)
	}

	status, eb, err = v.get("/location", url.Values{"data": {zeroResultsQuery}}, &domain.Location{})
	switch {
	case err != nil:
		p.errorf("GET /location?data=%s: %v", zeroResultsQuery, err)
	case status != http.StatusNotFound:
		p.errorf("unknown place: status %d, want 404", status)
	case eb.ResponseText != "No location found":
		p.errorf("unknown place: responseText %q", eb.ResponseText)
	}

	status, eb, err = v.get("/location", nil, &domain.Location{})
	switch {
	case err != nil:
		p.errorf("GET /location without data: %v", err)
	case status != http.StatusBadRequest:
		p.errorf("missing query: status %d, want 400", status)
	case eb.Status != http.StatusBadRequest:
		p.errorf("missing query: payload status %d, want 400", eb.Status)
	}

	return p, first
}

func checkLocation(p *phase, query string, loc domain.Location) {
	if loc.ID <= 0 {
		p.errorf("location id %d is not positive", loc.ID)
	}
	if loc.SearchQuery != query {
		p.errorf("search_query %q, want %q", loc.SearchQuery, query)
	}
	if loc.FormattedQuery == "" {
		p.errorf("formatted_query is empty")
	}
	if loc.Latitude < -90 || loc.Latitude > 90 {
		p.errorf("latitude %g out of range", loc.Latitude)
	}
	if loc.Longitude < -180 || loc.Longitude > 180 {
		p.errorf("longitude %g out of range", loc.Longitude)
	}
}

// ── Phase 2: Category Shapes ──
// Reads every category for the location and checks required fields.

type categoryRows struct {
	weather []domain.Weather
	events  []domain.Event
	movies  []domain.Movie
	yelp    []domain.BusinessReview
}

func (v *validator) validateCategoryShapes(loc domain.Location) (*phase, categoryRows) {
	p := &phase{name: "Phase 2: Category Shapes"}
	params := locationParams(loc)
	var rows categoryRows

	readCategory(p, v, "/weather", params, &rows.weather)
	readCategory(p, v, "/events", params, &rows.events)
	readCategory(p, v, "/movies", params, &rows.movies)
	readCategory(p, v, "/yelp", params, &rows.yelp)

	for i, w := range rows.weather {
		if w.Forecast == "" {
			p.errorf("weather[%d]: forecast is empty", i)
		}
		if _, err := time.Parse(domain.DayLayout, w.Time); err != nil {
			p.errorf("weather[%d]: time %q is not a day string", i, w.Time)
		}
		checkCreatedAt(p, "weather", i, w.CreatedAt)
	}
	for i, e := range rows.events {
		if e.Name == "" {
			p.errorf("events[%d]: name is empty", i)
		}
		if _, err := time.Parse(domain.DayLayout, e.EventDate); err != nil {
			p.errorf("events[%d]: event_date %q is not a day string", i, e.EventDate)
		}
		checkCreatedAt(p, "events", i, e.CreatedAt)
	}
	for i, m := range rows.movies {
		if m.Title == "" {
			p.errorf("movies[%d]: title is empty", i)
		}
		checkCreatedAt(p, "movies", i, m.CreatedAt)
	}
	for i, b := range rows.yelp {
		if b.Name == "" {
			p.errorf("yelp[%d]: name is empty", i)
		}
		checkCreatedAt(p, "yelp", i, b.CreatedAt)
	}

	status, _, err := v.get("/weather", nil, &[]domain.Weather{})
	if err != nil {
		p.errorf("GET /weather without data: %v", err)
	} else if status != http.StatusBadRequest {
		p.errorf("GET /weather without data: status %d, want 400", status)
	}

	return p, rows
}

func readCategory[T any](p *phase, v *validator, path string, params url.Values, out *[]T) {
	status, eb, err := v.get(path, params, out)
	if err != nil {
		p.errorf("GET %s: %v", path, err)
		return
	}
	if status != http.StatusOK {
		p.errorf("GET %s: status %d (%s)", path, status, eb.ResponseText)
		return
	}
	if *out == nil {
		p.errorf("GET %s: body is null, want an array", path)
	}
}

func checkCreatedAt(p *phase, category string, i int, createdAt int64) {
	if createdAt <= 0 {
		p.errorf("%s[%d]: created_at %d is not a timestamp", category, i, createdAt)
	}
}

// ── Phase 3: Cache Reuse ──
// A second read inside the freshness window must return the stored rows
// unchanged and must not reach the providers.

func (v *validator) validateCacheReuse(loc domain.Location, first categoryRows) *phase {
	p := &phase{name: "Phase 3: Cache Reuse"}
	params := locationParams(loc)

	var before map[string]int
	if v.mockURL != "" {
		var err error
		if before, err = v.providerStats(); err != nil {
			p.errorf("read provider stats: %v", err)
		}
	}

	var again categoryRows
	readCategory(p, v, "/weather", params, &again.weather)
	readCategory(p, v, "/events", params, &again.events)
	readCategory(p, v, "/movies", params, &again.movies)
	readCategory(p, v, "/yelp", params, &again.yelp)

	compareRows(p, "weather", first.weather, again.weather, func(w domain.Weather) (int64, int64) { return w.ID, w.CreatedAt })
	compareRows(p, "events", first.events, again.events, func(e domain.Event) (int64, int64) { return e.ID, e.CreatedAt })
	compareRows(p, "movies", first.movies, again.movies, func(m domain.Movie) (int64, int64) { return m.ID, m.CreatedAt })
	compareRows(p, "yelp", first.yelp, again.yelp, func(b domain.BusinessReview) (int64, int64) { return b.ID, b.CreatedAt })

	if before != nil {
		after, err := v.providerStats()
		if err != nil {
			p.errorf("read provider stats: %v", err)
			return p
		}
		// Empty results are not stored, so those categories refetch by design.
		for name, empty := range map[string]bool{
			"weather": len(first.weather) == 0,
			"events":  len(first.events) == 0,
			"movies":  len(first.movies) == 0,
			"yelp":    len(first.yelp) == 0,
		} {
			if !empty && after[name] != before[name] {
				p.errorf("%s: provider called %d times on a cached read", name, after[name]-before[name])
			}
		}
	}
	return p
}

func compareRows[T any](p *phase, category string, first, again []T, key func(T) (int64, int64)) {
	if len(first) != len(again) {
		p.errorf("%s: first read %d rows, second read %d", category, len(first), len(again))
		return
	}
	for i := range first {
		id1, at1 := key(first[i])
		id2, at2 := key(again[i])
		if id1 != id2 || at1 != at2 {
			p.errorf("%s[%d]: row changed between reads (id %d→%d, created_at %d→%d)", category, i, id1, id2, at1, at2)
		}
	}
}

// ── Phase 4: Explore ──

func (v *validator) validateExplore(query string, loc domain.Location) *phase {
	p := &phase{name: "Phase 4: Explore"}

	var body map[string]json.RawMessage
	status, eb, err := v.get("/explore", url.Values{"data": {query}}, &body)
	if err != nil {
		p.errorf("GET /explore: %v", err)
		return p
	}
	if status != http.StatusOK {
		p.errorf("GET /explore: status %d (%s)", status, eb.ResponseText)
		return p
	}

	for _, key := range []string{"location", "weather", "events", "movies", "yelp"} {
		if _, ok := body[key]; !ok {
			p.errorf("explore: missing %q", key)
		}
	}
	if raw, ok := body["errors"]; ok {
		p.errorf("explore: category errors %s", raw)
	}

	var got domain.Location
	if err := json.Unmarshal(body["location"], &got); err != nil {
		p.errorf("explore: location: %v", err)
	} else if got != loc {
		p.errorf("explore: location %+v, want %+v", got, loc)
	}

	status, _, err = v.get("/explore", url.Values{"data": {query}, "categories": {"weather,traffic"}}, &body)
	if err != nil {
		p.errorf("GET /explore with unknown category: %v", err)
	} else if status != http.StatusBadRequest {
		p.errorf("explore with unknown category: status %d, want 400", status)
	}
	return p
}
