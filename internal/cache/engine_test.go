package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/city-explorer-service/internal/domain"
	"github.com/couchcryptid/city-explorer-service/internal/observability"
)

var seattle = domain.Location{
	ID:             7,
	SearchQuery:    "98103",
	FormattedQuery: "Seattle, WA",
	Latitude:       47.66,
	Longitude:      -122.35,
}

// weatherSource is a counting provider double.
type weatherSource struct {
	mu    sync.Mutex
	calls int
	items []domain.Weather
	err   error
	gate  chan struct{} // when set, fetch blocks until it is closed
}

func (w *weatherSource) fetch(_ context.Context, _ domain.Location) ([]domain.Weather, error) {
	if w.gate != nil {
		<-w.gate
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	if w.err != nil {
		return nil, w.err
	}
	out := make([]domain.Weather, len(w.items))
	copy(out, w.items)
	return out, nil
}

func (w *weatherSource) callCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.calls
}

func threeDays() []domain.Weather {
	return []domain.Weather{
		{Forecast: "Light rain in the morning.", Time: "Fri Apr 26 2024"},
		{Forecast: "Partly cloudy throughout the day.", Time: "Sat Apr 27 2024"},
		{Forecast: "Clear throughout the day.", Time: "Sun Apr 28 2024"},
	}
}

func weatherDescriptor(src *weatherSource) Descriptor[domain.Weather] {
	cat, _ := domain.CategoryByName(domain.Categories(nil), domain.CategoryWeather)
	return Descriptor[domain.Weather]{
		Category: cat,
		Scan:     domain.ScanWeather,
		Fetch:    src.fetch,
	}
}

// recordingPublisher captures refresh events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.RefreshEvent
	err    error
}

func (p *recordingPublisher) PublishRefresh(_ context.Context, ev domain.RefreshEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type engineFixture struct {
	store   *memStore
	clock   *clockwork.FakeClock
	metrics *observability.Metrics
	engine  *Engine
}

func newEngineFixture(opts ...Option) engineFixture {
	store := newMemStore()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 4, 26, 9, 0, 0, 0, time.UTC))
	metrics := observability.NewMetricsForTesting()
	opts = append([]Option{WithClock(clock)}, opts...)
	return engineFixture{
		store:   store,
		clock:   clock,
		metrics: metrics,
		engine:  NewEngine(store, discardLogger(), metrics, opts...),
	}
}

func TestResolve_MissFetchesAndPersists(t *testing.T) {
	f := newEngineFixture()
	src := &weatherSource{items: threeDays()}
	d := weatherDescriptor(src)

	rows, err := Resolve(context.Background(), f.engine, d, seattle)
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, 1, src.callCount())
	for _, r := range rows {
		assert.Equal(t, seattle.ID, r.LocationID)
		assert.Equal(t, f.clock.Now().UnixMilli(), r.CreatedAt)
		assert.NotZero(t, r.ID)
	}

	// The returned records are exactly what was stored.
	res, err := Lookup(context.Background(), f.engine, d, seattle.ID)
	require.NoError(t, err)
	assert.Equal(t, Hit, res.Outcome)
	assert.Equal(t, rows, res.Rows)
	assert.Equal(t, 3, f.store.count(domain.WeathersTable.Name))
	assert.Equal(t, 0, f.store.counter(f.store.deletes, domain.WeathersTable.Name))
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.CacheLookups.WithLabelValues("weather", "miss")), 0)
}

func TestResolve_HitWithinWindow(t *testing.T) {
	f := newEngineFixture()
	src := &weatherSource{items: threeDays()}
	d := weatherDescriptor(src)

	first, err := Resolve(context.Background(), f.engine, d, seattle)
	require.NoError(t, err)

	f.clock.Advance(5 * time.Second)

	second, err := Resolve(context.Background(), f.engine, d, seattle)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, src.callCount(), "hit must not call the provider")
	assert.Equal(t, 0, f.store.counter(f.store.deletes, domain.WeathersTable.Name))
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.CacheLookups.WithLabelValues("weather", "hit")), 0)
}

func TestResolve_ExactlyMaxAgeIsFresh(t *testing.T) {
	f := newEngineFixture()
	src := &weatherSource{items: threeDays()}
	d := weatherDescriptor(src)

	_, err := Resolve(context.Background(), f.engine, d, seattle)
	require.NoError(t, err)

	f.clock.Advance(domain.WeatherMaxAge)

	res, err := Lookup(context.Background(), f.engine, d, seattle.ID)
	require.NoError(t, err)
	assert.Equal(t, Hit, res.Outcome)

	f.clock.Advance(time.Millisecond)

	res, err = Lookup(context.Background(), f.engine, d, seattle.ID)
	require.NoError(t, err)
	assert.Equal(t, Stale, res.Outcome)
	assert.Empty(t, res.Rows, "stale results never carry rows")
}

func TestResolve_StaleEvictsThenRefetches(t *testing.T) {
	f := newEngineFixture()
	src := &weatherSource{items: threeDays()}
	d := weatherDescriptor(src)

	first, err := Resolve(context.Background(), f.engine, d, seattle)
	require.NoError(t, err)

	f.clock.Advance(20 * time.Second)
	src.items = threeDays()[:2]

	second, err := Resolve(context.Background(), f.engine, d, seattle)
	require.NoError(t, err)

	assert.Equal(t, 2, src.callCount())
	assert.Equal(t, 1, f.store.counter(f.store.deletes, domain.WeathersTable.Name))
	require.Len(t, second, 2)
	for _, r := range second {
		assert.Equal(t, f.clock.Now().UnixMilli(), r.CreatedAt)
		assert.Greater(t, r.ID, first[len(first)-1].ID, "expired rows must not be returned")
	}
	assert.Equal(t, 2, f.store.count(domain.WeathersTable.Name))
	assert.InDelta(t, 3, testutil.ToFloat64(f.metrics.CacheEvictions.WithLabelValues("weather")), 0)
}

func TestLookup_HasNoSideEffects(t *testing.T) {
	f := newEngineFixture()
	src := &weatherSource{items: threeDays()}
	d := weatherDescriptor(src)

	res, err := Lookup(context.Background(), f.engine, d, seattle.ID)
	require.NoError(t, err)
	assert.Equal(t, Miss, res.Outcome)

	_, err = Fetch(context.Background(), f.engine, d, seattle)
	require.NoError(t, err)
	f.clock.Advance(time.Minute)

	res, err = Lookup(context.Background(), f.engine, d, seattle.ID)
	require.NoError(t, err)
	assert.Equal(t, Stale, res.Outcome)
	assert.Equal(t, 0, f.store.counter(f.store.deletes, domain.WeathersTable.Name))
	assert.Equal(t, 1, src.callCount())
}

func TestResolve_EmptyProviderIsNotAnError(t *testing.T) {
	f := newEngineFixture()
	src := &weatherSource{}
	d := weatherDescriptor(src)

	rows, err := Resolve(context.Background(), f.engine, d, seattle)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
	assert.Equal(t, 0, f.store.count(domain.WeathersTable.Name))

	// Nothing was cached, so the next read is a fresh miss.
	_, err = Resolve(context.Background(), f.engine, d, seattle)
	require.NoError(t, err)
	assert.Equal(t, 2, src.callCount())
}

func TestResolve_ProviderErrorPropagates(t *testing.T) {
	f := newEngineFixture()
	src := &weatherSource{err: &domain.ProviderError{Provider: "darksky", StatusCode: 503, Err: errBoom}}
	d := weatherDescriptor(src)

	_, err := Resolve(context.Background(), f.engine, d, seattle)
	require.Error(t, err)

	var pe *domain.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 503, pe.StatusCode)
	assert.Equal(t, 0, f.store.count(domain.WeathersTable.Name))
}

func TestResolve_StoreErrorPropagates(t *testing.T) {
	tests := []struct {
		name   string
		failOn string
		stale  bool
	}{
		{name: "select", failOn: "select"},
		{name: "insert", failOn: "insert"},
		{name: "delete", failOn: "delete", stale: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEngineFixture()
			src := &weatherSource{items: threeDays()}
			d := weatherDescriptor(src)

			if tt.stale {
				_, err := Resolve(context.Background(), f.engine, d, seattle)
				require.NoError(t, err)
				f.clock.Advance(time.Minute)
			}
			f.store.failOn = tt.failOn

			_, err := Resolve(context.Background(), f.engine, d, seattle)
			var se *domain.StoreError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.failOn, se.Op)
		})
	}
}

func TestResolve_ConcurrentRefetchIsCollapsed(t *testing.T) {
	f := newEngineFixture()
	src := &weatherSource{items: threeDays()}
	d := weatherDescriptor(src)

	_, err := Resolve(context.Background(), f.engine, d, seattle)
	require.NoError(t, err)
	f.clock.Advance(20 * time.Second)

	src.gate = make(chan struct{})
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Resolve(context.Background(), f.engine, d, seattle)
			errs <- err
		}()
	}
	close(src.gate)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 2, src.callCount(), "one initial fetch plus one shared refetch")
	assert.Equal(t, 1, f.store.counter(f.store.deletes, domain.WeathersTable.Name))
	assert.Equal(t, 3, f.store.count(domain.WeathersTable.Name), "no duplicate rows")
}

func TestResolve_FailedInsertDiscardsPartialBatch(t *testing.T) {
	f := newEngineFixture()
	src := &weatherSource{items: threeDays()}
	d := weatherDescriptor(src)
	f.store.failInsertNth = 2

	_, err := Resolve(context.Background(), f.engine, d, seattle)
	var se *domain.StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 0, f.store.count(domain.WeathersTable.Name), "first row of the batch is removed")

	res, err := Lookup(context.Background(), f.engine, d, seattle.ID)
	require.NoError(t, err)
	assert.Equal(t, Miss, res.Outcome)

	rows, err := Resolve(context.Background(), f.engine, d, seattle)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, 2, src.callCount(), "next read refetches the full batch")
}

func TestResolve_CancelledCallerDoesNotWaitForFlight(t *testing.T) {
	f := newEngineFixture()
	src := &weatherSource{items: threeDays(), gate: make(chan struct{})}
	d := weatherDescriptor(src)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Resolve(ctx, f.engine, d, seattle)
	require.ErrorIs(t, err, context.Canceled)

	// The detached refetch still completes and persists for later readers.
	close(src.gate)
	require.Eventually(t, func() bool {
		return f.store.count(domain.WeathersTable.Name) == 3
	}, time.Second, 5*time.Millisecond)

	rows, err := Resolve(context.Background(), f.engine, d, seattle)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, 1, src.callCount())
}

func TestResolve_PublishesRefreshEvents(t *testing.T) {
	pub := &recordingPublisher{}
	f := newEngineFixture(WithPublisher(pub))
	src := &weatherSource{items: threeDays()}
	d := weatherDescriptor(src)

	_, err := Resolve(context.Background(), f.engine, d, seattle)
	require.NoError(t, err)
	f.clock.Advance(time.Second)
	_, err = Resolve(context.Background(), f.engine, d, seattle) // hit
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	_, err = Resolve(context.Background(), f.engine, d, seattle)
	require.NoError(t, err)

	require.Len(t, pub.events, 2)
	assert.Equal(t, domain.RefreshEvent{
		Category:   "weather",
		LocationID: seattle.ID,
		Reason:     domain.RefreshMiss,
		Records:    3,
		FetchedAt:  time.Date(2024, 4, 26, 9, 0, 0, 0, time.UTC),
	}, pub.events[0])
	assert.Equal(t, domain.RefreshStale, pub.events[1].Reason)
	assert.InDelta(t, 2, testutil.ToFloat64(f.metrics.RefreshPublished), 0)
}

func TestResolve_PublishFailureDoesNotFailRead(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	f := newEngineFixture(WithPublisher(pub))
	src := &weatherSource{items: threeDays()}

	rows, err := Resolve(context.Background(), f.engine, weatherDescriptor(src), seattle)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.RefreshPublishErrors), 0)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "hit", Hit.String())
	assert.Equal(t, "miss", Miss.String())
	assert.Equal(t, "stale", Stale.String())
	assert.Equal(t, "unknown", Outcome(0).String())
}

func TestEvict_ForcesRefetch(t *testing.T) {
	f := newEngineFixture()
	src := &weatherSource{items: threeDays()}
	d := weatherDescriptor(src)

	_, err := Resolve(context.Background(), f.engine, d, seattle)
	require.NoError(t, err)

	n, err := f.engine.Evict(context.Background(), d.Category, seattle.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	_, err = Resolve(context.Background(), f.engine, d, seattle)
	require.NoError(t, err)
	assert.Equal(t, 2, src.callCount())
}
