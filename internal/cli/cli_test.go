package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/city-explorer-service/internal/domain"
)

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	assert.Equal(t, "explorectl", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"migrate", "resolve", "purge"}, names)
}

func TestNewResolveCmd_Flags(t *testing.T) {
	cmd := NewResolveCmd()

	assert.Equal(t, "resolve <query>", cmd.Use)
	assert.NotNil(t, cmd.RunE)

	tests := []struct {
		flagName string
		defValue string
	}{
		{"categories", "[]"},
		{"location-only", "false"},
	}
	for _, tt := range tests {
		t.Run(tt.flagName, func(t *testing.T) {
			flag := cmd.Flags().Lookup(tt.flagName)
			require.NotNil(t, flag, "--%s flag not found", tt.flagName)
			assert.Equal(t, tt.defValue, flag.DefValue)
		})
	}
}

func TestNewPurgeCmd_Flags(t *testing.T) {
	cmd := NewPurgeCmd()

	assert.Equal(t, "purge", cmd.Use)
	assert.NotNil(t, cmd.RunE)
	require.NotNil(t, cmd.Flags().Lookup("location-id"))
	assert.Equal(t, "0", cmd.Flags().Lookup("location-id").DefValue)
	require.NotNil(t, cmd.Flags().Lookup("category"))
}

func TestPurgeOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    purgeOptions
		wantErr string
	}{
		{"valid", purgeOptions{locationID: 3, categories: []string{"weather"}}, ""},
		{"zero id", purgeOptions{categories: []string{"weather"}}, "--location-id"},
		{"negative id", purgeOptions{locationID: -1, categories: []string{"weather"}}, "--location-id"},
		{"no category", purgeOptions{locationID: 3}, "--category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// sqliteEnv points the configuration at a fresh SQLite file and fake providers.
func sqliteEnv(t *testing.T) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasPrefix(r.URL.Path, "/geocode"):
			_, _ = w.Write([]byte(`{"status":"OK","results":[{"formatted_address":"Seattle, WA","geometry":{"location":{"lat":47.66,"lng":-122.35}}}]}`))
		case strings.HasPrefix(r.URL.Path, "/forecast"):
			_, _ = w.Write([]byte(`{"daily":{"data":[{"summary":"Rain.","time":1714114800},{"summary":"Clear.","time":1714201200}]}}`))
		case strings.HasPrefix(r.URL.Path, "/events"):
			_, _ = w.Write([]byte(`{"events":[]}`))
		case strings.HasPrefix(r.URL.Path, "/movies"):
			_, _ = w.Write([]byte(`{"results":[]}`))
		case strings.HasPrefix(r.URL.Path, "/yelp"):
			_, _ = w.Write([]byte(`{"businesses":[]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "explorer.db"))
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("GEOCODE_BASE_URL", srv.URL+"/geocode")
	t.Setenv("WEATHER_BASE_URL", srv.URL+"/forecast")
	t.Setenv("EVENTS_BASE_URL", srv.URL+"/events")
	t.Setenv("MOVIES_BASE_URL", srv.URL+"/movies")
	t.Setenv("YELP_BASE_URL", srv.URL+"/yelp")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestMigrate_SQLite(t *testing.T) {
	sqliteEnv(t)

	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Equal(t, "schema applied (sqlite)\n", out)

	// Second run is a no-op.
	_, err = run(t, "migrate")
	require.NoError(t, err)
}

func TestResolve_LocationOnly(t *testing.T) {
	sqliteEnv(t)

	out, err := run(t, "resolve", "98103", "--location-only")
	require.NoError(t, err)

	var loc domain.Location
	require.NoError(t, json.Unmarshal([]byte(out), &loc))
	assert.Equal(t, int64(1), loc.ID)
	assert.Equal(t, "98103", loc.SearchQuery)
	assert.Equal(t, "Seattle, WA", loc.FormattedQuery)
}

func TestResolve_JoinsArgsIntoQuery(t *testing.T) {
	sqliteEnv(t)

	out, err := run(t, "resolve", "Lynnwood,", "WA", "--location-only")
	require.NoError(t, err)

	var loc domain.Location
	require.NoError(t, json.Unmarshal([]byte(out), &loc))
	assert.Equal(t, "Lynnwood, WA", loc.SearchQuery)
}

func TestResolve_Categories(t *testing.T) {
	sqliteEnv(t)

	out, err := run(t, "resolve", "98103", "--categories", "weather")
	require.NoError(t, err)

	var ex struct {
		Location domain.Location  `json:"location"`
		Weather  []domain.Weather `json:"weather"`
		Events   []domain.Event   `json:"events"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &ex))
	assert.Equal(t, "Seattle, WA", ex.Location.FormattedQuery)
	require.Len(t, ex.Weather, 2)
	assert.Equal(t, "Rain.", ex.Weather[0].Forecast)
	assert.Nil(t, ex.Events)
}

func TestResolve_UnknownCategory(t *testing.T) {
	sqliteEnv(t)

	_, err := run(t, "resolve", "98103", "--categories", "traffic")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)
}

func TestResolve_RequiresQuery(t *testing.T) {
	_, err := run(t, "resolve")
	require.Error(t, err)
}

func TestPurge_RemovesCachedRows(t *testing.T) {
	sqliteEnv(t)

	_, err := run(t, "resolve", "98103", "--categories", "weather")
	require.NoError(t, err)

	out, err := run(t, "purge", "--location-id", "1", "--category", "weather")
	require.NoError(t, err)
	assert.Equal(t, "weather: 2 rows removed\n", out)

	out, err = run(t, "purge", "--location-id", "1", "--category", "weather")
	require.NoError(t, err)
	assert.Equal(t, "weather: 0 rows removed\n", out)
}

func TestPurge_RejectsMissingFlags(t *testing.T) {
	_, err := run(t, "purge", "--category", "weather")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--location-id")
}
