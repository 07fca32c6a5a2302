package sqlquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/city-explorer-service/internal/domain"
)

func TestSelectByLocationID(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		want    string
	}{
		{
			name:    "postgres",
			dialect: Postgres,
			want:    `SELECT "id", "forecast", "time", "created_at", "location_id" FROM "weathers" WHERE "location_id" = $1 ORDER BY "id"`,
		},
		{
			name:    "sqlite",
			dialect: SQLite,
			want:    `SELECT "id", "forecast", "time", "created_at", "location_id" FROM "weathers" WHERE "location_id" = ? ORDER BY "id"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.dialect.SelectByLocationID(domain.WeathersTable)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInsert(t *testing.T) {
	got, err := Postgres.Insert(domain.EventsTable)
	require.NoError(t, err)
	assert.Equal(t,
		`INSERT INTO "events" ("link", "name", "event_date", "summary", "created_at", "location_id") VALUES ($1, $2, $3, $4, $5, $6) RETURNING "id"`,
		got)
}

func TestInsert_UniqueKeyReturnsExistingID(t *testing.T) {
	got, err := SQLite.Insert(domain.LocationsTable)
	require.NoError(t, err)
	assert.Equal(t,
		`INSERT INTO "locations" ("search_query", "formatted_query", "latitude", "longitude") VALUES (?, ?, ?, ?)`+
			` ON CONFLICT ("search_query") DO UPDATE SET "search_query" = excluded."search_query" RETURNING "id"`,
		got)
}

func TestDeleteByLocationID(t *testing.T) {
	got, err := Postgres.DeleteByLocationID(domain.YelpsTable)
	require.NoError(t, err)
	assert.Equal(t, `DELETE FROM "yelps" WHERE "location_id" = $1`, got)
}

func TestSelectBySearchQuery(t *testing.T) {
	assert.Equal(t,
		`SELECT "id", "search_query", "formatted_query", "latitude", "longitude" FROM "locations" WHERE "search_query" = $1 ORDER BY "id"`,
		Postgres.SelectBySearchQuery())
}

func TestRejectsUnregisteredTables(t *testing.T) {
	injected := domain.Table{
		Name:    `weathers"; DROP TABLE locations; --`,
		Columns: domain.WeathersTable.Columns,
	}
	tampered := domain.WeathersTable
	tampered.Columns = []string{"forecast", "location_id"}

	for _, tbl := range []domain.Table{injected, tampered} {
		_, err := Postgres.SelectByLocationID(tbl)
		require.ErrorIs(t, err, ErrUnregisteredTable)
		_, err = SQLite.Insert(tbl)
		require.ErrorIs(t, err, ErrUnregisteredTable)
		_, err = Postgres.DeleteByLocationID(tbl)
		require.ErrorIs(t, err, ErrUnregisteredTable)
	}
}

func TestLocationsAreNotOwned(t *testing.T) {
	_, err := Postgres.DeleteByLocationID(domain.LocationsTable)
	require.ErrorIs(t, err, ErrUnregisteredTable)
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `"a""b"`, SQLite.Quote(`a"b`))
	assert.Equal(t, `"a""b"`, Postgres.Quote(`a"b`))
}

func TestCheckValues(t *testing.T) {
	require.NoError(t, CheckValues(domain.WeathersTable, domain.Weather{}.Values()))
	require.Error(t, CheckValues(domain.WeathersTable, []any{"x"}))
}
