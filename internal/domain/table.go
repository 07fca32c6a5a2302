package domain

import "slices"

// RowScanner is satisfied by both pgx.Rows and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// Table names a persisted table and its writable columns in insert order.
// Every table also has an "id" primary key that is selected first.
type Table struct {
	Name    string
	Columns []string
	// UniqueKey, when set, is the column an insert conflicts on. Conflicting
	// inserts return the id of the row already stored.
	UniqueKey string
}

var (
	LocationsTable = Table{
		Name:      "locations",
		Columns:   []string{"search_query", "formatted_query", "latitude", "longitude"},
		UniqueKey: "search_query",
	}
	WeathersTable = Table{
		Name:    "weathers",
		Columns: []string{"forecast", "time", "created_at", "location_id"},
	}
	EventsTable = Table{
		Name:    "events",
		Columns: []string{"link", "name", "event_date", "summary", "created_at", "location_id"},
	}
	MoviesTable = Table{
		Name:    "movies",
		Columns: []string{"title", "overview", "image_url", "released_on", "total_votes", "average_votes", "popularity", "created_at", "location_id"},
	}
	YelpsTable = Table{
		Name:    "yelps",
		Columns: []string{"name", "rating", "price", "url", "image_url", "created_at", "location_id"},
	}
)

var tables = map[string]Table{
	LocationsTable.Name: LocationsTable,
	WeathersTable.Name:  WeathersTable,
	EventsTable.Name:    EventsTable,
	MoviesTable.Name:    MoviesTable,
	YelpsTable.Name:     YelpsTable,
}

// LookupTable returns the registered table called name. Query builders only
// accept registered tables so identifiers never come from request input.
func LookupTable(name string) (Table, bool) {
	t, ok := tables[name]
	return t, ok
}

// Registered reports whether t matches a registered table exactly.
func (t Table) Registered() bool {
	reg, ok := tables[t.Name]
	return ok && reg.UniqueKey == t.UniqueKey && slices.Equal(reg.Columns, t.Columns)
}

// CategoryTables returns the tables keyed by location_id.
func CategoryTables() []Table {
	return []Table{WeathersTable, EventsTable, MoviesTable, YelpsTable}
}
