// Package sqlquery builds the four store statements for a registered table.
// Identifiers are taken only from the domain table registry and are always
// quoted; values are always bound parameters.
package sqlquery

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/couchcryptid/city-explorer-service/internal/domain"
)

// ErrUnregisteredTable rejects tables that are not in the domain registry.
var ErrUnregisteredTable = errors.New("unregistered table")

const (
	idColumn     = "id"
	ownerColumn  = "location_id"
	searchColumn = "search_query"
)

// Dialect renders identifiers and placeholders for one SQL engine.
type Dialect struct {
	Name        string
	Placeholder func(n int) string // n is 1-based
	Quote       func(ident string) string
}

// Postgres numbers placeholders ($1, $2, ...).
var Postgres = Dialect{
	Name:        "postgres",
	Placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	Quote:       func(ident string) string { return pgx.Identifier{ident}.Sanitize() },
}

// SQLite uses positional placeholders.
var SQLite = Dialect{
	Name:        "sqlite",
	Placeholder: func(int) string { return "?" },
	Quote:       func(ident string) string { return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"` },
}

func checkTable(t domain.Table) error {
	if !t.Registered() {
		return fmt.Errorf("%w: %q", ErrUnregisteredTable, t.Name)
	}
	return nil
}

func checkOwned(t domain.Table) error {
	if err := checkTable(t); err != nil {
		return err
	}
	for _, c := range t.Columns {
		if c == ownerColumn {
			return nil
		}
	}
	return fmt.Errorf("%w: %q has no %s column", ErrUnregisteredTable, t.Name, ownerColumn)
}

func (d Dialect) selectList(t domain.Table) string {
	cols := make([]string, 0, len(t.Columns)+1)
	cols = append(cols, d.Quote(idColumn))
	for _, c := range t.Columns {
		cols = append(cols, d.Quote(c))
	}
	return strings.Join(cols, ", ")
}

// SelectByLocationID selects id plus t's columns for one owner, in insertion order.
func (d Dialect) SelectByLocationID(t domain.Table) (string, error) {
	if err := checkOwned(t); err != nil {
		return "", err
	}
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s ORDER BY %s",
		d.selectList(t), d.Quote(t.Name), d.Quote(ownerColumn), d.Placeholder(1), d.Quote(idColumn)), nil
}

// SelectBySearchQuery selects stored locations for one search text.
func (d Dialect) SelectBySearchQuery() string {
	t := domain.LocationsTable
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s ORDER BY %s",
		d.selectList(t), d.Quote(t.Name), d.Quote(searchColumn), d.Placeholder(1), d.Quote(idColumn))
}

// Insert writes one row and returns its id. Tables with a unique key turn a
// conflicting insert into a no-op update so the existing id is returned.
func (d Dialect) Insert(t domain.Table) (string, error) {
	if err := checkTable(t); err != nil {
		return "", err
	}
	cols := make([]string, len(t.Columns))
	params := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = d.Quote(c)
		params[i] = d.Placeholder(i + 1)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES (%s)",
		d.Quote(t.Name), strings.Join(cols, ", "), strings.Join(params, ", "))
	if t.UniqueKey != "" {
		k := d.Quote(t.UniqueKey)
		fmt.Fprintf(&b, " ON CONFLICT (%s) DO UPDATE SET %s = excluded.%s", k, k, k)
	}
	fmt.Fprintf(&b, " RETURNING %s", d.Quote(idColumn))
	return b.String(), nil
}

// DeleteByLocationID deletes every row of t for one owner.
func (d Dialect) DeleteByLocationID(t domain.Table) (string, error) {
	if err := checkOwned(t); err != nil {
		return "", err
	}
	return fmt.Sprintf("DELETE FROM %s WHERE %s = %s",
		d.Quote(t.Name), d.Quote(ownerColumn), d.Placeholder(1)), nil
}

// CheckValues verifies values line up with t's columns.
func CheckValues(t domain.Table, values []any) error {
	if len(values) != len(t.Columns) {
		return fmt.Errorf("table %s takes %d values, got %d", t.Name, len(t.Columns), len(values))
	}
	return nil
}
