package store

import (
	"strconv"
	"strings"
)

// Dialect abstracts database-specific SQL generation and behavior.
type Dialect interface {
	// Name returns "postgres" or "sqlite".
	Name() string

	// DriverName returns the database/sql driver name ("pgx" or "sqlite").
	DriverName() string

	// Rebind rewrites '?' placeholders into the dialect's native form.
	Rebind(query string) string

	// NowExpr returns the SQL expression for the current timestamp.
	NowExpr() string

	// SystemTablesSQL returns the DDL for the identity tables.
	SystemTablesSQL() string

	// MapError maps a driver error to a well-known sentinel error.
	MapError(err error) error
}

// NewDialect returns the dialect for the given driver name.
func NewDialect(driver string) Dialect {
	if driver == "sqlite" {
		return &SQLiteDialect{}
	}
	return &PostgresDialect{}
}

// rebindNumbered converts '?' markers to $1, $2, ... for PostgreSQL.
func rebindNumbered(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
