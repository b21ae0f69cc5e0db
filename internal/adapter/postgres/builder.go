package postgres

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// Builder is the squirrel statement builder with Postgres placeholders.
// Repos use it for queries whose filters vary per call.
var Builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Prefixed splits a comma-separated column list and qualifies each column
// with prefix, e.g. Prefixed("e.", "id, title") -> ["e.id", "e.title"].
func Prefixed(prefix, columns string) []string {
	cols := strings.Split(columns, ",")
	for i, c := range cols {
		cols[i] = prefix + strings.TrimSpace(c)
	}
	return cols
}
