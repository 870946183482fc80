package services

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/pgstage/pgstage/pkg/pgstage"
)

// buildCreateTable renders the CREATE TABLE statement for a dataset's
// destination table. Identifiers are quoted so CSV header names survive
// verbatim; every column is nullable because empty cells become NULL.
func buildCreateTable(schemaName, table string, columns []pgstage.Column) string {
	defs := make([]string, len(columns))
	for i, column := range columns {
		defs[i] = fmt.Sprintf("%s %s",
			pgx.Identifier{column.Name}.Sanitize(),
			column.Type.PostgresType(),
		)
	}

	return fmt.Sprintf("CREATE TABLE %s (%s)",
		pgx.Identifier{schemaName, table}.Sanitize(),
		strings.Join(defs, ", "),
	)
}
