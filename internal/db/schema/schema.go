// Package schema manages the staging schema and its tables: creating the
// schema idempotently, listing what it currently holds, and dropping
// destination tables ahead of a reload.
package schema

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/pgstage/pgstage/pkg/pgstage"
)

// reservedSchemas are namespaces the loader must never treat as staging
// schemas. Dropping tables in these would destroy data the loader does
// not own.
var reservedSchemas = map[string]struct{}{
	"public":             {},
	"pg_catalog":         {},
	"information_schema": {},
}

// Manager implements pgstage.SchemaManager. It is stateless; the Executor
// passed to each method carries the connection or transaction to run on.
type Manager struct{}

// New creates a schema Manager.
func New() *Manager {
	return &Manager{}
}

var _ pgstage.SchemaManager = (*Manager)(nil)

// ValidateSchemaName rejects empty, reserved, and system schema names.
// The loader assumes ownership of every table it drops, so it refuses to
// operate on namespaces shared with other tools.
func ValidateSchemaName(schema string) error {
	if schema == "" {
		return fmt.Errorf("%w: schema name is empty", pgstage.ErrInvalidConfig)
	}
	lower := strings.ToLower(schema)
	if _, reserved := reservedSchemas[lower]; reserved {
		return fmt.Errorf("%w: schema %q is reserved and cannot be used for staging", pgstage.ErrInvalidConfig, schema)
	}
	if strings.HasPrefix(lower, "pg_") {
		return fmt.Errorf("%w: schema %q uses the reserved pg_ prefix", pgstage.ErrInvalidConfig, schema)
	}
	return nil
}

// EnsureSchema creates the schema if it does not already exist.
// Running it against an existing schema is a no-op.
func (m *Manager) EnsureSchema(ctx context.Context, exec pgstage.Executor, schema string) error {
	if err := ValidateSchemaName(schema); err != nil {
		return err
	}

	sql := fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", pgx.Identifier{schema}.Sanitize())
	if _, err := exec.Exec(ctx, sql); err != nil {
		return fmt.Errorf("failed to create schema %q: %w", schema, err)
	}
	return nil
}

// ListTables returns the names of all ordinary tables in the schema,
// sorted alphabetically. A missing schema yields an empty list.
func (m *Manager) ListTables(ctx context.Context, exec pgstage.Executor, schema string) ([]string, error) {
	rows, err := exec.Query(ctx,
		"SELECT tablename FROM pg_catalog.pg_tables WHERE schemaname = $1 ORDER BY tablename",
		schema)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables in schema %q: %w", schema, err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table list: %w", err)
	}

	return tables, nil
}

// DropTables drops the given tables from the schema in a single statement
// with CASCADE, so dependent views and foreign keys on those tables go with
// them. Tables that do not exist are skipped. An empty list is a no-op.
func (m *Manager) DropTables(ctx context.Context, exec pgstage.Executor, schema string, tables []string) error {
	if len(tables) == 0 {
		return nil
	}
	if err := ValidateSchemaName(schema); err != nil {
		return err
	}

	qualified := make([]string, len(tables))
	for i, table := range tables {
		qualified[i] = pgx.Identifier{schema, table}.Sanitize()
	}

	sql := fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", strings.Join(qualified, ", "))
	if _, err := exec.Exec(ctx, sql); err != nil {
		return fmt.Errorf("failed to drop tables in schema %q: %w", schema, err)
	}
	return nil
}
