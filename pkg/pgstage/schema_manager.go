package pgstage

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Executor is the minimal query surface schema operations need. It is
// satisfied by *pgxpool.Pool, *pgxpool.Conn, and pgx.Tx, so the same
// operations can run standalone or inside the loader's transaction.
type Executor interface {
	// Exec executes a statement without returning any rows.
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)

	// Query executes a query that returns rows.
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// SchemaManager provides staging-namespace operations. Implementations must
// quote all identifiers; schema and table names come from user configuration.
type SchemaManager interface {
	// EnsureSchema creates the staging schema if it does not exist.
	// Never errors when the schema is already present.
	EnsureSchema(ctx context.Context, exec Executor, schema string) error

	// DropTables removes the named tables from the schema with a single
	// cascading drop statement, so dependent views and constraints do not
	// block the drop and no partially-dropped state is observable when run
	// inside a transaction. Missing tables are not an error.
	DropTables(ctx context.Context, exec Executor, schema string, tables []string) error

	// ListTables returns the names of base tables currently in the schema.
	ListTables(ctx context.Context, exec Executor, schema string) ([]string, error)
}
