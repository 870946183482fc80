package services

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgstage/pgstage/pkg/pgstage"
)

// Hand-written mocks for the service dependencies. Only the behavior the
// unit tests exercise is implemented; anything touching a live pool is
// covered by the integration tests instead.

type mockConnector struct {
	pool *pgxpool.Pool
	err  error
}

func (m *mockConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	return m.pool, m.err
}

type mockReader struct {
	frames map[string]*pgstage.Frame
	err    error
	reads  []string
}

func (m *mockReader) Read(ctx context.Context, source string) (*pgstage.Frame, error) {
	m.reads = append(m.reads, source)
	if m.err != nil {
		return nil, m.err
	}
	return m.frames[source], nil
}

type mockApprover struct {
	approved bool
	err      error
	requests [][]string
}

func (m *mockApprover) RequestApproval(ctx context.Context, schema string, strayTables []string) (bool, error) {
	m.requests = append(m.requests, strayTables)
	return m.approved, m.err
}

type mockSchemaManager struct {
	tables       []string
	ensureErr    error
	listErr      error
	dropErr      error
	droppedLists [][]string
}

func (m *mockSchemaManager) EnsureSchema(ctx context.Context, exec pgstage.Executor, schema string) error {
	return m.ensureErr
}

func (m *mockSchemaManager) ListTables(ctx context.Context, exec pgstage.Executor, schema string) ([]string, error) {
	return m.tables, m.listErr
}

func (m *mockSchemaManager) DropTables(ctx context.Context, exec pgstage.Executor, schema string, tables []string) error {
	m.droppedLists = append(m.droppedLists, tables)
	return m.dropErr
}
