// Package testing provides shared helpers for integration tests: a lazily
// started PostgreSQL container, pre-wired loader construction, and pool
// access.
package testing

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgstage/pgstage/internal/db"
	"github.com/pgstage/pgstage/internal/db/schema"
	"github.com/pgstage/pgstage/internal/logging"
	"github.com/pgstage/pgstage/internal/services"
	"github.com/pgstage/pgstage/internal/source/csvsource"
	"github.com/pgstage/pgstage/internal/testinfra"
	"github.com/pgstage/pgstage/pkg/pgstage"
)

var (
	testContainerOnce sync.Once
	testContainerConn string
	testContainerErr  error
)

func getOrStartTestContainer() (string, error) {
	testContainerOnce.Do(func() {
		ctx := context.Background()
		container, err := testinfra.StartPostgres(ctx)
		if err != nil {
			testContainerErr = err
			return
		}
		testContainerConn = container.ConnString
	})
	return testContainerConn, testContainerErr
}

// GetTestConnectionString returns the test database connection string.
// Priority: PGSTAGE_TEST_CONN env var > auto-started testcontainer > skip test.
func GetTestConnectionString(t *testing.T) string {
	t.Helper()

	if connString := os.Getenv("PGSTAGE_TEST_CONN"); connString != "" {
		return connString
	}

	connString, err := getOrStartTestContainer()
	if err != nil {
		t.Skipf("PGSTAGE_TEST_CONN not set and Docker unavailable: %v", err)
	}
	return connString
}

// SkipIfShort skips the test if running in short mode (-short flag).
func SkipIfShort(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// RequireDatabase combines SkipIfShort and GetTestConnectionString for
// convenience. Returns the test connection string if available, otherwise
// skips the test.
func RequireDatabase(t *testing.T) string {
	t.Helper()

	SkipIfShort(t)
	return GetTestConnectionString(t)
}

// NewTestLoader creates a Loader instance configured for testing.
// Uses the standard connector factory, the CSV reader, and a force-approving
// test approver.
func NewTestLoader(t *testing.T) pgstage.Loader {
	t.Helper()

	return services.NewLoadService(
		db.NewConnector,
		schema.New(),
		csvsource.NewReader(),
		&ForceApprover{},
		logging.NewNullLogger(),
	)
}

// NewTestLoaderWithApprover creates a Loader with a custom approver, for
// tests that exercise the stray-table approval path.
func NewTestLoaderWithApprover(t *testing.T, approver pgstage.Approver) pgstage.Loader {
	t.Helper()

	return services.NewLoadService(
		db.NewConnector,
		schema.New(),
		csvsource.NewReader(),
		approver,
		logging.NewNullLogger(),
	)
}

// ForceApprover is a test approver that always approves.
type ForceApprover struct{}

// RequestApproval always returns true (auto-approves).
func (a *ForceApprover) RequestApproval(ctx context.Context, schema string, strayTables []string) (bool, error) {
	return true, nil
}

// DenyApprover is a test approver that always denies.
type DenyApprover struct{}

// RequestApproval always returns false.
func (a *DenyApprover) RequestApproval(ctx context.Context, schema string, strayTables []string) (bool, error) {
	return false, nil
}

// GetTestPool creates a connection pool to the test database.
// The pool is automatically closed when the test completes.
func GetTestPool(t *testing.T, connString string) *pgxpool.Pool {
	t.Helper()

	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		t.Fatalf("Failed to create connection pool: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
	})

	return pool
}
