package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgstage/pgstage/internal/db"
	"github.com/pgstage/pgstage/internal/db/schema"
	"github.com/pgstage/pgstage/pkg/pgstage"
)

// LoadService implements the Loader interface.
// Thread-Safety: NOT safe for concurrent Load() calls on the same instance.
// Create separate instances for concurrent loads.
type LoadService struct {
	connectorFactory func(*pgstage.ConnectionConfig) (pgstage.Connector, error)
	schemaManager    pgstage.SchemaManager
	reader           pgstage.DatasetReader
	approver         pgstage.Approver
	logger           pgstage.Logger
}

// NewLoadService creates a new LoadService with all dependencies injected.
//
// Panics on nil dependencies. These are programmer errors that should fail
// loudly at application startup, not during a load. Runtime conditions
// (bad configuration, connection failures, unreadable files) are returned
// as errors instead.
func NewLoadService(
	connectorFactory func(*pgstage.ConnectionConfig) (pgstage.Connector, error),
	schemaManager pgstage.SchemaManager,
	reader pgstage.DatasetReader,
	approver pgstage.Approver,
	logger pgstage.Logger,
) *LoadService {
	if connectorFactory == nil {
		panic("connectorFactory cannot be nil")
	}
	if schemaManager == nil {
		panic("schemaManager cannot be nil")
	}
	if reader == nil {
		panic("reader cannot be nil")
	}
	if approver == nil {
		panic("approver cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	return &LoadService{
		connectorFactory: connectorFactory,
		schemaManager:    schemaManager,
		reader:           reader,
		approver:         approver,
		logger:           logger,
	}
}

var _ pgstage.Loader = (*LoadService)(nil)

// Load runs a full staging load: it prepares the schema, drops the
// destination tables, and reloads every dataset. The whole run executes in
// one transaction, so a failure in any dataset leaves the previous contents
// of the schema untouched.
func (s *LoadService) Load(ctx context.Context, config pgstage.LoadConfig) error {
	if config.Schema == "" {
		config.Schema = pgstage.DefaultSchema
	}

	connConfig, err := s.validateAndParseConfig(config)
	if err != nil {
		return err
	}

	if config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Timeout)
		defer cancel()
	}

	pool, err := s.connect(ctx, connConfig)
	if err != nil {
		return err
	}
	defer pool.Close()

	// A single connection carries the whole run so the transaction and the
	// run_id session variable share one session.
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return connectError(fmt.Errorf("failed to acquire connection: %w", err))
	}
	defer conn.Release()

	runID := uuid.NewString()
	if _, err := conn.Exec(ctx, "SELECT set_config('pgstage.run_id', $1, false)", runID); err != nil {
		return connectError(fmt.Errorf("failed to set run id: %w", err))
	}
	s.logger.Verbose("Run ID: %s", runID)

	tx, err := conn.Begin(ctx)
	if err != nil {
		return connectError(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback(ctx)

	if err := s.prepareNamespace(ctx, tx, config); err != nil {
		return err
	}

	for _, dataset := range config.Datasets {
		if err := s.loadDataset(ctx, tx, config.Schema, dataset); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return &pgstage.DatasetError{
			Phase: pgstage.PhaseWrite,
			Err:   fmt.Errorf("%w: failed to commit: %w", pgstage.ErrWriteFailed, err),
		}
	}

	s.logger.Info("✓ Loaded %d dataset(s) into schema %q", len(config.Datasets), config.Schema)
	return nil
}

// validateAndParseConfig validates the load configuration, applies defaults,
// and parses the connection string.
func (s *LoadService) validateAndParseConfig(config pgstage.LoadConfig) (*pgstage.ConnectionConfig, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", pgstage.ErrInvalidConfig, err)
	}

	if err := schema.ValidateSchemaName(config.Schema); err != nil {
		return nil, err
	}

	s.logger.Verbose("Loading %d dataset(s) into schema '%s'", len(config.Datasets), config.Schema)

	connConfig, err := db.ParseConnectionString(config.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse connection string: %w", pgstage.ErrInvalidConfig, err)
	}

	if connConfig.AppName == "" {
		connConfig.AppName = "pgstage"
	}

	// Apply auth method and cloud credentials from the load config
	connConfig.AuthMethod = config.AuthMethod
	connConfig.AzureTenantID = config.AzureTenantID
	connConfig.AzureClientID = config.AzureClientID
	connConfig.AzureClientSecret = config.AzureClientSecret
	connConfig.AWSRegion = config.AWSRegion
	connConfig.GoogleInstance = config.GoogleInstance

	return connConfig, nil
}

// connect builds the connector for the configured auth method and opens the
// pool.
func (s *LoadService) connect(ctx context.Context, connConfig *pgstage.ConnectionConfig) (*pgxpool.Pool, error) {
	connector, err := s.connectorFactory(connConfig)
	if err != nil {
		return nil, connectError(fmt.Errorf("failed to create connector: %w", err))
	}

	pool, err := connector.Connect(ctx)
	if err != nil {
		return nil, connectError(err)
	}
	return pool, nil
}

func connectError(err error) error {
	return &pgstage.DatasetError{
		Phase: pgstage.PhaseConnect,
		Err:   fmt.Errorf("%w: %w", pgstage.ErrConnectionFailed, err),
	}
}

// prepareNamespace makes the staging schema exist and empty of destination
// tables. If the schema holds tables outside the configured destination set,
// the approver must confirm before anything is dropped; Force skips the
// prompt but the stray tables are still reported.
func (s *LoadService) prepareNamespace(ctx context.Context, exec pgstage.Executor, config pgstage.LoadConfig) error {
	if err := s.schemaManager.EnsureSchema(ctx, exec, config.Schema); err != nil {
		return &pgstage.DatasetError{
			Phase: pgstage.PhaseSchema,
			Err:   fmt.Errorf("%w: %w", pgstage.ErrSchemaFailed, err),
		}
	}

	existing, err := s.schemaManager.ListTables(ctx, exec, config.Schema)
	if err != nil {
		return &pgstage.DatasetError{
			Phase: pgstage.PhaseSchema,
			Err:   fmt.Errorf("%w: %w", pgstage.ErrSchemaFailed, err),
		}
	}

	destinations := config.DestinationTables()
	destinationSet := make(map[string]struct{}, len(destinations))
	for _, table := range destinations {
		destinationSet[table] = struct{}{}
	}

	var strays []string
	for _, table := range existing {
		if _, owned := destinationSet[table]; !owned {
			strays = append(strays, table)
		}
	}

	if len(strays) > 0 {
		if config.Force {
			s.logger.Info("Schema %q contains %d table(s) not managed by this run: %v",
				config.Schema, len(strays), strays)
		} else {
			approved, err := s.approver.RequestApproval(ctx, config.Schema, strays)
			if err != nil {
				return &pgstage.DatasetError{
					Phase: pgstage.PhaseSchema,
					Err:   fmt.Errorf("%w: %w", pgstage.ErrApprovalDenied, err),
				}
			}
			if !approved {
				return &pgstage.DatasetError{
					Phase: pgstage.PhaseSchema,
					Err:   fmt.Errorf("%w: schema %q contains unmanaged tables", pgstage.ErrApprovalDenied, config.Schema),
				}
			}
		}
	}

	if err := s.schemaManager.DropTables(ctx, exec, config.Schema, destinations); err != nil {
		return &pgstage.DatasetError{
			Phase: pgstage.PhaseDrop,
			Err:   fmt.Errorf("%w: %w", pgstage.ErrDropFailed, err),
		}
	}
	s.logger.Verbose("Dropped %d destination table(s) in schema %q", len(destinations), config.Schema)

	return nil
}

// loadDataset reads one dataset from its source, creates its destination
// table, and bulk-copies the rows into it.
func (s *LoadService) loadDataset(ctx context.Context, tx pgx.Tx, schemaName string, dataset pgstage.Dataset) error {
	s.logger.Verbose("Reading dataset %q from %s", dataset.Name, dataset.Source)

	frame, err := s.reader.Read(ctx, dataset.Source)
	if err != nil {
		return &pgstage.DatasetError{
			Dataset: dataset.Name,
			Phase:   pgstage.PhaseRead,
			Err:     fmt.Errorf("%w: %w", pgstage.ErrSourceRead, err),
		}
	}

	table := dataset.DestinationTable()
	createSQL := buildCreateTable(schemaName, table, frame.Columns)
	if _, err := tx.Exec(ctx, createSQL); err != nil {
		return &pgstage.DatasetError{
			Dataset: dataset.Name,
			Phase:   pgstage.PhaseWrite,
			Err:     fmt.Errorf("%w: failed to create table %s.%s: %w", pgstage.ErrWriteFailed, schemaName, table, err),
		}
	}

	copied, err := tx.CopyFrom(ctx,
		pgx.Identifier{schemaName, table},
		frame.ColumnNames(),
		pgx.CopyFromRows(frame.Rows),
	)
	if err != nil {
		return &pgstage.DatasetError{
			Dataset: dataset.Name,
			Phase:   pgstage.PhaseWrite,
			Err:     fmt.Errorf("%w: failed to copy rows into %s.%s: %w", pgstage.ErrWriteFailed, schemaName, table, err),
		}
	}
	if copied != int64(len(frame.Rows)) {
		return &pgstage.DatasetError{
			Dataset: dataset.Name,
			Phase:   pgstage.PhaseWrite,
			Err:     fmt.Errorf("%w: copied %d of %d rows into %s.%s", pgstage.ErrWriteFailed, copied, len(frame.Rows), schemaName, table),
		}
	}

	s.logger.Info("✓ %s.%s: %d rows, %d columns", schemaName, table, len(frame.Rows), len(frame.Columns))
	return nil
}
