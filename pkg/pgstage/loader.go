package pgstage

import "context"

// Loader is the main interface for executing staging loads.
// Implementations handle the full workflow: connection, staging schema
// preparation, source reading, and table replacement.
type Loader interface {
	// Load executes one load run using the provided configuration.
	// On success every configured destination table exists in the staging
	// schema and contains exactly the rows of its source. On failure the
	// returned error identifies the offending dataset and phase, and the
	// staging schema is left as it was before the run.
	Load(ctx context.Context, config LoadConfig) error
}
