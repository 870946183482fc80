package pgstage

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Load completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration or parameters
	ExitConnectionError = 11 // Failed to connect to database
	ExitApprovalDenied  = 12 // User declined to share the staging schema
	ExitSchemaError     = 13 // Schema creation or staging drop failed
	ExitSourceError     = 14 // Source file missing, malformed, or unreadable
	ExitWriteError      = 15 // Staging table creation or population failed
)

const (
	// DefaultSchema is the staging schema used when none is configured.
	DefaultSchema = "staging"

	// DefaultRetryInitialDelay is the default initial delay before the first
	// connection retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between connection
	// retry attempts.
	DefaultRetryMaxDelay = 1 * time.Minute

	// DefaultRetryMaxAttempts is the default maximum number of connection
	// retry attempts. The load itself is never retried: a failed read or
	// write aborts the run.
	DefaultRetryMaxAttempts = 3
)
