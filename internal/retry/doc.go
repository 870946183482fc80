// Package retry implements retry with exponential backoff for transient
// PostgreSQL and network failures.
//
// Only connection establishment is retried. The load run itself is never
// retried: a failed source read or table write aborts the run, and the
// surrounding transaction rolls back.
//
// The package separates three concerns:
//   - Classifier: decides whether an error is transient (retryable)
//   - Strategy: decides how long to wait between attempts
//   - Executor: drives the attempt loop with context cancellation
package retry
