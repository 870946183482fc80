package pgstage

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	err := loader.Load(ctx, config)
//	if errors.Is(err, pgstage.ErrSourceRead) {
//	    // Handle an unreadable or malformed source file
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConnectionFailed indicates the target store is unreachable or
	// credentials are invalid. Raised before any mutation.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrSchemaFailed indicates staging schema creation or inspection failed.
	ErrSchemaFailed = errors.New("schema preparation failed")

	// ErrDropFailed indicates the cascading drop of prior staging tables failed.
	ErrDropFailed = errors.New("staging drop failed")

	// ErrSourceRead indicates a source file is missing, malformed, or unreadable.
	ErrSourceRead = errors.New("source read failed")

	// ErrWriteFailed indicates staging table creation or population failed.
	ErrWriteFailed = errors.New("table write failed")

	// ErrApprovalDenied indicates the user declined to proceed when the
	// staging schema contained tables outside the configured destination set.
	ErrApprovalDenied = errors.New("approval denied")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")
)

// Phase identifies the stage of the load run an error occurred in.
type Phase string

const (
	PhaseConnect Phase = "connect"
	PhaseSchema  Phase = "schema"
	PhaseDrop    Phase = "drop"
	PhaseRead    Phase = "read"
	PhaseWrite   Phase = "write"
)

// DatasetError attributes a failure to a phase of the run and, for read and
// write failures, to the offending dataset. Dataset is empty for phases that
// precede per-dataset work (connect, schema, drop).
type DatasetError struct {
	Dataset string
	Phase   Phase
	Err     error
}

// Error formats the failure with its phase and dataset attribution.
func (e *DatasetError) Error() string {
	if e.Dataset == "" {
		return fmt.Sprintf("%s phase: %v", e.Phase, e.Err)
	}
	return fmt.Sprintf("dataset %q: %s phase: %v", e.Dataset, e.Phase, e.Err)
}

// Unwrap returns the underlying error for errors.Is/errors.As chains.
func (e *DatasetError) Unwrap() error {
	return e.Err
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Check for sentinel errors
	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrApprovalDenied):
		return ExitApprovalDenied
	case errors.Is(err, ErrSchemaFailed), errors.Is(err, ErrDropFailed):
		return ExitSchemaError
	case errors.Is(err, ErrSourceRead):
		return ExitSourceError
	case errors.Is(err, ErrWriteFailed):
		return ExitWriteError
	case errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	}

	errStr := err.Error()

	// Cobra flag/argument errors surface as plain errors; classify them as usage errors.
	if strings.Contains(errStr, "unknown flag") ||
		strings.Contains(errStr, "unknown shorthand flag") ||
		strings.Contains(errStr, "unknown command") ||
		strings.Contains(errStr, "accepts ") ||
		strings.Contains(errStr, "required flag") ||
		strings.Contains(errStr, "invalid argument") {
		return ExitUsageError
	}

	// Check for common connection error patterns
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
