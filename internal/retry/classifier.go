package retry

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
)

// Classifier determines whether an error is transient and worth retrying.
type Classifier interface {
	IsTransient(err error) bool
}

// PostgreSQLErrorClassifier classifies errors by PostgreSQL SQLSTATE code
// and by common network failure modes.
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
type PostgreSQLErrorClassifier struct{}

// NewPostgreSQLErrorClassifier creates a new PostgreSQL error classifier.
func NewPostgreSQLErrorClassifier() *PostgreSQLErrorClassifier {
	return &PostgreSQLErrorClassifier{}
}

// IsTransient determines if an error is temporary and retryable.
func (c *PostgreSQLErrorClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}

	// Context cancellation is a caller decision, never retryable.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return isTransientSQLState(pgErr.Code)
	}

	return isNetworkError(err) || isConnectionError(err)
}

// isTransientSQLState reports whether a SQLSTATE code names a transient condition.
func isTransientSQLState(code string) bool {
	switch {
	case strings.HasPrefix(code, "08"): // Class 08 - Connection Exception
		return true
	case strings.HasPrefix(code, "53"): // Class 53 - Insufficient Resources
		return true
	case strings.HasPrefix(code, "57"): // Class 57 - Operator Intervention
		return true
	}

	switch code {
	case "40001", // serialization_failure
		"40P01", // deadlock_detected
		"55P03": // lock_not_available
		return true
	}

	return false
}

func isNetworkError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE)
}

func isConnectionError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"i/o timeout",
		"no route to host",
		"server closed the connection",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
