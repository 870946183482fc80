package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pgstage/pgstage/pkg/pgstage"
)

func TestWrapConnectionError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantPhrase string
	}{
		{
			name:       "connection refused",
			err:        errors.New("dial tcp 127.0.0.1:5432: connection refused"),
			wantPhrase: "pg_isready",
		},
		{
			name:       "unknown host",
			err:        errors.New("lookup nohost: no such host"),
			wantPhrase: "cannot resolve host",
		},
		{
			name:       "bad password",
			err:        errors.New("FATAL: password authentication failed for user \"loader\""),
			wantPhrase: "PGPASSWORD",
		},
		{
			name:       "missing database",
			err:        errors.New("FATAL: database \"warehouse\" does not exist"),
			wantPhrase: "createdb",
		},
		{
			name:       "timeout",
			err:        errors.New("dial tcp: i/o timeout"),
			wantPhrase: "timed out",
		},
		{
			name:       "ssl",
			err:        errors.New("SSL is not enabled on the server"),
			wantPhrase: "--sslmode",
		},
		{
			name:       "too many connections",
			err:        errors.New("FATAL: too many connections for role \"loader\""),
			wantPhrase: "max_connections",
		},
		{
			name:       "unclassified",
			err:        errors.New("something odd happened"),
			wantPhrase: "failed to connect to database",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := wrapConnectionError(tt.err, "db.example.com", 5432, "warehouse")

			if !strings.Contains(wrapped.Error(), tt.wantPhrase) {
				t.Errorf("wrapped error missing %q:\n%v", tt.wantPhrase, wrapped)
			}
			if !errors.Is(wrapped, tt.err) {
				t.Error("wrapped error must preserve the original via errors.Is")
			}
		})
	}
}

func TestNewConnector_SelectsByAuthMethod(t *testing.T) {
	base := pgstage.ConnectionConfig{
		Host:     "db.example.com",
		Port:     5432,
		Database: "warehouse",
		Username: "loader",
	}

	t.Run("standard", func(t *testing.T) {
		config := base
		connector, err := NewConnector(&config)
		if err != nil {
			t.Fatalf("NewConnector() error = %v", err)
		}
		if _, ok := connector.(*StandardConnector); !ok {
			t.Errorf("NewConnector() = %T, want *StandardConnector", connector)
		}
	})

	t.Run("aws iam", func(t *testing.T) {
		config := base
		config.AuthMethod = pgstage.AuthMethodAWSIAM
		config.AWSRegion = "eu-west-1"
		connector, err := NewConnector(&config)
		if err != nil {
			t.Fatalf("NewConnector() error = %v", err)
		}
		if _, ok := connector.(*TokenBasedConnector); !ok {
			t.Errorf("NewConnector() = %T, want *TokenBasedConnector", connector)
		}
	})

	t.Run("aws iam without region", func(t *testing.T) {
		config := base
		config.AuthMethod = pgstage.AuthMethodAWSIAM
		if _, err := NewConnector(&config); err == nil {
			t.Error("expected error when AWS region is missing")
		}
	})

	t.Run("google iam without instance", func(t *testing.T) {
		config := base
		config.AuthMethod = pgstage.AuthMethodGoogleIAM
		if _, err := NewConnector(&config); err == nil {
			t.Error("expected error when Google instance is missing")
		}
	})

	t.Run("google iam", func(t *testing.T) {
		config := base
		config.AuthMethod = pgstage.AuthMethodGoogleIAM
		config.GoogleInstance = "proj:region:instance"
		connector, err := NewConnector(&config)
		if err != nil {
			t.Fatalf("NewConnector() error = %v", err)
		}
		if _, ok := connector.(*GoogleCloudSQLConnector); !ok {
			t.Errorf("NewConnector() = %T, want *GoogleCloudSQLConnector", connector)
		}
	})

	t.Run("unsupported", func(t *testing.T) {
		config := base
		config.AuthMethod = pgstage.AuthMethod(99)
		_, err := NewConnector(&config)
		if !errors.Is(err, pgstage.ErrUnsupportedAuthMethod) {
			t.Errorf("NewConnector() error = %v, want ErrUnsupportedAuthMethod", err)
		}
	})
}

type failingTokenProvider struct{ err error }

func (p *failingTokenProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	return "", time.Time{}, p.err
}

func (p *failingTokenProvider) String() string { return "failingTokenProvider" }

func TestTokenBasedConnector_TokenAcquisitionFailure(t *testing.T) {
	config := &pgstage.ConnectionConfig{
		Host:     "db.example.com",
		Port:     5432,
		Database: "warehouse",
		Username: "loader",
	}

	cause := errors.New("credential chain exhausted")
	connector := NewTokenBasedConnector(config, &failingTokenProvider{err: cause}, "Test Cloud")

	_, err := connector.Connect(context.Background())
	if err == nil {
		t.Fatal("Connect() expected error")
	}
	if !errors.Is(err, cause) {
		t.Errorf("Connect() error = %v, want wrapped %v", err, cause)
	}
	if !strings.Contains(err.Error(), "Test Cloud") {
		t.Errorf("error should name the provider: %v", err)
	}
}

func TestStandardConnector_InvalidConnectionConfig(t *testing.T) {
	// A config that produces an unparsable connection string fails fast
	// without retrying.
	config := &pgstage.ConnectionConfig{
		Host:     "localhost",
		Port:     5432,
		Database: "warehouse",
		SSLMode:  "not-a-mode",
	}

	connector := NewStandardConnector(config)
	start := time.Now()
	_, err := connector.Connect(context.Background())
	if err == nil {
		t.Fatal("Connect() expected error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("fatal config error should not be retried, took %v", elapsed)
	}
	if !strings.Contains(fmt.Sprint(err), "sslmode") && !strings.Contains(fmt.Sprint(err), "connection config") {
		t.Errorf("unexpected error: %v", err)
	}
}
