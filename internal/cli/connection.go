package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pgstage/pgstage/internal/config"
	"github.com/pgstage/pgstage/internal/db"
	"github.com/pgstage/pgstage/pkg/pgstage"
)

// connectionStringFromEnv returns the first non-empty connection string from
// PGSTAGE_CONNECTION_STRING or DATABASE_URL environment variables.
func connectionStringFromEnv() string {
	if s := os.Getenv("PGSTAGE_CONNECTION_STRING"); s != "" {
		return s
	}
	return os.Getenv("DATABASE_URL")
}

// granularConnFlags carries the individual connection flags of the load
// command.
type granularConnFlags struct {
	Host     string
	Port     int
	Username string
	Database string
	SSLMode  string
}

// resolveConnection builds the final connection config.
//
// Precedence for the connection string itself:
//
//	--connection flag > $PGSTAGE_CONNECTION_STRING > $DATABASE_URL
//
// When no connection string is given, the config is assembled from granular
// sources, each field independently resolved as:
//
//	flag > PG* environment variable > pgstage.yaml > default
func resolveConnection(
	connStringFlag string,
	flags *granularConnFlags,
	projectCfg *config.ProjectConfig,
) (*pgstage.ConnectionConfig, error) {
	connString := connStringFlag
	if connString == "" {
		connString = connectionStringFromEnv()
	}

	if connString != "" {
		connConfig, err := db.ParseConnectionString(connString)
		if err != nil {
			return nil, fmt.Errorf("invalid connection string: %w", err)
		}
		// Granular flags still override individual fields.
		applyGranularOverrides(connConfig, flags)
		return connConfig, nil
	}

	connConfig := &pgstage.ConnectionConfig{
		Host:             "localhost",
		Port:             5432,
		Database:         "postgres",
		SSLMode:          "prefer",
		AdditionalParams: make(map[string]string),
	}

	if projectCfg != nil {
		if projectCfg.Connection.Host != "" {
			connConfig.Host = projectCfg.Connection.Host
		}
		if projectCfg.Connection.Port != 0 {
			connConfig.Port = projectCfg.Connection.Port
		}
		if projectCfg.Connection.Username != "" {
			connConfig.Username = projectCfg.Connection.Username
		}
		if projectCfg.Connection.Database != "" {
			connConfig.Database = projectCfg.Connection.Database
		}
		if projectCfg.Connection.SSLMode != "" {
			connConfig.SSLMode = projectCfg.Connection.SSLMode
		}
	}

	applyEnvironment(connConfig)
	applyGranularOverrides(connConfig, flags)

	return connConfig, nil
}

// applyEnvironment overlays the standard PG* environment variables.
func applyEnvironment(connConfig *pgstage.ConnectionConfig) {
	if host := os.Getenv("PGHOST"); host != "" {
		connConfig.Host = host
	}
	if port := os.Getenv("PGPORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			connConfig.Port = p
		}
	}
	if user := os.Getenv("PGUSER"); user != "" {
		connConfig.Username = user
	}
	if pass := os.Getenv("PGPASSWORD"); pass != "" {
		connConfig.Password = pass
	}
	if database := os.Getenv("PGDATABASE"); database != "" {
		connConfig.Database = database
	}
	if sslMode := os.Getenv("PGSSLMODE"); sslMode != "" {
		connConfig.SSLMode = sslMode
	}
}

// applyGranularOverrides overlays the explicit CLI flags, which always win.
func applyGranularOverrides(connConfig *pgstage.ConnectionConfig, flags *granularConnFlags) {
	if flags == nil {
		return
	}
	if flags.Host != "" {
		connConfig.Host = flags.Host
	}
	if flags.Port != 0 {
		connConfig.Port = flags.Port
	}
	if flags.Username != "" {
		connConfig.Username = flags.Username
	}
	if flags.Database != "" {
		connConfig.Database = flags.Database
	}
	if flags.SSLMode != "" {
		connConfig.SSLMode = flags.SSLMode
	}
}

// parseDatasetFlag parses a --dataset value of the form
// name=source[:table]. The table suffix is optional; without it the
// destination defaults to stg_<name>.
func parseDatasetFlag(value string) (pgstage.Dataset, error) {
	name, rest, found := strings.Cut(value, "=")
	if !found || name == "" || rest == "" {
		return pgstage.Dataset{}, fmt.Errorf("invalid --dataset %q, expected name=source[:table]", value)
	}

	source := rest
	table := ""
	// The table suffix is everything after the last colon, unless that
	// colon belongs to a Windows drive prefix like C:\ or C:/.
	if idx := strings.LastIndex(rest, ":"); idx >= 0 && !isDrivePrefixColon(rest, idx) {
		source, table = rest[:idx], rest[idx+1:]
	}
	if source == "" {
		return pgstage.Dataset{}, fmt.Errorf("invalid --dataset %q, expected name=source[:table]", value)
	}

	return pgstage.Dataset{Name: name, Source: source, Table: table}, nil
}

// isDrivePrefixColon reports whether the colon at idx is part of a Windows
// drive prefix (a single letter followed by ":\" or ":/").
func isDrivePrefixColon(s string, idx int) bool {
	if idx != 1 || len(s) < 3 {
		return false
	}
	c := s[0]
	if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
		return false
	}
	return s[2] == '\\' || s[2] == '/'
}

// resolveAuthMethod maps the auth flags and the pgstage.yaml auth_method
// string to an AuthMethod value. Flags win over yaml.
func resolveAuthMethod(azure, awsIAM bool, googleInstance, yamlMethod string) (pgstage.AuthMethod, error) {
	switch {
	case azure:
		return pgstage.AuthMethodAzureEntraID, nil
	case awsIAM:
		return pgstage.AuthMethodAWSIAM, nil
	case googleInstance != "":
		return pgstage.AuthMethodGoogleIAM, nil
	}

	switch strings.ToLower(yamlMethod) {
	case "", "standard":
		return pgstage.AuthMethodStandard, nil
	case "azure":
		return pgstage.AuthMethodAzureEntraID, nil
	case "aws", "aws-iam":
		return pgstage.AuthMethodAWSIAM, nil
	case "google", "google-iam":
		return pgstage.AuthMethodGoogleIAM, nil
	default:
		return pgstage.AuthMethodStandard,
			fmt.Errorf("unknown auth_method %q in %s", yamlMethod, config.ConfigFileName)
	}
}
