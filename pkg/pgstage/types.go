package pgstage

import (
	"errors"
	"fmt"
	"time"
)

// Dataset describes one source-to-staging-table mapping. The set of datasets
// is the unit of configuration for a single load run.
type Dataset struct {
	// Name is the logical dataset name, e.g. "transactions".
	Name string

	// Source is the path to the delimited source file.
	Source string

	// Table is the destination table name inside the staging schema.
	// If empty, it defaults to "stg_" + Name.
	Table string
}

// DestinationTable returns the table this dataset loads into.
func (d Dataset) DestinationTable() string {
	if d.Table != "" {
		return d.Table
	}
	return "stg_" + d.Name
}

// Validate checks that the dataset descriptor is complete.
func (d Dataset) Validate() error {
	var errs []error

	if d.Name == "" {
		errs = append(errs, fmt.Errorf("dataset name is required: %w", ErrInvalidConfig))
	}
	if d.Source == "" {
		errs = append(errs, fmt.Errorf("dataset %q: source path is required: %w", d.Name, ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// LoadConfig contains all parameters needed for one load run.
type LoadConfig struct {
	// ConnectionString is the PostgreSQL connection string (URI or ADO.NET format)
	ConnectionString string

	// Schema is the staging schema that will hold the loaded tables.
	// Defaults to DefaultSchema when empty. The loader fully owns this schema:
	// every destination table in it is dropped and recreated on each run.
	Schema string

	// Datasets is the ordered set of sources to load. Order is insignificant
	// for correctness (all destinations are dropped up front) but determines
	// log output and error attribution.
	Datasets []Dataset

	// Force skips the interactive approval prompt when the staging schema
	// contains tables outside the configured destination set.
	Force bool

	// Timeout is the global timeout for the entire run
	Timeout time.Duration

	// Verbose enables detailed logging
	Verbose bool

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// Azure Entra ID authentication parameters (used when AuthMethod is AuthMethodAzureEntraID)
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string

	// AWSRegion is the RDS region (used when AuthMethod is AuthMethodAWSIAM)
	AWSRegion string

	// GoogleInstance is the Cloud SQL instance connection name in
	// project:region:instance format (used when AuthMethod is AuthMethodGoogleIAM)
	GoogleInstance string
}

// Validate checks if the LoadConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *LoadConfig) Validate() error {
	var errs []error

	if c.ConnectionString == "" {
		errs = append(errs, fmt.Errorf("ConnectionString is required: %w", ErrInvalidConfig))
	}

	if len(c.Datasets) == 0 {
		errs = append(errs, fmt.Errorf("at least one dataset is required: %w", ErrInvalidConfig))
	}

	seenNames := make(map[string]bool, len(c.Datasets))
	seenTables := make(map[string]bool, len(c.Datasets))
	for _, ds := range c.Datasets {
		if err := ds.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if seenNames[ds.Name] {
			errs = append(errs, fmt.Errorf("duplicate dataset name %q: %w", ds.Name, ErrInvalidConfig))
		}
		seenNames[ds.Name] = true

		table := ds.DestinationTable()
		if seenTables[table] {
			errs = append(errs, fmt.Errorf("datasets share destination table %q: %w", table, ErrInvalidConfig))
		}
		seenTables[table] = true
	}

	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// DestinationTables returns the destination table names in dataset order.
func (c *LoadConfig) DestinationTables() []string {
	tables := make([]string, 0, len(c.Datasets))
	for _, ds := range c.Datasets {
		tables = append(tables, ds.DestinationTable())
	}
	return tables
}

// ConnectionConfig represents parsed connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// Additional connection parameters
	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// Azure Entra ID authentication parameters. If tenant, client, and secret
	// are all provided, Service Principal authentication is used; otherwise
	// the DefaultAzureCredential chain applies.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string

	// AWSRegion is the AWS region for RDS IAM token acquisition.
	AWSRegion string

	// GoogleInstance is the Cloud SQL instance connection name.
	GoogleInstance string
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}
