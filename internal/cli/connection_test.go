package cli

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/pgstage/pgstage/internal/config"
	"github.com/pgstage/pgstage/pkg/pgstage"
)

func clearConnectionEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PGSTAGE_CONNECTION_STRING", "DATABASE_URL",
		"PGHOST", "PGPORT", "PGUSER", "PGPASSWORD", "PGDATABASE", "PGSSLMODE",
	} {
		t.Setenv(key, "")
	}
}

func TestResolveConnection_FlagConnectionString(t *testing.T) {
	clearConnectionEnv(t)

	connConfig, err := resolveConnection("postgresql://u:p@flaghost:5433/flagdb", nil, nil)
	if err != nil {
		t.Fatalf("resolveConnection() error = %v", err)
	}
	if connConfig.Host != "flaghost" || connConfig.Port != 5433 || connConfig.Database != "flagdb" {
		t.Errorf("unexpected config: %+v", connConfig)
	}
}

func TestResolveConnection_EnvConnectionString(t *testing.T) {
	clearConnectionEnv(t)
	t.Setenv("PGSTAGE_CONNECTION_STRING", "postgresql://u@envhost/envdb")

	connConfig, err := resolveConnection("", nil, nil)
	if err != nil {
		t.Fatalf("resolveConnection() error = %v", err)
	}
	if connConfig.Host != "envhost" || connConfig.Database != "envdb" {
		t.Errorf("unexpected config: %+v", connConfig)
	}
}

func TestResolveConnection_DatabaseURLFallback(t *testing.T) {
	clearConnectionEnv(t)
	t.Setenv("DATABASE_URL", "postgresql://u@urlhost/urldb")

	connConfig, err := resolveConnection("", nil, nil)
	if err != nil {
		t.Fatalf("resolveConnection() error = %v", err)
	}
	if connConfig.Host != "urlhost" {
		t.Errorf("Host = %q, want urlhost", connConfig.Host)
	}
}

func TestResolveConnection_GranularPrecedence(t *testing.T) {
	clearConnectionEnv(t)
	t.Setenv("PGHOST", "envhost")
	t.Setenv("PGUSER", "envuser")
	t.Setenv("PGPASSWORD", "envpass")

	projectCfg := &config.ProjectConfig{
		Connection: config.ConnectionConfig{
			Host:     "yamlhost",
			Port:     5433,
			Username: "yamluser",
			Database: "yamldb",
		},
	}
	flags := &granularConnFlags{Host: "flaghost"}

	connConfig, err := resolveConnection("", flags, projectCfg)
	if err != nil {
		t.Fatalf("resolveConnection() error = %v", err)
	}

	// Flag beats env beats yaml, per field.
	if connConfig.Host != "flaghost" {
		t.Errorf("Host = %q, want flaghost", connConfig.Host)
	}
	if connConfig.Username != "envuser" {
		t.Errorf("Username = %q, want envuser", connConfig.Username)
	}
	if connConfig.Port != 5433 {
		t.Errorf("Port = %d, want 5433 from yaml", connConfig.Port)
	}
	if connConfig.Database != "yamldb" {
		t.Errorf("Database = %q, want yamldb", connConfig.Database)
	}
	if connConfig.Password != "envpass" {
		t.Errorf("Password not taken from $PGPASSWORD")
	}
}

func TestResolveConnection_FlagsOverrideConnectionString(t *testing.T) {
	clearConnectionEnv(t)

	flags := &granularConnFlags{Database: "override"}
	connConfig, err := resolveConnection("postgresql://u@h:5432/original", flags, nil)
	if err != nil {
		t.Fatalf("resolveConnection() error = %v", err)
	}
	if connConfig.Database != "override" {
		t.Errorf("Database = %q, want override", connConfig.Database)
	}
}

func TestParseDatasetFlag(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    pgstage.Dataset
		wantErr bool
	}{
		{
			name:  "name and source",
			value: "users=users.csv",
			want:  pgstage.Dataset{Name: "users", Source: "users.csv"},
		},
		{
			name:  "with explicit table",
			value: "orders=exports/orders.csv:raw_orders",
			want:  pgstage.Dataset{Name: "orders", Source: "exports/orders.csv", Table: "raw_orders"},
		},
		{
			name:  "single-character source with table",
			value: "t=x:tbl",
			want:  pgstage.Dataset{Name: "t", Source: "x", Table: "tbl"},
		},
		{
			name:  "windows drive letter not treated as table",
			value: `users=C:\data\users.csv`,
			want:  pgstage.Dataset{Name: "users", Source: `C:\data\users.csv`},
		},
		{
			name:  "forward-slash drive prefix not treated as table",
			value: "users=C:/data/users.csv",
			want:  pgstage.Dataset{Name: "users", Source: "C:/data/users.csv"},
		},
		{
			name:  "drive letter path with table suffix",
			value: `users=C:\data\users.csv:raw_users`,
			want:  pgstage.Dataset{Name: "users", Source: `C:\data\users.csv`, Table: "raw_users"},
		},
		{name: "missing equals", value: "users.csv", wantErr: true},
		{name: "empty name", value: "=users.csv", wantErr: true},
		{name: "empty source", value: "users=", wantErr: true},
		{name: "empty source before table", value: "users=:tbl", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDatasetFlag(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseDatasetFlag(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("parseDatasetFlag(%q) = %+v, want %+v", tt.value, got, tt.want)
			}
		})
	}
}

func TestResolveAuthMethod(t *testing.T) {
	tests := []struct {
		name           string
		azure, awsIAM  bool
		googleInstance string
		yamlMethod     string
		want           pgstage.AuthMethod
		wantErr        bool
	}{
		{name: "default standard", want: pgstage.AuthMethodStandard},
		{name: "azure flag", azure: true, want: pgstage.AuthMethodAzureEntraID},
		{name: "aws flag", awsIAM: true, want: pgstage.AuthMethodAWSIAM},
		{name: "google instance flag", googleInstance: "p:r:i", want: pgstage.AuthMethodGoogleIAM},
		{name: "yaml azure", yamlMethod: "azure", want: pgstage.AuthMethodAzureEntraID},
		{name: "yaml aws-iam", yamlMethod: "aws-iam", want: pgstage.AuthMethodAWSIAM},
		{name: "yaml google", yamlMethod: "google", want: pgstage.AuthMethodGoogleIAM},
		{name: "flag beats yaml", azure: true, yamlMethod: "aws", want: pgstage.AuthMethodAzureEntraID},
		{name: "unknown yaml value", yamlMethod: "kerberos", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveAuthMethod(tt.azure, tt.awsIAM, tt.googleInstance, tt.yamlMethod)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolveAuthMethod() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("resolveAuthMethod() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveDatasets_MergesYamlAndFlags(t *testing.T) {
	projectCfg := &config.ProjectConfig{
		Datasets: []config.DatasetConfig{
			{Name: "users", Source: "users.csv"},
			{Name: "orders", Source: "orders.csv", Table: "raw_orders"},
		},
	}

	datasets, err := resolveDatasets("/proj", projectCfg, []string{"users=fresh_users.csv", "events=events.csv"})
	if err != nil {
		t.Fatalf("resolveDatasets() error = %v", err)
	}

	if len(datasets) != 3 {
		t.Fatalf("got %d datasets, want 3", len(datasets))
	}
	// Flag replaced the yaml entry but kept its position.
	if datasets[0].Name != "users" || datasets[0].Source != filepath.Join("/proj", "fresh_users.csv") {
		t.Errorf("datasets[0] = %+v", datasets[0])
	}
	if datasets[1].Table != "raw_orders" {
		t.Errorf("datasets[1] = %+v", datasets[1])
	}
	if datasets[2].Name != "events" {
		t.Errorf("datasets[2] = %+v", datasets[2])
	}
}

func TestResolveDatasets_AbsoluteSourceUntouched(t *testing.T) {
	abs := filepath.Join(string(filepath.Separator), "data", "users.csv")
	datasets, err := resolveDatasets("/proj", nil, []string{"users=" + abs})
	if err != nil {
		t.Fatalf("resolveDatasets() error = %v", err)
	}
	if datasets[0].Source != abs {
		t.Errorf("Source = %q, want %q", datasets[0].Source, abs)
	}
}

func TestResolveDatasets_EmptyIsError(t *testing.T) {
	_, err := resolveDatasets("/proj", nil, nil)
	if err == nil {
		t.Fatal("expected error for empty dataset list")
	}
	if !strings.Contains(err.Error(), "--dataset") {
		t.Errorf("error should suggest --dataset: %v", err)
	}
}
