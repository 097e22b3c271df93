// test/helpers/helpers.go
package helpers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/require"

	"github.com/insuretech-labs/oipa-mcp/internal/adapters/db"
	"github.com/insuretech-labs/oipa-mcp/internal/pkg/config"
)

// TestDB represents a test database instance backed by an Oracle container
type TestDB struct {
	Database *db.Database
	Resource *dockertest.Resource
	Pool     *dockertest.Pool
	Config   *db.Config
}

// TestLogger returns a test logger
func TestLogger() *slog.Logger {
	if testing.Verbose() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// SetupMockDB creates a sqlmock-backed Database for unit testing. The mock
// uses QueryMatcherEqual so tests assert the exact SQL text the builders
// produce.
func SetupMockDB(t *testing.T, cfg *db.Config) (sqlmock.Sqlmock, *db.Database) {
	t.Helper()

	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err, "Failed to create mock DB")

	if cfg == nil {
		cfg = db.DefaultConfig()
	}
	database := db.NewWithDB(mockDB, cfg, TestLogger())

	t.Cleanup(func() {
		database.Close()
	})

	return mock, database
}

// SetupOracleTestDB starts an Oracle Free container and connects the pool to
// it. Slow; used only by integration tests.
func SetupOracleTestDB(t *testing.T) *TestDB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "Could not connect to Docker")

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "gvenzl/oracle-free",
		Tag:        "23-slim",
		Env: []string{
			"ORACLE_PASSWORD=test",
			"APP_USER=oipa_test",
			"APP_USER_PASSWORD=oipa_test",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "Could not start Oracle container")

	// Oracle startup is slow even in the slim image.
	pool.MaxWait = 5 * time.Minute

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Could not purge resource: %s", err)
		}
	})

	port := resource.GetPort("1521/tcp")
	dbConfig := &db.Config{
		Strategy: &db.DirectStrategy{
			Host:    "localhost",
			Port:    mustAtoi(t, port),
			Service: "FREEPDB1",
		},
		Username:        "oipa_test",
		Password:        "oipa_test",
		PoolMaxSize:     5,
		PoolMinSize:     1,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
		ConnectTimeout:  10 * time.Second,
		QueryTimeout:    30 * time.Second,
		RetryCount:      0,
		RetryDelay:      time.Second,
		DefaultMaxRows:  100,
		MaxQueryResults: 1000,
	}

	var database *db.Database
	err = pool.Retry(func() error {
		ctx := context.Background()
		var err error
		database, err = db.NewDatabase(ctx, dbConfig, TestLogger())
		return err
	})
	require.NoError(t, err, "Could not connect to Oracle")

	t.Cleanup(func() {
		database.Close()
	})

	return &TestDB{
		Database: database,
		Resource: resource,
		Pool:     pool,
		Config:   dbConfig,
	}
}

// SeedOIPASchema creates the OIPA tables the queries touch and loads the
// given statements. Used by integration tests to build scenarios.
func SeedOIPASchema(t *testing.T, database *db.Database) {
	t.Helper()
	ctx := context.Background()

	stmts := []string{
		`CREATE TABLE AsPolicy (
			PolicyGUID VARCHAR2(64) PRIMARY KEY,
			PolicyNumber VARCHAR2(64),
			PolicyName VARCHAR2(256),
			StatusCode VARCHAR2(2),
			PlanDate DATE,
			IssueStateCode VARCHAR2(2),
			CreationDate DATE,
			UpdatedGmt TIMESTAMP,
			PlanGUID VARCHAR2(64)
		)`,
		`CREATE TABLE AsClient (
			ClientGUID VARCHAR2(64) PRIMARY KEY,
			FirstName VARCHAR2(128),
			LastName VARCHAR2(128),
			CompanyName VARCHAR2(256),
			TaxID VARCHAR2(32),
			TypeCode VARCHAR2(2),
			DateOfBirth DATE,
			Sex VARCHAR2(2),
			Email VARCHAR2(256),
			StatusCode VARCHAR2(2)
		)`,
		`CREATE TABLE AsRole (
			RoleGUID VARCHAR2(64) PRIMARY KEY,
			PolicyGUID VARCHAR2(64),
			ClientGUID VARCHAR2(64),
			RoleCode VARCHAR2(2),
			RolePercent NUMBER,
			RoleAmount NUMBER,
			StatusCode VARCHAR2(2)
		)`,
		`CREATE TABLE AsPlan (
			PlanGUID VARCHAR2(64) PRIMARY KEY,
			PlanName VARCHAR2(256)
		)`,
		`CREATE TABLE AsCode (
			CodeName VARCHAR2(64),
			CodeValue VARCHAR2(8),
			ShortDescription VARCHAR2(256)
		)`,
	}

	err := database.WithConn(ctx, func(conn *sql.Conn) error {
		for _, stmt := range stmts {
			if _, err := conn.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("seeding schema: %w", err)
			}
		}
		return nil
	})
	require.NoError(t, err, "Could not seed OIPA schema")
}

// PolicySeed describes one policy row for integration scenarios.
type PolicySeed struct {
	GUID       string
	Number     string
	Name       string
	StatusCode string
	Updated    time.Time
	ClientGUID string
	FirstName  string
	LastName   string
}

// SeedPolicies inserts policies with one primary insured role each.
func SeedPolicies(t *testing.T, database *db.Database, seeds []PolicySeed) {
	t.Helper()
	ctx := context.Background()

	clientSets := make([]map[string]any, 0, len(seeds))
	policySets := make([]map[string]any, 0, len(seeds))
	roleSets := make([]map[string]any, 0, len(seeds))

	seen := make(map[string]bool)
	for _, s := range seeds {
		if !seen[s.ClientGUID] {
			seen[s.ClientGUID] = true
			clientSets = append(clientSets, map[string]any{
				"guid":       s.ClientGUID,
				"first_name": s.FirstName,
				"last_name":  s.LastName,
			})
		}
		policySets = append(policySets, map[string]any{
			"guid":    s.GUID,
			"num":     s.Number,
			"name":    s.Name,
			"status":  s.StatusCode,
			"updated": s.Updated,
		})
		roleSets = append(roleSets, map[string]any{
			"guid":        uuid.NewString(),
			"policy_guid": s.GUID,
			"client_guid": s.ClientGUID,
		})
	}

	err := database.ExecuteMany(ctx,
		`INSERT INTO AsClient (ClientGUID, FirstName, LastName) VALUES (:guid, :first_name, :last_name)`,
		clientSets)
	require.NoError(t, err, "Could not seed clients")

	err = database.ExecuteMany(ctx,
		`INSERT INTO AsPolicy (PolicyGUID, PolicyNumber, PolicyName, StatusCode, UpdatedGmt) VALUES (:guid, :num, :name, :status, :updated)`,
		policySets)
	require.NoError(t, err, "Could not seed policies")

	err = database.ExecuteMany(ctx,
		`INSERT INTO AsRole (RoleGUID, PolicyGUID, ClientGUID, RoleCode, StatusCode) VALUES (:guid, :policy_guid, :client_guid, '01', '01')`,
		roleSets)
	require.NoError(t, err, "Could not seed roles")
}

// LoadTestConfig returns a test configuration
func LoadTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "oipa-mcp-test",
			Environment: "test",
			Version:     "test",
			LogLevel:    "debug",
			LogFormat:   "text",
			Debug:       true,
		},
		Database: config.DatabaseConfig{
			Host:            "localhost",
			Port:            1521,
			ServiceName:     "FREEPDB1",
			Username:        "oipa_test",
			Password:        "oipa_test",
			PoolMinSize:     1,
			PoolMaxSize:     5,
			ConnMaxLifetime: time.Hour,
			ConnMaxIdleTime: 30 * time.Minute,
			ConnectTimeout:  10 * time.Second,
			RetryCount:      1,
			RetryDelay:      time.Second,
			LogBindParams:   true,
		},
		Query: config.QueryConfig{
			Timeout:         30 * time.Second,
			DefaultMaxRows:  100,
			MaxQueryResults: 1000,
		},
		AWS: config.AWSConfig{
			Region: "us-east-1",
		},
	}
}

func mustAtoi(t *testing.T, s string) int {
	t.Helper()
	var n int
	_, err := fmt.Sscanf(s, "%d", &n)
	require.NoError(t, err, "Could not parse port %q", s)
	return n
}
