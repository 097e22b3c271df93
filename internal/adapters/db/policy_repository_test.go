package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insuretech-labs/oipa-mcp/internal/adapters/db"
	"github.com/insuretech-labs/oipa-mcp/internal/core/domain"
	"github.com/insuretech-labs/oipa-mcp/internal/core/queries"
	"github.com/insuretech-labs/oipa-mcp/test/helpers"
)

func TestPolicyRepository_SearchPolicies(t *testing.T) {
	mock, database := helpers.SetupMockDB(t, nil)
	repo := db.NewPolicyRepository(database, helpers.TestLogger())
	ctx := context.Background()

	q := queries.SearchPolicies("smith", domain.StatusActive, 10)
	planDate := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(q.SQL).
		WithArgs(
			sql.Named("max_rows", 10),
			sql.Named("search_term", "%smith%"),
			sql.Named("status_code", "01"),
		).
		WillReturnRows(sqlmock.NewRows([]string{
			"POLICY_GUID", "POLICY_NUMBER", "POLICY_NAME", "STATUS_CODE",
			"PLAN_DATE", "UPDATED_DATE", "CLIENT_GUID", "CLIENT_FIRST_NAME",
			"CLIENT_LAST_NAME", "COMPANY_NAME", "TAX_ID",
		}).AddRow(
			"pg-1", "POL-001", "Term Life", "01",
			planDate, planDate, "cg-1", "John",
			"Smith", nil, "123-45-6789",
		))

	rows, err := repo.SearchPolicies(ctx, "smith", domain.StatusActive, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "POL-001", rows[0].String("policy_number"))
	assert.Equal(t, "Smith", rows[0].String("client_last_name"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPolicyRepository_FindPolicy_ByGUID(t *testing.T) {
	mock, database := helpers.SetupMockDB(t, nil)
	repo := db.NewPolicyRepository(database, helpers.TestLogger())
	ctx := context.Background()

	q, err := queries.PolicyDetails("pg-1", "")
	require.NoError(t, err)

	mock.ExpectQuery(q.SQL).
		WithArgs(sql.Named("policy_guid", "pg-1")).
		WillReturnRows(sqlmock.NewRows([]string{"POLICY_GUID", "POLICY_NUMBER"}).
			AddRow("pg-1", "POL-001"))

	row, err := repo.FindPolicy(ctx, "pg-1", "")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "POL-001", row.String("policy_number"))
}

func TestPolicyRepository_FindPolicy_NotFound(t *testing.T) {
	mock, database := helpers.SetupMockDB(t, nil)
	repo := db.NewPolicyRepository(database, helpers.TestLogger())
	ctx := context.Background()

	q, err := queries.PolicyDetails("", "POL-404")
	require.NoError(t, err)

	mock.ExpectQuery(q.SQL).
		WithArgs(sql.Named("policy_number", "POL-404")).
		WillReturnRows(sqlmock.NewRows([]string{"POLICY_GUID", "POLICY_NUMBER"}))

	row, err := repo.FindPolicy(ctx, "", "POL-404")
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestPolicyRepository_FindPolicy_NoIdentifier(t *testing.T) {
	// No SQL expectation: validation fails before any query is built.
	mock, database := helpers.SetupMockDB(t, nil)
	repo := db.NewPolicyRepository(database, helpers.TestLogger())

	_, err := repo.FindPolicy(context.Background(), "", "")
	assert.ErrorIs(t, err, queries.ErrNoPolicyIdentifier)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPolicyRepository_PolicyRoles(t *testing.T) {
	mock, database := helpers.SetupMockDB(t, nil)
	repo := db.NewPolicyRepository(database, helpers.TestLogger())
	ctx := context.Background()

	q, err := queries.PolicyRoles("pg-1")
	require.NoError(t, err)

	mock.ExpectQuery(q.SQL).
		WithArgs(sql.Named("policy_guid", "pg-1")).
		WillReturnRows(sqlmock.NewRows([]string{"ROLE_GUID", "ROLE_CODE", "ROLE_PERCENT", "FIRST_NAME", "LAST_NAME"}).
			AddRow("r-1", "01", float64(100), "John", "Smith").
			AddRow("r-2", "34", float64(50), "Jane", "Smith"))

	rows, err := repo.PolicyRoles(ctx, "pg-1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "01", rows[0].String("role_code"))
	assert.Equal(t, "34", rows[1].String("role_code"))
}

func TestPolicyRepository_ClientPortfolio_NoIdentifier(t *testing.T) {
	_, database := helpers.SetupMockDB(t, nil)
	repo := db.NewPolicyRepository(database, helpers.TestLogger())

	_, err := repo.ClientPortfolio(context.Background(), "")
	assert.ErrorIs(t, err, queries.ErrNoClientIdentifier)
}

func TestPolicyRepository_CountByStatus(t *testing.T) {
	mock, database := helpers.SetupMockDB(t, nil)
	repo := db.NewPolicyRepository(database, helpers.TestLogger())
	ctx := context.Background()

	q := queries.CountPoliciesByStatus()

	mock.ExpectQuery(q.SQL).
		WillReturnRows(sqlmock.NewRows([]string{"STATUS_CODE", "POLICY_COUNT", "PERCENTAGE"}).
			AddRow("01", int64(70), float64(70)).
			AddRow("99", int64(20), float64(20)).
			AddRow("08", int64(10), float64(10)))

	rows, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, int64(70), rows[0].Int64("policy_count"))
}

func TestPolicyRepository_SearchClients(t *testing.T) {
	mock, database := helpers.SetupMockDB(t, nil)
	repo := db.NewPolicyRepository(database, helpers.TestLogger())
	ctx := context.Background()

	q := queries.SearchClients("acme", "", 5)

	mock.ExpectQuery(q.SQL).
		WithArgs(
			sql.Named("max_rows", 5),
			sql.Named("search_term", "%acme%"),
		).
		WillReturnRows(sqlmock.NewRows([]string{"CLIENT_GUID", "COMPANY_NAME", "TYPE_CODE"}).
			AddRow("cg-1", "Acme Insurance Ltd", "02"))

	rows, err := repo.SearchClients(ctx, "acme", "", 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Acme Insurance Ltd", rows[0].String("company_name"))
}
