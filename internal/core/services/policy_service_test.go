package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/insuretech-labs/oipa-mcp/internal/core/domain"
	"github.com/insuretech-labs/oipa-mcp/internal/core/services"
	"github.com/insuretech-labs/oipa-mcp/test/helpers"
	"github.com/insuretech-labs/oipa-mcp/test/mocks"
)

func decimalFromInt(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}

func newService(t *testing.T) (*mocks.MockPolicyRepository, *services.PolicyService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockPolicyRepository(ctrl)
	return repo, services.NewPolicyService(repo, helpers.TestLogger())
}

func TestPolicyService_SearchPolicies_FormatsResults(t *testing.T) {
	repo, svc := newService(t)
	ctx := context.Background()

	updated := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	repo.EXPECT().
		SearchPolicies(ctx, "smith", domain.StatusActive, 10).
		Return([]domain.Row{
			{
				"policy_guid":       "pg-1",
				"policy_number":     "POL-001",
				"policy_name":       "Term Life",
				"status_code":       "01",
				"updated_date":      updated,
				"client_guid":       "cg-1",
				"client_first_name": "John",
				"client_last_name":  "Smith",
				"company_name":      nil,
				"tax_id":            "123-45-6789",
			},
			{
				"policy_guid":   "pg-2",
				"policy_number": "POL-002",
				"status_code":   "99",
				"company_name":  "Acme Insurance Ltd",
			},
		}, nil)

	results, err := svc.SearchPolicies(ctx, "smith", "active", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "POL-001", results[0].Number)
	assert.Equal(t, "Active", results[0].Status)
	assert.Equal(t, "John Smith", results[0].Client.Name)
	assert.Equal(t, "2024-03-15 10:30:00", results[0].UpdatedDate)

	assert.Equal(t, "Cancelled", results[1].Status)
	assert.Equal(t, "Acme Insurance Ltd", results[1].Client.Name)
}

func TestPolicyService_SearchPolicies_InvalidStatus(t *testing.T) {
	// The repository is never called for a bad status filter.
	_, svc := newService(t)

	_, err := svc.SearchPolicies(context.Background(), "smith", "bogus", 10)
	assert.ErrorIs(t, err, domain.ErrUnknownStatus)
}

func TestPolicyService_SearchPolicies_LimitClamping(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		expected int
	}{
		{name: "zero_uses_default", limit: 0, expected: 20},
		{name: "negative_uses_default", limit: -5, expected: 20},
		{name: "oversized_clamped", limit: 500, expected: 100},
		{name: "in_range_kept", limit: 42, expected: 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, svc := newService(t)
			ctx := context.Background()

			repo.EXPECT().
				SearchPolicies(ctx, "", domain.StatusAll, tt.expected).
				Return(nil, nil)

			_, err := svc.SearchPolicies(ctx, "", "all", tt.limit)
			require.NoError(t, err)
		})
	}
}

func TestPolicyService_GetPolicyDetails(t *testing.T) {
	repo, svc := newService(t)
	ctx := context.Background()

	planDate := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)
	repo.EXPECT().
		FindPolicy(ctx, "pg-1", "").
		Return(domain.Row{
			"policy_guid":       "pg-1",
			"policy_number":     "POL-001",
			"status_code":       "01",
			"plan_date":         planDate,
			"client_guid":       "cg-1",
			"client_first_name": "John",
			"client_last_name":  "Smith",
			"plan_guid":         "plan-1",
			"plan_name":         "Whole Life 20",
		}, nil)

	repo.EXPECT().
		PolicyRoles(ctx, "pg-1").
		Return([]domain.Row{
			{
				"role_guid":      "r-1",
				"role_code":      "01",
				"role_type_name": "Primary Insured",
				"role_percent":   float64(100),
				"first_name":     "John",
				"last_name":      "Smith",
			},
			{
				"role_guid":  "r-2",
				"role_code":  "34",
				"first_name": "Jane",
				"last_name":  "Smith",
			},
		}, nil)

	details, err := svc.GetPolicyDetails(ctx, "pg-1", "")
	require.NoError(t, err)

	assert.Equal(t, "POL-001", details.Policy.Number)
	assert.Equal(t, "Active", details.Policy.Status)
	assert.Equal(t, "2020-06-01", details.Policy.PlanDate)
	assert.Equal(t, "John Smith", details.PrimaryClient.Name)
	assert.Equal(t, "Whole Life 20", details.Plan.Name)

	require.Len(t, details.Roles, 2)
	assert.Equal(t, "Primary Insured", details.Roles[0].Type)
	require.NotNil(t, details.Roles[0].Percent)
	assert.True(t, details.Roles[0].Percent.Equal(decimalFromInt(100)))
	// Falls back to the built-in role table when the AsCode join is empty.
	assert.Equal(t, "Beneficiary", details.Roles[1].Type)
}

func TestPolicyService_GetPolicyDetails_NotFound(t *testing.T) {
	repo, svc := newService(t)
	ctx := context.Background()

	repo.EXPECT().
		FindPolicy(ctx, "", "POL-404").
		Return(nil, nil)

	_, err := svc.GetPolicyDetails(ctx, "", "POL-404")
	assert.ErrorIs(t, err, services.ErrPolicyNotFound)
}

func TestPolicyService_GetPolicyDetails_RepositoryError(t *testing.T) {
	repo, svc := newService(t)
	ctx := context.Background()

	repo.EXPECT().
		FindPolicy(ctx, "pg-1", "").
		Return(nil, errors.New("ORA-12541: no listener"))

	_, err := svc.GetPolicyDetails(ctx, "pg-1", "")
	assert.Error(t, err)
}

func TestPolicyService_GetClientPortfolio(t *testing.T) {
	repo, svc := newService(t)
	ctx := context.Background()

	repo.EXPECT().
		ClientPortfolio(ctx, "cg-1").
		Return([]domain.Row{
			{
				"policy_guid":   "pg-1",
				"policy_number": "POL-001",
				"status_code":   "01",
				"role_code":     "13",
				"role_percent":  float64(100),
				"plan_name":     "Universal Life",
			},
		}, nil)

	entries, err := svc.GetClientPortfolio(ctx, "cg-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Equal(t, "Policy Owner", entries[0].RoleType)
	assert.Equal(t, "Active", entries[0].Status)
	assert.Equal(t, "Universal Life", entries[0].PlanName)
}

func TestPolicyService_CountPoliciesByStatus(t *testing.T) {
	repo, svc := newService(t)
	ctx := context.Background()

	repo.EXPECT().
		CountByStatus(ctx).
		Return([]domain.Row{
			{"status_code": "01", "policy_count": int64(70), "percentage": float64(70)},
			{"status_code": "99", "policy_count": int64(20), "percentage": float64(20)},
			{"status_code": "08", "policy_count": int64(10), "percentage": float64(10)},
		}, nil)

	breakdown, err := svc.CountPoliciesByStatus(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(100), breakdown.TotalPolicies)
	require.Len(t, breakdown.Statuses, 3)
	assert.Equal(t, "Active", breakdown.Statuses[0].Status)
	assert.Equal(t, int64(70), breakdown.Statuses[0].Count)
	assert.True(t, breakdown.Statuses[0].Percentage.Equal(decimalFromInt(70)))
	assert.Equal(t, "Total 100 policies across 3 statuses", breakdown.Summary)
}

func TestPolicyService_CountPoliciesByStatus_UnknownCode(t *testing.T) {
	repo, svc := newService(t)
	ctx := context.Background()

	repo.EXPECT().
		CountByStatus(ctx).
		Return([]domain.Row{
			{"status_code": "77", "policy_count": int64(3), "percentage": float64(100)},
		}, nil)

	breakdown, err := svc.CountPoliciesByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Unknown (77)", breakdown.Statuses[0].Status)
}

func TestPolicyService_SearchClients(t *testing.T) {
	repo, svc := newService(t)
	ctx := context.Background()

	dob := time.Date(1985, 7, 22, 0, 0, 0, 0, time.UTC)
	repo.EXPECT().
		SearchClients(ctx, "acme", "02", 20).
		Return([]domain.Row{
			{
				"client_guid":   "cg-1",
				"company_name":  "Acme Insurance Ltd",
				"type_code":     "02",
				"date_of_birth": dob,
			},
		}, nil)

	results, err := svc.SearchClients(ctx, "acme", "02", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "Acme Insurance Ltd", results[0].Name)
	assert.Equal(t, "1985-07-22", results[0].DateOfBirth)
}
