package queries_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insuretech-labs/oipa-mcp/internal/core/domain"
	"github.com/insuretech-labs/oipa-mcp/internal/core/queries"
)

func TestSearchPolicies_TermAndStatus(t *testing.T) {
	q := queries.SearchPolicies("smith", domain.StatusActive, 25)

	assert.Contains(t, q.SQL, "UPPER(p.PolicyNumber) LIKE UPPER(:search_term)")
	assert.Contains(t, q.SQL, "UPPER(c.LastName) LIKE UPPER(:search_term)")
	assert.Contains(t, q.SQL, "UPPER(c.TaxID) LIKE UPPER(:search_term)")
	assert.Contains(t, q.SQL, "p.StatusCode = :status_code")
	assert.Contains(t, q.SQL, "ORDER BY p.UpdatedGmt DESC")
	assert.Contains(t, q.SQL, "FETCH FIRST :max_rows ROWS ONLY")

	assert.Equal(t, "%smith%", q.Params["search_term"])
	assert.Equal(t, "01", q.Params["status_code"])
	assert.Equal(t, 25, q.Params["max_rows"])

	// The term only ever appears as a bind, never in the SQL text.
	assert.NotContains(t, q.SQL, "smith")
}

func TestSearchPolicies_TermIsOrGroup(t *testing.T) {
	q := queries.SearchPolicies("atl", domain.StatusActive, 10)

	// Name predicates are one parenthesized OR group ANDed with the status.
	start := strings.Index(q.SQL, "(UPPER(p.PolicyNumber)")
	require.Positive(t, start)
	end := strings.Index(q.SQL[start:], ")\n")
	if end < 0 {
		end = strings.Index(q.SQL[start:], ") AND")
	}
	require.Positive(t, end)
	group := q.SQL[start : start+end]
	assert.Equal(t, 4, strings.Count(group, " OR "))
	assert.Contains(t, q.SQL, ") AND p.StatusCode = :status_code")
}

func TestSearchPolicies_NoFilters(t *testing.T) {
	q := queries.SearchPolicies("", domain.StatusAll, 0)

	assert.NotContains(t, q.SQL, "WHERE")
	assert.Contains(t, q.SQL, "ORDER BY p.UpdatedGmt DESC")
	assert.Equal(t, queries.DefaultLimit, q.Params["max_rows"])
	assert.NotContains(t, q.Params, "search_term")
	assert.NotContains(t, q.Params, "status_code")
}

func TestSearchPolicies_StatusCodes(t *testing.T) {
	tests := []struct {
		status domain.PolicyStatus
		code   string
	}{
		{domain.StatusActive, "01"},
		{domain.StatusCancelled, "99"},
		{domain.StatusPending, "08"},
		{domain.StatusSuspended, "02"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			q := queries.SearchPolicies("", tt.status, 10)
			assert.Equal(t, tt.code, q.Params["status_code"])
		})
	}
}

func TestSearchPolicies_LimitIsBoundNotInterpolated(t *testing.T) {
	q := queries.SearchPolicies("", domain.StatusAll, 37)

	assert.Equal(t, 37, q.Params["max_rows"])
	assert.NotContains(t, q.SQL, "37")
}

func TestPolicyDetails_GUIDWins(t *testing.T) {
	q, err := queries.PolicyDetails("guid-1", "POL-001")
	require.NoError(t, err)

	assert.Contains(t, q.SQL, "p.PolicyGUID = :policy_guid")
	assert.NotContains(t, q.SQL, ":policy_number")
	assert.Equal(t, "guid-1", q.Params["policy_guid"])
	assert.NotContains(t, q.Params, "policy_number")
}

func TestPolicyDetails_ByNumber(t *testing.T) {
	q, err := queries.PolicyDetails("", "POL-001")
	require.NoError(t, err)

	assert.Contains(t, q.SQL, "p.PolicyNumber = :policy_number")
	assert.Equal(t, "POL-001", q.Params["policy_number"])
}

func TestPolicyDetails_NoIdentifier(t *testing.T) {
	_, err := queries.PolicyDetails("", "")
	assert.ErrorIs(t, err, queries.ErrNoPolicyIdentifier)
}

func TestPolicyDetails_JoinsPlanAndPrimaryInsured(t *testing.T) {
	q, err := queries.PolicyDetails("guid-1", "")
	require.NoError(t, err)

	assert.Contains(t, q.SQL, "LEFT JOIN AsPlan pl ON p.PlanGUID = pl.PlanGUID")
	assert.Contains(t, q.SQL, "r.RoleCode = '01'")
	assert.Contains(t, q.SQL, "LEFT JOIN AsClient c ON r.ClientGUID = c.ClientGUID")
}

func TestPolicyRoles(t *testing.T) {
	q, err := queries.PolicyRoles("guid-1")
	require.NoError(t, err)

	assert.Contains(t, q.SQL, "WHERE r.PolicyGUID = :policy_guid")
	assert.Contains(t, q.SQL, "ORDER BY r.RoleCode")
	assert.Contains(t, q.SQL, "rc.CodeName = 'AsCodeRole'")
	assert.Equal(t, map[string]any{"policy_guid": "guid-1"}, q.Params)
}

func TestPolicyRoles_NoIdentifier(t *testing.T) {
	_, err := queries.PolicyRoles("")
	assert.ErrorIs(t, err, queries.ErrNoPolicyIdentifier)
}

func TestClientPortfolio(t *testing.T) {
	q, err := queries.ClientPortfolio("client-1")
	require.NoError(t, err)

	assert.Contains(t, q.SQL, "WHERE r.ClientGUID = :client_guid")
	assert.Contains(t, q.SQL, "ORDER BY p.UpdatedGmt DESC")
	assert.Equal(t, map[string]any{"client_guid": "client-1"}, q.Params)
}

func TestClientPortfolio_NoIdentifier(t *testing.T) {
	_, err := queries.ClientPortfolio("")
	assert.ErrorIs(t, err, queries.ErrNoClientIdentifier)
}

func TestCountPoliciesByStatus(t *testing.T) {
	q := queries.CountPoliciesByStatus()

	assert.Contains(t, q.SQL, "GROUP BY p.StatusCode")
	assert.Contains(t, q.SQL, "ORDER BY policy_count DESC")
	assert.Contains(t, q.SQL, "SUM(COUNT(*)) OVER ()")
	assert.Empty(t, q.Params)
}

func TestSearchClients(t *testing.T) {
	q := queries.SearchClients("acme", "02", 15)

	assert.Contains(t, q.SQL, "UPPER(c.CompanyName) LIKE UPPER(:search_term)")
	assert.Contains(t, q.SQL, "UPPER(c.Email) LIKE UPPER(:search_term)")
	assert.Contains(t, q.SQL, "c.TypeCode = :client_type")
	assert.Contains(t, q.SQL, "ORDER BY c.LastName, c.FirstName, c.CompanyName")
	assert.Contains(t, q.SQL, "FETCH FIRST :max_rows ROWS ONLY")

	assert.Equal(t, "%acme%", q.Params["search_term"])
	assert.Equal(t, "02", q.Params["client_type"])
	assert.Equal(t, 15, q.Params["max_rows"])
}

func TestSearchClients_NoFilters(t *testing.T) {
	q := queries.SearchClients("", "", 0)

	assert.NotContains(t, q.SQL, "WHERE")
	assert.Equal(t, queries.DefaultLimit, q.Params["max_rows"])
}
