//go:build integration

package db_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insuretech-labs/oipa-mcp/internal/adapters/db"
	"github.com/insuretech-labs/oipa-mcp/internal/core/domain"
	"github.com/insuretech-labs/oipa-mcp/test/helpers"
)

func TestOracleIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := helpers.SetupOracleTestDB(t)
	helpers.SeedOIPASchema(t, testDB.Database)
	ctx := context.Background()

	t.Run("search_respects_status_filter_and_order", func(t *testing.T) {
		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		seeds := []helpers.PolicySeed{
			{GUID: "pg-atl-1", Number: "ATL-001", Name: "Atlantic Term 1", StatusCode: "01", Updated: base.Add(3 * time.Hour), ClientGUID: "cg-1", FirstName: "Ada", LastName: "Atlee"},
			{GUID: "pg-atl-2", Number: "ATL-002", Name: "Atlantic Term 2", StatusCode: "01", Updated: base.Add(2 * time.Hour), ClientGUID: "cg-1", FirstName: "Ada", LastName: "Atlee"},
			{GUID: "pg-atl-3", Number: "ATL-003", Name: "Atlantic Term 3", StatusCode: "01", Updated: base.Add(1 * time.Hour), ClientGUID: "cg-2", FirstName: "Bo", LastName: "Baker"},
			{GUID: "pg-atl-4", Number: "ATL-004", Name: "Atlantic Term 4", StatusCode: "99", Updated: base.Add(4 * time.Hour), ClientGUID: "cg-2", FirstName: "Bo", LastName: "Baker"},
			{GUID: "pg-atl-5", Number: "ATL-005", Name: "Atlantic Term 5", StatusCode: "99", Updated: base.Add(5 * time.Hour), ClientGUID: "cg-1", FirstName: "Ada", LastName: "Atlee"},
		}
		helpers.SeedPolicies(t, testDB.Database, seeds)

		repo := db.NewPolicyRepository(testDB.Database, helpers.TestLogger())
		rows, err := repo.SearchPolicies(ctx, "ATL", domain.StatusActive, 50)
		require.NoError(t, err)

		// Exactly the three active policies, most recently updated first.
		require.Len(t, rows, 3)
		assert.Equal(t, "ATL-001", rows[0].String("policy_number"))
		assert.Equal(t, "ATL-002", rows[1].String("policy_number"))
		assert.Equal(t, "ATL-003", rows[2].String("policy_number"))
	})

	t.Run("row_cap_limits_results", func(t *testing.T) {
		rows, err := testDB.Database.ExecuteQuery(ctx,
			"SELECT PolicyGUID FROM AsPolicy", nil, db.WithMaxRows(2))
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("status_counts_add_up", func(t *testing.T) {
		// Top up to 100 policies split 70 active / 20 cancelled / 10 pending.
		var seeds []helpers.PolicySeed
		counts := map[string]int{"01": 70 - 3, "99": 20 - 2, "08": 10}
		i := 0
		for status, n := range counts {
			for j := 0; j < n; j++ {
				i++
				seeds = append(seeds, helpers.PolicySeed{
					GUID:       fmt.Sprintf("pg-bulk-%03d", i),
					Number:     fmt.Sprintf("BULK-%03d", i),
					StatusCode: status,
					Updated:    time.Now().UTC(),
					ClientGUID: "cg-1",
					FirstName:  "Ada",
					LastName:   "Atlee",
				})
			}
		}
		helpers.SeedPolicies(t, testDB.Database, seeds)

		repo := db.NewPolicyRepository(testDB.Database, helpers.TestLogger())
		rows, err := repo.CountByStatus(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 3)

		total := int64(0)
		percentage := decimal.Zero
		byStatus := map[string]int64{}
		for _, row := range rows {
			total += row.Int64("policy_count")
			byStatus[row.String("status_code")] = row.Int64("policy_count")
			p := row.Decimal("percentage")
			require.NotNil(t, p)
			percentage = percentage.Add(*p)
		}

		assert.Equal(t, int64(100), total)
		assert.Equal(t, int64(70), byStatus["01"])
		assert.Equal(t, int64(20), byStatus["99"])
		assert.Equal(t, int64(10), byStatus["08"])
		assert.True(t, percentage.Equal(decimal.NewFromInt(100)),
			"percentages should sum to 100, got %s", percentage)

		// Ordered by count, descending.
		assert.Equal(t, "01", rows[0].String("status_code"))
	})

	t.Run("connection_probe", func(t *testing.T) {
		assert.True(t, testDB.Database.TestConnection(ctx))

		stats := testDB.Database.Stats()
		assert.Equal(t, "active", stats.Status)
		assert.Zero(t, stats.Busy)
	})
}
