// internal/adapters/db/policy_repository.go
package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/insuretech-labs/oipa-mcp/internal/core/domain"
	"github.com/insuretech-labs/oipa-mcp/internal/core/ports"
	"github.com/insuretech-labs/oipa-mcp/internal/core/queries"
)

// policyRepository implements ports.PolicyRepository on top of Database.
// It is deliberately thin: the queries package owns the SQL, Database owns
// execution, and nothing here holds state.
type policyRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewPolicyRepository creates a new policy repository.
func NewPolicyRepository(db *Database, logger *slog.Logger) ports.PolicyRepository {
	return &policyRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "policy")),
	}
}

func (r *policyRepository) SearchPolicies(ctx context.Context, term string, status domain.PolicyStatus, limit int) ([]domain.Row, error) {
	q := queries.SearchPolicies(term, status, limit)

	rows, err := r.db.ExecuteQuery(ctx, q.SQL, q.Params)
	if err != nil {
		return nil, fmt.Errorf("policy search failed: %w", err)
	}

	r.logger.DebugContext(ctx, "policy search executed",
		slog.Int("rows", len(rows)),
		slog.String("status_filter", string(status)))

	return rows, nil
}

func (r *policyRepository) FindPolicy(ctx context.Context, policyGUID, policyNumber string) (domain.Row, error) {
	q, err := queries.PolicyDetails(policyGUID, policyNumber)
	if err != nil {
		return nil, err
	}

	row, err := r.db.ExecuteSingle(ctx, q.SQL, q.Params)
	if err != nil {
		return nil, fmt.Errorf("policy lookup failed: %w", err)
	}
	return row, nil
}

func (r *policyRepository) PolicyRoles(ctx context.Context, policyGUID string) ([]domain.Row, error) {
	q, err := queries.PolicyRoles(policyGUID)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.ExecuteQuery(ctx, q.SQL, q.Params)
	if err != nil {
		return nil, fmt.Errorf("policy roles lookup failed: %w", err)
	}
	return rows, nil
}

func (r *policyRepository) ClientPortfolio(ctx context.Context, clientGUID string) ([]domain.Row, error) {
	q, err := queries.ClientPortfolio(clientGUID)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.ExecuteQuery(ctx, q.SQL, q.Params)
	if err != nil {
		return nil, fmt.Errorf("client portfolio lookup failed: %w", err)
	}

	r.logger.DebugContext(ctx, "client portfolio fetched",
		slog.String("client_guid", clientGUID),
		slog.Int("policies", len(rows)))

	return rows, nil
}

func (r *policyRepository) CountByStatus(ctx context.Context) ([]domain.Row, error) {
	q := queries.CountPoliciesByStatus()

	rows, err := r.db.ExecuteQuery(ctx, q.SQL, q.Params)
	if err != nil {
		return nil, fmt.Errorf("status count failed: %w", err)
	}
	return rows, nil
}

func (r *policyRepository) SearchClients(ctx context.Context, term, clientType string, limit int) ([]domain.Row, error) {
	q := queries.SearchClients(term, clientType, limit)

	rows, err := r.db.ExecuteQuery(ctx, q.SQL, q.Params)
	if err != nil {
		return nil, fmt.Errorf("client search failed: %w", err)
	}

	r.logger.DebugContext(ctx, "client search executed",
		slog.Int("rows", len(rows)))

	return rows, nil
}
