// internal/core/ports/policy_repository.go
package ports

import (
	"context"

	"github.com/insuretech-labs/oipa-mcp/internal/core/domain"
)

// PolicyRepository defines the read-only query surface over the OIPA schema.
// Implementations return raw rows; shaping them into response types is the
// service layer's job.
type PolicyRepository interface {
	// SearchPolicies returns policies matching a free-text term and status
	// filter, most recently updated first, capped at limit.
	SearchPolicies(ctx context.Context, term string, status domain.PolicyStatus, limit int) ([]domain.Row, error)

	// FindPolicy looks up one policy by GUID or policy number. Returns nil
	// when no policy matches.
	FindPolicy(ctx context.Context, policyGUID, policyNumber string) (domain.Row, error)

	// PolicyRoles returns every role on a policy with the client filling it.
	PolicyRoles(ctx context.Context, policyGUID string) ([]domain.Row, error)

	// ClientPortfolio returns every policy a client holds a role on.
	ClientPortfolio(ctx context.Context, clientGUID string) ([]domain.Row, error)

	// CountByStatus returns one aggregate row per status code.
	CountByStatus(ctx context.Context) ([]domain.Row, error)

	// SearchClients returns clients matching a free-text term and type
	// filter, capped at limit.
	SearchClients(ctx context.Context, term, clientType string, limit int) ([]domain.Row, error)
}
