// internal/core/services/policy.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/insuretech-labs/oipa-mcp/internal/core/domain"
	"github.com/insuretech-labs/oipa-mcp/internal/core/ports"
)

// ErrPolicyNotFound is returned when a detail lookup matches no policy.
var ErrPolicyNotFound = errors.New("policy not found")

const (
	// defaultSearchLimit is the per-tool default, tighter than the query
	// builder's own fallback.
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// PolicyService shapes raw OIPA rows into the response types the tool
// surface returns. It owns no state beyond its dependencies.
type PolicyService struct {
	repo   ports.PolicyRepository
	logger *slog.Logger
}

// NewPolicyService creates a new policy service.
func NewPolicyService(repo ports.PolicyRepository, logger *slog.Logger) *PolicyService {
	return &PolicyService{
		repo:   repo,
		logger: logger.With(slog.String("service", "policy")),
	}
}

// SearchPolicies runs a policy search and formats each hit with a display
// status and client name.
func (s *PolicyService) SearchPolicies(ctx context.Context, term, statusFilter string, limit int) ([]domain.PolicySummary, error) {
	status, err := domain.ParsePolicyStatus(statusFilter)
	if err != nil {
		return nil, err
	}
	limit = clampLimit(limit)

	s.logger.InfoContext(ctx, "searching policies",
		slog.String("status", string(status)),
		slog.Int("limit", limit))

	rows, err := s.repo.SearchPolicies(ctx, term, status, limit)
	if err != nil {
		return nil, err
	}

	results := make([]domain.PolicySummary, 0, len(rows))
	for _, row := range rows {
		results = append(results, domain.PolicySummary{
			GUID:        row.String("policy_guid"),
			Number:      row.String("policy_number"),
			Name:        row.String("policy_name"),
			Status:      domain.StatusName(row.String("status_code")),
			StatusCode:  row.String("status_code"),
			PlanDate:    domain.FormatDate(row.Time("plan_date")),
			UpdatedDate: domain.FormatTimestamp(row.Time("updated_date")),
			Client: domain.ClientRef{
				GUID: row.String("client_guid"),
				Name: domain.FormatClientName(
					row.String("client_first_name"),
					row.String("client_last_name"),
					row.String("company_name"),
				),
				TaxID: row.String("tax_id"),
			},
		})
	}
	return results, nil
}

// GetPolicyDetails looks up one policy by GUID or number and attaches every
// role on it. Returns ErrPolicyNotFound when nothing matches.
func (s *PolicyService) GetPolicyDetails(ctx context.Context, policyGUID, policyNumber string) (*domain.PolicyDetails, error) {
	row, err := s.repo.FindPolicy(ctx, policyGUID, policyNumber)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrPolicyNotFound
	}

	details := &domain.PolicyDetails{
		Policy: domain.PolicyInfo{
			GUID:         row.String("policy_guid"),
			Number:       row.String("policy_number"),
			Name:         row.String("policy_name"),
			Status:       domain.StatusName(row.String("status_code")),
			StatusCode:   row.String("status_code"),
			PlanDate:     domain.FormatDate(row.Time("plan_date")),
			IssueState:   row.String("issue_state"),
			CreationDate: domain.FormatDate(row.Time("creation_date")),
			UpdatedDate:  domain.FormatTimestamp(row.Time("updated_date")),
		},
		PrimaryClient: domain.ClientInfo{
			GUID:        row.String("client_guid"),
			Name:        domain.FormatClientName(row.String("client_first_name"), row.String("client_last_name"), row.String("company_name")),
			FirstName:   row.String("client_first_name"),
			LastName:    row.String("client_last_name"),
			CompanyName: row.String("company_name"),
			TaxID:       row.String("tax_id"),
			DateOfBirth: domain.FormatDate(row.Time("date_of_birth")),
			Gender:      row.String("gender"),
		},
		Plan: domain.PlanInfo{
			GUID: row.String("plan_guid"),
			Name: row.String("plan_name"),
		},
	}

	roles, err := s.policyRoles(ctx, details.Policy.GUID)
	if err != nil {
		return nil, err
	}
	details.Roles = roles

	return details, nil
}

func (s *PolicyService) policyRoles(ctx context.Context, policyGUID string) ([]domain.PolicyRole, error) {
	rows, err := s.repo.PolicyRoles(ctx, policyGUID)
	if err != nil {
		return nil, err
	}

	roles := make([]domain.PolicyRole, 0, len(rows))
	for _, row := range rows {
		roleType := row.String("role_type_name")
		if roleType == "" {
			roleType = domain.RoleName(row.String("role_code"))
		}

		roles = append(roles, domain.PolicyRole{
			GUID:       row.String("role_guid"),
			Code:       row.String("role_code"),
			Type:       roleType,
			StatusCode: row.String("role_status_code"),
			Percent:    row.Decimal("role_percent"),
			Amount:     row.Decimal("role_amount"),
			Client: domain.ClientInfo{
				GUID:        row.String("client_guid"),
				Name:        domain.FormatClientName(row.String("first_name"), row.String("last_name"), row.String("company_name")),
				FirstName:   row.String("first_name"),
				LastName:    row.String("last_name"),
				CompanyName: row.String("company_name"),
				TaxID:       row.String("tax_id"),
				DateOfBirth: domain.FormatDate(row.Time("date_of_birth")),
				Gender:      row.String("gender"),
				Email:       row.String("email"),
			},
		})
	}
	return roles, nil
}

// GetClientPortfolio returns every policy a client holds a role on.
func (s *PolicyService) GetClientPortfolio(ctx context.Context, clientGUID string) ([]domain.PortfolioEntry, error) {
	rows, err := s.repo.ClientPortfolio(ctx, clientGUID)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.PortfolioEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, domain.PortfolioEntry{
			GUID:        row.String("policy_guid"),
			Number:      row.String("policy_number"),
			Name:        row.String("policy_name"),
			Status:      domain.StatusName(row.String("status_code")),
			StatusCode:  row.String("status_code"),
			PlanDate:    domain.FormatDate(row.Time("plan_date")),
			UpdatedDate: domain.FormatTimestamp(row.Time("updated_date")),
			RoleCode:    row.String("role_code"),
			RoleType:    domain.RoleName(row.String("role_code")),
			RolePercent: row.Decimal("role_percent"),
			PlanName:    row.String("plan_name"),
		})
	}

	s.logger.InfoContext(ctx, "client portfolio assembled",
		slog.String("client_guid", clientGUID),
		slog.Int("policies", len(entries)))

	return entries, nil
}

// CountPoliciesByStatus aggregates policies per status code with display
// names, counts, and the percentage share computed by the database.
func (s *PolicyService) CountPoliciesByStatus(ctx context.Context) (*domain.StatusBreakdown, error) {
	rows, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	breakdown := &domain.StatusBreakdown{
		Statuses: make([]domain.StatusCount, 0, len(rows)),
	}
	for _, row := range rows {
		code := row.String("status_code")
		count := row.Int64("policy_count")
		breakdown.TotalPolicies += count

		percentage := row.Decimal("percentage")
		sc := domain.StatusCount{
			Status:     domain.StatusName(code),
			StatusCode: code,
			Count:      count,
		}
		if percentage != nil {
			sc.Percentage = *percentage
		}
		breakdown.Statuses = append(breakdown.Statuses, sc)
	}

	breakdown.Summary = fmt.Sprintf("Total %d policies across %d statuses",
		breakdown.TotalPolicies, len(breakdown.Statuses))

	return breakdown, nil
}

// SearchClients runs a client search and formats each hit.
func (s *PolicyService) SearchClients(ctx context.Context, term, clientType string, limit int) ([]domain.ClientSummary, error) {
	limit = clampLimit(limit)

	rows, err := s.repo.SearchClients(ctx, term, clientType, limit)
	if err != nil {
		return nil, err
	}

	results := make([]domain.ClientSummary, 0, len(rows))
	for _, row := range rows {
		results = append(results, domain.ClientSummary{
			GUID:        row.String("client_guid"),
			Name:        domain.FormatClientName(row.String("first_name"), row.String("last_name"), row.String("company_name")),
			FirstName:   row.String("first_name"),
			LastName:    row.String("last_name"),
			CompanyName: row.String("company_name"),
			TaxID:       row.String("tax_id"),
			TypeCode:    row.String("type_code"),
			DateOfBirth: domain.FormatDate(row.Time("date_of_birth")),
			Email:       row.String("email"),
			StatusCode:  row.String("status_code"),
		})
	}
	return results, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultSearchLimit
	}
	if limit > maxSearchLimit {
		return maxSearchLimit
	}
	return limit
}
