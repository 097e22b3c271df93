// internal/handlers/tools.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/insuretech-labs/oipa-mcp/internal/core/domain"
	"github.com/insuretech-labs/oipa-mcp/internal/core/queries"
	"github.com/insuretech-labs/oipa-mcp/internal/core/services"
)

// PolicyToolHandler exposes the policy query surface as MCP tools. Each
// handler validates its arguments, delegates to the service, and renders the
// result as JSON text content.
type PolicyToolHandler struct {
	service *services.PolicyService
	logger  *slog.Logger
}

// NewPolicyToolHandler creates a new policy tool handler.
func NewPolicyToolHandler(service *services.PolicyService, logger *slog.Logger) *PolicyToolHandler {
	return &PolicyToolHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "policy_tools")),
	}
}

// Register attaches every policy tool to the server.
func (h *PolicyToolHandler) Register(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("oipa_search_policies",
		mcp.WithDescription("Search insurance policies by policy number, client name, company name, or tax ID. Returns policy summaries with status and primary insured."),
		mcp.WithString("search_term",
			mcp.Description("Free-text term matched against policy number, client names, and tax ID"),
		),
		mcp.WithString("status",
			mcp.Description("Status filter"),
			mcp.Enum("active", "cancelled", "pending", "suspended", "all"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (1-100, default 20)"),
		),
	), h.searchPolicies)

	s.AddTool(mcp.NewTool("oipa_get_policy_details",
		mcp.WithDescription("Get full details for one policy, including plan, primary insured, and every role on the policy. Provide either the policy GUID or the policy number."),
		mcp.WithString("policy_guid",
			mcp.Description("Policy GUID"),
		),
		mcp.WithString("policy_number",
			mcp.Description("Policy number, used when no GUID is given"),
		),
	), h.getPolicyDetails)

	s.AddTool(mcp.NewTool("oipa_client_portfolio",
		mcp.WithDescription("List every policy a client holds a role on, with the role they fill in each."),
		mcp.WithString("client_guid",
			mcp.Description("Client GUID"),
			mcp.Required(),
		),
	), h.clientPortfolio)

	s.AddTool(mcp.NewTool("oipa_policy_counts_by_status",
		mcp.WithDescription("Count policies grouped by status, with the percentage share of each status."),
	), h.policyCountsByStatus)

	s.AddTool(mcp.NewTool("oipa_search_clients",
		mcp.WithDescription("Search clients by name, company name, tax ID, or email."),
		mcp.WithString("search_term",
			mcp.Description("Free-text term matched against client name fields, tax ID, and email"),
		),
		mcp.WithString("client_type",
			mcp.Description("Client type code filter"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (1-100, default 20)"),
		),
	), h.searchClients)
}

func (h *PolicyToolHandler) searchPolicies(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	term := req.GetString("search_term", "")
	status := req.GetString("status", "all")
	limit := req.GetInt("limit", 0)

	results, err := h.service.SearchPolicies(ctx, term, status, limit)
	if err != nil {
		return h.toolError(ctx, "oipa_search_policies", err), nil
	}

	return h.jsonResult(map[string]any{
		"count":    len(results),
		"policies": results,
	})
}

func (h *PolicyToolHandler) getPolicyDetails(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	policyGUID := req.GetString("policy_guid", "")
	policyNumber := req.GetString("policy_number", "")

	details, err := h.service.GetPolicyDetails(ctx, policyGUID, policyNumber)
	if err != nil {
		return h.toolError(ctx, "oipa_get_policy_details", err), nil
	}

	return h.jsonResult(details)
}

func (h *PolicyToolHandler) clientPortfolio(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	clientGUID, err := req.RequireString("client_guid")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	entries, err := h.service.GetClientPortfolio(ctx, clientGUID)
	if err != nil {
		return h.toolError(ctx, "oipa_client_portfolio", err), nil
	}

	return h.jsonResult(map[string]any{
		"client_guid": clientGUID,
		"count":       len(entries),
		"policies":    entries,
	})
}

func (h *PolicyToolHandler) policyCountsByStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	breakdown, err := h.service.CountPoliciesByStatus(ctx)
	if err != nil {
		return h.toolError(ctx, "oipa_policy_counts_by_status", err), nil
	}

	return h.jsonResult(breakdown)
}

func (h *PolicyToolHandler) searchClients(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	term := req.GetString("search_term", "")
	clientType := req.GetString("client_type", "")
	limit := req.GetInt("limit", 0)

	results, err := h.service.SearchClients(ctx, term, clientType, limit)
	if err != nil {
		return h.toolError(ctx, "oipa_search_clients", err), nil
	}

	return h.jsonResult(map[string]any{
		"count":   len(results),
		"clients": results,
	})
}

// toolError maps service errors to tool results. Validation failures and
// not-found lookups come back verbatim; anything else is logged and replaced
// with a generic message so driver internals never reach the model.
func (h *PolicyToolHandler) toolError(ctx context.Context, tool string, err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, services.ErrPolicyNotFound),
		errors.Is(err, queries.ErrNoPolicyIdentifier),
		errors.Is(err, queries.ErrNoClientIdentifier),
		errors.Is(err, domain.ErrUnknownStatus):
		return mcp.NewToolResultError(err.Error())
	default:
		h.logger.ErrorContext(ctx, "tool execution failed",
			slog.String("tool", tool),
			slog.String("error", err.Error()))
		return mcp.NewToolResultError(fmt.Sprintf("%s failed: query could not be executed", tool))
	}
}

func (h *PolicyToolHandler) jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
