// internal/core/queries/queries.go

// Package queries builds the fixed set of parameterized SQL statements the
// adapter runs against the OIPA schema. All schema knowledge (table names,
// join keys, status codes) lives here; no other package constructs SQL.
//
// Every builder is a pure function returning a Query whose SQL text contains
// only named bind placeholders. Caller-supplied values are never interpolated
// into the text, including row limits.
package queries

import (
	"errors"
	"strings"

	"github.com/insuretech-labs/oipa-mcp/internal/core/domain"
)

var (
	// ErrNoPolicyIdentifier is returned when a policy lookup has neither a
	// GUID nor a policy number to go on.
	ErrNoPolicyIdentifier = errors.New("either a policy GUID or a policy number must be provided")

	// ErrNoClientIdentifier is returned when a portfolio lookup is missing
	// its client GUID.
	ErrNoClientIdentifier = errors.New("a client GUID must be provided")
)

// DefaultLimit caps search results when the caller does not supply a limit.
const DefaultLimit = 50

// Query pairs SQL text with its named bind parameters. It is an ephemeral
// value; builders return a fresh one per call.
type Query struct {
	SQL    string
	Params map[string]any
}

// condSet accumulates WHERE predicates joined with AND, and the binds they
// reference. Predicates carry placeholders only; values go through bind.
type condSet struct {
	conds  []string
	params map[string]any
}

func newCondSet() *condSet {
	return &condSet{params: make(map[string]any)}
}

func (c *condSet) add(expr string) {
	c.conds = append(c.conds, expr)
}

// anyOf adds a parenthesized OR-group of predicates as one AND term.
func (c *condSet) anyOf(exprs ...string) {
	c.conds = append(c.conds, "("+strings.Join(exprs, " OR ")+")")
}

func (c *condSet) bind(name string, value any) {
	c.params[name] = value
}

// whereClause renders "WHERE a AND b", or "" when no predicate was added.
func (c *condSet) whereClause() string {
	if len(c.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(c.conds, " AND ")
}

// policyClientJoin resolves the primary insured (RoleCode '01') for each
// policy. LEFT JOINs keep policies with no client role visible.
const policyClientJoin = `AsPolicy p
LEFT JOIN AsRole r ON p.PolicyGUID = r.PolicyGUID AND r.RoleCode = '01'
LEFT JOIN AsClient c ON r.ClientGUID = c.ClientGUID`

const policyPlanClientJoin = `AsPolicy p
LEFT JOIN AsPlan pl ON p.PlanGUID = pl.PlanGUID
LEFT JOIN AsRole r ON p.PolicyGUID = r.PolicyGUID AND r.RoleCode = '01'
LEFT JOIN AsClient c ON r.ClientGUID = c.ClientGUID`

// SearchPolicies builds the policy search query. A non-empty term is matched
// case-insensitively as a substring across policy number, client names, and
// tax id. A concrete status filter is ANDed in. With neither, the query
// returns the most recently updated policies up to the limit; that fallback
// is intentional.
func SearchPolicies(term string, status domain.PolicyStatus, limit int) Query {
	if limit <= 0 {
		limit = DefaultLimit
	}

	cs := newCondSet()

	if term != "" {
		cs.anyOf(
			"UPPER(p.PolicyNumber) LIKE UPPER(:search_term)",
			"UPPER(c.FirstName) LIKE UPPER(:search_term)",
			"UPPER(c.LastName) LIKE UPPER(:search_term)",
			"UPPER(c.CompanyName) LIKE UPPER(:search_term)",
			"UPPER(c.TaxID) LIKE UPPER(:search_term)",
		)
		cs.bind("search_term", "%"+term+"%")
	}

	if code, ok := status.Code(); ok {
		cs.add("p.StatusCode = :status_code")
		cs.bind("status_code", code)
	}

	cs.bind("max_rows", limit)

	sql := `SELECT
    p.PolicyGUID AS policy_guid,
    p.PolicyNumber AS policy_number,
    p.PolicyName AS policy_name,
    p.StatusCode AS status_code,
    p.PlanDate AS plan_date,
    p.UpdatedGmt AS updated_date,
    c.ClientGUID AS client_guid,
    c.FirstName AS client_first_name,
    c.LastName AS client_last_name,
    c.CompanyName AS company_name,
    c.TaxID AS tax_id
FROM ` + policyClientJoin + "\n" +
		joinClause(cs.whereClause()) +
		`ORDER BY p.UpdatedGmt DESC
FETCH FIRST :max_rows ROWS ONLY`

	return Query{SQL: sql, Params: cs.params}
}

// PolicyDetails builds the single-policy lookup. Exactly one identifier is
// needed; when both are set the GUID wins. With neither, the builder fails
// before any SQL exists.
func PolicyDetails(policyGUID, policyNumber string) (Query, error) {
	if policyGUID == "" && policyNumber == "" {
		return Query{}, ErrNoPolicyIdentifier
	}

	cs := newCondSet()
	if policyGUID != "" {
		cs.add("p.PolicyGUID = :policy_guid")
		cs.bind("policy_guid", policyGUID)
	} else {
		cs.add("p.PolicyNumber = :policy_number")
		cs.bind("policy_number", policyNumber)
	}

	sql := `SELECT
    p.PolicyGUID AS policy_guid,
    p.PolicyNumber AS policy_number,
    p.PolicyName AS policy_name,
    p.StatusCode AS status_code,
    p.PlanDate AS plan_date,
    p.IssueStateCode AS issue_state,
    p.CreationDate AS creation_date,
    p.UpdatedGmt AS updated_date,
    c.ClientGUID AS client_guid,
    c.FirstName AS client_first_name,
    c.LastName AS client_last_name,
    c.CompanyName AS company_name,
    c.TaxID AS tax_id,
    c.DateOfBirth AS date_of_birth,
    c.Sex AS gender,
    pl.PlanGUID AS plan_guid,
    pl.PlanName AS plan_name
FROM ` + policyPlanClientJoin + "\n" +
		joinClause(cs.whereClause())

	return Query{SQL: strings.TrimRight(sql, "\n"), Params: cs.params}, nil
}

// PolicyRoles builds the query for every role attached to a policy, joined
// with the client filling it and the AsCode description of the role code.
func PolicyRoles(policyGUID string) (Query, error) {
	if policyGUID == "" {
		return Query{}, ErrNoPolicyIdentifier
	}

	sql := `SELECT
    r.RoleGUID AS role_guid,
    r.RoleCode AS role_code,
    r.RolePercent AS role_percent,
    r.RoleAmount AS role_amount,
    r.StatusCode AS role_status_code,
    rc.ShortDescription AS role_type_name,
    c.ClientGUID AS client_guid,
    c.FirstName AS first_name,
    c.LastName AS last_name,
    c.CompanyName AS company_name,
    c.TaxID AS tax_id,
    c.TypeCode AS client_type_code,
    c.DateOfBirth AS date_of_birth,
    c.Sex AS gender,
    c.Email AS email
FROM AsRole r
LEFT JOIN AsClient c ON r.ClientGUID = c.ClientGUID
LEFT JOIN AsCode rc ON rc.CodeValue = r.RoleCode AND rc.CodeName = 'AsCodeRole'
WHERE r.PolicyGUID = :policy_guid
ORDER BY r.RoleCode`

	return Query{SQL: sql, Params: map[string]any{"policy_guid": policyGUID}}, nil
}

// ClientPortfolio builds the query for every policy a client holds a role on,
// most recently updated first.
func ClientPortfolio(clientGUID string) (Query, error) {
	if clientGUID == "" {
		return Query{}, ErrNoClientIdentifier
	}

	sql := `SELECT
    p.PolicyGUID AS policy_guid,
    p.PolicyNumber AS policy_number,
    p.PolicyName AS policy_name,
    p.StatusCode AS status_code,
    p.PlanDate AS plan_date,
    p.UpdatedGmt AS updated_date,
    r.RoleCode AS role_code,
    r.RolePercent AS role_percent,
    pl.PlanName AS plan_name
FROM AsRole r
JOIN AsPolicy p ON r.PolicyGUID = p.PolicyGUID
LEFT JOIN AsPlan pl ON p.PlanGUID = pl.PlanGUID
WHERE r.ClientGUID = :client_guid
ORDER BY p.UpdatedGmt DESC`

	return Query{SQL: sql, Params: map[string]any{"client_guid": clientGUID}}, nil
}

// CountPoliciesByStatus builds the status aggregation. The percentage is
// computed in SQL with a window function so a single scan produces the whole
// breakdown.
func CountPoliciesByStatus() Query {
	sql := `SELECT
    p.StatusCode AS status_code,
    COUNT(*) AS policy_count,
    ROUND(COUNT(*) * 100.0 / SUM(COUNT(*)) OVER (), 2) AS percentage
FROM AsPolicy p
GROUP BY p.StatusCode
ORDER BY policy_count DESC`

	return Query{SQL: sql, Params: map[string]any{}}
}

// SearchClients builds the client search query. Free text matches name
// fields, company name, tax id, and email; a client type filter is ANDed in.
func SearchClients(term, clientType string, limit int) Query {
	if limit <= 0 {
		limit = DefaultLimit
	}

	cs := newCondSet()

	if term != "" {
		cs.anyOf(
			"UPPER(c.FirstName) LIKE UPPER(:search_term)",
			"UPPER(c.LastName) LIKE UPPER(:search_term)",
			"UPPER(c.CompanyName) LIKE UPPER(:search_term)",
			"UPPER(c.TaxID) LIKE UPPER(:search_term)",
			"UPPER(c.Email) LIKE UPPER(:search_term)",
		)
		cs.bind("search_term", "%"+term+"%")
	}

	if clientType != "" {
		cs.add("c.TypeCode = :client_type")
		cs.bind("client_type", clientType)
	}

	cs.bind("max_rows", limit)

	sql := `SELECT
    c.ClientGUID AS client_guid,
    c.FirstName AS first_name,
    c.LastName AS last_name,
    c.CompanyName AS company_name,
    c.TaxID AS tax_id,
    c.TypeCode AS type_code,
    c.DateOfBirth AS date_of_birth,
    c.Email AS email,
    c.StatusCode AS status_code
FROM AsClient c
` + joinClause(cs.whereClause()) +
		`ORDER BY c.LastName, c.FirstName, c.CompanyName
FETCH FIRST :max_rows ROWS ONLY`

	return Query{SQL: sql, Params: cs.params}
}

// joinClause appends a newline after a non-empty clause so fragments stay
// readable when concatenated.
func joinClause(clause string) string {
	if clause == "" {
		return ""
	}
	return clause + "\n"
}
