// internal/core/domain/policy.go
package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrUnknownStatus is returned for status filter values outside the known set.
var ErrUnknownStatus = errors.New("unknown policy status")

// PolicyStatus is the caller-facing status filter for policy searches.
type PolicyStatus string

const (
	StatusActive    PolicyStatus = "active"
	StatusCancelled PolicyStatus = "cancelled"
	StatusPending   PolicyStatus = "pending"
	StatusSuspended PolicyStatus = "suspended"
	StatusAll       PolicyStatus = "all"
)

// statusCodes maps filter values to the AsPolicy.StatusCode values stored in OIPA.
var statusCodes = map[PolicyStatus]string{
	StatusActive:    "01",
	StatusCancelled: "99",
	StatusPending:   "08",
	StatusSuspended: "02",
}

// statusNames maps raw StatusCode values to display names.
var statusNames = map[string]string{
	"01": "Active",
	"08": "Pending",
	"99": "Cancelled",
	"13": "Suspended",
	"14": "Lapsed",
}

// Code returns the OIPA status code for a filter value. The second return is
// false for StatusAll, the empty status, and unknown values, all of which mean
// "do not filter".
func (s PolicyStatus) Code() (string, bool) {
	code, ok := statusCodes[s]
	return code, ok
}

// Valid reports whether s is one of the known filter values.
func (s PolicyStatus) Valid() bool {
	if s == StatusAll || s == "" {
		return true
	}
	_, ok := statusCodes[s]
	return ok
}

// ParsePolicyStatus normalizes a caller-supplied status filter string.
func ParsePolicyStatus(s string) (PolicyStatus, error) {
	status := PolicyStatus(strings.ToLower(strings.TrimSpace(s)))
	if status == "" {
		return StatusAll, nil
	}
	if !status.Valid() {
		return "", fmt.Errorf("%w %q", ErrUnknownStatus, s)
	}
	return status, nil
}

// StatusName converts a raw OIPA status code to a display name.
func StatusName(code string) string {
	if name, ok := statusNames[code]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (%s)", code)
}

// roleNames is the AsCodeRole lookup used as a fallback when the AsCode join
// returns no description for a role code.
var roleNames = map[string]string{
	"01": "Primary Insured",
	"02": "Secondary Insured",
	"03": "Tertiary Insured",
	"04": "Payor",
	"05": "Insured",
	"06": "Co-Insured",
	"07": "Joint Insured",
	"08": "Contingent Owner",
	"09": "Successor Owner",
	"10": "Trustee",
	"11": "Producer",
	"12": "Agent",
	"13": "Policy Owner",
	"14": "Producer Payee",
	"15": "Broker",
	"16": "Case Manager",
	"17": "Servicing Agent",
	"18": "Billing Contact",
	"19": "Alternative Payor",
	"20": "Contingent Payor",
	"21": "Premium Payor",
	"22": "Other",
	"23": "Power of Attorney",
	"24": "Guardian",
	"25": "Conservator",
	"26": "Primary Beneficiary",
	"27": "Annuitant",
	"28": "Joint Annuitant",
	"29": "Contingent Annuitant",
	"30": "Successor Annuitant",
	"31": "Beneficiary Payee",
	"32": "Contingent Beneficiary",
	"33": "Tertiary Beneficiary",
	"34": "Beneficiary",
	"35": "Estate Beneficiary",
	"36": "Trust Beneficiary",
	"37": "Corporation",
	"38": "Partnership",
	"39": "Charity",
	"40": "Other Entity",
}

// RoleName converts an AsRole.RoleCode to a display name.
func RoleName(code string) string {
	if name, ok := roleNames[code]; ok {
		return name
	}
	return fmt.Sprintf("Role %s", code)
}

// ClientRef identifies a client attached to a policy result.
type ClientRef struct {
	GUID  string `json:"client_guid"`
	Name  string `json:"name"`
	TaxID string `json:"tax_id,omitempty"`
}

// PolicySummary is one row of a policy search result.
type PolicySummary struct {
	GUID        string    `json:"policy_guid"`
	Number      string    `json:"policy_number"`
	Name        string    `json:"policy_name"`
	Status      string    `json:"status"`
	StatusCode  string    `json:"status_code"`
	PlanDate    string    `json:"plan_date,omitempty"`
	UpdatedDate string    `json:"updated_date,omitempty"`
	Client      ClientRef `json:"client"`
}

// PolicyInfo is the policy block of a detail response.
type PolicyInfo struct {
	GUID         string `json:"guid"`
	Number       string `json:"number"`
	Name         string `json:"name"`
	Status       string `json:"status"`
	StatusCode   string `json:"status_code"`
	PlanDate     string `json:"plan_date,omitempty"`
	IssueState   string `json:"issue_state,omitempty"`
	CreationDate string `json:"creation_date,omitempty"`
	UpdatedDate  string `json:"updated_date,omitempty"`
}

// ClientInfo is the primary insured block of a detail response.
type ClientInfo struct {
	GUID        string `json:"guid"`
	Name        string `json:"name"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	TaxID       string `json:"tax_id,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	Gender      string `json:"gender,omitempty"`
	Email       string `json:"email,omitempty"`
}

// PlanInfo is the plan block of a detail response.
type PlanInfo struct {
	GUID string `json:"guid,omitempty"`
	Name string `json:"name,omitempty"`
}

// PolicyRole is one role attached to a policy, with the client filling it.
type PolicyRole struct {
	GUID       string           `json:"role_guid"`
	Code       string           `json:"role_code"`
	Type       string           `json:"role_type"`
	StatusCode string           `json:"role_status_code,omitempty"`
	Percent    *decimal.Decimal `json:"percent,omitempty"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	Client     ClientInfo       `json:"client"`
}

// PolicyDetails is the full detail response for a single policy.
type PolicyDetails struct {
	Policy        PolicyInfo   `json:"policy"`
	PrimaryClient ClientInfo   `json:"primary_client"`
	Plan          PlanInfo     `json:"plan"`
	Roles         []PolicyRole `json:"roles"`
}

// PortfolioEntry is one policy held by a client.
type PortfolioEntry struct {
	GUID        string           `json:"policy_guid"`
	Number      string           `json:"policy_number"`
	Name        string           `json:"policy_name"`
	Status      string           `json:"status"`
	StatusCode  string           `json:"status_code"`
	PlanDate    string           `json:"plan_date,omitempty"`
	UpdatedDate string           `json:"updated_date,omitempty"`
	RoleCode    string           `json:"role_code"`
	RoleType    string           `json:"role_type"`
	RolePercent *decimal.Decimal `json:"role_percent,omitempty"`
	PlanName    string           `json:"plan_name,omitempty"`
}

// StatusCount is one aggregate row of the status breakdown.
type StatusCount struct {
	Status     string          `json:"status"`
	StatusCode string          `json:"status_code"`
	Count      int64           `json:"count"`
	Percentage decimal.Decimal `json:"percentage"`
}

// StatusBreakdown is the full status aggregation response.
type StatusBreakdown struct {
	TotalPolicies int64         `json:"total_policies"`
	Statuses      []StatusCount `json:"status_breakdown"`
	Summary       string        `json:"summary"`
}

// ClientSummary is one row of a client search result.
type ClientSummary struct {
	GUID        string `json:"client_guid"`
	Name        string `json:"name"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	TaxID       string `json:"tax_id,omitempty"`
	TypeCode    string `json:"type_code,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	Email       string `json:"email,omitempty"`
	StatusCode  string `json:"status_code,omitempty"`
}

// FormatClientName builds a display name from the name fields OIPA stores.
// Company name wins for corporate clients, then first+last, then whichever
// half is present.
func FormatClientName(firstName, lastName, companyName string) string {
	switch {
	case companyName != "":
		return companyName
	case firstName != "" && lastName != "":
		return firstName + " " + lastName
	case firstName != "":
		return firstName
	case lastName != "":
		return lastName
	default:
		return "Unknown Client"
	}
}

// FormatDate renders a nullable date the way OIPA consumers expect.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// FormatTimestamp renders a nullable timestamp with time of day.
func FormatTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
