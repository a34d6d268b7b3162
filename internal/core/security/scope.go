// Package security provides authorization and access control.
package security

import "strings"

// Role names a principal's function in the quoting process.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleSales    Role = "sales"
	RoleEngineer Role = "engineer"
	RoleManager  Role = "manager"
)

// Action is a capability that can be granted to a role.
type Action string

const (
	ActionRead        Action = "quotation.read"
	ActionCreate      Action = "quotation.create"
	ActionEdit        Action = "quotation.edit"
	ActionDelete      Action = "quotation.delete"
	ActionRecalculate Action = "quotation.recalculate"

	// Workflow transitions
	ActionSubmit            Action = "quotation.submit"
	ActionEngineerApprove   Action = "quotation.engineer_approve"
	ActionManagementApprove Action = "quotation.management_approve"
	ActionReject            Action = "quotation.reject"
	ActionIssue             Action = "quotation.issue"
	ActionReopen            Action = "quotation.reopen"

	ActionViewStatistics Action = "statistics.read"
	ActionViewAuditTrail Action = "quotation.audit"
)

// AllActions lists every action known to the default policy.
var AllActions = []Action{
	ActionRead, ActionCreate, ActionEdit, ActionDelete, ActionRecalculate,
	ActionSubmit, ActionEngineerApprove, ActionManagementApprove, ActionReject,
	ActionIssue, ActionReopen, ActionViewStatistics, ActionViewAuditTrail,
}

// EnvKey returns the environment variable that overrides the action's policy,
// e.g. quotation.engineer_approve -> POLICY_QUOTATION_ENGINEER_APPROVE.
func (a Action) EnvKey() string {
	return "POLICY_" + strings.ToUpper(strings.NewReplacer(".", "_").Replace(string(a)))
}

// Principal is the opaque identity performing an operation.
type Principal struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// IsZero reports whether the principal carries no identity.
func (p Principal) IsZero() bool {
	return p.ID == ""
}
