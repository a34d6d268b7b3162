// Package workflow implements the quotation approval state machine and the
// edit-eligibility gate. It never reads or writes monetary fields.
package workflow

import (
	"jobquote/internal/core/apperror"
	"jobquote/internal/core/security"
	"jobquote/internal/domain/audit"
	"jobquote/internal/domain/quotation"
)

// transitions is the exhaustive transition table. Issued is terminal.
var transitions = map[quotation.Status][]quotation.Status{
	quotation.StatusDraft:              {quotation.StatusSubmitted},
	quotation.StatusSubmitted:          {quotation.StatusEngineerApproved, quotation.StatusRejected},
	quotation.StatusEngineerApproved:   {quotation.StatusManagementApproved, quotation.StatusRejected},
	quotation.StatusManagementApproved: {quotation.StatusIssued, quotation.StatusRejected},
	quotation.StatusRejected:           {quotation.StatusDraft},
	quotation.StatusIssued:             {},
}

// transitionInfo describes what entering a status means.
type transitionInfo struct {
	action         audit.Action
	capability     security.Action
	defaultComment string
}

var byTarget = map[quotation.Status]transitionInfo{
	quotation.StatusSubmitted: {
		action: audit.ActionSubmitted, capability: security.ActionSubmit,
		defaultComment: "Quotation submitted for engineering review",
	},
	quotation.StatusEngineerApproved: {
		action: audit.ActionEngineerApproved, capability: security.ActionEngineerApprove,
		defaultComment: "Engineering review approved",
	},
	quotation.StatusManagementApproved: {
		action: audit.ActionManagementApproved, capability: security.ActionManagementApprove,
		defaultComment: "Management approval granted",
	},
	quotation.StatusRejected: {
		action: audit.ActionRejected, capability: security.ActionReject,
	},
	quotation.StatusIssued: {
		action: audit.ActionIssued, capability: security.ActionIssue,
		defaultComment: "Quotation issued to customer",
	},
	quotation.StatusDraft: {
		action: audit.ActionReopened, capability: security.ActionReopen,
		defaultComment: "Quotation returned to draft for revision",
	},
}

// editable lists statuses in which structural edits are allowed.
var editable = []quotation.Status{quotation.StatusDraft, quotation.StatusRejected}

// CanTransition reports whether the table has an edge from -> to.
func CanTransition(from, to quotation.Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AllowedTargets returns the statuses reachable from from in one step.
func AllowedTargets(from quotation.Status) []quotation.Status {
	out := make([]quotation.Status, len(transitions[from]))
	copy(out, transitions[from])
	return out
}

// ActionFor returns the audit label for entering target.
func ActionFor(target quotation.Status) audit.Action {
	return byTarget[target].action
}

// CapabilityFor returns the capability required to enter target.
func CapabilityFor(target quotation.Status) security.Action {
	return byTarget[target].capability
}

// DefaultComment returns the generated comment used when the caller supplies none.
func DefaultComment(target quotation.Status) string {
	return byTarget[target].defaultComment
}

// IsEditable reports whether structural edits are allowed in status s.
func IsEditable(s quotation.Status) bool {
	for _, st := range editable {
		if st == s {
			return true
		}
	}
	return false
}

// CheckEditable returns QUOTATION_LOCKED unless q is in Draft or Rejected.
func CheckEditable(q *quotation.Quotation) error {
	if IsEditable(q.Status) {
		return nil
	}
	return apperror.NewQuotationLocked(string(q.Status), statusNames(editable)...).
		WithDetail("quotation_id", q.ID.String())
}

// CheckDeletable returns QUOTATION_LOCKED unless q is in Draft.
func CheckDeletable(q *quotation.Quotation) error {
	if q.Status == quotation.StatusDraft {
		return nil
	}
	return apperror.NewQuotationLocked(string(q.Status), string(quotation.StatusDraft)).
		WithDetail("quotation_id", q.ID.String()).
		WithDetail("operation", "delete")
}

func statusNames(ss []quotation.Status) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = string(s)
	}
	return out
}
