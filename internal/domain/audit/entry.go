// Package audit records the append-only history of a quotation.
// Entries are never updated or removed, including after the quotation is deleted.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"jobquote/internal/core/id"
	"jobquote/internal/domain/quotation"
)

// Action labels an audit entry.
type Action string

// Workflow transitions
const (
	ActionSubmitted          Action = "submitted"
	ActionEngineerApproved   Action = "engineer_approved"
	ActionManagementApproved Action = "management_approved"
	ActionRejected           Action = "rejected"
	ActionIssued             Action = "issued"
	ActionReopened           Action = "reopened"
)

// Structural changes
const (
	ActionCreated              Action = "created"
	ActionUpdated              Action = "updated"
	ActionDeleted              Action = "deleted"
	ActionDuplicated           Action = "duplicated"
	ActionPartAdded            Action = "part_added"
	ActionPartUpdated          Action = "part_updated"
	ActionPartDeleted          Action = "part_deleted"
	ActionOperationAdded       Action = "operation_added"
	ActionOperationUpdated     Action = "operation_updated"
	ActionOperationDeleted     Action = "operation_deleted"
	ActionAuxiliaryCostAdded   Action = "auxiliary_cost_added"
	ActionAuxiliaryCostUpdated Action = "auxiliary_cost_updated"
	ActionAuxiliaryCostDeleted Action = "auxiliary_cost_deleted"
)

// Entry is a single audit record.
type Entry struct {
	ID            id.ID             `db:"id" json:"id"`
	QuotationID   id.ID             `db:"quotation_id" json:"quotationId"`
	Action        Action            `db:"action" json:"action"`
	OldStatus     *quotation.Status `db:"old_status" json:"oldStatus,omitempty"`
	NewStatus     *quotation.Status `db:"new_status" json:"newStatus,omitempty"`
	PrincipalID   string            `db:"principal_id" json:"principalId"`
	PrincipalRole string            `db:"principal_role" json:"principalRole,omitempty"`
	Comment       string            `db:"comment" json:"comment,omitempty"`
	Details       json.RawMessage   `db:"details" json:"details,omitempty"`
	CreatedAt     time.Time         `db:"created_at" json:"createdAt"`

	// detailsErr holds a payload encoding failure; Writer.Append refuses the entry.
	detailsErr error
}

// NewEntry creates an entry attributed to principal.
func NewEntry(quotationID id.ID, action Action, principal quotation.Principal, comment string) Entry {
	return Entry{
		QuotationID:   quotationID,
		Action:        action,
		PrincipalID:   principal.ID,
		PrincipalRole: string(principal.Role),
		Comment:       comment,
	}
}

// WithStatusChange records the transition from -> to.
func (e Entry) WithStatusChange(from, to quotation.Status) Entry {
	e.OldStatus = &from
	e.NewStatus = &to
	return e
}

// WithDetails attaches a JSON-encodable payload.
// An encoding failure is kept on the entry and reported by Writer.Append.
func (e Entry) WithDetails(details any) Entry {
	if details == nil {
		return e
	}
	raw, err := json.Marshal(details)
	if err != nil {
		e.detailsErr = fmt.Errorf("encode %s details: %w", e.Action, err)
		return e
	}
	e.Details = raw
	e.detailsErr = nil
	return e
}

// Err returns the payload encoding error, if any.
func (e Entry) Err() error {
	return e.detailsErr
}

// Store persists audit entries. Implementations join the transaction carried by ctx.
type Store interface {
	Append(ctx context.Context, e *Entry) error

	// ListByQuotation returns entries oldest first.
	ListByQuotation(ctx context.Context, quotationID id.ID) ([]Entry, error)
}
