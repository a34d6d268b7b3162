package quotation

import (
	"fmt"

	"jobquote/internal/core/apperror"
)

// Status is the workflow state of a quotation.
type Status string

const (
	StatusDraft              Status = "Draft"
	StatusSubmitted          Status = "Submitted"
	StatusEngineerApproved   Status = "Engineer Approved"
	StatusManagementApproved Status = "Management Approved"
	StatusRejected           Status = "Rejected"
	StatusIssued             Status = "Issued"
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []Status{
	StatusDraft,
	StatusSubmitted,
	StatusEngineerApproved,
	StatusManagementApproved,
	StatusRejected,
	StatusIssued,
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s Status) String() string { return string(s) }

// ParseStatus validates a status name.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.IsValid() {
		return "", apperror.NewValidation(fmt.Sprintf("unknown status %q", raw)).
			WithDetail("field", "status")
	}
	return s, nil
}
