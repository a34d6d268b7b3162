package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jobquote/internal/core/apperror"
	"jobquote/internal/core/id"
	"jobquote/internal/domain/quotation"
)

func TestCanTransition_Table(t *testing.T) {
	want := map[quotation.Status][]quotation.Status{
		quotation.StatusDraft:              {quotation.StatusSubmitted},
		quotation.StatusSubmitted:          {quotation.StatusEngineerApproved, quotation.StatusRejected},
		quotation.StatusEngineerApproved:   {quotation.StatusManagementApproved, quotation.StatusRejected},
		quotation.StatusManagementApproved: {quotation.StatusIssued, quotation.StatusRejected},
		quotation.StatusRejected:           {quotation.StatusDraft},
		quotation.StatusIssued:             {},
	}

	for _, from := range quotation.AllStatuses {
		for _, to := range quotation.AllStatuses {
			expected := false
			for _, allowed := range want[from] {
				if allowed == to {
					expected = true
				}
			}
			assert.Equal(t, expected, CanTransition(from, to), "%s -> %s", from, to)
		}
		assert.ElementsMatch(t, want[from], AllowedTargets(from), from)
	}
}

func TestActionAndDefaultComment(t *testing.T) {
	assert.Equal(t, "submitted", string(ActionFor(quotation.StatusSubmitted)))
	assert.Equal(t, "reopened", string(ActionFor(quotation.StatusDraft)))
	assert.Equal(t, "rejected", string(ActionFor(quotation.StatusRejected)))
	assert.NotEmpty(t, DefaultComment(quotation.StatusIssued))
	assert.Empty(t, DefaultComment(quotation.StatusRejected))
}

func TestCheckEditable(t *testing.T) {
	for _, st := range quotation.AllStatuses {
		q := &quotation.Quotation{Status: st}
		q.ID = id.New()

		err := CheckEditable(q)
		if st == quotation.StatusDraft || st == quotation.StatusRejected {
			assert.NoError(t, err, st)
			continue
		}
		appErr, ok := apperror.AsAppError(err)
		if assert.True(t, ok, st) {
			assert.Equal(t, apperror.CodeQuotationLocked, appErr.Code)
			assert.Equal(t, string(st), appErr.Details["current_status"])
		}
	}
}

func TestCheckDeletable(t *testing.T) {
	for _, st := range quotation.AllStatuses {
		q := &quotation.Quotation{Status: st}
		err := CheckDeletable(q)
		if st == quotation.StatusDraft {
			assert.NoError(t, err)
		} else {
			assert.True(t, apperror.IsQuotationLocked(err), st)
		}
	}
}
