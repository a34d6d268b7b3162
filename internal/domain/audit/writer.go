package audit

import (
	"context"
	"fmt"
	"time"

	"jobquote/internal/core/apperror"
	"jobquote/internal/core/id"
	"jobquote/pkg/logger"
)

// Writer validates and appends audit entries.
type Writer struct {
	store Store
	now   func() time.Time
}

// NewWriter creates a new audit writer.
func NewWriter(store Store) *Writer {
	return &Writer{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Append fills ID and timestamp and stores the entry.
// Must be called inside the same transaction as the change it records.
func (w *Writer) Append(ctx context.Context, e Entry) (*Entry, error) {
	if id.IsNil(e.QuotationID) {
		return nil, apperror.NewValidation("audit entry requires a quotation").
			WithDetail("field", "quotationId")
	}
	if e.Action == "" {
		return nil, apperror.NewValidation("audit entry requires an action").
			WithDetail("field", "action")
	}
	if e.PrincipalID == "" {
		return nil, apperror.NewValidation("audit entry requires a principal").
			WithDetail("field", "principalId")
	}

	if err := e.Err(); err != nil {
		logger.Error(ctx, "audit payload rejected",
			"quotation_id", e.QuotationID,
			"action", e.Action,
			"error", err)
		return nil, apperror.NewInternal(err)
	}

	if id.IsNil(e.ID) {
		e.ID = id.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = w.now()
	}

	if err := w.store.Append(ctx, &e); err != nil {
		return nil, fmt.Errorf("append audit entry: %w", err)
	}
	return &e, nil
}

// History returns the audit trail of a quotation, oldest first.
// It remains available after the quotation is deleted.
func (w *Writer) History(ctx context.Context, quotationID id.ID) ([]Entry, error) {
	entries, err := w.store.ListByQuotation(ctx, quotationID)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, nil
}
