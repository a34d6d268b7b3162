package memory

import (
	"context"

	"jobquote/internal/core/id"
	"jobquote/internal/domain/audit"
)

// AuditStore implements audit.Store. Entries outlive their quotation.
type AuditStore struct {
	store *Store
}

var _ audit.Store = (*AuditStore)(nil)

func (a *AuditStore) Append(ctx context.Context, e *audit.Entry) error {
	return a.store.do(ctx, func() error {
		entry := *e
		entry.Details = append([]byte(nil), e.Details...)
		a.store.audit = append(a.store.audit, entry)
		return nil
	})
}

func (a *AuditStore) ListByQuotation(ctx context.Context, quotationID id.ID) ([]audit.Entry, error) {
	out := make([]audit.Entry, 0)
	err := a.store.do(ctx, func() error {
		for _, e := range a.store.audit {
			if e.QuotationID == quotationID {
				out = append(out, e)
			}
		}
		return nil
	})
	return out, err
}
