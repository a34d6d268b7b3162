package memory

import (
	"context"

	"jobquote/internal/core/types"
	"jobquote/internal/domain/quotation"
	"jobquote/internal/domain/reports"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	store *Store
}

var _ reports.Repository = (*ReportRepo)(nil)

func (r *ReportRepo) StatusSummary(ctx context.Context) ([]reports.StatusRow, error) {
	var rows []reports.StatusRow
	err := r.store.do(ctx, func() error {
		byStatus := make(map[quotation.Status]*reports.StatusRow)
		for _, q := range r.store.quotations {
			row, ok := byStatus[q.Status]
			if !ok {
				row = &reports.StatusRow{Status: q.Status, TotalValue: types.Zero()}
				byStatus[q.Status] = row
			}
			row.Count++
			row.TotalValue = row.TotalValue.Add(q.TotalQuoteValue)
		}
		for _, st := range quotation.AllStatuses {
			if row, ok := byStatus[st]; ok {
				rows = append(rows, *row)
			}
		}
		return nil
	})
	return rows, err
}
