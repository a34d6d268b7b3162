// Package reports provides read-only aggregates over quotations.
package reports

import (
	"jobquote/internal/core/types"
	"jobquote/internal/domain/quotation"
)

// StatusRow is one grouped row of the status summary.
type StatusRow struct {
	Status     quotation.Status `db:"status"`
	Count      int64            `db:"count"`
	TotalValue types.Money      `db:"total_value"`
}

// Statistics is the dashboard aggregate.
type Statistics struct {
	// CountsByStatus has an entry for every status, zero when none exist.
	CountsByStatus map[quotation.Status]int64 `json:"countsByStatus"`

	// TotalCount is the number of existing quotations.
	TotalCount int64 `json:"totalCount"`

	// TotalIssuedValue sums total_quote_value over Issued quotations only.
	TotalIssuedValue types.Money `json:"totalIssuedValue"`
}
