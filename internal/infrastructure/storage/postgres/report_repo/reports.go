// Package report_repo provides the PostgreSQL implementation of reports.Repository.
package report_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"jobquote/internal/domain/reports"
	"jobquote/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ reports.Repository = (*ReportRepo)(nil)

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// StatusSummary groups quotations by status in one consistent read.
func (r *ReportRepo) StatusSummary(ctx context.Context) ([]reports.StatusRow, error) {
	sql, args, err := r.builder.
		Select("status", "COUNT(*) AS count", "COALESCE(SUM(total_quote_value), 0) AS total_value").
		From("quotations").
		GroupBy("status").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []reports.StatusRow
	err = r.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		return pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("status summary: %w", err)
	}
	return rows, nil
}
