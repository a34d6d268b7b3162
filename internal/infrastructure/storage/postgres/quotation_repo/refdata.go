package quotation_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"jobquote/internal/core/apperror"
	"jobquote/internal/core/id"
	"jobquote/internal/core/types"
	"jobquote/internal/domain/quotation"
	"jobquote/internal/infrastructure/storage/postgres"
)

// ReferenceData reads the master-data tables (machines, auxiliary_cost_types, customers).
// Rows are maintained outside this service.
type ReferenceData struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ quotation.ReferenceData = (*ReferenceData)(nil)

// NewReferenceData creates a reference data reader.
func NewReferenceData(txManager *postgres.TxManager) *ReferenceData {
	return &ReferenceData{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *ReferenceData) MachineRate(ctx context.Context, machineID id.ID) (types.Money, error) {
	return r.money(ctx, "machines", "hourly_rate", "machine", machineID)
}

func (r *ReferenceData) AuxiliaryDefaultCost(ctx context.Context, auxTypeID id.ID) (types.Money, error) {
	return r.money(ctx, "auxiliary_cost_types", "default_cost", "auxiliary cost type", auxTypeID)
}

func (r *ReferenceData) CustomerExists(ctx context.Context, customerID id.ID) (bool, error) {
	sql, args, err := r.builder.
		Select("1").
		From("customers").
		Where(squirrel.Eq{"id": customerID}).
		Prefix("SELECT EXISTS (").
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var exists bool
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check customer: %w", err)
	}
	return exists, nil
}

func (r *ReferenceData) money(ctx context.Context, table, column, entity string, rowID id.ID) (types.Money, error) {
	sql, args, err := r.builder.
		Select(column).
		From(table).
		Where(squirrel.Eq{"id": rowID}).
		ToSql()
	if err != nil {
		return types.Zero(), fmt.Errorf("build query: %w", err)
	}

	var value types.Money
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.Zero(), apperror.NewNotFound(entity, rowID.String())
		}
		return types.Zero(), fmt.Errorf("get %s: %w", column, err)
	}
	return value, nil
}
