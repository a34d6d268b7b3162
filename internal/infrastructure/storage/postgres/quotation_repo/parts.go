package quotation_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"jobquote/internal/core/apperror"
	"jobquote/internal/core/id"
	"jobquote/internal/domain/quotation"
	"jobquote/internal/infrastructure/storage/postgres"
)

// loadParts reads parts ordered by line number together with their line items.
func (r *Repo) loadParts(ctx context.Context, quotationID id.ID) ([]quotation.Part, error) {
	parts := make([]quotation.Part, 0)
	if err := r.selectInto(ctx, &parts, r.builder.
		Select(partColumns...).
		From(tableParts).
		Where(squirrel.Eq{"quotation_id": quotationID}).
		OrderBy("line_no")); err != nil {
		return nil, fmt.Errorf("load parts: %w", err)
	}
	if len(parts) == 0 {
		return parts, nil
	}

	partIDs := make([]id.ID, len(parts))
	byID := make(map[id.ID]*quotation.Part, len(parts))
	for i := range parts {
		parts[i].Operations = make([]quotation.Operation, 0)
		parts[i].AuxiliaryCosts = make([]quotation.AuxiliaryCost, 0)
		partIDs[i] = parts[i].ID
		byID[parts[i].ID] = &parts[i]
	}

	var ops []quotation.Operation
	if err := r.selectInto(ctx, &ops, r.builder.
		Select(operationColumns...).
		From(tableOperations).
		Where(squirrel.Eq{"part_id": partIDs}).
		OrderBy("sequence", "id")); err != nil {
		return nil, fmt.Errorf("load operations: %w", err)
	}
	for _, op := range ops {
		p := byID[op.PartID]
		p.Operations = append(p.Operations, op)
	}

	var auxs []quotation.AuxiliaryCost
	if err := r.selectInto(ctx, &auxs, r.builder.
		Select(auxColumns...).
		From(tableAuxiliaryCosts).
		Where(squirrel.Eq{"part_id": partIDs}).
		OrderBy("id")); err != nil {
		return nil, fmt.Errorf("load auxiliary costs: %w", err)
	}
	for _, aux := range auxs {
		p := byID[aux.PartID]
		p.AuxiliaryCosts = append(p.AuxiliaryCosts, aux)
	}

	return parts, nil
}

func (r *Repo) selectInto(ctx context.Context, dst any, q squirrel.SelectBuilder) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return pgxscan.Select(ctx, r.querier(ctx), dst, sql, args...)
}

func (r *Repo) insert(ctx context.Context, table string, row any, cols []string) error {
	data := postgres.Pick(postgres.StructToMap(row), cols)
	_, err := r.exec(ctx, r.builder.Insert(table).SetMap(data), table)
	return err
}

// update writes the user-entered columns of a child row; derived columns are left to SaveCosts.
func (r *Repo) update(ctx context.Context, table, entity string, rowID id.ID, row any, cols []string, exclude ...string) error {
	data := postgres.Pick(postgres.StructToMap(row), cols, exclude...)
	n, err := r.exec(ctx, r.builder.Update(table).SetMap(data).Where(squirrel.Eq{"id": rowID}), table)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NewNotFound(entity, rowID.String())
	}
	return nil
}

func (r *Repo) delete(ctx context.Context, table, entity string, rowID id.ID) error {
	n, err := r.exec(ctx, r.builder.Delete(table).Where(squirrel.Eq{"id": rowID}), table)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NewNotFound(entity, rowID.String())
	}
	return nil
}

func (r *Repo) CreatePart(ctx context.Context, p *quotation.Part) error {
	return r.insert(ctx, tableParts, p, partColumns)
}

func (r *Repo) UpdatePart(ctx context.Context, p *quotation.Part) error {
	return r.update(ctx, tableParts, "part", p.ID, p, partColumns,
		"id", "quotation_id", "line_no", "unit_operations_cost", "unit_auxiliary_cost", "part_subtotal")
}

func (r *Repo) DeletePart(ctx context.Context, partID id.ID) error {
	return r.delete(ctx, tableParts, "part", partID)
}

func (r *Repo) CreateOperation(ctx context.Context, op *quotation.Operation) error {
	return r.insert(ctx, tableOperations, op, operationColumns)
}

func (r *Repo) UpdateOperation(ctx context.Context, op *quotation.Operation) error {
	return r.update(ctx, tableOperations, "operation", op.ID, op, operationColumns,
		"id", "part_id", "operation_cost")
}

func (r *Repo) DeleteOperation(ctx context.Context, opID id.ID) error {
	return r.delete(ctx, tableOperations, "operation", opID)
}

func (r *Repo) CreateAuxiliaryCost(ctx context.Context, aux *quotation.AuxiliaryCost) error {
	return r.insert(ctx, tableAuxiliaryCosts, aux, auxColumns)
}

func (r *Repo) UpdateAuxiliaryCost(ctx context.Context, aux *quotation.AuxiliaryCost) error {
	return r.update(ctx, tableAuxiliaryCosts, "auxiliary cost", aux.ID, aux, auxColumns, "id", "part_id")
}

func (r *Repo) DeleteAuxiliaryCost(ctx context.Context, auxID id.ID) error {
	return r.delete(ctx, tableAuxiliaryCosts, "auxiliary cost", auxID)
}
