// Package quotation_repo provides the PostgreSQL implementation of quotation.Repository.
package quotation_repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"jobquote/internal/core/apperror"
	"jobquote/internal/core/id"
	"jobquote/internal/domain"
	"jobquote/internal/domain/quotation"
	"jobquote/internal/infrastructure/storage/postgres"
)

const (
	tableQuotations     = "quotations"
	tableParts          = "quotation_parts"
	tableOperations     = "part_operations"
	tableAuxiliaryCosts = "part_auxiliary_costs"
)

var (
	quotationColumns = postgres.ExtractDBColumns[quotation.Quotation]()
	partColumns      = postgres.ExtractDBColumns[quotation.Part]()
	operationColumns = postgres.ExtractDBColumns[quotation.Operation]()
	auxColumns       = postgres.ExtractDBColumns[quotation.AuxiliaryCost]()
	totalsColumns    = postgres.ExtractDBColumns[quotation.Totals]()
)

// headerColumns are written by UpdateHeader.
var headerColumns = []string{
	"currency", "discount_percent", "margin_percent", "vat_percent",
	"lead_time", "payment_terms", "notes", "valid_until",
}

// Repo implements quotation.Repository.
type Repo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ quotation.Repository = (*Repo)(nil)

// New creates a quotation repository.
func New(txManager *postgres.TxManager) *Repo {
	return &Repo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *Repo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// exec runs stmt and maps constraint violations to AppErrors.
func (r *Repo) exec(ctx context.Context, stmt squirrel.Sqlizer, table string) (int64, error) {
	sql, args, err := stmt.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build %s statement: %w", table, err)
	}
	tag, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, mapError(err, table)
	}
	return tag.RowsAffected(), nil
}

func mapError(err error, table string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return apperror.NewDuplicate(table, pgErr.ConstraintName, pgErr.Detail).WithCause(err)
		case "23503":
			return apperror.NewValidation("referenced record does not exist").
				WithDetail("entity", table).
				WithDetail("constraint", pgErr.ConstraintName).
				WithCause(err)
		}
	}
	return fmt.Errorf("%s: %w", table, err)
}

// Create inserts the header row.
func (r *Repo) Create(ctx context.Context, q *quotation.Quotation) error {
	data := postgres.Pick(postgres.StructToMap(q), quotationColumns)
	_, err := r.exec(ctx, r.builder.Insert(tableQuotations).SetMap(data), tableQuotations)
	return err
}

// GetByID loads the header and the full part subtree.
func (r *Repo) GetByID(ctx context.Context, quotationID id.ID) (*quotation.Quotation, error) {
	return r.load(ctx, quotationID, false)
}

// GetForUpdate locks the header row until the transaction ends.
func (r *Repo) GetForUpdate(ctx context.Context, quotationID id.ID) (*quotation.Quotation, error) {
	return r.load(ctx, quotationID, true)
}

func (r *Repo) load(ctx context.Context, quotationID id.ID, forUpdate bool) (*quotation.Quotation, error) {
	q := r.builder.
		Select(quotationColumns...).
		From(tableQuotations).
		Where(squirrel.Eq{"id": quotationID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	out := &quotation.Quotation{}
	if err := pgxscan.Get(ctx, r.querier(ctx), out, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("quotation", quotationID.String())
		}
		return nil, fmt.Errorf("get quotation: %w", err)
	}

	parts, err := r.loadParts(ctx, quotationID)
	if err != nil {
		return nil, err
	}
	out.Parts = parts
	return out, nil
}

// UpdateHeader writes the header fields with an optimistic version check.
func (r *Repo) UpdateHeader(ctx context.Context, q *quotation.Quotation) error {
	data := postgres.Pick(postgres.StructToMap(q), headerColumns)
	return r.updateVersioned(ctx, q, data)
}

// UpdateStatus writes the status with an optimistic version check.
func (r *Repo) UpdateStatus(ctx context.Context, q *quotation.Quotation) error {
	return r.updateVersioned(ctx, q, map[string]any{"status": q.Status})
}

func (r *Repo) updateVersioned(ctx context.Context, q *quotation.Quotation, data map[string]any) error {
	stmt := r.builder.
		Update(tableQuotations).
		SetMap(data).
		Set("updated_at", q.UpdatedAt).
		Set("updated_by", q.UpdatedBy).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": q.ID}).
		Where(squirrel.Eq{"version": q.Version})

	n, err := r.exec(ctx, stmt, tableQuotations)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NewConcurrentModification("quotation", q.ID.String())
	}
	q.Touch()
	return nil
}

// SaveCosts writes every derived field of the tree in a single batch.
func (r *Repo) SaveCosts(ctx context.Context, q *quotation.Quotation) error {
	b := &postgres.Batch{}

	b.Queue(r.builder.
		Update(tableQuotations).
		SetMap(postgres.Pick(postgres.StructToMap(q.Totals), totalsColumns)).
		Where(squirrel.Eq{"id": q.ID}))

	for _, p := range q.Parts {
		b.Queue(r.builder.
			Update(tableParts).
			Set("unit_operations_cost", p.UnitOperationsCost).
			Set("unit_auxiliary_cost", p.UnitAuxiliaryCost).
			Set("part_subtotal", p.PartSubtotal).
			Where(squirrel.Eq{"id": p.ID}))

		for _, op := range p.Operations {
			b.Queue(r.builder.
				Update(tableOperations).
				Set("operation_cost", op.OperationCost).
				Where(squirrel.Eq{"id": op.ID}))
		}
	}

	if err := r.txManager.ExecBatch(ctx, b); err != nil {
		var noRows postgres.ErrBatchNoRows
		if errors.As(err, &noRows) {
			return apperror.NewNotFound("quotation", q.ID.String()).WithCause(err)
		}
		return fmt.Errorf("save costs: %w", err)
	}
	return nil
}

// Delete removes the quotation; parts and line items cascade. audit_log is untouched.
func (r *Repo) Delete(ctx context.Context, quotationID id.ID) error {
	n, err := r.exec(ctx, r.builder.Delete(tableQuotations).Where(squirrel.Eq{"id": quotationID}), tableQuotations)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NewNotFound("quotation", quotationID.String())
	}
	return nil
}

// List returns quotation headers without parts.
func (r *Repo) List(ctx context.Context, filter quotation.ListFilter) (domain.ListResult[*quotation.Quotation], error) {
	result := domain.ListResult[*quotation.Quotation]{
		Items:  make([]*quotation.Quotation, 0),
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.builder.Select(quotationColumns...).From(tableQuotations)
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := "%" + s + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"number": pattern},
			squirrel.ILike{"notes": pattern},
		})
	}

	countSQL, countArgs, err := r.builder.Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}
	if err := r.querier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count quotations: %w", err)
	}

	orderBy, err := parseOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy, "id DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, r.querier(ctx), &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list quotations: %w", err)
	}
	for _, item := range result.Items {
		item.Parts = make([]quotation.Part, 0)
	}

	return result, nil
}

var sortable = map[string]struct{}{
	"number":            {},
	"status":            {},
	"created_at":        {},
	"updated_at":        {},
	"total_quote_value": {},
}

func parseOrderBy(orderBy string) (string, error) {
	orderBy = strings.TrimSpace(orderBy)
	if orderBy == "" {
		return "created_at DESC", nil
	}

	direction := "ASC"
	field := orderBy
	if strings.HasPrefix(orderBy, "-") {
		direction = "DESC"
		field = strings.TrimPrefix(orderBy, "-")
	} else {
		field = strings.TrimPrefix(orderBy, "+")
	}

	if _, ok := sortable[field]; !ok {
		return "", apperror.NewValidation("invalid orderBy").
			WithDetail("field", "orderBy").
			WithDetail("value", orderBy)
	}
	return field + " " + direction, nil
}
