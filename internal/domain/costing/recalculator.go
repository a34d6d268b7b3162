package costing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"jobquote/internal/core/apperror"
	"jobquote/internal/core/id"
	"jobquote/internal/core/tx"
	"jobquote/internal/domain/quotation"
	"jobquote/pkg/logger"
)

var tracer = otel.Tracer("jobquote/costing")

// Recalculator is the single entry point that brings a quotation's derived
// fields back in line with its parts after any structural mutation.
type Recalculator struct {
	repo      quotation.Repository
	txManager tx.Manager
}

// NewRecalculator creates a new recalculator.
func NewRecalculator(repo quotation.Repository, txManager tx.Manager) *Recalculator {
	return &Recalculator{repo: repo, txManager: txManager}
}

// Recalculate recomputes all parts and the totals of a quotation and persists them
// in one transaction. Idempotent. Returns NOT_FOUND if the quotation does not exist.
func (r *Recalculator) Recalculate(ctx context.Context, quotationID id.ID) (quotation.Totals, error) {
	var totals quotation.Totals

	err := r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		q, err := r.repo.GetForUpdate(ctx, quotationID)
		if err != nil {
			return err
		}
		if err := r.apply(ctx, q); err != nil {
			return err
		}
		totals = q.Totals
		return nil
	})
	if err != nil {
		return quotation.Totals{}, err
	}

	logger.Debug(ctx, "quotation recalculated",
		"quotation_id", quotationID,
		"total_quote_value", totals.TotalQuoteValue.String())

	return totals, nil
}

// RecalculateWithin is used by mutation paths that already hold the quotation lock.
// It reloads the current subtree, so interleaved writers always recompute from committed state.
// A missing target is a logic error here and is reported as INTERNAL_ERROR.
func (r *Recalculator) RecalculateWithin(ctx context.Context, quotationID id.ID) (*quotation.Quotation, error) {
	var q *quotation.Quotation

	err := r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		q, err = r.repo.GetForUpdate(ctx, quotationID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewInternal(fmt.Errorf("recalculate target %s disappeared: %w", quotationID, err)).
					WithDetail("quotation_id", quotationID.String())
			}
			return err
		}
		return r.apply(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (r *Recalculator) apply(ctx context.Context, q *quotation.Quotation) error {
	ctx, span := tracer.Start(ctx, "costing.rollup",
		trace.WithAttributes(
			attribute.String("quotation.id", q.ID.String()),
			attribute.Int("quotation.parts", len(q.Parts)),
		))
	defer span.End()

	RollupQuotation(q)

	if err := r.repo.SaveCosts(ctx, q); err != nil {
		span.RecordError(err)
		return fmt.Errorf("save costs: %w", err)
	}
	return nil
}
