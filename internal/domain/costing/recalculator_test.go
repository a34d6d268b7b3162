package costing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobquote/internal/core/apperror"
	"jobquote/internal/core/id"
	"jobquote/internal/domain/quotation"
	"jobquote/internal/infrastructure/storage/memory"
)

func seedScenarioA(t *testing.T, repo quotation.Repository) *quotation.Quotation {
	t.Helper()
	ctx := context.Background()

	q := scenarioA()
	q.Number = "Q-2026-00001"
	parts := q.Parts
	q.Parts = nil
	require.NoError(t, repo.Create(ctx, q))

	for i := range parts {
		p := parts[i]
		ops, aux := p.Operations, p.AuxiliaryCosts
		p.Operations, p.AuxiliaryCosts = nil, nil
		require.NoError(t, repo.CreatePart(ctx, &p))
		for j := range ops {
			require.NoError(t, repo.CreateOperation(ctx, &ops[j]))
		}
		for j := range aux {
			require.NoError(t, repo.CreateAuxiliaryCost(ctx, &aux[j]))
		}
	}
	return q
}

func TestRecalculator_Recalculate(t *testing.T) {
	store := memory.NewStore()
	repo := store.Quotations()
	r := NewRecalculator(repo, store.TxManager())
	ctx := context.Background()

	q := seedScenarioA(t, repo)

	totals, err := r.Recalculate(ctx, q.ID)
	require.NoError(t, err)
	assertMoney(t, "4780.16", totals.TotalQuoteValue, "total_quote_value")

	stored, err := repo.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.True(t, totals.Equal(stored.Totals))
	assertMoney(t, "3880.00", stored.Parts[0].PartSubtotal, "part_subtotal")
	assertMoney(t, "212.50", stored.Parts[0].Operations[0].OperationCost, "operation_cost")
}

func TestRecalculator_Idempotent(t *testing.T) {
	store := memory.NewStore()
	repo := store.Quotations()
	r := NewRecalculator(repo, store.TxManager())
	ctx := context.Background()

	q := seedScenarioA(t, repo)

	first, err := r.Recalculate(ctx, q.ID)
	require.NoError(t, err)
	second, err := r.Recalculate(ctx, q.ID)
	require.NoError(t, err)
	assert.True(t, first.Equal(second))
}

func TestRecalculator_NotFound(t *testing.T) {
	store := memory.NewStore()
	r := NewRecalculator(store.Quotations(), store.TxManager())

	_, err := r.Recalculate(context.Background(), id.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestRecalculator_RecalculateWithin_MissingTargetIsInternal(t *testing.T) {
	store := memory.NewStore()
	r := NewRecalculator(store.Quotations(), store.TxManager())

	_, err := r.RecalculateWithin(context.Background(), id.New())
	assert.True(t, apperror.HasCode(err, apperror.CodeInternal))
}
