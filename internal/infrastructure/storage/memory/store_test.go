package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobquote/internal/core/apperror"
	"jobquote/internal/core/id"
	"jobquote/internal/core/types"
	"jobquote/internal/domain/audit"
	"jobquote/internal/domain/quotation"
)

func TestTxManager_RollbackRestoresState(t *testing.T) {
	s := NewStore()
	repo := s.Quotations()
	ctx := context.Background()

	q := quotation.NewQuotation(id.New(), "USD", "u1")
	q.Number = "Q-2026-00001"
	require.NoError(t, repo.Create(ctx, q))

	boom := errors.New("boom")
	err := s.TxManager().RunInTransaction(ctx, func(ctx context.Context) error {
		p := quotation.NewPart(q.ID, 1, "P-1", "", types.MustMoney("10"), 1)
		require.NoError(t, repo.CreatePart(ctx, &p))
		require.NoError(t, s.Audit().Append(ctx, &audit.Entry{ID: id.New(), QuotationID: q.ID, Action: audit.ActionPartAdded}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := repo.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Parts)

	entries, err := s.Audit().ListByQuotation(ctx, q.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestQuotationRepo_VersionCheck(t *testing.T) {
	s := NewStore()
	repo := s.Quotations()
	ctx := context.Background()

	q := quotation.NewQuotation(id.New(), "USD", "u1")
	q.Number = "Q-2026-00001"
	require.NoError(t, repo.Create(ctx, q))

	q.Notes = "first"
	require.NoError(t, repo.UpdateHeader(ctx, q))
	assert.Equal(t, 2, q.Version)

	stale := *q
	stale.Version = 1
	err := repo.UpdateHeader(ctx, &stale)
	assert.True(t, apperror.IsConcurrentModification(err))
}

func TestQuotationRepo_DuplicateNumber(t *testing.T) {
	s := NewStore()
	repo := s.Quotations()
	ctx := context.Background()

	a := quotation.NewQuotation(id.New(), "USD", "u1")
	a.Number = "Q-2026-00001"
	require.NoError(t, repo.Create(ctx, a))

	b := quotation.NewQuotation(id.New(), "USD", "u1")
	b.Number = "Q-2026-00001"
	assert.True(t, apperror.HasCode(repo.Create(ctx, b), apperror.CodeDuplicate))
}

func TestQuotationRepo_ReturnsCopies(t *testing.T) {
	s := NewStore()
	repo := s.Quotations()
	ctx := context.Background()

	q := quotation.NewQuotation(id.New(), "USD", "u1")
	q.Number = "Q-2026-00001"
	require.NoError(t, repo.Create(ctx, q))
	p := quotation.NewPart(q.ID, 1, "P-1", "", types.MustMoney("10"), 1)
	require.NoError(t, repo.CreatePart(ctx, &p))

	got, err := repo.GetByID(ctx, q.ID)
	require.NoError(t, err)
	got.Parts[0].Quantity = 99

	again, err := repo.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Parts[0].Quantity)
}
