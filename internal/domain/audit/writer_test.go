package audit_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobquote/internal/core/apperror"
	"jobquote/internal/core/id"
	"jobquote/internal/core/security"
	"jobquote/internal/domain/audit"
	"jobquote/internal/domain/quotation"
	"jobquote/internal/infrastructure/storage/memory"
)

func TestWriter_AppendAndHistory(t *testing.T) {
	store := memory.NewStore()
	w := audit.NewWriter(store.Audit())
	ctx := context.Background()
	qid := id.New()
	principal := security.Principal{ID: "u-1", Role: security.RoleSales}

	first, err := w.Append(ctx, audit.NewEntry(qid, audit.ActionCreated, principal, ""))
	require.NoError(t, err)
	assert.False(t, id.IsNil(first.ID))
	assert.False(t, first.CreatedAt.IsZero())

	_, err = w.Append(ctx, audit.NewEntry(qid, audit.ActionSubmitted, principal, "ready").
		WithStatusChange(quotation.StatusDraft, quotation.StatusSubmitted))
	require.NoError(t, err)

	history, err := w.History(ctx, qid)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, audit.ActionCreated, history[0].Action)
	assert.Equal(t, audit.ActionSubmitted, history[1].Action)
	require.NotNil(t, history[1].OldStatus)
	assert.Equal(t, quotation.StatusDraft, *history[1].OldStatus)
	assert.Equal(t, quotation.StatusSubmitted, *history[1].NewStatus)
	assert.Equal(t, "sales", history[1].PrincipalRole)
}

func TestWriter_Append_Validation(t *testing.T) {
	w := audit.NewWriter(memory.NewStore().Audit())
	ctx := context.Background()

	_, err := w.Append(ctx, audit.Entry{Action: audit.ActionCreated, PrincipalID: "u"})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = w.Append(ctx, audit.Entry{QuotationID: id.New(), PrincipalID: "u"})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = w.Append(ctx, audit.Entry{QuotationID: id.New(), Action: audit.ActionCreated})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestWriter_Append_UnencodableDetails(t *testing.T) {
	store := memory.NewStore()
	w := audit.NewWriter(store.Audit())
	ctx := context.Background()
	qid := id.New()
	principal := security.Principal{ID: "u-1", Role: security.RoleSales}

	entry := audit.NewEntry(qid, audit.ActionUpdated, principal, "").
		WithDetails(map[string]any{"callback": func() {}})
	require.Error(t, entry.Err())
	assert.Empty(t, entry.Details)

	_, err := w.Append(ctx, entry)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInternal))

	history, err := w.History(ctx, qid)
	require.NoError(t, err)
	assert.Empty(t, history)

	ok := audit.NewEntry(qid, audit.ActionUpdated, principal, "").WithDetails(map[string]any{"notes": "x"})
	require.NoError(t, ok.Err())
	assert.JSONEq(t, `{"notes":"x"}`, string(ok.Details))
}

func TestDiff(t *testing.T) {
	changes := audit.Diff(
		map[string]any{"discountPercent": "5", "notes": "a", "leadTime": "2w"},
		map[string]any{"discountPercent": "7.5", "notes": "a", "paymentTerms": "net30"},
	)

	assert.Len(t, changes, 3)
	assert.Equal(t, audit.Change{Old: "5", New: "7.5"}, changes["discountPercent"])
	assert.Equal(t, audit.Change{Old: nil, New: "net30"}, changes["paymentTerms"])
	assert.Equal(t, audit.Change{Old: "2w", New: nil}, changes["leadTime"])
}
