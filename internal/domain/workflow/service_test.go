package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobquote/internal/core/apperror"
	"jobquote/internal/core/id"
	"jobquote/internal/core/security"
	"jobquote/internal/core/types"
	"jobquote/internal/domain/audit"
	"jobquote/internal/domain/quotation"
	"jobquote/internal/infrastructure/storage/memory"
)

var admin = security.Principal{ID: "admin-1", Role: security.RoleAdmin}

type fixture struct {
	store *memory.Store
	repo  *memory.QuotationRepo
	audit *audit.Writer
	svc   *Service
}

func newFixture(t *testing.T, authz security.Authorizer) *fixture {
	t.Helper()
	store := memory.NewStore()
	writer := audit.NewWriter(store.Audit())
	return &fixture{
		store: store,
		repo:  store.Quotations(),
		audit: writer,
		svc:   NewService(store.Quotations(), writer, store.TxManager(), authz),
	}
}

// seed stores a quotation in the given status with the given number of parts.
func (f *fixture) seed(t *testing.T, status quotation.Status, parts int) *quotation.Quotation {
	t.Helper()
	ctx := context.Background()

	q := quotation.NewQuotation(id.New(), "USD", admin.ID)
	q.Number = "Q-" + q.ID.String()
	q.Status = status
	q.TotalQuoteValue = types.MustMoney("4780.16")
	require.NoError(t, f.repo.Create(ctx, q))

	for i := 0; i < parts; i++ {
		p := quotation.NewPart(q.ID, i+1, "P", "", types.MustMoney("1"), 1)
		require.NoError(t, f.repo.CreatePart(ctx, &p))
	}
	return q
}

func TestAttemptTransition_Closure(t *testing.T) {
	for _, from := range quotation.AllStatuses {
		for _, to := range quotation.AllStatuses {
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				f := newFixture(t, nil)
				ctx := context.Background()
				q := f.seed(t, from, 1)
				before, histErr := f.audit.History(ctx, q.ID)
				require.NoError(t, histErr)

				entry, err := f.svc.AttemptTransition(ctx, q.ID, to, admin, "reason")

				stored, getErr := f.repo.GetByID(ctx, q.ID)
				require.NoError(t, getErr)
				after, histErr := f.audit.History(ctx, q.ID)
				require.NoError(t, histErr)

				if CanTransition(from, to) {
					require.NoError(t, err)
					assert.Equal(t, to, stored.Status)
					assert.Equal(t, ActionFor(to), entry.Action)
					require.Len(t, after, len(before)+1, "exactly one audit entry")
					assert.Equal(t, ActionFor(to), after[len(after)-1].Action)
					return
				}

				appErr, ok := apperror.AsAppError(err)
				require.True(t, ok)
				assert.Equal(t, apperror.CodeInvalidTransition, appErr.Code)
				assert.Contains(t, appErr.Message, string(from))
				assert.Contains(t, appErr.Message, string(to))
				assert.Equal(t, from, stored.Status)
				assert.Len(t, after, len(before), "no audit entry for a rejected transition")
			})
		}
	}
}

func TestAttemptTransition_HappyPath(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	q := f.seed(t, quotation.StatusDraft, 1)

	chain := []quotation.Status{
		quotation.StatusSubmitted,
		quotation.StatusEngineerApproved,
		quotation.StatusManagementApproved,
		quotation.StatusIssued,
	}
	for _, target := range chain {
		_, err := f.svc.AttemptTransition(ctx, q.ID, target, admin, "")
		require.NoError(t, err, target)
	}

	history, err := f.audit.History(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, history, len(chain), "one audit entry per transition")

	prev := quotation.StatusDraft
	for i, e := range history {
		assert.Equal(t, prev, *e.OldStatus)
		assert.Equal(t, chain[i], *e.NewStatus)
		assert.Equal(t, DefaultComment(chain[i]), e.Comment)
		assert.Equal(t, admin.ID, e.PrincipalID)
		prev = chain[i]
	}

	stored, err := f.repo.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, quotation.StatusIssued, stored.Status)
	assert.True(t, types.MustMoney("4780.16").Equal(stored.TotalQuoteValue), "money untouched")

	_, err = f.svc.AttemptTransition(ctx, q.ID, quotation.StatusDraft, admin, "")
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidTransition), "issued is terminal")
}

func TestAttemptTransition_RejectRequiresReason(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	q := f.seed(t, quotation.StatusSubmitted, 1)

	_, err := f.svc.AttemptTransition(ctx, q.ID, quotation.StatusRejected, admin, "   ")
	assert.True(t, apperror.HasCode(err, apperror.CodeMissingReason))

	stored, err := f.repo.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, quotation.StatusSubmitted, stored.Status)

	history, err := f.audit.History(ctx, q.ID)
	require.NoError(t, err)
	assert.Empty(t, history)

	entry, err := f.svc.AttemptTransition(ctx, q.ID, quotation.StatusRejected, admin, "price too high")
	require.NoError(t, err)
	assert.Equal(t, "price too high", entry.Comment)
	assert.Equal(t, audit.ActionRejected, entry.Action)
}

func TestAttemptTransition_RejectedReopensToDraft(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	q := f.seed(t, quotation.StatusRejected, 1)

	require.NoError(t, f.svc.AssertEditable(ctx, q.ID))

	entry, err := f.svc.AttemptTransition(ctx, q.ID, quotation.StatusDraft, admin, "")
	require.NoError(t, err)
	assert.Equal(t, audit.ActionReopened, entry.Action)
	require.NoError(t, f.svc.AssertEditable(ctx, q.ID))
}

func TestAttemptTransition_EmptyQuotation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	q := f.seed(t, quotation.StatusDraft, 0)

	_, err := f.svc.AttemptTransition(ctx, q.ID, quotation.StatusSubmitted, admin, "")
	assert.True(t, apperror.HasCode(err, apperror.CodeEmptyQuotation))

	stored, err := f.repo.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, quotation.StatusDraft, stored.Status)
}

func TestAttemptTransition_NotFound(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.AttemptTransition(context.Background(), id.New(), quotation.StatusSubmitted, admin, "")
	assert.True(t, apperror.IsNotFound(err))
}

func TestAttemptTransition_UnknownTarget(t *testing.T) {
	f := newFixture(t, nil)
	q := f.seed(t, quotation.StatusDraft, 1)
	_, err := f.svc.AttemptTransition(context.Background(), q.ID, quotation.Status("Archived"), admin, "")
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestAttemptTransition_AuthorizerDenies(t *testing.T) {
	authz, err := security.NewCELAuthorizer(security.DefaultPolicies())
	require.NoError(t, err)
	f := newFixture(t, authz)
	ctx := context.Background()
	q := f.seed(t, quotation.StatusSubmitted, 1)

	sales := security.Principal{ID: "s-1", Role: security.RoleSales}
	_, err = f.svc.AttemptTransition(ctx, q.ID, quotation.StatusEngineerApproved, sales, "")
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))

	engineer := security.Principal{ID: "e-1", Role: security.RoleEngineer}
	entry, err := f.svc.AttemptTransition(ctx, q.ID, quotation.StatusEngineerApproved, engineer, "")
	require.NoError(t, err)
	assert.Equal(t, "engineer", entry.PrincipalRole)
}

func TestAssertEditable(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	for _, st := range quotation.AllStatuses {
		q := f.seed(t, st, 1)
		err := f.svc.AssertEditable(ctx, q.ID)
		if IsEditable(st) {
			assert.NoError(t, err, st)
		} else {
			assert.True(t, apperror.IsQuotationLocked(err), st)
		}
	}

	assert.True(t, apperror.IsNotFound(f.svc.AssertEditable(ctx, id.New())))
}
