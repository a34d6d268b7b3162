package workflow

import (
	"context"
	"strings"

	"jobquote/internal/core/apperror"
	"jobquote/internal/core/id"
	"jobquote/internal/core/security"
	"jobquote/internal/core/tx"
	"jobquote/internal/domain/audit"
	"jobquote/internal/domain/quotation"
	"jobquote/pkg/logger"
)

// Service applies status transitions.
type Service struct {
	repo      quotation.Repository
	audit     *audit.Writer
	txManager tx.Manager

	// authz is optional; nil trusts the caller's permission check.
	authz security.Authorizer
}

// NewService creates a new workflow service.
func NewService(repo quotation.Repository, auditWriter *audit.Writer, txManager tx.Manager, authz security.Authorizer) *Service {
	return &Service{
		repo:      repo,
		audit:     auditWriter,
		txManager: txManager,
		authz:     authz,
	}
}

// AttemptTransition moves a quotation to target and appends the audit entry,
// both in one transaction.
func (s *Service) AttemptTransition(
	ctx context.Context,
	quotationID id.ID,
	target quotation.Status,
	principal quotation.Principal,
	comment string,
) (*audit.Entry, error) {
	if !target.IsValid() {
		return nil, apperror.NewValidation("unknown target status").
			WithDetail("field", "targetStatus").
			WithDetail("value", string(target))
	}

	var entry *audit.Entry
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		q, err := s.repo.GetForUpdate(ctx, quotationID)
		if err != nil {
			return err
		}

		if !CanTransition(q.Status, target) {
			return apperror.NewInvalidTransition(string(q.Status), string(target)).
				WithDetail("allowed_targets", statusNames(AllowedTargets(q.Status)))
		}

		if err := security.Require(ctx, s.authz, principal, CapabilityFor(target)); err != nil {
			return err
		}

		comment = strings.TrimSpace(comment)
		switch target {
		case quotation.StatusSubmitted:
			if len(q.Parts) == 0 {
				return apperror.NewEmptyQuotation(q.ID.String())
			}
		case quotation.StatusRejected:
			if comment == "" {
				return apperror.NewMissingReason(string(target))
			}
		}
		if comment == "" {
			comment = DefaultComment(target)
		}

		from := q.Status
		q.Status = target
		q.MarkUpdated(principal.ID)
		if err := s.repo.UpdateStatus(ctx, q); err != nil {
			return err
		}

		entry, err = s.audit.Append(ctx, audit.NewEntry(q.ID, ActionFor(target), principal, comment).
			WithStatusChange(from, target))
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "quotation status changed",
		"quotation_id", quotationID,
		"from", *entry.OldStatus,
		"to", *entry.NewStatus,
		"principal_id", principal.ID)

	return entry, nil
}

// AssertEditable returns QUOTATION_LOCKED unless the quotation accepts structural edits.
func (s *Service) AssertEditable(ctx context.Context, quotationID id.ID) error {
	q, err := s.repo.GetByID(ctx, quotationID)
	if err != nil {
		return err
	}
	return CheckEditable(q)
}
