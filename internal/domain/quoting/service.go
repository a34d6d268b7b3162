// Package quoting implements structural editing of quotations. Every mutation
// runs in one transaction: lock, edit-eligibility gate, change, full
// recalculation, audit entry.
package quoting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobquote/internal/core/apperror"
	"jobquote/internal/core/id"
	"jobquote/internal/core/numerator"
	"jobquote/internal/core/tx"
	"jobquote/internal/core/types"
	"jobquote/internal/domain"
	"jobquote/internal/domain/audit"
	"jobquote/internal/domain/costing"
	"jobquote/internal/domain/quotation"
	"jobquote/internal/domain/workflow"
	"jobquote/pkg/logger"
)

// NumeratorStrategy is strict: quote numbers must be gapless.
const NumeratorStrategy = numerator.StrategyStrict

// Config configures the quoting service.
type Config struct {
	NumberPrefix    string
	DefaultCurrency string
}

// DefaultConfig returns Q-YYYY-NNNNN numbering and USD.
func DefaultConfig() Config {
	return Config{NumberPrefix: "Q", DefaultCurrency: "USD"}
}

// Service provides structural operations on quotations.
type Service struct {
	repo         quotation.Repository
	refData      quotation.ReferenceData
	recalculator *costing.Recalculator
	audit        *audit.Writer
	numerator    numerator.Generator
	txManager    tx.Manager
	hooks        *domain.HookRegistry[*quotation.Quotation]
	cfg          Config
}

// NewService creates a new quoting service.
func NewService(
	repo quotation.Repository,
	refData quotation.ReferenceData,
	recalculator *costing.Recalculator,
	auditWriter *audit.Writer,
	numerator numerator.Generator,
	txManager tx.Manager,
	cfg Config,
) *Service {
	if cfg.NumberPrefix == "" {
		cfg.NumberPrefix = DefaultConfig().NumberPrefix
	}
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = DefaultConfig().DefaultCurrency
	}
	return &Service{
		repo:         repo,
		refData:      refData,
		recalculator: recalculator,
		audit:        auditWriter,
		numerator:    numerator,
		txManager:    txManager,
		hooks:        domain.NewHookRegistry[*quotation.Quotation](),
		cfg:          cfg,
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*quotation.Quotation] {
	return s.hooks
}

// CreateQuotation creates a Draft quotation for an existing customer.
func (s *Service) CreateQuotation(ctx context.Context, principal quotation.Principal, in CreateQuotationInput) (*quotation.Quotation, error) {
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}

	q := quotation.NewQuotation(in.CustomerID, currency, principal.ID)
	q.LeadTime = in.LeadTime
	q.PaymentTerms = in.PaymentTerms
	q.Notes = in.Notes
	q.ValidUntil = in.ValidUntil
	if in.DiscountPercent != nil {
		q.DiscountPercent = *in.DiscountPercent
	}
	if in.MarginPercent != nil {
		q.MarginPercent = *in.MarginPercent
	}
	if in.VATPercent != nil {
		q.VATPercent = *in.VATPercent
	}

	if err := q.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.requireCustomer(ctx, q.CustomerID); err != nil {
		return nil, err
	}
	if err := s.hooks.Run(ctx, domain.BeforeCreate, q); err != nil {
		return nil, err
	}

	number, err := s.nextNumber(ctx)
	if err != nil {
		return nil, err
	}
	q.Number = number

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, q); err != nil {
			return fmt.Errorf("create quotation: %w", err)
		}
		_, err := s.audit.Append(ctx, audit.NewEntry(q.ID, audit.ActionCreated, principal, "").
			WithDetails(map[string]any{"number": q.Number, "customerId": q.CustomerID}))
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := s.hooks.Run(ctx, domain.AfterCreate, q); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "quotation created",
		"id", q.ID,
		"number", q.Number)

	return q, nil
}

// GetQuotation returns a quotation with its full part subtree.
func (s *Service) GetQuotation(ctx context.Context, quotationID id.ID) (*quotation.Quotation, error) {
	return s.repo.GetByID(ctx, quotationID)
}

// ListQuotations returns quotation headers.
func (s *Service) ListQuotations(ctx context.Context, filter quotation.ListFilter) (domain.ListResult[*quotation.Quotation], error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}

// History returns the audit trail of a quotation, including deleted ones.
func (s *Service) History(ctx context.Context, quotationID id.ID) ([]audit.Entry, error) {
	return s.audit.History(ctx, quotationID)
}

// UpdateHeader changes freeform fields and percentages, then recalculates.
func (s *Service) UpdateHeader(ctx context.Context, principal quotation.Principal, quotationID id.ID, in HeaderInput) (*quotation.Quotation, error) {
	return s.mutate(ctx, principal, quotationID, audit.ActionUpdated, func(ctx context.Context, q *quotation.Quotation) (any, error) {
		if in.Version != nil && *in.Version != q.Version {
			return nil, apperror.NewConcurrentModification("quotation", q.ID.String()).
				WithDetail("expected_version", *in.Version).
				WithDetail("current_version", q.Version)
		}

		before := headerState(q)
		if in.Currency != nil {
			q.Currency = strings.ToUpper(strings.TrimSpace(*in.Currency))
		}
		if in.DiscountPercent != nil {
			q.DiscountPercent = *in.DiscountPercent
		}
		if in.MarginPercent != nil {
			q.MarginPercent = *in.MarginPercent
		}
		if in.VATPercent != nil {
			q.VATPercent = *in.VATPercent
		}
		if in.LeadTime != nil {
			q.LeadTime = *in.LeadTime
		}
		if in.PaymentTerms != nil {
			q.PaymentTerms = *in.PaymentTerms
		}
		if in.Notes != nil {
			q.Notes = *in.Notes
		}
		if in.ValidUntil != nil {
			q.ValidUntil = in.ValidUntil
		}
		if err := q.Validate(ctx); err != nil {
			return nil, err
		}

		q.MarkUpdated(principal.ID)
		if err := s.repo.UpdateHeader(ctx, q); err != nil {
			return nil, err
		}
		return audit.Diff(before, headerState(q)), nil
	})
}

// DeleteQuotation hard-deletes a Draft quotation. Its audit trail is kept.
func (s *Service) DeleteQuotation(ctx context.Context, principal quotation.Principal, quotationID id.ID) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		q, err := s.repo.GetForUpdate(ctx, quotationID)
		if err != nil {
			return err
		}
		if err := workflow.CheckDeletable(q); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, q.ID); err != nil {
			return err
		}
		_, err = s.audit.Append(ctx, audit.NewEntry(q.ID, audit.ActionDeleted, principal, "").
			WithDetails(map[string]any{"number": q.Number, "parts": len(q.Parts)}))
		return err
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "quotation deleted", "id", quotationID)
	return nil
}

// DuplicateQuotation copies any quotation into a new Draft with a fresh number.
// Snapshot rates are carried over verbatim.
func (s *Service) DuplicateQuotation(ctx context.Context, principal quotation.Principal, sourceID id.ID) (*quotation.Quotation, error) {
	src, err := s.repo.GetByID(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	number, err := s.nextNumber(ctx)
	if err != nil {
		return nil, err
	}

	dup := quotation.NewQuotation(src.CustomerID, src.Currency, principal.ID)
	dup.Number = number
	dup.DiscountPercent = src.DiscountPercent
	dup.MarginPercent = src.MarginPercent
	dup.VATPercent = src.VATPercent
	dup.LeadTime = src.LeadTime
	dup.PaymentTerms = src.PaymentTerms
	dup.Notes = src.Notes
	dup.ValidUntil = src.ValidUntil

	var result *quotation.Quotation
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, dup); err != nil {
			return fmt.Errorf("create quotation: %w", err)
		}

		for _, sp := range src.Parts {
			p := quotation.NewPart(dup.ID, sp.LineNo, sp.PartNumber, sp.Description, sp.UnitMaterialCost, sp.Quantity)
			if err := s.repo.CreatePart(ctx, &p); err != nil {
				return fmt.Errorf("copy part: %w", err)
			}
			for _, sop := range sp.Operations {
				op := sop
				op.ID = id.New()
				op.PartID = p.ID
				if err := s.repo.CreateOperation(ctx, &op); err != nil {
					return fmt.Errorf("copy operation: %w", err)
				}
			}
			for _, saux := range sp.AuxiliaryCosts {
				aux := saux
				aux.ID = id.New()
				aux.PartID = p.ID
				if err := s.repo.CreateAuxiliaryCost(ctx, &aux); err != nil {
					return fmt.Errorf("copy auxiliary cost: %w", err)
				}
			}
		}

		var err error
		result, err = s.recalculator.RecalculateWithin(ctx, dup.ID)
		if err != nil {
			return err
		}

		_, err = s.audit.Append(ctx, audit.NewEntry(dup.ID, audit.ActionDuplicated, principal, "").
			WithDetails(map[string]any{"sourceId": src.ID, "sourceNumber": src.Number}))
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "quotation duplicated",
		"id", result.ID,
		"number", result.Number,
		"source_id", src.ID)

	return result, nil
}

// mutate runs fn against the locked, editable quotation, then recalculates and audits.
func (s *Service) mutate(
	ctx context.Context,
	principal quotation.Principal,
	quotationID id.ID,
	action audit.Action,
	fn func(ctx context.Context, q *quotation.Quotation) (any, error),
) (*quotation.Quotation, error) {
	var result *quotation.Quotation

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		q, err := s.repo.GetForUpdate(ctx, quotationID)
		if err != nil {
			return err
		}
		if err := workflow.CheckEditable(q); err != nil {
			return err
		}

		details, err := fn(ctx, q)
		if err != nil {
			return err
		}

		result, err = s.recalculator.RecalculateWithin(ctx, quotationID)
		if err != nil {
			return err
		}

		_, err = s.audit.Append(ctx, audit.NewEntry(quotationID, action, principal, "").WithDetails(details))
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "quotation changed",
		"id", quotationID,
		"action", action,
		"total_quote_value", result.TotalQuoteValue.String())

	return result, nil
}

func (s *Service) requireCustomer(ctx context.Context, customerID id.ID) error {
	ok, err := s.refData.CustomerExists(ctx, customerID)
	if err != nil {
		return fmt.Errorf("check customer: %w", err)
	}
	if !ok {
		return apperror.NewNotFound("customer", customerID.String())
	}
	return nil
}

func (s *Service) nextNumber(ctx context.Context) (string, error) {
	cfg := numerator.DefaultConfig(s.cfg.NumberPrefix)
	number, err := s.numerator.GetNextNumber(ctx, cfg, &numerator.Options{Strategy: NumeratorStrategy}, time.Now())
	if err != nil {
		return "", fmt.Errorf("generate number: %w", err)
	}
	return number, nil
}

func headerState(q *quotation.Quotation) map[string]any {
	state := map[string]any{
		"currency":        q.Currency,
		"discountPercent": q.DiscountPercent.String(),
		"marginPercent":   q.MarginPercent.String(),
		"vatPercent":      q.VATPercent.String(),
		"leadTime":        q.LeadTime,
		"paymentTerms":    q.PaymentTerms,
		"notes":           q.Notes,
	}
	if q.ValidUntil != nil {
		state["validUntil"] = q.ValidUntil.Format(time.DateOnly)
	}
	return state
}

func validateNonNegative(field string, v types.Money) error {
	if v.IsNegative() {
		return apperror.NewValidation(field+" must not be negative").WithDetail("field", field)
	}
	return nil
}

func validateScale(field string, v types.Money) error {
	if err := types.ValidateInputScale(v); err != nil {
		return apperror.NewValidation(err.Error()).WithDetail("field", field)
	}
	return nil
}
