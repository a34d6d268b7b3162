package memory

import (
	"context"
	"sort"
	"strings"

	"jobquote/internal/core/apperror"
	"jobquote/internal/core/id"
	"jobquote/internal/domain"
	"jobquote/internal/domain/quotation"
)

// QuotationRepo implements quotation.Repository.
type QuotationRepo struct {
	store *Store
}

var _ quotation.Repository = (*QuotationRepo)(nil)

func (r *QuotationRepo) Create(ctx context.Context, q *quotation.Quotation) error {
	return r.store.do(ctx, func() error {
		if _, exists := r.store.quotations[q.ID]; exists {
			return apperror.NewDuplicate("quotation", "id", q.ID.String())
		}
		for _, existing := range r.store.quotations {
			if existing.Number == q.Number {
				return apperror.NewDuplicate("quotation", "number", q.Number)
			}
		}
		r.store.quotations[q.ID] = cloneQuotation(q)
		return nil
	})
}

func (r *QuotationRepo) GetByID(ctx context.Context, quotationID id.ID) (*quotation.Quotation, error) {
	var out *quotation.Quotation
	err := r.store.do(ctx, func() error {
		q, ok := r.store.quotations[quotationID]
		if !ok {
			return apperror.NewNotFound("quotation", quotationID.String())
		}
		out = cloneQuotation(q)
		return nil
	})
	return out, err
}

// GetForUpdate relies on the store lock held by the transaction.
func (r *QuotationRepo) GetForUpdate(ctx context.Context, quotationID id.ID) (*quotation.Quotation, error) {
	return r.GetByID(ctx, quotationID)
}

func (r *QuotationRepo) UpdateHeader(ctx context.Context, q *quotation.Quotation) error {
	return r.update(ctx, q, func(stored *quotation.Quotation) {
		stored.Currency = q.Currency
		stored.DiscountPercent = q.DiscountPercent
		stored.MarginPercent = q.MarginPercent
		stored.VATPercent = q.VATPercent
		stored.LeadTime = q.LeadTime
		stored.PaymentTerms = q.PaymentTerms
		stored.Notes = q.Notes
		stored.ValidUntil = q.ValidUntil
	})
}

func (r *QuotationRepo) UpdateStatus(ctx context.Context, q *quotation.Quotation) error {
	return r.update(ctx, q, func(stored *quotation.Quotation) {
		stored.Status = q.Status
	})
}

// update applies fn with an optimistic version check, then bumps the version.
func (r *QuotationRepo) update(ctx context.Context, q *quotation.Quotation, fn func(stored *quotation.Quotation)) error {
	return r.store.do(ctx, func() error {
		stored, ok := r.store.quotations[q.ID]
		if !ok {
			return apperror.NewNotFound("quotation", q.ID.String())
		}
		if stored.Version != q.Version {
			return apperror.NewConcurrentModification("quotation", q.ID.String())
		}
		fn(stored)
		stored.UpdatedAt = q.UpdatedAt
		stored.UpdatedBy = q.UpdatedBy
		stored.Touch()
		q.SetVersion(stored.Version)
		return nil
	})
}

func (r *QuotationRepo) SaveCosts(ctx context.Context, q *quotation.Quotation) error {
	return r.store.do(ctx, func() error {
		stored, ok := r.store.quotations[q.ID]
		if !ok {
			return apperror.NewNotFound("quotation", q.ID.String())
		}
		stored.Totals = q.Totals

		for _, p := range q.Parts {
			sp := findPart(stored, p.ID)
			if sp == nil {
				return apperror.NewNotFound("part", p.ID.String())
			}
			sp.UnitOperationsCost = p.UnitOperationsCost
			sp.UnitAuxiliaryCost = p.UnitAuxiliaryCost
			sp.PartSubtotal = p.PartSubtotal
			for _, op := range p.Operations {
				for i := range sp.Operations {
					if sp.Operations[i].ID == op.ID {
						sp.Operations[i].OperationCost = op.OperationCost
					}
				}
			}
		}
		return nil
	})
}

func (r *QuotationRepo) Delete(ctx context.Context, quotationID id.ID) error {
	return r.store.do(ctx, func() error {
		if _, ok := r.store.quotations[quotationID]; !ok {
			return apperror.NewNotFound("quotation", quotationID.String())
		}
		delete(r.store.quotations, quotationID)
		return nil
	})
}

func (r *QuotationRepo) List(ctx context.Context, filter quotation.ListFilter) (domain.ListResult[*quotation.Quotation], error) {
	result := domain.ListResult[*quotation.Quotation]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
		Items:  make([]*quotation.Quotation, 0),
	}

	err := r.store.do(ctx, func() error {
		search := strings.ToLower(strings.TrimSpace(filter.Search))
		matched := make([]*quotation.Quotation, 0, len(r.store.quotations))
		for _, q := range r.store.quotations {
			if filter.Status != nil && q.Status != *filter.Status {
				continue
			}
			if filter.CustomerID != nil && q.CustomerID != *filter.CustomerID {
				continue
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(q.Number), search) &&
				!strings.Contains(strings.ToLower(q.Notes), search) {
				continue
			}
			header := cloneQuotation(q)
			header.Parts = make([]quotation.Part, 0)
			matched = append(matched, header)
		}

		// Newest first; UUIDv7 breaks ties in creation order.
		sort.Slice(matched, func(i, j int) bool {
			if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
				return matched[i].CreatedAt.After(matched[j].CreatedAt)
			}
			return matched[i].ID.String() > matched[j].ID.String()
		})

		result.TotalCount = int64(len(matched))
		if filter.Offset < len(matched) {
			matched = matched[filter.Offset:]
		} else {
			matched = matched[:0]
		}
		if filter.Limit > 0 && filter.Limit < len(matched) {
			matched = matched[:filter.Limit]
		}
		result.Items = matched
		return nil
	})
	return result, err
}

func (r *QuotationRepo) CreatePart(ctx context.Context, p *quotation.Part) error {
	return r.store.do(ctx, func() error {
		stored, ok := r.store.quotations[p.QuotationID]
		if !ok {
			return apperror.NewNotFound("quotation", p.QuotationID.String())
		}
		stored.Parts = append(stored.Parts, clonePart(*p))
		sort.SliceStable(stored.Parts, func(i, j int) bool { return stored.Parts[i].LineNo < stored.Parts[j].LineNo })
		return nil
	})
}

func (r *QuotationRepo) UpdatePart(ctx context.Context, p *quotation.Part) error {
	return r.store.do(ctx, func() error {
		_, sp := r.store.locatePart(p.ID)
		if sp == nil {
			return apperror.NewNotFound("part", p.ID.String())
		}
		sp.PartNumber = p.PartNumber
		sp.Description = p.Description
		sp.UnitMaterialCost = p.UnitMaterialCost
		sp.Quantity = p.Quantity
		return nil
	})
}

func (r *QuotationRepo) DeletePart(ctx context.Context, partID id.ID) error {
	return r.store.do(ctx, func() error {
		q, sp := r.store.locatePart(partID)
		if sp == nil {
			return apperror.NewNotFound("part", partID.String())
		}
		for i := range q.Parts {
			if q.Parts[i].ID == partID {
				q.Parts = append(q.Parts[:i], q.Parts[i+1:]...)
				break
			}
		}
		return nil
	})
}

func (r *QuotationRepo) CreateOperation(ctx context.Context, op *quotation.Operation) error {
	return r.store.do(ctx, func() error {
		_, sp := r.store.locatePart(op.PartID)
		if sp == nil {
			return apperror.NewNotFound("part", op.PartID.String())
		}
		sp.Operations = append(sp.Operations, *op)
		sort.SliceStable(sp.Operations, func(i, j int) bool { return sp.Operations[i].Sequence < sp.Operations[j].Sequence })
		return nil
	})
}

func (r *QuotationRepo) UpdateOperation(ctx context.Context, op *quotation.Operation) error {
	return r.store.do(ctx, func() error {
		_, sp := r.store.locatePart(op.PartID)
		if sp == nil {
			return apperror.NewNotFound("part", op.PartID.String())
		}
		for i := range sp.Operations {
			if sp.Operations[i].ID == op.ID {
				cost := sp.Operations[i].OperationCost
				sp.Operations[i] = *op
				sp.Operations[i].OperationCost = cost
				return nil
			}
		}
		return apperror.NewNotFound("operation", op.ID.String())
	})
}

func (r *QuotationRepo) DeleteOperation(ctx context.Context, opID id.ID) error {
	return r.store.do(ctx, func() error {
		for _, q := range r.store.quotations {
			for pi := range q.Parts {
				ops := q.Parts[pi].Operations
				for i := range ops {
					if ops[i].ID == opID {
						q.Parts[pi].Operations = append(ops[:i], ops[i+1:]...)
						return nil
					}
				}
			}
		}
		return apperror.NewNotFound("operation", opID.String())
	})
}

func (r *QuotationRepo) CreateAuxiliaryCost(ctx context.Context, aux *quotation.AuxiliaryCost) error {
	return r.store.do(ctx, func() error {
		_, sp := r.store.locatePart(aux.PartID)
		if sp == nil {
			return apperror.NewNotFound("part", aux.PartID.String())
		}
		sp.AuxiliaryCosts = append(sp.AuxiliaryCosts, *aux)
		return nil
	})
}

func (r *QuotationRepo) UpdateAuxiliaryCost(ctx context.Context, aux *quotation.AuxiliaryCost) error {
	return r.store.do(ctx, func() error {
		_, sp := r.store.locatePart(aux.PartID)
		if sp == nil {
			return apperror.NewNotFound("part", aux.PartID.String())
		}
		for i := range sp.AuxiliaryCosts {
			if sp.AuxiliaryCosts[i].ID == aux.ID {
				sp.AuxiliaryCosts[i] = *aux
				return nil
			}
		}
		return apperror.NewNotFound("auxiliary cost", aux.ID.String())
	})
}

func (r *QuotationRepo) DeleteAuxiliaryCost(ctx context.Context, auxID id.ID) error {
	return r.store.do(ctx, func() error {
		for _, q := range r.store.quotations {
			for pi := range q.Parts {
				costs := q.Parts[pi].AuxiliaryCosts
				for i := range costs {
					if costs[i].ID == auxID {
						q.Parts[pi].AuxiliaryCosts = append(costs[:i], costs[i+1:]...)
						return nil
					}
				}
			}
		}
		return apperror.NewNotFound("auxiliary cost", auxID.String())
	})
}

// locatePart finds a stored part by id. Caller must hold the lock.
func (s *Store) locatePart(partID id.ID) (*quotation.Quotation, *quotation.Part) {
	for _, q := range s.quotations {
		if p := findPart(q, partID); p != nil {
			return q, p
		}
	}
	return nil, nil
}

func findPart(q *quotation.Quotation, partID id.ID) *quotation.Part {
	for i := range q.Parts {
		if q.Parts[i].ID == partID {
			return &q.Parts[i]
		}
	}
	return nil
}
