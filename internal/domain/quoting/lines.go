package quoting

import (
	"context"

	"jobquote/internal/core/apperror"
	"jobquote/internal/core/id"
	"jobquote/internal/core/types"
	"jobquote/internal/domain/audit"
	"jobquote/internal/domain/quotation"
)

// AddPart appends a part at the next display position.
func (s *Service) AddPart(ctx context.Context, principal quotation.Principal, quotationID id.ID, in PartInput) (*quotation.Quotation, error) {
	return s.mutate(ctx, principal, quotationID, audit.ActionPartAdded, func(ctx context.Context, q *quotation.Quotation) (any, error) {
		p := quotation.NewPart(q.ID, q.NextLineNo(), in.PartNumber, in.Description, in.UnitMaterialCost, in.Quantity)
		if err := p.Validate(ctx); err != nil {
			return nil, err
		}
		if err := s.repo.CreatePart(ctx, &p); err != nil {
			return nil, err
		}
		return map[string]any{"partId": p.ID, "partNumber": p.PartNumber, "lineNo": p.LineNo}, nil
	})
}

// UpdatePart replaces the user-entered fields of a part. The display position is kept.
func (s *Service) UpdatePart(ctx context.Context, principal quotation.Principal, quotationID, partID id.ID, in PartInput) (*quotation.Quotation, error) {
	return s.mutate(ctx, principal, quotationID, audit.ActionPartUpdated, func(ctx context.Context, q *quotation.Quotation) (any, error) {
		p, err := q.FindPart(partID)
		if err != nil {
			return nil, err
		}
		before := map[string]any{
			"partNumber": p.PartNumber, "description": p.Description,
			"unitMaterialCost": p.UnitMaterialCost.String(), "quantity": p.Quantity,
		}

		p.PartNumber = in.PartNumber
		p.Description = in.Description
		p.UnitMaterialCost = in.UnitMaterialCost
		p.Quantity = in.Quantity
		if err := p.Validate(ctx); err != nil {
			return nil, err
		}
		if err := s.repo.UpdatePart(ctx, p); err != nil {
			return nil, err
		}

		return map[string]any{
			"partId": p.ID,
			"changes": audit.Diff(before, map[string]any{
				"partNumber": p.PartNumber, "description": p.Description,
				"unitMaterialCost": p.UnitMaterialCost.String(), "quantity": p.Quantity,
			}),
		}, nil
	})
}

// DeletePart removes a part with its operations and auxiliary costs.
func (s *Service) DeletePart(ctx context.Context, principal quotation.Principal, quotationID, partID id.ID) (*quotation.Quotation, error) {
	return s.mutate(ctx, principal, quotationID, audit.ActionPartDeleted, func(ctx context.Context, q *quotation.Quotation) (any, error) {
		p, err := q.FindPart(partID)
		if err != nil {
			return nil, err
		}
		if err := s.repo.DeletePart(ctx, p.ID); err != nil {
			return nil, err
		}
		return map[string]any{"partId": p.ID, "partNumber": p.PartNumber}, nil
	})
}

// AddOperation adds machine time to a part, snapshotting the machine rate when none is given.
func (s *Service) AddOperation(ctx context.Context, principal quotation.Principal, quotationID, partID id.ID, in OperationInput) (*quotation.Quotation, error) {
	return s.mutate(ctx, principal, quotationID, audit.ActionOperationAdded, func(ctx context.Context, q *quotation.Quotation) (any, error) {
		p, err := q.FindPart(partID)
		if err != nil {
			return nil, err
		}

		op := quotation.Operation{
			ID:          id.New(),
			PartID:      p.ID,
			Sequence:    p.NextSequence(),
			Description: in.Description,
		}
		if in.Sequence != nil {
			op.Sequence = *in.Sequence
		}
		if err := s.applyOperationInput(ctx, &op, in); err != nil {
			return nil, err
		}
		if err := s.repo.CreateOperation(ctx, &op); err != nil {
			return nil, err
		}
		return operationDetails(p, &op), nil
	})
}

// UpdateOperation rewrites an operation. Without an explicit rate the machine rate is snapshotted again.
func (s *Service) UpdateOperation(ctx context.Context, principal quotation.Principal, quotationID, partID, opID id.ID, in OperationInput) (*quotation.Quotation, error) {
	return s.mutate(ctx, principal, quotationID, audit.ActionOperationUpdated, func(ctx context.Context, q *quotation.Quotation) (any, error) {
		p, err := q.FindPart(partID)
		if err != nil {
			return nil, err
		}
		op, err := p.FindOperation(opID)
		if err != nil {
			return nil, err
		}

		op.Description = in.Description
		if in.Sequence != nil {
			op.Sequence = *in.Sequence
		}
		if err := s.applyOperationInput(ctx, op, in); err != nil {
			return nil, err
		}
		if err := s.repo.UpdateOperation(ctx, op); err != nil {
			return nil, err
		}
		return operationDetails(p, op), nil
	})
}

// DeleteOperation removes an operation from a part.
func (s *Service) DeleteOperation(ctx context.Context, principal quotation.Principal, quotationID, partID, opID id.ID) (*quotation.Quotation, error) {
	return s.mutate(ctx, principal, quotationID, audit.ActionOperationDeleted, func(ctx context.Context, q *quotation.Quotation) (any, error) {
		p, err := q.FindPart(partID)
		if err != nil {
			return nil, err
		}
		op, err := p.FindOperation(opID)
		if err != nil {
			return nil, err
		}
		if err := s.repo.DeleteOperation(ctx, op.ID); err != nil {
			return nil, err
		}
		return operationDetails(p, op), nil
	})
}

// AddAuxiliaryCost adds a service charge to a part, defaulting to the type's default cost.
func (s *Service) AddAuxiliaryCost(ctx context.Context, principal quotation.Principal, quotationID, partID id.ID, in AuxiliaryCostInput) (*quotation.Quotation, error) {
	return s.mutate(ctx, principal, quotationID, audit.ActionAuxiliaryCostAdded, func(ctx context.Context, q *quotation.Quotation) (any, error) {
		p, err := q.FindPart(partID)
		if err != nil {
			return nil, err
		}

		aux := quotation.AuxiliaryCost{
			ID:              id.New(),
			PartID:          p.ID,
			AuxiliaryTypeID: in.AuxiliaryTypeID,
			Notes:           in.Notes,
		}
		if err := s.applyAuxiliaryCost(ctx, &aux, in.Cost, true); err != nil {
			return nil, err
		}
		if err := s.repo.CreateAuxiliaryCost(ctx, &aux); err != nil {
			return nil, err
		}
		return auxiliaryDetails(p, &aux), nil
	})
}

// UpdateAuxiliaryCost rewrites an auxiliary cost. Without an explicit cost, the
// existing amount is kept unless the type changes, in which case the new type's default applies.
func (s *Service) UpdateAuxiliaryCost(ctx context.Context, principal quotation.Principal, quotationID, partID, auxID id.ID, in AuxiliaryCostInput) (*quotation.Quotation, error) {
	return s.mutate(ctx, principal, quotationID, audit.ActionAuxiliaryCostUpdated, func(ctx context.Context, q *quotation.Quotation) (any, error) {
		p, err := q.FindPart(partID)
		if err != nil {
			return nil, err
		}
		aux, err := p.FindAuxiliaryCost(auxID)
		if err != nil {
			return nil, err
		}

		typeChanged := aux.AuxiliaryTypeID != in.AuxiliaryTypeID
		aux.AuxiliaryTypeID = in.AuxiliaryTypeID
		aux.Notes = in.Notes
		if err := s.applyAuxiliaryCost(ctx, aux, in.Cost, typeChanged); err != nil {
			return nil, err
		}
		if err := s.repo.UpdateAuxiliaryCost(ctx, aux); err != nil {
			return nil, err
		}
		return auxiliaryDetails(p, aux), nil
	})
}

// DeleteAuxiliaryCost removes an auxiliary cost from a part.
func (s *Service) DeleteAuxiliaryCost(ctx context.Context, principal quotation.Principal, quotationID, partID, auxID id.ID) (*quotation.Quotation, error) {
	return s.mutate(ctx, principal, quotationID, audit.ActionAuxiliaryCostDeleted, func(ctx context.Context, q *quotation.Quotation) (any, error) {
		p, err := q.FindPart(partID)
		if err != nil {
			return nil, err
		}
		aux, err := p.FindAuxiliaryCost(auxID)
		if err != nil {
			return nil, err
		}
		if err := s.repo.DeleteAuxiliaryCost(ctx, aux.ID); err != nil {
			return nil, err
		}
		return auxiliaryDetails(p, aux), nil
	})
}

// applyOperationInput sets machine, hours and rate. Hours and rate are clamped to zero.
func (s *Service) applyOperationInput(ctx context.Context, op *quotation.Operation, in OperationInput) error {
	if id.IsNil(in.MachineID) {
		return apperror.NewValidation("machine is required").WithDetail("field", "machineId")
	}
	if err := validateScale("estimatedHours", in.EstimatedHours); err != nil {
		return err
	}
	op.MachineID = in.MachineID
	op.EstimatedHours = types.ClampNonNegative(in.EstimatedHours)

	if in.HourlyRate != nil {
		if err := validateScale("hourlyRate", *in.HourlyRate); err != nil {
			return err
		}
		op.HourlyRate = types.ClampNonNegative(*in.HourlyRate)
		return nil
	}
	rate, err := s.refData.MachineRate(ctx, in.MachineID)
	if err != nil {
		return err
	}
	op.HourlyRate = types.ClampNonNegative(rate)
	return nil
}

// applyAuxiliaryCost sets the amount, falling back to the type's default when useDefault is set.
func (s *Service) applyAuxiliaryCost(ctx context.Context, aux *quotation.AuxiliaryCost, cost *types.Money, useDefault bool) error {
	if id.IsNil(aux.AuxiliaryTypeID) {
		return apperror.NewValidation("auxiliary cost type is required").WithDetail("field", "auxiliaryTypeId")
	}

	if cost != nil {
		if err := validateNonNegative("cost", *cost); err != nil {
			return err
		}
		if err := validateScale("cost", *cost); err != nil {
			return err
		}
		aux.Cost = *cost
		return nil
	}

	if !useDefault {
		return nil
	}
	def, err := s.refData.AuxiliaryDefaultCost(ctx, aux.AuxiliaryTypeID)
	if err != nil {
		return err
	}
	aux.Cost = def
	return nil
}

func operationDetails(p *quotation.Part, op *quotation.Operation) map[string]any {
	return map[string]any{
		"partId":         p.ID,
		"operationId":    op.ID,
		"machineId":      op.MachineID,
		"estimatedHours": op.EstimatedHours.String(),
		"hourlyRate":     op.HourlyRate.String(),
	}
}

func auxiliaryDetails(p *quotation.Part, aux *quotation.AuxiliaryCost) map[string]any {
	return map[string]any{
		"partId":          p.ID,
		"auxiliaryCostId": aux.ID,
		"auxiliaryTypeId": aux.AuxiliaryTypeID,
		"cost":            aux.Cost.String(),
	}
}
