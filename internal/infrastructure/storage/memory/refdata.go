package memory

import (
	"context"

	"jobquote/internal/core/apperror"
	"jobquote/internal/core/id"
	"jobquote/internal/core/types"
	"jobquote/internal/domain/quotation"
)

// ReferenceData implements quotation.ReferenceData over registered master data.
type ReferenceData struct {
	store *Store
}

var _ quotation.ReferenceData = (*ReferenceData)(nil)

func (r *ReferenceData) MachineRate(ctx context.Context, machineID id.ID) (types.Money, error) {
	var rate types.Money
	err := r.store.do(ctx, func() error {
		v, ok := r.store.machines[machineID]
		if !ok {
			return apperror.NewNotFound("machine", machineID.String())
		}
		rate = v
		return nil
	})
	return rate, err
}

func (r *ReferenceData) AuxiliaryDefaultCost(ctx context.Context, auxTypeID id.ID) (types.Money, error) {
	var cost types.Money
	err := r.store.do(ctx, func() error {
		v, ok := r.store.auxTypes[auxTypeID]
		if !ok {
			return apperror.NewNotFound("auxiliary cost type", auxTypeID.String())
		}
		cost = v
		return nil
	})
	return cost, err
}

func (r *ReferenceData) CustomerExists(ctx context.Context, customerID id.ID) (bool, error) {
	var exists bool
	err := r.store.do(ctx, func() error {
		_, exists = r.store.customers[customerID]
		return nil
	})
	return exists, err
}
