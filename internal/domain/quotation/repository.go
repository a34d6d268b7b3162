package quotation

import (
	"context"

	"jobquote/internal/core/id"
	"jobquote/internal/core/types"
	"jobquote/internal/domain"
)

// Repository persists the quotation aggregate.
// All methods join the transaction carried by ctx, if any.
type Repository interface {
	// Create inserts the header row.
	Create(ctx context.Context, q *Quotation) error

	// GetByID loads the header and the full part subtree.
	GetByID(ctx context.Context, quotationID id.ID) (*Quotation, error)

	// GetForUpdate is GetByID with the header row locked until the transaction ends.
	GetForUpdate(ctx context.Context, quotationID id.ID) (*Quotation, error)

	// UpdateHeader writes freeform fields, percentages and version.
	UpdateHeader(ctx context.Context, q *Quotation) error

	// UpdateStatus writes status, version and update stamps only.
	UpdateStatus(ctx context.Context, q *Quotation) error

	// SaveCosts writes every derived monetary field of the quotation, its parts and operations.
	SaveCosts(ctx context.Context, q *Quotation) error

	// Delete removes the quotation and cascades to its parts.
	Delete(ctx context.Context, quotationID id.ID) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Quotation], error)

	CreatePart(ctx context.Context, p *Part) error
	UpdatePart(ctx context.Context, p *Part) error
	DeletePart(ctx context.Context, partID id.ID) error

	CreateOperation(ctx context.Context, op *Operation) error
	UpdateOperation(ctx context.Context, op *Operation) error
	DeleteOperation(ctx context.Context, opID id.ID) error

	CreateAuxiliaryCost(ctx context.Context, aux *AuxiliaryCost) error
	UpdateAuxiliaryCost(ctx context.Context, aux *AuxiliaryCost) error
	DeleteAuxiliaryCost(ctx context.Context, auxID id.ID) error
}

// ListFilter for filtering quotations. List results carry headers only.
type ListFilter struct {
	domain.ListFilter

	Status     *Status
	CustomerID *id.ID
}

// ReferenceData provides read-only lookups owned by master-data services.
type ReferenceData interface {
	// MachineRate returns the current hourly rate; NOT_FOUND if the machine is unknown.
	MachineRate(ctx context.Context, machineID id.ID) (types.Money, error)

	// AuxiliaryDefaultCost returns the type's default cost; NOT_FOUND if the type is unknown.
	AuxiliaryDefaultCost(ctx context.Context, auxTypeID id.ID) (types.Money, error)

	CustomerExists(ctx context.Context, customerID id.ID) (bool, error)
}
