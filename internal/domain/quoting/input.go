package quoting

import (
	"time"

	"jobquote/internal/core/id"
	"jobquote/internal/core/types"
)

// CreateQuotationInput holds the header of a new quotation.
type CreateQuotationInput struct {
	CustomerID id.ID
	Currency   string

	DiscountPercent *types.Percent
	MarginPercent   *types.Percent
	VATPercent      *types.Percent

	LeadTime     string
	PaymentTerms string
	Notes        string
	ValidUntil   *time.Time
}

// HeaderInput is a partial header update; nil fields are left unchanged.
type HeaderInput struct {
	// Version, when set, must match the stored version.
	Version *int

	Currency *string

	DiscountPercent *types.Percent
	MarginPercent   *types.Percent
	VATPercent      *types.Percent

	LeadTime     *string
	PaymentTerms *string
	Notes        *string
	ValidUntil   *time.Time
}

// PartInput replaces the user-entered fields of a part.
type PartInput struct {
	PartNumber       string
	Description      string
	UnitMaterialCost types.Money
	Quantity         int
}

// OperationInput describes an operation. A nil HourlyRate snapshots the machine's current rate.
type OperationInput struct {
	MachineID      id.ID
	EstimatedHours types.Hours
	HourlyRate     *types.Money
	Sequence       *int
	Description    string
}

// AuxiliaryCostInput describes an auxiliary cost. A nil Cost uses the type's default cost.
type AuxiliaryCostInput struct {
	AuxiliaryTypeID id.ID
	Cost            *types.Money
	Notes           string
}
