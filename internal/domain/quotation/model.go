// Package quotation defines the quotation aggregate: Quotation -> Part -> Operation/AuxiliaryCost.
package quotation

import (
	"context"
	"strings"
	"time"

	"jobquote/internal/core/apperror"
	"jobquote/internal/core/entity"
	"jobquote/internal/core/id"
	"jobquote/internal/core/security"
	"jobquote/internal/core/types"
)

// Principal is the acting identity recorded on audit entries.
type Principal = security.Principal

// Totals holds the derived monetary fields of a quotation.
// Every field is a function of the parts and the header percentages.
type Totals struct {
	TotalMaterialCost   types.Money `db:"total_material_cost" json:"totalMaterialCost"`
	TotalOperationsCost types.Money `db:"total_operations_cost" json:"totalOperationsCost"`
	TotalPartsCost      types.Money `db:"total_parts_cost" json:"totalPartsCost"`
	TotalAuxiliaryCost  types.Money `db:"total_auxiliary_cost" json:"totalAuxiliaryCost"`
	Subtotal            types.Money `db:"subtotal" json:"subtotal"`
	DiscountAmount      types.Money `db:"discount_amount" json:"discountAmount"`
	MarginAmount        types.Money `db:"margin_amount" json:"marginAmount"`
	PreVATTotal         types.Money `db:"pre_vat_total" json:"preVatTotal"`
	VATAmount           types.Money `db:"vat_amount" json:"vatAmount"`
	TotalQuoteValue     types.Money `db:"total_quote_value" json:"totalQuoteValue"`
}

// Equal compares totals field by field.
func (t Totals) Equal(o Totals) bool {
	return t.TotalMaterialCost.Equal(o.TotalMaterialCost) &&
		t.TotalOperationsCost.Equal(o.TotalOperationsCost) &&
		t.TotalPartsCost.Equal(o.TotalPartsCost) &&
		t.TotalAuxiliaryCost.Equal(o.TotalAuxiliaryCost) &&
		t.Subtotal.Equal(o.Subtotal) &&
		t.DiscountAmount.Equal(o.DiscountAmount) &&
		t.MarginAmount.Equal(o.MarginAmount) &&
		t.PreVATTotal.Equal(o.PreVATTotal) &&
		t.VATAmount.Equal(o.VATAmount) &&
		t.TotalQuoteValue.Equal(o.TotalQuoteValue)
}

// Quotation is the aggregate root.
type Quotation struct {
	entity.BaseDocument

	// Number is the externally generated quote number, e.g. Q-2026-00001
	Number string `db:"number" json:"number"`

	CustomerID id.ID  `db:"customer_id" json:"customerId"`
	Status     Status `db:"status" json:"status"`
	Currency   string `db:"currency" json:"currency"`

	DiscountPercent types.Percent `db:"discount_percent" json:"discountPercent"`
	MarginPercent   types.Percent `db:"margin_percent" json:"marginPercent"`
	VATPercent      types.Percent `db:"vat_percent" json:"vatPercent"`

	LeadTime     string     `db:"lead_time" json:"leadTime,omitempty"`
	PaymentTerms string     `db:"payment_terms" json:"paymentTerms,omitempty"`
	Notes        string     `db:"notes" json:"notes,omitempty"`
	ValidUntil   *time.Time `db:"valid_until" json:"validUntil,omitempty"`

	Totals

	// Parts ordered by LineNo. Not a column.
	Parts []Part `db:"-" json:"parts"`
}

// NewQuotation creates a Draft quotation with zero totals.
func NewQuotation(customerID id.ID, currency string, createdBy string) *Quotation {
	return &Quotation{
		BaseDocument:    entity.NewBaseDocument(createdBy),
		CustomerID:      customerID,
		Status:          StatusDraft,
		Currency:        currency,
		DiscountPercent: types.Zero(),
		MarginPercent:   types.Zero(),
		VATPercent:      types.Zero(),
		Totals:          ZeroTotals(),
		Parts:           make([]Part, 0),
	}
}

// ZeroTotals returns totals with every field set to zero.
func ZeroTotals() Totals {
	z := types.Zero()
	return Totals{
		TotalMaterialCost: z, TotalOperationsCost: z, TotalPartsCost: z, TotalAuxiliaryCost: z,
		Subtotal: z, DiscountAmount: z, MarginAmount: z, PreVATTotal: z, VATAmount: z, TotalQuoteValue: z,
	}
}

// Validate implements entity.Validatable.
func (q *Quotation) Validate(_ context.Context) error {
	if id.IsNil(q.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}
	if strings.TrimSpace(q.Currency) == "" {
		return apperror.NewValidation("currency is required").
			WithDetail("field", "currency")
	}
	if !q.Status.IsValid() {
		return apperror.NewValidation("unknown status").
			WithDetail("field", "status").
			WithDetail("value", string(q.Status))
	}
	for field, p := range map[string]types.Percent{
		"discountPercent": q.DiscountPercent,
		"marginPercent":   q.MarginPercent,
		"vatPercent":      q.VATPercent,
	} {
		if err := types.ValidatePercent(p); err != nil {
			return apperror.NewValidation(err.Error()).WithDetail("field", field)
		}
		if err := types.ValidateInputScale(p); err != nil {
			return apperror.NewValidation(err.Error()).WithDetail("field", field)
		}
	}
	return nil
}

// FindPart returns a pointer into q.Parts.
func (q *Quotation) FindPart(partID id.ID) (*Part, error) {
	for i := range q.Parts {
		if q.Parts[i].ID == partID {
			return &q.Parts[i], nil
		}
	}
	return nil, apperror.NewNotFound("part", partID.String())
}

// NextLineNo returns the display position for a new part.
// Line numbers are never reused, so deleting a part does not reorder the rest.
func (q *Quotation) NextLineNo() int {
	maxLine := 0
	for _, p := range q.Parts {
		if p.LineNo > maxLine {
			maxLine = p.LineNo
		}
	}
	return maxLine + 1
}

// Part is a line of the quotation.
type Part struct {
	ID          id.ID  `db:"id" json:"id"`
	QuotationID id.ID  `db:"quotation_id" json:"quotationId"`
	LineNo      int    `db:"line_no" json:"lineNo"`
	PartNumber  string `db:"part_number" json:"partNumber"`
	Description string `db:"description" json:"description,omitempty"`

	UnitMaterialCost types.Money `db:"unit_material_cost" json:"unitMaterialCost"`
	Quantity         int         `db:"quantity" json:"quantity"`

	// Derived
	UnitOperationsCost types.Money `db:"unit_operations_cost" json:"unitOperationsCost"`
	UnitAuxiliaryCost  types.Money `db:"unit_auxiliary_cost" json:"unitAuxiliaryCost"`
	PartSubtotal       types.Money `db:"part_subtotal" json:"partSubtotal"`

	Operations     []Operation     `db:"-" json:"operations"`
	AuxiliaryCosts []AuxiliaryCost `db:"-" json:"auxiliaryCosts"`
}

// NewPart creates a part with zero derived costs.
func NewPart(quotationID id.ID, lineNo int, partNumber, description string, unitMaterialCost types.Money, quantity int) Part {
	return Part{
		ID:                 id.New(),
		QuotationID:        quotationID,
		LineNo:             lineNo,
		PartNumber:         partNumber,
		Description:        description,
		UnitMaterialCost:   unitMaterialCost,
		Quantity:           quantity,
		UnitOperationsCost: types.Zero(),
		UnitAuxiliaryCost:  types.Zero(),
		PartSubtotal:       types.Zero(),
		Operations:         make([]Operation, 0),
		AuxiliaryCosts:     make([]AuxiliaryCost, 0),
	}
}

// Validate implements entity.Validatable.
func (p *Part) Validate(_ context.Context) error {
	if strings.TrimSpace(p.PartNumber) == "" {
		return apperror.NewValidation("part number is required").
			WithDetail("field", "partNumber")
	}
	if p.Quantity <= 0 {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity").
			WithDetail("lineNo", p.LineNo)
	}
	if p.UnitMaterialCost.IsNegative() {
		return apperror.NewValidation("unit material cost must not be negative").
			WithDetail("field", "unitMaterialCost").
			WithDetail("lineNo", p.LineNo)
	}
	if err := types.ValidateInputScale(p.UnitMaterialCost); err != nil {
		return apperror.NewValidation(err.Error()).
			WithDetail("field", "unitMaterialCost").
			WithDetail("lineNo", p.LineNo)
	}
	return nil
}

// FindOperation returns a pointer into p.Operations.
func (p *Part) FindOperation(opID id.ID) (*Operation, error) {
	for i := range p.Operations {
		if p.Operations[i].ID == opID {
			return &p.Operations[i], nil
		}
	}
	return nil, apperror.NewNotFound("operation", opID.String())
}

// FindAuxiliaryCost returns a pointer into p.AuxiliaryCosts.
func (p *Part) FindAuxiliaryCost(auxID id.ID) (*AuxiliaryCost, error) {
	for i := range p.AuxiliaryCosts {
		if p.AuxiliaryCosts[i].ID == auxID {
			return &p.AuxiliaryCosts[i], nil
		}
	}
	return nil, apperror.NewNotFound("auxiliary cost", auxID.String())
}

// NextSequence returns the sequence number for a new operation.
func (p *Part) NextSequence() int {
	maxSeq := 0
	for _, op := range p.Operations {
		if op.Sequence > maxSeq {
			maxSeq = op.Sequence
		}
	}
	return maxSeq + 1
}

// Operation is machine time spent on a part.
type Operation struct {
	ID          id.ID  `db:"id" json:"id"`
	PartID      id.ID  `db:"part_id" json:"partId"`
	MachineID   id.ID  `db:"machine_id" json:"machineId"`
	Sequence    int    `db:"sequence" json:"sequence"`
	Description string `db:"description" json:"description,omitempty"`

	EstimatedHours types.Hours `db:"estimated_hours" json:"estimatedHours"`

	// HourlyRate is a snapshot of the machine rate taken when the operation was written.
	HourlyRate types.Money `db:"hourly_rate" json:"hourlyRate"`

	// Derived
	OperationCost types.Money `db:"operation_cost" json:"operationCost"`
}

// AuxiliaryCost is an extra per-unit service charge on a part.
type AuxiliaryCost struct {
	ID              id.ID       `db:"id" json:"id"`
	PartID          id.ID       `db:"part_id" json:"partId"`
	AuxiliaryTypeID id.ID       `db:"auxiliary_type_id" json:"auxiliaryTypeId"`
	Cost            types.Money `db:"cost" json:"cost"`
	Notes           string      `db:"notes" json:"notes,omitempty"`
}
