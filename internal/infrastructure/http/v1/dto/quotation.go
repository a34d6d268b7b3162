package dto

import (
	"time"

	"jobquote/internal/core/id"
	"jobquote/internal/core/types"
	"jobquote/internal/domain"
	"jobquote/internal/domain/audit"
	"jobquote/internal/domain/quotation"
	"jobquote/internal/domain/quoting"
	"jobquote/internal/domain/reports"
)

// --- Request DTOs ---

// CreateQuotationRequest represents a request to create a quotation.
type CreateQuotationRequest struct {
	CustomerID      string         `json:"customerId" binding:"required"`
	Currency        string         `json:"currency,omitempty" binding:"omitempty,len=3"`
	DiscountPercent *types.Percent `json:"discountPercent,omitempty"`
	MarginPercent   *types.Percent `json:"marginPercent,omitempty"`
	VATPercent      *types.Percent `json:"vatPercent,omitempty"`
	LeadTime        string         `json:"leadTime,omitempty"`
	PaymentTerms    string         `json:"paymentTerms,omitempty"`
	Notes           string         `json:"notes,omitempty"`
	ValidUntil      *time.Time     `json:"validUntil,omitempty"`
}

// ToInput converts request to service input.
func (r *CreateQuotationRequest) ToInput() (quoting.CreateQuotationInput, error) {
	customerID, err := parseID("customerId", r.CustomerID)
	if err != nil {
		return quoting.CreateQuotationInput{}, err
	}
	return quoting.CreateQuotationInput{
		CustomerID:      customerID,
		Currency:        r.Currency,
		DiscountPercent: r.DiscountPercent,
		MarginPercent:   r.MarginPercent,
		VATPercent:      r.VATPercent,
		LeadTime:        r.LeadTime,
		PaymentTerms:    r.PaymentTerms,
		Notes:           r.Notes,
		ValidUntil:      r.ValidUntil,
	}, nil
}

// UpdateQuotationRequest is a partial header update. Omitted fields are unchanged.
type UpdateQuotationRequest struct {
	Version         *int           `json:"version,omitempty"`
	Currency        *string        `json:"currency,omitempty" binding:"omitempty,len=3"`
	DiscountPercent *types.Percent `json:"discountPercent,omitempty"`
	MarginPercent   *types.Percent `json:"marginPercent,omitempty"`
	VATPercent      *types.Percent `json:"vatPercent,omitempty"`
	LeadTime        *string        `json:"leadTime,omitempty"`
	PaymentTerms    *string        `json:"paymentTerms,omitempty"`
	Notes           *string        `json:"notes,omitempty"`
	ValidUntil      *time.Time     `json:"validUntil,omitempty"`
}

// ToInput converts request to service input.
func (r *UpdateQuotationRequest) ToInput() quoting.HeaderInput {
	return quoting.HeaderInput{
		Version:         r.Version,
		Currency:        r.Currency,
		DiscountPercent: r.DiscountPercent,
		MarginPercent:   r.MarginPercent,
		VATPercent:      r.VATPercent,
		LeadTime:        r.LeadTime,
		PaymentTerms:    r.PaymentTerms,
		Notes:           r.Notes,
		ValidUntil:      r.ValidUntil,
	}
}

// QuotationListRequest adds quotation filters to the common list parameters.
type QuotationListRequest struct {
	ListRequest
	Status     string `form:"status"`
	CustomerID string `form:"customerId"`
}

// ToFilter converts request to a quotation filter.
func (r *QuotationListRequest) ToFilter() (quotation.ListFilter, error) {
	f := quotation.ListFilter{ListFilter: r.ListRequest.ToFilter()}
	if r.Status != "" {
		st, err := quotation.ParseStatus(r.Status)
		if err != nil {
			return f, err
		}
		f.Status = &st
	}
	if r.CustomerID != "" {
		customerID, err := parseID("customerId", r.CustomerID)
		if err != nil {
			return f, err
		}
		f.CustomerID = &customerID
	}
	return f, nil
}

// PartRequest represents a part create/replace request.
type PartRequest struct {
	PartNumber       string      `json:"partNumber" binding:"required"`
	Description      string      `json:"description,omitempty"`
	UnitMaterialCost types.Money `json:"unitMaterialCost"`
	Quantity         int         `json:"quantity" binding:"required"`
}

// ToInput converts request to service input.
func (r *PartRequest) ToInput() quoting.PartInput {
	return quoting.PartInput{
		PartNumber:       r.PartNumber,
		Description:      r.Description,
		UnitMaterialCost: r.UnitMaterialCost,
		Quantity:         r.Quantity,
	}
}

// OperationRequest represents an operation create/replace request.
// Omitting hourlyRate snapshots the machine's current rate.
type OperationRequest struct {
	MachineID      string       `json:"machineId" binding:"required"`
	EstimatedHours types.Hours  `json:"estimatedHours"`
	HourlyRate     *types.Money `json:"hourlyRate,omitempty"`
	Sequence       *int         `json:"sequence,omitempty"`
	Description    string       `json:"description,omitempty"`
}

// ToInput converts request to service input.
func (r *OperationRequest) ToInput() (quoting.OperationInput, error) {
	machineID, err := parseID("machineId", r.MachineID)
	if err != nil {
		return quoting.OperationInput{}, err
	}
	return quoting.OperationInput{
		MachineID:      machineID,
		EstimatedHours: r.EstimatedHours,
		HourlyRate:     r.HourlyRate,
		Sequence:       r.Sequence,
		Description:    r.Description,
	}, nil
}

// AuxiliaryCostRequest represents an auxiliary cost create/replace request.
// Omitting cost uses the type's default cost.
type AuxiliaryCostRequest struct {
	AuxiliaryTypeID string       `json:"auxiliaryTypeId" binding:"required"`
	Cost            *types.Money `json:"cost,omitempty"`
	Notes           string       `json:"notes,omitempty"`
}

// ToInput converts request to service input.
func (r *AuxiliaryCostRequest) ToInput() (quoting.AuxiliaryCostInput, error) {
	typeID, err := parseID("auxiliaryTypeId", r.AuxiliaryTypeID)
	if err != nil {
		return quoting.AuxiliaryCostInput{}, err
	}
	return quoting.AuxiliaryCostInput{
		AuxiliaryTypeID: typeID,
		Cost:            r.Cost,
		Notes:           r.Notes,
	}, nil
}

// TransitionRequest asks for a workflow transition.
type TransitionRequest struct {
	TargetStatus string `json:"targetStatus" binding:"required"`
	Comment      string `json:"comment,omitempty"`
}

// --- Response DTOs ---

// QuotationResponse is the full quotation with its part subtree.
type QuotationResponse struct {
	*quotation.Quotation
	AllowedTransitions []quotation.Status `json:"allowedTransitions"`
	Editable           bool               `json:"editable"`
}

// QuotationSummary is a list row without the part subtree.
type QuotationSummary struct {
	ID              id.ID            `json:"id"`
	Number          string           `json:"number"`
	CustomerID      id.ID            `json:"customerId"`
	Status          quotation.Status `json:"status"`
	Currency        string           `json:"currency"`
	TotalQuoteValue types.Money      `json:"totalQuoteValue"`
	Version         int              `json:"version"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// FromQuotationList maps a list result to summaries.
func FromQuotationList(res domain.ListResult[*quotation.Quotation]) ListResponse[QuotationSummary] {
	items := make([]QuotationSummary, 0, len(res.Items))
	for _, q := range res.Items {
		items = append(items, QuotationSummary{
			ID:              q.ID,
			Number:          q.Number,
			CustomerID:      q.CustomerID,
			Status:          q.Status,
			Currency:        q.Currency,
			TotalQuoteValue: q.TotalQuoteValue,
			Version:         q.Version,
			CreatedAt:       q.CreatedAt,
			UpdatedAt:       q.UpdatedAt,
		})
	}
	return ListResponse[QuotationSummary]{
		Items:      items,
		TotalCount: res.TotalCount,
		Limit:      res.Limit,
		Offset:     res.Offset,
	}
}

// TotalsResponse is returned by the recalculate endpoint.
type TotalsResponse struct {
	QuotationID id.ID `json:"quotationId"`
	quotation.Totals
}

// AuditTrailResponse lists audit entries oldest first.
type AuditTrailResponse struct {
	QuotationID id.ID         `json:"quotationId"`
	Entries     []audit.Entry `json:"entries"`
}

// StatisticsResponse is the dashboard aggregate.
type StatisticsResponse struct {
	*reports.Statistics
}
