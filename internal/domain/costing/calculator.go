// Package costing rolls line-item costs up into part and quotation totals.
//
// The arithmetic is pure: it never fails and never reads storage. Rounding to
// two fractional digits happens only where a percentage is taken (discount,
// margin, VAT); operation costs and every sum are exact, so
// subtotal == Σ part_subtotal holds without tolerance.
package costing

import (
	"jobquote/internal/core/types"
	"jobquote/internal/domain/quotation"
)

// OperationCost returns the exact product rate × hours.
func OperationCost(rate types.Money, hours types.Hours) types.Money {
	return rate.Mul(hours)
}

// RollupPart recomputes the derived fields of one part and its operations in place.
func RollupPart(p *quotation.Part) {
	ops := types.Zero()
	for i := range p.Operations {
		op := &p.Operations[i]
		op.OperationCost = OperationCost(op.HourlyRate, op.EstimatedHours)
		ops = ops.Add(op.OperationCost)
	}

	aux := types.Zero()
	for _, a := range p.AuxiliaryCosts {
		aux = aux.Add(a.Cost)
	}

	p.UnitOperationsCost = ops
	p.UnitAuxiliaryCost = aux
	p.PartSubtotal = p.UnitMaterialCost.Add(ops).Add(aux).Mul(quantity(p))
}

// RollupQuotation recomputes every part, then the quotation totals, in place.
// Percentages apply in fixed order: discount and margin on the subtotal, VAT on the pre-VAT total.
func RollupQuotation(q *quotation.Quotation) quotation.Totals {
	t := quotation.ZeroTotals()

	for i := range q.Parts {
		p := &q.Parts[i]
		RollupPart(p)

		qty := quantity(p)
		t.TotalMaterialCost = t.TotalMaterialCost.Add(p.UnitMaterialCost.Mul(qty))
		t.TotalOperationsCost = t.TotalOperationsCost.Add(p.UnitOperationsCost.Mul(qty))
		t.TotalAuxiliaryCost = t.TotalAuxiliaryCost.Add(p.UnitAuxiliaryCost.Mul(qty))
		t.Subtotal = t.Subtotal.Add(p.PartSubtotal)
	}
	t.TotalPartsCost = t.TotalMaterialCost.Add(t.TotalOperationsCost)

	t.DiscountAmount = types.PercentOf(t.Subtotal, q.DiscountPercent)
	t.MarginAmount = types.PercentOf(t.Subtotal, q.MarginPercent)
	t.PreVATTotal = t.Subtotal.Sub(t.DiscountAmount).Add(t.MarginAmount)
	t.VATAmount = types.PercentOf(t.PreVATTotal, q.VATPercent)
	t.TotalQuoteValue = t.PreVATTotal.Add(t.VATAmount)

	q.Totals = t
	return t
}

func quantity(p *quotation.Part) types.Money {
	return types.NewMoneyFromInt(int64(p.Quantity))
}
