package costing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobquote/internal/core/id"
	"jobquote/internal/core/types"
	"jobquote/internal/domain/quotation"
)

func money(s string) types.Money { return types.MustMoney(s) }

func assertMoney(t *testing.T, want string, got types.Money, field string) {
	t.Helper()
	assert.True(t, money(want).Equal(got), "%s: want %s got %s", field, want, got.String())
}

// scenarioA: one part (25.50 × 10), one operation 85/h × 2.5h, one auxiliary cost 150, 5% / 15% / 12%.
func scenarioA() *quotation.Quotation {
	q := quotation.NewQuotation(id.New(), "USD", "u1")
	q.DiscountPercent = money("5")
	q.MarginPercent = money("15")
	q.VATPercent = money("12")

	p := quotation.NewPart(q.ID, 1, "BRK-100", "bracket", money("25.50"), 10)
	p.Operations = append(p.Operations, quotation.Operation{
		ID: id.New(), PartID: p.ID, MachineID: id.New(), Sequence: 1,
		EstimatedHours: money("2.5"), HourlyRate: money("85.00"),
	})
	p.AuxiliaryCosts = append(p.AuxiliaryCosts, quotation.AuxiliaryCost{
		ID: id.New(), PartID: p.ID, AuxiliaryTypeID: id.New(), Cost: money("150.00"),
	})
	q.Parts = append(q.Parts, p)
	return q
}

func TestOperationCost(t *testing.T) {
	assertMoney(t, "212.50", OperationCost(money("85"), money("2.5")), "operation_cost")
	assertMoney(t, "0", OperationCost(money("85"), money("0")), "zero hours")
	assertMoney(t, "113.305", OperationCost(money("85.00"), money("1.333")), "fractional hours")
	assertMoney(t, "3.333", OperationCost(money("10"), money("0.3333")), "not rounded")
}

func TestRollupPart_FractionalHoursStayExact(t *testing.T) {
	q := quotation.NewQuotation(id.New(), "USD", "u1")
	p := quotation.NewPart(q.ID, 1, "PIN-7", "", money("0"), 1000)
	for i := 1; i <= 3; i++ {
		p.Operations = append(p.Operations, quotation.Operation{
			ID: id.New(), PartID: p.ID, MachineID: id.New(), Sequence: i,
			EstimatedHours: money("0.3333"), HourlyRate: money("10"),
		})
	}
	q.Parts = append(q.Parts, p)

	totals := RollupQuotation(q)

	assertMoney(t, "9.999", q.Parts[0].UnitOperationsCost, "unit_operations_cost")
	assertMoney(t, "9999", q.Parts[0].PartSubtotal, "part_subtotal")
	assertMoney(t, "9999", totals.TotalOperationsCost, "total_operations_cost")
	assertMoney(t, "9999", totals.Subtotal, "subtotal")
	assertMoney(t, "9999", totals.TotalQuoteValue, "total_quote_value")
}

func TestRollupQuotation_ScenarioA(t *testing.T) {
	q := scenarioA()

	totals := RollupQuotation(q)

	p := q.Parts[0]
	assertMoney(t, "212.50", p.Operations[0].OperationCost, "operation_cost")
	assertMoney(t, "212.50", p.UnitOperationsCost, "unit_operations_cost")
	assertMoney(t, "150.00", p.UnitAuxiliaryCost, "unit_auxiliary_cost")
	assertMoney(t, "3880.00", p.PartSubtotal, "part_subtotal")

	assertMoney(t, "255.00", totals.TotalMaterialCost, "total_material_cost")
	assertMoney(t, "2125.00", totals.TotalOperationsCost, "total_operations_cost")
	assertMoney(t, "2380.00", totals.TotalPartsCost, "total_parts_cost")
	assertMoney(t, "1500.00", totals.TotalAuxiliaryCost, "total_auxiliary_cost")
	assertMoney(t, "3880.00", totals.Subtotal, "subtotal")
	assertMoney(t, "194.00", totals.DiscountAmount, "discount_amount")
	assertMoney(t, "582.00", totals.MarginAmount, "margin_amount")
	assertMoney(t, "4268.00", totals.PreVATTotal, "pre_vat_total")
	assertMoney(t, "512.16", totals.VATAmount, "vat_amount")
	assertMoney(t, "4780.16", totals.TotalQuoteValue, "total_quote_value")

	assert.True(t, totals.Equal(q.Totals))
}

func TestRollupQuotation_Empty(t *testing.T) {
	q := quotation.NewQuotation(id.New(), "USD", "u1")
	q.VATPercent = money("20")

	totals := RollupQuotation(q)
	assert.True(t, totals.Equal(quotation.ZeroTotals()))
}

func TestRollupQuotation_PartWithoutLineItems(t *testing.T) {
	q := quotation.NewQuotation(id.New(), "USD", "u1")
	q.Parts = append(q.Parts, quotation.NewPart(q.ID, 1, "P-1", "", money("12.25"), 4))

	totals := RollupQuotation(q)
	assertMoney(t, "0", q.Parts[0].UnitOperationsCost, "unit_operations_cost")
	assertMoney(t, "0", q.Parts[0].UnitAuxiliaryCost, "unit_auxiliary_cost")
	assertMoney(t, "49.00", totals.Subtotal, "subtotal")
}

func TestRollupQuotation_Additivity(t *testing.T) {
	q := quotation.NewQuotation(id.New(), "EUR", "u1")
	q.DiscountPercent = money("7.5")
	q.MarginPercent = money("22.25")
	q.VATPercent = money("19")

	rates := []string{"61.17", "93.40", "120.01"}
	hours := []string{"0.75", "1.333", "3.1"}
	for i := 0; i < 5; i++ {
		p := quotation.NewPart(q.ID, i+1, "P", "", money("3.07").Mul(types.NewMoneyFromInt(int64(i+1))), i*3+1)
		for j := 0; j <= i%3; j++ {
			p.Operations = append(p.Operations, quotation.Operation{
				ID: id.New(), PartID: p.ID, Sequence: j + 1,
				HourlyRate: money(rates[j]), EstimatedHours: money(hours[(i+j)%3]),
			})
		}
		if i%2 == 0 {
			p.AuxiliaryCosts = append(p.AuxiliaryCosts, quotation.AuxiliaryCost{ID: id.New(), PartID: p.ID, Cost: money("4.99")})
		}
		q.Parts = append(q.Parts, p)
	}

	totals := RollupQuotation(q)

	sum := types.Zero()
	for _, p := range q.Parts {
		qty := types.NewMoneyFromInt(int64(p.Quantity))
		want := p.UnitMaterialCost.Add(p.UnitOperationsCost).Add(p.UnitAuxiliaryCost).Mul(qty)
		assert.True(t, want.Equal(p.PartSubtotal), "part %d subtotal", p.LineNo)
		sum = sum.Add(p.PartSubtotal)
	}
	assert.True(t, sum.Equal(totals.Subtotal))
	assert.True(t, totals.TotalPartsCost.Add(totals.TotalAuxiliaryCost).Equal(totals.Subtotal))
	assert.True(t, totals.PreVATTotal.Add(totals.VATAmount).Equal(totals.TotalQuoteValue))
}

func TestRollupQuotation_PercentageOrder(t *testing.T) {
	q := quotation.NewQuotation(id.New(), "USD", "u1")
	q.Parts = append(q.Parts, quotation.NewPart(q.ID, 1, "P-1", "", money("1000"), 1))
	q.DiscountPercent = money("10")
	q.MarginPercent = money("20")
	q.VATPercent = money("10")

	totals := RollupQuotation(q)

	// Discount and margin both apply to the subtotal, VAT to the pre-VAT total.
	assertMoney(t, "100", totals.DiscountAmount, "discount_amount")
	assertMoney(t, "200", totals.MarginAmount, "margin_amount")
	assertMoney(t, "1100", totals.PreVATTotal, "pre_vat_total")
	assertMoney(t, "110", totals.VATAmount, "vat_amount")
	assertMoney(t, "1210", totals.TotalQuoteValue, "total_quote_value")
}

func TestRollupQuotation_Idempotent(t *testing.T) {
	q := scenarioA()

	first := RollupQuotation(q)
	second := RollupQuotation(q)

	require.True(t, first.Equal(second))
	assertMoney(t, "3880.00", q.Parts[0].PartSubtotal, "part_subtotal")
}
