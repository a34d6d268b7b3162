package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jobquote/internal/core/id"
	"jobquote/internal/core/types"
	"jobquote/internal/domain/quotation"
)

func TestExtractDBColumns_FlattensEmbedded(t *testing.T) {
	cols := ExtractDBColumns[quotation.Quotation]()

	for _, expected := range []string{
		"id", "version", "created_at", "updated_by",
		"number", "customer_id", "status", "vat_percent",
		"subtotal", "total_quote_value",
	} {
		assert.Contains(t, cols, expected)
	}
	assert.NotContains(t, cols, "parts")
	assert.NotContains(t, cols, "-")
}

func TestStructToMap_Quotation(t *testing.T) {
	customerID := id.New()
	q := quotation.NewQuotation(customerID, "USD", "sales-1")
	q.Number = "Q-2026-00001"
	q.Subtotal = types.MustMoney("3880")

	m := StructToMap(q)

	assert.Equal(t, q.ID, m["id"])
	assert.Equal(t, 1, m["version"])
	assert.Equal(t, "Q-2026-00001", m["number"])
	assert.Equal(t, customerID, m["customer_id"])
	assert.Equal(t, quotation.StatusDraft, m["status"])
	assert.True(t, types.MustMoney("3880").Equal(m["subtotal"].(types.Money)))
	_, hasParts := m["parts"]
	assert.False(t, hasParts)
}

func TestPick_Excludes(t *testing.T) {
	data := map[string]any{"id": 1, "number": "Q", "notes": "x", "extra": true}

	got := Pick(data, []string{"id", "number", "notes"}, "id")

	assert.Equal(t, map[string]any{"number": "Q", "notes": "x"}, got)
}
