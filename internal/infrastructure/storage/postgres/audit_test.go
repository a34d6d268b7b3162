package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobquote/internal/core/id"
	"jobquote/internal/domain/audit"
	"jobquote/internal/domain/quotation"
)

func TestAuditStore_CompressesLargeDetails(t *testing.T) {
	store, err := NewAuditStore(nil)
	require.NoError(t, err)

	principal := quotation.Principal{ID: "eng-1", Role: "engineer"}
	large := audit.NewEntry(id.New(), audit.ActionUpdated, principal, "").
		WithDetails(map[string]string{"notes": strings.Repeat("tolerance ±0.01 ", 2000)})
	small := audit.NewEntry(id.New(), audit.ActionSubmitted, principal, "Submitted for review").
		WithStatusChange(quotation.StatusDraft, quotation.StatusSubmitted)

	row := store.encode(&large)
	assert.Equal(t, CompressionZstd, row.CompressionAlgo)
	assert.Nil(t, row.Details)
	assert.Less(t, len(row.DetailsCompressed), len(large.Details))

	decoded, err := store.decode(row)
	require.NoError(t, err)
	assert.JSONEq(t, string(large.Details), string(decoded.Details))

	row = store.encode(&small)
	assert.Equal(t, CompressionNone, row.CompressionAlgo)
	assert.Nil(t, row.DetailsCompressed)

	decoded, err = store.decode(row)
	require.NoError(t, err)
	require.NotNil(t, decoded.NewStatus)
	assert.Equal(t, quotation.StatusSubmitted, *decoded.NewStatus)
	assert.Equal(t, "Submitted for review", decoded.Comment)
}
