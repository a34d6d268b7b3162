package reports

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobquote/internal/core/types"
	"jobquote/internal/domain/quotation"
)

type stubRepo struct {
	rows []StatusRow
	err  error
}

func (s stubRepo) StatusSummary(context.Context) ([]StatusRow, error) { return s.rows, s.err }

func TestService_GetStatistics(t *testing.T) {
	svc := NewService(stubRepo{rows: []StatusRow{
		{Status: quotation.StatusDraft, Count: 3, TotalValue: types.MustMoney("900")},
		{Status: quotation.StatusIssued, Count: 2, TotalValue: types.MustMoney("4780.16")},
		{Status: quotation.StatusRejected, Count: 1, TotalValue: types.MustMoney("10")},
	}})

	stats, err := svc.GetStatistics(context.Background())
	require.NoError(t, err)

	assert.Len(t, stats.CountsByStatus, len(quotation.AllStatuses))
	assert.Equal(t, int64(3), stats.CountsByStatus[quotation.StatusDraft])
	assert.Equal(t, int64(2), stats.CountsByStatus[quotation.StatusIssued])
	assert.Equal(t, int64(0), stats.CountsByStatus[quotation.StatusSubmitted])
	assert.Equal(t, int64(6), stats.TotalCount)
	assert.True(t, types.MustMoney("4780.16").Equal(stats.TotalIssuedValue))
}

func TestService_GetStatistics_Empty(t *testing.T) {
	stats, err := NewService(stubRepo{}).GetStatistics(context.Background())
	require.NoError(t, err)

	for _, st := range quotation.AllStatuses {
		assert.Equal(t, int64(0), stats.CountsByStatus[st], st)
	}
	assert.True(t, stats.TotalIssuedValue.IsZero())
}

func TestService_GetStatistics_Error(t *testing.T) {
	_, err := NewService(stubRepo{err: errors.New("db down")}).GetStatistics(context.Background())
	assert.ErrorContains(t, err, "db down")
}
