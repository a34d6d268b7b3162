package numerator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corenumerator "jobquote/internal/core/numerator"
)

type mockRow struct {
	val int64
	err error
}

func (r *mockRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) > 0 {
		if p, ok := dest[0].(*int64); ok {
			*p = r.val
		}
	}
	return nil
}

type mockQuerier struct {
	calls    int
	counters map[string]int64
	err      error
}

func (m *mockQuerier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	m.calls++
	if m.err != nil {
		return &mockRow{err: m.err}
	}
	key := args[0].(string)
	inc := int64(1)
	if len(args) > 1 {
		inc = args[1].(int64)
	}
	m.counters[key] += inc
	return &mockRow{val: m.counters[key]}
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{counters: make(map[string]int64)}
}

func TestService_GetNextNumber_Strict(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	cfg := corenumerator.DefaultConfig("Q")
	period := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	first, err := svc.GetNextNumber(context.Background(), cfg, nil, period)
	require.NoError(t, err)
	assert.Equal(t, "Q-2026-00001", first)

	second, err := svc.GetNextNumber(context.Background(), cfg, nil, period)
	require.NoError(t, err)
	assert.Equal(t, "Q-2026-00002", second)

	// new year restarts the counter
	next, err := svc.GetNextNumber(context.Background(), cfg, nil, period.AddDate(1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, "Q-2027-00001", next)
	assert.Equal(t, 3, q.calls)
}

func TestService_GetNextNumber_Cached(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	cfg := corenumerator.DefaultConfig("Q")
	opts := &corenumerator.Options{Strategy: corenumerator.StrategyCached, RangeSize: 10}
	period := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 1; i <= 10; i++ {
		_, err := svc.GetNextNumber(context.Background(), cfg, opts, period)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, q.calls, "one range reservation for ten numbers")

	num, err := svc.GetNextNumber(context.Background(), cfg, opts, period)
	require.NoError(t, err)
	assert.Equal(t, "Q-2026-00011", num)
	assert.Equal(t, 2, q.calls)
}

func TestService_GetNextNumber_Error(t *testing.T) {
	q := newMockQuerier()
	q.err = errors.New("connection refused")
	svc := New(q)

	_, err := svc.GetNextNumber(context.Background(), corenumerator.DefaultConfig("Q"), nil, time.Now())
	assert.ErrorContains(t, err, "connection refused")
}

func TestCounter(t *testing.T) {
	c := NewCounter()
	cfg := corenumerator.DefaultConfig("Q")
	period := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, c.SetNextNumber(context.Background(), cfg, period, 41))
	num, err := c.GetNextNumber(context.Background(), cfg, nil, period)
	require.NoError(t, err)
	assert.Equal(t, "Q-2026-00042", num)
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, int64(42), ParseNumber("Q-2026-00042"))
	assert.Equal(t, int64(7), ParseNumber("Q-00007"))
	assert.Equal(t, int64(-1), ParseNumber("garbage"))
}
