package numerator

import (
	"context"
	"sync"
	"time"

	corenumerator "jobquote/internal/core/numerator"
)

// Counter is a process-local Generator used with the in-memory storage backend.
type Counter struct {
	mu     sync.Mutex
	values map[string]int64
}

var _ corenumerator.Generator = (*Counter)(nil)

// NewCounter creates an empty counter.
func NewCounter() *Counter {
	return &Counter{values: make(map[string]int64)}
}

// GetNextNumber implements corenumerator.Generator.
func (c *Counter) GetNextNumber(_ context.Context, cfg corenumerator.Config, _ *corenumerator.Options, period time.Time) (string, error) {
	key := buildKey(cfg, period)

	c.mu.Lock()
	c.values[key]++
	num := c.values[key]
	c.mu.Unlock()

	return FormatNumber(cfg, period, num), nil
}

// SetNextNumber implements corenumerator.Generator.
func (c *Counter) SetNextNumber(_ context.Context, cfg corenumerator.Config, period time.Time, value int64) error {
	c.mu.Lock()
	c.values[buildKey(cfg, period)] = value
	c.mu.Unlock()
	return nil
}
