package numerator

import (
	"context"
	"time"
)

// Generator generates sequential quote numbers.
// Uniqueness of the resulting number is additionally enforced by storage.
type Generator interface {
	// GetNextNumber generates the next number.
	// Pattern: PREFIX-YEAR-XXXXX (e.g., Q-2026-00001)
	GetNextNumber(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error)

	// SetNextNumber sets the current counter value (for data imports).
	SetNextNumber(ctx context.Context, cfg Config, period time.Time, value int64) error
}
