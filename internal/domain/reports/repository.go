package reports

import "context"

// Repository defines report data access interface.
type Repository interface {
	// StatusSummary groups quotations by status. Statuses without quotations may be absent.
	StatusSummary(ctx context.Context) ([]StatusRow, error)
}
