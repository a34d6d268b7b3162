package reports

import (
	"context"
	"fmt"

	"jobquote/internal/core/types"
	"jobquote/internal/domain/quotation"
)

// Service provides report generation operations.
type Service struct {
	repo Repository
}

// NewService creates a new reports service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetStatistics counts quotations per status and sums the value of issued ones.
func (s *Service) GetStatistics(ctx context.Context) (*Statistics, error) {
	rows, err := s.repo.StatusSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("get status summary: %w", err)
	}

	stats := &Statistics{
		CountsByStatus:   make(map[quotation.Status]int64, len(quotation.AllStatuses)),
		TotalIssuedValue: types.Zero(),
	}
	for _, st := range quotation.AllStatuses {
		stats.CountsByStatus[st] = 0
	}

	for _, row := range rows {
		stats.CountsByStatus[row.Status] += row.Count
		stats.TotalCount += row.Count
		if row.Status == quotation.StatusIssued {
			stats.TotalIssuedValue = stats.TotalIssuedValue.Add(row.TotalValue)
		}
	}

	return stats, nil
}
