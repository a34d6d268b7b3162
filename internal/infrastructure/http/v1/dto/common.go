// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"strings"

	"jobquote/internal/core/apperror"
	"jobquote/internal/core/id"
	"jobquote/internal/domain"
)

// --- List Request ---

// ListRequest contains common list parameters.
type ListRequest struct {
	Search  string `form:"search"`
	OrderBy string `form:"orderBy"`
	Limit   int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset  int    `form:"offset" binding:"omitempty,min=0"`
}

// ToFilter converts request to domain filter.
func (r *ListRequest) ToFilter() domain.ListFilter {
	f := domain.DefaultListFilter()
	f.Search = strings.TrimSpace(r.Search)
	if r.OrderBy != "" {
		f.OrderBy = r.OrderBy
	}
	if r.Limit > 0 {
		f.Limit = r.Limit
	}
	f.Offset = r.Offset
	return f
}

// --- List Response ---

// ListResponse wraps list results with pagination.
type ListResponse[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// --- Common Responses ---

// ErrorResponse is the body written by the error middleware.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// parseID parses a request field holding an ID, naming the field on failure.
func parseID(field, raw string) (id.ID, error) {
	parsed, err := id.Parse(raw)
	if err != nil {
		return id.ID{}, apperror.NewValidation("invalid id format").
			WithDetail("field", field).
			WithDetail("value", raw)
	}
	return parsed, nil
}
