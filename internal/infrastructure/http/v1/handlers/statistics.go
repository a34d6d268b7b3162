package handlers

import (
	"github.com/gin-gonic/gin"

	"jobquote/internal/domain/reports"
	"jobquote/internal/infrastructure/http/v1/dto"
)

// StatisticsHandler serves the dashboard aggregate.
type StatisticsHandler struct {
	*BaseHandler
	reports *reports.Service
}

// NewStatisticsHandler creates a new statistics handler.
func NewStatisticsHandler(base *BaseHandler, reportsService *reports.Service) *StatisticsHandler {
	return &StatisticsHandler{BaseHandler: base, reports: reportsService}
}

// Get handles GET /statistics
func (h *StatisticsHandler) Get(c *gin.Context) {
	stats, err := h.reports.GetStatistics(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.StatisticsResponse{Statistics: stats})
}
