// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"jobquote/internal/core/security"
	"jobquote/internal/domain/costing"
	"jobquote/internal/domain/quoting"
	"jobquote/internal/domain/reports"
	"jobquote/internal/domain/workflow"
	"jobquote/internal/infrastructure/http/v1/handlers"
	"jobquote/internal/infrastructure/http/v1/middleware"
	"jobquote/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// Authorizer decides capabilities per route
	Authorizer security.Authorizer

	Quoting      *quoting.Service
	Recalculator *costing.Recalculator
	Workflow     *workflow.Service
	Reports      *reports.Service

	// Readiness is checked by /health/ready; nil means always ready
	Readiness handlers.ReadinessChecker

	// Development enables gin debug mode
	Development bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Development {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware (order matters!): errors are rendered after recovery converts a panic.
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Recovery())

	// Health endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.Readiness)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	require := func(action security.Action) gin.HandlerFunc {
		return middleware.RequireCapability(cfg.Authorizer, action)
	}

	// API v1
	v1 := router.Group("/api/v1")
	v1.Use(middleware.Auth(cfg.JWTValidator))
	{
		registerQuotationRoutes(v1, cfg, require)
		registerStatisticsRoutes(v1, cfg, require)
	}

	return router
}

func registerQuotationRoutes(rg *gin.RouterGroup, cfg RouterConfig, require handlers.Capability) {
	base := handlers.NewBaseHandler()
	quotations := rg.Group("/quotations")

	handlers.NewQuotationHandler(base, cfg.Quoting, cfg.Recalculator, cfg.Workflow).
		RegisterRoutes(quotations, require)
	handlers.NewLineHandler(base, cfg.Quoting).
		RegisterRoutes(quotations, require)
}

func registerStatisticsRoutes(rg *gin.RouterGroup, cfg RouterConfig, require handlers.Capability) {
	statsHandler := handlers.NewStatisticsHandler(handlers.NewBaseHandler(), cfg.Reports)
	rg.GET("/statistics", require(security.ActionViewStatistics), statsHandler.Get)
}
