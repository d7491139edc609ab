// Package api wires handlers into the HTTP route table.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/extracurricular/infrastructure/monitoring"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/handler"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/metrics"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/ratelimit"
)

// Handlers groups the route handlers.
type Handlers struct {
	Generate    *handler.GenerateHandler
	Opportunity *handler.OpportunityHandler
	Scrape      *handler.ScrapeHandler
	Debug       *handler.DebugHandler
}

// SetupRoutes configures all API routes.
// Health routes are registered by the infrastructure gin builder.
func SetupRoutes(router *gin.Engine, h Handlers, limiter *ratelimit.Limiter, m *metrics.Metrics) {
	router.Use(m.Middleware())
	router.GET("/metrics", gin.WrapH(m.Handler()))
	router.GET("/health/memory", monitoring.MemoryHealthHandler)

	// Only generation spends upstream quota.
	generate := router.Group("/generate")
	generate.Use(ratelimit.Middleware(limiter, func(d ratelimit.Decision) {
		m.RateLimited(d.Window)
	}))
	generate.POST("/projects", h.Generate.Projects)
	generate.POST("/email", h.Generate.Email)

	router.POST("/opportunities", h.Opportunity.Find)

	scrape := router.Group("/scrape")
	scrape.POST("", h.Scrape.Create)
	scrape.GET("", h.Scrape.List)
	scrape.GET("/:id", h.Scrape.Get)
	scrape.DELETE("/:id", h.Scrape.Delete)

	router.GET("/redis-debug", h.Debug.Handle)
}
