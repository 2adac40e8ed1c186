package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lead-agent/prospect/api/handler"
	"github.com/lead-agent/prospect/api/middleware"
	"github.com/lead-agent/prospect/cache"
	"github.com/lead-agent/prospect/config"
	"github.com/lead-agent/prospect/pipeline"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(p *pipeline.Pipeline, cfg *config.Config, cc *cache.Cache, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(startTime))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Profile
	protected.POST("/profile", handler.Profile(p, cc))

	// Batch
	protected.POST("/batch/profiles", handler.PostBatch(p, cfg.Pipeline.MaxBatchConcurrency))
	protected.GET("/batch/profiles/:id", handler.GetBatch())

	return r
}
