package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lead-agent/prospect/models"
)

// maxHealthyJobs is the active-batch count above which the service
// reports itself degraded.
const maxHealthyJobs = 8

// Health returns a handler for GET /api/v1/health.
//
// Reports batch job store state and degrades status when too many
// batches are processing at once.
func Health(startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := JobStats()

		status := "healthy"
		if stats.Active > maxHealthyJobs {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Jobs:    stats,
			Version: "0.1.0",
		})
	}
}
