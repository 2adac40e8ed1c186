package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lead-agent/prospect/models"
	"github.com/lead-agent/prospect/pipeline"
	"github.com/lead-agent/prospect/webhook"
)

// batchStore holds all in-flight and completed batch jobs.
var batchStore sync.Map

func init() {
	// Background goroutine to expire batch jobs older than 1 hour.
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().Add(-1 * time.Hour).Unix()
			batchStore.Range(func(key, value any) bool {
				job := value.(*models.BatchJob)
				if job.CreatedAt < cutoff {
					batchStore.Delete(key)
				}
				return true
			})
		}
	}()
}

// JobStats reports the state of the job store for the health endpoint.
func JobStats() models.JobStats {
	var stats models.JobStats
	batchStore.Range(func(_, value any) bool {
		job := value.(*models.BatchJob)
		stats.Tracked++
		if job.Status == "processing" {
			stats.Active++
		}
		return true
	})
	return stats
}

// PostBatch returns a handler for POST /api/v1/batch/profiles.
// It validates the request, creates a batch job, and profiles the
// companies in the background.
func PostBatch(p *pipeline.Pipeline, maxConcurrent int) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		if len(req.Companies) > 500 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "maximum 500 companies per batch",
				},
			})
			return
		}

		jobID := "batch-" + randomID()
		job := &models.BatchJob{
			ID:        jobID,
			Status:    "processing",
			Total:     len(req.Companies),
			Completed: 0,
			Results:   make([]*models.ProfileResponse, len(req.Companies)),
			CreatedAt: time.Now().Unix(),
		}
		batchStore.Store(jobID, job)

		// Launch profiling in background.
		go runBatch(p, job, req, maxConcurrent)

		c.JSON(http.StatusOK, models.BatchResponse{
			ID:     jobID,
			Status: "processing",
			Total:  len(req.Companies),
		})
	}
}

// GetBatch returns a handler for GET /api/v1/batch/profiles/:id.
func GetBatch() gin.HandlerFunc {
	return func(c *gin.Context) {
		jobID := c.Param("id")
		val, ok := batchStore.Load(jobID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeNotFound,
					Message: "batch job not found",
				},
			})
			return
		}

		job := val.(*models.BatchJob)
		c.JSON(http.StatusOK, models.BatchStatusResponse{
			ID:        job.ID,
			Status:    job.Status,
			Completed: job.Completed,
			Total:     job.Total,
			Results:   job.Results,
		})
	}
}

// runBatch profiles all companies in a batch job with concurrency limited
// by a semaphore. Workers still go through the pipeline's shared pacer, so
// a batch raises parallelism without raising the request rate the
// external providers see.
func runBatch(p *pipeline.Pipeline, job *models.BatchJob, req models.BatchRequest, maxConcurrent int) {
	if maxConcurrent <= 0 {
		maxConcurrent = 3
	}
	sem := make(chan struct{}, maxConcurrent)

	var wg sync.WaitGroup
	var succeeded atomic.Int32
	var failed atomic.Int32

	for i := range req.Companies {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			resp := profileOne(p, &req.Companies[idx], req.Options)
			job.Results[idx] = resp

			if resp.Success {
				succeeded.Add(1)
			} else {
				failed.Add(1)
			}
			job.Completed = int(succeeded.Load()) + int(failed.Load())
		}(i)
	}

	wg.Wait()

	failedCount := int(failed.Load())
	succeededCount := int(succeeded.Load())

	switch {
	case failedCount == job.Total:
		job.Status = "failed"
	case failedCount > 0:
		job.Status = "partial"
	default:
		job.Status = "completed"
	}
	job.Completed = succeededCount + failedCount

	slog.Info("batch job finished",
		"id", job.ID,
		"status", job.Status,
		"succeeded", succeededCount,
		"failed", failedCount,
		"total", job.Total,
	)

	if req.WebhookURL != "" {
		webhook.DeliverAsync(req.WebhookURL, req.WebhookSecret, &webhook.Event{
			Type:      "batch." + job.Status,
			JobID:     job.ID,
			Timestamp: time.Now().Unix(),
			Data: models.BatchStatusResponse{
				ID:        job.ID,
				Status:    job.Status,
				Completed: job.Completed,
				Total:     job.Total,
				Results:   job.Results,
			},
		})
	}
}

// profileOne builds the profile for one batch entry, waiting its turn on
// the shared pacer first.
func profileOne(p *pipeline.Pipeline, req *models.ProfileRequest, opts models.BatchOptions) *models.ProfileResponse {
	totalStart := time.Now()
	company := req.Company()

	run := p
	if opts.OwnerInfo || req.OwnerInfo {
		run = p.WithOwnerInfo(true)
	}

	ctx := context.Background()
	if err := run.Pace(ctx); err != nil {
		return batchFailure(company, err, totalStart)
	}

	profile, timing, err := run.ProcessOne(ctx, company, req.Website)
	if err != nil {
		return batchFailure(company, err, totalStart)
	}

	timing.TotalMs = time.Since(totalStart).Milliseconds()
	return &models.ProfileResponse{
		Success: true,
		Company: company,
		Profile: profile,
		Timing:  timing,
	}
}

// batchFailure wraps an error as a per-company failure response.
func batchFailure(company models.Company, err error, totalStart time.Time) *models.ProfileResponse {
	var profErr *models.ProfileError
	if !errors.As(err, &profErr) {
		profErr = models.NewProfileError(models.ErrCodeInternal, err.Error(), err)
	}
	return &models.ProfileResponse{
		Success: false,
		Company: company,
		Error:   profErr.ToDetail(),
		Timing: models.TimingInfo{
			TotalMs: time.Since(totalStart).Milliseconds(),
		},
	}
}

// randomID generates a short random hex string for job IDs.
func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
