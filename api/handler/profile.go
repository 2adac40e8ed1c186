package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lead-agent/prospect/cache"
	"github.com/lead-agent/prospect/models"
	"github.com/lead-agent/prospect/pipeline"
)

// Profile returns a handler for POST /api/v1/profile.
//
// Orchestration flow:
//  1. Parse & validate request.
//  2. Cache lookup when the client sent max_age.
//  3. Pipeline.ProcessOne → website, emails, contact form, social, logo
//     (records search_ms / fetch_ms / extract_ms).
//  4. Cache store, fill Timing, return 200.
func Profile(p *pipeline.Pipeline, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		// ── 1. Parse request ────────────────────────────────────────
		var req models.ProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ProfileResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		company := req.Company()

		// ── 1b. Cache lookup ───────────────────────────────────────
		cacheKey := cache.Key(req.Name, req.Website)
		if cc != nil && req.MaxAge > 0 {
			if cached, hit := cc.Get(cacheKey, req.MaxAge); hit {
				c.JSON(http.StatusOK, models.ProfileResponse{
					Success:     true,
					Company:     company,
					Profile:     cached,
					CacheStatus: "hit",
					Timing: models.TimingInfo{
						TotalMs: time.Since(totalStart).Milliseconds(),
					},
				})
				return
			}
		}

		// ── 2. Build the profile ───────────────────────────────────
		run := p
		if req.OwnerInfo {
			run = p.WithOwnerInfo(true)
		}
		profile, timing, err := run.ProcessOne(c.Request.Context(), company, req.Website)
		if err != nil {
			respondError(c, company, err, models.TimingInfo{
				TotalMs: time.Since(totalStart).Milliseconds(),
			})
			return
		}

		// ── 3. Fill timing, cache, respond ─────────────────────────
		timing.TotalMs = time.Since(totalStart).Milliseconds()
		resp := models.ProfileResponse{
			Success: true,
			Company: company,
			Profile: profile,
			Timing:  timing,
		}

		if cc != nil && req.MaxAge > 0 {
			cc.Set(cacheKey, profile)
			resp.CacheStatus = "miss"
		}

		c.JSON(http.StatusOK, resp)
	}
}

// respondError maps a ProfileError to the correct HTTP status code and
// writes a structured JSON error response.
func respondError(c *gin.Context, company models.Company, err error, timing models.TimingInfo) {
	var profErr *models.ProfileError
	if !errors.As(err, &profErr) {
		profErr = models.NewProfileError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(profErr), models.ProfileResponse{
		Success: false,
		Company: company,
		Error:   profErr.ToDetail(),
		Timing:  timing,
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ProfileError) int {
	switch e.Code {
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	case models.ErrCodeNotFound:
		return http.StatusNotFound // 404
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeSearchFailed, models.ErrCodeFetchFailed,
		models.ErrCodeLLMFailure, models.ErrCodeLLMAuthFailure:
		return http.StatusBadGateway // 502: an upstream provider failed us
	case models.ErrCodeLLMRateLimited:
		return http.StatusServiceUnavailable // 503: retry later, not a client fault
	default:
		return http.StatusInternalServerError // 500
	}
}
