package models

// ProfileResponse is the response for POST /api/v1/profile.
type ProfileResponse struct {
	// Success indicates whether profiling completed without errors.
	Success bool `json:"success"`

	// Company echoes the identity the profile was built for.
	Company Company `json:"company"`

	// Profile holds the discovered web presence. Nil only on failure.
	Profile *Profile `json:"profile,omitempty"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// CacheStatus indicates whether the response was served from cache.
	// Values: "hit", "miss", or empty (caching not requested).
	CacheStatus string `json:"cache_status,omitempty"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// SearchMs is the time spent discovering and verifying the website.
	SearchMs int64 `json:"search_ms"`

	// FetchMs is the time spent fetching pages.
	FetchMs int64 `json:"fetch_ms"`

	// ExtractMs is the time spent running extraction rules.
	ExtractMs int64 `json:"extract_ms"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string   `json:"status"` // "healthy" or "degraded"
	Uptime  string   `json:"uptime"`
	Jobs    JobStats `json:"jobs"`
	Version string   `json:"version"`
}

// JobStats reports the state of the batch job store.
type JobStats struct {
	// Active is the number of batch jobs currently processing.
	Active int `json:"active"`

	// Tracked is the total number of jobs held in the store, including
	// completed ones not yet expired.
	Tracked int `json:"tracked"`
}
