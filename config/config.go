package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Fetch     FetchConfig
	Search    SearchConfig
	LLM       LLMConfig
	Pipeline  PipelineConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// FetchConfig controls the page fetch layer.
type FetchConfig struct {
	// Timeout is the deadline for one homepage fetch.
	Timeout time.Duration // default: 30s

	// DomainMemoryTTL is how long a domain's working fetch tier is
	// remembered before the dispatcher starts from the bottom again.
	DomainMemoryTTL time.Duration // default: 24h
}

// SearchConfig controls the SerpAPI search provider.
type SearchConfig struct {
	// APIKey is the SerpAPI key. Empty disables website and Facebook
	// discovery; rows must then carry their own website column.
	APIKey string
}

// LLMConfig controls the Anthropic verification/enrichment client.
type LLMConfig struct {
	// APIKey is the Anthropic key (sk-ant-...). Empty disables the judge;
	// verification then runs fail-open and owner extraction is unavailable.
	APIKey string

	// Model overrides the default judge model.
	Model string
}

// PipelineConfig controls batch profiling behavior.
type PipelineConfig struct {
	// Pace is the minimum spacing between companies, respecting the
	// search and LLM providers' rate limits.
	Pace time.Duration // default: 2s

	// OwnerInfo enables LLM owner/founder extraction for every company.
	OwnerInfo bool // default: false

	// MaxBatchConcurrency bounds simultaneous companies in one API batch.
	MaxBatchConcurrency int // default: 3
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys (for MVP; replace with DB later).
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per API key.
	Burst int // default: 10
}

// CacheConfig controls the profile response cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached profiles.
	MaxEntries int // default: 1000
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
// The provider keys are also honored under their conventional bare names
// (ANTHROPIC_API_KEY, SERPAPI_API_KEY).
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("PROSPECT_HOST", "0.0.0.0"),
			Port: envIntOr("PROSPECT_PORT", 8080),
			Mode: envOr("PROSPECT_MODE", "release"),
		},
		Fetch: FetchConfig{
			Timeout:         envDurationOr("PROSPECT_FETCH_TIMEOUT", 30*time.Second),
			DomainMemoryTTL: envDurationOr("PROSPECT_DOMAIN_MEMORY_TTL", 24*time.Hour),
		},
		Search: SearchConfig{
			APIKey: envOr("PROSPECT_SERPAPI_API_KEY", os.Getenv("SERPAPI_API_KEY")),
		},
		LLM: LLMConfig{
			APIKey: envOr("PROSPECT_ANTHROPIC_API_KEY", os.Getenv("ANTHROPIC_API_KEY")),
			Model:  os.Getenv("PROSPECT_LLM_MODEL"),
		},
		Pipeline: PipelineConfig{
			Pace:                envDurationOr("PROSPECT_PACE", 2*time.Second),
			OwnerInfo:           envBoolOr("PROSPECT_OWNER_INFO", false),
			MaxBatchConcurrency: envIntOr("PROSPECT_BATCH_CONCURRENCY", 3),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("PROSPECT_AUTH_ENABLED", true),
			APIKeys: envSliceOr("PROSPECT_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("PROSPECT_RATE_RPS", 5.0),
			Burst:             envIntOr("PROSPECT_RATE_BURST", 10),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("PROSPECT_CACHE_MAX_ENTRIES", 1000),
		},
		Log: LogConfig{
			Level:  envOr("PROSPECT_LOG_LEVEL", "info"),
			Format: envOr("PROSPECT_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
