package config

import (
	"os"
	"strings"
	"time"
)

// Config holds application configuration derived from environment variables.
type Config struct {
	// HTTP server
	Addr string

	// Device metric caching
	DeviceCacheTTL  time.Duration // how long a device snapshot stays fresh
	MaxCacheEntries int           // bound on cached device snapshots, 0 = unbounded
	SystemInfoTTL   time.Duration // OS identity cache lifetime

	// Background collection
	PollInterval    time.Duration // metrics collector poll period
	StreamInterval  time.Duration // websocket broadcast period
	CleanupInterval time.Duration // expired cache entry sweep period

	// Response caching
	HTTPCacheTTL     time.Duration // cached API response lifetime
	HTTPCacheMaxCost int64         // ristretto cost budget in bytes

	// History recording (optional, requires DATABASE_URL)
	DatabaseURL      string
	HistoryEnabled   bool
	HistoryRetention time.Duration

	// Admin API token for gating admin endpoints (Bearer token)
	AdminAPIToken string

	// Security settings
	RateLimitGlobal      float64  // requests per second globally
	RateLimitGlobalBurst int      // burst size for global rate limit
	RateLimitPerIP       float64  // requests per second per IP
	RateLimitPerIPBurst  int      // burst size for per-IP rate limit
	CORSAllowedOrigins   []string // allowed CORS origins
	EnableRateLimit      bool     // enable rate limiting middleware

	// Observability settings
	LogLevel          string  // log level: debug, info, warn, error
	OTELEnabled       bool    // enable OpenTelemetry tracing
	OTELEndpoint      string  // OpenTelemetry collector endpoint
	OTELSampleRate    float64 // trace sampling rate (0.0 to 1.0)
	SentryDSN         string  // Sentry DSN for error reporting
	SentryEnvironment string  // Sentry environment (dev, staging, production)
	SentryRelease     string  // Sentry release version
	SentrySampleRate  float64 // Sentry error sampling rate (0.0 to 1.0)
}

var cached *Config

// Load reads env vars once and caches them.
func Load() *Config {
	if cached != nil {
		return cached
	}
	cached = &Config{
		Addr: envString("HWSCOPE_ADDR", ":8080"),

		DeviceCacheTTL:  time.Duration(envInt("DEVICE_CACHE_TTL_MS", 500)) * time.Millisecond,
		MaxCacheEntries: envInt("MAX_CACHE_ENTRIES", 16),
		SystemInfoTTL:   time.Duration(envInt("SYSTEM_INFO_TTL_MS", 3600000)) * time.Millisecond,

		PollInterval:    time.Duration(envInt("POLL_INTERVAL_MS", 2000)) * time.Millisecond,
		StreamInterval:  time.Duration(envInt("STREAM_INTERVAL_MS", 1000)) * time.Millisecond,
		CleanupInterval: time.Duration(envInt("CACHE_CLEANUP_INTERVAL_MS", 60000)) * time.Millisecond,

		HTTPCacheTTL:     time.Duration(envInt("HTTP_CACHE_TTL_MS", 1000)) * time.Millisecond,
		HTTPCacheMaxCost: int64(envInt("HTTP_CACHE_MAX_COST", 8<<20)),

		DatabaseURL:      envString("DATABASE_URL", ""),
		HistoryEnabled:   envBool("HISTORY_ENABLED", false),
		HistoryRetention: time.Duration(envInt("HISTORY_RETENTION_HOURS", 168)) * time.Hour,

		AdminAPIToken: envString("ADMIN_API_TOKEN", ""),

		RateLimitGlobal:      envFloat("RATE_LIMIT_GLOBAL", 100.0),
		RateLimitGlobalBurst: envInt("RATE_LIMIT_GLOBAL_BURST", 200),
		RateLimitPerIP:       envFloat("RATE_LIMIT_PER_IP", 10.0),
		RateLimitPerIPBurst:  envInt("RATE_LIMIT_PER_IP_BURST", 20),
		EnableRateLimit:      envBool("ENABLE_RATE_LIMIT", true),

		LogLevel:          strings.ToLower(envString("LOG_LEVEL", "info")),
		OTELEnabled:       envBool("OTEL_ENABLED", false),
		OTELEndpoint:      envString("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTELSampleRate:    envFloat("OTEL_TRACE_SAMPLE_RATE", 0.1),
		SentryDSN:         envString("SENTRY_DSN", ""),
		SentryEnvironment: envString("SENTRY_ENVIRONMENT", ""),
		SentryRelease:     envString("SENTRY_RELEASE", ""),
		SentrySampleRate:  envFloat("SENTRY_SAMPLE_RATE", 1.0),
	}
	if cached.HistoryEnabled && cached.DatabaseURL == "" {
		cached.HistoryEnabled = false
	}
	if cached.SentryEnvironment == "" {
		if env := os.Getenv("ENV"); env != "" {
			cached.SentryEnvironment = env
		} else {
			cached.SentryEnvironment = "development"
		}
	}

	corsOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if corsOrigins == "" {
		cached.CORSAllowedOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	} else {
		cached.CORSAllowedOrigins = strings.Split(corsOrigins, ",")
		for i := range cached.CORSAllowedOrigins {
			cached.CORSAllowedOrigins[i] = strings.TrimSpace(cached.CORSAllowedOrigins[i])
		}
	}

	return cached
}

// ResetForTest clears cached config; for use in tests only.
func ResetForTest() { cached = nil }
