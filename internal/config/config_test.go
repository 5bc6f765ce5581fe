package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// ensure defaults kick in with empty env
	os.Unsetenv("HWSCOPE_ADDR")
	os.Unsetenv("DEVICE_CACHE_TTL_MS")
	os.Unsetenv("MAX_CACHE_ENTRIES")
	os.Unsetenv("POLL_INTERVAL_MS")
	os.Unsetenv("HISTORY_ENABLED")
	os.Unsetenv("DATABASE_URL")
	ResetForTest()

	cfg := Load()
	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr :8080, got %q", cfg.Addr)
	}
	if cfg.DeviceCacheTTL != 500*time.Millisecond {
		t.Fatalf("expected default device cache TTL 500ms, got %v", cfg.DeviceCacheTTL)
	}
	if cfg.MaxCacheEntries != 16 {
		t.Fatalf("expected default MaxCacheEntries=16, got %d", cfg.MaxCacheEntries)
	}
	if cfg.PollInterval != 2*time.Second {
		t.Fatalf("expected default poll interval 2s, got %v", cfg.PollInterval)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("expected default log level info, got %q", cfg.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DEVICE_CACHE_TTL_MS", "250")
	t.Setenv("MAX_CACHE_ENTRIES", "0")
	t.Setenv("RATE_LIMIT_PER_IP", "2.5")
	ResetForTest()
	t.Cleanup(ResetForTest)

	cfg := Load()
	if cfg.DeviceCacheTTL != 250*time.Millisecond {
		t.Fatalf("expected 250ms TTL, got %v", cfg.DeviceCacheTTL)
	}
	if cfg.MaxCacheEntries != 0 {
		t.Fatalf("expected unbounded cache, got %d", cfg.MaxCacheEntries)
	}
	if cfg.RateLimitPerIP != 2.5 {
		t.Fatalf("expected per-IP rate 2.5, got %v", cfg.RateLimitPerIP)
	}
}

func TestHistoryDisabledWithoutDatabaseURL(t *testing.T) {
	t.Setenv("HISTORY_ENABLED", "true")
	os.Unsetenv("DATABASE_URL")
	ResetForTest()
	t.Cleanup(ResetForTest)

	cfg := Load()
	if cfg.HistoryEnabled {
		t.Fatal("history should be disabled when DATABASE_URL is unset")
	}
}
