package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/veldtlab/hwscope/gpu"
	"github.com/veldtlab/hwscope/internal/apierr"
	"github.com/veldtlab/hwscope/internal/httpcache"
)

var startTime = time.Now()

// Health returns a simple JSON payload to indicate the service is alive.
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// NotFound is the router's fallback for unmatched paths.
func NotFound(w http.ResponseWriter, r *http.Request) {
	apierr.WriteErrorWithContext(w, r, apierr.ResourceNotFound("route"))
}

// StatusHandler reports a service-level summary: device counts, cache
// behavior and whether history recording is on.
type StatusHandler struct {
	manager        *gpu.Manager
	cache          httpcache.Cache
	historyEnabled bool
}

func NewStatusHandler(m *gpu.Manager, c httpcache.Cache, historyEnabled bool) *StatusHandler {
	return &StatusHandler{manager: m, cache: c, historyEnabled: historyEnabled}
}

// Get returns the service status summary.
// GET /api/status
func (h *StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	deviceStats := h.manager.CacheStats()
	responseStats := h.cache.Stats()

	vendors := make(map[string]int)
	for _, dev := range h.manager.Devices() {
		vendors[dev.Vendor.String()]++
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":         "ok",
		"uptimeSeconds":  int64(time.Since(startTime).Seconds()),
		"devices":        h.manager.Count(),
		"vendors":        vendors,
		"historyEnabled": h.historyEnabled,
		"deviceCache":    deviceStats,
		"responseCache":  responseStats,
	})
}
