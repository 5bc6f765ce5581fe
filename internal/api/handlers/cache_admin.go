package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/veldtlab/hwscope/gpu"
	"github.com/veldtlab/hwscope/internal/httpcache"
)

// CacheAdminHandler exposes both cache layers to operators: the device
// snapshot cache inside the manager and the serialized response cache.
type CacheAdminHandler struct {
	responses httpcache.Cache
	manager   *gpu.Manager
}

func NewCacheAdminHandler(responses httpcache.Cache, manager *gpu.Manager) *CacheAdminHandler {
	return &CacheAdminHandler{responses: responses, manager: manager}
}

// Invalidate clears both cache layers.
// POST /api/admin/cache/invalidate
func (h *CacheAdminHandler) Invalidate(w http.ResponseWriter, r *http.Request) {
	h.responses.Clear()
	h.manager.ClearCache()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"message": "caches invalidated",
	})
}

// GetStats returns statistics for both cache layers.
// GET /api/admin/cache/stats
func (h *CacheAdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"deviceCache":   h.manager.CacheStats(),
		"responseCache": h.responses.Stats(),
	})
}
