package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/veldtlab/hwscope/cache"
	"github.com/veldtlab/hwscope/osinfo"
)

// SystemHandler serves the host OS identity. Detection shells out to
// platform tools, so the result sits behind a long-lived single-value
// cache; the OS is not going to change under us.
type SystemHandler struct {
	info   *cache.Single[osinfo.Info]
	detect func() osinfo.Info
}

func NewSystemHandler(ttl time.Duration) *SystemHandler {
	return &SystemHandler{
		info:   cache.NewSingle[osinfo.Info](ttl),
		detect: osinfo.Get,
	}
}

// Get returns the detected operating system.
// GET /api/system
func (h *SystemHandler) Get(w http.ResponseWriter, r *http.Request) {
	info, ok := h.info.Get()
	if !ok {
		info = h.detect()
		h.info.Set(info)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"os":      info,
		"display": info.String(),
	})
}
