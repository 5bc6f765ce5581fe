package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/veldtlab/hwscope/gpu"
	"github.com/veldtlab/hwscope/internal/apierr"
	"github.com/veldtlab/hwscope/internal/httpcache"
	"github.com/veldtlab/hwscope/internal/logger"
	"github.com/veldtlab/hwscope/internal/metrics"
	"github.com/veldtlab/hwscope/internal/middleware"
	"github.com/veldtlab/hwscope/internal/tracing"
)

// DeviceHandler serves device snapshots out of the manager, with a thin
// response cache in front so a dashboard polling every frame doesn't
// re-serialize the same payload.
type DeviceHandler struct {
	manager *gpu.Manager
	cache   httpcache.Cache
}

func NewDeviceHandler(m *gpu.Manager, c httpcache.Cache) *DeviceHandler {
	return &DeviceHandler{manager: m, cache: c}
}

// List returns all detected devices with current metrics.
// GET /api/devices
func (h *DeviceHandler) List(w http.ResponseWriter, r *http.Request) {
	const cacheKey = "devices:all"

	if cached, ok := h.cache.Get(cacheKey); ok {
		metrics.APICacheHits.WithLabelValues("devices").Inc()
		writeCachedJSON(w, cached)
		return
	}
	metrics.APICacheMisses.WithLabelValues("devices").Inc()

	_, span := tracing.StartSpan(r.Context(), "api.devices.list")
	defer span.End()

	devices := make([]gpu.Device, 0, h.manager.Count())
	for _, dev := range h.manager.Devices() {
		fresh, err := h.manager.DeviceCached(dev.Index)
		if err != nil {
			// Keep the stale snapshot rather than dropping the card
			// from the listing.
			logger.Warn("device refresh failed", "index", dev.Index, "error", err)
			fresh = dev
		}
		devices = append(devices, fresh)
	}

	body, err := json.Marshal(map[string]any{
		"devices": devices,
		"count":   len(devices),
	})
	if err != nil {
		apierr.WriteErrorWithContext(w, r, apierr.SystemInternal("failed to encode device list"))
		return
	}

	h.cache.Set(cacheKey, body, 0)
	writeCachedJSON(w, body)
}

// Get returns one device by index.
// GET /api/devices/{index}
func (h *DeviceHandler) Get(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["index"]
	index, err := middleware.ParseDeviceIndex(raw)
	if err != nil {
		apierr.WriteErrorWithContext(w, r, apierr.ValidationInvalidValue("index", err.Error()))
		return
	}

	cacheKey := "devices:" + raw
	if cached, ok := h.cache.Get(cacheKey); ok {
		metrics.APICacheHits.WithLabelValues("device").Inc()
		writeCachedJSON(w, cached)
		return
	}
	metrics.APICacheMisses.WithLabelValues("device").Inc()

	_, span := tracing.StartSpan(r.Context(), "api.devices.get")
	defer span.End()

	dev, err := h.manager.DeviceCached(index)
	if err != nil {
		switch {
		case errors.Is(err, gpu.ErrDeviceNotFound):
			apierr.WriteErrorWithContext(w, r, apierr.DeviceNotFound(raw))
		case errors.Is(err, gpu.ErrNoProvider):
			apierr.WriteErrorWithContext(w, r, apierr.DeviceNoProvider())
		default:
			vendor := gpu.VendorUnknown
			if base, baseErr := h.manager.Device(index); baseErr == nil {
				vendor = base.Vendor
			}
			metrics.DeviceQueryErrors.WithLabelValues(vendor.String()).Inc()
			apierr.WriteErrorWithContext(w, r, apierr.DeviceQueryFailed(err.Error()))
		}
		return
	}

	body, err := json.Marshal(dev)
	if err != nil {
		apierr.WriteErrorWithContext(w, r, apierr.SystemInternal("failed to encode device"))
		return
	}

	h.cache.Set(cacheKey, body, 0)
	writeCachedJSON(w, body)
}

// Refresh forces a re-query of every device, bypassing TTLs.
// POST /api/admin/devices/refresh
func (h *DeviceHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.RefreshAll(); err != nil {
		apierr.WriteErrorWithContext(w, r, apierr.DeviceQueryFailed(err.Error()))
		return
	}
	h.cache.Clear()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"devices": h.manager.Count(),
	})
}

func writeCachedJSON(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
