package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/veldtlab/hwscope/internal/apierr"
	"github.com/veldtlab/hwscope/internal/history"
	"github.com/veldtlab/hwscope/internal/middleware"
)

const (
	defaultHistoryLimit = 100
	maxHistoryLimit     = 1000
)

// HistoryHandler serves recorded device samples. store is nil when
// history recording is not configured.
type HistoryHandler struct {
	store *history.Store
}

func NewHistoryHandler(store *history.Store) *HistoryHandler {
	return &HistoryHandler{store: store}
}

// Get returns recent samples for one device, newest first.
// GET /api/history/{index}?limit=N
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		apierr.WriteErrorWithContext(w, r, apierr.HistoryDisabled())
		return
	}

	raw := mux.Vars(r)["index"]
	index, err := middleware.ParseDeviceIndex(raw)
	if err != nil {
		apierr.WriteErrorWithContext(w, r, apierr.ValidationInvalidValue("index", err.Error()))
		return
	}

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			apierr.WriteErrorWithContext(w, r, apierr.ValidationInvalidValue("limit", "must be a positive integer"))
			return
		}
		if n > maxHistoryLimit {
			n = maxHistoryLimit
		}
		limit = n
	}

	samples, err := h.store.RecentSamples(r.Context(), index, limit)
	if err != nil {
		apierr.WriteErrorWithContext(w, r, apierr.HistoryQueryFailed(err.Error()))
		return
	}
	if samples == nil {
		samples = []history.Sample{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"deviceIndex": index,
		"samples":     samples,
		"count":       len(samples),
	})
}
