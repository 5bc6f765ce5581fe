package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/veldtlab/hwscope/internal/httpcache"
)

func TestHealth(t *testing.T) {
	rr := httptest.NewRecorder()
	Health(rr, httptest.NewRequest("GET", "/healthz", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status ok, got %q", resp["status"])
	}
}

func TestStatusGet(t *testing.T) {
	manager, _ := newTestManager(t)
	h := NewStatusHandler(manager, httpcache.NewMockCache(), false)

	rr := httptest.NewRecorder()
	h.Get(rr, httptest.NewRequest("GET", "/api/status", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp struct {
		Status         string         `json:"status"`
		Devices        int            `json:"devices"`
		Vendors        map[string]int `json:"vendors"`
		HistoryEnabled bool           `json:"historyEnabled"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("expected status ok, got %q", resp.Status)
	}
	if resp.Devices != 2 {
		t.Errorf("expected 2 devices, got %d", resp.Devices)
	}
	if resp.Vendors["NVIDIA"] != 2 {
		t.Errorf("expected 2 NVIDIA devices, got %v", resp.Vendors)
	}
	if resp.HistoryEnabled {
		t.Error("expected history disabled")
	}
}

func TestNotFound(t *testing.T) {
	rr := httptest.NewRecorder()
	NotFound(rr, httptest.NewRequest("GET", "/nope", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
