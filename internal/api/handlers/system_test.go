package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/veldtlab/hwscope/osinfo"
)

func TestSystemGet(t *testing.T) {
	h := NewSystemHandler(time.Minute)
	h.detect = func() osinfo.Info {
		return osinfo.Info{
			Type:     osinfo.TypeUbuntu,
			Version:  "22.04",
			Codename: "jammy",
			BitDepth: osinfo.Depth64,
		}
	}

	rr := httptest.NewRecorder()
	h.Get(rr, httptest.NewRequest("GET", "/api/system", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp struct {
		OS      osinfo.Info `json:"os"`
		Display string      `json:"display"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.OS.Type != osinfo.TypeUbuntu || resp.OS.Version != "22.04" {
		t.Errorf("unexpected os info: %+v", resp.OS)
	}
	if resp.Display != "Ubuntu 22.04 (jammy) 64-bit" {
		t.Errorf("unexpected display string: %q", resp.Display)
	}
}

func TestSystemGetCachesDetection(t *testing.T) {
	h := NewSystemHandler(time.Minute)
	calls := 0
	h.detect = func() osinfo.Info {
		calls++
		return osinfo.Info{Type: osinfo.TypeFedora}
	}

	for i := 0; i < 5; i++ {
		rr := httptest.NewRecorder()
		h.Get(rr, httptest.NewRequest("GET", "/api/system", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rr.Code)
		}
	}

	if calls != 1 {
		t.Errorf("expected 1 detection call, got %d", calls)
	}
}

func TestSystemGetRedetectsAfterExpiry(t *testing.T) {
	h := NewSystemHandler(10 * time.Millisecond)
	calls := 0
	h.detect = func() osinfo.Info {
		calls++
		return osinfo.Info{Type: osinfo.TypeDebian}
	}

	h.Get(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/system", nil))
	time.Sleep(20 * time.Millisecond)
	h.Get(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/system", nil))

	if calls != 2 {
		t.Errorf("expected 2 detection calls across TTL expiry, got %d", calls)
	}
}
