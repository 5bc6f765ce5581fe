package gpu

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeProvider is an in-memory Provider for tests. It counts Detect
// and Update calls and can be made to fail.
type fakeProvider struct {
	mu          sync.Mutex
	vendor      Vendor
	devices     []Device
	detectErr   error
	updateErr   error
	detectCalls int
	updateCalls int
	temperature float64
}

func (f *fakeProvider) Vendor() Vendor { return f.vendor }

func (f *fakeProvider) Detect() ([]Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detectCalls++
	if f.detectErr != nil {
		return nil, f.detectErr
	}
	out := make([]Device, len(f.devices))
	copy(out, f.devices)
	return out, nil
}

func (f *fakeProvider) Update(dev *Device) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.updateErr != nil {
		return f.updateErr
	}
	dev.Temperature = Float64(f.temperature)
	return nil
}

func (f *fakeProvider) updates() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updateCalls
}

func newTestRegistry(providers ...Provider) *Registry {
	reg := NewRegistry()
	for _, p := range providers {
		reg.Register(p)
	}
	return reg
}

func TestRegistryDetectAllSkipsFailingProvider(t *testing.T) {
	good := &fakeProvider{vendor: VendorNvidia, devices: []Device{{Name: "RTX 4090", Vendor: VendorNvidia}}}
	bad := &fakeProvider{vendor: VendorAMD, detectErr: errors.New("sysfs unavailable")}

	devices := newTestRegistry(good, bad).DetectAll()

	if len(devices) != 1 {
		t.Fatalf("expected 1 device, got %d", len(devices))
	}
	if devices[0].Name != "RTX 4090" {
		t.Errorf("unexpected device %q", devices[0].Name)
	}
}

func TestRegistryUpdateDispatch(t *testing.T) {
	nv := &fakeProvider{vendor: VendorNvidia, temperature: 60}
	reg := newTestRegistry(nv)

	dev := Device{Vendor: VendorNvidia}
	if err := reg.Update(&dev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dev.Temperature == nil || *dev.Temperature != 60 {
		t.Errorf("expected temperature 60, got %v", dev.Temperature)
	}

	other := Device{Vendor: VendorAMD}
	if err := reg.Update(&other); !errors.Is(err, ErrNoProvider) {
		t.Errorf("expected ErrNoProvider, got %v", err)
	}
}

func TestRegistryFallback(t *testing.T) {
	fb := &fakeProvider{vendor: VendorUnknown, temperature: 40}
	reg := NewRegistry()
	reg.RegisterFallback(fb)

	dev := Device{Vendor: VendorAMD}
	if err := reg.Update(&dev); err != nil {
		t.Fatalf("expected fallback to handle update, got %v", err)
	}
}

func TestManagerDetection(t *testing.T) {
	reg := newTestRegistry(
		&fakeProvider{vendor: VendorIntel, devices: []Device{{Name: "UHD 770", Vendor: VendorIntel}}},
		&fakeProvider{vendor: VendorNvidia, devices: []Device{{Name: "RTX 4090", Vendor: VendorNvidia}}},
	)
	m := NewManager(reg)

	if m.Count() != 2 {
		t.Fatalf("expected 2 devices, got %d", m.Count())
	}
	// Registry iteration is vendor-ordered, so the NVIDIA card comes
	// first and, being discrete, is the primary.
	primary, err := m.Primary()
	if err != nil {
		t.Fatalf("primary: %v", err)
	}
	if primary.Vendor != VendorNvidia {
		t.Errorf("expected discrete primary, got %v", primary.Vendor)
	}

	devices := m.Devices()
	for i, d := range devices {
		if d.Index != i {
			t.Errorf("device %d has index %d", i, d.Index)
		}
	}
}

func TestManagerDeviceCachedProducerCalls(t *testing.T) {
	nv := &fakeProvider{vendor: VendorNvidia, temperature: 70,
		devices: []Device{{Name: "RTX 4090", Vendor: VendorNvidia}}}
	m := NewManager(newTestRegistry(nv), WithCacheTTL(time.Second))

	dev, err := m.DeviceCached(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dev.Temperature == nil || *dev.Temperature != 70 {
		t.Errorf("expected updated temperature, got %v", dev.Temperature)
	}
	if nv.updates() != 1 {
		t.Fatalf("expected 1 update call, got %d", nv.updates())
	}

	// Within TTL: served from cache, no second provider call.
	if _, err := m.DeviceCached(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if nv.updates() != 1 {
		t.Errorf("expected cached hit, got %d update calls", nv.updates())
	}
}

func TestManagerDeviceCachedExpiry(t *testing.T) {
	nv := &fakeProvider{vendor: VendorNvidia, temperature: 70,
		devices: []Device{{Name: "RTX 4090", Vendor: VendorNvidia}}}
	m := NewManager(newTestRegistry(nv), WithCacheTTL(50*time.Millisecond))

	if _, err := m.DeviceCached(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	time.Sleep(100 * time.Millisecond)
	if _, err := m.DeviceCached(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if nv.updates() != 2 {
		t.Errorf("expected re-query after TTL, got %d update calls", nv.updates())
	}
}

func TestManagerDeviceCachedUpdateError(t *testing.T) {
	nv := &fakeProvider{vendor: VendorNvidia,
		devices: []Device{{Name: "RTX 4090", Vendor: VendorNvidia}}}
	m := NewManager(newTestRegistry(nv), WithCacheTTL(time.Second))

	nv.updateErr = errors.New("nvidia-smi: command not found")
	if _, err := m.DeviceCached(0); err == nil {
		t.Fatal("expected provider error to propagate")
	}
	// Nothing cached on failure: a later call retries the provider.
	nv.updateErr = nil
	nv.temperature = 55
	dev, err := m.DeviceCached(0)
	if err != nil {
		t.Fatalf("unexpected error on retry: %v", err)
	}
	if dev.Temperature == nil || *dev.Temperature != 55 {
		t.Errorf("expected retry to produce fresh value, got %v", dev.Temperature)
	}
}

func TestManagerDeviceCachedBadIndex(t *testing.T) {
	m := NewManager(newTestRegistry())
	if _, err := m.DeviceCached(3); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("expected ErrDeviceNotFound, got %v", err)
	}
}

func TestManagerSetPrimary(t *testing.T) {
	nv := &fakeProvider{vendor: VendorNvidia, devices: []Device{
		{Name: "RTX 4090", Vendor: VendorNvidia},
		{Name: "RTX 4080", Vendor: VendorNvidia},
	}}
	m := NewManager(newTestRegistry(nv))

	if err := m.SetPrimary(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.PrimaryIndex() != 1 {
		t.Errorf("expected primary 1, got %d", m.PrimaryIndex())
	}
	if err := m.SetPrimary(5); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("expected ErrDeviceNotFound, got %v", err)
	}
}

func TestManagerRefreshAll(t *testing.T) {
	nv := &fakeProvider{vendor: VendorNvidia, temperature: 80, devices: []Device{
		{Name: "RTX 4090", Vendor: VendorNvidia},
		{Name: "RTX 4080", Vendor: VendorNvidia},
	}}
	m := NewManager(newTestRegistry(nv))

	if err := m.RefreshAll(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if nv.updates() != 2 {
		t.Errorf("expected 2 update calls, got %d", nv.updates())
	}
	// Each refresh leaves a fresh snapshot behind.
	if got := m.CacheStats().TotalEntries; got != 2 {
		t.Errorf("expected 2 cached snapshots after refresh all, got %d", got)
	}
	for i := 0; i < 2; i++ {
		dev, err := m.Device(i)
		if err != nil {
			t.Fatalf("device %d: %v", i, err)
		}
		if dev.Temperature == nil || *dev.Temperature != 80 {
			t.Errorf("device %d not refreshed: %v", i, dev.Temperature)
		}
	}
}

func TestManagerRefreshAllKeepsCacheWarm(t *testing.T) {
	nv := &fakeProvider{vendor: VendorNvidia, temperature: 72, devices: []Device{
		{Name: "RTX 4090", Vendor: VendorNvidia},
		{Name: "RTX 4080", Vendor: VendorNvidia},
	}}
	m := NewManager(newTestRegistry(nv), WithCacheTTL(time.Minute))

	if err := m.RefreshAll(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := nv.updates()

	// Reads straight after a refresh must come from the snapshots the
	// refresh just stored, not trigger another provider round trip.
	for i := 0; i < 2; i++ {
		dev, err := m.DeviceCached(i)
		if err != nil {
			t.Fatalf("device %d: %v", i, err)
		}
		if dev.Temperature == nil || *dev.Temperature != 72 {
			t.Errorf("device %d served stale snapshot: %v", i, dev.Temperature)
		}
	}
	if nv.updates() != before {
		t.Errorf("expected cached reads after refresh all, got %d extra update calls", nv.updates()-before)
	}
}

func TestManagerCacheStats(t *testing.T) {
	nv := &fakeProvider{vendor: VendorNvidia, devices: []Device{{Name: "RTX 4090", Vendor: VendorNvidia}}}
	m := NewManager(newTestRegistry(nv), WithCacheTTL(time.Second))

	if _, err := m.DeviceCached(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := m.DeviceCached(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stats := m.CacheStats()
	if stats.TotalEntries != 1 {
		t.Errorf("expected 1 entry, got %d", stats.TotalEntries)
	}
	if stats.TotalAccesses != 1 {
		t.Errorf("expected 1 cache hit recorded, got %d", stats.TotalAccesses)
	}
}
