package gpu

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/veldtlab/hwscope/cache"
)

// ErrDeviceNotFound is returned for an out-of-range device index.
var ErrDeviceNotFound = errors.New("gpu: device not found")

const (
	// DefaultCacheTTL bounds how stale a served snapshot may be.
	DefaultCacheTTL = 500 * time.Millisecond
	// DefaultMaxCacheEntries bounds the per-index snapshot cache.
	DefaultMaxCacheEntries = 16
)

// Manager owns the detected device list and a TTL cache in front of
// the (slow, blocking) provider queries. Construct one per application
// and pass it around explicitly; there is deliberately no package
// level instance.
//
// Manager is safe for concurrent use.
type Manager struct {
	registry *Registry

	mu      sync.RWMutex // guards devices and primary
	devices []Device
	primary int

	cache *cache.Multi[int, Device]
}

// Option configures a Manager.
type Option func(*managerOptions)

type managerOptions struct {
	ttl        time.Duration
	maxEntries int
}

// WithCacheTTL overrides the snapshot cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *managerOptions) { o.ttl = ttl }
}

// WithMaxCacheEntries overrides the snapshot cache capacity bound.
// Zero disables the bound.
func WithMaxCacheEntries(n int) Option {
	return func(o *managerOptions) { o.maxEntries = n }
}

// NewManager detects devices through reg and returns a manager serving
// them. Detection failures of individual providers are logged and
// skipped; a machine with no visible GPUs yields a manager with zero
// devices rather than an error.
func NewManager(reg *Registry, opts ...Option) *Manager {
	o := managerOptions{ttl: DefaultCacheTTL, maxEntries: DefaultMaxCacheEntries}
	for _, opt := range opts {
		opt(&o)
	}

	m := &Manager{
		registry: reg,
		cache:    cache.NewMultiBounded[int, Device](o.ttl, o.maxEntries),
	}
	m.detect()
	return m
}

// detect populates the device list and picks the primary device:
// first discrete card wins, else index 0.
func (m *Manager) detect() {
	devices := m.registry.DetectAll()
	for i := range devices {
		devices[i].Index = i
	}

	primary := 0
	for i, d := range devices {
		if d.Discrete() {
			primary = i
			break
		}
	}

	m.mu.Lock()
	m.devices = devices
	m.primary = primary
	m.mu.Unlock()

	if len(devices) == 0 {
		slog.Warn("no GPUs detected")
	} else {
		slog.Info("gpu detection complete", "count", len(devices), "primary", primary)
	}
}

// Count returns the number of detected devices.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.devices)
}

// Devices returns a copy of the detected device list (last refreshed
// snapshots, not cache contents).
func (m *Manager) Devices() []Device {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Device, len(m.devices))
	copy(out, m.devices)
	return out
}

// Device returns the last refreshed snapshot for index.
func (m *Manager) Device(index int) (Device, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if index < 0 || index >= len(m.devices) {
		return Device{}, fmt.Errorf("%w: index %d", ErrDeviceNotFound, index)
	}
	return m.devices[index], nil
}

// DevicesByVendor returns copies of all devices from one vendor.
func (m *Manager) DevicesByVendor(v Vendor) []Device {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Device
	for _, d := range m.devices {
		if d.Vendor == v {
			out = append(out, d)
		}
	}
	return out
}

// PrimaryIndex returns the primary device index.
func (m *Manager) PrimaryIndex() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.primary
}

// Primary returns the last refreshed snapshot of the primary device.
func (m *Manager) Primary() (Device, error) {
	return m.Device(m.PrimaryIndex())
}

// SetPrimary selects the primary device.
func (m *Manager) SetPrimary(index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if index < 0 || index >= len(m.devices) {
		return fmt.Errorf("%w: index %d", ErrDeviceNotFound, index)
	}
	m.primary = index
	return nil
}

// DeviceCached returns a snapshot for index no staler than the cache
// TTL. On a cache miss the provider is queried (outside any cache
// lock), the fresh snapshot is stored, and the detected list is
// updated. Provider failures propagate and leave prior cache state,
// stale or not, untouched for a later retry.
func (m *Manager) DeviceCached(index int) (Device, error) {
	base, err := m.Device(index)
	if err != nil {
		return Device{}, err
	}
	return m.cache.GetOrCompute(index, func() (Device, error) {
		dev := base
		if err := m.registry.Update(&dev); err != nil {
			return Device{}, fmt.Errorf("updating %s: %w", dev, err)
		}
		m.storeDevice(dev)
		return dev, nil
	})
}

// PrimaryCached returns a cached snapshot of the primary device.
func (m *Manager) PrimaryCached() (Device, error) {
	return m.DeviceCached(m.PrimaryIndex())
}

func (m *Manager) storeDevice(dev Device) {
	m.mu.Lock()
	if dev.Index >= 0 && dev.Index < len(m.devices) {
		m.devices[dev.Index] = dev
	}
	m.mu.Unlock()
}

// Refresh forces a provider query for index, bypassing the TTL, and
// repopulates the cache with the result.
func (m *Manager) Refresh(index int) error {
	dev, err := m.Device(index)
	if err != nil {
		return err
	}
	if err := m.registry.Update(&dev); err != nil {
		return fmt.Errorf("updating %s: %w", dev, err)
	}
	m.storeDevice(dev)
	m.cache.Set(index, dev)
	return nil
}

// RefreshAll force-updates every device, attempting all of them even
// when some fail. Each successful refresh leaves a fresh snapshot in
// the cache, so reads right after return are served without another
// provider round trip. The joined error reports every failure.
func (m *Manager) RefreshAll() error {
	var errs []error
	for i := 0; i < m.Count(); i++ {
		if err := m.Refresh(i); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CacheStats reports statistics over the snapshot cache.
func (m *Manager) CacheStats() cache.Stats {
	return m.cache.Stats()
}

// ClearCache drops all cached snapshots.
func (m *Manager) ClearCache() {
	m.cache.Clear()
}

// CleanupCache removes expired cache entries and returns how many were
// dropped. Callers schedule this; the manager owns no timer.
func (m *Manager) CleanupCache() int {
	return m.cache.CleanupExpired()
}
