package gpu

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
)

// ErrNoProvider is returned when no registered provider can handle a
// device's vendor.
var ErrNoProvider = errors.New("gpu: no provider registered for vendor")

// Provider is the vendor/platform-specific capability the rest of the
// library builds on: enumerate devices, and refresh one device's
// metrics in place. Implementations shell out to vendor tools or read
// sysfs and may block for tens of milliseconds; callers are expected
// to go through a cached Manager rather than hit providers directly.
type Provider interface {
	// Vendor is the hardware vendor this provider serves.
	Vendor() Vendor
	// Detect enumerates the devices this provider can see. An empty
	// slice with a nil error means "tool available, no cards".
	Detect() ([]Device, error)
	// Update refreshes dev's metrics in place, keyed off dev.Index
	// and dev.Vendor from a prior Detect.
	Update(dev *Device) error
}

// Registry holds one provider per vendor plus an optional fallback for
// vendors without a dedicated provider (e.g. a generic OS query).
// Register providers at startup and share the registry read-only after
// that; it is not synchronized for concurrent mutation.
type Registry struct {
	providers map[Vendor]Provider
	fallback  Provider
}

// NewRegistry returns an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[Vendor]Provider)}
}

// Register adds p keyed by its vendor, replacing any prior provider
// for the same vendor.
func (r *Registry) Register(p Provider) {
	r.providers[p.Vendor()] = p
}

// RegisterFallback sets the provider consulted when no vendor-specific
// provider matches a device.
func (r *Registry) RegisterFallback(p Provider) {
	r.fallback = p
}

// Vendors lists the vendors with a dedicated provider, sorted for
// deterministic iteration.
func (r *Registry) Vendors() []Vendor {
	vs := make([]Vendor, 0, len(r.providers))
	for v := range r.providers {
		vs = append(vs, v)
	}
	sort.Slice(vs, func(i, j int) bool { return vs[i] < vs[j] })
	return vs
}

// Supports reports whether vendor has a dedicated provider.
func (r *Registry) Supports(vendor Vendor) bool {
	_, ok := r.providers[vendor]
	return ok
}

// DetectAll runs Detect on every registered provider (fallback
// included) and aggregates the results. A failing provider is logged
// and skipped; detection only fails wholesale when there are no
// providers at all.
func (r *Registry) DetectAll() []Device {
	var all []Device
	for _, vendor := range r.Vendors() {
		devices, err := r.providers[vendor].Detect()
		if err != nil {
			slog.Warn("gpu detection failed", "vendor", vendor.String(), "error", err)
			continue
		}
		slog.Debug("gpu detection", "vendor", vendor.String(), "count", len(devices))
		all = append(all, devices...)
	}
	if r.fallback != nil {
		devices, err := r.fallback.Detect()
		if err != nil {
			slog.Warn("fallback gpu detection failed", "error", err)
		} else if len(all) == 0 {
			all = append(all, devices...)
		}
	}
	return all
}

// Update dispatches dev to the provider registered for its vendor, or
// the fallback when none matches.
func (r *Registry) Update(dev *Device) error {
	if p, ok := r.providers[dev.Vendor]; ok {
		return p.Update(dev)
	}
	if r.fallback != nil {
		return r.fallback.Update(dev)
	}
	return fmt.Errorf("%w: %s", ErrNoProvider, dev.Vendor)
}
