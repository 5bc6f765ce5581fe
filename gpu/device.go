// Package gpu models GPU hardware metrics and the providers that
// produce them. A Device is one immutable snapshot of a card's state;
// providers detect cards and refresh snapshots; a Manager wraps the
// providers with TTL caching so callers can poll cheaply.
package gpu

import "fmt"

// Device is one captured reading of a GPU's identity and metrics.
// Optional metrics are pointers: nil means the platform or vendor tool
// did not report the value, which the Format helpers render as "N/A".
type Device struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	Vendor Vendor `json:"vendor"`
	// ID is a stable provider-specific identifier used to re-locate
	// the device on update: an NVML UUID, a sysfs card name, or a
	// Windows PNP device ID.
	ID            string   `json:"id,omitempty"`
	Temperature   *float64 `json:"temperature,omitempty"`    // °C
	Utilization   *float64 `json:"utilization,omitempty"`    // percent
	CoreClock     *uint64  `json:"core_clock,omitempty"`     // MHz
	MaxCoreClock  *uint64  `json:"max_core_clock,omitempty"` // MHz
	PowerDraw     *float64 `json:"power_draw,omitempty"`     // W
	PowerLimit    *float64 `json:"power_limit,omitempty"`    // W
	MemoryUsed    *uint64  `json:"memory_used,omitempty"`    // MiB
	MemoryTotal   *uint64  `json:"memory_total,omitempty"`   // MiB
	DriverVersion string   `json:"driver_version,omitempty"`
	Active        bool     `json:"active"`
}

// Float64 returns a pointer to v. Convenience for building snapshots.
func Float64(v float64) *float64 { return &v }

// Uint64 returns a pointer to v. Convenience for building snapshots.
func Uint64(v uint64) *uint64 { return &v }

// Discrete reports whether the device is a discrete (non-integrated)
// card; used when picking a primary device.
func (d Device) Discrete() bool {
	return d.Vendor == VendorNvidia || d.Vendor == VendorAMD
}

// FormatTemperature renders "Temperature: 65°C", or N/A when absent.
func (d Device) FormatTemperature() string {
	if d.Temperature == nil {
		return "Temperature: N/A"
	}
	return fmt.Sprintf("Temperature: %.0f°C", *d.Temperature)
}

// FormatUtilization renders "Utilization: 45.5%", or N/A when absent.
func (d Device) FormatUtilization() string {
	if d.Utilization == nil {
		return "Utilization: N/A"
	}
	return fmt.Sprintf("Utilization: %.1f%%", *d.Utilization)
}

// FormatClock renders "Clock: 1800/2520 MHz", substituting 0 for
// missing values.
func (d Device) FormatClock() string {
	var cur, max uint64
	if d.CoreClock != nil {
		cur = *d.CoreClock
	}
	if d.MaxCoreClock != nil {
		max = *d.MaxCoreClock
	}
	return fmt.Sprintf("Clock: %d/%d MHz", cur, max)
}

// FormatPower renders "Power: 123.45/450 W", substituting 0 for
// missing values.
func (d Device) FormatPower() string {
	var cur, max float64
	if d.PowerDraw != nil {
		cur = *d.PowerDraw
	}
	if d.PowerLimit != nil {
		max = *d.PowerLimit
	}
	return fmt.Sprintf("Power: %.2f/%.0f W", cur, max)
}

// FormatMemory renders "Memory: 2048/24576 MiB", or N/A when the total
// is unknown.
func (d Device) FormatMemory() string {
	if d.MemoryTotal == nil {
		return "Memory: N/A"
	}
	var used uint64
	if d.MemoryUsed != nil {
		used = *d.MemoryUsed
	}
	return fmt.Sprintf("Memory: %d/%d MiB", used, *d.MemoryTotal)
}

func (d Device) String() string {
	return fmt.Sprintf("%s %s (#%d)", d.Vendor, d.Name, d.Index)
}
