package providers

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/veldtlab/hwscope/gpu"
)

// sysfsCard reads GPU metrics for one DRM card directory. AMD and
// Intel share the sysfs layout; only the available files differ.
type sysfsCard struct {
	root string // e.g. /sys/class/drm
	name string // e.g. card0
}

func (c sysfsCard) dev(parts ...string) string {
	return filepath.Join(append([]string{c.root, c.name, "device"}, parts...)...)
}

func (c sysfsCard) readString(parts ...string) (string, bool) {
	data, err := os.ReadFile(c.dev(parts...))
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}

func (c sysfsCard) readUint(parts ...string) (uint64, bool) {
	s, ok := c.readString(parts...)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// hwmonDir locates the card's hwmon directory, if any.
func (c sysfsCard) hwmonDir() (string, bool) {
	matches, err := filepath.Glob(filepath.Join(c.dev("hwmon"), "hwmon*"))
	if err != nil || len(matches) == 0 {
		return "", false
	}
	sort.Strings(matches)
	return matches[0], true
}

// temperature reads temp1_input (millidegrees C) from hwmon.
func (c sysfsCard) temperature() *float64 {
	dir, ok := c.hwmonDir()
	if !ok {
		return nil
	}
	data, err := os.ReadFile(filepath.Join(dir, "temp1_input"))
	if err != nil {
		return nil
	}
	milli, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return nil
	}
	return gpu.Float64(milli / 1000)
}

// power reads power1_average (microwatts) from hwmon.
func (c sysfsCard) power() *float64 {
	dir, ok := c.hwmonDir()
	if !ok {
		return nil
	}
	data, err := os.ReadFile(filepath.Join(dir, "power1_average"))
	if err != nil {
		return nil
	}
	micro, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return nil
	}
	return gpu.Float64(micro / 1e6)
}

// listCards returns the card directories under root whose PCI vendor
// ID matches want, sorted by card name.
func listCards(root string, want gpu.Vendor) []sysfsCard {
	paths, err := filepath.Glob(filepath.Join(root, "card[0-9]*", "device", "vendor"))
	if err != nil {
		return nil
	}
	sort.Strings(paths)
	var cards []sysfsCard
	for _, vendorPath := range paths {
		data, err := os.ReadFile(vendorPath)
		if err != nil {
			continue
		}
		if gpu.VendorFromPCIID(strings.TrimSpace(string(data))) != want {
			continue
		}
		// root/cardN/device/vendor → cardN
		name := filepath.Base(filepath.Dir(filepath.Dir(vendorPath)))
		cards = append(cards, sysfsCard{root: root, name: name})
	}
	return cards
}

// AMD reads AMD GPU metrics from the amdgpu sysfs interface
// (/sys/class/drm/card*/device).
type AMD struct {
	root string
}

// NewAMD returns a sysfs-backed AMD provider.
func NewAMD() *AMD {
	return &AMD{root: "/sys/class/drm"}
}

func (p *AMD) Vendor() gpu.Vendor { return gpu.VendorAMD }

func (p *AMD) Detect() ([]gpu.Device, error) {
	cards := listCards(p.root, gpu.VendorAMD)
	devices := make([]gpu.Device, 0, len(cards))
	for _, card := range cards {
		devices = append(devices, p.snapshot(card))
	}
	return devices, nil
}

func (p *AMD) Update(dev *gpu.Device) error {
	if dev.ID == "" {
		return fmt.Errorf("amdgpu: device has no sysfs card id")
	}
	card := sysfsCard{root: p.root, name: dev.ID}
	if _, err := os.Stat(card.dev()); err != nil {
		return fmt.Errorf("amdgpu: %s: %w", dev.ID, err)
	}
	fresh := p.snapshot(card)
	fresh.Index = dev.Index
	*dev = fresh
	return nil
}

func (p *AMD) snapshot(card sysfsCard) gpu.Device {
	dev := gpu.Device{
		ID:     card.name,
		Vendor: gpu.VendorAMD,
		Active: true,
	}
	if id, ok := card.readString("device"); ok {
		dev.Name = fmt.Sprintf("AMD GPU (device %s)", id)
	} else {
		dev.Name = "AMD GPU"
	}
	// Marketing name, when the driver exposes it.
	if name, ok := card.readString("product_name"); ok && name != "" {
		dev.Name = name
	}
	dev.Temperature = card.temperature()
	dev.PowerDraw = card.power()
	if busy, ok := card.readUint("gpu_busy_percent"); ok {
		dev.Utilization = gpu.Float64(float64(busy))
	}
	if used, ok := card.readUint("mem_info_vram_used"); ok {
		dev.MemoryUsed = gpu.Uint64(used / (1024 * 1024))
	}
	if total, ok := card.readUint("mem_info_vram_total"); ok {
		dev.MemoryTotal = gpu.Uint64(total / (1024 * 1024))
	}
	return dev
}

// Intel reads Intel integrated graphics state from the i915 sysfs
// interface. Coverage is thinner than AMD's: frequency is exposed,
// most other metrics are not.
type Intel struct {
	root string
}

// NewIntel returns a sysfs-backed Intel provider.
func NewIntel() *Intel {
	return &Intel{root: "/sys/class/drm"}
}

func (p *Intel) Vendor() gpu.Vendor { return gpu.VendorIntel }

func (p *Intel) Detect() ([]gpu.Device, error) {
	cards := listCards(p.root, gpu.VendorIntel)
	devices := make([]gpu.Device, 0, len(cards))
	for _, card := range cards {
		devices = append(devices, p.snapshot(card))
	}
	return devices, nil
}

func (p *Intel) Update(dev *gpu.Device) error {
	if dev.ID == "" {
		return fmt.Errorf("i915: device has no sysfs card id")
	}
	card := sysfsCard{root: p.root, name: dev.ID}
	if _, err := os.Stat(card.dev()); err != nil {
		return fmt.Errorf("i915: %s: %w", dev.ID, err)
	}
	fresh := p.snapshot(card)
	fresh.Index = dev.Index
	*dev = fresh
	return nil
}

func (p *Intel) snapshot(card sysfsCard) gpu.Device {
	dev := gpu.Device{
		ID:     card.name,
		Name:   "Intel Graphics",
		Vendor: gpu.VendorIntel,
		Active: true,
	}
	if id, ok := card.readString("device"); ok {
		dev.Name = fmt.Sprintf("Intel Graphics (device %s)", id)
	}
	// Frequencies live next to the card dir, not under device/.
	if cur, ok := readUintFile(filepath.Join(card.root, card.name, "gt_cur_freq_mhz")); ok {
		dev.CoreClock = gpu.Uint64(cur)
	}
	if max, ok := readUintFile(filepath.Join(card.root, card.name, "gt_max_freq_mhz")); ok {
		dev.MaxCoreClock = gpu.Uint64(max)
	}
	return dev
}

func readUintFile(path string) (uint64, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	v, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
