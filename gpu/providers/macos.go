package providers

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/veldtlab/hwscope/gpu"
)

// Apple queries macOS display hardware through
// `system_profiler SPDisplaysDataType -json`. This covers Apple
// Silicon integrated GPUs as well as AMD cards in Intel Macs;
// system_profiler reports identity and VRAM but no live utilization.
type Apple struct{}

// NewApple returns a system_profiler backed provider.
func NewApple() *Apple {
	return &Apple{}
}

func (p *Apple) Vendor() gpu.Vendor { return gpu.VendorApple }

func (p *Apple) Detect() ([]gpu.Device, error) {
	out, err := exec.Command("system_profiler", "SPDisplaysDataType", "-json").Output()
	if err != nil {
		return nil, fmt.Errorf("system_profiler: %w", err)
	}
	return ParseSystemProfiler(out)
}

func (p *Apple) Update(dev *gpu.Device) error {
	devices, err := p.Detect()
	if err != nil {
		return err
	}
	for _, fresh := range devices {
		if fresh.ID == dev.ID && fresh.Name == dev.Name {
			fresh.Index = dev.Index
			*dev = fresh
			return nil
		}
	}
	return fmt.Errorf("system_profiler: device %q no longer reported", dev.Name)
}

// spDisplays mirrors the subset of system_profiler's JSON we read.
type spDisplays struct {
	SPDisplaysDataType []struct {
		Name     string `json:"_name"`
		Vendor   string `json:"spdisplays_vendor"`
		Model    string `json:"sppci_model"`
		VRAM     string `json:"spdisplays_vram"`
		VRAMShrd string `json:"spdisplays_vram_shared"`
		DeviceID string `json:"spdisplays_device-id"`
		Cores    string `json:"sppci_cores"`
	} `json:"SPDisplaysDataType"`
}

// ParseSystemProfiler parses `system_profiler SPDisplaysDataType
// -json` output into device snapshots.
func ParseSystemProfiler(out []byte) ([]gpu.Device, error) {
	var sp spDisplays
	if err := json.Unmarshal(out, &sp); err != nil {
		return nil, fmt.Errorf("parsing system_profiler output: %w", err)
	}
	var devices []gpu.Device
	for _, entry := range sp.SPDisplaysDataType {
		name := entry.Model
		if name == "" {
			name = entry.Name
		}
		vendor := gpu.VendorFromName(entry.Vendor)
		if vendor == gpu.VendorUnknown {
			vendor = gpu.VendorFromName(name)
		}
		if vendor == gpu.VendorUnknown {
			vendor = gpu.VendorApple
		}
		dev := gpu.Device{
			ID:     entry.DeviceID,
			Name:   name,
			Vendor: vendor,
			Active: true,
		}
		vram := entry.VRAM
		if vram == "" {
			vram = entry.VRAMShrd
		}
		if mib, ok := parseVRAM(vram); ok {
			dev.MemoryTotal = gpu.Uint64(mib)
		}
		devices = append(devices, dev)
	}
	return devices, nil
}

// parseVRAM converts strings like "8 GB" or "1536 MB" to MiB.
func parseVRAM(s string) (uint64, bool) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) != 2 {
		return 0, false
	}
	v, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return 0, false
	}
	switch strings.ToUpper(fields[1]) {
	case "GB":
		return v * 1024, true
	case "MB":
		return v, true
	default:
		return 0, false
	}
}
