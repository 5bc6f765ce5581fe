// Package providers contains the vendor and platform specific glue
// that turns vendor tools (nvidia-smi, sysfs, system_profiler,
// Win32_VideoController) into gpu.Device snapshots. Everything here
// shells out or reads files; no cgo.
package providers

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/veldtlab/hwscope/gpu"
)

// smiQueryFields is the --query-gpu field list, in parse order.
const smiQueryFields = "uuid,name,driver_version,temperature.gpu,utilization.gpu," +
	"clocks.current.graphics,clocks.max.graphics,power.draw,power.limit," +
	"memory.used,memory.total"

// Nvidia queries NVIDIA cards through the nvidia-smi CLI, which works
// identically on Linux and Windows driver installs.
type Nvidia struct {
	// smiPath overrides the nvidia-smi binary location; empty means
	// look it up on PATH.
	smiPath string
}

// NewNvidia returns an nvidia-smi backed provider.
func NewNvidia() *Nvidia {
	return &Nvidia{}
}

func (p *Nvidia) Vendor() gpu.Vendor { return gpu.VendorNvidia }

func (p *Nvidia) smi() string {
	if p.smiPath != "" {
		return p.smiPath
	}
	return "nvidia-smi"
}

func (p *Nvidia) query(extra ...string) ([]gpu.Device, error) {
	args := append([]string{
		"--query-gpu=" + smiQueryFields,
		"--format=csv,noheader,nounits",
	}, extra...)
	out, err := exec.Command(p.smi(), args...).Output()
	if err != nil {
		return nil, fmt.Errorf("nvidia-smi: %w", err)
	}
	return ParseSMIOutput(string(out)), nil
}

// Detect enumerates NVIDIA devices. A missing nvidia-smi binary is an
// error (no NVIDIA stack installed), which the registry logs and skips.
func (p *Nvidia) Detect() ([]gpu.Device, error) {
	return p.query()
}

// Update refreshes dev by querying the single card identified by its
// UUID (recorded in dev.ID during Detect).
func (p *Nvidia) Update(dev *gpu.Device) error {
	var devices []gpu.Device
	var err error
	if dev.ID != "" {
		devices, err = p.query("-i", dev.ID)
	} else {
		devices, err = p.query()
	}
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		return fmt.Errorf("nvidia-smi: device %q not found", dev.ID)
	}
	fresh := devices[0]
	fresh.Index = dev.Index
	*dev = fresh
	return nil
}

// ParseSMIOutput parses `nvidia-smi --query-gpu=... --format=csv,
// noheader,nounits` output, one device per line. Fields reported as
// "[N/A]" or "[Not Supported]" become nil metrics.
func ParseSMIOutput(out string) []gpu.Device {
	var devices []gpu.Device
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) < 11 {
			continue
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		dev := gpu.Device{
			ID:            fields[0],
			Name:          fields[1],
			Vendor:        gpu.VendorNvidia,
			DriverVersion: fields[2],
			Temperature:   smiFloat(fields[3]),
			Utilization:   smiFloat(fields[4]),
			CoreClock:     smiUint(fields[5]),
			MaxCoreClock:  smiUint(fields[6]),
			PowerDraw:     smiFloat(fields[7]),
			PowerLimit:    smiFloat(fields[8]),
			MemoryUsed:    smiUint(fields[9]),
			MemoryTotal:   smiUint(fields[10]),
			Active:        true,
		}
		devices = append(devices, dev)
	}
	return devices
}

func smiAvailable(field string) bool {
	return field != "" && !strings.HasPrefix(field, "[N/A") && !strings.HasPrefix(field, "[Not Supported")
}

func smiFloat(field string) *float64 {
	if !smiAvailable(field) {
		return nil
	}
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return nil
	}
	return &v
}

func smiUint(field string) *uint64 {
	if !smiAvailable(field) {
		return nil
	}
	// nvidia-smi prints some integer fields as floats on older drivers.
	v, err := strconv.ParseFloat(field, 64)
	if err != nil || v < 0 {
		return nil
	}
	u := uint64(v)
	return &u
}
