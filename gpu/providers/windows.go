package providers

import (
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/veldtlab/hwscope/gpu"
)

const cimQuery = `Get-CimInstance Win32_VideoController | ` +
	`Select-Object Name,AdapterRAM,DriverVersion,PNPDeviceID,Availability | ConvertTo-Json`

// WindowsCIM enumerates video controllers through WMI/CIM via
// PowerShell. It reports identity, driver and memory for any vendor,
// but no thermals or utilization; on machines with an NVIDIA stack the
// dedicated nvidia-smi provider supplies those, so this provider is
// registered as the registry fallback.
type WindowsCIM struct{}

// NewWindowsCIM returns a WMI/CIM backed provider.
func NewWindowsCIM() *WindowsCIM {
	return &WindowsCIM{}
}

func (p *WindowsCIM) Vendor() gpu.Vendor { return gpu.VendorUnknown }

func (p *WindowsCIM) Detect() ([]gpu.Device, error) {
	out, err := exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", cimQuery).Output()
	if err != nil {
		return nil, fmt.Errorf("powershell CIM query: %w", err)
	}
	return ParseCIMOutput(out)
}

func (p *WindowsCIM) Update(dev *gpu.Device) error {
	devices, err := p.Detect()
	if err != nil {
		return err
	}
	for _, fresh := range devices {
		if fresh.ID == dev.ID {
			fresh.Index = dev.Index
			*dev = fresh
			return nil
		}
	}
	return fmt.Errorf("CIM: device %q no longer reported", dev.Name)
}

type cimController struct {
	Name          string `json:"Name"`
	AdapterRAM    uint64 `json:"AdapterRAM"`
	DriverVersion string `json:"DriverVersion"`
	PNPDeviceID   string `json:"PNPDeviceID"`
	Availability  int    `json:"Availability"`
}

// ParseCIMOutput parses ConvertTo-Json output, which is a bare object
// for a single controller and an array for several.
func ParseCIMOutput(out []byte) ([]gpu.Device, error) {
	var controllers []cimController
	if err := json.Unmarshal(out, &controllers); err != nil {
		var single cimController
		if err := json.Unmarshal(out, &single); err != nil {
			return nil, fmt.Errorf("parsing CIM output: %w", err)
		}
		controllers = []cimController{single}
	}
	var devices []gpu.Device
	for _, c := range controllers {
		dev := gpu.Device{
			ID:            c.PNPDeviceID,
			Name:          c.Name,
			Vendor:        gpu.VendorFromName(c.Name),
			DriverVersion: c.DriverVersion,
			// Win32 availability code 3 is "running at full power".
			Active: c.Availability == 3,
		}
		if c.AdapterRAM > 0 {
			dev.MemoryTotal = gpu.Uint64(c.AdapterRAM / (1024 * 1024))
		}
		devices = append(devices, dev)
	}
	return devices, nil
}
