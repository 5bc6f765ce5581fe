package gpu

import (
	"encoding/json"
	"strings"
)

// Vendor identifies a GPU hardware vendor.
type Vendor int

const (
	VendorUnknown Vendor = iota
	VendorNvidia
	VendorAMD
	VendorIntel
	VendorApple
)

func (v Vendor) String() string {
	switch v {
	case VendorNvidia:
		return "NVIDIA"
	case VendorAMD:
		return "AMD"
	case VendorIntel:
		return "Intel"
	case VendorApple:
		return "Apple"
	default:
		return "Unknown"
	}
}

// MarshalJSON renders the vendor as its display name.
func (v Vendor) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// UnmarshalJSON accepts the display names produced by MarshalJSON,
// case-insensitively. Unrecognized names map to VendorUnknown.
func (v *Vendor) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*v = VendorFromName(s)
	return nil
}

// VendorFromPCIID maps a PCI vendor ID (as read from sysfs, e.g.
// "0x10de") to a Vendor.
func VendorFromPCIID(id string) Vendor {
	switch strings.ToLower(strings.TrimSpace(id)) {
	case "0x10de":
		return VendorNvidia
	case "0x1002", "0x1022":
		return VendorAMD
	case "0x8086":
		return VendorIntel
	case "0x106b":
		return VendorApple
	default:
		return VendorUnknown
	}
}

// VendorFromName guesses the vendor from free-form device or vendor
// text, e.g. a Windows adapter name or a system_profiler vendor field.
func VendorFromName(name string) Vendor {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "nvidia") || strings.Contains(n, "geforce") || strings.Contains(n, "quadro"):
		return VendorNvidia
	case strings.Contains(n, "amd") || strings.Contains(n, "radeon") || strings.Contains(n, "ati "):
		return VendorAMD
	case strings.Contains(n, "intel"):
		return VendorIntel
	case strings.Contains(n, "apple"):
		return VendorApple
	default:
		return VendorUnknown
	}
}
