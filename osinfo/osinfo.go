// Package osinfo identifies the operating system the process is
// running on: distribution or product, version, codename, bit depth
// and architecture. Detection shells out to the platform's own tools
// (/etc/os-release and lsb_release on Linux, sw_vers on macOS, CIM on
// Windows) so it works without cgo.
package osinfo

import (
	"fmt"
	"runtime"
)

// Info describes a detected operating system. Fields that could not
// be determined are left at their zero value.
type Info struct {
	Type          Type     `json:"type"`
	Version       string   `json:"version,omitempty"`
	Edition       string   `json:"edition,omitempty"`
	Codename      string   `json:"codename,omitempty"`
	BitDepth      BitDepth `json:"bitDepth"`
	Architecture  string   `json:"architecture,omitempty"`
	KernelVersion string   `json:"kernelVersion,omitempty"`
}

// Unknown returns an Info with every field unset.
func Unknown() Info {
	return Info{Type: TypeUnknown}
}

func (i Info) String() string {
	s := i.Type.String()
	if i.Version != "" {
		s += " " + i.Version
	}
	if i.Codename != "" {
		s += fmt.Sprintf(" (%s)", i.Codename)
	}
	if i.BitDepth != DepthUnknown {
		s += " " + i.BitDepth.String()
	}
	return s
}

// Get detects the current operating system. It never fails: platforms
// or distributions it cannot identify come back as TypeUnknown or
// TypeLinux with whatever fields could be filled in.
func Get() Info {
	var info Info
	switch runtime.GOOS {
	case "linux":
		info = linuxInfo("/")
	case "darwin":
		info = darwinInfo()
	case "windows":
		info = windowsInfo()
	default:
		info = Unknown()
	}
	if info.BitDepth == DepthUnknown {
		info.BitDepth = bitDepth()
	}
	if info.Architecture == "" {
		info.Architecture = architecture()
	}
	if info.KernelVersion == "" {
		info.KernelVersion = kernelVersion()
	}
	return info
}
