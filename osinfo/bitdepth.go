package osinfo

import (
	"encoding/json"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
)

// BitDepth is the word size of the running operating system.
type BitDepth int

const (
	DepthUnknown BitDepth = 0
	Depth32      BitDepth = 32
	Depth64      BitDepth = 64
)

func (b BitDepth) String() string {
	switch b {
	case Depth32:
		return "32-bit"
	case Depth64:
		return "64-bit"
	}
	return "Unknown"
}

func (b BitDepth) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// bitDepth asks getconf on Unix-likes; elsewhere, and when getconf is
// unavailable, the compiled word size stands in. A 32-bit binary on a
// 64-bit kernel would report 32 through the fallback, which is why
// getconf is tried first.
func bitDepth() BitDepth {
	switch runtime.GOOS {
	case "linux", "darwin", "freebsd", "dragonfly":
		if out, err := exec.Command("getconf", "LONG_BIT").Output(); err == nil {
			switch strings.TrimSpace(string(out)) {
			case "32":
				return Depth32
			case "64":
				return Depth64
			}
		}
	}
	if strconv.IntSize == 64 {
		return Depth64
	}
	return Depth32
}

// architecture returns the machine hardware name, preferring uname -m
// over the compile-time GOARCH.
func architecture() string {
	if runtime.GOOS != "windows" {
		if out, err := exec.Command("uname", "-m").Output(); err == nil {
			if arch := strings.TrimSpace(string(out)); arch != "" {
				return arch
			}
		}
	}
	return runtime.GOARCH
}

// kernelVersion returns the kernel release from uname -r, or "" on
// platforms without uname.
func kernelVersion() string {
	if runtime.GOOS == "windows" {
		return ""
	}
	out, err := exec.Command("uname", "-r").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
