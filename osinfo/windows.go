package osinfo

import (
	"encoding/json"
	"log/slog"
	"os/exec"
)

const osCIMQuery = `Get-CimInstance Win32_OperatingSystem | ` +
	`Select-Object Caption,Version,OSArchitecture | ConvertTo-Json`

type cimOperatingSystem struct {
	Caption        string `json:"Caption"`
	Version        string `json:"Version"`
	OSArchitecture string `json:"OSArchitecture"`
}

func windowsInfo() Info {
	info := Info{Type: TypeWindows}
	out, err := exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", osCIMQuery).Output()
	if err != nil {
		slog.Warn("CIM OS query failed", "error", err)
		return info
	}
	parsed, err := parseOSCIM(out)
	if err != nil {
		slog.Warn("unable to parse CIM OS output", "error", err)
		return info
	}
	return parsed
}

func parseOSCIM(out []byte) (Info, error) {
	var os cimOperatingSystem
	if err := json.Unmarshal(out, &os); err != nil {
		return Info{}, err
	}
	info := Info{
		Type:    TypeWindows,
		Version: os.Version,
		Edition: os.Caption,
	}
	switch os.OSArchitecture {
	case "64-bit", "64 bits":
		info.BitDepth = Depth64
	case "32-bit", "32 bits":
		info.BitDepth = Depth32
	}
	return info, nil
}
