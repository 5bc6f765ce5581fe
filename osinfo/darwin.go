package osinfo

import (
	"log/slog"
	"os/exec"
)

func darwinInfo() Info {
	info := Info{Type: TypeMacos}
	out, err := exec.Command("sw_vers").Output()
	if err != nil {
		slog.Warn("sw_vers failed", "error", err)
		return info
	}
	if version, ok := parseSwVers(string(out)); ok {
		info.Version = version
	}
	return info
}

// parseSwVers extracts the ProductVersion line from sw_vers output.
func parseSwVers(out string) (string, bool) {
	return prefixedVersion(out, "ProductVersion:")
}
