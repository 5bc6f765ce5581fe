package providers

import (
	"runtime"

	"github.com/veldtlab/hwscope/gpu"
)

// DefaultRegistry builds a provider registry appropriate for the
// current platform. Providers for hardware that is absent simply fail
// detection and are skipped, so registering a superset is harmless.
func DefaultRegistry() *gpu.Registry {
	reg := gpu.NewRegistry()
	switch runtime.GOOS {
	case "linux":
		reg.Register(NewNvidia())
		reg.Register(NewAMD())
		reg.Register(NewIntel())
	case "darwin":
		reg.Register(NewApple())
	case "windows":
		reg.Register(NewNvidia())
		reg.RegisterFallback(NewWindowsCIM())
	default:
		// BSDs and friends: nvidia-smi is the only tool with any
		// chance of being present.
		reg.Register(NewNvidia())
	}
	return reg
}
