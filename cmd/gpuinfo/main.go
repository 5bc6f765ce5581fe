// Command gpuinfo prints the GPUs visible on this machine, once or on
// a watch interval.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/veldtlab/hwscope/gpu"
	"github.com/veldtlab/hwscope/gpu/providers"
)

func main() {
	jsonOut := flag.Bool("json", false, "print devices as JSON")
	watch := flag.Duration("watch", 0, "refresh and reprint on this interval (e.g. 1s)")
	flag.Parse()

	manager := gpu.NewManager(providers.DefaultRegistry())
	if manager.Count() == 0 {
		fmt.Fprintln(os.Stderr, "no GPUs detected")
		os.Exit(1)
	}

	print := func() {
		devices := make([]gpu.Device, 0, manager.Count())
		for _, dev := range manager.Devices() {
			fresh, err := manager.DeviceCached(dev.Index)
			if err != nil {
				fresh = dev
			}
			devices = append(devices, fresh)
		}

		if *jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			enc.Encode(devices)
			return
		}
		for _, dev := range devices {
			printDevice(dev)
		}
	}

	print()
	if *watch <= 0 {
		return
	}

	ticker := time.NewTicker(*watch)
	defer ticker.Stop()
	for range ticker.C {
		fmt.Println("---")
		print()
	}
}

func printDevice(dev gpu.Device) {
	fmt.Printf("[%d] %s (%s)\n", dev.Index, dev.Name, dev.Vendor)
	fmt.Printf("    %s\n", dev.FormatTemperature())
	fmt.Printf("    %s\n", dev.FormatUtilization())
	fmt.Printf("    %s\n", dev.FormatClock())
	fmt.Printf("    %s\n", dev.FormatPower())
	fmt.Printf("    %s\n", dev.FormatMemory())
	if dev.DriverVersion != "" {
		fmt.Printf("    Driver: %s\n", dev.DriverVersion)
	}
}
