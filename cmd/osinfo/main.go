// Command osinfo prints the detected operating system identity.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/veldtlab/hwscope/osinfo"
)

func main() {
	jsonOut := flag.Bool("json", false, "print as JSON")
	flag.Parse()

	info := osinfo.Get()

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(info)
		return
	}

	fmt.Println(info)
	if info.Edition != "" {
		fmt.Printf("edition:      %s\n", info.Edition)
	}
	if info.Architecture != "" {
		fmt.Printf("architecture: %s\n", info.Architecture)
	}
	if info.KernelVersion != "" {
		fmt.Printf("kernel:       %s\n", info.KernelVersion)
	}
}
