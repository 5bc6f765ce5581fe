package osinfo

import (
	"encoding/json"
	"testing"
)

func TestParseSwVers(t *testing.T) {
	out := "ProductName:\tmacOS\nProductVersion:\t14.4.1\nBuildVersion:\t23E224\n"
	version, ok := parseSwVers(out)
	if !ok {
		t.Fatal("expected ProductVersion to parse")
	}
	if version != "14.4.1" {
		t.Errorf("unexpected version %q", version)
	}
}

func TestParseSwVersMissing(t *testing.T) {
	if _, ok := parseSwVers("ProductName:\tmacOS\n"); ok {
		t.Error("expected parse failure without ProductVersion")
	}
}

func TestParseOSCIM(t *testing.T) {
	out := `{
  "Caption": "Microsoft Windows 11 Pro",
  "Version": "10.0.22631",
  "OSArchitecture": "64-bit"
}`
	info, err := parseOSCIM([]byte(out))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Type != TypeWindows {
		t.Errorf("unexpected type %v", info.Type)
	}
	if info.Version != "10.0.22631" {
		t.Errorf("unexpected version %q", info.Version)
	}
	if info.Edition != "Microsoft Windows 11 Pro" {
		t.Errorf("unexpected edition %q", info.Edition)
	}
	if info.BitDepth != Depth64 {
		t.Errorf("unexpected bit depth %v", info.BitDepth)
	}
}

func TestGetNeverZeroOnSupportedPlatforms(t *testing.T) {
	info := Get()
	if info.BitDepth == DepthUnknown {
		t.Error("bit depth should fall back to the compiled word size")
	}
	if info.Architecture == "" {
		t.Error("architecture should fall back to GOARCH")
	}
}

func TestInfoString(t *testing.T) {
	info := Info{Type: TypeUbuntu, Version: "22.04", Codename: "jammy", BitDepth: Depth64}
	want := "Ubuntu 22.04 (jammy) 64-bit"
	if got := info.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestTypeJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(TypeRockyLinux)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"Rocky Linux"` {
		t.Errorf("unexpected JSON %s", data)
	}
	var typ Type
	if err := json.Unmarshal(data, &typ); err != nil {
		t.Fatal(err)
	}
	if typ != TypeRockyLinux {
		t.Errorf("round trip produced %v", typ)
	}
}
