package gpu

import "testing"

func TestVendorFromPCIID(t *testing.T) {
	tests := []struct {
		id   string
		want Vendor
	}{
		{"0x10de", VendorNvidia},
		{"0x1002", VendorAMD},
		{"0x8086", VendorIntel},
		{"0x106b", VendorApple},
		{"0X10DE", VendorNvidia},
		{" 0x1002\n", VendorAMD},
		{"0xdead", VendorUnknown},
		{"", VendorUnknown},
	}
	for _, tt := range tests {
		if got := VendorFromPCIID(tt.id); got != tt.want {
			t.Errorf("VendorFromPCIID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestVendorFromName(t *testing.T) {
	tests := []struct {
		name string
		want Vendor
	}{
		{"NVIDIA GeForce RTX 4090", VendorNvidia},
		{"AMD Radeon RX 7900 XTX", VendorAMD},
		{"Intel(R) UHD Graphics 770", VendorIntel},
		{"Apple M3 Max", VendorApple},
		{"Matrox G200", VendorUnknown},
	}
	for _, tt := range tests {
		if got := VendorFromName(tt.name); got != tt.want {
			t.Errorf("VendorFromName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestVendorJSONRoundTrip(t *testing.T) {
	v := VendorNvidia
	data, err := v.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"NVIDIA"` {
		t.Errorf("expected quoted display name, got %s", data)
	}

	var back Vendor
	if err := back.UnmarshalJSON(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != VendorNvidia {
		t.Errorf("expected round trip to NVIDIA, got %v", back)
	}
}
