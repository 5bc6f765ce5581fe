package osinfo

import (
	"encoding/json"
	"fmt"
)

// Type identifies an operating system or Linux distribution.
type Type int

const (
	TypeUnknown Type = iota
	TypeAlmaLinux
	TypeAlpine
	TypeAmazon
	TypeArch
	TypeCentOS
	TypeDebian
	TypeFedora
	TypeGentoo
	TypeKali
	TypeLinux
	TypeMacos
	TypeManjaro
	TypeMint
	TypeNixOS
	TypeOpenSUSE
	TypeOracleLinux
	TypePop
	TypeRaspbian
	TypeRedHatEnterprise
	TypeRockyLinux
	TypeSUSE
	TypeUbuntu
	TypeVoid
	TypeWindows
)

var typeNames = map[Type]string{
	TypeUnknown:          "Unknown",
	TypeAlmaLinux:        "AlmaLinux",
	TypeAlpine:           "Alpine",
	TypeAmazon:           "Amazon Linux",
	TypeArch:             "Arch Linux",
	TypeCentOS:           "CentOS",
	TypeDebian:           "Debian",
	TypeFedora:           "Fedora",
	TypeGentoo:           "Gentoo",
	TypeKali:             "Kali Linux",
	TypeLinux:            "Linux",
	TypeMacos:            "macOS",
	TypeManjaro:          "Manjaro",
	TypeMint:             "Linux Mint",
	TypeNixOS:            "NixOS",
	TypeOpenSUSE:         "openSUSE",
	TypeOracleLinux:      "Oracle Linux",
	TypePop:              "Pop!_OS",
	TypeRaspbian:         "Raspbian",
	TypeRedHatEnterprise: "Red Hat Enterprise Linux",
	TypeRockyLinux:       "Rocky Linux",
	TypeSUSE:             "SUSE",
	TypeUbuntu:           "Ubuntu",
	TypeVoid:             "Void Linux",
	TypeWindows:          "Windows",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "Unknown"
}

// IsLinux reports whether t is Linux or one of its distributions.
func (t Type) IsLinux() bool {
	switch t {
	case TypeUnknown, TypeMacos, TypeWindows:
		return false
	}
	return true
}

func (t Type) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Type) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("unmarshaling OS type: %w", err)
	}
	for typ, n := range typeNames {
		if n == name {
			*t = typ
			return nil
		}
	}
	*t = TypeUnknown
	return nil
}
