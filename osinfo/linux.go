package osinfo

import (
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
)

// releaseFile describes one distribution release file and how to read
// an OS type and version out of it. The table is ordered: os-release
// comes first because nearly every modern distribution ships it, the
// distribution-specific files catch older systems.
type releaseFile struct {
	path     string
	typeOf   func(content string) (Type, bool)
	version  func(content string) (string, bool)
	codename func(content string) (string, bool)
}

var releaseFiles = []releaseFile{
	{
		path: "etc/os-release",
		typeOf: func(content string) (Type, bool) {
			id, ok := keyValue(content, "ID")
			if !ok {
				return TypeUnknown, false
			}
			typ, ok := osReleaseIDs[id]
			return typ, ok
		},
		version: func(content string) (string, bool) {
			return keyValue(content, "VERSION_ID")
		},
		codename: func(content string) (string, bool) {
			return keyValue(content, "VERSION_CODENAME")
		},
	},
	{
		path:   "etc/centos-release",
		typeOf: func(string) (Type, bool) { return TypeCentOS, true },
		version: func(content string) (string, bool) {
			return prefixedVersion(content, "release")
		},
	},
	{
		path:   "etc/fedora-release",
		typeOf: func(string) (Type, bool) { return TypeFedora, true },
		version: func(content string) (string, bool) {
			return prefixedVersion(content, "release")
		},
	},
	{
		path:   "etc/alpine-release",
		typeOf: func(string) (Type, bool) { return TypeAlpine, true },
		version: func(content string) (string, bool) {
			return trimmedValue(content), true
		},
	},
	{
		path:   "etc/redhat-release",
		typeOf: func(string) (Type, bool) { return TypeRedHatEnterprise, true },
		version: func(content string) (string, bool) {
			return prefixedVersion(content, "release")
		},
	},
}

// osReleaseIDs maps the ID field of /etc/os-release to a Type.
var osReleaseIDs = map[string]Type{
	"almalinux":           TypeAlmaLinux,
	"alpine":              TypeAlpine,
	"amzn":                TypeAmazon,
	"arch":                TypeArch,
	"archarm":             TypeArch,
	"centos":              TypeCentOS,
	"debian":              TypeDebian,
	"fedora":              TypeFedora,
	"gentoo":              TypeGentoo,
	"kali":                TypeKali,
	"linuxmint":           TypeMint,
	"manjaro":             TypeManjaro,
	"nixos":               TypeNixOS,
	"ol":                  TypeOracleLinux,
	"opensuse":            TypeOpenSUSE,
	"opensuse-leap":       TypeOpenSUSE,
	"opensuse-tumbleweed": TypeOpenSUSE,
	"pop":                 TypePop,
	"raspbian":            TypeRaspbian,
	"rhel":                TypeRedHatEnterprise,
	"rocky":               TypeRockyLinux,
	"sled":                TypeSUSE,
	"sles":                TypeSUSE,
	"ubuntu":              TypeUbuntu,
	"void":                TypeVoid,
}

// linuxInfo walks the release file table under root, falling back to
// lsb_release and finally to a bare TypeLinux. root is "/" in
// production and a fixture directory in tests.
func linuxInfo(root string) Info {
	if info, ok := fileReleaseInfo(root); ok {
		return info
	}
	if info, ok := lsbReleaseInfo(); ok {
		return info
	}
	return Info{Type: TypeLinux}
}

func fileReleaseInfo(root string) (Info, bool) {
	for _, rf := range releaseFiles {
		path := filepath.Join(root, rf.path)
		content, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				slog.Warn("unable to read release file", "path", path, "error", err)
			}
			continue
		}
		typ, ok := rf.typeOf(string(content))
		if !ok {
			continue
		}
		info := Info{Type: typ}
		if version, ok := rf.version(string(content)); ok {
			info.Version = version
		}
		if rf.codename != nil {
			if codename, ok := rf.codename(string(content)); ok {
				info.Codename = codename
			}
		}
		return info, true
	}
	return Info{}, false
}

func lsbReleaseInfo() (Info, bool) {
	out, err := exec.Command("lsb_release", "-a").Output()
	if err != nil {
		return Info{}, false
	}
	return parseLSBRelease(string(out))
}

func parseLSBRelease(out string) (Info, bool) {
	distributor, ok := prefixedWord(out, "Distributor ID:")
	if !ok {
		return Info{}, false
	}
	info := Info{Type: lsbDistributorType(distributor)}
	if version, ok := prefixedVersion(out, "Release:"); ok {
		info.Version = version
	}
	if codename, ok := prefixedWord(out, "Codename:"); ok && codename != "" {
		info.Codename = codename
	}
	return info, true
}

func lsbDistributorType(distributor string) Type {
	switch distributor {
	case "Ubuntu":
		return TypeUbuntu
	case "Debian":
		return TypeDebian
	case "Arch":
		return TypeArch
	case "CentOS":
		return TypeCentOS
	case "Fedora":
		return TypeFedora
	case "LinuxMint":
		return TypeMint
	case "Pop":
		return TypePop
	default:
		return TypeLinux
	}
}
