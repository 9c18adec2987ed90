package platform

import (
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v3/host"
)

// OS is one of the operating systems jdkprov knows how to lay out and provision for
type OS int

const (
	UnknownOS OS = iota
	Windows
	Linux
	MacOS
)

func (o OS) String() string {
	switch o {
	case Windows:
		return "windows"
	case Linux:
		return "linux"
	case MacOS:
		return "macos"
	default:
		return "unknown"
	}
}

// ExeSuffix returns the native executable suffix for the OS
func (o OS) ExeSuffix() string {
	switch o {
	case Windows:
		return ".exe"
	case Linux, MacOS:
		return ""
	default:
		return ""
	}
}

// IsPOSIX reports whether the OS uses POSIX file permissions
func (o OS) IsPOSIX() bool {
	switch o {
	case Linux, MacOS:
		return true
	case Windows:
		return false
	default:
		return false
	}
}

// Arch is a CPU architecture
type Arch int

const (
	UnknownArch Arch = iota
	X86
	X64
	AArch64
	ARM
	PPC64LE
	S390X
	RISCV64
)

// String returns the lower-case name used by release catalogs (x64, aarch64, ...)
func (a Arch) String() string {
	switch a {
	case X86:
		return "x86"
	case X64:
		return "x64"
	case AArch64:
		return "aarch64"
	case ARM:
		return "arm"
	case PPC64LE:
		return "ppc64le"
	case S390X:
		return "s390x"
	case RISCV64:
		return "riscv64"
	default:
		return "unknown"
	}
}

// ParseArch maps Go, uname and Java os.arch spellings to an Arch
func ParseArch(s string) (Arch, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "386", "x86", "i386", "i486", "i586", "i686", "x32":
		return X86, true
	case "amd64", "x86_64", "x64", "x86-64":
		return X64, true
	case "arm64", "aarch64":
		return AArch64, true
	case "arm", "armv7l", "armv7", "aarch32":
		return ARM, true
	case "ppc64le":
		return PPC64LE, true
	case "s390x":
		return S390X, true
	case "riscv64":
		return RISCV64, true
	default:
		return UnknownArch, false
	}
}

// ParseOS maps a GOOS value to an OS
func ParseOS(goos string) OS {
	switch goos {
	case "windows":
		return Windows
	case "linux":
		return Linux
	case "darwin":
		return MacOS
	default:
		return UnknownOS
	}
}

// Platform pairs an OS with an architecture
type Platform struct {
	OS   OS
	Arch Arch
}

func (p Platform) String() string {
	return p.OS.String() + "/" + p.Arch.String()
}

// Current detects the host platform.
// The kernel architecture wins over runtime.GOARCH, and an x64 process
// translated by Rosetta on Apple silicon reports AArch64.
func Current() Platform {
	kernelArch, err := host.KernelArch()
	if err != nil {
		kernelArch = ""
	}
	return Platform{
		OS:   ParseOS(runtime.GOOS),
		Arch: detectArch(runtime.GOARCH, kernelArch, rosettaTranslated()),
	}
}

// detectArch picks the native architecture. uname reports x86_64 for a
// translated process, so translation is checked separately.
func detectArch(goarch, kernelArch string, translated bool) Arch {
	arch, ok := ParseArch(goarch)
	if ka, found := ParseArch(kernelArch); found {
		arch, ok = ka, true
	}
	if !ok {
		return UnknownArch
	}
	if translated && arch == X64 {
		return AArch64
	}
	return arch
}
