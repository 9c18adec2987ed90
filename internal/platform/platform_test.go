package platform

import (
	"runtime"
	"testing"
)

func TestParseArch(t *testing.T) {
	tests := []struct {
		in   string
		want Arch
		ok   bool
	}{
		{"amd64", X64, true},
		{"x86_64", X64, true},
		{"aarch64", AArch64, true},
		{"arm64", AArch64, true},
		{"i686", X86, true},
		{"ppc64le", PPC64LE, true},
		{"sparcv9", UnknownArch, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseArch(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Fatalf("ParseArch(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestArchString(t *testing.T) {
	if X64.String() != "x64" || AArch64.String() != "aarch64" {
		t.Fatalf("unexpected catalog names: %s %s", X64, AArch64)
	}
}

func TestExeSuffix(t *testing.T) {
	if Windows.ExeSuffix() != ".exe" {
		t.Fatal("windows should use .exe")
	}
	if Linux.ExeSuffix() != "" || MacOS.ExeSuffix() != "" {
		t.Fatal("posix systems have no exe suffix")
	}
}

func TestCurrentMatchesGOOS(t *testing.T) {
	p := Current()
	if p.OS != ParseOS(runtime.GOOS) {
		t.Fatalf("Current().OS = %v, want %v", p.OS, ParseOS(runtime.GOOS))
	}
}

func TestDetectArch(t *testing.T) {
	tests := []struct {
		goarch, kernel string
		translated     bool
		want           Arch
	}{
		{"amd64", "x86_64", false, X64},
		{"amd64", "x86_64", true, AArch64},
		{"arm64", "arm64", false, AArch64},
		{"386", "x86_64", false, X64},
		{"amd64", "", false, X64},
		{"mips", "", false, UnknownArch},
	}
	for _, tt := range tests {
		if got := detectArch(tt.goarch, tt.kernel, tt.translated); got != tt.want {
			t.Errorf("detectArch(%q, %q, %v) = %v, want %v", tt.goarch, tt.kernel, tt.translated, got, tt.want)
		}
	}
}

func TestIsPOSIX(t *testing.T) {
	if !Linux.IsPOSIX() || !MacOS.IsPOSIX() {
		t.Fatal("linux and macos use posix permissions")
	}
	if Windows.IsPOSIX() || UnknownOS.IsPOSIX() {
		t.Fatal("windows is not posix")
	}
}

func TestPlatformString(t *testing.T) {
	p := Platform{OS: MacOS, Arch: AArch64}
	if got := p.String(); got != "macos/"+AArch64.String() {
		t.Fatalf("String() = %q", got)
	}
}
