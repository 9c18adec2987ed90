package java

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"jdkprov/internal/platform"

	"github.com/Masterminds/semver/v3"
)

// Install describes one located Java installation.
// Values are produced by the Locator and never modified afterwards.
type Install struct {
	LangVersion    Version
	JavaHome       string
	Vendor         string
	ImplName       string
	ImplVersion    string
	RuntimeName    string
	RuntimeVersion string
	Architecture   platform.Arch
	IsAltJVM       bool // OpenJ9 and friends
	HasCompiler    bool
}

// NewInstall builds an Install from probed system properties.
// It fails when java.version cannot be parsed: an install without a comparable
// version is useless to every caller.
func NewInstall(props Properties, home string, hasCompiler bool) (*Install, error) {
	implVersion := props.Get("java.version")
	langVersion, ok := ParseVersion(implVersion)
	if !ok {
		return nil, fmt.Errorf("unable to parse java version %q", implVersion)
	}

	arch, _ := platform.ParseArch(props.Get("os.arch"))
	implName := props.Get("java.vm.name")

	return &Install{
		LangVersion:    langVersion,
		JavaHome:       filepath.Clean(home),
		Vendor:         props.Get("java.vendor"),
		ImplName:       implName,
		ImplVersion:    implVersion,
		RuntimeName:    props.Get("java.runtime.name"),
		RuntimeVersion: props.Get("java.runtime.version"),
		Architecture:   arch,
		IsAltJVM:       strings.Contains(implName, "J9"),
		HasCompiler:    hasCompiler,
	}, nil
}

// +12 (9+) or -b10 (8 and older)
var buildNumberRe = regexp.MustCompile(`(?:\+|-b)(\d+)`)

// Build returns the build number from the runtime version, if any
func (i *Install) Build() (int, bool) {
	m := buildNumberRe.FindStringSubmatch(i.RuntimeVersion)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Semver returns the install's version in the form release catalogs use,
// e.g. 17.0.1+12 or 8.0.292+10.
func (i *Install) Semver() *semver.Version {
	metadata := ""
	if build, ok := i.Build(); ok {
		metadata = strconv.Itoa(build)
	}
	return semver.New(uint64(i.LangVersion.Major), uint64(i.LangVersion.Minor), uint64(i.LangVersion.Security), "", metadata)
}

// MatchesSemver reports whether the install is exactly the given catalog semver,
// build metadata included.
func (i *Install) MatchesSemver(s string) bool {
	want, err := semver.NewVersion(s)
	if err != nil {
		return false
	}
	got := i.Semver()
	return got.Equal(want) && got.Metadata() == want.Metadata()
}

func (i *Install) String() string {
	return fmt.Sprintf("%s %s (%s, %s) at %s", i.ImplName, i.ImplVersion, i.Vendor, i.Architecture, i.JavaHome)
}
