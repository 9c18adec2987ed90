package installer

import (
	"context"
	"errors"

	"jdkprov/internal/java"
)

var (
	// ErrUnsupportedOS is returned before any network access for hosts a catalog cannot serve
	ErrUnsupportedOS = errors.New("unsupported operating system")
	// ErrNoReleases means the catalog returned an empty release list
	ErrNoReleases = errors.New("no releases available")
	// ErrNoBinaries means the chosen release carries no downloadable binary
	ErrNoBinaries = errors.New("release has no binaries")
)

// ImageType selects a full JDK or a runtime-only JRE
type ImageType string

const (
	ImageJDK ImageType = "jdk"
	ImageJRE ImageType = "jre"
)

// Provisioner fetches a Java distribution into a base directory.
// Alternate release catalogs implement this interface.
type Provisioner interface {
	Name() string
	Provision(ctx context.Context, baseDir string, req Request) (Result, error)
}

// Request describes the distribution to provision
type Request struct {
	Version          java.Version
	Semver           string // exact catalog semver, optional
	ImageType        ImageType
	IgnoreMacAArch64 bool             // use x64 builds on Apple silicon
	Listener         ProgressListener // may be nil
}

// Result is the outcome of a successful provisioning
type Result struct {
	Semver     string // catalog semver, e.g. "17.0.1+12"
	InstallDir string // extracted installation directory (not yet the java home)
}

// Release is one release returned by a catalog
type Release struct {
	Semver      string
	ReleaseName string
	Binaries    []Binary
}

// Binary is one downloadable package of a release
type Binary struct {
	Link         string
	Name         string
	Size         int64
	Checksum     string // SHA-256, hex
	ImageType    string
	Architecture string
	OS           string
}
