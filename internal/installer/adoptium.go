package installer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"jdkprov/internal/java"
	"jdkprov/internal/logging"
	"jdkprov/internal/platform"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
)

// DefaultAdoptiumURL is the public Adoptium API
const DefaultAdoptiumURL = "https://api.adoptium.net"

// AdoptiumProvisioner provisions Eclipse Temurin builds from the Adoptium API
type AdoptiumProvisioner struct {
	BaseURL    string
	Downloader Downloader
	Platform   platform.Platform
	logger     *log.Logger
}

// NewAdoptiumProvisioner creates a provisioner for the given host platform
func NewAdoptiumProvisioner(dl Downloader, plat platform.Platform, logger *log.Logger) *AdoptiumProvisioner {
	return &AdoptiumProvisioner{
		BaseURL:    DefaultAdoptiumURL,
		Downloader: dl,
		Platform:   plat,
		logger:     logging.Component(logger, "adoptium"),
	}
}

// Name returns the catalog name
func (a *AdoptiumProvisioner) Name() string {
	return "Eclipse Adoptium"
}

// adoptiumRelease is one element of the feature_releases response
type adoptiumRelease struct {
	Binaries []struct {
		Package struct {
			Checksum string `json:"checksum"`
			Link     string `json:"link"`
			Name     string `json:"name"`
			Size     int64  `json:"size"`
		} `json:"package"`
		ImageType    string `json:"image_type"`
		Architecture string `json:"architecture"`
		OS           string `json:"os"`
	} `json:"binaries"`
	ReleaseName string `json:"release_name"`
	VersionData struct {
		Semver string `json:"semver"`
	} `json:"version_data"`
}

func (r adoptiumRelease) toRelease() Release {
	release := Release{
		Semver:      r.VersionData.Semver,
		ReleaseName: r.ReleaseName,
		Binaries:    make([]Binary, 0, len(r.Binaries)),
	}
	for _, b := range r.Binaries {
		release.Binaries = append(release.Binaries, Binary{
			Link:         b.Package.Link,
			Name:         b.Package.Name,
			Size:         b.Package.Size,
			Checksum:     b.Package.Checksum,
			ImageType:    b.ImageType,
			Architecture: b.Architecture,
			OS:           b.OS,
		})
	}
	return release
}

// adoptiumOS maps an OS to the Adoptium os parameter
func adoptiumOS(system platform.OS) (string, error) {
	switch system {
	case platform.Windows:
		return "windows", nil
	case platform.Linux:
		return "linux", nil
	case platform.MacOS:
		return "mac", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedOS, system)
	}
}

func (a *AdoptiumProvisioner) releasesURL(version java.Version, imageType ImageType, arch platform.Arch) (string, error) {
	osName, err := adoptiumOS(a.Platform.OS)
	if err != nil {
		return "", err
	}
	if imageType == "" {
		imageType = ImageJDK
	}

	query := url.Values{}
	query.Set("project", "jdk")
	query.Set("image_type", string(imageType))
	query.Set("vendor", "eclipse")
	query.Set("jvm_impl", "hotspot")
	query.Set("heap_size", "normal")
	query.Set("architecture", arch.String())
	query.Set("os", osName)

	base := strings.TrimRight(a.BaseURL, "/")
	if base == "" {
		base = DefaultAdoptiumURL
	}
	return fmt.Sprintf("%s/v3/assets/feature_releases/%s/ga?%s", base, version.Short(), query.Encode()), nil
}

// ResolveReleases queries the catalog for GA releases of the version's feature line.
// On Apple silicon a 404 is retried once against x64 builds.
func (a *AdoptiumProvisioner) ResolveReleases(ctx context.Context, version java.Version, imageType ImageType, ignoreMacAArch64 bool) ([]Release, error) {
	arch := a.Platform.Arch
	macAArch64 := a.Platform.OS == platform.MacOS && arch == platform.AArch64
	if macAArch64 && ignoreMacAArch64 {
		a.logger.Info("forcing x64 build for macOS aarch64")
		arch = platform.X64
	}

	releasesURL, err := a.releasesURL(version, imageType, arch)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("querying releases", "platform", a.Platform.String(), "url", releasesURL)

	var body bytes.Buffer
	if _, err := a.Downloader.Download(ctx, releasesURL, &body, nil); err != nil {
		var statusErr *HTTPStatusError
		if macAArch64 && arch == platform.AArch64 && errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			a.logger.Warn("no aarch64 macOS build, trying x64", "version", version.Short())
			return a.ResolveReleases(ctx, version, imageType, true)
		}
		return nil, fmt.Errorf("failed to query Adoptium releases: %w", err)
	}

	var raw []adoptiumRelease
	if err := json.Unmarshal(body.Bytes(), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse Adoptium releases: %w", err)
	}

	releases := make([]Release, 0, len(raw))
	for _, r := range raw {
		releases = append(releases, r.toRelease())
	}
	return releases, nil
}

// selectRelease picks the release matching semver, or the newest when semver is empty
func selectRelease(releases []Release, semver string, version java.Version) (Release, error) {
	if len(releases) == 0 {
		return Release{}, fmt.Errorf("%w for java %s", ErrNoReleases, version.Short())
	}
	if semver == "" {
		return releases[0], nil
	}
	for _, r := range releases {
		if r.Semver == semver {
			return r, nil
		}
	}
	return Release{}, fmt.Errorf("%w: no release %s for java %s", ErrNoReleases, semver, version.Short())
}

// Provision resolves, downloads, verifies and extracts a release into baseDir
func (a *AdoptiumProvisioner) Provision(ctx context.Context, baseDir string, req Request) (Result, error) {
	a.logger.Info("provisioning Adoptium build", "version", req.Version.Short(), "image", req.ImageType)

	releases, err := a.ResolveReleases(ctx, req.Version, req.ImageType, req.IgnoreMacAArch64)
	if err != nil {
		return Result{}, err
	}

	release, err := selectRelease(releases, req.Semver, req.Version)
	if err != nil {
		return Result{}, err
	}
	if len(release.Binaries) == 0 {
		return Result{}, fmt.Errorf("%w: %s", ErrNoBinaries, release.Semver)
	}
	if len(release.Binaries) > 1 {
		a.logger.Warn("release has more than one binary, using the first", "release", release.Semver, "count", len(release.Binaries))
	}
	pkg := release.Binaries[0]

	a.logger.Info("found release", "release", release.Semver, "link", pkg.Link, "size", humanize.IBytes(uint64(max(pkg.Size, 0))))

	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("failed to create install directory: %w", err)
	}

	archive, err := a.download(ctx, baseDir, pkg, req.Listener)
	if archive != "" {
		defer os.Remove(archive)
	}
	if err != nil {
		return Result{}, err
	}

	installDir, err := NewExtractor(a.Platform.OS, a.logger).Extract(baseDir, archive)
	if err != nil {
		return Result{}, fmt.Errorf("failed to extract %s: %w", pkg.Name, err)
	}

	return Result{Semver: release.Semver, InstallDir: installDir}, nil
}

// download streams the package into a temp file in baseDir, verifying it on the way.
// The temp file path is returned even on failure so the caller can remove it.
func (a *AdoptiumProvisioner) download(ctx context.Context, baseDir string, pkg Binary, listener ProgressListener) (string, error) {
	file, err := os.CreateTemp(baseDir, "download-*-"+filepath.Base(pkg.Name))
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	path := file.Name()

	digest := newDigestWriter()
	_, err = a.Downloader.Download(ctx, pkg.Link, io.MultiWriter(file, digest), listener)
	closeErr := file.Close()
	if err != nil {
		return path, fmt.Errorf("failed to download %s: %w", pkg.Name, err)
	}
	if closeErr != nil {
		return path, fmt.Errorf("failed to write %s: %w", pkg.Name, closeErr)
	}

	if err := digest.Digest().Verify(pkg.Size, pkg.Checksum); err != nil {
		return path, fmt.Errorf("invalid Adoptium download %s: %w", pkg.Name, err)
	}
	return path, nil
}
