package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"jdkprov/internal/java"
	"jdkprov/internal/logging"

	"github.com/charmbracelet/log"
)

// Manager owns a directory of provisioned installations. Every child directory
// of the root is one extracted archive; there is no index file.
type Manager struct {
	root             string
	provisioner      Provisioner
	locator          *java.Locator
	ignoreMacAArch64 bool
	logger           *log.Logger
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithLogger sets the manager's parent logger
func WithLogger(logger *log.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logging.Component(logger, "manager")
	}
}

// WithIgnoreMacAArch64 provisions x64 builds on Apple silicon
func WithIgnoreMacAArch64(ignore bool) ManagerOption {
	return func(m *Manager) {
		m.ignoreMacAArch64 = ignore
	}
}

// NewManager creates a manager for root
func NewManager(root string, p Provisioner, locator *java.Locator, opts ...ManagerOption) *Manager {
	m := &Manager{
		root:        filepath.Clean(root),
		provisioner: p,
		locator:     locator,
		logger:      logging.Component(nil, "manager"),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.locator == nil {
		m.locator = java.NewLocator(m.logger)
	}
	return m
}

// Root returns the managed installation root
func (m *Manager) Root() string {
	return m.root
}

// Provision returns the java home of an installation satisfying the request,
// provisioning one when nothing under the root does. semver, when set, must match
// the catalog semver exactly. jreOnly accepts installs without a compiler.
func (m *Manager) Provision(ctx context.Context, version java.Version, semver string, jreOnly bool, listener ProgressListener) (string, error) {
	if existing := m.find(ctx, version, semver, jreOnly); existing != nil {
		m.logger.Info("using existing installation", "version", existing.ImplVersion, "home", existing.JavaHome)
		return existing.JavaHome, nil
	}

	if m.provisioner == nil {
		return "", fmt.Errorf("no installation of java %s found and no provisioner configured", version.Short())
	}

	imageType := ImageJDK
	if jreOnly {
		imageType = ImageJRE
	}

	m.logger.Info("no matching installation, provisioning", "version", version.Short(), "provider", m.provisioner.Name())
	result, err := m.provisioner.Provision(ctx, m.root, Request{
		Version:          version,
		Semver:           semver,
		ImageType:        imageType,
		IgnoreMacAArch64: m.ignoreMacAArch64,
		Listener:         listener,
	})
	if err != nil {
		return "", fmt.Errorf("failed to provision java %s: %w", version.Short(), err)
	}

	home := m.locator.HomeDirectory(result.InstallDir)
	if install, ok := m.locator.ParseInstall(ctx, m.locator.JavaExecutable(home, false)); ok {
		m.logger.Info("provisioned java", "semver", result.Semver, "version", install.ImplVersion, "home", home)
	} else {
		m.logger.Warn("provisioned java could not be probed", "semver", result.Semver, "home", home)
	}
	return home, nil
}

// find returns the newest install under the root that satisfies the request
func (m *Manager) find(ctx context.Context, version java.Version, semver string, jreOnly bool) *java.Install {
	for _, install := range m.Installs(ctx) {
		if !jreOnly && !install.HasCompiler {
			continue
		}
		if semver != "" {
			if install.MatchesSemver(semver) {
				return install
			}
			continue
		}
		if install.LangVersion.Major == version.Major {
			return install
		}
	}
	return nil
}

// Installs probes every child of the root and returns the parsable installs, newest first
func (m *Manager) Installs(ctx context.Context) []*java.Install {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		if !os.IsNotExist(err) {
			m.logger.Warn("failed to list installation root", "root", m.root, "err", err)
		}
		return nil
	}

	installs := make([]*java.Install, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		home := m.locator.HomeDirectory(filepath.Join(m.root, entry.Name()))
		if install, ok := m.locator.ParseInstall(ctx, m.locator.JavaExecutable(home, false)); ok {
			installs = append(installs, install)
		}
	}

	java.SortNewestFirst(installs)
	return installs
}

// Locate probes an arbitrary path
func (m *Manager) Locate(ctx context.Context, path string) (*java.Install, bool) {
	return m.locator.Locate(ctx, path)
}

// Remove deletes one managed installation by its directory name
func (m *Manager) Remove(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid installation name %q", name)
	}

	dir := filepath.Join(m.root, name)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("installation %s not found: %w", name, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not an installation directory", dir)
	}

	m.logger.Info("removing installation", "dir", dir)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove %s: %w", dir, err)
	}
	return nil
}
