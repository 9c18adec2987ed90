package java

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"jdkprov/internal/logging"
	"jdkprov/internal/platform"

	"github.com/charmbracelet/log"
)

// DefaultProbeTimeout bounds a single `java -XshowSettings` invocation
const DefaultProbeTimeout = 15 * time.Second

// Locator finds and probes Java installations
type Locator struct {
	OS      platform.OS
	Timeout time.Duration
	logger  *log.Logger
}

// NewLocator creates a locator for the host OS
func NewLocator(logger *log.Logger) *Locator {
	return &Locator{
		OS:      platform.ParseOS(runtime.GOOS),
		Timeout: DefaultProbeTimeout,
		logger:  logging.Component(logger, "locator"),
	}
}

// HomeDirectory turns an installation directory into a java home.
// macOS bundles keep the home under Contents/Home; everywhere else they are the same.
func HomeDirectory(system platform.OS, installDir string) string {
	switch system {
	case platform.MacOS:
		return filepath.Join(installDir, "Contents", "Home")
	case platform.Windows, platform.Linux:
		return installDir
	default:
		return installDir
	}
}

// BinDirectory returns the bin directory of an installation directory
func BinDirectory(system platform.OS, installDir string) string {
	return filepath.Join(HomeDirectory(system, installDir), "bin")
}

// JavaExecutable returns the java launcher inside a java home.
// windowed selects javaw, which only exists on Windows.
func JavaExecutable(system platform.OS, home string, windowed bool) string {
	name := "java"
	switch system {
	case platform.Windows:
		if windowed {
			name = "javaw"
		}
	case platform.Linux, platform.MacOS:
	}
	return filepath.Join(home, "bin", name+system.ExeSuffix())
}

// HomeDirectory applies HomeDirectory for the locator's OS
func (l *Locator) HomeDirectory(installDir string) string {
	return HomeDirectory(l.OS, installDir)
}

// JavaExecutable applies JavaExecutable for the locator's OS
func (l *Locator) JavaExecutable(home string, windowed bool) string {
	return JavaExecutable(l.OS, home, windowed)
}

// ParseInstall runs the given java executable and builds an Install from the
// properties it reports. Failures are expected while scanning arbitrary
// directories, so they are logged at info level and reported as false.
func (l *Locator) ParseInstall(ctx context.Context, executable string) (*Install, bool) {
	info, err := os.Stat(executable)
	if err != nil {
		l.logger.Info("no java executable", "path", executable)
		return nil, false
	}
	if info.IsDir() || !isExecutable(executable) {
		l.logger.Info("java executable is not executable", "path", executable)
		return nil, false
	}

	timeout := l.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Properties go to stderr, the version banner too
	cmd := exec.CommandContext(ctx, executable, "-XshowSettings:properties", "-version")
	output, err := cmd.CombinedOutput()
	if err != nil {
		l.logger.Info("java probe failed", "path", executable, "err", err)
		return nil, false
	}

	props := ParseProperties(string(output))
	home := l.resolveHome(props.Get("java.home"), executable)
	install, err := NewInstall(props, home, l.hasCompiler(executable))
	if err != nil {
		l.logger.Info("java probe returned no usable version", "path", executable, "err", err)
		return nil, false
	}

	l.logger.Debug("parsed java install", "home", install.JavaHome, "version", install.ImplVersion)
	return install, true
}

// resolveHome prefers java.home, stepping out of the JDK 8 jre sub-directory
func (l *Locator) resolveHome(reported, executable string) string {
	fallback := filepath.Dir(filepath.Dir(executable))
	if reported == "" {
		return fallback
	}
	if strings.EqualFold(filepath.Base(reported), "jre") {
		parent := filepath.Dir(reported)
		if _, err := os.Stat(l.JavaExecutable(parent, false)); err == nil {
			return parent
		}
	}
	return reported
}

func (l *Locator) hasCompiler(executable string) bool {
	javac := filepath.Join(filepath.Dir(executable), "javac"+l.OS.ExeSuffix())
	info, err := os.Stat(javac)
	return err == nil && !info.IsDir() && isExecutable(javac)
}

// Locate probes a path that may be a java executable, an installation directory
// or a java home.
func (l *Locator) Locate(ctx context.Context, path string) (*Install, bool) {
	path = filepath.Clean(path)

	info, err := os.Stat(path)
	if err != nil {
		l.logger.Info("path does not exist", "path", path)
		return nil, false
	}
	if !info.IsDir() {
		return l.ParseInstall(ctx, path)
	}

	candidates := []string{l.JavaExecutable(l.HomeDirectory(path), false)}
	if home := l.HomeDirectory(path); home != path {
		candidates = append(candidates, l.JavaExecutable(path, false))
	}
	for _, exe := range candidates {
		if _, err := os.Stat(exe); err != nil {
			continue
		}
		return l.ParseInstall(ctx, exe)
	}

	l.logger.Info("no java executable under directory", "path", path)
	return nil, false
}

// SearchRoots returns the OS specific directories whose children are Java installs
func (l *Locator) SearchRoots() []string {
	home, _ := os.UserHomeDir()

	var roots []string
	switch l.OS {
	case platform.Linux:
		roots = []string{"/usr/lib/jvm", "/usr/java", "/opt/java", "/opt/jdk"}
		if home != "" {
			roots = append(roots,
				filepath.Join(home, ".sdkman", "candidates", "java"),
				filepath.Join(home, ".jdks"))
		}
	case platform.MacOS:
		roots = []string{"/Library/Java/JavaVirtualMachines", "/System/Library/Java/JavaVirtualMachines"}
		if home != "" {
			roots = append(roots,
				filepath.Join(home, "Library", "Java", "JavaVirtualMachines"),
				filepath.Join(home, ".jdks"))
		}
	case platform.Windows:
		roots = []string{
			`C:\Program Files\Java`,
			`C:\Program Files (x86)\Java`,
			`C:\Program Files\Eclipse Adoptium`,
			`C:\Program Files\Eclipse Foundation`,
			`C:\Program Files\Zulu`,
			`C:\Program Files\Amazon Corretto`,
			`C:\Program Files\Microsoft`,
		}
		if home != "" {
			roots = append(roots, filepath.Join(home, ".jdks"))
		}
	}
	return roots
}

// FindAll scans the OS search roots, extra roots, registered homes and JAVA_HOME.
// Each candidate is probed on its own; failures are skipped. Results are
// de-duplicated by java home and ordered newest first.
func (l *Locator) FindAll(ctx context.Context, extraRoots []string) []*Install {
	var candidates []string

	roots := append(l.SearchRoots(), extraRoots...)
	for _, root := range roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				candidates = append(candidates, filepath.Join(root, entry.Name()))
			}
		}
	}

	candidates = append(candidates, registeredHomes(l.logger)...)
	if javaHome := os.Getenv("JAVA_HOME"); javaHome != "" {
		candidates = append(candidates, javaHome)
	}

	seen := make(map[string]bool)
	installs := make([]*Install, 0)
	for _, dir := range candidates {
		if ctx.Err() != nil {
			break
		}
		install, ok := l.Locate(ctx, dir)
		if !ok {
			continue
		}
		key := filepath.Clean(install.JavaHome)
		if l.OS == platform.Windows {
			key = strings.ToLower(key)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		installs = append(installs, install)
	}

	SortNewestFirst(installs)
	return installs
}

// SortNewestFirst orders installs by descending language version
func SortNewestFirst(installs []*Install) {
	sort.SliceStable(installs, func(i, j int) bool {
		return installs[j].LangVersion.Less(installs[i].LangVersion)
	})
}
