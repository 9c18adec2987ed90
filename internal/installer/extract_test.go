package installer

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"jdkprov/internal/platform"
)

func jdk17Entries() []testEntry {
	return []testEntry{
		{name: "jdk-17/"},
		{name: "jdk-17/bin/"},
		{name: "jdk-17/bin/java", body: "#!/bin/sh\n"},
		{name: "jdk-17/lib/modules", body: "modules"},
		{name: "jdk-17/release", body: "JAVA_VERSION=\"17\"\n"},
	}
}

func TestExtractTarGz(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	archive := writeArchive(t, src, "OpenJDK17-jdk_x64_linux.tar.gz", buildTarGz(t, jdk17Entries()))

	installDir, err := NewExtractor(platform.Linux, nil).Extract(dest, archive)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if want := filepath.Join(dest, "jdk-17"); installDir != want {
		t.Fatalf("installDir = %q; want %q", installDir, want)
	}

	data, err := os.ReadFile(filepath.Join(installDir, "lib", "modules"))
	if err != nil || string(data) != "modules" {
		t.Fatalf("lib/modules = %q, %v", data, err)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(filepath.Join(installDir, "bin", "java"))
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0o775 {
			t.Errorf("bin/java mode = %v; want rwxrwxr-x", info.Mode().Perm())
		}
	}
}

func TestExtractZip(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	archive := writeArchive(t, src, "OpenJDK17-jdk_x64_windows.zip", buildZip(t, jdk17Entries()))

	installDir, err := NewExtractor(platform.Windows, nil).Extract(dest, archive)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if want := filepath.Join(dest, "jdk-17"); installDir != want {
		t.Fatalf("installDir = %q; want %q", installDir, want)
	}
	if _, err := os.Stat(filepath.Join(installDir, "release")); err != nil {
		t.Fatalf("release file missing: %v", err)
	}
}

func TestExtractWindowsLeavesPermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on windows")
	}
	dest := t.TempDir()
	archive := writeArchive(t, t.TempDir(), "jdk.tar.gz", buildTarGz(t, jdk17Entries()))

	installDir, err := NewExtractor(platform.Windows, nil).Extract(dest, archive)
	if err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(filepath.Join(installDir, "bin", "java"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0o111 != 0 {
		t.Errorf("windows extraction should not fix up permissions, got %v", info.Mode().Perm())
	}
}

func TestExtractMacOSBundle(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on windows")
	}
	entries := []testEntry{
		{name: "jdk-17.0.1+12/"},
		{name: "jdk-17.0.1+12/Contents/Home/bin/java", body: "bin"},
		{name: "jdk-17.0.1+12/Contents/Home/lib/libjli.dylib", body: "lib"},
		{name: "jdk-17.0.1+12/Contents/MacOS/libjli.dylib", link: "../Home/lib/libjli.dylib"},
	}
	dest := t.TempDir()
	archive := writeArchive(t, t.TempDir(), "OpenJDK17U-jdk_aarch64_mac.tar.gz", buildTarGz(t, entries))

	installDir, err := NewExtractor(platform.MacOS, nil).Extract(dest, archive)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	info, err := os.Stat(filepath.Join(installDir, "Contents", "Home", "bin", "java"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o775 {
		t.Errorf("Contents/Home/bin/java mode = %v", info.Mode().Perm())
	}

	target, err := os.Readlink(filepath.Join(installDir, "Contents", "MacOS", "libjli.dylib"))
	if err != nil || target != "../Home/lib/libjli.dylib" {
		t.Errorf("symlink = %q, %v", target, err)
	}
}

func TestExtractWithoutDirectoryEntries(t *testing.T) {
	entries := []testEntry{
		{name: "jdk-17/bin/java", body: "java"},
		{name: "jdk-17/release", body: "release"},
	}
	for name, data := range map[string][]byte{
		"flat.tar.gz": buildTarGz(t, entries),
		"flat.zip":    buildZip(t, entries),
	} {
		t.Run(name, func(t *testing.T) {
			dest := t.TempDir()
			archive := writeArchive(t, t.TempDir(), name, data)

			_, err := NewExtractor(platform.Linux, nil).Extract(dest, archive)
			if !errors.Is(err, ErrNoBasePath) {
				t.Fatalf("err = %v; want ErrNoBasePath", err)
			}
			if names := dirEntries(t, dest); len(names) != 0 {
				t.Fatalf("nothing should be written, found %v", names)
			}
		})
	}
}

func TestExtractUnsupportedFormat(t *testing.T) {
	archive := writeArchive(t, t.TempDir(), "jdk-17.7z", []byte("7z"))
	_, err := NewExtractor(platform.Linux, nil).Extract(t.TempDir(), archive)
	if !errors.Is(err, ErrUnsupportedArchive) {
		t.Fatalf("err = %v; want ErrUnsupportedArchive", err)
	}
}

func TestExtractRejectsTraversal(t *testing.T) {
	entries := []testEntry{
		{name: "jdk-17/"},
		{name: "../evil", body: "boom"},
	}
	root := t.TempDir()
	dest := filepath.Join(root, "dest")
	if err := os.Mkdir(dest, 0o755); err != nil {
		t.Fatal(err)
	}
	archive := writeArchive(t, t.TempDir(), "evil.tar.gz", buildTarGz(t, entries))

	if _, err := NewExtractor(platform.Windows, nil).Extract(dest, archive); err == nil {
		t.Fatal("expected traversal to be rejected")
	}
	if _, err := os.Stat(filepath.Join(root, "evil")); !os.IsNotExist(err) {
		t.Fatal("file escaped the destination")
	}
}

func TestExtractRejectsChainedSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks are not extracted on windows")
	}
	entries := []testEntry{
		{name: "jdk/"},
		{name: "jdk/a", link: ".."},
		{name: "jdk/a/b", link: ".."},
		{name: "jdk/a/b/escaped.txt", body: "boom"},
		{name: "jdk/bin/java", body: "java"},
	}
	root := t.TempDir()
	dest := filepath.Join(root, "dest")
	if err := os.Mkdir(dest, 0o755); err != nil {
		t.Fatal(err)
	}
	archive := writeArchive(t, t.TempDir(), "chain.tar.gz", buildTarGz(t, entries))

	if _, err := NewExtractor(platform.Linux, nil).Extract(dest, archive); err == nil {
		t.Fatal("expected chained symlinks to be rejected")
	}
	for _, p := range []string{filepath.Join(root, "escaped.txt"), filepath.Join(dest, "escaped.txt")} {
		if _, err := os.Lstat(p); !os.IsNotExist(err) {
			t.Errorf("%s was written outside the install", p)
		}
	}
}

func TestExtractRejectsSymlinkResolvingOutside(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks are not extracted on windows")
	}
	entries := []testEntry{
		{name: "jdk/"},
		{name: "jdk/bin/java", body: "java"},
		{name: "jdk/d", link: "c/.."},
		{name: "jdk/c", link: "a/.."},
		{name: "jdk/a", link: "."},
	}
	dest := t.TempDir()
	archive := writeArchive(t, t.TempDir(), "links.tar.gz", buildTarGz(t, entries))

	_, err := NewExtractor(platform.Linux, nil).Extract(dest, archive)
	if err == nil {
		t.Fatal("expected a symlink resolving outside the destination to be rejected")
	}
	if _, err := os.Lstat(filepath.Join(dest, "jdk", "d")); !os.IsNotExist(err) {
		t.Error("escaping symlink should be removed")
	}
	if target, err := os.Readlink(filepath.Join(dest, "jdk", "c")); err != nil || target != "a/.." {
		t.Errorf("contained symlink = %q, %v", target, err)
	}
}

func TestExtractRejectsWritingThroughSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	root := t.TempDir()
	outside := filepath.Join(root, "outside")
	dest := filepath.Join(root, "dest")
	for _, dir := range []string{outside, dest} {
		if err := os.Mkdir(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Symlink(outside, filepath.Join(dest, "jdk-17")); err != nil {
		t.Fatal(err)
	}
	archive := writeArchive(t, t.TempDir(), "jdk.tar.gz", buildTarGz(t, jdk17Entries()))

	if _, err := NewExtractor(platform.Linux, nil).Extract(dest, archive); err == nil {
		t.Fatal("expected extraction through a symlinked directory to fail")
	}
	if names := dirEntries(t, outside); len(names) != 0 {
		t.Fatalf("files escaped the destination: %v", names)
	}
}

func TestExtractOverwritesExistingFiles(t *testing.T) {
	dest := t.TempDir()
	stale := filepath.Join(dest, "jdk-17", "release")
	if err := os.MkdirAll(filepath.Dir(stale), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stale, []byte("stale"), 0o444); err != nil {
		t.Fatal(err)
	}
	archive := writeArchive(t, t.TempDir(), "jdk.zip", buildZip(t, jdk17Entries()))

	if _, err := NewExtractor(platform.Windows, nil).Extract(dest, archive); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(stale)
	if err != nil || string(data) != "JAVA_VERSION=\"17\"\n" {
		t.Fatalf("release = %q, %v", data, err)
	}
}

func TestDetectFormat(t *testing.T) {
	tests := map[string]archiveFormat{
		"OpenJDK17U.tar.gz": formatTarGz,
		"jdk.TGZ":           formatTarGz,
		"jdk.tar.xz":        formatTarXz,
		"OpenJDK.zip":       formatZip,
	}
	for name, want := range tests {
		got, err := detectFormat(name)
		if err != nil || got != want {
			t.Errorf("detectFormat(%q) = %v, %v; want %v", name, got, err, want)
		}
	}
	if _, err := detectFormat("jdk.tar"); !errors.Is(err, ErrUnsupportedArchive) {
		t.Errorf("plain tar should be unsupported, got %v", err)
	}
}
