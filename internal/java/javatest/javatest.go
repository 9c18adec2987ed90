// Package javatest provides fake java launchers for tests.
package javatest

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"
)

// Properties returns a property set for a HotSpot build of the given version
func Properties(version, runtimeVersion string) map[string]string {
	return map[string]string{
		"java.version":         version,
		"java.vendor":          "Eclipse Adoptium",
		"java.vm.name":         "OpenJDK 64-Bit Server VM",
		"java.runtime.name":    "OpenJDK Runtime Environment",
		"java.runtime.version": runtimeVersion,
		"os.arch":              "amd64",
	}
}

// Script returns a POSIX shell script that mimics
// `java -XshowSettings:properties -version` with the given properties.
func Script(props map[string]string) []byte {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	b.WriteString("cat >&2 <<'PROPS'\n")
	b.WriteString("Property settings:\n")
	for _, k := range keys {
		b.WriteString("    " + k + " = " + props[k] + "\n")
	}
	b.WriteString("    java.library.path = /usr/java/packages/lib\n")
	b.WriteString("        /usr/lib64\n")
	b.WriteString("\n")
	b.WriteString("openjdk version \"" + props["java.version"] + "\"\n")
	b.WriteString("PROPS\n")
	return []byte(b.String())
}

// SkipUnlessPOSIX skips tests that execute shell scripts
func SkipUnlessPOSIX(t testing.TB) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake java launchers are shell scripts")
	}
}

// WriteHome creates home/bin/java (and optionally javac) as fake launchers and
// returns the path of the java executable.
func WriteHome(t testing.TB, home string, props map[string]string, withCompiler bool) string {
	t.Helper()
	bin := filepath.Join(home, "bin")
	if err := os.MkdirAll(bin, 0o755); err != nil {
		t.Fatal(err)
	}
	java := filepath.Join(bin, "java")
	if err := os.WriteFile(java, Script(props), 0o755); err != nil {
		t.Fatal(err)
	}
	if withCompiler {
		if err := os.WriteFile(filepath.Join(bin, "javac"), []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return java
}
