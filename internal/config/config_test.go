package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.InstallDir != filepath.Join(home, ".jdkprov", "jdks") {
		t.Errorf("InstallDir = %q", cfg.InstallDir)
	}
	if cfg.AdoptiumURL != DefaultAdoptiumURL || cfg.LogLevel != DefaultLogLevel {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if !cfg.Update.Enabled || !cfg.Update.AutoCheck || !cfg.Update.LastCheck.IsZero() {
		t.Errorf("unexpected update defaults %+v", cfg.Update)
	}
	if len(cfg.SearchPaths) != 0 {
		t.Errorf("SearchPaths = %v", cfg.SearchPaths)
	}
}

func TestLoadFileWithBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte(`{
  "install_dir": "/srv/jdks",
  "search_paths": ["/opt/jdks", "/opt/jdks/", ""],
  "ignore_mac_aarch64": true,
  "update": {"enabled": false, "last_check": "2024-03-01T10:00:00Z"}
}`)...)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.InstallDir != "/srv/jdks" || !cfg.IgnoreMacAArch64 {
		t.Errorf("unexpected config %+v", cfg)
	}
	if len(cfg.SearchPaths) != 1 || cfg.SearchPaths[0] != filepath.Clean("/opt/jdks") {
		t.Errorf("SearchPaths = %v; want de-duplicated [/opt/jdks]", cfg.SearchPaths)
	}
	if cfg.Update.Enabled || !cfg.Update.AutoCheck {
		t.Errorf("update = %+v", cfg.Update)
	}
	if want := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC); !cfg.Update.LastCheck.Equal(want) {
		t.Errorf("LastCheck = %v; want %v", cfg.Update.LastCheck, want)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q", cfg.Path())
	}
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("JDKPROV_INSTALL_DIR", "/env/jdks")
	t.Setenv("JDKPROV_LOG_LEVEL", "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.InstallDir != "/env/jdks" || cfg.LogLevel != "debug" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	cfg.InstallDir = "/data/jdks"
	cfg.AddSearchPath("/usr/local/java")
	cfg.Update.SkipVersion = "1.2.0"
	cfg.Update.Repository = "example/jdkprov"
	cfg.Update.LastCheck = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.InstallDir != "/data/jdks" || loaded.Update.SkipVersion != "1.2.0" {
		t.Errorf("unexpected reload %+v", loaded)
	}
	if loaded.Update.Repository != "example/jdkprov" {
		t.Errorf("Repository = %q", loaded.Update.Repository)
	}
	if !loaded.HasSearchPath("/usr/local/java") {
		t.Errorf("search path lost: %v", loaded.SearchPaths)
	}
	if !loaded.Update.LastCheck.Equal(cfg.Update.LastCheck) {
		t.Errorf("LastCheck = %v", loaded.Update.LastCheck)
	}
}

func TestSearchPaths(t *testing.T) {
	cfg := Default()

	cfg.AddSearchPath("/opt/java")
	cfg.AddSearchPath("/opt/java/")
	cfg.AddSearchPath("   ")
	cfg.AddSearchPath("/opt/zulu")
	if len(cfg.SearchPaths) != 2 {
		t.Fatalf("SearchPaths = %v", cfg.SearchPaths)
	}

	if !cfg.RemoveSearchPath("/opt/java") {
		t.Error("RemoveSearchPath should report a removed path")
	}
	if cfg.RemoveSearchPath("/opt/java") {
		t.Error("path was already removed")
	}
	if cfg.HasSearchPath("/opt/java") || !cfg.HasSearchPath("/opt/zulu") {
		t.Errorf("SearchPaths = %v", cfg.SearchPaths)
	}
}

func TestDefaultPathUsesXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if got, want := DefaultPath(), filepath.Join(dir, "jdkprov", "config.json"); got != want {
		t.Errorf("DefaultPath() = %q; want %q", got, want)
	}
}
