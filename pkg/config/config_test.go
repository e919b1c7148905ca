package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/gitpkg/pkg/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.BuiltinPrefix != "com.unity." {
		t.Errorf("BuiltinPrefix = %q, want %q", cfg.BuiltinPrefix, "com.unity.")
	}
	if cfg.SettleTicks != 10 {
		t.Errorf("SettleTicks = %d, want 10", cfg.SettleTicks)
	}
	if cfg.TickInterval != 50*time.Millisecond {
		t.Errorf("TickInterval = %v, want 50ms", cfg.TickInterval)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/custom-config")
	got, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath() error = %v", err)
	}
	want := filepath.Join("/tmp/custom-config", appName, fileName)
	if got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	got, err = DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath() error = %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".config", appName, fileName); got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}
}

func TestDefaultPackagesDirXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/custom-data")
	if got, want := Default().PackagesDir, "/tmp/custom-data/gitpkg/packages"; got != want {
		t.Errorf("PackagesDir = %q, want %q", got, want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ManifestName != "package.json" {
		t.Errorf("ManifestName = %q, want defaults", cfg.ManifestName)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
packages_dir = "/srv/packages"
builtin_prefix = ""
settle_ticks = 4
tick_interval = "20ms"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.PackagesDir != "/srv/packages" {
		t.Errorf("PackagesDir = %q, want %q", cfg.PackagesDir, "/srv/packages")
	}
	if cfg.BuiltinPrefix != "" {
		t.Errorf("BuiltinPrefix = %q, want empty", cfg.BuiltinPrefix)
	}
	if cfg.SettleTicks != 4 {
		t.Errorf("SettleTicks = %d, want 4", cfg.SettleTicks)
	}
	if cfg.TickInterval != 20*time.Millisecond {
		t.Errorf("TickInterval = %v, want 20ms", cfg.TickInterval)
	}
	if cfg.MaxAddAttempts != 3 {
		t.Errorf("MaxAddAttempts = %d, want default 3", cfg.MaxAddAttempts)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`packages_dir = "/srv/packages"`), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GITPKG_PACKAGES_DIR", "/opt/packages")
	t.Setenv("GITPKG_MAX_ADD_ATTEMPTS", "5")
	t.Setenv("GITPKG_TICK_INTERVAL", "1s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.PackagesDir != "/opt/packages" {
		t.Errorf("PackagesDir = %q, want env override", cfg.PackagesDir)
	}
	if cfg.MaxAddAttempts != 5 {
		t.Errorf("MaxAddAttempts = %d, want 5", cfg.MaxAddAttempts)
	}
	if cfg.TickInterval != time.Second {
		t.Errorf("TickInterval = %v, want 1s", cfg.TickInterval)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		env     map[string]string
	}{
		{"malformed toml", "packages_dir = ", nil},
		{"bad manifest name", `manifest_name = "../package.json"`, nil},
		{"negative settle", `settle_ticks = -1`, nil},
		{"zero settle", `settle_ticks = 0`, nil},
		{"zero interval", `tick_interval = "0s"`, nil},
		{"zero clone attempts", `clone_attempts = 0`, nil},
		{"bad env", "", map[string]string{"GITPKG_SETTLE_TICKS": "many"}},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Errorf("case %d: Load() error = nil, want error", i)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.PackagesDir = "/srv/packages"
	cfg.MetricsAddr = ":9090"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != cfg {
		t.Errorf("Load(Save(cfg)) = %+v, want %+v", got, cfg)
	}
}

func TestValidateEmptyPackagesDir(t *testing.T) {
	cfg := Default()
	cfg.PackagesDir = ""
	if err := cfg.Validate(); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Validate() error = %v, want INVALID_INPUT", err)
	}
}
