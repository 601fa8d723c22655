package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvAddr, "")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvLocale, "")
	t.Setenv(EnvTheme, "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formpages.yaml")
	data := []byte(`server:
  addr: ":9090"
  shutdownTimeout: 2s
  csrfToken: secret
log:
  level: debug
locale: es
stories:
  enabled: false
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv(EnvAddr, "127.0.0.1:7000")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvLocale, "")
	t.Setenv(EnvTheme, "uswds:dark")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Config{
		Server: ServerConfig{
			Addr:              "127.0.0.1:7000",
			ReadHeaderTimeout: 10 * time.Second,
			ShutdownTimeout:   2 * time.Second,
			CSRFToken:         "secret",
		},
		Log:     LogConfig{Level: "debug"},
		Locale:  "es",
		Theme:   ThemeConfig{Name: "uswds", Variant: "dark"},
		Stories: StoriesConfig{Enabled: false},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected missing file error")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: loud\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv(EnvLogLevel, "")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected invalid level error")
	}
}

func TestApplyEnvIgnoresBlank(t *testing.T) {
	t.Parallel()

	cfg := Default()
	env := map[string]string{EnvLocale: "  ", EnvLogLevel: "warn"}
	ApplyEnv(&cfg, func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	if cfg.Locale != "en" || cfg.Log.Level != "warn" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLogger(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Log.Level = "debug"
	logger, err := cfg.Logger()
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	if !logger.Core().Enabled(-1) {
		t.Fatalf("expected debug enabled")
	}
}
