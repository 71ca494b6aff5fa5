package runtimeconfig_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-showcase/internal/runtimeconfig"
)

func validConfig() runtimeconfig.Config {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Auth.Secret = "test-secret"
	return cfg
}

func TestConfigValidate_DefaultsWithSecret(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_RequiresSecret(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrAuthSecretRequired) {
		t.Fatalf("expected ErrAuthSecretRequired, got %v", err)
	}
}

func TestConfigValidate_DefaultLocaleMustBeListed(t *testing.T) {
	cfg := validConfig()
	cfg.I18N.DefaultLocale = "fr"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrDefaultLocaleUnknown) {
		t.Fatalf("expected ErrDefaultLocaleUnknown, got %v", err)
	}
}

func TestConfigValidate_RejectsUnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = "mongo"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrDatabaseDriverUnknown) {
		t.Fatalf("expected ErrDatabaseDriverUnknown, got %v", err)
	}
}

func TestConfigValidate_MemoryDriverSkipsDSN(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = "memory"
	cfg.Database.DSN = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected memory driver without dsn to validate, got %v", err)
	}
}

func TestConfigValidate_RejectsInvalidLoggingFormat(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}
}

func TestConfigLocalesNormalizes(t *testing.T) {
	cfg := validConfig()
	cfg.I18N.Locales = []string{" EN ", "th", "en", ""}
	got := cfg.Locales()
	if len(got) != 2 || got[0] != "en" || got[1] != "th" {
		t.Fatalf("unexpected locales %v", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := validConfig()
	env := map[string]string{
		"SHOWCASE_HTTP_ADDR":             ":9090",
		"SHOWCASE_LOCALES":               "en, th, ja",
		"SHOWCASE_AUTH_SESSION_TTL":      "2h",
		"SHOWCASE_MEDIA_MAX_UPLOAD_SIZE": "1024",
		"SHOWCASE_CACHE_ENABLED":         "false",
		"SHOWCASE_DB_DEBUG":              "not-a-bool",
	}
	runtimeconfig.ApplyEnv(&cfg, func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	})

	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("expected addr override, got %q", cfg.HTTP.Addr)
	}
	if len(cfg.I18N.Locales) != 3 || cfg.I18N.Locales[2] != "ja" {
		t.Fatalf("expected locales override, got %v", cfg.I18N.Locales)
	}
	if cfg.Auth.SessionTTL != 2*time.Hour {
		t.Fatalf("expected session ttl override, got %v", cfg.Auth.SessionTTL)
	}
	if cfg.Media.MaxUploadSize != 1024 {
		t.Fatalf("expected max upload override, got %d", cfg.Media.MaxUploadSize)
	}
	if cfg.Cache.Enabled {
		t.Fatal("expected cache to be disabled")
	}
	if cfg.Database.Debug {
		t.Fatal("expected invalid bool to be ignored")
	}
}

func TestLoadReadsYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "showcase.yml")
	data := []byte("site:\n  name: Acme Consulting\ni18n:\n  default_locale: th\n  locales: [en, th]\nauth:\n  secret: from-file\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(runtimeconfig.EnvFileVariable, filepath.Join(dir, "missing.env"))
	t.Setenv("SHOWCASE_SITE_NAME", "")

	cfg, err := runtimeconfig.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Site.Name != "Acme Consulting" {
		t.Fatalf("expected site name from yaml, got %q", cfg.Site.Name)
	}
	if cfg.DefaultLocale() != "th" {
		t.Fatalf("expected default locale th, got %q", cfg.DefaultLocale())
	}
	if cfg.Auth.Secret != "from-file" {
		t.Fatalf("expected auth secret from yaml, got %q", cfg.Auth.Secret)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("expected defaults to survive partial yaml, got %q", cfg.HTTP.Addr)
	}
}
