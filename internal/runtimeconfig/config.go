package runtimeconfig

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

var (
	ErrDefaultLocaleRequired   = errors.New("showcase config: default locale is required")
	ErrDefaultLocaleUnknown    = errors.New("showcase config: default locale must be listed in i18n locales")
	ErrDatabaseDriverUnknown   = errors.New("showcase config: database driver is invalid")
	ErrDatabaseDSNRequired     = errors.New("showcase config: database dsn is required")
	ErrAuthSecretRequired      = errors.New("showcase config: auth secret is required")
	ErrAuthSessionTTLInvalid   = errors.New("showcase config: auth session ttl must be positive")
	ErrMediaMaxSizeInvalid     = errors.New("showcase config: media max upload size must be positive")
	ErrMediaExtensionsRequired = errors.New("showcase config: media allowed extensions are required")
	ErrLoggingProviderUnknown  = errors.New("showcase config: logging provider is invalid")
	ErrLoggingLevelInvalid     = errors.New("showcase config: logging level is invalid")
	ErrLoggingFormatInvalid    = errors.New("showcase config: logging format is invalid")
)

// Config aggregates the runtime settings for the site and admin console.
type Config struct {
	Site     SiteConfig     `yaml:"site"`
	I18N     I18NConfig     `yaml:"i18n"`
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	Auth     AuthConfig     `yaml:"auth"`
	Media    MediaConfig    `yaml:"media"`
	Static   StaticConfig   `yaml:"static"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SiteConfig carries presentation settings used by the page renderer.
type SiteConfig struct {
	Name    string `yaml:"name" env:"SHOWCASE_SITE_NAME"`
	BaseURL string `yaml:"base_url" env:"SHOWCASE_SITE_BASE_URL"`
}

// I18NConfig lists the locales served under the /{locale} prefix.
type I18NConfig struct {
	DefaultLocale string   `yaml:"default_locale" env:"SHOWCASE_DEFAULT_LOCALE"`
	Locales       []string `yaml:"locales" env:"SHOWCASE_LOCALES"`
}

// HTTPConfig controls the listener and server timeouts.
type HTTPConfig struct {
	Addr            string        `yaml:"addr" env:"SHOWCASE_HTTP_ADDR"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SHOWCASE_HTTP_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SHOWCASE_HTTP_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHOWCASE_HTTP_SHUTDOWN_TIMEOUT"`
}

// DatabaseConfig selects the bun dialect and connection string.
type DatabaseConfig struct {
	Driver string `yaml:"driver" env:"SHOWCASE_DB_DRIVER"`
	DSN    string `yaml:"dsn" env:"SHOWCASE_DB_DSN"`
	Debug  bool   `yaml:"debug" env:"SHOWCASE_DB_DEBUG"`
}

// CacheConfig toggles go-repository-cache for read-mostly repositories.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled" env:"SHOWCASE_CACHE_ENABLED"`
	DefaultTTL time.Duration `yaml:"default_ttl" env:"SHOWCASE_CACHE_TTL"`
}

// AuthConfig configures session tokens and the sign-in redirect.
type AuthConfig struct {
	Secret     string        `yaml:"secret" env:"SHOWCASE_AUTH_SECRET"`
	SessionTTL time.Duration `yaml:"session_ttl" env:"SHOWCASE_AUTH_SESSION_TTL"`
	CookieName string        `yaml:"cookie_name" env:"SHOWCASE_AUTH_COOKIE"`
	SignInPath string        `yaml:"signin_path" env:"SHOWCASE_AUTH_SIGNIN_PATH"`
	Secure     bool          `yaml:"secure_cookie" env:"SHOWCASE_AUTH_SECURE_COOKIE"`
}

// MediaConfig configures upload validation and the object store location.
type MediaConfig struct {
	Dir               string        `yaml:"dir" env:"SHOWCASE_MEDIA_DIR"`
	PublicPath        string        `yaml:"public_path" env:"SHOWCASE_MEDIA_PUBLIC_PATH"`
	MaxUploadSize     int64         `yaml:"max_upload_size" env:"SHOWCASE_MEDIA_MAX_UPLOAD_SIZE"`
	AllowedExtensions []string      `yaml:"allowed_extensions" env:"SHOWCASE_MEDIA_EXTENSIONS"`
	RemoteTimeout     time.Duration `yaml:"remote_timeout" env:"SHOWCASE_MEDIA_REMOTE_TIMEOUT"`
}

// StaticConfig points at the optional static fallback content directory.
// When Dir is empty the embedded bundle is used.
type StaticConfig struct {
	Dir string `yaml:"dir" env:"SHOWCASE_STATIC_DIR"`
}

// LoggingConfig captures provider-specific logging options.
type LoggingConfig struct {
	Provider  string   `yaml:"provider" env:"SHOWCASE_LOG_PROVIDER"`
	Level     string   `yaml:"level" env:"SHOWCASE_LOG_LEVEL"`
	Format    string   `yaml:"format" env:"SHOWCASE_LOG_FORMAT"`
	AddSource bool     `yaml:"add_source" env:"SHOWCASE_LOG_ADD_SOURCE"`
	Focus     []string `yaml:"focus" env:"SHOWCASE_LOG_FOCUS"`
}

// DefaultConfig returns defaults suitable for local development.
func DefaultConfig() Config {
	return Config{
		Site: SiteConfig{
			Name:    "Showcase",
			BaseURL: "http://localhost:8080",
		},
		I18N: I18NConfig{
			DefaultLocale: "en",
			Locales:       []string{"en", "th"},
		},
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "file:showcase.db?cache=shared&_fk=1",
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: time.Minute,
		},
		Auth: AuthConfig{
			SessionTTL: 24 * time.Hour,
			CookieName: "showcase_session",
			SignInPath: "/auth/signin",
		},
		Media: MediaConfig{
			Dir:               "uploads",
			PublicPath:        "/uploads",
			MaxUploadSize:     5 << 20,
			AllowedExtensions: []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg", ".avif"},
			RemoteTimeout:     20 * time.Second,
		},
		Logging: LoggingConfig{
			Provider: "gologger",
			Level:    "info",
			Format:   "console",
		},
	}
}

// Validate performs consistency checks across sections.
func (cfg Config) Validate() error {
	def := strings.ToLower(strings.TrimSpace(cfg.I18N.DefaultLocale))
	if def == "" {
		return ErrDefaultLocaleRequired
	}
	if !slices.Contains(cfg.Locales(), def) {
		return fmt.Errorf("%w: %s", ErrDefaultLocaleUnknown, def)
	}
	switch normalize(cfg.Database.Driver) {
	case "sqlite", "sqlite3", "postgres", "pg":
	case "memory":
		// in-memory repositories, no DSN needed
	default:
		return fmt.Errorf("%w: %s", ErrDatabaseDriverUnknown, cfg.Database.Driver)
	}
	if normalize(cfg.Database.Driver) != "memory" && strings.TrimSpace(cfg.Database.DSN) == "" {
		return ErrDatabaseDSNRequired
	}
	if strings.TrimSpace(cfg.Auth.Secret) == "" {
		return ErrAuthSecretRequired
	}
	if cfg.Auth.SessionTTL <= 0 {
		return ErrAuthSessionTTLInvalid
	}
	if cfg.Media.MaxUploadSize <= 0 {
		return ErrMediaMaxSizeInvalid
	}
	if len(cfg.Media.AllowedExtensions) == 0 {
		return ErrMediaExtensionsRequired
	}
	switch normalize(cfg.Logging.Provider) {
	case "", "none", "gologger":
	default:
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, cfg.Logging.Provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
		return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
	}
	return nil
}

// Locales returns the configured locale codes, lowercased and de-duplicated.
func (cfg Config) Locales() []string {
	out := make([]string, 0, len(cfg.I18N.Locales))
	for _, code := range cfg.I18N.Locales {
		code = normalize(code)
		if code == "" || slices.Contains(out, code) {
			continue
		}
		out = append(out, code)
	}
	return out
}

// DefaultLocale returns the normalized default locale.
func (cfg Config) DefaultLocale() string {
	return normalize(cfg.I18N.DefaultLocale)
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
