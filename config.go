package showcase

import "github.com/goliatone/go-showcase/internal/runtimeconfig"

var (
	ErrDefaultLocaleRequired   = runtimeconfig.ErrDefaultLocaleRequired
	ErrDefaultLocaleUnknown    = runtimeconfig.ErrDefaultLocaleUnknown
	ErrDatabaseDriverUnknown   = runtimeconfig.ErrDatabaseDriverUnknown
	ErrDatabaseDSNRequired     = runtimeconfig.ErrDatabaseDSNRequired
	ErrAuthSecretRequired      = runtimeconfig.ErrAuthSecretRequired
	ErrAuthSessionTTLInvalid   = runtimeconfig.ErrAuthSessionTTLInvalid
	ErrMediaMaxSizeInvalid     = runtimeconfig.ErrMediaMaxSizeInvalid
	ErrMediaExtensionsRequired = runtimeconfig.ErrMediaExtensionsRequired
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config         = runtimeconfig.Config
	SiteConfig     = runtimeconfig.SiteConfig
	I18NConfig     = runtimeconfig.I18NConfig
	HTTPConfig     = runtimeconfig.HTTPConfig
	DatabaseConfig = runtimeconfig.DatabaseConfig
	CacheConfig    = runtimeconfig.CacheConfig
	AuthConfig     = runtimeconfig.AuthConfig
	MediaConfig    = runtimeconfig.MediaConfig
	StaticConfig   = runtimeconfig.StaticConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
)

// DefaultConfig returns defaults suitable for local development.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads path (optional) and SHOWCASE_* overrides on top of the defaults.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
