package session

import "time"

const (
	// DefaultAccessTokenKey is the store key for the short-lived bearer token
	DefaultAccessTokenKey = "hcas_token"
	// DefaultRefreshTokenKey is the store key for the long-lived refresh token
	DefaultRefreshTokenKey = "hcas_refresh_token"
	// DefaultProfileKey is the store key for the cached user profile
	DefaultProfileKey = "hcas_user"
)

const defaultTimeout = 10 * time.Second

// Config holds client options. The zero value is usable once BaseURL is set;
// everything else falls back to the backend's documented defaults.
type Config struct {
	// BaseURL is the root of the HCAS REST API, without a trailing slash
	BaseURL string

	// Timeout bounds every request, refresh retries included
	Timeout time.Duration

	// AuthScheme is the credential scheme on the Authorization header
	AuthScheme string

	// AccessTokenKey overrides the store key for the access token
	AccessTokenKey string
	// RefreshTokenKey overrides the store key for the refresh token
	RefreshTokenKey string
	// ProfileKey overrides the store key for the cached profile
	ProfileKey string
}

// GetDefaultConfig normalizes a caller-supplied config
func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.AccessTokenKey == "" {
		cfg.AccessTokenKey = DefaultAccessTokenKey
	}

	if cfg.RefreshTokenKey == "" {
		cfg.RefreshTokenKey = DefaultRefreshTokenKey
	}

	if cfg.ProfileKey == "" {
		cfg.ProfileKey = DefaultProfileKey
	}

	return cfg
}
