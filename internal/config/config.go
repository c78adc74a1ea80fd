package config

import (
	"errors"
	"time"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Upload   UploadConfig   `mapstructure:"upload"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"             validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level"        validate:"required,oneof=debug info warn error"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"     validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"    validate:"gt=0"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"     validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"               validate:"required,url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"    validate:"gte=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
}

// AuthConfig selects how bearer tokens are verified. Either JWTSecret (HMAC)
// or IssuerURL plus Audience (JWKS from the issuer) must be set.
type AuthConfig struct {
	JWTSecret     string `mapstructure:"jwt_secret"      validate:"omitempty,min=32"`
	IssuerURL     string `mapstructure:"issuer_url"      validate:"omitempty,url"`
	Audience      string `mapstructure:"audience"`
	AutoProvision bool   `mapstructure:"auto_provision"`
	UserCacheSize int    `mapstructure:"user_cache_size" validate:"gte=1"`
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// UploadConfig bounds CSV uploads.
type UploadConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes" validate:"gt=0"`
}

// UsesJWKS reports whether tokens are verified against the issuer's key set.
func (a AuthConfig) UsesJWKS() bool {
	return a.IssuerURL != ""
}

// errNoAuthMode is returned when neither verification mode is configured.
var errNoAuthMode = errors.New("auth: either jwt_secret or issuer_url and audience must be set")

// validateAuthMode checks the cross-field rule struct tags cannot express.
func (a AuthConfig) validateAuthMode() error {
	if a.IssuerURL != "" {
		if a.Audience == "" {
			return errors.New("auth: audience is required with issuer_url")
		}
		return nil
	}
	if a.JWTSecret == "" {
		return errNoAuthMode
	}
	return nil
}
