// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrijs2005/librarian/internal/dbx"
	"github.com/go-playground/validator/v10"
)

// Config holds runtime settings for the librarian server.
//
// Fields:
//   - EndpointAddrGRPC: bind address for the public gRPC endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects in-memory stores.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use test defaults in prod.
//   - AccessTokenValidityDuration / RefreshTokenValidityDuration: token lifetimes.
//   - MaxLoginAttempts / LockoutDuration: consecutive failed logins before
//     an account is locked, and for how long. Zero attempts disables lockout.
//   - EmailUniqueness: "active" lets a soft-deleted account's email be reused,
//     "global" does not.
//   - AllowRoleSelfAssignment: honor roles requested at sign-up.
//   - StoreRetryAttempts / StoreRetryBaseDelay: backoff for transient store errors.
type Config struct {
	EndpointAddrGRPC             string `validate:"required"`
	DatabaseDSN                  string
	SecretKey                    string        `validate:"required"`
	AccessTokenValidityDuration  time.Duration `validate:"gt=0"`
	RefreshTokenValidityDuration time.Duration `validate:"gt=0"`
	BcryptCost                   int           `validate:"min=4,max=31"`
	MaxLoginAttempts             int           `validate:"min=0"`
	LockoutDuration              time.Duration `validate:"min=0"`
	PasswordResetValidity        time.Duration `validate:"gt=0"`
	AnalyticsTopN                int           `validate:"min=0"`
	EmailUniqueness              string        `validate:"oneof=active global"`
	AllowRoleSelfAssignment      bool
	StoreRetryAttempts           int           `validate:"min=0"`
	StoreRetryBaseDelay          time.Duration `validate:"min=0"`
	LogLevel                     string        `validate:"oneof=debug info warn error"`
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 15 * time.Minute
	c.RefreshTokenValidityDuration = 7 * 24 * time.Hour
	c.BcryptCost = 10
	c.MaxLoginAttempts = 5
	c.LockoutDuration = 15 * time.Minute
	c.PasswordResetValidity = time.Hour
	c.AnalyticsTopN = 5
	c.EmailUniqueness = "active"
	c.AllowRoleSelfAssignment = false
	c.StoreRetryAttempts = 3
	c.StoreRetryBaseDelay = 50 * time.Millisecond
	c.LogLevel = "info"
}

// Validate checks value ranges after all sources have been applied.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// RetryPolicy converts the retry settings for the storage layer.
func (c *Config) RetryPolicy() dbx.RetryPolicy {
	return dbx.RetryPolicy{
		Attempts:  uint64(c.StoreRetryAttempts),
		BaseDelay: c.StoreRetryBaseDelay,
		MaxDelay:  dbx.DefaultRetryPolicy.MaxDelay,
	}
}

// SlogLevel maps LogLevel onto slog; unknown values fall back to info.
func (c *Config) SlogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags. args are
// the process arguments without the program name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
