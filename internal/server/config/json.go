package config

import (
	"fmt"
	"os"

	"github.com/dmitrijs2005/librarian/internal/flagx"
	"github.com/dmitrijs2005/librarian/internal/timex"
	jsoniter "github.com/json-iterator/go"
)

// JsonConfig mirrors Config for JSON files. Interval fields use
// timex.Duration so both "15m" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	BcryptCost                   int            `json:"bcrypt_cost"`
	MaxLoginAttempts             int            `json:"max_login_attempts"`
	LockoutDuration              timex.Duration `json:"lockout_duration"`
	PasswordResetValidity        timex.Duration `json:"password_reset_validity"`
	AnalyticsTopN                int            `json:"analytics_top_n"`
	EmailUniqueness              string         `json:"email_uniqueness"`
	AllowRoleSelfAssignment      bool           `json:"allow_role_self_assignment"`
	StoreRetryAttempts           int            `json:"store_retry_attempts"`
	StoreRetryBaseDelay          timex.Duration `json:"store_retry_base_delay"`
	LogLevel                     string         `json:"log_level"`
}

func toJson(c *Config) *JsonConfig {
	return &JsonConfig{
		EndpointAddrGRPC:             c.EndpointAddrGRPC,
		DatabaseDSN:                  c.DatabaseDSN,
		SecretKey:                    c.SecretKey,
		AccessTokenValidityDuration:  timex.Duration{Duration: c.AccessTokenValidityDuration},
		RefreshTokenValidityDuration: timex.Duration{Duration: c.RefreshTokenValidityDuration},
		BcryptCost:                   c.BcryptCost,
		MaxLoginAttempts:             c.MaxLoginAttempts,
		LockoutDuration:              timex.Duration{Duration: c.LockoutDuration},
		PasswordResetValidity:        timex.Duration{Duration: c.PasswordResetValidity},
		AnalyticsTopN:                c.AnalyticsTopN,
		EmailUniqueness:              c.EmailUniqueness,
		AllowRoleSelfAssignment:      c.AllowRoleSelfAssignment,
		StoreRetryAttempts:           c.StoreRetryAttempts,
		StoreRetryBaseDelay:          timex.Duration{Duration: c.StoreRetryBaseDelay},
		LogLevel:                     c.LogLevel,
	}
}

// parseJson overlays the JSON file named by -c/-config onto config. Keys
// absent from the file keep their current values. No flag, no change.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := toJson(config)
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	config.EndpointAddrGRPC = c.EndpointAddrGRPC
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	config.BcryptCost = c.BcryptCost
	config.MaxLoginAttempts = c.MaxLoginAttempts
	config.LockoutDuration = c.LockoutDuration.Duration
	config.PasswordResetValidity = c.PasswordResetValidity.Duration
	config.AnalyticsTopN = c.AnalyticsTopN
	config.EmailUniqueness = c.EmailUniqueness
	config.AllowRoleSelfAssignment = c.AllowRoleSelfAssignment
	config.StoreRetryAttempts = c.StoreRetryAttempts
	config.StoreRetryBaseDelay = c.StoreRetryBaseDelay.Duration
	config.LogLevel = c.LogLevel
	return nil
}
