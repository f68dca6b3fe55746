package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr_grpc":              "www.example:9000",
		"database_dsn":                    "postgres://x",
		"secret_key":                      "my_secret_key",
		"access_token_validity_duration":  "1m",
		"refresh_token_validity_duration": "3m",
		"bcrypt_cost":                     11,
		"max_login_attempts":              0,
		"lockout_duration":                "1h",
		"password_reset_validity":         int64(30 * time.Minute),
		"analytics_top_n":                 10,
		"email_uniqueness":                "global",
		"allow_role_self_assignment":      true,
		"store_retry_attempts":            1,
		"store_retry_base_delay":          "5ms",
		"log_level":                       "warn",
	})

	t.Run("loads from json", func(t *testing.T) {
		cfg := defaults()
		require.NoError(t, parseJson(cfg, []string{"-config", pathFlag}))

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrGRPC)
		assert.Equal(t, "postgres://x", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 1*time.Minute, cfg.AccessTokenValidityDuration)
		assert.Equal(t, 3*time.Minute, cfg.RefreshTokenValidityDuration)
		assert.Equal(t, 11, cfg.BcryptCost)
		assert.Equal(t, 0, cfg.MaxLoginAttempts)
		assert.Equal(t, time.Hour, cfg.LockoutDuration)
		assert.Equal(t, 30*time.Minute, cfg.PasswordResetValidity)
		assert.Equal(t, 10, cfg.AnalyticsTopN)
		assert.Equal(t, "global", cfg.EmailUniqueness)
		assert.True(t, cfg.AllowRoleSelfAssignment)
		assert.Equal(t, 1, cfg.StoreRetryAttempts)
		assert.Equal(t, 5*time.Millisecond, cfg.StoreRetryBaseDelay)
		assert.Equal(t, "warn", cfg.LogLevel)
	})

	t.Run("partial file keeps other values", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{"analytics_top_n": 2})

		cfg := defaults()
		require.NoError(t, parseJson(cfg, []string{"-c", partial}))

		want := defaults()
		want.AnalyticsTopN = 2
		assert.Equal(t, want, cfg)
	})

	t.Run("no config flag, no changes", func(t *testing.T) {
		cfg := defaults()
		require.NoError(t, parseJson(cfg, []string{"-a", "ignored"}))
		assert.Equal(t, defaults(), cfg)
	})

	t.Run("invalid JSON is an error", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		assert.Error(t, parseJson(defaults(), []string{"-config", bad}))
	})

	t.Run("missing file is an error", func(t *testing.T) {
		assert.Error(t, parseJson(defaults(), []string{"-c", filepath.Join(dir, "absent.json")}))
	})
}
