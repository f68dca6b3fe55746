package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/librarian/internal/flagx"
)

var (
	valueFlags = []string{"-a", "-d", "-s", "-t", "-r", "-k", "-l", "-o", "-w", "-n", "-u", "-m", "-v"}
	boolFlags  = []string{"-x"}
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN; empty runs on in-memory stores
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-k int      bcrypt cost
//	-l int      failed logins before lockout (0 disables)
//	-o int      lockout duration, minutes
//	-w int      password reset token validity, minutes
//	-n int      size of analytics top lists
//	-u string   email uniqueness scope: active | global
//	-x bool     honor roles requested at sign-up
//	-m int      retries of a transient storage failure
//	-v string   log level: debug | info | warn | error
//
// Duration flags are integers in minutes.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgsWithBools(args, valueFlags, boolFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshTokenValidity := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh_token_validity_duration (in minutes)")
	lockout := fs.Int("o", int(config.LockoutDuration.Minutes()), "lockout_duration (in minutes)")
	resetValidity := fs.Int("w", int(config.PasswordResetValidity.Minutes()), "password_reset_validity (in minutes)")

	fs.IntVar(&config.BcryptCost, "k", config.BcryptCost, "bcrypt cost")
	fs.IntVar(&config.MaxLoginAttempts, "l", config.MaxLoginAttempts, "failed logins before lockout")
	fs.IntVar(&config.AnalyticsTopN, "n", config.AnalyticsTopN, "analytics top list size")
	fs.StringVar(&config.EmailUniqueness, "u", config.EmailUniqueness, "email uniqueness scope (active|global)")
	fs.BoolVar(&config.AllowRoleSelfAssignment, "x", config.AllowRoleSelfAssignment, "honor roles requested at sign-up")
	fs.IntVar(&config.StoreRetryAttempts, "m", config.StoreRetryAttempts, "store retry attempts")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidity) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidity) * time.Minute
	config.LockoutDuration = time.Duration(*lockout) * time.Minute
	config.PasswordResetValidity = time.Duration(*resetValidity) * time.Minute
	return nil
}
