// Package auth holds the stateless building blocks of authentication:
// signed access tokens, password hashing and the role guard.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/librarian/internal/common"
	"github.com/dmitrijs2005/librarian/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the standard claims plus the granted role names and the
// issue instant with microsecond precision. The registered iat claim is in
// whole seconds, which is too coarse to compare with a password change.
type Claims struct {
	jwt.RegisteredClaims
	Roles         []string `json:"roles,omitempty"`
	IssuedAtMicro int64    `json:"iat_us,omitempty"`
}

// IssuedAtTime returns the most precise issue instant available.
func (c *Claims) IssuedAtTime() time.Time {
	if c.IssuedAtMicro > 0 {
		return time.UnixMicro(c.IssuedAtMicro)
	}
	if c.IssuedAt != nil {
		return c.IssuedAt.Time
	}
	return time.Time{}
}

// GenerateToken signs an HS256 access token for userID issued at issuedAt.
func GenerateToken(userID string, roles models.RoleSet, secretKey []byte, issuedAt time.Time, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(validityDuration)),
		},
		Roles:         roles.Strings(),
		IssuedAtMicro: issuedAt.UnixMicro(),
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken checks the signature and expiry of tokenString as of now.
// It returns common.ErrTokenExpired for an expired token and
// common.ErrInvalidToken for anything else that fails.
func ParseToken(tokenString string, secretKey []byte, now time.Time) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
