// Package refreshtokens declares the server-side repository contract for
// managing refresh tokens in persistent storage.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/librarian/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking refresh
// tokens. Tokens are addressed by the SHA-256 digest of the opaque value.
type Repository interface {
	// Create stores a new refresh token digest for userID expiring at expires.
	Create(ctx context.Context, userID string, digest string, expires time.Time) error

	// Find looks up a refresh token by its digest and returns its metadata.
	// Implementations return common.ErrorNotFound when the token is absent.
	Find(ctx context.Context, digest string) (*models.RefreshToken, error)

	// Delete removes a refresh token by its digest. It returns
	// common.ErrorNotFound when no token was removed, so that of two
	// concurrent rotations of the same token only one succeeds.
	Delete(ctx context.Context, digest string) error

	// DeleteByUser revokes every refresh token of userID.
	DeleteByUser(ctx context.Context, userID string) error
}
