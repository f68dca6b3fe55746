package models

import "time"

// RefreshToken is a server-stored long-lived session credential.
// Only the digest of the opaque token is persisted.
type RefreshToken struct {
	ID        string
	UserID    string
	Digest    string
	Expires   time.Time
	CreatedAt time.Time
}
