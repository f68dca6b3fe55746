// Package models defines client-side data models used by the librarian CLI.
package models

import "time"

// Session is the locally remembered login. Only the refresh token is kept;
// access tokens live in memory.
type Session struct {
	Email        string
	AccountID    string
	RefreshToken string
	SavedAt      time.Time
}
