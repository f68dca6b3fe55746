package auth

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest password bcrypt can hash.
const MaxPasswordBytes = 72

// HashPassword returns a salted bcrypt hash of raw at the given cost.
func HashPassword(raw string, cost int) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(raw), cost)
}

// CheckPassword reports whether raw matches hash.
func CheckPassword(hash []byte, raw string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(raw)) == nil
}

var (
	dummyOnce sync.Once
	dummyHash []byte
)

// BurnPasswordCheck spends the time of one bcrypt comparison against a fixed
// hash. Login calls it for unknown emails so that response time does not
// reveal whether an account exists.
func BurnPasswordCheck(raw string, cost int) {
	dummyOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("librarian-dummy-password"), cost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(raw))
}
