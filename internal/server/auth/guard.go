package auth

import "github.com/dmitrijs2005/librarian/internal/server/models"

// Authorize reports whether identity may perform an operation requiring any
// one of the roles in required. An empty requirement admits every identity;
// an identity without roles never satisfies a non-empty one.
func Authorize(identity models.Identity, required models.RoleSet) bool {
	if required.IsEmpty() {
		return true
	}
	return identity.Roles.Intersects(required)
}
