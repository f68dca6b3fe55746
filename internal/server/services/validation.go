package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/librarian/internal/common"
	"github.com/dmitrijs2005/librarian/internal/server/auth"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// checkInput runs the struct tags of v and reports failures as
// common.ErrorValidation.
func checkInput(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	return nil
}

// checkID rejects identifiers that are not UUIDs before they reach storage.
func checkID(name, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s must be a uuid", common.ErrorValidation, name)
	}
	return nil
}

// checkPassword enforces the byte limit of bcrypt, which the rune-based
// max tag cannot express.
func checkPassword(p string) error {
	if len(p) > auth.MaxPasswordBytes {
		return fmt.Errorf("%w: password longer than %d bytes", common.ErrorValidation, auth.MaxPasswordBytes)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// systemNow is the default clock. Instants are kept at microsecond precision,
// the resolution of both PostgreSQL timestamps and the token issue claim, so
// that a value compares the same before and after a round trip.
func systemNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
