package auth

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/librarian/internal/common"
	"github.com/dmitrijs2005/librarian/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")
	userID := "user-123"
	issued := time.Date(2025, 3, 1, 10, 0, 0, 123456000, time.UTC)
	roles := models.NewRoleSet(models.RoleUser, models.RoleAdmin)

	tok, err := GenerateToken(userID, roles, secret, issued, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	claims, err := ParseToken(tok, secret, issued.Add(time.Minute))
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if claims.Subject != userID {
		t.Fatalf("userID mismatch: got %q want %q", claims.Subject, userID)
	}
	if !claims.IssuedAtTime().Equal(issued) {
		t.Fatalf("issued at mismatch: got %v want %v", claims.IssuedAtTime(), issued)
	}
	if len(claims.Roles) != 2 || claims.Roles[0] != "admin" || claims.Roles[1] != "user" {
		t.Fatalf("unexpected roles: %v", claims.Roles)
	}
}

func TestParseToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	issued := time.Now()

	tok, err := GenerateToken("u1", models.NewRoleSet(models.RoleUser), secret, issued, time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = ParseToken(tok, secret, issued.Add(2*time.Minute))
	if err != common.ErrTokenExpired {
		t.Fatalf("expected common.ErrTokenExpired, got %v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	t.Parallel()

	now := time.Now()
	tok, err := GenerateToken("u2", 0, []byte("right-secret"), now, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = ParseToken(tok, []byte("wrong-secret"), now)
	if err != common.ErrInvalidToken {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestParseToken_MalformedString(t *testing.T) {
	t.Parallel()

	_, err := ParseToken("not.a.jwt", []byte("k"), time.Now())
	if err != common.ErrInvalidToken {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestParseToken_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	now := time.Now()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u3",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := ParseToken(tok, []byte("k"), now); err != common.ErrInvalidToken {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestParseToken_RequiresSubjectAndExpiry(t *testing.T) {
	t.Parallel()

	now := time.Now()
	noSub, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
	}).SignedString([]byte("k"))
	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u4"},
	}).SignedString([]byte("k"))

	for name, tok := range map[string]string{"no subject": noSub, "no expiry": noExp} {
		if _, err := ParseToken(tok, []byte("k"), now); err != common.ErrInvalidToken {
			t.Fatalf("%s: expected common.ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestIssuedAtTime_FallsBackToSeconds(t *testing.T) {
	t.Parallel()

	at := time.Unix(1700000000, 0)
	c := &Claims{RegisteredClaims: jwt.RegisteredClaims{IssuedAt: jwt.NewNumericDate(at)}}
	if !c.IssuedAtTime().Equal(at) {
		t.Fatalf("got %v want %v", c.IssuedAtTime(), at)
	}
	if !(&Claims{}).IssuedAtTime().IsZero() {
		t.Fatal("expected zero time without iat")
	}
}
