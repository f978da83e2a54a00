package publicapi

import (
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/viewguard/viewguard/internal/domain"
	"github.com/viewguard/viewguard/internal/webserver"
)

// Tokens must parse back into the same PortalClaims type the JWT middleware
// uses, with the identity fields intact.
func TestIssueTokenRoundTrip(t *testing.T) {
	u := domain.User{
		ID:        12345,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Role:      "admin",
	}
	secret := "test-secret"

	signed, err := issueToken(u, secret, time.Hour)
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}

	var claims webserver.PortalClaims
	token, err := jwtv5.ParseWithClaims(signed, &claims, func(tok *jwtv5.Token) (interface{}, error) {
		if tok.Method != jwtv5.SigningMethodHS256 {
			t.Fatalf("signing method = %v, want HS256", tok.Method)
		}
		return []byte(secret), nil
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !token.Valid {
		t.Fatal("token not valid")
	}
	if claims.UserID != "12345" {
		t.Errorf("uid = %q, want 12345", claims.UserID)
	}
	if claims.Name != "Ada Lovelace" {
		t.Errorf("name = %q", claims.Name)
	}
	if claims.Email != "ada@example.com" {
		t.Errorf("email = %q", claims.Email)
	}
	if claims.Level != "admin" {
		t.Errorf("level = %q, want admin", claims.Level)
	}
	if exp, err := claims.GetExpirationTime(); err != nil || exp == nil || time.Until(exp.Time) <= 0 {
		t.Errorf("expiry = %v, %v", exp, err)
	}
}

func TestIssueTokenRejectsWrongSecret(t *testing.T) {
	signed, err := issueToken(domain.User{ID: 1, Role: "user"}, "right-secret", time.Hour)
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}
	var claims webserver.PortalClaims
	if _, err := jwtv5.ParseWithClaims(signed, &claims, func(*jwtv5.Token) (interface{}, error) {
		return []byte("wrong-secret"), nil
	}); err == nil {
		t.Fatal("token accepted with the wrong secret")
	}
}
