package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	tok, err := m.GenerateToken("ops@example.com", "operator")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := m.ValidateToken(tok)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.Operator != "ops@example.com" || claims.Role != "operator" {
		t.Errorf("claims round trip broken: %+v", claims)
	}
	if claims.ID == "" {
		t.Error("missing jti")
	}
}

func TestValidate_WrongKey(t *testing.T) {
	tok, _ := NewManager("key-a", time.Hour).GenerateToken("ops", "operator")

	if _, err := NewManager("key-b", time.Hour).ValidateToken(tok); err == nil {
		t.Error("token signed with another key must fail")
	}
}

func TestValidate_Expired(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	// NewManager never issues pre-expired tokens, so sign one directly.
	past := time.Now().UTC().Add(-2 * time.Hour)
	claims := Claims{
		Operator: "ops",
		Role:     "operator",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Minute)),
			IssuedAt:  jwt.NewNumericDate(past),
			NotBefore: jwt.NewNumericDate(past),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing expired token: %v", err)
	}

	if _, err := m.ValidateToken(tok); err == nil {
		t.Error("expired token must fail")
	}
}

func TestNewManager_DefaultTTL(t *testing.T) {
	m := NewManager("test-secret", 0)

	tok, err := m.GenerateToken("ops", "operator")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	claims, err := m.ValidateToken(tok)
	if err != nil {
		t.Fatalf("token with defaulted ttl must validate: %v", err)
	}
	if until := time.Until(claims.ExpiresAt.Time); until < 23*time.Hour || until > 25*time.Hour {
		t.Errorf("defaulted ttl = %v until expiry, want ~24h", until)
	}
}

func TestValidate_Garbage(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	if _, err := m.ValidateToken("not.a.token"); err == nil {
		t.Error("garbage must fail")
	}
}
