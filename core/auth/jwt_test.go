package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer([]byte("super-secret"), time.Hour)
	userID := uuid.NewString()

	tok, err := issuer.GenerateToken(userID, "alice")
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	claims, err := issuer.ParseToken(tok)
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("userId mismatch: got %q want %q", claims.UserID, userID)
	}
	if claims.Username != "alice" {
		t.Fatalf("username mismatch: got %q want %q", claims.Username, "alice")
	}
}

func TestParseToken_Expired(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer([]byte("secret"), -1*time.Second)

	tok, err := issuer.GenerateToken(uuid.NewString(), "bob")
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	if _, err := issuer.ParseToken(tok); err == nil {
		t.Fatalf("expected error for expired token, got nil")
	}
}

func TestParseToken_WrongKey(t *testing.T) {
	t.Parallel()

	right := NewTokenIssuer([]byte("right-secret"), time.Hour)
	wrong := NewTokenIssuer([]byte("wrong-secret"), time.Hour)

	tok, err := right.GenerateToken(uuid.NewString(), "carol")
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	if _, err := wrong.ParseToken(tok); err == nil {
		t.Fatalf("expected error for invalid signature, got nil")
	}
}

func TestParseToken_Malformed(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer([]byte("k"), time.Hour)
	if _, err := issuer.ParseToken("not.a.jwt"); err == nil {
		t.Fatalf("expected error for malformed token, got nil")
	}
}

func TestParseToken_UnsignedRejected(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer([]byte("k"), time.Hour)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID:   uuid.NewString(),
		Username: "mallory",
	})
	tok, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing unsigned token: %v", err)
	}

	if _, err := issuer.ParseToken(tok); err == nil {
		t.Fatalf("expected error for alg=none token, got nil")
	}
}

func TestParseToken_MissingClaims(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer([]byte("k"), time.Hour)

	// userId claim does not parse as a UUID
	tok, err := issuer.GenerateToken("42", "dave")
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	if _, err := issuer.ParseToken(tok); err == nil {
		t.Fatalf("expected error for non-UUID userId claim, got nil")
	}

	// username claim is empty
	tok, err = issuer.GenerateToken(uuid.NewString(), "")
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	if _, err := issuer.ParseToken(tok); err == nil {
		t.Fatalf("expected error for missing username claim, got nil")
	}
}
