package token

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func specimenClaims() Claims {
	return Claims{
		"role": "anon",
		"iss":  "supabase",
		"iat":  1643806800,
		"exp":  1801573200,
	}
}

func TestMint_Deterministic(t *testing.T) {
	secret := []byte("s3cr3t")
	a, err := Mint(secret, specimenClaims())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	b, err := Mint(secret, specimenClaims())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if a != b {
		t.Fatalf("minting twice differed:\n%s\n%s", a, b)
	}
}

func TestMint_HeaderSegment(t *testing.T) {
	tok, err := Mint([]byte("s3cr3t"), specimenClaims())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("segments=%d", len(parts))
	}
	raw, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		t.Fatalf("decode header: %v", err)
	}
	if string(raw) != `{"alg":"HS256","typ":"JWT"}` {
		t.Fatalf("header=%s", raw)
	}
}

func TestVerify_RoundTrip(t *testing.T) {
	secret := []byte("s3cr3t")
	tok, err := Mint(secret, specimenClaims())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := Verify(secret, tok); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := Verify([]byte("s3cr3T"), tok); err == nil {
		t.Fatalf("expected mismatch with altered secret")
	}
}

func TestVerify_TamperedPayload(t *testing.T) {
	secret := []byte("s3cr3t")
	tok, err := Mint(secret, specimenClaims())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	parts := strings.Split(tok, ".")
	forged := base64.RawURLEncoding.EncodeToString([]byte(`{"role":"service_role"}`))
	if err := Verify(secret, parts[0]+"."+forged+"."+parts[2]); err == nil {
		t.Fatalf("expected mismatch for tampered payload")
	}
}

// Minted tokens must parse and validate with a stock JWT library.
func TestMint_InteropWithJWTLibrary(t *testing.T) {
	secret := []byte("s3cr3t")
	tok, err := Mint(secret, specimenClaims())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	parsed, err := jwt.Parse(tok, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		t.Fatalf("jwt parse: %v", err)
	}
	if !parsed.Valid {
		t.Fatalf("token not valid")
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatalf("claims type %T", parsed.Claims)
	}
	if claims["role"] != "anon" || claims["iss"] != "supabase" {
		t.Fatalf("claims=%v", claims)
	}
}

func TestMint_Errors(t *testing.T) {
	if _, err := Mint(nil, specimenClaims()); err != ErrEmptySecret {
		t.Fatalf("err=%v", err)
	}
	claims := specimenClaims()
	delete(claims, "exp")
	_, err := Mint([]byte("s3cr3t"), claims)
	if err == nil || !strings.Contains(err.Error(), "exp") {
		t.Fatalf("err=%v", err)
	}
}

func TestDecodeClaims(t *testing.T) {
	tok, err := Mint([]byte("s3cr3t"), specimenClaims())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	claims, err := DecodeClaims(tok)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims["role"] != "anon" {
		t.Fatalf("role=%v", claims["role"])
	}
	if _, err := DecodeClaims("nope"); err == nil {
		t.Fatalf("expected malformed error")
	}
}
